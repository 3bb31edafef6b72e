/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package termjson converts between JSON text and terms of the host runtime.
//
// Values are streamed from a deserializer into a serializer,
// see package transcode, without building an intermediate JSON tree.
package termjson

import (
	"bytes"
	"fmt"
	"io"
	goRuntime "runtime"

	"github.com/onflow/termjson/encoding/json"
	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
)

type Style = json.Style

const (
	Compact = json.Compact
	Pretty  = json.Pretty
)

// Codec converts between JSON text and terms.
// The zero value is ready to use.
type Codec struct {
	// MaxDepth limits the nesting of containers, in both directions.
	// Zero selects the default of 512.
	MaxDepth int
}

var DefaultCodec = Codec{}

// Decode returns the term described by the given JSON text.
func Decode(data []byte) (term.Term, error) {
	return DefaultCodec.Decode(data)
}

// Encode returns the JSON text describing the given term.
func Encode(value term.Term, style Style) ([]byte, error) {
	return DefaultCodec.Encode(value, style)
}

// EncodeCompact returns the JSON text describing the given term,
// without insignificant whitespace.
func EncodeCompact(value term.Term) ([]byte, error) {
	return DefaultCodec.Encode(value, Compact)
}

// EncodePretty returns the JSON text describing the given term,
// indented by two spaces per level.
func EncodePretty(value term.Term) ([]byte, error) {
	return DefaultCodec.Encode(value, Pretty)
}

// Decode returns the term described by the given JSON text.
//
// The text must be valid UTF-8 and hold exactly one JSON value.
// No partial term is returned on failure.
func (c Codec) Decode(data []byte) (result term.Term, err error) {
	defer recoverError(&err)

	var sink term.Serializer
	err = transcode.Transcode(
		json.NewBytesDeserializer(data, json.WithMaxDepth(c.MaxDepth)),
		&sink,
	)
	if err != nil {
		return nil, err
	}

	return sink.Result(), nil
}

// Encode returns the JSON text describing the given term.
// No partial output is returned on failure.
func (c Codec) Encode(value term.Term, style Style) ([]byte, error) {
	var w bytes.Buffer
	err := c.EncodeTo(&w, value, style)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo writes the JSON text describing the given term to w.
// Nothing is written to w if the term cannot be described.
func (c Codec) EncodeTo(w io.Writer, value term.Term, style Style) (err error) {
	defer recoverError(&err)

	return transcode.Transcode(
		term.NewDeserializer(value, c.MaxDepth),
		json.NewSerializer(w, style),
	)
}

// recoverError turns a panic with an error into a returned error.
func recoverError(err *error) {
	r := recover()
	if r == nil {
		return
	}

	// Don't recover Go errors, internal errors, or non-errors.
	switch r := r.(type) {
	case goRuntime.Error, errors.InternalError:
		panic(r)
	case error:
		*err = fmt.Errorf("termjson: %w", r)
	default:
		panic(r)
	}
}
