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

// Package json reads and writes JSON text as a stream of value events.
package json

import (
	"bytes"
	goErrors "errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/transcode"
)

// DefaultMaxDepth is the default limit of array and object nesting.
const DefaultMaxDepth = 512

var ErrMaxDepth = goErrors.New("nesting exceeds maximum depth")

// A Deserializer reads JSON text and describes it as value events.
//
// Input must be valid UTF-8 and contain exactly one JSON value,
// optionally surrounded by whitespace.
type Deserializer struct {
	dec      *jsontext.Decoder
	err      error
	stack    []frame
	pending  []transcode.Event
	path     transcode.Path
	maxDepth int
	done     bool
}

var _ transcode.Deserializer = &Deserializer{}

type frame struct {
	name    string
	pathLen int
	index   int
	object  bool
	// inValue is set for objects once the name of a member was read
	inValue bool
}

type Option func(*Deserializer)

// WithMaxDepth returns a new Deserializer Option
// which limits the nesting of arrays and objects.
func WithMaxDepth(maxDepth int) Option {
	return func(d *Deserializer) {
		if maxDepth > 0 {
			d.maxDepth = maxDepth
		}
	}
}

// NewDeserializer initializes a Deserializer that will read JSON text
// from the given io.Reader.
func NewDeserializer(r io.Reader, options ...Option) *Deserializer {
	d := &Deserializer{
		dec: jsontext.NewDecoder(
			r,
			// members are kept in order, later duplicates replace earlier ones
			jsontext.AllowDuplicateNames(true),
		),
		maxDepth: DefaultMaxDepth,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// NewBytesDeserializer initializes a Deserializer that will read
// the given JSON text.
func NewBytesDeserializer(data []byte, options ...Option) *Deserializer {
	return NewDeserializer(bytes.NewReader(data), options...)
}

func (d *Deserializer) Position() transcode.Position {
	return transcode.Position{
		Offset: d.dec.InputOffset(),
		Path:   d.path.Copy(),
	}
}

func (d *Deserializer) Next() (transcode.Event, error) {
	if d.err != nil {
		return transcode.Event{}, d.err
	}

	if len(d.pending) > 0 {
		event := d.pending[0]
		d.pending = d.pending[1:]
		return event, nil
	}

	if d.done {
		return d.end()
	}

	token, err := d.readToken()
	if err != nil {
		return d.fail(err)
	}

	if len(d.stack) == 0 {
		return d.value(token)
	}

	top := &d.stack[len(d.stack)-1]
	d.path = d.path[:top.pathLen]

	if top.object {
		if top.inValue {
			top.inValue = false
			d.path = append(d.path, transcode.KeyElement(top.name))
			return d.value(token)
		}

		if token.Kind() == '}' {
			return d.pop(transcode.MappingEnd())
		}

		// the decoder only yields names, i.e. strings, in this position
		name := token.String()
		top.name = name
		top.inValue = true
		d.path = append(d.path, transcode.KeyElement(name))
		d.pending = append(d.pending[:0],
			transcode.String(name),
			transcode.MappingValue(),
		)
		return transcode.MappingKey(), nil
	}

	if token.Kind() == ']' {
		return d.pop(transcode.SequenceEnd())
	}

	d.path = append(d.path, transcode.IndexElement(top.index))
	top.index++

	event, err := d.value(token)
	if err != nil {
		return event, err
	}
	d.pending = append(d.pending[:0], event)
	return transcode.SequenceElement(), nil
}

func (d *Deserializer) readToken() (jsontext.Token, error) {
	token, err := d.dec.ReadToken()
	if err == nil {
		return token, nil
	}

	offset := d.dec.InputOffset()
	var syntacticErr *jsontext.SyntacticError
	if goErrors.As(err, &syntacticErr) {
		offset = syntacticErr.ByteOffset
	}

	if goErrors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return jsontext.Token{}, transcode.NewFormatError(
		transcode.Position{
			Offset: offset,
			Path:   d.path.Copy(),
		},
		err,
	)
}

// end checks that only whitespace follows the top-level value.
func (d *Deserializer) end() (transcode.Event, error) {
	_, err := d.dec.ReadToken()
	switch {
	case goErrors.Is(err, io.EOF):
		return transcode.Event{}, io.EOF
	case err == nil:
		err = transcode.ErrTrailingData
	}
	return d.fail(transcode.NewFormatError(d.Position(), err))
}

func (d *Deserializer) fail(err error) (transcode.Event, error) {
	d.err = err
	return transcode.Event{}, err
}

func (d *Deserializer) push(object bool) error {
	if len(d.stack) >= d.maxDepth {
		return transcode.NewFormatError(
			d.Position(),
			fmt.Errorf("%w of %d", ErrMaxDepth, d.maxDepth),
		)
	}
	d.stack = append(d.stack, frame{
		object:  object,
		pathLen: len(d.path),
	})
	return nil
}

func (d *Deserializer) pop(event transcode.Event) (transcode.Event, error) {
	top := d.stack[len(d.stack)-1]
	d.path = d.path[:top.pathLen]
	d.stack = d.stack[:len(d.stack)-1]
	d.done = len(d.stack) == 0
	return event, nil
}

// value returns the event starting the value which begins with the given token.
func (d *Deserializer) value(token jsontext.Token) (transcode.Event, error) {
	var event transcode.Event

	switch token.Kind() {
	case 'n':
		event = transcode.Unit()

	case 't':
		event = transcode.Bool(true)

	case 'f':
		event = transcode.Bool(false)

	case '"':
		event = transcode.String(token.String())

	case '0':
		var err error
		event, err = d.number(token.String())
		if err != nil {
			return d.fail(err)
		}

	case '[':
		err := d.push(false)
		if err != nil {
			return d.fail(err)
		}
		return transcode.SequenceStart(transcode.UnknownLength), nil

	case '{':
		err := d.push(true)
		if err != nil {
			return d.fail(err)
		}
		return transcode.MappingStart(transcode.UnknownLength), nil

	default:
		return d.fail(errors.NewUnexpectedError("unexpected JSON token: %s", token))
	}

	if len(d.stack) == 0 {
		d.done = true
	}

	return event, nil
}

// number converts the text of a JSON number.
//
// Integers are read as signed 64-bit integers if they fit,
// and as unsigned 64-bit integers otherwise.
// Any number with a fraction or an exponent is read as a 64-bit float.
func (d *Deserializer) number(text string) (transcode.Event, error) {
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsInf(f, 0) {
			return transcode.Event{}, transcode.NewRangeError(d.path, text, "float64")
		}
		return transcode.Float(f, transcode.Width64), nil
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return transcode.Int(i, transcode.Width64), nil
	}

	if text[0] != '-' {
		u, err := strconv.ParseUint(text, 10, 64)
		if err == nil {
			return transcode.Uint(u, transcode.Width64), nil
		}
	}

	return transcode.Event{}, transcode.NewRangeError(d.path, text, "64-bit integer")
}
