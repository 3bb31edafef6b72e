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

// Package yaml reads and writes YAML documents as value events.
//
// Documents are parsed into ordered Go values first, see package native,
// so unlike the JSON codec the YAML codec is not streaming.
package yaml

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/onflow/termjson/encoding/native"
	"github.com/onflow/termjson/transcode"
)

// NewDeserializer parses the given YAML document, and returns a deserializer
// describing it. Mappings keep the order of their entries.
//
// This function returns a FormatError if the document is malformed.
func NewDeserializer(data []byte, maxDepth int) (*native.Deserializer, error) {
	var v any
	err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap())
	if err != nil {
		return nil, transcode.NewFormatError(transcode.Position{}, err)
	}
	return native.NewDeserializer(v, maxDepth), nil
}

// A Serializer writes value events as a YAML document.
//
// The document is built in memory, and written to the underlying io.Writer
// when the Serializer is flushed.
type Serializer struct {
	native.Serializer
	w io.Writer
}

var _ transcode.Serializer = &Serializer{}
var _ transcode.Flusher = &Serializer{}

func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{
		Serializer: native.Serializer{
			Ordered: true,
		},
		w: w,
	}
}

// Flush writes the document to the underlying io.Writer.
func (s *Serializer) Flush() error {
	data, err := yaml.MarshalWithOptions(
		s.Result(),
		yaml.Indent(2),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return err
	}
	_, err = s.w.Write(data)
	return err
}
