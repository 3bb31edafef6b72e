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

package json

import (
	"bytes"
	"io"
	"math"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/onflow/termjson/format"
	"github.com/onflow/termjson/transcode"
)

// Style selects the layout of the written JSON text.
type Style uint8

const (
	// Compact writes no insignificant whitespace.
	Compact Style = iota
	// Pretty writes one element or member per line, indented by two spaces per level.
	Pretty
)

func (s Style) String() string {
	switch s {
	case Compact:
		return "compact"
	case Pretty:
		return "pretty"
	}
	return "Style(" + strconv.Itoa(int(s)) + ")"
}

const indent = "  "

func (s Style) options() []jsontext.Options {
	if s != Pretty {
		return nil
	}
	return []jsontext.Options{
		jsontext.Expand(true), // expanded output puts a space after each colon
		jsontext.WithIndent(indent),
	}
}

// A Serializer writes value events as JSON text.
//
// The text is buffered and written to the underlying io.Writer
// when the Serializer is flushed, without a trailing newline.
// Map keys must be strings or integers, integers are written as strings.
// Two keys of a map which are written as the same name are rejected.
type Serializer struct {
	w     io.Writer
	enc   *jsontext.Encoder
	buf   bytes.Buffer
	stack []sinkFrame
	path  transcode.Path
}

var _ transcode.Serializer = &Serializer{}
var _ transcode.Flusher = &Serializer{}

type sinkFrame struct {
	pathLen int
	index   int
	object  bool
	inKey   bool
	names   map[string]struct{}
}

// NewSerializer initializes a Serializer that will write JSON text
// in the given style to the given io.Writer.
func NewSerializer(w io.Writer, style Style) *Serializer {
	s := &Serializer{w: w}
	s.enc = jsontext.NewEncoder(&s.buf, style.options()...)
	return s
}

func (s *Serializer) inKey() bool {
	return len(s.stack) > 0 && s.stack[len(s.stack)-1].inKey
}

// key writes the name of an object member.
func (s *Serializer) key(name string) error {
	top := &s.stack[len(s.stack)-1]
	top.inKey = false
	s.path = append(s.path[:top.pathLen], transcode.KeyElement(name))

	if _, ok := top.names[name]; ok {
		return transcode.NewUnsupportedValueError(s.path, "duplicate object key %q", name)
	}
	if top.names == nil {
		top.names = map[string]struct{}{}
	}
	top.names[name] = struct{}{}

	return s.enc.WriteToken(jsontext.String(name))
}

func (s *Serializer) unsupportedKey(kind string) error {
	return transcode.NewUnsupportedValueError(
		s.path,
		"object keys must be strings or integers, got %s",
		kind,
	)
}

func (s *Serializer) SerializeUnit() error {
	if s.inKey() {
		return s.unsupportedKey("null")
	}
	return s.enc.WriteToken(jsontext.Null)
}

func (s *Serializer) SerializeBool(v bool) error {
	if s.inKey() {
		return s.unsupportedKey("boolean")
	}
	return s.enc.WriteToken(jsontext.Bool(v))
}

func (s *Serializer) SerializeInt(v int64, _ transcode.Width) error {
	if s.inKey() {
		return s.key(strconv.FormatInt(v, 10))
	}
	return s.enc.WriteToken(jsontext.Int(v))
}

func (s *Serializer) SerializeUint(v uint64, _ transcode.Width) error {
	if s.inKey() {
		return s.key(strconv.FormatUint(v, 10))
	}
	return s.enc.WriteToken(jsontext.Uint(v))
}

// SerializeFloat writes a float so it reads back as a float,
// i.e. always with a fraction or an exponent.
func (s *Serializer) SerializeFloat(v float64, width transcode.Width) error {
	if s.inKey() {
		return s.unsupportedKey("float")
	}

	switch {
	case math.IsNaN(v):
		return transcode.NewUnsupportedValueError(s.path, "NaN has no JSON representation")
	case math.IsInf(v, 0):
		return transcode.NewRangeError(s.path, format.Float(v), "JSON number")
	}

	bitSize := 64
	if width == transcode.Width32 {
		bitSize = 32
	}

	text := strconv.AppendFloat(nil, v, 'g', -1, bitSize)
	if !bytes.ContainsAny(text, ".e") {
		text = append(text, ".0"...)
	}
	return s.enc.WriteValue(jsontext.Value(text))
}

func (s *Serializer) SerializeString(v string) error {
	if s.inKey() {
		return s.key(v)
	}
	return s.enc.WriteToken(jsontext.String(v))
}

// SerializeBytes writes a byte buffer as an array of numbers.
func (s *Serializer) SerializeBytes(v []byte) error {
	if s.inKey() {
		return s.unsupportedKey("byte buffer")
	}

	err := s.enc.WriteToken(jsontext.ArrayStart)
	if err != nil {
		return err
	}
	for _, b := range v {
		err = s.enc.WriteToken(jsontext.Uint(uint64(b)))
		if err != nil {
			return err
		}
	}
	return s.enc.WriteToken(jsontext.ArrayEnd)
}

func (s *Serializer) SerializeNone() error {
	return s.SerializeUnit()
}

func (s *Serializer) SerializeSome() error {
	return nil
}

func (s *Serializer) StartSequence(int) error {
	if s.inKey() {
		return s.unsupportedKey("array")
	}
	s.stack = append(s.stack, sinkFrame{
		pathLen: len(s.path),
	})
	return s.enc.WriteToken(jsontext.ArrayStart)
}

func (s *Serializer) SequenceElement() error {
	top := &s.stack[len(s.stack)-1]
	s.path = append(s.path[:top.pathLen], transcode.IndexElement(top.index))
	top.index++
	return nil
}

func (s *Serializer) EndSequence() error {
	s.pop()
	return s.enc.WriteToken(jsontext.ArrayEnd)
}

func (s *Serializer) StartMapping(int) error {
	if s.inKey() {
		return s.unsupportedKey("object")
	}
	s.stack = append(s.stack, sinkFrame{
		object:  true,
		pathLen: len(s.path),
	})
	return s.enc.WriteToken(jsontext.ObjectStart)
}

func (s *Serializer) MappingKey() error {
	top := &s.stack[len(s.stack)-1]
	top.inKey = true
	s.path = s.path[:top.pathLen]
	return nil
}

func (s *Serializer) MappingValue() error {
	return nil
}

func (s *Serializer) EndMapping() error {
	s.pop()
	return s.enc.WriteToken(jsontext.ObjectEnd)
}

func (s *Serializer) pop() {
	top := s.stack[len(s.stack)-1]
	s.path = s.path[:top.pathLen]
	s.stack = s.stack[:len(s.stack)-1]
}

// Flush writes the buffered text to the underlying io.Writer.
func (s *Serializer) Flush() error {
	// the encoder terminates each top-level value with a newline
	text := bytes.TrimSuffix(s.buf.Bytes(), []byte{'\n'})
	_, err := s.w.Write(text)
	s.buf.Reset()
	return err
}
