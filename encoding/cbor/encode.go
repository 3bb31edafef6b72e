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

// Package cbor writes value events as CBOR (RFC 8949).
package cbor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	goRuntime "runtime"

	fxcbor "github.com/fxamacker/cbor/v2"

	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
)

// CBOREncMode
//
// See https://github.com/fxamacker/cbor:
// "For best performance, reuse EncMode and DecMode after creating them."
var CBOREncMode = func() fxcbor.EncMode {
	options := fxcbor.CoreDetEncOptions()
	options.BigIntConvert = fxcbor.BigIntConvertNone
	encMode, err := options.EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

const (
	cborFloat32Head = 0xfa
	cborFloat64Head = 0xfb

	// initial bytes of indefinite-length items, and of their terminator
	cborIndefiniteArrayHead = 0x9f
	cborIndefiniteMapHead   = 0xbf
	cborBreak               = 0xff
)

// Encode returns the CBOR representation of the given term.
//
// This function returns an error if the term cannot be described as value events,
// e.g. because it contains a pid or a cycle.
func Encode(value term.Term) (data []byte, err error) {
	// capture panics
	defer func() {
		if r := recover(); r != nil {
			// Don't recover Go errors, internal errors, or non-errors.
			switch r := r.(type) {
			case goRuntime.Error, errors.InternalError:
				panic(r)
			case error:
				err = r
			default:
				panic(r)
			}
		}

		// Add context to error if there is any.
		if err != nil {
			data = nil
			err = fmt.Errorf("cbor: failed to encode value: %w", err)
		}
	}()

	var w bytes.Buffer
	err = transcode.Transcode(
		term.NewDeserializer(value, 0),
		NewSerializer(&w),
	)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// MustEncode returns the CBOR representation of the given term, or panics
// if the term cannot be represented.
func MustEncode(value term.Term) []byte {
	b, err := Encode(value)
	if err != nil {
		panic(err)
	}
	return b
}

// A Serializer writes value events as CBOR.
//
// Sequences with a length hint are written as definite-length arrays,
// other sequences and all mappings as indefinite-length items.
// Unit and None are written as null.
//
// Output is buffered, and written to the underlying io.Writer
// when the Serializer is flushed.
type Serializer struct {
	w     io.Writer
	buf   bytes.Buffer
	enc   *fxcbor.StreamEncoder
	stack []sequence
}

var _ transcode.Serializer = &Serializer{}
var _ transcode.Flusher = &Serializer{}

type sequence struct {
	length   int
	elements int
}

// NewSerializer initializes a Serializer that will write CBOR
// to the given io.Writer.
func NewSerializer(w io.Writer) *Serializer {
	s := &Serializer{w: w}
	s.enc = CBOREncMode.NewStreamEncoder(&s.buf)
	return s
}

func (s *Serializer) SerializeUnit() error {
	return s.enc.EncodeNil()
}

func (s *Serializer) SerializeBool(v bool) error {
	return s.enc.EncodeBool(v)
}

func (s *Serializer) SerializeInt(v int64, width transcode.Width) error {
	switch width {
	case transcode.Width8:
		return s.enc.EncodeInt8(int8(v))
	case transcode.Width16:
		return s.enc.EncodeInt16(int16(v))
	case transcode.Width32:
		return s.enc.EncodeInt32(int32(v))
	default:
		return s.enc.EncodeInt64(v)
	}
}

func (s *Serializer) SerializeUint(v uint64, width transcode.Width) error {
	switch width {
	case transcode.Width8:
		return s.enc.EncodeUint8(uint8(v))
	case transcode.Width16:
		return s.enc.EncodeUint16(uint16(v))
	case transcode.Width32:
		return s.enc.EncodeUint32(uint32(v))
	default:
		return s.enc.EncodeUint64(v)
	}
}

// SerializeFloat writes a single or double precision float, depending on the width.
// Unlike JSON, CBOR can represent NaN and infinities.
func (s *Serializer) SerializeFloat(v float64, width transcode.Width) error {
	if width == transcode.Width32 {
		var b [5]byte
		b[0] = cborFloat32Head
		binary.BigEndian.PutUint32(b[1:], math.Float32bits(float32(v)))
		return s.enc.EncodeRawBytes(b[:])
	}

	var b [9]byte
	b[0] = cborFloat64Head
	binary.BigEndian.PutUint64(b[1:], math.Float64bits(v))
	return s.enc.EncodeRawBytes(b[:])
}

func (s *Serializer) SerializeString(v string) error {
	return s.enc.EncodeString(v)
}

func (s *Serializer) SerializeBytes(v []byte) error {
	return s.enc.EncodeBytes(v)
}

func (s *Serializer) SerializeNone() error {
	return s.enc.EncodeNil()
}

func (s *Serializer) SerializeSome() error {
	return nil
}

func (s *Serializer) StartSequence(length int) error {
	s.stack = append(s.stack, sequence{length: length})
	if length < 0 {
		return s.enc.EncodeRawBytes([]byte{cborIndefiniteArrayHead})
	}
	return s.enc.EncodeArrayHead(uint64(length))
}

func (s *Serializer) SequenceElement() error {
	s.stack[len(s.stack)-1].elements++
	return nil
}

func (s *Serializer) EndSequence() error {
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	if top.length < 0 {
		return s.enc.EncodeRawBytes([]byte{cborBreak})
	}

	if top.elements != top.length {
		return errors.NewUnexpectedError(
			"sequence has %d elements, but its length hint is %d",
			top.elements,
			top.length,
		)
	}
	return nil
}

func (s *Serializer) StartMapping(int) error {
	s.stack = append(s.stack, sequence{
		length: transcode.UnknownLength,
	})
	return s.enc.EncodeRawBytes([]byte{cborIndefiniteMapHead})
}

func (s *Serializer) MappingKey() error {
	return nil
}

func (s *Serializer) MappingValue() error {
	return nil
}

func (s *Serializer) EndMapping() error {
	s.stack = s.stack[:len(s.stack)-1]
	return s.enc.EncodeRawBytes([]byte{cborBreak})
}

// Flush writes the buffered CBOR to the underlying io.Writer.
func (s *Serializer) Flush() error {
	err := s.enc.Flush()
	if err != nil {
		return err
	}
	_, err = s.w.Write(s.buf.Bytes())
	s.buf.Reset()
	return err
}
