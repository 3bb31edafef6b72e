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

package transcode

import (
	"fmt"
	"strconv"
)

// Kind

type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindNone
	KindSome
	KindSequenceStart
	KindSequenceElement
	KindSequenceEnd
	KindMappingStart
	KindMappingKey
	KindMappingValue
	KindMappingEnd
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindNone:
		return "None"
	case KindSome:
		return "Some"
	case KindSequenceStart:
		return "SequenceStart"
	case KindSequenceElement:
		return "SequenceElement"
	case KindSequenceEnd:
		return "SequenceEnd"
	case KindMappingStart:
		return "MappingStart"
	case KindMappingKey:
		return "MappingKey"
	case KindMappingValue:
		return "MappingValue"
	case KindMappingEnd:
		return "MappingEnd"
	default:
		return "Invalid"
	}
}

// IsScalar returns true for events which are a complete value by themselves.
func (k Kind) IsScalar() bool {
	switch k {
	case KindUnit,
		KindBool,
		KindInt,
		KindUint,
		KindFloat,
		KindString,
		KindBytes,
		KindNone:
		return true
	}
	return false
}

// Width is the bit width of a numeric event.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// UnknownLength is the length hint of a container whose size
// is not known up front.
const UnknownLength = -1

// Event is one structural notification of a value traversal.
//
// Only the fields relevant to Kind are set:
// Bool for KindBool, Int for KindInt, Uint for KindUint,
// Float for KindFloat, Text for KindString, Data for KindBytes,
// and Len for KindSequenceStart and KindMappingStart.
// Width is set for the numeric kinds.
type Event struct {
	Text  string
	Data  []byte
	Int   int64
	Uint  uint64
	Float float64
	Len   int
	Kind  Kind
	Width Width
	Bool  bool
}

func Unit() Event {
	return Event{Kind: KindUnit}
}

func Bool(b bool) Event {
	return Event{Kind: KindBool, Bool: b}
}

func Int(v int64, width Width) Event {
	return Event{Kind: KindInt, Int: v, Width: width}
}

func Uint(v uint64, width Width) Event {
	return Event{Kind: KindUint, Uint: v, Width: width}
}

func Float(v float64, width Width) Event {
	return Event{Kind: KindFloat, Float: v, Width: width}
}

func String(s string) Event {
	return Event{Kind: KindString, Text: s}
}

func Bytes(b []byte) Event {
	return Event{Kind: KindBytes, Data: b}
}

func None() Event {
	return Event{Kind: KindNone}
}

func Some() Event {
	return Event{Kind: KindSome}
}

func SequenceStart(length int) Event {
	return Event{Kind: KindSequenceStart, Len: length}
}

func SequenceElement() Event {
	return Event{Kind: KindSequenceElement}
}

func SequenceEnd() Event {
	return Event{Kind: KindSequenceEnd}
}

func MappingStart(length int) Event {
	return Event{Kind: KindMappingStart, Len: length}
}

func MappingKey() Event {
	return Event{Kind: KindMappingKey}
}

func MappingValue() Event {
	return Event{Kind: KindMappingValue}
}

func MappingEnd() Event {
	return Event{Kind: KindMappingEnd}
}

func (e Event) String() string {
	switch e.Kind {
	case KindBool:
		return fmt.Sprintf("Bool(%t)", e.Bool)
	case KindInt:
		return fmt.Sprintf("Int%d(%d)", e.Width, e.Int)
	case KindUint:
		return fmt.Sprintf("Uint%d(%d)", e.Width, e.Uint)
	case KindFloat:
		return fmt.Sprintf("Float%d(%s)", e.Width, strconv.FormatFloat(e.Float, 'g', -1, 64))
	case KindString:
		return fmt.Sprintf("String(%q)", e.Text)
	case KindBytes:
		return fmt.Sprintf("Bytes(%x)", e.Data)
	case KindSequenceStart, KindMappingStart:
		if e.Len == UnknownLength {
			return e.Kind.String()
		}
		return fmt.Sprintf("%s(%d)", e.Kind, e.Len)
	default:
		return e.Kind.String()
	}
}
