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
	"github.com/onflow/termjson/errors"
)

// Serializer is an event sink.
//
// It receives the events of exactly one value, in a well-formed order,
// and either streams them to an output or buffers them.
type Serializer interface {
	SerializeUnit() error
	SerializeBool(v bool) error
	SerializeInt(v int64, width Width) error
	SerializeUint(v uint64, width Width) error
	SerializeFloat(v float64, width Width) error
	SerializeString(v string) error
	SerializeBytes(v []byte) error
	SerializeNone() error
	SerializeSome() error

	StartSequence(length int) error
	SequenceElement() error
	EndSequence() error

	StartMapping(length int) error
	MappingKey() error
	MappingValue() error
	EndMapping() error
}

// Flusher is implemented by serializers which buffer output.
// Flush is called once, after the last event of the value.
type Flusher interface {
	Flush() error
}

// Emit forwards the given event to the matching method of the serializer.
func Emit(s Serializer, e Event) error {
	switch e.Kind {
	case KindUnit:
		return s.SerializeUnit()
	case KindBool:
		return s.SerializeBool(e.Bool)
	case KindInt:
		return s.SerializeInt(e.Int, e.Width)
	case KindUint:
		return s.SerializeUint(e.Uint, e.Width)
	case KindFloat:
		return s.SerializeFloat(e.Float, e.Width)
	case KindString:
		return s.SerializeString(e.Text)
	case KindBytes:
		return s.SerializeBytes(e.Data)
	case KindNone:
		return s.SerializeNone()
	case KindSome:
		return s.SerializeSome()
	case KindSequenceStart:
		return s.StartSequence(e.Len)
	case KindSequenceElement:
		return s.SequenceElement()
	case KindSequenceEnd:
		return s.EndSequence()
	case KindMappingStart:
		return s.StartMapping(e.Len)
	case KindMappingKey:
		return s.MappingKey()
	case KindMappingValue:
		return s.MappingValue()
	case KindMappingEnd:
		return s.EndMapping()
	default:
		return errors.NewUnreachableError()
	}
}

// Deserializer is an event source.
//
// Next returns the events of exactly one value, one at a time,
// and io.EOF once the value is complete.
// Position reports where the source currently is, for diagnostics.
type Deserializer interface {
	Next() (Event, error)
	Position() Position
}
