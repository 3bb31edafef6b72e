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

package term

import (
	"math"
	"strconv"

	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/transcode"
)

// maxPreallocation caps the capacity reserved from a length hint,
// as hints come from untrusted input.
const maxPreallocation = 1024

// Serializer builds a term from a stream of value events.
//
// Integers are 64-bit signed in the host runtime:
// unsigned values above math.MaxInt64 are rejected with a RangeError.
type Serializer struct {
	result    Term
	stack     []builder
	path      transcode.Path
	hasResult bool
}

var _ transcode.Serializer = &Serializer{}

type builder struct {
	elements []Term
	m        *Map
	key      Term
	index    int
	pathLen  int
	inKey    bool
}

// Result returns the term built from the events received so far.
func (s *Serializer) Result() Term {
	return s.result
}

func (s *Serializer) value(t Term) error {
	if len(s.stack) == 0 {
		if s.hasResult {
			return errors.NewUnexpectedError("term serializer received more than one value")
		}
		s.result = t
		s.hasResult = true
		return nil
	}

	b := &s.stack[len(s.stack)-1]
	switch {
	case b.m == nil:
		b.elements = append(b.elements, t)
	case b.inKey:
		b.key = t
	default:
		b.m.Set(b.key, t)
		b.key = nil
	}
	return nil
}

func (s *Serializer) top() (*builder, error) {
	if len(s.stack) == 0 {
		return nil, errors.NewUnexpectedError("term serializer received a container event outside of a container")
	}
	return &s.stack[len(s.stack)-1], nil
}

func (s *Serializer) SerializeUnit() error {
	return s.value(Nil)
}

func (s *Serializer) SerializeBool(v bool) error {
	return s.value(NewBool(v))
}

func (s *Serializer) SerializeInt(v int64, _ transcode.Width) error {
	return s.value(Integer(v))
}

func (s *Serializer) SerializeUint(v uint64, _ transcode.Width) error {
	if v > math.MaxInt64 {
		return transcode.NewRangeError(s.path, strconv.FormatUint(v, 10), "int64")
	}
	return s.value(Integer(v))
}

func (s *Serializer) SerializeFloat(v float64, _ transcode.Width) error {
	return s.value(Float(v))
}

func (s *Serializer) SerializeString(v string) error {
	return s.value(Binary(v))
}

func (s *Serializer) SerializeBytes(v []byte) error {
	b := make(Binary, len(v))
	copy(b, v)
	return s.value(b)
}

func (s *Serializer) SerializeNone() error {
	return s.value(Nil)
}

func (s *Serializer) SerializeSome() error {
	// the wrapped value follows, and stands for itself
	return nil
}

func (s *Serializer) StartSequence(length int) error {
	s.stack = append(s.stack, builder{
		elements: make([]Term, 0, min(max(length, 0), maxPreallocation)),
		pathLen:  len(s.path),
	})
	return nil
}

func (s *Serializer) SequenceElement() error {
	b, err := s.top()
	if err != nil {
		return err
	}
	s.path = append(s.path[:b.pathLen], transcode.IndexElement(b.index))
	b.index++
	return nil
}

func (s *Serializer) EndSequence() error {
	b, err := s.top()
	if err != nil {
		return err
	}
	elements := b.elements
	s.path = s.path[:b.pathLen]
	s.stack = s.stack[:len(s.stack)-1]
	return s.value(List(elements))
}

func (s *Serializer) StartMapping(int) error {
	s.stack = append(s.stack, builder{
		m:       &Map{},
		pathLen: len(s.path),
	})
	return nil
}

func (s *Serializer) MappingKey() error {
	b, err := s.top()
	if err != nil {
		return err
	}
	s.path = s.path[:b.pathLen]
	b.inKey = true
	return nil
}

func (s *Serializer) MappingValue() error {
	b, err := s.top()
	if err != nil {
		return err
	}
	b.inKey = false
	s.path = append(s.path[:b.pathLen], transcode.KeyElement(keyName(b.key)))
	return nil
}

func (s *Serializer) EndMapping() error {
	b, err := s.top()
	if err != nil {
		return err
	}
	m := b.m
	s.path = s.path[:b.pathLen]
	s.stack = s.stack[:len(s.stack)-1]
	return s.value(m)
}
