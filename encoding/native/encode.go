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

package native

import (
	"math"
	"math/big"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/transcode"
)

// Serializer builds a Go value from a stream of value events.
//
// Sequences and byte buffers become []any, integers become int,
// or *big.Int if they do not fit.
//
// By default mappings become map[string]any, and keys must be strings or integers.
// With Ordered set, mappings become yaml.MapSlice, which keeps the order of entries
// and allows any key, and large unsigned integers stay uint64.
type Serializer struct {
	Ordered bool

	result    any
	stack     []builder
	path      transcode.Path
	hasResult bool
}

var _ transcode.Serializer = &Serializer{}

type builder struct {
	key      any
	elements []any
	entries  map[string]any
	items    yaml.MapSlice
	index    int
	pathLen  int
	mapping  bool
	inKey    bool
}

// Result returns the value built from the events received so far.
func (s *Serializer) Result() any {
	return s.result
}

func (s *Serializer) value(v any) error {
	if len(s.stack) == 0 {
		if s.hasResult {
			return errors.NewUnexpectedError("native serializer received more than one value")
		}
		s.result = v
		s.hasResult = true
		return nil
	}

	b := &s.stack[len(s.stack)-1]
	switch {
	case !b.mapping:
		b.elements = append(b.elements, v)

	case b.inKey:
		if !s.Ordered {
			key, ok := stringKey(v)
			if !ok {
				return transcode.NewUnsupportedValueError(
					s.path,
					"map keys must be strings or integers, got %T",
					v,
				)
			}
			v = key
		}
		b.key = v

	case s.Ordered:
		b.items = append(b.items, yaml.MapItem{Key: b.key, Value: v})

	default:
		b.entries[b.key.(string)] = v
	}
	return nil
}

func stringKey(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case *big.Int:
		return v.String(), true
	default:
		return "", false
	}
}

func (s *Serializer) SerializeUnit() error {
	return s.value(nil)
}

func (s *Serializer) SerializeBool(v bool) error {
	return s.value(v)
}

func (s *Serializer) SerializeInt(v int64, _ transcode.Width) error {
	if v < math.MinInt || v > math.MaxInt {
		return s.value(big.NewInt(v))
	}
	return s.value(int(v))
}

func (s *Serializer) SerializeUint(v uint64, _ transcode.Width) error {
	if v <= math.MaxInt {
		return s.value(int(v))
	}
	if s.Ordered {
		return s.value(v)
	}
	return s.value(new(big.Int).SetUint64(v))
}

func (s *Serializer) SerializeFloat(v float64, _ transcode.Width) error {
	return s.value(v)
}

func (s *Serializer) SerializeString(v string) error {
	return s.value(v)
}

func (s *Serializer) SerializeBytes(v []byte) error {
	elements := make([]any, len(v))
	for i, b := range v {
		elements[i] = int(b)
	}
	return s.value(elements)
}

func (s *Serializer) SerializeNone() error {
	return s.value(nil)
}

func (s *Serializer) SerializeSome() error {
	return nil
}

func (s *Serializer) top() (*builder, error) {
	if len(s.stack) == 0 {
		return nil, errors.NewUnexpectedError("native serializer received a container event outside of a container")
	}
	return &s.stack[len(s.stack)-1], nil
}

func (s *Serializer) StartSequence(int) error {
	s.stack = append(s.stack, builder{
		elements: []any{},
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
	return s.value(elements)
}

func (s *Serializer) StartMapping(int) error {
	b := builder{
		mapping: true,
		pathLen: len(s.path),
	}
	if s.Ordered {
		b.items = yaml.MapSlice{}
	} else {
		b.entries = map[string]any{}
	}
	s.stack = append(s.stack, b)
	return nil
}

func (s *Serializer) MappingKey() error {
	b, err := s.top()
	if err != nil {
		return err
	}
	b.inKey = true
	s.path = s.path[:b.pathLen]
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
	var result any
	if s.Ordered {
		result = b.items
	} else {
		result = b.entries
	}
	s.path = s.path[:b.pathLen]
	s.stack = s.stack[:len(s.stack)-1]
	return s.value(result)
}
