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
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/onflow/termjson/common/orderedmap"
)

// Map is a map term which keeps its entries in insertion order.
type Map struct {
	entries orderedmap.OrderedMap[string, MapEntry]
}

type MapEntry struct {
	Key   Term
	Value Term
}

func NewMap(entries ...MapEntry) *Map {
	m := &Map{}
	for _, entry := range entries {
		m.Set(entry.Key, entry.Value)
	}
	return m
}

func (*Map) isTerm() {}

func (m *Map) Accept(v Visitor) error {
	return v.VisitMap(m)
}

func (m *Map) String() string {
	return Format(m)
}

// keyID returns the identity of a key: keys are equal
// if and only if they have the same kind and contents, at any depth.
func keyID(key Term) string {
	var b strings.Builder
	writeKeyID(&b, key, nil)
	return b.String()
}

// writeKeyID writes the identity of t. Containers which are already
// being written are written as a back reference to their depth.
func writeKeyID(b *strings.Builder, t Term, ancestors []any) {
	var id any
	switch t := t.(type) {
	case List:
		if len(t) > 0 {
			id = sliceID{data: unsafe.SliceData(t), length: len(t)}
		}
	case Tuple:
		if len(t) > 0 {
			id = sliceID{data: unsafe.SliceData(t), length: len(t), tuple: true}
		}
	case *Map:
		id = t
	}

	if id != nil {
		for depth, ancestor := range ancestors {
			if ancestor == id {
				b.WriteByte('^')
				b.WriteString(strconv.Itoa(depth))
				return
			}
		}
		ancestors = append(ancestors, id)
	}

	switch t := t.(type) {
	case List:
		writeElementsID(b, "[", t, "]", ancestors)
	case Tuple:
		writeElementsID(b, "{", t, "}", ancestors)
	case *Map:
		b.WriteString("%{")
		t.Foreach(func(key Term, value Term) {
			writeKeyID(b, key, ancestors)
			b.WriteString("=>")
			writeKeyID(b, value, ancestors)
			b.WriteByte(',')
		})
		b.WriteByte('}')
	default:
		fmt.Fprintf(b, "%T:%v", t, t)
	}
}

func writeElementsID(b *strings.Builder, open string, elements []Term, close string, ancestors []any) {
	b.WriteString(open)
	for _, element := range elements {
		writeKeyID(b, element, ancestors)
		b.WriteByte(',')
	}
	b.WriteString(close)
}

// Set associates value with key. An existing key keeps its position.
func (m *Map) Set(key Term, value Term) {
	m.entries.Set(
		keyID(key),
		MapEntry{
			Key:   key,
			Value: value,
		},
	)
}

// Get returns the value associated with key.
func (m *Map) Get(key Term) (Term, bool) {
	entry, ok := m.entries.Get(keyID(key))
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// Delete removes key from the map.
func (m *Map) Delete(key Term) bool {
	_, ok := m.entries.Delete(keyID(key))
	return ok
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.entries.Len()
}

// Entry returns the i-th entry, in insertion order.
func (m *Map) Entry(i int) MapEntry {
	return m.entries.At(i).Value
}

// Foreach iterates over the entries in insertion order.
func (m *Map) Foreach(f func(key Term, value Term)) {
	if m == nil {
		return
	}
	m.entries.Foreach(func(_ string, entry MapEntry) {
		f(entry.Key, entry.Value)
	})
}
