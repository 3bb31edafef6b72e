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

// Package native converts between value events and plain Go values,
// as produced and consumed by generic libraries:
// nil, booleans, integers, floats, strings, byte slices,
// []any, map[string]any, map[any]any and yaml.MapSlice.
package native

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/onflow/termjson/transcode"
)

// DefaultMaxDepth is the default limit of container nesting.
const DefaultMaxDepth = 512

// Deserializer describes a Go value as a stream of value events.
type Deserializer struct {
	root     any
	next     any
	hasNext  bool
	stack    []cursor
	path     transcode.Path
	err      error
	events   int
	maxDepth int
	started  bool
}

var _ transcode.Deserializer = &Deserializer{}

type cursor struct {
	elements []any
	entries  []entry
	index    int
	pathLen  int
	mapping  bool
	inValue  bool
}

type entry struct {
	key   any
	value any
}

// NewDeserializer returns a deserializer for the given Go value.
// A maxDepth of zero or less selects DefaultMaxDepth.
func NewDeserializer(v any, maxDepth int) *Deserializer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Deserializer{
		root:     v,
		maxDepth: maxDepth,
	}
}

func (d *Deserializer) Position() transcode.Position {
	return transcode.Position{
		Event: d.events,
		Path:  d.path.Copy(),
		Tree:  true,
	}
}

func (d *Deserializer) Next() (transcode.Event, error) {
	if d.err != nil {
		return transcode.Event{}, d.err
	}

	if !d.started {
		d.started = true
		return d.visit(d.root)
	}

	if d.hasNext {
		child := d.next
		d.next = nil
		d.hasNext = false
		return d.visit(child)
	}

	if len(d.stack) == 0 {
		return transcode.Event{}, io.EOF
	}

	c := &d.stack[len(d.stack)-1]
	d.path = d.path[:c.pathLen]

	if c.mapping {
		if c.index == len(c.entries) {
			d.pop()
			return d.emit(transcode.MappingEnd())
		}

		e := c.entries[c.index]
		d.path = append(d.path, transcode.KeyElement(keyName(e.key)))

		if c.inValue {
			c.index++
			c.inValue = false
			d.setNext(e.value)
			return d.emit(transcode.MappingValue())
		}

		c.inValue = true
		d.setNext(e.key)
		return d.emit(transcode.MappingKey())
	}

	if c.index == len(c.elements) {
		d.pop()
		return d.emit(transcode.SequenceEnd())
	}

	d.path = append(d.path, transcode.IndexElement(c.index))
	d.setNext(c.elements[c.index])
	c.index++
	return d.emit(transcode.SequenceElement())
}

func (d *Deserializer) setNext(v any) {
	d.next = v
	d.hasNext = true
}

func (d *Deserializer) emit(event transcode.Event) (transcode.Event, error) {
	d.events++
	return event, nil
}

func (d *Deserializer) fail(err error) (transcode.Event, error) {
	d.err = err
	return transcode.Event{}, err
}

func (d *Deserializer) pop() {
	c := d.stack[len(d.stack)-1]
	d.path = d.path[:c.pathLen]
	d.stack = d.stack[:len(d.stack)-1]
}

func (d *Deserializer) push(c cursor) (transcode.Event, error) {
	if len(d.stack) >= d.maxDepth {
		return d.fail(transcode.NewUnsupportedValueError(
			d.path,
			"nesting exceeds maximum depth of %d",
			d.maxDepth,
		))
	}

	c.pathLen = len(d.path)
	d.stack = append(d.stack, c)

	if c.mapping {
		return d.emit(transcode.MappingStart(len(c.entries)))
	}
	return d.emit(transcode.SequenceStart(len(c.elements)))
}

func (d *Deserializer) visit(v any) (transcode.Event, error) {
	switch v := v.(type) {
	case nil:
		return d.emit(transcode.Unit())
	case bool:
		return d.emit(transcode.Bool(v))

	case int:
		return d.emit(transcode.Int(int64(v), transcode.Width64))
	case int8:
		return d.emit(transcode.Int(int64(v), transcode.Width8))
	case int16:
		return d.emit(transcode.Int(int64(v), transcode.Width16))
	case int32:
		return d.emit(transcode.Int(int64(v), transcode.Width32))
	case int64:
		return d.emit(transcode.Int(v, transcode.Width64))
	case uint:
		return d.emit(transcode.Uint(uint64(v), transcode.Width64))
	case uint8:
		return d.emit(transcode.Uint(uint64(v), transcode.Width8))
	case uint16:
		return d.emit(transcode.Uint(uint64(v), transcode.Width16))
	case uint32:
		return d.emit(transcode.Uint(uint64(v), transcode.Width32))
	case uint64:
		return d.emit(transcode.Uint(v, transcode.Width64))
	case *big.Int:
		return d.visitBigInt(v)

	case float32:
		return d.emit(transcode.Float(float64(v), transcode.Width32))
	case float64:
		return d.emit(transcode.Float(v, transcode.Width64))

	case string:
		return d.emit(transcode.String(v))
	case []byte:
		return d.emit(transcode.Bytes(v))

	case []any:
		return d.push(cursor{elements: v})

	case map[string]any:
		entries := make([]entry, 0, len(v))
		for key, value := range v {
			entries = append(entries, entry{key: key, value: value})
		}
		sortEntries(entries)
		return d.push(cursor{mapping: true, entries: entries})

	case map[any]any:
		entries := make([]entry, 0, len(v))
		for key, value := range v {
			entries = append(entries, entry{key: key, value: value})
		}
		sortEntries(entries)
		return d.push(cursor{mapping: true, entries: entries})

	case yaml.MapSlice:
		entries := make([]entry, 0, len(v))
		for _, item := range v {
			entries = append(entries, entry{key: item.Key, value: item.Value})
		}
		return d.push(cursor{mapping: true, entries: entries})

	default:
		return d.fail(transcode.NewUnsupportedValueError(
			d.path,
			"cannot represent Go value of type %T",
			v,
		))
	}
}

func (d *Deserializer) visitBigInt(v *big.Int) (transcode.Event, error) {
	switch {
	case v.IsInt64():
		return d.emit(transcode.Int(v.Int64(), transcode.Width64))
	case v.IsUint64():
		return d.emit(transcode.Uint(v.Uint64(), transcode.Width64))
	default:
		return d.fail(transcode.NewRangeError(d.path, v.String(), "64-bit integer"))
	}
}

// sortEntries orders the entries of unordered Go maps by key,
// so the events of a map are deterministic.
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return keyName(entries[i].key) < keyName(entries[j].key)
	})
}

// keyName returns the name of a map key, as used in paths.
func keyName(key any) string {
	switch key := key.(type) {
	case string:
		return key
	case int:
		return strconv.Itoa(key)
	case int64:
		return strconv.FormatInt(key, 10)
	case uint64:
		return strconv.FormatUint(key, 10)
	default:
		return fmt.Sprint(key)
	}
}
