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
	goErrors "errors"
	"io"
	"strconv"
	"unicode/utf8"
	"unsafe"

	"github.com/onflow/termjson/transcode"
)

// DefaultMaxDepth is the default limit of container nesting.
const DefaultMaxDepth = 512

// Deserializer describes a term as a stream of value events.
//
// The term is traversed lazily with an explicit stack,
// one event per call of Next.
type Deserializer struct {
	root      Term
	next      Term
	stack     []cursor
	ancestors map[any]struct{}
	path      transcode.Path
	err       error
	event     transcode.Event
	events    int
	maxDepth  int
	started   bool
}

var _ transcode.Deserializer = &Deserializer{}
var _ Visitor = &Deserializer{}

type cursor struct {
	elements []Term
	m        *Map
	id       any
	index    int
	pathLen  int
	inValue  bool
}

func (c *cursor) isMap() bool {
	return c.m != nil
}

// NewDeserializer returns a deserializer for the given term.
// A maxDepth of zero or less selects DefaultMaxDepth.
func NewDeserializer(t Term, maxDepth int) *Deserializer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Deserializer{
		root:      t,
		maxDepth:  maxDepth,
		ancestors: map[any]struct{}{},
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

	if d.next != nil {
		child := d.next
		d.next = nil
		return d.visit(child)
	}

	if len(d.stack) == 0 {
		return transcode.Event{}, io.EOF
	}

	c := &d.stack[len(d.stack)-1]
	d.path = d.path[:c.pathLen]

	if c.isMap() {
		if c.inValue {
			entry := c.m.Entry(c.index)
			c.index++
			c.inValue = false
			d.path = append(d.path, transcode.KeyElement(keyName(entry.Key)))
			d.next = entry.Value
			return d.emit(transcode.MappingValue())
		}

		if c.index == c.m.Len() {
			d.pop()
			return d.emit(transcode.MappingEnd())
		}

		entry := c.m.Entry(c.index)
		c.inValue = true
		d.path = append(d.path, transcode.KeyElement(keyName(entry.Key)))
		d.next = entry.Key
		return d.emit(transcode.MappingKey())
	}

	if c.index == len(c.elements) {
		d.pop()
		return d.emit(transcode.SequenceEnd())
	}

	d.path = append(d.path, transcode.IndexElement(c.index))
	d.next = c.elements[c.index]
	c.index++
	return d.emit(transcode.SequenceElement())
}

func (d *Deserializer) emit(event transcode.Event) (transcode.Event, error) {
	d.events++
	return event, nil
}

func (d *Deserializer) fail(err error) (transcode.Event, error) {
	d.err = err
	return transcode.Event{}, err
}

func (d *Deserializer) visit(t Term) (transcode.Event, error) {
	if t == nil {
		return d.fail(transcode.NewUnsupportedValueError(d.path, "missing term"))
	}

	err := t.Accept(d)
	if err != nil {
		var unsupportedErr *UnsupportedTermError
		if goErrors.As(err, &unsupportedErr) {
			err = transcode.NewUnsupportedValueError(d.path, "%s", unsupportedErr.Error())
		}
		return d.fail(err)
	}

	return d.emit(d.event)
}

func (d *Deserializer) pop() {
	c := d.stack[len(d.stack)-1]
	if c.id != nil {
		delete(d.ancestors, c.id)
	}
	d.path = d.path[:c.pathLen]
	d.stack = d.stack[:len(d.stack)-1]
}

func (d *Deserializer) push(c cursor) error {
	if len(d.stack) >= d.maxDepth {
		return transcode.NewUnsupportedValueError(
			d.path,
			"nesting exceeds maximum depth of %d",
			d.maxDepth,
		)
	}

	if c.id != nil {
		if _, ok := d.ancestors[c.id]; ok {
			return transcode.NewUnsupportedValueError(d.path, "cyclic reference")
		}
		d.ancestors[c.id] = struct{}{}
	}

	c.pathLen = len(d.path)
	d.stack = append(d.stack, c)
	return nil
}

// sliceID identifies the storage of a list or tuple.
type sliceID struct {
	data   *Term
	length int
	tuple  bool
}

func (d *Deserializer) VisitAtom(a Atom) error {
	switch a {
	case Nil:
		d.event = transcode.Unit()
	case True:
		d.event = transcode.Bool(true)
	case False:
		d.event = transcode.Bool(false)
	default:
		if !utf8.ValidString(string(a)) {
			return transcode.NewUnsupportedValueError(d.path, "atom name is not valid UTF-8")
		}
		d.event = transcode.String(string(a))
	}
	return nil
}

func (d *Deserializer) VisitInteger(i Integer) error {
	d.event = transcode.Int(int64(i), transcode.Width64)
	return nil
}

func (d *Deserializer) VisitFloat(f Float) error {
	d.event = transcode.Float(float64(f), transcode.Width64)
	return nil
}

func (d *Deserializer) VisitBinary(b Binary) error {
	if utf8.Valid(b) {
		d.event = transcode.String(string(b))
	} else {
		d.event = transcode.Bytes(b)
	}
	return nil
}

func (d *Deserializer) visitElements(elements []Term, tuple bool) error {
	var id any
	if len(elements) > 0 {
		id = sliceID{
			data:   unsafe.SliceData(elements),
			length: len(elements),
			tuple:  tuple,
		}
	}

	err := d.push(cursor{
		elements: elements,
		id:       id,
	})
	if err != nil {
		return err
	}

	d.event = transcode.SequenceStart(len(elements))
	return nil
}

func (d *Deserializer) VisitList(l List) error {
	return d.visitElements(l, false)
}

func (d *Deserializer) VisitTuple(t Tuple) error {
	return d.visitElements(t, true)
}

func (d *Deserializer) VisitMap(m *Map) error {
	if m == nil {
		m = &Map{}
	}

	err := d.push(cursor{
		m:  m,
		id: m,
	})
	if err != nil {
		return err
	}

	d.event = transcode.MappingStart(m.Len())
	return nil
}

// keyName returns the name of a map key, as used in paths.
func keyName(key Term) string {
	switch key := key.(type) {
	case Binary:
		return string(key)
	case Atom:
		return string(key)
	case Integer:
		return strconv.FormatInt(int64(key), 10)
	default:
		return Format(key)
	}
}
