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

// Package term models the structured values of the host runtime:
// atoms, integers, floats, binaries, lists, tuples and maps,
// plus the opaque kinds (pids, references, functions) which have
// no data representation.
package term

import (
	"fmt"

	"github.com/onflow/termjson/format"
)

// Term

type Term interface {
	isTerm()
	// Accept describes the term to the visitor,
	// by calling the visitor method matching the kind of the term.
	Accept(Visitor) error
	fmt.Stringer
}

// Visitor has one method per kind of describable term.
type Visitor interface {
	VisitAtom(Atom) error
	VisitInteger(Integer) error
	VisitFloat(Float) error
	VisitBinary(Binary) error
	VisitList(List) error
	VisitTuple(Tuple) error
	VisitMap(*Map) error
}

// Atom

type Atom string

const (
	Nil   Atom = format.Nil
	True  Atom = format.True
	False Atom = format.False
)

func NewBool(b bool) Atom {
	if b {
		return True
	}
	return False
}

func (Atom) isTerm() {}

func (a Atom) Accept(v Visitor) error {
	return v.VisitAtom(a)
}

func (a Atom) String() string {
	return format.Atom(string(a))
}

// Integer

type Integer int64

func (Integer) isTerm() {}

func (i Integer) Accept(v Visitor) error {
	return v.VisitInteger(i)
}

func (i Integer) String() string {
	return fmt.Sprint(int64(i))
}

// Float

type Float float64

func (Float) isTerm() {}

func (f Float) Accept(v Visitor) error {
	return v.VisitFloat(f)
}

func (f Float) String() string {
	return format.Float(float64(f))
}

// Binary is a byte buffer. Strings of the host runtime are UTF-8 binaries.
type Binary []byte

func NewString(s string) Binary {
	return Binary(s)
}

func (Binary) isTerm() {}

func (b Binary) Accept(v Visitor) error {
	return v.VisitBinary(b)
}

func (b Binary) String() string {
	return format.Binary(b)
}

// List

type List []Term

func NewList(elements ...Term) List {
	if elements == nil {
		return List{}
	}
	return elements
}

func (List) isTerm() {}

func (l List) Accept(v Visitor) error {
	return v.VisitList(l)
}

func (l List) String() string {
	return Format(l)
}

// Tuple

type Tuple []Term

func NewTuple(elements ...Term) Tuple {
	if elements == nil {
		return Tuple{}
	}
	return elements
}

func (Tuple) isTerm() {}

func (t Tuple) Accept(v Visitor) error {
	return v.VisitTuple(t)
}

func (t Tuple) String() string {
	return Format(t)
}

// UnsupportedTermError is returned when a term has no data representation.
type UnsupportedTermError struct {
	Term Term
}

func (e *UnsupportedTermError) Error() string {
	return fmt.Sprintf("cannot represent %s", e.Term)
}

// Pid identifies a process of the host runtime.
type Pid struct {
	Node   uint32
	ID     uint32
	Serial uint32
}

func (Pid) isTerm() {}

func (p Pid) Accept(Visitor) error {
	return &UnsupportedTermError{Term: p}
}

func (p Pid) String() string {
	return format.Pid(p.Node, p.ID, p.Serial)
}

// Reference is a unique reference created by the host runtime.
type Reference struct {
	Node uint32
	IDs  [3]uint32
}

func (Reference) isTerm() {}

func (r Reference) Accept(Visitor) error {
	return &UnsupportedTermError{Term: r}
}

func (r Reference) String() string {
	return format.Reference(r.Node, r.IDs)
}

// Function is a reference to a function of the host runtime.
type Function struct {
	Module string
	Name   string
	Arity  int
}

func (Function) isTerm() {}

func (f Function) Accept(Visitor) error {
	return &UnsupportedTermError{Term: f}
}

func (f Function) String() string {
	return format.Function(f.Module, f.Name, f.Arity)
}
