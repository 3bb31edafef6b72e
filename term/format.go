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
	"bytes"

	"github.com/onflow/termjson/format"
)

// maxFormatDepth bounds the rendering of nested terms,
// so rendering a cyclic term terminates.
const maxFormatDepth = 64

// Format renders the given term in the notation of the host runtime.
func Format(t Term) string {
	return formatTerm(t, 0)
}

func formatTerm(t Term, depth int) string {
	if depth > maxFormatDepth {
		return format.Elided
	}

	switch t := t.(type) {
	case nil:
		return format.Nil
	case List:
		return format.Sequence("[", formatElements(t, depth), "]")
	case Tuple:
		return format.Sequence("{", formatElements(t, depth), "}")
	case *Map:
		pairs := make([]format.MapPair, 0, t.Len())
		t.Foreach(func(key Term, value Term) {
			pairs = append(pairs, format.MapPair{
				Key:   formatTerm(key, depth+1),
				Value: formatTerm(value, depth+1),
			})
		})
		return format.Map(pairs)
	default:
		return t.String()
	}
}

func formatElements(elements []Term, depth int) []string {
	result := make([]string, 0, len(elements))
	for _, element := range elements {
		result = append(result, formatTerm(element, depth+1))
	}
	return result
}

// Equal returns true if both terms have the same kind and contents.
// Map entries are compared in order.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Atom:
		b, ok := b.(Atom)
		return ok && a == b
	case Integer:
		b, ok := b.(Integer)
		return ok && a == b
	case Float:
		b, ok := b.(Float)
		return ok && a == b
	case Binary:
		b, ok := b.(Binary)
		return ok && bytes.Equal(a, b)
	case List:
		b, ok := b.(List)
		return ok && equalElements(a, b)
	case Tuple:
		b, ok := b.(Tuple)
		return ok && equalElements(a, b)
	case *Map:
		b, ok := b.(*Map)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			entryA := a.Entry(i)
			entryB := b.Entry(i)
			if !Equal(entryA.Key, entryB.Key) ||
				!Equal(entryA.Value, entryB.Value) {
				return false
			}
		}
		return true
	case Pid:
		b, ok := b.(Pid)
		return ok && a == b
	case Reference:
		b, ok := b.(Reference)
		return ok && a == b
	case Function:
		b, ok := b.(Function)
		return ok && a == b
	default:
		return false
	}
}

func equalElements(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
