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

// Package format renders host terms in the notation of the host runtime,
// e.g. `%{"a" => [1, nil]}`.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	Nil   = "nil"
	True  = "true"
	False = "false"

	// Elided is rendered in place of values nested deeper than the printer allows.
	Elided = "..."
)

// String returns the double-quoted representation of the given UTF-8 string.
func String(s string) string {
	var builder strings.Builder
	builder.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		case '#':
			builder.WriteString(`\#`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		case '\x1b':
			builder.WriteString(`\e`)
		case 0:
			builder.WriteString(`\0`)
		default:
			if unicode.IsPrint(r) {
				builder.WriteRune(r)
			} else {
				fmt.Fprintf(&builder, `\u{%x}`, r)
			}
		}
	}
	builder.WriteByte('"')
	return builder.String()
}

// Binary returns the representation of a byte buffer.
// Printable UTF-8 is rendered as a string, anything else as a list of bytes.
func Binary(b []byte) string {
	if utf8.Valid(b) && isPrintable(b) {
		return String(string(b))
	}

	var builder strings.Builder
	builder.WriteString("<<")
	for i, c := range b {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(strconv.Itoa(int(c)))
	}
	builder.WriteString(">>")
	return builder.String()
}

func isPrintable(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
		b = b[size:]
	}
	return true
}

// Atom returns the representation of an atom.
// The special atoms nil, true and false are rendered bare.
func Atom(name string) string {
	switch name {
	case Nil, True, False:
		return name
	}
	if isPlainAtom(name) {
		return ":" + name
	}
	return ":" + String(name)
}

func isPlainAtom(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_',
			'a' <= r && r <= 'z',
			'A' <= r && r <= 'Z':
			continue
		case ('0' <= r && r <= '9') || r == '@':
			if i == 0 {
				return false
			}
			continue
		case (r == '?' || r == '!') && i == len(name)-1:
			continue
		default:
			return false
		}
	}
	return true
}

// Float returns the shortest representation of f which reads back as a float,
// i.e. it always has a fractional part or an exponent.
func Float(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Sequence joins already rendered elements between the given delimiters.
func Sequence(open string, elements []string, close string) string {
	var builder strings.Builder
	builder.WriteString(open)
	for i, element := range elements {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(element)
	}
	builder.WriteString(close)
	return builder.String()
}

// Map returns the representation of a map, given already rendered pairs.
func Map(pairs []MapPair) string {
	elements := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		elements = append(elements, pair.Key+" => "+pair.Value)
	}
	return Sequence("%{", elements, "}")
}

type MapPair struct {
	Key   string
	Value string
}

func Pid(node uint32, id uint32, serial uint32) string {
	return fmt.Sprintf("#PID<%d.%d.%d>", node, id, serial)
}

func Reference(node uint32, ids [3]uint32) string {
	return fmt.Sprintf("#Reference<%d.%d.%d.%d>", node, ids[0], ids[1], ids[2])
}

func Function(module string, name string, arity int) string {
	return fmt.Sprintf("&%s.%s/%d", module, name, arity)
}
