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
	"strings"
)

// PathElement is one step from a container into one of its children:
// either a mapping key, or a sequence index.
type PathElement struct {
	Key   string
	Index int
	IsKey bool
}

func KeyElement(key string) PathElement {
	return PathElement{Key: key, IsKey: true}
}

func IndexElement(index int) PathElement {
	return PathElement{Index: index}
}

// Path locates a value inside a structure, starting from the root.
type Path []PathElement

// Copy returns a path which does not share storage with p,
// so it stays valid after the traversal that produced p moves on.
func (p Path) Copy() Path {
	if len(p) == 0 {
		return nil
	}
	result := make(Path, len(p))
	copy(result, p)
	return result
}

// String renders the path in a JSONPath-like notation, e.g. `$.b[1]`.
func (p Path) String() string {
	var builder strings.Builder
	builder.WriteByte('$')
	for _, element := range p {
		if !element.IsKey {
			builder.WriteByte('[')
			builder.WriteString(strconv.Itoa(element.Index))
			builder.WriteByte(']')
			continue
		}

		if isIdentifier(element.Key) {
			builder.WriteByte('.')
			builder.WriteString(element.Key)
		} else {
			builder.WriteByte('[')
			builder.WriteString(strconv.Quote(element.Key))
			builder.WriteByte(']')
		}
	}
	return builder.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			'a' <= r && r <= 'z',
			'A' <= r && r <= 'Z':
			continue
		case '0' <= r && r <= '9' && i > 0:
			continue
		default:
			return false
		}
	}
	return true
}

// Position is the location of a failure inside a source.
//
// Text sources report the byte Offset, tree sources set Tree and report
// the index of the Event and the Path to the value.
type Position struct {
	Path   Path
	Offset int64
	Event  int
	Tree   bool
}

func (p Position) String() string {
	if p.Tree {
		return fmt.Sprintf("event %d (%s)", p.Event, p.Path)
	}
	return fmt.Sprintf("offset %d", p.Offset)
}
