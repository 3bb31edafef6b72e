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

package termjson

import (
	"fmt"
	"unicode/utf8"

	"github.com/onflow/termjson/term"
)

// Fuzz decodes the given data, and checks that the decoded term
// survives being encoded and decoded again, in both styles.
//
// It returns 1 if the data is valid JSON text, and 0 otherwise.
// It panics if a decoded term does not round-trip.
func Fuzz(data []byte) int {

	if !utf8.Valid(data) {
		return 0
	}

	value, err := Decode(data)
	if err != nil {
		return 0
	}

	for _, style := range []Style{Compact, Pretty} {
		encoded, err := Encode(value, style)
		if err != nil {
			panic(fmt.Errorf("failed to encode %s: %w", value, err))
		}

		decoded, err := Decode(encoded)
		if err != nil {
			panic(fmt.Errorf("failed to decode %s encoded as %q: %w", style, encoded, err))
		}

		if !term.Equal(value, decoded) {
			panic(fmt.Errorf("values are unequal:\n%s\n%s", value, decoded))
		}
	}

	return 1
}
