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

package common_utils

import (
	"strings"
	"testing"

	"github.com/k0kubun/pp/v3"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
)

func init() {
	pp.ColoringEnabled = false
}

// AssertEqualWithDiff asserts that two objects are equal.
//
// If the objects are not equal, this function prints a human-readable diff.
func AssertEqualWithDiff(t *testing.T, expected, actual any) {
	t.Helper()

	diff := pretty.Diff(expected, actual)

	if len(diff) != 0 {
		s := strings.Builder{}

		for i, d := range diff {
			if i == 0 {
				s.WriteString("diff    : ")
			} else {
				s.WriteString("          ")
			}

			s.WriteString(d)
			s.WriteString("\n")
		}

		t.Errorf(
			"Not equal: \n"+
				"expected: %s\n"+
				"actual  : %s\n\n"+
				"%s",
			pp.Sprint(expected),
			pp.Sprint(actual),
			s.String(),
		)
	}
}

// AssertTermEqual asserts that two terms are equal, see term.Equal.
func AssertTermEqual(t *testing.T, expected, actual term.Term) {
	t.Helper()

	if !term.Equal(expected, actual) {
		t.Errorf(
			"Not equal: \n"+
				"expected: %s\n"+
				"actual  : %s",
			term.Format(expected),
			term.Format(actual),
		)
	}
}

// RequireErrorCategory is a wrapper around require.Error which also ensures
// that the error message can be produced, and that the error has the given category.
func RequireErrorCategory(t *testing.T, err error, category string) {
	t.Helper()

	require.Error(t, err)

	_ = err.Error()

	require.Equal(t, category, transcode.Category(err), "error: %s", err)
}
