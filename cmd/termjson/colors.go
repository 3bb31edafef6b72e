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

package main

import (
	"github.com/logrusorgru/aurora/v4"
	"github.com/tidwall/pretty"

	"github.com/onflow/termjson/term"
)

type colorizer struct {
	aurora  *aurora.Aurora
	enabled bool
}

func newColorizer(enabled bool) colorizer {
	return colorizer{
		aurora:  aurora.New(aurora.WithColors(enabled)),
		enabled: enabled,
	}
}

func (c colorizer) term(value term.Term) string {
	if value == nil {
		return ""
	}
	return c.aurora.Colorize(value.String(), aurora.YellowFg|aurora.BrightFg).String()
}

func (c colorizer) json(data []byte) []byte {
	if !c.enabled {
		return data
	}
	return pretty.Color(data, nil)
}

func (c colorizer) error(message string) string {
	return c.aurora.Colorize(message, aurora.RedFg|aurora.BrightFg|aurora.BoldFm).String()
}
