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

// Package query runs jq filters on terms.
package query

import (
	"context"
	goErrors "errors"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/onflow/termjson/encoding/native"
	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
)

// InvalidFilterError is returned when a filter cannot be parsed or compiled.
type InvalidFilterError struct {
	Filter string
	Err    error
}

var _ errors.UserError = &InvalidFilterError{}

func (*InvalidFilterError) IsUserError() {}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.Filter, e.Err)
}

func (e *InvalidFilterError) Unwrap() error {
	return e.Err
}

// FilterError is returned when a filter fails while running.
type FilterError struct {
	Err error
}

var _ errors.UserError = &FilterError{}

func (*FilterError) IsUserError() {}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter failed: %s", e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// Query is a compiled jq filter. It may be run concurrently.
type Query struct {
	code   *gojq.Code
	filter string
}

// Compile parses and compiles the given jq filter.
func Compile(filter string) (*Query, error) {
	parsed, err := gojq.Parse(filter)
	if err != nil {
		return nil, &InvalidFilterError{Filter: filter, Err: err}
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, &InvalidFilterError{Filter: filter, Err: err}
	}

	return &Query{
		code:   code,
		filter: filter,
	}, nil
}

func (q *Query) String() string {
	return q.filter
}

// Run runs the filter on the given term, and returns all outputs.
//
// Maps with keys other than strings, atoms and integers cannot be queried.
func (q *Query) Run(ctx context.Context, value term.Term) ([]term.Term, error) {
	var input native.Serializer
	err := transcode.Transcode(term.NewDeserializer(value, 0), &input)
	if err != nil {
		return nil, err
	}

	var results []term.Term

	iter := q.code.RunWithContext(ctx, input.Result())
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, ok := v.(error); ok {
			var haltErr *gojq.HaltError
			if goErrors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, &FilterError{Err: err}
		}

		var output term.Serializer
		err = transcode.Transcode(native.NewDeserializer(v, 0), &output)
		if err != nil {
			return nil, err
		}
		results = append(results, output.Result())
	}

	return results, nil
}

// Run compiles the given jq filter and runs it on the given term.
func Run(ctx context.Context, filter string, value term.Term) ([]term.Term, error) {
	q, err := Compile(filter)
	if err != nil {
		return nil, err
	}
	return q.Run(ctx, value)
}
