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

// Package nif describes the functions exported to the host runtime,
// and how their results and failures cross the boundary as terms.
package nif

import (
	goErrors "errors"
	"fmt"

	"github.com/onflow/termjson"
	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
)

// Schedule tells the host runtime where a function must run.
type Schedule uint8

const (
	// ScheduleNormal functions run on the regular schedulers.
	ScheduleNormal Schedule = iota
	// ScheduleDirtyCPU functions run on the dirty CPU schedulers,
	// so long running calls do not block the regular schedulers.
	ScheduleDirtyCPU
)

func (s Schedule) String() string {
	switch s {
	case ScheduleNormal:
		return "normal"
	case ScheduleDirtyCPU:
		return "dirty_cpu"
	}
	return fmt.Sprintf("Schedule(%d)", s)
}

// Operation is the operation a function performs.
type Operation uint8

const (
	OperationDecode Operation = iota
	OperationEncode
)

// Env is the environment a function is called in.
type Env struct {
	Codec termjson.Codec
}

type implementation func(env Env, args []term.Term) (term.Term, error)

// Function is an exported function.
type Function struct {
	Name      string
	Arity     int
	Schedule  Schedule
	Operation Operation
	impl      implementation
}

func (f *Function) String() string {
	return fmt.Sprintf("%s/%d", f.Name, f.Arity)
}

// Names of the exported functions.
const (
	DecodeJSON             = "decode_json"
	DecodeJSONDirty        = "decode_json_dirty"
	EncodeJSONCompact      = "encode_json_compact"
	EncodeJSONCompactDirty = "encode_json_compact_dirty"
	EncodeJSONPretty       = "encode_json_pretty"
	EncodeJSONPrettyDirty  = "encode_json_pretty_dirty"
)

const errorAtom = term.Atom("error")

// Functions is the function table, in export order.
var Functions = []*Function{
	{
		Name:      DecodeJSON,
		Arity:     1,
		Schedule:  ScheduleNormal,
		Operation: OperationDecode,
		impl:      decode,
	},
	{
		Name:      DecodeJSONDirty,
		Arity:     1,
		Schedule:  ScheduleDirtyCPU,
		Operation: OperationDecode,
		impl:      decode,
	},
	{
		Name:      EncodeJSONCompact,
		Arity:     1,
		Schedule:  ScheduleNormal,
		Operation: OperationEncode,
		impl:      encoder(termjson.Compact),
	},
	{
		Name:      EncodeJSONCompactDirty,
		Arity:     1,
		Schedule:  ScheduleDirtyCPU,
		Operation: OperationEncode,
		impl:      encoder(termjson.Compact),
	},
	{
		Name:      EncodeJSONPretty,
		Arity:     1,
		Schedule:  ScheduleNormal,
		Operation: OperationEncode,
		impl:      encoder(termjson.Pretty),
	},
	{
		Name:      EncodeJSONPrettyDirty,
		Arity:     1,
		Schedule:  ScheduleDirtyCPU,
		Operation: OperationEncode,
		impl:      encoder(termjson.Pretty),
	},
}

var functionsByName = func() map[string]*Function {
	functions := make(map[string]*Function, len(Functions))
	for _, function := range Functions {
		functions[function.Name] = function
	}
	return functions
}()

// Lookup returns the exported function with the given name.
func Lookup(name string) (*Function, bool) {
	function, ok := functionsByName[name]
	return function, ok
}

func decode(env Env, args []term.Term) (term.Term, error) {
	data, ok := args[0].(term.Binary)
	if !ok {
		return nil, &BadArgumentError{
			Index:    0,
			Argument: args[0],
			Expected: "a binary",
		}
	}
	return env.Codec.Decode(data)
}

func encoder(style termjson.Style) implementation {
	return func(env Env, args []term.Term) (term.Term, error) {
		data, err := env.Codec.Encode(args[0], style)
		if err != nil {
			return nil, err
		}
		return term.Binary(data), nil
	}
}

// Call calls the given function with the given arguments.
//
// Call never panics: a panic raised by the function is returned
// as an internal error.
func Call(env Env, function *Function, args ...term.Term) (result term.Term, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		recovered, ok := r.(error)
		if !ok {
			recovered = errors.NewExternalError(r)
		}
		result = nil
		err = &PanicError{
			Function: function.Name,
			Err:      recovered,
		}
	}()

	if len(args) != function.Arity {
		return nil, &BadArgumentError{
			Function: function.Name,
			Index:    -1,
			Expected: fmt.Sprintf("%d arguments, got %d", function.Arity, len(args)),
		}
	}

	result, err = function.impl(env, args)
	var badArgumentErr *BadArgumentError
	if goErrors.As(err, &badArgumentErr) {
		badArgumentErr.Function = function.Name
	}
	return result, err
}

// BadArgumentError is returned when a function is called
// with an argument of the wrong kind, or with the wrong number of arguments.
type BadArgumentError struct {
	Function string
	// Index is the index of the offending argument,
	// or -1 if the number of arguments is wrong.
	Index    int
	Argument term.Term
	Expected string
}

var _ errors.UserError = &BadArgumentError{}

func (*BadArgumentError) IsUserError() {}

func (e *BadArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: expected %s", e.Function, e.Expected)
	}
	return fmt.Sprintf(
		"%s: argument %d must be %s, got %s",
		e.Function,
		e.Index+1,
		e.Expected,
		e.Argument,
	)
}

// PanicError is returned when a function panicked.
// A recovered value which is not an error is wrapped in an errors.ExternalError.
type PanicError struct {
	Function string
	Err      error
}

var _ errors.InternalError = &PanicError{}

func (*PanicError) IsInternalError() {}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %s", e.Function, e.Err)
}

func (e *PanicError) Unwrap() error {
	return e.Err
}

// UnknownFunctionError is returned when no function with the given name
// is exported.
type UnknownFunctionError struct {
	Name string
}

var _ errors.UserError = &UnknownFunctionError{}

func (*UnknownFunctionError) IsUserError() {}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Name)
}

// Category returns the stable category tag of the given error.
func Category(err error) string {
	var badArgumentErr *BadArgumentError
	var unknownFunctionErr *UnknownFunctionError
	var panicErr *PanicError

	switch {
	case err == nil:
		return ""
	case goErrors.As(err, &panicErr):
		return transcode.CategoryInternal
	case goErrors.As(err, &badArgumentErr),
		goErrors.As(err, &unknownFunctionErr):
		return transcode.CategoryBadArgument
	default:
		return transcode.Category(err)
	}
}

// ErrorTerm returns the term describing the given error to the host runtime,
// the tuple {:error, category, message}.
func ErrorTerm(err error) term.Term {
	return term.NewTuple(
		errorAtom,
		term.Atom(Category(err)),
		term.NewString(err.Error()),
	)
}

// Result returns the term describing the outcome of a call:
// the result itself on success, or the error term on failure.
func Result(result term.Term, err error) term.Term {
	if err != nil {
		return ErrorTerm(err)
	}
	return result
}
