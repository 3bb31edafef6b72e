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
	goErrors "errors"
	"fmt"

	"github.com/onflow/termjson/errors"
)

// Error categories are stable tags which are exposed to the host runtime.
const (
	CategoryFormat      = "format_error"
	CategoryUnsupported = "unsupported_value"
	CategoryRange       = "range_error"
	CategorySink        = "sink_error"
	CategoryBadArgument = "badarg"
	CategoryInternal    = "internal_error"
)

var ErrTrailingData = goErrors.New("unexpected data after top-level value")

// FormatError is reported when the input is malformed:
// invalid UTF-8, invalid JSON, or a truncated stream.
type FormatError struct {
	Err      error
	Position Position
}

var _ errors.UserError = &FormatError{}

func NewFormatError(position Position, err error) *FormatError {
	return &FormatError{
		Position: position,
		Err:      err,
	}
}

func (*FormatError) IsUserError() {}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid input at %s: %s", e.Position, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UnsupportedValueError is reported when a value has a shape
// the target model cannot represent.
type UnsupportedValueError struct {
	Reason string
	Path   Path
}

var _ errors.UserError = &UnsupportedValueError{}

func NewUnsupportedValueError(path Path, reason string, args ...any) *UnsupportedValueError {
	return &UnsupportedValueError{
		Path:   path.Copy(),
		Reason: fmt.Sprintf(reason, args...),
	}
}

func (*UnsupportedValueError) IsUserError() {}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value at %s: %s", e.Path, e.Reason)
}

// RangeError is reported when a number does not fit
// the representation of the target.
type RangeError struct {
	Value  string
	Target string
	Path   Path
}

var _ errors.UserError = &RangeError{}

func NewRangeError(path Path, value string, target string) *RangeError {
	return &RangeError{
		Path:   path.Copy(),
		Value:  value,
		Target: target,
	}
}

func (*RangeError) IsUserError() {}

func (e *RangeError) Error() string {
	return fmt.Sprintf("number %s at %s is out of range for %s", e.Value, e.Path, e.Target)
}

// SourceError wraps a failure of the Deserializer.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// SinkError wraps a failure of the Serializer, e.g. a rejected write.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to write output: %s", e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// InvalidEventError is reported when a Deserializer produces an event
// that violates the nesting rules of the event stream.
type InvalidEventError struct {
	Expected string
	Event    Event
}

var _ errors.InternalError = &InvalidEventError{}

func (*InvalidEventError) IsInternalError() {}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event %s: expected %s", e.Event, e.Expected)
}

// Category returns the stable category tag of the given error.
//
// The most specific cause wins, e.g. a RangeError raised by a sink
// is reported as CategoryRange, not CategorySink.
func Category(err error) string {
	var rangeErr *RangeError
	var unsupportedErr *UnsupportedValueError
	var formatErr *FormatError
	var sinkErr *SinkError

	switch {
	case err == nil:
		return ""
	case goErrors.As(err, &rangeErr):
		return CategoryRange
	case goErrors.As(err, &unsupportedErr):
		return CategoryUnsupported
	case goErrors.As(err, &formatErr):
		return CategoryFormat
	case errors.IsInternalError(err):
		return CategoryInternal
	case goErrors.As(err, &sinkErr):
		return CategorySink
	default:
		return CategoryInternal
	}
}
