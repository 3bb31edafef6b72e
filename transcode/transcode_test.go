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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/termjson/errors"
)

func TestTranscodeForwardsEvents(t *testing.T) {

	t.Parallel()

	test := func(name string, events ...Event) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var recorder EventRecorder
			err := Transcode(NewEventReader(events...), &recorder)
			require.NoError(t, err)
			assert.Equal(t, events, recorder.Events)
		})
	}

	test("unit", Unit())
	test("bool", Bool(true))
	test("int", Int(-1, Width64))
	test("uint", Uint(1, Width8))
	test("float", Float(1.5, Width32))
	test("string", String("x"))
	test("bytes", Bytes([]byte{1, 2}))
	test("none", None())
	test("some", Some(), Int(1, Width64))
	test("nested some", Some(), Some(), Unit())

	test("empty sequence",
		SequenceStart(0),
		SequenceEnd(),
	)

	test("sequence",
		SequenceStart(UnknownLength),
		SequenceElement(),
		Bool(true),
		SequenceElement(),
		Some(),
		SequenceStart(0),
		SequenceEnd(),
		SequenceEnd(),
	)

	test("mapping",
		MappingStart(2),
		MappingKey(),
		String("a"),
		MappingValue(),
		Int(1, Width64),
		MappingKey(),
		String("b"),
		MappingValue(),
		MappingStart(0),
		MappingEnd(),
		MappingEnd(),
	)

	test("mapping with composite key",
		MappingStart(1),
		MappingKey(),
		SequenceStart(1),
		SequenceElement(),
		Unit(),
		SequenceEnd(),
		MappingValue(),
		None(),
		MappingEnd(),
	)
}

func TestTranscodeRejectsInvalidEvents(t *testing.T) {

	t.Parallel()

	test := func(name string, events ...Event) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var recorder EventRecorder
			err := Transcode(NewEventReader(events...), &recorder)
			require.Error(t, err)

			var invalidErr *InvalidEventError
			require.ErrorAs(t, err, &invalidErr)
			assert.True(t, errors.IsInternalError(err))
			assert.Equal(t, CategoryInternal, Category(err))
		})
	}

	test("element outside of sequence", SequenceElement())
	test("end outside of sequence", SequenceEnd())
	test("key outside of mapping", MappingKey())
	test("invalid kind", Event{})

	test("value without element",
		SequenceStart(1),
		Unit(),
	)

	test("mapping value without key",
		MappingStart(1),
		MappingValue(),
	)

	test("key followed by key",
		MappingStart(1),
		MappingKey(),
		String("a"),
		MappingKey(),
	)

	test("end after key",
		MappingStart(1),
		MappingKey(),
		String("a"),
		MappingEnd(),
	)

	test("mismatched end",
		SequenceStart(0),
		MappingEnd(),
	)

	test("end inside some",
		SequenceStart(1),
		SequenceElement(),
		Some(),
		SequenceEnd(),
	)
}

func TestTranscodeTruncatedSource(t *testing.T) {

	t.Parallel()

	var recorder EventRecorder
	err := Transcode(
		NewEventReader(
			MappingStart(1),
			MappingKey(),
			String("a"),
			MappingValue(),
		),
		&recorder,
	)
	require.Error(t, err)

	var sourceErr *SourceError
	require.ErrorAs(t, err, &sourceErr)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 4, formatErr.Position.Event)
	assert.Equal(t, CategoryFormat, Category(err))
}

func TestTranscodeTrailingEvents(t *testing.T) {

	t.Parallel()

	var recorder EventRecorder
	err := Transcode(NewEventReader(Unit(), Unit()), &recorder)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTrailingData)
	assert.Equal(t, CategoryFormat, Category(err))

	// the first value was already forwarded
	assert.Equal(t, []Event{Unit()}, recorder.Events)
}

type failingSource struct {
	err error
}

func (s failingSource) Next() (Event, error) {
	return Event{}, s.err
}

func (failingSource) Position() Position {
	return Position{Offset: 7}
}

func TestTranscodeSourceFailure(t *testing.T) {

	t.Parallel()

	cause := goErrors.New("read failed")

	var recorder EventRecorder
	err := Transcode(failingSource{err: cause}, &recorder)

	var sourceErr *SourceError
	require.ErrorAs(t, err, &sourceErr)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, recorder.Events)
}

type failingSink struct {
	EventRecorder
	failAfter int
	flushErr  error
}

func (s *failingSink) SerializeBool(v bool) error {
	if len(s.Events) >= s.failAfter {
		return io.ErrShortWrite
	}
	return s.EventRecorder.SerializeBool(v)
}

func (s *failingSink) Flush() error {
	return s.flushErr
}

func TestTranscodeSinkFailure(t *testing.T) {

	t.Parallel()

	t.Run("write", func(t *testing.T) {
		t.Parallel()

		sink := &failingSink{failAfter: 2}
		err := Transcode(
			NewEventReader(
				SequenceStart(2),
				SequenceElement(),
				Bool(true),
				SequenceElement(),
				Bool(false),
				SequenceEnd(),
			),
			sink,
		)

		var sinkErr *SinkError
		require.ErrorAs(t, err, &sinkErr)
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Equal(t, CategorySink, Category(err))

		// partial output is left to the sink
		assert.Equal(t,
			[]Event{
				SequenceStart(2),
				SequenceElement(),
			},
			sink.Events,
		)
	})

	t.Run("flush", func(t *testing.T) {
		t.Parallel()

		sink := &failingSink{failAfter: 10, flushErr: io.ErrClosedPipe}
		err := Transcode(NewEventReader(Bool(true)), sink)

		var sinkErr *SinkError
		require.ErrorAs(t, err, &sinkErr)
		assert.ErrorIs(t, err, io.ErrClosedPipe)
	})
}

func TestEmitInvalidKind(t *testing.T) {

	t.Parallel()

	var recorder EventRecorder
	err := Emit(&recorder, Event{})
	require.Error(t, err)

	var unreachableErr *errors.UnreachableError
	require.ErrorAs(t, err, &unreachableErr)
	assert.Equal(t, CategoryInternal, Category(err))
	assert.Empty(t, recorder.Events)
}

func TestCategory(t *testing.T) {

	t.Parallel()

	path := Path{KeyElement("a"), IndexElement(1)}

	assert.Equal(t, "", Category(nil))
	assert.Equal(t,
		CategoryRange,
		Category(&SinkError{Err: NewRangeError(path, "18446744073709551615", "int64")}),
	)
	assert.Equal(t,
		CategoryUnsupported,
		Category(&SourceError{Err: NewUnsupportedValueError(path, "pid")}),
	)
	assert.Equal(t,
		CategoryFormat,
		Category(fmt.Errorf("wrapped: %w", NewFormatError(Position{}, io.ErrUnexpectedEOF))),
	)
	assert.Equal(t, CategorySink, Category(&SinkError{Err: io.ErrShortWrite}))
	assert.Equal(t, CategoryInternal, Category(goErrors.New("unknown")))
}

func TestErrorMessages(t *testing.T) {

	t.Parallel()

	path := Path{KeyElement("b"), IndexElement(1)}

	assert.Equal(t,
		"unsupported value at $.b[1]: cannot encode pid",
		NewUnsupportedValueError(path, "cannot encode %s", "pid").Error(),
	)
	assert.Equal(t,
		"number 9223372036854775808 at $.b[1] is out of range for int64",
		NewRangeError(path, "9223372036854775808", "int64").Error(),
	)
	assert.Equal(t,
		"invalid input at offset 5: unexpected EOF",
		NewFormatError(Position{Offset: 5}, io.ErrUnexpectedEOF).Error(),
	)
	assert.Equal(t,
		"invalid input at event 3 ($.b[1]): unexpected EOF",
		NewFormatError(Position{Event: 3, Path: path, Tree: true}, io.ErrUnexpectedEOF).Error(),
	)
}

func TestPathString(t *testing.T) {

	t.Parallel()

	assert.Equal(t, "$", Path(nil).String())
	assert.Equal(t, "$.a[0]", Path{KeyElement("a"), IndexElement(0)}.String())
	assert.Equal(t, `$["a b"]["0"]._x1`, Path{KeyElement("a b"), KeyElement("0"), KeyElement("_x1")}.String())
	assert.Equal(t, `$[""]`, Path{KeyElement("")}.String())
}

func TestPathCopy(t *testing.T) {

	t.Parallel()

	path := Path{KeyElement("a")}
	copied := path.Copy()
	path[0] = IndexElement(1)

	assert.Equal(t, Path{KeyElement("a")}, copied)
	assert.Nil(t, Path{}.Copy())
}

func TestEventString(t *testing.T) {

	t.Parallel()

	assert.Equal(t, "Int64(-1)", Int(-1, Width64).String())
	assert.Equal(t, "Uint8(255)", Uint(255, Width8).String())
	assert.Equal(t, "Float64(0.5)", Float(0.5, Width64).String())
	assert.Equal(t, `String("x")`, String("x").String())
	assert.Equal(t, "Bytes(0102)", Bytes([]byte{1, 2}).String())
	assert.Equal(t, "SequenceStart", SequenceStart(UnknownLength).String())
	assert.Equal(t, "MappingStart(2)", MappingStart(2).String())
	assert.Equal(t, "MappingKey", MappingKey().String())
}
