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

package json

import (
	"bytes"
	goErrors "errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/termjson/transcode"
)

type decodeTest struct {
	name     string
	json     string
	expected []transcode.Event
}

func testAllDecode(t *testing.T, tests ...decodeTest) {
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var recorder transcode.EventRecorder
			err := transcode.Transcode(NewBytesDeserializer([]byte(test.json)), &recorder)
			require.NoError(t, err)
			assert.Equal(t, test.expected, recorder.Events)
		})
	}
}

func TestDecodeScalars(t *testing.T) {

	t.Parallel()

	testAllDecode(t,
		decodeTest{"null", `null`, []transcode.Event{transcode.Unit()}},
		decodeTest{"true", `true`, []transcode.Event{transcode.Bool(true)}},
		decodeTest{"false", ` false `, []transcode.Event{transcode.Bool(false)}},
		decodeTest{"string", `"a\nbé"`, []transcode.Event{transcode.String("a\nbé")}},
		decodeTest{"zero", `0`, []transcode.Event{transcode.Int(0, transcode.Width64)}},
		decodeTest{"negative", `-12`, []transcode.Event{transcode.Int(-12, transcode.Width64)}},
		decodeTest{
			"min int64",
			`-9223372036854775808`,
			[]transcode.Event{transcode.Int(math.MinInt64, transcode.Width64)},
		},
		decodeTest{
			"max int64",
			`9223372036854775807`,
			[]transcode.Event{transcode.Int(math.MaxInt64, transcode.Width64)},
		},
		decodeTest{
			"beyond int64",
			`9223372036854775808`,
			[]transcode.Event{transcode.Uint(math.MaxInt64+1, transcode.Width64)},
		},
		decodeTest{"float", `1.5`, []transcode.Event{transcode.Float(1.5, transcode.Width64)}},
		decodeTest{"integral float", `1.0`, []transcode.Event{transcode.Float(1, transcode.Width64)}},
		decodeTest{"exponent", `1e3`, []transcode.Event{transcode.Float(1000, transcode.Width64)}},
	)
}

func TestDecodeContainers(t *testing.T) {

	t.Parallel()

	testAllDecode(t,
		decodeTest{
			"empty array",
			`[]`,
			[]transcode.Event{
				transcode.SequenceStart(transcode.UnknownLength),
				transcode.SequenceEnd(),
			},
		},
		decodeTest{
			"empty object",
			`{ }`,
			[]transcode.Event{
				transcode.MappingStart(transcode.UnknownLength),
				transcode.MappingEnd(),
			},
		},
		decodeTest{
			"nested",
			`{"a":1,"b":[true,null,"x"]}`,
			[]transcode.Event{
				transcode.MappingStart(transcode.UnknownLength),
				transcode.MappingKey(),
				transcode.String("a"),
				transcode.MappingValue(),
				transcode.Int(1, transcode.Width64),
				transcode.MappingKey(),
				transcode.String("b"),
				transcode.MappingValue(),
				transcode.SequenceStart(transcode.UnknownLength),
				transcode.SequenceElement(),
				transcode.Bool(true),
				transcode.SequenceElement(),
				transcode.Unit(),
				transcode.SequenceElement(),
				transcode.String("x"),
				transcode.SequenceEnd(),
				transcode.MappingEnd(),
			},
		},
		decodeTest{
			"array of arrays",
			"[[],\n\t[{}]]",
			[]transcode.Event{
				transcode.SequenceStart(transcode.UnknownLength),
				transcode.SequenceElement(),
				transcode.SequenceStart(transcode.UnknownLength),
				transcode.SequenceEnd(),
				transcode.SequenceElement(),
				transcode.SequenceStart(transcode.UnknownLength),
				transcode.SequenceElement(),
				transcode.MappingStart(transcode.UnknownLength),
				transcode.MappingEnd(),
				transcode.SequenceEnd(),
				transcode.SequenceEnd(),
			},
		},
	)
}

func decodeError(t *testing.T, json string, options ...Option) error {
	t.Helper()

	var recorder transcode.EventRecorder
	err := transcode.Transcode(NewBytesDeserializer([]byte(json), options...), &recorder)
	require.Error(t, err)
	return err
}

func TestDecodeInvalid(t *testing.T) {

	t.Parallel()

	test := func(name string, json string) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := decodeError(t, json)

			var formatErr *transcode.FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, transcode.CategoryFormat, transcode.Category(err))
		})
	}

	test("empty", ``)
	test("whitespace only", "  \n")
	test("truncated object", `{"a":`)
	test("truncated array", `[1,2`)
	test("truncated string", `"abc`)
	test("missing colon", `{"a" 1}`)
	test("trailing comma", `[1,]`)
	test("single quotes", `'a'`)
	test("leading zero", `01`)
	test("bare word", `nul`)
	test("invalid UTF-8", "\"\xff\"")
	test("trailing value", `1 2`)
	test("trailing garbage", `{} x`)
}

func TestDecodeTruncatedOffset(t *testing.T) {

	t.Parallel()

	err := decodeError(t, `{"a":`)

	var formatErr *transcode.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.True(t, goErrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "$.a", formatErr.Position.Path.String())
}

func TestDecodeTrailingData(t *testing.T) {

	t.Parallel()

	err := decodeError(t, `[] []`)
	assert.ErrorIs(t, err, transcode.ErrTrailingData)
}

func TestDecodeRange(t *testing.T) {

	t.Parallel()

	test := func(name string, json string, path string) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := decodeError(t, json)

			var rangeErr *transcode.RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, path, rangeErr.Path.String())
			assert.Equal(t, transcode.CategoryRange, transcode.Category(err))
		})
	}

	test("beyond uint64", `18446744073709551616`, "$")
	test("below int64", `-9223372036854775809`, "$")
	test("nested", `{"a":[0,1e400]}`, "$.a[1]")
}

func TestDecodeMaxDepth(t *testing.T) {

	t.Parallel()

	var recorder transcode.EventRecorder
	err := transcode.Transcode(
		NewBytesDeserializer([]byte(`[[1]]`), WithMaxDepth(2)),
		&recorder,
	)
	require.NoError(t, err)

	err = decodeError(t, `[[[1]]]`, WithMaxDepth(2))
	assert.ErrorIs(t, err, ErrMaxDepth)
	assert.Equal(t, transcode.CategoryFormat, transcode.Category(err))
}

type encodeTest struct {
	name     string
	events   []transcode.Event
	expected string
}

func testAllEncode(t *testing.T, style Style, tests ...encodeTest) {
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var w bytes.Buffer
			err := transcode.Transcode(
				transcode.NewEventReader(test.events...),
				NewSerializer(&w, style),
			)
			require.NoError(t, err)
			assert.Equal(t, test.expected, w.String())
		})
	}
}

var scenarioEvents = []transcode.Event{
	transcode.MappingStart(2),
	transcode.MappingKey(),
	transcode.String("a"),
	transcode.MappingValue(),
	transcode.Int(1, transcode.Width64),
	transcode.MappingKey(),
	transcode.String("b"),
	transcode.MappingValue(),
	transcode.SequenceStart(3),
	transcode.SequenceElement(),
	transcode.Bool(true),
	transcode.SequenceElement(),
	transcode.Unit(),
	transcode.SequenceElement(),
	transcode.String("x"),
	transcode.SequenceEnd(),
	transcode.MappingEnd(),
}

var numbersEvents = []transcode.Event{
	transcode.SequenceStart(3),
	transcode.SequenceElement(),
	transcode.Int(1, transcode.Width64),
	transcode.SequenceElement(),
	transcode.Int(2, transcode.Width64),
	transcode.SequenceElement(),
	transcode.Int(3, transcode.Width64),
	transcode.SequenceEnd(),
}

func TestEncodeCompact(t *testing.T) {

	t.Parallel()

	testAllEncode(t, Compact,
		encodeTest{"null", []transcode.Event{transcode.Unit()}, `null`},
		encodeTest{"none", []transcode.Event{transcode.None()}, `null`},
		encodeTest{"some", []transcode.Event{transcode.Some(), transcode.Bool(true)}, `true`},
		encodeTest{"int", []transcode.Event{transcode.Int(math.MinInt64, transcode.Width64)}, `-9223372036854775808`},
		encodeTest{"uint", []transcode.Event{transcode.Uint(math.MaxUint64, transcode.Width64)}, `18446744073709551615`},
		encodeTest{"float", []transcode.Event{transcode.Float(0.5, transcode.Width64)}, `0.5`},
		encodeTest{"integral float", []transcode.Event{transcode.Float(2, transcode.Width64)}, `2.0`},
		encodeTest{"large float", []transcode.Event{transcode.Float(1e21, transcode.Width64)}, `1e+21`},
		encodeTest{"float32", []transcode.Event{transcode.Float(float64(float32(0.1)), transcode.Width32)}, `0.1`},
		encodeTest{"string", []transcode.Event{transcode.String("a\"b\n<")}, `"a\"b\n<"`},
		encodeTest{"bytes", []transcode.Event{transcode.Bytes([]byte{0, 255})}, `[0,255]`},
		encodeTest{"numbers", numbersEvents, `[1,2,3]`},
		encodeTest{"scenario", scenarioEvents, `{"a":1,"b":[true,null,"x"]}`},
		encodeTest{
			"integer keys",
			[]transcode.Event{
				transcode.MappingStart(1),
				transcode.MappingKey(),
				transcode.Int(-1, transcode.Width64),
				transcode.MappingValue(),
				transcode.MappingStart(0),
				transcode.MappingEnd(),
				transcode.MappingEnd(),
			},
			`{"-1":{}}`,
		},
		encodeTest{
			"same key in sibling objects",
			[]transcode.Event{
				transcode.SequenceStart(2),
				transcode.SequenceElement(),
				transcode.MappingStart(1),
				transcode.MappingKey(),
				transcode.String("a"),
				transcode.MappingValue(),
				transcode.Int(0, transcode.Width64),
				transcode.MappingEnd(),
				transcode.SequenceElement(),
				transcode.MappingStart(1),
				transcode.MappingKey(),
				transcode.String("a"),
				transcode.MappingValue(),
				transcode.Int(1, transcode.Width64),
				transcode.MappingEnd(),
				transcode.SequenceEnd(),
			},
			`[{"a":0},{"a":1}]`,
		},
	)
}

func TestEncodePretty(t *testing.T) {

	t.Parallel()

	testAllEncode(t, Pretty,
		encodeTest{"scalar", []transcode.Event{transcode.Int(1, transcode.Width64)}, `1`},
		encodeTest{"numbers", numbersEvents, "[\n  1,\n  2,\n  3\n]"},
		encodeTest{
			"scenario",
			scenarioEvents,
			"{\n  \"a\": 1,\n  \"b\": [\n    true,\n    null,\n    \"x\"\n  ]\n}",
		},
		encodeTest{
			"empty containers",
			[]transcode.Event{
				transcode.SequenceStart(2),
				transcode.SequenceElement(),
				transcode.SequenceStart(0),
				transcode.SequenceEnd(),
				transcode.SequenceElement(),
				transcode.MappingStart(0),
				transcode.MappingEnd(),
				transcode.SequenceEnd(),
			},
			"[\n  [],\n  {}\n]",
		},
	)
}

func encodeError(t *testing.T, events ...transcode.Event) error {
	t.Helper()

	var w bytes.Buffer
	err := transcode.Transcode(
		transcode.NewEventReader(events...),
		NewSerializer(&w, Compact),
	)
	require.Error(t, err)
	assert.Empty(t, w.Bytes())
	return err
}

func TestEncodeUnsupported(t *testing.T) {

	t.Parallel()

	t.Run("NaN", func(t *testing.T) {
		t.Parallel()

		err := encodeError(t,
			transcode.SequenceStart(1),
			transcode.SequenceElement(),
			transcode.Float(math.NaN(), transcode.Width64),
			transcode.SequenceEnd(),
		)

		var unsupportedErr *transcode.UnsupportedValueError
		require.ErrorAs(t, err, &unsupportedErr)
		assert.Equal(t, "$[0]", unsupportedErr.Path.String())
	})

	t.Run("infinity", func(t *testing.T) {
		t.Parallel()

		err := encodeError(t, transcode.Float(math.Inf(-1), transcode.Width64))

		var rangeErr *transcode.RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, "-Inf", rangeErr.Value)
		assert.Equal(t, transcode.CategoryRange, transcode.Category(err))
	})

	t.Run("boolean key", func(t *testing.T) {
		t.Parallel()

		err := encodeError(t,
			transcode.MappingStart(2),
			transcode.MappingKey(),
			transcode.String("a"),
			transcode.MappingValue(),
			transcode.MappingStart(1),
			transcode.MappingKey(),
			transcode.Bool(true),
			transcode.MappingValue(),
			transcode.Unit(),
			transcode.MappingEnd(),
			transcode.MappingEnd(),
		)

		var unsupportedErr *transcode.UnsupportedValueError
		require.ErrorAs(t, err, &unsupportedErr)
		assert.Equal(t, "$.a", unsupportedErr.Path.String())
		assert.Equal(t, transcode.CategoryUnsupported, transcode.Category(err))
	})

	t.Run("array key", func(t *testing.T) {
		t.Parallel()

		err := encodeError(t,
			transcode.MappingStart(1),
			transcode.MappingKey(),
			transcode.SequenceStart(0),
			transcode.SequenceEnd(),
			transcode.MappingValue(),
			transcode.Unit(),
			transcode.MappingEnd(),
		)

		var unsupportedErr *transcode.UnsupportedValueError
		require.ErrorAs(t, err, &unsupportedErr)
	})

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()

		err := encodeError(t,
			transcode.MappingStart(2),
			transcode.MappingKey(),
			transcode.String("1"),
			transcode.MappingValue(),
			transcode.Int(1, transcode.Width64),
			transcode.MappingKey(),
			transcode.Int(1, transcode.Width64),
			transcode.MappingValue(),
			transcode.Int(2, transcode.Width64),
			transcode.MappingEnd(),
		)

		var unsupportedErr *transcode.UnsupportedValueError
		require.ErrorAs(t, err, &unsupportedErr)
		assert.Equal(t, `$["1"]`, unsupportedErr.Path.String())
		assert.Equal(t, `duplicate object key "1"`, unsupportedErr.Reason)
		assert.Equal(t, transcode.CategoryUnsupported, transcode.Category(err))
	})
}

type failingWriter struct{}

var errWrite = goErrors.New("write rejected")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestEncodeSinkFailure(t *testing.T) {

	t.Parallel()

	err := transcode.Transcode(
		transcode.NewEventReader(transcode.Unit()),
		NewSerializer(failingWriter{}, Compact),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, errWrite)
	assert.Equal(t, transcode.CategorySink, transcode.Category(err))
}

func TestStyleString(t *testing.T) {

	t.Parallel()

	assert.Equal(t, "compact", Compact.String())
	assert.Equal(t, "pretty", Pretty.String())
	assert.Equal(t, "Style(7)", Style(7).String())
}
