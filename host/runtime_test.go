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

package host

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/goleak"

	"github.com/onflow/termjson"
	"github.com/onflow/termjson/nif"
	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
	. "github.com/onflow/termjson/test_utils/common_utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRuntime(t *testing.T, options ...Option) *Runtime {
	t.Helper()

	runtime, err := NewRuntime(
		append([]Option{WithWorkers(2, 1)}, options...)...,
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, runtime.Close())
	})

	return runtime
}

func TestRuntimeCall(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t)

	ctx := context.Background()

	for _, name := range []string{nif.DecodeJSON, nif.DecodeJSONDirty} {
		result, err := runtime.Call(ctx, name, term.NewString(`[1,2,3]`))
		require.NoError(t, err)
		AssertTermEqual(t,
			term.NewList(term.Integer(1), term.Integer(2), term.Integer(3)),
			result,
		)
	}

	value := term.NewMap(
		term.MapEntry{Key: term.Atom("a"), Value: term.Integer(1)},
	)

	result, err := runtime.Call(ctx, nif.EncodeJSONCompactDirty, value)
	require.NoError(t, err)
	assert.Equal(t, term.NewString(`{"a":1}`), result)

	result, err = runtime.Call(ctx, nif.EncodeJSONPretty, value)
	require.NoError(t, err)
	assert.Equal(t, term.NewString("{\n  \"a\": 1\n}"), result)
}

func TestRuntimeCallFailure(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t)

	ctx := context.Background()

	_, err := runtime.Call(ctx, "decode_xml", term.NewString("<a/>"))
	var unknownFunctionErr *nif.UnknownFunctionError
	require.ErrorAs(t, err, &unknownFunctionErr)

	_, err = runtime.Call(ctx, nif.DecodeJSON, term.Integer(1))
	assert.Equal(t, transcode.CategoryBadArgument, nif.Category(err))

	_, err = runtime.Call(ctx, nif.DecodeJSON, term.NewString("[1,"))
	require.Error(t, err)

	AssertTermEqual(t,
		term.NewTuple(
			term.Atom("error"),
			term.Atom(transcode.CategoryFormat),
			term.NewString(err.Error()),
		),
		runtime.Apply(ctx, nif.DecodeJSON, term.NewString("[1,")),
	)

	AssertTermEqual(t,
		term.Integer(7),
		runtime.Apply(ctx, nif.DecodeJSONDirty, term.NewString(" 7 ")),
	)
}

func TestRuntimeCodec(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, WithCodec(termjson.Codec{MaxDepth: 1}))

	_, err := runtime.Call(context.Background(), nif.DecodeJSON, term.NewString(`[[]]`))
	assert.Equal(t, transcode.CategoryFormat, nif.Category(err))
}

func TestRuntimeConcurrentCalls(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t)

	const count = 64

	var wg sync.WaitGroup
	results := make([]term.Term, count)
	errs := make([]error, count)

	for i := 0; i < count; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			name := nif.DecodeJSON
			if i%2 == 1 {
				name = nif.DecodeJSONDirty
			}
			results[i], errs[i] = runtime.Call(
				context.Background(),
				name,
				term.NewString(fmt.Sprintf(`{"i":%d}`, i)),
			)
		}()
	}

	wg.Wait()

	for i := 0; i < count; i++ {
		require.NoError(t, errs[i])
		AssertTermEqual(t,
			term.NewMap(term.MapEntry{Key: term.NewString("i"), Value: term.Integer(i)}),
			results[i],
		)
	}
}

func TestRuntimeClose(t *testing.T) {

	t.Parallel()

	runtime, err := NewRuntime(WithWorkers(1, 1))
	require.NoError(t, err)

	require.NoError(t, runtime.Close())
	require.NoError(t, runtime.Close())

	_, err = runtime.Call(context.Background(), nif.DecodeJSON, term.NewString("1"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestRuntimeCanceledContext(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the call is refused, or it was picked up and completed
	_, err := runtime.Call(ctx, nif.DecodeJSON, term.NewString("1"))
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestRuntimeMetrics(t *testing.T) {

	t.Parallel()

	registry := prometheus.NewRegistry()
	runtime := newTestRuntime(t, WithRegisterer(registry))

	ctx := context.Background()

	_, err := runtime.Call(ctx, nif.DecodeJSON, term.NewString("1"))
	require.NoError(t, err)
	_, err = runtime.Call(ctx, nif.DecodeJSON, term.NewString("1"))
	require.NoError(t, err)
	_, err = runtime.Call(ctx, nif.DecodeJSON, term.NewString("{"))
	require.Error(t, err)

	metrics := runtime.Metrics()

	assert.Equal(t, 2.0,
		testutil.ToFloat64(metrics.Calls.WithLabelValues(nif.DecodeJSON, ResultOK)),
	)
	assert.Equal(t, 1.0,
		testutil.ToFloat64(metrics.Calls.WithLabelValues(nif.DecodeJSON, transcode.CategoryFormat)),
	)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Duration))

	count, err := testutil.GatherAndCount(registry, "termjson_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A second runtime reuses the registered collectors
	other := newTestRuntime(t, WithRegisterer(registry))
	assert.Same(t, metrics.Calls, other.Metrics().Calls)
}

func TestRuntimeTracing(t *testing.T) {

	t.Parallel()

	type trace struct {
		operation string
		attrs     []attribute.KeyValue
	}

	var mu sync.Mutex
	var traces []trace

	runtime := newTestRuntime(t,
		WithTracer(Tracer{
			TracingEnabled: true,
			OnRecordTrace: func(operation string, duration time.Duration, attrs []attribute.KeyValue) {
				mu.Lock()
				defer mu.Unlock()
				traces = append(traces, trace{operation, attrs})
			},
		}),
	)

	ctx := context.Background()

	_, err := runtime.Call(ctx, nif.EncodeJSONCompactDirty, term.NewList(term.Integer(10)))
	require.NoError(t, err)

	_, err = runtime.Call(ctx, nif.DecodeJSON, term.NewString("nul"))
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t,
		[]trace{
			{
				operation: "nif.encode_json_compact_dirty",
				attrs: []attribute.KeyValue{
					attribute.String("schedule", "dirty_cpu"),
					attribute.String("result", "ok"),
					attribute.Int("bytes", 4),
				},
			},
			{
				operation: "nif.decode_json",
				attrs: []attribute.KeyValue{
					attribute.String("schedule", "normal"),
					attribute.String("result", "format_error"),
					attribute.Int("bytes", 3),
				},
			},
		},
		traces,
	)
}

func TestRuntimeLogging(t *testing.T) {

	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(zerolog.SyncWriter(&buf)).Level(zerolog.WarnLevel)

	runtime, err := NewRuntime(WithWorkers(1, 1), WithLogger(logger))
	require.NoError(t, err)

	_, err = runtime.Call(context.Background(), nif.EncodeJSONPretty, term.Reference{})
	require.Error(t, err)

	require.NoError(t, runtime.Close())

	output := buf.String()
	assert.Contains(t, output, `"level":"warn"`)
	assert.Contains(t, output, `"function":"encode_json_pretty"`)
	assert.Contains(t, output, `"category":"unsupported_value"`)
	assert.Contains(t, output, `"message":"call failed"`)
	assert.NotContains(t, output, "worker started")
}
