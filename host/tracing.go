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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onflow/termjson/nif"
)

const tracingCallPrefix = "nif."

// OnRecordTraceFunc is a function that records a trace.
type OnRecordTraceFunc func(
	operationName string,
	duration time.Duration,
	attrs []attribute.KeyValue,
)

type Tracer struct {
	// OnRecordTrace is triggered when a trace is recorded
	OnRecordTrace OnRecordTraceFunc
	// TracingEnabled determines if tracing is enabled.
	// Tracing reports every call of an exported function
	TracingEnabled bool
}

func (tracer Tracer) reportCallTrace(
	function *nif.Function,
	result string,
	size int,
	duration time.Duration,
) {
	if !tracer.TracingEnabled || tracer.OnRecordTrace == nil {
		return
	}

	tracer.OnRecordTrace(
		tracingCallPrefix+function.Name,
		duration,
		[]attribute.KeyValue{
			attribute.String("schedule", function.Schedule.String()),
			attribute.String("result", result),
			attribute.Int("bytes", size),
		},
	)
}
