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
	goErrors "errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "termjson"

// ResultOK is the result label of successful calls.
// Failed calls are labeled with the category of the error.
const ResultOK = "ok"

// Metrics are the collectors updated by a Runtime.
type Metrics struct {
	// Calls counts calls by function and result
	Calls *prometheus.CounterVec
	// Duration observes the duration of calls by function,
	// including the time spent waiting for a worker
	Duration *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "calls_total",
			Help:      "Number of calls of exported functions.",
		},
		[]string{"function", "result"},
	)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of calls of exported functions.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"function"},
	)

	var err error

	calls, err = register(registerer, calls)
	if err != nil {
		return nil, err
	}

	duration, err = register(registerer, duration)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Calls:    calls,
		Duration: duration,
	}, nil
}

// register registers the given collector,
// or returns the equal collector which is already registered.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prometheus.AlreadyRegisteredError
	if goErrors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(C)
		if ok {
			return existing, nil
		}
	}

	var empty C
	return empty, err
}
