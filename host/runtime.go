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

// Package host runs the exported functions the way the host runtime does:
// each call is dispatched onto the worker pool matching
// the schedule of the function.
package host

import (
	"context"
	goErrors "errors"
	goRuntime "runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/onflow/termjson"
	"github.com/onflow/termjson/nif"
	"github.com/onflow/termjson/term"
)

// ErrClosed is returned when a call is made on a closed Runtime.
var ErrClosed = goErrors.New("runtime is closed")

// DefaultDirtyWorkers is the default number of dirty CPU workers.
const DefaultDirtyWorkers = 2

type Option func(*Runtime)

// WithLogger returns a new Runtime Option
// which sets the logger of the runtime.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithWorkers returns a new Runtime Option
// which sets the number of normal and dirty CPU workers.
// Counts of zero or less keep the defaults.
func WithWorkers(normal, dirty int) Option {
	return func(r *Runtime) {
		if normal > 0 {
			r.normalWorkers = normal
		}
		if dirty > 0 {
			r.dirtyWorkers = dirty
		}
	}
}

// WithCodec returns a new Runtime Option
// which sets the codec the functions are called with.
func WithCodec(codec termjson.Codec) Option {
	return func(r *Runtime) {
		r.env.Codec = codec
	}
}

// WithTracer returns a new Runtime Option
// which sets the tracer of the runtime.
func WithTracer(tracer Tracer) Option {
	return func(r *Runtime) {
		r.tracer = tracer
	}
}

// WithRegisterer returns a new Runtime Option
// which sets the registerer the metrics are registered with.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(r *Runtime) {
		r.registerer = registerer
	}
}

// Runtime calls exported functions on worker pools.
// It may be used concurrently.
type Runtime struct {
	env           nif.Env
	logger        zerolog.Logger
	tracer        Tracer
	registerer    prometheus.Registerer
	metrics       *Metrics
	normalWorkers int
	dirtyWorkers  int
	pools         [2]*pool

	// mu guards closed, and the job channels of the pools against
	// being closed while calls are submitted
	mu     sync.RWMutex
	closed bool
}

// NewRuntime returns a new Runtime and starts its workers.
// The returned Runtime must be closed.
func NewRuntime(options ...Option) (*Runtime, error) {
	r := &Runtime{
		logger:        zerolog.Nop(),
		normalWorkers: goRuntime.NumCPU(),
		dirtyWorkers:  DefaultDirtyWorkers,
	}

	for _, option := range options {
		option(r)
	}

	registerer := r.registerer
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	metrics, err := NewMetrics(registerer)
	if err != nil {
		return nil, err
	}
	r.metrics = metrics

	r.pools[nif.ScheduleNormal] = r.startPool(nif.ScheduleNormal, r.normalWorkers)
	r.pools[nif.ScheduleDirtyCPU] = r.startPool(nif.ScheduleDirtyCPU, r.dirtyWorkers)

	return r, nil
}

// Metrics returns the metrics updated by the runtime.
func (r *Runtime) Metrics() *Metrics {
	return r.metrics
}

type outcome struct {
	result term.Term
	err    error
}

type job struct {
	function *nif.Function
	args     []term.Term
	outcome  chan<- outcome
}

type pool struct {
	schedule nif.Schedule
	jobs     chan job
	group    errgroup.Group
}

func (r *Runtime) startPool(schedule nif.Schedule, workers int) *pool {
	p := &pool{
		schedule: schedule,
		jobs:     make(chan job),
	}

	for i := 0; i < workers; i++ {
		logger := r.logger.With().
			Str("schedule", schedule.String()).
			Int("worker", i).
			Logger()

		p.group.Go(func() error {
			logger.Debug().Msg("worker started")
			defer logger.Debug().Msg("worker stopped")

			for j := range p.jobs {
				result, err := nif.Call(r.env, j.function, j.args...)
				j.outcome <- outcome{
					result: result,
					err:    err,
				}
			}
			return nil
		})
	}

	return p
}

// Call calls the exported function with the given name on the worker pool
// matching its schedule, and waits for its result.
//
// The context only bounds waiting: a call which was picked up by a worker
// runs to completion.
func (r *Runtime) Call(ctx context.Context, name string, args ...term.Term) (term.Term, error) {
	function, ok := nif.Lookup(name)
	if !ok {
		return nil, &nif.UnknownFunctionError{Name: name}
	}

	start := time.Now()

	result, err := r.dispatch(ctx, function, args)

	duration := time.Since(start)
	r.record(function, args, result, err, duration)

	return result, err
}

// Apply calls the exported function with the given name,
// and returns the term the host runtime receives:
// the result, or the error term describing the failure.
func (r *Runtime) Apply(ctx context.Context, name string, args ...term.Term) term.Term {
	return nif.Result(r.Call(ctx, name, args...))
}

func (r *Runtime) dispatch(ctx context.Context, function *nif.Function, args []term.Term) (term.Term, error) {
	outcomes := make(chan outcome, 1)

	err := r.submit(ctx, function, job{
		function: function,
		args:     args,
		outcome:  outcomes,
	})
	if err != nil {
		return nil, err
	}

	select {
	case o := <-outcomes:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Runtime) submit(ctx context.Context, function *nif.Function, j job) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrClosed
	}

	select {
	case r.pools[function.Schedule].jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runtime) record(
	function *nif.Function,
	args []term.Term,
	result term.Term,
	err error,
	duration time.Duration,
) {
	label := ResultOK
	if err != nil {
		label = nif.Category(err)

		r.logger.Warn().
			Err(err).
			Str("function", function.Name).
			Str("category", label).
			Str("schedule", function.Schedule.String()).
			Msg("call failed")
	}

	r.metrics.Calls.WithLabelValues(function.Name, label).Inc()
	r.metrics.Duration.WithLabelValues(function.Name).Observe(duration.Seconds())

	r.tracer.reportCallTrace(function, label, textSize(function, args, result), duration)
}

// textSize returns the size of the JSON text of a call:
// the binary argument of a decode call, or the binary result of an encode call.
func textSize(function *nif.Function, args []term.Term, result term.Term) int {
	var text term.Term
	switch function.Operation {
	case nif.OperationDecode:
		if len(args) > 0 {
			text = args[0]
		}
	case nif.OperationEncode:
		text = result
	}

	binary, _ := text.(term.Binary)
	return len(binary)
}

// Close stops accepting calls, and waits for the workers
// to finish the calls they picked up.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for _, p := range r.pools {
		close(p.jobs)
	}
	r.mu.Unlock()

	var errs []error
	for _, p := range r.pools {
		errs = append(errs, p.group.Wait())
	}
	return goErrors.Join(errs...)
}
