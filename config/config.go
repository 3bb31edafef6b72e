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

// Package config loads the configuration of the runtime
// from TOML or YAML files.
package config

import (
	goErrors "errors"
	"io"
	"os"
	"path/filepath"
	goRuntime "runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml"
	"github.com/rs/zerolog"

	"github.com/onflow/termjson"
	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/host"
	"github.com/onflow/termjson/term"
)

var ErrInvalidConfig = goErrors.New("invalid configuration")

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler" yaml:"scheduler"`
	Limits    LimitsConfig    `toml:"limits" yaml:"limits"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	Tracing   TracingConfig   `toml:"tracing" yaml:"tracing"`
}

// SchedulerConfig sizes the worker pools of the runtime.
type SchedulerConfig struct {
	NormalWorkers int `toml:"normal_workers" yaml:"normal_workers"`
	DirtyWorkers  int `toml:"dirty_workers" yaml:"dirty_workers"`
}

type LimitsConfig struct {
	// MaxDepth limits the nesting of containers,
	// when decoding JSON text and when encoding terms
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type TracingConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Scheduler: SchedulerConfig{
			NormalWorkers: goRuntime.NumCPU(),
			DirtyWorkers:  host.DefaultDirtyWorkers,
		},
		Limits: LimitsConfig{
			MaxDepth: term.DefaultMaxDepth,
		},
		Log: LogConfig{
			Level:  zerolog.InfoLevel.String(),
			Format: LogFormatConsole,
		},
	}
}

// Load reads the configuration file at the given path.
// The format is chosen by the file extension: .toml, .yaml or .yml.
// Settings missing from the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	config := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, errors.NewDefaultUserError(
			"%w: unsupported file extension %q",
			ErrInvalidConfig,
			ext,
		)
	}
	if err != nil {
		return Config{}, errors.NewDefaultUserError(
			"%w: failed to parse %s: %w",
			ErrInvalidConfig,
			path,
			err,
		)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate returns an error if the configuration is invalid.
func (c Config) Validate() error {
	if c.Scheduler.NormalWorkers <= 0 {
		return invalid("scheduler.normal_workers must be positive, got %d", c.Scheduler.NormalWorkers)
	}

	if c.Scheduler.DirtyWorkers <= 0 {
		return invalid("scheduler.dirty_workers must be positive, got %d", c.Scheduler.DirtyWorkers)
	}

	if c.Limits.MaxDepth <= 0 {
		return invalid("limits.max_depth must be positive, got %d", c.Limits.MaxDepth)
	}

	_, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return invalid("log.level: %s", err)
	}

	switch c.Log.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return invalid("log.format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.Log.Format)
	}

	return nil
}

func invalid(message string, args ...any) error {
	return errors.NewDefaultUserError(
		"%w: "+message,
		append([]any{ErrInvalidConfig}, args...)...,
	)
}

// Codec returns the codec configured by the limits.
func (c Config) Codec() termjson.Codec {
	return termjson.Codec{
		MaxDepth: c.Limits.MaxDepth,
	}
}

// Logger returns a logger writing to w, configured by the log settings.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if c.Log.Format == LogFormatConsole {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// RuntimeOptions returns the options of a host.Runtime
// configured by the scheduler, limits and tracing settings.
func (c Config) RuntimeOptions(logger zerolog.Logger, onRecordTrace host.OnRecordTraceFunc) []host.Option {
	return []host.Option{
		host.WithWorkers(c.Scheduler.NormalWorkers, c.Scheduler.DirtyWorkers),
		host.WithCodec(c.Codec()),
		host.WithLogger(logger),
		host.WithTracer(host.Tracer{
			OnRecordTrace:  onRecordTrace,
			TracingEnabled: c.Tracing.Enabled,
		}),
	}
}
