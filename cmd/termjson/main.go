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

// A utility program that converts between JSON text and terms,
// and runs the exported functions the way the host runtime does.

package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onflow/termjson/config"
	"github.com/onflow/termjson/host"
)

var (
	// configFile defines a flag for the path of the configuration file.
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "The `[path]` of the TOML or YAML configuration file. The defaults are used if not set.",
	}
	// logLevel defines a flag for the log level, overriding the configuration file.
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "The log `[level]`: trace, debug, info, warn or error.",
	}
	// color defines a flag to colorize the output.
	color = cli.BoolFlag{
		Name:  "color",
		Usage: "Colorize terms and JSON text.",
	}
	// prettyFlag defines a flag to indent JSON output.
	prettyFlag = cli.BoolFlag{
		Name:  "pretty",
		Usage: "Indent JSON output by two spaces per level.",
	}
)

// environment is shared by all commands.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	config config.Config
	logger zerolog.Logger
	colors colorizer
}

func (env *environment) setup(ctx *cli.Context) error {
	cfg := config.Default()

	path := ctx.GlobalString(configFile.Name)
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	level := ctx.GlobalString(logLevel.Name)
	if level != "" {
		cfg.Log.Level = level
		err := cfg.Validate()
		if err != nil {
			return err
		}
	}

	env.config = cfg
	env.logger = cfg.Logger(env.stderr)
	env.colors = newColorizer(ctx.GlobalBool(color.Name))

	env.logger.Debug().
		Str("config", path).
		Int("max_depth", cfg.Limits.MaxDepth).
		Msg("configured")

	return nil
}

// newRuntime returns a new host runtime configured by the environment.
// Traces are logged at debug level.
func (env *environment) newRuntime() (*host.Runtime, error) {
	return host.NewRuntime(
		env.config.RuntimeOptions(env.logger, env.recordTrace)...,
	)
}

func (env *environment) recordTrace(operation string, duration time.Duration, attrs []attribute.KeyValue) {
	event := env.logger.Debug().
		Str("operation", operation).
		Dur("duration", duration)

	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value.Emit())
	}

	event.Msg("trace")
}

func newApp(env *environment) *cli.App {
	app := cli.NewApp()
	app.Name = "termjson"
	app.Usage = "Converts between JSON text and terms of the host runtime"
	app.Writer = env.stdout
	app.ErrWriter = env.stderr
	app.Flags = []cli.Flag{configFile, logLevel, color}
	app.Before = env.setup
	app.Commands = []cli.Command{
		decodeCommand(env),
		encodeCommand(env),
		convertCommand(env),
		queryCommand(env),
		inspectCommand(env),
		batchCommand(env),
		replCommand(env),
	}
	return app
}

func main() {
	env := &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zerolog.Nop(),
		colors: newColorizer(false),
	}

	err := newApp(env).Run(os.Args)
	if err != nil {
		_, _ = io.WriteString(env.stderr, env.colors.error(err.Error())+"\n")
		os.Exit(1)
	}
}
