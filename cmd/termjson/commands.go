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

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli"

	"github.com/onflow/termjson"
	"github.com/onflow/termjson/encoding/cbor"
	"github.com/onflow/termjson/encoding/json"
	"github.com/onflow/termjson/encoding/yaml"
	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/query"
	"github.com/onflow/termjson/term"
	"github.com/onflow/termjson/transcode"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

var (
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "The `[format]` of the input: json or yaml.",
		Value: formatJSON,
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "The `[format]` of the output: json, yaml or cbor.",
		Value: formatJSON,
	}
	hexFlag = cli.BoolFlag{
		Name:  "hex",
		Usage: "Write CBOR output hex-encoded.",
	}
)

// readInput reads the file named by the first argument,
// or the standard input if there is none.
func (env *environment) readInput(ctx *cli.Context) ([]byte, error) {
	path := ctx.Args().First()
	if path == "" || path == "-" {
		return io.ReadAll(env.stdin)
	}
	return os.ReadFile(path)
}

func (env *environment) style(ctx *cli.Context) termjson.Style {
	if ctx.Bool(prettyFlag.Name) {
		return termjson.Pretty
	}
	return termjson.Compact
}

func (env *environment) writeJSON(data []byte) error {
	_, err := env.stdout.Write(env.colors.json(data))
	if err != nil {
		return err
	}
	_, err = io.WriteString(env.stdout, "\n")
	return err
}

func (env *environment) writeTerm(value term.Term) error {
	_, err := fmt.Fprintln(env.stdout, env.colors.term(value))
	return err
}

func (env *environment) decode(data []byte) (term.Term, error) {
	return env.config.Codec().Decode(data)
}

func decodeCommand(env *environment) cli.Command {
	return cli.Command{
		Name:      "decode",
		Usage:     "Decodes JSON text and prints the term",
		ArgsUsage: "[file]",
		Action: func(ctx *cli.Context) error {
			data, err := env.readInput(ctx)
			if err != nil {
				return err
			}

			value, err := env.decode(data)
			if err != nil {
				return err
			}

			return env.writeTerm(value)
		},
	}
}

func encodeCommand(env *environment) cli.Command {
	return cli.Command{
		Name:      "encode",
		Usage:     "Decodes JSON text into a term, and encodes the term again",
		ArgsUsage: "[file]",
		Flags:     []cli.Flag{prettyFlag},
		Action: func(ctx *cli.Context) error {
			data, err := env.readInput(ctx)
			if err != nil {
				return err
			}

			value, err := env.decode(data)
			if err != nil {
				return err
			}

			encoded, err := env.config.Codec().Encode(value, env.style(ctx))
			if err != nil {
				return err
			}

			return env.writeJSON(encoded)
		},
	}
}

func convertCommand(env *environment) cli.Command {
	return cli.Command{
		Name:      "convert",
		Usage:     "Converts between JSON, YAML and CBOR without building a term",
		ArgsUsage: "[file]",
		Flags:     []cli.Flag{fromFlag, toFlag, prettyFlag, hexFlag},
		Action: func(ctx *cli.Context) error {
			data, err := env.readInput(ctx)
			if err != nil {
				return err
			}

			output, err := env.convert(
				data,
				ctx.String(fromFlag.Name),
				ctx.String(toFlag.Name),
				env.style(ctx),
			)
			if err != nil {
				return err
			}

			to := ctx.String(toFlag.Name)
			switch {
			case to == formatJSON:
				return env.writeJSON(output)
			case to == formatCBOR && ctx.Bool(hexFlag.Name):
				_, err = fmt.Fprintln(env.stdout, hex.EncodeToString(output))
				return err
			default:
				_, err = env.stdout.Write(output)
				return err
			}
		},
	}
}

func (env *environment) convert(data []byte, from, to string, style termjson.Style) ([]byte, error) {
	maxDepth := env.config.Limits.MaxDepth

	var src transcode.Deserializer
	switch from {
	case formatJSON:
		src = json.NewBytesDeserializer(data, json.WithMaxDepth(maxDepth))
	case formatYAML:
		var err error
		src, err = yaml.NewDeserializer(data, maxDepth)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.NewDefaultUserError("unsupported input format %q", from)
	}

	var w bytes.Buffer

	var dst transcode.Serializer
	switch to {
	case formatJSON:
		dst = json.NewSerializer(&w, style)
	case formatYAML:
		dst = yaml.NewSerializer(&w)
	case formatCBOR:
		dst = cbor.NewSerializer(&w)
	default:
		return nil, errors.NewDefaultUserError("unsupported output format %q", to)
	}

	err := transcode.Transcode(src, dst)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

func queryCommand(env *environment) cli.Command {
	return cli.Command{
		Name:      "query",
		Usage:     "Runs a jq filter on the term decoded from JSON text, and prints the results as JSON text",
		ArgsUsage: "filter [file]",
		Flags:     []cli.Flag{prettyFlag},
		Action: func(ctx *cli.Context) error {
			args := ctx.Args()
			if len(args) < 1 {
				return errors.NewDefaultUserError("missing filter argument")
			}

			q, err := query.Compile(args.First())
			if err != nil {
				return err
			}

			var data []byte
			if len(args) > 1 && args.Get(1) != "-" {
				data, err = os.ReadFile(args.Get(1))
			} else {
				data, err = io.ReadAll(env.stdin)
			}
			if err != nil {
				return err
			}

			value, err := env.decode(data)
			if err != nil {
				return err
			}

			results, err := q.Run(context.Background(), value)
			if err != nil {
				return err
			}

			codec := env.config.Codec()
			for _, result := range results {
				encoded, err := codec.Encode(result, env.style(ctx))
				if err != nil {
					return err
				}

				err = env.writeJSON(encoded)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func inspectCommand(env *environment) cli.Command {
	return cli.Command{
		Name:      "inspect",
		Usage:     "Decodes JSON text and dumps the Go representation of the term",
		ArgsUsage: "[file]",
		Action: func(ctx *cli.Context) error {
			data, err := env.readInput(ctx)
			if err != nil {
				return err
			}

			value, err := env.decode(data)
			if err != nil {
				return err
			}

			printer := pp.New()
			printer.SetOutput(env.stdout)
			printer.SetColoringEnabled(env.colors.enabled)
			_, err = printer.Println(value)
			return err
		},
	}
}
