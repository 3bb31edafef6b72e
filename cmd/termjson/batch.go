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
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/onflow/termjson/errors"
	"github.com/onflow/termjson/host"
	"github.com/onflow/termjson/nif"
	"github.com/onflow/termjson/term"
)

var (
	roundtripFlag = cli.BoolFlag{
		Name:  "roundtrip",
		Usage: "Encode the decoded term, decode the result, and ensure equality",
	}
	gzipFlag = cli.BoolFlag{
		Name:  "gzip",
		Usage: "Set if the input file is gzipped",
	}
	progressFlag = cli.BoolFlag{
		Name:  "progress",
		Usage: "Show a progress bar of the processed bytes",
	}
)

// maxLineSize is the maximum size of a line of the input
const maxLineSize = 64 * 1024 * 1024

type line struct {
	number int
	data   []byte
}

type batchStats struct {
	decoded atomic.Uint64
	failed  atomic.Uint64
}

func batchCommand(env *environment) cli.Command {
	return cli.Command{
		Name:      "batch",
		Usage:     "Decodes each line of a JSON Lines file on the dirty CPU workers",
		ArgsUsage: "file",
		Flags:     []cli.Flag{roundtripFlag, gzipFlag, progressFlag},
		Action: func(ctx *cli.Context) error {
			path := ctx.Args().First()
			if path == "" {
				return errors.NewDefaultUserError("missing path argument")
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			var input io.Reader = file

			if ctx.Bool(progressFlag.Name) {
				stat, err := file.Stat()
				if err != nil {
					return err
				}

				bar := progressbar.DefaultBytes(stat.Size(), "(processed JSON bytes)")
				defer func() {
					_ = bar.Finish()
				}()

				progressReader := progressbar.NewReader(file, bar)
				input = &progressReader
			}

			if ctx.Bool(gzipFlag.Name) {
				gzipReader, err := gzip.NewReader(input)
				if err != nil {
					return err
				}
				defer gzipReader.Close()
				input = gzipReader
			}

			return env.batch(context.Background(), input, ctx.Bool(roundtripFlag.Name))
		},
	}
}

// batch decodes each line of the input.
// Empty lines are skipped.
func (env *environment) batch(ctx context.Context, input io.Reader, roundtrip bool) error {
	runtime, err := env.newRuntime()
	if err != nil {
		return err
	}
	defer func() {
		_ = runtime.Close()
	}()

	var stats batchStats

	lines := make(chan line)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(lines)

		scanner := bufio.NewScanner(input)
		scanner.Buffer(nil, maxLineSize)

		number := 0
		for scanner.Scan() {
			number++

			data := scanner.Bytes()
			if len(data) == 0 {
				continue
			}

			select {
			case lines <- line{number: number, data: append([]byte(nil), data...)}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})

	workerCount := env.config.Scheduler.DirtyWorkers
	for i := 0; i < workerCount; i++ {
		group.Go(func() error {
			for l := range lines {
				err := env.batchLine(ctx, runtime, l, roundtrip)
				if err != nil {
					stats.failed.Add(1)
					env.logger.Error().
						Err(err).
						Int("line", l.number).
						Str("category", nif.Category(err)).
						Msg("failed to process line")
					continue
				}
				stats.decoded.Add(1)
			}
			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return err
	}

	decoded := stats.decoded.Load()
	failed := stats.failed.Load()

	env.logger.Info().
		Uint64("decoded", decoded).
		Uint64("failed", failed).
		Msg("batch finished")

	_, err = fmt.Fprintf(env.stdout, "successfully decoded %d values\n", decoded)
	if err != nil {
		return err
	}

	if failed > 0 {
		return errors.NewDefaultUserError("failed to decode %d values", failed)
	}

	return nil
}

func (env *environment) batchLine(ctx context.Context, runtime *host.Runtime, l line, roundtrip bool) error {
	value, err := runtime.Call(ctx, nif.DecodeJSONDirty, term.Binary(l.data))
	if err != nil {
		return err
	}

	if !roundtrip {
		return nil
	}

	encoded, err := runtime.Call(ctx, nif.EncodeJSONCompactDirty, value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	newValue, err := runtime.Call(ctx, nif.DecodeJSONDirty, encoded)
	if err != nil {
		return fmt.Errorf("failed to decode re-encoded value: %w", err)
	}

	if !term.Equal(value, newValue) {
		return errors.NewDefaultUserError("values are unequal:\n%s\n%s", value, newValue)
	}

	return nil
}
