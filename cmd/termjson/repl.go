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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/urfave/cli"

	"github.com/onflow/termjson/host"
	"github.com/onflow/termjson/nif"
	"github.com/onflow/termjson/query"
	"github.com/onflow/termjson/term"
)

func replCommand(env *environment) cli.Command {
	return cli.Command{
		Name:  "repl",
		Usage: "Reads JSON text line by line, and prints the decoded terms",
		Action: func(*cli.Context) error {
			runtime, err := env.newRuntime()
			if err != nil {
				return err
			}
			defer func() {
				_ = runtime.Close()
			}()

			newREPL(env, runtime).run()
			return nil
		},
	}
}

const replHelpMessage = `
Enter JSON text to decode it into a term.
Commands are prefixed with a dot. Valid commands are:

.exit            Exit the REPL
.help            Print this help message
.compact         Print the last term as compact JSON text
.pretty          Print the last term as pretty JSON text
.query FILTER    Run a jq filter on the last term
.dirty           Toggle calling the dirty CPU functions

Press ^D to exit`

const replAssistanceMessage = `Type '.help' for assistance.`

var replCommands = []prompt.Suggest{
	{Text: ".exit", Description: "Exit the REPL"},
	{Text: ".help", Description: "Print the help message"},
	{Text: ".compact", Description: "Print the last term as compact JSON text"},
	{Text: ".pretty", Description: "Print the last term as pretty JSON text"},
	{Text: ".query", Description: "Run a jq filter on the last term"},
	{Text: ".dirty", Description: "Toggle calling the dirty CPU functions"},
}

type repl struct {
	env        *environment
	runtime    *host.Runtime
	lineNumber int
	last       term.Term
	dirty      bool
}

func newREPL(env *environment, runtime *host.Runtime) *repl {
	return &repl{
		env:        env,
		runtime:    runtime,
		lineNumber: 1,
	}
}

func (r *repl) run() {
	r.printWelcome()

	suggest := func(d prompt.Document) []prompt.Suggest {
		word := d.GetWordBeforeCursor()
		if !strings.HasPrefix(word, ".") {
			return nil
		}
		return prompt.FilterHasPrefix(replCommands, word, false)
	}

	changeLivePrefix := func() (string, bool) {
		return fmt.Sprintf("%d> ", r.lineNumber), true
	}

	options := []prompt.Option{
		prompt.OptionLivePrefix(changeLivePrefix),
	}
	prompt.New(r.execute, suggest, options...).Run()
}

func (r *repl) execute(line string) {
	defer func() {
		r.lineNumber++
	}()

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if strings.HasPrefix(line, ".") {
		r.handleCommand(line)
		return
	}

	name := nif.DecodeJSON
	if r.dirty {
		name = nif.DecodeJSONDirty
	}

	value, err := r.runtime.Call(context.Background(), name, term.NewString(line))
	if err != nil {
		r.printError(err)
		return
	}

	r.last = value
	r.println(r.env.colors.term(value))
}

func (r *repl) handleCommand(line string) {
	command, argument, _ := strings.Cut(line, " ")

	switch command {
	case ".exit":
		os.Exit(0)
	case ".help":
		r.println(replHelpMessage)
	case ".compact":
		r.encodeLast(nif.EncodeJSONCompact)
	case ".pretty":
		r.encodeLast(nif.EncodeJSONPretty)
	case ".query":
		r.queryLast(strings.TrimSpace(argument))
	case ".dirty":
		r.dirty = !r.dirty
		r.println(fmt.Sprintf("dirty CPU functions: %t", r.dirty))
	default:
		r.println(r.env.colors.error(fmt.Sprintf("Unknown command. %s", replAssistanceMessage)))
	}
}

func (r *repl) encodeLast(name string) {
	if r.last == nil {
		r.println(r.env.colors.error("No term decoded yet."))
		return
	}

	if r.dirty {
		name += "_dirty"
	}

	result, err := r.runtime.Call(context.Background(), name, r.last)
	if err != nil {
		r.printError(err)
		return
	}

	encoded, _ := result.(term.Binary)
	r.println(string(r.env.colors.json(encoded)))
}

func (r *repl) queryLast(filter string) {
	if r.last == nil {
		r.println(r.env.colors.error("No term decoded yet."))
		return
	}

	results, err := query.Run(context.Background(), filter, r.last)
	if err != nil {
		r.printError(err)
		return
	}

	for _, result := range results {
		r.println(r.env.colors.term(result))
	}
}

func (r *repl) printError(err error) {
	r.println(r.env.colors.error(fmt.Sprintf("%s: %s", nif.Category(err), err)))
}

func (r *repl) println(message string) {
	_, _ = fmt.Fprintln(r.env.stdout, message)
}

func (r *repl) printWelcome() {
	r.println(fmt.Sprintf("Welcome to termjson!\n%s\n", replAssistanceMessage))
}
