// Copyright 2024 The Lumos Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the lumosc subcommands over package compiler.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// exitError carries the process exit code a failed command should use,
// distinguishing a breaking compatibility result or an ordinary tool
// failure (1) from a strict-mode warning result (2) per spec.md §6.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode extracts the process exit code a returned error implies.
// Ordinary errors (bad args, compile failure) exit 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 1
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lumosc",
		Short:         "lumos schema compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newCheckCompatCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

// Execute parses args and runs the matching subcommand.
func Execute(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func newLogger() *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: logLevel()}
	if os.Getenv("LUMOS_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func logLevel() slog.Level {
	switch os.Getenv("LUMOS_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
