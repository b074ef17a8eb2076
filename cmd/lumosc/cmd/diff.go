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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-sub001/compiler"
	"github.com/getlumos/lumos-sub001/diff"
)

func newDiffCmd() *cobra.Command {
	var format string
	c := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "diff two schema files",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			a, b, err := compileTwo(args[0], args[1])
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			changes := compiler.Diff(a.Schema(), b.Schema())
			return printChanges(c, format, changes)
		},
	}
	addFormatFlag(c.Flags(), &format)
	return c
}

func compileTwo(pathA, pathB string) (*compiler.CompilationUnit, *compiler.CompilationUnit, error) {
	ctx := context.Background()
	a, err := compiler.Compile(ctx, pathA, compiler.Options{Logger: newLogger()})
	if err != nil {
		return nil, nil, err
	}
	b, err := compiler.Compile(ctx, pathB, compiler.Options{Logger: newLogger()})
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func printChanges(c *cobra.Command, format string, changes []diff.Change) error {
	if format == "json" {
		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(changes)
	}
	for _, ch := range changes {
		if ch.Member == "" {
			fmt.Fprintf(c.OutOrStdout(), "%s %s: %s\n", ch.Kind, ch.Type, ch.Message)
		} else {
			fmt.Fprintf(c.OutOrStdout(), "%s %s.%s: %s\n", ch.Kind, ch.Type, ch.Member, ch.Message)
		}
	}
	return nil
}
