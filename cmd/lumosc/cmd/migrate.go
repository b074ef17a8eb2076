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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-sub001/compiler"
	"github.com/getlumos/lumos-sub001/internal/outpath"
	"github.com/getlumos/lumos-sub001/migrate"
)

func newMigrateCmd() *cobra.Command {
	var output string
	var force bool
	var dryRun bool
	var format string
	c := &cobra.Command{
		Use:   "migrate <a> <b>",
		Short: "scaffold a migration plan between two schema files",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			a, b, err := compileTwo(args[0], args[1])
			if err != nil {
				return &exitError{code: 1, err: err}
			}

			steps, serr := migrate.Migrate(a.Schema(), b.Schema(), migrate.Options{Force: force})
			if serr != nil {
				fmt.Fprintln(c.ErrOrStderr(), serr)
				return &exitError{code: 1, err: serr}
			}

			if output != "" && !dryRun {
				if _, perr := outpath.Resolve(".", output); perr != nil {
					fmt.Fprintln(c.ErrOrStderr(), perr)
					return &exitError{code: 1, err: perr}
				}
				// Writing the scaffolded plan to disk is a generator's job;
				// the core only validates that --output stays inside the
				// working directory.
			}

			if format == "json" {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(steps)
			}
			for _, s := range steps {
				safety := "safe"
				if !s.Safe {
					safety = "unsafe"
				}
				fmt.Fprintf(c.OutOrStdout(), "[%s] %s %s: %s\n", safety, s.Kind, s.TypeName, s.Comment)
			}
			return nil
		},
	}
	c.Flags().StringVar(&output, "output", "", "directory migration artifacts would be written to")
	c.Flags().BoolVar(&force, "force", false, "allow unsafe migration steps")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without writing anything")
	addFormatFlag(c.Flags(), &format)
	return c
}
