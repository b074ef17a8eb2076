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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-sub001/compiler"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "parse and lower a schema file, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cu, err := compiler.Compile(context.Background(), args[0], compiler.Options{Logger: newLogger()})
			if err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
				return &exitError{code: 1, err: err}
			}
			fmt.Fprintf(c.OutOrStdout(), "ok: %d definitions\n", len(cu.Definitions()))
			for _, d := range cu.Diagnostics() {
				fmt.Fprintf(c.OutOrStdout(), "warning: %s\n", d.Error())
			}
			return nil
		},
	}
}
