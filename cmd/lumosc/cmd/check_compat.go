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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-sub001/compat"
	"github.com/getlumos/lumos-sub001/compiler"
)

func newCheckCompatCmd() *cobra.Command {
	var format string
	var strict bool
	c := &cobra.Command{
		Use:   "check-compat <a> <b>",
		Short: "classify compatibility between two schema files and enforce the SemVer bump rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			a, b, err := compileTwo(args[0], args[1])
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			report := compiler.CheckCompat(a.Schema(), b.Schema(), compat.Options{Strict: strict})

			if format == "json" {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return &exitError{code: 1, err: err}
				}
			} else {
				printCompatReport(c, report)
			}

			// Under --strict the version-bump issue is Breaking too; it is
			// the only issue without a TypeName and is reported as exit 2.
			breaking := false
			for _, is := range report.Issues {
				if is.Severity == compat.SeverityBreaking && is.TypeName != "" {
					breaking = true
				}
			}
			switch {
			case breaking:
				return &exitError{code: 1, err: errors.New("breaking changes detected")}
			case strict && !report.VersionBumpValid:
				return &exitError{code: 2, err: errors.New("version bump insufficient under --strict")}
			}
			return nil
		},
	}
	addFormatFlag(c.Flags(), &format)
	c.Flags().BoolVar(&strict, "strict", false, "escalate an insufficient version bump to a failure")
	return c
}

func printCompatReport(c *cobra.Command, report *compat.Report) {
	fmt.Fprintf(c.OutOrStdout(), "compatible: %v\n", report.Compatible)
	if report.FromVersion != "" {
		fmt.Fprintf(c.OutOrStdout(), "version: %s -> %s (bump valid: %v)\n",
			report.FromVersion, report.ToVersion, report.VersionBumpValid)
	}
	for _, is := range report.Issues {
		fmt.Fprintf(c.OutOrStdout(), "[%s] %s: %s (%s)\n", is.Severity, is.TypeName, is.Message, is.Reason)
	}
}
