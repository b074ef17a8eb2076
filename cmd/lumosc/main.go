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

// Command lumosc is the CLI surface over the schema compiler: validate,
// diff, check-compat, and migrate. It is a thin caller of the compiler
// package; none of the logic it wraps lives here.
package main

import (
	"os"

	"github.com/getlumos/lumos-sub001/cmd/lumosc/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
