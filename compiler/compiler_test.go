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

package compiler

import (
	"context"
	"testing"

	"github.com/getlumos/lumos-sub001/compat"
	"github.com/getlumos/lumos-sub001/migrate"
	"github.com/getlumos/lumos-sub001/resolver"
)

func TestCompileProducesDefinitions(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
#[account]
struct Vault { owner: PublicKey, balance: u64 }
`,
	}
	cu, err := Compile(context.Background(), "a.lumos", Options{FS: fs})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(cu.Definitions()) != 1 {
		t.Fatalf("Definitions() = %v, want 1", cu.Definitions())
	}
	if len(cu.Diagnostics()) != 0 {
		t.Fatalf("Diagnostics() = %v, want none", cu.Diagnostics())
	}
}

func TestCompileSurfacesDeprecationWarnings(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
struct Vault {
  #[deprecated("use balance_v2")]
  balance: u64,
}
`,
	}
	cu, err := Compile(context.Background(), "a.lumos", Options{FS: fs})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(cu.Diagnostics()) != 1 {
		t.Fatalf("Diagnostics() = %v, want 1", cu.Diagnostics())
	}
}

func TestCompileReturnsSchemaErrorOnFailure(t *testing.T) {
	fs := resolver.MapFS{"a.lumos": `struct S { x: DoesNotExist }`}
	_, err := Compile(context.Background(), "a.lumos", Options{FS: fs})
	if err == nil {
		t.Fatalf("Compile() error = nil, want a TypeValidation failure")
	}
}

func TestCompileRespectsCancelledContext(t *testing.T) {
	fs := resolver.MapFS{"a.lumos": `struct S { x: u64 }`}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, "a.lumos", Options{FS: fs})
	if err == nil {
		t.Fatalf("Compile() error = nil, want context.Canceled")
	}
}

func TestEndToEndDiffCompatMigrate(t *testing.T) {
	oldFS := resolver.MapFS{"a.lumos": `#[version("1.0.0")] struct U { id: u64 }`}
	newFS := resolver.MapFS{"a.lumos": `#[version("1.1.0")] struct U { id: u64, email: Option<String> }`}

	oldCU, err := Compile(context.Background(), "a.lumos", Options{FS: oldFS})
	if err != nil {
		t.Fatalf("Compile(old) error = %v", err)
	}
	newCU, err := Compile(context.Background(), "a.lumos", Options{FS: newFS})
	if err != nil {
		t.Fatalf("Compile(new) error = %v", err)
	}

	changes := Diff(oldCU.Schema(), newCU.Schema())
	if len(changes) != 1 {
		t.Fatalf("Diff() = %v, want 1 change", changes)
	}

	report := CheckCompat(oldCU.Schema(), newCU.Schema(), compat.Options{})
	if !report.Compatible || !report.VersionBumpValid {
		t.Fatalf("report = %#v, want compatible with a valid bump", report)
	}

	steps, err := Migrate(oldCU.Schema(), newCU.Schema(), migrate.Options{})
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(steps) != 1 || steps[0].Kind != migrate.AddField {
		t.Fatalf("steps = %#v, want one AddField", steps)
	}
}
