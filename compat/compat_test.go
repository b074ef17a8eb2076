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

package compat

import (
	"testing"

	"github.com/getlumos/lumos-sub001/ir"
	"github.com/getlumos/lumos-sub001/resolver"
	"github.com/getlumos/lumos-sub001/transform"
)

func mustSchema(t *testing.T, source string) *ir.Schema {
	t.Helper()
	fs := resolver.MapFS{"a.lumos": source}
	u, err := resolver.Load("a.lumos", fs)
	if err != nil {
		t.Fatalf("resolver.Load() error = %v", err)
	}
	schema, terr := transform.Transform(u)
	if terr != nil {
		t.Fatalf("transform.Transform() error = %v", terr)
	}
	return schema
}

func TestCheckReflexiveIsCompatible(t *testing.T) {
	s := mustSchema(t, `struct U { id: u64 }`)
	report := Check(s, s, Options{})
	if !report.Compatible || len(report.Issues) != 0 {
		t.Fatalf("report = %#v, want compatible with no issues", report)
	}
}

func TestCheckOptionalFieldAddedIsCompatible(t *testing.T) {
	oldS := mustSchema(t, `#[version("1.0.0")] struct U { id: u64 }`)
	newS := mustSchema(t, `#[version("1.1.0")] struct U { id: u64, email: Option<String> }`)

	report := Check(oldS, newS, Options{})
	if !report.Compatible {
		t.Fatalf("report.Compatible = false, want true: %#v", report.Issues)
	}
	if !report.VersionBumpValid {
		t.Fatalf("report.VersionBumpValid = false, want true: %#v", report)
	}
	if len(report.Issues) != 1 || report.Issues[0].Severity != SeverityCompatible {
		t.Fatalf("issues = %#v, want one Compatible issue", report.Issues)
	}
}

func TestCheckRequiredFieldAddedIsBreaking(t *testing.T) {
	oldS := mustSchema(t, `struct U { id: u64 }`)
	newS := mustSchema(t, `struct U { id: u64, email: String }`)

	report := Check(oldS, newS, Options{})
	if report.Compatible {
		t.Fatalf("report.Compatible = true, want false")
	}
	if len(report.Issues) != 1 || report.Issues[0].Severity != SeverityBreaking {
		t.Fatalf("issues = %#v, want one Breaking issue", report.Issues)
	}
}

func TestCheckMidEnumInsertionIsBreaking(t *testing.T) {
	oldS := mustSchema(t, `enum Status { Active, Paused }`)
	newS := mustSchema(t, `enum Status { Active, Completed, Paused }`)

	report := Check(oldS, newS, Options{})
	if report.Compatible {
		t.Fatalf("report.Compatible = true, want false (discriminants renumbered)")
	}
	var sawBreakingDiscriminant bool
	for _, is := range report.Issues {
		if is.Severity == SeverityBreaking && is.TypeName == "Status" {
			sawBreakingDiscriminant = true
		}
	}
	if !sawBreakingDiscriminant {
		t.Fatalf("issues = %#v, want a Breaking issue on Status", report.Issues)
	}
}

func TestCheckVariantAddedAtEndIsCompatible(t *testing.T) {
	oldS := mustSchema(t, `enum Status { Active, Paused }`)
	newS := mustSchema(t, `enum Status { Active, Paused, Closed }`)

	report := Check(oldS, newS, Options{})
	if !report.Compatible {
		t.Fatalf("report.Compatible = false, want true: %#v", report.Issues)
	}
	if len(report.Issues) != 1 || report.Issues[0].Severity != SeverityCompatible {
		t.Fatalf("issues = %#v, want one Compatible issue", report.Issues)
	}
}

func TestCheckInsufficientVersionBumpIsWarning(t *testing.T) {
	oldS := mustSchema(t, `#[version("1.0.0")] struct U { id: u64 }`)
	newS := mustSchema(t, `#[version("1.0.1")] struct U { email: String, id: u64 }`)

	report := Check(oldS, newS, Options{})
	if !report.Compatible {
		// Breaking from the field-shape change, independent of the bump check.
	}
	if report.VersionBumpValid {
		t.Fatalf("report.VersionBumpValid = true, want false (patch bump insufficient for a breaking change)")
	}
	var sawWarning bool
	for _, is := range report.Issues {
		if is.Severity == SeverityWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Fatalf("issues = %#v, want a Warning issue for the insufficient bump", report.Issues)
	}
}

func TestCheckStrictEscalatesInsufficientBump(t *testing.T) {
	oldS := mustSchema(t, `#[version("1.0.0")] struct U { id: u64, email: Option<String> }`)
	newS := mustSchema(t, `#[version("1.0.1")] struct U { id: u64, email: Option<String>, nickname: Option<String> }`)

	report := Check(oldS, newS, Options{Strict: true})
	if report.Compatible {
		t.Fatalf("report.Compatible = true, want false under strict mode with an insufficient bump")
	}
}

func TestCheckDeprecatedFieldIsInfo(t *testing.T) {
	oldS := mustSchema(t, `struct U { id: u64 }`)
	newS := mustSchema(t, `
struct U {
  #[deprecated]
  id: u64,
}
`)
	report := Check(oldS, newS, Options{})
	if !report.Compatible {
		t.Fatalf("report.Compatible = false, want true")
	}
	if len(report.Issues) != 1 || report.Issues[0].Severity != SeverityInfo {
		t.Fatalf("issues = %#v, want one Info issue", report.Issues)
	}
}

func TestCheckMaxBoundChangeIsBreaking(t *testing.T) {
	oldS := mustSchema(t, `struct U { #[max(32)] name: String }`)
	newS := mustSchema(t, `struct U { #[max(16)] name: String }`)
	report := Check(oldS, newS, Options{})
	if report.Compatible {
		t.Fatalf("report.Compatible = true, want false for a shrunk max(N) bound")
	}
	if len(report.Issues) != 1 || report.Issues[0].Severity != SeverityBreaking {
		t.Fatalf("issues = %#v, want one Breaking issue", report.Issues)
	}
}
