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

package diff

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

func TestDiffReflexiveIsEmpty(t *testing.T) {
	s := mustSchema(t, `
struct Vault {
  owner: PublicKey,
  balance: u64,
}
enum Status { Active, Paused(u64), Closed { reason: String } }
`)
	changes := Diff(s, s)
	if len(changes) != 0 {
		t.Fatalf("Diff(s, s) = %v, want empty", changes)
	}
}

func TestDiffDetectsFieldAddedRemovedAndTypeChanged(t *testing.T) {
	oldS := mustSchema(t, `
struct Vault {
  owner: PublicKey,
  balance: u64,
  memo: String,
}
`)
	newS := mustSchema(t, `
struct Vault {
  owner: PublicKey,
  balance: u32,
  locked: bool,
}
`)
	changes := Diff(oldS, newS)

	want := map[EditKind]bool{FieldAdded: false, FieldRemoved: false, FieldTypeChanged: false}
	for _, c := range changes {
		if c.Type != "Vault" {
			t.Fatalf("unexpected type in change: %#v", c)
		}
		if _, ok := want[c.Kind]; ok {
			want[c.Kind] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected a %s change, got %v", k, changes)
		}
	}
}

func TestDiffDetectsTypeAddedAndRemoved(t *testing.T) {
	oldS := mustSchema(t, `struct A { x: u64 }`)
	newS := mustSchema(t, `struct B { y: u64 }`)
	changes := Diff(oldS, newS)
	if len(changes) != 2 {
		t.Fatalf("Diff() = %v, want 2 changes", changes)
	}
	var sawAdded, sawRemoved bool
	for _, c := range changes {
		switch {
		case c.Kind == TypeAdded && c.Type == "B":
			sawAdded = true
		case c.Kind == TypeRemoved && c.Type == "A":
			sawRemoved = true
		}
	}
	if !sawAdded || !sawRemoved {
		t.Fatalf("changes = %v, want TypeAdded(B) and TypeRemoved(A)", changes)
	}
}

func TestDiffDetectsEnumVariantAddedAndDiscriminantShift(t *testing.T) {
	oldS := mustSchema(t, `
enum Status { Active, Closed }
`)
	newS := mustSchema(t, `
enum Status { Active, Paused, Closed }
`)
	changes := Diff(oldS, newS)

	var sawVariantAdded, sawDiscriminantShift bool
	for _, c := range changes {
		if c.Kind == VariantAdded && c.Member == "Paused" {
			sawVariantAdded = true
		}
		if c.Kind == VariantDiscriminantChanged && c.Member == "Closed" {
			sawDiscriminantShift = true
		}
	}
	if !sawVariantAdded {
		t.Errorf("changes = %v, want VariantAdded(Paused)", changes)
	}
	if !sawDiscriminantShift {
		t.Errorf("changes = %v, want VariantDiscriminantChanged(Closed) since inserting Paused shifts it from 1 to 2", changes)
	}
}

func TestDiffDetectsVariantShapeChanged(t *testing.T) {
	oldS := mustSchema(t, `enum Status { Paused }`)
	newS := mustSchema(t, `enum Status { Paused(u64) }`)
	changes := Diff(oldS, newS)
	if len(changes) != 1 || changes[0].Kind != VariantShapeChanged {
		t.Fatalf("changes = %v, want a single VariantShapeChanged", changes)
	}
}

func TestDiffDetectsAliasChanged(t *testing.T) {
	oldS := mustSchema(t, `
type Amount = u64;
struct Vault { balance: Amount }
`)
	newS := mustSchema(t, `
type Amount = u32;
struct Vault { balance: Amount }
`)
	changes := Diff(oldS, newS)

	var sawAliasChanged, sawFieldTypeChanged bool
	for _, c := range changes {
		if c.Kind == AliasChanged && c.Type == "Amount" {
			sawAliasChanged = true
		}
		if c.Kind == FieldTypeChanged && c.Type == "Vault" && c.Member == "balance" {
			sawFieldTypeChanged = true
		}
	}
	if !sawAliasChanged {
		t.Errorf("changes = %v, want AliasChanged(Amount)", changes)
	}
	if !sawFieldTypeChanged {
		t.Errorf("changes = %v, want FieldTypeChanged(Vault.balance) since Amount's expansion changed", changes)
	}
}

func TestDiffDetectsFieldMetadataChanged(t *testing.T) {
	oldS := mustSchema(t, `struct Vault { balance: u64 }`)
	newS := mustSchema(t, `
struct Vault {
  #[deprecated("use balance_v2")]
  balance: u64,
}
`)
	changes := Diff(oldS, newS)
	if len(changes) != 1 || changes[0].Kind != FieldMetadataChanged {
		t.Fatalf("changes = %v, want a single FieldMetadataChanged", changes)
	}
}

func TestDiffDetectsMaxBoundChange(t *testing.T) {
	oldS := mustSchema(t, `struct Vault { #[max(32)] name: String }`)
	newS := mustSchema(t, `struct Vault { #[max(64)] name: String }`)
	changes := Diff(oldS, newS)
	if len(changes) != 1 || changes[0].Kind != FieldMetadataChanged {
		t.Fatalf("changes = %v, want a single FieldMetadataChanged", changes)
	}
}

func TestDiffDetectsTypeKindChanged(t *testing.T) {
	oldS := mustSchema(t, `struct Status { code: u64 }`)
	newS := mustSchema(t, `enum Status { Active, Closed }`)
	changes := Diff(oldS, newS)
	if len(changes) != 1 || changes[0].Kind != TypeKindChanged {
		t.Fatalf("changes = %v, want a single TypeKindChanged", changes)
	}
}
