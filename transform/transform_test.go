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

package transform

import (
	"testing"

	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/ir"
	"github.com/getlumos/lumos-sub001/resolver"
)

func mustLoad(t *testing.T, fs resolver.MapFS, entry string) *resolver.Unit {
	t.Helper()
	u, err := resolver.Load(entry, fs)
	if err != nil {
		t.Fatalf("resolver.Load() error = %v", err)
	}
	return u
}

func TestTransformResolvesPrimitiveVecOptionFixedArray(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
struct Record {
  id: u64,
  tags: [String],
  nickname: Option<String>,
  hash: [u8; 32],
}
`,
	}
	u := mustLoad(t, fs, "a.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	def, ok := schema.Lookup("Record")
	if !ok {
		t.Fatalf("Record not found in schema")
	}
	fields := def.Struct.Fields
	if fields[0].Type.Kind != ir.InfoPrimitive || fields[0].Type.Primitive != "u64" {
		t.Errorf("id field = %#v", fields[0].Type)
	}
	if fields[1].Type.Kind != ir.InfoVec || fields[1].Type.Elem.Kind != ir.InfoPrimitive {
		t.Errorf("tags field = %#v", fields[1].Type)
	}
	if fields[2].Type.Kind != ir.InfoOption {
		t.Errorf("nickname field = %#v", fields[2].Type)
	}
	if fields[3].Type.Kind != ir.InfoFixedArray || fields[3].Type.ArraySize != 32 {
		t.Errorf("hash field = %#v", fields[3].Type)
	}
}

func TestTransformExpandsAliasChain(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
type Raw = u64;
type Amount = Raw;
struct Vault { balance: Amount }
`,
	}
	u := mustLoad(t, fs, "a.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	def, _ := schema.Lookup("Vault")
	ty := def.Struct.Fields[0].Type
	if ty.Kind != ir.InfoPrimitive || ty.Primitive != "u64" {
		t.Fatalf("balance field = %#v, want fully-expanded u64 primitive", ty)
	}
}

func TestTransformRejectsCircularAlias(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
type A = B;
type B = A;
struct S { x: u64 }
`,
	}
	u := mustLoad(t, fs, "a.lumos")
	_, err := Transform(u)
	if err == nil || err.Kind != errors.CircularAlias {
		t.Fatalf("err = %v, want CircularAlias", err)
	}
}

func TestTransformRejectsUnknownType(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `struct S { x: DoesNotExist }`,
	}
	u := mustLoad(t, fs, "a.lumos")
	_, err := Transform(u)
	if err == nil || err.Kind != errors.TypeValidation {
		t.Fatalf("err = %v, want TypeValidation", err)
	}
}

func TestTransformAssignsSequentialDiscriminants(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
enum Status {
  Active,
  Paused(u64),
  Closed { reason: String },
}
`,
	}
	u := mustLoad(t, fs, "a.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	def, _ := schema.Lookup("Status")
	variants := def.Enum.Variants
	for i, v := range variants {
		if v.Discriminant != i {
			t.Errorf("variant %s discriminant = %d, want %d", v.Name, v.Discriminant, i)
		}
	}
	if variants[0].Shape != ir.ShapeUnit || variants[1].Shape != ir.ShapeTuple || variants[2].Shape != ir.ShapeStruct {
		t.Fatalf("shapes = %v %v %v", variants[0].Shape, variants[1].Shape, variants[2].Shape)
	}
}

func TestTransformRejectsDuplicateField(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `struct S { x: u64, x: u32 }`,
	}
	u := mustLoad(t, fs, "a.lumos")
	_, err := Transform(u)
	if err == nil || err.Kind != errors.TypeValidation {
		t.Fatalf("err = %v, want TypeValidation", err)
	}
}

func TestTransformMetadataAndDeprecation(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
#[account] #[version("1.2.3")] #[derive(Debug, Clone)]
struct Vault {
  #[deprecated]
  legacy_balance: u64,
  #[deprecated("use balance_v2 instead")]
  balance: u64,
}
`,
	}
	u := mustLoad(t, fs, "a.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	def, _ := schema.Lookup("Vault")
	if !def.Meta.IsAccount || def.Meta.Version != "1.2.3" {
		t.Fatalf("meta = %#v", def.Meta)
	}
	if len(def.Meta.CustomDerives) != 2 {
		t.Fatalf("derives = %v", def.Meta.CustomDerives)
	}
	f0, f1 := def.Struct.Fields[0], def.Struct.Fields[1]
	if !f0.Deprecated || f0.DeprecatedMessage != `field "legacy_balance" is deprecated` {
		t.Errorf("legacy_balance field = %#v", f0)
	}
	if !f1.Deprecated || f1.DeprecatedMessage != "use balance_v2 instead" {
		t.Errorf("balance field = %#v", f1)
	}
}

func TestTransformFieldKeyAndMaxBound(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
struct Vault {
  #[key]
  owner: PublicKey,
  #[max(64)]
  name: String,
  #[custom("whatever")]
  notes: String,
}
`,
	}
	u := mustLoad(t, fs, "a.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	def, _ := schema.Lookup("Vault")
	owner, name, notes := def.Struct.Fields[0], def.Struct.Fields[1], def.Struct.Fields[2]

	if !owner.KeyFlag {
		t.Errorf("owner.KeyFlag = false, want true")
	}
	if name.MaxBound == nil || *name.MaxBound != 64 {
		t.Errorf("name.MaxBound = %v, want 64", name.MaxBound)
	}
	if owner.MaxBound != nil {
		t.Errorf("owner.MaxBound = %v, want nil", owner.MaxBound)
	}
	if attr, ok := notes.Extra["custom"]; !ok || attr.Literal != "whatever" {
		t.Errorf("notes.Extra[\"custom\"] = %#v, want {Literal: \"whatever\"}", notes.Extra["custom"])
	}
}

func TestTransformCrossModuleStructReference(t *testing.T) {
	fs := resolver.MapFS{
		"root.lumos": `
mod vault;
use crate::vault::Balance;
struct Top { balance: Balance }
`,
		"vault.lumos": `pub struct Balance { amount: u64 }`,
	}
	u := mustLoad(t, fs, "root.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	top, ok := schema.Lookup("Top")
	if !ok {
		t.Fatalf("Top not found")
	}
	ty := top.Struct.Fields[0].Type
	if ty.Kind != ir.InfoStruct || ty.RefName != "vault::Balance" {
		t.Fatalf("balance field = %#v, want a reference to vault::Balance", ty)
	}
	if _, ok := schema.Lookup("vault::Balance"); !ok {
		t.Fatalf("vault::Balance not present in schema")
	}
}

func TestTransformImportModeResolvesAcrossFiles(t *testing.T) {
	fs := resolver.MapFS{
		"a.lumos": `
import { Amount } from "./types.lumos";
struct Vault { balance: Amount }
`,
		"types.lumos": `type Amount = u64;`,
	}
	u := mustLoad(t, fs, "a.lumos")
	schema, err := Transform(u)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	def, _ := schema.Lookup("Vault")
	ty := def.Struct.Fields[0].Type
	if ty.Kind != ir.InfoPrimitive || ty.Primitive != "u64" {
		t.Fatalf("balance field = %#v", ty)
	}
}
