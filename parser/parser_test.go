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

package parser

import (
	"strings"
	"testing"

	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/source"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", src)
	file, err := ParseFile(f)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	return file
}

func TestParseStructWithAliasAndAttrs(t *testing.T) {
	file := mustParse(t, `
type UserId = PublicKey;
#[solana] #[account]
struct Player { id: UserId, level: u16 }
`)
	if len(file.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(file.Items))
	}
	alias, ok := file.Items[0].(*ast.TypeAlias)
	if !ok || alias.Name != "UserId" {
		t.Fatalf("item 0 = %#v, want TypeAlias UserId", file.Items[0])
	}
	sdef, ok := file.Items[1].(*ast.StructDef)
	if !ok || sdef.Name != "Player" {
		t.Fatalf("item 1 = %#v, want StructDef Player", file.Items[1])
	}
	if len(sdef.Attrs) != 2 || sdef.Attrs[0].Key != "solana" || sdef.Attrs[1].Key != "account" {
		t.Fatalf("attrs = %#v", sdef.Attrs)
	}
	if len(sdef.Fields) != 2 || sdef.Fields[0].Name != "id" || sdef.Fields[1].Name != "level" {
		t.Fatalf("fields = %#v", sdef.Fields)
	}
}

func TestParseFixedArrayBoundsRejected(t *testing.T) {
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", `struct S { hash: [u8; 32], tag: [u8; 1025] }`)
	_, err := ParseFile(f)
	if err == nil {
		t.Fatalf("expected a TypeValidation-style parse error for out-of-range array size")
	}
	if !containsAll(err.Message, "1..=1024", "1025") {
		t.Fatalf("error message = %q, missing range/size detail", err.Message)
	}
}

func TestParseFixedArrayBoundsAccepted(t *testing.T) {
	for _, n := range []string{"1", "1024"} {
		src := "struct S { data: [u8; " + n + "] }"
		file := mustParse(t, src)
		sdef := file.Items[0].(*ast.StructDef)
		arr, ok := sdef.Fields[0].Type.(*ast.FixedArrayType)
		if !ok {
			t.Fatalf("field type = %#v, want FixedArrayType", sdef.Fields[0].Type)
		}
		want := 1
		if n == "1024" {
			want = 1024
		}
		if arr.Size != want {
			t.Fatalf("array size = %d, want %d", arr.Size, want)
		}
	}
}

func TestParseEnumVariantKinds(t *testing.T) {
	file := mustParse(t, `
enum Status {
  Active,
  Paused,
}
`)
	edef := file.Items[0].(*ast.EnumDef)
	if len(edef.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(edef.Variants))
	}
	for _, v := range edef.Variants {
		if v.Kind != ast.VariantUnit {
			t.Errorf("variant %s kind = %v, want VariantUnit", v.Name, v.Kind)
		}
	}
}

func TestParseGenericStruct(t *testing.T) {
	file := mustParse(t, `struct Wrapper<T> { value: T, count: u32 }`)
	sdef := file.Items[0].(*ast.StructDef)
	if len(sdef.TypeParams) != 1 || sdef.TypeParams[0] != "T" {
		t.Fatalf("type params = %v", sdef.TypeParams)
	}
	if _, ok := sdef.Fields[0].Type.(*ast.GenericType); !ok {
		t.Fatalf("field 'value' type = %#v, want GenericType", sdef.Fields[0].Type)
	}
}

func TestParseRejectsGenericBounds(t *testing.T) {
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", `struct S<T: Clone> { value: T }`)
	_, err := ParseFile(f)
	if err == nil || !containsAll(err.Message, "bounds") {
		t.Fatalf("expected a bounds-rejection error, got %v", err)
	}
}

func TestParseRejectsInlineModuleBody(t *testing.T) {
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", `mod foo { struct S {} }`)
	_, err := ParseFile(f)
	if err == nil || !containsAll(err.Message, "inline module") {
		t.Fatalf("expected an inline-module-body rejection error, got %v", err)
	}
}

func TestParseRejectsGlobImport(t *testing.T) {
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", `use crate::foo::*;`)
	_, err := ParseFile(f)
	if err == nil || !containsAll(err.Message, "glob") {
		t.Fatalf("expected a glob-import rejection error, got %v", err)
	}
}

func TestParseRejectsGroupedImport(t *testing.T) {
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", `use crate::foo::{a, b};`)
	_, err := ParseFile(f)
	if err == nil || !containsAll(err.Message, "grouped") {
		t.Fatalf("expected a grouped-import rejection error, got %v", err)
	}
}

func TestParseUseWithAlias(t *testing.T) {
	file := mustParse(t, `use crate::vault::Amount as Amt;`)
	use := file.Items[0].(*ast.UseStatement)
	if use.Alias != "Amt" || use.ItemName() != "Amount" {
		t.Fatalf("use = %#v", use)
	}
	if !use.Path.Absolute {
		t.Fatalf("expected an absolute path starting with `crate`")
	}
}

func TestParseImportDecl(t *testing.T) {
	file := mustParse(t, `import { Amount, Rate } from "./a.lumos";`)
	if len(file.Imports) != 1 {
		t.Fatalf("got %d imports, want 1", len(file.Imports))
	}
	imp := file.Imports[0]
	if imp.From != "./a.lumos" || len(imp.Symbols) != 2 {
		t.Fatalf("import = %#v", imp)
	}
}

func TestPrescanImportsTolerantOfTrailingGarbage(t *testing.T) {
	set := source.NewSet()
	f, _ := set.AddFile("t.lumos", `
import { Amount } from "./a.lumos";
import {
  Rate,
  Fee
} from "./b.lumos";
struct S { this is not valid @@@
`)
	refs := PrescanImports(f)
	if len(refs) != 2 {
		t.Fatalf("got %d import refs, want 2: %#v", len(refs), refs)
	}
	if refs[0].From != "./a.lumos" || len(refs[0].Symbols) != 1 {
		t.Fatalf("refs[0] = %#v", refs[0])
	}
	if refs[1].From != "./b.lumos" || len(refs[1].Symbols) != 2 {
		t.Fatalf("refs[1] = %#v", refs[1])
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
