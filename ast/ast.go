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

// Package ast declares the concrete syntax tree produced by the lumos
// parser: items, type references, attributes, visibility, and module
// paths, each carrying a source.Span.
package ast

import "github.com/getlumos/lumos-sub001/source"

// A Node is any AST node. Every node carries the span of the source
// text it was parsed from.
type Node interface {
	Span() source.Span
}

// Item is implemented by every top-level (or module-level) declaration:
// StructDef, EnumDef, TypeAlias, ModuleDecl, UseStatement.
type Item interface {
	Node
	itemNode()
}

func (*StructDef) itemNode()    {}
func (*EnumDef) itemNode()      {}
func (*TypeAlias) itemNode()    {}
func (*ModuleDecl) itemNode()   {}
func (*UseStatement) itemNode() {}

// Visibility is Public or Private; it defaults to Private wherever the
// surface syntax omits `pub`.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "pub"
	}
	return "private"
}

// Ident is a bare identifier with its span.
type Ident struct {
	Name string
	Pos  source.Span
}

func (i *Ident) Span() source.Span { return i.Pos }

// AttrValueKind distinguishes the three shapes an attribute's value can
// take, per spec.md §9 ("Deep attribute polymorphism"): a bare flag
// (`#[solana]`), a single literal (`#[version("1.0.0")]`), or a list
// (`#[derive(A,B)]`).
type AttrValueKind int

const (
	AttrFlag AttrValueKind = iota
	AttrLiteral
	AttrList
)

// Attribute is a `#[key]` or `#[key(value_list)]` annotation. Unknown
// keys are preserved verbatim (Kind/Literal/List populated the same
// way as recognized ones) so generators can act on them without any
// change to the core.
type Attribute struct {
	Key     string
	Kind    AttrValueKind
	Literal string   // valid when Kind == AttrLiteral
	List    []string // valid when Kind == AttrList
	AttrPos source.Span
}

func (a Attribute) Span() source.Span { return a.AttrPos }

// TypeSpec is any type reference appearing in a field, variant, or
// alias target.
type TypeSpec interface {
	Node
	typeSpecNode()
}

func (*PrimitiveType) typeSpecNode()  {}
func (*DomainType) typeSpecNode()     {}
func (*VecType) typeSpecNode()        {}
func (*OptionType) typeSpecNode()     {}
func (*FixedArrayType) typeSpecNode() {}
func (*GenericType) typeSpecNode()    {}
func (*UserDefinedType) typeSpecNode() {}

// Primitive enumerates the built-in scalar kinds.
type Primitive int

const (
	U8 Primitive = iota
	U16
	U32
	U64
	U128
	I8
	I16
	I32
	I64
	I128
	Bool
	StringPrim
)

var primitiveNames = map[string]Primitive{
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "u128": U128,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "i128": I128,
	"bool": Bool, "String": StringPrim,
}

// LookupPrimitive reports whether name is a primitive type keyword.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitiveNames[name]
	return p, ok
}

func (p Primitive) String() string {
	for name, v := range primitiveNames {
		if v == p {
			return name
		}
	}
	return "?"
}

// PrimitiveType references one of the built-in scalar kinds.
type PrimitiveType struct {
	Kind    Primitive
	TypePos source.Span
}

func (t *PrimitiveType) Span() source.Span { return t.TypePos }

// Domain enumerates the Solana-specific scalar kinds.
type Domain int

const (
	PublicKey Domain = iota
	Signature
)

func (d Domain) String() string {
	if d == PublicKey {
		return "PublicKey"
	}
	return "Signature"
}

// LookupDomain reports whether name is a domain-primitive keyword.
func LookupDomain(name string) (Domain, bool) {
	switch name {
	case "PublicKey":
		return PublicKey, true
	case "Signature":
		return Signature, true
	}
	return 0, false
}

// DomainType references PublicKey or Signature.
type DomainType struct {
	Kind    Domain
	TypePos source.Span
}

func (t *DomainType) Span() source.Span { return t.TypePos }

// VecType is `Vec(T)` (surface syntax: `[T]`).
type VecType struct {
	Elem    TypeSpec
	TypePos source.Span
}

func (t *VecType) Span() source.Span { return t.TypePos }

// OptionType is `Option(T)`.
type OptionType struct {
	Elem    TypeSpec
	TypePos source.Span
}

func (t *OptionType) Span() source.Span { return t.TypePos }

// FixedArrayType is `[T; N]`. N's own span is kept separately so that
// a bounds-violation error can point at the size literal rather than
// at the whole array type.
type FixedArrayType struct {
	Elem     TypeSpec
	Size     int
	SizeSpan source.Span
	TypePos  source.Span
}

func (t *FixedArrayType) Span() source.Span { return t.TypePos }

// GenericType is a reference to a type parameter bound by the
// enclosing item, e.g. `T` inside `struct Wrapper<T> { value: T }`.
type GenericType struct {
	Name    string
	TypePos source.Span
}

func (t *GenericType) Span() source.Span { return t.TypePos }

// UserDefinedType is an unresolved name; the transform pass classifies
// it as a struct, enum, or alias reference.
type UserDefinedType struct {
	Name    string
	TypePos source.Span
}

func (t *UserDefinedType) Span() source.Span { return t.TypePos }

// Field is one field of a struct or of a struct-shaped enum variant.
type Field struct {
	Name     string
	Type     TypeSpec
	Attrs    []Attribute
	FieldPos source.Span
}

func (f *Field) Span() source.Span { return f.FieldPos }

// VariantKind distinguishes the three shapes an enum variant can take.
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantTuple
	VariantStruct
)

// Variant is one arm of an enum.
type Variant struct {
	Name       string
	Kind       VariantKind
	TupleTypes []TypeSpec // valid when Kind == VariantTuple
	Fields     []*Field   // valid when Kind == VariantStruct
	Attrs      []Attribute
	VariantPos source.Span
}

func (v *Variant) Span() source.Span { return v.VariantPos }

// StructDef is `struct Name<T,...> { field: Type, ... }`.
type StructDef struct {
	Visibility Visibility
	Name       string
	TypeParams []string
	Fields     []*Field
	Attrs      []Attribute
	DefPos     source.Span
}

func (s *StructDef) Span() source.Span { return s.DefPos }

// EnumDef is `enum Name<T,...> { Variant, ... }`.
type EnumDef struct {
	Visibility Visibility
	Name       string
	TypeParams []string
	Variants   []*Variant
	Attrs      []Attribute
	DefPos     source.Span
}

func (e *EnumDef) Span() source.Span { return e.DefPos }

// TypeAlias is `type Name = Type;`.
type TypeAlias struct {
	Visibility Visibility
	Name       string
	Target     TypeSpec
	Attrs      []Attribute
	DefPos     source.Span
}

func (a *TypeAlias) Span() source.Span { return a.DefPos }

// ModuleDecl is `mod name;`: an external module declaration. Inline
// module bodies are rejected by the parser (spec.md §4.1).
type ModuleDecl struct {
	Visibility Visibility
	Name       string
	DefPos     source.Span
}

func (m *ModuleDecl) Span() source.Span { return m.DefPos }

// PathSegmentKind distinguishes the keyword segments of a ModulePath
// from plain identifiers.
type PathSegmentKind int

const (
	SegIdent PathSegmentKind = iota
	SegCrate
	SegSuper
	SegSelf
)

// PathSegment is one `::`-separated component of a ModulePath.
type PathSegment struct {
	Kind PathSegmentKind
	Name string // valid when Kind == SegIdent
}

// ModulePath is a sequence of segments with an absolute/relative flag,
// as used by UseStatement.
type ModulePath struct {
	Absolute bool
	Segments []PathSegment
	PathPos  source.Span
}

func (p ModulePath) Span() source.Span { return p.PathPos }

// UseStatement is `use Path::Name (as Alias)?;`. The item name being
// imported is the last segment of Path, per spec.md §3/§4.2.
type UseStatement struct {
	Path   ModulePath
	Alias  string // empty if no alias
	DefPos source.Span
}

// ItemName returns the final segment of the use path — the name of the
// item being imported.
func (u *UseStatement) ItemName() string {
	if len(u.Path.Segments) == 0 {
		return ""
	}
	return u.Path.Segments[len(u.Path.Segments)-1].Name
}

func (u *UseStatement) Span() source.Span { return u.DefPos }

// ImportDecl is `import { Sym, ... } from "path";`, the flat-import
// surface form used in Import mode (spec.md §4.2).
type ImportDecl struct {
	Symbols []*Ident
	From    string // the string literal's decoded value
	DefPos  source.Span
}

func (i *ImportDecl) Span() source.Span { return i.DefPos }

// File is the AST for a single parsed source file.
type File struct {
	Path    string
	Imports []*ImportDecl
	Items   []Item
}
