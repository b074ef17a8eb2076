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

// Package ir declares the fully-resolved, post-transform representation
// of a schema: every type name has been checked to exist, every alias
// has been expanded into a TypeInfo, and every enum variant carries a
// stable discriminant. This is what the diff engine, the compatibility
// checker, and the migration scaffolder all operate on — none of them
// ever sees an ast.TypeSpec again.
package ir

import "github.com/getlumos/lumos-sub001/source"

// Kind distinguishes the three shapes a TypeDefinition can take.
type Kind int

const (
	KindStruct Kind = iota
	KindEnum
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	default:
		return "?"
	}
}

// TypeDefinition is one resolved top-level (or module-level) type: a
// struct, an enum, or a resolved type alias.
type TypeDefinition struct {
	Name   string
	Kind   Kind
	Module string // dotted module path, "" outside of Module mode
	Struct *StructDefinition // valid when Kind == KindStruct
	Enum   *EnumDefinition   // valid when Kind == KindEnum
	Alias  *TypeInfo         // valid when Kind == KindAlias: the expanded target
	Meta   Metadata
	Pos    source.Span
}

// QualifiedName is Module + "::" + Name when Module is non-empty,
// otherwise just Name — the stable identifier the diff engine keys on.
func (d *TypeDefinition) QualifiedName() string {
	if d.Module == "" {
		return d.Name
	}
	return d.Module + "::" + d.Name
}

// StructDefinition is the resolved shape of a struct: an ordered field
// list with no duplicate names.
type StructDefinition struct {
	Fields []FieldDefinition
}

// FieldDefinition is one resolved struct (or struct-shaped variant)
// field.
type FieldDefinition struct {
	Name       string
	Type       TypeInfo
	Deprecated bool
	DeprecatedMessage string // defaults to `field "<name>" is deprecated` if empty and Deprecated
	KeyFlag    bool    // #[key]: marks the field as a PDA seed component (informational)
	MaxBound   *int    // #[max(N)]: upper bound for variable-length strings/sequences, nil if absent
	Extra      map[string]Attr // every other recognized or unrecognized field attribute, keyed by name
	Pos        source.Span
}

// VariantShape distinguishes the three shapes an enum variant can take,
// mirroring ast.VariantKind but at the resolved level.
type VariantShape int

const (
	ShapeUnit VariantShape = iota
	ShapeTuple
	ShapeStruct
)

// VariantDefinition is one resolved enum variant with its assigned,
// stable discriminant.
type VariantDefinition struct {
	Name          string
	Shape         VariantShape
	Discriminant  int
	TupleTypes    []TypeInfo        // valid when Shape == ShapeTuple
	Fields        []FieldDefinition // valid when Shape == ShapeStruct
	Pos           source.Span
}

// EnumDefinition is the resolved shape of an enum: an ordered variant
// list with sequential discriminants assigned at transform time
// (spec.md §6: "variant discriminants are assigned sequentially
// starting at 0, in declaration order").
type EnumDefinition struct {
	Variants []VariantDefinition
}

// TypeInfoKind distinguishes the resolved reference kinds a TypeInfo can
// hold, after alias expansion and UserDefined classification.
type TypeInfoKind int

const (
	InfoPrimitive TypeInfoKind = iota
	InfoDomain
	InfoVec
	InfoOption
	InfoFixedArray
	InfoStruct // reference to a resolved struct definition, by qualified name
	InfoEnum   // reference to a resolved enum definition, by qualified name
	InfoGeneric
)

// TypeInfo is a fully resolved type reference: aliases have been
// expanded away (spec.md §4.3), and any UserDefinedType name has been
// classified as either InfoStruct or InfoEnum.
type TypeInfo struct {
	Kind      TypeInfoKind
	Primitive string // valid when Kind == InfoPrimitive (e.g. "u64")
	Domain    string // valid when Kind == InfoDomain (e.g. "PublicKey")
	Elem      *TypeInfo // valid when Kind is InfoVec, InfoOption, or InfoFixedArray
	ArraySize int       // valid when Kind == InfoFixedArray
	RefName   string    // qualified name, valid when Kind is InfoStruct or InfoEnum
	GenericName string  // valid when Kind == InfoGeneric
}

// Metadata carries the attribute-derived facts a definition exports to
// downstream generators, per spec.md §5 ("Metadata").
type Metadata struct {
	IsAccount      bool
	IsInstruction  bool
	Version        string // SemVer string from #[version("...")], empty if absent
	CustomDerives  []string
	Deprecated     bool
	DeprecatedMessage string
	Extra          map[string]Attr // every other recognized or unrecognized attribute, keyed by name
}

// Attr is the resolved form of an ast.Attribute retained in Metadata.Extra.
type Attr struct {
	Literal string
	List    []string
}

// Schema is the complete output of the transform pass: every resolved
// type definition in a compilation, indexed by qualified name.
type Schema struct {
	Definitions []*TypeDefinition
	byName      map[string]*TypeDefinition
}

// NewSchema builds a Schema from defs, indexing them by QualifiedName.
// Callers (the transform pass) are expected to have already rejected
// duplicate names; NewSchema does not re-check.
func NewSchema(defs []*TypeDefinition) *Schema {
	s := &Schema{Definitions: defs, byName: make(map[string]*TypeDefinition, len(defs))}
	for _, d := range defs {
		s.byName[d.QualifiedName()] = d
	}
	return s
}

// Lookup returns the definition registered under qualifiedName, if any.
func (s *Schema) Lookup(qualifiedName string) (*TypeDefinition, bool) {
	d, ok := s.byName[qualifiedName]
	return d, ok
}

// ByModule groups every definition by its dotted module path.
func (s *Schema) ByModule() map[string][]*TypeDefinition {
	out := make(map[string][]*TypeDefinition)
	for _, d := range s.Definitions {
		out[d.Module] = append(out[d.Module], d)
	}
	return out
}
