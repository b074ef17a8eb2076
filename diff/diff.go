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

// Package diff compares two ir.Schema snapshots of the same logical
// schema (an older and a newer version) and produces a flat, ordered
// list of Changes. Unlike a general-purpose value differ, it never
// recurses into unrelated substructures: every Change names exactly one
// type and, where relevant, exactly one field or variant of it.
package diff

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getlumos/lumos-sub001/ir"
)

// EditKind classifies one detected difference.
type EditKind int

const (
	TypeAdded EditKind = iota
	TypeRemoved
	TypeKindChanged
	FieldAdded
	FieldRemoved
	FieldTypeChanged
	FieldMetadataChanged
	VariantAdded
	VariantRemoved
	VariantShapeChanged
	VariantDiscriminantChanged
	AliasChanged
)

var editKindNames = [...]string{
	TypeAdded:                  "TypeAdded",
	TypeRemoved:                "TypeRemoved",
	TypeKindChanged:            "TypeKindChanged",
	FieldAdded:                 "FieldAdded",
	FieldRemoved:               "FieldRemoved",
	FieldTypeChanged:           "FieldTypeChanged",
	FieldMetadataChanged:       "FieldMetadataChanged",
	VariantAdded:               "VariantAdded",
	VariantRemoved:             "VariantRemoved",
	VariantShapeChanged:        "VariantShapeChanged",
	VariantDiscriminantChanged: "VariantDiscriminantChanged",
	AliasChanged:               "AliasChanged",
}

func (k EditKind) String() string {
	if int(k) >= 0 && int(k) < len(editKindNames) {
		return editKindNames[k]
	}
	return "Unknown"
}

// MarshalJSON renders the kind's name rather than its numeric value, so
// `--format json` output is readable without the EditKind constants.
func (k EditKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Change is one detected difference between an old and a new schema.
// Member is empty for type-level changes (TypeAdded, TypeRemoved,
// TypeKindChanged, AliasChanged) and names the affected field or
// variant otherwise.
type Change struct {
	Kind    EditKind
	Type    string // qualified type name
	Member  string
	Message string
}

// Diff compares oldSchema against newSchema and returns every detected
// Change, sorted by (Type, Member, Kind) so that diffing a schema
// against itself deterministically yields an empty slice and repeated
// runs over the same pair are always identical.
func Diff(oldSchema, newSchema *ir.Schema) []Change {
	oldByName := indexByName(oldSchema)
	newByName := indexByName(newSchema)

	var changes []Change

	for name, oldDef := range oldByName {
		newDef, ok := newByName[name]
		if !ok {
			changes = append(changes, Change{Kind: TypeRemoved, Type: name,
				Message: fmt.Sprintf("type %q was removed", name)})
			continue
		}
		changes = append(changes, diffType(oldDef, newDef)...)
	}
	for name, newDef := range newByName {
		if _, ok := oldByName[name]; !ok {
			_ = newDef
			changes = append(changes, Change{Kind: TypeAdded, Type: name,
				Message: fmt.Sprintf("type %q was added", name)})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i], changes[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Member != b.Member {
			return a.Member < b.Member
		}
		return a.Kind < b.Kind
	})
	return changes
}

func indexByName(s *ir.Schema) map[string]*ir.TypeDefinition {
	out := make(map[string]*ir.TypeDefinition, len(s.Definitions))
	for _, d := range s.Definitions {
		out[d.QualifiedName()] = d
	}
	return out
}

func diffType(oldDef, newDef *ir.TypeDefinition) []Change {
	name := oldDef.QualifiedName()
	if oldDef.Kind != newDef.Kind {
		return []Change{{Kind: TypeKindChanged, Type: name,
			Message: fmt.Sprintf("type %q changed from %s to %s", name, oldDef.Kind, newDef.Kind)}}
	}

	switch oldDef.Kind {
	case ir.KindAlias:
		if !typeInfoEqual(*oldDef.Alias, *newDef.Alias) {
			return []Change{{Kind: AliasChanged, Type: name,
				Message: fmt.Sprintf("alias %q now resolves to a different type", name)}}
		}
	case ir.KindStruct:
		return diffStruct(name, oldDef.Struct, newDef.Struct)
	case ir.KindEnum:
		return diffEnum(name, oldDef.Enum, newDef.Enum)
	}
	return nil
}

func diffStruct(typeName string, oldDef, newDef *ir.StructDefinition) []Change {
	oldFields := fieldsByName(oldDef.Fields)
	newFields := fieldsByName(newDef.Fields)

	var changes []Change
	for name, of := range oldFields {
		nf, ok := newFields[name]
		if !ok {
			changes = append(changes, Change{Kind: FieldRemoved, Type: typeName, Member: name,
				Message: fmt.Sprintf("field %q was removed", name)})
			continue
		}
		if !typeInfoEqual(of.Type, nf.Type) {
			changes = append(changes, Change{Kind: FieldTypeChanged, Type: typeName, Member: name,
				Message: fmt.Sprintf("field %q changed type", name)})
		}
		if of.Deprecated != nf.Deprecated || of.DeprecatedMessage != nf.DeprecatedMessage || !maxBoundEqual(of.MaxBound, nf.MaxBound) {
			changes = append(changes, Change{Kind: FieldMetadataChanged, Type: typeName, Member: name,
				Message: fmt.Sprintf("field %q's metadata changed", name)})
		}
	}
	for name := range newFields {
		if _, ok := oldFields[name]; !ok {
			changes = append(changes, Change{Kind: FieldAdded, Type: typeName, Member: name,
				Message: fmt.Sprintf("field %q was added", name)})
		}
	}
	return changes
}

func fieldsByName(fields []ir.FieldDefinition) map[string]ir.FieldDefinition {
	out := make(map[string]ir.FieldDefinition, len(fields))
	for _, f := range fields {
		out[f.Name] = f
	}
	return out
}

func diffEnum(typeName string, oldDef, newDef *ir.EnumDefinition) []Change {
	oldVariants := variantsByName(oldDef.Variants)
	newVariants := variantsByName(newDef.Variants)

	var changes []Change
	for name, ov := range oldVariants {
		nv, ok := newVariants[name]
		if !ok {
			changes = append(changes, Change{Kind: VariantRemoved, Type: typeName, Member: name,
				Message: fmt.Sprintf("variant %q was removed", name)})
			continue
		}
		if ov.Shape != nv.Shape || !variantPayloadEqual(ov, nv) {
			changes = append(changes, Change{Kind: VariantShapeChanged, Type: typeName, Member: name,
				Message: fmt.Sprintf("variant %q changed shape", name)})
		}
		if ov.Discriminant != nv.Discriminant {
			changes = append(changes, Change{Kind: VariantDiscriminantChanged, Type: typeName, Member: name,
				Message: fmt.Sprintf("variant %q's discriminant changed from %d to %d (likely caused by a "+
					"variant inserted or removed earlier in the declaration order)", name, ov.Discriminant, nv.Discriminant)})
		}
	}
	for name := range newVariants {
		if _, ok := oldVariants[name]; !ok {
			changes = append(changes, Change{Kind: VariantAdded, Type: typeName, Member: name,
				Message: fmt.Sprintf("variant %q was added", name)})
		}
	}
	return changes
}

func variantsByName(variants []ir.VariantDefinition) map[string]ir.VariantDefinition {
	out := make(map[string]ir.VariantDefinition, len(variants))
	for _, v := range variants {
		out[v.Name] = v
	}
	return out
}

func variantPayloadEqual(a, b ir.VariantDefinition) bool {
	if a.Shape != b.Shape {
		return false
	}
	switch a.Shape {
	case ir.ShapeTuple:
		if len(a.TupleTypes) != len(b.TupleTypes) {
			return false
		}
		for i := range a.TupleTypes {
			if !typeInfoEqual(a.TupleTypes[i], b.TupleTypes[i]) {
				return false
			}
		}
	case ir.ShapeStruct:
		af, bf := fieldsByName(a.Fields), fieldsByName(b.Fields)
		if len(af) != len(bf) {
			return false
		}
		for name, fa := range af {
			fb, ok := bf[name]
			if !ok || !typeInfoEqual(fa.Type, fb.Type) {
				return false
			}
		}
	}
	return true
}

// typeInfoEqual deep-compares two resolved type references.
func typeInfoEqual(a, b ir.TypeInfo) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.InfoPrimitive:
		return a.Primitive == b.Primitive
	case ir.InfoDomain:
		return a.Domain == b.Domain
	case ir.InfoVec, ir.InfoOption:
		return typeInfoEqual(*a.Elem, *b.Elem)
	case ir.InfoFixedArray:
		return a.ArraySize == b.ArraySize && typeInfoEqual(*a.Elem, *b.Elem)
	case ir.InfoStruct, ir.InfoEnum:
		return a.RefName == b.RefName
	case ir.InfoGeneric:
		return a.GenericName == b.GenericName
	}
	return true
}

// maxBoundEqual compares two #[max(N)] bounds, either of which may be
// absent (nil).
func maxBoundEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
