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
	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/ir"
	"github.com/getlumos/lumos-sub001/resolver"
)

// Transform lowers a resolved resolver.Unit into an ir.Schema, running
// the three passes in order: collection, alias expansion, then item
// transformation (spec.md §6).
func Transform(u *resolver.Unit) (*ir.Schema, *errors.SchemaError) {
	col, err := collect(u)
	if err != nil {
		return nil, err
	}

	tr := newTypeResolver(col)
	if err := resolveAliases(tr); err != nil {
		return nil, err
	}

	var defs []*ir.TypeDefinition
	for _, entry := range col.all {
		switch def := entry.item.(type) {
		case *ast.StructDef:
			d, err := transformStruct(tr, entry, def)
			if err != nil {
				return nil, err
			}
			defs = append(defs, d)
		case *ast.EnumDef:
			d, err := transformEnum(tr, entry, def)
			if err != nil {
				return nil, err
			}
			defs = append(defs, d)
		case *ast.TypeAlias:
			target := tr.aliasCache[entry.qualifiedName()]
			defs = append(defs, &ir.TypeDefinition{
				Name:   entry.name,
				Kind:   ir.KindAlias,
				Module: entry.module,
				Alias:  &target,
				Meta:   buildMetadata(def.Attrs),
				Pos:    def.Span(),
			})
		}
	}

	return ir.NewSchema(defs), nil
}

func transformStruct(tr *typeResolver, entry *defEntry, def *ast.StructDef) (*ir.TypeDefinition, *errors.SchemaError) {
	fields := make([]ir.FieldDefinition, 0, len(def.Fields))
	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		if seen[f.Name] {
			return nil, errors.Newf(errors.TypeValidation, f.Span(), "duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		ti, err := tr.resolve(f.Type, entry.file)
		if err != nil {
			return nil, err
		}
		deprecated, msg, keyFlag, maxBound, extra := fieldAttrs(f.Name, f.Attrs)
		fields = append(fields, ir.FieldDefinition{
			Name:              f.Name,
			Type:              ti,
			Deprecated:        deprecated,
			DeprecatedMessage: msg,
			KeyFlag:           keyFlag,
			MaxBound:          maxBound,
			Extra:             extra,
			Pos:               f.Span(),
		})
	}

	return &ir.TypeDefinition{
		Name:   entry.name,
		Kind:   ir.KindStruct,
		Module: entry.module,
		Struct: &ir.StructDefinition{Fields: fields},
		Meta:   buildMetadata(def.Attrs),
		Pos:    def.Span(),
	}, nil
}

func transformEnum(tr *typeResolver, entry *defEntry, def *ast.EnumDef) (*ir.TypeDefinition, *errors.SchemaError) {
	variants := make([]ir.VariantDefinition, 0, len(def.Variants))
	seen := make(map[string]bool, len(def.Variants))
	for i, v := range def.Variants {
		if seen[v.Name] {
			return nil, errors.Newf(errors.TypeValidation, v.Span(), "duplicate variant %q", v.Name)
		}
		seen[v.Name] = true

		vd := ir.VariantDefinition{Name: v.Name, Discriminant: i, Pos: v.Span()}
		switch v.Kind {
		case ast.VariantUnit:
			vd.Shape = ir.ShapeUnit
		case ast.VariantTuple:
			vd.Shape = ir.ShapeTuple
			for _, t := range v.TupleTypes {
				ti, err := tr.resolve(t, entry.file)
				if err != nil {
					return nil, err
				}
				vd.TupleTypes = append(vd.TupleTypes, ti)
			}
		case ast.VariantStruct:
			vd.Shape = ir.ShapeStruct
			fseen := make(map[string]bool, len(v.Fields))
			for _, f := range v.Fields {
				if fseen[f.Name] {
					return nil, errors.Newf(errors.TypeValidation, f.Span(),
						"duplicate field %q in variant %q", f.Name, v.Name)
				}
				fseen[f.Name] = true
				ti, err := tr.resolve(f.Type, entry.file)
				if err != nil {
					return nil, err
				}
				deprecated, msg, keyFlag, maxBound, extra := fieldAttrs(f.Name, f.Attrs)
				vd.Fields = append(vd.Fields, ir.FieldDefinition{
					Name:              f.Name,
					Type:              ti,
					Deprecated:        deprecated,
					DeprecatedMessage: msg,
					KeyFlag:           keyFlag,
					MaxBound:          maxBound,
					Extra:             extra,
					Pos:               f.Span(),
				})
			}
		}
		variants = append(variants, vd)
	}

	return &ir.TypeDefinition{
		Name:   entry.name,
		Kind:   ir.KindEnum,
		Module: entry.module,
		Enum:   &ir.EnumDefinition{Variants: variants},
		Meta:   buildMetadata(def.Attrs),
		Pos:    def.Span(),
	}, nil
}
