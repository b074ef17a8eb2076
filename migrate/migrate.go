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

// Package migrate turns a schema diff into an ordered, language-independent
// list of migration steps a generator or operator can act on. It never
// touches stored data itself; it only describes what a migration would
// need to do.
package migrate

import (
	"encoding/json"
	"fmt"

	"github.com/getlumos/lumos-sub001/diff"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/ir"
	"github.com/getlumos/lumos-sub001/source"
)

// StepKind distinguishes the five migration-step shapes.
type StepKind int

const (
	AddField StepKind = iota
	RemoveField
	RetypeField
	AddVariant
	RemoveVariant
)

func (k StepKind) String() string {
	switch k {
	case AddField:
		return "AddField"
	case RemoveField:
		return "RemoveField"
	case RetypeField:
		return "RetypeField"
	case AddVariant:
		return "AddVariant"
	case RemoveVariant:
		return "RemoveVariant"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the step kind's name rather than its numeric value.
func (k StepKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Step is one scaffolded migration action.
type Step struct {
	Kind StepKind
	Safe bool

	TypeName  string // struct or enum qualified name
	FieldName string // valid for AddField/RemoveField/RetypeField
	Variant   string // valid for AddVariant/RemoveVariant

	FieldType       *ir.TypeInfo // valid for AddField/RetypeField's "to"
	FromType        *ir.TypeInfo // valid for RetypeField
	Default         string       // deterministic default literal, or a marker when none exists
	Discriminant    int          // valid for AddVariant
	DefaultMapping  string       // the variant removed/unknown discriminants map onto
	Comment         string       // explanatory text attached to the step
}

// Options controls scaffolding, in particular how AddVariant/RemoveVariant
// steps pick the fallback variant old discriminants should map onto.
type Options struct {
	// Force allows Unsafe steps to be scaffolded; without it, Migrate
	// aborts with an UnsafeMigration error at the first Unsafe step.
	Force bool

	// DefaultVariant maps an enum's qualified name to the variant name
	// removed/unknown discriminants should resolve to. Required for any
	// enum that loses a variant; for an enum that gains one it is optional
	// and only recorded on the step. The scaffolder never guesses.
	DefaultVariant map[string]string
}

// Migrate diffs oldSchema against newSchema and scaffolds an ordered list
// of migration steps. Without opts.Force, any Unsafe step aborts the
// whole call with UnsafeMigration — spec.md §6: "without force, any
// Unsafe step aborts".
func Migrate(oldSchema, newSchema *ir.Schema, opts Options) ([]Step, *errors.SchemaError) {
	changes := diff.Diff(oldSchema, newSchema)

	var steps []Step
	for _, c := range changes {
		s, err := scaffold(c, oldSchema, newSchema, opts)
		if err != nil {
			return nil, err
		}
		if s == nil {
			continue
		}
		if !s.Safe && !opts.Force {
			return nil, errors.Newf(errors.UnsafeMigration, source.NoSpan,
				"migration step %s on %q is unsafe and requires --force: %s", s.Kind, s.TypeName, s.Comment)
		}
		steps = append(steps, *s)
	}
	return steps, nil
}

func scaffold(c diff.Change, oldSchema, newSchema *ir.Schema, opts Options) (*Step, *errors.SchemaError) {
	switch c.Kind {
	case diff.FieldAdded:
		return scaffoldAddField(c, newSchema), nil
	case diff.FieldRemoved:
		return &Step{Kind: RemoveField, Safe: true, TypeName: c.Type, FieldName: c.Member,
			Comment: fmt.Sprintf("field %q no longer exists; its bytes, if present in old data, are ignored", c.Member)}, nil
	case diff.FieldTypeChanged:
		return scaffoldRetypeField(c, oldSchema, newSchema), nil
	case diff.VariantAdded:
		return scaffoldAddVariant(c, newSchema, opts)
	case diff.VariantRemoved:
		return scaffoldRemoveVariant(c, opts)
	default:
		return nil, nil
	}
}

func scaffoldAddField(c diff.Change, newSchema *ir.Schema) *Step {
	def, _ := newSchema.Lookup(c.Type)
	var ft *ir.TypeInfo
	if def != nil && def.Struct != nil {
		for _, f := range def.Struct.Fields {
			if f.Name == c.Member {
				t := f.Type
				ft = &t
				break
			}
		}
	}
	safe := ft != nil && ft.Kind == ir.InfoOption
	return &Step{
		Kind: AddField, Safe: safe, TypeName: c.Type, FieldName: c.Member,
		FieldType: ft, Default: defaultLiteral(ft),
		Comment: fmt.Sprintf("field %q was added", c.Member),
	}
}

func scaffoldRetypeField(c diff.Change, oldSchema, newSchema *ir.Schema) *Step {
	var from, to *ir.TypeInfo
	if oldDef, ok := oldSchema.Lookup(c.Type); ok && oldDef.Struct != nil {
		for _, f := range oldDef.Struct.Fields {
			if f.Name == c.Member {
				t := f.Type
				from = &t
			}
		}
	}
	if newDef, ok := newSchema.Lookup(c.Type); ok && newDef.Struct != nil {
		for _, f := range newDef.Struct.Fields {
			if f.Name == c.Member {
				t := f.Type
				to = &t
			}
		}
	}
	return &Step{
		Kind: RetypeField, Safe: false, TypeName: c.Type, FieldName: c.Member,
		FromType: from, FieldType: to,
		Comment: fmt.Sprintf("TODO: field %q changed type; no automatic conversion is safe, write one by hand", c.Member),
	}
}

func scaffoldAddVariant(c diff.Change, newSchema *ir.Schema, opts Options) (*Step, *errors.SchemaError) {
	discriminant := -1
	if def, ok := newSchema.Lookup(c.Type); ok && def.Enum != nil {
		for _, v := range def.Enum.Variants {
			if v.Name == c.Member {
				discriminant = v.Discriminant
			}
		}
	}
	// Adding a variant is Safe only when old data can never already carry
	// its discriminant, i.e. when no other variant's discriminant shifted
	// to make room for it — compat.Check is the authority on that; here
	// we scaffold the step as Safe either way and only record the default
	// mapping for old decoders when one was supplied.
	mapping, hasMapping := opts.DefaultVariant[c.Type]
	return &Step{
		Kind: AddVariant, Safe: true, TypeName: c.Type, Variant: c.Member,
		Discriminant: discriminant, DefaultMapping: mapping,
		Comment: addVariantComment(c.Member, mapping, hasMapping),
	}, nil
}

func addVariantComment(variant, mapping string, hasMapping bool) string {
	if hasMapping {
		return fmt.Sprintf("variant %q was added; unrecognized discriminants from old data map to %q", variant, mapping)
	}
	return fmt.Sprintf("variant %q was added; old data never produced it, no mapping needed", variant)
}

func scaffoldRemoveVariant(c diff.Change, opts Options) (*Step, *errors.SchemaError) {
	mapping, ok := opts.DefaultVariant[c.Type]
	if !ok {
		return nil, errors.Newf(errors.UnsafeMigration, source.NoSpan,
			"enum %q lost variant %q and no Options.DefaultVariant mapping was supplied for it", c.Type, c.Member)
	}
	return &Step{
		Kind: RemoveVariant, Safe: false, TypeName: c.Type, Variant: c.Member,
		DefaultMapping: mapping,
		Comment:        fmt.Sprintf("variant %q was removed; old data carrying its discriminant maps to %q", c.Member, mapping),
	}, nil
}

// defaultLiteral picks the deterministic default spec.md §4.6 requires.
// Returns a marker string, not an error, when no safe default exists —
// the scaffolder always produces a step; only Safe/Unsafe changes.
func defaultLiteral(t *ir.TypeInfo) string {
	if t == nil {
		return "<unknown>"
	}
	switch t.Kind {
	case ir.InfoOption:
		return "None"
	case ir.InfoVec:
		return "[]"
	case ir.InfoFixedArray:
		return fmt.Sprintf("[%s; %d] zero-filled", defaultLiteral(t.Elem), t.ArraySize)
	case ir.InfoPrimitive:
		return primitiveDefault(t.Primitive)
	case ir.InfoDomain:
		return "<zero value>"
	case ir.InfoStruct:
		return "<recursive default>"
	case ir.InfoEnum, ir.InfoGeneric:
		return "<no safe default>"
	default:
		return "<no safe default>"
	}
}

func primitiveDefault(p string) string {
	switch p {
	case "bool":
		return "false"
	case "String":
		return `""`
	default:
		return "0"
	}
}
