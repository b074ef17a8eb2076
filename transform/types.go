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
	"strings"

	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/ir"
)

// typeResolver carries the shared, lazily-filled alias cache used by both
// the Pass B pre-pass (resolveAliases) and Pass C's on-demand fallback:
// whichever runs first for a given alias fills the cache, so Pass C
// never re-walks an alias chain Pass B already flattened.
type typeResolver struct {
	col          *collection
	aliasCache   map[string]ir.TypeInfo
	aliasPending map[string]bool // qualifiedName -> currently being expanded, for cycle detection
	aliasStack   []string
}

func newTypeResolver(col *collection) *typeResolver {
	return &typeResolver{
		col:          col,
		aliasCache:   make(map[string]ir.TypeInfo),
		aliasPending: make(map[string]bool),
	}
}

// resolve converts spec, looked up in the scope belonging to file, into
// a fully-resolved ir.TypeInfo. Any UserDefinedType that names an alias
// is expanded in place; spec.md §4.3 requires aliases never to survive
// into the IR as a distinct reference kind.
func (r *typeResolver) resolve(spec ast.TypeSpec, file *ast.File) (ir.TypeInfo, *errors.SchemaError) {
	switch t := spec.(type) {
	case *ast.PrimitiveType:
		return ir.TypeInfo{Kind: ir.InfoPrimitive, Primitive: t.Kind.String()}, nil

	case *ast.DomainType:
		return ir.TypeInfo{Kind: ir.InfoDomain, Domain: t.Kind.String()}, nil

	case *ast.VecType:
		elem, err := r.resolve(t.Elem, file)
		if err != nil {
			return ir.TypeInfo{}, err
		}
		return ir.TypeInfo{Kind: ir.InfoVec, Elem: &elem}, nil

	case *ast.OptionType:
		elem, err := r.resolve(t.Elem, file)
		if err != nil {
			return ir.TypeInfo{}, err
		}
		return ir.TypeInfo{Kind: ir.InfoOption, Elem: &elem}, nil

	case *ast.FixedArrayType:
		elem, err := r.resolve(t.Elem, file)
		if err != nil {
			return ir.TypeInfo{}, err
		}
		return ir.TypeInfo{Kind: ir.InfoFixedArray, Elem: &elem, ArraySize: t.Size}, nil

	case *ast.GenericType:
		return ir.TypeInfo{Kind: ir.InfoGeneric, GenericName: t.Name}, nil

	case *ast.UserDefinedType:
		return r.resolveUserDefined(t, file)

	default:
		return ir.TypeInfo{}, errors.Newf(errors.Transform, spec.Span(), "unrecognized type reference")
	}
}

// resolveUserDefined looks name up in file's scope and either returns a
// nominal reference (struct/enum) or expands an alias chain down to its
// ultimate non-alias TypeInfo.
func (r *typeResolver) resolveUserDefined(t *ast.UserDefinedType, file *ast.File) (ir.TypeInfo, *errors.SchemaError) {
	scope := r.col.fileScopes[file]
	entry, ok := scope[t.Name]
	if !ok {
		return ir.TypeInfo{}, errors.Newf(errors.TypeValidation, t.Span(),
			"unknown type %q", t.Name).WithSuggestion("check spelling, or that it is declared `pub` and reachable via `use`/`import`")
	}

	switch def := entry.item.(type) {
	case *ast.StructDef:
		return ir.TypeInfo{Kind: ir.InfoStruct, RefName: entry.qualifiedName()}, nil
	case *ast.EnumDef:
		return ir.TypeInfo{Kind: ir.InfoEnum, RefName: entry.qualifiedName()}, nil
	case *ast.TypeAlias:
		return r.expandAlias(entry, def)
	default:
		return ir.TypeInfo{}, errors.Newf(errors.Transform, t.Span(), "%q does not name a type", t.Name)
	}
}

// expandAlias resolves entry (a TypeAlias) to its fully-flattened
// TypeInfo, memoizing the result and detecting cycles via an explicit
// pending set — the same shape as the import/module cycle stacks used
// elsewhere in the compiler.
func (r *typeResolver) expandAlias(entry *defEntry, alias *ast.TypeAlias) (ir.TypeInfo, *errors.SchemaError) {
	qn := entry.qualifiedName()
	if cached, ok := r.aliasCache[qn]; ok {
		return cached, nil
	}
	if r.aliasPending[qn] {
		cycle := append(append([]string(nil), r.aliasStack...), qn)
		return ir.TypeInfo{}, errors.Newf(errors.CircularAlias, alias.Span(),
			"alias cycle detected").WithCycle(cycle)
	}
	r.aliasPending[qn] = true
	r.aliasStack = append(r.aliasStack, qn)
	defer func() {
		delete(r.aliasPending, qn)
		r.aliasStack = r.aliasStack[:len(r.aliasStack)-1]
	}()

	resolved, err := r.resolve(alias.Target, entry.file)
	if err != nil {
		return ir.TypeInfo{}, err
	}
	r.aliasCache[qn] = resolved
	return resolved, nil
}

// resolveAliases runs Pass B: it eagerly expands every declared alias,
// so a CircularAlias or unknown-type error inside an alias chain is
// reported even for aliases no struct or enum ever references.
func resolveAliases(r *typeResolver) *errors.SchemaError {
	for _, entry := range r.col.all {
		alias, ok := entry.item.(*ast.TypeAlias)
		if !ok {
			continue
		}
		if _, err := r.expandAlias(entry, alias); err != nil {
			return err
		}
	}
	return nil
}

// attrKey normalizes an attribute key for lookup, matching surface
// syntax like `#[solana]` verbatim (lumos attribute keys are already
// lower_snake_case by convention, so this is mostly defensive).
func attrKey(key string) string {
	return strings.ToLower(key)
}
