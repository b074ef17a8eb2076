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

// Package transform lowers a resolved resolver.Unit into an ir.Schema:
// it collects every struct/enum/alias declaration into scopes (Pass A),
// expands every alias to its fully-resolved target (Pass B), then
// transforms every struct and enum field/variant type into an
// ir.TypeInfo and propagates attribute-derived metadata (Pass C).
package transform

import (
	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/resolver"
)

// defEntry is one collected struct/enum/alias declaration, with enough
// context (its module and defining file) to resolve the type
// references inside it later.
type defEntry struct {
	name   string
	module string
	file   *ast.File
	item   ast.Item // *ast.StructDef, *ast.EnumDef, or *ast.TypeAlias
}

func (e *defEntry) qualifiedName() string {
	if e.module == "" {
		return e.name
	}
	return e.module + "::" + e.name
}

// collection is the result of Pass A: every declared definition, plus
// the per-file lookup scope (own-module siblings plus whatever `use`
// or `import` bound) that type references inside that file resolve
// against.
type collection struct {
	all        []*defEntry
	byQualName map[string]*defEntry
	fileScopes map[*ast.File]map[string]*defEntry
}

// collect runs Pass A over u: it gathers every struct/enum/alias
// declaration, rejecting a second declaration of the same name within
// the same scope (spec.md §6: duplicate names are a validation error),
// and builds each file's local name scope.
func collect(u *resolver.Unit) (*collection, *errors.SchemaError) {
	c := &collection{
		byQualName: make(map[string]*defEntry),
		fileScopes: make(map[*ast.File]map[string]*defEntry),
	}

	byScope := make(map[string]map[string]*defEntry)

	for _, file := range u.Files {
		mod := moduleOf(u, file)
		scope, ok := byScope[mod]
		if !ok {
			scope = make(map[string]*defEntry)
			byScope[mod] = scope
		}
		for _, item := range file.Items {
			name, ok := declaredName(item)
			if !ok {
				continue
			}
			if _, dup := scope[name]; dup {
				return nil, errors.Newf(errors.TypeValidation, item.Span(),
					"%q is defined more than once in this scope", name)
			}
			entry := &defEntry{name: name, module: mod, file: file, item: item}
			scope[name] = entry
			c.all = append(c.all, entry)
			c.byQualName[entry.qualifiedName()] = entry
		}
	}

	for _, file := range u.Files {
		mod := moduleOf(u, file)
		fileScope := make(map[string]*defEntry, len(byScope[mod]))
		for name, entry := range byScope[mod] {
			fileScope[name] = entry
		}
		switch u.Mode {
		case resolver.ModuleMode:
			for name, item := range u.UseEnv[file] {
				entry, ok := c.byQualName[qualifyItem(u, item)]
				if ok {
					fileScope[name] = entry
				}
			}
		default:
			for name, item := range u.ImportEnv[file] {
				entry, ok := c.byQualName[qualifyItem(u, item)]
				if ok {
					fileScope[name] = entry
				}
			}
		}
		c.fileScopes[file] = fileScope
	}

	return c, nil
}

// moduleOf returns the dotted module path file belongs to, or "" when
// the unit has no module tree.
func moduleOf(u *resolver.Unit, file *ast.File) string {
	if u.Mode != resolver.ModuleMode {
		return ""
	}
	if node, ok := u.ModuleOf[file]; ok {
		return node.Path
	}
	return ""
}

// qualifyItem recovers the qualified name an ast.Item would have been
// collected under, so a resolver-provided binding (ImportEnv/UseEnv,
// which maps to the raw ast.Item) can be matched back to its defEntry.
func qualifyItem(u *resolver.Unit, item ast.Item) string {
	name, ok := declaredName(item)
	if !ok {
		return ""
	}
	for file, node := range u.ModuleOf {
		for _, it := range file.Items {
			if it == item {
				if u.Mode == resolver.ModuleMode {
					if node.Path == "" {
						return name
					}
					return node.Path + "::" + name
				}
				return name
			}
		}
	}
	return name
}

func declaredName(item ast.Item) (string, bool) {
	switch it := item.(type) {
	case *ast.StructDef:
		return it.Name, true
	case *ast.EnumDef:
		return it.Name, true
	case *ast.TypeAlias:
		return it.Name, true
	}
	return "", false
}

