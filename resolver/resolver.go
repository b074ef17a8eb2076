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

package resolver

import (
	"strings"

	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/parser"
	"github.com/getlumos/lumos-sub001/source"
)

// Mode identifies which of the three resolution strategies a
// compilation uses, decided once from the entry file's own top-level
// declarations (spec.md §4.2).
type Mode int

const (
	// Singleton is used when the entry file has neither `import` nor
	// `mod` declarations: the whole compilation is that one file.
	Singleton Mode = iota
	// ImportMode is used when the entry file contains `import { ... }
	// from "path";` declarations: dependencies are flat files pulled in
	// by explicit symbol lists.
	ImportMode
	// ModuleMode is used when the entry file contains `mod name;`
	// declarations: dependencies form a module tree resolved via
	// `use` paths (crate::, super::, self::).
	ModuleMode
)

func (m Mode) String() string {
	switch m {
	case ImportMode:
		return "import"
	case ModuleMode:
		return "module"
	default:
		return "singleton"
	}
}

// Unit is the result of resolving a compilation's full file graph: every
// loaded file, in load order, plus whatever cross-file symbol
// environment its mode produces.
type Unit struct {
	Mode  Mode
	Set   *source.Set
	Entry *ast.File
	Files []*ast.File

	// Root is the module tree built in ModuleMode; nil otherwise.
	Root *ModuleNode
	// ModuleOf maps each file to the module node that owns it
	// (ModuleMode only).
	ModuleOf map[*ast.File]*ModuleNode

	// ImportEnv holds, for each file loaded in ImportMode, the symbols
	// it pulled in via `import { Sym, ... } from "path";`, resolved to
	// the concrete item that defines them.
	ImportEnv map[*ast.File]map[string]ast.Item
	// UseEnv holds, for each file loaded in ModuleMode, the names bound
	// by its own `use` statements, resolved to the concrete item.
	UseEnv map[*ast.File]map[string]ast.Item
}

// loader carries the mutable state of one Load call.
type loader struct {
	fs    FileSystem
	set   *source.Set
	stack importStack

	cache map[string]*ast.File // canonical path -> parsed file

	moduleOf   map[*ast.File]*ModuleNode
	importEnvs map[*ast.File]map[string]ast.Item // ImportMode only
}

// Load resolves entryPath into a complete Unit: it decides the mode from
// the entry file's own declarations, then recursively loads every
// dependency depth-first, detecting import/module cycles along the way.
// fs may be nil, in which case the real file system is used.
func Load(entryPath string, fs FileSystem) (*Unit, *errors.SchemaError) {
	if fs == nil {
		fs = OS
	}
	l := &loader{
		fs:       fs,
		set:      source.NewSet(),
		cache:    make(map[string]*ast.File),
		moduleOf: make(map[*ast.File]*ModuleNode),
	}

	canonical := fs.Clean(entryPath)
	entrySrcFile, content, err := l.read(canonical)
	if err != nil {
		return nil, err
	}

	imports := parser.PrescanImports(entrySrcFile)
	mods := parser.PrescanMods(entrySrcFile)

	u := &Unit{
		Set:       l.set,
		ImportEnv: make(map[*ast.File]map[string]ast.Item),
		UseEnv:    make(map[*ast.File]map[string]ast.Item),
		ModuleOf:  l.moduleOf,
	}

	switch {
	case len(imports) > 0:
		u.Mode = ImportMode
		entry, perr := l.loadImportFile(canonical, entrySrcFile, content)
		if perr != nil {
			return nil, perr
		}
		u.Entry = entry
		for f, env := range l.importEnvs {
			u.ImportEnv[f] = env
		}
	case len(mods) > 0:
		u.Mode = ModuleMode
		root := newModuleNode("", "", nil)
		u.Root = root
		entry, perr := l.loadModuleFile(canonical, fs.Dir(canonical), entrySrcFile, content, root)
		if perr != nil {
			return nil, perr
		}
		u.Entry = entry
		root.File = entry
		root.FilePath = canonical
	default:
		u.Mode = Singleton
		entry, perr := parser.ParseFile(entrySrcFile)
		if perr != nil {
			return nil, perr
		}
		l.cache[canonical] = entry
		u.Entry = entry
	}

	// u.Files follows source.Set's read order (spec.md §5: "C4 loads
	// files depth-first in import/mod order"), not parse-completion
	// order — a child module finishes parsing before its parent does,
	// but is read (and so gets its FileID) only after the parent names
	// it, so read order already is the depth-first pre-order.
	for _, f := range l.set.Files() {
		if af, ok := l.cache[f.Path()]; ok {
			u.Files = append(u.Files, af)
		}
	}

	if u.Mode == ModuleMode {
		if perr := resolveUses(u); perr != nil {
			return nil, perr
		}
	}

	return u, nil
}

// read loads and registers canonical's content, or reports an Io error.
func (l *loader) read(canonical string) (*source.File, string, *errors.SchemaError) {
	content, ioerr := l.fs.ReadFile(canonical)
	if ioerr != nil {
		return nil, "", errors.Newf(errors.Io, source.NoSpan, "cannot read %q: %v", canonical, ioerr)
	}
	f, _ := l.set.AddFile(canonical, content)
	return f, content, nil
}

// loadImportFile parses srcFile (already read) and recursively loads
// every file named by its `import` declarations, relative to its own
// directory.
func (l *loader) loadImportFile(canonical string, srcFile *source.File, content string) (*ast.File, *errors.SchemaError) {
	if cached, ok := l.cache[canonical]; ok {
		return cached, nil
	}
	if l.stack.contains(canonical) {
		return nil, errors.Newf(errors.CircularImport, source.NoSpan,
			"import cycle detected").WithCycle(l.stack.copyWith(canonical))
	}
	l.stack.push(canonical)
	defer l.stack.pop()

	refs := parser.PrescanImports(srcFile)
	dir := l.fs.Dir(canonical)

	deps := make(map[string]*ast.File, len(refs))
	for _, ref := range refs {
		depPath := l.fs.Clean(l.fs.Join(dir, ref.From))
		if _, ok := deps[depPath]; ok {
			continue
		}
		depSrcFile, depContent, err := l.readOrCached(depPath)
		if err != nil {
			return nil, err
		}
		depFile, err := l.loadImportFile(depPath, depSrcFile, depContent)
		if err != nil {
			return nil, err
		}
		deps[depPath] = depFile
	}

	file, perr := parser.ParseFile(srcFile)
	if perr != nil {
		return nil, perr
	}
	l.cache[canonical] = file

	env := make(map[string]ast.Item)
	for _, imp := range file.Imports {
		depPath := l.fs.Clean(l.fs.Join(dir, imp.From))
		depFile := deps[depPath]
		for _, sym := range imp.Symbols {
			item := findItem(depFile, sym.Name)
			if item == nil {
				return nil, errors.Newf(errors.UnknownItem, sym.Span(),
					"%q is not defined in %q", sym.Name, imp.From)
			}
			env[sym.Name] = item
		}
	}
	l.pendingImportEnv(file, env)
	return file, nil
}

// pendingImportEnv stashes a file's resolved import environment on the
// loader; Load copies every entry onto the Unit once it exists.
func (l *loader) pendingImportEnv(file *ast.File, env map[string]ast.Item) {
	if l.importEnvs == nil {
		l.importEnvs = make(map[*ast.File]map[string]ast.Item)
	}
	l.importEnvs[file] = env
}

// readOrCached reads canonical's content if it hasn't been read yet,
// reusing the cached source.File (and its Set entry) on a repeat
// reference — a duplicate import is a cache hit, not an error.
func (l *loader) readOrCached(canonical string) (*source.File, string, *errors.SchemaError) {
	if f, ok := l.set.Lookup(canonical); ok {
		return f, f.Content(), nil
	}
	return l.read(canonical)
}

// loadModuleFile parses srcFile and recursively loads every file named
// by its `mod name;` declarations, attaching each as a child of node in
// the module tree. moduleDir is the directory `mod` names declared in
// this file are resolved against — it is the directory containing
// canonical only for the entry file; for a submodule loaded via the
// flat "name.lumos" convention its own moduleDir is "<parent>/name",
// matching the teacher-language convention that a module's children
// live under a directory named after it regardless of which of the two
// file conventions it was loaded through.
func (l *loader) loadModuleFile(canonical, moduleDir string, srcFile *source.File, content string, node *ModuleNode) (*ast.File, *errors.SchemaError) {
	if cached, ok := l.cache[canonical]; ok {
		return cached, nil
	}
	if l.stack.contains(canonical) {
		return nil, errors.Newf(errors.CircularImport, source.NoSpan,
			"module cycle detected").WithCycle(l.stack.copyWith(canonical))
	}
	l.stack.push(canonical)
	defer l.stack.pop()

	mods := parser.PrescanMods(srcFile)

	for _, ref := range mods {
		childPath, err := l.resolveModPath(moduleDir, ref.Name)
		if err != nil {
			return nil, err
		}
		childSrcFile, childContent, err := l.readOrCached(childPath)
		if err != nil {
			return nil, err
		}
		childNode := node.child(ref.Name)
		childModuleDir := l.fs.Join(moduleDir, ref.Name)
		childFile, err := l.loadModuleFile(childPath, childModuleDir, childSrcFile, childContent, childNode)
		if err != nil {
			return nil, err
		}
		childNode.File = childFile
		childNode.FilePath = childPath
		l.moduleOf[childFile] = childNode
	}

	file, perr := parser.ParseFile(srcFile)
	if perr != nil {
		return nil, perr
	}
	l.cache[canonical] = file
	l.moduleOf[file] = node
	return file, nil
}

// resolveModPath implements the two-convention lookup spec.md §4.2
// requires for `mod name;`: first "<dir>/name.lumos", then
// "<dir>/name/mod.lumos".
func (l *loader) resolveModPath(dir, name string) (string, *errors.SchemaError) {
	leaf := l.fs.Clean(l.fs.Join(dir, name+".lumos"))
	if _, err := l.fs.ReadFile(leaf); err == nil {
		return leaf, nil
	}
	nested := l.fs.Clean(l.fs.Join(l.fs.Join(dir, name), "mod.lumos"))
	if _, err := l.fs.ReadFile(nested); err == nil {
		return nested, nil
	}
	return "", errors.Newf(errors.UnknownModule, source.NoSpan,
		"module %q not found: tried %q and %q", name, leaf, nested)
}

// findItem returns the item named name among file's top-level items, or
// nil if none matches.
func findItem(file *ast.File, name string) ast.Item {
	if file == nil {
		return nil
	}
	for _, item := range file.Items {
		if itemName(item) == name {
			return item
		}
	}
	return nil
}

// itemName extracts the declared name of an item, for the kinds that
// can be the target of an import or use.
func itemName(item ast.Item) string {
	switch it := item.(type) {
	case *ast.StructDef:
		return it.Name
	case *ast.EnumDef:
		return it.Name
	case *ast.TypeAlias:
		return it.Name
	}
	return ""
}

// itemVisibility extracts the declared visibility of an item, for the
// kinds `use` resolution enforces PrivateItem against.
func itemVisibility(item ast.Item) ast.Visibility {
	switch it := item.(type) {
	case *ast.StructDef:
		return it.Visibility
	case *ast.EnumDef:
		return it.Visibility
	case *ast.TypeAlias:
		return it.Visibility
	}
	return ast.Private
}

// resolveUses runs after every file in a ModuleMode unit has loaded,
// per spec.md §4.2 ("use resolution happens after the whole module tree
// is loaded"): for each file's `use` statements, it walks the path
// through the module tree and binds the final segment to the item it
// names.
func resolveUses(u *Unit) *errors.SchemaError {
	for _, file := range u.Files {
		node := u.ModuleOf[file]
		env := make(map[string]ast.Item)
		for _, item := range file.Items {
			use, ok := item.(*ast.UseStatement)
			if !ok {
				continue
			}
			target, terr := resolveModulePath(u, node, use.Path)
			if terr != nil {
				return terr
			}
			name := use.ItemName()
			targetItem := findItem(target.File, name)
			if targetItem == nil {
				return errors.Newf(errors.UnknownItem, use.Span(),
					"%q is not defined in module %q", name, displayModPath(target))
			}
			if target != node && itemVisibility(targetItem) != ast.Public {
				return errors.Newf(errors.PrivateItem, use.Span(),
					"%q in module %q is private", name, displayModPath(target))
			}
			bound := use.Alias
			if bound == "" {
				bound = name
			}
			env[bound] = targetItem
		}
		u.UseEnv[file] = env
	}
	return nil
}

// resolveModulePath walks path's segments (crate/super/self/ident)
// starting from node, through the module tree rooted at u.Root.
func resolveModulePath(u *Unit, node *ModuleNode, path ast.ModulePath) (*ModuleNode, *errors.SchemaError) {
	cur := node
	segs := path.Segments
	if path.Absolute && len(segs) > 0 && segs[0].Kind == ast.SegCrate {
		cur = u.Root
		segs = segs[1:]
	}
	// All but the last segment name intermediate modules; the last
	// segment is the item being imported, resolved by the caller.
	for i := 0; i < len(segs)-1; i++ {
		seg := segs[i]
		switch seg.Kind {
		case ast.SegSuper:
			if cur.Parent == nil {
				return nil, errors.Newf(errors.UnknownModule, path.Span(),
					"%q has no parent module", displayModPath(cur))
			}
			cur = cur.Parent
		case ast.SegSelf:
			// no-op: stays in the current module
		case ast.SegCrate:
			cur = u.Root
		case ast.SegIdent:
			child, ok := cur.Children[seg.Name]
			if !ok {
				return nil, errors.Newf(errors.UnknownModule, path.Span(),
					"module %q has no submodule %q", displayModPath(cur), seg.Name)
			}
			cur = child
		}
	}
	return cur, nil
}

func displayModPath(n *ModuleNode) string {
	if n.Path == "" {
		return "crate"
	}
	return "crate::" + strings.ReplaceAll(n.Path, ".", "::")
}
