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

import "github.com/getlumos/lumos-sub001/ast"

// ModuleNode is one node of the module tree built in Module mode: it
// owns the file declared by `mod name;` (or the root entry file) plus
// its children declared by that file's own `mod` items.
type ModuleNode struct {
	Name     string
	Path     string // dotted path from the root, "" for the root itself
	File     *ast.File
	FilePath string
	Parent   *ModuleNode
	Children map[string]*ModuleNode
}

func newModuleNode(name, dottedPath string, parent *ModuleNode) *ModuleNode {
	return &ModuleNode{
		Name:     name,
		Path:     dottedPath,
		Parent:   parent,
		Children: make(map[string]*ModuleNode),
	}
}

// child returns the named child, creating it if absent.
func (m *ModuleNode) child(name string) *ModuleNode {
	if c, ok := m.Children[name]; ok {
		return c
	}
	dotted := name
	if m.Path != "" {
		dotted = m.Path + "." + name
	}
	c := newModuleNode(name, dotted, m)
	m.Children[name] = c
	return c
}

// root walks up to the module tree's root, used to resolve `crate::`.
func (m *ModuleNode) root() *ModuleNode {
	n := m
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// importStack is an explicit push/pop/copy stack of canonical paths
// currently being loaded, used to detect import and module cycles and
// to name every node in the cycle when one is found. Grounded on
// cue/load's loader_common.go importStack.
type importStack []string

func (s *importStack) push(p string)  { *s = append(*s, p) }
func (s *importStack) pop()           { *s = (*s)[:len(*s)-1] }
func (s importStack) contains(p string) bool {
	for _, q := range s {
		if q == p {
			return true
		}
	}
	return false
}

// copyWith returns a new slice containing the stack's contents followed
// by p, suitable for attaching to a CircularImport error so it can name
// the whole cycle in order.
func (s importStack) copyWith(p string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, p)
}
