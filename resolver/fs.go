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

// Package resolver implements the C4 file and module resolver: it
// expands a single entry file into the full set of files a compilation
// needs, in one of three modes (import, module, singleton), and builds
// the cross-file symbol table that the transform pass consumes.
package resolver

import (
	"os"
	"path/filepath"
)

// FileSystem abstracts file access so the resolver can be driven by a
// real directory tree or, in tests, by an in-memory map. It mirrors the
// small surface cue/load's fs abstraction exposes over the OS.
type FileSystem interface {
	ReadFile(path string) (string, error)
	Dir(path string) string
	Join(dir, name string) string
	Clean(path string) string
}

// osFS is the default FileSystem, backed by the real file system.
type osFS struct{}

// OS is the FileSystem implementation used outside of tests.
var OS FileSystem = osFS{}

func (osFS) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func (osFS) Dir(path string) string      { return filepath.Dir(path) }
func (osFS) Join(dir, name string) string { return filepath.Join(dir, name) }
func (osFS) Clean(path string) string    { return filepath.Clean(path) }
