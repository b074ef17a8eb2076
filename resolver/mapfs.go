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
	"fmt"
	"path"
)

// MapFS is an in-memory FileSystem over a fixed set of file contents,
// keyed by slash-separated path. It is used by tests and is otherwise
// equivalent to OS, using package path instead of path/filepath so
// behavior is platform-independent.
type MapFS map[string]string

func (m MapFS) ReadFile(p string) (string, error) {
	content, ok := m[p]
	if !ok {
		return "", fmt.Errorf("file not found: %s", p)
	}
	return content, nil
}

func (m MapFS) Dir(p string) string           { return path.Dir(p) }
func (m MapFS) Join(dir, name string) string  { return path.Join(dir, name) }
func (m MapFS) Clean(p string) string         { return path.Clean(p) }
