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

// Package outpath guards the CLI's --output flag against writing outside
// a caller-designated project root. The core library never writes files
// itself; this is purely an ambient CLI-layer concern.
package outpath

import (
	"path/filepath"
	"strings"

	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/source"
)

// Resolve canonicalizes candidate against root and returns the absolute
// path, refusing with PathTraversal if candidate would land outside root.
func Resolve(root, candidate string) (string, *errors.SchemaError) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Newf(errors.Io, source.NoSpan, "resolving output root: %v", err)
	}

	joined := candidate
	if !filepath.IsAbs(candidate) {
		joined = filepath.Join(root, candidate)
	}
	absCandidate, err := filepath.Abs(joined)
	if err != nil {
		return "", errors.Newf(errors.Io, source.NoSpan, "resolving output path: %v", err)
	}

	rel, err := filepath.Rel(absRoot, absCandidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.PathTraversal, source.NoSpan,
			"output path %q escapes project root %q", candidate, root)
	}
	return absCandidate, nil
}
