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

package parser

import (
	"github.com/getlumos/lumos-sub001/scanner"
	"github.com/getlumos/lumos-sub001/source"
	"github.com/getlumos/lumos-sub001/token"
)

// ModRef is one `(pub)? mod name;` declaration found by PrescanMods.
type ModRef struct {
	Name string
}

// PrescanMods extracts every external module declaration from file with
// the same tolerant, scanner-driven approach as PrescanImports: the
// resolver needs the `mod` dependency list before it knows whether the
// rest of the file parses.
func PrescanMods(file *source.File) []ModRef {
	var s scanner.Scanner
	s.Init(file, nil, 0)

	var refs []ModRef
	_, tok, _ := s.Scan()
	for tok != token.EOF {
		if tok != token.MOD {
			_, tok, _ = s.Scan()
			continue
		}
		_, nameTok, name := s.Scan()
		if nameTok != token.IDENT {
			tok = nameTok
			continue
		}
		_, semiTok, _ := s.Scan()
		if semiTok != token.SEMI {
			tok = semiTok
			continue
		}
		refs = append(refs, ModRef{Name: name})
		_, tok, _ = s.Scan()
	}
	return refs
}
