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

// ImportRef is one `import { Sym, ... } from "path";` declaration found
// by PrescanImports.
type ImportRef struct {
	Symbols []string
	From    string
}

// PrescanImports extracts every import declaration from file without
// requiring the rest of the file to parse: the resolver needs the
// dependency graph before it can know whether every other file in the
// graph is syntactically valid (spec.md §4.1). It tolerates anything
// outside of a recognized `import { ... } from "...";` shape by simply
// skipping forward a token at a time.
//
// It reuses the scanner rather than a textual regex because the
// scanner already never aborts on a bad token (an illegal character
// just yields one ILLEGAL token and scanning continues) — it gives the
// same tolerance spec.md asks for, without re-implementing tokenizing.
func PrescanImports(file *source.File) []ImportRef {
	var s scanner.Scanner
	s.Init(file, nil, 0)

	var refs []ImportRef
	_, tok, _ := s.Scan()
	for tok != token.EOF {
		if tok != token.IMPORT {
			_, tok, _ = s.Scan()
			continue
		}
		if ref, next, _, ok := tryImportRef(&s); ok {
			refs = append(refs, ref)
			tok = next
			continue
		}
		_, tok, _ = s.Scan()
	}
	return refs
}

// tryImportRef attempts to parse one `{ Sym, ... } from "path" ;` tail
// immediately following a consumed `import` keyword. On any mismatch it
// gives up without consuming more than it already peeked and reports
// ok=false; the caller resumes its tolerant skip from wherever
// scanning landed.
func tryImportRef(s *scanner.Scanner) (ref ImportRef, tok token.Kind, lit string, ok bool) {
	_, tok, lit = s.Scan()
	if tok != token.LBRACE {
		return ref, tok, lit, false
	}
	var symbols []string
	for {
		_, tok, lit = s.Scan()
		if tok != token.IDENT {
			return ref, tok, lit, false
		}
		symbols = append(symbols, lit)
		_, tok, lit = s.Scan()
		if tok == token.COMMA {
			continue
		}
		break
	}
	if tok != token.RBRACE {
		return ref, tok, lit, false
	}
	_, tok, lit = s.Scan()
	if tok != token.FROM {
		return ref, tok, lit, false
	}
	_, tok, lit = s.Scan()
	if tok != token.STRING {
		return ref, tok, lit, false
	}
	from := lit
	_, tok, lit = s.Scan()
	if tok != token.SEMI {
		return ref, tok, lit, false
	}
	ref = ImportRef{Symbols: symbols, From: from}
	_, tok, lit = s.Scan()
	return ref, tok, lit, true
}
