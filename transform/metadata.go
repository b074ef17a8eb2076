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
	"fmt"
	"strconv"

	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/ir"
)

// buildMetadata turns a struct's or enum's attribute list into its
// resolved Metadata, per spec.md §5. Attribute keys not among the
// recognized set are preserved verbatim in Extra so a generator outside
// the core can still act on them.
func buildMetadata(attrs []ast.Attribute) ir.Metadata {
	m := ir.Metadata{Extra: make(map[string]ir.Attr)}
	for _, a := range attrs {
		switch attrKey(a.Key) {
		case "account":
			m.IsAccount = true
		case "instruction":
			m.IsInstruction = true
		case "version":
			m.Version = a.Literal
		case "derive":
			m.CustomDerives = append(m.CustomDerives, a.List...)
		case "deprecated":
			m.Deprecated = true
			m.DeprecatedMessage = a.Literal
		default:
			m.Extra[a.Key] = ir.Attr{Literal: a.Literal, List: append([]string(nil), a.List...)}
		}
	}
	return m
}

// fieldAttrs is buildMetadata's field-level counterpart: it walks a
// field's own attribute list and returns the resolved facts needed to
// populate an ir.FieldDefinition, per spec.md §3/§5. Attribute keys not
// among the recognized set fall through to extra, exactly as
// buildMetadata does for struct/enum-level attributes.
func fieldAttrs(name string, attrs []ast.Attribute) (deprecated bool, message string, keyFlag bool, maxBound *int, extra map[string]ir.Attr) {
	extra = make(map[string]ir.Attr)
	for _, a := range attrs {
		switch attrKey(a.Key) {
		case "deprecated":
			deprecated = true
			message = a.Literal
		case "key":
			keyFlag = true
		case "max":
			// #[max(N)] is a single-argument attribute, so the parser
			// gives it Kind == AttrLiteral; fall back to List in case a
			// caller ever writes a multi-arg form.
			lit := a.Literal
			if lit == "" && len(a.List) > 0 {
				lit = a.List[0]
			}
			if n, err := strconv.Atoi(lit); err == nil {
				maxBound = &n
			}
		default:
			extra[a.Key] = ir.Attr{Literal: a.Literal, List: append([]string(nil), a.List...)}
		}
	}
	if deprecated && message == "" {
		message = fmt.Sprintf("field %q is deprecated", name)
	}
	return deprecated, message, keyFlag, maxBound, extra
}
