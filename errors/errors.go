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

// Package errors defines the single error type shared by every
// component of the compiler: a Kind, an optional Span, a message, and
// an optional suggestion. Components return these as plain Go errors.
// List is an accumulator for callers that gather several of them; the
// compatibility checker collects its issues in its own Report instead.
package errors

import (
	"fmt"
	"strings"

	"github.com/getlumos/lumos-sub001/source"
)

// Kind classifies why compilation failed.
type Kind int

const (
	// SchemaParse is a lexical or syntactic failure.
	SchemaParse Kind = iota
	// TypeValidation covers unknown types, bad generic parameters,
	// fixed-array bound violations, and duplicate names.
	TypeValidation
	// Transform is an inconsistency detected during AST-to-IR lowering.
	Transform
	// CircularAlias is a cycle in the alias-expansion graph.
	CircularAlias
	// CircularImport is a cycle in the import/module graph.
	CircularImport
	// UnknownModule is raised by `use` resolution for a missing module path.
	UnknownModule
	// UnknownItem is raised by `use` resolution for a missing item name.
	UnknownItem
	// PrivateItem is raised when a `use` targets a non-public item.
	PrivateItem
	// VersionBumpInsufficient flags a SemVer bump that doesn't cover the
	// severity of the underlying changes.
	VersionBumpInsufficient
	// UnsafeMigration is raised when a migration plan contains an Unsafe
	// step and the caller did not pass force.
	UnsafeMigration
	// PathTraversal is raised when an output path escapes the project root.
	PathTraversal
	// Io wraps an underlying file-system error.
	Io
)

var kindNames = [...]string{
	SchemaParse:             "SchemaParse",
	TypeValidation:          "TypeValidation",
	Transform:               "Transform",
	CircularAlias:           "CircularAlias",
	CircularImport:          "CircularImport",
	UnknownModule:           "UnknownModule",
	UnknownItem:             "UnknownItem",
	PrivateItem:             "PrivateItem",
	VersionBumpInsufficient: "VersionBumpInsufficient",
	UnsafeMigration:         "UnsafeMigration",
	PathTraversal:           "PathTraversal",
	Io:                      "Io",
}

// String returns the kind's stable name, used both in "path:line:col:
// kind: message" formatting and in JSON diagnostics.
func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// SchemaError is the concrete error type returned by every component.
type SchemaError struct {
	Kind       Kind
	Span       source.Span // source.NoSpan if not associated with a location
	Message    string
	Suggestion string   // optional, empty if none
	Cycle      []string // populated for CircularAlias / CircularImport
}

// Newf builds a SchemaError with a formatted message.
func Newf(kind Kind, span source.Span, format string, args ...any) *SchemaError {
	return &SchemaError{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion returns a copy of e with Suggestion set.
func (e *SchemaError) WithSuggestion(s string) *SchemaError {
	e2 := *e
	e2.Suggestion = s
	return &e2
}

// WithCycle returns a copy of e with Cycle set, for CircularAlias and
// CircularImport errors that must name every node in the cycle.
func (e *SchemaError) WithCycle(nodes []string) *SchemaError {
	e2 := *e
	e2.Cycle = append([]string(nil), nodes...)
	return &e2
}

// Error implements the error interface. It never includes position
// information — use Format with a *source.Set for that.
func (e *SchemaError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Format renders "path:line:col: kind: message", matching the CLI/LSP
// formatting policy in spec.md §7. If the error carries no span, the
// location prefix is omitted.
func (e *SchemaError) Format(set *source.Set) string {
	var b strings.Builder
	if e.Span.IsValid() && set != nil {
		pos := set.Position(e.Span)
		if pos.IsValid() {
			b.WriteString(pos.String())
			b.WriteString(": ")
		}
	}
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if len(e.Cycle) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Cycle, " -> "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (suggestion: %s)", e.Suggestion)
	}
	return b.String()
}

// List is an ordered collection of errors for callers that must report
// every issue rather than stop at the first. Errors keep the order in
// which they were added.
type List struct {
	errs []*SchemaError
}

// Add appends err to the list. A nil err is ignored.
func (l *List) Add(err *SchemaError) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Errs returns the accumulated errors in append order.
func (l *List) Errs() []*SchemaError { return l.errs }

// Len reports how many errors have been collected.
func (l *List) Len() int { return len(l.errs) }

// Err returns the list as an error (nil if empty), satisfying the
// standard "return error" convention at component boundaries that
// otherwise accumulate via List internally.
func (l *List) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l
}

// Error renders every collected error, one per line.
func (l *List) Error() string {
	msgs := make([]string, len(l.errs))
	for i, e := range l.errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Portable is a JSON-serializable projection of a SchemaError that
// carries a resolved file path instead of an in-process source.Span,
// so CLI --format json output and LSP diagnostics don't need access to
// the originating source.Set.
type Portable struct {
	Kind       string `json:"kind"`
	Path       string `json:"path,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Cycle      []string `json:"cycle,omitempty"`
}

// ToPortable resolves e's span (if any) against set and returns a
// JSON-friendly projection.
func (e *SchemaError) ToPortable(set *source.Set) Portable {
	p := Portable{
		Kind:       e.Kind.String(),
		Message:    e.Message,
		Suggestion: e.Suggestion,
		Cycle:      e.Cycle,
	}
	if e.Span.IsValid() && set != nil {
		pos := set.Position(e.Span)
		p.Path, p.Line, p.Column = pos.Path, pos.Line, pos.Column
	}
	return p
}
