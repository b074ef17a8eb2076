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

// Package compat classifies a schema diff by how it affects a consumer
// holding data produced against the older schema and decoding it with
// the newer one, and enforces the SemVer bump the classification
// implies. Borsh-style sequential field encoding is assumed throughout:
// the classification table exists because byte layout, not field names,
// is what a consumer actually depends on.
package compat

import (
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/mod/semver"

	"github.com/getlumos/lumos-sub001/diff"
	"github.com/getlumos/lumos-sub001/ir"
)

// Severity orders the four outcomes a change can have; the ordering
// itself is meaningful (higher value = more severe) since the required
// SemVer bump is derived from the maximum severity seen.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityCompatible
	SeverityWarning
	SeverityBreaking
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityCompatible:
		return "compatible"
	case SeverityWarning:
		return "warning"
	case SeverityBreaking:
		return "breaking"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity's name, matching diff.EditKind's
// JSON projection.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Issue is one classified finding in a CompatibilityReport.
type Issue struct {
	Severity   Severity
	TypeName   string
	Message    string
	Reason     string
	Suggestion string
}

// Options controls strictness of the check.
type Options struct {
	// Strict escalates an insufficient version bump from a warning to a
	// breaking issue, failing the check outright.
	Strict bool
}

// Report is the full output of Check.
type Report struct {
	FromVersion      string
	ToVersion        string
	Compatible       bool
	VersionBumpValid bool
	Issues           []Issue
}

// Check diffs oldSchema against newSchema and classifies every change.
func Check(oldSchema, newSchema *ir.Schema, opts Options) *Report {
	changes := diff.Diff(oldSchema, newSchema)

	var issues []Issue
	maxSeverity := SeverityInfo
	for _, c := range changes {
		issue := classify(c, oldSchema, newSchema)
		issues = append(issues, issue)
		if issue.Severity > maxSeverity {
			maxSeverity = issue.Severity
		}
	}

	fromVer, toVer := matchedVersions(oldSchema, newSchema, changes)
	bumpValid := true
	if fromVer != "" && toVer != "" {
		bumpValid = bumpSatisfies(fromVer, toVer, maxSeverity)
		if !bumpValid {
			sev := SeverityWarning
			if opts.Strict {
				sev = SeverityBreaking
			}
			issues = append(issues, Issue{
				Severity: sev,
				Message:  fmt.Sprintf("version bump from %s to %s is insufficient for the detected changes", fromVer, toVer),
				Reason:   bumpReason(maxSeverity),
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].TypeName != issues[j].TypeName {
			return issues[i].TypeName < issues[j].TypeName
		}
		return issues[i].Severity > issues[j].Severity
	})

	compatible := true
	for _, is := range issues {
		if is.Severity == SeverityBreaking {
			compatible = false
		}
	}

	return &Report{
		FromVersion:      fromVer,
		ToVersion:        toVer,
		Compatible:       compatible,
		VersionBumpValid: bumpValid,
		Issues:           issues,
	}
}

func classify(c diff.Change, oldSchema, newSchema *ir.Schema) Issue {
	base := Issue{TypeName: c.Type, Message: c.Message}
	switch c.Kind {
	case diff.TypeRemoved:
		base.Severity, base.Reason = SeverityBreaking, "old producers may emit this type"
	case diff.TypeAdded:
		base.Severity, base.Reason = SeverityInfo, "new types do not affect old data"
	case diff.TypeKindChanged:
		base.Severity, base.Reason = SeverityBreaking, "the type's byte layout changed shape entirely"
	case diff.FieldAdded:
		if fieldIsOptional(newSchema, c.Type, c.Member) {
			base.Severity, base.Reason = SeverityCompatible, "absence decodes as None"
		} else {
			base.Severity, base.Reason = SeverityBreaking, "old data lacks bytes for the new field"
		}
	case diff.FieldRemoved:
		base.Severity, base.Reason = SeverityBreaking, "old data has extra bytes the new schema does not expect"
	case diff.FieldTypeChanged:
		base.Severity, base.Reason = SeverityBreaking, "byte layout differs"
	case diff.FieldMetadataChanged:
		if maxBoundChanged(oldSchema, newSchema, c.Type, c.Member) {
			base.Severity, base.Reason = SeverityBreaking, "max(N) bound changed: variable-length encoding no longer agrees on size"
		} else {
			base.Severity, base.Reason = SeverityInfo, "metadata-only change"
		}
	case diff.VariantAdded:
		base.Severity, base.Reason = SeverityCompatible, "old discriminants still decode"
	case diff.VariantRemoved:
		base.Severity, base.Reason = SeverityBreaking, "old data may carry the removed discriminant"
	case diff.VariantShapeChanged:
		base.Severity, base.Reason = SeverityBreaking, "payload layout differs"
	case diff.VariantDiscriminantChanged:
		base.Severity, base.Reason = SeverityBreaking, "old discriminants now mean a different variant"
	case diff.AliasChanged:
		base.Severity, base.Reason = SeverityBreaking, "byte layout differs"
	default:
		base.Severity, base.Reason = SeverityInfo, "unclassified change"
	}
	return base
}

func fieldIsOptional(schema *ir.Schema, typeName, fieldName string) bool {
	def, ok := schema.Lookup(typeName)
	if !ok || def.Struct == nil {
		return false
	}
	for _, f := range def.Struct.Fields {
		if f.Name == fieldName {
			return f.Type.Kind == ir.InfoOption
		}
	}
	return false
}

// fieldMaxBound returns the #[max(N)] bound on the named field, if any.
func fieldMaxBound(schema *ir.Schema, typeName, fieldName string) *int {
	def, ok := schema.Lookup(typeName)
	if !ok || def.Struct == nil {
		return nil
	}
	for _, f := range def.Struct.Fields {
		if f.Name == fieldName {
			return f.MaxBound
		}
	}
	return nil
}

// maxBoundChanged reports whether a field's #[max(N)] bound differs
// between the two schemas: a shrunk or grown bound is an observable
// change to the variable-length encoding, not just metadata.
func maxBoundChanged(oldSchema, newSchema *ir.Schema, typeName, fieldName string) bool {
	o := fieldMaxBound(oldSchema, typeName, fieldName)
	n := fieldMaxBound(newSchema, typeName, fieldName)
	if o == nil || n == nil {
		return o != n
	}
	return *o != *n
}

// matchedVersions picks the version pair to enforce a SemVer bump
// against: the first type (in deterministic, sorted-change order) that
// carries a non-empty #[version(...)] on both sides of the diff.
func matchedVersions(oldSchema, newSchema *ir.Schema, changes []diff.Change) (string, string) {
	seen := make(map[string]bool)
	var names []string
	for _, c := range changes {
		if !seen[c.Type] {
			seen[c.Type] = true
			names = append(names, c.Type)
		}
	}
	for _, d := range oldSchema.Definitions {
		if !seen[d.QualifiedName()] {
			seen[d.QualifiedName()] = true
			names = append(names, d.QualifiedName())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		oldDef, ok1 := oldSchema.Lookup(name)
		newDef, ok2 := newSchema.Lookup(name)
		if !ok1 || !ok2 {
			continue
		}
		if oldDef.Meta.Version != "" && newDef.Meta.Version != "" {
			return oldDef.Meta.Version, newDef.Meta.Version
		}
	}
	return "", ""
}

// bumpSatisfies reports whether the bump from `from` to `to` meets or
// exceeds what maxSeverity requires (spec.md §4.5's SemVer rule).
func bumpSatisfies(from, to string, maxSeverity Severity) bool {
	vf, vt := "v"+from, "v"+to
	if !semver.IsValid(vf) || !semver.IsValid(vt) {
		return true
	}
	cmp := semver.Compare(vt, vf)
	if cmp < 0 {
		return false
	}

	switch maxSeverity {
	case SeverityBreaking:
		return semver.Major(vt) != semver.Major(vf)
	case SeverityCompatible:
		return semver.Major(vt) != semver.Major(vf) || semver.MajorMinor(vt) != semver.MajorMinor(vf)
	default:
		return true
	}
}

func bumpReason(maxSeverity Severity) string {
	switch maxSeverity {
	case SeverityBreaking:
		return "a breaking change requires a major version bump"
	case SeverityCompatible:
		return "a compatible change requires at least a minor version bump"
	default:
		return "no bump is strictly required, but one was not made"
	}
}
