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

// Package compiler wires the front end (C2/C4), the transform pass (C6),
// the diff engine (C7), the compatibility checker (C8) and the migration
// scaffolder (C9) behind the four entry points spec.md §6 describes:
// Compile, Diff, CheckCompat, Migrate. It owns the per-compilation
// source.Set and assigns every call a run ID purely for log correlation.
package compiler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/getlumos/lumos-sub001/compat"
	"github.com/getlumos/lumos-sub001/diff"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/ir"
	"github.com/getlumos/lumos-sub001/migrate"
	"github.com/getlumos/lumos-sub001/resolver"
	"github.com/getlumos/lumos-sub001/source"
	"github.com/getlumos/lumos-sub001/transform"
)

// Options configures a single Compile call.
type Options struct {
	// FS overrides the default OS file system; nil uses the real one.
	FS resolver.FileSystem
	// Logger receives structured driver events; nil installs slog.Default().
	Logger *slog.Logger
}

// CompilationUnit is the successful result of Compile: a lowered schema
// plus the set of warnings (non-fatal diagnostics) accumulated along the
// way, e.g. deprecated-item usage.
type CompilationUnit struct {
	schema      *ir.Schema
	set         *source.Set
	diagnostics []*errors.SchemaError
}

// Definitions returns every resolved type definition, in deterministic
// file-then-position order.
func (c *CompilationUnit) Definitions() []*ir.TypeDefinition { return c.schema.Definitions }

// ByModule groups definitions by their dotted module path.
func (c *CompilationUnit) ByModule() map[string][]*ir.TypeDefinition { return c.schema.ByModule() }

// Diagnostics returns accumulated warnings — compilation failures are
// returned as an error from Compile instead, never mixed in here.
func (c *CompilationUnit) Diagnostics() []*errors.SchemaError { return c.diagnostics }

// Schema exposes the underlying ir.Schema for callers that need to feed
// it straight into Diff/CheckCompat/Migrate.
func (c *CompilationUnit) Schema() *ir.Schema { return c.schema }

// Compile loads entryPath, resolves its file/module graph, and lowers it
// to IR. A cancelled ctx aborts before resolution or before lowering
// begins; it is not checked between file loads or mid-pass.
func Compile(ctx context.Context, entryPath string, opts Options) (*CompilationUnit, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New()
	logger = logger.With(slog.String("run_id", runID.String()), slog.String("entry", entryPath))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("resolving file/module graph")
	unit, serr := resolver.Load(entryPath, opts.FS)
	if serr != nil {
		logger.Error("resolve failed", slog.String("kind", serr.Kind.String()), slog.String("message", serr.Message))
		return nil, serr
	}
	logger.Info("resolved", slog.Int("files", len(unit.Files)), slog.String("mode", unit.Mode.String()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("lowering to IR")
	schema, terr := transform.Transform(unit)
	if terr != nil {
		logger.Error("transform failed", slog.String("kind", terr.Kind.String()), slog.String("message", terr.Message))
		return nil, terr
	}
	logger.Info("lowered", slog.Int("definitions", len(schema.Definitions)))

	return &CompilationUnit{
		schema:      schema,
		set:         unit.Set,
		diagnostics: deprecationWarnings(schema),
	}, nil
}

// deprecationWarnings surfaces every deprecated struct, enum, and field
// as a TypeValidation warning diagnostic so a caller can flag usage without failing
// the build (spec.md §6: "Per-file diagnostics (warnings: e.g.,
// deprecation usage)").
func deprecationWarnings(schema *ir.Schema) []*errors.SchemaError {
	var out []*errors.SchemaError
	for _, def := range schema.Definitions {
		if def.Meta.Deprecated {
			out = append(out, errors.Newf(errors.TypeValidation, def.Pos,
				"%q is deprecated: %s", def.QualifiedName(), def.Meta.DeprecatedMessage).WithSuggestion("avoid new uses of this type"))
		}
		if def.Struct != nil {
			for _, f := range def.Struct.Fields {
				if f.Deprecated {
					out = append(out, errors.Newf(errors.TypeValidation, f.Pos,
						"%s.%s is deprecated: %s", def.QualifiedName(), f.Name, f.DeprecatedMessage))
				}
			}
		}
	}
	return out
}

// Diff compares two schemas and returns their flat, ordered change list.
func Diff(a, b *ir.Schema) []diff.Change {
	return diff.Diff(a, b)
}

// CheckCompat classifies the diff between two schemas and enforces the
// SemVer bump rule.
func CheckCompat(a, b *ir.Schema, opts compat.Options) *compat.Report {
	return compat.Check(a, b, opts)
}

// Migrate scaffolds an ordered migration plan from the diff between two
// schemas.
func Migrate(a, b *ir.Schema, opts migrate.Options) ([]migrate.Step, error) {
	steps, err := migrate.Migrate(a, b, opts)
	if err != nil {
		return nil, err
	}
	return steps, nil
}
