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

// Package parser turns a source.File into an ast.File: a full recursive
// descent parser plus an independent, tolerant import prescan used by
// the resolver (see prescan.go).
package parser

import (
	"strconv"

	"github.com/getlumos/lumos-sub001/ast"
	"github.com/getlumos/lumos-sub001/errors"
	"github.com/getlumos/lumos-sub001/scanner"
	"github.com/getlumos/lumos-sub001/source"
	"github.com/getlumos/lumos-sub001/token"
)

// bailout unwinds the recursive descent as soon as the first error is
// recorded: spec.md §4.1 requires no error recovery, at most one
// SchemaParse error per file.
type bailout struct{}

type parser struct {
	file *source.File
	scan scanner.Scanner

	pos source.Span
	tok token.Kind
	lit string

	err *errors.SchemaError
}

// ParseFile parses file's content into an AST. On the first syntax
// error it stops and returns that error; the AST result is nil in that
// case.
func ParseFile(file *source.File) (*ast.File, *errors.SchemaError) {
	p := &parser{file: file}
	p.scan.Init(file, p.scanError, 0)

	var result *ast.File
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(bailout); !ok {
					panic(r)
				}
			}
		}()
		p.next()
		result = p.parseFile()
	}()
	if p.err != nil {
		return nil, p.err
	}
	return result, nil
}

func (p *parser) scanError(span source.Span, msg string) {
	p.errorfAt(span, "%s", msg)
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.scan.Scan()
}

func (p *parser) errorfAt(span source.Span, format string, args ...any) {
	if p.err == nil {
		p.err = errors.Newf(errors.SchemaParse, span, format, args...)
	}
	panic(bailout{})
}

func (p *parser) errorf(format string, args ...any) {
	p.errorfAt(p.pos, format, args...)
}

func (p *parser) expect(tok token.Kind) source.Span {
	pos := p.pos
	if p.tok != tok {
		p.errorf("expected %q, found %q", tok, p.tok)
	}
	p.next()
	return pos
}

func (p *parser) parseIdentName() (string, source.Span) {
	if p.tok != token.IDENT {
		p.errorf("expected an identifier, found %q", p.tok)
	}
	name, pos := p.lit, p.pos
	p.next()
	return name, pos
}

func (p *parser) parseFile() *ast.File {
	f := &ast.File{Path: p.file.Path()}
	for p.tok != token.EOF {
		if p.tok == token.IMPORT {
			f.Imports = append(f.Imports, p.parseImportDecl())
			continue
		}
		f.Items = append(f.Items, p.parseItem())
	}
	return f
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	start := p.pos
	p.expect(token.IMPORT)
	p.expect(token.LBRACE)
	var symbols []*ast.Ident
	for {
		name, pos := p.parseIdentName()
		symbols = append(symbols, &ast.Ident{Name: name, Pos: pos})
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	p.expect(token.FROM)
	if p.tok != token.STRING {
		p.errorf("expected a string literal naming the import path")
	}
	from := p.lit
	p.next()
	end := p.expect(token.SEMI)
	return &ast.ImportDecl{Symbols: symbols, From: from, DefPos: start.Cover(end)}
}

func (p *parser) parseAttrs() []ast.Attribute {
	var attrs []ast.Attribute
	for p.tok == token.HASH {
		attrs = append(attrs, p.parseAttr())
	}
	return attrs
}

func (p *parser) parseAttr() ast.Attribute {
	start := p.pos
	p.expect(token.HASH)
	p.expect(token.LBRACK)
	key, _ := p.parseIdentName()

	attr := ast.Attribute{Key: key, Kind: ast.AttrFlag}
	if p.tok == token.LPAREN {
		p.next()
		var args []string
		for {
			args = append(args, p.parseAttrArg())
			if p.tok == token.COMMA {
				p.next()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
		if len(args) == 1 {
			attr.Kind = ast.AttrLiteral
			attr.Literal = args[0]
		} else {
			attr.Kind = ast.AttrList
			attr.List = args
		}
	}
	end := p.expect(token.RBRACK)
	attr.AttrPos = start.Cover(end)
	return attr
}

func (p *parser) parseAttrArg() string {
	switch p.tok {
	case token.IDENT, token.INT, token.STRING:
		lit := p.lit
		p.next()
		return lit
	default:
		p.errorf("expected an attribute argument, found %q", p.tok)
		return ""
	}
}

func (p *parser) parseVisibility() ast.Visibility {
	if p.tok == token.PUB {
		p.next()
		return ast.Public
	}
	return ast.Private
}

// parseGenerics parses an optional `<T, U, ...>` parameter list,
// rejecting the surface forms spec.md §4.1 explicitly disallows:
// bounds (`T: Trait`) and const generics (`const N: usize`).
func (p *parser) parseGenerics() ([]string, map[string]bool) {
	if p.tok != token.LANGLE {
		return nil, nil
	}
	p.next()
	var names []string
	set := map[string]bool{}
	for {
		if p.tok == token.IDENT && p.lit == "const" {
			p.errorf("const-generic parameters are not supported")
		}
		name, _ := p.parseIdentName()
		if p.tok == token.COLON {
			p.errorf("generic bounds (`%s: Trait`) are not supported", name)
		}
		names = append(names, name)
		set[name] = true
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RANGLE)
	p.rejectWhereClause()
	return names, set
}

func (p *parser) rejectWhereClause() {
	if p.tok == token.IDENT && p.lit == "where" {
		p.errorf("where clauses are not supported")
	}
}

// parseType parses a single type reference. generics is the set of
// type parameters declared by the enclosing item (nil if none), used
// to distinguish a bound generic parameter from an unresolved
// user-defined name at parse time, per spec.md §3 (Generic vs
// UserDefined are distinct TypeSpec constructors).
func (p *parser) parseType(generics map[string]bool) ast.TypeSpec {
	start := p.pos
	switch p.tok {
	case token.LBRACK:
		p.next()
		elem := p.parseType(generics)
		if p.tok == token.SEMI {
			p.next()
			if p.tok != token.INT {
				p.errorf("expected an array size, found %q", p.tok)
			}
			sizeSpan := p.pos
			n, err := strconv.Atoi(p.lit)
			if err != nil {
				p.errorf("invalid array size %q", p.lit)
			}
			p.next()
			end := p.expect(token.RBRACK)
			if n < 1 || n > 1024 {
				p.err = errors.Newf(errors.TypeValidation, sizeSpan, "fixed array size must be in the range 1..=1024, got %d", n)
				panic(bailout{})
			}
			return &ast.FixedArrayType{Elem: elem, Size: n, SizeSpan: sizeSpan, TypePos: start.Cover(end)}
		}
		end := p.expect(token.RBRACK)
		return &ast.VecType{Elem: elem, TypePos: start.Cover(end)}

	case token.IDENT:
		name, namePos := p.lit, p.pos
		p.next()

		if (name == "Vec" || name == "Option") && p.tok == token.LANGLE {
			p.next()
			elem := p.parseType(generics)
			end := p.expect(token.RANGLE)
			span := namePos.Cover(end)
			if name == "Vec" {
				return &ast.VecType{Elem: elem, TypePos: span}
			}
			return &ast.OptionType{Elem: elem, TypePos: span}
		}
		if prim, ok := ast.LookupPrimitive(name); ok {
			return &ast.PrimitiveType{Kind: prim, TypePos: namePos}
		}
		if dom, ok := ast.LookupDomain(name); ok {
			return &ast.DomainType{Kind: dom, TypePos: namePos}
		}
		if generics != nil && generics[name] {
			return &ast.GenericType{Name: name, TypePos: namePos}
		}
		return &ast.UserDefinedType{Name: name, TypePos: namePos}

	default:
		p.errorfAt(start, "expected a type, found %q", p.tok)
		return nil
	}
}

func (p *parser) parseField(generics map[string]bool) *ast.Field {
	attrs := p.parseAttrs()
	name, start := p.parseIdentName()
	p.expect(token.COLON)
	typ := p.parseType(generics)
	return &ast.Field{Name: name, Type: typ, Attrs: attrs, FieldPos: start.Cover(typ.Span())}
}

func (p *parser) parseFieldList(generics map[string]bool) []*ast.Field {
	var fields []*ast.Field
	for p.tok != token.RBRACE {
		fields = append(fields, p.parseField(generics))
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	return fields
}

func (p *parser) parseVariant(generics map[string]bool) *ast.Variant {
	attrs := p.parseAttrs()
	name, start := p.parseIdentName()
	v := &ast.Variant{Name: name, Attrs: attrs, VariantPos: start}

	switch p.tok {
	case token.LPAREN:
		p.next()
		var types []ast.TypeSpec
		for {
			types = append(types, p.parseType(generics))
			if p.tok == token.COMMA {
				p.next()
				continue
			}
			break
		}
		end := p.expect(token.RPAREN)
		v.Kind = ast.VariantTuple
		v.TupleTypes = types
		v.VariantPos = start.Cover(end)

	case token.LBRACE:
		p.next()
		fields := p.parseFieldList(generics)
		end := p.expect(token.RBRACE)
		v.Kind = ast.VariantStruct
		v.Fields = fields
		v.VariantPos = start.Cover(end)

	default:
		v.Kind = ast.VariantUnit
	}
	return v
}

func (p *parser) parseStruct(vis ast.Visibility, attrs []ast.Attribute, start source.Span) *ast.StructDef {
	p.expect(token.STRUCT)
	name, _ := p.parseIdentName()
	typeParams, generics := p.parseGenerics()
	p.expect(token.LBRACE)
	fields := p.parseFieldList(generics)
	end := p.expect(token.RBRACE)
	return &ast.StructDef{
		Visibility: vis, Name: name, TypeParams: typeParams,
		Fields: fields, Attrs: attrs, DefPos: start.Cover(end),
	}
}

func (p *parser) parseEnum(vis ast.Visibility, attrs []ast.Attribute, start source.Span) *ast.EnumDef {
	p.expect(token.ENUM)
	name, _ := p.parseIdentName()
	typeParams, generics := p.parseGenerics()
	p.expect(token.LBRACE)
	var variants []*ast.Variant
	for p.tok != token.RBRACE {
		variants = append(variants, p.parseVariant(generics))
		if p.tok == token.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.expect(token.RBRACE)
	return &ast.EnumDef{
		Visibility: vis, Name: name, TypeParams: typeParams,
		Variants: variants, Attrs: attrs, DefPos: start.Cover(end),
	}
}

func (p *parser) parseTypeAlias(vis ast.Visibility, attrs []ast.Attribute, start source.Span) *ast.TypeAlias {
	p.expect(token.TYPE)
	name, _ := p.parseIdentName()
	p.expect(token.ASSIGN)
	target := p.parseType(nil)
	end := p.expect(token.SEMI)
	return &ast.TypeAlias{Visibility: vis, Name: name, Target: target, Attrs: attrs, DefPos: start.Cover(end)}
}

func (p *parser) parseMod(vis ast.Visibility, start source.Span) *ast.ModuleDecl {
	p.expect(token.MOD)
	name, _ := p.parseIdentName()
	if p.tok == token.LBRACE {
		p.errorf("inline module bodies are not supported; declare `mod %s;` and put its contents in a separate file", name)
	}
	end := p.expect(token.SEMI)
	return &ast.ModuleDecl{Visibility: vis, Name: name, DefPos: start.Cover(end)}
}

func (p *parser) parseModulePathSegment() ast.PathSegment {
	name, _ := p.parseIdentName()
	switch name {
	case "crate":
		return ast.PathSegment{Kind: ast.SegCrate}
	case "super":
		return ast.PathSegment{Kind: ast.SegSuper}
	case "self":
		return ast.PathSegment{Kind: ast.SegSelf}
	default:
		return ast.PathSegment{Kind: ast.SegIdent, Name: name}
	}
}

func (p *parser) parseModulePath() ast.ModulePath {
	start := p.pos
	first := p.parseModulePathSegment()
	segments := []ast.PathSegment{first}
	for p.tok == token.COLONCOLON {
		p.next()
		switch p.tok {
		case token.STAR:
			p.errorf("glob imports (`use x::*`) are not supported")
		case token.LBRACE:
			p.errorf("grouped imports (`use x::{a,b}`) are not supported; write separate `use` statements")
		}
		segments = append(segments, p.parseModulePathSegment())
	}
	return ast.ModulePath{Absolute: first.Kind == ast.SegCrate, Segments: segments, PathPos: start.Cover(p.pos)}
}

func (p *parser) parseUse(start source.Span) *ast.UseStatement {
	p.expect(token.USE)
	path := p.parseModulePath()
	var alias string
	if p.tok == token.AS {
		p.next()
		alias, _ = p.parseIdentName()
	}
	end := p.expect(token.SEMI)
	return &ast.UseStatement{Path: path, Alias: alias, DefPos: start.Cover(end)}
}

func (p *parser) parseItem() ast.Item {
	start := p.pos
	attrs := p.parseAttrs()
	vis := p.parseVisibility()

	switch p.tok {
	case token.STRUCT:
		return p.parseStruct(vis, attrs, start)
	case token.ENUM:
		return p.parseEnum(vis, attrs, start)
	case token.TYPE:
		return p.parseTypeAlias(vis, attrs, start)
	case token.MOD:
		return p.parseMod(vis, start)
	case token.USE:
		return p.parseUse(start)
	default:
		p.errorfAt(start, "expected `struct`, `enum`, `type`, `mod`, or `use`, found %q", p.tok)
		return nil
	}
}
