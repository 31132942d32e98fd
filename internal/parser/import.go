package parser

import (
	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/token"
)

// parseImport разбирает все формы import; курсор стоит на 'import'.
//
//	import D from "m";             import * as NS from "m";
//	import { a, b as c } from "m"; import D, { a } from "m";
//	import type { T } from "m";    import "m";
//	import x = require("m");       import x = A.B;
func (p *Parser) parseImport(ctx scopeCtx, out *[]ast.StmtID, ds declStart) bool {
	p.advance() // import
	imp := ast.Import{Exported: ds.mods.Has(ast.ModExport)}

	// import "m";
	if p.at(token.StringLit) {
		modTok := p.advance()
		imp.Module, imp.ModuleSpan = unquote(modTok.Text), modTok.Span
		p.parseSemicolon()
		p.pushImport(out, ast.StmtImport, ds.start, imp)
		return true
	}

	if p.atWord("type") {
		n := p.peekN(1)
		if n.Kind == token.LBrace || n.Kind == token.Star || (n.Kind == token.Ident && !n.Is("from")) {
			p.advance()
			imp.TypeOnly = true
		}
	}

	// import x = ...
	if p.peek().IsIdentName() && p.peekN(1).Kind == token.Assign {
		nameTok := p.advance()
		p.advance() // =
		binding := ast.ImportBinding{Kind: ast.ImportEquals, Local: nameTok.Text, LocalSpan: nameTok.Span, TypeOnly: imp.TypeOnly}
		if p.atWord("require") && p.peekN(1).Kind == token.LParen {
			p.advance()
			p.advance()
			modTok, ok := p.expect(token.StringLit)
			if ok {
				imp.Module, imp.ModuleSpan = unquote(modTok.Text), modTok.Span
			}
			p.expect(token.RParen)
		} else {
			ref, ok := p.parseEntityName(ast.RefExpr)
			if !ok {
				return false
			}
			imp.EntityName = &ref
		}
		imp.Bindings = append(imp.Bindings, binding)
		p.parseSemicolon()
		p.pushImport(out, ast.StmtImportEquals, ds.start, imp)
		return true
	}

	// default binding
	if p.peek().IsIdentName() && !p.atWord("from") || (p.atWord("from") && p.peekN(1).Is("from")) {
		t := p.advance()
		imp.Bindings = append(imp.Bindings, ast.ImportBinding{Kind: ast.ImportDefault, Name: "default", Local: t.Text, LocalSpan: t.Span, TypeOnly: imp.TypeOnly})
		if !p.eat(token.Comma) {
			return p.finishImportFrom(out, ds.start, imp)
		}
	}

	switch {
	case p.at(token.Star):
		p.advance()
		if !p.expectWord("as") {
			return false
		}
		t, ok := p.expect(token.Ident)
		if !ok {
			return false
		}
		imp.Bindings = append(imp.Bindings, ast.ImportBinding{Kind: ast.ImportStar, Local: t.Text, LocalSpan: t.Span, TypeOnly: imp.TypeOnly})
	case p.at(token.LBrace):
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			typeOnly := imp.TypeOnly
			if p.atWord("type") && p.peekN(1).IsIdentName() && !p.peekN(1).Is("as") {
				p.advance()
				typeOnly = true
			}
			nameTok := p.peek()
			if !nameTok.IsIdentName() && nameTok.Kind != token.StringLit {
				p.err(diag.TSIdentifierExpected, "Identifier expected.")
				return false
			}
			p.advance()
			name := nameTok.Text
			if nameTok.Kind == token.StringLit {
				name = unquote(name)
			}
			local, localSpan := name, nameTok.Span
			if p.atWord("as") {
				p.advance()
				aliasTok, ok := p.expect(token.Ident)
				if !ok {
					return false
				}
				local, localSpan = aliasTok.Text, aliasTok.Span
			}
			kind := ast.ImportNamed
			if name == "default" {
				kind = ast.ImportDefault
			}
			imp.Bindings = append(imp.Bindings, ast.ImportBinding{Kind: kind, Name: name, Local: local, LocalSpan: localSpan, TypeOnly: typeOnly})
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.RBrace); !ok {
			return false
		}
	default:
		p.err(diag.TSTokenExpected, "'{' expected.")
		return false
	}
	return p.finishImportFrom(out, ds.start, imp)
}

func (p *Parser) finishImportFrom(out *[]ast.StmtID, start uint32, imp ast.Import) bool {
	if !p.expectWord("from") {
		return false
	}
	modTok, ok := p.expect(token.StringLit)
	if !ok {
		return false
	}
	imp.Module, imp.ModuleSpan = unquote(modTok.Text), modTok.Span
	p.skipImportAttributes()
	p.parseSemicolon()
	p.pushImport(out, ast.StmtImport, start, imp)
	return true
}

// skipImportAttributes пропускает "with { type: 'json' }" / "assert { ... }".
func (p *Parser) skipImportAttributes() {
	if (p.at(token.KwWith) || p.atWord("assert")) && p.peekN(1).Kind == token.LBrace && !p.peek().NewlineBefore() {
		p.advance()
		p.skipBalanced()
	}
}

func (p *Parser) pushImport(out *[]ast.StmtID, kind ast.StmtKind, start uint32, imp ast.Import) {
	*out = append(*out, p.arenas.Stmts.New(ast.Stmt{
		Kind:   kind,
		Span:   p.spanFrom(start),
		Import: p.arenas.Stmts.NewImport(imp),
	}))
}

// parseExportList — "export [type] { a, b as c } [from 'm']" и "export [type] * [as ns] from 'm'".
func (p *Parser) parseExportList(out *[]ast.StmtID) bool {
	start := p.advance().Span.Start // export
	exp := ast.Export{}
	if p.atWord("type") {
		p.advance()
		exp.TypeOnly = true
	}

	if p.eat(token.Star) {
		exp.Star = true
		if p.atWord("as") {
			p.advance()
			t := p.peek()
			if !t.IsIdentName() && t.Kind != token.StringLit {
				p.err(diag.TSIdentifierExpected, "Identifier expected.")
				return false
			}
			p.advance()
			exp.StarAlias = t.Text
			if t.Kind == token.StringLit {
				exp.StarAlias = unquote(t.Text)
			}
		}
		if !p.expectWord("from") {
			return false
		}
	} else {
		p.advance() // {
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			typeOnly := exp.TypeOnly
			if p.atWord("type") && p.peekN(1).IsIdentName() && !p.peekN(1).Is("as") {
				p.advance()
				typeOnly = true
			}
			nameTok := p.peek()
			if !nameTok.IsIdentName() && nameTok.Kind != token.StringLit {
				p.err(diag.TSIdentifierExpected, "Identifier expected.")
				return false
			}
			p.advance()
			spec := ast.ExportSpec{Name: nameTok.Text, NameSpan: nameTok.Span, TypeOnly: typeOnly}
			if nameTok.Kind == token.StringLit {
				spec.Name = unquote(nameTok.Text)
			}
			spec.Alias = spec.Name
			if p.atWord("as") {
				p.advance()
				aliasTok := p.peek()
				if !aliasTok.IsIdentName() && aliasTok.Kind != token.StringLit {
					p.err(diag.TSIdentifierExpected, "Identifier expected.")
					return false
				}
				p.advance()
				spec.Alias = aliasTok.Text
				if aliasTok.Kind == token.StringLit {
					spec.Alias = unquote(aliasTok.Text)
				}
			}
			exp.Specs = append(exp.Specs, spec)
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.RBrace); !ok {
			return false
		}
		if !p.atWord("from") {
			p.parseSemicolon()
			p.pushExport(out, start, exp)
			return true
		}
		p.advance()
	}

	modTok, ok := p.expect(token.StringLit)
	if !ok {
		return false
	}
	exp.Module, exp.ModuleSpan = unquote(modTok.Text), modTok.Span
	p.skipImportAttributes()
	p.parseSemicolon()
	p.pushExport(out, start, exp)
	return true
}

func (p *Parser) pushExport(out *[]ast.StmtID, start uint32, exp ast.Export) {
	*out = append(*out, p.arenas.Stmts.New(ast.Stmt{
		Kind:   ast.StmtExport,
		Span:   p.spanFrom(start),
		Export: p.arenas.Stmts.NewExport(exp),
	}))
}
