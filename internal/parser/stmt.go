package parser

import (
	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/token"
)

// declStart — общая шапка декларации: модификаторы, doc и начало span.
type declStart struct {
	start    uint32
	doc      ast.Doc
	mods     ast.Modifier
	modSpans []ast.ModSpan
	refs     []ast.TypeRef // ссылки из computed-имени члена
}

func (ds *declStart) add(mod ast.Modifier, sp source.Span) {
	ds.mods |= mod
	ds.modSpans = append(ds.modSpans, ast.ModSpan{Mod: mod, Span: sp})
}

// startsDeclaration — начинает ли токен в позиции i декларацию (с учётом контекстных слов).
func (p *Parser) startsDeclaration(i int) bool {
	t := p.tokAt(i)
	next := p.tokAt(i + 1)
	switch t.Kind {
	case token.KwClass, token.KwInterface, token.KwEnum, token.KwFunction, token.KwVar, token.KwLet:
		return true
	case token.KwConst:
		return next.Kind == token.KwEnum || next.Kind == token.Ident || next.Kind == token.LBrace || next.Kind == token.LBracket
	case token.Ident:
		if next.NewlineBefore() {
			return false
		}
		switch t.Text {
		case "type":
			return next.Kind == token.Ident
		case "namespace":
			return next.Kind == token.Ident
		case "module":
			return next.Kind == token.Ident || next.Kind == token.StringLit
		case "declare":
			return p.startsDeclaration(i+1) || next.Is("global")
		case "abstract":
			return next.Kind == token.KwClass
		case "async":
			return next.Kind == token.KwFunction
		}
	}
	return false
}

// parseStatement выбирает по первому токену нужный распознаватель конструкции.
func (p *Parser) parseStatement(ctx scopeCtx, out *[]ast.StmtID) bool {
	t := p.peek()
	switch {
	case t.Kind == token.Semicolon:
		p.advance()
		return true

	case t.Kind == token.KwImport && p.peekN(1).Kind != token.LParen && p.peekN(1).Kind != token.Dot:
		return p.parseImport(ctx, out, declStart{start: t.Span.Start})

	case t.Kind == token.KwExport:
		return p.parseExportStatement(ctx, out)

	case t.Is("declare") && p.peekN(1).Is("global") && p.peekN(2).Kind == token.LBrace:
		return p.parseGlobalBlock(ctx, out)

	case t.Is("declare") && p.peekN(1).Is("module") && p.peekN(2).Kind == token.StringLit:
		return p.parseAmbientModule(ctx, out)

	case t.Is("global") && p.peekN(1).Kind == token.LBrace && ctx.ambient:
		return p.parseGlobalBlock(ctx, out)

	case p.startsDeclaration(p.pos):
		ds := declStart{start: t.Span.Start, doc: docOf(t)}
		return p.parseDeclaration(ctx, ds, out)
	}

	if ctx.ambient {
		p.err(diag.TSDeclarationExpected, "Declaration or statement expected.")
		return false
	}
	// обычный statement в .ts — пропускаем
	start := t.Span.Start
	p.resyncStatement()
	*out = append(*out, p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtOther, Span: p.spanFrom(start)}))
	return true
}

// parseDeclaration разбирает модификаторы и саму декларацию.
func (p *Parser) parseDeclaration(ctx scopeCtx, ds declStart, out *[]ast.StmtID) bool {
	for {
		t := p.peek()
		switch {
		case t.Is("declare") && p.startsDeclaration(p.pos+1):
			p.advance()
			ds.add(ast.ModDeclare, t.Span)
			continue
		case t.Is("abstract") && p.peekN(1).Kind == token.KwClass:
			p.advance()
			ds.add(ast.ModAbstract, t.Span)
			continue
		case t.Is("async") && p.peekN(1).Kind == token.KwFunction:
			p.advance()
			ds.add(ast.ModAsync, t.Span)
			continue
		case t.Kind == token.KwConst && p.peekN(1).Kind == token.KwEnum:
			p.advance()
			ds.add(ast.ModConst, t.Span)
			continue
		}
		break
	}

	if ctx.ambient || ds.mods.Has(ast.ModDeclare) {
		ctx.ambient = true
	}

	var ids []ast.DeclID
	t := p.peek()
	switch {
	case t.Kind == token.KwClass:
		ids = append(ids, p.parseClass(ctx, ds))
	case t.Kind == token.KwInterface:
		ids = append(ids, p.parseInterface(ctx, ds))
	case t.Kind == token.KwEnum:
		ids = append(ids, p.parseEnum(ctx, ds))
	case t.Kind == token.KwFunction:
		ids = append(ids, p.parseFunction(ctx, ds))
	case t.Kind == token.KwConst || t.Kind == token.KwLet || t.Kind == token.KwVar:
		ids = p.parseVariables(ctx, ds)
	case t.Is("type"):
		ids = append(ids, p.parseTypeAlias(ctx, ds))
	case t.Is("namespace") || t.Is("module"):
		ids = append(ids, p.parseNamespace(ctx, ds))
	default:
		p.err(diag.TSDeclarationExpected, "Declaration or statement expected.")
		return false
	}

	for _, id := range ids {
		if !id.IsValid() {
			continue
		}
		d := p.arenas.Decls.Get(id)
		p.checkTopLevelModifier(ctx, d)
		*out = append(*out, p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtDecl, Span: d.Span, Decl: id}))
	}
	return len(ids) > 0
}

// checkTopLevelModifier — в .d.ts top-level декларации значений требуют 'declare' или 'export'.
func (p *Parser) checkTopLevelModifier(ctx scopeCtx, d *ast.Decl) {
	if !ctx.topLevel || !p.src.IsDeclarationFile() {
		return
	}
	if d.Modifiers.Has(ast.ModExport) || d.Modifiers.Has(ast.ModDeclare) {
		return
	}
	switch d.Kind {
	case ast.DeclClass, ast.DeclFunction, ast.DeclVariable, ast.DeclEnum, ast.DeclNamespace:
		p.errAt(d.Keyword, diag.TSTopLevelModifier,
			"Top-level declarations in .d.ts files must start with either a 'declare' or 'export' modifier.")
	}
}

func (p *Parser) parseExportStatement(ctx scopeCtx, out *[]ast.StmtID) bool {
	exportTok := p.peek()
	next := p.peekN(1)
	ds := declStart{start: exportTok.Span.Start, doc: docOf(exportTok)}

	switch {
	case next.Kind == token.LBrace || next.Kind == token.Star ||
		(next.Is("type") && (p.peekN(2).Kind == token.LBrace || p.peekN(2).Kind == token.Star)):
		return p.parseExportList(out)

	case next.Kind == token.Assign:
		p.advance()
		p.advance()
		return p.parseExportAssign(out, ds.start, false)

	case next.Kind == token.KwImport:
		p.advance()
		ds.add(ast.ModExport, exportTok.Span)
		return p.parseImport(ctx, out, ds)

	case next.Is("as") && p.peekN(2).Is("namespace"):
		p.advance()
		p.advance()
		p.advance()
		name, _ := p.expect(token.Ident)
		p.parseSemicolon()
		*out = append(*out, p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtUMDExport, Span: p.spanFrom(ds.start), Name: name.Text}))
		return true

	case next.Kind == token.KwDefault:
		p.advance()
		defTok := p.advance()
		ds.add(ast.ModExport, exportTok.Span)
		ds.add(ast.ModDefault, defTok.Span)
		after := p.peek()
		if after.Kind == token.KwClass || after.Kind == token.KwFunction || after.Kind == token.KwInterface ||
			(after.Is("abstract") && p.peekN(1).Kind == token.KwClass) ||
			(after.Is("async") && p.peekN(1).Kind == token.KwFunction) {
			return p.parseDeclaration(ctx, ds, out)
		}
		return p.parseExportAssign(out, ds.start, true)
	}

	p.advance()
	ds.add(ast.ModExport, exportTok.Span)
	if !p.startsDeclaration(p.pos) {
		p.err(diag.TSDeclarationExpected, "Declaration or statement expected.")
		return false
	}
	return p.parseDeclaration(ctx, ds, out)
}

// parseExportAssign — "export = expr" и "export default expr"; курсор стоит на выражении.
func (p *Parser) parseExportAssign(out *[]ast.StmtID, start uint32, isDefault bool) bool {
	exp := ast.Export{IsDefault: isDefault}
	if p.peek().IsIdentName() {
		var parts []string
		first := p.peek().Span
		for {
			parts = append(parts, p.advance().Text)
			if !p.at(token.Dot) || !p.peekN(1).IsIdentName() {
				break
			}
			p.advance()
		}
		if p.at(token.Semicolon) || p.at(token.EOF) || p.at(token.RBrace) || p.peek().NewlineBefore() {
			ref := ast.TypeRef{Kind: ast.RefExpr, Parts: parts, Span: p.spanFrom(first.Start), HeadSpan: first}
			exp.Target = &ref
			p.addRef(ref)
		} else {
			p.skipExpression()
		}
	} else {
		p.skipExpression()
	}
	p.parseSemicolon()
	*out = append(*out, p.arenas.Stmts.New(ast.Stmt{
		Kind:   ast.StmtExportAssign,
		Span:   p.spanFrom(start),
		Export: p.arenas.Stmts.NewExport(exp),
	}))
	return true
}

func (p *Parser) parseGlobalBlock(ctx scopeCtx, out *[]ast.StmtID) bool {
	start := p.peek().Span.Start
	if p.atWord("declare") {
		p.advance()
	}
	p.advance() // global
	p.expect(token.LBrace)
	inner := scopeCtx{ambient: true, global: true}
	body := p.parseStatements(inner, token.RBrace)
	p.expect(token.RBrace)
	*out = append(*out, p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtGlobal, Span: p.spanFrom(start), Body: body}))
	return true
}

func (p *Parser) parseAmbientModule(ctx scopeCtx, out *[]ast.StmtID) bool {
	start := p.peek().Span.Start
	p.advance() // declare
	p.advance() // module
	name := unquote(p.advance().Text)
	var body []ast.StmtID
	if p.eat(token.LBrace) {
		body = p.parseStatements(scopeCtx{ambient: true}, token.RBrace)
		p.expect(token.RBrace)
	} else {
		p.parseSemicolon()
	}
	*out = append(*out, p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtAmbientModule, Span: p.spanFrom(start), Body: body, Name: name}))
	return true
}
