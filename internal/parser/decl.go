package parser

import (
	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/token"
)

// newDecl выделяет декларацию сразу, чтобы дети могли сослаться на неё как на Parent.
func (p *Parser) newDecl(kind ast.DeclKind, ctx scopeCtx, ds declStart, kw token.Token) ast.DeclID {
	return p.arenas.Decls.New(ast.Decl{
		Kind:        kind,
		Modifiers:   ds.mods,
		ModSpans:    ds.modSpans,
		Refs:        ds.refs,
		Doc:         ds.doc,
		Keyword:     kw.Span,
		KeywordText: kw.Text,
		File:        p.file,
		Parent:      ctx.parent,
		Global:      ctx.global,
		Ambient:     ctx.ambient,
	})
}

// parseDeclName читает имя декларации; анонимные default-экспорты допустимы.
func (p *Parser) parseDeclName(ds declStart) (string, source.Span) {
	t := p.peek()
	if t.Kind == token.Ident {
		p.advance()
		return t.Text, t.Span
	}
	if ds.mods.Has(ast.ModDefault) {
		return "", source.Span{File: p.src.ID, Start: p.lastEnd, End: p.lastEnd}
	}
	p.err(diag.TSIdentifierExpected, "Identifier expected.")
	return "", p.diagSpan()
}

func (p *Parser) finishDecl(id ast.DeclID, start uint32, refs []ast.TypeRef, elide []source.Span) *ast.Decl {
	d := p.arenas.Decls.Get(id)
	d.Span = p.spanFrom(start)
	d.Refs = append(d.Refs, refs...)
	d.Elide = append(d.Elide, elide...)
	return d
}

// parseTypeParams — "<T extends C = D, const U, in out V>"; имена объявляются в текущем scope.
func (p *Parser) parseTypeParams() []string {
	var names []string
	p.advance() // <
	for !p.at(token.Gt) && !p.at(token.EOF) {
		for (p.atWord("in") || p.at(token.KwIn) || p.atWord("out") || p.at(token.KwConst)) && p.peekN(1).Kind == token.Ident {
			p.advance()
		}
		nameTok, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		names = append(names, nameTok.Text)
		p.declareTypeParam(nameTok.Text)
		if p.eat(token.KwExtends) {
			p.parseType()
		}
		if p.eat(token.Assign) {
			p.parseType()
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt)
	return names
}

func (p *Parser) parseClass(ctx scopeCtx, ds declStart) ast.DeclID {
	kw := p.advance() // class
	id := p.newDecl(ast.DeclClass, ctx, ds, kw)
	name, nameSpan := p.parseDeclName(ds)

	var refs []ast.TypeRef
	var elide []source.Span
	var members []ast.DeclID
	var typeParams []string
	var bodySpan source.Span

	p.pushScope()
	p.withSinks(&refs, &elide, func() {
		if p.at(token.Lt) {
			typeParams = p.parseTypeParams()
		}
		if p.eat(token.KwExtends) {
			p.parseHeritage(ast.RefHeritage)
		}
		if p.eat(token.KwImplements) {
			p.parseHeritageList()
		}
		bodyStart := p.peek().Span.Start
		if _, ok := p.expect(token.LBrace); ok {
			members = p.parseClassMembers(id, ctx)
			p.expect(token.RBrace)
		}
		bodySpan = p.spanFrom(bodyStart)
	})
	p.popScope()

	d := p.finishDecl(id, ds.start, refs, elide)
	d.Name, d.NameSpan = name, nameSpan
	d.Members, d.TypeParams, d.BodySpan = members, typeParams, bodySpan
	return id
}

func (p *Parser) parseInterface(ctx scopeCtx, ds declStart) ast.DeclID {
	kw := p.advance() // interface
	id := p.newDecl(ast.DeclInterface, ctx, ds, kw)
	name, nameSpan := p.parseDeclName(ds)

	var refs []ast.TypeRef
	var members []ast.DeclID
	var typeParams []string
	var bodySpan source.Span

	p.pushScope()
	p.withSinks(&refs, nil, func() {
		if p.at(token.Lt) {
			typeParams = p.parseTypeParams()
		}
		if p.eat(token.KwExtends) {
			p.parseHeritageList()
		}
		bodyStart := p.peek().Span.Start
		if p.at(token.LBrace) {
			members = p.parseTypeMembers(true, id, ctx)
		} else {
			p.expect(token.LBrace)
		}
		bodySpan = p.spanFrom(bodyStart)
	})
	p.popScope()

	d := p.finishDecl(id, ds.start, refs, nil)
	d.Name, d.NameSpan = name, nameSpan
	d.Members, d.TypeParams, d.BodySpan = members, typeParams, bodySpan
	return id
}

// parseHeritage — выражение в extends класса: A.B<T> или вызов миксина в .ts.
func (p *Parser) parseHeritage(kind ast.RefKind) {
	if !p.peek().IsIdentName() {
		p.skipExpressionUntil(token.LBrace, token.KwImplements)
		return
	}
	p.parseTypeReference(kind)
	if p.at(token.LParen) {
		p.skipBalanced()
	}
}

func (p *Parser) parseHeritageList() {
	for {
		p.parseHeritage(ast.RefType)
		if !p.eat(token.Comma) {
			return
		}
	}
}

// skipExpressionUntil пропускает токены до одного из стоп-токенов на нулевой глубине.
func (p *Parser) skipExpressionUntil(stops ...token.Kind) {
	for !p.at(token.EOF) {
		k := p.peek().Kind
		for _, s := range stops {
			if k == s {
				return
			}
		}
		switch k {
		case token.LParen, token.LBracket:
			p.skipBalanced()
		default:
			p.advance()
		}
	}
}

func (p *Parser) parseEnum(ctx scopeCtx, ds declStart) ast.DeclID {
	kw := p.advance() // enum
	id := p.newDecl(ast.DeclEnum, ctx, ds, kw)
	name, nameSpan := p.parseDeclName(ds)

	var members []ast.DeclID
	bodyStart := p.peek().Span.Start
	if _, ok := p.expect(token.LBrace); ok {
		memberCtx := ctx
		memberCtx.parent = id
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			t := p.peek()
			if !t.IsIdentName() && t.Kind != token.StringLit && t.Kind != token.NumberLit {
				p.err(diag.TSIdentifierExpected, "Identifier expected.")
				p.skipExpression()
				if !p.eat(token.Comma) {
					break
				}
				continue
			}
			p.advance()
			mds := declStart{start: t.Span.Start, doc: docOf(t)}
			mid := p.newDecl(ast.DeclEnumMember, memberCtx, mds, token.Token{})
			memberName := t.Text
			if t.Kind == token.StringLit {
				memberName = unquote(t.Text)
			}
			if p.eat(token.Assign) {
				p.skipExpression()
			}
			md := p.finishDecl(mid, mds.start, nil, nil)
			md.Name, md.NameSpan = memberName, t.Span
			members = append(members, mid)
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expect(token.RBrace)
	}
	bodySpan := p.spanFrom(bodyStart)

	d := p.finishDecl(id, ds.start, nil, nil)
	d.Name, d.NameSpan = name, nameSpan
	d.Members, d.BodySpan = members, bodySpan
	return id
}

func (p *Parser) parseFunction(ctx scopeCtx, ds declStart) ast.DeclID {
	kw := p.advance() // function
	id := p.newDecl(ast.DeclFunction, ctx, ds, kw)
	p.eat(token.Star)
	name, nameSpan := p.parseDeclName(ds)

	var refs []ast.TypeRef
	var elide []source.Span
	var typeParams []string
	p.pushScope()
	p.withSinks(&refs, &elide, func() {
		typeParams = p.parseSignatureRest()
		p.parseBodyOrSemicolon()
	})
	p.popScope()

	d := p.finishDecl(id, ds.start, refs, elide)
	d.Name, d.NameSpan, d.TypeParams = name, nameSpan, typeParams
	return id
}

// parseSignatureRest — "<T>(params): Ret" для функций, методов и сигнатур.
func (p *Parser) parseSignatureRest() []string {
	var typeParams []string
	if p.at(token.Lt) {
		typeParams = p.parseTypeParams()
	}
	if p.at(token.LParen) {
		p.parseParams()
	} else {
		p.expect(token.LParen)
	}
	if p.eat(token.Colon) {
		p.parseType()
	}
	return typeParams
}

// parseBodyOrSemicolon — тело функции в .ts выкидывается из вывода.
func (p *Parser) parseBodyOrSemicolon() {
	if p.at(token.LBrace) {
		p.addElide(p.skipBalanced())
		return
	}
	p.parseSemicolon()
}

// parseVariables — "const a: A, b: B;": по декларации на каждый declarator.
func (p *Parser) parseVariables(ctx scopeCtx, ds declStart) []ast.DeclID {
	kw := p.advance() // const / let / var
	var ids []ast.DeclID
	for {
		t := p.peek()
		if t.Kind == token.LBrace || t.Kind == token.LBracket {
			// деструктуризация: имён для API нет
			p.skipBalanced()
			if p.eat(token.Colon) {
				p.parseType()
			}
			if p.at(token.Assign) {
				p.skipExpression()
			}
		} else {
			nameTok, ok := p.expect(token.Ident)
			if !ok {
				return ids
			}
			id := p.newDecl(ast.DeclVariable, ctx, ds, kw)
			var refs []ast.TypeRef
			var elide []source.Span
			p.withSinks(&refs, &elide, func() {
				if p.eat(token.Bang) {
					p.addElide(source.Span{File: p.src.ID, Start: p.lastEnd - 1, End: p.lastEnd})
				}
				if p.eat(token.Colon) {
					p.parseType()
				}
			})
			if p.at(token.Assign) {
				initStart := p.peek().Span.Start
				p.skipExpression()
				elide = append(elide, p.spanFrom(initStart))
			}
			// Span покрывает один declarator; ключевое слово печатается отдельно.
			d := p.finishDecl(id, nameTok.Span.Start, refs, elide)
			d.Name, d.NameSpan = nameTok.Text, nameTok.Span
			ids = append(ids, id)
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.parseSemicolon()
	return ids
}

func (p *Parser) parseTypeAlias(ctx scopeCtx, ds declStart) ast.DeclID {
	kw := p.advance() // type
	id := p.newDecl(ast.DeclTypeAlias, ctx, ds, kw)
	name, nameSpan := p.parseDeclName(ds)

	var refs []ast.TypeRef
	var typeParams []string
	p.pushScope()
	p.withSinks(&refs, nil, func() {
		if p.at(token.Lt) {
			typeParams = p.parseTypeParams()
		}
		if _, ok := p.expect(token.Assign); ok {
			p.parseType()
		}
		p.parseSemicolon()
	})
	p.popScope()

	d := p.finishDecl(id, ds.start, refs, nil)
	d.Name, d.NameSpan, d.TypeParams = name, nameSpan, typeParams
	return id
}

// parseNamespace — "namespace A.B { ... }" даёт вложенные декларации A и B.
func (p *Parser) parseNamespace(ctx scopeCtx, ds declStart) ast.DeclID {
	kw := p.advance() // namespace / module
	ctx.ambient = ctx.ambient || ds.mods.Has(ast.ModDeclare)

	outer := p.newDecl(ast.DeclNamespace, ctx, ds, kw)
	ids := []ast.DeclID{outer}
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		return ast.NoDeclID
	}
	names := []token.Token{nameTok}
	for p.at(token.Dot) {
		p.advance()
		seg, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		names = append(names, seg)
		innerCtx := ctx
		innerCtx.parent = ids[len(ids)-1]
		ids = append(ids, p.newDecl(ast.DeclNamespace, innerCtx, declStart{mods: ast.ModExport}, kw))
	}

	innermost := ids[len(ids)-1]
	bodyCtx := scopeCtx{parent: innermost, ambient: ctx.ambient, global: ctx.global}
	bodyStart := p.peek().Span.Start
	var body []ast.StmtID
	if _, ok := p.expect(token.LBrace); ok {
		body = p.parseStatements(bodyCtx, token.RBrace)
		p.expect(token.RBrace)
	}
	bodySpan := p.spanFrom(bodyStart)

	// внутренние сегменты начинаются со своего имени, иначе их span накрывает модификаторы внешнего
	for i := len(ids) - 1; i >= 0; i-- {
		start := ds.start
		if i > 0 {
			start = names[i].Span.Start
		}
		d := p.finishDecl(ids[i], start, nil, nil)
		d.Name, d.NameSpan = names[i].Text, names[i].Span
		d.BodySpan = bodySpan
		d.Chained = i > 0
		if i == len(ids)-1 {
			d.Body = body
			d.ExplicitExports = p.hasExplicitExports(body)
		} else {
			inner := p.arenas.Decls.Get(ids[i+1])
			d.Body = []ast.StmtID{p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtDecl, Span: inner.Span, Decl: ids[i+1]})}
			d.ExplicitExports = true
		}
	}
	return outer
}

func (p *Parser) hasExplicitExports(body []ast.StmtID) bool {
	for _, sid := range body {
		st := p.arenas.Stmts.Get(sid)
		switch st.Kind {
		case ast.StmtExport, ast.StmtExportAssign:
			return true
		case ast.StmtImportEquals:
			if p.arenas.Stmts.Import(st.Import).Exported {
				return true
			}
		case ast.StmtDecl:
			if p.arenas.Decls.Get(st.Decl).IsExported() {
				return true
			}
		}
	}
	return false
}
