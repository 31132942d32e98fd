package parser

import (
	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/token"
)

var classModifierWords = map[string]ast.Modifier{
	"public":    ast.ModPublic,
	"private":   ast.ModPrivate,
	"protected": ast.ModProtected,
	"static":    ast.ModStatic,
	"abstract":  ast.ModAbstract,
	"readonly":  ast.ModReadonly,
	"declare":   ast.ModDeclare,
	"override":  ast.ModOverride,
	"accessor":  ast.ModAccessor,
	"async":     ast.ModAsync,
}

// isMemberModifier: слово — модификатор, только если за ним идёт имя члена.
func (p *Parser) isMemberModifier(i int) (ast.Modifier, bool) {
	t := p.tokAt(i)
	if t.Kind != token.Ident {
		return 0, false
	}
	mod, ok := classModifierWords[t.Text]
	if !ok {
		return 0, false
	}
	next := p.tokAt(i + 1)
	if mod == ast.ModStatic && next.Kind == token.LBrace {
		return mod, true
	}
	return mod, isNameStart(next)
}

func (p *Parser) parseClassMembers(parent ast.DeclID, ctx scopeCtx) []ast.DeclID {
	memberCtx := scopeCtx{parent: parent, ambient: ctx.ambient, global: ctx.global}
	var out []ast.DeclID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.eat(token.Semicolon) {
			continue
		}
		before := p.pos
		if id := p.parseClassMember(memberCtx); id.IsValid() {
			out = append(out, id)
		}
		if p.pos == before {
			p.err(diag.TSDeclarationExpected, "Declaration or statement expected.")
			p.advance()
		}
	}
	return out
}

func (p *Parser) skipDecorators() {
	for p.at(token.At) {
		p.advance()
		for p.peek().IsIdentName() {
			p.advance()
			if !p.eat(token.Dot) {
				break
			}
		}
		if p.at(token.LParen) {
			p.skipBalanced()
		}
	}
}

func (p *Parser) parseClassMember(ctx scopeCtx) ast.DeclID {
	first := p.peek()
	ds := declStart{start: first.Span.Start, doc: docOf(first)}
	p.skipDecorators()
	for {
		mod, ok := p.isMemberModifier(p.pos)
		if !ok {
			break
		}
		ds.add(mod, p.advance().Span)
	}

	switch {
	case ds.mods.Has(ast.ModStatic) && p.at(token.LBrace):
		// static-блок инициализации
		p.skipBalanced()
		return ast.NoDeclID
	case p.isIndexSignature():
		return p.parseIndexSignature(ctx, ds)
	case p.atWord("constructor") && (p.peekN(1).Kind == token.LParen || p.peekN(1).Kind == token.Lt):
		kw := p.advance()
		return p.parseMethodLike(ast.DeclConstructor, ctx, ds, kw, "constructor", kw.Span)
	case (p.atWord("get") || p.atWord("set")) && isNameStart(p.peekN(1)) && p.peekN(1).Kind != token.Star:
		kw := p.advance()
		kind := ast.DeclGetAccessor
		if kw.Text == "set" {
			kind = ast.DeclSetAccessor
		}
		name, nameSpan, ok := p.parseMemberName(&ds)
		if !ok {
			return ast.NoDeclID
		}
		return p.parseMethodLike(kind, ctx, ds, kw, name, nameSpan)
	}

	p.eat(token.Star)
	nameStart := p.peek()
	name, nameSpan, ok := p.parseMemberName(&ds)
	if !ok {
		return ast.NoDeclID
	}
	if p.eat(token.Question) {
		ds.add(ast.ModOptional, source.Span{File: p.src.ID, Start: p.lastEnd - 1, End: p.lastEnd})
	} else {
		p.eat(token.Bang)
	}
	if p.at(token.LParen) || p.at(token.Lt) {
		return p.parseMethodLike(ast.DeclMethod, ctx, ds, nameStart, name, nameSpan)
	}
	return p.parseProperty(ctx, ds, name, nameSpan, true)
}

// parseMemberName собирает ссылки computed-имени в шапку декларации члена.
func (p *Parser) parseMemberName(ds *declStart) (name string, sp source.Span, ok bool) {
	p.withSinks(&ds.refs, nil, func() {
		name, sp, ok = p.parsePropertyName()
	})
	return name, sp, ok
}

// parsePropertyName — идентификатор, ключевое слово, строка, число, #private или [computed].
func (p *Parser) parsePropertyName() (string, source.Span, bool) {
	t := p.peek()
	switch {
	case t.IsIdentName(), t.Kind == token.NumberLit, t.Kind == token.PrivateName:
		p.advance()
		return t.Text, t.Span, true
	case t.Kind == token.StringLit:
		p.advance()
		return unquote(t.Text), t.Span, true
	case t.Kind == token.LBracket:
		p.advance()
		if p.peek().IsIdentName() {
			if ref, ok := p.parseEntityName(ast.RefExpr); ok {
				p.addRef(ref)
			}
		}
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			if p.at(token.LParen) || p.at(token.LBracket) || p.at(token.LBrace) {
				p.skipBalanced()
				continue
			}
			p.advance()
		}
		p.expect(token.RBracket)
		sp := p.spanFrom(t.Span.Start)
		return p.text(sp), sp, true
	}
	p.err(diag.TSIdentifierExpected, "Identifier expected.")
	return "", p.diagSpan(), false
}

func (p *Parser) text(sp source.Span) string {
	if int(sp.End) > len(p.src.Content) || sp.Start > sp.End {
		return ""
	}
	return string(p.src.Content[sp.Start:sp.End])
}

// isIndexSignature — "[key: string]: T" отличаем от computed-имени.
func (p *Parser) isIndexSignature() bool {
	if !p.at(token.LBracket) {
		return false
	}
	next := p.peekN(1)
	if !next.IsIdentName() {
		return false
	}
	after := p.peekN(2).Kind
	return after == token.Colon || after == token.Comma
}

func (p *Parser) parseIndexSignature(ctx scopeCtx, ds declStart) ast.DeclID {
	id := p.newDecl(ast.DeclIndexSignature, ctx, ds, token.Token{})
	var refs []ast.TypeRef
	p.withSinks(&refs, nil, func() {
		p.advance() // [
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			p.advance() // имя параметра
			if p.eat(token.Colon) {
				p.parseType()
			}
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expect(token.RBracket)
		p.eat(token.Question)
		if p.eat(token.Colon) {
			p.parseType()
		}
		p.parseMemberSeparator()
	})
	p.finishDecl(id, ds.start, refs, nil)
	return id
}

// parseMethodLike — методы, конструкторы и аксессоры; тела попадают в Elide.
func (p *Parser) parseMethodLike(kind ast.DeclKind, ctx scopeCtx, ds declStart, kw token.Token, name string, nameSpan source.Span) ast.DeclID {
	id := p.newDecl(kind, ctx, ds, kw)
	var refs []ast.TypeRef
	var elide []source.Span
	var typeParams []string
	p.pushScope()
	p.withSinks(&refs, &elide, func() {
		typeParams = p.parseSignatureRest()
		if p.at(token.LBrace) {
			p.addElide(p.skipBalanced())
		} else {
			p.parseMemberSeparator()
		}
	})
	p.popScope()
	d := p.finishDecl(id, ds.start, refs, elide)
	d.Name, d.NameSpan, d.TypeParams = name, nameSpan, typeParams
	return id
}

func (p *Parser) parseProperty(ctx scopeCtx, ds declStart, name string, nameSpan source.Span, class bool) ast.DeclID {
	nameTok := token.Token{Span: nameSpan}
	id := p.newDecl(ast.DeclProperty, ctx, ds, nameTok)
	var refs []ast.TypeRef
	var elide []source.Span
	p.withSinks(&refs, &elide, func() {
		if p.eat(token.Colon) {
			p.parseType()
		}
		if class && p.at(token.Assign) {
			initStart := p.peek().Span.Start
			p.skipExpression()
			p.addElide(p.spanFrom(initStart))
		}
		p.parseMemberSeparator()
	})
	d := p.finishDecl(id, ds.start, refs, elide)
	d.Name, d.NameSpan = name, nameSpan
	return id
}

// parseMemberSeparator принимает ';', ',' или перевод строки между членами.
func (p *Parser) parseMemberSeparator() {
	if p.eat(token.Semicolon) || p.eat(token.Comma) {
		return
	}
	t := p.peek()
	if t.Kind == token.RBrace || t.Kind == token.EOF || t.NewlineBefore() {
		return
	}
	p.err(diag.TSTokenExpected, "';' expected.")
}

// parseTypeMembers разбирает "{ ... }" интерфейса или объектного литерального типа.
// При collect=false члены не становятся декларациями, а ссылки идут во внешний приёмник.
func (p *Parser) parseTypeMembers(collect bool, parent ast.DeclID, ctx scopeCtx) []ast.DeclID {
	p.advance() // {
	memberCtx := scopeCtx{parent: parent, ambient: true, global: ctx.global}
	var out []ast.DeclID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		if id := p.parseTypeMember(collect, memberCtx); id.IsValid() {
			out = append(out, id)
		}
		if p.pos == before {
			p.err(diag.TSTokenExpected, "'}' expected.")
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return out
}

func (p *Parser) parseTypeMember(collect bool, ctx scopeCtx) ast.DeclID {
	first := p.peek()
	ds := declStart{start: first.Span.Start, doc: docOf(first)}
	if p.eat(token.Semicolon) || p.eat(token.Comma) {
		return ast.NoDeclID
	}
	if p.atWord("readonly") && isNameStart(p.peekN(1)) {
		ds.add(ast.ModReadonly, p.advance().Span)
	}

	if !collect {
		p.skipTypeMember()
		return ast.NoDeclID
	}

	switch {
	case p.at(token.LParen) || p.at(token.Lt):
		return p.parseMethodLike(ast.DeclCallSignature, ctx, ds, token.Token{}, "", source.Span{})
	case p.at(token.KwNew) && (p.peekN(1).Kind == token.LParen || p.peekN(1).Kind == token.Lt):
		kw := p.advance()
		return p.parseMethodLike(ast.DeclConstructSignature, ctx, ds, kw, "new", kw.Span)
	case p.isIndexSignature():
		return p.parseIndexSignature(ctx, ds)
	case (p.atWord("get") || p.atWord("set")) && isNameStart(p.peekN(1)):
		kw := p.advance()
		kind := ast.DeclGetAccessor
		if kw.Text == "set" {
			kind = ast.DeclSetAccessor
		}
		name, nameSpan, ok := p.parseMemberName(&ds)
		if !ok {
			return ast.NoDeclID
		}
		return p.parseMethodLike(kind, ctx, ds, kw, name, nameSpan)
	}

	nameStart := p.peek()
	name, nameSpan, ok := p.parseMemberName(&ds)
	if !ok {
		return ast.NoDeclID
	}
	if p.eat(token.Question) {
		ds.add(ast.ModOptional, source.Span{File: p.src.ID, Start: p.lastEnd - 1, End: p.lastEnd})
	}
	if p.at(token.LParen) || p.at(token.Lt) {
		return p.parseMethodLike(ast.DeclMethod, ctx, ds, nameStart, name, nameSpan)
	}
	return p.parseProperty(ctx, ds, name, nameSpan, false)
}

// skipTypeMember разбирает член литерального типа ради ссылок, не создавая декларацию.
func (p *Parser) skipTypeMember() {
	switch {
	case p.at(token.LParen) || p.at(token.Lt):
		p.pushScope()
		p.parseSignatureRest()
		p.popScope()
	case p.at(token.KwNew) && (p.peekN(1).Kind == token.LParen || p.peekN(1).Kind == token.Lt):
		p.advance()
		p.pushScope()
		p.parseSignatureRest()
		p.popScope()
	case p.isIndexSignature():
		p.advance()
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			p.advance()
			if p.eat(token.Colon) {
				p.parseType()
			}
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expect(token.RBracket)
		p.eat(token.Question)
		if p.eat(token.Colon) {
			p.parseType()
		}
	default:
		if (p.atWord("get") || p.atWord("set")) && isNameStart(p.peekN(1)) {
			p.advance()
		}
		if _, _, ok := p.parsePropertyName(); !ok {
			return
		}
		p.eat(token.Question)
		if p.at(token.LParen) || p.at(token.Lt) {
			p.pushScope()
			p.parseSignatureRest()
			p.popScope()
		} else if p.eat(token.Colon) {
			p.parseType()
		}
	}
	p.parseMemberSeparator()
}

// parseParams — "(a: A, b?: B, ...rest: C[])". Значения по умолчанию выкидываются.
func (p *Parser) parseParams() {
	p.advance() // (
	for !p.at(token.RParen) && !p.at(token.EOF) {
		p.skipDecorators()
		for {
			if _, ok := p.isMemberModifier(p.pos); !ok {
				break
			}
			p.advance()
		}
		p.eat(token.DotDotDot)
		switch {
		case p.at(token.LBrace) || p.at(token.LBracket):
			p.skipBalanced()
		case p.peek().IsIdentName():
			p.advance()
		default:
			p.err(diag.TSIdentifierExpected, "Identifier expected.")
			p.skipExpression()
		}
		p.eat(token.Question)
		if p.eat(token.Colon) {
			p.parseType()
		}
		if p.at(token.Assign) {
			start := p.peek().Span.Start
			p.skipExpression()
			p.addElide(p.spanFrom(start))
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
}
