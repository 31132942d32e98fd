package parser

import (
	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/token"
)

// ключевые слова-примитивы не дают ссылок
var primitiveTypes = map[string]bool{
	"any": true, "unknown": true, "never": true, "string": true, "number": true,
	"boolean": true, "bigint": true, "symbol": true, "object": true,
	"undefined": true, "intrinsic": true,
}

// parseType разбирает тип целиком; ссылки на имена уходят в текущий приёмник.
func (p *Parser) parseType() {
	if p.isStartOfFunctionType() {
		p.parseFunctionType()
		return
	}
	p.parseUnionType()
	// условный тип: A extends B ? C : D
	if p.at(token.KwExtends) && !p.peek().NewlineBefore() {
		p.advance()
		p.pushScope() // infer X объявляет имя для ветки true
		p.parseUnionType()
		if p.eat(token.Question) {
			p.parseType()
			p.popScope()
			p.expect(token.Colon)
			p.parseType()
			return
		}
		p.popScope()
	}
}

// isStartOfFunctionType: "<T>(...) =>", "(...) =>", "new (...) =>", "abstract new (...) =>".
func (p *Parser) isStartOfFunctionType() bool {
	i := p.pos
	if p.tokAt(i).Is("abstract") && p.tokAt(i+1).Kind == token.KwNew {
		return true
	}
	if p.tokAt(i).Kind == token.KwNew {
		return true
	}
	if p.tokAt(i).Kind == token.Lt {
		return true
	}
	if p.tokAt(i).Kind != token.LParen {
		return false
	}
	end := p.matchingClose(i)
	return p.tokAt(end+1).Kind == token.Arrow
}

func (p *Parser) parseFunctionType() {
	if p.atWord("abstract") {
		p.advance()
	}
	p.eat(token.KwNew)
	p.pushScope()
	if p.at(token.Lt) {
		p.parseTypeParams()
	}
	if p.at(token.LParen) {
		p.parseParams()
	} else {
		p.expect(token.LParen)
	}
	p.expect(token.Arrow)
	p.parseType()
	p.popScope()
}

func (p *Parser) parseUnionType() {
	p.eat(token.Pipe) // ведущий '|'
	p.parseIntersectionType()
	for p.eat(token.Pipe) {
		p.parseIntersectionType()
	}
}

func (p *Parser) parseIntersectionType() {
	p.eat(token.Amp)
	p.parseTypeOperator()
	for p.eat(token.Amp) {
		p.parseTypeOperator()
	}
}

func (p *Parser) parseTypeOperator() {
	t := p.peek()
	switch {
	case (t.Is("keyof") || t.Is("unique") || t.Is("readonly")) && p.startsType(p.pos+1):
		p.advance()
		p.parseTypeOperator()
		return
	case t.Is("infer") && p.peekN(1).Kind == token.Ident:
		p.advance()
		name := p.advance()
		p.declareTypeParam(name.Text)
		// "infer U extends C" — constraint только если дальше не идёт условный тип
		if p.at(token.KwExtends) {
			save := p.pos
			p.advance()
			p.parseTypeOperator()
			if p.at(token.Question) {
				p.pos = save
			}
		}
		return
	}
	if p.isStartOfFunctionType() {
		p.parseFunctionType()
		return
	}
	p.parsePostfixType()
}

// startsType — может ли токен в позиции i начинать тип.
func (p *Parser) startsType(i int) bool {
	t := p.tokAt(i)
	switch t.Kind {
	case token.Ident, token.StringLit, token.NumberLit, token.TemplateLit, token.LBrace, token.LBracket,
		token.LParen, token.Lt, token.Minus, token.KwThis, token.KwVoid, token.KwNull, token.KwTrue,
		token.KwFalse, token.KwTypeof, token.KwImport, token.KwNew:
		return true
	}
	return false
}

func (p *Parser) parsePostfixType() {
	p.parsePrimaryType()
	for !p.peek().NewlineBefore() && p.at(token.LBracket) {
		p.advance()
		if !p.at(token.RBracket) {
			p.parseType() // индексный доступ T[K]
		}
		p.expect(token.RBracket)
	}
}

func (p *Parser) parsePrimaryType() {
	t := p.peek()
	switch t.Kind {
	case token.Ident:
		if primitiveTypes[t.Text] && p.peekN(1).Kind != token.Dot {
			p.advance()
			return
		}
		if t.Is("asserts") && p.peekN(1).IsIdentName() && !p.peekN(1).NewlineBefore() {
			p.advance()
			p.advance()
			if p.atWord("is") {
				p.advance()
				p.parseType()
			}
			return
		}
		if p.peekN(1).Is("is") && !p.peekN(1).NewlineBefore() {
			// предикат "x is T"
			p.advance()
			p.advance()
			p.parseType()
			return
		}
		p.parseTypeReference(ast.RefType)
	case token.KwThis:
		p.advance()
		if p.atWord("is") {
			p.advance()
			p.parseType()
		}
	case token.KwVoid, token.KwNull, token.KwTrue, token.KwFalse,
		token.StringLit, token.NumberLit, token.TemplateLit:
		p.advance()
	case token.Minus:
		p.advance()
		p.expect(token.NumberLit)
	case token.KwTypeof:
		p.advance()
		if p.at(token.KwImport) {
			p.parseImportType()
			return
		}
		if ref, ok := p.parseEntityName(ast.RefTypeof); ok {
			p.addRef(ref)
		}
		if p.at(token.Lt) && !p.peek().NewlineBefore() {
			p.parseTypeArgs()
		}
	case token.KwImport:
		p.parseImportType()
	case token.LBrace:
		if p.isMappedType() {
			p.parseMappedType()
			return
		}
		p.parseTypeMembers(false, ast.NoDeclID, scopeCtx{})
	case token.LBracket:
		p.parseTupleType()
	case token.LParen:
		p.advance()
		p.parseType()
		p.expect(token.RParen)
	default:
		if t.Kind.IsKeyword() && p.peekN(1).Kind == token.Dot {
			p.parseTypeReference(ast.RefType)
			return
		}
		p.err(diag.TSTypeExpected, "Type expected.")
	}
}

// parseImportType — import("m").A.B<T>
func (p *Parser) parseImportType() {
	start := p.advance().Span.Start // import
	p.expect(token.LParen)
	modTok, _ := p.expect(token.StringLit)
	if p.at(token.Comma) {
		p.advance()
		p.skipBalanced()
	}
	p.expect(token.RParen)
	head := p.spanFrom(start)
	ref := ast.TypeRef{Kind: ast.RefImportType, Module: unquote(modTok.Text), HeadSpan: head}
	for p.at(token.Dot) && p.peekN(1).IsIdentName() {
		p.advance()
		ref.Parts = append(ref.Parts, p.advance().Text)
	}
	ref.Span = p.spanFrom(start)
	p.addRef(ref)
	if p.at(token.Lt) && !p.peek().NewlineBefore() {
		p.parseTypeArgs()
	}
}

// isMappedType — "{ [K in T]: ... }" с необязательными readonly / +readonly / -readonly.
func (p *Parser) isMappedType() bool {
	i := p.pos + 1
	if t := p.tokAt(i); t.Kind == token.Plus || t.Kind == token.Minus {
		i++
	}
	if p.tokAt(i).Is("readonly") {
		i++
	}
	return p.tokAt(i).Kind == token.LBracket && p.tokAt(i+1).Kind == token.Ident && p.tokAt(i+2).Kind == token.KwIn
}

func (p *Parser) parseMappedType() {
	p.advance() // {
	if p.at(token.Plus) || p.at(token.Minus) {
		p.advance()
	}
	if p.atWord("readonly") {
		p.advance()
	}
	p.advance() // [
	name := p.advance()
	p.advance() // in
	p.pushScope()
	p.declareTypeParam(name.Text)
	p.parseType()
	if p.atWord("as") {
		p.advance()
		p.parseType()
	}
	p.expect(token.RBracket)
	if p.at(token.Plus) || p.at(token.Minus) {
		p.advance()
	}
	p.eat(token.Question)
	if p.eat(token.Colon) {
		p.parseType()
	}
	p.eat(token.Semicolon)
	p.popScope()
	p.expect(token.RBrace)
}

// parseTupleType — [A, B?, ...C[]] и именованные элементы [x: A, y?: B].
func (p *Parser) parseTupleType() {
	p.advance() // [
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		p.eat(token.DotDotDot)
		if p.peek().IsIdentName() && (p.peekN(1).Kind == token.Colon ||
			(p.peekN(1).Kind == token.Question && p.peekN(2).Kind == token.Colon)) {
			p.advance()
			p.eat(token.Question)
			p.advance() // :
		}
		p.parseType()
		p.eat(token.Question)
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBracket)
}

// parseTypeReference — A.B.C<T>; ссылка регистрируется до аргументов.
func (p *Parser) parseTypeReference(kind ast.RefKind) {
	ref, ok := p.parseEntityName(kind)
	if !ok {
		return
	}
	p.addRef(ref)
	if p.at(token.Lt) && !p.peek().NewlineBefore() {
		p.parseTypeArgs()
	}
}

// parseEntityName читает квалифицированное имя A.B.C.
func (p *Parser) parseEntityName(kind ast.RefKind) (ast.TypeRef, bool) {
	first := p.peek()
	if !first.IsIdentName() {
		p.err(diag.TSIdentifierExpected, "Identifier expected.")
		return ast.TypeRef{}, false
	}
	p.advance()
	ref := ast.TypeRef{Kind: kind, Parts: []string{first.Text}, HeadSpan: first.Span}
	for p.at(token.Dot) && p.peekN(1).IsIdentName() {
		p.advance()
		ref.Parts = append(ref.Parts, p.advance().Text)
	}
	ref.Span = p.spanFrom(first.Span.Start)
	return ref, true
}

func (p *Parser) parseTypeArgs() {
	p.advance() // <
	for !p.at(token.Gt) && !p.at(token.EOF) {
		p.parseType()
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt)
}
