package parser

import (
	"strings"

	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/token"
)

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) tokAt(i int) token.Token {
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) peekN(n int) token.Token {
	return p.tokAt(p.pos + n)
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atWord(w string) bool {
	return p.peek().Is(w)
}

// advance — съедает следующий токен и обновляет lastEnd
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
		p.lastEnd = tok.Span.End
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect — ожидаем конкретный токен. Если нет — репортим TS1005.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(diag.TSTokenExpected, "'"+k.String()+"' expected.")
	return token.Token{Kind: token.Invalid, Span: p.diagSpan()}, false
}

func (p *Parser) expectWord(w string) bool {
	if p.atWord(w) {
		p.advance()
		return true
	}
	p.err(diag.TSTokenExpected, "'"+w+"' expected.")
	return false
}

// parseSemicolon принимает ';' или ASI: перевод строки, '}' или EOF.
func (p *Parser) parseSemicolon() bool {
	if p.eat(token.Semicolon) {
		return true
	}
	t := p.peek()
	if t.Kind == token.RBrace || t.Kind == token.EOF || t.NewlineBefore() {
		return true
	}
	p.err(diag.TSTokenExpected, "';' expected.")
	return false
}

// diagSpan — лучший span для диагностики: текущий токен, а на EOF — позиция после последнего.
func (p *Parser) diagSpan() source.Span {
	t := p.peek()
	if t.Kind == token.EOF {
		return source.Span{File: p.src.ID, Start: p.lastEnd, End: p.lastEnd}
	}
	return t.Span
}

func (p *Parser) err(id diag.MessageID, msg string) {
	p.errAt(p.diagSpan(), id, msg)
}

func (p *Parser) errAt(sp source.Span, id diag.MessageID, msg string) {
	enough := p.opts.Enough()
	p.opts.CurrentErrors++
	if p.opts.Reporter == nil || enough {
		return
	}
	diag.Report(p.opts.Reporter, id, sp, msg).Emit()
}

func (p *Parser) spanFrom(start uint32) source.Span {
	end := p.lastEnd
	if end < start {
		end = start
	}
	return source.Span{File: p.src.ID, Start: start, End: end}
}

// matchingClose возвращает индекс парной закрывающей скобки для открывающей в позиции i.
func (p *Parser) matchingClose(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		switch p.toks[j].Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 {
				return j
			}
		case token.EOF:
			return j
		}
	}
	return len(p.toks) - 1
}

// skipBalanced съедает группу (), [] или {} целиком. Возвращает её span.
func (p *Parser) skipBalanced() source.Span {
	start := p.peek().Span.Start
	end := p.matchingClose(p.pos)
	for p.pos < end {
		p.advance()
	}
	if !p.eat(token.RParen) && !p.eat(token.RBracket) && !p.eat(token.RBrace) {
		p.err(diag.TSTokenExpected, "'}' expected.")
	}
	return p.spanFrom(start)
}

// skipExpression пропускает выражение до разделителя на нулевой глубине.
func (p *Parser) skipExpression() {
	for {
		t := p.peek()
		switch t.Kind {
		case token.EOF, token.Comma, token.Semicolon, token.RParen, token.RBracket, token.RBrace:
			return
		case token.LParen, token.LBracket, token.LBrace:
			p.skipBalanced()
			continue
		}
		if t.NewlineBefore() && p.startsStatement(p.pos) {
			return
		}
		p.advance()
	}
}

func (p *Parser) addRef(r ast.TypeRef) {
	if p.refs == nil {
		return
	}
	if r.Kind == ast.RefType && p.isTypeParam(r.Head()) {
		return
	}
	*p.refs = append(*p.refs, r)
}

func (p *Parser) addElide(sp source.Span) {
	if p.elide != nil && !sp.Empty() {
		*p.elide = append(*p.elide, sp)
	}
}

func (p *Parser) pushScope() { p.scopes = append(p.scopes, nil) }
func (p *Parser) popScope()  { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *Parser) declareTypeParam(name string) {
	if len(p.scopes) == 0 {
		p.pushScope()
	}
	top := len(p.scopes) - 1
	p.scopes[top] = append(p.scopes[top], name)
}

func (p *Parser) isTypeParam(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		for _, n := range p.scopes[i] {
			if n == name {
				return true
			}
		}
	}
	return false
}

// withSinks перенаправляет ссылки и elide-спаны в новые срезы на время fn.
func (p *Parser) withSinks(refs *[]ast.TypeRef, elide *[]source.Span, fn func()) {
	savedRefs, savedElide := p.refs, p.elide
	p.refs, p.elide = refs, elide
	fn()
	p.refs, p.elide = savedRefs, savedElide
}

func docOf(t token.Token) ast.Doc {
	if tv, ok := t.DocComment(); ok {
		return ast.Doc{Span: tv.Span, Text: tv.Text}
	}
	return ast.Doc{}
}

// unquote снимает кавычки со строкового литерала и разворачивает простые escape-последовательности.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	inner := text[1 : len(text)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i+1 >= len(inner) {
			b.WriteByte(c)
			continue
		}
		i++
		switch inner[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(inner[i])
		}
	}
	return b.String()
}

// isNameStart: может ли токен начинать имя члена (после модификатора).
func isNameStart(t token.Token) bool {
	switch t.Kind {
	case token.StringLit, token.NumberLit, token.LBracket, token.PrivateName, token.Star:
		return true
	}
	return t.IsIdentName()
}
