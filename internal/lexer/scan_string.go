package lexer

import (
	"apix/internal/diag"
	"apix/internal/token"
)

func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // открывающая кавычка

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case quote:
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		case '\\':
			lx.cursor.Bump()
			if lx.cursor.Peek() == '\n' {
				lx.cursor.Bump() // продолжение строки
				continue
			}
			lx.bumpRune()
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.TSUnterminatedString, sp, "Unterminated string literal.")
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		default:
			lx.bumpRune()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.TSUnterminatedString, sp, "Unterminated string literal.")
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
}

// scanTemplate захватывает весь `...${...}...` одним токеном, включая вложенные подстановки.
func (lx *Lexer) scanTemplate() token.Token {
	start := lx.cursor.Mark()
	if !lx.skipTemplateBody() {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.TSUnterminatedTemplate, sp, "Unterminated template literal.")
		return token.Token{Kind: token.TemplateLit, Span: sp, Text: lx.text(sp)}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.TemplateLit, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) skipTemplateBody() bool {
	lx.cursor.Bump() // '`'
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch b {
		case '\\':
			lx.cursor.Bump()
		case '`':
			return true
		case '$':
			if lx.cursor.Eat('{') && !lx.skipSubstitution() {
				return false
			}
		}
	}
	return false
}

// skipSubstitution пропускает тело ${...} до парной '}'.
func (lx *Lexer) skipSubstitution() bool {
	depth := 1
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); b {
		case '{':
			depth++
			lx.cursor.Bump()
		case '}':
			depth--
			lx.cursor.Bump()
			if depth == 0 {
				return true
			}
		case '"', '\'':
			save := lx.opts.Reporter
			lx.opts.Reporter = nil
			lx.scanString(b)
			lx.opts.Reporter = save
		case '`':
			if !lx.skipTemplateBody() {
				return false
			}
		default:
			lx.cursor.Bump()
		}
	}
	return false
}
