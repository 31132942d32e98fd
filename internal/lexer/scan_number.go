package lexer

import "apix/internal/token"

// scanNumber принимает 123, 1_000, 1.5e-3, .5, 0x1F, 0b1010, 0o17 и bigint-суффикс n.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X', 'b', 'B', 'o', 'O':
			lx.cursor.Bump()
			lx.cursor.Bump()
			for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			lx.cursor.Eat('n')
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.NumberLit, Span: sp, Text: lx.text(sp)}
		}
	}

	lx.digits()
	if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' {
		lx.cursor.Bump()
		lx.digits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			lx.cursor.Bump()
			if next == '+' || next == '-' {
				lx.cursor.Bump()
			}
			lx.digits()
		}
	}
	lx.cursor.Eat('n')

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.NumberLit, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) digits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}
