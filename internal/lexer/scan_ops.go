package lexer

import (
	"apix/internal/diag"
	"apix/internal/token"
)

// операторы, которые парсер деклараций не различает; жадно, длинные сначала
var otherOps = []string{
	"===", "!==", "**=", "<<=", "&&=", "||=", "??=",
	"==", "!=", "<=", "&&", "||", "??", "++", "--", "**", "<<",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Peek()

	// '>' всегда одиночный: закрывает списки типовых параметров
	if b != '>' {
		for _, op := range otherOps {
			if lx.hasPrefix(op) {
				lx.cursor.Off += uint32(len(op))
				return lx.punct(token.Other, start)
			}
		}
	}

	lx.cursor.Bump()
	switch b {
	case '{':
		return lx.punct(token.LBrace, start)
	case '}':
		return lx.punct(token.RBrace, start)
	case '(':
		return lx.punct(token.LParen, start)
	case ')':
		return lx.punct(token.RParen, start)
	case '[':
		return lx.punct(token.LBracket, start)
	case ']':
		return lx.punct(token.RBracket, start)
	case ';':
		return lx.punct(token.Semicolon, start)
	case ',':
		return lx.punct(token.Comma, start)
	case '.':
		if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) == '.' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return lx.punct(token.DotDotDot, start)
		}
		return lx.punct(token.Dot, start)
	case '<':
		return lx.punct(token.Lt, start)
	case '>':
		return lx.punct(token.Gt, start)
	case '=':
		if lx.cursor.Eat('>') {
			return lx.punct(token.Arrow, start)
		}
		return lx.punct(token.Assign, start)
	case ':':
		return lx.punct(token.Colon, start)
	case '?':
		if lx.cursor.Peek() == '.' && !isDec(lx.cursor.PeekAt(1)) {
			lx.cursor.Bump()
			return lx.punct(token.QuestionDot, start)
		}
		return lx.punct(token.Question, start)
	case '|':
		return lx.punct(token.Pipe, start)
	case '&':
		return lx.punct(token.Amp, start)
	case '*':
		return lx.punct(token.Star, start)
	case '@':
		return lx.punct(token.At, start)
	case '!':
		return lx.punct(token.Bang, start)
	case '+':
		return lx.punct(token.Plus, start)
	case '-':
		return lx.punct(token.Minus, start)
	case '/', '%', '^', '~':
		return lx.punct(token.Other, start)
	}

	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.TSInvalidCharacter, sp, "Invalid character.")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) punct(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) hasPrefix(op string) bool {
	for i := 0; i < len(op); i++ {
		if lx.cursor.PeekAt(uint32(i)) != op[i] {
			return false
		}
	}
	return true
}
