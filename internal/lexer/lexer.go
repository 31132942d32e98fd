package lexer

import (
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
	prev   token.Kind     // последний значимый токен, нужен для различения '/' и regex
	prevTx string
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		prev:   token.Invalid,
	}
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.hold,
		}
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch):
		tok = lx.scanIdentOrKeyword()

	case ch >= utf8RuneSelf:
		// Возможный Unicode идентификатор → scanIdentOrKeyword() разберётся
		tok = lx.scanIdentOrKeyword()

	case ch == '#' && isIdentStartByte(lx.cursor.PeekAt(1)):
		tok = lx.scanPrivateName()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()

	case ch == '"' || ch == '\'':
		tok = lx.scanString(ch)

	case ch == '`':
		tok = lx.scanTemplate()

	case ch == '/' && lx.regexAllowed():
		tok = lx.scanRegex()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	lx.prev = tok.Kind
	lx.prevTx = tok.Text
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	t := lx.Next()
	lx.look = &t
	return t
}

// All lexes the whole file; the final token is EOF.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		t := lx.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

// regexAllowed: после значения ('x', ')', ']', '}', литерал) слэш — деление, иначе начало regex.
func (lx *Lexer) regexAllowed() bool {
	next := lx.cursor.PeekAt(1)
	if next == '/' || next == '*' {
		return false
	}
	switch lx.prev {
	case token.Ident, token.PrivateName, token.NumberLit, token.StringLit, token.TemplateLit,
		token.RParen, token.RBracket, token.RBrace, token.KwThis, token.KwSuper,
		token.KwTrue, token.KwFalse, token.KwNull:
		return false
	}
	return true
}

func (lx *Lexer) scanRegex() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '/'
	inClass := false
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
		switch {
		case b == '\\':
			lx.cursor.Bump()
		case b == '[':
			inClass = true
		case b == ']':
			inClass = false
		case b == '/' && !inClass:
			for isIdentContinueByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.Other, Span: sp, Text: lx.text(sp)}
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.TSUnterminatedRegex, sp, "Unterminated regular expression literal.")
	return token.Token{Kind: token.Other, Span: sp, Text: lx.text(sp)}
}
