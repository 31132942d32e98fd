package token

import (
	"strings"

	"apix/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a string, number, or template literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case StringLit, NumberLit, TemplateLit:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsIdentName reports whether the token may be used as a property or export name,
// which in declaration files includes reserved words.
func (t Token) IsIdentName() bool { return t.Kind == Ident || t.Kind.IsKeyword() }

// Is reports whether the token is an identifier spelled word (contextual keyword match).
func (t Token) Is(word string) bool { return t.Kind == Ident && t.Text == word }

// NewlineBefore reports whether a line break separates this token from the previous one.
func (t Token) NewlineBefore() bool {
	for _, tv := range t.Leading {
		switch tv.Kind {
		case TriviaNewline:
			return true
		case TriviaBlockComment, TriviaDocBlock:
			if strings.Contains(tv.Text, "\n") {
				return true
			}
		}
	}
	return false
}

// DocComment returns the last /** */ comment in the leading trivia.
func (t Token) DocComment() (Trivia, bool) {
	for i := len(t.Leading) - 1; i >= 0; i-- {
		if t.Leading[i].Kind == TriviaDocBlock {
			return t.Leading[i], true
		}
	}
	return Trivia{}, false
}

// DocComments returns every /** */ comment in the leading trivia, in source order.
func (t Token) DocComments() []Trivia {
	var out []Trivia
	for _, tv := range t.Leading {
		if tv.Kind == TriviaDocBlock {
			out = append(out, tv)
		}
	}
	return out
}
