package token

import "apix/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	// TriviaDocBlock is a /** ... */ comment.
	TriviaDocBlock
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
