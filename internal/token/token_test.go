package token_test

import (
	"testing"

	"apix/internal/source"
	"apix/internal/token"
)

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want token.Kind
		ok   bool
	}{
		{"export", token.KwExport, true},
		{"interface", token.KwInterface, true},
		{"typeof", token.KwTypeof, true},
		{"declare", token.Invalid, false},
		{"namespace", token.Invalid, false},
		{"type", token.Invalid, false},
	}
	for _, tt := range tests {
		got, ok := token.LookupKeyword(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("LookupKeyword(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := token.KwClass.String(); got != "class" {
		t.Fatalf("KwClass.String() = %q", got)
	}
	if got := token.Arrow.String(); got != "=>" {
		t.Fatalf("Arrow.String() = %q", got)
	}
	if !token.KwVoid.IsKeyword() || token.Ident.IsKeyword() || token.LBrace.IsKeyword() {
		t.Fatalf("IsKeyword classification is wrong")
	}
}

func TestNewlineBefore(t *testing.T) {
	plain := token.Token{Kind: token.Ident, Text: "x"}
	if plain.NewlineBefore() {
		t.Fatalf("token without trivia must not report a newline")
	}
	nl := token.Token{Kind: token.Ident, Text: "x", Leading: []token.Trivia{{Kind: token.TriviaNewline, Text: "\n"}}}
	if !nl.NewlineBefore() {
		t.Fatalf("expected newline")
	}
	block := token.Token{Kind: token.Ident, Text: "x", Leading: []token.Trivia{{Kind: token.TriviaBlockComment, Text: "/*\n*/"}}}
	if !block.NewlineBefore() {
		t.Fatalf("multi-line block comment separates lines")
	}
}

func TestDocCommentPicksLast(t *testing.T) {
	tok := token.Token{
		Kind: token.KwExport,
		Span: source.Span{Start: 40, End: 46},
		Text: "export",
		Leading: []token.Trivia{
			{Kind: token.TriviaDocBlock, Text: "/** first */"},
			{Kind: token.TriviaNewline, Text: "\n"},
			{Kind: token.TriviaLineComment, Text: "// note"},
			{Kind: token.TriviaDocBlock, Text: "/** second */"},
		},
	}
	doc, ok := tok.DocComment()
	if !ok || doc.Text != "/** second */" {
		t.Fatalf("DocComment = %q,%v", doc.Text, ok)
	}
	if n := len(tok.DocComments()); n != 2 {
		t.Fatalf("DocComments len = %d", n)
	}
	if !tok.IsIdentName() {
		t.Fatalf("keywords are valid identifier names")
	}
}
