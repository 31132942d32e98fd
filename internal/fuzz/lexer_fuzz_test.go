package fuzztests

import (
	"testing"

	"apix/internal/diag"
	"apix/internal/lexer"
	"apix/internal/source"
	"apix/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addDeclarationSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.d.ts", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

		// каждый токен должен продвигать позицию, иначе лексер зациклится
		var last uint32
		for i := 0; ; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
			if tok.Span.End > uint32(len(input)) || tok.Span.Start > tok.Span.End {
				t.Fatalf("token %d span %v outside input of %d bytes", i, tok.Span, len(input))
			}
			if tok.Span.Start < last {
				t.Fatalf("token %d span %v goes backwards from %d", i, tok.Span, last)
			}
			last = tok.Span.End
			if i > len(input)+1 {
				t.Fatalf("lexer produced more tokens than input bytes")
			}
		}
	})
}
