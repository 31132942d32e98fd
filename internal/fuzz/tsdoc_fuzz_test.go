package fuzztests

import (
	"testing"

	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/tsdoc"
)

func FuzzTSDocParse(f *testing.F) {
	for _, s := range docSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, text string) {
		if len(text) > maxFuzzInput {
			text = text[:maxFuzzInput]
		}
		span := source.Span{File: 1, Start: 0, End: uint32(len(text))}
		bag := diag.NewBag(64)
		c := tsdoc.Parse(text, span, tsdoc.Options{Reporter: diag.BagReporter{Bag: bag}})
		if c == nil {
			t.Fatalf("nil comment for %q", text)
		}
	})
}

func FuzzTSDocReference(f *testing.F) {
	for _, s := range []string{"Widget", "pkg#Ns.Member", "@scope/pkg/sub#A.(b:instance)", "./m#X", "#", ""} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, text string) {
		ref, err := tsdoc.ParseReference(text)
		if err != nil || ref.String() == "" {
			return
		}
		// повторный разбор канонической формы должен давать ту же строку
		again, err := tsdoc.ParseReference(ref.String())
		if err != nil {
			t.Fatalf("reparse of %q (%q) failed: %v", ref.String(), text, err)
		}
		if again.String() != ref.String() {
			t.Fatalf("unstable reference: %q -> %q -> %q", text, ref.String(), again.String())
		}
	})
}
