package tsdoc_test

import (
	"testing"

	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/tsdoc"
)

func parse(t *testing.T, text string) (*tsdoc.Comment, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(16)
	sp := source.Span{File: 1, Start: 10, End: 10 + uint32(len(text))}
	c := tsdoc.Parse(text, sp, tsdoc.Options{Reporter: diag.BagReporter{Bag: bag}})
	return c, bag
}

func hasID(bag *diag.Bag, id diag.MessageID) bool {
	for _, got := range bag.IDs() {
		if got == id {
			return true
		}
	}
	return false
}

func TestSectionsAndModifiers(t *testing.T) {
	c, bag := parse(t, `/**
 * Adds two numbers.
 *
 * @remarks
 * Uses {@link Calculator.add | the calculator}.
 *
 * @param a - first operand
 * @param b - second operand
 * @typeParam T - the numeric type
 * @returns the sum
 * @example
 * add(1, 2)
 * @beta @sealed
 */`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.IDs())
	}
	if c.Summary != "Adds two numbers." {
		t.Fatalf("summary = %q", c.Summary)
	}
	if c.Remarks != "Uses {@link Calculator.add | the calculator}." {
		t.Fatalf("remarks = %q", c.Remarks)
	}
	if len(c.Params) != 2 || c.Params[1].Name != "b" || c.Params[1].Content != "second operand" {
		t.Fatalf("params = %+v", c.Params)
	}
	if len(c.TypeParams) != 1 || c.TypeParams[0].Name != "T" {
		t.Fatalf("type params = %+v", c.TypeParams)
	}
	if c.Returns != "the sum" {
		t.Fatalf("returns = %q", c.Returns)
	}
	if len(c.Blocks) != 1 || c.Blocks[0].Tag != tsdoc.TagExample || c.Blocks[0].Content != "add(1, 2)" {
		t.Fatalf("blocks = %+v", c.Blocks)
	}
	if !c.HasModifier(tsdoc.TagSealed) || len(c.ReleaseTags()) != 1 || c.ReleaseTags()[0].Name != tsdoc.TagBeta {
		t.Fatalf("modifiers = %+v", c.Modifiers)
	}
	if len(c.Links) != 1 || c.Links[0].Ref.String() != "Calculator.add" || c.Links[0].Text != "the calculator" {
		t.Fatalf("links = %+v", c.Links)
	}
}

func TestModifierSpanPointsAtTag(t *testing.T) {
	text := "/** @public */"
	c, _ := parse(t, text)
	tags := c.ReleaseTags()
	if len(tags) != 1 {
		t.Fatalf("release tags = %+v", tags)
	}
	if tags[0].Span.Start != 10+4 || tags[0].Span.End != 10+11 {
		t.Fatalf("tag span = %v", tags[0].Span)
	}
}

func TestInheritDoc(t *testing.T) {
	c, bag := parse(t, "/** {@inheritDoc my-pkg#Base.method} */")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.IDs())
	}
	if c.InheritDoc == nil || !c.InheritDoc.Valid {
		t.Fatalf("inheritDoc = %+v", c.InheritDoc)
	}
	ref := c.InheritDoc.Ref
	if ref.Package != "my-pkg" || len(ref.Members) != 2 || ref.Members[1] != "method" {
		t.Fatalf("reference = %+v", ref)
	}
	if c.Summary != "" {
		t.Fatalf("inheritDoc must not leave text in summary: %q", c.Summary)
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want diag.MessageID
	}{
		{"undefined tag", "/** @frobnicate */", diag.TSDocUndefinedTag},
		{"missing brace", "/** see {@link Foo */", diag.TSDocInlineTagMissingBrace},
		{"param without hyphen", "/** @param x the value */", diag.TSDocParamTagMissingHyphen},
		{"param invalid name", "/** @param 1x - nope */", diag.TSDocParamTagInvalidName},
		{"deprecated without message", "/** @deprecated */", diag.TSDocMissingDeprecationMessage},
		{"malformed reference", "/** {@link Foo.1bar} */", diag.TSDocMalformedReference},
		{"extra inheritDoc", "/** {@inheritDoc A} {@inheritDoc B} */", diag.TSDocExtraInheritDocTag},
		{"inheritDoc with summary", "/** Text. {@inheritDoc A} */", diag.TSDocInheritDocIncompatibleText},
		{"unclosed", "/** text", diag.TSDocMissingClosingDelimiter},
		{"inline used as block", "/** @link Foo */", diag.TSDocMalformedInlineTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := parse(t, tt.text)
			if !hasID(bag, tt.want) {
				t.Fatalf("diagnostics %v do not contain %s", bag.IDs(), tt.want)
			}
		})
	}
}

func TestCodeAndEscapesAreNotTags(t *testing.T) {
	c, bag := parse(t, "/**\n * Use `@foo` or \\@bar.\n * ```\n * @baz\n * ```\n */")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.IDs())
	}
	if c.Summary != "Use `@foo` or @bar.\n```\n@baz\n```" {
		t.Fatalf("summary = %q", c.Summary)
	}
}

func TestCustomTags(t *testing.T) {
	bag := diag.NewBag(4)
	cfg := &tsdoc.Config{CustomTags: map[string]tsdoc.TagSyntax{"@myFlag": tsdoc.SyntaxModifier}}
	c := tsdoc.Parse("/** @myFlag */", source.Span{}, tsdoc.Options{Reporter: diag.BagReporter{Bag: bag}, Config: cfg})
	if bag.Len() != 0 || !c.HasModifier("@myFlag") {
		t.Fatalf("custom modifier not recognised: %v %+v", bag.IDs(), c.Modifiers)
	}
}

func TestCopyInheritedSkipsModifiers(t *testing.T) {
	src, _ := parse(t, "/** Base summary.\n * @remarks More.\n * @param x - the x\n * @alpha */")
	dst, _ := parse(t, "/** {@inheritDoc Base} @public */")
	dst.CopyInherited(src)
	if dst.Summary != "Base summary." || dst.Remarks != "More." || len(dst.Params) != 1 {
		t.Fatalf("copied = %+v", dst)
	}
	if len(dst.ReleaseTags()) != 1 || dst.ReleaseTags()[0].Name != tsdoc.TagPublic {
		t.Fatalf("release tag must not be inherited: %+v", dst.ReleaseTags())
	}
}
