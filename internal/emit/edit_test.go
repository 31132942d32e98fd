package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apix/internal/source"
)

func span(start, end uint32) source.Span { return source.Span{File: 1, Start: start, End: end} }

func TestApplyEdits(t *testing.T) {
	content := []byte("export declare class Foo extends Bar {}")
	region := span(0, uint32(len(content)))

	got, err := applyEdits(content, region, []Edit{
		{Span: span(33, 36), NewText: "Bar_2"},
		{Span: span(0, trimAfter(content, 6))},
		{Span: span(7, trimAfter(content, 14))},
		{Span: span(21, 24), NewText: "Foo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "class Foo extends Bar_2 {}", got)
}

func TestApplyEditsDuplicatesAndInsertions(t *testing.T) {
	content := []byte("abcdef")
	region := span(0, 6)

	got, err := applyEdits(content, region, []Edit{
		{Span: span(2, 2), NewText: "X"},
		{Span: span(2, 2), NewText: "Y"},
		{Span: span(4, 5), NewText: "_"},
		{Span: span(4, 5), NewText: "_"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abXYcd_f", got)
}

func TestApplyEditsRejectsOverlapAndOutOfRegion(t *testing.T) {
	content := []byte("abcdef")

	_, err := applyEdits(content, span(0, 6), []Edit{
		{Span: span(1, 4), NewText: "x"},
		{Span: span(3, 5), NewText: "y"},
	})
	assert.Error(t, err)

	_, err = applyEdits(content, span(0, 6), []Edit{
		{Span: span(1, 4)},
		{Span: span(2, 2), NewText: "y"},
	})
	assert.Error(t, err, "insertion strictly inside a replacement")

	_, err = applyEdits(content, span(2, 4), []Edit{{Span: span(0, 1)}})
	assert.Error(t, err)

	_, err = applyEdits(content, span(0, 9), nil)
	assert.Error(t, err)
}

func TestApplyEditsRespectsRegion(t *testing.T) {
	content := []byte("xx{ body }yy")
	got, err := applyEdits(content, span(2, 10), []Edit{{Span: span(3, 9), NewText: "-"}})
	require.NoError(t, err)
	assert.Equal(t, "{-}", got)
}

func TestTrimHelpers(t *testing.T) {
	content := []byte("a  \tb\n    c")
	assert.Equal(t, uint32(1), trimBefore(content, 4))
	assert.Equal(t, uint32(4), trimAfter(content, 1))
	assert.Equal(t, "    ", indentOf(content, 10))
	assert.Equal(t, "", indentOf(content, 4))
}

func TestWriter(t *testing.T) {
	w := NewWriter("  ")
	w.EnsureBlankLine()
	assert.Equal(t, "", w.String())

	w.WriteLine("a {")
	w.IndentPush()
	w.WriteLine("b\n\nc")
	w.IndentPop()
	w.WriteString("}")
	w.EnsureBlankLine()
	w.EnsureBlankLine()
	w.WriteLine("d")
	w.IndentPop()

	assert.Equal(t, "a {\n  b\n\n  c\n}\n\nd\n", w.String())
}

func TestFooter(t *testing.T) {
	assert.Equal(t, "", footer(nil, 0, true))
}
