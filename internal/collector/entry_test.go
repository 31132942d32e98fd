package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortKeyOf(t *testing.T) {
	assert.Equal(t, "Foo", SortKeyOf("Foo"))
	assert.Equal(t, "Foo*", SortKeyOf("_Foo"))
	assert.Equal(t, "_Foo*", SortKeyOf("__Foo"))
	assert.Less(t, SortKeyOf("Foo"), SortKeyOf("_Foo"))
	assert.Less(t, SortKeyOf("_Foo"), SortKeyOf("FooBar"))
}

func TestSortKeyFollowsEmitName(t *testing.T) {
	e := newDtsEntry(1, "_Widget", nil)
	assert.False(t, e.Exported)
	assert.Equal(t, "Widget*", e.SortKey())

	_, ok := e.NameForEmit()
	assert.False(t, ok)

	e.SetNameForEmit("Aardvark")
	name, ok := e.NameForEmit()
	assert.True(t, ok)
	assert.Equal(t, "Aardvark", name)
	assert.Equal(t, "Aardvark", e.SortKey())
}

func TestSortEntriesBreaksTiesByLocation(t *testing.T) {
	a := &DtsEntry{OriginalName: "X", path: "/pkg/b.d.ts", offset: 4}
	b := &DtsEntry{OriginalName: "X", path: "/pkg/a.d.ts", offset: 9}
	c := &DtsEntry{OriginalName: "X", path: "/pkg/a.d.ts", offset: 2}
	d := &DtsEntry{OriginalName: "A", path: "/pkg/z.d.ts"}
	entries := []*DtsEntry{a, b, c, d}
	sortEntries(entries)
	assert.Equal(t, []*DtsEntry{d, c, b, a}, entries)
}
