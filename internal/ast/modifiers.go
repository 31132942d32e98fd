package ast

import (
	"strings"

	"apix/internal/source"
)

// Modifier is a bitset of declaration modifiers.
type Modifier uint16

const (
	ModExport Modifier = 1 << iota
	ModDefault
	ModDeclare
	ModAbstract
	ModStatic
	ModReadonly
	ModPublic
	ModPrivate
	ModProtected
	ModAsync
	ModConst // const enum
	ModOptional
	ModAccessor
	ModOverride
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModExport, "export"},
	{ModDefault, "default"},
	{ModDeclare, "declare"},
	{ModAbstract, "abstract"},
	{ModStatic, "static"},
	{ModReadonly, "readonly"},
	{ModPublic, "public"},
	{ModPrivate, "private"},
	{ModProtected, "protected"},
	{ModAsync, "async"},
	{ModConst, "const"},
	{ModOptional, "?"},
	{ModAccessor, "accessor"},
	{ModOverride, "override"},
}

// ModifierFromWord maps a modifier keyword to its bit.
func ModifierFromWord(word string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == word && m.mod != ModOptional {
			return m.mod, true
		}
	}
	return 0, false
}

func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

func (m Modifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ModSpan records where a modifier keyword sits, so emitters can strip or replace it.
type ModSpan struct {
	Mod  Modifier
	Span source.Span
}
