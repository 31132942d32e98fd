package collector

import (
	"apix/internal/releasetag"
	"apix/internal/tsdoc"
)

// SymbolMeta is the symbol-level release tag information.
type SymbolMeta struct {
	// ReleaseTag is the effective tag: the most public declared tag, or None.
	ReleaseTag releasetag.Tag
	// Declared is false when no declaration carried a release tag.
	Declared bool
}

type inheritState uint8

const (
	inheritUnvisited inheritState = iota
	inheritResolving
	inheritResolved
	inheritCycle
)

// DeclMeta is the per-declaration information the emitters print.
type DeclMeta struct {
	DeclaredTag  releasetag.Tag
	EffectiveTag releasetag.Tag
	// Doc is the documentation after {@inheritDoc} was applied; nil when absent.
	Doc *tsdoc.Comment

	Sealed        bool
	Virtual       bool
	Override      bool
	EventProperty bool
	Deprecated    bool
	Undocumented  bool
	inherit       inheritState
}
