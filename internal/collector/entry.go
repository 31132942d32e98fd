package collector

import (
	"strings"

	"apix/internal/astentity"
)

// DtsEntry is one entity that may be emitted into a flattened output.
type DtsEntry struct {
	Entity       astentity.EntityID
	OriginalName string
	// Exported is set when the entry point exports the entity under at least one name.
	Exported    bool
	ExportNames []string

	nameForEmit string
	hasName     bool
	sortKey     string
	sortValid   bool

	path   string
	offset uint32
}

func newDtsEntry(id astentity.EntityID, name string, exportNames []string) *DtsEntry {
	return &DtsEntry{
		Entity:       id,
		OriginalName: name,
		Exported:     len(exportNames) > 0,
		ExportNames:  exportNames,
	}
}

// NameForEmit returns the assigned name; ok is false before uniquification.
func (e *DtsEntry) NameForEmit() (string, bool) { return e.nameForEmit, e.hasName }

// EmitName returns the assigned name, falling back to the original name.
func (e *DtsEntry) EmitName() string {
	if e.hasName {
		return e.nameForEmit
	}
	return e.OriginalName
}

// SetNameForEmit assigns the emitted name and invalidates the sort key.
func (e *DtsEntry) SetNameForEmit(name string) {
	e.nameForEmit = name
	e.hasName = true
	e.InvalidateSortKey()
}

// SortKey returns the cached sort key, computing it when needed.
func (e *DtsEntry) SortKey() string {
	if !e.sortValid {
		e.sortKey = SortKeyOf(e.EmitName())
		e.sortValid = true
	}
	return e.sortKey
}

// InvalidateSortKey drops the cached sort key.
func (e *DtsEntry) InvalidateSortKey() { e.sortValid = false }

// SortKeyOf strips one leading underscore and marks the name with a trailing
// '*', so "_Foo" sorts next to "Foo" without ever equalling a real identifier.
func SortKeyOf(name string) string {
	if rest, ok := strings.CutPrefix(name, "_"); ok {
		return rest + "*"
	}
	return name
}
