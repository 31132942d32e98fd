// Package astentity models the entities the analyzer discovers: local symbols,
// imports from other packages, namespace imports of local modules, member-access
// chains rooted at another entity, and unresolved placeholders.
package astentity

import (
	"errors"
	"strings"

	"apix/internal/ast"
	"apix/internal/program"
)

// EntityID identifies an entity in a Store.
type EntityID uint32

// NoEntityID marks the absence of an entity.
const NoEntityID EntityID = 0

func (id EntityID) IsValid() bool { return id != NoEntityID }

// Kind is the closed set of entity variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSymbol
	KindImport
	KindNamespaceImport
	KindSubPathImport
	KindUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindSymbol:
		return "symbol"
	case KindImport:
		return "import"
	case KindNamespaceImport:
		return "namespace-import"
	case KindSubPathImport:
		return "sub-path-import"
	case KindUnresolved:
		return "unresolved"
	}
	return "invalid"
}

// Entity is implemented only by the types of this package.
type Entity interface {
	ID() EntityID
	Kind() Kind
	// LocalName is the name the entity would like to be emitted under.
	LocalName() string
	entity()
}

type base struct{ id EntityID }

func (b base) ID() EntityID { return b.id }
func (base) entity()        {}

// AstSymbol is a declaration (possibly merged) that belongs to the analyzed package.
type AstSymbol struct {
	base
	Name   string
	Symbol program.SymbolID
	Module program.ModuleID
	// Declarations are the top-level AstDeclarations, one per merged declaration.
	Declarations []DeclarationID
}

func (*AstSymbol) Kind() Kind          { return KindSymbol }
func (s *AstSymbol) LocalName() string { return s.Name }

// ImportKind mirrors how an external entity is imported.
type ImportKind = ast.ImportKind

// AstImport is an entity imported from another package.
type AstImport struct {
	base
	Module     string
	ExportName string // "*" for star imports, "" for equals imports
	ImportKind ImportKind
	Local      string
	// typeOnly stays true while every observed reference is type-only.
	typeOnly bool
}

func (*AstImport) Kind() Kind          { return KindImport }
func (i *AstImport) LocalName() string { return i.Local }

// IsImportTypeEverywhere reports whether every observed reference was type-only.
func (i *AstImport) IsImportTypeEverywhere() bool { return i.typeOnly }

// ObserveReference records one reference; a value reference clears the type-only flag.
func (i *AstImport) ObserveReference(typeOnly bool) {
	if !typeOnly {
		i.typeOnly = false
	}
}

// Key returns "module#export" for diagnostics and the doc model.
func (i *AstImport) Key() string {
	switch i.ImportKind {
	case ast.ImportStar:
		return i.Module + "#*"
	case ast.ImportEquals:
		return i.Module + "#="
	}
	return i.Module + "#" + i.ExportName
}

// NamedEntity pairs an export name with the entity it resolves to.
type NamedEntity struct {
	Name   string
	Entity EntityID
}

// AstNamespaceImport is "import * as NS" / "export * as NS" of a local module.
// Its members are resolved on first request and memoized.
type AstNamespaceImport struct {
	base
	Module program.ModuleID
	Local  string

	members  []NamedEntity
	resolved bool
	byName   map[string]EntityID
}

func (*AstNamespaceImport) Kind() Kind          { return KindNamespaceImport }
func (n *AstNamespaceImport) LocalName() string { return n.Local }

// Members returns every member, calling fetch on first use only.
func (n *AstNamespaceImport) Members(fetch func() []NamedEntity) []NamedEntity {
	if !n.resolved {
		n.members = fetch()
		n.resolved = true
		n.byName = make(map[string]EntityID, len(n.members))
		for _, m := range n.members {
			n.byName[m.Name] = m.Entity
		}
	}
	return n.members
}

// Member resolves one member by name through Members.
func (n *AstNamespaceImport) Member(name string, fetch func() []NamedEntity) (EntityID, bool) {
	n.Members(fetch)
	id, ok := n.byName[name]
	return id, ok
}

// Resolved reports whether the members were fetched already.
func (n *AstNamespaceImport) Resolved() bool { return n.resolved }

// ErrEmptyExportPath is returned when a sub-path import is built without a path.
var ErrEmptyExportPath = errors.New("sub-path import requires a non-empty export path")

// AstSubPathImport is a member-access chain rooted at another entity:
// import("foo").X.Y.Z has Base = foo#X and ExportPath = [Y, Z].
type AstSubPathImport struct {
	base
	Base       EntityID
	ExportPath []string
}

func (*AstSubPathImport) Kind() Kind { return KindSubPathImport }

// LocalName is the last path segment.
func (s *AstSubPathImport) LocalName() string { return s.ExportPath[len(s.ExportPath)-1] }

// Path returns the dotted export path.
func (s *AstSubPathImport) Path() string { return strings.Join(s.ExportPath, ".") }

// AstUnresolved stands in for an entity that could not be resolved.
type AstUnresolved struct {
	base
	Name   string
	Reason string
}

func (*AstUnresolved) Kind() Kind          { return KindUnresolved }
func (u *AstUnresolved) LocalName() string { return u.Name }
