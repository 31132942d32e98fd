package program

import (
	"apix/internal/ast"
	"apix/internal/source"
)

// SymbolKind distinguishes declared symbols from import aliases.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	// SymbolLocal owns one or more merged declarations.
	SymbolLocal
	// SymbolAlias is introduced by an import or "import x = ..." and points elsewhere.
	SymbolAlias
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLocal:
		return "local"
	case SymbolAlias:
		return "alias"
	}
	return "invalid"
}

// Alias describes where an import binding points.
type Alias struct {
	Kind ast.ImportKind
	// Module is the specifier as written; empty for "import x = A.B".
	Module string
	// ImportName is the imported export name ("default" for default imports, "" for star/equals).
	ImportName string
	// EntityName is the right-hand side of "import x = A.B".
	EntityName *ast.TypeRef
	TypeOnly   bool
	Span       source.Span
}

// Symbol is a named binding in a scope.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Module ModuleID // module whose scope (or nested namespace scope) declares the symbol
	Decls  []ast.DeclID
	Alias  *Alias
	// Exports holds the exported members of a namespace symbol, shared by merged blocks.
	Exports map[string]SymbolID
	// Locals holds every name declared in the namespace body, shared by merged blocks.
	Locals map[string]SymbolID
	// Global is set for symbols in the global scope.
	Global bool
	// Parent is the enclosing namespace symbol for names declared in a namespace body.
	Parent SymbolID
}

// IsNamespace reports whether any merged declaration is a namespace.
func (s *Symbol) IsNamespace(decls *ast.Decls) bool {
	for _, id := range s.Decls {
		if d := decls.Get(id); d != nil && d.Kind == ast.DeclNamespace {
			return true
		}
	}
	return false
}
