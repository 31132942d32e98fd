package ast

import "apix/internal/source"

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	// StmtDecl wraps one declaration (Decl); variable statements produce one StmtDecl per declarator.
	StmtDecl
	// StmtImport is "import ... from 'm'" (Import).
	StmtImport
	// StmtImportEquals is "import x = require('m')" or "import x = A.B" (Import).
	StmtImportEquals
	// StmtExport is "export { ... } [from 'm']" or "export * [as ns] from 'm'" (Export).
	StmtExport
	// StmtExportAssign is "export = x" or "export default x" (Export).
	StmtExportAssign
	// StmtGlobal is "declare global { ... }"; Body holds its statements.
	StmtGlobal
	// StmtAmbientModule is "declare module 'm' { ... }"; Body holds its statements.
	StmtAmbientModule
	// StmtUMDExport is "export as namespace X".
	StmtUMDExport
	// StmtOther is any statement the analysis ignores.
	StmtOther
)

type Stmt struct {
	Kind   StmtKind
	Span   source.Span
	Decl   DeclID
	Import ImportID
	Export ExportID
	Body   []StmtID
	Name   string // ambient module name or UMD global name
}

// ImportKind mirrors how a binding is introduced.
type ImportKind uint8

const (
	ImportNamed ImportKind = iota
	ImportDefault
	ImportStar
	ImportEquals
)

func (k ImportKind) String() string {
	switch k {
	case ImportNamed:
		return "named"
	case ImportDefault:
		return "default"
	case ImportStar:
		return "star"
	case ImportEquals:
		return "equals"
	}
	return "unknown"
}

// ImportBinding is one local name introduced by an import.
type ImportBinding struct {
	Kind      ImportKind
	Name      string // imported export name ("default" for default imports, "" for star/equals)
	Local     string
	LocalSpan source.Span
	TypeOnly  bool
}

type Import struct {
	Module     string // "" for "import x = A.B"
	ModuleSpan source.Span
	TypeOnly   bool
	Bindings   []ImportBinding
	// EntityName is the right-hand side of "import x = A.B".
	EntityName *TypeRef
	// Exported is "export import x = ...".
	Exported bool
}

// ExportSpec is "name" or "name as alias" inside export braces.
type ExportSpec struct {
	Name     string
	NameSpan source.Span
	Alias    string // exported name; equals Name when there is no "as"
	TypeOnly bool
}

type Export struct {
	Module     string // "" for local export lists
	ModuleSpan source.Span
	TypeOnly   bool
	Specs      []ExportSpec
	Star       bool
	StarAlias  string // export * as ns from "m"
	// Assign fields (StmtExportAssign)
	IsDefault bool
	Target    *TypeRef
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Imports *Arena[Import]
	Exports *Arena[Export]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Imports: NewArena[Import](capHint / 4),
		Exports: NewArena[Export](capHint / 4),
	}
}

func (s *Stmts) New(stmt Stmt) StmtID {
	return StmtID(s.Arena.Allocate(stmt))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewImport(imp Import) ImportID {
	return ImportID(s.Imports.Allocate(imp))
}

func (s *Stmts) Import(id ImportID) *Import {
	return s.Imports.Get(uint32(id))
}

func (s *Stmts) NewExport(exp Export) ExportID {
	return ExportID(s.Exports.Allocate(exp))
}

func (s *Stmts) Export(id ExportID) *Export {
	return s.Exports.Get(uint32(id))
}
