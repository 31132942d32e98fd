package program

import (
	"apix/internal/ast"
	"apix/internal/source"
)

// Module is a file module, a script file or an ambient "declare module" block.
type Module struct {
	ID ModuleID
	// Path is the normalized file path, or the quoted name of an ambient module.
	Path    string
	File    ast.FileID
	Source  source.FileID
	Ambient bool
	// Script is true for files without imports or exports; their declarations are global.
	Script  bool
	Scope   ScopeID
	Exports []Export
	// UMDName is set by "export as namespace X".
	UMDName string
}

// ExportKind enumerates export statement shapes.
type ExportKind uint8

const (
	ExportInvalid ExportKind = iota
	// ExportLocal exports a name from the module scope: "export class X", "export { a as b }".
	ExportLocal
	// ExportFrom re-exports one name: "export { a as b } from 'm'".
	ExportFrom
	// ExportStar re-exports everything: "export * from 'm'".
	ExportStar
	// ExportStarAs re-exports a module namespace: "export * as ns from 'm'".
	ExportStarAs
	// ExportAssign is "export = X"; Name is "export=".
	ExportAssign
)

func (k ExportKind) String() string {
	switch k {
	case ExportLocal:
		return "local"
	case ExportFrom:
		return "from"
	case ExportStar:
		return "star"
	case ExportStarAs:
		return "star-as"
	case ExportAssign:
		return "assign"
	}
	return "invalid"
}

// ExportAssignName is the export name used for "export =".
const ExportAssignName = "export="

// Export is one exported name (or star) in statement order.
type Export struct {
	Kind ExportKind
	// Name is the exported name; empty for ExportStar.
	Name string
	// LocalName is the module-scope name for ExportLocal / ExportAssign,
	// or the imported name for ExportFrom.
	LocalName string
	// Symbol is set when the export statement declares the symbol itself.
	Symbol   SymbolID
	Module   string // specifier for ExportFrom / ExportStar / ExportStarAs
	TypeOnly bool
	Span     source.Span
}

// ModuleRefKind classifies the result of module resolution.
type ModuleRefKind uint8

const (
	ModuleUnresolved ModuleRefKind = iota
	// ModuleLocal is a module of this program.
	ModuleLocal
	// ModuleExternal is another package; it is referenced, never analyzed.
	ModuleExternal
)

// ModuleRef is the result of resolving a specifier.
type ModuleRef struct {
	Kind   ModuleRefKind
	Module ModuleID // ModuleLocal only
	Spec   string
}
