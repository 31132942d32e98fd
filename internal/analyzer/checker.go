// Package analyzer resolves the export graph of an entry point into entities.
//
// Starting from the entry point's export statements it follows re-export
// chains, import aliases and the type references of every reachable
// declaration, producing exactly one entity per exported name plus the
// non-exported ("forgotten") entities those declarations reference.
package analyzer

import (
	"apix/internal/ast"
	"apix/internal/program"
)

// Checker is the compiler collaborator the analyzer consumes; *program.Program implements it.
type Checker interface {
	Entry() program.ModuleID
	Module(id program.ModuleID) *program.Module
	Exports(mod program.ModuleID) []program.Export
	ResolveModule(from program.ModuleID, spec string) program.ModuleRef
	Symbol(id program.SymbolID) *program.Symbol
	Declarations(sym program.SymbolID) []ast.DeclID
	Decl(id ast.DeclID) *ast.Decl
	ModuleOf(decl ast.DeclID) program.ModuleID
	Lookup(mod program.ModuleID, name string) (program.SymbolID, bool)
	ResolveName(from ast.DeclID, name string) (program.SymbolID, bool)
	Member(sym program.SymbolID, name string) (program.SymbolID, bool)
	Children(decl ast.DeclID) []ast.DeclID
	References(decl ast.DeclID) []ast.TypeRef
	TypeReferences() []ast.RefDirective
}

var _ Checker = (*program.Program)(nil)
