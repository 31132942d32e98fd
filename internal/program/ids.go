package program

// ModuleID identifies a module (a source file or a "declare module" block).
type ModuleID uint32

// NoModuleID marks the absence of a module.
const NoModuleID ModuleID = 0

func (id ModuleID) IsValid() bool { return id != NoModuleID }

// SymbolID identifies a bound symbol.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol.
const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// ScopeID identifies a name scope.
type ScopeID uint32

// NoScopeID marks the absence of a scope.
const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }
