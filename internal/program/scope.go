package program

import (
	"fmt"

	"fortio.org/safecast"
)

// ScopeKind enumerates scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeGlobal              // declare global, script files
	ScopeModule              // file module or ambient module
	ScopeNamespace           // one namespace block
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeModule:
		return "module"
	case ScopeNamespace:
		return "namespace"
	}
	return "invalid"
}

// Scope maps names to symbols. Merged namespace blocks share one Names map.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Module ModuleID
	Owner  SymbolID // namespace symbol for ScopeNamespace
	Names  map[string]SymbolID
}

// Scopes is a slice arena with a reserved sentinel at index 0.
type Scopes struct {
	data []Scope
}

func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 16
	}
	return &Scopes{data: make([]Scope, 1, capacity+1)}
}

func (s *Scopes) New(sc Scope) ScopeID {
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scopes arena overflow: %w", err))
	}
	if sc.Names == nil {
		sc.Names = make(map[string]SymbolID)
	}
	s.data = append(s.data, sc)
	return ScopeID(value)
}

func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Scopes) Len() int { return len(s.data) - 1 }

// Symbols is a slice arena with a reserved sentinel at index 0.
type Symbols struct {
	data []Symbol
}

func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{data: make([]Symbol, 1, capacity+1)}
}

func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("program.Symbols.New: nil symbol")
	}
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	s.data = append(s.data, *sym)
	return SymbolID(value)
}

func (s *Symbols) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Symbols) Len() int { return len(s.data) - 1 }
