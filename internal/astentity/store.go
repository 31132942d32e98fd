package astentity

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"apix/internal/ast"
	"apix/internal/program"
)

type importKey struct {
	module string
	export string
	kind   ast.ImportKind
}

type subPathKey struct {
	base EntityID
	path string
}

// Store is the entity arena of one analysis run. Lookups deduplicate:
// one AstImport per (module, export name, kind), one AstSubPathImport per
// (base, path), one AstSymbol per program symbol, one AstNamespaceImport per module.
type Store struct {
	entities []Entity // 0 — sentinel
	decls    []AstDeclaration

	imports    map[importKey]EntityID
	subPaths   map[subPathKey]EntityID
	symbols    map[program.SymbolID]EntityID
	namespaces map[program.ModuleID]EntityID
	byDecl     map[ast.DeclID]DeclarationID
}

func NewStore() *Store {
	return &Store{
		entities:   make([]Entity, 1, 64),
		decls:      make([]AstDeclaration, 1, 64),
		imports:    make(map[importKey]EntityID),
		subPaths:   make(map[subPathKey]EntityID),
		symbols:    make(map[program.SymbolID]EntityID),
		namespaces: make(map[program.ModuleID]EntityID),
		byDecl:     make(map[ast.DeclID]DeclarationID),
	}
}

func (s *Store) nextID() EntityID {
	n, err := safecast.Conv[uint32](len(s.entities))
	if err != nil {
		panic(fmt.Errorf("entity arena overflow: %w", err))
	}
	return EntityID(n)
}

// Get returns the entity, or nil for unknown IDs.
func (s *Store) Get(id EntityID) Entity {
	if !id.IsValid() || int(id) >= len(s.entities) {
		return nil
	}
	return s.entities[id]
}

// Len reports the number of entities.
func (s *Store) Len() int { return len(s.entities) - 1 }

// All returns entities in creation order.
func (s *Store) All() []Entity { return s.entities[1:] }

// Symbol returns the AstSymbol for sym, creating it on first use.
func (s *Store) Symbol(sym program.SymbolID, name string, mod program.ModuleID) (*AstSymbol, bool) {
	if id, ok := s.symbols[sym]; ok {
		return s.entities[id].(*AstSymbol), false
	}
	e := &AstSymbol{base: base{s.nextID()}, Name: name, Symbol: sym, Module: mod}
	s.entities = append(s.entities, e)
	s.symbols[sym] = e.id
	return e, true
}

// Import returns the AstImport for (module, exportName, kind), creating it on first use.
// New imports start as type-only.
func (s *Store) Import(module, exportName string, kind ast.ImportKind, local string) *AstImport {
	key := importKey{module: module, export: exportName, kind: kind}
	if id, ok := s.imports[key]; ok {
		return s.entities[id].(*AstImport)
	}
	e := &AstImport{base: base{s.nextID()}, Module: module, ExportName: exportName, ImportKind: kind, Local: local, typeOnly: true}
	s.entities = append(s.entities, e)
	s.imports[key] = e.id
	return e
}

// NamespaceImport returns the AstNamespaceImport of a local module.
func (s *Store) NamespaceImport(mod program.ModuleID, local string) *AstNamespaceImport {
	if id, ok := s.namespaces[mod]; ok {
		return s.entities[id].(*AstNamespaceImport)
	}
	e := &AstNamespaceImport{base: base{s.nextID()}, Module: mod, Local: local}
	s.entities = append(s.entities, e)
	s.namespaces[mod] = e.id
	return e
}

// SubPath returns the AstSubPathImport for (base, path). The path must not be empty.
func (s *Store) SubPath(baseID EntityID, path []string) (*AstSubPathImport, error) {
	if len(path) == 0 {
		return nil, ErrEmptyExportPath
	}
	key := subPathKey{base: baseID, path: strings.Join(path, ".")}
	if id, ok := s.subPaths[key]; ok {
		return s.entities[id].(*AstSubPathImport), nil
	}
	e := &AstSubPathImport{base: base{s.nextID()}, Base: baseID, ExportPath: append([]string(nil), path...)}
	s.entities = append(s.entities, e)
	s.subPaths[key] = e.id
	return e, nil
}

// Unresolved creates a new placeholder.
func (s *Store) Unresolved(name, reason string) *AstUnresolved {
	e := &AstUnresolved{base: base{s.nextID()}, Name: name, Reason: reason}
	s.entities = append(s.entities, e)
	return e
}

// AddDeclaration stores d and returns its ID.
func (s *Store) AddDeclaration(d AstDeclaration) DeclarationID {
	n, err := safecast.Conv[uint32](len(s.decls))
	if err != nil {
		panic(fmt.Errorf("declaration arena overflow: %w", err))
	}
	d.ID = DeclarationID(n)
	s.decls = append(s.decls, d)
	s.byDecl[d.Decl] = d.ID
	if d.Parent.IsValid() {
		p := &s.decls[d.Parent]
		p.Children = append(p.Children, d.ID)
	}
	return d.ID
}

// Declaration returns the AstDeclaration, or nil for unknown IDs.
func (s *Store) Declaration(id DeclarationID) *AstDeclaration {
	if !id.IsValid() || int(id) >= len(s.decls) {
		return nil
	}
	return &s.decls[id]
}

// DeclarationOf returns the AstDeclaration wrapping an AST declaration.
func (s *Store) DeclarationOf(decl ast.DeclID) (DeclarationID, bool) {
	id, ok := s.byDecl[decl]
	return id, ok
}

// Declarations returns all declarations in creation order.
func (s *Store) Declarations() []AstDeclaration { return s.decls[1:] }

// AsSymbol returns the entity as *AstSymbol, or nil.
func (s *Store) AsSymbol(id EntityID) *AstSymbol {
	e, _ := s.Get(id).(*AstSymbol)
	return e
}

// AsImport returns the entity as *AstImport, or nil.
func (s *Store) AsImport(id EntityID) *AstImport {
	e, _ := s.Get(id).(*AstImport)
	return e
}

// AsNamespaceImport returns the entity as *AstNamespaceImport, or nil.
func (s *Store) AsNamespaceImport(id EntityID) *AstNamespaceImport {
	e, _ := s.Get(id).(*AstNamespaceImport)
	return e
}

// AsSubPath returns the entity as *AstSubPathImport, or nil.
func (s *Store) AsSubPath(id EntityID) *AstSubPathImport {
	e, _ := s.Get(id).(*AstSubPathImport)
	return e
}

// Root follows sub-path imports down to the entity that roots the chain.
func (s *Store) Root(id EntityID) EntityID {
	for {
		sp := s.AsSubPath(id)
		if sp == nil {
			return id
		}
		id = sp.Base
	}
}

// KindOf returns the kind of id, or KindInvalid for unknown IDs.
func (s *Store) KindOf(id EntityID) Kind {
	if e := s.Get(id); e != nil {
		return e.Kind()
	}
	return KindInvalid
}
