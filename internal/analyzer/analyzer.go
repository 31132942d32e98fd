package analyzer

import (
	"context"
	"sort"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/source"
)

type Options struct {
	Reporter diag.Reporter
}

// Result is the resolved export graph of one entry point.
type Result struct {
	Store *astentity.Store
	Entry program.ModuleID
	// Exports lists the entry point's exported names in statement order.
	Exports []astentity.NamedEntity
	// ExternalStars are the specifiers of "export * from" external packages.
	ExternalStars []string
	// Entities lists every collected entity in discovery order: exports first,
	// then everything their declarations reference.
	Entities []astentity.EntityID
	// GlobalNames are the ambient names referenced by collected declarations.
	// Generated names must not shadow them.
	GlobalNames []string
}

// ExportedNames returns the export names bound to id.
func (r *Result) ExportedNames(id astentity.EntityID) []string {
	var out []string
	for _, e := range r.Exports {
		if e.Entity == id {
			out = append(out, e.Name)
		}
	}
	return out
}

type exportKey struct {
	mod  program.ModuleID
	name string
}

type fetched struct {
	id    astentity.EntityID
	found bool
}

type frame struct {
	key  exportKey
	star bool // requested through "export * from"
}

type moduleExport struct {
	name string
	span source.Span
}

// Analyzer walks the export graph of one program. It is single-use and not safe
// for concurrent use.
type Analyzer struct {
	c     Checker
	r     diag.Reporter
	store *astentity.Store

	exports     map[exportKey]fetched
	active      map[exportKey]int
	stack       []frame
	cyclic      map[exportKey]astentity.EntityID
	aliases     map[program.SymbolID]astentity.EntityID
	aliasActive map[program.SymbolID]bool
	names       map[program.ModuleID][]moduleExport
	namesActive map[program.ModuleID]bool
	extStars    map[program.ModuleID][]string

	seen    map[astentity.EntityID]bool
	order   []astentity.EntityID
	queue   []astentity.EntityID
	built   map[astentity.EntityID]bool
	globals map[string]bool
	// есть /// <reference types|lib>: неизвестные имена считаются оттуда
	typeRefs bool
}

func New(c Checker, opts Options) *Analyzer {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Analyzer{
		c:           c,
		r:           r,
		store:       astentity.NewStore(),
		exports:     make(map[exportKey]fetched),
		active:      make(map[exportKey]int),
		cyclic:      make(map[exportKey]astentity.EntityID),
		aliases:     make(map[program.SymbolID]astentity.EntityID),
		aliasActive: make(map[program.SymbolID]bool),
		names:       make(map[program.ModuleID][]moduleExport),
		namesActive: make(map[program.ModuleID]bool),
		extStars:    make(map[program.ModuleID][]string),
		seen:        make(map[astentity.EntityID]bool),
		built:       make(map[astentity.EntityID]bool),
		globals:     make(map[string]bool),
		typeRefs:    len(c.TypeReferences()) > 0,
	}
}

// Analyze resolves the entry point exports and collects every entity reachable
// from their declarations.
func Analyze(ctx context.Context, c Checker, opts Options) (*Result, error) {
	return New(c, opts).Run(ctx)
}

// Run performs the analysis. The only error it returns is ctx.Err().
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	entry := a.c.Entry()
	res := &Result{Store: a.store, Entry: entry}

	for _, me := range a.moduleExports(entry) {
		id := a.exportEntity(entry, me.name, me.span)
		res.Exports = append(res.Exports, astentity.NamedEntity{Name: me.name, Entity: id})
		a.collect(id)
	}
	res.ExternalStars = append(res.ExternalStars, a.extStars[entry]...)

	for len(a.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := a.queue[0]
		a.queue = a.queue[1:]
		a.process(id)
	}

	res.Entities = a.order
	res.GlobalNames = make([]string, 0, len(a.globals))
	for name := range a.globals {
		res.GlobalNames = append(res.GlobalNames, name)
	}
	sort.Strings(res.GlobalNames)
	return res, nil
}

// Store exposes the entity arena; valid after Run.
func (a *Analyzer) Store() *astentity.Store { return a.store }

func (a *Analyzer) collect(id astentity.EntityID) {
	if !id.IsValid() || a.seen[id] {
		return
	}
	a.seen[id] = true
	a.order = append(a.order, id)
	a.queue = append(a.queue, id)
}

func (a *Analyzer) process(id astentity.EntityID) {
	switch e := a.store.Get(id).(type) {
	case *astentity.AstSymbol:
		a.buildDeclarations(e)
		for _, did := range e.Declarations {
			a.collectRefs(did)
		}
	case *astentity.AstNamespaceImport:
		for _, m := range a.namespaceMembers(e) {
			a.collect(m.Entity)
		}
	case *astentity.AstSubPathImport:
		a.collect(e.Base)
	}
}

func (a *Analyzer) collectRefs(did astentity.DeclarationID) {
	d := a.store.Declaration(did)
	if d == nil {
		return
	}
	for _, ref := range d.Refs {
		a.collect(ref.Entity)
	}
	for _, child := range d.Children {
		a.collectRefs(child)
	}
}

// buildDeclarations wraps every merged declaration of sym, with members and
// namespace children, and resolves their references.
func (a *Analyzer) buildDeclarations(sym *astentity.AstSymbol) {
	if a.built[sym.ID()] {
		return
	}
	a.built[sym.ID()] = true
	for _, decl := range a.c.Declarations(sym.Symbol) {
		sym.Declarations = append(sym.Declarations, a.buildDeclaration(decl, sym.ID(), astentity.NoDeclarationID))
	}
}

func (a *Analyzer) buildDeclaration(decl ast.DeclID, owner astentity.EntityID, parent astentity.DeclarationID) astentity.DeclarationID {
	d := a.c.Decl(decl)
	id := a.store.AddDeclaration(astentity.AstDeclaration{
		Decl:   decl,
		Kind:   d.Kind,
		Name:   d.Name,
		Entity: owner,
		Parent: parent,
	})
	var refs []astentity.Reference
	for _, ref := range a.c.References(decl) {
		refs = append(refs, a.resolveRef(decl, ref))
	}
	for _, child := range a.c.Children(decl) {
		a.buildDeclaration(child, owner, id)
	}
	a.store.Declaration(id).Refs = refs
	return id
}

// namespaceMembers resolves the members of a local namespace import once.
func (a *Analyzer) namespaceMembers(ns *astentity.AstNamespaceImport) []astentity.NamedEntity {
	return ns.Members(func() []astentity.NamedEntity {
		var out []astentity.NamedEntity
		for _, me := range a.moduleExports(ns.Module) {
			out = append(out, astentity.NamedEntity{Name: me.name, Entity: a.exportEntity(ns.Module, me.name, me.span)})
		}
		return out
	})
}
