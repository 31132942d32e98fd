package program

import (
	"strings"

	"apix/internal/ast"
)

// binder declares the statements of one module into scopes.
type binder struct {
	p   *Program
	mod ModuleID
}

func (p *Program) bindModule(mod ModuleID) {
	m := p.Module(mod)
	f := p.AST.Files.Get(m.File)
	if m.Script {
		m.Scope = p.global
	} else {
		m.Scope = p.Scopes.New(Scope{Kind: ScopeModule, Parent: p.global, Module: mod})
	}
	b := &binder{p: p, mod: mod}
	b.bindStmts(f.Stmts, m.Scope, NoSymbolID, false)
}

// bindStmts declares stmts into scope. ns is the namespace symbol receiving exports
// (NoSymbolID at module level); implicit exports every declaration of the block.
func (b *binder) bindStmts(stmts []ast.StmtID, scope ScopeID, ns SymbolID, implicit bool) {
	p := b.p
	for _, sid := range stmts {
		st := p.AST.Stmts.Get(sid)
		switch st.Kind {
		case ast.StmtDecl:
			b.bindDecl(st.Decl, scope, ns, implicit)
		case ast.StmtImport, ast.StmtImportEquals:
			b.bindImport(p.AST.Stmts.Import(st.Import), st, scope, ns)
		case ast.StmtExport:
			b.bindExport(p.AST.Stmts.Export(st.Export), st, scope, ns)
		case ast.StmtExportAssign:
			exp := p.AST.Stmts.Export(st.Export)
			if exp.Target == nil {
				continue
			}
			e := Export{Kind: ExportLocal, Name: "default", LocalName: strings.Join(exp.Target.Parts, "."), Span: st.Span}
			if !exp.IsDefault {
				e.Kind, e.Name = ExportAssign, ExportAssignName
			}
			b.addExport(ns, e)
		case ast.StmtGlobal:
			b.bindStmts(st.Body, p.global, NoSymbolID, false)
		case ast.StmtAmbientModule:
			b.bindAmbientModule(st)
		case ast.StmtUMDExport:
			if m := p.Module(b.mod); m != nil {
				m.UMDName = st.Name
			}
		}
	}
}

func (b *binder) bindDecl(id ast.DeclID, scope ScopeID, ns SymbolID, implicit bool) {
	p := b.p
	p.declScope[id] = scope
	p.AST.WalkDecls(id, func(child ast.DeclID, _ *ast.Decl) bool {
		p.declModule[child] = b.mod
		return true
	})

	d := p.AST.Decls.Get(id)
	var sym SymbolID
	if d.Name == "" {
		// анонимный export default
		sym = p.Symbols.New(&Symbol{Kind: SymbolLocal, Module: b.mod, Decls: []ast.DeclID{id}})
	} else {
		sym = b.declare(scope, d.Name, id)
	}
	p.declSymbol[id] = sym

	if d.Kind == ast.DeclNamespace {
		b.bindNamespace(sym, id, scope)
		d = p.AST.Decls.Get(id)
	}

	if !d.IsExported() && !implicit {
		return
	}
	name := d.Name
	if d.IsDefault() {
		name = "default"
	}
	b.addExport(ns, Export{Kind: ExportLocal, Name: name, LocalName: d.Name, Symbol: sym, Span: d.Span})
}

// declare adds decl to the symbol named name in scope, merging with an existing local symbol.
func (b *binder) declare(scope ScopeID, name string, decl ast.DeclID) SymbolID {
	p := b.p
	sc := p.Scopes.Get(scope)
	if id, ok := sc.Names[name]; ok {
		if s := p.Symbols.Get(id); s.Kind == SymbolLocal {
			s.Decls = append(s.Decls, decl)
			return id
		}
	}
	id := p.Symbols.New(&Symbol{
		Name:   name,
		Kind:   SymbolLocal,
		Module: b.mod,
		Decls:  []ast.DeclID{decl},
		Global: sc.Kind == ScopeGlobal,
		Parent: sc.Owner,
	})
	sc.Names[name] = id
	return id
}

func (b *binder) bindNamespace(sym SymbolID, id ast.DeclID, outer ScopeID) {
	p := b.p
	s := p.Symbols.Get(sym)
	if s.Locals == nil {
		s.Locals = make(map[string]SymbolID)
		s.Exports = make(map[string]SymbolID)
	}
	inner := p.Scopes.New(Scope{Kind: ScopeNamespace, Parent: outer, Module: b.mod, Owner: sym, Names: s.Locals})
	d := p.AST.Decls.Get(id)
	b.bindStmts(d.Body, inner, sym, d.Ambient && !d.ExplicitExports)
}

func (b *binder) bindImport(imp *ast.Import, st *ast.Stmt, scope ScopeID, ns SymbolID) {
	p := b.p
	for _, bnd := range imp.Bindings {
		alias := &Alias{
			Kind:       bnd.Kind,
			Module:     imp.Module,
			ImportName: bnd.Name,
			EntityName: imp.EntityName,
			TypeOnly:   imp.TypeOnly || bnd.TypeOnly,
			Span:       bnd.LocalSpan,
		}
		sc := p.Scopes.Get(scope)
		sym := p.Symbols.New(&Symbol{Name: bnd.Local, Kind: SymbolAlias, Module: b.mod, Alias: alias, Parent: sc.Owner})
		sc.Names[bnd.Local] = sym
		if imp.Exported {
			b.addExport(ns, Export{Kind: ExportLocal, Name: bnd.Local, LocalName: bnd.Local, Symbol: sym, Span: st.Span})
		}
	}
}

func (b *binder) bindExport(exp *ast.Export, st *ast.Stmt, scope ScopeID, ns SymbolID) {
	switch {
	case exp.Star && exp.StarAlias != "":
		b.addExport(ns, Export{Kind: ExportStarAs, Name: exp.StarAlias, Module: exp.Module, TypeOnly: exp.TypeOnly, Span: st.Span})
	case exp.Star:
		b.addExport(ns, Export{Kind: ExportStar, Module: exp.Module, TypeOnly: exp.TypeOnly, Span: st.Span})
	case exp.Module != "":
		for _, spec := range exp.Specs {
			b.addExport(ns, Export{Kind: ExportFrom, Name: spec.Alias, LocalName: spec.Name, Module: exp.Module,
				TypeOnly: exp.TypeOnly || spec.TypeOnly, Span: st.Span})
		}
	default:
		for _, spec := range exp.Specs {
			e := Export{Kind: ExportLocal, Name: spec.Alias, LocalName: spec.Name,
				TypeOnly: exp.TypeOnly || spec.TypeOnly, Span: st.Span}
			if ns.IsValid() {
				e.Symbol = b.p.Scopes.Get(scope).Names[spec.Name]
			}
			b.addExport(ns, e)
		}
	}
}

func (b *binder) bindAmbientModule(st *ast.Stmt) {
	p := b.p
	id, ok := p.ambient[st.Name]
	if !ok {
		cur := p.Module(b.mod)
		id = p.newModule(Module{Path: st.Name, File: cur.File, Source: cur.Source, Ambient: true})
		m := p.Module(id)
		m.Scope = p.Scopes.New(Scope{Kind: ScopeModule, Parent: p.global, Module: id})
		p.ambient[st.Name] = id
	}
	inner := &binder{p: p, mod: id}
	inner.bindStmts(st.Body, p.Module(id).Scope, NoSymbolID, !b.hasExplicitExports(st.Body))
}

// hasExplicitExports: без export-ов тело ambient-модуля экспортирует всё.
func (b *binder) hasExplicitExports(body []ast.StmtID) bool {
	for _, sid := range body {
		st := b.p.AST.Stmts.Get(sid)
		switch st.Kind {
		case ast.StmtExport, ast.StmtExportAssign:
			return true
		case ast.StmtDecl:
			if b.p.AST.Decls.Get(st.Decl).IsExported() {
				return true
			}
		}
	}
	return false
}

// addExport records an export on the namespace symbol or, at module level, on the module.
// Overloads and merged declarations produce a single export.
func (b *binder) addExport(ns SymbolID, e Export) {
	p := b.p
	if ns.IsValid() {
		if e.Symbol.IsValid() {
			p.Symbols.Get(ns).Exports[e.Name] = e.Symbol
		}
		return
	}
	m := p.Module(b.mod)
	if m.Script && !m.Ambient {
		return
	}
	if e.Kind == ExportLocal && e.Symbol.IsValid() {
		for _, prev := range m.Exports {
			if prev.Kind == ExportLocal && prev.Name == e.Name && prev.Symbol == e.Symbol {
				return
			}
		}
	}
	m.Exports = append(m.Exports, e)
}
