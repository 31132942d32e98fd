package program

import (
	"context"
	"fmt"
	"sort"

	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/parser"
	"apix/internal/source"
	"apix/internal/tsdoc"
)

type Options struct {
	Reporter  diag.Reporter
	MaxErrors uint
	TSDoc     *tsdoc.Config
	// ResolveCacheSize bounds the module-resolution cache; 0 uses the default.
	ResolveCacheSize int
}

// Program holds every file reachable from the entry point, parsed and bound.
// It answers the queries the analyzer needs and nothing else.
type Program struct {
	Files   *source.FileSet
	AST     *ast.Builder
	Scopes  *Scopes
	Symbols *Symbols

	opts     Options
	resolver *resolver

	modules []Module // 0 — sentinel
	byPath  map[string]ModuleID
	ambient map[string]ModuleID
	global  ScopeID
	entry   ModuleID

	declScope  map[ast.DeclID]ScopeID
	declModule map[ast.DeclID]ModuleID
	declSymbol map[ast.DeclID]SymbolID
	docs       map[ast.DeclID]*tsdoc.Comment

	parseErrors uint
}

// Build loads the entry point and every local file it reaches through relative
// imports, exports, import types and reference directives, then binds them.
// Files already present in files (for example virtual ones) are not read from disk.
func Build(ctx context.Context, files *source.FileSet, entry string, opts Options) (*Program, error) {
	p := &Program{
		Files:      files,
		AST:        ast.NewBuilder(ast.Hints{}),
		Scopes:     NewScopes(0),
		Symbols:    NewSymbols(0),
		opts:       opts,
		modules:    make([]Module, 1, 16),
		byPath:     make(map[string]ModuleID),
		ambient:    make(map[string]ModuleID),
		declScope:  make(map[ast.DeclID]ScopeID),
		declModule: make(map[ast.DeclID]ModuleID),
		declSymbol: make(map[ast.DeclID]SymbolID),
		docs:       make(map[ast.DeclID]*tsdoc.Comment),
	}
	p.resolver = newResolver(opts.ResolveCacheSize, p.exists)
	p.global = p.Scopes.New(Scope{Kind: ScopeGlobal})

	entryID, err := p.loadFile(entry)
	if err != nil {
		return nil, fmt.Errorf("load entry point %s: %w", entry, err)
	}
	queue := []source.FileID{entryID}
	seen := map[source.FileID]bool{entryID: true}
	var order []ModuleID
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fid := queue[0]
		queue = queue[1:]
		mod := p.parseModule(fid)
		order = append(order, mod)
		if p.entry == NoModuleID {
			p.entry = mod
		}
		from := p.Files.Get(fid).Path
		for _, spec := range p.dependencies(p.modules[mod].File) {
			target := p.resolver.resolve(from, spec)
			if target == "" {
				continue
			}
			dep, err := p.loadFile(target)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", target, err)
			}
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	for _, mod := range order {
		p.bindModule(mod)
	}
	return p, nil
}

func (p *Program) exists(path string) bool {
	if _, ok := p.Files.Lookup(path); ok {
		return true
	}
	return fileExists(path)
}

func (p *Program) loadFile(path string) (source.FileID, error) {
	if id, ok := p.Files.Lookup(path); ok {
		return id, nil
	}
	return p.Files.Load(path)
}

func (p *Program) parseModule(fid source.FileID) ModuleID {
	src := p.Files.Get(fid)
	opts := parser.Options{MaxErrors: p.opts.MaxErrors, Reporter: p.opts.Reporter}
	res := parser.ParseFile(src, p.AST, opts)
	p.parseErrors += res.Errors
	f := p.AST.Files.Get(res.File)
	id := p.newModule(Module{Path: src.Path, File: res.File, Source: fid, Script: !f.IsModule})
	p.byPath[src.Path] = id
	return id
}

func (p *Program) newModule(m Module) ModuleID {
	id := ModuleID(len(p.modules))
	m.ID = id
	p.modules = append(p.modules, m)
	return id
}

// dependencies lists the relative specifiers a file mentions.
func (p *Program) dependencies(file ast.FileID) []string {
	f := p.AST.Files.Get(file)
	var out []string
	add := func(spec string) {
		if IsRelative(spec) {
			out = append(out, spec)
		}
	}
	for _, ref := range f.References {
		if ref.Attr == "path" {
			if IsRelative(ref.Value) {
				add(ref.Value)
			} else {
				add("./" + ref.Value)
			}
		}
	}
	var walkStmts func([]ast.StmtID)
	walkStmts = func(stmts []ast.StmtID) {
		for _, sid := range stmts {
			st := p.AST.Stmts.Get(sid)
			switch st.Kind {
			case ast.StmtImport, ast.StmtImportEquals:
				if m := p.AST.Stmts.Import(st.Import).Module; m != "" {
					add(m)
				}
			case ast.StmtExport:
				if m := p.AST.Stmts.Export(st.Export).Module; m != "" {
					add(m)
				}
			case ast.StmtGlobal, ast.StmtAmbientModule:
				walkStmts(st.Body)
			case ast.StmtDecl:
				p.AST.WalkDecls(st.Decl, func(_ ast.DeclID, d *ast.Decl) bool {
					for _, r := range d.Refs {
						if r.Kind == ast.RefImportType {
							add(r.Module)
						}
					}
					walkStmts(nonDeclStmts(p.AST, d.Body))
					return true
				})
			}
		}
	}
	walkStmts(f.Stmts)
	return out
}

// nonDeclStmts returns namespace body statements that WalkDecls does not visit.
func nonDeclStmts(b *ast.Builder, body []ast.StmtID) []ast.StmtID {
	var out []ast.StmtID
	for _, sid := range body {
		if st := b.Stmts.Get(sid); st != nil && st.Kind != ast.StmtDecl {
			out = append(out, sid)
		}
	}
	return out
}

// Entry returns the entry point module.
func (p *Program) Entry() ModuleID { return p.entry }

// Module returns module metadata, or nil for unknown IDs.
func (p *Program) Module(id ModuleID) *Module {
	if !id.IsValid() || int(id) >= len(p.modules) {
		return nil
	}
	return &p.modules[id]
}

// Modules returns every module in load order, ambient modules included.
func (p *Program) Modules() []Module { return p.modules[1:] }

// ParseErrors reports how many compiler errors the parser produced.
func (p *Program) ParseErrors() uint { return p.parseErrors }

// Exports enumerates a module's export statements in source order.
func (p *Program) Exports(mod ModuleID) []Export {
	if m := p.Module(mod); m != nil {
		return m.Exports
	}
	return nil
}

// ResolveModule resolves a specifier as written in module from.
func (p *Program) ResolveModule(from ModuleID, spec string) ModuleRef {
	if id, ok := p.ambient[spec]; ok {
		return ModuleRef{Kind: ModuleLocal, Module: id, Spec: spec}
	}
	if !IsRelative(spec) {
		return ModuleRef{Kind: ModuleExternal, Spec: spec}
	}
	m := p.Module(from)
	if m == nil {
		return ModuleRef{Kind: ModuleUnresolved, Spec: spec}
	}
	target := p.resolver.resolve(p.Files.Get(m.Source).Path, spec)
	if id, ok := p.byPath[source.NormalizePath(target)]; ok && target != "" {
		return ModuleRef{Kind: ModuleLocal, Module: id, Spec: spec}
	}
	return ModuleRef{Kind: ModuleUnresolved, Spec: spec}
}

func (p *Program) Symbol(id SymbolID) *Symbol { return p.Symbols.Get(id) }

// Declarations returns the merged declarations of a symbol in source order.
func (p *Program) Declarations(sym SymbolID) []ast.DeclID {
	if s := p.Symbols.Get(sym); s != nil {
		return s.Decls
	}
	return nil
}

func (p *Program) Decl(id ast.DeclID) *ast.Decl { return p.AST.Decls.Get(id) }

// SymbolOf returns the symbol a top-level or namespace-level declaration binds.
func (p *Program) SymbolOf(decl ast.DeclID) SymbolID { return p.declSymbol[decl] }

// ModuleOf returns the module that contains decl.
func (p *Program) ModuleOf(decl ast.DeclID) ModuleID { return p.declModule[decl] }

// Lookup resolves name in a module's scope, falling back to globals.
func (p *Program) Lookup(mod ModuleID, name string) (SymbolID, bool) {
	m := p.Module(mod)
	if m == nil {
		return NoSymbolID, false
	}
	return p.lookupFrom(m.Scope, name)
}

// ResolveName resolves an identifier as seen from inside decl: enclosing
// namespaces first, then the module scope, then globals.
func (p *Program) ResolveName(from ast.DeclID, name string) (SymbolID, bool) {
	return p.lookupFrom(p.scopeFor(from), name)
}

func (p *Program) scopeFor(decl ast.DeclID) ScopeID {
	for id := decl; id.IsValid(); {
		if sc, ok := p.declScope[id]; ok {
			return sc
		}
		d := p.AST.Decls.Get(id)
		if d == nil {
			break
		}
		id = d.Parent
	}
	return p.global
}

func (p *Program) lookupFrom(scope ScopeID, name string) (SymbolID, bool) {
	for id := scope; id.IsValid(); {
		sc := p.Scopes.Get(id)
		if sym, ok := sc.Names[name]; ok {
			return sym, true
		}
		id = sc.Parent
	}
	return NoSymbolID, false
}

// Member returns an exported member of a namespace symbol.
func (p *Program) Member(sym SymbolID, name string) (SymbolID, bool) {
	s := p.Symbols.Get(sym)
	if s == nil || s.Exports == nil {
		return NoSymbolID, false
	}
	m, ok := s.Exports[name]
	return m, ok
}

// IsGlobal reports whether name is declared in the global scope.
func (p *Program) IsGlobal(name string) bool {
	_, ok := p.Scopes.Get(p.global).Names[name]
	return ok
}

// References lists the type references found in a declaration's own signature.
func (p *Program) References(decl ast.DeclID) []ast.TypeRef {
	if d := p.AST.Decls.Get(decl); d != nil {
		return d.Refs
	}
	return nil
}

// DocComment parses the declaration's doc comment once; tsdoc problems are
// reported with the declaration as anchor. Returns nil for undocumented declarations.
func (p *Program) DocComment(decl ast.DeclID) *tsdoc.Comment {
	if c, ok := p.docs[decl]; ok {
		return c
	}
	d := p.AST.Decls.Get(decl)
	var c *tsdoc.Comment
	if d != nil && !d.Doc.IsZero() {
		c = p.ParseDoc(d.Doc, diag.Anchor(decl))
	}
	p.docs[decl] = c
	return c
}

// ParseDoc parses a doc comment that is not owned by a declaration (package documentation).
func (p *Program) ParseDoc(doc ast.Doc, anchor diag.Anchor) *tsdoc.Comment {
	var r diag.Reporter
	if p.opts.Reporter != nil {
		r = diag.AnchoredReporter{Reporter: p.opts.Reporter, Anchor: anchor}
	}
	return tsdoc.Parse(doc.Text, doc.Span, tsdoc.Options{Reporter: r, Config: p.opts.TSDoc})
}

// Text returns the source text covered by span.
func (p *Program) Text(span source.Span) string { return p.Files.Text(span) }

// Comments returns every comment span of a parsed file.
func (p *Program) Comments(file ast.FileID) []source.Span {
	if f := p.AST.Files.Get(file); f != nil {
		return f.Comments
	}
	return nil
}

// Content returns the normalized content of a loaded file, or nil.
func (p *Program) Content(id source.FileID) []byte {
	if f := p.Files.Get(id); f != nil {
		return f.Content
	}
	return nil
}

// Children returns the members of a class, interface or enum, or the
// declarations of a namespace body, in source order.
func (p *Program) Children(decl ast.DeclID) []ast.DeclID {
	d := p.AST.Decls.Get(decl)
	if d == nil {
		return nil
	}
	if d.Kind != ast.DeclNamespace {
		return d.Members
	}
	out := make([]ast.DeclID, 0, len(d.Body))
	for _, sid := range d.Body {
		if st := p.AST.Stmts.Get(sid); st != nil && st.Kind == ast.StmtDecl {
			out = append(out, st.Decl)
		}
	}
	return out
}

// LeadingDocs returns the doc comments that precede the first statement of the module's file.
func (p *Program) LeadingDocs(mod ModuleID) []ast.Doc {
	m := p.Module(mod)
	if m == nil || m.Ambient {
		return nil
	}
	if f := p.AST.Files.Get(m.File); f != nil {
		return f.LeadingDocs
	}
	return nil
}

// TypeReferences returns the "types" and "lib" triple-slash directives of every
// loaded file, deduplicated and sorted. "path" directives point at files that
// were loaded as part of the program and are dropped.
func (p *Program) TypeReferences() []ast.RefDirective {
	seen := make(map[ast.RefDirective]bool)
	var out []ast.RefDirective
	for _, m := range p.Modules() {
		f := p.AST.Files.Get(m.File)
		if f == nil || m.Ambient {
			continue
		}
		for _, r := range f.References {
			if r.Attr == "path" || seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attr != out[j].Attr {
			return out[i].Attr < out[j].Attr
		}
		return out[i].Value < out[j].Value
	})
	return out
}
