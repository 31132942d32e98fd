// Package collector turns a resolved export graph into the model the emitters
// consume: release tags, resolved documentation and collision-free names.
package collector

import (
	"context"
	"fmt"

	"apix/internal/analyzer"
	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/source"
	"apix/internal/tsdoc"
)

// Program is what the collector needs from the compiler collaborator.
type Program interface {
	analyzer.Checker
	DocComment(decl ast.DeclID) *tsdoc.Comment
	ParseDoc(doc ast.Doc, anchor diag.Anchor) *tsdoc.Comment
	LeadingDocs(mod program.ModuleID) []ast.Doc
	Text(span source.Span) string
	Content(id source.FileID) []byte
	Comments(file ast.FileID) []source.Span
}

var _ Program = (*program.Program)(nil)

// InternalError is an invariant violation inside the analysis. It aborts the run.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

func internalErrorf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

type Options struct {
	Reporter diag.Reporter
	// PackageFolder is the folder holding package.json.
	PackageFolder  string
	PackageName    string
	PackageVersion string
}

// Collector owns the per-run model. Build it with New and fill it with Analyze.
type Collector struct {
	prog Program
	res  *analyzer.Result
	r    diag.Reporter

	pkg *CollectorPackage

	entries  []*DtsEntry
	byEntity map[astentity.EntityID]*DtsEntry
	symbols  map[astentity.EntityID]*SymbolMeta
	decls    map[astentity.DeclarationID]*DeclMeta
	exports  map[string]astentity.EntityID

	pkgDocSpan source.Span
	entryDocs  map[source.Span]bool
	analyzed   bool
}

func New(prog Program, res *analyzer.Result, opts Options) *Collector {
	r := opts.Reporter
	if r == nil {
		r = diag.NopReporter{}
	}
	c := &Collector{
		prog:      prog,
		res:       res,
		r:         r,
		byEntity:  make(map[astentity.EntityID]*DtsEntry),
		symbols:   make(map[astentity.EntityID]*SymbolMeta),
		decls:     make(map[astentity.DeclarationID]*DeclMeta),
		exports:   make(map[string]astentity.EntityID),
		entryDocs: make(map[source.Span]bool),
	}
	entryPath := ""
	if m := prog.Module(res.Entry); m != nil {
		entryPath = m.Path
	}
	c.pkg = &CollectorPackage{
		PackageFolder: opts.PackageFolder,
		Name:          opts.PackageName,
		Version:       opts.PackageVersion,
		EntryPoint:    entryPath,
		EntryModule:   res.Entry,
	}
	return c
}

// Analyze runs every pass. It returns *InternalError on invariant violations and
// ctx.Err() on cancellation; every other problem becomes a diagnostic.
func (c *Collector) Analyze(ctx context.Context) error {
	if c.analyzed {
		return nil
	}
	c.analyzed = true

	c.createEntries()
	passes := []func() error{
		c.readPackageDoc,
		c.analyzeReleaseTags,
		c.analyzeDocs,
		c.reportForgottenExports,
		c.checkReferencedReleaseTags,
		c.assignNames,
	}
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := pass(); err != nil {
			return err
		}
	}
	c.sortEntries()
	return nil
}

// Package returns the package under analysis.
func (c *Collector) Package() *CollectorPackage { return c.pkg }

// Program returns the compiler collaborator.
func (c *Collector) Program() Program { return c.prog }

// Result returns the analyzer output the collector was built from.
func (c *Collector) Result() *analyzer.Result { return c.res }

// Store returns the entity arena.
func (c *Collector) Store() *astentity.Store { return c.res.Store }

// Entries returns the emittable entries, sorted by sort key after Analyze.
func (c *Collector) Entries() []*DtsEntry { return c.entries }

// EntryOf returns the entry of an entity, or nil.
func (c *Collector) EntryOf(id astentity.EntityID) *DtsEntry { return c.byEntity[id] }

// SymbolMeta returns the release-tag data of an AstSymbol entity, or nil.
func (c *Collector) SymbolMeta(id astentity.EntityID) *SymbolMeta { return c.symbols[id] }

// DeclMeta returns the per-declaration data, or nil for unknown declarations.
func (c *Collector) DeclMeta(id astentity.DeclarationID) *DeclMeta { return c.decls[id] }

// Exported returns the entity bound to an export name of the entry point.
func (c *Collector) Exported(name string) (astentity.EntityID, bool) {
	id, ok := c.exports[name]
	return id, ok
}

func (c *Collector) createEntries() {
	for _, e := range c.res.Exports {
		if _, ok := c.exports[e.Name]; !ok {
			c.exports[e.Name] = e.Entity
		}
	}
	for _, id := range c.res.Entities {
		ent := c.res.Store.Get(id)
		if ent.Kind() == astentity.KindUnresolved {
			continue
		}
		names := c.res.ExportedNames(id)
		entry := newDtsEntry(id, ent.LocalName(), names)
		entry.path, entry.offset = c.location(ent)
		c.entries = append(c.entries, entry)
		c.byEntity[id] = entry
	}
}

// location returns the source path and offset used to break sort-key ties.
func (c *Collector) location(ent astentity.Entity) (string, uint32) {
	switch e := ent.(type) {
	case *astentity.AstSymbol:
		path := ""
		if m := c.prog.Module(e.Module); m != nil {
			path = m.Path
		}
		for _, decl := range c.prog.Declarations(e.Symbol) {
			if d := c.prog.Decl(decl); d != nil {
				return path, d.Span.Start
			}
		}
		return path, 0
	case *astentity.AstImport:
		return e.Module, 0
	case *astentity.AstNamespaceImport:
		if m := c.prog.Module(e.Module); m != nil {
			return m.Path, 0
		}
	case *astentity.AstSubPathImport:
		if base := c.res.Store.Get(e.Base); base != nil {
			return c.location(base)
		}
	}
	return "", 0
}

// walkDeclarations visits every declaration of sym, members included, parents first.
func (c *Collector) walkDeclarations(sym *astentity.AstSymbol, fn func(id astentity.DeclarationID, d *astentity.AstDeclaration)) {
	var walk func(id astentity.DeclarationID)
	walk = func(id astentity.DeclarationID) {
		d := c.res.Store.Declaration(id)
		if d == nil {
			return
		}
		fn(id, d)
		for _, child := range d.Children {
			walk(child)
		}
	}
	for _, id := range sym.Declarations {
		walk(id)
	}
}

// astSymbols returns the collected AstSymbols in discovery order.
func (c *Collector) astSymbols() []*astentity.AstSymbol {
	var out []*astentity.AstSymbol
	for _, e := range c.entries {
		if s := c.res.Store.AsSymbol(e.Entity); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (c *Collector) declMeta(id astentity.DeclarationID) *DeclMeta {
	m, ok := c.decls[id]
	if !ok {
		m = &DeclMeta{}
		c.decls[id] = m
	}
	return m
}

func (c *Collector) entryPath() string { return c.pkg.EntryPoint }
