package analyzer

import (
	"strings"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/source"
)

const anonymousDefaultName = "_default"

// entityForSymbol maps a program symbol to its entity. Aliases are followed to
// whatever they import; local symbols become AstSymbols.
func (a *Analyzer) entityForSymbol(id program.SymbolID) astentity.EntityID {
	s := a.c.Symbol(id)
	if s == nil {
		return astentity.NoEntityID
	}
	if s.Kind == program.SymbolAlias {
		return a.resolveAlias(id, s)
	}
	name := s.Name
	if name == "" {
		name = anonymousDefaultName
	}
	e, _ := a.store.Symbol(id, name, s.Module)
	return e.ID()
}

func (a *Analyzer) resolveAlias(id program.SymbolID, s *program.Symbol) astentity.EntityID {
	if e, ok := a.aliases[id]; ok {
		return e
	}
	al := s.Alias
	if a.aliasActive[id] {
		return a.unresolvedReference(s.Name, al.Span, diag.NoAnchor)
	}
	a.aliasActive[id] = true
	defer delete(a.aliasActive, id)

	var e astentity.EntityID
	switch {
	case al.Module == "" && al.EntityName != nil:
		e = a.resolveEntityName(s, *al.EntityName)
	case al.Kind == ast.ImportStar:
		e = a.resolveNamespace(s.Module, al.Module, s.Name, al.Span, diag.NoAnchor)
	case al.Kind == ast.ImportEquals:
		e = a.resolveRequire(s, al)
	default:
		e = a.resolveImported(s.Module, al.Module, al.ImportName, al.Kind, s.Name, al.Span, diag.NoAnchor)
	}
	a.aliases[id] = e
	return e
}

// resolveRequire handles import x = require("m"): the target's "export =" if it
// has one, otherwise the module namespace.
func (a *Analyzer) resolveRequire(s *program.Symbol, al *program.Alias) astentity.EntityID {
	ref := a.c.ResolveModule(s.Module, al.Module)
	switch ref.Kind {
	case program.ModuleExternal:
		return a.store.Import(ref.Spec, "", ast.ImportEquals, s.Name).ID()
	case program.ModuleLocal:
		if id, found := a.fetchExport(ref.Module, program.ExportAssignName, false); found {
			return id
		}
		return a.store.NamespaceImport(ref.Module, s.Name).ID()
	}
	return a.unresolvedModule(al.Module, al.Span, diag.NoAnchor)
}

// resolveEntityName handles import x = A.B.C. A path that ends inside a local
// namespace becomes a sub-path import rooted at the namespace's entity.
func (a *Analyzer) resolveEntityName(s *program.Symbol, ref ast.TypeRef) astentity.EntityID {
	head := ref.Head()
	var sym program.SymbolID
	var ok bool
	if s.Parent.IsValid() {
		if p := a.c.Symbol(s.Parent); p != nil && p.Locals != nil {
			sym, ok = p.Locals[head]
		}
	}
	if !ok {
		sym, ok = a.c.Lookup(s.Module, head)
	}
	if !ok {
		return a.unresolvedReference(ref.String(), ref.Span, diag.NoAnchor)
	}
	base, consumed := a.resolveQualified(sym, ref.Parts[1:], ref.String(), ref.Span, diag.NoAnchor)
	if consumed >= len(ref.Parts) || a.store.KindOf(base) != astentity.KindSymbol {
		return base
	}
	sp, err := a.store.SubPath(base, ref.Parts[consumed:])
	if err != nil {
		return base
	}
	return sp.ID()
}

// resolveQualified resolves the entity a qualified name head.rest... refers to
// and how many leading segments that entity stands for. Local namespaces
// resolve to the namespace itself once the member path has been checked;
// namespace imports resolve member by member; external imports keep the
// import entity.
func (a *Analyzer) resolveQualified(head program.SymbolID, rest []string, text string, span source.Span, anchor diag.Anchor) (astentity.EntityID, int) {
	id := a.entityForSymbol(head)
	consumed := 1
	sym := head
	if s := a.c.Symbol(head); s != nil && s.Kind == program.SymbolAlias {
		sym = program.NoSymbolID
	}
	for i, part := range rest {
		switch e := a.store.Get(id).(type) {
		case *astentity.AstNamespaceImport:
			m, ok := e.Member(part, func() []astentity.NamedEntity { return a.namespaceMembers(e) })
			if !ok {
				return a.unresolvedReference(text, span, anchor), 0
			}
			id, sym, consumed = m, program.NoSymbolID, i+2
		case *astentity.AstSymbol:
			if !sym.IsValid() {
				sym = e.Symbol
			}
			next, ok := a.c.Member(sym, part)
			switch {
			case ok && a.c.Symbol(next).Kind == program.SymbolAlias:
				id, sym, consumed = a.entityForSymbol(next), program.NoSymbolID, i+2
			case ok:
				sym = next
			case a.hasMember(sym, part):
				return id, consumed
			default:
				return a.unresolvedReference(text, span, anchor), 0
			}
		default:
			return id, consumed
		}
	}
	return id, consumed
}

// hasMember reports whether a class, interface or enum declaration of sym has a member named name.
func (a *Analyzer) hasMember(sym program.SymbolID, name string) bool {
	for _, decl := range a.c.Declarations(sym) {
		d := a.c.Decl(decl)
		if d == nil || !d.Kind.HasMembers() {
			continue
		}
		for _, m := range d.Members {
			if md := a.c.Decl(m); md != nil && md.Name == name {
				return true
			}
		}
	}
	return false
}

// resolveRef resolves one reference of a declaration. Declared globals and
// standard library names are ambient: they yield NoEntityID and are
// remembered in the global name set. Any other name that resolves to nothing
// becomes an unresolved entity.
func (a *Analyzer) resolveRef(from ast.DeclID, ref ast.TypeRef) astentity.Reference {
	out := astentity.Reference{Ref: ref}
	anchor := diag.Anchor(from)
	if ref.Kind == ast.RefImportType {
		out.Entity = a.resolveImportType(from, ref, anchor)
		out.Segments = astentity.WholeReference
	} else {
		head := ref.Head()
		sym, ok := a.c.ResolveName(from, head)
		if !ok {
			if isBuiltinName(head) || a.typeRefs {
				a.globals[head] = true
				return out
			}
			out.Entity = a.unresolvedReference(ref.String(), ref.Span, anchor)
			return out
		}
		s := a.c.Symbol(sym)
		if s.Global {
			a.globals[head] = true
			return out
		}
		if s.Kind == program.SymbolLocal && s.Parent.IsValid() {
			// член namespace: ссылка идёт на корневой namespace, имя не переписывается
			out.Entity = a.entityForSymbol(a.rootSymbol(sym))
		} else {
			out.Entity, out.Segments = a.resolveQualified(sym, ref.Parts[1:], ref.String(), ref.Span, anchor)
		}
	}
	if imp := a.store.AsImport(a.store.Root(out.Entity)); imp != nil {
		imp.ObserveReference(ref.Kind == ast.RefType || ref.Kind == ast.RefImportType)
	}
	return out
}

func (a *Analyzer) rootSymbol(sym program.SymbolID) program.SymbolID {
	for {
		s := a.c.Symbol(sym)
		if s == nil || !s.Parent.IsValid() {
			return sym
		}
		sym = s.Parent
	}
}

// resolveImportType handles import("m"), import("m").X and import("m").X.Y.Z;
// the latter becomes a sub-path import rooted at m#X with path [Y, Z].
func (a *Analyzer) resolveImportType(from ast.DeclID, ref ast.TypeRef, anchor diag.Anchor) astentity.EntityID {
	mod := a.c.ModuleOf(from)
	if len(ref.Parts) == 0 {
		return a.resolveNamespace(mod, ref.Module, importTypeLocalName(ref.Module), ref.HeadSpan, anchor)
	}
	base := a.resolveImported(mod, ref.Module, ref.Parts[0], ast.ImportNamed, ref.Parts[0], ref.HeadSpan, anchor)
	if len(ref.Parts) == 1 {
		return base
	}
	if a.store.KindOf(base) == astentity.KindUnresolved {
		return base
	}
	sp, err := a.store.SubPath(base, ref.Parts[1:])
	if err != nil {
		return base
	}
	return sp.ID()
}

// importTypeLocalName derives an identifier from a module specifier: "@scope/my-lib" -> "my_lib".
func importTypeLocalName(spec string) string {
	if i := strings.LastIndexByte(spec, '/'); i >= 0 {
		spec = spec[i+1:]
	}
	var b strings.Builder
	for i, r := range spec {
		switch {
		case r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "module"
	}
	return b.String()
}
