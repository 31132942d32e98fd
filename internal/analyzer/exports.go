package analyzer

import (
	"fmt"
	"strings"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/source"
)

// moduleExports lists the names a module exports, in statement order, with
// local star re-exports expanded ("default" is never re-exported by a star).
// Specifiers of external star re-exports are remembered in extStars.
func (a *Analyzer) moduleExports(mod program.ModuleID) []moduleExport {
	if names, ok := a.names[mod]; ok {
		return names
	}
	if a.namesActive[mod] {
		return nil
	}
	a.namesActive[mod] = true
	defer delete(a.namesActive, mod)

	var out []moduleExport
	seen := make(map[string]bool)
	add := func(name string, span source.Span) {
		if !seen[name] {
			seen[name] = true
			out = append(out, moduleExport{name: name, span: span})
		}
	}
	var stars []program.Export
	for _, e := range a.c.Exports(mod) {
		if e.Kind == program.ExportStar {
			stars = append(stars, e)
			continue
		}
		add(e.Name, e.Span)
	}
	for _, e := range stars {
		ref := a.c.ResolveModule(mod, e.Module)
		switch ref.Kind {
		case program.ModuleLocal:
			for _, me := range a.moduleExports(ref.Module) {
				if me.name != "default" && me.name != program.ExportAssignName {
					add(me.name, e.Span)
				}
			}
			a.extStars[mod] = appendUnique(a.extStars[mod], a.extStars[ref.Module]...)
		case program.ModuleExternal:
			a.extStars[mod] = appendUnique(a.extStars[mod], ref.Spec)
		default:
			a.unresolvedModule(e.Module, e.Span, diag.NoAnchor)
		}
	}
	a.names[mod] = out
	return out
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, d := range dst {
			if d == it {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, it)
		}
	}
	return dst
}

// exportEntity resolves an export that is known to exist; a miss still yields
// a placeholder and an ae-unresolved-export diagnostic.
func (a *Analyzer) exportEntity(mod program.ModuleID, name string, span source.Span) astentity.EntityID {
	id, found := a.fetchExport(mod, name, false)
	if found {
		return id
	}
	return a.unresolvedExport(mod, name, span, diag.NoAnchor)
}

// fetchExport resolves export name of mod. Results are memoized per (module, name).
// A key that is requested again while it is still being resolved closes a cycle:
// one ae-circular-reexport is reported and every key on the cycle binds to a
// shared placeholder. Cycles that pass through star re-exports are not errors;
// they just do not contribute the name.
func (a *Analyzer) fetchExport(mod program.ModuleID, name string, viaStar bool) (astentity.EntityID, bool) {
	key := exportKey{mod: mod, name: name}
	if r, ok := a.exports[key]; ok {
		return r.id, r.found
	}
	if pos, ok := a.active[key]; ok {
		return a.closeCycle(pos, viaStar)
	}

	a.active[key] = len(a.stack)
	a.stack = append(a.stack, frame{key: key, star: viaStar})
	id, found := a.resolveExport(mod, name)
	a.stack = a.stack[:len(a.stack)-1]
	delete(a.active, key)

	if ph, ok := a.cyclic[key]; ok {
		id, found = ph, true
	}
	a.exports[key] = fetched{id: id, found: found}
	return id, found
}

func (a *Analyzer) closeCycle(pos int, viaStar bool) (astentity.EntityID, bool) {
	if viaStar {
		return astentity.NoEntityID, false
	}
	frames := a.stack[pos:]
	for _, f := range frames[1:] {
		if f.star {
			return astentity.NoEntityID, false
		}
	}
	head := frames[0].key
	if ph, ok := a.cyclic[head]; ok {
		return ph, true
	}

	names := make([]string, 0, len(frames)+1)
	for _, f := range frames {
		names = append(names, a.exportLabel(f.key))
	}
	names = append(names, a.exportLabel(head))
	ph := a.store.Unresolved(head.name, "circular re-export")
	for _, f := range frames {
		a.cyclic[f.key] = ph.ID()
	}
	span := source.Span{}
	for _, e := range a.c.Exports(head.mod) {
		if e.Name == head.name {
			span = e.Span
			break
		}
	}
	diag.Report(a.r, diag.AECircularReexport, span,
		fmt.Sprintf("The re-export chain of %q is circular: %s", head.name, strings.Join(names, " -> "))).Emit()
	return ph.ID(), true
}

func (a *Analyzer) exportLabel(k exportKey) string {
	path := ""
	if m := a.c.Module(k.mod); m != nil {
		path = m.Path
	}
	return path + "#" + k.name
}

func (a *Analyzer) resolveExport(mod program.ModuleID, name string) (astentity.EntityID, bool) {
	exports := a.c.Exports(mod)
	for _, e := range exports {
		if e.Kind == program.ExportStar || e.Name != name {
			continue
		}
		switch e.Kind {
		case program.ExportLocal, program.ExportAssign:
			return a.resolveLocalExport(mod, e), true
		case program.ExportFrom:
			return a.resolveImported(mod, e.Module, e.LocalName, ast.ImportNamed, e.LocalName, e.Span, diag.NoAnchor), true
		case program.ExportStarAs:
			return a.resolveNamespace(mod, e.Module, name, e.Span, diag.NoAnchor), true
		}
	}

	if name == "default" || name == program.ExportAssignName {
		return astentity.NoEntityID, false
	}
	external := ""
	for _, e := range exports {
		if e.Kind != program.ExportStar {
			continue
		}
		ref := a.c.ResolveModule(mod, e.Module)
		switch ref.Kind {
		case program.ModuleLocal:
			if id, found := a.fetchExport(ref.Module, name, true); found {
				return id, true
			}
		case program.ModuleExternal:
			if external == "" {
				external = ref.Spec
			}
		}
	}
	if external != "" {
		return a.store.Import(external, name, ast.ImportNamed, name).ID(), true
	}
	return astentity.NoEntityID, false
}

// resolveLocalExport handles "export class X", "export { a as b }", "export default a"
// and "export = a"; the local name may be a dotted entity name.
func (a *Analyzer) resolveLocalExport(mod program.ModuleID, e program.Export) astentity.EntityID {
	if e.Symbol.IsValid() {
		return a.entityForSymbol(e.Symbol)
	}
	parts := strings.Split(e.LocalName, ".")
	sym, ok := a.c.Lookup(mod, parts[0])
	if !ok {
		return a.unresolvedReference(e.LocalName, e.Span, diag.NoAnchor)
	}
	id, _ := a.resolveQualified(sym, parts[1:], e.LocalName, e.Span, diag.NoAnchor)
	return id
}

// resolveImported resolves one imported name of spec as seen from mod.
func (a *Analyzer) resolveImported(mod program.ModuleID, spec, exportName string, kind ast.ImportKind, local string, span source.Span, anchor diag.Anchor) astentity.EntityID {
	ref := a.c.ResolveModule(mod, spec)
	switch ref.Kind {
	case program.ModuleExternal:
		return a.store.Import(ref.Spec, exportName, kind, local).ID()
	case program.ModuleLocal:
		if id, found := a.fetchExport(ref.Module, exportName, false); found {
			return id
		}
		return a.unresolvedExport(ref.Module, exportName, span, anchor)
	}
	return a.unresolvedModule(spec, span, anchor)
}

// resolveNamespace resolves "* as local" of spec as seen from mod.
func (a *Analyzer) resolveNamespace(mod program.ModuleID, spec, local string, span source.Span, anchor diag.Anchor) astentity.EntityID {
	ref := a.c.ResolveModule(mod, spec)
	switch ref.Kind {
	case program.ModuleExternal:
		return a.store.Import(ref.Spec, "*", ast.ImportStar, local).ID()
	case program.ModuleLocal:
		return a.store.NamespaceImport(ref.Module, local).ID()
	}
	return a.unresolvedModule(spec, span, anchor)
}

func (a *Analyzer) unresolvedModule(spec string, span source.Span, anchor diag.Anchor) astentity.EntityID {
	diag.Report(a.r, diag.AEUnresolvedModule, span,
		fmt.Sprintf("The module %q cannot be resolved", spec)).WithAnchor(anchor).Emit()
	return a.store.Unresolved(spec, "unresolved module").ID()
}

func (a *Analyzer) unresolvedExport(mod program.ModuleID, name string, span source.Span, anchor diag.Anchor) astentity.EntityID {
	path := ""
	if m := a.c.Module(mod); m != nil {
		path = m.Path
	}
	diag.Report(a.r, diag.AEUnresolvedExport, span,
		fmt.Sprintf("The module %q has no export named %q", path, name)).WithAnchor(anchor).Emit()
	return a.store.Unresolved(name, "unresolved export").ID()
}

func (a *Analyzer) unresolvedReference(name string, span source.Span, anchor diag.Anchor) astentity.EntityID {
	diag.Report(a.r, diag.AEUnresolvedReference, span,
		fmt.Sprintf("The name %q cannot be resolved", name)).WithAnchor(anchor).Emit()
	return a.store.Unresolved(name, "unresolved reference").ID()
}
