// Package emit renders a collected package as an API report, declaration
// rollups and a doc model.
package emit

import (
	"fmt"
	"strings"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/collector"
	"apix/internal/program"
)

// typeReferences renders the triple-slash directives the output depends on.
func (p *printer) typeReferences(w *Writer) {
	refs := p.prog.TypeReferences()
	for _, r := range refs {
		w.WriteLine(fmt.Sprintf("/// <reference %s=%q />", r.Attr, r.Value))
	}
	if len(refs) > 0 {
		w.EnsureBlankLine()
	}
}

// imports writes one import statement per external entry, in entry order.
func (p *printer) imports(w *Writer) {
	n := 0
	for _, e := range p.c.Entries() {
		imp := p.store.AsImport(e.Entity)
		if imp == nil {
			continue
		}
		w.WriteLine(importLine(imp, e.EmitName()))
		n++
	}
	if n > 0 {
		w.EnsureBlankLine()
	}
}

func importLine(imp *astentity.AstImport, name string) string {
	kw := "import "
	if imp.IsImportTypeEverywhere() {
		kw = "import type "
	}
	from := " from '" + imp.Module + "';"
	switch imp.ImportKind {
	case ast.ImportDefault:
		return kw + name + from
	case ast.ImportStar:
		return kw + "* as " + name + from
	case ast.ImportEquals:
		return "import " + name + " = require('" + imp.Module + "');"
	}
	if imp.ExportName == name {
		return kw + "{ " + name + " }" + from
	}
	return kw + "{ " + imp.ExportName + " as " + name + " }" + from
}

// body writes every local entry in sort-key order.
func (p *printer) body(w *Writer) error {
	for _, e := range p.c.Entries() {
		switch ent := p.store.Get(e.Entity).(type) {
		case *astentity.AstSymbol:
			if err := p.symbolEntry(w, e, ent); err != nil {
				return err
			}
		case *astentity.AstNamespaceImport:
			p.namespaceEntry(w, e, ent)
		}
	}
	return nil
}

// namespaceEntry renders "import * as ns" of a local module as a namespace
// re-exporting its members.
func (p *printer) namespaceEntry(w *Writer, e *collector.DtsEntry, ns *astentity.AstNamespaceImport) {
	members := ns.Members(func() []astentity.NamedEntity { return nil })
	w.EnsureBlankLine()
	head := ""
	if exportedInline(p.store, e) {
		head = "export "
	}
	w.WriteLine(head + "declare namespace " + e.EmitName() + " {")
	w.IndentPush()
	w.WriteLine("export {")
	w.IndentPush()
	for i, m := range members {
		name := p.entityName(m.Entity)
		line := name
		if name != m.Name {
			line = name + " as " + m.Name
		}
		if i < len(members)-1 {
			line += ","
		}
		w.WriteLine(line)
	}
	w.IndentPop()
	w.WriteLine("}")
	w.IndentPop()
	w.WriteLine("}")
}

// trailingExports writes the export statements that the declarations
// themselves do not carry.
func (p *printer) trailingExports(w *Writer) {
	var lines []string
	for _, e := range p.c.Entries() {
		kind := p.store.KindOf(e.Entity)
		if kind == astentity.KindSubPathImport || kind == astentity.KindUnresolved {
			continue
		}
		name := e.EmitName()
		for _, exp := range e.ExportNames {
			switch {
			case exp == "default":
				lines = append(lines, "export default "+name+";")
			case exp == program.ExportAssignName:
				lines = append(lines, "export = "+name+";")
			case kind == astentity.KindImport:
				if exp == name {
					lines = append(lines, "export { "+name+" }")
				} else {
					lines = append(lines, "export { "+name+" as "+exp+" }")
				}
			case exp != name:
				lines = append(lines, "export { "+name+" as "+exp+" }")
			}
		}
	}
	for _, s := range p.c.Result().ExternalStars {
		lines = append(lines, "export * from '"+s+"';")
	}
	if len(lines) == 0 {
		return
	}
	w.EnsureBlankLine()
	w.WriteString(strings.Join(lines, "\n"))
	w.EnsureNewline()
}
