package emit

import (
	"fmt"
	"slices"
	"strings"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/collector"
	"apix/internal/diag"
	"apix/internal/releasetag"
	"apix/internal/source"
)

// printer renders collected declarations by rewriting their source text:
// modifiers are normalized, names and references follow the assigned emit
// names, bodies and initializers are dropped.
type printer struct {
	c     *collector.Collector
	prog  collector.Program
	store *astentity.Store

	// report mode strips comments and adds warning and footer lines;
	// otherwise declarations below threshold are excluded.
	report    bool
	threshold releasetag.Tag
	router    *diag.Router
}

func newPrinter(c *collector.Collector) *printer {
	return &printer{c: c, prog: c.Program(), store: c.Store()}
}

// entityName is how a reference to id is spelled in the output.
func (p *printer) entityName(id astentity.EntityID) string {
	if sp := p.store.AsSubPath(id); sp != nil {
		return p.entityName(sp.Base) + "." + sp.Path()
	}
	if e := p.c.EntryOf(id); e != nil {
		return e.EmitName()
	}
	if ent := p.store.Get(id); ent != nil {
		return ent.LocalName()
	}
	return ""
}

func (p *printer) included(tag releasetag.Tag) bool {
	return p.report || tag.IncludedIn(p.threshold)
}

// exportedInline reports whether the entry's declaration carries "export" itself.
func exportedInline(store *astentity.Store, e *collector.DtsEntry) bool {
	switch store.KindOf(e.Entity) {
	case astentity.KindSymbol, astentity.KindNamespaceImport:
		return slices.Contains(e.ExportNames, e.EmitName())
	}
	return false
}

func needsDeclare(k ast.DeclKind) bool {
	switch k {
	case ast.DeclInterface, ast.DeclTypeAlias:
		return false
	}
	return true
}

func excludedComment(name string) string {
	return "/* Excluded from this release type: " + name + " */"
}

// symbolEntry writes every declaration of an AstSymbol entry.
func (p *printer) symbolEntry(w *Writer, e *collector.DtsEntry, sym *astentity.AstSymbol) error {
	name := e.EmitName()
	if meta := p.c.SymbolMeta(sym.ID()); meta != nil && !p.included(meta.ReleaseTag) {
		w.EnsureBlankLine()
		w.WriteLine(excludedComment(name))
		return nil
	}
	prefix := ""
	if exportedInline(p.store, e) {
		prefix = "export "
	}
	for _, did := range sym.Declarations {
		d := p.store.Declaration(did)
		ad := p.prog.Decl(d.Decl)
		if ad == nil {
			continue
		}
		meta := p.c.DeclMeta(did)
		text, err := p.declText(d, name)
		if err != nil {
			return fmt.Errorf("emit %s: %w", name, err)
		}

		w.EnsureBlankLine()
		if p.report {
			for _, line := range p.prefixLines(d, meta, releasetag.None, true) {
				w.WriteLine(line)
			}
		} else if meta != nil && meta.Doc != nil {
			w.WriteLine(ad.Doc.Text)
		}
		head := prefix
		if !p.report && needsDeclare(ad.Kind) {
			head += "declare "
		}
		if ad.Kind == ast.DeclVariable {
			w.WriteLine(head + ad.KeywordText + " " + text + ";")
		} else {
			w.WriteLine(head + text)
		}
	}
	return nil
}

// prefixLines returns the "// WARNING:" lines and the footer of a declaration.
func (p *printer) prefixLines(d *astentity.AstDeclaration, meta *collector.DeclMeta, parent releasetag.Tag, top bool) []string {
	var lines []string
	if p.router != nil {
		for _, m := range p.router.FetchAssociated(diag.Anchor(d.Decl)) {
			lines = append(lines, "// WARNING: "+oneLine(m.FormatWithoutLocation()))
		}
	}
	if f := footer(meta, parent, top); f != "" {
		lines = append(lines, f)
	}
	return lines
}

// footer renders "// @tag [flags] [(undocumented)]". Members repeat the
// release tag only when it differs from their container's.
func footer(meta *collector.DeclMeta, parent releasetag.Tag, top bool) string {
	if meta == nil {
		return ""
	}
	var parts []string
	if meta.EffectiveTag != releasetag.None && (top || meta.EffectiveTag != parent) {
		parts = append(parts, meta.EffectiveTag.TagName())
	}
	for _, f := range []struct {
		on  bool
		tag string
	}{
		{meta.Sealed, "@sealed"},
		{meta.Virtual, "@virtual"},
		{meta.Override, "@override"},
		{meta.EventProperty, "@eventProperty"},
		{meta.Deprecated, "@deprecated"},
	} {
		if f.on {
			parts = append(parts, f.tag)
		}
	}
	if meta.Undocumented {
		parts = append(parts, "(undocumented)")
	}
	if len(parts) == 0 {
		return ""
	}
	return "// " + strings.Join(parts, " ")
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// declText rewrites the source text of one declaration. name is the emitted
// name of a top-level declaration and is ignored for members.
func (p *printer) declText(d *astentity.AstDeclaration, name string) (string, error) {
	return p.declTextIn(d, name, p.prog.Decl(d.Decl).Span)
}

// declTextIn is declText restricted to region; edits outside it are dropped.
func (p *printer) declTextIn(d *astentity.AstDeclaration, name string, region source.Span) (string, error) {
	ad := p.prog.Decl(d.Decl)
	content := p.prog.Content(ad.Span.File)
	var edits []Edit
	add := func(e Edit) {
		if e.Span.Start >= region.Start && e.Span.End <= region.End {
			edits = append(edits, e)
		}
	}

	if d.IsTopLevel() {
		for _, ms := range ad.ModSpans {
			switch ms.Mod {
			case ast.ModExport, ast.ModDefault, ast.ModDeclare:
				add(Edit{Span: source.Span{File: region.File, Start: ms.Span.Start, End: trimAfter(content, ms.Span.End)}})
			}
		}
		switch {
		case name == "" || name == ad.Name:
		case ad.Name == "":
			// "function (x)" -> "function _default(x)", "class {" -> "class _default {"
			next := skipSpace(content, ad.NameSpan.Start)
			text := " " + name
			if int(next) < len(content) && content[next] != '(' && content[next] != '<' {
				text += " "
			}
			add(Edit{Span: source.Span{File: ad.NameSpan.File, Start: ad.NameSpan.Start, End: next}, NewText: text})
		default:
			add(Edit{Span: ad.NameSpan, NewText: name})
		}
	}

	for _, ref := range d.Refs {
		if e, ok := p.refEdit(content, ref); ok {
			add(e)
		}
	}

	for _, sp := range ad.Elide {
		e := Edit{Span: source.Span{File: sp.File, Start: trimBefore(content, sp.Start), End: sp.End}}
		if content[sp.Start] == '{' {
			e.NewText = ";"
		}
		add(e)
	}

	tag := releasetag.None
	if meta := p.c.DeclMeta(d.ID); meta != nil {
		tag = meta.EffectiveTag
	}
	childEdits, err := p.childEdits(d, content, tag)
	if err != nil {
		return "", err
	}
	for _, e := range childEdits {
		add(e)
	}

	if p.report {
		for _, e := range p.commentEdits(ad, content, region, edits) {
			add(e)
		}
	}
	return applyEdits(content, region, edits)
}

// refEdit renames the resolved prefix of a reference.
func (p *printer) refEdit(content []byte, ref astentity.Reference) (Edit, bool) {
	if !ref.Entity.IsValid() || ref.Segments == 0 || p.store.KindOf(ref.Entity) == astentity.KindUnresolved {
		return Edit{}, false
	}
	r := ref.Ref
	var sp source.Span
	switch {
	case ref.Segments == astentity.WholeReference || ref.Segments >= len(r.Parts):
		sp = r.Span
	case ref.Segments == 1:
		sp = r.HeadSpan
	default:
		sp = source.Span{File: r.Span.File, Start: r.HeadSpan.Start, End: prefixEnd(content, r.HeadSpan.Start, ref.Segments)}
	}
	if int(sp.End) > len(content) || sp.Start >= sp.End {
		return Edit{}, false
	}
	name := p.entityName(ref.Entity)
	if name == "" || string(content[sp.Start:sp.End]) == name {
		return Edit{}, false
	}
	return Edit{Span: sp, NewText: name}, true
}

// prefixEnd returns the offset after the first n dotted segments starting at start.
func prefixEnd(content []byte, start uint32, n int) uint32 {
	i := start
	for seg := 0; seg < n; seg++ {
		if seg > 0 {
			i = skipSpace(content, i)
			if int(i) >= len(content) || content[i] != '.' {
				return i
			}
			i = skipSpace(content, i+1)
		}
		for int(i) < len(content) && isIdentByte(content[i]) {
			i++
		}
	}
	return i
}

func skipSpace(content []byte, i uint32) uint32 {
	for int(i) < len(content) && (content[i] == ' ' || content[i] == '\t' || content[i] == '\n' || content[i] == '\r') {
		i++
	}
	return i
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}

// varGroup collects the declarators of one variable statement inside a namespace.
type varGroup struct {
	start   uint32 // statement start: first modifier or keyword
	doc     ast.Doc
	lines   []string
	members []*astentity.AstDeclaration
}

// childEdits replaces every member with its own rendering.
func (p *printer) childEdits(d *astentity.AstDeclaration, content []byte, parent releasetag.Tag) ([]Edit, error) {
	var edits []Edit
	var groups []*varGroup
	byStart := make(map[uint32]*varGroup)

	for _, cid := range d.Children {
		cd := p.store.Declaration(cid)
		cad := p.prog.Decl(cd.Decl)
		if cad == nil {
			continue
		}
		meta := p.c.DeclMeta(cid)
		if cad.Chained {
			e, err := p.chainedEdit(p.prog.Decl(d.Decl), cd, content, parent)
			if err != nil {
				return nil, err
			}
			edits = append(edits, e)
			continue
		}
		if cad.Kind == ast.DeclVariable {
			start := variableStart(cad)
			g := byStart[start]
			if g == nil {
				g = &varGroup{start: start, doc: cad.Doc}
				byStart[start] = g
				groups = append(groups, g)
			}
			g.members = append(g.members, cd)
			continue
		}

		start := cad.Span.Start
		excluded := meta != nil && !p.included(meta.EffectiveTag)
		if (excluded || p.report) && !cad.Doc.IsZero() && cad.Doc.Span.End <= start {
			start = cad.Doc.Span.Start
		}
		region := source.Span{File: cad.Span.File, Start: start, End: cad.Span.End}
		if excluded {
			// enum и type-literal члены разделены запятой; пустой элемент списка недопустим
			if end := skipSpace(content, cad.Span.End); int(end) < len(content) && content[end] == ',' {
				region.End = end + 1
			}
			edits = append(edits, Edit{Span: region, NewText: excludedComment(declName(cad))})
			continue
		}
		text, err := p.declText(cd, "")
		if err != nil {
			return nil, err
		}
		if p.report {
			indent := indentOf(content, start)
			var b strings.Builder
			for _, line := range p.prefixLines(cd, meta, parent, false) {
				b.WriteString(line)
				b.WriteString("\n")
				b.WriteString(indent)
			}
			b.WriteString(text)
			text = b.String()
		}
		edits = append(edits, Edit{Span: region, NewText: text})
	}

	for _, g := range groups {
		ge, err := p.variableEdits(g, content, parent)
		if err != nil {
			return nil, err
		}
		edits = append(edits, ge...)
	}
	return edits, nil
}

// chainedEdit renders B of "namespace A.B { }" as a namespace nested in the
// body of A, so that B gets its own warning and footer lines.
func (p *printer) chainedEdit(outer *ast.Decl, cd *astentity.AstDeclaration, content []byte, parent releasetag.Tag) (Edit, error) {
	cad := p.prog.Decl(cd.Decl)
	text, err := p.declText(cd, "")
	if err != nil {
		return Edit{}, err
	}
	indent := lineIndent(content, outer.Span.Start)
	inner := indent + "    "
	var b strings.Builder
	b.WriteString(" {\n")
	if p.report {
		for _, line := range p.prefixLines(cd, p.c.DeclMeta(cd.ID), parent, false) {
			b.WriteString(inner + line + "\n")
		}
	}
	b.WriteString(inner + "export namespace " + reindent(text, "    ") + "\n" + indent + "}")
	return Edit{Span: source.Span{File: cad.Span.File, Start: chainStart(content, cad), End: cad.Span.End}, NewText: b.String()}, nil
}

// chainStart is the offset of the dot in front of a chained namespace name.
func chainStart(content []byte, d *ast.Decl) uint32 {
	i := skipSpaceBack(content, d.Span.Start)
	if i > 0 && content[i-1] == '.' {
		i = skipSpaceBack(content, i-1)
	}
	return i
}

func skipSpaceBack(content []byte, i uint32) uint32 {
	for i > 0 && (content[i-1] == ' ' || content[i-1] == '\t' || content[i-1] == '\n' || content[i-1] == '\r') {
		i--
	}
	return i
}

// variableStart is where the statement holding a declarator begins.
func variableStart(d *ast.Decl) uint32 {
	start := d.Keyword.Start
	for _, ms := range d.ModSpans {
		if ms.Span.Start < start {
			start = ms.Span.Start
		}
	}
	return start
}

// variableEdits renders the declarators of one namespace variable statement.
// Excluded declarators are dropped together with their separating comma; a
// statement that loses every declarator becomes one exclusion comment.
func (p *printer) variableEdits(g *varGroup, content []byte, parent releasetag.Tag) ([]Edit, error) {
	file := p.prog.Decl(g.members[0].Decl).Span.File
	var edits []Edit
	var kept, excluded []*astentity.AstDeclaration
	for _, cd := range g.members {
		if meta := p.c.DeclMeta(cd.ID); meta != nil && !p.included(meta.EffectiveTag) {
			excluded = append(excluded, cd)
		} else {
			kept = append(kept, cd)
		}
	}

	docStart := g.start
	if !g.doc.IsZero() && g.doc.Span.End <= g.start {
		docStart = g.doc.Span.Start
	}

	if len(kept) == 0 {
		last := p.prog.Decl(g.members[len(g.members)-1].Decl)
		end := trimAfter(content, last.Span.End)
		if int(end) < len(content) && content[end] == ';' {
			end++
		}
		names := make([]string, 0, len(excluded))
		for _, cd := range excluded {
			names = append(names, cd.Name)
		}
		edits = append(edits, Edit{Span: source.Span{File: file, Start: docStart, End: end}, NewText: excludedComment(strings.Join(names, ", "))})
		return edits, nil
	}

	for i, cd := range g.members {
		cad := p.prog.Decl(cd.Decl)
		if slices.Contains(excluded, cd) {
			var sp source.Span
			if i+1 < len(g.members) {
				sp = source.Span{File: file, Start: cad.Span.Start, End: p.prog.Decl(g.members[i+1].Decl).Span.Start}
			} else {
				prev := p.prog.Decl(g.members[i-1].Decl)
				sp = source.Span{File: file, Start: prev.Span.End, End: cad.Span.End}
			}
			edits = append(edits, Edit{Span: sp})
			continue
		}
		text, err := p.declText(cd, "")
		if err != nil {
			return nil, err
		}
		edits = append(edits, Edit{Span: cad.Span, NewText: text})
		if p.report {
			g.lines = append(g.lines, p.prefixLines(cd, p.c.DeclMeta(cd.ID), parent, false)...)
		}
	}

	if p.report {
		indent := indentOf(content, g.start)
		var b strings.Builder
		for _, line := range g.lines {
			b.WriteString(line)
			b.WriteString("\n")
			b.WriteString(indent)
		}
		edits = append(edits, Edit{Span: source.Span{File: file, Start: docStart, End: g.start}, NewText: b.String()})
	}
	return edits, nil
}

// commentEdits strips the comments inside region that no other edit covers.
// A comment alone on its line takes the line with it.
func (p *printer) commentEdits(ad *ast.Decl, content []byte, region source.Span, existing []Edit) []Edit {
	var out []Edit
	for _, c := range p.prog.Comments(ad.File) {
		if c.File != region.File || c.Start < region.Start || c.End > region.End {
			continue
		}
		e := Edit{Span: c}
		lineStart := c.Start
		for lineStart > region.Start && (content[lineStart-1] == ' ' || content[lineStart-1] == '\t') {
			lineStart--
		}
		lineEnd := trimAfter(content, c.End)
		if lineStart > region.Start && content[lineStart-1] == '\n' && int(lineEnd) < len(content) && content[lineEnd] == '\n' && lineEnd+1 <= region.End {
			e.Span = source.Span{File: c.File, Start: lineStart, End: lineEnd + 1}
		} else {
			e.Span.Start = trimBefore(content, c.Start)
			if e.Span.Start < region.Start {
				e.Span.Start = region.Start
			}
		}
		if overlapsAny(e, existing) || overlapsAny(e, out) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func overlapsAny(e Edit, edits []Edit) bool {
	for _, o := range edits {
		if o.Span.Start < e.Span.End && e.Span.Start < o.Span.End {
			return true
		}
		if o.Span.Start == o.Span.End && e.Span.Start <= o.Span.Start && o.Span.Start <= e.Span.End {
			return true
		}
	}
	return false
}

func declName(d *ast.Decl) string {
	if d.Name != "" {
		return d.Name
	}
	return d.Kind.String()
}
