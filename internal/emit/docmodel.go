package emit

import (
	"encoding/json"
	"fmt"
	"strings"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/collector"
	"apix/internal/program"
	"apix/internal/releasetag"
	"apix/internal/version"
)

// DocModelSchemaVersion is bumped whenever the JSON layout changes.
const DocModelSchemaVersion = 1

type DocModelMetadata struct {
	ToolPackage   string `json:"toolPackage"`
	ToolVersion   string `json:"toolVersion"`
	SchemaVersion int    `json:"schemaVersion"`
}

// DocItem is one node of the doc model: the package, its entry point, a
// declaration or a member.
type DocItem struct {
	Kind               string     `json:"kind"`
	CanonicalReference string     `json:"canonicalReference"`
	Name               string     `json:"name"`
	ReleaseTag         string     `json:"releaseTag,omitempty"`
	DocComment         string     `json:"docComment"`
	Summary            string     `json:"summary,omitempty"`
	Excerpt            string     `json:"excerpt,omitempty"`
	Modifiers          []string   `json:"modifiers,omitempty"`
	Deprecated         string     `json:"deprecated,omitempty"`
	Overload           int        `json:"overloadIndex,omitempty"`
	Members            []*DocItem `json:"members"`
}

type DocModel struct {
	Metadata DocModelMetadata `json:"metadata"`
	DocItem
}

type DocModelOptions struct {
	// Threshold drops declarations whose release tag is below it.
	Threshold releasetag.Tag
}

// BuildDocModel projects the analyzed package onto a doc model tree.
func BuildDocModel(c *collector.Collector, opts DocModelOptions) (*DocModel, error) {
	p := newPrinter(c)
	p.threshold = releasetag.None
	pkg := c.Package()

	m := &DocModel{
		Metadata: DocModelMetadata{
			ToolPackage:   version.ToolName,
			ToolVersion:   version.Version,
			SchemaVersion: DocModelSchemaVersion,
		},
		DocItem: DocItem{
			Kind:               "Package",
			CanonicalReference: pkg.Name + "!",
			Name:               pkg.Name,
			Members:            []*DocItem{},
		},
	}
	if pkg.DocComment != nil {
		m.DocComment = p.prog.Text(pkg.DocComment.Span)
		m.Summary = pkg.DocComment.Summary
	}

	entry := &DocItem{Kind: "EntryPoint", CanonicalReference: pkg.Name + "!", Members: []*DocItem{}}
	m.Members = append(m.Members, entry)

	b := &docBuilder{p: p, opts: opts}
	for _, e := range c.Entries() {
		if !e.Exported {
			continue
		}
		for _, exp := range e.ExportNames {
			items, err := b.entity(e.Entity, exportedName(exp, e.EmitName()), pkg.Name+"!")
			if err != nil {
				return nil, err
			}
			entry.Members = append(entry.Members, items...)
		}
	}
	return m, nil
}

// DocModelJSON renders the doc model as indented JSON.
func DocModelJSON(c *collector.Collector, opts DocModelOptions) ([]byte, error) {
	m, err := BuildDocModel(c, opts)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode doc model: %w", err)
	}
	return append(data, '\n'), nil
}

func exportedName(exp, emit string) string {
	if exp == "default" || exp == program.ExportAssignName {
		return emit
	}
	return exp
}

type docBuilder struct {
	p    *printer
	opts DocModelOptions
	// seen guards namespace imports that contain themselves.
	seen map[astentity.EntityID]bool
}

func (b *docBuilder) entity(id astentity.EntityID, name, parentRef string) ([]*DocItem, error) {
	store := b.p.store
	switch ent := store.Get(id).(type) {
	case *astentity.AstSymbol:
		return b.symbol(ent, name, parentRef)
	case *astentity.AstNamespaceImport:
		if b.seen == nil {
			b.seen = make(map[astentity.EntityID]bool)
		}
		if b.seen[id] {
			return nil, nil
		}
		b.seen[id] = true
		defer delete(b.seen, id)

		ref := parentRef + name + ":namespace"
		item := &DocItem{Kind: "Namespace", CanonicalReference: ref, Name: name, Members: []*DocItem{}}
		for _, m := range ent.Members(func() []astentity.NamedEntity { return nil }) {
			items, err := b.entity(m.Entity, m.Name, strings.TrimSuffix(ref, ":namespace")+".")
			if err != nil {
				return nil, err
			}
			item.Members = append(item.Members, items...)
		}
		return []*DocItem{item}, nil
	}
	return nil, nil
}

func (b *docBuilder) symbol(sym *astentity.AstSymbol, name, parentRef string) ([]*DocItem, error) {
	if meta := b.p.c.SymbolMeta(sym.ID()); meta != nil && !meta.ReleaseTag.IncludedIn(b.opts.Threshold) {
		return nil, nil
	}
	overloads := overloadIndexes(b.p.store, sym.Declarations)
	var out []*DocItem
	for _, did := range sym.Declarations {
		item, err := b.declaration(b.p.store.Declaration(did), name, parentRef, overloads[did])
		if err != nil {
			return nil, err
		}
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

// overloadIndexes numbers same-kind callable declarations from 1 when there is more than one.
func overloadIndexes(store *astentity.Store, ids []astentity.DeclarationID) map[astentity.DeclarationID]int {
	count := make(map[string]int)
	for _, id := range ids {
		d := store.Declaration(id)
		if callable(d.Kind) {
			count[d.Kind.String()+"/"+d.Name]++
		}
	}
	out := make(map[astentity.DeclarationID]int)
	next := make(map[string]int)
	for _, id := range ids {
		d := store.Declaration(id)
		key := d.Kind.String() + "/" + d.Name
		if callable(d.Kind) && count[key] > 1 {
			next[key]++
			out[id] = next[key]
		}
	}
	return out
}

func callable(k ast.DeclKind) bool {
	switch k {
	case ast.DeclFunction, ast.DeclMethod, ast.DeclConstructor, ast.DeclCallSignature, ast.DeclConstructSignature:
		return true
	}
	return false
}

func (b *docBuilder) declaration(d *astentity.AstDeclaration, name, parentRef string, overload int) (*DocItem, error) {
	ad := b.p.prog.Decl(d.Decl)
	if ad == nil {
		return nil, nil
	}
	meta := b.p.c.DeclMeta(d.ID)
	if meta != nil && !meta.EffectiveTag.IncludedIn(b.opts.Threshold) {
		return nil, nil
	}
	if name == "" {
		name = d.Name
	}

	ref := parentRef + name + ":" + refSuffix(ad.Kind)
	if !d.IsTopLevel() {
		ref = parentRef + memberRefName(ad, name) + ":" + refSuffix(ad.Kind)
	}
	if overload > 0 {
		ref += fmt.Sprintf("(%d)", overload)
	}

	item := &DocItem{
		Kind:               ad.Kind.String(),
		CanonicalReference: ref,
		Name:               name,
		DocComment:         ad.Doc.Text,
		Overload:           overload,
		Members:            []*DocItem{},
	}
	if meta != nil {
		if meta.EffectiveTag != releasetag.None {
			item.ReleaseTag = meta.EffectiveTag.String()
		}
		if meta.Doc != nil {
			item.Summary = meta.Doc.Summary
			if meta.Doc.HasDeprecated {
				item.Deprecated = meta.Doc.Deprecated
			}
		}
	}
	item.Modifiers = modifierWords(ad.Modifiers)

	excerpt, err := b.excerpt(d, ad, name)
	if err != nil {
		return nil, err
	}
	item.Excerpt = excerpt

	childParent := strings.TrimSuffix(ref, ":"+refSuffix(ad.Kind))
	if overload > 0 {
		childParent = strings.TrimSuffix(childParent, fmt.Sprintf(":%s(%d)", refSuffix(ad.Kind), overload))
	}
	overloads := overloadIndexes(b.p.store, d.Children)
	for _, cid := range d.Children {
		child := b.p.store.Declaration(cid)
		sep := "#"
		if ad.Kind == ast.DeclNamespace || ad.Kind == ast.DeclEnum {
			sep = "."
		}
		if cad := b.p.prog.Decl(child.Decl); cad != nil && cad.Modifiers.Has(ast.ModStatic) {
			sep = "."
		}
		ci, err := b.declaration(child, "", childParent+sep, overloads[cid])
		if err != nil {
			return nil, err
		}
		if ci != nil {
			item.Members = append(item.Members, ci)
		}
	}
	return item, nil
}

// excerpt is the declaration text without members and bodies.
func (b *docBuilder) excerpt(d *astentity.AstDeclaration, ad *ast.Decl, name string) (string, error) {
	region := ad.Span
	if (ad.Kind.HasMembers() || ad.Kind == ast.DeclNamespace) && ad.BodySpan.Len() > 0 && ad.BodySpan.Start > region.Start {
		region.End = ad.BodySpan.Start
	}
	for _, cid := range d.Children {
		if cad := b.p.prog.Decl(b.p.store.Declaration(cid).Decl); cad != nil && cad.Chained {
			region.End = chainStart(b.p.prog.Content(ad.Span.File), cad)
		}
	}
	if !d.IsTopLevel() {
		name = ""
	}
	text, err := b.p.declTextIn(d, name, region)
	if err != nil {
		return "", fmt.Errorf("excerpt of %s: %w", ad.Name, err)
	}
	text = strings.TrimSpace(text)
	if ad.Kind == ast.DeclVariable || ad.Chained {
		text = ad.KeywordText + " " + text
	}
	return text, nil
}

func refSuffix(k ast.DeclKind) string {
	switch k {
	case ast.DeclClass:
		return "class"
	case ast.DeclInterface:
		return "interface"
	case ast.DeclTypeAlias:
		return "type"
	case ast.DeclEnum:
		return "enum"
	case ast.DeclFunction:
		return "function"
	case ast.DeclVariable:
		return "var"
	case ast.DeclNamespace:
		return "namespace"
	case ast.DeclConstructor:
		return "constructor"
	case ast.DeclCallSignature:
		return "call"
	case ast.DeclConstructSignature:
		return "new"
	case ast.DeclIndexSignature:
		return "index"
	}
	return "member"
}

func memberRefName(ad *ast.Decl, name string) string {
	switch ad.Kind {
	case ast.DeclConstructor, ast.DeclCallSignature, ast.DeclConstructSignature, ast.DeclIndexSignature:
		return "(" + refSuffix(ad.Kind) + ")"
	}
	return name
}

func modifierWords(m ast.Modifier) []string {
	var out []string
	for _, w := range []struct {
		mod  ast.Modifier
		word string
	}{
		{ast.ModAbstract, "abstract"},
		{ast.ModStatic, "static"},
		{ast.ModReadonly, "readonly"},
		{ast.ModProtected, "protected"},
		{ast.ModOptional, "optional"},
		{ast.ModConst, "const"},
	} {
		if m.Has(w.mod) {
			out = append(out, w.word)
		}
	}
	return out
}
