package collector

import (
	"fmt"
	"path"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/source"
	"apix/internal/tsdoc"
)

// readPackageDoc takes the @packageDocumentation comment from the first doc
// comment of the entry point. Any other occurrence is misplaced.
func (c *Collector) readPackageDoc() error {
	for i, doc := range c.prog.LeadingDocs(c.pkg.EntryModule) {
		c.entryDocs[doc.Span] = true
		if !isPackageDoc(doc) {
			continue
		}
		if i == 0 {
			c.pkgDocSpan = doc.Span
			c.pkg.DocComment = c.prog.ParseDoc(doc, diag.NoAnchor)
			continue
		}
		c.reportMisplacedPackageTag(doc.Span, diag.NoAnchor)
	}
	return nil
}

func isPackageDoc(doc ast.Doc) bool {
	return containsWord(doc.Text, tsdoc.TagPackageDocumentation)
}

func containsWord(text, word string) bool {
	for i := 0; i+len(word) <= len(text); i++ {
		if text[i:i+len(word)] != word {
			continue
		}
		end := i + len(word)
		if end == len(text) || !isIdentByte(text[end]) {
			return true
		}
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func (c *Collector) isPackageDocSpan(sp source.Span) bool {
	return c.pkg.DocComment != nil && sp == c.pkgDocSpan
}

func (c *Collector) reportMisplacedPackageTag(sp source.Span, anchor diag.Anchor) {
	diag.Report(c.r, diag.AEMisplacedPackageTag, sp,
		"The @packageDocumentation comment must appear at the top of the entry point file").
		WithAnchor(anchor).Emit()
}

// analyzeDocs resolves the documentation of every collected declaration:
// modifier flags, {@inheritDoc}, {@link} targets and the undocumented flag.
func (c *Collector) analyzeDocs() error {
	syms := c.astSymbols()
	for _, sym := range syms {
		c.walkDeclarations(sym, func(did astentity.DeclarationID, d *astentity.AstDeclaration) {
			c.readDoc(did, d)
		})
	}
	for _, sym := range syms {
		c.walkDeclarations(sym, func(did astentity.DeclarationID, _ *astentity.AstDeclaration) {
			c.applyInheritDoc(did)
		})
	}
	for _, sym := range syms {
		entry := c.byEntity[sym.ID()]
		reported := false
		c.walkDeclarations(sym, func(did astentity.DeclarationID, d *astentity.AstDeclaration) {
			c.checkLinks(did, d)
			// слитые декларации (class + namespace) дают одно предупреждение на символ
			if c.checkUndocumented(did, d) && !reported && entry != nil && entry.Exported && d.IsTopLevel() {
				reported = true
				diag.Report(c.r, diag.AEUndocumented, c.declSpan(d.Decl),
					fmt.Sprintf("Missing documentation for %q.", sym.Name)).
					WithAnchor(diag.Anchor(d.Decl)).Emit()
			}
		})
	}
	return nil
}

func (c *Collector) readDoc(did astentity.DeclarationID, d *astentity.AstDeclaration) {
	dm := c.declMeta(did)
	ad := c.prog.Decl(d.Decl)
	raw := c.rawDoc(d.Decl)
	if raw == nil {
		return
	}
	doc := *raw
	dm.Doc = &doc
	dm.Sealed = raw.HasModifier(tsdoc.TagSealed)
	dm.Virtual = raw.HasModifier(tsdoc.TagVirtual)
	dm.Override = raw.HasModifier(tsdoc.TagOverride)
	dm.EventProperty = raw.HasModifier(tsdoc.TagEventProperty)
	dm.Deprecated = raw.HasDeprecated

	if raw.HasModifier(tsdoc.TagPackageDocumentation) && !c.entryDocs[ad.Doc.Span] {
		c.reportMisplacedPackageTag(ad.Doc.Span, diag.Anchor(d.Decl))
	}
	if d.Kind == ast.DeclSetAccessor && !raw.IsEmpty() && c.hasGetter(d) {
		diag.Report(c.r, diag.AESetterWithDocs, c.declSpan(d.Decl),
			fmt.Sprintf("The doc comment for the property %q must appear on the getter, not the setter", d.Name)).
			WithAnchor(diag.Anchor(d.Decl)).Emit()
	}
}

func (c *Collector) hasGetter(setter *astentity.AstDeclaration) bool {
	parent := c.res.Store.Declaration(setter.Parent)
	if parent == nil {
		return false
	}
	for _, sib := range parent.Children {
		if s := c.res.Store.Declaration(sib); s.Kind == ast.DeclGetAccessor && s.Name == setter.Name {
			return true
		}
	}
	return false
}

// applyInheritDoc runs the per-declaration state machine
// Unvisited -> Resolving -> Resolved | Cycle. Reaching a declaration that is
// still Resolving closes a cycle; it is reported once, on that declaration,
// and every declaration on the cycle keeps its own (empty) documentation.
func (c *Collector) applyInheritDoc(did astentity.DeclarationID) bool {
	dm := c.declMeta(did)
	switch dm.inherit {
	case inheritResolved:
		return true
	case inheritCycle:
		return false
	case inheritResolving:
		dm.inherit = inheritCycle
		d := c.res.Store.Declaration(did)
		diag.Report(c.r, diag.AECyclicInheritDoc, dm.Doc.InheritDoc.Span,
			fmt.Sprintf("The @inheritDoc reference of %q leads back to itself", declLabel(d))).
			WithAnchor(diag.Anchor(d.Decl)).Emit()
		return false
	}
	if dm.Doc == nil || dm.Doc.InheritDoc == nil {
		dm.inherit = inheritResolved
		return true
	}

	d := c.res.Store.Declaration(did)
	ref := dm.Doc.InheritDoc
	anchor := diag.Anchor(d.Decl)
	dm.inherit = inheritResolving
	if !ref.Valid || len(ref.Ref.Members) == 0 {
		diag.Report(c.r, diag.AEUnresolvedInheritDocBase, ref.Span,
			"The @inheritDoc tag needs a declaration reference; signature matching is not supported").
			WithAnchor(anchor).Emit()
		dm.inherit = inheritResolved
		return true
	}
	if !ref.Ref.IsLocal(c.pkg.Name) {
		// чужой пакет: оставляем ссылку генераторам документации
		dm.inherit = inheritResolved
		return true
	}
	target, ok := c.resolveDocRef(ref.Ref)
	if !ok {
		diag.Report(c.r, diag.AEUnresolvedInheritDocRef, ref.Span,
			fmt.Sprintf("The @inheritDoc reference could not be resolved: %s", ref.Ref)).
			WithAnchor(anchor).Emit()
		dm.inherit = inheritResolved
		return true
	}
	if !c.applyInheritDoc(target) {
		dm.inherit = inheritCycle
		return false
	}
	if td := c.decls[target]; td != nil && td.Doc != nil {
		dm.Doc.CopyInherited(td.Doc)
	}
	dm.inherit = inheritResolved
	return true
}

func declLabel(d *astentity.AstDeclaration) string {
	if d.Name == "" {
		return d.Kind.String()
	}
	return d.Name
}

// resolveDocRef resolves a local declaration reference: the first member
// through the entry point's exports (then among collected symbols by name),
// the rest by member name.
func (c *Collector) resolveDocRef(ref tsdoc.Reference) (astentity.DeclarationID, bool) {
	if len(ref.Members) == 0 {
		return astentity.NoDeclarationID, false
	}
	id, ok := c.exports[ref.Members[0]]
	if !ok {
		for _, e := range c.entries {
			if e.OriginalName == ref.Members[0] && c.res.Store.KindOf(e.Entity) == astentity.KindSymbol {
				id, ok = e.Entity, true
				break
			}
		}
	}
	sym := c.res.Store.AsSymbol(id)
	if !ok || sym == nil {
		return astentity.NoDeclarationID, false
	}
	candidates := sym.Declarations
	for _, member := range ref.Members[1:] {
		var next []astentity.DeclarationID
		for _, did := range candidates {
			for _, child := range c.res.Store.Declaration(did).Children {
				if c.res.Store.Declaration(child).Name == member {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return astentity.NoDeclarationID, false
		}
		candidates = next
	}
	for _, did := range candidates {
		if dm := c.decls[did]; dm != nil && dm.Doc != nil {
			return did, true
		}
	}
	if len(candidates) == 0 {
		return astentity.NoDeclarationID, false
	}
	return candidates[0], true
}

func (c *Collector) checkLinks(did astentity.DeclarationID, d *astentity.AstDeclaration) {
	dm := c.decls[did]
	if dm == nil || dm.Doc == nil {
		return
	}
	for _, link := range dm.Doc.Links {
		if !link.Valid || len(link.Ref.Members) == 0 || !link.Ref.IsLocal(c.pkg.Name) {
			continue
		}
		if _, ok := c.resolveDocRef(link.Ref); !ok {
			diag.Report(c.r, diag.AEUnresolvedLink, link.Span,
				fmt.Sprintf("The @link reference could not be resolved: %s", link.Ref)).
				WithAnchor(diag.Anchor(d.Decl)).Emit()
		}
	}
}

// checkUndocumented sets the undocumented flag of a declaration and returns it.
func (c *Collector) checkUndocumented(did astentity.DeclarationID, d *astentity.AstDeclaration) bool {
	dm := c.declMeta(did)
	dm.Undocumented = dm.Doc.IsEmpty()
	if d.Kind == ast.DeclSetAccessor && c.hasGetter(d) {
		dm.Undocumented = false
	}
	return dm.Undocumented
}

// reportForgottenExports reports references to local symbols that the entry point does not export.
func (c *Collector) reportForgottenExports() error {
	entryName := path.Base(c.pkg.EntryPoint)
	for _, sym := range c.astSymbols() {
		c.walkDeclarations(sym, func(_ astentity.DeclarationID, d *astentity.AstDeclaration) {
			seen := make(map[astentity.EntityID]bool)
			for _, ref := range d.Refs {
				target := c.res.Store.AsSymbol(ref.Entity)
				if target == nil || target.ID() == sym.ID() || seen[target.ID()] {
					continue
				}
				seen[target.ID()] = true
				if e := c.byEntity[target.ID()]; e == nil || e.Exported {
					continue
				}
				diag.Report(c.r, diag.AEForgottenExport, ref.Ref.Span,
					fmt.Sprintf("The symbol %q needs to be exported by the entry point %s", target.Name, entryName)).
					WithAnchor(diag.Anchor(d.Decl)).Emit()
			}
		})
	}
	return nil
}
