package collector

import (
	"fmt"
	"strings"

	"apix/internal/ast"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/releasetag"
	"apix/internal/source"
	"apix/internal/tsdoc"
)

func (c *Collector) analyzeReleaseTags() error {
	for _, sym := range c.astSymbols() {
		c.analyzeSymbolTags(sym)
	}
	return nil
}

// analyzeSymbolTags computes the effective tag of a symbol from its merged
// declarations (the most public declared tag wins) and propagates it to members.
func (c *Collector) analyzeSymbolTags(sym *astentity.AstSymbol) {
	entry := c.byEntity[sym.ID()]
	meta := &SymbolMeta{}
	c.symbols[sym.ID()] = meta

	var declared []releasetag.Tag
	internal := false
	for _, did := range sym.Declarations {
		dm := c.declMeta(did)
		tag, ok := c.declaredTag(did)
		dm.DeclaredTag = tag
		if !ok {
			continue
		}
		declared = append(declared, tag)
		meta.ReleaseTag = releasetag.Max(meta.ReleaseTag, tag)
		meta.Declared = true
		if tag == releasetag.Internal {
			internal = true
		}
	}

	if len(sym.Declarations) > 0 {
		first := c.res.Store.Declaration(sym.Declarations[0])
		span, anchor := c.declSpan(first.Decl), diag.Anchor(first.Decl)
		switch {
		case !allEqual(declared) && internal:
			diag.Report(c.r, diag.AEInternalMixedReleaseTag, span,
				fmt.Sprintf("Mixed release tags are not allowed for %q because one of its declarations is marked as @internal", sym.Name)).
				WithAnchor(anchor).Emit()
		case !allEqual(declared):
			diag.Report(c.r, diag.AEDifferentReleaseTags, span,
				fmt.Sprintf("The declarations of %q have different release tags; the effective tag is %s", sym.Name, meta.ReleaseTag.TagName())).
				WithAnchor(anchor).Emit()
		}
		if !meta.Declared && entry != nil && entry.Exported {
			diag.Report(c.r, diag.AEMissingReleaseTag, span,
				fmt.Sprintf("%q is part of the package's API, but it is missing a release tag (@alpha, @beta, @public, or @internal)", sym.Name)).
				WithAnchor(anchor).Emit()
		}
		if meta.ReleaseTag == releasetag.Internal && entry != nil {
			for _, name := range entry.ExportNames {
				if name != "default" && !strings.HasPrefix(name, "_") {
					c.reportMissingUnderscore(name, span, anchor)
				}
			}
		}
	}

	for _, did := range sym.Declarations {
		c.declMeta(did).EffectiveTag = meta.ReleaseTag
		for _, child := range c.res.Store.Declaration(did).Children {
			c.analyzeMemberTags(child, meta.ReleaseTag)
		}
	}
}

// analyzeMemberTags: members without a tag inherit the container's tag silently.
func (c *Collector) analyzeMemberTags(did astentity.DeclarationID, parent releasetag.Tag) {
	d := c.res.Store.Declaration(did)
	dm := c.declMeta(did)
	tag, ok := c.declaredTag(did)
	dm.DeclaredTag = tag
	dm.EffectiveTag = parent
	if ok {
		dm.EffectiveTag = tag
		span, anchor := c.declSpan(d.Decl), diag.Anchor(d.Decl)
		if parent != releasetag.None && releasetag.IsMorePublic(tag, parent) {
			diag.Report(c.r, diag.AEIncompatibleReleaseTags, span,
				fmt.Sprintf("The member %q is marked as %s, but its container is marked as %s", d.Name, tag.TagName(), parent.TagName())).
				WithAnchor(anchor).Emit()
		}
		if tag == releasetag.Internal && d.Name != "" && !strings.HasPrefix(d.Name, "_") && hasOwnName(d.Kind) {
			c.reportMissingUnderscore(d.Name, span, anchor)
		}
	}
	for _, child := range d.Children {
		c.analyzeMemberTags(child, dm.EffectiveTag)
	}
}

func (c *Collector) reportMissingUnderscore(name string, span source.Span, anchor diag.Anchor) {
	diag.Report(c.r, diag.AEInternalMissingUnderscore, span,
		fmt.Sprintf("The name %q should be prefixed with an underscore because the declaration is marked as @internal", name)).
		WithAnchor(anchor).Emit()
}

func hasOwnName(k ast.DeclKind) bool {
	switch k {
	case ast.DeclConstructor, ast.DeclCallSignature, ast.DeclConstructSignature, ast.DeclIndexSignature:
		return false
	}
	return true
}

// declaredTag reads the release tag of one declaration; extra tags are reported and ignored.
func (c *Collector) declaredTag(did astentity.DeclarationID) (releasetag.Tag, bool) {
	d := c.res.Store.Declaration(did)
	doc := c.rawDoc(d.Decl)
	tags := doc.ReleaseTags()
	if len(tags) == 0 {
		return releasetag.None, false
	}
	if len(tags) > 1 {
		diag.Report(c.r, diag.AEExtraReleaseTag, tags[1].Span,
			"The doc comment should not contain more than one release tag").
			WithAnchor(diag.Anchor(d.Decl)).Emit()
	}
	tag, _ := releasetag.FromTagName(tags[0].Name)
	return tag, true
}

// checkReferencedReleaseTags reports signatures that reference an exported
// symbol with a less public tag than their own.
func (c *Collector) checkReferencedReleaseTags() error {
	for _, sym := range c.astSymbols() {
		entry := c.byEntity[sym.ID()]
		if entry == nil || !entry.Exported {
			continue
		}
		c.walkDeclarations(sym, func(did astentity.DeclarationID, d *astentity.AstDeclaration) {
			own := c.declMeta(did).EffectiveTag
			if own == releasetag.None {
				return
			}
			reported := make(map[astentity.EntityID]bool)
			for _, ref := range d.Refs {
				target := c.symbols[ref.Entity]
				te := c.byEntity[ref.Entity]
				if target == nil || te == nil || !te.Exported || reported[ref.Entity] || ref.Entity == sym.ID() {
					continue
				}
				if target.ReleaseTag == releasetag.None || !releasetag.IsMorePublic(own, target.ReleaseTag) {
					continue
				}
				reported[ref.Entity] = true
				name := d.Name
				if name == "" {
					name = sym.Name
				}
				diag.Report(c.r, diag.AEIncompatibleReleaseTags, ref.Ref.Span,
					fmt.Sprintf("The symbol %q is marked as %s, but its signature references %q which is marked as %s",
						name, own.TagName(), te.OriginalName, target.ReleaseTag.TagName())).
					WithAnchor(diag.Anchor(d.Decl)).Emit()
			}
		})
	}
	return nil
}

func allEqual(tags []releasetag.Tag) bool {
	for i := 1; i < len(tags); i++ {
		if tags[i] != tags[0] {
			return false
		}
	}
	return true
}

// declSpan is the span diagnostics about a declaration point at: its name when it has one.
func (c *Collector) declSpan(decl ast.DeclID) source.Span {
	d := c.prog.Decl(decl)
	if d == nil {
		return source.Span{}
	}
	if d.NameSpan.End > d.NameSpan.Start {
		return d.NameSpan
	}
	return d.Span
}

// rawDoc returns the parsed comment of decl as written, or nil. The package
// documentation comment never counts as a declaration's comment.
func (c *Collector) rawDoc(decl ast.DeclID) *tsdoc.Comment {
	d := c.prog.Decl(decl)
	if d == nil || d.Doc.IsZero() || c.isPackageDocSpan(d.Doc.Span) {
		return nil
	}
	return c.prog.DocComment(decl)
}
