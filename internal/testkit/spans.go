package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"apix/internal/ast"
	"apix/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span lies within the file content
// 2) every declaration span is non-empty and inside file.Span
// 3) name spans and doc comments sit where the declaration says they do
// 4) members and namespace declarations stay inside the parent body; the
//    inner segments of "namespace A.B" stay inside A and share its body
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.Start > f.Span.End || f.Span.End > lenContent {
		return fmt.Errorf("file span %v beyond content of %d bytes", f.Span, lenContent)
	}

	for _, id := range b.FileDecls(fileID) {
		if err := checkDecl(b, id, f.Span); err != nil {
			return err
		}
	}
	return nil
}

func checkDecl(b *ast.Builder, id ast.DeclID, outer source.Span) error {
	d := b.Decls.Get(id)
	if d == nil {
		return fmt.Errorf("nil decl for id=%d", id)
	}
	sp := d.Span
	if sp.Empty() {
		return fmt.Errorf("%s %q: empty span", d.Kind, d.Name)
	}
	if !outer.Contains(sp) {
		return fmt.Errorf("%s %q: span %v outside %v", d.Kind, d.Name, sp, outer)
	}
	if !d.NameSpan.Empty() && !sp.Contains(d.NameSpan) {
		return fmt.Errorf("%s %q: name span %v outside %v", d.Kind, d.Name, d.NameSpan, sp)
	}
	if !d.Doc.IsZero() && d.Doc.Span.End > sp.Start {
		return fmt.Errorf("%s %q: doc comment %v overlaps declaration %v", d.Kind, d.Name, d.Doc.Span, sp)
	}
	for _, e := range d.Elide {
		if !sp.Contains(e) {
			return fmt.Errorf("%s %q: elided span %v outside %v", d.Kind, d.Name, e, sp)
		}
	}

	body := d.BodySpan
	if body.Empty() {
		body = sp
	} else if !sp.Contains(body) {
		return fmt.Errorf("%s %q: body %v outside %v", d.Kind, d.Name, body, sp)
	}
	for _, m := range d.Members {
		if err := checkDecl(b, m, body); err != nil {
			return err
		}
	}
	for _, sid := range d.Body {
		if st := b.Stmts.Get(sid); st != nil && st.Kind == ast.StmtDecl {
			within := body
			// "namespace A.B": B начинается с имени, до тела A
			if inner := b.Decls.Get(st.Decl); inner != nil && inner.Chained {
				within = sp
				if inner.BodySpan != d.BodySpan {
					return fmt.Errorf("%s %q: chained namespace %q has its own body %v", d.Kind, d.Name, inner.Name, inner.BodySpan)
				}
			}
			if err := checkDecl(b, st.Decl, within); err != nil {
				return err
			}
		}
	}
	return nil
}
