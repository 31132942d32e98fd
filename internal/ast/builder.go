package ast

type Hints struct{ Files, Stmts, Decls uint }

// Builder owns every arena of one analysis run.
type Builder struct {
	Files *Files
	Stmts *Stmts
	Decls *Decls
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 4
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Stmts: NewStmts(hints.Stmts),
		Decls: NewDecls(hints.Decls),
	}
}

func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	f := b.Files.Get(file)
	f.Stmts = append(f.Stmts, stmt)
}

// WalkDecls visits decl and all nested members and namespace declarations, depth first.
// Returning false from fn skips the children of that declaration.
func (b *Builder) WalkDecls(id DeclID, fn func(DeclID, *Decl) bool) {
	d := b.Decls.Get(id)
	if d == nil || !fn(id, d) {
		return
	}
	for _, m := range d.Members {
		b.WalkDecls(m, fn)
	}
	for _, sid := range d.Body {
		if st := b.Stmts.Get(sid); st != nil && st.Kind == StmtDecl {
			b.WalkDecls(st.Decl, fn)
		}
	}
}

// FileDecls returns the declarations directly at the top level of a file.
func (b *Builder) FileDecls(file FileID) []DeclID {
	f := b.Files.Get(file)
	if f == nil {
		return nil
	}
	out := make([]DeclID, 0, len(f.Stmts))
	for _, sid := range f.Stmts {
		if st := b.Stmts.Get(sid); st != nil && st.Kind == StmtDecl {
			out = append(out, st.Decl)
		}
	}
	return out
}
