package ast

import "apix/internal/source"

// RefDirective is a triple-slash directive: /// <reference types="x" /> or path="x".
type RefDirective struct {
	Attr  string // "types", "path" or "lib"
	Value string
}

type File struct {
	Source source.FileID
	Span   source.Span
	Stmts  []StmtID
	// IsModule is true when the file has top-level imports or exports.
	IsModule bool
	// Declaration is true for .d.ts inputs.
	Declaration bool
	// LeadingDocs are the /** */ comments before the first statement, in source order.
	LeadingDocs []Doc
	// Comments lists every comment span in the file; report emitters strip them.
	Comments   []source.Span
	References []RefDirective
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(file File) FileID {
	return FileID(f.Arena.Allocate(file))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
