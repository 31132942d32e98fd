package ast

import (
	"strings"

	"apix/internal/source"
)

// RefKind distinguishes how a declaration refers to another entity.
type RefKind uint8

const (
	// RefType is a (possibly qualified) type name: Foo, NS.Foo.
	RefType RefKind = iota
	// RefTypeof is a value reference in a type query: typeof foo.bar.
	RefTypeof
	// RefImportType is import("module").A.B; Parts holds the segments after the import.
	RefImportType
	// RefHeritage is an expression in an extends / implements clause.
	RefHeritage
	// RefExpr is an identifier in export assignments and computed property names.
	RefExpr
)

// TypeRef is one reference found in a declaration's signature.
type TypeRef struct {
	Kind     RefKind
	Parts    []string
	Module   string      // RefImportType only
	Span     source.Span // the whole reference
	HeadSpan source.Span // first segment (or the whole import(...) head for import types)
}

// Head returns the first name segment, or "" for bare import types.
func (r TypeRef) Head() string {
	if len(r.Parts) == 0 {
		return ""
	}
	return r.Parts[0]
}

func (r TypeRef) String() string {
	name := strings.Join(r.Parts, ".")
	switch r.Kind {
	case RefImportType:
		if name == "" {
			return `import("` + r.Module + `")`
		}
		return `import("` + r.Module + `").` + name
	case RefTypeof:
		return "typeof " + name
	}
	return name
}
