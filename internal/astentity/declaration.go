package astentity

import "apix/internal/ast"

// DeclarationID identifies an AstDeclaration in a Store.
type DeclarationID uint32

const NoDeclarationID DeclarationID = 0

func (id DeclarationID) IsValid() bool { return id != NoDeclarationID }

// WholeReference marks a reference whose entity stands for the entire reference text.
const WholeReference = -1

// Reference is one resolved reference of a declaration's signature.
type Reference struct {
	Ref    ast.TypeRef
	Entity EntityID // NoEntityID for ambient globals and built-ins
	// Segments is how many leading name segments Entity stands for: the emitter
	// renames exactly that prefix. 0 leaves the text alone; WholeReference
	// replaces the whole reference.
	Segments int
}

// AstDeclaration wraps one declaration of an AstSymbol; members and namespace
// children form a tree below the top-level declarations.
type AstDeclaration struct {
	ID       DeclarationID
	Decl     ast.DeclID
	Kind     ast.DeclKind
	Name     string
	Entity   EntityID
	Parent   DeclarationID
	Children []DeclarationID
	Refs     []Reference
}

// IsTopLevel reports whether the declaration has no parent declaration.
func (d *AstDeclaration) IsTopLevel() bool { return !d.Parent.IsValid() }
