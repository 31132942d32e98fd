package ast

import "apix/internal/source"

// DeclKind is the closed set of declaration kinds.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclClass
	DeclInterface
	DeclTypeAlias
	DeclEnum
	DeclFunction
	DeclVariable
	DeclNamespace
	DeclProperty
	DeclMethod
	DeclConstructor
	DeclCallSignature
	DeclConstructSignature
	DeclIndexSignature
	DeclGetAccessor
	DeclSetAccessor
	DeclEnumMember
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "Class"
	case DeclInterface:
		return "Interface"
	case DeclTypeAlias:
		return "TypeAlias"
	case DeclEnum:
		return "Enum"
	case DeclFunction:
		return "Function"
	case DeclVariable:
		return "Variable"
	case DeclNamespace:
		return "Namespace"
	case DeclProperty:
		return "Property"
	case DeclMethod:
		return "Method"
	case DeclConstructor:
		return "Constructor"
	case DeclCallSignature:
		return "CallSignature"
	case DeclConstructSignature:
		return "ConstructSignature"
	case DeclIndexSignature:
		return "IndexSignature"
	case DeclGetAccessor:
		return "GetAccessor"
	case DeclSetAccessor:
		return "SetAccessor"
	case DeclEnumMember:
		return "EnumMember"
	}
	return "Invalid"
}

// IsTopLevelKind reports whether the kind can appear as a statement.
func (k DeclKind) IsTopLevelKind() bool {
	return k >= DeclClass && k <= DeclNamespace
}

// IsMemberKind reports whether the kind only appears inside a class, interface or enum body.
func (k DeclKind) IsMemberKind() bool {
	return k >= DeclProperty
}

// HasMembers reports whether declarations of this kind own member declarations.
func (k DeclKind) HasMembers() bool {
	return k == DeclClass || k == DeclInterface || k == DeclEnum
}

// Doc is the raw /** */ comment attached to a declaration.
type Doc struct {
	Span source.Span
	Text string
}

func (d Doc) IsZero() bool { return d.Text == "" }

type Decl struct {
	Kind     DeclKind
	Name     string // "" for signatures and anonymous default exports
	NameSpan source.Span
	// Span covers the declaration from its first modifier to its terminator.
	// For variables it covers one declarator only (see Keyword).
	Span      source.Span
	Modifiers Modifier
	ModSpans  []ModSpan
	Doc       Doc
	// Keyword is the declaring keyword span (class, interface, function, const, ...).
	Keyword     source.Span
	KeywordText string
	File        FileID
	Parent      DeclID // enclosing class/interface/enum/namespace, NoDeclID at file level
	Members     []DeclID
	Body        []StmtID    // namespace statements
	BodySpan    source.Span // "{ ... }" of classes, interfaces, enums and namespaces
	Refs        []TypeRef
	TypeParams  []string
	// Elide lists spans (function bodies, initializers) that declaration output drops.
	Elide []source.Span
	// Global marks declarations inside "declare global { }".
	Global bool
	// Ambient marks declarations in a declare context (.d.ts file, declare modifier, declare namespace).
	Ambient bool
	// Chained marks B and C of "namespace A.B.C"; their span starts at the name
	// and they share the body span of A.
	Chained bool
	// ExplicitExports is set on namespaces whose body uses export modifiers or export statements.
	ExplicitExports bool
}

// IsExported reports whether the declaration carries the export modifier.
func (d *Decl) IsExported() bool { return d.Modifiers.Has(ModExport) }

// IsDefault reports whether the declaration is "export default".
func (d *Decl) IsDefault() bool { return d.Modifiers.Has(ModDefault) }

// ModSpan returns the span of the given modifier keyword.
func (d *Decl) ModSpan(mod Modifier) (source.Span, bool) {
	for _, ms := range d.ModSpans {
		if ms.Mod == mod {
			return ms.Span, true
		}
	}
	return source.Span{}, false
}

type Decls struct {
	Arena *Arena[Decl]
}

func NewDecls(capHint uint) *Decls {
	return &Decls{Arena: NewArena[Decl](capHint)}
}

func (d *Decls) New(decl Decl) DeclID {
	return DeclID(d.Arena.Allocate(decl))
}

func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}
