package tsdoc

// TagSyntax says how a tag participates in a comment.
type TagSyntax uint8

const (
	// SyntaxBlock starts a new section: @remarks, @param, @returns, ...
	SyntaxBlock TagSyntax = iota + 1
	// SyntaxModifier is a bare flag: @public, @sealed, ...
	SyntaxModifier
	// SyntaxInline appears inside braces: {@link X}, {@inheritDoc X}.
	SyntaxInline
)

// Standard tag names.
const (
	TagRemarks              = "@remarks"
	TagParam                = "@param"
	TagTypeParam            = "@typeParam"
	TagReturns              = "@returns"
	TagDeprecated           = "@deprecated"
	TagExample              = "@example"
	TagSee                  = "@see"
	TagThrows               = "@throws"
	TagDefaultValue         = "@defaultValue"
	TagPrivateRemarks       = "@privateRemarks"
	TagDecorator            = "@decorator"
	TagPublic               = "@public"
	TagBeta                 = "@beta"
	TagAlpha                = "@alpha"
	TagInternal             = "@internal"
	TagExperimental         = "@experimental"
	TagPackageDocumentation = "@packageDocumentation"
	TagSealed               = "@sealed"
	TagVirtual              = "@virtual"
	TagOverride             = "@override"
	TagEventProperty        = "@eventProperty"
	TagReadonly             = "@readonly"
	TagLink                 = "@link"
	TagLinkCode             = "@linkcode"
	TagLinkPlain            = "@linkplain"
	TagInheritDoc           = "@inheritDoc"
	TagLabel                = "@label"
)

var standardTags = map[string]TagSyntax{
	TagRemarks:              SyntaxBlock,
	TagParam:                SyntaxBlock,
	TagTypeParam:            SyntaxBlock,
	TagReturns:              SyntaxBlock,
	TagDeprecated:           SyntaxBlock,
	TagExample:              SyntaxBlock,
	TagSee:                  SyntaxBlock,
	TagThrows:               SyntaxBlock,
	TagDefaultValue:         SyntaxBlock,
	TagPrivateRemarks:       SyntaxBlock,
	TagDecorator:            SyntaxBlock,
	TagPublic:               SyntaxModifier,
	TagBeta:                 SyntaxModifier,
	TagAlpha:                SyntaxModifier,
	TagInternal:             SyntaxModifier,
	TagExperimental:         SyntaxModifier,
	TagPackageDocumentation: SyntaxModifier,
	TagSealed:               SyntaxModifier,
	TagVirtual:              SyntaxModifier,
	TagOverride:             SyntaxModifier,
	TagEventProperty:        SyntaxModifier,
	TagReadonly:             SyntaxModifier,
	TagLink:                 SyntaxInline,
	TagLinkCode:             SyntaxInline,
	TagLinkPlain:            SyntaxInline,
	TagInheritDoc:           SyntaxInline,
	TagLabel:                SyntaxInline,
}

// Config расширяет стандартный набор тегов пользовательскими.
type Config struct {
	CustomTags map[string]TagSyntax
}

func (c *Config) lookup(name string) (TagSyntax, bool) {
	if s, ok := standardTags[name]; ok {
		return s, true
	}
	if c != nil {
		if s, ok := c.CustomTags[name]; ok {
			return s, true
		}
	}
	return 0, false
}

// IsReleaseTag reports whether name is one of the release tags.
func IsReleaseTag(name string) bool {
	switch name {
	case TagPublic, TagBeta, TagAlpha, TagInternal, TagExperimental:
		return true
	}
	return false
}
