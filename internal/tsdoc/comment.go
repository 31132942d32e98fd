package tsdoc

import "apix/internal/source"

// Tag is one occurrence of a modifier or block tag.
type Tag struct {
	Name string
	Span source.Span
}

// ParamBlock is an @param or @typeParam block.
type ParamBlock struct {
	Name    string
	Content string
}

// Block is any other block tag with its content (@example, @see, custom tags).
type Block struct {
	Tag     string
	Content string
}

// InlineRef is an {@link} or {@inheritDoc} tag.
type InlineRef struct {
	Tag  string
	Ref  Reference
	Text string // link text after '|'
	Span source.Span
	// Valid is false when the reference failed to parse.
	Valid bool
}

// Comment is a parsed /** */ block.
type Comment struct {
	Span       source.Span
	Summary    string
	Remarks    string
	Params     []ParamBlock
	TypeParams []ParamBlock
	Returns    string
	Deprecated string
	// HasDeprecated is set even when the message is missing.
	HasDeprecated bool
	Blocks        []Block
	// Modifiers keeps modifier tags in source order, release tags included.
	Modifiers  []Tag
	InheritDoc *InlineRef
	Links      []InlineRef
}

// HasModifier reports whether the comment carries the modifier tag.
func (c *Comment) HasModifier(name string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Modifiers {
		if m.Name == name {
			return true
		}
	}
	return false
}

// ReleaseTags returns release tags in source order.
func (c *Comment) ReleaseTags() []Tag {
	if c == nil {
		return nil
	}
	var out []Tag
	for _, m := range c.Modifiers {
		if IsReleaseTag(m.Name) {
			out = append(out, m)
		}
	}
	return out
}

// IsEmpty reports whether the comment has no documentation content.
func (c *Comment) IsEmpty() bool {
	return c == nil || (c.Summary == "" && c.Remarks == "" && len(c.Params) == 0 &&
		len(c.TypeParams) == 0 && c.Returns == "" && c.InheritDoc == nil)
}

// CopyInherited copies the inheritable sections from src.
// Release tags and other modifiers are never inherited.
func (c *Comment) CopyInherited(src *Comment) {
	if c == nil || src == nil {
		return
	}
	c.Summary = src.Summary
	c.Remarks = src.Remarks
	c.Params = append([]ParamBlock(nil), src.Params...)
	c.TypeParams = append([]ParamBlock(nil), src.TypeParams...)
	c.Returns = src.Returns
}
