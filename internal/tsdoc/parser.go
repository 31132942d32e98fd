package tsdoc

import (
	"fmt"
	"strings"

	"apix/internal/diag"
	"apix/internal/source"
)

type Options struct {
	Reporter diag.Reporter
	Config   *Config
}

// parser разбирает уже очищенный от "*"-префиксов текст комментария.
type parser struct {
	src  string
	offs []uint32 // индекс в src -> смещение внутри исходного комментария (+ sentinel)
	base source.Span
	opts Options
	c    *Comment

	cur      strings.Builder
	curTag   string // "" — summary
	curSpan  source.Span
	inherits int
}

// Parse parses the raw text of a /** */ comment whose source location is span.
// Problems are reported as tsdoc-* warnings; parsing never fails.
func Parse(text string, span source.Span, opts Options) *Comment {
	src, offs, closed := clean(text)
	p := &parser{src: src, offs: offs, base: span, opts: opts, c: &Comment{Span: span}}
	if !closed {
		p.report(diag.TSDocMissingClosingDelimiter, span, `The doc comment is missing its closing "*/" delimiter`)
	}
	p.run()
	return p.c
}

// clean убирает "/**", "*/" и ведущие "*" каждой строки.
func clean(text string) (string, []uint32, bool) {
	start, end := 0, len(text)
	if strings.HasPrefix(text, "/**") {
		start = 3
	}
	closed := len(text) >= 5 && strings.HasSuffix(text, "*/")
	if closed {
		end -= 2
	}
	b := make([]byte, 0, end-start)
	offs := make([]uint32, 0, end-start+1)
	lineStart := true
	for i := start; i < end; {
		if lineStart {
			j := i
			for j < end && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			if j < end && text[j] == '*' {
				j++
				if j < end && text[j] == ' ' {
					j++
				}
			}
			i = j
			lineStart = false
			continue
		}
		c := text[i]
		b = append(b, c)
		offs = append(offs, uint32(i))
		if c == '\n' {
			lineStart = true
		}
		i++
	}
	offs = append(offs, uint32(end))
	return string(b), offs, closed
}

func (p *parser) span(from, to int) source.Span {
	return source.Span{File: p.base.File, Start: p.base.Start + p.offs[from], End: p.base.Start + p.offs[to]}
}

func (p *parser) report(id diag.MessageID, sp source.Span, msg string) {
	if p.opts.Reporter == nil {
		return
	}
	diag.Report(p.opts.Reporter, id, sp, msg).Emit()
}

func (p *parser) run() {
	s := p.src
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && strings.IndexByte("@{}\\`", s[i+1]) >= 0:
			p.cur.WriteByte(s[i+1])
			i += 2
		case strings.HasPrefix(s[i:], "```"):
			end := strings.Index(s[i+3:], "```")
			if end < 0 {
				p.cur.WriteString(s[i:])
				i = len(s)
				continue
			}
			stop := i + 3 + end + 3
			p.cur.WriteString(s[i:stop])
			i = stop
		case c == '`':
			end := strings.IndexByte(s[i+1:], '`')
			if end < 0 {
				p.cur.WriteByte(c)
				i++
				continue
			}
			stop := i + 1 + end + 1
			p.cur.WriteString(s[i:stop])
			i = stop
		case c == '{' && i+1 < len(s) && s[i+1] == '@':
			i = p.inlineTag(i)
		case c == '@' && (i == 0 || isSpace(s[i-1])) && i+1 < len(s) && isLetter(s[i+1]):
			i = p.blockTag(i)
		default:
			p.cur.WriteByte(c)
			i++
		}
	}
	p.flush()
	p.finish()
}

func tagNameEnd(s string, i int) int {
	j := i + 1
	for j < len(s) && (isLetter(s[j]) || (s[j] >= '0' && s[j] <= '9')) {
		j++
	}
	return j
}

// inlineTag обрабатывает "{@tag content}" начиная с '{'.
func (p *parser) inlineTag(i int) int {
	s := p.src
	closeIdx := strings.IndexByte(s[i:], '}')
	if closeIdx < 0 {
		p.report(diag.TSDocInlineTagMissingBrace, p.span(i, i+2), `The TSDoc inline tag is missing its closing "}"`)
		p.cur.WriteByte('{')
		return i + 1
	}
	end := i + closeIdx + 1
	sp := p.span(i, end)
	nameEnd := tagNameEnd(s, i+1)
	name := s[i+1 : nameEnd]
	if name == "@" {
		p.report(diag.TSDocMalformedInlineTag, sp, "Expecting a TSDoc tag name after \"{@\"")
		p.cur.WriteString(s[i:end])
		return end
	}
	content := strings.TrimSpace(s[nameEnd : end-1])

	syntax, ok := p.opts.Config.lookup(name)
	switch {
	case !ok:
		p.report(diag.TSDocUndefinedTag, sp, fmt.Sprintf("The TSDoc tag %q is not defined in this configuration", name))
		p.cur.WriteString(s[i:end])
		return end
	case syntax != SyntaxInline:
		p.report(diag.TSDocMalformedInlineTag, sp, fmt.Sprintf("The TSDoc tag %q is not an inline tag; it must not be enclosed in \"{ }\" braces", name))
		p.cur.WriteString(s[i:end])
		return end
	}

	switch name {
	case TagInheritDoc:
		p.inherits++
		if p.inherits > 1 {
			p.report(diag.TSDocExtraInheritDocTag, sp, "A doc comment cannot have more than one @inheritDoc tag")
			return end
		}
		ref := InlineRef{Tag: name, Span: sp, Valid: true}
		if content != "" {
			ref.Ref, ref.Valid = p.parseRef(content, sp)
		}
		p.c.InheritDoc = &ref
	case TagLink, TagLinkCode, TagLinkPlain:
		target, text, _ := strings.Cut(content, "|")
		target = strings.TrimSpace(target)
		if target != "" && !strings.Contains(target, "://") {
			ref := InlineRef{Tag: name, Span: sp, Text: strings.TrimSpace(text)}
			ref.Ref, ref.Valid = p.parseRef(target, sp)
			p.c.Links = append(p.c.Links, ref)
		}
		p.cur.WriteString(s[i:end])
	default:
		p.cur.WriteString(s[i:end])
	}
	return end
}

func (p *parser) parseRef(text string, sp source.Span) (Reference, bool) {
	ref, err := ParseReference(text)
	if err != nil {
		p.report(diag.TSDocMalformedReference, sp, fmt.Sprintf("The declaration reference %q is malformed: %v", text, err))
		return Reference{}, false
	}
	return ref, true
}

// blockTag обрабатывает "@tag" в начале слова: модификатор или начало блока.
func (p *parser) blockTag(i int) int {
	s := p.src
	end := tagNameEnd(s, i)
	name := s[i:end]
	sp := p.span(i, end)

	syntax, ok := p.opts.Config.lookup(name)
	switch {
	case !ok:
		p.report(diag.TSDocUndefinedTag, sp, fmt.Sprintf("The TSDoc tag %q is not defined in this configuration", name))
		p.cur.WriteString(name)
	case syntax == SyntaxInline:
		p.report(diag.TSDocMalformedInlineTag, sp, fmt.Sprintf("The TSDoc tag %q is an inline tag; it must be enclosed in \"{ }\" braces", name))
		p.cur.WriteString(name)
	case syntax == SyntaxModifier:
		p.c.Modifiers = append(p.c.Modifiers, Tag{Name: name, Span: sp})
	default:
		p.flush()
		p.curTag, p.curSpan = name, sp
		if name == TagDeprecated {
			p.c.HasDeprecated = true
		}
	}
	return end
}

// flush переносит накопленный текст в текущую секцию.
func (p *parser) flush() {
	raw := p.cur.String()
	p.cur.Reset()
	text := strings.TrimSpace(raw)
	switch p.curTag {
	case "":
		p.c.Summary = text
	case TagRemarks:
		p.c.Remarks = text
	case TagReturns:
		p.c.Returns = text
	case TagDeprecated:
		p.c.Deprecated = text
	case TagParam:
		if pb, ok := p.paramBlock(text); ok {
			p.c.Params = append(p.c.Params, pb)
		}
	case TagTypeParam:
		if pb, ok := p.paramBlock(text); ok {
			p.c.TypeParams = append(p.c.TypeParams, pb)
		}
	default:
		p.c.Blocks = append(p.c.Blocks, Block{Tag: p.curTag, Content: text})
	}
}

// paramBlock разбирает "name - description".
func (p *parser) paramBlock(text string) (ParamBlock, bool) {
	name, rest, _ := strings.Cut(text, " ")
	if nl := strings.IndexByte(name, '\n'); nl >= 0 {
		name, rest = name[:nl], name[nl+1:]+" "+rest
	}
	if !validParamName(name) {
		p.report(diag.TSDocParamTagInvalidName, p.curSpan,
			fmt.Sprintf("The %s block should be followed by a valid parameter name", p.curTag))
		return ParamBlock{}, false
	}
	rest = strings.TrimSpace(rest)
	if after, ok := strings.CutPrefix(rest, "-"); ok {
		rest = strings.TrimSpace(after)
	} else {
		p.report(diag.TSDocParamTagMissingHyphen, p.curSpan,
			fmt.Sprintf("The %s block should be followed by a parameter name and then a hyphen", p.curTag))
	}
	return ParamBlock{Name: name, Content: rest}, true
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if !isIdentifier(seg) {
			return false
		}
	}
	return true
}

func (p *parser) finish() {
	if p.c.InheritDoc != nil && p.c.Summary != "" {
		p.report(diag.TSDocInheritDocIncompatibleText, p.c.InheritDoc.Span,
			"The summary section must not have any content, because that content will be replaced by the @inheritDoc tag")
	}
	if p.c.HasDeprecated && p.c.Deprecated == "" {
		p.report(diag.TSDocMissingDeprecationMessage, p.c.Span,
			"The @deprecated block must include a deprecation message, e.g. describing the recommended alternative")
	}
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
