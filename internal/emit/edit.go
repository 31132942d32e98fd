package emit

import (
	"fmt"
	"sort"
	"strings"

	"apix/internal/source"
)

// Edit replaces the bytes of Span with NewText. An empty span inserts.
type Edit struct {
	Span    source.Span
	NewText string
}

// applyEdits returns the text of region with edits applied. Edits must lie
// inside region and must not overlap; identical duplicates are applied once.
func applyEdits(content []byte, region source.Span, edits []Edit) (string, error) {
	if int(region.End) > len(content) || region.Start > region.End {
		return "", fmt.Errorf("region %s out of range", region)
	}
	sorted := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if e.Span.Start < region.Start || e.Span.End > region.End || e.Span.Start > e.Span.End {
			return "", fmt.Errorf("edit %s outside of region %s", e.Span, region)
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.End < sorted[j].Span.End
	})

	var b strings.Builder
	b.Grow(int(region.Len()))
	pos := region.Start
	var prev *Edit
	for i := range sorted {
		e := &sorted[i]
		if prev != nil {
			if *prev == *e {
				continue
			}
			if spansConflict(*prev, *e) {
				return "", fmt.Errorf("edits %s and %s overlap", prev.Span, e.Span)
			}
		}
		b.Write(content[pos:e.Span.Start])
		b.WriteString(e.NewText)
		pos = e.Span.End
		prev = e
	}
	b.Write(content[pos:region.End])
	return b.String(), nil
}

// spansConflict reports whether two edits touch the same bytes. Spans are
// half-open; two insertions never conflict, an insertion conflicts with a
// replacement that strictly contains its position.
func spansConflict(a, b Edit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// trimBefore moves start back over spaces and tabs.
func trimBefore(content []byte, start uint32) uint32 {
	for start > 0 && (content[start-1] == ' ' || content[start-1] == '\t') {
		start--
	}
	return start
}

// trimAfter moves end forward over spaces and tabs.
func trimAfter(content []byte, end uint32) uint32 {
	for int(end) < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return end
}

// indentOf returns the whitespace between the start of the line holding off and off.
func indentOf(content []byte, off uint32) string {
	start := off
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	for i := start; i < off; i++ {
		if content[i] != ' ' && content[i] != '\t' {
			return ""
		}
	}
	return string(content[start:off])
}

// lineIndent returns the leading whitespace of the line holding off.
func lineIndent(content []byte, off uint32) string {
	start := off
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end := start
	for int(end) < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return string(content[start:end])
}

// reindent prefixes every non-empty line of text but the first with indent.
func reindent(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
