package emit

import "strings"

// Writer accumulates generated output. Indentation is applied at the start of
// every line written through it, including lines inside multi-line strings.
type Writer struct {
	buf         []byte
	indent      string
	indentLevel int
	atLineStart bool
}

// NewWriter creates a writer indenting with the given unit (for example four spaces).
func NewWriter(indent string) *Writer {
	return &Writer{indent: indent, atLineStart: true}
}

func (w *Writer) String() string { return string(w.buf) }

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	for range w.indentLevel {
		w.buf = append(w.buf, w.indent...)
	}
	w.atLineStart = false
}

// WriteString writes s; each non-empty line is indented.
func (w *Writer) WriteString(s string) {
	for s != "" {
		line, rest, nl := strings.Cut(s, "\n")
		if line != "" {
			w.writeIndent()
			w.buf = append(w.buf, line...)
		}
		if nl {
			w.buf = append(w.buf, '\n')
			w.atLineStart = true
		}
		s = rest
	}
}

// WriteLine writes s followed by a newline.
func (w *Writer) WriteLine(s string) {
	w.WriteString(s)
	w.buf = append(w.buf, '\n')
	w.atLineStart = true
}

// EnsureNewline writes a newline unless the output is empty or already ends with one.
func (w *Writer) EnsureNewline() {
	if len(w.buf) > 0 && w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = true
}

// EnsureBlankLine ends the current line and adds one empty line unless there is one already.
func (w *Writer) EnsureBlankLine() {
	w.EnsureNewline()
	if len(w.buf) == 0 {
		return
	}
	if len(w.buf) < 2 || w.buf[len(w.buf)-2] != '\n' {
		w.buf = append(w.buf, '\n')
	}
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() { w.indentLevel++ }

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
