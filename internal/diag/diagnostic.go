package diag

import (
	"fmt"

	"apix/internal/source"
)

// Anchor is an opaque key of the declaration a diagnostic belongs to.
type Anchor uint32

// NoAnchor marks diagnostics that are not associated with a declaration.
const NoAnchor Anchor = 0

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is the raw record emitted by producers.
type Diagnostic struct {
	ID      MessageID
	Message string
	Primary source.Span
	Anchor  Anchor
	Notes   []Note
}

// Message is a routed diagnostic with its location resolved. Immutable once constructed.
type Message struct {
	Category Category  `msgpack:"category" json:"category"`
	ID       MessageID `msgpack:"id" json:"messageId"`
	Text     string    `msgpack:"text" json:"text"`
	Path     string    `msgpack:"path,omitempty" json:"sourceFilePath,omitempty"`
	Line     uint32    `msgpack:"line,omitempty" json:"sourceFileLine,omitempty"`
	Column   uint32    `msgpack:"column,omitempty" json:"sourceFileColumn,omitempty"`
}

// HasLocation reports whether the message points into a source file.
func (m Message) HasLocation() bool { return m.Path != "" }

// FormatWithoutLocation renders "(id) text", the form used in API reports.
func (m Message) FormatWithoutLocation() string {
	if m.Category == CategoryConsole {
		return m.Text
	}
	return fmt.Sprintf("(%s) %s", m.ID, m.Text)
}

func (m Message) String() string {
	if !m.HasLocation() {
		return m.FormatWithoutLocation()
	}
	return fmt.Sprintf("%s:%d:%d - %s", m.Path, m.Line, m.Column, m.FormatWithoutLocation())
}
