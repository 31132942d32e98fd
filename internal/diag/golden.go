package diag

import (
	"fmt"
	"strings"
)

// FormatGolden renders messages into a stable, single-line-per-entry
// representation suitable for golden files: "<level> <id> <path>:<line>:<col> <text>".
// Messages are sorted by location; the policy supplies the level label.
func FormatGolden(messages []Message, policy *Policy) string {
	if len(messages) == 0 {
		return ""
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	sorted := append([]Message(nil), messages...)
	SortMessages(sorted)

	var b strings.Builder
	for i, m := range sorted {
		level := policy.Rule(m.ID).LogLevel
		loc := "-"
		if m.HasLocation() {
			loc = fmt.Sprintf("%s:%d:%d", m.Path, m.Line, m.Column)
		}
		fmt.Fprintf(&b, "%s %s %s %s", level, m.ID, loc, sanitizeMessage(m.Text))
		if i < len(sorted)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
