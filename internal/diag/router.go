package diag

import (
	"sort"

	"apix/internal/source"
)

// Logger receives the messages that end up on the console.
type Logger interface {
	Log(level LogLevel, m Message)
}

type routed struct {
	msg      Message
	level    LogLevel
	toReport bool
	anchor   Anchor
	handled  bool
}

// Router is the per-run message collector. It implements Reporter.
type Router struct {
	files   *source.FileSet
	policy  *Policy
	logger  Logger
	entries []routed
	// declaration -> indices of report-bound messages
	byAnchor map[Anchor][]int

	logged []LoggedMessage

	errorCount   int
	warningCount int
}

// LoggedMessage is a message that reached the logger, with the level it was logged at.
type LoggedMessage struct {
	Level   LogLevel `msgpack:"level" json:"logLevel"`
	Message Message  `msgpack:"message" json:"message"`
}

// NewRouter creates a router; a nil policy means DefaultPolicy, a nil logger drops console output.
func NewRouter(files *source.FileSet, policy *Policy, logger Logger) *Router {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Router{
		files:    files,
		policy:   policy,
		logger:   logger,
		byAnchor: make(map[Anchor][]int),
	}
}

// Report implements Reporter.
func (r *Router) Report(id MessageID, primary source.Span, msg string, anchor Anchor, _ []Note) {
	m := Message{
		Category: id.Category(),
		ID:       id,
		Text:     msg,
	}
	if f := r.files.Get(primary.File); f != nil {
		pos := r.files.Position(primary)
		m.Path, m.Line, m.Column = pos.Path, pos.Line, pos.Col
	}
	rule := r.policy.Rule(id)
	r.add(routed{
		msg:      m,
		level:    rule.LogLevel,
		toReport: rule.AddToReport && m.Category != CategoryConsole,
		anchor:   anchor,
	})
}

// AddMessage routes an already resolved message (for example one restored from the cache).
func (r *Router) AddMessage(m Message, anchor Anchor) {
	rule := r.policy.Rule(m.ID)
	r.add(routed{msg: m, level: rule.LogLevel, toReport: rule.AddToReport && m.Category != CategoryConsole, anchor: anchor})
}

func (r *Router) add(e routed) {
	idx := len(r.entries)
	r.entries = append(r.entries, e)
	if e.toReport && e.anchor != NoAnchor {
		r.byAnchor[e.anchor] = append(r.byAnchor[e.anchor], idx)
	}
}

// LogConsole logs a console message immediately at the given level.
func (r *Router) LogConsole(level LogLevel, id MessageID, text string) {
	e := routed{
		msg:     Message{Category: CategoryConsole, ID: id, Text: text},
		level:   level,
		handled: true,
	}
	r.entries = append(r.entries, e)
	r.log(e)
}

func (r *Router) log(e routed) {
	switch e.level {
	case LevelNone:
		return
	case LevelError:
		r.errorCount++
	case LevelWarning:
		r.warningCount++
	}
	r.logged = append(r.logged, LoggedMessage{Level: e.level, Message: e.msg})
	if r.logger != nil {
		r.logger.Log(e.level, e.msg)
	}
}

// FetchAssociated returns the report-bound messages anchored to a declaration and marks them handled.
func (r *Router) FetchAssociated(anchor Anchor) []Message {
	idxs := r.byAnchor[anchor]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Message, 0, len(idxs))
	for _, i := range idxs {
		r.entries[i].handled = true
		out = append(out, r.entries[i].msg)
	}
	return out
}

// FetchUnassociated returns report-bound messages without an anchor, sorted by location,
// and marks them handled.
func (r *Router) FetchUnassociated() []Message {
	var out []Message
	for i := range r.entries {
		e := &r.entries[i]
		if !e.toReport || e.anchor != NoAnchor || e.handled {
			continue
		}
		e.handled = true
		out = append(out, e.msg)
	}
	SortMessages(out)
	return out
}

// Flush logs every message that was not written into a report.
func (r *Router) Flush() {
	for i := range r.entries {
		e := &r.entries[i]
		if e.handled {
			continue
		}
		e.handled = true
		r.log(*e)
	}
}

// Logged returns the messages logged so far, in logging order.
func (r *Router) Logged() []LoggedMessage {
	return append([]LoggedMessage(nil), r.logged...)
}

// Replay logs a message recorded by an earlier run at its original level.
func (r *Router) Replay(lm LoggedMessage) {
	e := routed{msg: lm.Message, level: lm.Level, handled: true}
	r.entries = append(r.entries, e)
	r.log(e)
}

// Messages returns every message in emission order.
func (r *Router) Messages() []Message {
	out := make([]Message, 0, len(r.entries))
	for i := range r.entries {
		out = append(out, r.entries[i].msg)
	}
	return out
}

// ByCategory groups messages by category, preserving emission order.
func (r *Router) ByCategory() map[Category][]Message {
	out := make(map[Category][]Message)
	for i := range r.entries {
		m := r.entries[i].msg
		out[m.Category] = append(out[m.Category], m)
	}
	return out
}

// ByID groups messages by message ID, preserving emission order.
func (r *Router) ByID() map[MessageID][]Message {
	out := make(map[MessageID][]Message)
	for i := range r.entries {
		m := r.entries[i].msg
		out[m.ID] = append(out[m.ID], m)
	}
	return out
}

// ErrorCount reports how many messages were logged at error level.
func (r *Router) ErrorCount() int { return r.errorCount }

// WarningCount reports how many messages were logged at warning level.
func (r *Router) WarningCount() int { return r.warningCount }

// SortMessages orders messages by path, line, column, then text.
func SortMessages(ms []Message) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.FormatWithoutLocation() < b.FormatWithoutLocation()
	})
}
