package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole command: one run or one batch.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one pipeline stage: load, analyze, collect, emit.
	ScopePass
	// ScopePackage covers one package of a batch.
	ScopePackage
	// ScopeDetail covers anything finer, like single output files.
	ScopeDetail
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopePackage:
		return "package"
	case ScopeDetail:
		return "detail"
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	GID      uint64
	Name     string // "analyze", "package:@scope/name", ...
	Detail   string
	Extra    map[string]string
}

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase  // driver + pass
	LevelDetail // + packages
	LevelDebug  // everything
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	}
	return "unknown"
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for l := LevelOff; l <= LevelDebug; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass this level.
// LevelError keeps nothing in the stream; only crash dumps of the ring use it.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopePackage
	case LevelDebug:
		return true
	}
	return false
}
