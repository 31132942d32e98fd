package trace

import (
	"io"
	"sync"
)

// StreamTracer writes every event as soon as it is emitted.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	first  bool
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{w: w, level: level, format: format, first: true}
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n") //nolint:errcheck
	}
	return t
}

// Emit writes ev. Write errors are dropped: tracing never fails a run.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)
	if t.format == FormatChrome {
		if !t.first {
			_, _ = io.WriteString(t.w, ",\n") //nolint:errcheck
		}
		t.first = false
	}
	_, _ = t.w.Write(data) //nolint:errcheck
}

func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	if s, ok := t.w.(interface{ Sync() error }); ok {
		_ = s.Sync() //nolint:errcheck // stderr and pipes do not support fsync
	}
	return nil
}

// Close terminates the Chrome array and closes the writer when it is a file.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		_, _ = io.WriteString(t.w, "\n]}\n") //nolint:errcheck
	}
	t.mu.Unlock()
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
