package diagfmt

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"apix/internal/diag"
	"apix/internal/source"
)

// Console is a diag.Logger that prints one message per line:
//
//	Warning: src/index.ts:3:1 - (ae-forgotten-export) The symbol ...
//
// Console messages print their text only.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	fs   *source.FileSet
	// own is true when fs was created to read excerpts from disk
	own  bool
	root string
	opts ConsoleOpts
	// Min is the least severe level printed; LevelVerbose prints everything.
	Min diag.LogLevel

	errStyle  *color.Color
	warnStyle *color.Color
	dimStyle  *color.Color
}

// NewConsole creates a logger writing to w. fs may be nil when Context is off.
func NewConsole(w io.Writer, fs *source.FileSet, opts ConsoleOpts) *Console {
	c := &Console{
		w:         w,
		fs:        fs,
		opts:      opts,
		Min:       diag.LevelInfo,
		errStyle:  color.New(color.FgRed, color.Bold),
		warnStyle: color.New(color.FgYellow, color.Bold),
		dimStyle:  color.New(color.FgHiBlack),
	}
	for _, s := range []*color.Color{c.errStyle, c.warnStyle, c.dimStyle} {
		if opts.Color {
			s.EnableColor()
		} else {
			s.DisableColor()
		}
	}
	return c
}

var _ diag.Logger = (*Console)(nil)

// SetRoot lets a console without a FileSet read excerpts from disk; message
// paths are relative to root.
func (c *Console) SetRoot(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
}

// Log implements diag.Logger.
func (c *Console) Log(level diag.LogLevel, m diag.Message) {
	if level == diag.LevelNone || level < c.Min {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.format(level, m)
	_, _ = fmt.Fprintln(c.w, line) //nolint:errcheck
	if c.opts.Context && m.HasLocation() {
		if excerpt := c.excerpt(m); excerpt != "" {
			_, _ = io.WriteString(c.w, excerpt) //nolint:errcheck
		}
	}
}

func (c *Console) format(level diag.LogLevel, m diag.Message) string {
	if m.Category == diag.CategoryConsole {
		return m.Text
	}
	m.Path = c.displayPath(m.Path)
	switch level {
	case diag.LevelError:
		return c.errStyle.Sprint("Error:") + " " + m.String()
	case diag.LevelWarning:
		return c.warnStyle.Sprint("Warning:") + " " + m.String()
	case diag.LevelVerbose:
		return c.dimStyle.Sprint(m.String())
	}
	return m.String()
}

func (c *Console) displayPath(p string) string {
	if p == "" {
		return p
	}
	switch c.opts.PathMode {
	case PathModeBasename:
		return path.Base(p)
	case PathModeAbsolute:
		if c.fs != nil && !filepath.IsAbs(p) && c.fs.BaseDir() != "" {
			return filepath.ToSlash(filepath.Join(c.fs.BaseDir(), p))
		}
	}
	return p
}

// excerpt renders the message's source line with a caret under its column.
func (c *Console) excerpt(m diag.Message) string {
	f := c.lookup(m.Path)
	if f == nil || m.Line == 0 {
		return ""
	}
	text := strings.TrimRight(f.GetLine(m.Line), "\r\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	col := int(m.Column)
	if col < 1 {
		col = 1
	}
	prefix := f.GetLine(m.Line)
	if col-1 <= len(prefix) {
		prefix = strings.ReplaceAll(prefix[:col-1], "\t", "    ")
	}
	pad := runewidth.StringWidth(prefix)
	if c.opts.Width > 0 && runewidth.StringWidth(text) > c.opts.Width {
		text = runewidth.Truncate(text, c.opts.Width, "...")
	}
	gutter := fmt.Sprintf("%5d | ", m.Line)
	var b strings.Builder
	b.WriteString(c.dimStyle.Sprint(gutter))
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", len(gutter)+pad))
	b.WriteString(c.warnStyle.Sprint("^"))
	b.WriteString("\n")
	return b.String()
}

func (c *Console) lookup(p string) *source.File {
	if c.fs == nil {
		if c.root == "" {
			return nil
		}
		c.fs = source.NewFileSetWithBase(c.root)
		c.own = true
	}
	if !filepath.IsAbs(p) && c.fs.BaseDir() != "" {
		p = filepath.Join(c.fs.BaseDir(), p)
	}
	id, ok := c.fs.Lookup(p)
	if !ok {
		if !c.own {
			return nil
		}
		loaded, err := c.fs.Load(p)
		if err != nil {
			return nil
		}
		id = loaded
	}
	return c.fs.Get(id)
}
