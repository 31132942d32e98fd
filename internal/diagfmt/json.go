package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"apix/internal/diag"
)

// JSONMessage is one entry of the machine-readable message listing.
type JSONMessage struct {
	diag.Message
	Level diag.LogLevel `json:"logLevel"`
}

// JSONOutput is the top-level document written by WriteJSON.
type JSONOutput struct {
	ErrorCount   int           `json:"errorCount"`
	WarningCount int           `json:"warningCount"`
	Messages     []JSONMessage `json:"messages"`
}

// Collector is a diag.Logger that keeps every logged message for later output.
type Collector struct {
	out JSONOutput
}

var _ diag.Logger = (*Collector)(nil)

// Log implements diag.Logger.
func (c *Collector) Log(level diag.LogLevel, m diag.Message) {
	if level == diag.LevelNone {
		return
	}
	switch level {
	case diag.LevelError:
		c.out.ErrorCount++
	case diag.LevelWarning:
		c.out.WarningCount++
	}
	c.out.Messages = append(c.out.Messages, JSONMessage{Message: m, Level: level})
}

// Messages returns the collected messages in logging order.
func (c *Collector) Messages() []JSONMessage {
	return c.out.Messages
}

// WriteJSON writes the collected messages as an indented JSON document.
func (c *Collector) WriteJSON(w io.Writer) error {
	out := c.out
	if out.Messages == nil {
		out.Messages = []JSONMessage{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	return nil
}

// Tee fans a message out to several loggers.
type Tee []diag.Logger

// Log implements diag.Logger.
func (t Tee) Log(level diag.LogLevel, m diag.Message) {
	for _, l := range t {
		if l != nil {
			l.Log(level, m)
		}
	}
}
