package diag

import "fmt"

// LogLevel defines how a routed message is logged. Ordered by importance.
type LogLevel uint8

const (
	// LevelNone suppresses the message entirely.
	LevelNone LogLevel = iota
	LevelVerbose
	LevelInfo
	LevelWarning
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelVerbose:
		return "verbose"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLogLevel parses a log level as written in configuration files.
func ParseLogLevel(s string) (LogLevel, error) {
	switch s {
	case "none":
		return LevelNone, nil
	case "verbose":
		return LevelVerbose, nil
	case "info":
		return LevelInfo, nil
	case "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelNone, fmt.Errorf("unknown log level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; used by the TOML config decoder.
func (l *LogLevel) UnmarshalText(text []byte) error {
	v, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
