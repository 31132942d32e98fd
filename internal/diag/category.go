package diag

import "fmt"

// Category groups messages by origin; it selects the policy bucket.
type Category uint8

const (
	// CategoryCompiler holds syntax errors reported by the declaration-file front end.
	CategoryCompiler Category = iota
	// CategoryTSDoc holds malformed doc comment syntax.
	CategoryTSDoc
	// CategoryExtractor holds analyzer findings (ae-*).
	CategoryExtractor
	// CategoryConsole holds driver status messages.
	CategoryConsole
)

func (c Category) String() string {
	switch c {
	case CategoryCompiler:
		return "compiler"
	case CategoryTSDoc:
		return "tsdoc"
	case CategoryExtractor:
		return "extractor"
	case CategoryConsole:
		return "console"
	}
	return "unknown"
}

// ParseCategory parses the textual category name used in configuration files.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "compiler":
		return CategoryCompiler, nil
	case "tsdoc":
		return CategoryTSDoc, nil
	case "extractor":
		return CategoryExtractor, nil
	case "console":
		return CategoryConsole, nil
	}
	return 0, fmt.Errorf("unknown message category %q", s)
}
