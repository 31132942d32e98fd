// Package diagfmt renders routed diagnostics messages: colored console lines
// with a source excerpt, a JSON listing and SARIF 2.1.0.
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps the path the router resolved (relative to the project).
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeBasename
)

// ConsoleOpts configures the console logger.
type ConsoleOpts struct {
	Color bool
	// Context prints the source line and a caret under the column.
	Context  bool
	PathMode PathMode
	// Width truncates source excerpts; 0 means unlimited.
	Width int
}

// SarifRunMeta provides tool metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
