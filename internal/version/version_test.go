package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if ToolName != "apix" {
		t.Errorf("ToolName = %q", ToolName)
	}
}

func TestColored_PlainWithoutColor(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Errorf("Colored() with %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	origV, origC, origD, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	defer func() { Version, GitCommit, BuildDate, color.NoColor = origV, origC, origD, origNoColor }()
	color.NoColor = true

	Version, GitCommit, BuildDate = "1.2.3", "", ""
	if got := Summary(); got != "apix 1.2.3" {
		t.Errorf("Summary() = %q", got)
	}

	GitCommit, BuildDate = "abc123", "2024-01-15"
	got := Summary()
	if !strings.Contains(got, "(abc123)") || !strings.HasSuffix(got, "built 2024-01-15") {
		t.Errorf("Summary() = %q", got)
	}
}
