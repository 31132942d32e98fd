package diagfmt

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apix/internal/diag"
	"apix/internal/source"
)

func forgotten() diag.Message {
	return diag.Message{
		Category: diag.CategoryExtractor,
		ID:       "ae-forgotten-export",
		Text:     `The symbol "X" needs to be exported by the entry point index.d.ts`,
		Path:     "src/index.d.ts",
		Line:     2,
		Column:   5,
	}
}

func TestConsoleFormatsLevels(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, nil, ConsoleOpts{})
	c.Log(diag.LevelWarning, forgotten())
	c.Log(diag.LevelVerbose, forgotten())
	c.Log(diag.LevelNone, forgotten())
	c.Log(diag.LevelInfo, diag.Message{Category: diag.CategoryConsole, ID: "console-api-report-copied", Text: "copied"})

	want := "Warning: src/index.d.ts:2:5 - (ae-forgotten-export) The symbol \"X\" needs to be exported by the entry point index.d.ts\n" +
		"copied\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestConsoleContextCaret(t *testing.T) {
	fs := source.NewFileSetWithBase("/pkg")
	fs.AddVirtual("/pkg/src/index.d.ts", []byte("// header\n    foo: X;\n"))

	var buf bytes.Buffer
	c := NewConsole(&buf, fs, ConsoleOpts{Context: true})
	c.Log(diag.LevelError, forgotten())

	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected excerpt, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "Error: ") {
		t.Errorf("missing level prefix: %q", lines[0])
	}
	if lines[1] != "    2 |     foo: X;" {
		t.Errorf("unexpected source line %q", lines[1])
	}
	if idx := strings.Index(lines[2], "^"); idx != len("    2 | ")+4 {
		t.Errorf("caret at %d in %q", idx, lines[2])
	}
}

func TestConsoleBasenamePaths(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, nil, ConsoleOpts{PathMode: PathModeBasename})
	c.Log(diag.LevelWarning, forgotten())
	if !strings.Contains(buf.String(), " index.d.ts:2:5 - ") {
		t.Fatalf("basename not applied: %q", buf.String())
	}
}

func TestCollectorJSON(t *testing.T) {
	var col Collector
	col.Log(diag.LevelWarning, forgotten())
	col.Log(diag.LevelError, diag.Message{Category: diag.CategoryCompiler, ID: "TS1005", Text: "';' expected."})
	col.Log(diag.LevelNone, forgotten())

	var buf bytes.Buffer
	if err := col.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var out struct {
		ErrorCount   int `json:"errorCount"`
		WarningCount int `json:"warningCount"`
		Messages     []map[string]any
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.ErrorCount != 1 || out.WarningCount != 1 || len(out.Messages) != 2 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	if out.Messages[0]["messageId"] != "ae-forgotten-export" || out.Messages[0]["logLevel"] != "warning" {
		t.Errorf("unexpected first message %v", out.Messages[0])
	}
}

func TestCollectorSarif(t *testing.T) {
	var col Collector
	col.Log(diag.LevelWarning, forgotten())
	col.Log(diag.LevelInfo, diag.Message{Category: diag.CategoryConsole, ID: "console-preamble", Text: "hi"})

	var buf bytes.Buffer
	if err := col.WriteSarif(&buf, SarifRunMeta{ToolName: "apix", ToolVersion: "1.0.0", InvocationArgs: []string{"run"}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatal(err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("bad log %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 1 || run.Results[0].RuleID != "ae-forgotten-export" || run.Results[0].Level != "warning" {
		t.Fatalf("bad results %+v", run.Results)
	}
	region := run.Results[0].Locations[0].PhysicalLocation.Region
	if region == nil || region.StartLine != 2 || region.StartColumn != 5 {
		t.Errorf("bad region %+v", region)
	}
	if len(run.Tool.Driver.Rules) != 1 || !run.Invocations[0].ExecutionSuccessful {
		t.Errorf("bad run metadata %+v", run)
	}
}

func TestTee(t *testing.T) {
	var a, b Collector
	Tee{&a, nil, &b}.Log(diag.LevelWarning, forgotten())
	if len(a.Messages()) != 1 || len(b.Messages()) != 1 {
		t.Fatal("tee did not fan out")
	}
}

func TestConsoleReadsExcerptFromDisk(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "index.d.ts"), []byte("// header\n    foo: X;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	c := NewConsole(&buf, nil, ConsoleOpts{Context: true})
	c.SetRoot(root)
	c.Log(diag.LevelWarning, forgotten())
	if !strings.Contains(buf.String(), "    2 |     foo: X;\n") {
		t.Fatalf("missing excerpt: %q", buf.String())
	}
}
