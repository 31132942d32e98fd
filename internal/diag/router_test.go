package diag

import (
	"testing"

	"apix/internal/source"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Log(level LogLevel, m Message) {
	l.lines = append(l.lines, level.String()+" "+m.String())
}

func TestPolicyFallsBackToCategoryDefault(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		id   MessageID
		want Rule
	}{
		{TSTokenExpected, Rule{LogLevel: LevelError}},
		{TSDocUndefinedTag, Rule{LogLevel: LevelWarning}},
		{AEExtraReleaseTag, Rule{LogLevel: LevelWarning}},
		{AEMissingReleaseTag, Rule{LogLevel: LevelWarning, AddToReport: true}},
		{AEUndocumented, Rule{LogLevel: LevelNone, AddToReport: true}},
	}
	for _, tt := range tests {
		if got := p.Rule(tt.id); got != tt.want {
			t.Errorf("Rule(%s) = %+v, want %+v", tt.id, got, tt.want)
		}
	}

	p.Set(AEExtraReleaseTag, Rule{LogLevel: LevelError})
	if got := p.Rule(AEExtraReleaseTag).LogLevel; got != LevelError {
		t.Fatalf("override not applied: %v", got)
	}
}

func TestRouterAssociatesReportMessages(t *testing.T) {
	fs := source.NewFileSetWithBase("/pkg")
	file := fs.AddVirtual("/pkg/index.d.ts", []byte("export declare class A {}\nexport declare class B {}\n"))
	log := &recordingLogger{}
	r := NewRouter(fs, nil, log)

	Report(r, AEMissingReleaseTag, source.Span{File: file, Start: 0, End: 6}, `"A" is missing a release tag`).WithAnchor(7).Emit()
	Report(r, AEMissingReleaseTag, source.Span{File: file, Start: 26, End: 32}, `"B" is missing a release tag`).Emit()
	Report(r, AEExtraReleaseTag, source.Span{File: file, Start: 26, End: 32}, "extra tag").WithAnchor(7).Emit()

	assoc := r.FetchAssociated(7)
	if len(assoc) != 1 || assoc[0].Line != 1 || assoc[0].Column != 1 {
		t.Fatalf("associated = %+v", assoc)
	}
	unassoc := r.FetchUnassociated()
	if len(unassoc) != 1 || unassoc[0].Line != 2 || unassoc[0].Path != "index.d.ts" {
		t.Fatalf("unassociated = %+v", unassoc)
	}

	r.Flush()
	if len(log.lines) != 1 || log.lines[0] != "warning index.d.ts:2:1 - (ae-extra-release-tag) extra tag" {
		t.Fatalf("logged = %q", log.lines)
	}
	if r.WarningCount() != 1 || r.ErrorCount() != 0 {
		t.Fatalf("counts = %d warnings, %d errors", r.WarningCount(), r.ErrorCount())
	}
}

func TestRouterNeverDeduplicates(t *testing.T) {
	r := NewRouter(nil, nil, nil)
	for range 3 {
		r.Report(TSDeclarationExpected, source.Span{}, "Declaration or statement expected.", NoAnchor, nil)
	}
	r.Flush()
	if got := len(r.ByID()[TSDeclarationExpected]); got != 3 {
		t.Fatalf("expected 3 occurrences, got %d", got)
	}
	if r.ErrorCount() != 3 {
		t.Fatalf("ErrorCount = %d", r.ErrorCount())
	}
	if got := len(r.ByCategory()[CategoryCompiler]); got != 3 {
		t.Fatalf("compiler bucket = %d", got)
	}
}

func TestConsoleMessagesAreLoggedImmediately(t *testing.T) {
	log := &recordingLogger{}
	r := NewRouter(nil, nil, log)
	r.LogConsole(LevelWarning, ConsoleAPIReportNotCopied, "report changed")
	if len(log.lines) != 1 || log.lines[0] != "warning report changed" {
		t.Fatalf("logged = %q", log.lines)
	}
	r.Flush()
	if len(log.lines) != 1 {
		t.Fatalf("console message logged twice")
	}
}

func TestFormatGolden(t *testing.T) {
	msgs := []Message{
		{Category: CategoryExtractor, ID: AEMissingReleaseTag, Text: "second\nline", Path: "b.d.ts", Line: 1, Column: 1},
		{Category: CategoryCompiler, ID: TSTokenExpected, Text: "';' expected.", Path: "a.d.ts", Line: 3, Column: 9},
	}
	want := "error TS1005 a.d.ts:3:9 ';' expected.\n" +
		"warning ae-missing-release-tag b.d.ts:1:1 second line"
	if got := FormatGolden(msgs, nil); got != want {
		t.Fatalf("unexpected golden output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestMessageIDCategory(t *testing.T) {
	tests := map[MessageID]Category{
		TSCommentNotClosed:        CategoryCompiler,
		TSDocMalformedInlineTag:   CategoryTSDoc,
		AECircularReexport:        CategoryExtractor,
		ConsoleAPIReportUnchanged: CategoryConsole,
	}
	for id, want := range tests {
		if got := id.Category(); got != want {
			t.Errorf("%s.Category() = %v, want %v", id, got, want)
		}
	}
}

func TestLoggedMessagesReplay(t *testing.T) {
	first := NewRouter(nil, nil, nil)
	first.AddMessage(Message{Category: CategoryExtractor, ID: AEUnresolvedModule, Text: "gone"}, NoAnchor)
	first.AddMessage(Message{Category: CategoryExtractor, ID: AEUndocumented, Text: "quiet"}, NoAnchor)
	first.Flush()
	logged := first.Logged()
	if len(logged) != 1 || logged[0].Level != LevelWarning {
		t.Fatalf("logged = %+v", logged)
	}

	log := &recordingLogger{}
	second := NewRouter(nil, nil, log)
	for _, lm := range logged {
		second.Replay(lm)
	}
	second.Flush()
	if len(log.lines) != 1 || log.lines[0] != "warning (ae-unresolved-module) gone" {
		t.Fatalf("replayed = %q", log.lines)
	}
	if second.WarningCount() != 1 {
		t.Errorf("warning count %d", second.WarningCount())
	}
}
