package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apix/internal/diag"
	"apix/internal/releasetag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindWalksParents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "[project]\nentryPoint = \"x.d.ts\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Errorf("found %s", path)
	}
}

func TestLoadExpandsTokensAndDefaults(t *testing.T) {
	t.Setenv(EnvLocalBuild, "")
	t.Setenv(EnvReportFolder, "")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": "@scope/widgets", "version": "1.2.3"}`)
	writeFile(t, filepath.Join(root, FileName), `[project]
entryPoint = "<projectFolder>/lib/index.d.ts"

[dtsRollup]
enabled = true
publicTrimmedFilePath = "dist/<packageName>-public.d.ts"
`)

	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PackageName != "@scope/widgets" || cfg.PackageVersion != "1.2.3" {
		t.Errorf("package = %q %q", cfg.PackageName, cfg.PackageVersion)
	}
	checks := []struct{ got, want string }{
		{cfg.Project.EntryPoint, filepath.Join(root, "lib", "index.d.ts")},
		{cfg.ReportPath(), filepath.Join(root, "etc", "widgets.api.md")},
		{cfg.ReportTempPath(), filepath.Join(root, "temp", "widgets.api.md")},
		{cfg.DtsRollup.UntrimmedFilePath, filepath.Join(root, "dist", "widgets.d.ts")},
		{cfg.DtsRollup.PublicTrimmedFilePath, filepath.Join(root, "dist", "@scope", "widgets-public.d.ts")},
		{cfg.DocModel.APIJSONFilePath, filepath.Join(root, "temp", "widgets.api.json")},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("got %s, want %s", c.got, c.want)
		}
	}
	if !cfg.APIReport.IsEnabled() || cfg.DocModel.Enabled || cfg.LocalBuild {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing project", "[apiReport]\nenabled = true\n", "missing [project]"},
		{"missing entry", "[project]\nname = \"x\"\n", "missing [project].entryPoint"},
		{"unknown key", "[project]\nentryPoint = \"a.d.ts\"\nname = \"x\"\nbogus = 1\n", "unknown key"},
		{"no name", "[project]\nentryPoint = \"a.d.ts\"\n", "no package name"},
		{"bad level", "[project]\nentryPoint = \"a.d.ts\"\nname = \"x\"\n[messages.extractor.ae-undocumented]\nlogLevel = \"loud\"\n", "unknown log level"},
		{"wrong category", "[project]\nentryPoint = \"a.d.ts\"\nname = \"x\"\n[messages.tsdoc.ae-undocumented]\nlogLevel = \"error\"\n", "cannot configure"},
		{"bad threshold", "[project]\nentryPoint = \"a.d.ts\"\nname = \"x\"\n[docModel]\nreleaseTagThreshold = \"gold\"\n", "releaseTagThreshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, FileName), tt.content)
			_, err := Load(filepath.Join(root, FileName))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvLocalBuild, "")
	t.Setenv(EnvReportFolder, "")
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "[project]\nentryPoint = \"a.d.ts\"\nname = \"pkg\"\n")
	writeFile(t, filepath.Join(root, ".env"), "APIX_REPORT_FOLDER=<projectFolder>/review\n")
	t.Setenv(EnvLocalBuild, "true")

	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.LocalBuild {
		t.Error("APIX_LOCAL_BUILD not applied")
	}
	if want := filepath.Join(root, "review", "pkg.api.md"); cfg.ReportPath() != want {
		t.Errorf("report path %s, want %s", cfg.ReportPath(), want)
	}
}

func TestDotEnvStaysWithItsProject(t *testing.T) {
	t.Setenv(EnvLocalBuild, "")
	t.Setenv(EnvReportFolder, "")
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, FileName), "[project]\nentryPoint = \"a.d.ts\"\nname = \"a\"\n")
	writeFile(t, filepath.Join(a, ".env"), "APIX_REPORT_FOLDER=<projectFolder>/reviewA\nAPIX_LOCAL_BUILD=true\n")
	writeFile(t, filepath.Join(b, FileName), "[project]\nentryPoint = \"b.d.ts\"\nname = \"b\"\n")

	cfgA, err := Load(filepath.Join(a, FileName))
	if err != nil {
		t.Fatal(err)
	}
	cfgB, err := Load(filepath.Join(b, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(a, "reviewA", "a.api.md"); cfgA.ReportPath() != want || !cfgA.LocalBuild {
		t.Errorf("a: report %s local=%v, want %s local=true", cfgA.ReportPath(), cfgA.LocalBuild, want)
	}
	if want := filepath.Join(b, "etc", "b.api.md"); cfgB.ReportPath() != want || cfgB.LocalBuild {
		t.Errorf("b: report %s local=%v, want %s local=false", cfgB.ReportPath(), cfgB.LocalBuild, want)
	}
	if v := os.Getenv(EnvReportFolder); v != "" {
		t.Errorf("process environment changed: %s=%q", EnvReportFolder, v)
	}

	// .env проекта сильнее унаследованного окружения
	t.Setenv(EnvReportFolder, filepath.Join(b, "fromEnv"))
	writeFile(t, filepath.Join(b, ".env"), "APIX_REPORT_FOLDER=<projectFolder>/reviewB\n")
	cfgB, err = Load(filepath.Join(b, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(b, "reviewB", "b.api.md"); cfgB.ReportPath() != want {
		t.Errorf("b with .env: report %s, want %s", cfgB.ReportPath(), want)
	}
}

func TestPolicyOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.Messages.Extractor = map[string]MessageRule{
		"default":             {LogLevel: levelPtr(diag.LevelError)},
		"ae-forgotten-export": {LogLevel: levelPtr(diag.LevelNone)},
	}
	cfg.Messages.TSDoc = map[string]MessageRule{
		"tsdoc-undefined-tag": {AddToReport: boolPtr(true)},
	}
	p, err := cfg.Policy()
	if err != nil {
		t.Fatal(err)
	}
	if r := p.Rule(diag.AEForgottenExport); r.LogLevel != diag.LevelNone || !r.AddToReport {
		t.Errorf("forgotten export rule %+v", r)
	}
	if r := p.Rule(diag.AEUnresolvedModule); r.LogLevel != diag.LevelError {
		t.Errorf("default rule %+v", r)
	}
	if r := p.Rule(diag.TSDocUndefinedTag); r.LogLevel != diag.LevelWarning || !r.AddToReport {
		t.Errorf("tsdoc rule %+v", r)
	}
}

func TestDocModelThreshold(t *testing.T) {
	cfg := &Config{DocModel: DocModelConfig{ReleaseTagThreshold: "beta"}}
	tag, err := cfg.DocModelThreshold()
	if err != nil || tag != releasetag.Beta {
		t.Fatalf("tag=%v err=%v", tag, err)
	}
}

func TestUnscopedName(t *testing.T) {
	for in, want := range map[string]string{"@a/b": "b", "plain": "plain", "@odd": "@odd"} {
		if got := UnscopedName(in); got != want {
			t.Errorf("UnscopedName(%q) = %q", in, got)
		}
	}
}

func TestWriteTemplateLoads(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": "tmpl"}`)
	path, err := WriteTemplate(root, "<projectFolder>/lib/index.d.ts")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WriteTemplate(root, ""); err == nil {
		t.Error("second WriteTemplate should fail")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project.EntryPoint != filepath.Join(root, "lib", "index.d.ts") || cfg.PackageName != "tmpl" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func levelPtr(l diag.LogLevel) *diag.LogLevel { return &l }
func boolPtr(b bool) *bool                    { return &b }
