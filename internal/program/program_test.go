package program_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/source"
)

func buildVirtual(t *testing.T, files map[string]string, entry string) (*program.Program, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSetWithBase("/pkg")
	for path, content := range files {
		fs.AddVirtual(path, []byte(content))
	}
	bag := diag.NewBag(32)
	p, err := program.Build(context.Background(), fs, entry, program.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p, bag
}

func TestBindExportsAndScopes(t *testing.T) {
	p, bag := buildVirtual(t, map[string]string{
		"/pkg/index.d.ts": `import { Helper } from "./helper";
import type { Ext } from "external-pkg";
export { Helper };
export * from "./star";
export * as ns from "./star";
export { A as B } from "./helper";
export declare function f(x: Ext): Helper;
export declare function f(): void;
export declare namespace N { const a: number; }
declare global { interface GlobalThing {} }
export default class {}
`,
		"/pkg/helper.d.ts": "export declare class Helper {}\nexport interface A {}\n",
		"/pkg/star.d.ts":   "export declare const s: string;\n",
	}, "/pkg/index.d.ts")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.IDs())
	}
	if got := len(p.Modules()); got != 3 {
		t.Fatalf("modules = %d, want 3", got)
	}
	entry := p.Entry()

	want := []struct {
		kind program.ExportKind
		name string
	}{
		{program.ExportLocal, "Helper"},
		{program.ExportStar, ""},
		{program.ExportStarAs, "ns"},
		{program.ExportFrom, "B"},
		{program.ExportLocal, "f"},
		{program.ExportLocal, "N"},
		{program.ExportLocal, "default"},
	}
	exports := p.Exports(entry)
	if len(exports) != len(want) {
		t.Fatalf("exports = %+v", exports)
	}
	for i, w := range want {
		if exports[i].Kind != w.kind || exports[i].Name != w.name {
			t.Errorf("export %d = %s %q, want %s %q", i, exports[i].Kind, exports[i].Name, w.kind, w.name)
		}
	}
	if exports[3].LocalName != "A" || exports[3].Module != "./helper" {
		t.Fatalf("re-export = %+v", exports[3])
	}

	f, ok := p.Lookup(entry, "f")
	if !ok || len(p.Declarations(f)) != 2 {
		t.Fatalf("overloads not merged: %v %d", ok, len(p.Declarations(f)))
	}
	helper, ok := p.Lookup(entry, "Helper")
	if !ok || p.Symbol(helper).Kind != program.SymbolAlias || p.Symbol(helper).Alias.Module != "./helper" {
		t.Fatalf("Helper alias = %+v", p.Symbol(helper))
	}

	fDecl := p.Declarations(f)[0]
	ext, ok := p.ResolveName(fDecl, "Ext")
	if !ok || !p.Symbol(ext).Alias.TypeOnly {
		t.Fatalf("Ext must resolve to a type-only alias")
	}

	n, _ := p.Lookup(entry, "N")
	if _, ok := p.Member(n, "a"); !ok {
		t.Fatalf("ambient namespace members are exported implicitly")
	}
	if !p.IsGlobal("GlobalThing") {
		t.Fatalf("declare global interface not bound globally")
	}
	if p.ModuleOf(fDecl) != entry {
		t.Fatalf("ModuleOf = %d", p.ModuleOf(fDecl))
	}
}

func TestResolveModule(t *testing.T) {
	p, _ := buildVirtual(t, map[string]string{
		"/pkg/index.d.ts":     `export * from "./dir";` + "\n" + `declare module "virtual" { const v: number; }`,
		"/pkg/dir/index.d.ts": "export declare const d: number;\n",
	}, "/pkg/index.d.ts")
	entry := p.Entry()

	tests := []struct {
		spec string
		kind program.ModuleRefKind
	}{
		{"./dir", program.ModuleLocal},
		{"./dir/index.js", program.ModuleLocal},
		{"virtual", program.ModuleLocal},
		{"react", program.ModuleExternal},
		{"./missing", program.ModuleUnresolved},
	}
	for _, tt := range tests {
		if got := p.ResolveModule(entry, tt.spec); got.Kind != tt.kind {
			t.Errorf("ResolveModule(%q) = %v, want %v", tt.spec, got.Kind, tt.kind)
		}
	}

	virtual := p.ResolveModule(entry, "virtual").Module
	exports := p.Exports(virtual)
	if len(exports) != 1 || exports[0].Name != "v" {
		t.Fatalf("ambient module exports = %+v", exports)
	}
}

func TestDocCommentIsAnchored(t *testing.T) {
	p, bag := buildVirtual(t, map[string]string{
		"/pkg/index.d.ts": "/** Summary. @frobnicate */\nexport declare const x: number;\n",
	}, "/pkg/index.d.ts")
	sym, _ := p.Lookup(p.Entry(), "x")
	decl := p.Declarations(sym)[0]

	c := p.DocComment(decl)
	if c == nil || !strings.HasPrefix(c.Summary, "Summary.") {
		t.Fatalf("doc = %+v", c)
	}
	if p.DocComment(decl) != c {
		t.Fatalf("doc comments must be cached")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].ID != diag.TSDocUndefinedTag || items[0].Anchor != diag.Anchor(decl) {
		t.Fatalf("diagnostics = %+v", items)
	}
}

func TestBuildLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("index.d.ts", `export { Dep } from "./dep.js";`+"\n")
	write("dep.d.ts", "export declare class Dep {}\n")

	p, err := program.Build(context.Background(), source.NewFileSet(), filepath.Join(dir, "index.d.ts"), program.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Modules()) != 2 {
		t.Fatalf("modules = %d", len(p.Modules()))
	}
	dep := p.ResolveModule(p.Entry(), "./dep.js")
	if dep.Kind != program.ModuleLocal {
		t.Fatalf("dep not resolved: %+v", dep)
	}
	sym, ok := p.Lookup(dep.Module, "Dep")
	if !ok || p.Decl(p.Declarations(sym)[0]).Kind != ast.DeclClass {
		t.Fatalf("Dep not bound")
	}
}

func TestBuildMissingEntry(t *testing.T) {
	_, err := program.Build(context.Background(), source.NewFileSet(), filepath.Join(t.TempDir(), "nope.d.ts"), program.Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCancelledBuild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := source.NewFileSet()
	fs.AddVirtual("/pkg/index.d.ts", []byte("export {};"))
	if _, err := program.Build(ctx, fs, "/pkg/index.d.ts", program.Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}
