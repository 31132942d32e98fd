package parser_test

import (
	"strings"
	"testing"

	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/parser"
	"apix/internal/source"
	"apix/internal/testkit"
)

type parsed struct {
	fs      *source.FileSet
	builder *ast.Builder
	fileID  ast.FileID
	file    *ast.File
	bag     *diag.Bag
}

func parseSource(t *testing.T, name, input string) parsed {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(input))
	bag := diag.NewBag(16)
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return parsed{fs: fs, builder: b, fileID: res.File, file: b.Files.Get(res.File), bag: bag}
}

func mustParse(t *testing.T, input string) parsed {
	t.Helper()
	p := parseSource(t, "index.d.ts", input)
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v for %q", p.bag.IDs(), input)
	}
	return p
}

func (p parsed) decls() []*ast.Decl {
	var out []*ast.Decl
	for _, id := range p.builder.FileDecls(p.fileID) {
		out = append(out, p.builder.Decls.Get(id))
	}
	return out
}

func (p parsed) decl(t *testing.T, name string) *ast.Decl {
	t.Helper()
	for _, d := range p.decls() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("declaration %q not found", name)
	return nil
}

func (p parsed) stmt(i int) *ast.Stmt {
	return p.builder.Stmts.Get(p.file.Stmts[i])
}

func refNames(d *ast.Decl) []string {
	out := make([]string, 0, len(d.Refs))
	for _, r := range d.Refs {
		out = append(out, r.String())
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDeclarationKinds(t *testing.T) {
	p := mustParse(t, `
export declare class A {}
export interface B {}
export type C = string;
export declare enum D { X, Y = 2 }
export declare function e(): void;
export declare const f: number, g: string;
export declare namespace H {}
`)
	want := []struct {
		name string
		kind ast.DeclKind
	}{
		{"A", ast.DeclClass},
		{"B", ast.DeclInterface},
		{"C", ast.DeclTypeAlias},
		{"D", ast.DeclEnum},
		{"e", ast.DeclFunction},
		{"f", ast.DeclVariable},
		{"g", ast.DeclVariable},
		{"H", ast.DeclNamespace},
	}
	got := p.decls()
	if len(got) != len(want) {
		t.Fatalf("got %d decls, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].Kind != w.kind {
			t.Errorf("decl %d = %s %q, want %s %q", i, got[i].Kind, got[i].Name, w.kind, w.name)
		}
		if !got[i].IsExported() {
			t.Errorf("decl %q must be exported", w.name)
		}
	}
	if !p.file.IsModule {
		t.Fatalf("file with exports must be a module")
	}
	if d := p.decl(t, "D"); len(d.Members) != 2 {
		t.Fatalf("enum members = %d", len(d.Members))
	}
	if g := p.decl(t, "g"); g.KeywordText != "const" {
		t.Fatalf("variable keyword = %q", g.KeywordText)
	}
}

func TestTypeReferencesSkipTypeParamsAndPrimitives(t *testing.T) {
	p := mustParse(t, `export declare function f<T extends Base>(a: T, b: NS.Inner<Arg>, c: string): Promise<T[]>;`)
	f := p.decl(t, "f")
	want := []string{"Base", "NS.Inner", "Arg", "Promise"}
	if got := refNames(f); !sameStrings(got, want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
	if !sameStrings(f.TypeParams, []string{"T"}) {
		t.Fatalf("type params = %v", f.TypeParams)
	}
}

func TestTypeSyntaxCoverage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		refs []string
	}{
		{"union", "export type X = A | B | null;", []string{"A", "B"}},
		{"function type", "export type X = (a: A) => B;", []string{"A", "B"}},
		{"constructor type", "export type X = abstract new () => A;", []string{"A"}},
		{"conditional with infer", "export type X<T> = T extends Array<infer U> ? U : Fallback;", []string{"Array", "Fallback"}},
		{"mapped", "export type X<T> = { readonly [K in keyof T]?: Wrap<T[K]> };", []string{"Wrap"}},
		{"tuple", "export type X = [first: A, second?: B, ...rest: C[]];", []string{"A", "B", "C"}},
		{"typeof", "export type X = typeof value.member;", []string{"typeof value.member"}},
		{"import type", `export type X = import("./m").Y<Z>;`, []string{`import("./m").Y`, "Z"}},
		{"object literal", "export type X = { a: A; m(b: B): void; new (): C };", []string{"A", "B", "C"}},
		{"predicate", "export declare function isA(x: unknown): x is A;", []string{"A"}},
		{"template", "export type X = `prefix-${string}`;", nil},
		{"indexed access", "export type X = Config['key'];", []string{"Config"}},
		{"generic function type", "export type X = <T>(v: T) => Out<T>;", []string{"Out"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.src)
			d := p.decls()[0]
			if got := refNames(d); !sameStrings(got, tt.refs) {
				t.Fatalf("refs = %v, want %v", got, tt.refs)
			}
		})
	}
}

func TestClassMembers(t *testing.T) {
	p := mustParse(t, `
export declare class Widget<T> extends Base<T> implements IWidget {
    /** the size */
    readonly size: number;
    private _cache;
    static create(): Widget<string>;
    constructor(opts: Options);
    get value(): T;
    set value(v: T);
    [key: string]: unknown;
    protected optional?: Extra;
    [Symbol.iterator](): Iterator<T>;
}`)
	w := p.decl(t, "Widget")
	if got := refNames(w); !sameStrings(got, []string{"Base", "IWidget"}) {
		t.Fatalf("class refs = %v", got)
	}
	var kinds []string
	var names []string
	for _, id := range w.Members {
		m := p.builder.Decls.Get(id)
		kinds = append(kinds, m.Kind.String())
		names = append(names, m.Name)
		if m.Parent == ast.NoDeclID {
			t.Fatalf("member %q has no parent", m.Name)
		}
	}
	wantKinds := []string{"Property", "Property", "Method", "Constructor", "GetAccessor", "SetAccessor", "IndexSignature", "Property", "Method"}
	if !sameStrings(kinds, wantKinds) {
		t.Fatalf("member kinds = %v", kinds)
	}
	if names[0] != "size" || names[8] != "[Symbol.iterator]" {
		t.Fatalf("member names = %v", names)
	}
	size := p.builder.Decls.Get(w.Members[0])
	if !strings.Contains(size.Doc.Text, "the size") || !size.Modifiers.Has(ast.ModReadonly) {
		t.Fatalf("size member doc=%q mods=%s", size.Doc.Text, size.Modifiers)
	}
	create := p.builder.Decls.Get(w.Members[2])
	if !create.Modifiers.Has(ast.ModStatic) {
		t.Fatalf("create must be static")
	}
	opt := p.builder.Decls.Get(w.Members[7])
	if !opt.Modifiers.Has(ast.ModOptional) || !opt.Modifiers.Has(ast.ModProtected) {
		t.Fatalf("optional member mods = %s", opt.Modifiers)
	}
	iter := p.builder.Decls.Get(w.Members[8])
	if got := refNames(iter); !sameStrings(got, []string{"Symbol.iterator", "Iterator"}) {
		t.Fatalf("computed member refs = %v", got)
	}
}

func TestImplementationBodiesAreElided(t *testing.T) {
	p := parseSource(t, "index.ts", `
export function add(a: number, b = 2): Sum {
    return a + b;
}
export const limit: number = compute(1, 2);
export class K {
    count = 0;
    run(): void { doIt(); }
}
`)
	if p.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", p.bag.IDs())
	}
	add := p.decl(t, "add")
	if len(add.Elide) != 2 {
		t.Fatalf("function elide spans = %d, want default value and body", len(add.Elide))
	}
	body := p.fs.Text(add.Elide[1])
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		t.Fatalf("body span text = %q", body)
	}
	limit := p.decl(t, "limit")
	if got := p.fs.Text(limit.Span); got != "limit: number = compute(1, 2)" {
		t.Fatalf("declarator span = %q", got)
	}
	if len(limit.Elide) != 1 || p.fs.Text(limit.Elide[0]) != "= compute(1, 2)" {
		t.Fatalf("initializer elide = %v", limit.Elide)
	}
	k := p.decl(t, "K")
	if len(k.Members) != 2 {
		t.Fatalf("class members = %d", len(k.Members))
	}
}

func TestImportForms(t *testing.T) {
	p := mustParse(t, `
import Def, { a, b as c, type d } from "./m";
import * as ns from "./ns";
import type { T } from "./types";
import eq = require("./eq");
import alias = Outer.Inner;
import "./side-effect";
`)
	imp := p.builder.Stmts.Import(p.stmt(0).Import)
	if imp.Module != "./m" || len(imp.Bindings) != 4 {
		t.Fatalf("first import = %+v", imp)
	}
	if b := imp.Bindings[0]; b.Kind != ast.ImportDefault || b.Local != "Def" || b.Name != "default" {
		t.Fatalf("default binding = %+v", b)
	}
	if b := imp.Bindings[2]; b.Name != "b" || b.Local != "c" {
		t.Fatalf("renamed binding = %+v", b)
	}
	if !imp.Bindings[3].TypeOnly {
		t.Fatalf("inline type modifier lost")
	}
	if b := p.builder.Stmts.Import(p.stmt(1).Import).Bindings[0]; b.Kind != ast.ImportStar || b.Local != "ns" {
		t.Fatalf("star binding = %+v", b)
	}
	if !p.builder.Stmts.Import(p.stmt(2).Import).TypeOnly {
		t.Fatalf("import type must be type-only")
	}
	if st := p.stmt(3); st.Kind != ast.StmtImportEquals || p.builder.Stmts.Import(st.Import).Module != "./eq" {
		t.Fatalf("import equals require = %+v", st)
	}
	alias := p.builder.Stmts.Import(p.stmt(4).Import)
	if alias.EntityName == nil || alias.EntityName.String() != "Outer.Inner" {
		t.Fatalf("import equals entity = %+v", alias.EntityName)
	}
	if p.builder.Stmts.Import(p.stmt(5).Import).Module != "./side-effect" {
		t.Fatalf("side-effect import lost")
	}
}

func TestExportForms(t *testing.T) {
	p := mustParse(t, `
declare const a: number;
export { a, a as b };
export * from "./all";
export * as star from "./star";
export { default as D, x } from "./re";
export default a;
`)
	list := p.builder.Stmts.Export(p.stmt(1).Export)
	if len(list.Specs) != 2 || list.Specs[1].Name != "a" || list.Specs[1].Alias != "b" {
		t.Fatalf("local export list = %+v", list.Specs)
	}
	if star := p.builder.Stmts.Export(p.stmt(2).Export); !star.Star || star.Module != "./all" {
		t.Fatalf("export star = %+v", star)
	}
	if ns := p.builder.Stmts.Export(p.stmt(3).Export); ns.StarAlias != "star" {
		t.Fatalf("export star as = %+v", ns)
	}
	if re := p.builder.Stmts.Export(p.stmt(4).Export); re.Module != "./re" || re.Specs[0].Name != "default" || re.Specs[0].Alias != "D" {
		t.Fatalf("re-export = %+v", re)
	}
	def := p.stmt(5)
	if def.Kind != ast.StmtExportAssign {
		t.Fatalf("export default kind = %v", def.Kind)
	}
	exp := p.builder.Stmts.Export(def.Export)
	if !exp.IsDefault || exp.Target == nil || exp.Target.String() != "a" {
		t.Fatalf("export default target = %+v", exp)
	}
}

func TestNamespaces(t *testing.T) {
	p := mustParse(t, `
export declare namespace Outer.Inner {
    const implicit: number;
}
export declare namespace Explicit {
    export const shown: number;
    const hidden: string;
}
`)
	outer := p.decl(t, "Outer")
	if len(outer.Body) != 1 {
		t.Fatalf("dotted namespace body = %d", len(outer.Body))
	}
	inner := p.builder.Decls.Get(p.builder.Stmts.Get(outer.Body[0]).Decl)
	if inner.Name != "Inner" || inner.Kind != ast.DeclNamespace || inner.Parent == ast.NoDeclID {
		t.Fatalf("inner namespace = %+v", inner)
	}
	if inner.ExplicitExports {
		t.Fatalf("namespace without export statements must export implicitly")
	}
	if !inner.Chained || outer.Chained {
		t.Fatalf("chained flags: outer=%v inner=%v", outer.Chained, inner.Chained)
	}
	if inner.Span.Start != inner.NameSpan.Start || inner.Span.End != outer.Span.End {
		t.Fatalf("inner span %v, name %v, outer %v", inner.Span, inner.NameSpan, outer.Span)
	}
	if got := p.fs.Text(inner.Span); !strings.HasPrefix(got, "Inner {") {
		t.Fatalf("inner text = %q", got)
	}
	if !p.decl(t, "Explicit").ExplicitExports {
		t.Fatalf("namespace with export modifiers must be explicit")
	}
}

func TestFileTrivia(t *testing.T) {
	p := mustParse(t, `/// <reference types="node" />
/**
 * Package docs.
 * @packageDocumentation
 */

/** A docs */
export declare class A {}
// trailing
`)
	if len(p.file.References) != 1 || p.file.References[0].Attr != "types" || p.file.References[0].Value != "node" {
		t.Fatalf("references = %+v", p.file.References)
	}
	if len(p.file.LeadingDocs) != 2 || !strings.Contains(p.file.LeadingDocs[0].Text, "@packageDocumentation") {
		t.Fatalf("leading docs = %+v", p.file.LeadingDocs)
	}
	if a := p.decl(t, "A"); !strings.Contains(a.Doc.Text, "A docs") {
		t.Fatalf("class doc = %q", a.Doc.Text)
	}
	if len(p.file.Comments) != 4 {
		t.Fatalf("comments = %d", len(p.file.Comments))
	}
}

func TestGlobalAndAmbientModules(t *testing.T) {
	p := mustParse(t, `
declare global {
    interface Window { extra: string }
}
declare module "virtual" {
    export const v: number;
}
export {};
`)
	if st := p.stmt(0); st.Kind != ast.StmtGlobal || len(st.Body) != 1 {
		t.Fatalf("global block = %+v", st)
	}
	win := p.builder.Decls.Get(p.builder.Stmts.Get(p.stmt(0).Body[0]).Decl)
	if !win.Global || win.Name != "Window" {
		t.Fatalf("global interface = %+v", win)
	}
	if st := p.stmt(1); st.Kind != ast.StmtAmbientModule || st.Name != "virtual" {
		t.Fatalf("ambient module = %+v", st)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		want diag.MessageID
	}{
		{"missing modifier", "index.d.ts", "class A {}", diag.TSTopLevelModifier},
		{"missing type", "index.d.ts", "export type X = ;", diag.TSTypeExpected},
		{"statement in d.ts", "index.d.ts", "foo();", diag.TSDeclarationExpected},
		{"unclosed class", "index.d.ts", "export declare class A {", diag.TSTokenExpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseSource(t, tt.file, tt.src)
			found := false
			for _, id := range p.bag.IDs() {
				if id == tt.want {
					found = true
				}
			}
			if !found {
				t.Fatalf("diagnostics %v do not contain %s", p.bag.IDs(), tt.want)
			}
		})
	}
}

func TestRecoveryKeepsLaterDeclarations(t *testing.T) {
	p := parseSource(t, "index.d.ts", `
export declare const broken: = 1;
export declare const fine: number;
`)
	if p.bag.Len() == 0 {
		t.Fatalf("expected a diagnostic")
	}
	p.decl(t, "fine")
}

func TestMaxErrors(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("index.d.ts", []byte("class A {}\nclass B {}\nclass C {}\n"))
	bag := diag.NewBag(16)
	b := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs.Get(id), b, parser.Options{MaxErrors: 1, Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 1 {
		t.Fatalf("reported %d diagnostics with MaxErrors=1", bag.Len())
	}
	if res.Errors != 3 {
		t.Fatalf("error count = %d", res.Errors)
	}
}

func TestSpanInvariants(t *testing.T) {
	inputs := []string{
		"export declare function f(a: number): void;\n",
		"/** doc */\nexport declare class C<T> extends B implements I {\n  private x!: T;\n  m(): void;\n  get v(): string;\n}\n",
		"export declare namespace N {\n  interface I { a: string; [k: string]: unknown }\n  const c = 1, d: number;\n}\n",
		"export declare enum E { A = 1, B }\nexport type U = 'a' | 'b';\n",
		"export default class {}\n",
		"export declare namespace A.B.C {\n  const x: number;\n}\n",
		"",
	}
	for _, in := range inputs {
		p := mustParse(t, in)
		if err := testkit.CheckSpanInvariants(p.builder, p.fileID, p.fs.Get(p.file.Source)); err != nil {
			t.Errorf("%q: %v", in, err)
		}
	}
}
