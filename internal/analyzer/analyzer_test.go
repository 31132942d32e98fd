package analyzer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apix/internal/analyzer"
	"apix/internal/astentity"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/source"
)

const entry = "/pkg/index.d.ts"

func analyze(t *testing.T, files map[string]string) (*analyzer.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSetWithBase("/pkg")
	for path, content := range files {
		fs.AddVirtual(path, []byte(content))
	}
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	p, err := program.Build(context.Background(), fs, entry, program.Options{Reporter: rep})
	require.NoError(t, err)
	res, err := analyzer.Analyze(context.Background(), p, analyzer.Options{Reporter: rep})
	require.NoError(t, err)
	return res, bag
}

func export(t *testing.T, res *analyzer.Result, name string) astentity.Entity {
	t.Helper()
	for _, e := range res.Exports {
		if e.Name == name {
			return res.Store.Get(e.Entity)
		}
	}
	require.Failf(t, "export not found", "no export %q", name)
	return nil
}

func entityNames(res *analyzer.Result) []string {
	out := make([]string, 0, len(res.Entities))
	for _, id := range res.Entities {
		out = append(out, res.Store.Get(id).LocalName())
	}
	return out
}

func TestCircularReexportTerminates(t *testing.T) {
	files := map[string]string{
		entry: `export { ReexportedClass1 } from "./ReexportedClass1";
export { ReexportedClass2 } from "./ReexportedClass2";
`,
		"/pkg/ReexportedClass1.d.ts": `export { ReexportedClass2 as ReexportedClass1 } from "./ReexportedClass2";` + "\n",
		"/pkg/ReexportedClass2.d.ts": `export { ReexportedClass1 as ReexportedClass2 } from "./ReexportedClass1";` + "\n",
	}
	res, bag := analyze(t, files)

	assert.Equal(t, 1, bag.Count(diag.AECircularReexport))
	first := export(t, res, "ReexportedClass1")
	second := export(t, res, "ReexportedClass2")
	assert.Equal(t, first.ID(), second.ID(), "both aliases bind to one placeholder")
	assert.Equal(t, astentity.KindUnresolved, first.Kind())
	assert.Len(t, res.Entities, 1)
}

func TestCircularImportsResolve(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `export { IFile } from "./IFile";
export { IFolder } from "./IFolder";
`,
		"/pkg/IFile.d.ts": `import { IFolder } from "./IFolder";
export declare class IFile {
    containingFolder: IFolder;
}
`,
		"/pkg/IFolder.d.ts": `import { IFile } from "./IFile";
export declare class IFolder {
    files: IFile[];
}
`,
	})
	assert.Zero(t, bag.Len(), "diagnostics: %v", bag.IDs())
	assert.Equal(t, []string{"IFile", "IFolder"}, entityNames(res))
	for _, id := range res.Entities {
		assert.Equal(t, astentity.KindSymbol, res.Store.KindOf(id))
	}
}

func TestForgottenExportsAreCollected(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `export { ForgottenExport1 } from "./ForgottenExport1";
export { ForgottenExport3 } from "./ForgottenExport3";
`,
		"/pkg/ForgottenExport1.d.ts": `declare class ForgottenExport2 {
}
export declare class ForgottenExport1 {
    prop?: ForgottenExport2;
}
`,
		"/pkg/ForgottenExport3.d.ts": `declare class ForgottenExport2 {
}
export declare class ForgottenExport3 {
    other: ForgottenExport2;
}
`,
	})
	assert.Zero(t, bag.Len())
	require.Equal(t, []string{"ForgottenExport1", "ForgottenExport3", "ForgottenExport2", "ForgottenExport2"}, entityNames(res))

	a := res.Store.AsSymbol(res.Entities[2])
	b := res.Store.AsSymbol(res.Entities[3])
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.Symbol, b.Symbol)
	assert.NotEqual(t, a.Module, b.Module)
	assert.Empty(t, res.ExportedNames(a.ID()))
}

func TestSubPathImport(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `export declare const x: import("foo").X.Y.Z;` + "\n",
	})
	assert.Zero(t, bag.Len())

	x := export(t, res, "x").(*astentity.AstSymbol)
	require.Len(t, x.Declarations, 1)
	refs := res.Store.Declaration(x.Declarations[0]).Refs
	require.Len(t, refs, 1)
	assert.Equal(t, astentity.WholeReference, refs[0].Segments)

	sp := res.Store.AsSubPath(refs[0].Entity)
	require.NotNil(t, sp)
	assert.Equal(t, []string{"Y", "Z"}, sp.ExportPath)
	assert.Equal(t, "Z", sp.LocalName())

	base := res.Store.AsImport(sp.Base)
	require.NotNil(t, base)
	assert.Equal(t, "foo#X", base.Key())
	assert.Contains(t, res.Entities, sp.Base, "the base is collected with its chain")
}

func TestExternalImportsAreDeduplicated(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `import { FC } from "react";
import { FC as Component } from "react";
import { Value } from "lib";
export declare const a: FC;
export declare function b(): Component;
export declare const c: typeof Value;
`,
	})
	assert.Zero(t, bag.Len())

	var imports []*astentity.AstImport
	for _, id := range res.Entities {
		if imp := res.Store.AsImport(id); imp != nil {
			imports = append(imports, imp)
		}
	}
	require.Len(t, imports, 2)
	assert.Equal(t, "react#FC", imports[0].Key())
	assert.True(t, imports[0].IsImportTypeEverywhere())
	assert.Equal(t, "lib#Value", imports[1].Key())
	assert.False(t, imports[1].IsImportTypeEverywhere(), "typeof is a value reference")
}

func TestNamespaceImportMembers(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `import * as lib from "./lib";
export declare function f(): lib.Thing;
export * as ns from "./lib";
`,
		"/pkg/lib.d.ts": `export interface Thing {}
export interface Unused {}
`,
	})
	assert.Zero(t, bag.Len())

	f := export(t, res, "f").(*astentity.AstSymbol)
	ref := res.Store.Declaration(f.Declarations[0]).Refs[0]
	assert.Equal(t, 2, ref.Segments)
	assert.Equal(t, "Thing", res.Store.Get(ref.Entity).LocalName())

	ns := export(t, res, "ns").(*astentity.AstNamespaceImport)
	assert.True(t, ns.Resolved())
	assert.Equal(t, []string{"f", "ns", "Thing", "Unused"}, entityNames(res))
}

func TestUnresolvedInputsProducePlaceholders(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `import * as lib from "./lib";
import { Gone } from "./lib";
export { Missing } from "./lib";
export { X } from "./nowhere";
export declare const v: Gone;
export declare const w: lib.Nope;
`,
		"/pkg/lib.d.ts": "export interface Thing {}\n",
	})
	assert.Equal(t, 2, bag.Count(diag.AEUnresolvedExport))
	assert.Equal(t, 1, bag.Count(diag.AEUnresolvedModule))
	assert.Equal(t, 1, bag.Count(diag.AEUnresolvedReference))
	assert.Equal(t, astentity.KindUnresolved, export(t, res, "Missing").Kind())
	assert.Equal(t, astentity.KindUnresolved, export(t, res, "X").Kind())
	assert.Equal(t, astentity.KindSymbol, export(t, res, "v").Kind())
}

func TestStarReexports(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `export * from "./a";
export * from "ext-pkg";
export { b as default } from "./a";
`,
		"/pkg/a.d.ts": `export interface A {}
export interface b {}
export default interface D {}
`,
	})
	assert.Zero(t, bag.Len())

	var names []string
	for _, e := range res.Exports {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"default", "A", "b"}, names)
	assert.Equal(t, []string{"ext-pkg"}, res.ExternalStars)
	assert.Equal(t, export(t, res, "default").ID(), export(t, res, "b").ID())
}

func TestGlobalNames(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `declare global {
    interface GlobalThing {}
}
export declare function f(p: Promise<string>, q: GlobalThing): void;
`,
	})
	assert.Zero(t, bag.Len())
	assert.Equal(t, []string{"GlobalThing", "Promise"}, res.GlobalNames)
	assert.Equal(t, []string{"f"}, entityNames(res))
}

func TestNamespaceMembersResolveToRoot(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `declare namespace Outer {
    interface Inner {}
    interface Other { inner: Inner; }
}
export declare function f(): Outer.Inner;
`,
	})
	assert.Zero(t, bag.Len())
	assert.Equal(t, []string{"f", "Outer"}, entityNames(res))

	outer := res.Store.AsSymbol(res.Entities[1])
	require.Len(t, outer.Declarations, 1)
	children := res.Store.Declaration(outer.Declarations[0]).Children
	require.Len(t, children, 2)
	other := res.Store.Declaration(children[1])
	require.Len(t, other.Children, 1)
	inner := res.Store.Declaration(other.Children[0]).Refs[0]
	assert.Equal(t, outer.ID(), inner.Entity)
	assert.Zero(t, inner.Segments)
}

func TestDeterministic(t *testing.T) {
	files := map[string]string{
		entry: `import { Ext } from "ext";
export { A } from "./a";
export declare function g(x: Ext): void;
`,
		"/pkg/a.d.ts": `declare interface Hidden {}
export declare class A { h: Hidden; }
`,
	}
	first, _ := analyze(t, files)
	second, _ := analyze(t, files)
	assert.Equal(t, entityNames(first), entityNames(second))
	assert.Equal(t, first.GlobalNames, second.GlobalNames)
}

func TestCancelled(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual(entry, []byte("export declare class A { b: B; }\ndeclare class B {}\n"))
	p, err := program.Build(context.Background(), fs, entry, program.Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = analyzer.Analyze(ctx, p, analyzer.Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestUndeclaredNameIsUnresolved(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `export declare function useF(f: F): void;
export declare function useP(p: Promise<Error>): ReadonlyArray<string>;
`,
	})
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.AEUnresolvedReference, bag.Items()[0].ID)
	assert.Contains(t, bag.Items()[0].Message, `"F"`)
	assert.Equal(t, []string{"Error", "Promise", "ReadonlyArray"}, res.GlobalNames)
	assert.Equal(t, []string{"useF", "useP"}, entityNames(res))

	sym, ok := export(t, res, "useF").(*astentity.AstSymbol)
	require.True(t, ok)
	require.NotEmpty(t, sym.Declarations)
	refs := res.Store.Declaration(sym.Declarations[0]).Refs
	require.Len(t, refs, 1)
	assert.Equal(t, astentity.KindUnresolved, res.Store.KindOf(refs[0].Entity))
}

func TestTypeReferenceDirectiveMakesNamesAmbient(t *testing.T) {
	res, bag := analyze(t, map[string]string{
		entry: `/// <reference types="node" />
export declare function read(b: Buffer): void;
`,
	})
	assert.Zero(t, bag.Len())
	assert.Equal(t, []string{"Buffer"}, res.GlobalNames)
}
