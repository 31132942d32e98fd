package collector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apix/internal/analyzer"
	"apix/internal/astentity"
	"apix/internal/collector"
	"apix/internal/diag"
	"apix/internal/program"
	"apix/internal/releasetag"
	"apix/internal/source"
)

const entry = "/pkg/index.d.ts"

func build(t *testing.T, files map[string]string) (*program.Program, *analyzer.Result, diag.Reporter, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSetWithBase("/pkg")
	for path, content := range files {
		fs.AddVirtual(path, []byte(content))
	}
	bag := diag.NewBag(128)
	rep := diag.BagReporter{Bag: bag}
	p, err := program.Build(context.Background(), fs, entry, program.Options{Reporter: rep})
	require.NoError(t, err)
	res, err := analyzer.Analyze(context.Background(), p, analyzer.Options{Reporter: rep})
	require.NoError(t, err)
	return p, res, rep, bag
}

func collect(t *testing.T, files map[string]string) (*collector.Collector, *diag.Bag) {
	t.Helper()
	p, res, rep, bag := build(t, files)
	c := collector.New(p, res, collector.Options{Reporter: rep, PackageName: "test-pkg", PackageFolder: "/pkg"})
	require.NoError(t, c.Analyze(context.Background()))
	return c, bag
}

func symbol(t *testing.T, c *collector.Collector, name string) *astentity.AstSymbol {
	t.Helper()
	id, ok := c.Exported(name)
	require.True(t, ok, "no export %q", name)
	sym := c.Store().AsSymbol(id)
	require.NotNil(t, sym)
	return sym
}

// member returns the DeclMeta of the named child of the symbol's first declaration.
func member(t *testing.T, c *collector.Collector, sym *astentity.AstSymbol, name string) *collector.DeclMeta {
	t.Helper()
	for _, child := range c.Store().Declaration(sym.Declarations[0]).Children {
		if c.Store().Declaration(child).Name == name {
			return c.DeclMeta(child)
		}
	}
	require.Failf(t, "member not found", "no member %q in %s", name, sym.Name)
	return nil
}

func emitNames(c *collector.Collector) []string {
	out := make([]string, 0, len(c.Entries()))
	for _, e := range c.Entries() {
		out = append(out, e.EmitName())
	}
	return out
}

func TestForgottenExportsAreRenamed(t *testing.T) {
	c, bag := collect(t, map[string]string{
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
	assert.Equal(t, 2, bag.Count(diag.AEForgottenExport))
	assert.Equal(t, []string{"ForgottenExport1", "ForgottenExport2", "ForgottenExport2_2", "ForgottenExport3"}, emitNames(c))
	for _, e := range c.Entries() {
		assert.Equal(t, e.OriginalName != "ForgottenExport2", e.Exported)
	}
}

func TestForgottenNamesAvoidGlobals(t *testing.T) {
	c, _ := collect(t, map[string]string{
		entry: `export { A } from "./a";
export declare function f(): Promise<void>;
`,
		"/pkg/a.d.ts": `declare class Promise {}
export declare class A {
    p: Promise;
}
`,
	})
	assert.Contains(t, c.Result().GlobalNames, "Promise")
	assert.Equal(t, []string{"A", "Promise_2", "f"}, emitNames(c))
}

func TestDefaultExportKeepsLocalName(t *testing.T) {
	c, _ := collect(t, map[string]string{
		entry: `export { default } from "./d";
export { Other as Renamed } from "./d";
`,
		"/pkg/d.d.ts": `export default interface D {}
export interface Other {}
`,
	})
	assert.Equal(t, []string{"D", "Renamed"}, emitNames(c))
}

func TestReleaseTagsInheritAndUnderscore(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `/** @alpha */
export declare class Widget {
    /** @internal */
    internalMember(): void;
    /** @internal */
    constructor();
    plain: string;
}
`,
	})
	assert.Equal(t, 1, bag.Count(diag.AEInternalMissingUnderscore))
	assert.Zero(t, bag.Count(diag.AEIncompatibleReleaseTags))
	assert.Zero(t, bag.Count(diag.AEMissingReleaseTag))

	w := symbol(t, c, "Widget")
	assert.Equal(t, releasetag.Alpha, c.SymbolMeta(w.ID()).ReleaseTag)
	assert.Equal(t, releasetag.Internal, member(t, c, w, "internalMember").EffectiveTag)
	plain := member(t, c, w, "plain")
	assert.Equal(t, releasetag.Alpha, plain.EffectiveTag)
	assert.Equal(t, releasetag.None, plain.DeclaredTag)
}

func TestMergedDeclarationsTakeMostPublicTag(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `/** @beta */
export declare function f(x: string): void;
/** @public */
export declare function f(x: number): void;
/** @internal */
export declare function g(): void;
/** @public */
export declare function g(x: number): void;
`,
	})
	assert.Equal(t, 1, bag.Count(diag.AEDifferentReleaseTags))
	assert.Equal(t, 1, bag.Count(diag.AEInternalMixedReleaseTag))
	assert.Zero(t, bag.Count(diag.AEInternalMissingUnderscore))
	assert.Equal(t, releasetag.Public, c.SymbolMeta(symbol(t, c, "f").ID()).ReleaseTag)
	assert.Equal(t, releasetag.Public, c.SymbolMeta(symbol(t, c, "g").ID()).ReleaseTag)
}

func TestMissingAndExtraReleaseTags(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `export declare const a: number;
/** @public @beta */
export declare const b: number;
`,
	})
	assert.Equal(t, 1, bag.Count(diag.AEMissingReleaseTag))
	assert.Equal(t, 1, bag.Count(diag.AEExtraReleaseTag))

	a := c.SymbolMeta(symbol(t, c, "a").ID())
	assert.False(t, a.Declared)
	assert.Equal(t, releasetag.None, a.ReleaseTag)
	assert.Equal(t, releasetag.Public, c.SymbolMeta(symbol(t, c, "b").ID()).ReleaseTag)
}

func TestIncompatibleReleaseTags(t *testing.T) {
	_, bag := collect(t, map[string]string{
		entry: `/** @beta */
export declare class B {}
/** @public */
export declare function f(b: B): void;
/** @alpha */
export declare class C {
    /** @public */
    m: string;
}
/** @alpha */
export declare function h(b: B): void;
`,
	})
	assert.Equal(t, 2, bag.Count(diag.AEIncompatibleReleaseTags))
}

func TestInheritDoc(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `/** @public */
export declare class A {
    /** Summary of one. */
    one(): void;
    /** {@inheritDoc A.one} */
    two(): void;
    /** {@inheritDoc A.three} */
    three(): void;
}
/**
 * {@inheritDoc C}
 * @public
 */
export declare class B {}
/**
 * {@inheritDoc B}
 * @public
 */
export declare class C {}
/**
 * {@inheritDoc A.x}
 * @public
 */
export declare function d(): void;
/**
 * {@inheritDoc Missing}
 * @public
 */
export declare function e(): void;
/**
 * {@inheritDoc other-pkg#Thing}
 * @public
 */
export declare function g(): void;
`,
	})
	assert.Equal(t, 2, bag.Count(diag.AECyclicInheritDoc))
	assert.Equal(t, 2, bag.Count(diag.AEUnresolvedInheritDocRef))
	assert.Zero(t, bag.Count(diag.AEUnresolvedInheritDocBase))

	a := symbol(t, c, "A")
	two := member(t, c, a, "two")
	require.NotNil(t, two.Doc)
	assert.Equal(t, "Summary of one.", two.Doc.Summary)
	assert.False(t, two.Undocumented)
	assert.Equal(t, "Summary of one.", member(t, c, a, "one").Doc.Summary)
	assert.Empty(t, member(t, c, a, "three").Doc.Summary)
}

func TestInheritDocNeedsReference(t *testing.T) {
	_, bag := collect(t, map[string]string{
		entry: `/**
 * {@inheritDoc}
 * @public
 */
export declare function f(): void;
`,
	})
	assert.Equal(t, 1, bag.Count(diag.AEUnresolvedInheritDocBase))
}

func TestPackageDocumentation(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `/**
 * The package.
 * @packageDocumentation
 */

/**
 * @packageDocumentation
 */

/** @public */
export declare class A {}
export { B } from "./b";
`,
		"/pkg/b.d.ts": `/**
 * Not the package.
 * @packageDocumentation
 * @public
 */
export declare class B {}
`,
	})
	assert.Equal(t, 2, bag.Count(diag.AEMisplacedPackageTag))
	require.NotNil(t, c.Package().DocComment)
	assert.Equal(t, "The package.", c.Package().DocComment.Summary)
	assert.Equal(t, entry, c.Package().EntryPoint)
}

func TestPackageDocIsNotDeclarationDoc(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `/**
 * Pkg.
 * @packageDocumentation
 */
export declare class A {}
`,
	})
	assert.Zero(t, bag.Count(diag.AEMisplacedPackageTag))
	assert.Equal(t, 1, bag.Count(diag.AEMissingReleaseTag))
	assert.Equal(t, 1, bag.Count(diag.AEUndocumented))

	a := symbol(t, c, "A")
	dm := c.DeclMeta(a.Declarations[0])
	assert.True(t, dm.Undocumented)
	assert.Nil(t, dm.Doc)
}

func TestUndocumentedOncePerSymbol(t *testing.T) {
	_, bag := collect(t, map[string]string{
		entry: `/** @public */
export declare class Merged {}
/** @public */
export declare namespace Merged {
    const x: number;
}
/** @public */
export default function (x: number): void;
`,
	})
	var texts []string
	for _, d := range bag.Items() {
		if d.ID == diag.AEUndocumented {
			texts = append(texts, d.Message)
		}
	}
	assert.ElementsMatch(t, []string{
		`Missing documentation for "Merged".`,
		`Missing documentation for "_default".`,
	}, texts)
}

func TestUnresolvedLinks(t *testing.T) {
	_, bag := collect(t, map[string]string{
		entry: `/**
 * See {@link Nope} and {@link A} and {@link https://example.com}.
 * Also {@link other-pkg#Thing}.
 * @public
 */
export declare class A {}
`,
	})
	assert.Equal(t, 1, bag.Count(diag.AEUnresolvedLink))
}

func TestSetterWithDocs(t *testing.T) {
	c, bag := collect(t, map[string]string{
		entry: `/** @public */
export declare class A {
    /** The value. */
    get value(): string;
    /** Setter docs. */
    set value(v: string);
}
`,
	})
	assert.Equal(t, 1, bag.Count(diag.AESetterWithDocs))

	a := symbol(t, c, "A")
	children := c.Store().Declaration(a.Declarations[0]).Children
	require.Len(t, children, 2)
	assert.False(t, c.DeclMeta(children[1]).Undocumented)
}

func TestModifierFlags(t *testing.T) {
	c, _ := collect(t, map[string]string{
		entry: `/**
 * A base.
 * @sealed
 * @public
 */
export declare class A {
    /**
     * Old.
     * @deprecated Use other.
     * @virtual
     */
    m(): void;
    /** @eventProperty */
    readonly changed: string;
}
`,
	})
	a := symbol(t, c, "A")
	assert.True(t, c.DeclMeta(a.Declarations[0]).Sealed)
	m := member(t, c, a, "m")
	assert.True(t, m.Deprecated)
	assert.True(t, m.Virtual)
	assert.True(t, member(t, c, a, "changed").EventProperty)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	files := map[string]string{
		entry: `import { Ext } from "ext";
export { A } from "./a";
export declare function g(x: Ext): void;
`,
		"/pkg/a.d.ts": `declare interface Hidden {}
declare interface _Hidden {}
export declare class A { h: Hidden; u: _Hidden; }
`,
	}
	first, _ := collect(t, files)
	second, _ := collect(t, files)
	assert.Equal(t, emitNames(first), emitNames(second))
	assert.Equal(t, []string{"A", "Ext", "Hidden", "_Hidden", "g"}, emitNames(first))
}

func TestExportNameClaimedTwice(t *testing.T) {
	p, _, _, _ := build(t, map[string]string{
		entry: "export declare class X {}\nexport declare class Y {}\n",
	})
	xs, ok := p.Lookup(p.Entry(), "X")
	require.True(t, ok)
	ys, ok := p.Lookup(p.Entry(), "Y")
	require.True(t, ok)

	store := astentity.NewStore()
	x, _ := store.Symbol(xs, "X", p.Entry())
	y, _ := store.Symbol(ys, "Y", p.Entry())
	res := &analyzer.Result{
		Store: store,
		Entry: p.Entry(),
		Exports: []astentity.NamedEntity{
			{Name: "X", Entity: x.ID()},
			{Name: "X", Entity: y.ID()},
		},
		Entities: []astentity.EntityID{x.ID(), y.ID()},
	}
	err := collector.New(p, res, collector.Options{}).Analyze(context.Background())
	var ie *collector.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Msg, `"X"`)
}

func TestAnalyzeCancelled(t *testing.T) {
	p, res, _, _ := build(t, map[string]string{entry: "export declare class X {}\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := collector.New(p, res, collector.Options{}).Analyze(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
