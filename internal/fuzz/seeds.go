package fuzztests

import "testing"

const (
	maxFuzzInput = 1 << 16 // 64 KiB
)

var declarationSeeds = []string{
	"",
	"export {};\n",
	"/** @public */\nexport declare function add(a: number, b: number): number;\n",
	"/**\n * A widget.\n * @beta\n */\nexport declare class Widget<T extends object = {}> extends Base<T> implements IWidget {\n  private constructor();\n  protected readonly size: number;\n  static create(): Widget<any>;\n  get value(): T;\n  set value(v: T);\n  [key: string]: unknown;\n}\n",
	"export interface Options {\n  readonly name?: string;\n  (x: number): string;\n  new (x: number): Options;\n  method<K extends keyof this>(k: K): this[K];\n}\n",
	"export declare enum Color { Red = 0, Green = \"g\", Blue }\nexport declare const enum Flags { None = 0, A = 1 << 0 }\n",
	"export type Mapped<T> = { readonly [P in keyof T]?: T[P] extends Function ? never : T[P] };\n",
	"export type Cond<T> = T extends [infer H, ...infer R] ? H : `prefix-${string}`;\n",
	"import { A, type B as C } from './a';\nimport * as ns from \"ns\";\nimport D = require('d');\nexport { A, C as E };\nexport * from './b';\nexport * as sub from './c';\n",
	"export declare namespace Outer.Inner {\n  export const x: number;\n  function hidden(): void;\n}\n",
	"declare global {\n  interface Window { api: unknown }\n}\ndeclare module \"ambient\" {\n  export function f(): void;\n}\n",
	"/// <reference types=\"node\" />\nexport declare let v: string, w: number;\nexport default v;\n",
	"export declare abstract class Shape {\n  abstract area(): number;\n  #secret: string;\n}\n",
	"export declare function overloaded(a: string): string;\nexport declare function overloaded(a: number): number;\n",
	"/** {@link Widget.value | the value} @deprecated use other */\nexport declare const old: () => void;\n",
	"export declare function f(cb: (err: Error | null, ...rest: any[]) => void): asserts cb is Function;\n",
	"export class Impl {\n  run() { return [1, 2, 3].map(x => x * 2); }\n  field = /re[/]gex/g;\n}\n",
	"export declare const broken: = 1;\nexport interface {\n",
	"export declare class C { m(): void\n",
	"/** unterminated doc\nexport declare const x: number;\n",
	"`unterminated template ${",
	"'unterminated string\n",
}

var docSeeds = []string{
	"/** */",
	"/** Summary.\n * @remarks\n * Details here.\n * @public\n */",
	"/**\n * @param a - first\n * @param b second\n * @returns the sum\n * @throws {@link Error}\n */",
	"/** {@inheritDoc pkg#Base.method} */",
	"/** @alpha @beta */",
	"/** {@link ./module#Ns.Member | label} and {@link",
	"/** @unknownTag @sealed @virtual @override",
	"/** unclosed",
	"/** @example\n * ```ts\n * f();\n * ```\n */",
}

func addDeclarationSeeds(f *testing.F) {
	for _, s := range declarationSeeds {
		f.Add([]byte(s))
	}
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
