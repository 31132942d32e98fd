package analyzer

import "sync"

// builtinLibNames returns the names the standard TypeScript libraries declare
// globally; references to them are ambient even without a declaration in the program.
func builtinLibNames() []string {
	return []string{
		// es5 / es2015+
		"Object", "Function", "String", "Number", "Boolean", "Symbol", "BigInt",
		"Array", "ReadonlyArray", "ArrayLike", "ConcatArray", "TemplateStringsArray",
		"Promise", "PromiseLike", "PromiseConstructorLike", "Awaited",
		"Map", "Set", "WeakMap", "WeakSet", "WeakRef", "ReadonlyMap", "ReadonlySet", "FinalizationRegistry",
		"Date", "RegExp", "RegExpMatchArray", "RegExpExecArray",
		"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError", "AggregateError",
		"JSON", "Math", "Reflect", "Proxy", "ProxyHandler", "Atomics", "Intl",
		"Iterable", "Iterator", "IterableIterator", "IteratorResult", "IteratorYieldResult", "IteratorReturnResult",
		"AsyncIterable", "AsyncIterator", "AsyncIterableIterator", "Generator", "AsyncGenerator",
		"GeneratorFunction", "AsyncGeneratorFunction",
		"ArrayBuffer", "SharedArrayBuffer", "ArrayBufferLike", "ArrayBufferView", "DataView",
		"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
		"Int32Array", "Uint32Array", "Float32Array", "Float64Array", "BigInt64Array", "BigUint64Array",
		"PropertyKey", "PropertyDescriptor", "PropertyDescriptorMap", "TypedPropertyDescriptor",
		"ClassDecorator", "PropertyDecorator", "MethodDecorator", "ParameterDecorator",
		"CallableFunction", "NewableFunction", "IArguments", "globalThis",
		// utility types
		"Partial", "Required", "Readonly", "Record", "Pick", "Omit", "Exclude", "Extract",
		"NonNullable", "Parameters", "ConstructorParameters", "ReturnType", "InstanceType",
		"ThisParameterType", "OmitThisParameter", "ThisType", "NoInfer",
		"Uppercase", "Lowercase", "Capitalize", "Uncapitalize",
		// dom и окружение хоста, которые попадают в типичные .d.ts
		"console", "Console", "setTimeout", "clearTimeout", "setInterval", "clearInterval",
		"EventTarget", "Event", "EventListener", "EventListenerOrEventListenerObject", "CustomEvent",
		"Node", "Element", "HTMLElement", "Document", "Window", "Text",
		"AbortController", "AbortSignal", "URL", "URLSearchParams", "Headers", "Request", "Response",
		"RequestInit", "ResponseInit", "Blob", "File", "FormData",
		"ReadableStream", "WritableStream", "TransformStream", "TextEncoder", "TextDecoder",
		"Worker", "MessagePort", "MessageEvent", "WebSocket", "Storage",
	}
}

var (
	builtinOnce sync.Once
	builtinSet  map[string]bool
)

func isBuiltinName(name string) bool {
	builtinOnce.Do(func() {
		names := builtinLibNames()
		builtinSet = make(map[string]bool, len(names))
		for _, n := range names {
			builtinSet[n] = true
		}
	})
	return builtinSet[name]
}
