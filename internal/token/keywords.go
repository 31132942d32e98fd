package token

var keywords = map[string]Kind{
	"break":      KwBreak,
	"case":       KwCase,
	"catch":      KwCatch,
	"class":      KwClass,
	"const":      KwConst,
	"continue":   KwContinue,
	"debugger":   KwDebugger,
	"default":    KwDefault,
	"delete":     KwDelete,
	"do":         KwDo,
	"else":       KwElse,
	"enum":       KwEnum,
	"export":     KwExport,
	"extends":    KwExtends,
	"false":      KwFalse,
	"finally":    KwFinally,
	"for":        KwFor,
	"function":   KwFunction,
	"if":         KwIf,
	"implements": KwImplements,
	"import":     KwImport,
	"in":         KwIn,
	"instanceof": KwInstanceof,
	"interface":  KwInterface,
	"let":        KwLet,
	"new":        KwNew,
	"null":       KwNull,
	"return":     KwReturn,
	"super":      KwSuper,
	"switch":     KwSwitch,
	"this":       KwThis,
	"throw":      KwThrow,
	"true":       KwTrue,
	"try":        KwTry,
	"typeof":     KwTypeof,
	"var":        KwVar,
	"void":       KwVoid,
	"while":      KwWhile,
	"with":       KwWith,
	"yield":      KwYield,
}

var keywordText = func() map[Kind]string {
	out := make(map[Kind]string, len(keywords))
	for text, kind := range keywords {
		out[kind] = text
	}
	return out
}()

// LookupKeyword returns the keyword kind for ident, if it is a reserved word.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
