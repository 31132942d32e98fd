package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token (including contextual keywords).
	Ident
	// PrivateName is a '#name' class member.
	PrivateName

	// StringLit is a single- or double-quoted string.
	StringLit
	// NumberLit is a numeric literal (decimal, hex, octal, binary, bigint).
	NumberLit
	// TemplateLit is a whole `...` template, including nested ${...} parts.
	TemplateLit

	keywordBeg
	KwBreak
	KwCase
	KwCatch
	KwClass
	KwConst
	KwContinue
	KwDebugger
	KwDefault
	KwDelete
	KwDo
	KwElse
	KwEnum
	KwExport
	KwExtends
	KwFalse
	KwFinally
	KwFor
	KwFunction
	KwIf
	KwImplements
	KwImport
	KwIn
	KwInstanceof
	KwInterface
	KwLet
	KwNew
	KwNull
	KwReturn
	KwSuper
	KwSwitch
	KwThis
	KwThrow
	KwTrue
	KwTry
	KwTypeof
	KwVar
	KwVoid
	KwWhile
	KwWith
	KwYield
	keywordEnd

	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Semicolon // ;
	Comma     // ,
	Dot       // .
	DotDotDot // ...
	Lt        // <
	Gt        // >
	Assign    // =
	Colon     // :
	Question  // ?
	QuestionDot
	Arrow // =>
	Pipe  // |
	Amp   // &
	Star  // *
	At    // @
	Bang  // !
	Plus  // +
	Minus // -
	// Other covers operators the declaration parser never inspects (/, %, ^, ~, ==, &&, ...).
	Other
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Ident:       "Ident",
	PrivateName: "PrivateName",
	StringLit:   "StringLit",
	NumberLit:   "NumberLit",
	TemplateLit: "TemplateLit",
	LBrace:      "{",
	RBrace:      "}",
	LParen:      "(",
	RParen:      ")",
	LBracket:    "[",
	RBracket:    "]",
	Semicolon:   ";",
	Comma:       ",",
	Dot:         ".",
	DotDotDot:   "...",
	Lt:          "<",
	Gt:          ">",
	Assign:      "=",
	Colon:       ":",
	Question:    "?",
	QuestionDot: "?.",
	Arrow:       "=>",
	Pipe:        "|",
	Amp:         "&",
	Star:        "*",
	At:          "@",
	Bang:        "!",
	Plus:        "+",
	Minus:       "-",
	Other:       "Other",
}

func (k Kind) String() string {
	if k.IsKeyword() {
		return keywordText[k]
	}
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k > keywordBeg && k < keywordEnd
}
