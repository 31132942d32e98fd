package parser

import (
	"regexp"

	"apix/internal/ast"
	"apix/internal/diag"
	"apix/internal/lexer"
	"apix/internal/source"
	"apix/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser — состояние парсера на один файл.
// Файл лексится целиком заранее: разбору типов нужен произвольный lookahead.
type Parser struct {
	toks    []token.Token
	pos     int
	arenas  *ast.Builder
	file    ast.FileID
	src     *source.File
	opts    Options
	lastEnd uint32 // конец последнего съеденного токена

	refs   *[]ast.TypeRef // куда складываются ссылки текущей декларации
	elide  *[]source.Span // тела функций и инициализаторы текущей декларации
	scopes [][]string     // видимые type-параметры
}

type scopeCtx struct {
	parent   ast.DeclID
	ambient  bool
	global   bool
	topLevel bool
}

// ParseFile — входная точка для разбора одного файла декларации.
func ParseFile(src *source.File, arenas *ast.Builder, opts Options) Result {
	lx := lexer.New(src, lexer.Options{Reporter: opts.Reporter})
	p := &Parser{
		toks:   lx.All(),
		arenas: arenas,
		src:    src,
		opts:   opts,
	}
	p.file = arenas.Files.New(ast.File{
		Source:      src.ID,
		Declaration: src.IsDeclarationFile(),
	})
	p.collectFileTrivia()

	ctx := scopeCtx{ambient: src.IsDeclarationFile(), topLevel: true}
	stmts := p.parseStatements(ctx, token.EOF)

	f := arenas.Files.Get(p.file)
	f.Stmts = stmts
	f.Span = source.Span{File: src.ID, Start: 0, End: p.toks[len(p.toks)-1].Span.End}
	f.IsModule = p.hasModuleSyntax(stmts)
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

var referenceDirective = regexp.MustCompile(`^///\s*<reference\s+(types|path|lib)\s*=\s*["']([^"']+)["']`)

func (p *Parser) collectFileTrivia() {
	f := p.arenas.Files.Get(p.file)
	for i, tok := range p.toks {
		for _, tv := range tok.Leading {
			switch tv.Kind {
			case token.TriviaLineComment:
				f.Comments = append(f.Comments, tv.Span)
				if i == 0 {
					if m := referenceDirective.FindStringSubmatch(tv.Text); m != nil {
						f.References = append(f.References, ast.RefDirective{Attr: m[1], Value: m[2]})
					}
				}
			case token.TriviaBlockComment, token.TriviaDocBlock:
				f.Comments = append(f.Comments, tv.Span)
			}
		}
	}
	for _, tv := range p.toks[0].DocComments() {
		f.LeadingDocs = append(f.LeadingDocs, ast.Doc{Span: tv.Span, Text: tv.Text})
	}
}

func (p *Parser) hasModuleSyntax(stmts []ast.StmtID) bool {
	for _, sid := range stmts {
		st := p.arenas.Stmts.Get(sid)
		switch st.Kind {
		case ast.StmtImport, ast.StmtImportEquals, ast.StmtExport, ast.StmtExportAssign:
			return true
		case ast.StmtDecl:
			if p.arenas.Decls.Get(st.Decl).IsExported() {
				return true
			}
		}
	}
	return false
}

// parseStatements — основной цикл: пока не встретим закрывающий токен — parseStatement.
func (p *Parser) parseStatements(ctx scopeCtx, closer token.Kind) []ast.StmtID {
	var out []ast.StmtID
	for !p.at(closer) && !p.at(token.EOF) {
		before := p.pos
		if !p.parseStatement(ctx, &out) {
			p.resyncStatement()
		}
		if p.pos == before {
			p.advance()
		}
	}
	return out
}

// resyncStatement — восстановление после ошибки:
// прокручиваем до ';' ИЛИ до стартового токена следующей декларации на новой строке ИЛИ до '}'.
func (p *Parser) resyncStatement() {
	depth := 0
	first := true
	for !p.at(token.EOF) {
		t := p.peek()
		if depth == 0 && !first {
			if t.Kind == token.RBrace {
				return
			}
			if t.NewlineBefore() && p.startsStatement(p.pos) {
				return
			}
		}
		first = false
		switch t.Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) startsStatement(i int) bool {
	t := p.tokAt(i)
	switch t.Kind {
	case token.KwExport, token.KwImport:
		return true
	}
	return p.startsDeclaration(i)
}
