package lexer

import (
	"apix/internal/diag"
	"apix/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil — тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) errLex(id diag.MessageID, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.Report(lx.opts.Reporter, id, sp, msg).Emit()
	}
}
