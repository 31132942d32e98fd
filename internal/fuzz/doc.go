// Package fuzztests houses Go fuzz harnesses for the declaration front end
// (source -> lexer -> parser, plus the TSDoc comment parser). They smoke test
// robustness against panics, hangs and broken spans on arbitrary inputs.
//
// Назначение: загружать байты в FileSet как .d.ts и прогонять их через
// лексер, парсер и tsdoc.
//
// Не делает: анализ экспортов, сборку отчётов, запись файлов.
//
// Зависимости: internal/source, internal/lexer, internal/parser, internal/tsdoc,
// internal/diag, internal/ast, internal/testkit.
package fuzztests
