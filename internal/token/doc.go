// Package token defines lexical token kinds and trivia for the declaration-file front end.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly (Begin..End).
//   - Only reserved words get keyword kinds. Contextual words (type, declare, namespace,
//     module, abstract, readonly, from, as, ...) stay Ident and are matched by text.
//   - '>' is always a single-character token; the parser never needs '>>' or '>='.
//   - Doc comments (/** ... */) are leading Trivia (TriviaDocBlock) of the next token.
package token
