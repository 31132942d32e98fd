// Package tsdoc parses /** */ documentation comments: summary and block sections,
// modifier tags (release tags included), {@link} and {@inheritDoc} references.
package tsdoc
