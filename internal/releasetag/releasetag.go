// Package releasetag defines the release tags and their total order.
package releasetag

import (
	"fmt"

	"apix/internal/tsdoc"
)

// Tag is a release tag. None < Internal < Alpha < Beta < Public.
type Tag uint8

const (
	None Tag = iota
	Internal
	Alpha
	Beta
	Public
)

func (t Tag) String() string {
	switch t {
	case Internal:
		return "internal"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Public:
		return "public"
	}
	return "none"
}

// TagName returns the doc tag spelling ("@beta"), or "" for None.
func (t Tag) TagName() string {
	if t == None {
		return ""
	}
	return "@" + t.String()
}

// FromTagName maps a doc tag to its release tag; @experimental counts as beta.
func FromTagName(name string) (Tag, bool) {
	switch name {
	case tsdoc.TagPublic:
		return Public, true
	case tsdoc.TagBeta, tsdoc.TagExperimental:
		return Beta, true
	case tsdoc.TagAlpha:
		return Alpha, true
	case tsdoc.TagInternal:
		return Internal, true
	}
	return None, false
}

// Parse parses a rollup threshold as written in configuration ("public", "beta", ...).
func Parse(s string) (Tag, error) {
	switch s {
	case "public":
		return Public, nil
	case "beta":
		return Beta, nil
	case "alpha":
		return Alpha, nil
	case "internal":
		return Internal, nil
	case "none", "":
		return None, nil
	}
	return None, fmt.Errorf("unknown release tag %q", s)
}

// Max returns the more public of two tags.
func Max(a, b Tag) Tag {
	if a > b {
		return a
	}
	return b
}

// IsMorePublic reports whether a is strictly more public than b.
func IsMorePublic(a, b Tag) bool { return a > b }

// IncludedIn reports whether an item tagged t belongs to a rollup trimmed to
// threshold. Untagged items are kept in every rollup; None as threshold keeps everything.
func (t Tag) IncludedIn(threshold Tag) bool {
	return t == None || threshold == None || t >= threshold
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
