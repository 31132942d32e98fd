package tsdoc

import (
	"errors"
	"strings"
)

// Reference is a parsed declaration reference: "[package][/path]#Member.member".
type Reference struct {
	Package    string
	ImportPath string
	Members    []string
}

var errEmptyReference = errors.New("empty declaration reference")

// ParseReference parses the declaration reference used by {@link} and {@inheritDoc}.
// Selectors like "(Foo:class)" and "foo:instance" are accepted and dropped.
func ParseReference(text string) (Reference, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reference{}, errEmptyReference
	}
	var ref Reference
	memberPart := text
	if hash := strings.IndexByte(text, '#'); hash >= 0 {
		ref.Package, ref.ImportPath = splitPackage(text[:hash])
		memberPart = text[hash+1:]
		if memberPart == "" {
			// "pkg#" ссылается на сам пакет
			return ref, nil
		}
	}
	for _, seg := range splitMembers(memberPart) {
		seg = strings.TrimSuffix(strings.TrimPrefix(seg, "("), ")")
		if colon := strings.IndexByte(seg, ':'); colon >= 0 {
			seg = seg[:colon]
		}
		if !isIdentifier(seg) {
			return Reference{}, errors.New("invalid member name " + quote(seg))
		}
		ref.Members = append(ref.Members, seg)
	}
	return ref, nil
}

// splitMembers splits on dots outside of parentheses.
func splitMembers(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func splitPackage(s string) (pkg, importPath string) {
	if s == "" {
		return "", ""
	}
	if strings.HasPrefix(s, ".") {
		return "", s
	}
	parts := strings.Split(s, "/")
	n := 1
	if strings.HasPrefix(s, "@") && len(parts) > 1 {
		n = 2
	}
	pkg = strings.Join(parts[:n], "/")
	if len(parts) > n {
		importPath = strings.Join(parts[n:], "/")
	}
	return pkg, importPath
}

// IsLocal reports whether the reference points into the package named pkg.
func (r Reference) IsLocal(pkg string) bool {
	return (r.Package == "" || r.Package == pkg) && (r.ImportPath == "" || strings.HasPrefix(r.ImportPath, "."))
}

func (r Reference) String() string {
	var b strings.Builder
	if r.Package != "" || r.ImportPath != "" {
		b.WriteString(r.Package)
		if r.ImportPath != "" {
			if r.Package != "" {
				b.WriteByte('/')
			}
			b.WriteString(r.ImportPath)
		}
		b.WriteByte('#')
	}
	b.WriteString(strings.Join(r.Members, "."))
	return b.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}

func quote(s string) string { return `"` + s + `"` }
