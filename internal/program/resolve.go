package program

import (
	"os"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultResolveCacheSize = 512

var jsExtensions = []struct{ js, dts, ts string }{
	{".js", ".d.ts", ".ts"},
	{".mjs", ".d.mts", ".mts"},
	{".cjs", ".d.cts", ".cts"},
}

// resolver maps relative specifiers to file paths. Results are memoized per
// (directory, specifier) pair in a bounded LRU cache.
type resolver struct {
	exists func(string) bool
	cache  *lru.Cache[string, string]
}

func newResolver(size int, exists func(string) bool) *resolver {
	if size <= 0 {
		size = defaultResolveCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		// lru.New fails only for non-positive sizes
		panic(err)
	}
	return &resolver{exists: exists, cache: cache}
}

// IsRelative reports whether spec is a relative or absolute path specifier.
func IsRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." || strings.HasPrefix(spec, "/")
}

// resolve returns the file a relative specifier refers to, or "" when none exists.
func (r *resolver) resolve(fromFile, spec string) string {
	dir := path.Dir(fromFile)
	key := dir + "\x00" + spec
	if hit, ok := r.cache.Get(key); ok {
		return hit
	}
	found := ""
	for _, c := range candidates(dir, spec) {
		if r.exists(c) {
			found = c
			break
		}
	}
	r.cache.Add(key, found)
	return found
}

func candidates(dir, spec string) []string {
	base := spec
	if !strings.HasPrefix(spec, "/") {
		base = path.Join(dir, spec)
	}
	base = path.Clean(base)
	var out []string
	for _, ext := range jsExtensions {
		if stem, ok := strings.CutSuffix(base, ext.js); ok {
			out = append(out, stem+ext.dts, stem+ext.ts)
		}
	}
	if strings.HasSuffix(base, ".ts") || strings.HasSuffix(base, ".mts") || strings.HasSuffix(base, ".cts") {
		out = append(out, base)
	}
	return append(out,
		base+".d.ts",
		base+".ts",
		base+"/index.d.ts",
		base+"/index.ts",
	)
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
