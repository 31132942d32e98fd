package emit

import (
	"path/filepath"
	"strings"

	"apix/internal/collector"
	"apix/internal/diag"
	"apix/internal/releasetag"
	"apix/internal/version"
)

// APIReport renders the API report of an analyzed package. Messages that the
// router marked for the report are consumed: anchored ones become WARNING
// lines above their declaration, the rest form the trailing warnings section.
func APIReport(c *collector.Collector, router *diag.Router) (string, error) {
	p := newPrinter(c)
	p.report = true
	p.threshold = releasetag.None
	p.router = router

	pkg := c.Package()
	w := NewWriter("    ")
	w.WriteLine(`## API Report File for "` + pkg.Name + `"`)
	w.WriteLine("")
	w.WriteLine("> Do not edit this file. It is a report generated by " + version.ToolName + ".")
	w.WriteLine("")
	w.WriteLine("```ts")
	w.WriteLine("")

	p.typeReferences(w)
	p.imports(w)
	if err := p.body(w); err != nil {
		return "", err
	}
	p.trailingExports(w)

	if router != nil {
		if msgs := router.FetchUnassociated(); len(msgs) > 0 {
			w.EnsureBlankLine()
			w.WriteLine("// Warnings were encountered during analysis:")
			w.WriteLine("//")
			for _, m := range msgs {
				m.Path = relativePath(pkg.PackageFolder, m.Path)
				w.WriteLine("// " + oneLine(m.String()))
			}
		}
	}

	if pkg.DocComment == nil {
		w.EnsureBlankLine()
		w.WriteLine("// (No @packageDocumentation comment for this package)")
	}

	w.EnsureBlankLine()
	w.WriteLine("```")
	return w.String(), nil
}

// relativePath makes a message path relative to the package folder when it lies below it.
func relativePath(folder, path string) string {
	if folder == "" || path == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(folder, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
