package emit

import (
	"fmt"

	"apix/internal/collector"
	"apix/internal/releasetag"
)

// RollupKind selects which declarations a .d.ts rollup keeps.
type RollupKind uint8

const (
	RollupUntrimmed RollupKind = iota
	RollupAlpha
	RollupBeta
	RollupPublic
)

func (k RollupKind) String() string {
	switch k {
	case RollupUntrimmed:
		return "untrimmed"
	case RollupAlpha:
		return "alpha"
	case RollupBeta:
		return "beta"
	case RollupPublic:
		return "public"
	}
	return fmt.Sprintf("RollupKind(%d)", uint8(k))
}

// Threshold is the least public release tag the rollup keeps.
func (k RollupKind) Threshold() releasetag.Tag {
	switch k {
	case RollupAlpha:
		return releasetag.Alpha
	case RollupBeta:
		return releasetag.Beta
	case RollupPublic:
		return releasetag.Public
	}
	return releasetag.None
}

// Rollup renders a single .d.ts file with every declaration of the package.
// Declarations below the kind's threshold are replaced by exclusion comments.
func Rollup(c *collector.Collector, kind RollupKind) (string, error) {
	p := newPrinter(c)
	p.threshold = kind.Threshold()

	w := NewWriter("    ")
	if doc := c.Package().DocComment; doc != nil {
		w.WriteLine(p.prog.Text(doc.Span))
		w.WriteLine("")
	}
	p.typeReferences(w)
	p.imports(w)
	if err := p.body(w); err != nil {
		return "", fmt.Errorf("%s rollup: %w", kind, err)
	}
	p.trailingExports(w)

	w.EnsureBlankLine()
	w.WriteLine("export { }")
	return w.String(), nil
}
