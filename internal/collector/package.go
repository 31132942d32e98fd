package collector

import (
	"apix/internal/program"
	"apix/internal/tsdoc"
)

// CollectorPackage describes the package under analysis. It is filled once at
// the start of Analyze and read-only afterwards.
type CollectorPackage struct {
	PackageFolder string
	Name          string
	Version       string
	// EntryPoint is the normalized path of the entry point file.
	EntryPoint  string
	EntryModule program.ModuleID
	// DocComment is the @packageDocumentation comment, if any.
	DocComment *tsdoc.Comment
}

// UnscopedName strips the "@scope/" prefix from the package name.
func (p *CollectorPackage) UnscopedName() string {
	name := p.Name
	if len(name) > 0 && name[0] == '@' {
		for i := 1; i < len(name); i++ {
			if name[i] == '/' {
				return name[i+1:]
			}
		}
	}
	return name
}
