package config

import (
	"fmt"
	"sort"

	"apix/internal/diag"
	"apix/internal/releasetag"
)

// Policy builds the message policy: the built-in defaults overridden by [messages.*].
func (c *Config) Policy() (*diag.Policy, error) {
	p := diag.DefaultPolicy()
	groups := []struct {
		cat   diag.Category
		rules map[string]MessageRule
	}{
		{diag.CategoryCompiler, c.Messages.Compiler},
		{diag.CategoryExtractor, c.Messages.Extractor},
		{diag.CategoryTSDoc, c.Messages.TSDoc},
	}
	for _, g := range groups {
		// default first so explicit IDs see it
		if r, ok := g.rules["default"]; ok {
			p.SetDefault(g.cat, merge(categoryDefault(p, g.cat), r))
		}
		ids := make([]string, 0, len(g.rules))
		for id := range g.rules {
			if id != "default" {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		for _, id := range ids {
			mid := diag.MessageID(id)
			if mid.Category() != g.cat {
				return nil, fmt.Errorf("[messages.%s] cannot configure %q", g.cat, id)
			}
			p.Set(mid, merge(p.Rule(mid), g.rules[id]))
		}
	}
	return p, nil
}

func categoryDefault(p *diag.Policy, c diag.Category) diag.Rule {
	switch c {
	case diag.CategoryCompiler:
		return p.Compiler.Default
	case diag.CategoryTSDoc:
		return p.TSDoc.Default
	}
	return p.Extractor.Default
}

func merge(base diag.Rule, r MessageRule) diag.Rule {
	if r.LogLevel != nil {
		base.LogLevel = *r.LogLevel
	}
	if r.AddToReport != nil {
		base.AddToReport = *r.AddToReport
	}
	return base
}

// DocModelThreshold parses [docModel].releaseTagThreshold.
func (c *Config) DocModelThreshold() (releasetag.Tag, error) {
	t, err := releasetag.Parse(c.DocModel.ReleaseTagThreshold)
	if err != nil {
		return releasetag.None, fmt.Errorf("[docModel].releaseTagThreshold: %w", err)
	}
	return t, nil
}
