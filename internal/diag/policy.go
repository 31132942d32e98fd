package diag

// Rule is the reporting rule for one message ID.
type Rule struct {
	LogLevel    LogLevel
	AddToReport bool
}

// Bucket holds per-ID rules of one category plus the fallback.
type Bucket struct {
	Default Rule
	Rules   map[MessageID]Rule
}

// Policy maps message IDs to reporting rules.
type Policy struct {
	Compiler  Bucket
	TSDoc     Bucket
	Extractor Bucket
}

// DefaultPolicy returns the built-in policy: compiler messages are errors,
// tsdoc messages are warnings, analyzer messages follow a per-ID table.
func DefaultPolicy() *Policy {
	report := Rule{LogLevel: LevelWarning, AddToReport: true}
	return &Policy{
		Compiler: Bucket{
			Default: Rule{LogLevel: LevelError},
			Rules:   map[MessageID]Rule{},
		},
		TSDoc: Bucket{
			Default: Rule{LogLevel: LevelWarning},
			Rules:   map[MessageID]Rule{},
		},
		Extractor: Bucket{
			Default: Rule{LogLevel: LevelWarning},
			Rules: map[MessageID]Rule{
				AEForgottenExport:           report,
				AEIncompatibleReleaseTags:   report,
				AEInternalMissingUnderscore: report,
				AEInternalMixedReleaseTag:   report,
				AEMissingReleaseTag:         report,
				AEUnresolvedInheritDocRef:   report,
				AEUnresolvedInheritDocBase:  report,
				AEUnresolvedLink:            report,
				AECyclicInheritDoc:          report,
				AESetterWithDocs:            report,
				AEUndocumented:              {LogLevel: LevelNone, AddToReport: true},
				AEWrongInputFileType:        {LogLevel: LevelError},
			},
		},
	}
}

func (p *Policy) bucket(c Category) *Bucket {
	switch c {
	case CategoryCompiler:
		return &p.Compiler
	case CategoryTSDoc:
		return &p.TSDoc
	case CategoryExtractor:
		return &p.Extractor
	}
	return nil
}

// Rule looks up the rule for id; a miss falls back to the category default.
func (p *Policy) Rule(id MessageID) Rule {
	b := p.bucket(id.Category())
	if b == nil {
		return Rule{LogLevel: LevelInfo}
	}
	if r, ok := b.Rules[id]; ok {
		return r
	}
	return b.Default
}

// Set overrides the rule of one message ID.
func (p *Policy) Set(id MessageID, r Rule) {
	b := p.bucket(id.Category())
	if b == nil {
		return
	}
	if b.Rules == nil {
		b.Rules = make(map[MessageID]Rule)
	}
	b.Rules[id] = r
}

// SetDefault overrides the fallback rule of a category.
func (p *Policy) SetDefault(c Category, r Rule) {
	if b := p.bucket(c); b != nil {
		b.Default = r
	}
}
