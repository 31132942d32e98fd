package diag

import "apix/internal/source"

// Reporter — минимальный контракт получения диагностик от фаз.
// Реализации: BagReporter (кладёт в Bag), Router (policy + report association).
type Reporter interface {
	Report(id MessageID, primary source.Span, msg string, anchor Anchor, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, id MessageID, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag: Diagnostic{
			ID:      id,
			Message: msg,
			Primary: primary,
		},
	}
}

// Report is the usual entry point: diag.Report(r, id, span, msg).WithAnchor(a).Emit().
func Report(r Reporter, id MessageID, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, id, primary, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	return b
}

// WithAnchor associates the diagnostic with a declaration.
func (b *ReportBuilder) WithAnchor(a Anchor) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Anchor = a
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.ID, b.diag.Primary, b.diag.Message, b.diag.Anchor, b.diag.Notes)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(id MessageID, primary source.Span, msg string, anchor Anchor, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		ID: id, Message: msg, Primary: primary,
		Anchor: anchor, Notes: notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(MessageID, source.Span, string, Anchor, []Note) {}

// AnchoredReporter attaches Anchor to every diagnostic that has none.
type AnchoredReporter struct {
	Reporter Reporter
	Anchor   Anchor
}

func (r AnchoredReporter) Report(id MessageID, primary source.Span, msg string, anchor Anchor, notes []Note) {
	if r.Reporter == nil {
		return
	}
	if anchor == NoAnchor {
		anchor = r.Anchor
	}
	r.Reporter.Report(id, primary, msg, anchor, notes)
}
