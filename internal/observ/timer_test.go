package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")
	tm.End(42, "ignored")
	err := tm.Measure("emit", func() error { return errors.New("boom") })
	if err == nil {
		t.Fatal("Measure must return fn's error")
	}

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].Note != "3 files" || r.Phases[1].Note != "failed" {
		t.Errorf("notes = %q, %q", r.Phases[0].Note, r.Phases[1].Note)
	}
	s := tm.Summary()
	for _, want := range []string{"timings:", "load", "// 3 files", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Errorf("empty report = %+v", r)
	}
}
