package ui

import (
	"math"
	"strings"
	"testing"

	"apix/internal/driver"
)

func TestProgressModelTracksPackages(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("apix batch", []string{"a/apix.toml", "b/apix.toml"}, events).(*progressModel)

	m.applyEvent(driver.Event{Package: "a/apix.toml", Stage: driver.StageAnalyze, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{Package: "b/apix.toml", Stage: driver.StageWrite, Status: driver.StatusError})
	m.applyEvent(driver.Event{Package: "unknown", Stage: driver.StageWrite, Status: driver.StatusDone})

	if m.items[0].status != "analyzing" || m.items[1].status != "error" {
		t.Fatalf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}
	if got := m.percent(); math.Abs(got-0.65) > 1e-9 {
		t.Errorf("percent = %v", got)
	}
	view := m.View()
	for _, want := range []string{"apix batch", "a/apix.toml", "analyzing", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("t", nil, events).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatal("closed channel should produce doneMsg")
	}
	if m.View() != "" {
		t.Error("empty model renders nothing")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
