package ui

import (
	"strings"
	"testing"

	"github.com/jonseale44/Clarafi/internal/driver"
)

func TestApplyEventTracksStages(t *testing.T) {
	m := NewProgressModel("relfix", []string{"a.ts", "b.ts"}, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.ts", Stage: driver.StageRewrite, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "rewriting" {
		t.Fatalf("status = %q, want rewriting", got)
	}
	if p := m.percent(); p != 0.2 {
		t.Errorf("percent = %v, want 0.2", p)
	}

	m.applyEvent(driver.Event{File: "a.ts", Status: driver.StatusDone, Matched: 3})
	m.applyEvent(driver.Event{File: "b.ts", Status: driver.StatusError})
	if p := m.percent(); p != 1.0 {
		t.Errorf("percent = %v, want 1", p)
	}
	if m.items[0].matched != 3 || m.items[1].status != "error" {
		t.Errorf("unexpected items %+v", m.items)
	}

	// неизвестные файлы игнорируются
	m.applyEvent(driver.Event{File: "c.ts", Status: driver.StatusDone})

	view := m.View()
	if !strings.Contains(view, "a.ts") || !strings.Contains(view, "3 matched") {
		t.Errorf("view misses file rows:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"shared/schema.ts", 40, "shared/schema.ts"},
		{"shared/schema.ts", 10, "shared/..."},
		{"schema.ts", 3, "sch"},
		{"schema.ts", 0, "schema.ts"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
