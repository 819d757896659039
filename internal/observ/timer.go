package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase accumulates the time spent in one pipeline phase across files.
type Phase struct {
	Name  string
	Dur   time.Duration
	Count int
	Note  string
}

// Timer tracks phase durations. Files are processed concurrently, so the
// timer is safe for use from several goroutines; phases with the same name
// are summed.
type Timer struct {
	mu     sync.Mutex
	start  time.Time
	phases []Phase
	index  map[string]int
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{
		start:  time.Now(),
		phases: make([]Phase, 0, 8),
		index:  make(map[string]int, 8),
	}
}

// Add records d for the named phase.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.index[name]
	if !ok {
		idx = len(t.phases)
		t.index[name] = idx
		t.phases = append(t.phases, Phase{Name: name})
	}
	t.phases[idx].Dur += d
	t.phases[idx].Count++
}

// Track starts measuring a phase; the returned func stops it.
func (t *Timer) Track(name string) func() {
	if t == nil {
		return func() {}
	}
	started := time.Now()
	return func() { t.Add(name, time.Since(started)) }
}

// Note attaches a note to a phase that was already recorded.
func (t *Timer) Note(name, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx, ok := t.index[name]; ok {
		t.phases[idx].Note = note
	}
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-12s %7.2f ms  x%d", p.Name, p.DurationMS, p.Count)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s %7.2f ms\n", "wall", report.WallMS)
	return sb.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	// WallMS is the time since NewTimer; phases of different files overlap,
	// so it is usually smaller than the phase sum.
	WallMS float64       `json:"wall_ms"`
	Phases []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	report := Report{
		WallMS: durationToMillis(time.Since(t.start)),
		Phases: make([]PhaseReport, len(t.phases)),
	}
	for i, phase := range t.phases {
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Count:      phase.Count,
			Note:       phase.Note,
		}
	}
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
