package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(strings.ToUpper(s))
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if l.String() != s {
			t.Errorf("round trip %q -> %q", s, l)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeError, false},
		{LevelError, ScopeError, true},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeCandidate, false},
		{LevelDetail, ScopeCandidate, true},
		{LevelDebug, ScopeCandidate, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestSpansThroughContext(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), tracer)

	ctx, file := Start(ctx, ScopeFile, "file:schema.ts")
	Point(ctx, ScopeCandidate, "candidate", "author", map[string]string{"line": "2"})
	file.WithExtra("matched", "1").End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 events, got %d:\n%s", len(lines), buf.String())
	}
	var evs []map[string]any
	for _, line := range lines {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad ndjson %q: %v", line, err)
		}
		evs = append(evs, ev)
	}
	if evs[0]["kind"] != "begin" || evs[1]["kind"] != "point" || evs[2]["kind"] != "end" {
		t.Errorf("unexpected kinds: %v", evs)
	}
	if evs[1]["parent_id"] != evs[0]["span_id"] {
		t.Errorf("point is not parented to the file span: %v", evs[1])
	}
	if evs[2]["extra"].(map[string]any)["matched"] != "1" {
		t.Errorf("missing extra on end event: %v", evs[2])
	}
}

func TestLevelFiltersCandidates(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	Point(ctx, ScopeCandidate, "candidate", "", nil)
	if buf.Len() != 0 {
		t.Errorf("candidate point emitted at phase level: %q", buf.String())
	}
	Error(ctx, "write", errors.New("disk full"))
	if !strings.Contains(buf.String(), "error write (disk full)") {
		t.Errorf("error point missing: %q", buf.String())
	}
}

func TestNopWhenOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr != Nop || tr.Enabled() {
		t.Error("LevelOff should yield the nop tracer")
	}
	ctx, span := Start(WithTracer(context.Background(), tr), ScopeDriver, "run")
	if span.ID() != 0 || CurrentSpan(ctx).SpanID != 0 {
		t.Error("nop span should not be recorded")
	}
	if span.End("") != 0 {
		t.Error("nop span should report zero duration")
	}
}
