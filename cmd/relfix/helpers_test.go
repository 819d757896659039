package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonseale44/Clarafi/internal/config"
	"github.com/jonseale44/Clarafi/internal/driver"
)

func TestTargetPaths(t *testing.T) {
	root := filepath.FromSlash("/work/app")
	cfg := config.Default(root)

	got := targetPaths(&cfg, nil)
	want := []string{filepath.Join(root, "shared", "schema.ts")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("configured paths mismatch (-want +got):\n%s", diff)
	}

	args := []string{"a.ts", "b.ts"}
	if diff := cmp.Diff(args, targetPaths(&cfg, args)); diff != "" {
		t.Errorf("explicit paths mismatch (-want +got):\n%s", diff)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeOff, 10) || !shouldUseTUI(uiModeOn, 1) {
		t.Error("explicit ui modes must win over detection")
	}
}

func TestFailure(t *testing.T) {
	ok := []driver.FileResult{{Path: "a.ts"}, {Path: "b.ts"}}
	if err := failure(ok); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	bad := append(ok, driver.FileResult{Path: "c.ts", Err: driver.ErrWrite})
	if err := failure(bad); err == nil || !failed(bad) {
		t.Error("expected a failure for a write error")
	}
	if errors.Is(failure(bad), errChangesPending) {
		t.Error("write failures must not look like pending changes")
	}
}
