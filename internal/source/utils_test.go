package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestToLineCol(t *testing.T) {
	idx := buildLineIndex([]byte("ab\ncd\n\nx"))
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам '\n' относится к своей строке
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
	}
	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("toLineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	if got := toLineCol(nil, 4); got != (LineCol{1, 5}) {
		t.Errorf("single-line toLineCol = %+v", got)
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")
	for _, d := range []string{baseDir, otherDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", d, err)
		}
	}

	target := filepath.Join(otherDir, "schema.ts")
	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "shared", "schema.ts")

	got, err := RelativePath(target, tmp)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if got != "shared/schema.ts" {
		t.Fatalf("expected shared/schema.ts, got %q", got)
	}
}
