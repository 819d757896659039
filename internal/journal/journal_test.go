package journal

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return j
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func record(t *testing.T, j *Journal, path string, before, after []byte) {
	t.Helper()
	if err := os.WriteFile(path, after, 0o644); err != nil {
		t.Fatal(err)
	}
	err := j.Record(&Entry{
		Path:       path,
		Before:     before,
		BeforeHash: sha256.Sum256(before),
		AfterHash:  sha256.Sum256(after),
		Fields:     []string{"userId"},
		Matched:    1,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestLatestWithoutEntries(t *testing.T) {
	j := openTestJournal(t)
	_, err := j.Latest(filepath.Join(t.TempDir(), "schema.ts"))
	if !errors.Is(err, ErrNoEntry) {
		t.Fatalf("expected ErrNoEntry, got %v", err)
	}
}

func TestRecordAndLatest(t *testing.T) {
	j := openTestJournal(t)
	path := filepath.Join(t.TempDir(), "schema.ts")
	record(t, j, path, []byte("v1"), []byte("v2"))
	record(t, j, path, []byte("v2"), []byte("v3"))

	entries, err := j.Entries(path)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	latest, err := j.Latest(path)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(latest.Before) != "v2" || latest.Matched != 1 || latest.Fields[0] != "userId" {
		t.Errorf("unexpected latest entry %+v", latest)
	}
	if !latest.Time.After(entries[0].Time) {
		t.Error("entries are not ordered by time")
	}
}

func TestRestore(t *testing.T) {
	j := openTestJournal(t)
	path := filepath.Join(t.TempDir(), "schema.ts")
	record(t, j, path, []byte("original"), []byte("rewritten"))

	e, err := j.Restore(path, false, writeFile)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "original" || string(e.Before) != "original" {
		t.Errorf("file = %q", got)
	}
	if _, err := j.Latest(path); !errors.Is(err, ErrNoEntry) {
		t.Errorf("restored entry should be dropped, got %v", err)
	}
}

func TestRestoreRefusesModifiedFile(t *testing.T) {
	j := openTestJournal(t)
	path := filepath.Join(t.TempDir(), "schema.ts")
	record(t, j, path, []byte("original"), []byte("rewritten"))
	if err := os.WriteFile(path, []byte("edited by hand"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := j.Restore(path, false, writeFile); !errors.Is(err, ErrModified) {
		t.Fatalf("expected ErrModified, got %v", err)
	}
	if _, err := j.Restore(path, true, writeFile); err != nil {
		t.Fatalf("forced Restore: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("file = %q", got)
	}
}

func TestPrune(t *testing.T) {
	j := openTestJournal(t)
	path := filepath.Join(t.TempDir(), "schema.ts")
	for _, v := range []string{"a", "b", "c", "d"} {
		record(t, j, path, []byte(v), []byte(v+"!"))
	}
	removed, err := j.Prune(path, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d, want 2", removed)
	}
	entries, _ := j.Entries(path)
	if len(entries) != 2 || string(entries[0].Before) != "c" {
		t.Errorf("unexpected entries after prune: %d", len(entries))
	}
}

func TestEntriesAreScopedByPath(t *testing.T) {
	j := openTestJournal(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "b.ts")
	record(t, j, a, []byte("a0"), []byte("a1"))
	record(t, j, b, []byte("b0"), []byte("b1"))

	e, err := j.Latest(a)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(e.Before) != "a0" {
		t.Errorf("got entry for the wrong file: %q", e.Before)
	}
}
