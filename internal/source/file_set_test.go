package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("schema.ts", []byte("export const a = 1;"), 0)
	id2 := fs.Add("schema.ts", []byte("export const a = 2;"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	// GetByPath возвращает последнюю версию
	latest, ok := fs.GetByPath("schema.ts")
	if !ok {
		t.Fatal("expected file to exist after Add")
	}
	if latest.ID != id2 {
		t.Errorf("expected latest id %d, got %d", id2, latest.ID)
	}
	if string(fs.Get(id1).Content) != "export const a = 1;" {
		t.Errorf("old version content changed: %q", fs.Get(id1).Content)
	}
	if fs.Get(FileID(42)) != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestLoadKeepsBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.ts")
	raw := "\xEF\xBB\xBFa: one(b),\r\nc: many(d),\r\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != raw {
		t.Errorf("content was altered on load: %q", f.Content)
	}
	if f.Flags&FileHasCRLF == 0 {
		t.Error("expected FileHasCRLF flag")
	}
	if f.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag")
	}
	if f.Flags&FileVirtual != 0 {
		t.Error("loaded file must not be virtual")
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.ts")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.ts", []byte("first\r\nsecond\n\nlast")))

	tests := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, ""},
		{4, "last"},
		{5, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestLineBounds(t *testing.T) {
	fs := NewFileSet()
	content := "ab\n  cd: one(x)\nef"
	f := fs.Get(fs.AddVirtual("x.ts", []byte(content)))

	off := uint32(5) // 'c'
	if got := f.LineStart(off); got != 3 {
		t.Errorf("LineStart = %d, want 3", got)
	}
	if got := f.LineEnd(off); got != 15 {
		t.Errorf("LineEnd = %d, want 15", got)
	}
	if got := f.LineEnd(16); got != f.Len() {
		t.Errorf("LineEnd on last line = %d, want %d", got, f.Len())
	}
	if got := f.Text(Span{Start: 5, End: 7}); got != "cd" {
		t.Errorf("Text = %q, want \"cd\"", got)
	}
}
