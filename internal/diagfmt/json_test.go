package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/fix"
	"github.com/jonseale44/Clarafi/internal/relation"
	"github.com/jonseale44/Clarafi/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("schema.ts", []byte("x = {\n  a: one(b\n"))

	bag := diag.NewBag(10)
	d := diag.New(diag.SevWarning, diag.RelUnbalanced,
		source.Span{File: fileID, Start: 12, End: 13}, "relation \"a\" skipped")
	bag.Add(d.WithNote(source.Span{File: fileID, Start: 8, End: 13}, "declaration starts here"))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	want := DiagnosticsOutput{
		Count: 1,
		Diagnostics: []DiagnosticJSON{{
			Severity: "WARNING",
			Code:     "REL1001",
			Message:  "relation \"a\" skipped",
			Location: LocationJSON{File: "schema.ts", StartByte: 12, EndByte: 13, StartLine: 2, StartCol: 7, EndLine: 2, EndCol: 8},
			Notes: []NoteJSON{{
				Message:  "declaration starts here",
				Location: LocationJSON{File: "schema.ts", StartByte: 8, EndByte: 13, StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 8},
			}},
		}},
	}
	if diff := cmp.Diff(want, output); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONMax(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("schema.ts", []byte("abc"))
	bag := diag.NewBag(0)
	for range 3 {
		bag.Add(diag.New(diag.SevWarning, diag.RelSharedLine, source.Span{File: fileID, Start: 0, End: 1}, "x"))
	}
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 2}); err != nil {
		t.Fatal(err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatal(err)
	}
	if output.Count != 2 {
		t.Errorf("expected 2 diagnostics, got %d", output.Count)
	}
}

func TestRunJSON(t *testing.T) {
	fs := source.NewFileSet()
	content := "x = {\n  a: one(b, { fields: [t.userId] }),\n  c: one(d),\n}\n"
	f := fs.Get(fs.AddVirtual("schema.ts", []byte(content)))
	res, err := fix.Rewrite(f, fix.RewriteOptions{Fields: relation.NewFieldSet([]string{"userId"})})
	if err != nil {
		t.Fatal(err)
	}

	files := []FileSummary{
		{Path: "schema.ts", File: f, Result: res, Written: true},
		{Path: "missing.ts", Err: errors.New("cannot read"), Code: diag.IOReadFailed},
	}
	var buf bytes.Buffer
	if err := RunJSON(&buf, files, fs, JSONOpts{IncludeBlocks: true, IncludePreviews: true}); err != nil {
		t.Fatal(err)
	}
	var out RunOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	wantTotals := Totals{Files: 2, Changed: 1, Failed: 1, Found: 2, Matched: 1}
	if diff := cmp.Diff(wantTotals, out.Totals); diff != "" {
		t.Errorf("totals (-want +got):\n%s", diff)
	}
	first := out.Files[0]
	if !first.Changed || !first.Written || len(first.Blocks) != 2 || len(first.Edits) != 1 {
		t.Fatalf("unexpected first file %+v", first)
	}
	if first.Blocks[0].Action != "commented" || first.Blocks[0].Field != "userId" {
		t.Errorf("unexpected block %+v", first.Blocks[0])
	}
	edit := first.Edits[0]
	if diff := cmp.Diff([]string{"  a: one(b, { fields: [t.userId] }),"}, edit.BeforeLines); diff != "" {
		t.Errorf("before lines (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"  // a: one(b, { fields: [t.userId] }),"}, edit.AfterLines); diff != "" {
		t.Errorf("after lines (-want +got):\n%s", diff)
	}
	if out.Files[1].Error != "cannot read" || out.Files[1].ErrorCode != "IO4001" {
		t.Errorf("missing error for second file: %+v", out.Files[1])
	}
}
