package diagfmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	before := "x = {\n  a: one(b, { fields: [t.userId] }),\n  c: one(d),\n}\n"
	after := "x = {\n  // a: one(b, { fields: [t.userId] }),\n  c: one(d),\n}\n"

	var buf bytes.Buffer
	if err := Diff(&buf, "schema.ts", []byte(before), []byte(after), DiffOpts{Context: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"--- a/schema.ts",
		"+++ b/schema.ts",
		"-  a: one(b, { fields: [t.userId] }),",
		"+  // a: one(b, { fields: [t.userId] }),",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colors written with Color disabled")
	}
}

func TestDiffEqual(t *testing.T) {
	var buf bytes.Buffer
	if err := Diff(&buf, "schema.ts", []byte("same\n"), []byte("same\n"), DiffOpts{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
