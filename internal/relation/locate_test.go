package relation

import (
	"strings"
	"testing"

	"github.com/jonseale44/Clarafi/internal/source"
)

func virtualFile(content string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("schema.ts", []byte(content)))
}

const relationsSource = `export const postsRelations = relations(posts, ({ one, many }) => ({
  author: one(users, {
    fields: [posts.authorId],
    references: [users.id],
  }),
  comments: many(comments),
  // editor: one(users, {
  //   fields: [posts.editorId],
  //   references: [users.id],
  // }),
  label: "author: one(users)",
  location: one(locations, { fields: [posts.locationId], references: [locations.id] }),
}));
`

func TestLocate(t *testing.T) {
	f := virtualFile(relationsSource)
	cands := Locate(f, LocateOptions{})

	if len(cands) != 3 {
		for _, c := range cands {
			t.Logf("candidate %s at line %d", c.Name, c.Line)
		}
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}

	author := cands[0]
	if author.Name != "author" || author.Callee != "one" || author.Line != 2 {
		t.Errorf("unexpected first candidate %+v", author)
	}
	if author.Indent != "  " || author.SharedLine || author.Disabled != nil {
		t.Errorf("unexpected indentation data %+v", author)
	}
	if got := f.Content[author.Open]; got != '(' {
		t.Errorf("Open points at %q", got)
	}

	editor := cands[1]
	if editor.Disabled == nil {
		t.Fatalf("expected editor to be recognised as disabled, got %+v", editor)
	}
	if editor.Name != "editor" || editor.Line != 7 {
		t.Errorf("unexpected disabled candidate %+v", editor)
	}
	wantBody := "editor: one(users, {\n    fields: [posts.editorId],\n    references: [users.id],\n  })"
	if got := editor.Disabled.Text(); got != wantBody {
		t.Errorf("disabled body = %q\nwant %q", got, wantBody)
	}
	if got := f.Text(editor.Disabled.Lines); !strings.HasSuffix(got, "// }),") {
		t.Errorf("disabled lines should end with the closing comment line, got %q", got)
	}

	if cands[2].Name != "location" || cands[2].Line != 12 {
		t.Errorf("unexpected last candidate %+v", cands[2])
	}
}

func TestLocateDisabledKeepsInnerComments(t *testing.T) {
	f := virtualFile("x = ({\n" +
		"  // a: one(u, {\n" +
		"    // see fix(later\n" +
		"  //   fields: [t.userId],\n" +
		"  // }),\n" +
		"});\n")
	cands := Locate(f, LocateOptions{})
	if len(cands) != 1 || cands[0].Disabled == nil {
		t.Fatalf("expected one disabled candidate, got %+v", cands)
	}
	body := cands[0].Disabled.Text()
	if !strings.Contains(body, "// see fix(later") || !strings.HasSuffix(body, "})") {
		t.Errorf("unexpected body %q", body)
	}
	if got := f.Text(cands[0].Disabled.Lines); !strings.HasSuffix(got, "// }),") {
		t.Errorf("disabled lines end at %q", got)
	}
}

func TestLocateCallees(t *testing.T) {
	f := virtualFile("a: one(x),\nb: many(y),\nc: other(z),\n")
	cands := Locate(f, LocateOptions{Callees: []string{"one", "many"}})
	if len(cands) != 2 || cands[0].Name != "a" || cands[1].Name != "b" {
		t.Fatalf("unexpected candidates %+v", cands)
	}
}

func TestLocateSharedLine(t *testing.T) {
	f := virtualFile("({ a: one(x), b: one(y) })")
	cands := Locate(f, LocateOptions{})
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}
	for _, c := range cands {
		if !c.SharedLine {
			t.Errorf("candidate %s should be marked as sharing its line", c.Name)
		}
	}
}

func TestLocateSkipsNestedAfterBlock(t *testing.T) {
	// вложенный кандидат внутри аргументов не должен находиться отдельно
	f := virtualFile("outer: one(x, { inner: one(y) }),\n")
	cands := Locate(f, LocateOptions{})
	if len(cands) != 1 || cands[0].Name != "outer" {
		t.Fatalf("unexpected candidates %+v", cands)
	}
}

func TestLocateIgnoresPlainComments(t *testing.T) {
	f := virtualFile("// TODO: fix(later)\n/* user: one(users) */\n// user: one(users\nx: 1\n")
	if cands := Locate(f, LocateOptions{}); len(cands) != 0 {
		t.Fatalf("expected no candidates, got %+v", cands)
	}
}

func TestStripMarker(t *testing.T) {
	tests := []struct {
		line, marker, want string
	}{
		{"  // user: one(", "// ", "  user: one("},
		{"  //   fields: [x]", "// ", "    fields: [x]"},
		{"  //}),", "// ", "  }),"},
		{"  code", "// ", "  code"},
	}
	for _, tt := range tests {
		if got := StripMarker(tt.line, tt.marker); got != tt.want {
			t.Errorf("StripMarker(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
