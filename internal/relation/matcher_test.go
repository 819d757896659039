package relation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReferences(t *testing.T) {
	block := `author: one(users, {
    fields: [posts.authorId, posts?.orgId],
    references: [users.id, users.orgId],
    relationName: "posts.authorId",
    // comment mentions posts.userId
  })`
	got := References(block)
	type ref struct{ Name, Key string }
	var simplified []ref
	for _, r := range got {
		simplified = append(simplified, ref{r.Name, r.Key})
	}
	want := []ref{
		{"users", ""},
		{"authorId", "fields"},
		{"orgId", "fields"},
		{"id", "references"},
		{"orgId", "references"},
	}
	if diff := cmp.Diff(want, simplified); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}
	if got[2].Path != "posts.orgId" {
		t.Errorf("optional chaining path = %q, want posts.orgId", got[2].Path)
	}
}

func TestMatcher(t *testing.T) {
	fields := NewFieldSet([]string{"userId", "locationId"})
	tests := []struct {
		name  string
		keys  []string
		block string
		want  string
		ok    bool
	}{
		{
			name:  "scenario A",
			block: "foo: one(bar, { fields: [baz.userId], references: [bar.id] })",
			want:  "userId",
			ok:    true,
		},
		{
			name:  "no target",
			block: "foo: one(bar, { fields: [baz.patientId], references: [bar.id] })",
		},
		{
			name:  "substring is not a match",
			block: "foo: one(bar, { fields: [baz.userIdentity], references: [bar.id] })",
		},
		{
			name:  "string literal is not a reference",
			block: "foo: one(bar, { relationName: 'userId' })",
		},
		{
			name:  "composite key matches second column",
			block: "foo: one(bar, { fields: [baz.orgId, baz.locationId] })",
			want:  "locationId",
			ok:    true,
		},
		{
			name:  "restricted to fields key",
			keys:  []string{"fields"},
			block: "foo: one(bar, { fields: [baz.id], references: [bar.userId] })",
		},
		{
			name:  "restricted key still matches",
			keys:  []string{"fields"},
			block: "foo: one(bar, { fields: [baz.userId], references: [bar.id] })",
			want:  "userId",
			ok:    true,
		},
		{
			name:  "quoted key",
			keys:  []string{"fields"},
			block: `foo: one(bar, { "fields": [baz.userId] })`,
			want:  "userId",
			ok:    true,
		},
		{
			name:  "callee name is outside the argument list",
			block: "userId: one(bar)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Matcher{Fields: fields, Keys: tt.keys}
			got, ok := m.Match(tt.block)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Match = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMatcherEmptyFieldSet(t *testing.T) {
	m := Matcher{}
	if _, ok := m.Match("foo: one(bar, { fields: [baz.userId] })"); ok {
		t.Error("empty field set must never match")
	}
}
