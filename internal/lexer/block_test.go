package lexer

import (
	"errors"
	"strings"
	"testing"
)

func TestScanBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // expected block text
	}{
		{
			name: "simple",
			in:   "foo: one(bar, { fields: [baz.userId], references: [bar.id] }),\nnext: one(x)",
			want: "foo: one(bar, { fields: [baz.userId], references: [bar.id] })",
		},
		{
			// ')' в массиве внутри объекта не закрывает вызов
			name: "nested array with paren before true end",
			in:   "foo: one(bar, { fields: [baz.userId, fn(a)], extra: { list: [1, [2, 3]] } }), other: one(y)",
			want: "foo: one(bar, { fields: [baz.userId, fn(a)], extra: { list: [1, [2, 3]] } })",
		},
		{
			name: "multi line",
			in:   "user: one(users, {\n    fields: [t.userId],\n    references: [users.id],\n  }),\n  x: 1",
			want: "user: one(users, {\n    fields: [t.userId],\n    references: [users.id],\n  })",
		},
		{
			name: "delimiters in strings and comments",
			in:   "a: one(b, { relationName: \"x)\", note: '}' /* ) */ }) // (\n",
			want: "a: one(b, { relationName: \"x)\", note: '}' /* ) */ })",
		},
		{
			name: "template literal",
			in:   "a: one(b, { name: `p${ ({}) }q)` }),",
			want: "a: one(b, { name: `p${ ({}) }q)` })",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createFile(tt.in)
			sp, err := ScanBlock(f, 0)
			if err != nil {
				t.Fatalf("ScanBlock: %v", err)
			}
			if got := f.Text(sp); got != tt.want {
				t.Errorf("block = %q\nwant    %q", got, tt.want)
			}
			if sp.Start != 0 {
				t.Errorf("span start moved to %d", sp.Start)
			}
		})
	}
}

func TestScanBlockFromOffset(t *testing.T) {
	in := "export const r = relations(t, ({ one }) => ({\n  user: one(users, { fields: [t.userId] }),\n}));\n"
	f := createFile(in)
	start := uint32(strings.Index(in, "user:"))
	sp, err := ScanBlock(f, start)
	if err != nil {
		t.Fatalf("ScanBlock: %v", err)
	}
	if got := f.Text(sp); got != "user: one(users, { fields: [t.userId] })" {
		t.Errorf("unexpected block %q", got)
	}
}

func TestScanBlockUnbalanced(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason UnbalancedReason
		open   byte
		close  byte
		at     uint32
	}{
		{"unclosed at eof", "a: one(b, { fields: [x.y] }", ReasonUnclosed, '(', 0, 6},
		{"unclosed inner", "a: one(b, { fields: [x.y)", ReasonMismatched, '[', ')', 24},
		{"mismatched", "a: one(b, { x: 1 ))", ReasonMismatched, '{', ')', 17},
		{"unexpected close", "a: }", ReasonUnexpectedClose, 0, '}', 3},
		{"no delimiter", "a: b", ReasonNoDelimiter, 0, 0, 0},
		{"string hides closer", "a: one(b, ')'", ReasonUnclosed, '(', 0, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScanBlock(createFile(tt.in), 0)
			if !errors.Is(err, ErrUnbalanced) {
				t.Fatalf("expected ErrUnbalanced, got %v", err)
			}
			var ue *UnbalancedError
			if !errors.As(err, &ue) {
				t.Fatalf("expected *UnbalancedError, got %T", err)
			}
			if ue.Reason != tt.reason {
				t.Errorf("reason = %s, want %s", ue.Reason, tt.reason)
			}
			if ue.Open != tt.open || ue.Close != tt.close {
				t.Errorf("open/close = %q/%q, want %q/%q", ue.Open, ue.Close, tt.open, tt.close)
			}
			if ue.At.Start != tt.at {
				t.Errorf("at = %d, want %d", ue.At.Start, tt.at)
			}
			if ue.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}
