package diag

import (
	"testing"

	"github.com/jonseale44/Clarafi/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	second := Diagnostic{Severity: SevWarning, Code: RelSharedLine, Primary: source.Span{Start: 40, End: 41}}
	first := Diagnostic{Severity: SevWarning, Code: RelUnbalanced, Primary: source.Span{Start: 3, End: 4}}
	if !b.Add(second) || !b.Add(first) {
		t.Fatal("expected first two diagnostics to be accepted")
	}
	if b.Add(first) {
		t.Fatal("expected limit to reject third diagnostic")
	}

	b.Sort()
	if got := b.Items()[0].Code; got != RelUnbalanced {
		t.Errorf("expected earliest span first, got %s", got.ID())
	}
	if !b.HasWarnings() {
		t.Error("expected warnings only")
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(0)
	d := Diagnostic{Code: RelUnbalanced, Primary: source.Span{Start: 1, End: 2}}
	b.Add(d)
	b.Add(d)
	b.Add(Diagnostic{Code: RelMismatched, Primary: source.Span{Start: 1, End: 2}})
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", b.Len())
	}
}

func TestReportWarningEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	rb := ReportWarning(BagReporter{Bag: bag}, RelUnbalanced, source.Span{Start: 5, End: 6}, "unclosed '('").
		WithNote(source.Span{Start: 0, End: 4}, "declaration starts here")
	d := rb.Emit()
	rb.Emit()

	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	if d.Severity != SevWarning || len(d.Notes) != 1 {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if RelUnbalanced.ID() != "REL1001" {
		t.Errorf("unexpected id %s", RelUnbalanced.ID())
	}
}
