package fix

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jonseale44/Clarafi/internal/source"
)

var (
	// ErrEditConflict is returned when two edits overlap.
	ErrEditConflict = errors.New("conflicting edits")
	// ErrStaleEdit is returned when the text under an edit is not what the edit expects.
	ErrStaleEdit = errors.New("existing text does not match expected content")
)

// TextEdit replaces the bytes covered by Span with NewText.
// OldText, when set, guards the edit: the covered bytes must equal it.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// ReplaceSpan builds a guarded replacement edit.
func ReplaceSpan(span source.Span, newText, expect string) TextEdit {
	return TextEdit{
		Span:    span,
		NewText: newText,
		OldText: expect,
	}
}

// ApplyEdits returns a new buffer with every edit applied against the original
// content. Edits are addressed by their original offsets; the output is built
// left to right, so no offset arithmetic on a mutated buffer is needed.
func ApplyEdits(content []byte, edits []TextEdit) ([]byte, error) {
	if len(edits) == 0 {
		return content, nil
	}
	sorted := append([]TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.End < sorted[j].Span.End
	})

	size := len(content)
	for i, e := range sorted {
		if int(e.Span.End) > len(content) || e.Span.Start > e.Span.End {
			return nil, fmt.Errorf("edit span %s out of range", e.Span)
		}
		if i > 0 && spansConflict(sorted[i-1], e) {
			return nil, fmt.Errorf("%w: %s and %s", ErrEditConflict, sorted[i-1].Span, e.Span)
		}
		if e.OldText != "" && string(content[e.Span.Start:e.Span.End]) != e.OldText {
			return nil, fmt.Errorf("%w at %s", ErrStaleEdit, e.Span)
		}
		size += len(e.NewText) - int(e.Span.Len())
	}

	out := make([]byte, 0, size)
	var prev uint32
	for _, e := range sorted {
		out = append(out, content[prev:e.Span.Start]...)
		out = append(out, e.NewText...)
		prev = e.Span.End
	}
	out = append(out, content[prev:]...)
	return out, nil
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are half-open intervals [Start, End). Two insertions (Start == End)
// conflict only at the same offset, since their order would be ambiguous.
// An insertion conflicts with a non-empty span only when it lies strictly
// inside it; inserting at either boundary is allowed. Two non-empty spans
// conflict on any overlap.
func spansConflict(a, b TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return aStart == bStart
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}
