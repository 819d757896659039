package diagfmt

import (
	"fmt"
	"strings"

	"github.com/jonseale44/Clarafi/internal/fix"
	"github.com/jonseale44/Clarafi/internal/source"
)

type editPreview struct {
	before []string
	after  []string
}

// buildEditPreview returns the whole lines touched by edit, before and after.
func buildEditPreview(file *source.File, edit fix.TextEdit) (editPreview, error) {
	if file == nil {
		return editPreview{}, fmt.Errorf("nil file")
	}
	if edit.Span.End > file.Len() || edit.Span.Start > edit.Span.End {
		return editPreview{}, fmt.Errorf("edit span %s out of range", edit.Span)
	}

	blockStart := file.LineStart(edit.Span.Start)
	blockEnd := file.LineEnd(edit.Span.End)

	original := file.Content[blockStart:blockEnd]
	relStart := edit.Span.Start - blockStart
	relEnd := edit.Span.End - blockStart

	after := make([]byte, 0, len(original)+len(edit.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, original[relEnd:]...)

	return editPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.Split(string(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
