package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Diff writes a unified diff between before and after of path.
// Nothing is written when they are equal.
func Diff(w io.Writer, path string, before, after []byte, opts DiffOpts) error {
	if string(before) == string(after) {
		return nil
	}
	ctx := opts.Context
	if ctx <= 0 {
		ctx = 3
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  ctx,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", path, err)
	}

	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)
	head := color.New(color.Bold)
	for _, c := range []*color.Color{add, del, hunk, head} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			body = head.Sprint(body)
		case strings.HasPrefix(line, "@@"):
			body = hunk.Sprint(body)
		case strings.HasPrefix(line, "+"):
			body = add.Sprint(body)
		case strings.HasPrefix(line, "-"):
			body = del.Sprint(body)
		}
		if _, err := io.WriteString(w, body+"\n"); err != nil {
			return err
		}
	}
	return nil
}
