package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/fix"
	"github.com/jonseale44/Clarafi/internal/source"
)

// FileSummary is what a run did to one file.
type FileSummary struct {
	Path    string
	File    *source.File // nil when the file could not be read
	Result  *fix.Result
	Written bool
	Err     error
	// Code classifies Err (IO codes); zero when unknown.
	Code diag.Code
}

// Totals sums the reports of several files.
type Totals struct {
	Files           int `json:"files"`
	Changed         int `json:"changed"`
	Failed          int `json:"failed"`
	Found           int `json:"found"`
	Matched         int `json:"matched"`
	Skipped         int `json:"skipped"`
	AlreadyDisabled int `json:"already_disabled"`
}

// Sum returns the totals of files.
func Sum(files []FileSummary) Totals {
	t := Totals{Files: len(files)}
	for _, f := range files {
		if f.Err != nil {
			t.Failed++
		}
		if f.Result == nil {
			continue
		}
		r := f.Result.Report
		if f.Result.Changed {
			t.Changed++
		}
		t.Found += r.Found
		t.Matched += r.Matched
		t.Skipped += r.Skipped
		t.AlreadyDisabled += r.AlreadyDisabled
	}
	return t
}

func displayPath(path string, opts SummaryOpts) string {
	switch opts.PathMode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if rel, err := source.RelativePath(path, opts.BaseDir); err == nil {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

// Summary prints the found / matched / skipped / already-disabled counts of
// every file, and a total line when there is more than one.
func Summary(w io.Writer, files []FileSummary, opts SummaryOpts) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)
	faint := color.New(color.Faint)
	for _, c := range []*color.Color{bold, green, yellow, red, faint} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, f := range files {
		path := bold.Sprint(displayPath(f.Path, opts))
		if f.Err != nil {
			label := "error:"
			if f.Code != diag.UnknownCode {
				label = "error[" + f.Code.ID() + "]:"
			}
			fmt.Fprintf(w, "%s: %s %v\n", path, red.Sprint(label), f.Err)
			continue
		}
		if f.Result == nil {
			continue
		}
		r := f.Result.Report
		state := "unchanged"
		switch {
		case f.Written:
			state = green.Sprint("written")
		case f.Result.Changed && opts.DryRun:
			state = yellow.Sprint("would change")
		case f.Result.Changed:
			state = yellow.Sprint("changed, not written")
		}
		skipped := fmt.Sprint(r.Skipped)
		if r.Skipped > 0 {
			skipped = yellow.Sprint(r.Skipped)
		}
		fmt.Fprintf(w, "%s: found %d, commented %d, skipped %s, already disabled %d (%s)\n",
			path, r.Found, r.Matched, skipped, r.AlreadyDisabled, state)

		if opts.Verbose {
			writeBlocks(w, r.Blocks, faint)
		}
	}

	if len(files) > 1 {
		t := Sum(files)
		fmt.Fprintf(w, "%s %d files, %d changed, %d failed: found %d, commented %d, skipped %d, already disabled %d\n",
			bold.Sprint("total:"), t.Files, t.Changed, t.Failed, t.Found, t.Matched, t.Skipped, t.AlreadyDisabled)
	}
}

func writeBlocks(w io.Writer, blocks []fix.Block, faint *color.Color) {
	nameWidth := 0
	for _, b := range blocks {
		nameWidth = max(nameWidth, runewidth.StringWidth(b.Name))
	}
	nameWidth = min(nameWidth, 32)
	for _, b := range blocks {
		name := runewidth.FillRight(runewidth.Truncate(b.Name, nameWidth, "…"), nameWidth)
		line := fmt.Sprintf("  %5d  %s  %s", b.Line, name, b.Action)
		if b.Field != "" {
			line += " (" + b.Field + ")"
		}
		if b.Reason != "" {
			line += ": " + b.Reason
		}
		if b.Action == fix.ActionUnmatched {
			line = faint.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
}
