package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/source"
)

type palette struct {
	err, warn, info, note *color.Color
	path, gutter, caret   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgCyan),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)
			continue
		}
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			p.path.Sprint(formatPath(f, fs, opts.PathMode)), start.Line, start.Col,
			p.severity(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)
		writeSnippet(w, f, d.Primary, opts, p)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			if nf == nil {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
				continue
			}
			pos, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				formatPath(nf, fs, opts.PathMode), pos.Line, pos.Col, n.Msg)
		}
	}
}

func writeSnippet(w io.Writer, f *source.File, sp source.Span, opts PrettyOpts, p palette) {
	start := f.Position(sp.Start)
	end := f.Position(sp.End)
	lineCount, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		return
	}
	ctx, err := safecast.Conv[uint32](max(opts.Context, 0))
	if err != nil {
		return
	}

	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(start.Line+ctx, lineCount)
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != start.Line {
			continue
		}
		line := f.GetLine(ln)
		from := min(int(start.Col-1), len(line))
		to := len(line)
		if end.Line == start.Line {
			to = min(int(end.Col-1), len(line))
		}
		pad := runewidth.StringWidth(expandTabs(line[:from]))
		width := max(runewidth.StringWidth(expandTabs(line[from:max(to, from)])), 1)
		marks := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""),
			strings.Repeat(" ", pad), p.caret.Sprint(marks))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
