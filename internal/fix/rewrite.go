package fix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/lexer"
	"github.com/jonseale44/Clarafi/internal/relation"
	"github.com/jonseale44/Clarafi/internal/source"
)

// RewriteOptions configures a rewrite.
type RewriteOptions struct {
	Fields  relation.FieldSet
	Callees []string
	Keys    []string
	Marker  string
	// Reporter receives skipped-candidate warnings in addition to the Report.
	Reporter diag.Reporter
}

// Action is what the rewriter did with a located declaration.
type Action uint8

const (
	ActionUnmatched Action = iota
	ActionCommented
	ActionAlreadyDisabled
	ActionSkipped
)

func (a Action) String() string {
	switch a {
	case ActionUnmatched:
		return "unmatched"
	case ActionCommented:
		return "commented"
	case ActionAlreadyDisabled:
		return "already-disabled"
	case ActionSkipped:
		return "skipped"
	}
	return "unknown"
}

// Block records one located declaration and its outcome.
type Block struct {
	Name   string
	Callee string
	Line   uint32
	Span   source.Span // declaration span; for disabled ones the commented lines
	Field  string      // matched target field, if any
	Action Action
	Reason string // for ActionSkipped
}

// Report counts what a rewrite found and did.
type Report struct {
	Path            string
	Found           int
	Matched         int
	Skipped         int
	AlreadyDisabled int
	Blocks          []Block
	Diagnostics     []diag.Diagnostic
}

// Result is the outcome of Rewrite. Text is the full new content.
type Result struct {
	Text    []byte
	Changed bool
	Edits   []TextEdit
	Report  Report
}

// Rewrite comments out every relation declaration of f that references one of
// opts.Fields. It does not touch the file system.
//
// Unbalanced declarations are skipped with a warning; the run goes on.
// Already-disabled declarations are counted and left alone, which makes a
// second rewrite of the output a no-op.
func Rewrite(f *source.File, opts RewriteOptions) (*Result, error) {
	if f == nil {
		return nil, fmt.Errorf("fix: nil file")
	}
	marker := opts.Marker
	if marker == "" {
		marker = relation.DefaultMarker
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.BagReporter{}
	}

	loc := relation.NewLocator(f, relation.LocateOptions{Callees: opts.Callees, Marker: marker})
	matcher := relation.Matcher{Fields: opts.Fields, Keys: opts.Keys}

	res := &Result{Report: Report{Path: f.Path}}
	rep := &res.Report
	edits := make([]TextEdit, 0, 8)

	for cand, ok := loc.Next(); ok; cand, ok = loc.Next() {
		rep.Found++
		block := Block{Name: cand.Name, Callee: cand.Callee, Line: cand.Line}

		if d := cand.Disabled; d != nil {
			block.Span = d.Lines
			if field, hit := matcher.Match(d.Text()); hit {
				block.Field = field
				block.Action = ActionAlreadyDisabled
				rep.AlreadyDisabled++
			}
			rep.Blocks = append(rep.Blocks, block)
			continue
		}

		span, err := lexer.ScanBlock(f, cand.Start)
		if err != nil {
			block.Span = source.Span{File: f.ID, Start: cand.Start, End: cand.Open + 1}
			block.Action = ActionSkipped
			block.Reason = err.Error()
			rep.Skipped++
			rep.Diagnostics = append(rep.Diagnostics, unbalancedDiagnostic(reporter, cand, block.Span, err))
			rep.Blocks = append(rep.Blocks, block)
			continue
		}
		loc.Resume(span.End)
		block.Span = span

		field, hit := matcher.Match(f.Text(span))
		if !hit {
			rep.Blocks = append(rep.Blocks, block)
			continue
		}
		block.Field = field

		if cand.SharedLine || !onlyTrailerAfter(f, span.End) {
			block.Action = ActionSkipped
			block.Reason = "shares a line with other code"
			rep.Skipped++
			rep.Diagnostics = append(rep.Diagnostics, diag.ReportWarning(reporter, diag.RelSharedLine, span,
				fmt.Sprintf("relation %q references %q but shares a line with other code; not disabled", cand.Name, field)).
				Emit())
			rep.Blocks = append(rep.Blocks, block)
			continue
		}

		editSpan := source.Span{File: f.ID, Start: cand.LineStart, End: span.End}
		old := f.Text(editSpan)
		edits = append(edits, ReplaceSpan(editSpan, CommentBlock(old, cand.Indent, marker), old))
		block.Action = ActionCommented
		rep.Matched++
		rep.Blocks = append(rep.Blocks, block)
	}

	out, err := ApplyEdits(f.Content, edits)
	if err != nil {
		return nil, fmt.Errorf("fix: %s: %w", f.Path, err)
	}
	res.Text = out
	res.Edits = edits
	res.Changed = len(edits) > 0
	return res, nil
}

// onlyTrailerAfter reports whether the rest of the line after off holds nothing
// but an optional ',' or ';' and an optional line comment.
func onlyTrailerAfter(f *source.File, off uint32) bool {
	rest := strings.TrimSpace(string(f.Content[off:f.LineEnd(off)]))
	rest = strings.TrimPrefix(rest, ",")
	rest = strings.TrimPrefix(rest, ";")
	rest = strings.TrimSpace(rest)
	return rest == "" || strings.HasPrefix(rest, "//")
}

func unbalancedDiagnostic(r diag.Reporter, cand relation.Candidate, decl source.Span, err error) diag.Diagnostic {
	code := diag.RelUnbalanced
	primary := decl
	var ue *lexer.UnbalancedError
	if errors.As(err, &ue) {
		switch ue.Reason {
		case lexer.ReasonMismatched:
			code = diag.RelMismatched
		case lexer.ReasonUnexpectedClose:
			code = diag.RelUnexpectedClose
		}
		if !ue.At.Empty() {
			primary = ue.At
		}
	}
	return diag.ReportWarning(r, code, primary, fmt.Sprintf("relation %q skipped: %v", cand.Name, err)).
		WithNote(decl, "declaration starts here").
		Emit()
}
