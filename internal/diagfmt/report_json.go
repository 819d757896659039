package diagfmt

import (
	"io"

	"github.com/jonseale44/Clarafi/internal/diag"
	"github.com/jonseale44/Clarafi/internal/source"
)

// BlockJSON is one located declaration.
type BlockJSON struct {
	Name   string `json:"name"`
	Callee string `json:"callee"`
	Line   uint32 `json:"line"`
	Action string `json:"action"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// EditJSON is one applied (or, in a dry run, planned) replacement.
type EditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FileJSON is the outcome for one file.
type FileJSON struct {
	Path            string           `json:"path"`
	Found           int              `json:"found"`
	Matched         int              `json:"matched"`
	Skipped         int              `json:"skipped"`
	AlreadyDisabled int              `json:"already_disabled"`
	Changed         bool             `json:"changed"`
	Written         bool             `json:"written"`
	Error           string           `json:"error,omitempty"`
	ErrorCode       string           `json:"error_code,omitempty"`
	Blocks          []BlockJSON      `json:"blocks,omitempty"`
	Edits           []EditJSON       `json:"edits,omitempty"`
	Diagnostics     []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// RunOutput is the root of `--format json`.
type RunOutput struct {
	Files  []FileJSON `json:"files"`
	Totals Totals     `json:"totals"`
}

// BuildRunOutput converts summaries into the JSON structure.
func BuildRunOutput(files []FileSummary, fs *source.FileSet, opts JSONOpts) RunOutput {
	out := RunOutput{
		Files:  make([]FileJSON, 0, len(files)),
		Totals: Sum(files),
	}
	for _, f := range files {
		fj := FileJSON{Path: f.Path, Written: f.Written}
		if f.Err != nil {
			fj.Error = f.Err.Error()
			if f.Code != diag.UnknownCode {
				fj.ErrorCode = f.Code.ID()
			}
		}
		if f.Result != nil {
			r := f.Result.Report
			fj.Found = r.Found
			fj.Matched = r.Matched
			fj.Skipped = r.Skipped
			fj.AlreadyDisabled = r.AlreadyDisabled
			fj.Changed = f.Result.Changed
			if opts.IncludeBlocks {
				fj.Blocks = make([]BlockJSON, len(r.Blocks))
				for i, b := range r.Blocks {
					fj.Blocks[i] = BlockJSON{
						Name:   b.Name,
						Callee: b.Callee,
						Line:   b.Line,
						Action: b.Action.String(),
						Field:  b.Field,
						Reason: b.Reason,
					}
				}
			}
			for _, e := range f.Result.Edits {
				ej := EditJSON{
					Location: makeLocation(e.Span, fs, opts.PathMode, opts.IncludePositions),
					NewText:  e.NewText,
					OldText:  e.OldText,
				}
				if opts.IncludePreviews {
					if p, err := buildEditPreview(f.File, e); err == nil {
						ej.BeforeLines = p.before
						ej.AfterLines = p.after
					}
				}
				fj.Edits = append(fj.Edits, ej)
			}
			if len(r.Diagnostics) > 0 {
				fj.Diagnostics = BuildDiagnosticsOutput(r.Diagnostics, fs, opts).Diagnostics
			}
		}
		out.Files = append(out.Files, fj)
	}
	return out
}

// RunJSON writes the JSON report of a run.
func RunJSON(w io.Writer, files []FileSummary, fs *source.FileSet, opts JSONOpts) error {
	return encode(w, BuildRunOutput(files, fs, opts))
}
