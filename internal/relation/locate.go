package relation

import (
	"bytes"
	"strings"

	"github.com/jonseale44/Clarafi/internal/lexer"
	"github.com/jonseale44/Clarafi/internal/source"
)

// DefaultMarker is the line-comment prefix written in front of disabled lines.
const DefaultMarker = "// "

// LocateOptions configures which declarations are candidates.
type LocateOptions struct {
	// Callees lists the call names that make a declaration a relation,
	// e.g. "one". Empty means DefaultCallees.
	Callees []string
	// Marker is the comment prefix used when disabling lines.
	Marker string
}

// DefaultCallees matches the drizzle-orm helper used for single relations.
var DefaultCallees = []string{"one"}

// Candidate is a located `<name>: <callee>(` occurrence.
type Candidate struct {
	Name   string
	Callee string
	Start  uint32 // first byte of Name
	Open   uint32 // offset of the call's '('
	// LineStart is the offset of the first byte of Start's line.
	LineStart uint32
	// Indent is the leading whitespace of that line.
	Indent string
	Line   uint32
	// SharedLine is set when code other than whitespace precedes Name on its line.
	SharedLine bool
	// Disabled is non-nil for declarations that are already commented out.
	Disabled *DisabledBlock
}

// DisabledBlock describes a commented-out declaration.
type DisabledBlock struct {
	// Lines covers the commented lines in the original file, without the
	// trailing '\n' of the last one.
	Lines source.Span
	// Body is the uncommented text of those lines and Block the balanced
	// declaration inside it.
	Body  *source.File
	Block source.Span
}

// Text returns the uncommented declaration.
func (d *DisabledBlock) Text() string {
	return d.Body.Text(d.Block)
}

// Locator walks a file left to right and yields candidates.
type Locator struct {
	file    *source.File
	cur     lexer.Cursor
	callees map[string]bool
	marker  string
}

// NewLocator creates a locator positioned at the start of f.
func NewLocator(f *source.File, opts LocateOptions) *Locator {
	callees := opts.Callees
	if len(callees) == 0 {
		callees = DefaultCallees
	}
	set := make(map[string]bool, len(callees))
	for _, c := range callees {
		set[c] = true
	}
	marker := opts.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	return &Locator{
		file:    f,
		cur:     lexer.NewCursor(f),
		callees: set,
		marker:  marker,
	}
}

// Resume moves the locator forward to off. It never moves backwards.
func (l *Locator) Resume(off uint32) {
	if off > l.cur.Off {
		l.cur.Off = min(off, l.cur.Limit)
	}
}

// Next returns the next candidate. After a live candidate the locator sits just
// past its '('; callers normally Resume at the end of the scanned block.
// After a disabled candidate it sits at the end of the commented lines.
func (l *Locator) Next() (Candidate, bool) {
	c := &l.cur
	for !c.EOF() {
		if c.Peek() == '/' {
			lineOnlySpace := l.onlySpaceBefore(c.Off)
			kind, sp := c.SkipTrivia()
			if kind == lexer.TriviaLineComment && lineOnlySpace {
				if cand, ok := l.disabledAt(sp); ok {
					c.Off = cand.Disabled.Lines.End
					return cand, true
				}
			}
			if kind == lexer.TriviaNone {
				c.Bump()
			}
			continue
		}
		if kind, _ := c.SkipTrivia(); kind != lexer.TriviaNone {
			continue
		}
		if !c.AtIdentStart() {
			c.Bump()
			continue
		}
		start := c.Off
		name := c.ScanIdent()
		callee, open, ok := l.peekCall(c)
		if !ok {
			continue
		}
		c.Off = open + 1
		return l.candidate(name, callee, start, open), true
	}
	return Candidate{}, false
}

// peekCall checks for `: <callee> (` after an identifier without moving c.
func (l *Locator) peekCall(c *lexer.Cursor) (callee string, open uint32, ok bool) {
	p := *c
	p.SkipSpace()
	if !p.Eat(':') || p.Peek() == ':' {
		return "", 0, false
	}
	p.SkipSpace()
	callee = p.ScanIdent()
	if !l.callees[callee] {
		return "", 0, false
	}
	p.SkipSpace()
	if p.Peek() != '(' {
		return "", 0, false
	}
	return callee, p.Off, true
}

func (l *Locator) candidate(name, callee string, start, open uint32) Candidate {
	lineStart := l.file.LineStart(start)
	prefix := l.file.Content[lineStart:start]
	indent := leadingSpace(prefix)
	return Candidate{
		Name:       name,
		Callee:     callee,
		Start:      start,
		Open:       open,
		LineStart:  lineStart,
		Indent:     string(indent),
		Line:       l.file.Position(start).Line,
		SharedLine: len(indent) != len(prefix),
	}
}

func (l *Locator) onlySpaceBefore(off uint32) bool {
	lineStart := l.file.LineStart(off)
	prefix := l.file.Content[lineStart:off]
	return len(leadingSpace(prefix)) == len(prefix)
}

// disabledAt checks whether the line comment at sp opens a commented-out
// declaration and, if so, measures it.
func (l *Locator) disabledAt(sp source.Span) (Candidate, bool) {
	first := StripMarker(l.file.Text(sp), l.marker)
	if !looksLikeDeclaration(first) {
		return Candidate{}, false
	}

	lineStart := l.file.LineStart(sp.Start)
	indent := leadingSpace(l.file.Content[lineStart:sp.Start])
	body, lineEnds := l.uncommentRun(lineStart, len(indent))

	fs := source.NewFileSet()
	bodyFile := fs.Get(fs.AddVirtual(l.file.Path, body))

	bc := lexer.NewCursor(bodyFile)
	bc.SkipSpace()
	start := bc.Off
	name := bc.ScanIdent()
	callee, _, ok := l.peekCall(&bc)
	if !ok {
		return Candidate{}, false
	}
	block, err := lexer.ScanBlock(bodyFile, start)
	if err != nil {
		return Candidate{}, false
	}
	lastLine := bodyFile.Position(block.End - 1).Line
	if int(lastLine) > len(lineEnds) {
		return Candidate{}, false
	}

	return Candidate{
		Name:      name,
		Callee:    callee,
		Start:     sp.Start,
		Open:      sp.Start,
		LineStart: lineStart,
		Indent:    string(indent),
		Line:      l.file.Position(sp.Start).Line,
		Disabled: &DisabledBlock{
			Lines: source.Span{File: l.file.ID, Start: lineStart, End: lineEnds[lastLine-1]},
			Body:  bodyFile,
			Block: block,
		},
	}, true
}

// uncommentRun collects the comment (and blank) lines starting at lineStart and
// returns their uncommented text together with the end offset of every line.
// The commenter puts the marker at or before the block's indent column, so a
// comment that starts deeper was already there and stays a comment.
func (l *Locator) uncommentRun(lineStart uint32, indentCol int) ([]byte, []uint32) {
	var body bytes.Buffer
	lineEnds := make([]uint32, 0, 8)
	off := lineStart
	for {
		end := l.file.LineEnd(off)
		raw := string(l.file.Content[off:end])
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			break
		}
		if len(lineEnds) > 0 {
			body.WriteByte('\n')
		}
		if len(leadingSpace([]byte(raw))) <= indentCol {
			raw = StripMarker(raw, l.marker)
		}
		body.WriteString(raw)
		lineEnds = append(lineEnds, end)
		if end >= l.file.Len() {
			break
		}
		off = end + 1
	}
	return body.Bytes(), lineEnds
}

// StripMarker removes the comment marker that follows the leading whitespace of
// line. It is the inverse of the block commenter for a single line.
func StripMarker(line, marker string) string {
	ws := leadingSpace([]byte(line))
	rest := line[len(ws):]
	if strings.HasPrefix(rest, marker) {
		return string(ws) + rest[len(marker):]
	}
	if base := strings.TrimRight(marker, " \t"); base != "" && strings.HasPrefix(rest, base) {
		return string(ws) + rest[len(base):]
	}
	return line
}

// looksLikeDeclaration is a cheap pre-check: identifier followed by ':'.
func looksLikeDeclaration(text string) bool {
	f := &source.File{Content: []byte(text)}
	c := lexer.NewCursor(f)
	c.SkipSpace()
	if c.ScanIdent() == "" {
		return false
	}
	c.SkipSpace()
	return c.Peek() == ':'
}

func leadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	return b[:i]
}

// Locate returns every candidate of f. Each live candidate is scanned with
// lexer.ScanBlock so that the search resumes after its end; unbalanced ones
// resume right after their '('.
func Locate(f *source.File, opts LocateOptions) []Candidate {
	loc := NewLocator(f, opts)
	out := make([]Candidate, 0, 16)
	for {
		cand, ok := loc.Next()
		if !ok {
			return out
		}
		out = append(out, cand)
		if cand.Disabled != nil {
			continue
		}
		if span, err := lexer.ScanBlock(f, cand.Start); err == nil {
			loc.Resume(span.End)
		}
	}
}
