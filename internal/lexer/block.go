package lexer

import (
	"errors"
	"fmt"

	"github.com/jonseale44/Clarafi/internal/source"
)

// ErrUnbalanced is matched (errors.Is) by every *UnbalancedError.
var ErrUnbalanced = errors.New("unbalanced delimiters")

// UnbalancedReason tells which way a declaration failed to balance.
type UnbalancedReason uint8

const (
	// ReasonUnclosed: end of file reached with open delimiters on the stack.
	ReasonUnclosed UnbalancedReason = iota + 1
	// ReasonMismatched: a closing delimiter of the wrong family, e.g. '{' closed by ')'.
	ReasonMismatched
	// ReasonUnexpectedClose: a closing delimiter with nothing open.
	ReasonUnexpectedClose
	// ReasonNoDelimiter: the declaration contains no delimiter at all.
	ReasonNoDelimiter
)

func (r UnbalancedReason) String() string {
	switch r {
	case ReasonUnclosed:
		return "unclosed"
	case ReasonMismatched:
		return "mismatched"
	case ReasonUnexpectedClose:
		return "unexpected close"
	case ReasonNoDelimiter:
		return "no delimiter"
	}
	return "unknown"
}

// UnbalancedError describes why ScanBlock could not find the end of a declaration.
type UnbalancedError struct {
	Reason UnbalancedReason
	// At is the offending byte: the innermost unclosed opener for ReasonUnclosed,
	// the bad closer otherwise.
	At    source.Span
	Open  byte // opener involved, 0 if none
	Close byte // closer involved, 0 if none
	Depth int  // stack depth when the scan stopped
}

func (e *UnbalancedError) Error() string {
	switch e.Reason {
	case ReasonUnclosed:
		return fmt.Sprintf("unbalanced delimiters: '%c' at offset %d is never closed (depth %d at EOF)", e.Open, e.At.Start, e.Depth)
	case ReasonMismatched:
		return fmt.Sprintf("unbalanced delimiters: '%c' at offset %d closes '%c'", e.Close, e.At.Start, e.Open)
	case ReasonUnexpectedClose:
		return fmt.Sprintf("unbalanced delimiters: unexpected '%c' at offset %d", e.Close, e.At.Start)
	case ReasonNoDelimiter:
		return fmt.Sprintf("unbalanced delimiters: no opening delimiter after offset %d", e.At.Start)
	}
	return ErrUnbalanced.Error()
}

func (e *UnbalancedError) Is(target error) bool {
	return target == ErrUnbalanced
}

type openDelim struct {
	ch  byte
	off uint32
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

// ScanBlock finds the end of the declaration starting at start.
//
// It walks forward keeping a stack of open '(' '[' '{'. The span ends right after
// the closer that empties the stack. Delimiters inside strings, template
// literals and comments are ignored. The returned span is [start, end).
func ScanBlock(f *source.File, start uint32) (source.Span, error) {
	c := NewCursorAt(f, start)
	stack := make([]openDelim, 0, 8)

	for !c.EOF() {
		if kind, _ := c.SkipTrivia(); kind != TriviaNone {
			continue
		}
		off := c.Off
		b := c.Bump()
		switch b {
		case '(', '[', '{':
			stack = append(stack, openDelim{ch: b, off: off})
		case ')', ']', '}':
			at := source.Span{File: f.ID, Start: off, End: off + 1}
			if len(stack) == 0 {
				return source.Span{}, &UnbalancedError{Reason: ReasonUnexpectedClose, At: at, Close: b}
			}
			top := stack[len(stack)-1]
			if closerFor(top.ch) != b {
				return source.Span{}, &UnbalancedError{
					Reason: ReasonMismatched,
					At:     at,
					Open:   top.ch,
					Close:  b,
					Depth:  len(stack),
				}
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return source.Span{File: f.ID, Start: start, End: c.Off}, nil
			}
		}
	}

	if len(stack) == 0 {
		return source.Span{}, &UnbalancedError{
			Reason: ReasonNoDelimiter,
			At:     source.Span{File: f.ID, Start: start, End: start},
		}
	}
	top := stack[len(stack)-1]
	return source.Span{}, &UnbalancedError{
		Reason: ReasonUnclosed,
		At:     source.Span{File: f.ID, Start: top.off, End: top.off + 1},
		Open:   top.ch,
		Depth:  len(stack),
	}
}
