package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
)

// IsIdentStartByte reports whether b can start an ASCII identifier.
// '$' is allowed: schema files are TypeScript.
func IsIdentStartByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsIdentContinueByte reports whether b can continue an ASCII identifier.
func IsIdentContinueByte(b byte) bool {
	return IsIdentStartByte(b) || (b >= '0' && b <= '9')
}

// peekRune читает текущую руну
func (c *Cursor) peekRune() (r rune, size int) {
	if c.EOF() {
		return utf8.RuneError, 0
	}
	b := c.Peek()
	if b < utf8.RuneSelf { // fast-path ASCII
		return rune(b), 1
	}
	return utf8.DecodeRune(c.File.Content[c.Off:c.Limit])
}

func (c *Cursor) bumpRune(size int) {
	usz, err := safecast.Conv[uint32](size)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	c.Off += usz
}

// AtIdentStart reports whether an identifier starts at the cursor.
func (c *Cursor) AtIdentStart() bool {
	r, sz := c.peekRune()
	if sz == 0 {
		return false
	}
	if r < utf8.RuneSelf {
		return IsIdentStartByte(byte(r))
	}
	return unicode.IsLetter(r)
}

// ScanIdent consumes an identifier at the cursor and returns it.
// It returns "" and leaves the cursor untouched when no identifier starts here.
func (c *Cursor) ScanIdent() string {
	if !c.AtIdentStart() {
		return ""
	}
	start := c.Off
	for !c.EOF() {
		r, sz := c.peekRune()
		if r < utf8.RuneSelf {
			if !IsIdentContinueByte(byte(r)) {
				break
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		c.bumpRune(sz)
	}
	return string(c.File.Content[start:c.Off])
}
