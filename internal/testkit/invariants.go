// Package testkit holds checks shared by rewrite tests.
package testkit

import (
	"bytes"
	"fmt"
)

// CheckLinewise verifies the invariants every rewrite must keep:
//  1. before and after have the same number of lines
//  2. each line is either unchanged or is the original line with marker
//     inserted right after its leading whitespace
//
// It returns the number of lines that gained a marker.
func CheckLinewise(before, after []byte, marker string) (int, error) {
	if marker == "" {
		return 0, fmt.Errorf("empty marker")
	}
	bl := bytes.Split(before, []byte("\n"))
	al := bytes.Split(after, []byte("\n"))
	if len(bl) != len(al) {
		return 0, fmt.Errorf("line count changed: %d -> %d", len(bl), len(al))
	}
	commented := 0
	for i := range bl {
		if bytes.Equal(bl[i], al[i]) {
			continue
		}
		ws := leadingSpace(al[i])
		rest := al[i][ws:]
		if !bytes.HasPrefix(rest, []byte(marker)) {
			return commented, fmt.Errorf("line %d: changed without a marker: %q -> %q", i+1, bl[i], al[i])
		}
		restored := append(append([]byte{}, al[i][:ws]...), rest[len(marker):]...)
		if !bytes.Equal(restored, bl[i]) {
			return commented, fmt.Errorf("line %d: content changed beyond the marker: %q -> %q", i+1, bl[i], al[i])
		}
		commented++
	}
	return commented, nil
}

func leadingSpace(line []byte) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
