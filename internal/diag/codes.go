package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Сканирование блоков
	RelInfo            Code = 1000
	RelUnbalanced      Code = 1001 // declaration never closes
	RelMismatched      Code = 1002 // ')' closes '{' and similar
	RelUnexpectedClose Code = 1003
	RelSharedLine      Code = 1004 // block shares a line with other code

	// Файловые
	IOInfo        Code = 4000
	IOReadFailed  Code = 4001
	IOWriteFailed Code = 4002
	IOJournal     Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	RelInfo:            "Relation information",
	RelUnbalanced:      "Unbalanced delimiters",
	RelMismatched:      "Mismatched delimiters",
	RelUnexpectedClose: "Unexpected closing delimiter",
	RelSharedLine:      "Relation shares a line with other code",
	IOInfo:             "I/O information",
	IOReadFailed:       "Cannot read file",
	IOWriteFailed:      "Cannot write file",
	IOJournal:          "Journal problem",
}

// ID returns the stable short identifier, e.g. REL1001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
