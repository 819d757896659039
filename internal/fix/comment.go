package fix

import "strings"

// CommentBlock disables every non-blank line of text by inserting marker at the
// block's indentation column. Blank lines and lines that already start with the
// marker are kept. The result has exactly as many lines as text.
func CommentBlock(text, indent, marker string) string {
	base := strings.TrimRight(marker, " \t")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ws := leadingSpace(line)
		if base != "" && strings.HasPrefix(line[ws:], base) {
			continue
		}
		col := min(ws, len(indent))
		lines[i] = line[:col] + marker + line[col:]
	}
	return strings.Join(lines, "\n")
}

func leadingSpace(line string) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
