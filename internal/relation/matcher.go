package relation

import (
	"slices"
	"strings"

	"github.com/jonseale44/Clarafi/internal/lexer"
	"github.com/jonseale44/Clarafi/internal/source"
)

// Reference is a dotted identifier chain found in an argument list.
type Reference struct {
	Path string // as written, e.g. "posts.userId"
	Name string // last segment, e.g. "userId"
	Key  string // object key whose array holds the reference, "" when none
	Off  uint32 // offset of Path inside the inspected text
}

// Matcher decides whether a block references a target field.
type Matcher struct {
	Fields FieldSet
	// Keys restricts matching to references inside array values of these
	// object keys (e.g. "fields"). Empty means the whole argument list.
	Keys []string
}

// Match returns the first target field referenced by the block's argument list.
func (m Matcher) Match(block string) (string, bool) {
	if m.Fields.Len() == 0 {
		return "", false
	}
	for _, ref := range References(block) {
		if len(m.Keys) > 0 && !slices.Contains(m.Keys, ref.Key) {
			continue
		}
		if m.Fields.Has(ref.Name) {
			return ref.Name, true
		}
	}
	return "", false
}

type frame struct {
	ch  byte
	key string
}

// References lists identifier references inside the first parenthesised
// argument list of block. Object keys are not references; string literals and
// comments are skipped.
func References(block string) []Reference {
	f := &source.File{Content: []byte(block)}
	c := lexer.NewCursor(f)

	// ищем открывающую скобку вызова
	for !c.EOF() {
		if kind, _ := c.SkipTrivia(); kind != lexer.TriviaNone {
			continue
		}
		if c.Bump() == '(' {
			break
		}
	}
	if c.EOF() {
		return nil
	}

	refs := make([]Reference, 0, 4)
	stack := []frame{{ch: '('}}
	pendingKey := ""

	for !c.EOF() && len(stack) > 0 {
		start := c.Off
		if kind, sp := c.SkipTrivia(); kind != lexer.TriviaNone {
			if kind == lexer.TriviaString && atColon(&c) {
				pendingKey = strings.Trim(f.Text(sp), `'"`)
				c.Eat(':')
			}
			continue
		}
		if c.AtIdentStart() {
			path := scanChain(&c)
			if !strings.Contains(path, ".") && atColon(&c) {
				pendingKey = path
				c.Eat(':')
				continue
			}
			key := pendingKey
			if key == "" {
				key = stack[len(stack)-1].key
			}
			refs = append(refs, Reference{
				Path: path,
				Name: path[strings.LastIndexByte(path, '.')+1:],
				Key:  key,
				Off:  start,
			})
			continue
		}
		switch b := c.Bump(); b {
		case '(', '[', '{':
			key := pendingKey
			if key == "" && b != '{' {
				key = stack[len(stack)-1].key
			}
			if b == '{' {
				key = ""
			}
			stack = append(stack, frame{ch: b, key: key})
			pendingKey = ""
		case ')', ']', '}':
			stack = stack[:len(stack)-1]
		case ',':
			pendingKey = ""
		}
	}
	return refs
}

// scanChain reads ident ('.' | '?.') ident ... and returns it without '?'.
func scanChain(c *lexer.Cursor) string {
	var sb strings.Builder
	sb.WriteString(c.ScanIdent())
	for {
		m := c.Mark()
		c.Eat('?')
		if !c.Eat('.') {
			c.Reset(m)
			break
		}
		seg := c.ScanIdent()
		if seg == "" {
			c.Reset(m)
			break
		}
		sb.WriteByte('.')
		sb.WriteString(seg)
	}
	return sb.String()
}

// atColon reports whether the next non-blank byte is a single ':'.
func atColon(c *lexer.Cursor) bool {
	ahead := *c
	ahead.SkipSpace()
	if ahead.Peek() != ':' {
		return false
	}
	if _, b1, ok := ahead.Peek2(); ok && b1 == ':' {
		return false
	}
	c.Off = ahead.Off
	return true
}
