package lexer

import "github.com/jonseale44/Clarafi/internal/source"

// TriviaKind classifies text the delimiter scanner must not look into.
type TriviaKind uint8

const (
	TriviaNone TriviaKind = iota
	TriviaString
	TriviaTemplate
	TriviaLineComment
	TriviaBlockComment
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaString:
		return "string"
	case TriviaTemplate:
		return "template"
	case TriviaLineComment:
		return "line comment"
	case TriviaBlockComment:
		return "block comment"
	}
	return "none"
}

// SkipTrivia consumes one string literal, template literal or comment starting
// at the cursor. It returns TriviaNone and does not move when nothing of the kind
// starts here.
//
// - '…' и "…" заканчиваются на кавычке или переводе строки
// - `…` с вложенными ${ … } (фигурные скобки внутри считаются)
// - //… до '\n' (сам '\n' не съедается)
// - /* … */ без вложенности, как в TypeScript
func (c *Cursor) SkipTrivia() (TriviaKind, source.Span) {
	start := c.Mark()
	switch c.Peek() {
	case '\'', '"':
		c.skipQuoted(c.Bump())
		return TriviaString, c.SpanFrom(start)
	case '`':
		c.Bump()
		c.skipTemplate()
		return TriviaTemplate, c.SpanFrom(start)
	case '/':
		b0, b1, ok := c.Peek2()
		if !ok || b0 != '/' {
			return TriviaNone, source.Span{}
		}
		switch b1 {
		case '/':
			c.SkipLine()
			return TriviaLineComment, c.SpanFrom(start)
		case '*':
			c.Bump()
			c.Bump()
			for !c.EOF() {
				if b0, b1, ok := c.Peek2(); ok && b0 == '*' && b1 == '/' {
					c.Bump()
					c.Bump()
					break
				}
				c.Bump()
			}
			return TriviaBlockComment, c.SpanFrom(start)
		}
	}
	return TriviaNone, source.Span{}
}

func (c *Cursor) skipQuoted(quote byte) {
	for !c.EOF() {
		b := c.Peek()
		switch b {
		case quote:
			c.Bump()
			return
		case '\\':
			// грубая обработка escape: съесть '\' и следующий байт
			c.Bump()
			c.Bump()
			continue
		case '\n':
			// незакрытая строка обрывается на конце строки
			return
		}
		c.Bump()
	}
}

// skipTemplate consumes the rest of a template literal; the opening '`' is
// already consumed.
func (c *Cursor) skipTemplate() {
	for !c.EOF() {
		b := c.Peek()
		switch {
		case b == '`':
			c.Bump()
			return
		case b == '\\':
			c.Bump()
			c.Bump()
			continue
		case b == '$':
			if _, b1, ok := c.Peek2(); ok && b1 == '{' {
				c.Bump()
				c.Bump()
				c.skipSubstitution()
				continue
			}
		}
		c.Bump()
	}
}

// skipSubstitution consumes the body of ${ … } including the closing '}'.
func (c *Cursor) skipSubstitution() {
	depth := 1
	for !c.EOF() && depth > 0 {
		if kind, _ := c.SkipTrivia(); kind != TriviaNone {
			continue
		}
		switch c.Bump() {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
}
