package presenter

import "strings"

// markdownSpecial is the MarkdownV2 metacharacter set.
const markdownSpecial = "\\_*[]()~`>#+-=|{}.!"

// EscapeMarkdown escapes every MarkdownV2 metacharacter in s.
func EscapeMarkdown(s string) string {
	if !strings.ContainsAny(s, markdownSpecial) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(markdownSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Caption builds the same content as MarkdownV2 and as plain text so a
// rejected styled message can be resent unstyled.
type Caption struct {
	md    strings.Builder
	plain strings.Builder
}

func NewCaption() *Caption {
	return &Caption{}
}

func (c *Caption) Text(s string) *Caption {
	c.md.WriteString(EscapeMarkdown(s))
	c.plain.WriteString(s)
	return c
}

func (c *Caption) Bold(s string) *Caption {
	c.md.WriteString("*" + EscapeMarkdown(s) + "*")
	c.plain.WriteString(s)
	return c
}

func (c *Caption) Italic(s string) *Caption {
	c.md.WriteString("_" + EscapeMarkdown(s) + "_")
	c.plain.WriteString(s)
	return c
}

func (c *Caption) Line() *Caption {
	c.md.WriteByte('\n')
	c.plain.WriteByte('\n')
	return c
}

// Append copies other onto the end of c.
func (c *Caption) Append(other *Caption) *Caption {
	if other == nil {
		return c
	}
	c.md.WriteString(other.md.String())
	c.plain.WriteString(other.plain.String())
	return c
}

func (c *Caption) Markdown() string {
	return c.md.String()
}

func (c *Caption) Plain() string {
	return c.plain.String()
}

// Truncate cuts s to limit runes and marks the cut with an ellipsis.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// utf16Length counts UTF-16 code units, the unit Telegram limits are measured in.
func utf16Length(s string) int {
	length := 0
	for _, r := range s {
		if r <= 0xFFFF {
			length++
		} else {
			length += 2
		}
	}
	return length
}
