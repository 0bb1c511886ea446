package diag

import (
	"fmt"
	"strings"
)

// Context is a range of text in a named source. It is attached to errors that
// can be associated with a part of the source code.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Position returns the 1-based line and column of the start of the range.
// Columns count runes, not bytes.
func (c *Context) Position() (line, col int) {
	return Position(c.Source, c.From)
}

// Position converts a byte offset in source into a 1-based line and column.
// Offsets outside the source are clamped.
func Position(source string, idx int) (line, col int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(source) {
		idx = len(source)
	}
	before := source[:idx]
	line = strings.Count(before, "\n") + 1
	col = len([]rune(lastLine(before))) + 1
	return line, col
}

// Location describes the position in the form used in error messages:
// "at line L, col C" optionally followed by "in file F".
func (c *Context) Location() string {
	line, col := c.Position()
	s := fmt.Sprintf("at line %d, col %d", line, col)
	if c.Name != "" {
		s += " in file " + c.Name
	}
	return s
}

// Culprit returns the source line containing the start of the range, with
// the culprit highlighted when colors are enabled.
func (c *Context) Culprit() string {
	if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return ""
	}
	head := lastLine(c.Source[:c.From])
	culprit := firstLine(c.Source[c.From:c.To])
	tail := ""
	if !strings.Contains(c.Source[c.From:c.To], "\n") {
		tail = firstLine(c.Source[c.To:])
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	return head + culpritStart() + culprit + culpritEnd() + tail
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
