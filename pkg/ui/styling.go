package ui

// Styling specifies how to change a Style.
type Styling interface{ transform(*Style) }

// ApplyStyling returns a new Style with the given Styling's applied.
func ApplyStyling(s Style, ts ...Styling) Style {
	for _, t := range ts {
		if t != nil {
			t.transform(&s)
		}
	}
	return s
}

// Common stylings.
var (
	FgRed     Styling = Fg(Red)
	FgGreen   Styling = Fg(Green)
	FgYellow  Styling = Fg(Yellow)
	FgBlue    Styling = Fg(Blue)
	FgMagenta Styling = Fg(Magenta)
	FgCyan    Styling = Fg(Cyan)
	BgRed     Styling = Bg(Red)

	Bold       Styling = boolOn(func(s *Style) *bool { return &s.Bold })
	Dim        Styling = boolOn(func(s *Style) *bool { return &s.Dim })
	Italic     Styling = boolOn(func(s *Style) *bool { return &s.Italic })
	Underlined Styling = boolOn(func(s *Style) *bool { return &s.Underlined })
	Inverse    Styling = boolOn(func(s *Style) *bool { return &s.Inverse })
)

// Fg returns a Styling that sets the foreground color.
func Fg(c Color) Styling { return setForeground{c} }

// Bg returns a Styling that sets the background color.
func Bg(c Color) Styling { return setBackground{c} }

type setForeground struct{ c Color }
type setBackground struct{ c Color }
type boolOn func(*Style) *bool

func (t setForeground) transform(s *Style) { s.Fg = t.c }
func (t setBackground) transform(s *Style) { s.Bg = t.c }
func (t boolOn) transform(s *Style)        { *t(s) = true }
