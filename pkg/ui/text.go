// Package ui contains types that may be used by different editor frontends.
package ui

import "strings"

// Segment is a string that has some style applied to it.
type Segment struct {
	Style
	Text string
}

// Text contains a list of styled Segments.
type Text []*Segment

// T constructs a new Text with the given content and the given Styling's
// applied.
func T(s string, ts ...Styling) Text {
	return Text{&Segment{Style: ApplyStyling(Style{}, ts...), Text: s}}
}

// Concat returns a new Text made of the segments of t followed by those of
// t2.
func (t Text) Concat(t2 Text) Text {
	newt := make(Text, 0, len(t)+len(t2))
	return append(append(newt, t...), t2...)
}

// String returns the text without styles.
func (t Text) String() string {
	var sb strings.Builder
	for _, seg := range t {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// VTString renders the styled text using VT-style escape sequences.
func (t Text) VTString() string {
	var sb strings.Builder
	for _, seg := range t {
		sgr := seg.SGR()
		if sgr == "" {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString("\033[" + sgr + "m")
		sb.WriteString(seg.Text)
		sb.WriteString("\033[m")
	}
	return sb.String()
}
