package diag

import (
	"fmt"
	"io"
)

// Shower wraps the Show function.
type Shower interface {
	// Show takes an indentation string and shows.
	Show(indent string) string
}

// Markers used for highlighting. They are emptied by SetColor(false).
var (
	culpritLineBegin   = "\033[1;4m"
	culpritLineEnd     = "\033[m"
	messageLineBegin   = "\033[31;1m"
	messageLineEnd     = "\033[m"
	culpritPlaceHolder = "^"

	colored = true
)

// SetColor turns ANSI highlighting of errors on or off.
func SetColor(on bool) { colored = on }

func culpritStart() string { return ifColored(culpritLineBegin) }
func culpritEnd() string   { return ifColored(culpritLineEnd) }
func messageStart() string { return ifColored(messageLineBegin) }
func messageEnd() string   { return ifColored(messageLineEnd) }

func ifColored(s string) string {
	if colored {
		return s
	}
	return ""
}

// ShowError shows an error. It uses the Show method if the error implements
// Shower, and uses Complain to print the error message otherwise.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

// Complain prints a message to w in bold and red, adding a trailing newline.
func Complain(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s%s%s\n", messageStart(), msg, messageEnd())
}

// Complainf is like Complain, but accepts a format string and arguments.
func Complainf(w io.Writer, format string, args ...any) {
	Complain(w, fmt.Sprintf(format, args...))
}
