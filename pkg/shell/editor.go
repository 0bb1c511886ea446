package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/peterh/liner"
	"src.rook.sh/pkg/repl"
	"src.rook.sh/pkg/strutil"
)

// This type is the interface that the line editor has to satisfy. The
// terminal uses liner; pipes and files use minEditor.
type editor interface {
	// ReadLine reads one line. It returns errInterrupted when the user hits
	// Ctrl-C and io.EOF at the end of input.
	ReadLine(prompt string) (string, error)
	AddHistory(line string)
	Close() error
}

var errInterrupted = errors.New("interrupted")

type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) ReadLine(prompt string) (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		// Last line without a trailing newline.
		err = nil
	}
	return strutil.ChopLineEnding(line), err
}

func (ed *minEditor) AddHistory(string) {}

func (ed *minEditor) Close() error { return nil }

type lineEditor struct {
	*liner.State
}

// newLineEditor creates an editor on the terminal, completing words with the
// session and preloaded with the given history.
func newLineEditor(s *repl.Session, history []string) *lineEditor {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetTabCompletionStyle(liner.TabPrints)
	st.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		// pos counts runes.
		i := len(string([]rune(line)[:pos]))
		return line[:i], s.Complete(line, i), line[i:]
	})
	for _, h := range history {
		st.AppendHistory(h)
	}
	return &lineEditor{st}
}

func (ed *lineEditor) ReadLine(prompt string) (string, error) {
	line, err := ed.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", errInterrupted
	}
	return line, err
}

func (ed *lineEditor) AddHistory(line string) { ed.AppendHistory(line) }
