package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"src.rook.sh/pkg/buildinfo"
	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/repl"
	"src.rook.sh/pkg/store"
	"src.rook.sh/pkg/sys"
	"src.rook.sh/pkg/ui"
)

// interactiveRecover determines whether a panic in interactive mode is
// recovered and turned into exit status 1. Unit tests turn it off to see the
// panic.
var interactiveRecover = true

// Prompts of the interactive mode.
const (
	prompt             = "rook> "
	continuationPrompt = "...   "
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	Settings env.Settings
	// RC is the path of rc.rook. It is not read if empty.
	RC string
	// DB is the path of the history database. History is not saved if empty.
	DB string
	// Color turns on colored output.
	Color bool
}

// Interact runs an interactive session and returns the exit status.
func Interact(fds [3]*os.File, cfg *InteractConfig) (exit int) {
	if interactiveRecover {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintln(fds[2], "internal error:", r)
				fmt.Fprint(fds[2], sys.DumpStack())
				exit = 1
			}
		}()
	}

	replCfg := repl.Config{Settings: cfg.Settings}
	var history []string
	if cfg.DB != "" {
		st, err := store.NewStore(cfg.DB)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
			fmt.Fprintln(fds[2], "History will not be saved.")
		} else {
			defer st.Close()
			replCfg.Store = st
			cmds, err := st.LastCmds(cfg.Settings.HistorySize)
			if err != nil {
				logger.Println("cannot load history:", err)
			}
			for _, cmd := range cmds {
				history = append(history, cmd.Text)
			}
		}
	}
	s := repl.NewSession(replCfg)
	r := &renderer{fds[1], fds[2], cfg.Color}

	if cfg.RC != "" {
		if err := sourceRC(s, r, cfg.RC); err != nil {
			diag.ShowError(fds[2], err)
		}
	}

	var ed editor
	if sys.IsATTY(fds[0]) && sys.IsATTY(fds[1]) {
		ed = newLineEditor(s, history)
		fmt.Fprintf(fds[1], "Welcome to Rook %s. Type :help for help.\n", buildinfo.Value.Version)
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}
	defer func() { ed.Close() }()

	cooldown := time.Second
	for {
		p := prompt
		if s.Pending() {
			p = continuationPrompt
		}
		line, err := ed.ReadLine(p)

		if err == io.EOF {
			if s.Pending() {
				fmt.Fprintln(r.stderr, "Warning: incomplete input at end of file was dropped")
			}
			return 0
		} else if errors.Is(err, errInterrupted) {
			s.Cancel()
			continue
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			if _, isMinEditor := ed.(*minEditor); !isMinEditor {
				fmt.Fprintln(fds[2], "Falling back to basic line editor")
				ed.Close()
				ed = newMinEditor(fds[0], fds[2])
			} else {
				fmt.Fprintln(fds[2], "Restarting editor in", cooldown)
				time.Sleep(cooldown)
				if cooldown < time.Minute {
					cooldown *= 2
				}
			}
			continue
		}
		cooldown = time.Second

		if strings.TrimSpace(line) != "" {
			ed.AddHistory(line)
		}
		stop := interruptOnSignal(s.Evaler())
		out := s.Process(line)
		stop()
		r.render(out)
		if out.Kind == repl.Exit {
			return out.Code
		}
	}
}

func sourceRC(s *repl.Session, r *renderer, rcPath string) error {
	absPath, err := filepath.Abs(rcPath)
	if err != nil {
		return fmt.Errorf("cannot get full path of rc.rook: %v", err)
	}
	code, err := readFileUTF8(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	logger.Println("sourcing", absPath)
	rs := s.Replay()
	name := rs.Name
	rs.Name = absPath
	defer func() { rs.Name = name }()
	out := s.Run(code)
	if out.Kind == repl.Value {
		// The value of rc.rook itself is not interesting.
		out = repl.Output{Kind: repl.Message, Text: strings.TrimSuffix(out.Stdout, "\n")}
	}
	r.render(out)
	return nil
}

// renderer shows the outputs of a session on the terminal.
type renderer struct {
	stdout, stderr io.Writer
	color          bool
}

var (
	valueStyling = []ui.Styling{ui.FgCyan}
	errorStyling = []ui.Styling{ui.FgRed, ui.Bold}
)

func (r *renderer) render(out repl.Output) {
	switch out.Kind {
	case repl.Value:
		fmt.Fprint(r.stdout, out.Stdout)
		fmt.Fprintln(r.stdout, r.styled(strings.TrimPrefix(out.Text, out.Stdout), valueStyling...))
	case repl.Error:
		fmt.Fprint(r.stdout, out.Stdout)
		if _, ok := out.Err.(diag.Shower); ok {
			diag.ShowError(r.stderr, out.Err)
		} else {
			fmt.Fprintln(r.stderr, r.styled(out.Text, errorStyling...))
		}
	case repl.Message:
		if out.Text != "" {
			fmt.Fprintln(r.stdout, out.Text)
		}
	case repl.Clear:
		if r.color {
			fmt.Fprint(r.stdout, out.Text)
		}
	case repl.Exit:
		fmt.Fprint(r.stdout, out.Stdout)
	}
}

func (r *renderer) styled(s string, ts ...ui.Styling) string {
	if !r.color {
		return s
	}
	return ui.T(s, ts...).VTString()
}
