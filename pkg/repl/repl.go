// Package repl implements interpreter sessions driven one input at a time.
//
// A Session classifies each input as a command (leading ":"), a shell
// one-liner (leading "!") or code. Code runs transactionally on a
// replay.Session: a failed input leaves the bindings untouched, and the value
// of a successful one is appended to the result history, where later inputs
// can refer to it as _N. Front ends (the terminal shell, the notebook kernel)
// only read lines and render the returned Output.
package repl

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"src.rook.sh/pkg/ast"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/parse"
	"src.rook.sh/pkg/replay"
	"src.rook.sh/pkg/store/storedefs"
	"src.rook.sh/pkg/transpile"
)

var logger = logutil.GetLogger("[repl] ")

// OutputKind classifies an Output.
type OutputKind int

// Kinds of output.
const (
	// Silent means there is nothing to show, as after a let.
	Silent OutputKind = iota
	Value
	Error
	// Message is the output of a command or a shell one-liner.
	Message
	// NeedMore means the input is incomplete; the next line continues it.
	NeedMore
	// Clear asks the front end to clear the screen.
	Clear
	// Exit asks the front end to end the session with Code.
	Exit
)

// Output is the result of processing one line.
type Output struct {
	Kind OutputKind
	// Text is what to show. For Value and Error it includes what the input
	// printed.
	Text  string
	Value any
	Err   error
	Code  int
	// Stdout is what the input printed, for the kinds that evaluate code.
	Stdout string
}

// Config configures a Session.
type Config struct {
	Settings env.Settings
	// Store, when not nil, receives every input and backs :save and :load.
	Store storedefs.Store
	// Name is the source name used in error locations. It is empty for
	// interactive sessions.
	Name string
}

// Session is an interactive session. It is not safe for concurrent use.
type Session struct {
	rs    *replay.Session
	store storedefs.Store
	name  string
	mode  Mode

	pending  []string
	history  *history
	stats    stats
	saved    map[string]replay.Checkpoint
	recorder *replay.Recorder
}

type stats struct {
	evaluations int
	successes   int
	total       time.Duration
}

// NewSession creates a session configured by cfg. With cfg.Settings.Deterministic
// set, the session runs on a seeded RNG and a mock clock.
func NewSession(cfg Config) *Session {
	st := cfg.Settings
	var rs *replay.Session
	if st.Deterministic {
		rs = replay.New(st.Seed)
	} else {
		rs = replay.Wrap(eval.NewEvaler())
	}
	rs.Evaler.Limits = eval.Limits{
		Timeout:   st.Timeout,
		MemoryCap: st.MemoryMB << 20,
		MaxDepth:  st.MaxDepth,
	}
	rs.Name = cfg.Name
	mode, ok := ParseMode(st.Mode)
	if !ok {
		mode = Normal
	}
	if st.Debug {
		mode = Debug
	}
	return &Session{
		rs: rs, store: cfg.Store, name: cfg.Name, mode: mode,
		history: newHistory(st.HistorySize),
		saved:   map[string]replay.Checkpoint{},
	}
}

// Evaler returns the Evaler of the session.
func (s *Session) Evaler() *eval.Evaler { return s.rs.Evaler }

// Replay returns the underlying replay session.
func (s *Session) Replay() *replay.Session { return s.rs }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// SetMode changes the mode.
func (s *Session) SetMode(m Mode) { s.mode = m }

// Pending reports whether the session is waiting for the rest of an
// incomplete input.
func (s *Session) Pending() bool { return len(s.pending) > 0 }

// Record makes the session append its inputs and results to rec.
func (s *Session) Record(rec *replay.Recorder) { s.recorder = rec }

// Results returns the result history; _N is Results()[N-1].
func (s *Session) Results() []any { return s.rs.Results() }

// Process handles one line of input.
func (s *Session) Process(line string) Output {
	if !s.Pending() {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			return Output{Kind: Silent}
		case strings.HasPrefix(trimmed, ":"):
			s.history.add(trimmed)
			return s.command(trimmed)
		case strings.HasPrefix(trimmed, "!"):
			s.history.add(trimmed)
			return s.shell(strings.TrimSpace(trimmed[1:]))
		}
	}

	s.pending = append(s.pending, line)
	code := strings.Join(s.pending, "\n")
	if NeedsMore(code) {
		return Output{Kind: NeedMore}
	}
	s.pending = nil
	s.history.add(code)
	if s.store != nil {
		if _, err := s.store.AddCmd(code); err != nil {
			logger.Println("cannot add input to history:", err)
		}
	}

	switch s.mode {
	case AST:
		return s.showAST(code)
	case Transpile:
		return s.showTranspiled(code)
	}
	return s.evaluate(code, replay.Interactive)
}

// Cancel discards an incomplete input.
func (s *Session) Cancel() { s.pending = nil }

// Run evaluates a whole source, such as a script file, as one input.
func (s *Session) Run(code string) Output {
	return s.evaluate(code, replay.Script)
}

func (s *Session) evaluate(code string, mode replay.InputMode) Output {
	if s.recorder != nil {
		s.recorder.RecordInput(code, mode)
	}
	r := s.rs.Execute(code)
	if s.recorder != nil {
		s.recorder.RecordResult(r)
	}
	s.stats.evaluations++
	s.stats.total += r.Elapsed
	logger.Printf("evaluated input in %v (heap %d bytes)", r.Elapsed, r.Usage.HeapBytes)

	if r.Err != nil {
		var exit eval.ExitError
		if errors.As(r.Err, &exit) {
			return Output{Kind: Exit, Code: exit.Code, Text: r.Stdout, Stdout: r.Stdout}
		}
		return Output{Kind: Error, Err: r.Err, Text: r.Stdout + RenderError(r.Err), Stdout: r.Stdout}
	}
	s.stats.successes++

	if _, ok := r.Value.(vals.Unit); ok {
		if r.Stdout == "" {
			return Output{Kind: Silent, Value: r.Value}
		}
		return Output{Kind: Message, Value: r.Value, Text: strings.TrimSuffix(r.Stdout, "\n"), Stdout: r.Stdout}
	}
	text := r.Stdout + vals.Repr(r.Value)
	if s.mode == Debug {
		text += fmt.Sprintf("\n  : %s (%v, %d steps, %d bytes)",
			vals.TypeName(r.Value), r.Elapsed.Round(time.Microsecond),
			s.rs.Evaler.Stats().Steps, r.Usage.HeapBytes)
	}
	return Output{Kind: Value, Value: r.Value, Text: text, Stdout: r.Stdout}
}

// RenderError renders an error the way the session shows it: the message
// with its location, then the suggestion, if any.
func RenderError(err error) string {
	var e *errs.Error
	if errors.As(err, &e) && e.Suggestion != "" {
		return err.Error() + "\n" + e.Suggestion
	}
	return err.Error()
}

func (s *Session) showAST(code string) Output {
	prog, err := parse.Parse(parse.Source{Name: s.name, Code: code})
	if err != nil {
		return Output{Kind: Error, Err: err, Text: err.Error()}
	}
	var sb strings.Builder
	for _, stmt := range prog.Stmts {
		ast.Dump(&sb, stmt)
	}
	return Output{Kind: Message, Text: strings.TrimSuffix(sb.String(), "\n")}
}

func (s *Session) showTranspiled(code string) Output {
	out, err := transpile.Snippet(parse.Source{Name: s.name, Code: code}, s.rs.Evaler.Feedback)
	if err != nil {
		return Output{Kind: Error, Err: err, Text: err.Error()}
	}
	return Output{Kind: Message, Text: out}
}

// isResultName reports whether a name is one of the bindings of the result
// history.
func isResultName(name string) bool {
	if name == "_" {
		return true
	}
	if len(name) < 2 || name[0] != '_' {
		return false
	}
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
