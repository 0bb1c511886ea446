package repl

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/replay"
	"src.rook.sh/pkg/store/storedefs"
)

type command struct {
	args string
	help string
	fn   func(s *Session, arg string) Output
}

// commands is filled in init to break the reference cycle through :help.
var commands map[string]*command

var aliases = map[string]string{
	"h": "help", "exit": "quit", "q": "quit", "vars": "env",
}

func init() {
	commands = map[string]*command{
		"help":      {"", "Show this help", (*Session).cmdHelp},
		"quit":      {"", "Exit the REPL", (*Session).cmdQuit},
		"history":   {"", "Show the inputs of this session", (*Session).cmdHistory},
		"clear":     {"", "Clear the screen", (*Session).cmdClear},
		"reset":     {"", "Remove all bindings and the history", (*Session).cmdReset},
		"mode":      {"[mode]", "Show or set the mode (normal, debug, ast, transpile)", (*Session).cmdMode},
		"debug":     {"on|off", "Turn debug mode on or off", (*Session).cmdDebug},
		"env":       {"", "Show the bindings and the mode", (*Session).cmdEnv},
		"type":      {"<expr>", "Show the type of an expression", (*Session).cmdType},
		"ast":       {"<expr>", "Show the syntax tree of an expression", (*Session).cmdAST},
		"inspect":   {"<expr>", "Show a value in detail", (*Session).cmdInspect},
		"stats":     {"", "Show evaluation statistics", (*Session).cmdStats},
		"transpile": {"<code>", "Show code translated to Rust", (*Session).cmdTranspile},
		"save":      {"<name>", "Save a checkpoint of the bindings", (*Session).cmdSave},
		"load":      {"[name]", "Restore a checkpoint, or list the saved ones", (*Session).cmdLoad},
		"gc":        {"", "Run the garbage collector", (*Session).cmdGC},
	}
}

// CommandNames returns the names of the commands and their aliases, each
// with a leading colon, sorted.
func CommandNames() []string {
	var names []string
	for name := range commands {
		names = append(names, ":"+name)
	}
	for alias := range aliases {
		names = append(names, ":"+alias)
	}
	sort.Strings(names)
	return names
}

func (s *Session) command(line string) Output {
	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	if real, ok := aliases[name]; ok {
		name = real
	}
	cmd, ok := commands[name]
	if !ok {
		return message("Unknown command: :%s (type :help for a list)", name)
	}
	logger.Printf("command :%s %q", name, arg)
	return cmd.fn(s, arg)
}

func message(format string, args ...any) Output {
	return Output{Kind: Message, Text: fmt.Sprintf(format, args...)}
}

func failure(err error) Output {
	return Output{Kind: Error, Err: err, Text: RenderError(err)}
}

func usage(name string) Output {
	return message("Usage: :%s %s", name, commands[name].args)
}

func (s *Session) cmdHelp(string) Output {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	byCommand := map[string][]string{}
	for alias, name := range aliases {
		byCommand[name] = append(byCommand[name], alias)
	}

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range names {
		cmd := commands[name]
		title := ":" + name
		alts := byCommand[name]
		sort.Strings(alts)
		for _, alt := range alts {
			title += ", :" + alt
		}
		if cmd.args != "" {
			title += " " + cmd.args
		}
		fmt.Fprintf(&sb, "  %-24s %s\n", title, cmd.help)
	}
	sb.WriteString("  !<command>                Run a shell command\n")
	sb.WriteString("\nEnter code to evaluate it. _N is the N-th result, _ the last one.")
	return message("%s", sb.String())
}

func (s *Session) cmdQuit(string) Output { return Output{Kind: Exit} }

func (s *Session) cmdHistory(string) Output {
	entries := s.history.entries()
	// The :history command itself is the last entry.
	entries = entries[:len(entries)-1]
	if len(entries) == 0 {
		return message("No history")
	}
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d: %s", i+1, e)
	}
	return message("%s", sb.String())
}

func (s *Session) cmdClear(string) Output {
	return Output{Kind: Clear, Text: "\033[H\033[2J"}
}

func (s *Session) cmdReset(string) Output {
	s.Reset()
	return message("Bindings and history reset")
}

// Reset removes all bindings, declared types and results, and clears the
// history of the session.
func (s *Session) Reset() {
	s.rs.Reset()
	s.history.clear()
	s.pending = nil
	s.stats = stats{}
}

func (s *Session) cmdMode(arg string) Output {
	if arg == "" {
		return message("Current mode: %s", s.mode)
	}
	m, ok := ParseMode(arg)
	if !ok {
		return message("Unknown mode: %s", arg)
	}
	s.mode = m
	return message("Switched to %s mode", m)
}

func (s *Session) cmdDebug(arg string) Output {
	switch arg {
	case "":
		return message("Debug: %s", onOff(s.mode == Debug))
	case "on":
		s.mode = Debug
	case "off":
		if s.mode == Debug {
			s.mode = Normal
		}
	default:
		return usage("debug")
	}
	return message("Debug: %s", arg)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Bindings returns the names of the user bindings, sorted. Results bound to
// _N are not included.
func (s *Session) Bindings() []string {
	var names []string
	for name := range s.rs.Evaler.Global.Globals() {
		if !isResultName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Session) cmdEnv(string) Output {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mode: %s\n", s.mode)
	if s.rs.Deterministic() {
		fmt.Fprintf(&sb, "Seed: %d\n", s.rs.RNG.Seed())
	}
	sb.WriteString("\n--- Variables ---\n")
	names := s.Bindings()
	globals := s.rs.Evaler.Global.Globals()
	if len(names) == 0 {
		sb.WriteString("No variables defined\n")
	}
	for _, name := range names {
		b := globals[name]
		fmt.Fprintf(&sb, "%s %s: %s = %s\n", replay.Declaration(b), name, vals.TypeName(b.Value), vals.Repr(b.Value))
	}
	if types := s.rs.Evaler.TypeNames(); len(types) > 0 {
		sb.WriteString("\n--- Types ---\n")
		sb.WriteString(strings.Join(types, ", ") + "\n")
	}
	fmt.Fprintf(&sb, "\n--- History ---\nInputs: %d\nResults: %d", len(s.history.entries()), len(s.rs.Results()))
	return message("%s", sb.String())
}

// peek evaluates code without keeping any of its effects on the bindings.
func (s *Session) peek(code string) (any, error) {
	return s.rs.Peek(code)
}

func (s *Session) cmdType(arg string) Output {
	if arg == "" {
		return usage("type")
	}
	v, err := s.peek(arg)
	if err != nil {
		return failure(err)
	}
	return message("Type: %s", vals.TypeName(v))
}

func (s *Session) cmdAST(arg string) Output {
	if arg == "" {
		return usage("ast")
	}
	return s.showAST(arg)
}

func (s *Session) cmdInspect(arg string) Output {
	if arg == "" {
		return usage("inspect")
	}
	v, err := s.peek(arg)
	if err != nil {
		return failure(err)
	}
	return message("%s", Inspect(v))
}

func (s *Session) cmdStats(string) Output {
	st := s.stats
	ev := s.rs.Evaler
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluations: %d\n", st.evaluations)
	if st.evaluations > 0 {
		fmt.Fprintf(&sb, "Success rate: %.1f%%\n", 100*float64(st.successes)/float64(st.evaluations))
		fmt.Fprintf(&sb, "Average time: %v\n", (st.total / time.Duration(st.evaluations)).Round(time.Microsecond))
	}
	es := ev.Stats()
	fmt.Fprintf(&sb, "Steps: %d\nCalls: %d\nMax depth: %d\n", es.Steps, es.Calls, es.MaxDepth)
	fmt.Fprintf(&sb, "Memory: %d bytes (peak %d)", ev.MemoryUsage(), ev.PeakMemory())
	return message("%s", sb.String())
}

func (s *Session) cmdTranspile(arg string) Output {
	if arg == "" {
		return usage("transpile")
	}
	return s.showTranspiled(arg)
}

func (s *Session) cmdGC(string) Output {
	freed := s.rs.Evaler.CollectGarbage()
	return message("Collected %d objects; %d bytes in use", freed, s.rs.Evaler.MemoryUsage())
}

func (s *Session) cmdSave(name string) Output {
	if name == "" {
		return usage("save")
	}
	c := s.rs.Checkpoint()
	s.saved[name] = c
	if s.store != nil {
		if err := s.store.SaveCheckpoint(name, c); err != nil {
			return failure(err)
		}
	}
	return message("Saved checkpoint %s (%d bindings)", name, len(c.Bindings))
}

func (s *Session) cmdLoad(name string) Output {
	if name == "" {
		return s.listCheckpoints()
	}
	c, ok := s.saved[name]
	if !ok {
		if s.store == nil {
			return message("No checkpoint named %s", name)
		}
		var err error
		c, err = s.store.Checkpoint(name)
		if errors.Is(err, storedefs.ErrNoCheckpoint) {
			return message("No checkpoint named %s", name)
		} else if err != nil {
			return failure(err)
		}
	}
	skipped := s.rs.Restore(c)
	if len(skipped) > 0 {
		return message("Restored checkpoint %s; could not restore %s", name, strings.Join(skipped, ", "))
	}
	return message("Restored checkpoint %s", name)
}

func (s *Session) listCheckpoints() Output {
	seen := map[string]bool{}
	for name := range s.saved {
		seen[name] = true
	}
	if s.store != nil {
		names, err := s.store.CheckpointNames()
		if err != nil {
			return failure(err)
		}
		for _, name := range names {
			seen[name] = true
		}
	}
	if len(seen) == 0 {
		return message("No checkpoints")
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return message("Checkpoints: %s", strings.Join(names, ", "))
}

// Checkpoint records the state of the session.
func (s *Session) Checkpoint() replay.Checkpoint { return s.rs.Checkpoint() }

// Restore brings the session back to a checkpoint. See replay.Session.Restore.
func (s *Session) Restore(c replay.Checkpoint) []string { return s.rs.Restore(c) }
