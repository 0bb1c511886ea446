package repl

// Mode decides what the session does with code.
type Mode int

// Modes.
const (
	// Normal evaluates code and shows its value.
	Normal Mode = iota
	// Debug also shows the type of each value and what evaluating it cost.
	Debug
	// AST shows the syntax tree of code instead of evaluating it.
	AST
	// Transpile shows the code translated to Rust instead of evaluating it.
	Transpile
)

var modeNames = [...]string{Normal: "normal", Debug: "debug", AST: "ast", Transpile: "transpile"}

func (m Mode) String() string {
	if 0 <= m && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode parses the name of a mode.
func ParseMode(name string) (Mode, bool) {
	for m, n := range modeNames {
		if n == name {
			return Mode(m), true
		}
	}
	return Normal, false
}
