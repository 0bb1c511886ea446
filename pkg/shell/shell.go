// Package shell is the entry point for the terminal interface of Rook.
package shell

import (
	"fmt"
	"os"

	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/logutil"
	"src.rook.sh/pkg/prog"
	"src.rook.sh/pkg/sys"
	"src.rook.sh/pkg/ui"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It runs a script when given arguments and
// the REPL otherwise.
type Program struct {
	codeInArg   *bool
	compileOnly bool
	json        *bool
	session     *prog.SessionFlags
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	p.codeInArg = fs.Code()
	fs.BoolVar(&p.compileOnly, "compileonly", false,
		"parse the script without running it")
	p.json = fs.JSON()
	p.session = fs.Session()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	settings, err := p.session.Settings()
	if err != nil {
		return err
	}
	color := initColor(fds, settings)
	cleanup := initSignal(fds)
	defer cleanup()

	if len(args) > 0 {
		exit := Script(fds, args, &ScriptConfig{
			Settings: settings,
			Cmd:      *p.codeInArg, CompileOnly: p.compileOnly, JSON: *p.json})
		return prog.Exit(exit)
	}
	if *p.codeInArg {
		return prog.BadUsage("-c requires an argument")
	}

	rc := ""
	if !p.session.NoRC {
		rc, err = env.RCPath()
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
		}
	}
	db, err := historyDBPath(settings)
	if err != nil {
		fmt.Fprintln(fds[2], "Warning:", err)
		fmt.Fprintln(fds[2], "History will not be saved.")
	}
	return prog.Exit(Interact(fds, &InteractConfig{
		Settings: settings, RC: rc, DB: db, Color: color}))
}

// initColor decides whether output is colored: only when the settings allow
// it and stdout is a terminal.
func initColor(fds [3]*os.File, settings env.Settings) bool {
	on := !settings.NoColor && sys.IsATTY(fds[1])
	logger.Println("colored output:", on)
	diag.SetColor(on)
	ui.NoColor = !on
	return on
}
