package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/env"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/parse"
	"src.rook.sh/pkg/repl"
)

// ScriptConfig keeps configuration for the script mode.
type ScriptConfig struct {
	Settings env.Settings
	// Cmd means the first argument is the code itself, not a file name.
	Cmd         bool
	CompileOnly bool
	JSON        bool
}

// Script runs a script and returns the exit status. The remaining arguments
// are bound to the global args as an array of strings.
func Script(fds [3]*os.File, args []string, cfg *ScriptConfig) int {
	arg0 := args[0]

	var name, code string
	if cfg.Cmd {
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	if cfg.CompileOnly {
		_, err := parse.Parse(parse.Source{Name: name, Code: code})
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorsToJSON(err))
		} else if err != nil {
			diag.ShowError(fds[2], err)
		}
		if err != nil {
			return 2
		}
		return 0
	}

	s := repl.NewSession(repl.Config{Settings: cfg.Settings, Name: name})
	s.Evaler().Global.Bind("args", vals.MakeArraySlice(args[1:]), false)
	stop := interruptOnSignal(s.Evaler())
	out := s.Run(code)
	stop()

	fmt.Fprint(fds[1], out.Stdout)
	switch out.Kind {
	case repl.Error:
		diag.ShowError(fds[2], out.Err)
		return 1
	case repl.Exit:
		return out.Code
	case repl.Value:
		// Code given with -c shows its value; a script file does not.
		if cfg.Cmd {
			fmt.Fprintln(fds[1], vals.Repr(out.Value))
		}
	}
	return 0
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Message  string `json:"message"`
}

// Converts parse errors into JSON. A nil error converts to an empty array.
func errorsToJSON(err error) []byte {
	converted := []errorInJSON{}
	for _, e := range diag.UnpackErrors(err) {
		ej := errorInJSON{Message: e.Message}
		if c := e.Context; c != nil {
			ej.FileName, ej.Start, ej.End = c.Name, c.From, c.To
			ej.Line, ej.Col = c.Position()
		}
		converted = append(converted, ej)
	}
	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
