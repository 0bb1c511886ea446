package transpile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"src.rook.sh/pkg/diag"
	"src.rook.sh/pkg/parse"
	"src.rook.sh/pkg/prog"
)

// Program is the subprogram that prints the Rust translation of a script.
// The script is read from the file named by the first argument, from the
// argument itself with -c, or from stdin when there are no arguments.
type Program struct {
	run  bool
	code *bool
	json *bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "transpile", false, "print the script translated to Rust instead of running it")
	p.code = fs.Code()
	p.json = fs.JSON()
}

type output struct {
	Name  string `json:"name"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	src, err := readSource(fds[0], args, *p.code)
	if err != nil {
		return err
	}
	logger.Printf("transpiling %s (%d bytes)", src.Name, len(src.Code))
	code, err := Source(src, nil)
	if *p.json {
		out := output{Name: src.Name, Code: code}
		if err != nil {
			out.Error = err.Error()
		}
		enc := json.NewEncoder(fds[1])
		enc.SetEscapeHTML(false)
		enc.Encode(out)
	} else if err != nil {
		diag.ShowError(fds[2], err)
	} else {
		fmt.Fprint(fds[1], code)
		if !strings.HasSuffix(code, "\n") {
			fmt.Fprintln(fds[1])
		}
	}
	if err != nil {
		return prog.Exit(1)
	}
	return nil
}

func readSource(stdin io.Reader, args []string, codeInArg bool) (parse.Source, error) {
	switch {
	case codeInArg:
		if len(args) == 0 {
			return parse.Source{}, prog.BadUsage("-c requires an argument")
		}
		return parse.Source{Code: args[0]}, nil
	case len(args) > 0:
		name, err := filepath.Abs(args[0])
		if err != nil {
			return parse.Source{}, err
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return parse.Source{}, fmt.Errorf("cannot read script: %w", err)
		}
		return parse.Source{Name: name, Code: string(data)}, nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return parse.Source{}, err
		}
		return parse.Source{Name: "[stdin]", Code: string(data)}, nil
	}
}
