package eval

import (
	"os"
	"runtime"
	"strconv"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/sys"
)

// System builtins.

// ExitError is returned by the exit builtin. It unwinds the evaluation
// like an error; front ends exit the process with Code.
type ExitError struct {
	Code int
}

// Error implements the error interface.
func (e ExitError) Error() string { return "exit " + strconv.Itoa(e.Code) }

func init() {
	addBuiltinFns(map[string]any{
		"env::get":    envGet,
		"env::set":    envSet,
		"env::remove": envRemove,
		"env::vars":   envVars,
		"env::args":   func() []string { return os.Args },
		"os_name":     sys.OSName,
		"arch":        func() string { return runtime.GOARCH },
		"pid":         os.Getpid,
		"exit":        exit,
	})
}

func envGet(name string) any {
	v, ok := os.LookupEnv(name)
	return optional(v, ok)
}

func envSet(name string, value any) error {
	if err := os.Setenv(name, vals.ToString(value)); err != nil {
		return ioError(err)
	}
	return nil
}

func envRemove(name string) error {
	if err := os.Unsetenv(name); err != nil {
		return ioError(err)
	}
	return nil
}

func envVars() vals.Object {
	obj := vals.MakeObject()
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				obj = obj.With(kv[:i], kv[i+1:])
				break
			}
		}
	}
	return obj
}

func exit(codes ...int64) error {
	if len(codes) > 1 {
		return errs.ArityMismatch{What: "arguments of exit", ValidLow: 0, ValidHigh: 1, Actual: len(codes)}
	}
	code := 0
	if len(codes) > 0 {
		code = int(codes[0])
	}
	return ExitError{code}
}
