package eval

import (
	"io"
	"os"
	"strings"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// Input and output builtins.

func init() {
	addBuiltinFns(map[string]any{
		"println":     println,
		"print":       print,
		"read_file":   readFile,
		"write_file":  writeFile,
		"append_file": appendFile,
		"file_exists": fileExists,

		"fs::read_to_string": readFile,
		"fs::write":          writeFile,
	})
}

// printText builds the text of print and println. When the first argument
// is a string with placeholders it is a format string; otherwise the display
// forms of the arguments are joined with spaces.
func printText(args []any) (string, error) {
	if len(args) > 1 {
		if format, ok := args[0].(string); ok && hasPlaceholder(format) {
			return formatString(format, args[1:], nil)
		}
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = vals.ToString(a)
	}
	return strings.Join(parts, " "), nil
}

func println(fm *Frame, args ...any) error {
	s, err := printText(args)
	if err != nil {
		return err
	}
	_, err = io.WriteString(fm.ev.Stdout, s+"\n")
	return err
}

func print(fm *Frame, args ...any) error {
	s, err := printText(args)
	if err != nil {
		return err
	}
	_, err = io.WriteString(fm.ev.Stdout, s)
	return err
}

func ioError(err error) error {
	return errs.New(errs.IoError, err.Error())
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", ioError(err)
	}
	return string(b), nil
}

func writeFile(path string, content any) error {
	if err := os.WriteFile(path, []byte(vals.ToString(content)), 0o644); err != nil {
		return ioError(err)
	}
	return nil
}

func appendFile(path string, content any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ioError(err)
	}
	defer f.Close()
	if _, err := f.WriteString(vals.ToString(content)); err != nil {
		return ioError(err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
