package eval

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

// fmtSpec is a parsed format specification: [[fill]align][0][width][.precision][verb].
type fmtSpec struct {
	fill  rune
	align byte
	zero  bool
	width int
	prec  int
	verb  byte
}

func parseSpec(s string) (fmtSpec, error) {
	spec := fmtSpec{fill: ' ', prec: -1}
	bad := func() (fmtSpec, error) {
		return fmtSpec{}, errs.Newf(errs.RuntimeError, "invalid format specification %q", s)
	}
	if r, size := utf8.DecodeRuneInString(s); size > 0 && len(s) > size && isAlign(s[size]) {
		spec.fill, spec.align = r, s[size]
		s = s[size+1:]
	} else if len(s) > 0 && isAlign(s[0]) {
		spec.align = s[0]
		s = s[1:]
	}
	if strings.HasPrefix(s, "0") {
		spec.zero = true
		s = s[1:]
	}
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	if i > 0 {
		spec.width, _ = strconv.Atoi(s[:i])
		s = s[i:]
	}
	if strings.HasPrefix(s, ".") {
		s = s[1:]
		i = 0
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
		}
		if i == 0 {
			return bad()
		}
		spec.prec, _ = strconv.Atoi(s[:i])
		s = s[i:]
	}
	switch s {
	case "":
	case "?", "x", "X", "b", "o", "e":
		spec.verb = s[0]
	default:
		return bad()
	}
	return spec, nil
}

func isAlign(b byte) bool { return b == '<' || b == '>' || b == '^' }

// formatValue formats a value according to a format specification, as used
// in f-strings and format strings. An empty specification gives the display
// form.
func formatValue(v any, spec string) (string, error) {
	if spec == "" {
		return vals.ToString(v), nil
	}
	fs, err := parseSpec(spec)
	if err != nil {
		return "", err
	}
	var s string
	numeric := false
	switch fs.verb {
	case '?':
		s = vals.Repr(v)
	case 'x', 'X', 'b', 'o':
		i, ok := v.(int64)
		if !ok {
			return "", errs.Newf(errs.TypeError, "format {:%c} needs an integer, got %s", fs.verb, vals.Kind(v))
		}
		base := map[byte]int{'x': 16, 'X': 16, 'b': 2, 'o': 8}[fs.verb]
		s = strconv.FormatInt(i, base)
		if fs.verb == 'X' {
			s = strings.ToUpper(s)
		}
		numeric = true
	case 'e':
		f, err := vals.ToFloat(v)
		if err != nil {
			return "", err
		}
		s = strconv.FormatFloat(f, 'e', fs.prec, 64)
		numeric = true
	default:
		switch v := v.(type) {
		case float64:
			if fs.prec >= 0 {
				s = strconv.FormatFloat(v, 'f', fs.prec, 64)
			} else {
				s = vals.FormatFloat(v)
			}
			numeric = true
		case int64:
			s = strconv.FormatInt(v, 10)
			numeric = true
		case string:
			s = v
			if fs.prec >= 0 && utf8.RuneCountInString(s) > fs.prec {
				s = string([]rune(s)[:fs.prec])
			}
		default:
			s = vals.ToString(v)
		}
	}
	return pad(s, fs, numeric), nil
}

func pad(s string, fs fmtSpec, numeric bool) string {
	n := utf8.RuneCountInString(s)
	if n >= fs.width {
		return s
	}
	gap := fs.width - n
	if fs.zero && numeric && fs.align == 0 {
		sign := ""
		if strings.HasPrefix(s, "-") {
			sign, s = "-", s[1:]
		}
		return sign + strings.Repeat("0", gap) + s
	}
	align := fs.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}
	fill := string(fs.fill)
	switch align {
	case '>':
		return strings.Repeat(fill, gap) + s
	case '^':
		left := gap / 2
		return strings.Repeat(fill, left) + s + strings.Repeat(fill, gap-left)
	default:
		return s + strings.Repeat(fill, gap)
	}
}

// formatString fills the placeholders of a format string. Placeholders are
// {}, {:spec}, {N}, {N:spec}, {name} and {name:spec}; {{ and }} stand for
// literal braces. Names are looked up with lookup. A positional placeholder
// without a corresponding argument is kept as is.
func formatString(format string, args []any, lookup func(string) (any, bool)) (string, error) {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c == '}' && i+1 < len(format) && format[i+1] == '}' {
			sb.WriteByte('}')
			i++
			continue
		}
		if c != '{' {
			sb.WriteByte(c)
			continue
		}
		if i+1 < len(format) && format[i+1] == '{' {
			sb.WriteByte('{')
			i++
			continue
		}
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			return "", errs.New(errs.RuntimeError, "unclosed '{' in format string")
		}
		body := format[i+1 : i+end]
		placeholder := format[i : i+end+1]
		i += end

		arg, spec, _ := strings.Cut(body, ":")
		var v any
		found := false
		switch {
		case arg == "":
			if next < len(args) {
				v, found = args[next], true
				next++
			}
		case arg[0] >= '0' && arg[0] <= '9':
			n, err := strconv.Atoi(arg)
			if err != nil {
				return "", errs.Newf(errs.RuntimeError, "invalid placeholder %s", placeholder)
			}
			if n < len(args) {
				v, found = args[n], true
			}
		default:
			if lookup != nil {
				v, found = lookup(arg)
			}
			if !found {
				return "", errs.Newf(errs.UndefinedVariable, "undefined variable in format string: %s", arg)
			}
		}
		if !found {
			sb.WriteString(placeholder)
			continue
		}
		s, err := formatValue(v, spec)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// hasPlaceholder reports whether a string contains a format placeholder.
func hasPlaceholder(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			if i+1 < len(s) && s[i+1] == '{' {
				i++
				continue
			}
			return strings.IndexByte(s[i:], '}') > 0
		}
	}
	return false
}
