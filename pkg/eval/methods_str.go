package eval

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"src.rook.sh/pkg/eval/errs"
	"src.rook.sh/pkg/eval/vals"
)

func strMethod1(name string, f func(s, arg string) any) methodFn {
	return func(fm *Frame, recv any, args []any) (any, error) {
		if err := checkArity(name, args, 1, 1); err != nil {
			return nil, err
		}
		arg, err := strArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return f(recv.(string), arg), nil
	}
}

func runeSlice(name string, s string, from, to int64) (string, error) {
	runes := []rune(s)
	n := int64(len(runes))
	if from < 0 || from > n {
		return "", errs.Index(name+" start", from, len(runes)+1)
	}
	if to < from || to > n {
		return "", errs.OutOfRange{What: name + " end",
			ValidLow: itoa(from), ValidHigh: itoa(n), Actual: itoa(to)}
	}
	return string(runes[from:to]), nil
}

func init() {
	addMethods("string", map[string]methodFn{
		"len": nullary("len", func(s string) any {
			return int64(utf8.RuneCountInString(s))
		}),
		"is_empty":       nullary("is_empty", func(s string) any { return s == "" }),
		"to_upper":       nullary("to_upper", func(s string) any { return strings.ToUpper(s) }),
		"to_uppercase":   nullary("to_uppercase", func(s string) any { return strings.ToUpper(s) }),
		"to_lower":       nullary("to_lower", func(s string) any { return strings.ToLower(s) }),
		"to_lowercase":   nullary("to_lowercase", func(s string) any { return strings.ToLower(s) }),
		"trim":           nullary("trim", func(s string) any { return strings.TrimSpace(s) }),
		"trim_start":     nullary("trim_start", func(s string) any { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		"trim_end":       nullary("trim_end", func(s string) any { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		"split_whitespace": nullary("split_whitespace", func(s string) any {
			return vals.MakeArraySlice(strings.Fields(s))
		}),
		"lines": nullary("lines", func(s string) any {
			lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
			if s == "" {
				lines = nil
			}
			return vals.MakeArraySlice(lines)
		}),
		"chars": nullary("chars", func(s string) any {
			chars := make([]any, 0, len(s))
			for _, r := range s {
				chars = append(chars, vals.Char(r))
			}
			return vals.MakeArraySlice(chars)
		}),
		"bytes": nullary("bytes", func(s string) any {
			bs := make([]any, len(s))
			for i := 0; i < len(s); i++ {
				bs[i] = int64(s[i])
			}
			return vals.MakeArraySlice(bs)
		}),
		"reverse": nullary("reverse", func(s string) any {
			runes := []rune(s)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return string(runes)
		}),
		"contains":    strMethod1("contains", func(s, sub string) any { return strings.Contains(s, sub) }),
		"starts_with": strMethod1("starts_with", func(s, p string) any { return strings.HasPrefix(s, p) }),
		"ends_with":   strMethod1("ends_with", func(s, p string) any { return strings.HasSuffix(s, p) }),
		"find": strMethod1("find", func(s, sub string) any {
			i := strings.Index(s, sub)
			if i < 0 {
				return vals.None
			}
			return vals.Some(int64(utf8.RuneCountInString(s[:i])))
		}),
		"split": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("split", args, 0, 1); err != nil {
				return nil, err
			}
			s := recv.(string)
			if len(args) == 0 {
				return vals.MakeArraySlice(strings.Fields(s)), nil
			}
			sep, err := strArg("split", args, 0)
			if err != nil {
				return nil, err
			}
			return vals.MakeArraySlice(strings.Split(s, sep)), nil
		},
		"replace": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("replace", args, 2, 2); err != nil {
				return nil, err
			}
			from, err := strArg("replace", args, 0)
			if err != nil {
				return nil, err
			}
			to, err := strArg("replace", args, 1)
			if err != nil {
				return nil, err
			}
			return strings.ReplaceAll(recv.(string), from, to), nil
		},
		"repeat": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("repeat", args, 1, 1); err != nil {
				return nil, err
			}
			n, err := intArg("repeat", args, 0)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, errs.OutOfRange{What: "repeat count",
					ValidLow: "0", ValidHigh: "inf", Actual: itoa(n)}
			}
			s := recv.(string)
			if err := fm.ev.alloc(len(s) * int(n)); err != nil {
				return nil, err
			}
			return strings.Repeat(s, int(n)), nil
		},
		"char_at": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("char_at", args, 1, 1); err != nil {
				return nil, err
			}
			i, err := intArg("char_at", args, 0)
			if err != nil {
				return nil, err
			}
			runes := []rune(recv.(string))
			if i < 0 || i >= int64(len(runes)) {
				return vals.None, nil
			}
			return vals.Some(vals.Char(runes[i])), nil
		},
		"substring": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("substring", args, 1, 2); err != nil {
				return nil, err
			}
			s := recv.(string)
			from, err := intArg("substring", args, 0)
			if err != nil {
				return nil, err
			}
			to := int64(utf8.RuneCountInString(s))
			if len(args) == 2 {
				if to, err = intArg("substring", args, 1); err != nil {
					return nil, err
				}
			}
			return runeSlice("substring", s, from, to)
		},
		"to_int": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("to_int", args, 0, 0); err != nil {
				return nil, err
			}
			return vals.ToInt(recv)
		},
		"to_float": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("to_float", args, 0, 0); err != nil {
				return nil, err
			}
			return vals.ToFloat(recv)
		},
		"parse": func(fm *Frame, recv any, args []any) (any, error) {
			if err := checkArity("parse", args, 0, 0); err != nil {
				return nil, err
			}
			if i, err := vals.ToInt(recv); err == nil {
				return vals.Ok(i), nil
			}
			if f, err := vals.ToFloat(recv); err == nil {
				return vals.Ok(f), nil
			}
			return vals.Err("invalid number: " + recv.(string)), nil
		},
	})

	addMutators("string", map[string]mutatorFn{
		"push_str": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("push_str", args, 1, 1); err != nil {
				return nil, nil, err
			}
			s, err := strArg("push_str", args, 0)
			if err != nil {
				return nil, nil, err
			}
			if err := fm.ev.alloc(len(s)); err != nil {
				return nil, nil, err
			}
			return unit, recv.(string) + s, nil
		},
		"push": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("push", args, 1, 1); err != nil {
				return nil, nil, err
			}
			c, ok := args[0].(vals.Char)
			if !ok {
				return nil, nil, argError("push", 0, "char", args[0])
			}
			return unit, recv.(string) + string(c), nil
		},
		"clear": func(fm *Frame, recv any, args []any) (any, any, error) {
			if err := checkArity("clear", args, 0, 0); err != nil {
				return nil, nil, err
			}
			return unit, "", nil
		},
	})

	addMethods("char", map[string]methodFn{
		"is_alphabetic":   nullary("is_alphabetic", func(c vals.Char) any { return unicode.IsLetter(rune(c)) }),
		"is_numeric":      nullary("is_numeric", func(c vals.Char) any { return unicode.IsDigit(rune(c)) }),
		"is_alphanumeric": nullary("is_alphanumeric", func(c vals.Char) any { return unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) }),
		"is_whitespace":   nullary("is_whitespace", func(c vals.Char) any { return unicode.IsSpace(rune(c)) }),
		"is_uppercase":    nullary("is_uppercase", func(c vals.Char) any { return unicode.IsUpper(rune(c)) }),
		"is_lowercase":    nullary("is_lowercase", func(c vals.Char) any { return unicode.IsLower(rune(c)) }),
		"to_uppercase":    nullary("to_uppercase", func(c vals.Char) any { return vals.Char(unicode.ToUpper(rune(c))) }),
		"to_lowercase":    nullary("to_lowercase", func(c vals.Char) any { return vals.Char(unicode.ToLower(rune(c))) }),
		"to_digit": nullary("to_digit", func(c vals.Char) any {
			if '0' <= c && c <= '9' {
				return vals.Some(int64(c - '0'))
			}
			return vals.None
		}),
	})
}
