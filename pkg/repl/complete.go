package repl

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.rook.sh/pkg/eval"
	"src.rook.sh/pkg/eval/vals"
)

// Complete returns the completions of the word before cursor in input, as the
// suffixes to insert at cursor, sorted. After a dot, it completes the methods
// and fields of the value before the dot; at the start of a line beginning
// with a colon, command names; elsewhere, bindings and builtins.
func (s *Session) Complete(input string, cursor int) []string {
	if cursor < 0 || cursor > len(input) {
		cursor = len(input)
	}
	head := input[:cursor]
	if strings.HasPrefix(head, ":") && !strings.ContainsAny(head, " \t") {
		return suffixes(head, CommandNames())
	}

	start := wordStart(head)
	word := head[start:]
	if start > 0 && head[start-1] == '.' && !strings.HasSuffix(head[:start], "..") {
		recv, ok := s.receiver(head[:start-1])
		if !ok {
			return nil
		}
		return suffixes(word, s.members(recv))
	}
	if word == "" {
		return nil
	}
	return suffixes(word, append(s.Bindings(), eval.BuiltinNames()...))
}

// wordStart returns where the identifier, possibly qualified with ::, that
// ends s begins.
func wordStart(s string) int {
	i := len(s)
	for i > 0 {
		r, n := utf8.DecodeLastRuneInString(s[:i])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			i -= n
		} else if r == ':' && i >= 2 && s[i-2] == ':' {
			i -= 2
		} else {
			break
		}
	}
	return i
}

// receiver finds a value of the same kind as the expression that ends s: a
// bound name, or a literal string, char, array or number.
func (s *Session) receiver(head string) (any, bool) {
	head = strings.TrimRight(head, " \t")
	if head == "" {
		return nil, false
	}
	switch head[len(head)-1] {
	case '"':
		return "", true
	case '\'':
		return vals.Char(' '), true
	case ']':
		return vals.EmptyArray, true
	}
	name := head[wordStart(head):]
	if name == "" {
		return nil, false
	}
	if c := name[0]; '0' <= c && c <= '9' {
		return int64(0), true
	}
	return s.rs.Evaler.Global.Lookup(name)
}

func (s *Session) members(v any) []string {
	names := s.rs.Evaler.MethodNames(v)
	if o, ok := v.(vals.Object); ok && o.Len() > 0 {
		for it := o.Fields.Iterator(); it.HasElem(); it.Next() {
			k, _ := it.Elem()
			if name, ok := k.(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

func suffixes(prefix string, candidates []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range candidates {
		if len(c) > len(prefix) && strings.HasPrefix(c, prefix) && !seen[c] {
			seen[c] = true
			out = append(out, c[len(prefix):])
		}
	}
	sort.Strings(out)
	return out
}
