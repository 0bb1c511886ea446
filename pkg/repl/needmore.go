package repl

import (
	"strings"

	"src.rook.sh/pkg/parse"
)

// NeedsMore reports whether code is an incomplete input that the next line
// should continue: it ends inside an unclosed bracket, string or block
// comment, or with a binary operator, or the parser ran out of input.
func NeedsMore(code string) bool {
	sc := scan(code)
	if sc.depth < 0 {
		return false
	}
	// A trailing binary operator, comma or dot.
	endsWithOperator := strings.IndexByte("+-*/%=<>&|^,.", sc.last) >= 0
	if sc.open || sc.depth > 0 || endsWithOperator {
		return true
	}
	_, err := parse.Parse(parse.Source{Name: "[input]", Code: code})
	return parse.IsPartial(err)
}

type scanResult struct {
	// Bracket depth at the end of the code. It is negative as soon as a
	// closing bracket has no opening one.
	depth int
	// Whether the code ends inside a string or a block comment.
	open bool
	// The last byte of the last token, or 0 if there is none.
	last byte
}

// scan skips over strings, chars and comments the way the lexer does.
func scan(code string) (sc scanResult) {
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '(', '[', '{':
			sc.depth++
		case ')', ']', '}':
			sc.depth--
			if sc.depth < 0 {
				return sc
			}
		case '"':
			j := skipString(code, i+1)
			if j < 0 {
				sc.open = true
				return sc
			}
			i = j
		case '\'':
			if j := skipChar(code, i+1); j > 0 {
				i = j
			}
		case '/':
			if strings.HasPrefix(code[i:], "//") {
				j := strings.IndexByte(code[i:], '\n')
				if j < 0 {
					return sc
				}
				i += j
				continue
			} else if strings.HasPrefix(code[i:], "/*") {
				j := strings.Index(code[i+2:], "*/")
				if j < 0 {
					sc.open = true
					return sc
				}
				i += j + 3
				continue
			}
		}
		sc.last = code[i]
	}
	return sc
}

// skipString returns the index of the quote closing a string starting at i,
// or -1.
func skipString(code string, i int) int {
	for ; i < len(code); i++ {
		switch code[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// skipChar returns the index of the quote closing a char literal starting at
// i, or -1 if the quote at i-1 does not start one, as in a lifetime.
func skipChar(code string, i int) int {
	if i < len(code) && code[i] == '\\' {
		i++
	}
	for j := i + 1; j < len(code) && j <= i+4; j++ {
		if code[j] == '\'' {
			return j
		}
	}
	return -1
}
