package parse

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.rook.sh/pkg/diag"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tInt
	tFloat
	tString
	tFString
	tChar
	tLifetime
	tPunct
)

type token struct {
	kind tokenKind
	// text is the source text, except for string-like tokens, where it is the
	// unescaped value. For tFString it is the raw body between the quotes.
	text string
	from int
	to   int
	// nl is true when a newline separates this token from the previous one.
	nl bool
	// raw is true for r#ident.
	raw      bool
	intVal   int64
	floatVal float64
	char     rune
}

func (t token) Range() diag.Ranging { return diag.Ranging{From: t.from, To: t.to} }

var keywords = map[string]bool{
	"let": true, "mut": true, "const": true, "fn": true, "fun": true,
	"pub": true, "async": true, "await": true, "unsafe": true,
	"if": true, "else": true, "match": true, "for": true, "in": true,
	"while": true, "loop": true, "break": true, "continue": true,
	"return": true, "struct": true, "enum": true, "trait": true,
	"impl": true, "true": true, "false": true, "nil": true, "as": true,
	"move": true, "use": true, "mod": true, "where": true, "dyn": true,
}

// Keywords returns the reserved words, sorted.
func Keywords() []string {
	kws := make([]string, 0, len(keywords))
	for kw := range keywords {
		kws = append(kws, kw)
	}
	sort.Strings(kws)
	return kws
}

// Punctuation, longest first within each leading character.
var puncts = []string{
	"..=", "...", "<<=", ">>=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "**", "..",
	"+", "-", "*", "/", "%", "^", "&", "|", "!", "~", "<", ">", "=",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".", "?", "#", "@",
}

var (
	errStringUnterminated  = errors.New("string not terminated")
	errCommentUnterminated = errors.New("comment not terminated")
	errCharUnterminated    = errors.New("character literal not terminated")
	errInvalidEscape       = errors.New("invalid escape sequence")
	errBadNumber           = errors.New("malformed number")
)

// lexer turns source text into tokens. Lexing errors are recorded via the
// parser.
type lexer struct {
	ps   *parser
	src  string
	pos  int
	end  int
	toks []token
}

func lex(ps *parser, from, to int) []token {
	lx := &lexer{ps: ps, src: ps.src, pos: from, end: to}
	for {
		nl := lx.skipSpace()
		t := lx.next()
		t.nl = nl
		lx.toks = append(lx.toks, t)
		if t.kind == tEOF {
			return lx.toks
		}
	}
}

func (lx *lexer) fail(from int, err error) {
	r := diag.Ranging{From: from, To: lx.pos}
	switch err {
	case errStringUnterminated, errCommentUnterminated, errCharUnterminated:
		// The source may continue on the next line.
		lx.ps.failPartial(r, err, lx.pos >= len(lx.src))
	default:
		lx.ps.fail(r, err)
	}
}

func (lx *lexer) peekByte(off int) byte {
	if lx.pos+off < lx.end {
		return lx.src[lx.pos+off]
	}
	return 0
}

// skipSpace skips whitespace and comments, and reports whether a newline was
// seen.
func (lx *lexer) skipSpace() bool {
	nl := false
	for lx.pos < lx.end {
		switch c := lx.src[lx.pos]; {
		case c == '\n':
			nl = true
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '/' && lx.peekByte(1) == '/':
			for lx.pos < lx.end && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		case c == '/' && lx.peekByte(1) == '*':
			begin := lx.pos
			lx.pos += 2
			depth := 1
			for depth > 0 {
				if lx.pos >= lx.end {
					lx.fail(begin, errCommentUnterminated)
				}
				switch {
				case strings.HasPrefix(lx.src[lx.pos:lx.end], "/*"):
					depth++
					lx.pos += 2
				case strings.HasPrefix(lx.src[lx.pos:lx.end], "*/"):
					depth--
					lx.pos += 2
				default:
					if lx.src[lx.pos] == '\n' {
						nl = true
					}
					lx.pos++
				}
			}
		default:
			return nl
		}
	}
	return nl
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentRest(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func (lx *lexer) next() token {
	begin := lx.pos
	if lx.pos >= lx.end {
		return token{kind: tEOF, from: lx.end, to: lx.end}
	}
	c := lx.src[lx.pos]
	switch {
	case c == '"':
		lx.pos++
		s := lx.stringBody(begin, '"')
		return token{kind: tString, text: s, from: begin, to: lx.pos}
	case c == 'f' && lx.peekByte(1) == '"':
		lx.pos += 2
		body := lx.rawBody(begin)
		return token{kind: tFString, text: body, from: begin, to: lx.pos}
	case c == 'r' && lx.peekByte(1) == '"':
		lx.pos += 2
		i := strings.IndexByte(lx.src[lx.pos:lx.end], '"')
		if i < 0 {
			lx.pos = lx.end
			lx.fail(begin, errStringUnterminated)
		}
		s := lx.src[lx.pos : lx.pos+i]
		lx.pos += i + 1
		return token{kind: tString, text: s, from: begin, to: lx.pos}
	case c == 'r' && lx.peekByte(1) == '#' && lx.pos+2 < lx.end:
		if r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+2:]); isIdentStart(r) {
			lx.pos += 2
			name := lx.ident()
			return token{kind: tIdent, text: name, from: begin, to: lx.pos, raw: true}
		}
	case c == '\'':
		return lx.charOrLifetime()
	case c >= '0' && c <= '9':
		return lx.number()
	}
	if r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:lx.end]); isIdentStart(r) {
		name := lx.ident()
		return token{kind: tIdent, text: name, from: begin, to: lx.pos}
	}
	rest := lx.src[lx.pos:lx.end]
	for _, p := range puncts {
		if strings.HasPrefix(rest, p) {
			lx.pos += len(p)
			return token{kind: tPunct, text: p, from: begin, to: lx.pos}
		}
	}
	r, size := utf8.DecodeRuneInString(rest)
	lx.pos += size
	lx.fail(begin, errors.New("unexpected character "+strconv.QuoteRune(r)))
	panic("unreachable")
}

func (lx *lexer) ident() string {
	begin := lx.pos
	for lx.pos < lx.end {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:lx.end])
		if !isIdentRest(r) {
			break
		}
		lx.pos += size
	}
	return lx.src[begin:lx.pos]
}

// stringBody lexes the rest of a quoted string after the opening quote,
// processing escape sequences.
func (lx *lexer) stringBody(begin int, quote byte) string {
	var sb strings.Builder
	for {
		if lx.pos >= lx.end {
			lx.fail(begin, errStringUnterminated)
		}
		c := lx.src[lx.pos]
		switch c {
		case quote:
			lx.pos++
			return sb.String()
		case '\\':
			sb.WriteRune(lx.escape(begin))
		default:
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:lx.end])
			sb.WriteRune(r)
			lx.pos += size
		}
	}
}

// rawBody lexes the rest of an f-string, returning its body verbatim.
// Escapes are processed later, segment by segment.
func (lx *lexer) rawBody(begin int) string {
	start := lx.pos
	for {
		if lx.pos >= lx.end {
			lx.fail(begin, errStringUnterminated)
		}
		switch lx.src[lx.pos] {
		case '"':
			lx.pos++
			return lx.src[start : lx.pos-1]
		case '\\':
			lx.pos += 2
		default:
			lx.pos++
		}
	}
}

func (lx *lexer) escape(begin int) rune {
	if lx.pos+1 >= lx.end {
		lx.pos = lx.end
		lx.fail(begin, errStringUnterminated)
	}
	c := lx.src[lx.pos+1]
	lx.pos += 2
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\', '"', '\'', '{', '}':
		return rune(c)
	case 'u':
		if lx.pos < lx.end && lx.src[lx.pos] == '{' {
			i := strings.IndexByte(lx.src[lx.pos:lx.end], '}')
			if i > 0 {
				code, err := strconv.ParseUint(lx.src[lx.pos+1:lx.pos+i], 16, 32)
				if err == nil && utf8.ValidRune(rune(code)) {
					lx.pos += i + 1
					return rune(code)
				}
			}
		}
	case 'x':
		if lx.pos+2 <= lx.end {
			code, err := strconv.ParseUint(lx.src[lx.pos:lx.pos+2], 16, 8)
			if err == nil && code < 0x80 {
				lx.pos += 2
				return rune(code)
			}
		}
	}
	lx.fail(lx.pos-2, errInvalidEscape)
	panic("unreachable")
}

func (lx *lexer) charOrLifetime() token {
	begin := lx.pos
	lx.pos++
	if lx.pos >= lx.end {
		lx.fail(begin, errCharUnterminated)
	}
	if lx.src[lx.pos] == '\\' {
		r := lx.escape(begin)
		if lx.pos >= lx.end || lx.src[lx.pos] != '\'' {
			lx.fail(begin, errCharUnterminated)
		}
		lx.pos++
		return token{kind: tChar, char: r, text: string(r), from: begin, to: lx.pos}
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:lx.end])
	if lx.pos+size < lx.end && lx.src[lx.pos+size] == '\'' {
		lx.pos += size + 1
		return token{kind: tChar, char: r, text: string(r), from: begin, to: lx.pos}
	}
	if isIdentStart(r) {
		name := lx.ident()
		return token{kind: tLifetime, text: name, from: begin, to: lx.pos}
	}
	lx.pos += size
	lx.fail(begin, errCharUnterminated)
	panic("unreachable")
}

func (lx *lexer) number() token {
	begin := lx.pos
	base := 10
	if lx.src[lx.pos] == '0' {
		switch lx.peekByte(1) {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
	}
	isFloat := false
	if base != 10 {
		lx.pos += 2
		for lx.pos < lx.end && (isHexDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
			lx.pos++
		}
	} else {
		lx.digits()
		// A dot starts a fraction only when followed by a digit, so that 1..2
		// and x.0.1 lex as expected.
		prevDot := len(lx.toks) > 0 && lx.toks[len(lx.toks)-1].text == "."
		if !prevDot && lx.peekByte(0) == '.' && isDigit(lx.peekByte(1)) {
			isFloat = true
			lx.pos++
			lx.digits()
		}
		if !prevDot && (lx.peekByte(0) == 'e' || lx.peekByte(0) == 'E') {
			off := 1
			if lx.peekByte(1) == '+' || lx.peekByte(1) == '-' {
				off = 2
			}
			if isDigit(lx.peekByte(off)) {
				isFloat = true
				lx.pos += off
				lx.digits()
			}
		}
	}
	text := strings.ReplaceAll(lx.src[begin:lx.pos], "_", "")
	// Type suffixes such as 1i64 or 2.5f32 are accepted and ignored.
	suffixBegin := lx.pos
	for lx.pos < lx.end && isAlnum(lx.src[lx.pos]) {
		lx.pos++
	}
	suffix := lx.src[suffixBegin:lx.pos]
	if suffix == "f32" || suffix == "f64" {
		isFloat = true
	}
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			lx.fail(begin, errBadNumber)
		}
		return token{kind: tFloat, floatVal: f, text: lx.src[begin:lx.pos], from: begin, to: lx.pos}
	}
	digits := text
	if base != 10 {
		digits = text[2:]
	}
	// Literals that do not fit in int64 wrap around, matching integer
	// arithmetic.
	u, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		lx.fail(begin, errBadNumber)
	}
	return token{kind: tInt, intVal: int64(u), text: lx.src[begin:lx.pos], from: begin, to: lx.pos}
}

func (lx *lexer) digits() {
	for lx.pos < lx.end && (isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
		lx.pos++
	}
}

func isDigit(c byte) bool    { return '0' <= c && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') }
func isAlnum(c byte) bool    { return isDigit(c) || c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
