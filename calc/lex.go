package calc

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexToken struct {
	text string
	// unit is the unit suffix of a number token, if any.
	unit string
	kind tokenKind
	// pos is the rune column of the start of the token, counting from 1.
	pos int
	// off and end are the byte offsets of the token in the source.
	off, end int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + t.unit + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a numeral, possibly followed by a unit suffix.
	tokenNum
	// tokenIdent is a variable or function name.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, ( or [.
	tokenOpen
	// tokenClose is a close bracket, ) or ].
	tokenClose
	// tokenSep is an argument or element separator.
	tokenSep
)

var tokenNames = [...]string{"None", "EOF", "Num", "Ident", "Op", "Open", "Close", "Sep"}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/^"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets. Parentheses
// group; square brackets build vectors and index them.
const (
	OpenBrackets  = "(["
	CloseBrackets = ")]"
)

// ProjectSigil is the rune that begins the names of project variables.
const ProjectSigil = '$'

func byteidcs(s string) []string {
	v := make([]string, len(s))
	for i, r := range s {
		v[i] = string(r)
	}
	return v
}

var (
	operstrs      = byteidcs(Operators)
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

type lexer struct {
	src string
	// off is the byte offset of the next rune.
	off int
	// col is the number of runes consumed.
	col int
	p   lexToken
	eof bool
}

func lex(src string) *lexer {
	return &lexer{src: src}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("calc: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("calc: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// peek decodes the next rune without consuming it. At the end of the input,
// the size is 0.
func (l *lexer) peek() (rune, int) {
	if l.off >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.off:])
}

// advance consumes one rune of sz bytes.
func (l *lexer) advance(sz int) {
	l.off += sz
	l.col++
}

// next scans the next token from the input. The first time the end of the
// input is reached, the result is an EOF token with a nil error. Subsequent
// times, if the EOF token is not pushed, the result is an empty token with
// io.EOF. A token that fails to scan is consumed along with its error, so the
// caller may keep scanning past it.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	for {
		tok := lexToken{pos: l.col + 1, off: l.off}
		r, sz := l.peek()
		if sz == 0 {
			tok.kind = tokenEOF
			tok.end = l.off
			l.eof = true
			return tok, nil
		}
		switch {
		case unicode.IsSpace(r):
			l.advance(sz)
			continue
		case isDigit(r), r == '.':
			num, unit, err := l.scanNum()
			tok.end = l.off
			if err != nil {
				return tok, err
			}
			tok.text, tok.unit, tok.kind = num, unit, tokenNum
			return tok, nil
		case r == '_', r == ProjectSigil, unicode.IsLetter(r):
			tok.text = l.scanIdent()
			tok.end = l.off
			if tok.text == string(ProjectSigil) {
				return tok, &LexError{Text: tok.text, Kind: "identifier", Col: l.col}
			}
			tok.kind = tokenIdent
			return tok, nil
		case r == ',':
			l.advance(sz)
			tok.text = ","
			tok.kind = tokenSep
			tok.end = l.off
			return tok, nil
		default:
			l.advance(sz)
			tok.end = l.off
			if k := strings.IndexRune(Operators, r); k >= 0 {
				tok.text = operstrs[k]
				tok.kind = tokenOp
				return tok, nil
			}
			if k := strings.IndexRune(OpenBrackets, r); k >= 0 {
				tok.text = openbrackets[k]
				tok.kind = tokenOpen
				return tok, nil
			}
			if k := strings.IndexRune(CloseBrackets, r); k >= 0 {
				tok.text = closebrackets[k]
				tok.kind = tokenClose
				return tok, nil
			}
			return tok, &LexError{Text: string(r), Col: l.col}
		}
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// digits consumes a run of ASCII digits and reports whether there were any.
func (l *lexer) digits() bool {
	n := l.off
	for l.off < len(l.src) && isDigit(rune(l.src[l.off])) {
		l.advance(1)
	}
	return l.off > n
}

// scanNum scans a numeral and its unit suffix. An e or E is an exponent
// marker only when digits follow it, optionally after a sign; otherwise it
// begins the unit.
func (l *lexer) scanNum() (num, unit string, err error) {
	start := l.off
	dig := l.digits()
	if l.off < len(l.src) && l.src[l.off] == '.' {
		l.advance(1)
		if l.digits() {
			dig = true
		}
	}
	if !dig {
		return "", "", &LexError{Text: l.src[start:l.off], Kind: "number", Col: l.col}
	}
	if l.off < len(l.src) && (l.src[l.off] == 'e' || l.src[l.off] == 'E') {
		k := l.off + 1
		if k < len(l.src) && (l.src[k] == '+' || l.src[k] == '-') {
			k++
		}
		if k < len(l.src) && isDigit(rune(l.src[k])) {
			l.col += k - l.off
			l.off = k
			l.digits()
		}
	}
	num = l.src[start:l.off]
	u := l.off
	for {
		r, sz := l.peek()
		if sz == 0 || !unicode.IsLetter(r) {
			break
		}
		l.advance(sz)
	}
	unit = l.src[u:l.off]
	// A quantity must end at a delimiter. Write the offending rune so that it
	// shows up in the error message.
	if r, sz := l.peek(); sz > 0 && (r == '.' || r == '_' || r == ProjectSigil || unicode.IsDigit(r)) {
		l.advance(sz)
		return "", "", &LexError{Text: l.src[start:l.off], Kind: "number", Col: l.col}
	}
	return num, unit, nil
}

func (l *lexer) scanIdent() string {
	start := l.off
	for {
		r, sz := l.peek()
		switch {
		case sz == 0:
			return l.src[start:l.off]
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.advance(sz)
		case r == ProjectSigil && l.off == start:
			l.advance(sz)
		default:
			return l.src[start:l.off]
		}
	}
}

// Ident is an occurrence of a name in the source of an expression.
type Ident struct {
	// Name is the identifier, including any leading project sigil.
	Name string
	// Off and End are the byte offsets of the identifier in the source.
	Off, End int
	// Call is whether the identifier is followed by a parenthesized argument
	// list, i.e. whether it names a function rather than a variable.
	Call bool
}

// Idents scans src for names in textual order. Unlike Parse, Idents skips over
// text that does not form a token, so it finds the names in any host
// expression, including ones calc cannot evaluate. Unit suffixes of quantities
// are not names.
func Idents(src string) []Ident {
	toks := tokens(src)
	var r []Ident
	for i, tok := range toks {
		if tok.kind != tokenIdent {
			continue
		}
		id := Ident{Name: tok.text, Off: tok.off, End: tok.end}
		if i+1 < len(toks) && toks[i+1].kind == tokenOpen && toks[i+1].text == "(" {
			id.Call = true
		}
		r = append(r, id)
	}
	return r
}

// Closed reports whether src is a single operand that binds at least as
// tightly as indexing: a numeral, quantity, name, call, vector, or bracketed
// group, possibly indexed. Closed text can be spliced into another expression
// or indexed without grouping.
func Closed(src string) bool {
	scan := lex(src)
	depth, n := 0, 0
	var prev tokenKind
	for {
		tok, err := scan.next()
		if err != nil {
			return false
		}
		switch tok.kind {
		case tokenEOF:
			return n > 0 && depth == 0
		case tokenOpen:
			// After a complete operand, only an index or an argument list
			// continues it.
			if depth == 0 && n > 0 && tok.text != "[" && prev != tokenIdent {
				return false
			}
			depth++
		case tokenClose:
			depth--
			if depth < 0 {
				return false
			}
		case tokenOp, tokenSep:
			if depth == 0 {
				return false
			}
		case tokenNum, tokenIdent:
			// Juxtaposed operands are never closed.
			if depth == 0 && n > 0 {
				return false
			}
		}
		prev = tok.kind
		n++
	}
}

// tokens scans all valid tokens in src, dropping the EOF token.
func tokens(src string) []lexToken {
	scan := lex(src)
	var toks []lexToken
	for {
		tok, err := scan.next()
		if err != nil {
			if err == io.EOF {
				return toks
			}
			continue
		}
		if tok.kind == tokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "identifier", or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
