package lexer

import (
	"fmt"
	"sort"
	"strings"
)

// Error is a lexical error with its source position.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
}

// Range is a half-open byte range of the input.
type Range struct {
	Start int
	End   int
}

// Lexer tokenizes C and C++ source code. Whitespace, comments and
// preprocessor directive lines are skipped; every token records its byte
// span in the input.
type Lexer struct {
	input     string
	lang      Lang
	pos       int  // current position in input
	readPos   int  // next reading position
	ch        byte // current character
	line      int
	lineStart int  // offset of the first byte of the current line
	atBOL     bool // only whitespace seen since the last newline
	skip      []Range
	errors    []Error
}

// New creates a new Lexer for the given input
func New(input string, lang Lang) *Lexer {
	l := &Lexer{input: input, lang: lang, line: 1, atBOL: true}
	l.readChar()
	return l
}

// SetSkip registers input ranges the lexer must treat as whitespace, such as
// the bodies of inactive conditional groups. Ranges should start at a line
// start.
func (l *Lexer) SetSkip(ranges []Range) {
	l.skip = append([]Range(nil), ranges...)
	sort.Slice(l.skip, func(i, j int) bool { return l.skip[i].Start < l.skip[j].Start })
}

// Lang returns the dialect being lexed
func (l *Lexer) Lang() Lang {
	return l.lang
}

// Errors returns the lexical errors found so far
func (l *Lexer) Errors() []Error {
	return l.errors
}

func (l *Lexer) addError(line, col int, format string, args ...any) {
	l.errors = append(l.errors, Error{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)})
}

func (l *Lexer) readChar() {
	if l.pos < len(l.input) && l.ch == '\n' {
		l.line++
		l.lineStart = l.readPos
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peekChar() byte {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) column() int {
	return l.pos - l.lineStart + 1
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	tok := Token{Offset: l.pos, Line: l.line, Column: l.column()}
	if l.eof() {
		tok.Type = TokenEOF
		tok.End = l.pos
		return tok
	}
	l.atBOL = false

	punct := false
	switch {
	case isLetter(l.ch):
		ident := l.readIdentifier()
		switch {
		case (l.ch == '"' || l.ch == '\'') && isEncodingPrefix(ident):
			tok.Type = l.readQuoted(l.ch, tok)
		case l.ch == '"' && l.lang == LangCXX && isRawPrefix(ident):
			tok.Type = TokenString
			l.readRawString(tok)
		default:
			tok.Type = LookupIdent(ident, l.lang)
		}
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok.Type = TokenInt
		l.readNumber()
	case l.ch == '"' || l.ch == '\'':
		tok.Type = l.readQuoted(l.ch, tok)
	default:
		tok.Type = l.readPunctuator(tok)
		punct = true
	}

	tok.End = l.pos
	tok.Literal = l.input[tok.Offset:tok.End]
	if punct {
		tok.Literal = unsplice.Replace(tok.Literal)
	}
	return tok
}

// unsplice drops the line splices a punctuator may contain. The token span
// still covers them.
var unsplice = strings.NewReplacer("\\\r\n", "", "\\\n", "")

func (l *Lexer) readPunctuator(tok Token) TokenType {
	// up to three characters with line splices between them dropped, and the
	// input offset just past each one
	var spelled [3]byte
	var ends [3]int
	n, i := 0, l.pos
	for n < len(spelled) {
		if n > 0 {
			for s := spliceAt(l.input, i); s > 0; s = spliceAt(l.input, i) {
				i += s
			}
		}
		if i >= len(l.input) {
			break
		}
		spelled[n] = l.input[i]
		i++
		ends[n] = i
		n++
	}
	for ; n >= 1; n-- {
		if t, ok := punctuators[n-1][string(spelled[:n])]; ok {
			l.advanceTo(ends[n-1])
			return t
		}
	}
	l.addError(tok.Line, tok.Column, "illegal character %q", l.ch)
	l.readChar()
	return TokenIllegal
}

// skipTrivia skips whitespace, comments, line splices, directive lines and
// registered skip ranges.
func (l *Lexer) skipTrivia() {
	for !l.eof() {
		if r, ok := l.skipRangeAt(l.pos); ok {
			l.advanceTo(r.End)
			l.atBOL = true
			continue
		}
		switch {
		case l.ch == '\n':
			l.readChar()
			l.atBOL = true
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f':
			l.readChar()
		case l.ch == '\\' && l.spliceLen() > 0:
			l.advanceTo(l.pos + l.spliceLen())
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		case l.ch == '#' && l.atBOL:
			l.skipDirective()
		default:
			return
		}
	}
}

func (l *Lexer) skipRangeAt(pos int) (Range, bool) {
	for len(l.skip) > 0 && l.skip[0].End <= pos {
		l.skip = l.skip[1:]
	}
	if len(l.skip) > 0 && l.skip[0].Start <= pos {
		return l.skip[0], true
	}
	return Range{}, false
}

func (l *Lexer) advanceTo(end int) {
	for l.pos < end && !l.eof() {
		l.readChar()
	}
}

// spliceLen returns the length of a backslash-newline at the current position,
// or 0 if there is none.
func (l *Lexer) spliceLen() int {
	return spliceAt(l.input, l.pos)
}

func spliceAt(s string, i int) int {
	if i >= len(s) || s[i] != '\\' {
		return 0
	}
	switch {
	case i+1 < len(s) && s[i+1] == '\n':
		return 2
	case i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n':
		return 3
	}
	return 0
}

func (l *Lexer) skipLineComment() {
	for !l.eof() && l.ch != '\n' {
		if n := l.spliceLen(); n > 0 {
			l.advanceTo(l.pos + n)
			continue
		}
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	line, col := l.line, l.column()
	l.readChar() // consume /
	l.readChar() // consume *
	for {
		if l.eof() {
			l.addError(line, col, "unterminated comment")
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume *
			l.readChar() // consume /
			return
		}
		l.readChar()
	}
}

// skipDirective skips a preprocessor directive up to the newline that ends
// it. Line splices continue the directive; block comments may span lines.
func (l *Lexer) skipDirective() {
	for !l.eof() && l.ch != '\n' {
		switch {
		case l.spliceLen() > 0:
			l.advanceTo(l.pos + l.spliceLen())
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLineComment()
		case l.ch == '"' || l.ch == '\'':
			l.skipQuotedInDirective(l.ch)
		default:
			l.readChar()
		}
	}
}

// skipQuotedInDirective skips a quoted literal inside a directive without
// reporting errors; apostrophes in #error text are common.
func (l *Lexer) skipQuotedInDirective(quote byte) {
	l.readChar()
	for !l.eof() && l.ch != '\n' && l.ch != quote {
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber consumes a preprocessing number, which covers integer and
// floating literals with their suffixes, exponents and digit separators.
func (l *Lexer) readNumber() {
	for !l.eof() {
		switch {
		case (l.ch == 'e' || l.ch == 'E' || l.ch == 'p' || l.ch == 'P') &&
			(l.peekChar() == '+' || l.peekChar() == '-'):
			l.readChar()
			l.readChar()
		case isDigit(l.ch) || isLetter(l.ch) || l.ch == '.':
			l.readChar()
		case l.ch == '\'' && l.lang == LangCXX && (isDigit(l.peekChar()) || isLetter(l.peekChar())):
			l.readChar()
		default:
			return
		}
	}
}

// readQuoted consumes a string or character literal starting at the opening
// quote. The literal must end on the line it starts on.
func (l *Lexer) readQuoted(quote byte, tok Token) TokenType {
	typ := TokenString
	what := "string literal"
	if quote == '\'' {
		typ = TokenCharLit
		what = "character literal"
	}
	l.readChar() // consume opening quote
	for {
		if l.eof() || l.ch == '\n' {
			l.addError(tok.Line, tok.Column, "unterminated %s", what)
			return typ
		}
		if n := l.spliceLen(); n > 0 {
			l.advanceTo(l.pos + n)
			continue
		}
		if l.ch == '\\' {
			l.readChar() // skip escape char
			if !l.eof() {
				l.readChar()
			}
			continue
		}
		if l.ch == quote {
			l.readChar() // consume closing quote
			break
		}
		l.readChar()
	}
	l.readUDSuffix()
	return typ
}

// readRawString consumes a C++ raw string literal: R"delim( ... )delim".
func (l *Lexer) readRawString(tok Token) {
	l.readChar() // consume "
	start := l.pos
	for !l.eof() && l.ch != '(' && l.ch != '\n' && l.pos-start <= 16 {
		l.readChar()
	}
	if l.ch != '(' {
		l.addError(tok.Line, tok.Column, "invalid raw string delimiter")
		return
	}
	closing := ")" + l.input[start:l.pos] + "\""
	l.readChar() // consume (
	for !l.eof() {
		if l.ch == ')' && len(l.input)-l.pos >= len(closing) && l.input[l.pos:l.pos+len(closing)] == closing {
			l.advanceTo(l.pos + len(closing))
			l.readUDSuffix()
			return
		}
		l.readChar()
	}
	l.addError(tok.Line, tok.Column, "unterminated raw string literal")
}

// readUDSuffix consumes a C++ user-defined literal suffix such as "abc"_s.
func (l *Lexer) readUDSuffix() {
	if l.lang == LangCXX && l.ch == '_' {
		l.readIdentifier()
	}
}

func isEncodingPrefix(s string) bool {
	switch s {
	case "L", "u", "U", "u8":
		return true
	}
	return false
}

func isRawPrefix(s string) bool {
	switch s {
	case "R", "LR", "uR", "UR", "u8R":
		return true
	}
	return false
}

// isLetter accepts ASCII letters, '_', '$' (a common extension) and any byte
// of a multi-byte UTF-8 sequence.
func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || ch == '$' || ch >= 0x80
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
