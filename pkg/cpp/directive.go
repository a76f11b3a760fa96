// Package cpp tracks preprocessor conditionals over raw source text.
//
// It does not produce preprocessed output. Instead it finds directive lines,
// evaluates #if/#ifdef/#elif chains against a macro table and reports the
// byte ranges of inactive groups, so that later stages can skip them while
// every remaining byte keeps its original offset.
package cpp

import "strings"

// Directive is one preprocessor directive line of the source.
type Directive struct {
	Name      string // if, ifdef, define, ... (empty for a null directive)
	Args      string // text after the name, line splices included
	LineStart int    // offset of the first byte of the line holding '#'
	End       int    // offset just past the terminating newline, or len(src)
	Line      int    // 1-based line of the '#'
}

// ScanDirectives returns the directive lines of src in order. Comments and
// string literals are tracked so that a '#' inside them is not mistaken for a
// directive.
func ScanDirectives(src string) []Directive {
	s := &scanner{src: src, line: 1, atBOL: true}
	var out []Directive
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\n':
			s.newline()
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f':
			s.pos++
		case ch == '\\' && s.spliceLen() > 0:
			s.pos += s.spliceLen()
			s.line++
		case ch == '/' && s.peek(1) == '/':
			s.skipLineComment()
		case ch == '/' && s.peek(1) == '*':
			s.skipBlockComment()
		case ch == '#' && s.atBOL:
			out = append(out, s.readDirective())
		default:
			s.atBOL = false
			s.skipToken()
		}
	}
	return out
}

type scanner struct {
	src       string
	pos       int
	line      int
	lineStart int
	atBOL     bool
}

func (s *scanner) peek(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) newline() {
	s.pos++
	s.line++
	s.lineStart = s.pos
	s.atBOL = true
}

func (s *scanner) spliceLen() int {
	switch {
	case s.peek(0) != '\\':
		return 0
	case s.peek(1) == '\n':
		return 2
	case s.peek(1) == '\r' && s.peek(2) == '\n':
		return 3
	}
	return 0
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		if n := s.spliceLen(); n > 0 {
			s.pos += n
			s.line++
			continue
		}
		s.pos++
	}
}

func (s *scanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		if s.src[s.pos] == '\n' {
			s.line++
			s.lineStart = s.pos + 1
		}
		s.pos++
	}
}

// skipToken skips one token of ordinary code. Only quoted literals need
// care; everything else is skipped a byte at a time.
func (s *scanner) skipToken() {
	ch := s.src[s.pos]
	switch {
	case ch == '"' && s.rawPrefix():
		s.skipRaw()
	case ch == '"':
		s.skipQuoted('"')
	case ch == '\'' && s.pos > 0 && isHexByte(s.src[s.pos-1]) && isIdentByte(s.peek(1)):
		s.pos++ // digit separator
	case ch == '\'':
		s.skipQuoted('\'')
	default:
		s.pos++
	}
}

// rawPrefix reports whether the identifier ending at the current position is
// a raw string prefix.
func (s *scanner) rawPrefix() bool {
	start := s.pos
	for start > 0 && isIdentByte(s.src[start-1]) {
		start--
	}
	switch s.src[start:s.pos] {
	case "R", "LR", "uR", "UR", "u8R":
		return true
	}
	return false
}

func (s *scanner) skipQuoted(quote byte) {
	s.pos++
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		switch s.src[s.pos] {
		case '\\':
			if n := s.spliceLen(); n > 0 {
				s.pos += n
				s.line++
				continue
			}
			s.pos += 2
		case quote:
			s.pos++
			return
		default:
			s.pos++
		}
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

func (s *scanner) skipRaw() {
	open := strings.IndexByte(s.src[s.pos:], '(')
	if open < 0 || strings.ContainsAny(s.src[s.pos:s.pos+open], "\n )\\") {
		s.skipQuoted('"')
		return
	}
	closing := ")" + s.src[s.pos+1:s.pos+open] + "\""
	end := strings.Index(s.src[s.pos+open:], closing)
	if end < 0 {
		s.pos = len(s.src)
		return
	}
	body := s.src[s.pos : s.pos+open+end+len(closing)]
	s.line += strings.Count(body, "\n")
	if nl := strings.LastIndexByte(body, '\n'); nl >= 0 {
		s.lineStart = s.pos + nl + 1
	}
	s.pos += len(body)
}

// readDirective consumes a directive from its '#' through the newline that
// ends it.
func (s *scanner) readDirective() Directive {
	d := Directive{LineStart: s.lineStart, Line: s.line}
	s.pos++ // consume #
	bodyStart := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		switch {
		case s.spliceLen() > 0:
			s.pos += s.spliceLen()
			s.line++
		case s.src[s.pos] == '/' && s.peek(1) == '*':
			s.skipBlockComment()
		case s.src[s.pos] == '/' && s.peek(1) == '/':
			s.skipLineComment()
		default:
			s.pos++
		}
	}
	body := s.src[bodyStart:s.pos]
	if s.pos < len(s.src) {
		s.newline()
	} else {
		s.atBOL = true
	}
	d.End = s.pos
	d.Name, d.Args = splitDirective(body)
	return d
}

// splitDirective separates the directive name from its arguments.
func splitDirective(body string) (name, args string) {
	body = strings.TrimLeft(body, " \t")
	i := 0
	for i < len(body) && isIdentByte(body[i]) {
		i++
	}
	return body[:i], strings.TrimSpace(body[i:])
}

func isIdentByte(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') || ch == '_' || ch == '$' || ch >= 0x80
}

func isHexByte(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
