// conditional.go implements conditional compilation (#if, #ifdef, etc.)
package cpp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/raymyers/cmess/pkg/lexer"
)

// ErrUnsupported is returned for conditions that cannot be evaluated without
// a full preprocessor, such as function-like macro calls or __has_include.
var ErrUnsupported = errors.New("unsupported preprocessor expression")

// conditionState tracks one level of nested conditional compilation.
type conditionState struct {
	active    bool // current branch is included
	seenElse  bool // #else has been seen for this level
	anyActive bool // some branch at this level was taken
}

// ConditionalProcessor handles conditional compilation directives.
type ConditionalProcessor struct {
	macros *MacroTable
	lang   lexer.Lang
	stack  []conditionState
}

// NewConditionalProcessor creates a new conditional processor.
func NewConditionalProcessor(macros *MacroTable, lang lexer.Lang) *ConditionalProcessor {
	return &ConditionalProcessor{macros: macros, lang: lang}
}

// IsActive returns true if the current location is active (should be included).
func (cp *ConditionalProcessor) IsActive() bool {
	for _, state := range cp.stack {
		if !state.active {
			return false
		}
	}
	return true
}

func (cp *ConditionalProcessor) parentActive() bool {
	for i := 0; i < len(cp.stack)-1; i++ {
		if !cp.stack[i].active {
			return false
		}
	}
	return true
}

// ProcessIf handles #if. When the condition cannot be evaluated the first
// branch is taken and the evaluation error is returned alongside.
func (cp *ConditionalProcessor) ProcessIf(expr string) error {
	if !cp.IsActive() {
		cp.stack = append(cp.stack, conditionState{})
		return nil
	}
	result, err := cp.Evaluate(expr)
	if err != nil {
		result = true
		err = fmt.Errorf("#if %s: %w", expr, err)
	}
	cp.stack = append(cp.stack, conditionState{active: result, anyActive: result})
	return err
}

// ProcessIfdef handles #ifdef and #ifndef.
func (cp *ConditionalProcessor) ProcessIfdef(name string, negate bool) {
	if !cp.IsActive() {
		cp.stack = append(cp.stack, conditionState{})
		return
	}
	result := cp.macros.IsDefined(name) != negate
	cp.stack = append(cp.stack, conditionState{active: result, anyActive: result})
}

// ProcessElif handles #elif.
func (cp *ConditionalProcessor) ProcessElif(expr string) error {
	if len(cp.stack) == 0 {
		return fmt.Errorf("#elif without matching #if")
	}
	state := &cp.stack[len(cp.stack)-1]
	if state.seenElse {
		return fmt.Errorf("#elif after #else")
	}
	if state.anyActive || !cp.parentActive() {
		state.active = false
		return nil
	}
	result, err := cp.Evaluate(expr)
	if err != nil {
		result = true
		err = fmt.Errorf("#elif %s: %w", expr, err)
	}
	state.active = result
	state.anyActive = result
	return err
}

// ProcessElse handles #else.
func (cp *ConditionalProcessor) ProcessElse() error {
	if len(cp.stack) == 0 {
		return fmt.Errorf("#else without matching #if")
	}
	state := &cp.stack[len(cp.stack)-1]
	if state.seenElse {
		return fmt.Errorf("duplicate #else")
	}
	state.seenElse = true
	state.active = cp.parentActive() && !state.anyActive
	if state.active {
		state.anyActive = true
	}
	return nil
}

// ProcessEndif handles #endif.
func (cp *ConditionalProcessor) ProcessEndif() error {
	if len(cp.stack) == 0 {
		return fmt.Errorf("#endif without matching #if")
	}
	cp.stack = cp.stack[:len(cp.stack)-1]
	return nil
}

// Depth returns the nesting depth of conditionals.
func (cp *ConditionalProcessor) Depth() int {
	return len(cp.stack)
}

// Evaluate evaluates a preprocessor constant expression.
func (cp *ConditionalProcessor) Evaluate(expr string) (bool, error) {
	tokens, err := cp.expand(tokenize(expr, cp.lang), map[string]bool{})
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return false, fmt.Errorf("empty expression")
	}
	p := &exprParser{tokens: tokens}
	result, err := p.parseConditional()
	if err != nil {
		return false, err
	}
	if p.pos < len(p.tokens) {
		return false, fmt.Errorf("unexpected token after expression: %s", p.tokens[p.pos].Literal)
	}
	return result != 0, nil
}

func tokenize(text string, lang lexer.Lang) []lexer.Token {
	l := lexer.New(text, lang)
	var out []lexer.Token
	for {
		tok := l.NextToken()
		if tok.Type == lexer.TokenEOF {
			return out
		}
		out = append(out, tok)
	}
}

// expand resolves `defined`, substitutes object-like macros and replaces the
// remaining identifiers with 0. hide holds the macros being expanded.
func (cp *ConditionalProcessor) expand(tokens []lexer.Token, hide map[string]bool) ([]lexer.Token, error) {
	var out []lexer.Token
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !isWord(tok) {
			out = append(out, tok)
			continue
		}
		switch {
		case tok.Literal == "defined":
			name, next, err := definedOperand(tokens, i+1)
			if err != nil {
				return nil, err
			}
			out = append(out, number(cp.macros.IsDefined(name)))
			i = next - 1
		case strings.HasPrefix(tok.Literal, "__has_"):
			return nil, fmt.Errorf("%s: %w", tok.Literal, ErrUnsupported)
		case cp.macros.IsDefined(tok.Literal) && !hide[tok.Literal]:
			m := cp.macros.Lookup(tok.Literal)
			if m.FuncLike {
				if i+1 < len(tokens) && tokens[i+1].Type == lexer.TokenLParen {
					return nil, fmt.Errorf("function-like macro %s: %w", m.Name, ErrUnsupported)
				}
				out = append(out, number(false))
				continue
			}
			hide[m.Name] = true
			body, err := cp.expand(tokenize(m.Body, cp.lang), hide)
			delete(hide, m.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, body...)
		case cp.lang == lexer.LangCXX && tok.Literal == "true":
			out = append(out, number(true))
		default:
			out = append(out, number(false))
		}
	}
	return out, nil
}

// definedOperand parses the operand of `defined`, either NAME or (NAME),
// starting at tokens[i]. It returns the name and the index after it.
func definedOperand(tokens []lexer.Token, i int) (string, int, error) {
	if i < len(tokens) && isWord(tokens[i]) {
		return tokens[i].Literal, i + 1, nil
	}
	if i+2 < len(tokens) && tokens[i].Type == lexer.TokenLParen && isWord(tokens[i+1]) &&
		tokens[i+2].Type == lexer.TokenRParen {
		return tokens[i+1].Literal, i + 3, nil
	}
	return "", i, fmt.Errorf("defined operator requires an identifier")
}

// isWord reports whether tok is spelled like an identifier. Keywords count,
// since the preprocessor treats them as plain identifiers; the C++ named
// operators do not.
func isWord(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenString, lexer.TokenCharLit, lexer.TokenInt, lexer.TokenEOF:
		return false
	}
	ch := tok.Literal[0]
	return (ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')) && !isAltOperator(tok)
}

func isAltOperator(tok lexer.Token) bool {
	return tok.Type != lexer.TokenIdent && lexer.IsAlternativeSpelling(tok.Literal)
}

func number(b bool) lexer.Token {
	if b {
		return lexer.Token{Type: lexer.TokenInt, Literal: "1"}
	}
	return lexer.Token{Type: lexer.TokenInt, Literal: "0"}
}

// exprParser parses and evaluates preprocessor constant expressions.
type exprParser struct {
	tokens []lexer.Token
	pos    int
}

func (p *exprParser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *exprParser) match(t lexer.TokenType) bool {
	if p.peek().Type == t {
		p.pos++
		return true
	}
	return false
}

// binaryPrec holds the precedence of the binary operators allowed in #if.
var binaryPrec = map[lexer.TokenType]int{
	lexer.TokenOr:        1,
	lexer.TokenAnd:       2,
	lexer.TokenPipe:      3,
	lexer.TokenCaret:     4,
	lexer.TokenAmpersand: 5,
	lexer.TokenEq:        6,
	lexer.TokenNe:        6,
	lexer.TokenLt:        7,
	lexer.TokenLe:        7,
	lexer.TokenGt:        7,
	lexer.TokenGe:        7,
	lexer.TokenShl:       8,
	lexer.TokenShr:       8,
	lexer.TokenPlus:      9,
	lexer.TokenMinus:     9,
	lexer.TokenStar:      10,
	lexer.TokenSlash:     10,
	lexer.TokenPercent:   10,
}

func (p *exprParser) parseConditional() (int64, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return 0, err
	}
	if !p.match(lexer.TokenQuestion) {
		return cond, nil
	}
	thenVal, err := p.parseConditional()
	if err != nil {
		return 0, err
	}
	if !p.match(lexer.TokenColon) {
		return 0, fmt.Errorf("expected ':' in conditional expression")
	}
	elseVal, err := p.parseConditional()
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return thenVal, nil
	}
	return elseVal, nil
}

func (p *exprParser) parseBinary(minPrec int) (int64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek().Type
		prec, ok := binaryPrec[op]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.pos++
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return 0, err
		}
		if left, err = apply(op, left, right); err != nil {
			return 0, err
		}
	}
}

func apply(op lexer.TokenType, l, r int64) (int64, error) {
	switch op {
	case lexer.TokenOr:
		return boolInt(l != 0 || r != 0), nil
	case lexer.TokenAnd:
		return boolInt(l != 0 && r != 0), nil
	case lexer.TokenPipe:
		return l | r, nil
	case lexer.TokenCaret:
		return l ^ r, nil
	case lexer.TokenAmpersand:
		return l & r, nil
	case lexer.TokenEq:
		return boolInt(l == r), nil
	case lexer.TokenNe:
		return boolInt(l != r), nil
	case lexer.TokenLt:
		return boolInt(l < r), nil
	case lexer.TokenLe:
		return boolInt(l <= r), nil
	case lexer.TokenGt:
		return boolInt(l > r), nil
	case lexer.TokenGe:
		return boolInt(l >= r), nil
	case lexer.TokenShl:
		return l << uint64(r&63), nil
	case lexer.TokenShr:
		return l >> uint64(r&63), nil
	case lexer.TokenPlus:
		return l + r, nil
	case lexer.TokenMinus:
		return l - r, nil
	case lexer.TokenStar:
		return l * r, nil
	case lexer.TokenSlash, lexer.TokenPercent:
		if r == 0 {
			return 0, fmt.Errorf("division by zero in preprocessor expression")
		}
		if op == lexer.TokenSlash {
			return l / r, nil
		}
		return l % r, nil
	}
	return 0, fmt.Errorf("unexpected operator %s", op)
}

func (p *exprParser) parseUnary() (int64, error) {
	switch {
	case p.match(lexer.TokenNot):
		v, err := p.parseUnary()
		return boolInt(v == 0), err
	case p.match(lexer.TokenMinus):
		v, err := p.parseUnary()
		return -v, err
	case p.match(lexer.TokenPlus):
		return p.parseUnary()
	case p.match(lexer.TokenTilde):
		v, err := p.parseUnary()
		return ^v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (int64, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenLParen:
		p.pos++
		v, err := p.parseConditional()
		if err != nil {
			return 0, err
		}
		if !p.match(lexer.TokenRParen) {
			return 0, fmt.Errorf("expected ')' in preprocessor expression")
		}
		return v, nil
	case lexer.TokenInt:
		p.pos++
		return parseNumber(tok.Literal)
	case lexer.TokenCharLit:
		p.pos++
		return parseCharConst(tok.Literal)
	case lexer.TokenEOF:
		return 0, fmt.Errorf("unexpected end of expression")
	}
	return 0, fmt.Errorf("unexpected token in preprocessor expression: %s", tok.Literal)
}

// parseNumber parses an integer constant, ignoring digit separators and
// integer suffixes.
func parseNumber(s string) (int64, error) {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimRight(s, "uUlLzZ")
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base, s = 2, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer constant %q", s)
	}
	return int64(v), nil
}

// parseCharConst parses a character constant like 'a' or '\n'.
func parseCharConst(s string) (int64, error) {
	if i := strings.IndexByte(s, '\''); i >= 0 {
		s = s[i:]
	}
	if len(s) < 3 || s[len(s)-1] != '\'' {
		return 0, fmt.Errorf("invalid character constant %s", s)
	}
	body := s[1 : len(s)-1]
	if body[0] != '\\' {
		return int64(body[0]), nil
	}
	if len(body) < 2 {
		return 0, fmt.Errorf("invalid character constant %s", s)
	}
	switch body[1] {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		if len(body) == 2 {
			return 0, nil
		}
		v, err := strconv.ParseInt(body[1:], 8, 64)
		return v, err
	case 'x':
		return strconv.ParseInt(body[2:], 16, 64)
	case '\\', '\'', '"', '?':
		return int64(body[1]), nil
	}
	return int64(body[1]), nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
