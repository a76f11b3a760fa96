// Package parser implements a tolerant parser for C and C++ expressions.
//
// The parser does not build declarations or statements. It splits the token
// stream into a tree of bracketed sequences whose items are expressions,
// keywords and blocks, and parses every expression it finds with precedence
// climbing. Each node keeps its byte span in the original source.
package parser

import (
	"fmt"

	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/lexer"
)

// seqMode controls how the items of a sequence are interpreted.
type seqMode int

const (
	modeExpr       seqMode = iota // argument lists, initializers
	modeStatements                // blocks and the translation unit
	modeParams                    // parameter lists: names may start declarators
	modeForInit                   // first clause of a for statement
)

// Parser parses C and C++ source code into a cabs tree
type Parser struct {
	toks   []lexer.Token
	pos    int
	lang   lexer.Lang
	errors []string

	typedefs  map[string]bool // names known to denote types
	templates map[string]bool // names known to take template arguments

	// Per-item state, saved and restored around nested sequences.
	itemStart        int  // offset of the head of the current item
	itemTypeLike     bool // previous item of the statement was a type or specifier
	itemAfterKeyword bool // previous item of the statement was a keyword
	itemStmtStart    bool // the item begins a statement
	declarator       bool // a name followed by *, & or && starts a declarator
	inAngle          bool // '>' closes the innermost template argument list
}

// New creates a new Parser reading all tokens from l
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		lang:      l.Lang(),
		typedefs:  make(map[string]bool),
		templates: make(map[string]bool),
	}
	for {
		tok := l.NextToken()
		p.toks = append(p.toks, tok)
		if tok.Type == lexer.TokenEOF {
			break
		}
	}
	for _, e := range l.Errors() {
		p.errors = append(p.errors, e.Error())
	}
	p.seedTypeNames()
	p.collectTypeNames()
	return p
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s", tok.Line, tok.Column, msg))
}

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) curIs(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

// ParseTranslationUnit parses the whole input
func (p *Parser) ParseTranslationUnit() cabs.TranslationUnit {
	items := p.parseSequence(groupTU, modeStatements)
	return cabs.TranslationUnit{
		Span:  cabs.Span{Start: 0, End: p.cur().Offset},
		Items: items,
	}
}

// groupTU marks the top-level sequence, which is closed only by EOF.
const groupTU cabs.GroupKind = -1

var closers = map[cabs.GroupKind]lexer.TokenType{
	cabs.GroupParen:   lexer.TokenRParen,
	cabs.GroupBracket: lexer.TokenRBracket,
	cabs.GroupBrace:   lexer.TokenRBrace,
	cabs.GroupAngle:   lexer.TokenGt,
}

func (p *Parser) atCloser(kind cabs.GroupKind) bool {
	switch kind {
	case groupTU:
		return false
	case cabs.GroupAngle:
		switch p.cur().Type {
		case lexer.TokenGt, lexer.TokenShr, lexer.TokenGe, lexer.TokenShrAssign:
			return true
		}
		return false
	}
	return p.cur().Type == closers[kind]
}

func isCloseBracket(t lexer.TokenType) bool {
	return t == lexer.TokenRParen || t == lexer.TokenRBracket || t == lexer.TokenRBrace
}

type itemState struct {
	start        int
	typeLike     bool
	afterKeyword bool
	stmtStart    bool
	declarator   bool
	inAngle      bool
}

func (p *Parser) saveItem() itemState {
	return itemState{p.itemStart, p.itemTypeLike, p.itemAfterKeyword, p.itemStmtStart, p.declarator, p.inAngle}
}

func (p *Parser) restoreItem(s itemState) {
	p.itemStart = s.start
	p.itemTypeLike = s.typeLike
	p.itemAfterKeyword = s.afterKeyword
	p.itemStmtStart = s.stmtStart
	p.declarator = s.declarator
	p.inAngle = s.inAngle
}

// parseSequence parses items up to (not including) the closer of kind.
// Items are separated by ',', ';' and ':' or simply follow each other when
// one ends and the next begins, as in `int x` or `if (c) f();`.
func (p *Parser) parseSequence(kind cabs.GroupKind, mode seqMode) []cabs.Node {
	defer p.restoreItem(p.saveItem())
	p.inAngle = kind == cabs.GroupAngle

	var items []cabs.Node
	typeLike, afterKeyword, stmtStart := false, false, true
	for {
		tok := p.cur()
		if tok.Type == lexer.TokenEOF || p.atCloser(kind) {
			return items
		}
		if kind == cabs.GroupAngle && (tok.Type == lexer.TokenSemicolon || tok.Type == lexer.TokenLBrace ||
			isCloseBracket(tok.Type)) {
			// not a template argument list after all
			return items
		}

		switch tok.Type {
		case lexer.TokenSemicolon, lexer.TokenComma, lexer.TokenColon:
			p.next()
			typeLike, afterKeyword = false, false
			stmtStart = tok.Type == lexer.TokenSemicolon
			if mode == modeForInit && tok.Type != lexer.TokenComma {
				mode = modeExpr
			}
			continue
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			if kind != groupTU {
				return items
			}
			p.addError(tok, fmt.Sprintf("unexpected '%s'", tok.Literal))
			p.next()
			continue
		}

		p.itemStart = tok.Offset
		p.itemTypeLike = typeLike
		p.itemAfterKeyword = afterKeyword
		p.itemStmtStart = stmtStart
		p.declarator = mode == modeParams || mode == modeForInit || typeLike ||
			(mode == modeStatements && stmtStart && p.looksLikeRefDecl())

		start := p.pos
		n := len(items)
		items = p.parseItem(items)
		if p.pos == start {
			p.addError(tok, fmt.Sprintf("unexpected '%s'", tok.Literal))
			p.next()
			continue
		}

		typeLike, afterKeyword, stmtStart = false, false, false
		for _, item := range items[n:] {
			typeLike = p.isTypeLikeItem(item)
			_, afterKeyword = item.(cabs.Keyword)
			if _, ok := item.(cabs.Block); ok {
				typeLike, afterKeyword, stmtStart = false, false, true
			}
		}
	}
}

// parseItem parses one item of a sequence and appends it to items.
func (p *Parser) parseItem(items []cabs.Node) []cabs.Node {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenIf, lexer.TokenWhile, lexer.TokenFor, lexer.TokenSwitch, lexer.TokenCatch:
		items = append(items, keywordNode(tok))
		p.next()
		if p.curIs(lexer.TokenIdent) && p.cur().Literal == "constexpr" {
			items = append(items, keywordNode(p.cur()))
			p.next()
		}
		if !p.curIs(lexer.TokenLParen) {
			return items
		}
		mode := modeExpr
		switch tok.Type {
		case lexer.TokenFor:
			mode = modeForInit
		case lexer.TokenCatch:
			mode = modeParams
		}
		return append(items, p.parseGroup(cabs.GroupParen, mode))
	case lexer.TokenTemplate:
		kw := keywordNode(tok)
		p.next()
		if !p.curIs(lexer.TokenLt) {
			return append(items, kw)
		}
		args := p.parseGroup(cabs.GroupAngle, modeParams)
		return append(items, cabs.Template{
			Span: cabs.Span{Start: kw.Start, End: args.End},
			Name: kw,
			Args: args,
		})
	case lexer.TokenLBrace:
		return append(items, p.parseBlock())
	case lexer.TokenEllipsis:
		p.next()
		return append(items, keywordNode(tok))
	case lexer.TokenIdent:
		if specifierWords[tok.Literal] {
			p.next()
			return append(items, keywordNode(tok))
		}
	default:
		if isStatementKeyword(tok.Type) {
			p.next()
			return append(items, keywordNode(tok))
		}
	}
	return append(items, p.parseExpression())
}

func (p *Parser) parseBlock() cabs.Block {
	open := p.cur()
	p.next() // consume '{'
	items := p.parseSequence(cabs.GroupBrace, modeStatements)
	end := p.closeGroup(cabs.GroupBrace, open)
	return cabs.Block{Span: cabs.Span{Start: open.Offset, End: end}, Items: items}
}

// parseGroup parses a bracketed sequence starting at its opening token.
func (p *Parser) parseGroup(kind cabs.GroupKind, mode seqMode) cabs.Group {
	open := p.cur()
	p.next()
	items := p.parseSequence(kind, mode)
	end := p.closeGroup(kind, open)
	return cabs.Group{Span: cabs.Span{Start: open.Offset, End: end}, Kind: kind, Items: items}
}

// closeGroup consumes the closer of a group and returns the end offset of
// the group. A missing closer is an error, except for template argument
// lists, which may turn out to be comparisons.
func (p *Parser) closeGroup(kind cabs.GroupKind, open lexer.Token) int {
	tok := p.cur()
	if kind == cabs.GroupAngle {
		if p.atCloser(kind) {
			return p.consumeAngleClose()
		}
		return p.toks[p.pos-1].End
	}
	if tok.Type == closers[kind] {
		p.next()
		return tok.End
	}
	if tok.Type == lexer.TokenEOF {
		p.addError(open, fmt.Sprintf("unterminated '%s'", open.Literal))
	} else {
		p.addError(tok, fmt.Sprintf("expected '%s', got '%s'", closers[kind], tok.Literal))
	}
	return tok.Offset
}

// consumeAngleClose consumes one '>' closing a template argument list. A
// token that merely starts with '>' (>>, >=, >>=) is split in place.
func (p *Parser) consumeAngleClose() int {
	tok := p.cur()
	if tok.Type == lexer.TokenGt {
		p.next()
		return tok.End
	}
	rest := tok
	rest.Offset++
	rest.Column++
	rest.Literal = tok.Literal[1:]
	switch rest.Literal {
	case ">":
		rest.Type = lexer.TokenGt
	case "=":
		rest.Type = lexer.TokenAssign
	case ">=":
		rest.Type = lexer.TokenGe
	}
	p.toks[p.pos] = rest
	return tok.Offset + 1
}

// looksLikeRefDecl reports whether the statement starting here reads like
// `Name&& name = ...`, a C++ rvalue reference declaration with a type the
// parser does not know.
func (p *Parser) looksLikeRefDecl() bool {
	if p.lang != lexer.LangCXX {
		return false
	}
	i := 0
	if p.peek(i).Type == lexer.TokenScope {
		i++
	}
	if p.peek(i).Type != lexer.TokenIdent {
		return false
	}
	i++
	for p.peek(i).Type == lexer.TokenScope && p.peek(i+1).Type == lexer.TokenIdent {
		i += 2
	}
	if t := p.peek(i); t.Type != lexer.TokenAnd || t.Literal != "&&" {
		return false
	}
	if p.peek(i+1).Type != lexer.TokenIdent {
		return false
	}
	switch p.peek(i + 2).Type {
	case lexer.TokenAssign, lexer.TokenSemicolon, lexer.TokenLBrace, lexer.TokenLBracket,
		lexer.TokenComma, lexer.TokenColon:
		return true
	}
	return false
}

// isTypeLikeItem reports whether item makes a following name part of a
// declaration: a type keyword, a specifier, or a bare name followed directly
// by another item.
func (p *Parser) isTypeLikeItem(item cabs.Node) bool {
	switch n := item.(type) {
	case cabs.Keyword:
		return isDeclKeyword(n.Name)
	case cabs.Ident, cabs.Template:
		return true
	case cabs.Member:
		return n.Op == "::"
	case cabs.Unary:
		return n.Op == "decltype"
	}
	return false
}

func keywordNode(tok lexer.Token) cabs.Keyword {
	return cabs.Keyword{Span: cabs.Span{Start: tok.Offset, End: tok.End}, Name: tok.Literal}
}

// isStatementKeyword reports whether t is a keyword that is never part of
// an expression.
func isStatementKeyword(t lexer.TokenType) bool {
	if t < lexer.TokenInt_ || t > lexer.TokenCoYield {
		return false
	}
	switch t {
	case lexer.TokenSizeof, lexer.TokenAlignof, lexer.TokenNew, lexer.TokenDelete,
		lexer.TokenThrow, lexer.TokenCoAwait, lexer.TokenCoYield, lexer.TokenDecltype,
		lexer.TokenOperator:
		return false
	}
	return true
}

func isDeclKeyword(name string) bool {
	switch name {
	case "return", "else", "do", "goto", "case", "default", "break", "continue",
		"namespace", "using", "try", "co_return", "if", "while", "for", "switch", "catch",
		"...":
		return false
	}
	return true
}
