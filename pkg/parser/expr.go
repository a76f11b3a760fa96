package parser

import (
	"strings"

	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/lexer"
)

// Binding strength of binary operators, loosest first.
const (
	precAssign = 1 + iota
	precCond
	precLogOr
	precLogAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precCompare
	precShift
	precAdditive
	precMultiplicative
	precPointerToMember
)

type binaryInfo struct {
	op   cabs.BinaryOp
	prec int
}

var binaryOps = map[lexer.TokenType]binaryInfo{
	lexer.TokenAssign:        {cabs.OpAssign, precAssign},
	lexer.TokenPlusAssign:    {cabs.OpAddAssign, precAssign},
	lexer.TokenMinusAssign:   {cabs.OpSubAssign, precAssign},
	lexer.TokenStarAssign:    {cabs.OpMulAssign, precAssign},
	lexer.TokenSlashAssign:   {cabs.OpDivAssign, precAssign},
	lexer.TokenPercentAssign: {cabs.OpModAssign, precAssign},
	lexer.TokenAndAssign:     {cabs.OpAndAssign, precAssign},
	lexer.TokenOrAssign:      {cabs.OpOrAssign, precAssign},
	lexer.TokenXorAssign:     {cabs.OpXorAssign, precAssign},
	lexer.TokenShlAssign:     {cabs.OpShlAssign, precAssign},
	lexer.TokenShrAssign:     {cabs.OpShrAssign, precAssign},
	lexer.TokenOr:            {cabs.OpLogOr, precLogOr},
	lexer.TokenAnd:           {cabs.OpLogAnd, precLogAnd},
	lexer.TokenPipe:          {cabs.OpBitOr, precBitOr},
	lexer.TokenCaret:         {cabs.OpBitXor, precBitXor},
	lexer.TokenAmpersand:     {cabs.OpBitAnd, precBitAnd},
	lexer.TokenEq:            {cabs.OpEq, precEquality},
	lexer.TokenNe:            {cabs.OpNe, precEquality},
	lexer.TokenLt:            {cabs.OpLt, precRelational},
	lexer.TokenLe:            {cabs.OpLe, precRelational},
	lexer.TokenGt:            {cabs.OpGt, precRelational},
	lexer.TokenGe:            {cabs.OpGe, precRelational},
	lexer.TokenSpaceship:     {cabs.OpCmp, precCompare},
	lexer.TokenShl:           {cabs.OpShl, precShift},
	lexer.TokenShr:           {cabs.OpShr, precShift},
	lexer.TokenPlus:          {cabs.OpAdd, precAdditive},
	lexer.TokenMinus:         {cabs.OpSub, precAdditive},
	lexer.TokenStar:          {cabs.OpMul, precMultiplicative},
	lexer.TokenSlash:         {cabs.OpDiv, precMultiplicative},
	lexer.TokenPercent:       {cabs.OpMod, precMultiplicative},
	lexer.TokenDotStar:       {cabs.OpDotStar, precPointerToMember},
	lexer.TokenArrowStar:     {cabs.OpArrowStar, precPointerToMember},
}

func (p *Parser) binaryOp(tok lexer.Token) (binaryInfo, bool) {
	if p.inAngle {
		switch tok.Type {
		case lexer.TokenGt, lexer.TokenGe, lexer.TokenShr, lexer.TokenShrAssign:
			return binaryInfo{}, false
		}
	}
	info, ok := binaryOps[tok.Type]
	return info, ok
}

func (p *Parser) parseExpression() cabs.Node {
	return p.parseBinary(precAssign)
}

// parseBinary parses operators binding at least as tightly as minPrec.
func (p *Parser) parseBinary(minPrec int) cabs.Node {
	left := p.parseUnary(minPrec <= precAssign)
	for {
		tok := p.cur()
		if tok.Type == lexer.TokenQuestion {
			if minPrec > precCond {
				return left
			}
			left = p.parseConditional(left)
			continue
		}
		info, ok := p.binaryOp(tok)
		if !ok || info.prec < minPrec || p.endsDeclarator(left, tok) {
			return left
		}
		p.next()
		p.declarator = false

		var right cabs.Node
		if info.prec == precAssign {
			right = p.parseBinary(precAssign)
		} else {
			right = p.parseBinary(info.prec + 1)
		}
		left = cabs.Binary{
			Span:  cabs.Span{Start: left.Extent().Start, End: right.Extent().End},
			Op:    info.op,
			OpLoc: cabs.Span{Start: tok.Offset, End: tok.End},
			Left:  left,
			Right: right,
		}
	}
}

// parseConditional parses the rest of cond ? then : else. Then is nil for
// the GNU `cond ?: else` form.
func (p *Parser) parseConditional(cond cabs.Node) cabs.Node {
	p.next() // consume '?'
	var then cabs.Node
	if !p.curIs(lexer.TokenColon) {
		then = p.parseBinary(precAssign)
	}
	var els cabs.Node
	if p.curIs(lexer.TokenColon) {
		p.next()
		els = p.parseBinary(precAssign)
	} else {
		els = p.bad()
	}
	return cabs.Conditional{
		Span: cabs.Span{Start: cond.Extent().Start, End: els.Extent().End},
		Cond: cond,
		Then: then,
		Else: els,
	}
}

// endsDeclarator reports whether the operator tok after left actually
// belongs to a declarator, as in `Foo* p`, `T& r` or `T&& r`.
func (p *Parser) endsDeclarator(left cabs.Node, tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenStar, lexer.TokenAmpersand, lexer.TokenAnd:
	default:
		return false
	}
	if p.declarator && isName(left) {
		return true
	}
	return p.isTypeLike(left)
}

// isTypeLike reports whether n is known to name a type.
func (p *Parser) isTypeLike(n cabs.Node) bool {
	switch n := n.(type) {
	case cabs.Ident:
		return p.isTypeName(n.Name)
	case cabs.Template:
		return p.isTypeLike(n.Name)
	case cabs.Member:
		if n.Op != "::" {
			return false
		}
		if id, ok := n.Name.(cabs.Ident); ok && (id.Name == "type" || p.isTypeName(id.Name)) {
			return true
		}
		return false
	case cabs.Unary:
		return n.Op == "decltype"
	case cabs.Keyword:
		return true
	}
	return false
}

func isName(n cabs.Node) bool {
	switch n := n.(type) {
	case cabs.Ident, cabs.Template:
		return true
	case cabs.Member:
		return n.Op == "::"
	}
	return false
}

func (p *Parser) bad() cabs.Node {
	off := p.cur().Offset
	return cabs.Bad{Span: cabs.Span{Start: off, End: off}}
}

// parseUnary parses prefix operators and then a postfix expression.
// braceOK allows a brace-enclosed initializer list as the operand.
func (p *Parser) parseUnary(braceOK bool) cabs.Node {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenNot, lexer.TokenTilde, lexer.TokenStar,
		lexer.TokenAmpersand, lexer.TokenAnd, lexer.TokenIncrement, lexer.TokenDecrement,
		lexer.TokenCoAwait:
		p.next()
		if tok.Offset == p.itemStart && (tok.Type == lexer.TokenStar || tok.Type == lexer.TokenAmpersand ||
			tok.Type == lexer.TokenAnd) {
			// `*f(...)` still has f at the head of a declarator
			p.itemStart = p.cur().Offset
		}
		return p.unary(tok, p.parseUnary(false))
	case lexer.TokenSizeof, lexer.TokenAlignof:
		p.next()
		if p.curIs(lexer.TokenEllipsis) {
			p.next()
		}
		if p.curIs(lexer.TokenLParen) {
			return p.unary(tok, p.parseGroup(cabs.GroupParen, modeExpr))
		}
		return p.unary(tok, p.parseUnary(false))
	case lexer.TokenThrow, lexer.TokenCoYield:
		p.next()
		return p.unary(tok, p.parseBinary(precAssign))
	case lexer.TokenNew:
		p.next()
		return p.unary(tok, p.parseUnary(false))
	case lexer.TokenDelete:
		p.next()
		if p.curIs(lexer.TokenLBracket) && p.peek(1).Type == lexer.TokenRBracket {
			p.next()
			p.next()
		}
		return p.unary(tok, p.parseUnary(false))
	case lexer.TokenScope:
		if t := p.peek(1).Type; t == lexer.TokenNew || t == lexer.TokenDelete {
			p.next()
			return p.parseUnary(braceOK)
		}
	}

	n := p.parsePrimary(braceOK)
	if _, ok := n.(cabs.Bad); ok {
		return n
	}
	return p.parsePostfix(n)
}

func (p *Parser) unary(tok lexer.Token, operand cabs.Node) cabs.Node {
	end := operand.Extent().End
	if end < tok.End {
		end = tok.End
	}
	return cabs.Unary{Span: cabs.Span{Start: tok.Offset, End: end}, Op: tok.Literal, Operand: operand}
}

func (p *Parser) parsePrimary(braceOK bool) cabs.Node {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenIdent, lexer.TokenScope, lexer.TokenOperator:
		return p.parseName(false)
	case lexer.TokenInt, lexer.TokenCharLit:
		p.next()
		return cabs.Literal{Span: cabs.Span{Start: tok.Offset, End: tok.End}, Text: tok.Literal}
	case lexer.TokenString:
		return p.parseStrings()
	case lexer.TokenLParen:
		return p.parseParen()
	case lexer.TokenLBracket:
		return p.parseBracket()
	case lexer.TokenLBrace:
		if braceOK {
			return p.parseGroup(cabs.GroupBrace, modeExpr)
		}
	case lexer.TokenDecltype:
		p.next()
		if p.curIs(lexer.TokenLParen) {
			return p.unary(tok, p.parseGroup(cabs.GroupParen, modeExpr))
		}
		return p.unary(tok, p.bad())
	case lexer.TokenDot:
		// designator in an initializer: .field = value
		if p.peek(1).Type == lexer.TokenIdent {
			name := p.peek(1)
			p.next()
			p.next()
			return cabs.Ident{Span: cabs.Span{Start: tok.Offset, End: name.End}, Name: "." + name.Literal}
		}
	default:
		if lexer.IsTypeKeyword(tok.Type) {
			return p.parseTypeKeywords()
		}
	}
	return p.bad()
}

// parseStrings merges adjacent string literals into one node.
func (p *Parser) parseStrings() cabs.Node {
	first := p.cur()
	var text strings.Builder
	end := first.End
	for p.curIs(lexer.TokenString) {
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(p.cur().Literal)
		end = p.cur().End
		p.next()
	}
	return cabs.Literal{Span: cabs.Span{Start: first.Offset, End: end}, Text: text.String()}
}

// parseTypeKeywords parses a run of type keywords in operand position, as
// in `new unsigned long[n]` or `int(x)`.
func (p *Parser) parseTypeKeywords() cabs.Node {
	first := p.cur()
	var names []string
	end := first.End
	for lexer.IsTypeKeyword(p.cur().Type) {
		names = append(names, p.cur().Literal)
		end = p.cur().End
		p.next()
		if p.curIs(lexer.TokenIdent) && (names[len(names)-1] == "struct" || names[len(names)-1] == "class" ||
			names[len(names)-1] == "union" || names[len(names)-1] == "enum") {
			names = append(names, p.cur().Literal)
			end = p.cur().End
			p.next()
		}
	}
	return cabs.Keyword{Span: cabs.Span{Start: first.Offset, End: end}, Name: strings.Join(names, " ")}
}

// parseName parses a possibly qualified name with optional template
// arguments. forceTemplate treats a following '<' as template arguments,
// as after the `template` disambiguator.
func (p *Parser) parseName(forceTemplate bool) cabs.Node {
	start := p.cur().Offset
	end := start
	var name strings.Builder

	if p.curIs(lexer.TokenScope) {
		name.WriteString("::")
		end = p.cur().End
		p.next()
	}
	for {
		tok := p.cur()
		switch {
		case tok.Type == lexer.TokenIdent:
			name.WriteString(tok.Literal)
			end = tok.End
			p.next()
		case tok.Type == lexer.TokenTilde && p.peek(1).Type == lexer.TokenIdent && name.Len() > 0:
			name.WriteString("~" + p.peek(1).Literal)
			end = p.peek(1).End
			p.next()
			p.next()
		case tok.Type == lexer.TokenOperator:
			op, opEnd := p.parseOperatorName()
			name.WriteString(op)
			end = opEnd
		case tok.Type == lexer.TokenTemplate && name.Len() > 0:
			p.next()
			forceTemplate = true
			continue
		default:
			if name.Len() == 0 {
				return p.bad()
			}
		}

		var n cabs.Node = cabs.Ident{Span: cabs.Span{Start: start, End: end}, Name: name.String()}
		if p.curIs(lexer.TokenLt) && (forceTemplate || p.isTemplateName(name.String())) {
			args := p.parseGroup(cabs.GroupAngle, modeExpr)
			n = cabs.Template{Span: cabs.Span{Start: start, End: args.End}, Name: n, Args: args}
			if p.curIs(lexer.TokenScope) && isNameStart(p.peek(1).Type) {
				p.next()
				rest := p.parseName(false)
				return cabs.Member{
					Span:   cabs.Span{Start: start, End: rest.Extent().End},
					Object: n,
					Op:     "::",
					Name:   rest,
				}
			}
			return n
		}
		if p.curIs(lexer.TokenScope) && isNameStart(p.peek(1).Type) {
			name.WriteString("::")
			p.next()
			continue
		}
		return n
	}
}

func isNameStart(t lexer.TokenType) bool {
	return t == lexer.TokenIdent || t == lexer.TokenTilde || t == lexer.TokenOperator || t == lexer.TokenTemplate
}

// parseOperatorName parses `operator` followed by an operator or a
// conversion type, returning the spelling without spaces.
func (p *Parser) parseOperatorName() (string, int) {
	tok := p.cur()
	p.next()
	name := tok.Literal
	end := tok.End
	take := func() {
		name += p.cur().Literal
		end = p.cur().End
		p.next()
	}

	t := p.cur().Type
	switch {
	case t == lexer.TokenLParen && p.peek(1).Type == lexer.TokenRParen,
		t == lexer.TokenLBracket && p.peek(1).Type == lexer.TokenRBracket:
		take()
		take()
	case t == lexer.TokenNew || t == lexer.TokenDelete:
		name += " "
		take()
		if p.curIs(lexer.TokenLBracket) && p.peek(1).Type == lexer.TokenRBracket {
			take()
			take()
		}
	case t == lexer.TokenString:
		take()
		if p.curIs(lexer.TokenIdent) {
			name += " "
			take()
		}
	case t == lexer.TokenIdent || lexer.IsTypeKeyword(t):
		// conversion function: operator const char*
		name += " "
		for p.curIs(lexer.TokenIdent) || p.curIs(lexer.TokenScope) || lexer.IsTypeKeyword(p.cur().Type) ||
			p.curIs(lexer.TokenStar) || p.curIs(lexer.TokenAmpersand) || p.curIs(lexer.TokenAnd) {
			take()
		}
	case t == lexer.TokenEOF || t == lexer.TokenSemicolon || t == lexer.TokenLBrace:
	default:
		take()
	}
	return name, end
}

// parseParen parses a parenthesised expression or a C-style cast.
func (p *Parser) parseParen() cabs.Node {
	if !p.looksLikeCast() {
		return p.parseGroup(cabs.GroupParen, modeExpr)
	}
	typ := p.parseGroup(cabs.GroupParen, modeParams)
	operand := p.parseUnary(true)
	return cabs.Cast{
		Span:    cabs.Span{Start: typ.Start, End: operand.Extent().End},
		Type:    typ,
		Operand: operand,
	}
}

// looksLikeCast reports whether the parenthesis at the current position
// encloses a type name and is followed by an operand.
func (p *Parser) looksLikeCast() bool {
	closeIdx := p.matching(p.pos)
	if closeIdx < 0 || closeIdx == p.pos+1 {
		return false
	}
	inner := p.toks[p.pos+1 : closeIdx]

	isType := false
	first := inner[0]
	switch {
	case lexer.IsTypeKeyword(first.Type):
		isType = true
	case first.Type == lexer.TokenIdent || first.Type == lexer.TokenScope:
		name := ""
		for _, t := range inner {
			if t.Type != lexer.TokenIdent && t.Type != lexer.TokenScope {
				break
			}
			name += t.Literal
		}
		isType = p.isTypeName(name)
	}
	switch inner[len(inner)-1].Type {
	case lexer.TokenStar, lexer.TokenAmpersand, lexer.TokenAnd:
		isType = true
	}
	if !isType {
		return false
	}

	switch p.toks[closeIdx+1].Type {
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenCharLit, lexer.TokenString, lexer.TokenLParen,
		lexer.TokenLBrace, lexer.TokenNot, lexer.TokenTilde, lexer.TokenMinus, lexer.TokenPlus,
		lexer.TokenStar, lexer.TokenAmpersand, lexer.TokenIncrement, lexer.TokenDecrement,
		lexer.TokenSizeof, lexer.TokenAlignof, lexer.TokenNew, lexer.TokenDelete, lexer.TokenScope,
		lexer.TokenOperator:
		return true
	}
	return false
}

// matching returns the index of the bracket closing the one at toks[i], or
// -1 when it is not closed.
func (p *Parser) matching(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		switch p.toks[j].Type {
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			depth--
			if depth == 0 {
				return j
			}
		case lexer.TokenEOF:
			return -1
		}
	}
	return -1
}

// parseBracket parses a lambda expression, or a bracketed group such as an
// attribute or an array designator when no lambda follows.
func (p *Parser) parseBracket() cabs.Node {
	captures := p.parseGroup(cabs.GroupBracket, modeExpr)
	var params *cabs.Group
	switch {
	case p.curIs(lexer.TokenLParen):
		if !p.lambdaBodyAhead() {
			return captures
		}
		g := p.parseGroup(cabs.GroupParen, modeParams)
		params = &g
		for !p.curIs(lexer.TokenLBrace) {
			if p.curIs(lexer.TokenLParen) || p.curIs(lexer.TokenLBracket) {
				p.pos = p.matching(p.pos)
			}
			p.next()
		}
	case p.curIs(lexer.TokenLBrace):
	default:
		return captures
	}
	body := p.parseBlock()
	return cabs.Lambda{
		Span:     cabs.Span{Start: captures.Start, End: body.End},
		Captures: captures,
		Params:   params,
		Body:     body,
	}
}

// lambdaBodyAhead reports whether the parameter list at the current
// position is followed by a lambda body before the enclosing expression
// ends.
func (p *Parser) lambdaBodyAhead() bool {
	i := p.matching(p.pos)
	if i < 0 {
		return false
	}
	for i++; i < len(p.toks); i++ {
		switch p.toks[i].Type {
		case lexer.TokenLBrace:
			return true
		case lexer.TokenLParen, lexer.TokenLBracket:
			if i = p.matching(i); i < 0 {
				return false
			}
		case lexer.TokenSemicolon, lexer.TokenComma, lexer.TokenRParen, lexer.TokenRBracket,
			lexer.TokenRBrace, lexer.TokenEOF:
			return false
		}
	}
	return false
}

// parsePostfix parses calls, subscripts, member access and postfix
// increments applied to n.
func (p *Parser) parsePostfix(n cabs.Node) cabs.Node {
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.TokenLParen:
			mode := modeExpr
			if p.isDeclaratorHead(n) {
				mode = modeParams
			}
			args := p.parseGroup(cabs.GroupParen, mode)
			n = cabs.Call{Span: cabs.Span{Start: n.Extent().Start, End: args.End}, Func: n, Args: args}
		case lexer.TokenLBracket:
			idx := p.parseGroup(cabs.GroupBracket, modeExpr)
			n = cabs.Index{Span: cabs.Span{Start: n.Extent().Start, End: idx.End}, Array: n, Index: idx}
		case lexer.TokenLBrace:
			if !p.bracePostfixOK(n) {
				return n
			}
			args := p.parseGroup(cabs.GroupBrace, modeExpr)
			n = cabs.Call{Span: cabs.Span{Start: n.Extent().Start, End: args.End}, Func: n, Args: args}
		case lexer.TokenDot, lexer.TokenArrow:
			p.next()
			force := false
			if p.curIs(lexer.TokenTemplate) {
				p.next()
				force = true
			}
			name := p.parseName(force)
			end := name.Extent().End
			if end < tok.End {
				end = tok.End
			}
			n = cabs.Member{Span: cabs.Span{Start: n.Extent().Start, End: end}, Object: n, Op: tok.Literal, Name: name}
		case lexer.TokenIncrement, lexer.TokenDecrement:
			p.next()
			n = cabs.Postfix{Span: cabs.Span{Start: n.Extent().Start, End: tok.End}, Op: tok.Literal, Operand: n}
		default:
			return n
		}
	}
}

// isDeclaratorHead reports whether a call on n is really the parameter list
// of a function declarator: n heads the item and follows a type, or names a
// constructor at the start of a statement, or is an operator function.
func (p *Parser) isDeclaratorHead(n cabs.Node) bool {
	if !isName(n) || n.Extent().Start != p.itemStart {
		return false
	}
	if p.itemTypeLike {
		return true
	}
	id, ok := n.(cabs.Ident)
	if !ok {
		return false
	}
	if strings.HasPrefix(lastComponent(id.Name), "operator") {
		return true
	}
	if !p.itemStmtStart {
		return false
	}
	if p.isTypeName(id.Name) {
		return true
	}
	// Foo::Foo and Foo::~Foo
	parts := strings.Split(id.Name, "::")
	if len(parts) >= 2 {
		last, prev := parts[len(parts)-1], parts[len(parts)-2]
		return last == prev || last == "~"+prev
	}
	return false
}

// bracePostfixOK reports whether a '{' after n starts a braced initializer
// such as T{...} rather than a block.
func (p *Parser) bracePostfixOK(n cabs.Node) bool {
	if !p.isTypeLike(n) {
		return false
	}
	head := n.Extent().Start == p.itemStart
	return !(head && (p.itemTypeLike || p.itemAfterKeyword))
}
