// Package cabs defines the expression tree produced by the tolerant C/C++
// parser. Every node records its extent in the original source as a
// half-open byte range, so edits can be anchored to the input text.
package cabs

// Span is a half-open byte range [Start, End) of the original source.
type Span struct {
	Start int
	End   int
}

// Extent returns the span itself. Every node embeds a Span, which makes
// Extent available on all of them.
func (s Span) Extent() Span { return s }

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Node is the interface for all tree nodes
type Node interface {
	Extent() Span
	implCabsNode()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd       BinaryOp = iota // +
	OpSub                       // -
	OpMul                       // *
	OpDiv                       // /
	OpMod                       // %
	OpLt                        // <
	OpLe                        // <=
	OpGt                        // >
	OpGe                        // >=
	OpEq                        // ==
	OpNe                        // !=
	OpCmp                       // <=>
	OpLogAnd                    // &&
	OpLogOr                     // ||
	OpBitAnd                    // &
	OpBitOr                     // |
	OpBitXor                    // ^
	OpShl                       // <<
	OpShr                       // >>
	OpAssign                    // =
	OpAddAssign                 // +=
	OpSubAssign                 // -=
	OpMulAssign                 // *=
	OpDivAssign                 // /=
	OpModAssign                 // %=
	OpAndAssign                 // &=
	OpOrAssign                  // |=
	OpXorAssign                 // ^=
	OpShlAssign                 // <<=
	OpShrAssign                 // >>=
	OpComma                     // ,
	OpDotStar                   // .*
	OpArrowStar                 // ->*
)

var binaryOpNames = []string{
	"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "<=>", "&&", "||",
	"&", "|", "^", "<<", ">>", "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"<<=", ">>=", ",", ".*", "->*",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// IsLogical reports whether op is logical AND or logical OR.
func (op BinaryOp) IsLogical() bool {
	return op == OpLogAnd || op == OpLogOr
}

// GroupKind is the bracket pair enclosing a Group.
type GroupKind int

const (
	GroupParen   GroupKind = iota // ( )
	GroupBracket                  // [ ]
	GroupBrace                    // { }
	GroupAngle                    // < > around template arguments
)

func (k GroupKind) String() string {
	switch k {
	case GroupParen:
		return "()"
	case GroupBracket:
		return "[]"
	case GroupBrace:
		return "{}"
	case GroupAngle:
		return "<>"
	}
	return "?"
}

// Ident is an identifier, possibly qualified: std::move, ::x, Foo::~Foo,
// operator&&. A name qualified through template arguments, A<T>::b, is a
// Member of a Template instead.
type Ident struct {
	Span
	Name string
}

// Literal is a number, character or string literal. Adjacent string
// literals are merged into one node.
type Literal struct {
	Span
	Text string
}

// Keyword is a keyword that is not part of an expression operator, such as
// `return`, `if` or `int`. Keywords split expressions in a sequence.
type Keyword struct {
	Span
	Name string
}

// Bad stands for a missing operand. Its span is empty and sits where the
// operand was expected.
type Bad struct {
	Span
}

// Unary is a prefix operator applied to an operand. Op is the operator
// spelling: -, !, ~, *, &, ++, sizeof, new, throw, co_await, ...
type Unary struct {
	Span
	Op      string
	Operand Node
}

// Postfix is a postfix increment or decrement.
type Postfix struct {
	Span
	Op      string
	Operand Node
}

// Binary is a binary operation. OpLoc is the span of the operator token as
// spelled in the source, so `and` is three bytes wide.
type Binary struct {
	Span
	Op    BinaryOp
	OpLoc Span
	Left  Node
	Right Node
}

// Conditional is cond ? then : else. Then is nil for the GNU `a ?: b` form.
type Conditional struct {
	Span
	Cond Node
	Then Node
	Else Node
}

// Cast is a C-style cast: (Type) operand.
type Cast struct {
	Span
	Type    Group
	Operand Node
}

// Call is a function call or functional cast. Args is the parenthesised
// argument list, or a brace list for T{...}.
type Call struct {
	Span
	Func Node
	Args Group
}

// Index is a subscript: array[index].
type Index struct {
	Span
	Array Node
	Index Group
}

// Member is a member access. Op is ".", "->" or "::" for a name
// qualified by a template-id.
type Member struct {
	Span
	Object Node
	Op     string
	Name   Node
}

// Template is a name followed by template arguments: vector<int>.
type Template struct {
	Span
	Name Node
	Args Group
}

// Lambda is a C++ lambda expression. Params is nil when the parameter list
// is omitted.
type Lambda struct {
	Span
	Captures Group
	Params   *Group
	Body     Block
}

// Group is a bracketed sequence of items.
type Group struct {
	Span
	Kind  GroupKind
	Items []Node
}

// Block is a brace-enclosed sequence of statements and declarations.
type Block struct {
	Span
	Items []Node
}

// TranslationUnit is the root of a parsed file.
type TranslationUnit struct {
	Span
	Items []Node
}

// Marker methods for interface implementation
func (Ident) implCabsNode()           {}
func (Literal) implCabsNode()         {}
func (Keyword) implCabsNode()         {}
func (Bad) implCabsNode()             {}
func (Unary) implCabsNode()           {}
func (Postfix) implCabsNode()         {}
func (Binary) implCabsNode()          {}
func (Conditional) implCabsNode()     {}
func (Cast) implCabsNode()            {}
func (Call) implCabsNode()            {}
func (Index) implCabsNode()           {}
func (Member) implCabsNode()          {}
func (Template) implCabsNode()        {}
func (Lambda) implCabsNode()          {}
func (Group) implCabsNode()           {}
func (Block) implCabsNode()           {}
func (TranslationUnit) implCabsNode() {}
