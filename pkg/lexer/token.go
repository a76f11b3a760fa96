package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent   // main, foo, x
	TokenInt     // 42, 0x1f, 1.5e3
	TokenString  // "hello", L"x", R"(raw)"
	TokenCharLit // 'a'

	// Keywords
	TokenInt_     // int
	TokenVoid     // void
	TokenReturn   // return
	TokenIf       // if
	TokenElse     // else
	TokenWhile    // while
	TokenDo       // do
	TokenFor      // for
	TokenBreak    // break
	TokenContinue // continue
	TokenSwitch   // switch
	TokenCase     // case
	TokenDefault  // default
	TokenGoto     // goto
	TokenTypedef  // typedef
	TokenStruct   // struct
	TokenSizeof   // sizeof
	TokenUnion    // union
	TokenEnum     // enum
	TokenStatic   // static
	TokenExtern   // extern
	TokenAuto     // auto
	TokenRegister // register
	TokenConst    // const
	TokenVolatile // volatile
	TokenRestrict // restrict
	TokenChar     // char
	TokenShort    // short
	TokenLong     // long
	TokenFloat    // float
	TokenDouble   // double
	TokenSigned   // signed
	TokenUnsigned // unsigned
	TokenInline   // inline
	TokenBool     // bool, _Bool
	TokenAlignof  // alignof, _Alignof

	// C++ keywords
	TokenClass     // class
	TokenTemplate  // template
	TokenTypename  // typename
	TokenUsing     // using
	TokenNamespace // namespace
	TokenOperator  // operator
	TokenNew       // new
	TokenDelete    // delete
	TokenThrow     // throw
	TokenTry       // try
	TokenCatch     // catch
	TokenDecltype  // decltype
	TokenCoAwait   // co_await
	TokenCoReturn  // co_return
	TokenCoYield   // co_yield

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenPercent   // %
	TokenAssign    // =
	TokenEq        // ==
	TokenNe        // !=
	TokenLt        // <
	TokenLe        // <=
	TokenGt        // >
	TokenGe        // >=
	TokenSpaceship // <=>
	TokenAnd       // &&
	TokenOr        // ||
	TokenNot       // !
	TokenAmpersand // &
	TokenPipe      // |
	TokenCaret     // ^
	TokenTilde     // ~
	TokenShl       // <<
	TokenShr       // >>
	TokenQuestion  // ?
	TokenColon     // :
	TokenScope     // ::
	TokenDotStar   // .*
	TokenArrowStar // ->*
	TokenEllipsis  // ...

	// Compound assignment operators
	TokenPlusAssign    // +=
	TokenMinusAssign   // -=
	TokenStarAssign    // *=
	TokenSlashAssign   // /=
	TokenPercentAssign // %=
	TokenAndAssign     // &=
	TokenOrAssign      // |=
	TokenXorAssign     // ^=
	TokenShlAssign     // <<=
	TokenShrAssign     // >>=

	// Increment/decrement
	TokenIncrement // ++
	TokenDecrement // --

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
	TokenDot       // .
	TokenArrow     // ->
)

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenIllegal:       "ILLEGAL",
	TokenIdent:         "IDENT",
	TokenInt:           "NUMBER",
	TokenString:        "STRING",
	TokenCharLit:       "CHAR",
	TokenInt_:          "int",
	TokenVoid:          "void",
	TokenReturn:        "return",
	TokenIf:            "if",
	TokenElse:          "else",
	TokenWhile:         "while",
	TokenDo:            "do",
	TokenFor:           "for",
	TokenBreak:         "break",
	TokenContinue:      "continue",
	TokenSwitch:        "switch",
	TokenCase:          "case",
	TokenDefault:       "default",
	TokenGoto:          "goto",
	TokenTypedef:       "typedef",
	TokenStruct:        "struct",
	TokenSizeof:        "sizeof",
	TokenUnion:         "union",
	TokenEnum:          "enum",
	TokenStatic:        "static",
	TokenExtern:        "extern",
	TokenAuto:          "auto",
	TokenRegister:      "register",
	TokenConst:         "const",
	TokenVolatile:      "volatile",
	TokenRestrict:      "restrict",
	TokenChar:          "char",
	TokenShort:         "short",
	TokenLong:          "long",
	TokenFloat:         "float",
	TokenDouble:        "double",
	TokenSigned:        "signed",
	TokenUnsigned:      "unsigned",
	TokenInline:        "inline",
	TokenBool:          "bool",
	TokenAlignof:       "alignof",
	TokenClass:         "class",
	TokenTemplate:      "template",
	TokenTypename:      "typename",
	TokenUsing:         "using",
	TokenNamespace:     "namespace",
	TokenOperator:      "operator",
	TokenNew:           "new",
	TokenDelete:        "delete",
	TokenThrow:         "throw",
	TokenTry:           "try",
	TokenCatch:         "catch",
	TokenDecltype:      "decltype",
	TokenCoAwait:       "co_await",
	TokenCoReturn:      "co_return",
	TokenCoYield:       "co_yield",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenAssign:        "=",
	TokenEq:            "==",
	TokenNe:            "!=",
	TokenLt:            "<",
	TokenLe:            "<=",
	TokenGt:            ">",
	TokenGe:            ">=",
	TokenSpaceship:     "<=>",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenAmpersand:     "&",
	TokenPipe:          "|",
	TokenCaret:         "^",
	TokenTilde:         "~",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenQuestion:      "?",
	TokenColon:         ":",
	TokenScope:         "::",
	TokenDotStar:       ".*",
	TokenArrowStar:     "->*",
	TokenEllipsis:      "...",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenAndAssign:     "&=",
	TokenOrAssign:      "|=",
	TokenXorAssign:     "^=",
	TokenShlAssign:     "<<=",
	TokenShrAssign:     ">>=",
	TokenIncrement:     "++",
	TokenDecrement:     "--",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenArrow:         "->",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token. Offset and End delimit the token's
// spelling in the original input as a half-open byte range.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
	End     int
	Line    int
	Column  int
}

// Lang selects the dialect the lexer recognises.
type Lang int

const (
	LangC Lang = iota
	LangCXX
)

func (l Lang) String() string {
	if l == LangCXX {
		return "c++"
	}
	return "c"
}

// keywords maps keyword strings shared by C and C++ to token types
var keywords = map[string]TokenType{
	"int":      TokenInt_,
	"void":     TokenVoid,
	"return":   TokenReturn,
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"do":       TokenDo,
	"for":      TokenFor,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"switch":   TokenSwitch,
	"case":     TokenCase,
	"default":  TokenDefault,
	"goto":     TokenGoto,
	"typedef":  TokenTypedef,
	"struct":   TokenStruct,
	"sizeof":   TokenSizeof,
	"union":    TokenUnion,
	"enum":     TokenEnum,
	"static":   TokenStatic,
	"extern":   TokenExtern,
	"auto":     TokenAuto,
	"register": TokenRegister,
	"const":    TokenConst,
	"volatile": TokenVolatile,
	"restrict": TokenRestrict,
	"char":     TokenChar,
	"short":    TokenShort,
	"long":     TokenLong,
	"float":    TokenFloat,
	"double":   TokenDouble,
	"signed":   TokenSigned,
	"unsigned": TokenUnsigned,
	"inline":   TokenInline,
	"_Bool":    TokenBool,
	"_Alignof": TokenAlignof,
}

// cxxKeywords are only keywords when lexing C++
var cxxKeywords = map[string]TokenType{
	"bool":      TokenBool,
	"alignof":   TokenAlignof,
	"class":     TokenClass,
	"template":  TokenTemplate,
	"typename":  TokenTypename,
	"using":     TokenUsing,
	"namespace": TokenNamespace,
	"operator":  TokenOperator,
	"new":       TokenNew,
	"delete":    TokenDelete,
	"throw":     TokenThrow,
	"try":       TokenTry,
	"catch":     TokenCatch,
	"decltype":  TokenDecltype,
	"co_await":  TokenCoAwait,
	"co_return": TokenCoReturn,
	"co_yield":  TokenCoYield,
}

// alternativeTokens are the C++ named spellings of operators. The token keeps
// its own spelling, so `and` has width 3 in the source.
var alternativeTokens = map[string]TokenType{
	"and":    TokenAnd,
	"or":     TokenOr,
	"not":    TokenNot,
	"not_eq": TokenNe,
	"bitand": TokenAmpersand,
	"bitor":  TokenPipe,
	"xor":    TokenCaret,
	"compl":  TokenTilde,
	"and_eq": TokenAndAssign,
	"or_eq":  TokenOrAssign,
	"xor_eq": TokenXorAssign,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string, lang Lang) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	if lang == LangCXX {
		if tok, ok := cxxKeywords[ident]; ok {
			return tok
		}
		if tok, ok := alternativeTokens[ident]; ok {
			return tok
		}
	}
	return TokenIdent
}

// IsAlternativeSpelling reports whether s is a C++ named operator spelling
// such as `and` or `not_eq`.
func IsAlternativeSpelling(s string) bool {
	_, ok := alternativeTokens[s]
	return ok
}

// punctuators lists every operator and delimiter spelling, grouped by length
// so the lexer can take the longest match.
var punctuators = [3]map[string]TokenType{
	{
		"+": TokenPlus, "-": TokenMinus, "*": TokenStar, "/": TokenSlash, "%": TokenPercent,
		"=": TokenAssign, "<": TokenLt, ">": TokenGt, "!": TokenNot, "&": TokenAmpersand,
		"|": TokenPipe, "^": TokenCaret, "~": TokenTilde, "?": TokenQuestion, ":": TokenColon,
		"(": TokenLParen, ")": TokenRParen, "{": TokenLBrace, "}": TokenRBrace,
		"[": TokenLBracket, "]": TokenRBracket, ";": TokenSemicolon, ",": TokenComma,
		".": TokenDot,
	},
	{
		"==": TokenEq, "!=": TokenNe, "<=": TokenLe, ">=": TokenGe, "&&": TokenAnd,
		"||": TokenOr, "<<": TokenShl, ">>": TokenShr, "::": TokenScope, ".*": TokenDotStar,
		"->": TokenArrow, "+=": TokenPlusAssign, "-=": TokenMinusAssign,
		"*=": TokenStarAssign, "/=": TokenSlashAssign, "%=": TokenPercentAssign,
		"&=": TokenAndAssign, "|=": TokenOrAssign, "^=": TokenXorAssign,
		"++": TokenIncrement, "--": TokenDecrement,
	},
	{
		"<<=": TokenShlAssign, ">>=": TokenShrAssign, "...": TokenEllipsis,
		"->*": TokenArrowStar, "<=>": TokenSpaceship,
	},
}

// IsTypeKeyword reports whether t names a builtin type or a type qualifier.
func IsTypeKeyword(t TokenType) bool {
	switch t {
	case TokenInt_, TokenVoid, TokenChar, TokenShort, TokenLong, TokenFloat,
		TokenDouble, TokenSigned, TokenUnsigned, TokenBool, TokenAuto,
		TokenConst, TokenVolatile, TokenRestrict, TokenStruct, TokenUnion,
		TokenEnum, TokenClass, TokenTypename:
		return true
	}
	return false
}
