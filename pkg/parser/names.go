package parser

import (
	"strings"

	"github.com/raymyers/cmess/pkg/lexer"
)

// Type names every C translation unit can assume from the standard headers.
var cTypeNames = []string{
	"size_t", "ssize_t", "ptrdiff_t", "intptr_t", "uintptr_t", "intmax_t", "uintmax_t",
	"int8_t", "int16_t", "int32_t", "int64_t", "uint8_t", "uint16_t", "uint32_t", "uint64_t",
	"off_t", "pid_t", "wchar_t", "FILE", "va_list", "bool",
}

// Extra type names for C++, mostly from namespace std.
var cxxTypeNames = []string{
	"string", "wstring", "string_view", "nullptr_t", "char8_t", "char16_t", "char32_t",
	"istream", "ostream", "iostream", "exception", "byte",
}

// Class templates from the C++ standard library.
var cxxTypeTemplates = []string{
	"vector", "map", "set", "multimap", "multiset", "unordered_map", "unordered_set",
	"list", "deque", "array", "pair", "tuple", "optional", "variant", "unique_ptr",
	"shared_ptr", "weak_ptr", "function", "basic_string", "span", "initializer_list",
	"atomic", "hash", "less", "greater", "numeric_limits", "enable_if", "enable_if_t",
	"conditional", "conditional_t", "decay_t", "remove_reference_t", "remove_cv_t",
	"remove_cvref_t", "add_const_t", "underlying_type_t", "invoke_result_t", "allocator",
	"stack", "queue", "priority_queue", "bitset", "reference_wrapper", "iterator_traits",
}

// Function and variable templates from the C++ standard library, plus the
// named casts.
var cxxValueTemplates = []string{
	"static_cast", "dynamic_cast", "const_cast", "reinterpret_cast", "bit_cast",
	"make_unique", "make_shared", "forward", "get", "declval", "any_cast", "holds_alternative",
	"is_same_v", "is_base_of_v", "is_convertible_v", "is_integral_v", "is_pointer_v",
	"is_floating_point_v", "is_enum_v", "is_trivially_copyable_v", "is_constructible_v",
	"duration_cast", "time_point_cast", "visit", "make_pair", "make_tuple",
}

// specifierWords are declaration specifiers that lex as identifiers.
var specifierWords = map[string]bool{
	"explicit": true, "virtual": true, "constexpr": true, "consteval": true,
	"constinit": true, "friend": true, "mutable": true, "thread_local": true,
	"_Thread_local": true, "_Noreturn": true, "__inline": true, "__inline__": true,
	"__forceinline": true, "__extension__": true, "__restrict": true, "__restrict__": true,
	"__const": true, "__volatile__": true, "wchar_t": true,
}

func (p *Parser) seedTypeNames() {
	for _, name := range cTypeNames {
		p.typedefs[name] = true
	}
	if p.lang != lexer.LangCXX {
		return
	}
	for _, name := range cxxTypeNames {
		p.typedefs[name] = true
	}
	for _, name := range cxxTypeTemplates {
		p.typedefs[name] = true
		p.templates[name] = true
	}
	for _, name := range cxxValueTemplates {
		p.templates[name] = true
	}
}

// collectTypeNames scans the whole token stream once for names the file
// declares as types or templates, so that uses before the declaration in a
// class body are recognised too.
func (p *Parser) collectTypeNames() {
	toks := p.toks
	for i := 0; i < len(toks); i++ {
		switch toks[i].Type {
		case lexer.TokenStruct, lexer.TokenClass, lexer.TokenUnion, lexer.TokenEnum, lexer.TokenTypename:
			if p.lang != lexer.LangCXX {
				// C tags live in their own namespace; `struct node *node` is common
				continue
			}
			j := i + 1
			if j < len(toks) && (toks[j].Type == lexer.TokenClass || toks[j].Type == lexer.TokenStruct) {
				j++
			}
			if j < len(toks) && toks[j].Type == lexer.TokenIdent {
				p.typedefs[toks[j].Literal] = true
			}
		case lexer.TokenTypedef:
			p.collectTypedef(i + 1)
		case lexer.TokenUsing:
			if i+2 < len(toks) && toks[i+1].Type == lexer.TokenIdent && toks[i+2].Type == lexer.TokenAssign {
				p.typedefs[toks[i+1].Literal] = true
			}
		case lexer.TokenTemplate:
			if i+1 < len(toks) && toks[i+1].Type == lexer.TokenLt {
				p.collectTemplate(i + 1)
			}
		}
	}
}

// collectTypedef records the declarators of a typedef starting at toks[i].
// The declared name is the last identifier at the outer level before each
// ',' or ';', or the name inside a (*name) function pointer declarator.
func (p *Parser) collectTypedef(i int) {
	toks := p.toks
	depth := 0
	last, fnPtr := "", ""
	for ; i < len(toks); i++ {
		t := toks[i]
		switch t.Type {
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
			if depth == 0 && t.Type == lexer.TokenLParen && i+2 < len(toks) &&
				(toks[i+1].Type == lexer.TokenStar || toks[i+1].Type == lexer.TokenCaret) &&
				toks[i+2].Type == lexer.TokenIdent {
				fnPtr = toks[i+2].Literal
			}
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			depth--
			if depth < 0 {
				return
			}
		case lexer.TokenIdent:
			if depth == 0 {
				last = t.Literal
			}
		case lexer.TokenComma, lexer.TokenSemicolon:
			if depth != 0 {
				continue
			}
			if fnPtr != "" {
				p.typedefs[fnPtr] = true
			} else if last != "" {
				p.typedefs[last] = true
			}
			last, fnPtr = "", ""
			if t.Type == lexer.TokenSemicolon {
				return
			}
		case lexer.TokenEOF:
			return
		}
	}
}

// collectTemplate records the name declared by the template whose parameter
// list opens at toks[i].
func (p *Parser) collectTemplate(i int) {
	toks := p.toks
	angle := 0
	for ; i < len(toks); i++ {
		switch toks[i].Type {
		case lexer.TokenLt:
			angle++
		case lexer.TokenGt:
			angle--
		case lexer.TokenShr:
			angle -= 2
		case lexer.TokenSemicolon, lexer.TokenLBrace, lexer.TokenEOF:
			return
		}
		if angle <= 0 {
			break
		}
	}

	last := ""
	for i++; i < len(toks); i++ {
		t := toks[i]
		switch t.Type {
		case lexer.TokenStruct, lexer.TokenClass, lexer.TokenUnion, lexer.TokenUsing:
			if i+1 < len(toks) && toks[i+1].Type == lexer.TokenIdent {
				p.templates[toks[i+1].Literal] = true
				p.typedefs[toks[i+1].Literal] = true
			}
			return
		case lexer.TokenIdent:
			last = t.Literal
		case lexer.TokenLParen:
			if last != "" {
				p.templates[last] = true
			}
			return
		case lexer.TokenLBrace, lexer.TokenSemicolon, lexer.TokenAssign, lexer.TokenEOF:
			return
		}
	}
}

// lastComponent strips any qualification from a name.
func lastComponent(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func (p *Parser) isTypeName(name string) bool {
	return p.typedefs[lastComponent(name)]
}

func (p *Parser) isTemplateName(name string) bool {
	return p.templates[lastComponent(name)]
}
