package frontend

import (
	"path/filepath"
	"strings"

	"github.com/raymyers/cmess/pkg/lexer"
)

// ParseLanguage maps a -x value or config language name to a dialect.
func ParseLanguage(name string) (lexer.Lang, bool) {
	switch strings.ToLower(name) {
	case "c", "c-header", "cpp-output":
		return lexer.LangC, true
	case "c++", "cxx", "cpp", "c++-header", "c++-cpp-output":
		return lexer.LangCXX, true
	}
	return lexer.LangCXX, false
}

// stdLanguage maps a -std= value such as gnu11 or c++17 to a dialect.
func stdLanguage(std string) (lexer.Lang, bool) {
	switch {
	case std == "":
		return lexer.LangCXX, false
	case strings.Contains(std, "++"):
		return lexer.LangCXX, true
	case strings.HasPrefix(std, "c") || strings.HasPrefix(std, "gnu") || strings.HasPrefix(std, "iso9899"):
		return lexer.LangC, true
	}
	return lexer.LangCXX, false
}

// DetectLanguage decides whether path is C or C++. An explicit -x wins, then
// -std=, then the file extension. Anything else, headers included, is C++.
func DetectLanguage(path string, opts Options) lexer.Lang {
	if lang, ok := ParseLanguage(opts.Language); ok {
		return lang
	}
	if lang, ok := stdLanguage(opts.Std); ok {
		return lang
	}
	switch filepath.Ext(path) {
	case ".c", ".i":
		return lexer.LangC
	}
	return lexer.LangCXX
}
