package parser

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/lexer"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name   string `yaml:"name"`
	Lang   string `yaml:"lang"`
	Input  string `yaml:"input"`
	Expect string `yaml:"expect"`
	Errors bool   `yaml:"errors"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func parse(t *testing.T, input string, lang lexer.Lang) (cabs.TranslationUnit, []string) {
	t.Helper()
	p := New(lexer.New(input, lang))
	tu := p.ParseTranslationUnit()
	return tu, p.Errors()
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	require.NoError(t, err, "failed to read parse.yaml")

	var testFile TestFile
	require.NoError(t, yaml.Unmarshal(data, &testFile), "failed to parse parse.yaml")

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			lang := lexer.LangC
			if tc.Lang == "c++" {
				lang = lexer.LangCXX
			}
			tu, errs := parse(t, tc.Input, lang)
			if tc.Errors {
				assert.NotEmpty(t, errs)
				return
			}
			require.Empty(t, errs)
			assert.Equal(t, tc.Expect, sexprItems(tu.Items))
		})
	}
}

func TestBinarySpans(t *testing.T) {
	tu, errs := parse(t, "x = a && b;", lexer.LangC)
	require.Empty(t, errs)
	require.Len(t, tu.Items, 1)

	assign := tu.Items[0].(cabs.Binary)
	and := assign.Right.(cabs.Binary)
	assert.Equal(t, cabs.OpLogAnd, and.Op)
	assert.Equal(t, cabs.Span{Start: 4, End: 10}, and.Span)
	assert.Equal(t, cabs.Span{Start: 6, End: 8}, and.OpLoc)
	assert.Equal(t, cabs.Span{Start: 0, End: 10}, assign.Span)
}

func TestAlternativeOperatorWidth(t *testing.T) {
	tu, errs := parse(t, "x = a and b;", lexer.LangCXX)
	require.Empty(t, errs)

	and := tu.Items[0].(cabs.Binary).Right.(cabs.Binary)
	assert.Equal(t, cabs.OpLogAnd, and.Op)
	assert.Equal(t, cabs.Span{Start: 6, End: 9}, and.OpLoc)
	assert.Equal(t, cabs.Span{Start: 4, End: 11}, and.Span)
}

func TestAlternativeSpellingIsIdentInC(t *testing.T) {
	tu, errs := parse(t, "and = or;", lexer.LangC)
	require.Empty(t, errs)
	assert.Equal(t, "(= and or)", sexprItems(tu.Items))
}

func TestTranslationUnitSpan(t *testing.T) {
	src := "int x;\n/* trailing */\n"
	tu, errs := parse(t, src, lexer.LangC)
	require.Empty(t, errs)
	assert.Equal(t, 0, tu.Start)
	assert.Equal(t, len(src), tu.End)
}

func TestTypedefNames(t *testing.T) {
	src := "typedef struct { int a; } point_t, *point_p;\n" +
		"typedef int (*handler)(int);\n" +
		"x = (point_t)y && (handler)z;"
	tu, errs := parse(t, src, lexer.LangC)
	require.Empty(t, errs)
	got := sexprItems(tu.Items)
	assert.True(t, strings.HasSuffix(got, "(= x (&& (cast (() point_t) y) (cast (() handler) z)))"), got)
}

func TestErrorFormat(t *testing.T) {
	_, errs := parse(t, "int x;\nf(a;", lexer.LangC)
	require.Len(t, errs, 1)
	assert.Equal(t, "line 2, col 2: unterminated '('", errs[0])
}

func TestMismatchedBracket(t *testing.T) {
	_, errs := parse(t, "f(a];", lexer.LangC)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "expected ')', got ']'")
}

// sexprItems renders a sequence of nodes separated by spaces.
func sexprItems(items []cabs.Node) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = sexpr(item)
	}
	return strings.Join(parts, " ")
}

func sexpr(n cabs.Node) string {
	switch n := n.(type) {
	case nil:
		return "_"
	case cabs.Ident:
		return n.Name
	case cabs.Literal:
		return n.Text
	case cabs.Keyword:
		return n.Name
	case cabs.Bad:
		return "_"
	case cabs.Unary:
		return fmt.Sprintf("(%s %s)", n.Op, sexpr(n.Operand))
	case cabs.Postfix:
		return fmt.Sprintf("(post%s %s)", n.Op, sexpr(n.Operand))
	case cabs.Binary:
		return fmt.Sprintf("(%s %s %s)", n.Op, sexpr(n.Left), sexpr(n.Right))
	case cabs.Conditional:
		return fmt.Sprintf("(?: %s %s %s)", sexpr(n.Cond), sexpr(n.Then), sexpr(n.Else))
	case cabs.Cast:
		return fmt.Sprintf("(cast %s %s)", sexpr(n.Type), sexpr(n.Operand))
	case cabs.Call:
		return fmt.Sprintf("(call %s %s)", sexpr(n.Func), sexpr(n.Args))
	case cabs.Index:
		return fmt.Sprintf("(index %s %s)", sexpr(n.Array), sexpr(n.Index))
	case cabs.Member:
		return fmt.Sprintf("(%s %s %s)", n.Op, sexpr(n.Object), sexpr(n.Name))
	case cabs.Template:
		return fmt.Sprintf("(tmpl %s %s)", sexpr(n.Name), sexpr(n.Args))
	case cabs.Lambda:
		params := ""
		if n.Params != nil {
			params = " " + sexpr(*n.Params)
		}
		return fmt.Sprintf("(lambda %s%s %s)", sexpr(n.Captures), params, sexpr(n.Body))
	case cabs.Group:
		if len(n.Items) == 0 {
			return "(" + n.Kind.String() + ")"
		}
		return "(" + n.Kind.String() + " " + sexprItems(n.Items) + ")"
	case cabs.Block:
		if len(n.Items) == 0 {
			return "(block)"
		}
		return "(block " + sexprItems(n.Items) + ")"
	}
	return fmt.Sprintf("<%T>", n)
}
