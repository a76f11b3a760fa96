package frontend

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/lexer"
)

func TestParseArgs(t *testing.T) {
	opts, err := ParseArgs([]string{
		"-Iinclude", "-I", "third_party",
		"-isystem", "/opt/sys", "-isystem/opt/sys2",
		"-DDEBUG", "-D", "LEVEL=3", "-UNDEBUG",
		"-std=c++17", "-x", "c++", "--target=x86_64-linux-gnu",
		"-Wall", "-O2",
	})
	require.NoError(t, err)

	assert.Equal(t, Options{
		IncludePaths: []string{"include", "third_party"},
		SystemPaths:  []string{"/opt/sys", "/opt/sys2"},
		Defines:      []string{"DEBUG", "LEVEL=3"},
		Undefines:    []string{"NDEBUG"},
		Std:          "c++17",
		Language:     "c++",
		Target:       "x86_64-linux-gnu",
		Extra:        []string{"-Wall", "-O2"},
	}, opts)
}

func TestParseArgsTarget(t *testing.T) {
	opts, err := ParseArgs([]string{"-target", "aarch64-apple-darwin", "-xc"})
	require.NoError(t, err)
	assert.Equal(t, "aarch64-apple-darwin", opts.Target)
	assert.Equal(t, "c", opts.Language)
}

func TestParseArgsMissingValue(t *testing.T) {
	for _, args := range [][]string{{"-I"}, {"-D"}, {"-x"}, {"-target"}, {"-isystem"}} {
		_, err := ParseArgs(args)
		assert.ErrorIs(t, err, ErrMissingValue, "args %v", args)
	}
}

func TestOptionsArgsRoundTrip(t *testing.T) {
	in := []string{"-Iinc", "-isystem", "/sys", "-DA=1", "-UB", "-std=c11", "--target=arm", "-w"}
	opts, err := ParseArgs(in)
	require.NoError(t, err)
	assert.Equal(t, in, opts.Args())

	again, err := ParseArgs(opts.Args())
	require.NoError(t, err)
	assert.Equal(t, opts, again)
}

func TestOptionsMacros(t *testing.T) {
	opts, err := ParseArgs([]string{"-DA", "-DB=2", "-DC", "-UC"})
	require.NoError(t, err)
	mt := opts.Macros()
	assert.Equal(t, "1", mt.Lookup("A").Body)
	assert.Equal(t, "2", mt.Lookup("B").Body)
	assert.False(t, mt.IsDefined("C"))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		args []string
		want lexer.Lang
	}{
		{"a.c", nil, lexer.LangC},
		{"a.i", nil, lexer.LangC},
		{"a.cpp", nil, lexer.LangCXX},
		{"a.cc", nil, lexer.LangCXX},
		{"a.h", nil, lexer.LangCXX},
		{"noext", nil, lexer.LangCXX},
		{"a.cpp", []string{"-x", "c"}, lexer.LangC},
		{"a.c", []string{"-x", "c++"}, lexer.LangCXX},
		{"a.h", []string{"-std=gnu11"}, lexer.LangC},
		{"a.c", []string{"-std=c++20"}, lexer.LangCXX},
		{"a.c", []string{"-x", "c++", "-std=c99"}, lexer.LangCXX},
	}
	for _, tt := range tests {
		opts, err := ParseArgs(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, DetectLanguage(tt.path, opts), "%s %v", tt.path, tt.args)
	}
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func countLogical(tree cabs.Node) int {
	n := 0
	cabs.Walk(tree, func(node cabs.Node) cabs.Action {
		if b, ok := node.(cabs.Binary); ok && b.Op.IsLogical() {
			n++
		}
		return cabs.Continue
	})
	return n
}

func TestLoad(t *testing.T) {
	src := "int main(void) {\n  return a && b;\n}\n"
	path := writeSource(t, "main.c", src)

	unit, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, unit.Path)
	assert.Equal(t, src, string(unit.Source))
	assert.Equal(t, lexer.LangC, unit.Lang)
	assert.Equal(t, 1, countLogical(unit.Tree))
	assert.Empty(t, unit.Warnings)
}

func TestLoadSkipsInactiveGroups(t *testing.T) {
	src := "#ifdef USE_OLD\nx = a && ;\n#else\nx = a || b;\n#endif\n"
	path := writeSource(t, "cond.c", src)

	unit, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, unit.Inactive, 1)
	assert.Equal(t, "x = a && ;\n", src[unit.Inactive[0].Start:unit.Inactive[0].End])
	assert.Equal(t, 1, countLogical(unit.Tree))

	opts, err := ParseArgs([]string{"-DUSE_OLD"})
	require.NoError(t, err)
	unit, err = Load(path, opts)
	require.NoError(t, err)
	assert.Equal(t, "x = a || b;\n", src[unit.Inactive[0].Start:unit.Inactive[0].End])
}

func TestLoadWarnings(t *testing.T) {
	path := writeSource(t, "warn.cpp", "#if __has_include(<optional>)\nx = a && b;\n#endif\n#if 1\n")
	unit, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, unit.Warnings, 2)
	assert.Equal(t, 1, unit.Warnings[0].Line)
	assert.Equal(t, 4, unit.Warnings[1].Line)
	assert.Equal(t, 1, countLogical(unit.Tree))
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.c")
	_, err := Load(path, Options{})

	var accessErr *InputAccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, path, accessErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadParseError(t *testing.T) {
	path := writeSource(t, "bad.c", "int f(void) {\n  return g(a && b;\n}\n")
	unit, err := Load(path, Options{})
	require.NotNil(t, unit)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.NotEmpty(t, parseErr.Errors)
	first := parseErr.Errors[0]
	assert.Equal(t, Position{Line: 3, Column: 1}, first.Position)
	assert.Equal(t, "expected ')', got '}'", first.Msg)
	assert.Contains(t, err.Error(), "bad.c: ")
}

func TestParseMessage(t *testing.T) {
	assert.Equal(t, Message{Position: Position{Line: 3, Column: 14}, Msg: "unterminated '('"},
		parseMessage("line 3, col 14: unterminated '('"))
	assert.Equal(t, Message{Msg: "odd"}, parseMessage("odd"))
}

func TestCheckArgs(t *testing.T) {
	opts, err := ParseArgs([]string{"-Iinc", "-DX"})
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"-fsyntax-only", "-x", "c", "-Iinc", "-DX", "a.mess.c"},
		CheckArgs("a.mess.c", lexer.LangC, opts))
	assert.Equal(t, "c++", CheckArgs("a.mess.cpp", lexer.LangCXX, Options{})[2])
}

func TestFindCompiler(t *testing.T) {
	saved := lookPath
	t.Cleanup(func() { lookPath = saved })

	lookPath = func(name string) (string, error) {
		if name == "clang" {
			return "/usr/bin/clang", nil
		}
		return "", exec.ErrNotFound
	}
	path, err := FindCompiler(lexer.LangC)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/clang", path)

	_, err = FindCompiler(lexer.LangCXX)
	assert.ErrorIs(t, err, ErrNoCompiler)
	assert.ErrorIs(t, CheckSyntax(context.Background(), "a.cpp", lexer.LangCXX, Options{}), ErrNoCompiler)
}

func TestCheckSyntax(t *testing.T) {
	if _, err := FindCompiler(lexer.LangC); err != nil {
		t.Skip("no C compiler available")
	}

	good := writeSource(t, "good.c", "#define AND(a, b) a && b\nint f(int a, int b) { return AND(a , b); }\n")
	assert.NoError(t, CheckSyntax(context.Background(), good, lexer.LangC, Options{}))

	bad := writeSource(t, "bad.c", "int f(void) { return ; ; }}\n")
	err := CheckSyntax(context.Background(), bad, lexer.LangC, Options{})
	var checkErr *CheckError
	require.True(t, errors.As(err, &checkErr))
	assert.NotEmpty(t, checkErr.Output)
}
