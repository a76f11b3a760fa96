package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raymyers/cmess/pkg/frontend"
	"github.com/raymyers/cmess/pkg/lexer"
)

const header = "#define AND(a, b) a && b\n#define OR(a, b) a || b\n\n"

const sample = "int f(int a, int b) {\n  return a && b;\n}\n"

// setup writes content to name in a fresh working directory and returns
// its path.
func setup(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	// cobra reads os.Args when args is nil
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s not to exist, stat error: %v", path, err)
	}
}

func TestNoArguments(t *testing.T) {
	chdirForTest(t, t.TempDir())
	out, errOut, err := execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if errOut != "The right usage is cmess <options> <filename>\n" {
		t.Errorf("unexpected stderr: %q", errOut)
	}
	if out != "" {
		t.Errorf("unexpected stdout: %q", out)
	}
}

func TestOnlyToolFlags(t *testing.T) {
	chdirForTest(t, t.TempDir())
	_, _, err := execute("--stdout", "-v")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestMissingInput(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	path := filepath.Join(dir, "missing.c")

	_, errOut, err := execute(path)
	var accessErr *frontend.InputAccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected InputAccessError, got %v", err)
	}
	if !strings.Contains(errOut, "missing.c") {
		t.Errorf("stderr should name the file: %q", errOut)
	}
	if strings.Contains(errOut, "Output to:") {
		t.Errorf("no output should be announced: %q", errOut)
	}
	assertNoFile(t, filepath.Join(dir, "missing.mess.c"))
}

func TestWritesOutputFile(t *testing.T) {
	path := setup(t, "foo.cpp", sample)
	want := filepath.Join(filepath.Dir(path), "foo.mess.cpp")

	_, errOut, err := execute(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errOut != "Output to: "+want+"\n" {
		t.Errorf("unexpected stderr: %q", errOut)
	}
	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != header+"int f(int a, int b) {\n  return AND(a , b);\n}\n" {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestStdout(t *testing.T) {
	path := setup(t, "foo.c", sample)

	out, errOut, err := execute("--stdout", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != header+"int f(int a, int b) {\n  return AND(a , b);\n}\n" {
		t.Errorf("unexpected stdout:\n%s", out)
	}
	if errOut != "" {
		t.Errorf("unexpected stderr: %q", errOut)
	}
	assertNoFile(t, filepath.Join(filepath.Dir(path), "foo.mess.c"))
}

func TestDiff(t *testing.T) {
	path := setup(t, "foo.c", sample)

	out, _, err := execute("--diff", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"--- " + path, "+++ ", "-  return a && b;", "+  return AND(a , b);"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
	assertNoFile(t, filepath.Join(filepath.Dir(path), "foo.mess.c"))
}

func TestDryRun(t *testing.T) {
	path := setup(t, "foo.c", sample)

	out, errOut, err := execute("--dry-run", "--verbose", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("unexpected stdout: %q", out)
	}
	if !strings.Contains(errOut, "1 rewritten") || !strings.Contains(errOut, "not written") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
	assertNoFile(t, filepath.Join(filepath.Dir(path), "foo.mess.c"))
}

func TestVerbose(t *testing.T) {
	path := setup(t, "v.c", "x = a + b && c || !d;\n")

	_, errOut, err := execute("-v", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "v.c: c, 4 binary operators, 2 rewritten, 0 skipped") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestDumpAST(t *testing.T) {
	path := setup(t, "foo.c", sample)

	out, _, err := execute("--dump-ast", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Binary &&") {
		t.Errorf("tree dump missing the && node:\n%s", out)
	}
	assertNoFile(t, filepath.Join(filepath.Dir(path), "foo.mess.c"))
}

func TestParseErrorWritesNothing(t *testing.T) {
	path := setup(t, "bad.c", "int f(void) {\n  return g(a && b;\n}\n")

	_, errOut, err := execute("--no-color", path)
	var parseErr *frontend.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.Contains(errOut, path+":3:1: error: expected ')', got '}'") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
	if !strings.Contains(errOut, "no output written") {
		t.Errorf("stderr should say nothing was written: %q", errOut)
	}
	assertNoFile(t, filepath.Join(filepath.Dir(path), "bad.mess.c"))
}

func TestPreprocessorWarning(t *testing.T) {
	path := setup(t, "w.cpp", "#if __has_include(<optional>)\nx = a && b;\n#endif\n")

	_, errOut, err := execute(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, path+":1: warning: ") {
		t.Errorf("expected a warning on line 1: %q", errOut)
	}
}

func TestOutputOpenFailure(t *testing.T) {
	path := setup(t, "foo.c", sample)
	// A directory in the way cannot be opened for writing, even as root.
	if err := os.Mkdir(filepath.Join(filepath.Dir(path), "foo.mess.c"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, errOut, err := execute(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(errOut, "cannot open") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestExplicitConfig(t *testing.T) {
	path := setup(t, "foo.c", "x = a || b;\n")
	cfg := filepath.Join(t.TempDir(), "custom.yml")
	if err := os.WriteFile(cfg, []byte("macros:\n  or: EITHER\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute("--config", cfg, "--stdout", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "#define AND(a, b) a && b\n#define EITHER(a, b) a || b\n\nx = EITHER(a , b);\n"
	if out != want {
		t.Errorf("unexpected stdout:\n%s", out)
	}
}

func TestMissingConfig(t *testing.T) {
	path := setup(t, "foo.c", sample)

	_, errOut, err := execute("--config=nope.yml", path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(errOut, "config file not found") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestInvalidConfig(t *testing.T) {
	path := setup(t, "foo.c", sample)
	if err := os.WriteFile("cmess.yml", []byte("macros:\n  and: \"1bad\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, errOut, err := execute(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(errOut, "macros.and") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestMissingFlagValue(t *testing.T) {
	path := setup(t, "foo.c", sample)

	_, errOut, err := execute("-D", path)
	if !errors.Is(err, frontend.ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
	if !strings.HasPrefix(errOut, "cmess: ") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute("--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "cmess version "+version+"\n" {
		t.Errorf("unexpected stdout: %q", out)
	}
}

func TestHelp(t *testing.T) {
	out, _, err := execute("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, flag := range []string{"--stdout", "--diff", "--dry-run", "--config", "--check"} {
		if !strings.Contains(out, flag) {
			t.Errorf("help missing %s:\n%s", flag, out)
		}
	}
}

func TestPartitionArgs(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	tool, forwarded := partitionArgs(cmd.Flags(), []string{
		"-I", "inc", "--config", "c.yml", "-v", "-DX", "--stdout", "-std=c++17", "--no-color", "a.cpp",
	})

	wantTool := []string{"--config", "c.yml", "-v", "--stdout", "--no-color"}
	wantForwarded := []string{"-I", "inc", "-DX", "-std=c++17", "a.cpp"}
	if strings.Join(tool, " ") != strings.Join(wantTool, " ") {
		t.Errorf("tool args = %v, want %v", tool, wantTool)
	}
	if strings.Join(forwarded, " ") != strings.Join(wantForwarded, " ") {
		t.Errorf("forwarded args = %v, want %v", forwarded, wantForwarded)
	}
}

func TestCheck(t *testing.T) {
	if _, err := frontend.FindCompiler(lexer.LangC); err != nil {
		t.Skip("no C compiler available")
	}
	path := setup(t, "ok.c", sample)

	_, errOut, err := execute("--check", path)
	if err != nil {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, errOut)
	}
	if !strings.Contains(errOut, "compiles") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}
