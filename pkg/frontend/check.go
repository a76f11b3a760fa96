package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/raymyers/cmess/pkg/lexer"
)

// ErrNoCompiler is returned when no system compiler can be found.
var ErrNoCompiler = errors.New("no C/C++ compiler found")

// CheckError reports that the compiler rejected a file.
type CheckError struct {
	Compiler string
	Output   string // compiler diagnostics
	Err      error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s rejected the output: %v", filepath.Base(e.Compiler), e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// compilers lists the commands tried, in order, for each dialect.
var compilers = map[lexer.Lang][]string{
	lexer.LangC:   {"cc", "gcc", "clang"},
	lexer.LangCXX: {"c++", "g++", "clang++"},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// FindCompiler returns the first compiler for lang found on PATH.
func FindCompiler(lang lexer.Lang) (string, error) {
	for _, name := range compilers[lang] {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoCompiler
}

// CheckArgs returns the compiler arguments used to syntax-check path.
func CheckArgs(path string, lang lexer.Lang, opts Options) []string {
	x := "c++"
	if lang == lexer.LangC {
		x = "c"
	}
	args := []string{"-fsyntax-only", "-x", x}
	args = append(args, opts.Args()...)
	return append(args, path)
}

// CheckSyntax runs the system compiler in syntax-only mode on path with the
// forwarded options.
func CheckSyntax(ctx context.Context, path string, lang lexer.Lang, opts Options) error {
	compiler, err := FindCompiler(lang)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, compiler, CheckArgs(path, lang, opts)...)
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &CheckError{Compiler: compiler, Output: stderr.String(), Err: err}
	}
	return nil
}
