// Package emit writes rewritten sources: the macro header, the output file
// name and the file itself.
package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/raymyers/cmess/pkg/rewrite"
)

// DefaultSuffix is inserted before the extension of the input file name.
const DefaultSuffix = ".mess"

// OutputOpenError reports that the destination file could not be created.
type OutputOpenError struct {
	Path string
	Err  error
}

func (e *OutputOpenError) Error() string {
	return fmt.Sprintf("cannot open %s for writing: %v", e.Path, e.Err)
}

func (e *OutputOpenError) Unwrap() error {
	return e.Err
}

// Header returns the macro definitions that make rewritten code compile like
// the original, followed by a blank line.
func Header(names rewrite.Names) string {
	return fmt.Sprintf("#define %s(a, b) a && b\n#define %s(a, b) a || b\n\n", names.And, names.Or)
}

// OutputPath derives the output file name from the input file name by
// inserting suffix before the last '.' of the base name, or appending it when
// the base name has none: foo.cpp -> foo.mess.cpp, foo -> foo.mess.
func OutputPath(in, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir, base := filepath.Split(in)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return dir + base[:i] + suffix + base[i:]
	}
	return in + suffix
}

// WriteTo writes header followed by body to w.
func WriteTo(w io.Writer, header string, body []byte) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

// Write creates path and writes header followed by body. If the file cannot
// be created nothing is written and an *OutputOpenError is returned.
func Write(path, header string, body []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return &OutputOpenError{Path: path, Err: err}
	}
	if err := WriteTo(f, header, body); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
