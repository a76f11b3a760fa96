package emit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymyers/cmess/pkg/rewrite"
)

func TestHeader(t *testing.T) {
	assert.Equal(t,
		"#define AND(a, b) a && b\n#define OR(a, b) a || b\n\n",
		Header(rewrite.DefaultNames()))
	assert.Equal(t,
		"#define L_AND(a, b) a && b\n#define L_OR(a, b) a || b\n\n",
		Header(rewrite.Names{And: "L_AND", Or: "L_OR"}))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, suffix, want string
	}{
		{"foo.cpp", "", "foo.mess.cpp"},
		{"foo.c", ".mess", "foo.mess.c"},
		{"foo", "", "foo.mess"},
		{"src/foo.cc", "", "src/foo.mess.cc"},
		{"dir.v2/foo", "", "dir.v2/foo.mess"},
		{"a/b.tar.gz", "", "a/b.tar.mess.gz"},
		{"foo.c", ".out", "foo.out.c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(tt.in, tt.suffix))
		})
	}
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, "H\n", []byte("body")))
	assert.Equal(t, "H\nbody", buf.String())
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.mess.c")
	require.NoError(t, Write(path, Header(rewrite.DefaultNames()), []byte("x = AND(a , b);\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#define AND(a, b) a && b\n#define OR(a, b) a || b\n\nx = AND(a , b);\n", string(got))
}

func TestWriteOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "foo.mess.c")
	err := Write(path, "H\n", []byte("body"))
	require.Error(t, err)

	var openErr *OutputOpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, path, openErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoFileExists(t, path)
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff("a.c", "a.mess.c", "x;\n", "x;\n"))

	d := Diff("a.c", "a.mess.c", "int y;\nx = a && b;\n", "int y;\nx = AND(a , b);\n")
	assert.Contains(t, d, "--- a.c")
	assert.Contains(t, d, "+++ a.mess.c")
	assert.Contains(t, d, "-x = a && b;")
	assert.Contains(t, d, "+x = AND(a , b);")
}
