package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"full position", Diagnostic{File: "a.c", Line: 3, Column: 7, Severity: Error, Msg: "unterminated '('"},
			"a.c:3:7: error: unterminated '('\n"},
		{"line only", Diagnostic{File: "a.c", Line: 3, Severity: Warning, Msg: "unterminated conditional"},
			"a.c:3: warning: unterminated conditional\n"},
		{"no position", Diagnostic{File: "a.c", Severity: Note, Msg: "see here"},
			"a.c: note: see here\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).Print(tt.d)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinterCounts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	assert.Equal(t, "", p.Summary())

	p.Warnf("a.c", 1, 0, "w")
	assert.Equal(t, "1 warning", p.Summary())

	p.Errorf("a.c", 2, 3, "bad %s", "thing")
	p.Errorf("a.c", 4, 1, "worse")
	assert.Equal(t, 2, p.Count(Error))
	assert.Equal(t, 1, p.Count(Warning))
	assert.Equal(t, "2 errors, 1 warning", p.Summary())
	assert.Contains(t, buf.String(), "a.c:2:3: error: bad thing\n")
}

func TestColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	assert.False(t, IsTerminal(&buf))

	p.SetColor(true)
	p.Errorf("a.c", 1, 1, "x")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "error:")

	buf.Reset()
	p.SetColor(false)
	p.Errorf("a.c", 1, 1, "x")
	assert.Equal(t, "a.c:1:1: error: x\n", buf.String())
}

func TestColorIsPerPrinter(t *testing.T) {
	var colored, plain bytes.Buffer
	a := NewPrinter(&colored)
	a.SetColor(true)
	b := NewPrinter(&plain)

	a.Errorf("a.c", 1, 1, "x")
	b.Errorf("b.c", 1, 1, "y")
	a.Warnf("a.c", 2, 0, "z")
	b.Warnf("b.c", 2, 0, "w")

	assert.Contains(t, colored.String(), "\x1b[")
	assert.Equal(t, "b.c:1:1: error: y\nb.c:2: warning: w\n", plain.String())
	assert.NotSame(t, a.styles.label[Error], b.styles.label[Error])
}
