// Package diag prints compiler-style diagnostics:
//
//	file:line:col: error: message
//
// Severity labels are colored when the destination is a terminal.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	}
	return "unknown"
}

// Diagnostic is one message about a source position. Line or Column may be
// 0 when the position is unknown.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Msg      string
}

// styles holds one printer's colors. They always emit escapes, so a colored
// printer stays colored when its writer is not a terminal.
type styles struct {
	pos   *color.Color
	label [3]*color.Color // indexed by Severity
}

func newStyles() styles {
	s := styles{
		pos: color.New(color.Bold),
		label: [3]*color.Color{
			Error:   color.New(color.FgRed, color.Bold),
			Warning: color.New(color.FgMagenta, color.Bold),
			Note:    color.New(color.FgCyan, color.Bold),
		},
	}
	s.pos.EnableColor()
	for _, c := range s.label {
		c.EnableColor()
	}
	return s
}

// Printer writes diagnostics to w.
type Printer struct {
	w      io.Writer
	color  bool
	styles styles
	counts [3]int
}

// NewPrinter returns a printer that colors output when w is a terminal and
// NO_COLOR is not set.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: !color.NoColor && IsTerminal(w), styles: newStyles()}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor forces color on or off.
func (p *Printer) SetColor(on bool) {
	p.color = on
}

// Print writes d.
func (p *Printer) Print(d Diagnostic) {
	p.counts[d.Severity]++
	pos := d.File
	if d.Line > 0 {
		pos = fmt.Sprintf("%s:%d", pos, d.Line)
		if d.Column > 0 {
			pos = fmt.Sprintf("%s:%d", pos, d.Column)
		}
	}
	fmt.Fprintf(p.w, "%s: %s %s\n", p.paint(p.styles.pos, pos), p.paint(p.label(d.Severity), d.Severity.String()+":"), d.Msg)
}

// Errorf prints an error at file:line:col.
func (p *Printer) Errorf(file string, line, col int, format string, args ...any) {
	p.Print(Diagnostic{File: file, Line: line, Column: col, Severity: Error, Msg: fmt.Sprintf(format, args...)})
}

// Warnf prints a warning at file:line:col.
func (p *Printer) Warnf(file string, line, col int, format string, args ...any) {
	p.Print(Diagnostic{File: file, Line: line, Column: col, Severity: Warning, Msg: fmt.Sprintf(format, args...)})
}

// Count returns how many diagnostics of severity s were printed.
func (p *Printer) Count(s Severity) int {
	return p.counts[s]
}

// Summary returns a line such as "2 errors, 1 warning", or "" when nothing
// was printed.
func (p *Printer) Summary() string {
	e, w := p.counts[Error], p.counts[Warning]
	switch {
	case e > 0 && w > 0:
		return fmt.Sprintf("%s, %s", plural(e, "error"), plural(w, "warning"))
	case e > 0:
		return plural(e, "error")
	case w > 0:
		return plural(w, "warning")
	}
	return ""
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (p *Printer) label(s Severity) *color.Color {
	if s < Error || s > Note {
		s = Error
	}
	return p.styles.label[s]
}

func (p *Printer) paint(c *color.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Sprint(s)
}
