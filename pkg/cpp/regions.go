package cpp

import (
	"fmt"
	"strings"

	"github.com/raymyers/cmess/pkg/lexer"
)

// Warning is a non-fatal problem found while tracking conditionals.
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
}

// InactiveRanges walks the directives of src and returns the byte ranges
// that belong to conditional groups which are not taken. Each range runs
// from the end of one directive line to the start of the next directive
// line, so the directives themselves are never included. Conditions that
// cannot be evaluated take their first branch and produce a warning.
func InactiveRanges(src string, macros *MacroTable, lang lexer.Lang) ([]lexer.Range, []Warning) {
	cp := NewConditionalProcessor(macros, lang)
	dirs := ScanDirectives(src)

	var ranges []lexer.Range
	var warnings []Warning
	warn := func(d Directive, err error) {
		if err != nil {
			warnings = append(warnings, Warning{Line: d.Line, Msg: err.Error()})
		}
	}

	for i, d := range dirs {
		switch d.Name {
		case "if":
			warn(d, cp.ProcessIf(d.Args))
		case "ifdef", "ifndef":
			cp.ProcessIfdef(firstWord(d.Args), d.Name == "ifndef")
		case "elif":
			warn(d, cp.ProcessElif(d.Args))
		case "elifdef", "elifndef":
			warn(d, cp.ProcessElif(elifdefExpr(d)))
		case "else":
			warn(d, cp.ProcessElse())
		case "endif":
			warn(d, cp.ProcessEndif())
		case "define":
			if cp.IsActive() {
				macros.DefineDirective(d.Args)
			}
		case "undef":
			if cp.IsActive() {
				macros.Undefine(firstWord(d.Args))
			}
		}

		if cp.IsActive() {
			continue
		}
		end := len(src)
		if i+1 < len(dirs) {
			end = dirs[i+1].LineStart
		}
		if d.End < end {
			ranges = append(ranges, lexer.Range{Start: d.End, End: end})
		}
	}

	if cp.Depth() > 0 {
		line := 1
		if len(dirs) > 0 {
			line = dirs[len(dirs)-1].Line
		}
		warnings = append(warnings, Warning{
			Line: line,
			Msg:  fmt.Sprintf("unterminated conditional directive, %d level(s) unclosed", cp.Depth()),
		})
	}
	return ranges, warnings
}

func elifdefExpr(d Directive) string {
	expr := "defined(" + firstWord(d.Args) + ")"
	if d.Name == "elifndef" {
		return "!" + expr
	}
	return expr
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i]
}
