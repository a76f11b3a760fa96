package frontend

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/cpp"
	"github.com/raymyers/cmess/pkg/lexer"
	"github.com/raymyers/cmess/pkg/parser"
)

// InputAccessError reports that the input file could not be read.
type InputAccessError struct {
	Path string
	Err  error
}

func (e *InputAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *InputAccessError) Unwrap() error {
	return e.Err
}

// Position is a 1-based line and column. Zero means unknown.
type Position struct {
	Line   int
	Column int
}

// Message is a front-end diagnostic.
type Message struct {
	Position
	Msg string
}

// ParseError reports that the input did not parse.
type ParseError struct {
	Path   string
	Errors []Message
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: 1 parse error", e.Path)
	}
	return fmt.Sprintf("%s: %d parse errors", e.Path, len(e.Errors))
}

// Unit is a loaded translation unit.
type Unit struct {
	Path     string
	Source   []byte
	Lang     lexer.Lang
	Tree     cabs.TranslationUnit
	Inactive []lexer.Range // bytes of conditional groups that were not parsed
	Warnings []Message
}

// Load reads path and parses it. Conditional groups that opts does not
// select are left out of the tree but stay in Source. On a parse failure
// Load returns the partial unit together with a *ParseError.
func Load(path string, opts Options) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputAccessError{Path: path, Err: err}
	}
	return Parse(path, data, opts, DetectLanguage(path, opts))
}

// Parse parses src as if it were read from path.
func Parse(path string, src []byte, opts Options, lang lexer.Lang) (*Unit, error) {
	text := string(src)
	unit := &Unit{Path: path, Source: src, Lang: lang}

	inactive, warnings := cpp.InactiveRanges(text, opts.Macros(), lang)
	unit.Inactive = inactive
	for _, w := range warnings {
		unit.Warnings = append(unit.Warnings, Message{Position: Position{Line: w.Line}, Msg: w.Msg})
	}

	l := lexer.New(text, lang)
	l.SetSkip(inactive)
	p := parser.New(l)
	unit.Tree = p.ParseTranslationUnit()

	if errs := p.Errors(); len(errs) > 0 {
		perr := &ParseError{Path: path}
		for _, e := range errs {
			perr.Errors = append(perr.Errors, parseMessage(e))
		}
		return unit, perr
	}
	return unit, nil
}

var positioned = regexp.MustCompile(`^line (\d+), col (\d+): (.*)$`)

// parseMessage splits a "line L, col C: msg" parser error.
func parseMessage(s string) Message {
	m := positioned.FindStringSubmatch(s)
	if m == nil {
		return Message{Msg: s}
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return Message{Position: Position{Line: line, Column: col}, Msg: m[3]}
}
