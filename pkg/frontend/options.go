// Package frontend turns a source file into a tree the rewriter can walk:
// it reads the file, works out its language, hides inactive conditional
// groups and runs the parser. It also knows how to hand the same compiler
// arguments to the system compiler.
package frontend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raymyers/cmess/pkg/cpp"
)

// ErrMissingValue is returned when a flag that takes a value ends the
// argument list.
var ErrMissingValue = errors.New("missing value for flag")

// Options configures parsing. It is built once by ParseArgs and not changed
// afterwards.
type Options struct {
	IncludePaths []string // -I directories
	SystemPaths  []string // -isystem directories
	Defines      []string // -D macros, NAME or NAME=VALUE
	Undefines    []string // -U macros
	Std          string   // -std= value
	Language     string   // -x value
	Target       string   // -target / --target= value
	Extra        []string // everything else, kept verbatim
}

// ParseArgs builds Options from compiler-style arguments. Both the joined
// (-Idir) and separate (-I dir) spellings are accepted.
func ParseArgs(args []string) (Options, error) {
	var opts Options
	for i := 0; i < len(args); i++ {
		arg := args[i]

		// value returns the flag's value, joined or from the next argument
		value := func(flag string) (string, error) {
			if v := strings.TrimPrefix(arg, flag); v != "" {
				return v, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%w %s", ErrMissingValue, flag)
			}
			i++
			return args[i], nil
		}

		var err error
		var v string
		switch {
		case strings.HasPrefix(arg, "-isystem"):
			v, err = value("-isystem")
			opts.SystemPaths = append(opts.SystemPaths, v)
		case strings.HasPrefix(arg, "-I"):
			v, err = value("-I")
			opts.IncludePaths = append(opts.IncludePaths, v)
		case strings.HasPrefix(arg, "-D"):
			v, err = value("-D")
			opts.Defines = append(opts.Defines, v)
		case strings.HasPrefix(arg, "-U"):
			v, err = value("-U")
			opts.Undefines = append(opts.Undefines, v)
		case strings.HasPrefix(arg, "-std="):
			opts.Std = strings.TrimPrefix(arg, "-std=")
		case strings.HasPrefix(arg, "-x"):
			opts.Language, err = value("-x")
		case arg == "-target" || arg == "--target":
			opts.Target, err = value(arg)
		case strings.HasPrefix(arg, "--target="):
			opts.Target = strings.TrimPrefix(arg, "--target=")
		default:
			opts.Extra = append(opts.Extra, arg)
		}
		if err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

// Macros returns a macro table holding the -D definitions with the -U
// names removed, in command-line order.
func (o Options) Macros() *cpp.MacroTable {
	mt := cpp.NewMacroTable()
	for _, d := range o.Defines {
		name, value, _ := strings.Cut(d, "=")
		mt.Define(name, value)
	}
	for _, name := range o.Undefines {
		mt.Undefine(name)
	}
	return mt
}

// Args returns the options as compiler arguments.
func (o Options) Args() []string {
	var args []string
	for _, path := range o.IncludePaths {
		args = append(args, "-I"+path)
	}
	for _, path := range o.SystemPaths {
		args = append(args, "-isystem", path)
	}
	for _, d := range o.Defines {
		args = append(args, "-D"+d)
	}
	for _, name := range o.Undefines {
		args = append(args, "-U"+name)
	}
	if o.Std != "" {
		args = append(args, "-std="+o.Std)
	}
	if o.Target != "" {
		args = append(args, "--target="+o.Target)
	}
	return append(args, o.Extra...)
}
