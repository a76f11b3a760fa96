package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raymyers/cmess/pkg/cabs"
	"github.com/raymyers/cmess/pkg/config"
	"github.com/raymyers/cmess/pkg/diag"
	"github.com/raymyers/cmess/pkg/edit"
	"github.com/raymyers/cmess/pkg/emit"
	"github.com/raymyers/cmess/pkg/frontend"
	"github.com/raymyers/cmess/pkg/rewrite"
)

var version = "0.1.0"

// ErrUsage is returned when no input file is given.
var ErrUsage = errors.New("The right usage is cmess <options> <filename>")

// ErrInternal marks failures that point at a bug in cmess rather than in
// the input.
var ErrInternal = errors.New("internal error")

// flags holds the tool's own command-line flags. Everything else on the
// command line is forwarded to the front end.
type flags struct {
	configPath string
	stdout     bool
	diff       bool
	dryRun     bool
	dumpAST    bool
	check      bool
	verbose    bool
	noColor    bool
	help       bool
	version    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	f := &flags{}
	rootCmd := &cobra.Command{
		Use:   "cmess [flags] [compiler args...] <file>",
		Short: "cmess rewrites && and || in C/C++ source into AND() and OR() macro calls",
		Long: `cmess rewrites every logical && and || of a C or C++ file into
prefix macro calls, AND(a , b) and OR(a , b), and writes the result
next to the input as <base>.mess<ext>, preceded by the two #define
lines that make it compile the same way.

The last argument is the file. Arguments cmess does not know, such
as -I, -D, -U, -std= and -x, describe how to parse it.`,
		Version:            version,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, forwarded := partitionArgs(cmd.Flags(), args)
			if err := cmd.Flags().Parse(toolArgs); err != nil {
				fmt.Fprintf(errOut, "cmess: %v\n", err)
				return err
			}
			if f.help {
				return cmd.Help()
			}
			if f.version {
				fmt.Fprintf(out, "cmess version %s\n", version)
				return nil
			}
			if len(forwarded) == 0 {
				fmt.Fprintln(errOut, ErrUsage)
				return ErrUsage
			}
			filename := forwarded[len(forwarded)-1]
			return doRewrite(cmd.Context(), f, filename, forwarded[:len(forwarded)-1], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	fs := rootCmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "Read settings from this YAML file instead of ./cmess.yml")
	fs.BoolVar(&f.stdout, "stdout", false, "Write the result to standard output instead of a file")
	fs.BoolVar(&f.diff, "diff", false, "Print a unified diff of the rewrite instead of writing a file")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Parse and plan the rewrite but write nothing")
	fs.BoolVar(&f.dumpAST, "dump-ast", false, "Print the parsed tree with byte spans and exit")
	fs.BoolVar(&f.check, "check", false, "Syntax-check the written file with the system compiler")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Report what was rewritten")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored diagnostics")
	fs.BoolVarP(&f.help, "help", "h", false, "Show help")
	fs.BoolVar(&f.version, "version", false, "Show version")

	return rootCmd
}

// partitionArgs splits args into the flags registered in fs (with their
// values) and everything else, which keeps its order.
func partitionArgs(fs *pflag.FlagSet, args []string) (tool, forwarded []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		fl := lookupFlag(fs, arg)
		if fl == nil {
			forwarded = append(forwarded, arg)
			continue
		}
		tool = append(tool, arg)
		if fl.NoOptDefVal == "" && !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			tool = append(tool, args[i])
		}
	}
	return tool, forwarded
}

func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name, _, _ := strings.Cut(arg[2:], "=")
		return fs.Lookup(name)
	case len(arg) == 2 && arg[0] == '-' && arg[1] != '-':
		return fs.ShorthandLookup(arg[1:])
	}
	return nil
}

// frontendArgs returns the arguments that configure parsing: the config
// file's first, then the command line's, so the command line wins.
func frontendArgs(cfg *config.Config, cmdline []string) []string {
	var args []string
	if lang := cfg.Frontend.Language; lang != "" && lang != "auto" {
		args = append(args, "-x", lang)
	}
	args = append(args, cfg.Frontend.Args...)
	return append(args, cmdline...)
}

func doRewrite(ctx context.Context, f *flags, filename string, cmdline []string, out, errOut io.Writer) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "cmess: %v\n", err)
		return err
	}
	opts, err := frontend.ParseArgs(frontendArgs(cfg, cmdline))
	if err != nil {
		fmt.Fprintf(errOut, "cmess: %v\n", err)
		return err
	}

	diags := diag.NewPrinter(errOut)
	if f.noColor {
		diags.SetColor(false)
	}

	unit, err := frontend.Load(filename, opts)
	if unit != nil {
		for _, w := range unit.Warnings {
			diags.Warnf(filename, w.Line, w.Column, "%s", w.Msg)
		}
	}
	if err != nil {
		var parseErr *frontend.ParseError
		if errors.As(err, &parseErr) {
			for _, e := range parseErr.Errors {
				diags.Errorf(filename, e.Line, e.Column, "%s", e.Msg)
			}
			fmt.Fprintf(errOut, "cmess: %s generated, no output written\n", diags.Summary())
			return err
		}
		fmt.Fprintf(errOut, "cmess: %v\n", err)
		return err
	}

	if f.dumpAST {
		cabs.NewPrinter(out).Print(unit.Tree)
		return nil
	}

	names := rewrite.Names{And: cfg.Macros.And, Or: cfg.Macros.Or}
	set, stats := rewrite.Rewrite(unit.Tree, names)
	buf, err := edit.Apply(unit.Source, set)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInternal, err)
		fmt.Fprintf(errOut, "cmess: %v\n", err)
		return err
	}
	if f.verbose {
		fmt.Fprintf(errOut, "cmess: %s: %s, %d binary operators, %d rewritten, %d skipped\n",
			filename, unit.Lang, stats.Binary, stats.Rewritten, stats.Skipped)
	}

	header := ""
	if cfg.Output.Header {
		header = emit.Header(names)
	}
	outPath := emit.OutputPath(filename, cfg.Output.Suffix)

	switch {
	case f.diff:
		fmt.Fprint(out, emit.Diff(filename, outPath, string(unit.Source), string(buf.Bytes())))
		return nil
	case f.stdout:
		return emit.WriteTo(out, header, buf.Bytes())
	case f.dryRun:
		if f.verbose {
			fmt.Fprintf(errOut, "cmess: dry run, %s not written\n", outPath)
		}
		return nil
	}

	fmt.Fprintf(errOut, "Output to: %s\n", outPath)
	if err := emit.Write(outPath, header, buf.Bytes()); err != nil {
		fmt.Fprintf(errOut, "cmess: %v\n", err)
		return err
	}

	if f.check {
		return checkOutput(ctx, outPath, unit, opts, errOut)
	}
	return nil
}

// checkOutput compiles the written file in syntax-only mode.
func checkOutput(ctx context.Context, outPath string, unit *frontend.Unit, opts frontend.Options, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := frontend.CheckSyntax(ctx, outPath, unit.Lang, opts)
	var checkErr *frontend.CheckError
	if errors.As(err, &checkErr) {
		fmt.Fprint(errOut, checkErr.Output)
	}
	if err != nil {
		fmt.Fprintf(errOut, "cmess: %v\n", err)
		return err
	}
	fmt.Fprintf(errOut, "cmess: %s compiles\n", outPath)
	return nil
}
