package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gtc-go/packages/compiler/src/util"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, `gtc-go - template compiler
Usage: gtc-go <command> [flags] [args]

Commands:
  compile [flags] <path>...   Compile templates to the wire format
  print [flags] <file>        Print the normalized template
  inspect [flags] <file>      Write an HTML report of the compiled template
  help                        Show help

Run "gtc-go <command> -h" for the flags of a command.`)
}

var commands = map[string]func(args []string) error{
	"compile": runCompile,
	"print":   runPrint,
	"inspect": runInspect,
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		usage(os.Stdout)
		return
	}
	run, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "gtc-go: unknown command %q\n", name)
		if hint := util.ClosestMatch(name, commandNames()); hint != "" {
			fmt.Fprintf(os.Stderr, "Did you mean %q?\n", hint)
		}
		usage(os.Stderr)
		os.Exit(2)
	}
	if err := run(os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "%s error: %s\n", name, describeError(err))
		os.Exit(1)
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}

// newFlagSet creates the flag set of a command. Errors are returned to the
// caller so that unknown flags can be answered with a hint.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// parseFlags parses args and, for an undefined flag, suggests the closest
// defined one.
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	const undefined = "flag provided but not defined: -"
	if name, ok := strings.CutPrefix(err.Error(), undefined); ok {
		if hint := FlagHint(fs, name); hint != "" {
			return fmt.Errorf("%w (did you mean -%s?)", err, hint)
		}
	}
	return err
}

// FlagHint returns the defined flag closest to name, or ""
func FlagHint(fs *flag.FlagSet, name string) string {
	var names []string
	fs.VisitAll(func(f *flag.Flag) {
		names = append(names, f.Name)
	})
	return util.ClosestMatch(strings.TrimLeft(name, "-"), names)
}

// describeError formats a failure, quoting the source around located
// compile errors.
func describeError(err error) string {
	var perr *util.ParseError
	if errors.As(err, &perr) {
		return perr.Kind.String() + ": " + perr.ContextualMessage()
	}
	return err.Error()
}

// newLogger returns a text logger on stderr, at debug level when verbose
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
