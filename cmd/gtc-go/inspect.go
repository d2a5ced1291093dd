package main

import (
	"fmt"
	"io"
	"os"

	compiler "gtc-go/packages/compiler/src"
	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/inspect"
	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/template_parser"
)

type fileFlags struct {
	configPath string
	output     string
	verbose    bool
}

func parseFileFlags(name string, args []string) (*fileFlags, string, error) {
	fs := newFlagSet(name)
	f := &fileFlags{}
	fs.StringVar(&f.configPath, "config", "", "project configuration file (JSON)")
	fs.StringVar(&f.output, "o", "", "output file; defaults to stdout")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")
	if err := parseFlags(fs, args); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		return nil, "", fmt.Errorf("expected exactly one template file, got %d", fs.NArg())
	}
	return f, fs.Arg(0), nil
}

// options reads the template and the compiler options that apply to it
func (f *fileFlags) options(file string) (string, []config.CompilerConfigOption, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read template: %w", err)
	}
	opts := []config.CompilerConfigOption{config.WithModuleName(file), config.WithLogger(newLogger(f.verbose))}
	if f.configPath != "" {
		project, err := config.ParseProjectConfig(f.configPath)
		if err != nil {
			return "", nil, err
		}
		opts = append(opts, project.Options()...)
	}
	return string(content), opts, nil
}

func (f *fileFlags) writer() (io.WriteCloser, error) {
	if f.output == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(f.output)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runPrint(args []string) error {
	f, file, err := parseFileFlags("print", args)
	if err != nil {
		return err
	}
	source, opts, err := f.options(file)
	if err != nil {
		return err
	}
	result, err := template_parser.Preprocess(source, opts...)
	if err != nil {
		return err
	}
	w, err := f.writer()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, syntax.Print(result.Root)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func runInspect(args []string) error {
	f, file, err := parseFileFlags("inspect", args)
	if err != nil {
		return err
	}
	source, opts, err := f.options(file)
	if err != nil {
		return err
	}
	tpl, err := compiler.Compile(source, opts...)
	if err != nil {
		return err
	}
	w, err := f.writer()
	if err != nil {
		return err
	}
	if err := inspect.Render(w, tpl); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
