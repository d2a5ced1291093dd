package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	compiler "gtc-go/packages/compiler/src"
	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/wire_format"
)

type compileFlags struct {
	configPath string
	outDir     string
	idMode     string
	jobs       int
	verbose    bool
}

func runCompile(args []string) error {
	fs := newFlagSet("compile")
	var f compileFlags
	fs.StringVar(&f.configPath, "config", "", "project configuration file (JSON)")
	fs.StringVar(&f.outDir, "out", "", "output directory; defaults to writing next to each template")
	fs.StringVar(&f.idMode, "id", "sha1", "template id: sha1, ulid or none")
	fs.IntVar(&f.jobs, "j", runtime.NumCPU(), "number of templates compiled in parallel")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	idOpt, err := idOption(f.idMode)
	if err != nil {
		return err
	}
	logger := newLogger(f.verbose)

	var compiled, failed int
	for _, path := range paths {
		ok, bad, err := CompileProject(context.Background(), path, f, logger, idOpt)
		if err != nil {
			return err
		}
		compiled += ok
		failed += bad
	}
	logger.Info("compilation complete", "compiled", compiled, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d template(s) failed to compile", failed)
	}
	return nil
}

// idOption maps the -id flag to the template id generator
func idOption(mode string) (config.CompilerConfigOption, error) {
	switch mode {
	case "sha1":
		return config.WithID(compiler.DefaultID), nil
	case "ulid":
		return config.WithID(func(string) string { return ulid.Make().String() }), nil
	case "none":
		return config.WithID(func(string) string { return "" }), nil
	}
	return nil, fmt.Errorf("unknown id mode %q: expected sha1, ulid or none", mode)
}

// CompileProject compiles every template under rootPath, or rootPath itself
// when it is a file. It returns the number of compiled and failed templates;
// compile errors are logged, not returned.
func CompileProject(ctx context.Context, rootPath string, f compileFlags, logger *slog.Logger, opts ...config.CompilerConfigOption) (int, int, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return 0, 0, err
	}
	projectRoot := rootPath
	if !info.IsDir() {
		projectRoot = filepath.Dir(rootPath)
	}
	c, err := compiler.NewCompiler(projectRoot, f.configPath)
	if err != nil {
		return 0, 0, err
	}

	file, err := filepath.Abs(rootPath)
	if err != nil {
		return 0, 0, err
	}
	files := []string{file}
	if info.IsDir() {
		if files, err = c.DiscoverFiles(); err != nil {
			return 0, 0, err
		}
	}
	if len(files) == 0 {
		logger.Warn("no templates found", "root", c.Root())
		return 0, 0, nil
	}
	logger.Debug("discovered templates", "root", c.Root(), "count", len(files))

	opts = append(opts, config.WithLogger(logger))
	var compiled, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.jobs, 1))
	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tpl, err := c.CompileTemplate(file, opts...)
			if err != nil {
				failed.Add(1)
				logger.Error("compile failed", "file", file, "error", describeError(err))
				return nil
			}
			out, err := writeTemplate(c.Root(), file, f.outDir, tpl)
			if err != nil {
				return err
			}
			compiled.Add(1)
			logger.Debug("compiled", "file", file, "output", out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(compiled.Load()), int(failed.Load()), err
	}
	return int(compiled.Load()), int(failed.Load()), nil
}

// writeTemplate writes tpl as `<name>.json`, next to the template or under
// outDir mirroring the project layout. It returns the output path.
func writeTemplate(root, file, outDir string, tpl *wire_format.SerializedTemplate) (string, error) {
	data, err := wire_format.Marshal(tpl)
	if err != nil {
		return "", fmt.Errorf("error encoding %s: %w", file, err)
	}
	out := strings.TrimSuffix(file, filepath.Ext(file)) + ".json"
	if outDir != "" {
		rel, err := filepath.Rel(root, out)
		if err != nil {
			return "", err
		}
		out = filepath.Join(outDir, rel)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("error writing output file %s: %w", out, err)
	}
	return out, nil
}
