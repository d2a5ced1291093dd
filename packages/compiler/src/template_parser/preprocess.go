package template_parser

import (
	"fmt"

	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/expression_parser"
	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
)

// PreprocessResult is a normalized document tree together with the recoverable
// diagnostics raised while building it
type PreprocessResult struct {
	Root     *syntax.Program
	Warnings []*util.ParseError
}

// Preprocess parses source into a normalized document tree with the plugins
// of the configuration applied.
func Preprocess(source string, opts ...config.CompilerConfigOption) (*PreprocessResult, error) {
	cfg := config.NewCompilerConfig(opts...)
	return PreprocessFile(util.NewParseSourceFile(source, cfg.ModuleName), cfg)
}

// PreprocessFile runs the front half of the pipeline over file.
func PreprocessFile(file *util.ParseSourceFile, cfg *config.CompilerConfig) (*PreprocessResult, error) {
	program, err := expression_parser.ParseFile(file, expression_parser.ParseOptions{MaxDepth: cfg.MaxDepth})
	if err != nil {
		return nil, err
	}
	unified, err := Unify(program, file, UnifyOptions{
		Codemod:  cfg.Mode == config.ModeCodemod,
		MaxDepth: cfg.MaxDepth,
	})
	if err != nil {
		return nil, err
	}
	for _, warning := range unified.Warnings {
		cfg.Logger.Warn(warning.Msg, "kind", warning.Kind.String(), "location", warning.Location().String())
	}
	if cfg.Mode != config.ModeCodemod {
		NormalizeWhitespace(unified.Root, cfg.IgnoreStandalone)
	}
	if err := RunPlugins(unified.Root, cfg); err != nil {
		return nil, err
	}
	return &PreprocessResult{Root: unified.Root, Warnings: unified.Warnings}, nil
}

// RunPlugins builds each configured plugin and traverses root with its
// visitor, in order.
func RunPlugins(root *syntax.Program, cfg *config.CompilerConfig) error {
	env := syntax.ASTPluginEnvironment{
		Meta:       cfg.Meta,
		ModuleName: cfg.ModuleName,
		Syntax:     syntax.DefaultSyntax(),
	}
	for _, build := range cfg.Plugins {
		plugin := build(env)
		cfg.Logger.Debug("running plugin", "name", plugin.Name)
		if err := syntax.Traverse(root, plugin.Visitor); err != nil {
			return fmt.Errorf("plugin %s: %w", plugin.Name, err)
		}
	}
	return nil
}
