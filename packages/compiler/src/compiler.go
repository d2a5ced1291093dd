package compiler

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/scope"
	"gtc-go/packages/compiler/src/template_parser"
	"gtc-go/packages/compiler/src/util"
	"gtc-go/packages/compiler/src/wire_format"

	pipeline "gtc-go/packages/compiler/src/template/pipeline/src"
)

// Precompile compiles source and returns the JSON text of the serialized
// template.
func Precompile(source string, opts ...config.CompilerConfigOption) (string, error) {
	tpl, err := Compile(source, opts...)
	if err != nil {
		return "", err
	}
	data, err := wire_format.Marshal(tpl)
	if err != nil {
		return "", fmt.Errorf("failed to encode template: %w", err)
	}
	return string(data), nil
}

// Compile compiles source into a serialized template
func Compile(source string, opts ...config.CompilerConfigOption) (*wire_format.SerializedTemplate, error) {
	cfg := config.NewCompilerConfig(opts...)
	return CompileFile(util.NewParseSourceFile(source, cfg.ModuleName), cfg)
}

// CompileFile runs the whole pipeline over file
func CompileFile(file *util.ParseSourceFile, cfg *config.CompilerConfig) (*wire_format.SerializedTemplate, error) {
	block, err := CompileBlock(file, cfg)
	if err != nil {
		return nil, err
	}
	blockJSON, err := wire_format.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("failed to encode block: %w", err)
	}
	meta := templateMeta(cfg)
	metaJSON, err := wire_format.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meta: %w", err)
	}

	idFn := cfg.ID
	if idFn == nil {
		idFn = DefaultID
	}
	var id *string
	if value := idFn(string(metaJSON) + string(blockJSON)); value != "" {
		id = &value
	}
	cfg.Logger.Debug("compiled template",
		"module", cfg.ModuleName,
		"symbols", len(block.Symbols),
		"blocks", len(block.Blocks),
		"hasEval", block.HasEval)
	return &wire_format.SerializedTemplate{ID: id, Block: string(blockJSON), Meta: meta}, nil
}

// CompileBlock compiles file into its template block without computing the
// identifier.
func CompileBlock(file *util.ParseSourceFile, cfg *config.CompilerConfig) (*wire_format.SerializedTemplateBlock, error) {
	pre, err := template_parser.PreprocessFile(file, cfg)
	if err != nil {
		return nil, err
	}
	table, err := scope.Resolve(pre.Root)
	if err != nil {
		return nil, err
	}
	job, err := pipeline.Ingest(pre.Root, table, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.Emit(job)
}

// DefaultID is the first eight characters of the base64 SHA-1 digest of
// payload.
func DefaultID(payload string) string {
	sum := sha1.Sum([]byte(payload))
	return base64.StdEncoding.EncodeToString(sum[:])[:8]
}

// templateMeta copies the caller metadata and records the module name
// unless the caller already did.
func templateMeta(cfg *config.CompilerConfig) map[string]any {
	meta := make(map[string]any, len(cfg.Meta)+1)
	for k, v := range cfg.Meta {
		meta[k] = v
	}
	if _, ok := meta["moduleName"]; !ok && cfg.ModuleName != "" {
		meta["moduleName"] = cfg.ModuleName
	}
	return meta
}

// Compiler compiles the templates of a project directory
type Compiler struct {
	project     *config.ProjectConfig
	projectRoot string
	configPath  string
}

// NewCompiler creates a new compiler instance. An empty configPath compiles
// every `.hbs` file below projectRoot with the default options.
func NewCompiler(projectRoot, configPath string) (*Compiler, error) {
	project := &config.ProjectConfig{Include: []string{"**/*.hbs"}}
	if configPath != "" {
		var err error
		project, err = config.ParseProjectConfig(configPath)
		if err != nil {
			return nil, err
		}
		configPath, _ = filepath.Abs(configPath)
		if projectRoot == "" {
			projectRoot = filepath.Dir(configPath)
		}
	}
	if projectRoot == "" {
		projectRoot = "."
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	return &Compiler{project: project, projectRoot: absRoot, configPath: configPath}, nil
}

// Root returns the absolute project directory
func (c *Compiler) Root() string {
	return c.projectRoot
}

// Options returns the compiler options of the project configuration
func (c *Compiler) Options() []config.CompilerConfigOption {
	return c.project.Options()
}

// DiscoverFiles finds the templates selected by the project configuration,
// sorted by path.
func (c *Compiler) DiscoverFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != c.projectRoot && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(c.projectRoot, path)
		if err != nil {
			return err
		}
		if c.project.Matches(filepath.ToSlash(rel)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// CompileTemplate compiles a single template file. The module name defaults
// to the path relative to the project root.
func (c *Compiler) CompileTemplate(path string, opts ...config.CompilerConfigOption) (*wire_format.SerializedTemplate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	moduleName := path
	if rel, err := filepath.Rel(c.projectRoot, path); err == nil {
		moduleName = filepath.ToSlash(rel)
	}
	all := append([]config.CompilerConfigOption{config.WithModuleName(moduleName)}, c.project.Options()...)
	cfg := config.NewCompilerConfig(append(all, opts...)...)
	return CompileFile(util.NewParseSourceFile(string(content), moduleName), cfg)
}
