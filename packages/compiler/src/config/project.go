package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectConfig is the on-disk configuration read by the command line tool.
type ProjectConfig struct {
	CompilerOptions ProjectCompilerOptions `json:"compilerOptions"`
	Include         []string               `json:"include"`
	Exclude         []string               `json:"exclude"`
}

// ProjectCompilerOptions mirrors the serializable subset of CompilerConfig.
type ProjectCompilerOptions struct {
	ModuleName       string         `json:"moduleName"`
	Meta             map[string]any `json:"meta"`
	IgnoreStandalone bool           `json:"ignoreStandalone"`
	Codemod          bool           `json:"codemod"`
	Dasherize        bool           `json:"dasherize"`
	MaxDepth         int            `json:"maxDepth"`
}

// ParseProjectConfig reads and parses a project configuration file
func ParseProjectConfig(path string) (*ProjectConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	var config ProjectConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}
	if len(config.Include) == 0 {
		config.Include = []string{"**/*.hbs"}
	}

	return &config, nil
}

// Options converts the file settings into compiler options.
func (p *ProjectConfig) Options() []CompilerConfigOption {
	o := p.CompilerOptions
	opts := []CompilerConfigOption{
		WithIgnoreStandalone(o.IgnoreStandalone),
		WithMaxDepth(o.MaxDepth),
	}
	if o.ModuleName != "" {
		opts = append(opts, WithModuleName(o.ModuleName))
	}
	if o.Meta != nil {
		opts = append(opts, WithMeta(o.Meta))
	}
	if o.Codemod {
		opts = append(opts, WithMode(ModeCodemod))
	}
	if o.Dasherize {
		opts = append(opts, WithCustomizeComponentName(DasherizeComponentName))
	}
	return opts
}

// Matches reports whether rel, a slash-separated path relative to the
// project root, is selected by Include and not rejected by Exclude.
func (p *ProjectConfig) Matches(rel string) bool {
	if !matchAny(p.Include, rel) {
		return false
	}
	return !matchAny(p.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matchGlob(pattern, rel) {
			return true
		}
	}
	return false
}

// matchGlob extends filepath.Match with a leading "**/" that matches any
// number of directories.
func matchGlob(pattern, rel string) bool {
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok && rest != "" {
		if ok, _ := filepath.Match(rest, filepath.Base(rel)); ok && !strings.Contains(rest, "/") {
			return true
		}
		for i := 0; i < len(rel); i++ {
			if rel[i] == '/' {
				if ok, _ := filepath.Match(rest, rel[i+1:]); ok {
					return true
				}
			}
		}
		ok, _ := filepath.Match(rest, rel)
		return ok
	}
	ok, _ := filepath.Match(pattern, rel)
	return ok
}
