package config

import (
	"io"
	"log/slog"

	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
)

// Mode selects how the tokenizer treats source text.
type Mode int

const (
	// ModePrecompile decodes character references and drops the leading
	// newline of <pre> and <textarea> content.
	ModePrecompile Mode = iota
	// ModeCodemod keeps text exactly as written.
	ModeCodemod
)

// DefaultMaxDepth bounds element and block nesting.
const DefaultMaxDepth = 256

// IDFunc derives a template identifier from the serialized payload. An empty
// result serializes as a null id.
type IDFunc func(payload string) string

// CompilerConfig represents the compiler configuration
type CompilerConfig struct {
	ModuleName             string
	Meta                   map[string]any
	CustomizeComponentName func(tag string) string
	Plugins                []syntax.ASTPluginBuilder
	ID                     IDFunc
	IgnoreStandalone       bool
	Mode                   Mode
	Logger                 *slog.Logger
	MaxDepth               int
}

// NewCompilerConfig creates a new CompilerConfig with optional parameters
func NewCompilerConfig(opts ...CompilerConfigOption) *CompilerConfig {
	config := &CompilerConfig{
		Meta:     map[string]any{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CompilerConfigOption is a function that modifies CompilerConfig
type CompilerConfigOption func(*CompilerConfig)

// WithModuleName sets the module name attached to diagnostics and metadata
func WithModuleName(name string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.ModuleName = name
	}
}

// WithMeta sets caller metadata passed through to the output
func WithMeta(meta map[string]any) CompilerConfigOption {
	return func(c *CompilerConfig) {
		if meta == nil {
			meta = map[string]any{}
		}
		c.Meta = meta
	}
}

// WithCustomizeComponentName sets the tag normalizer run before component
// classification
func WithCustomizeComponentName(fn func(tag string) string) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.CustomizeComponentName = fn
	}
}

// WithPlugins appends AST plugins, applied in order
func WithPlugins(plugins ...syntax.ASTPluginBuilder) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Plugins = append(c.Plugins, plugins...)
	}
}

// WithID overrides the content-hash identifier generator
func WithID(fn IDFunc) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.ID = fn
	}
}

// WithIgnoreStandalone disables standalone-line whitespace stripping
func WithIgnoreStandalone(ignore bool) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.IgnoreStandalone = ignore
	}
}

// WithMode sets the tokenizer mode
func WithMode(mode Mode) CompilerConfigOption {
	return func(c *CompilerConfig) {
		c.Mode = mode
	}
}

// WithLogger sets the logger used for non-fatal diagnostics
func WithLogger(logger *slog.Logger) CompilerConfigOption {
	return func(c *CompilerConfig) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMaxDepth sets the nesting limit; values below 1 restore the default
func WithMaxDepth(depth int) CompilerConfigOption {
	return func(c *CompilerConfig) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}
		c.MaxDepth = depth
	}
}

// DasherizeComponentName is a CustomizeComponentName that rewrites
// camelCase tags to their dasherized form. Upper-case leading tags are kept
// so they still classify as components.
func DasherizeComponentName(tag string) string {
	if util.IsUpper(tag) {
		return tag
	}
	return util.Dasherize(tag)
}

// CustomizeTag applies CustomizeComponentName when set.
func (c *CompilerConfig) CustomizeTag(tag string) string {
	if c.CustomizeComponentName == nil {
		return tag
	}
	return c.CustomizeComponentName(tag)
}
