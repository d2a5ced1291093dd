package syntax

// Syntax bundles the tree utilities handed to plugins
type Syntax struct {
	Builders Builders
	Traverse func(root Node, visitor Visitor) error
	Print    func(node Node) string
}

// DefaultSyntax returns the utilities backed by this package
func DefaultSyntax() Syntax {
	return Syntax{Builders: B, Traverse: Traverse, Print: Print}
}

// ASTPluginEnvironment is passed to every plugin builder once per compile
type ASTPluginEnvironment struct {
	Meta       map[string]any
	ModuleName string
	Syntax     Syntax
}

// ASTPlugin is a named visitor run over the document tree after
// whitespace normalization
type ASTPlugin struct {
	Name    string
	Visitor Visitor
}

// ASTPluginBuilder creates a plugin for one compile
type ASTPluginBuilder func(env ASTPluginEnvironment) ASTPlugin

// LegacyASTPlugin rewrites the whole template in one call
type LegacyASTPlugin interface {
	Transform(root *Program)
}

// LegacyPluginBuilder creates a LegacyASTPlugin for one compile
type LegacyPluginBuilder func(env ASTPluginEnvironment) LegacyASTPlugin

// WrapLegacyPlugin adapts a whole-template plugin to the visitor protocol.
// Transform runs on the root Program only, never on block bodies.
func WrapLegacyPlugin(name string, builder LegacyPluginBuilder) ASTPluginBuilder {
	return func(env ASTPluginEnvironment) ASTPlugin {
		legacy := builder(env)
		var root *Program
		return ASTPlugin{
			Name: name,
			Visitor: Visitor{
				KindProgram: {
					Enter: func(node Node, path *WalkerPath) Result {
						program := node.(*Program)
						if root == nil && path.Parent == nil {
							root = program
							legacy.Transform(program)
						}
						return Keep
					},
				},
			},
		}
	}
}
