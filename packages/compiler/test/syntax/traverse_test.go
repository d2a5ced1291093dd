package syntax_test

import (
	"errors"
	"testing"

	"gtc-go/packages/compiler/src/syntax"

	"github.com/google/go-cmp/cmp"
)

var b = syntax.B

func sample() *syntax.Program {
	return b.Program([]syntax.Statement{
		b.Element("div", []*syntax.Attr{b.Attr("class", b.Text("a"))},
			b.Text("hi "),
			b.Mustache(b.Path("name"), nil, nil),
		),
		b.Block(b.Path("if"), []syntax.Expression{b.Path("x")}, nil,
			b.Program([]syntax.Statement{b.Text("yes")}),
			nil,
		),
	})
}

func TestTraverse(t *testing.T) {
	t.Run("should visit nodes in document order", func(t *testing.T) {
		var kinds []string
		err := syntax.Traverse(sample(), syntax.Visitor{
			syntax.KindAll: {Enter: func(n syntax.Node, _ *syntax.WalkerPath) syntax.Result {
				kinds = append(kinds, n.Kind().String())
				return syntax.Keep
			}},
		})
		if err != nil {
			t.Fatal(err)
		}
		expected := []string{
			"Program", "Element", "Attr", "Text", "Text", "Mustache", "Path",
			"Block", "Path", "Path", "Program", "Text",
		}
		if diff := cmp.Diff(expected, kinds); diff != "" {
			t.Errorf("visit order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should run exit hooks after children", func(t *testing.T) {
		var events []string
		err := syntax.Traverse(sample(), syntax.Visitor{
			syntax.KindElement: {
				Enter: func(syntax.Node, *syntax.WalkerPath) syntax.Result {
					events = append(events, "enter")
					return syntax.Keep
				},
				Exit: func(syntax.Node, *syntax.WalkerPath) syntax.Result {
					events = append(events, "exit")
					return syntax.Keep
				},
				Keys: map[string]syntax.KeyHandler{
					"children": {
						Enter: func(syntax.Node, string) { events = append(events, "children:enter") },
						Exit:  func(syntax.Node, string) { events = append(events, "children:exit") },
					},
				},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		expected := []string{"enter", "children:enter", "children:exit", "exit"}
		if diff := cmp.Diff(expected, events); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should remove nodes", func(t *testing.T) {
		root := sample()
		err := syntax.Traverse(root, syntax.Visitor{
			syntax.KindText: {Enter: func(_ syntax.Node, path *syntax.WalkerPath) syntax.Result {
				if path.ParentKey == "value" {
					return syntax.Keep
				}
				return syntax.Remove
			}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(`<div class="a">{{name}}</div>{{#if x}}{{/if}}`, syntax.Print(root)); diff != "" {
			t.Errorf("Print() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should replace a node with several and visit the replacements", func(t *testing.T) {
		root := sample()
		visitedPaths := 0
		err := syntax.Traverse(root, syntax.Visitor{
			syntax.KindMustache: {Enter: func(n syntax.Node, _ *syntax.WalkerPath) syntax.Result {
				m := n.(*syntax.Mustache)
				if p, ok := m.Path.(*syntax.Path); ok && p.Original == "name" {
					return syntax.Replace(b.Text("["), b.Mustache(b.Path("this.name"), nil, nil), b.Text("]"))
				}
				return syntax.Keep
			}},
			syntax.KindPath: {Enter: func(n syntax.Node, _ *syntax.WalkerPath) syntax.Result {
				if n.(*syntax.Path).Original == "this.name" {
					visitedPaths++
				}
				return syntax.Keep
			}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if visitedPaths != 1 {
			t.Errorf("expected the replacement to be visited once, got %d", visitedPaths)
		}
		if diff := cmp.Diff(`<div class="a">hi [{{this.name}}]</div>{{#if x}}yes{{/if}}`, syntax.Print(root)); diff != "" {
			t.Errorf("Print() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should expose the parent path", func(t *testing.T) {
		var parents []string
		err := syntax.Traverse(sample(), syntax.Visitor{
			syntax.KindText: {Enter: func(_ syntax.Node, path *syntax.WalkerPath) syntax.Result {
				parents = append(parents, path.ParentNode().Kind().String()+"."+path.ParentKey)
				return syntax.Keep
			}},
		})
		if err != nil {
			t.Fatal(err)
		}
		expected := []string{"Attr.value", "Element.children", "Program.body"}
		if diff := cmp.Diff(expected, parents); diff != "" {
			t.Errorf("parents mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should reject a replacement of the wrong kind", func(t *testing.T) {
		err := syntax.Traverse(sample(), syntax.Visitor{
			syntax.KindAttr: {Enter: func(syntax.Node, *syntax.WalkerPath) syntax.Result {
				return syntax.Replace(b.Text("nope"))
			}},
		})
		var terr *syntax.TraverseError
		if !errors.As(err, &terr) {
			t.Fatalf("expected a TraverseError, got %v", err)
		}
		if terr.Parent != syntax.KindElement || terr.Key != "attributes" {
			t.Errorf("unexpected error location %s.%s", terr.Parent, terr.Key)
		}
	})

	t.Run("should not allow removing the root", func(t *testing.T) {
		err := syntax.Traverse(sample(), syntax.Visitor{
			syntax.KindProgram: {Enter: func(_ syntax.Node, path *syntax.WalkerPath) syntax.Result {
				if path.Parent == nil {
					return syntax.Remove
				}
				return syntax.Keep
			}},
		})
		if err == nil {
			t.Errorf("expected an error")
		}
	})
}

type upperText struct{ calls int }

func (u *upperText) Transform(root *syntax.Program) {
	u.calls++
	root.Body = append(root.Body, b.Text("!"))
}

func TestWrapLegacyPlugin(t *testing.T) {
	t.Run("should transform the root program once", func(t *testing.T) {
		legacy := &upperText{}
		builder := syntax.WrapLegacyPlugin("legacy", func(syntax.ASTPluginEnvironment) syntax.LegacyASTPlugin { return legacy })
		plugin := builder(syntax.ASTPluginEnvironment{Syntax: syntax.DefaultSyntax()})
		if plugin.Name != "legacy" {
			t.Errorf("expected the plugin name to be kept, got %q", plugin.Name)
		}
		root := sample()
		if err := syntax.Traverse(root, plugin.Visitor); err != nil {
			t.Fatal(err)
		}
		if legacy.calls != 1 {
			t.Errorf("expected one Transform call, got %d", legacy.calls)
		}
		if last := root.Body[len(root.Body)-1].(*syntax.Text); last.Chars != "!" {
			t.Errorf("expected the transform to apply, got %q", last.Chars)
		}
	})
}
