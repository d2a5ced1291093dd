package template_parser_test

import (
	"errors"
	"strings"
	"testing"

	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/template_parser"
	"gtc-go/packages/compiler/src/util"
)

// humanizeTree flattens the statement-level nodes of root into
// [kind, detail, depth] rows. Expressions are left out.
func humanizeTree(root *syntax.Program) []interface{} {
	result := []interface{}{}
	depth := 0
	skip := func(n syntax.Node, path *syntax.WalkerPath) bool {
		if path.Parent == nil {
			return true
		}
		switch n.(type) {
		case syntax.Expression, *syntax.Hash, *syntax.HashPair:
			return true
		}
		return false
	}
	_ = syntax.Traverse(root, syntax.Visitor{
		syntax.KindAll: {
			Enter: func(n syntax.Node, path *syntax.WalkerPath) syntax.Result {
				if skip(n, path) {
					return syntax.Keep
				}
				result = append(result, []interface{}{n.Kind().String(), describe(n), depth})
				depth++
				return syntax.Keep
			},
			Exit: func(n syntax.Node, path *syntax.WalkerPath) syntax.Result {
				if !skip(n, path) {
					depth--
				}
				return syntax.Keep
			},
		},
	})
	return result
}

func describe(n syntax.Node) string {
	switch node := n.(type) {
	case *syntax.Program:
		return strings.Join(node.BlockParams, " ")
	case *syntax.Element:
		return node.Tag
	case *syntax.Attr:
		return node.Name
	case *syntax.Text:
		return node.Chars
	case *syntax.Mustache:
		return syntax.Print(node)
	case *syntax.Block:
		return syntax.Print(node.Path)
	case *syntax.ElementModifier:
		return syntax.Print(node.Path)
	case *syntax.Comment:
		return node.Value
	case *syntax.MustacheComment:
		return node.Value
	}
	return ""
}

func preprocess(t *testing.T, source string, opts ...config.CompilerConfigOption) *template_parser.PreprocessResult {
	t.Helper()
	result, err := template_parser.Preprocess(source, opts...)
	if err != nil {
		t.Fatalf("unexpected error for %q: %v", source, err)
	}
	return result
}

func humanizeSource(t *testing.T, source string, opts ...config.CompilerConfigOption) []interface{} {
	t.Helper()
	return humanizeTree(preprocess(t, source, opts...).Root)
}

// preprocessError returns the diagnostic Preprocess fails with.
func preprocessError(t *testing.T, source string, opts ...config.CompilerConfigOption) *util.ParseError {
	t.Helper()
	_, err := template_parser.Preprocess(source, opts...)
	if err == nil {
		t.Fatalf("expected an error for %q", source)
	}
	var parseErr *util.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a ParseError for %q, got %T: %v", source, err, err)
	}
	return parseErr
}
