package utils

import (
	"strings"

	"gtc-go/packages/compiler/src/expression_parser"
)

// Unparser prints an expression AST in an indented, one-node-per-line form
// that is convenient to compare in tests
type Unparser struct {
	out   strings.Builder
	level int
}

// NewUnparser creates a new Unparser
func NewUnparser() *Unparser {
	return &Unparser{}
}

// Unparse prints node
func Unparse(node expression_parser.Node) string {
	return NewUnparser().Unparse(node)
}

// Unparse prints node
func (u *Unparser) Unparse(node expression_parser.Node) string {
	u.out.Reset()
	u.level = 0
	u.statement(node)
	return u.out.String()
}

func (u *Unparser) pad(line string) {
	u.out.WriteString(strings.Repeat("  ", u.level))
	u.out.WriteString(line)
	u.out.WriteString("\n")
}

func (u *Unparser) program(program *expression_parser.Program) {
	if len(program.BlockParams) > 0 {
		u.pad("BLOCK PARAMS: [ " + strings.Join(program.BlockParams, " ") + " ]")
	}
	for _, stmt := range program.Body {
		u.statement(stmt)
	}
}

func (u *Unparser) statement(node expression_parser.Node) {
	switch n := node.(type) {
	case *expression_parser.Program:
		u.program(n)
	case *expression_parser.ContentStatement:
		u.pad("CONTENT[ '" + n.Value + "' ]")
	case *expression_parser.CommentStatement:
		u.pad("{{! '" + n.Value + "' }}")
	case *expression_parser.MustacheStatement:
		open := "{{ "
		if !n.Escaped {
			open = "{{{ "
		}
		u.pad(open + call(n.Path, n.Params, n.Hash) + " }}")
	case *expression_parser.DecoratorStatement:
		u.pad("{{ DIRECTIVE " + call(n.Path, n.Params, n.Hash) + " }}")
	case *expression_parser.PartialStatement:
		u.pad("{{> " + call(n.Name, n.Params, n.Hash) + " }}")
		if n.Program != nil {
			u.level++
			u.program(n.Program)
			u.level--
		}
	case *expression_parser.BlockStatement:
		u.pad("BLOCK:")
		u.level++
		u.pad(call(n.Path, n.Params, n.Hash))
		if n.Program != nil {
			u.pad("PROGRAM:")
			u.level++
			u.program(n.Program)
			u.level--
		}
		if n.Inverse != nil {
			if n.Inverse.Chained {
				u.pad("{{else}} CHAINED:")
			} else {
				u.pad("{{^}}")
			}
			u.level++
			u.program(n.Inverse)
			u.level--
		}
		u.level--
	default:
		if expr, ok := node.(expression_parser.Expression); ok {
			u.pad(expression(expr))
		}
	}
}

func call(path expression_parser.Expression, params []expression_parser.Expression, hash *expression_parser.Hash) string {
	parts := make([]string, len(params))
	for i, param := range params {
		parts[i] = expression(param)
	}
	s := expression(path) + " [" + strings.Join(parts, ", ") + "]"
	if hash != nil {
		s += " " + hashString(hash)
	}
	return s
}

func hashString(hash *expression_parser.Hash) string {
	pairs := make([]string, len(hash.Pairs))
	for i, pair := range hash.Pairs {
		pairs[i] = pair.Key + "=" + expression(pair.Value)
	}
	return "HASH{" + strings.Join(pairs, ", ") + "}"
}

func expression(expr expression_parser.Expression) string {
	switch e := expr.(type) {
	case *expression_parser.PathExpression:
		prefix := "PATH:"
		if e.Data {
			prefix = "@PATH:"
		}
		if e.This {
			prefix += "this/"
		}
		return prefix + strings.Repeat("../", e.Depth) + strings.Join(e.Parts, "/")
	case *expression_parser.SubExpression:
		return "(" + call(e.Path, e.Params, e.Hash) + ")"
	case *expression_parser.StringLiteral:
		return `"` + e.Value + `"`
	case *expression_parser.NumberLiteral:
		return "NUMBER{" + e.Value.String() + "}"
	case *expression_parser.BooleanLiteral:
		if e.Value {
			return "BOOLEAN{true}"
		}
		return "BOOLEAN{false}"
	case *expression_parser.UndefinedLiteral:
		return "UNDEFINED"
	case *expression_parser.NullLiteral:
		return "NULL"
	}
	return "?"
}
