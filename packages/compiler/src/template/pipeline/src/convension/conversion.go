package pipeline_convension

import (
	"encoding/json"

	"gtc-go/packages/compiler/src/syntax"
)

// LiteralValue converts a literal node to its wire value. Numbers keep their
// exact decimal text. Undefined has no wire value and reports false, like
// every non-literal node.
func LiteralValue(expr syntax.Expression) (any, bool) {
	switch v := expr.(type) {
	case *syntax.StringLiteral:
		return v.Value, true
	case *syntax.NumberLiteral:
		return json.Number(v.Value.String()), true
	case *syntax.BooleanLiteral:
		return v.Value, true
	case *syntax.NullLiteral:
		return nil, true
	}
	return nil, false
}

// Wire names of the blocks passed to an invocation
const (
	DefaultBlock = "default"
	InverseBlock = "else"
)
