package scope

import (
	"slices"

	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
)

// Keywords compiled to dedicated opcodes rather than helper calls
const (
	BuiltinYield          = "yield"
	BuiltinPartial        = "partial"
	BuiltinDebugger       = "debugger"
	BuiltinHasBlock       = "has-block"
	BuiltinHasBlockParams = "has-block-params"
)

// BuiltinName returns the keyword named by callee, or "". `yield`, `partial`
// and `debugger` are keywords only as the callee of a mustache; the
// has-block queries are keywords in any call position.
func BuiltinName(callee syntax.Expression) string {
	path, ok := callee.(*syntax.Path)
	if !ok || path.This || path.Data || len(path.Parts) != 1 {
		return ""
	}
	switch name := path.Parts[0]; name {
	case BuiltinYield, BuiltinPartial, BuiltinDebugger, BuiltinHasBlock, BuiltinHasBlockParams:
		return name
	}
	return ""
}

func (r *resolver) yield(mustache *syntax.Mustache, scope Scope) error {
	target := "default"
	if mustache.Hash != nil {
		to := mustache.Hash.Get("to")
		if n := len(mustache.Hash.Pairs); n > 1 || (n == 1 && to == nil) {
			return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "yield only takes a single named argument: 'to'")
		}
		if to != nil {
			literal, ok := to.(*syntax.StringLiteral)
			if !ok {
				return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "you can only yield to a literal value")
			}
			target = literal.Value
		}
	}
	r.table.blockSymbols[mustache] = r.table.Root.Block(target)
	return r.arguments(mustache.Params, nil, scope)
}

// hasBlock validates `has-block` and `has-block-params`, which name their
// block with an optional string literal.
func (r *resolver) hasBlock(node syntax.Node, name string, params []syntax.Expression, hash *syntax.Hash) error {
	if hash != nil && len(hash.Pairs) > 0 {
		return util.Errorf(util.ErrorKindStructure, node.Span(), "%s does not take any named arguments", name)
	}
	target := "default"
	switch len(params) {
	case 0:
	case 1:
		literal, ok := params[0].(*syntax.StringLiteral)
		if !ok {
			return util.NewParseError(util.ErrorKindStructure, node.Span(), "you can only yield to a literal value")
		}
		target = literal.Value
	default:
		return util.Errorf(util.ErrorKindStructure, node.Span(), "%s only takes a single positional argument", name)
	}
	r.table.blockSymbols[node] = r.table.Root.Block(target)
	return nil
}

func (r *resolver) partial(mustache *syntax.Mustache, scope Scope) error {
	switch {
	case len(mustache.Params) != 1:
		return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "Partial found with no arguments. You must specify a template name.")
	case mustache.Hash != nil && len(mustache.Hash.Pairs) > 0:
		return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "partial does not take any named arguments")
	case mustache.Trusting:
		return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "{{{partial ...}}} is not supported, please use {{partial ...}} instead")
	}
	if err := r.expression(mustache.Params[0], scope); err != nil {
		return err
	}
	r.markEval(mustache, scope)
	return nil
}

func (r *resolver) debugger(mustache *syntax.Mustache, scope Scope) error {
	switch {
	case mustache.Hash != nil && len(mustache.Hash.Pairs) > 0:
		return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "debugger does not take any named arguments")
	case len(mustache.Params) > 0:
		return util.NewParseError(util.ErrorKindStructure, mustache.Span(), "debugger does not take any positional arguments")
	}
	r.markEval(mustache, scope)
	return nil
}

// markEval flags the template as needing its symbols at runtime and records
// the slots visible at node: block parameters in scope plus every named
// argument and block allocated so far.
func (r *resolver) markEval(node syntax.Node, scope Scope) {
	root := r.table.Root
	root.HasEval = true
	slots := append(Visible(scope), root.NamedSlots()...)
	slices.Sort(slots)
	r.table.evalInfo[node] = slices.Compact(slots)
}
