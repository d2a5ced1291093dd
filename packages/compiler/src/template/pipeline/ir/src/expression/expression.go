package expression

import (
	"gtc-go/packages/compiler/src/scope"
	"gtc-go/packages/compiler/src/template/pipeline/ir"
	"gtc-go/packages/compiler/src/util"
)

// ExpressionTransform rewrites one expression. It is applied bottom-up, so
// children are already transformed when a parent is visited.
type ExpressionTransform func(expr Expression) (Expression, error)

// Expression is a value operand of an operation
type Expression interface {
	Kind() ir.ExpressionKind
	GetSourceSpan() *util.ParseSourceSpan
}

// ExpressionBase carries the fields shared by every expression
type ExpressionBase struct {
	kind       ir.ExpressionKind
	sourceSpan *util.ParseSourceSpan
}

func newBase(kind ir.ExpressionKind, sourceSpan *util.ParseSourceSpan) ExpressionBase {
	return ExpressionBase{kind: kind, sourceSpan: sourceSpan}
}

// Kind returns the expression kind
func (e *ExpressionBase) Kind() ir.ExpressionKind {
	return e.kind
}

// GetSourceSpan returns the source span
func (e *ExpressionBase) GetSourceSpan() *util.ParseSourceSpan {
	return e.sourceSpan
}

// Hash is an ordered set of named arguments
type Hash struct {
	Keys   []string
	Values []Expression
}

// Len returns the number of pairs; a nil Hash is empty
func (h *Hash) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Keys)
}

// Add appends a pair
func (h *Hash) Add(key string, value Expression) {
	h.Keys = append(h.Keys, key)
	h.Values = append(h.Values, value)
}

// LiteralExpr is a JSON-representable constant: string, json.Number, bool or nil
type LiteralExpr struct {
	ExpressionBase
	Value any
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value any, sourceSpan *util.ParseSourceSpan) *LiteralExpr {
	return &LiteralExpr{ExpressionBase: newBase(ir.ExpressionKindLiteral, sourceSpan), Value: value}
}

// UndefinedExpr is the `undefined` literal
type UndefinedExpr struct {
	ExpressionBase
}

// NewUndefinedExpr creates a new UndefinedExpr
func NewUndefinedExpr(sourceSpan *util.ParseSourceSpan) *UndefinedExpr {
	return &UndefinedExpr{ExpressionBase: newBase(ir.ExpressionKindUndefined, sourceSpan)}
}

// VariableExpr is a path reference as classified by the scope resolver.
// Bare is set for the whole value of an argument-less mustache, where a free
// identifier may still name a helper.
type VariableExpr struct {
	ExpressionBase
	Resolution scope.Resolution
	Bare       bool
}

// NewVariableExpr creates a new VariableExpr
func NewVariableExpr(resolution scope.Resolution, bare bool, sourceSpan *util.ParseSourceSpan) *VariableExpr {
	return &VariableExpr{
		ExpressionBase: newBase(ir.ExpressionKindVariable, sourceSpan),
		Resolution:     resolution,
		Bare:           bare,
	}
}

// GetSymbolExpr reads slot Symbol and walks Tail
type GetSymbolExpr struct {
	ExpressionBase
	Symbol int
	Tail   []string
}

// NewGetSymbolExpr creates a new GetSymbolExpr
func NewGetSymbolExpr(symbol int, tail []string, sourceSpan *util.ParseSourceSpan) *GetSymbolExpr {
	return &GetSymbolExpr{ExpressionBase: newBase(ir.ExpressionKindGetSymbol, sourceSpan), Symbol: symbol, Tail: tail}
}

// MaybeLocalExpr is a free path resolved by the runtime
type MaybeLocalExpr struct {
	ExpressionBase
	Parts []string
}

// NewMaybeLocalExpr creates a new MaybeLocalExpr
func NewMaybeLocalExpr(parts []string, sourceSpan *util.ParseSourceSpan) *MaybeLocalExpr {
	return &MaybeLocalExpr{ExpressionBase: newBase(ir.ExpressionKindMaybeLocal, sourceSpan), Parts: parts}
}

// UnknownExpr is a bare free identifier
type UnknownExpr struct {
	ExpressionBase
	Name string
}

// NewUnknownExpr creates a new UnknownExpr
func NewUnknownExpr(name string, sourceSpan *util.ParseSourceSpan) *UnknownExpr {
	return &UnknownExpr{ExpressionBase: newBase(ir.ExpressionKindUnknown, sourceSpan), Name: name}
}

// HelperExpr calls the helper Name
type HelperExpr struct {
	ExpressionBase
	Name   string
	Params []Expression
	Hash   *Hash
}

// NewHelperExpr creates a new HelperExpr
func NewHelperExpr(name string, params []Expression, hash *Hash, sourceSpan *util.ParseSourceSpan) *HelperExpr {
	return &HelperExpr{ExpressionBase: newBase(ir.ExpressionKindHelper, sourceSpan), Name: name, Params: params, Hash: hash}
}

// ConcatExpr joins the string values of Parts
type ConcatExpr struct {
	ExpressionBase
	Parts []Expression
}

// NewConcatExpr creates a new ConcatExpr
func NewConcatExpr(parts []Expression, sourceSpan *util.ParseSourceSpan) *ConcatExpr {
	return &ConcatExpr{ExpressionBase: newBase(ir.ExpressionKindConcat, sourceSpan), Parts: parts}
}

// HasBlockExpr tests whether the named block in slot Symbol was passed, or
// with ExpressionKindHasBlockParams whether it takes block parameters.
type HasBlockExpr struct {
	ExpressionBase
	Symbol int
}

// NewHasBlockExpr creates a `has-block` or, with params set, a
// `has-block-params` query
func NewHasBlockExpr(symbol int, params bool, sourceSpan *util.ParseSourceSpan) *HasBlockExpr {
	kind := ir.ExpressionKindHasBlock
	if params {
		kind = ir.ExpressionKindHasBlockParams
	}
	return &HasBlockExpr{ExpressionBase: newBase(kind, sourceSpan), Symbol: symbol}
}

// TransformExpressionsInExpression applies transform to expr and every
// expression nested in it, children first.
func TransformExpressionsInExpression(expr Expression, transform ExpressionTransform) (Expression, error) {
	var err error
	switch e := expr.(type) {
	case *HelperExpr:
		if e.Params, err = TransformExpressions(e.Params, transform); err != nil {
			return nil, err
		}
		if err = TransformExpressionsInHash(e.Hash, transform); err != nil {
			return nil, err
		}
	case *ConcatExpr:
		if e.Parts, err = TransformExpressions(e.Parts, transform); err != nil {
			return nil, err
		}
	}
	return transform(expr)
}

// TransformExpressions transforms every expression of list
func TransformExpressions(list []Expression, transform ExpressionTransform) ([]Expression, error) {
	for i, expr := range list {
		out, err := TransformExpressionsInExpression(expr, transform)
		if err != nil {
			return nil, err
		}
		list[i] = out
	}
	return list, nil
}

// TransformExpressionsInHash transforms the values of hash in place
func TransformExpressionsInHash(hash *Hash, transform ExpressionTransform) error {
	if hash == nil {
		return nil
	}
	values, err := TransformExpressions(hash.Values, transform)
	if err != nil {
		return err
	}
	hash.Values = values
	return nil
}
