package phases

import (
	"gtc-go/packages/compiler/src/template/pipeline/ir"
	"gtc-go/packages/compiler/src/template/pipeline/ir/src/expression"
	ir_operation "gtc-go/packages/compiler/src/template/pipeline/ir/src/operations"
	ops_statement "gtc-go/packages/compiler/src/template/pipeline/ir/src/ops/statement"
	"gtc-go/packages/compiler/src/util"
	"gtc-go/packages/compiler/src/wire_format"

	pipeline "gtc-go/packages/compiler/src/template/pipeline/src/compilation"
)

// Reify encodes the operations of every unit into the wire format. Every
// variable must have been materialized by AllocateSymbols; an operation or
// expression without an encoder is an internal fault.
func Reify(job *pipeline.TemplateCompilationJob) (*wire_format.SerializedTemplateBlock, error) {
	statements, err := reifyOps(job.Root.Ops)
	if err != nil {
		return nil, err
	}
	blocks := make([]wire_format.SerializedInlineBlock, 0, len(job.Blocks))
	for _, unit := range job.Blocks {
		body, err := reifyOps(unit.Ops)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, wire_format.SerializedInlineBlock{Statements: body, Parameters: unit.Parameters})
	}
	return &wire_format.SerializedTemplateBlock{
		Symbols:    job.Symbols(),
		Statements: statements,
		Blocks:     blocks,
		HasEval:    job.HasEval(),
	}, nil
}

func reifyOps(list *ir_operation.OpList) ([]wire_format.Statement, error) {
	out := make([]wire_format.Statement, 0, list.Len())
	for op := range list.All() {
		stmt, err := reifyOp(op)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func reifyOp(op ir_operation.Op) (wire_format.Statement, error) {
	switch o := op.(type) {
	case *ops_statement.TextOp:
		return wire_format.Statement{wire_format.OpText, o.Chars}, nil
	case *ops_statement.CommentOp:
		return wire_format.Statement{wire_format.OpComment, o.Value}, nil
	case *ops_statement.AppendOp:
		value, err := reifyExpression(o.Value)
		if err != nil {
			return nil, err
		}
		return wire_format.Statement{wire_format.OpAppend, value, o.Trusting}, nil
	case *ops_statement.OpenElementOp:
		if o.Splatted {
			return wire_format.Statement{wire_format.OpOpenSplattedElement, o.Tag}, nil
		}
		return wire_format.Statement{wire_format.OpOpenElement, o.Tag, o.Simple}, nil
	case *ops_statement.FlushElementOp:
		return wire_format.Statement{wire_format.OpFlushElement}, nil
	case *ops_statement.CloseElementOp:
		return wire_format.Statement{wire_format.OpCloseElement}, nil
	case *ops_statement.AttributeOp:
		return reifyAttribute(o)
	case *ops_statement.AttrSplatOp:
		return wire_format.Statement{wire_format.OpAttrSplat, o.Symbol}, nil
	case *ops_statement.ModifierOp:
		params, hash, err := reifyArguments(o.Params, o.Hash)
		if err != nil {
			return nil, err
		}
		return wire_format.Statement{wire_format.OpModifier, o.Name, params, hash}, nil
	case *ops_statement.BlockOp:
		params, hash, err := reifyArguments(o.Params, o.Hash)
		if err != nil {
			return nil, err
		}
		return wire_format.Statement{wire_format.OpBlock, o.Name, params, hash, reifyBlocks(o.Blocks)}, nil
	case *ops_statement.ComponentOp:
		return reifyComponent(o)
	case *ops_statement.YieldOp:
		params, err := reifyParams(o.Params)
		if err != nil {
			return nil, err
		}
		return wire_format.Statement{wire_format.OpYield, o.Symbol, params}, nil
	case *ops_statement.PartialOp:
		value, err := reifyExpression(o.Value)
		if err != nil {
			return nil, err
		}
		return wire_format.Statement{wire_format.OpPartial, value, evalInfo(o.EvalInfo)}, nil
	case *ops_statement.DebuggerOp:
		return wire_format.Statement{wire_format.OpDebugger, evalInfo(o.EvalInfo)}, nil
	}
	return nil, util.Errorf(util.ErrorKindInternal, nil, "no encoder for op %s", op.GetKind())
}

func reifyAttribute(op *ops_statement.AttributeOp) (wire_format.Statement, error) {
	value, err := reifyExpression(op.Value)
	if err != nil {
		return nil, err
	}
	var opcode wire_format.Opcode
	switch {
	case op.Binding == ir.AttributeKindStatic:
		opcode = wire_format.OpStaticAttr
	case op.Binding == ir.AttributeKindTrusting && op.Component:
		opcode = wire_format.OpTrustingComponentAttr
	case op.Binding == ir.AttributeKindTrusting:
		opcode = wire_format.OpTrustingAttr
	case op.Component:
		opcode = wire_format.OpComponentAttr
	default:
		opcode = wire_format.OpDynamicAttr
	}
	stmt := wire_format.Statement{opcode, op.Name, value}
	if op.Namespace != "" {
		stmt = append(stmt, op.Namespace)
	}
	return stmt, nil
}

func reifyComponent(op *ops_statement.ComponentOp) (wire_format.Statement, error) {
	attrs, err := reifyOps(op.Attrs)
	if err != nil {
		return nil, err
	}
	args, err := reifyHash(op.Args)
	if err != nil {
		return nil, err
	}
	if op.Dynamic == nil {
		return wire_format.Statement{wire_format.OpComponent, op.Tag, attrs, args, reifyBlocks(op.Blocks)}, nil
	}
	tag, err := reifyExpression(op.Dynamic)
	if err != nil {
		return nil, err
	}
	return wire_format.Statement{wire_format.OpDynamicComponent, tag, attrs, args, reifyBlocks(op.Blocks)}, nil
}

func reifyExpression(expr expression.Expression) (wire_format.Expression, error) {
	switch e := expr.(type) {
	case *expression.LiteralExpr:
		return e.Value, nil
	case *expression.UndefinedExpr:
		return []any{wire_format.OpUndefined}, nil
	case *expression.GetSymbolExpr:
		return []any{wire_format.OpGet, e.Symbol, nonNil(e.Tail)}, nil
	case *expression.MaybeLocalExpr:
		return []any{wire_format.OpMaybeLocal, nonNil(e.Parts)}, nil
	case *expression.UnknownExpr:
		return []any{wire_format.OpUnknown, e.Name}, nil
	case *expression.HelperExpr:
		params, hash, err := reifyArguments(e.Params, e.Hash)
		if err != nil {
			return nil, err
		}
		return []any{wire_format.OpHelper, e.Name, params, hash}, nil
	case *expression.ConcatExpr:
		parts, err := reifyList(e.Parts)
		if err != nil {
			return nil, err
		}
		return []any{wire_format.OpConcat, parts}, nil
	case *expression.HasBlockExpr:
		if e.Kind() == ir.ExpressionKindHasBlockParams {
			return []any{wire_format.OpHasBlockParams, e.Symbol}, nil
		}
		return []any{wire_format.OpHasBlock, e.Symbol}, nil
	}
	return nil, util.Errorf(util.ErrorKindInternal, expr.GetSourceSpan(), "no encoder for expression %s", expr.Kind())
}

func reifyList(list []expression.Expression) ([]any, error) {
	out := make([]any, 0, len(list))
	for _, expr := range list {
		value, err := reifyExpression(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// reifyParams encodes positional arguments; an empty list is null.
func reifyParams(params []expression.Expression) (any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	return reifyList(params)
}

// reifyHash encodes named arguments as `[[keys], [values]]`; an empty hash
// is null.
func reifyHash(hash *expression.Hash) (any, error) {
	if hash.Len() == 0 {
		return nil, nil
	}
	values, err := reifyList(hash.Values)
	if err != nil {
		return nil, err
	}
	return []any{hash.Keys, values}, nil
}

func reifyArguments(params []expression.Expression, hash *expression.Hash) (any, any, error) {
	p, err := reifyParams(params)
	if err != nil {
		return nil, nil, err
	}
	h, err := reifyHash(hash)
	if err != nil {
		return nil, nil, err
	}
	return p, h, nil
}

// reifyBlocks encodes `[[names], [indices]]`, or null when there are none.
func reifyBlocks(blocks *ops_statement.NamedBlocks) any {
	if blocks.Len() == 0 {
		return nil
	}
	return []any{blocks.Names, blocks.Indices}
}

func evalInfo(slots []int) []int {
	if slots == nil {
		return []int{}
	}
	return slots
}

func nonNil(parts []string) []string {
	if parts == nil {
		return []string{}
	}
	return parts
}
