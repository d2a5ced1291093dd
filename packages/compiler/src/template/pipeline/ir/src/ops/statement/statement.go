package ops_statement

import (
	"gtc-go/packages/compiler/src/template/pipeline/ir"
	"gtc-go/packages/compiler/src/template/pipeline/ir/src/expression"
	ir_operation "gtc-go/packages/compiler/src/template/pipeline/ir/src/operations"
	"gtc-go/packages/compiler/src/util"
)

// NamedBlocks lists the inline blocks passed to an invocation by name and
// their index in the job's block table
type NamedBlocks struct {
	Names   []string
	Indices []int
}

// Add appends a block
func (b *NamedBlocks) Add(name string, index int) {
	b.Names = append(b.Names, name)
	b.Indices = append(b.Indices, index)
}

// Len returns the number of blocks; a nil NamedBlocks is empty
func (b *NamedBlocks) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Names)
}

// Has reports whether a block called name is present
func (b *NamedBlocks) Has(name string) bool {
	if b == nil {
		return false
	}
	for _, n := range b.Names {
		if n == name {
			return true
		}
	}
	return false
}

// TextOp emits static character data
type TextOp struct {
	ir_operation.OpBase
	Chars      string
	SourceSpan *util.ParseSourceSpan
}

// NewTextOp creates a new TextOp
func NewTextOp(chars string, sourceSpan *util.ParseSourceSpan) *TextOp {
	return &TextOp{Chars: chars, SourceSpan: sourceSpan}
}

func (o *TextOp) GetKind() ir.OpKind { return ir.OpKindText }

// CommentOp emits an HTML comment
type CommentOp struct {
	ir_operation.OpBase
	Value      string
	SourceSpan *util.ParseSourceSpan
}

// NewCommentOp creates a new CommentOp
func NewCommentOp(value string, sourceSpan *util.ParseSourceSpan) *CommentOp {
	return &CommentOp{Value: value, SourceSpan: sourceSpan}
}

func (o *CommentOp) GetKind() ir.OpKind { return ir.OpKindComment }

// AppendOp inserts the value of an expression, escaped unless Trusting
type AppendOp struct {
	ir_operation.OpBase
	Value      expression.Expression
	Trusting   bool
	SourceSpan *util.ParseSourceSpan
}

// NewAppendOp creates a new AppendOp
func NewAppendOp(value expression.Expression, trusting bool, sourceSpan *util.ParseSourceSpan) *AppendOp {
	return &AppendOp{Value: value, Trusting: trusting, SourceSpan: sourceSpan}
}

func (o *AppendOp) GetKind() ir.OpKind { return ir.OpKindAppend }

// OpenElementOp begins a plain element. Simple is set when the element has
// no modifiers; Splatted when it applies `...attributes`.
type OpenElementOp struct {
	ir_operation.OpBase
	Tag        string
	Simple     bool
	Splatted   bool
	SourceSpan *util.ParseSourceSpan
}

// NewOpenElementOp creates a new OpenElementOp
func NewOpenElementOp(tag string, simple, splatted bool, sourceSpan *util.ParseSourceSpan) *OpenElementOp {
	return &OpenElementOp{Tag: tag, Simple: simple, Splatted: splatted, SourceSpan: sourceSpan}
}

func (o *OpenElementOp) GetKind() ir.OpKind { return ir.OpKindOpenElement }

// FlushElementOp ends the attribute list of the open element
type FlushElementOp struct {
	ir_operation.OpBase
}

// NewFlushElementOp creates a new FlushElementOp
func NewFlushElementOp() *FlushElementOp {
	return &FlushElementOp{}
}

func (o *FlushElementOp) GetKind() ir.OpKind { return ir.OpKindFlushElement }

// CloseElementOp closes the element opened last
type CloseElementOp struct {
	ir_operation.OpBase
}

// NewCloseElementOp creates a new CloseElementOp
func NewCloseElementOp() *CloseElementOp {
	return &CloseElementOp{}
}

func (o *CloseElementOp) GetKind() ir.OpKind { return ir.OpKindCloseElement }

// AttributeOp sets one attribute. Component is set for attributes forwarded
// to a component invocation.
type AttributeOp struct {
	ir_operation.OpBase
	Name       string
	Namespace  string
	Value      expression.Expression
	Binding    ir.AttributeKind
	Component  bool
	SourceSpan *util.ParseSourceSpan
}

// NewAttributeOp creates a new AttributeOp
func NewAttributeOp(name, namespace string, value expression.Expression, binding ir.AttributeKind, component bool, sourceSpan *util.ParseSourceSpan) *AttributeOp {
	return &AttributeOp{
		Name:       name,
		Namespace:  namespace,
		Value:      value,
		Binding:    binding,
		Component:  component,
		SourceSpan: sourceSpan,
	}
}

func (o *AttributeOp) GetKind() ir.OpKind { return ir.OpKindAttribute }

// AttrSplatOp applies the attributes held in the `&attrs` slot
type AttrSplatOp struct {
	ir_operation.OpBase
	Symbol     int
	SourceSpan *util.ParseSourceSpan
}

// NewAttrSplatOp creates a new AttrSplatOp
func NewAttrSplatOp(symbol int, sourceSpan *util.ParseSourceSpan) *AttrSplatOp {
	return &AttrSplatOp{Symbol: symbol, SourceSpan: sourceSpan}
}

func (o *AttrSplatOp) GetKind() ir.OpKind { return ir.OpKindAttrSplat }

// ModifierOp installs an element modifier
type ModifierOp struct {
	ir_operation.OpBase
	Name       string
	Params     []expression.Expression
	Hash       *expression.Hash
	SourceSpan *util.ParseSourceSpan
}

// NewModifierOp creates a new ModifierOp
func NewModifierOp(name string, params []expression.Expression, hash *expression.Hash, sourceSpan *util.ParseSourceSpan) *ModifierOp {
	return &ModifierOp{Name: name, Params: params, Hash: hash, SourceSpan: sourceSpan}
}

func (o *ModifierOp) GetKind() ir.OpKind { return ir.OpKindModifier }

// BlockOp invokes a block helper
type BlockOp struct {
	ir_operation.OpBase
	Name       string
	Params     []expression.Expression
	Hash       *expression.Hash
	Blocks     *NamedBlocks
	SourceSpan *util.ParseSourceSpan
}

// NewBlockOp creates a new BlockOp
func NewBlockOp(name string, params []expression.Expression, hash *expression.Hash, blocks *NamedBlocks, sourceSpan *util.ParseSourceSpan) *BlockOp {
	return &BlockOp{Name: name, Params: params, Hash: hash, Blocks: blocks, SourceSpan: sourceSpan}
}

func (o *BlockOp) GetKind() ir.OpKind { return ir.OpKindBlock }

// ComponentOp invokes a component. Dynamic is nil for a static tag. Attrs
// holds the attribute, splat and modifier operations of the invocation;
// Args its `@name` arguments.
type ComponentOp struct {
	ir_operation.OpBase
	Tag        string
	Dynamic    expression.Expression
	Attrs      *ir_operation.OpList
	Args       *expression.Hash
	Blocks     *NamedBlocks
	SourceSpan *util.ParseSourceSpan
}

// NewComponentOp creates a new ComponentOp
func NewComponentOp(tag string, dynamic expression.Expression, sourceSpan *util.ParseSourceSpan) *ComponentOp {
	return &ComponentOp{
		Tag:        tag,
		Dynamic:    dynamic,
		Attrs:      ir_operation.NewOpList(),
		Args:       &expression.Hash{},
		SourceSpan: sourceSpan,
	}
}

func (o *ComponentOp) GetKind() ir.OpKind { return ir.OpKindComponent }

// YieldOp invokes the named block in slot Symbol
type YieldOp struct {
	ir_operation.OpBase
	Symbol     int
	Params     []expression.Expression
	SourceSpan *util.ParseSourceSpan
}

// NewYieldOp creates a new YieldOp
func NewYieldOp(symbol int, params []expression.Expression, sourceSpan *util.ParseSourceSpan) *YieldOp {
	return &YieldOp{Symbol: symbol, Params: params, SourceSpan: sourceSpan}
}

func (o *YieldOp) GetKind() ir.OpKind { return ir.OpKindYield }

// PartialOp renders the partial named by Value
type PartialOp struct {
	ir_operation.OpBase
	Value      expression.Expression
	EvalInfo   []int
	SourceSpan *util.ParseSourceSpan
}

// NewPartialOp creates a new PartialOp
func NewPartialOp(value expression.Expression, evalInfo []int, sourceSpan *util.ParseSourceSpan) *PartialOp {
	return &PartialOp{Value: value, EvalInfo: evalInfo, SourceSpan: sourceSpan}
}

func (o *PartialOp) GetKind() ir.OpKind { return ir.OpKindPartial }

// DebuggerOp pauses with the symbols in EvalInfo visible
type DebuggerOp struct {
	ir_operation.OpBase
	EvalInfo   []int
	SourceSpan *util.ParseSourceSpan
}

// NewDebuggerOp creates a new DebuggerOp
func NewDebuggerOp(evalInfo []int, sourceSpan *util.ParseSourceSpan) *DebuggerOp {
	return &DebuggerOp{EvalInfo: evalInfo, SourceSpan: sourceSpan}
}

func (o *DebuggerOp) GetKind() ir.OpKind { return ir.OpKindDebugger }

// TransformExpressionsInOp applies transform to every expression held by op,
// including the operations nested in a component's attribute list.
func TransformExpressionsInOp(op ir_operation.Op, transform expression.ExpressionTransform) error {
	var err error
	switch o := op.(type) {
	case *AppendOp:
		o.Value, err = expression.TransformExpressionsInExpression(o.Value, transform)
	case *AttributeOp:
		o.Value, err = expression.TransformExpressionsInExpression(o.Value, transform)
	case *ModifierOp:
		if o.Params, err = expression.TransformExpressions(o.Params, transform); err == nil {
			err = expression.TransformExpressionsInHash(o.Hash, transform)
		}
	case *BlockOp:
		if o.Params, err = expression.TransformExpressions(o.Params, transform); err == nil {
			err = expression.TransformExpressionsInHash(o.Hash, transform)
		}
	case *ComponentOp:
		if o.Dynamic != nil {
			if o.Dynamic, err = expression.TransformExpressionsInExpression(o.Dynamic, transform); err != nil {
				return err
			}
		}
		for attr := range o.Attrs.All() {
			if err = TransformExpressionsInOp(attr, transform); err != nil {
				return err
			}
		}
		err = expression.TransformExpressionsInHash(o.Args, transform)
	case *YieldOp:
		o.Params, err = expression.TransformExpressions(o.Params, transform)
	case *PartialOp:
		o.Value, err = expression.TransformExpressionsInExpression(o.Value, transform)
	case *TextOp, *CommentOp, *OpenElementOp, *FlushElementOp, *CloseElementOp, *AttrSplatOp, *DebuggerOp:
	default:
		return util.Errorf(util.ErrorKindInternal, nil, "no expression handler for op %s", op.GetKind())
	}
	return err
}
