package pipeline

import (
	"strings"

	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/scope"
	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/template/pipeline/ir"
	"gtc-go/packages/compiler/src/template/pipeline/ir/src/expression"
	ir_operation "gtc-go/packages/compiler/src/template/pipeline/ir/src/operations"
	ops_statement "gtc-go/packages/compiler/src/template/pipeline/ir/src/ops/statement"
	"gtc-go/packages/compiler/src/util"

	pipeline_compilation "gtc-go/packages/compiler/src/template/pipeline/src/compilation"
	pipeline_convension "gtc-go/packages/compiler/src/template/pipeline/src/convension"
)

const splattributes = "...attributes"

// parentKind is the construct whose body is being ingested
type parentKind int

const (
	parentRoot parentKind = iota
	parentBlock
	parentElement
	parentNamedBlock
)

// emitContext is the destination of one statement list. Operands are pushed
// on values as they are lowered and popped by the operation consuming them.
type emitContext struct {
	ops    *ir_operation.OpList
	values valueStack
	parent parentKind
	// tag is the enclosing element for parentElement and parentNamedBlock.
	tag string
}

// valueStack is the LIFO operand stack of one statement list
type valueStack struct {
	values []expression.Expression
}

func (s *valueStack) push(expr expression.Expression) {
	s.values = append(s.values, expr)
}

func (s *valueStack) pop() expression.Expression {
	return s.popN(1)[0]
}

// popN removes the top n operands and returns them in push order; nil when
// n is zero.
func (s *valueStack) popN(n int) []expression.Expression {
	if n == 0 {
		return nil
	}
	if n > len(s.values) {
		panic("operand stack underflow")
	}
	top := len(s.values) - n
	out := make([]expression.Expression, n)
	copy(out, s.values[top:])
	clear(s.values[top:])
	s.values = s.values[:top]
	return out
}

func (s *valueStack) len() int {
	return len(s.values)
}

// popArguments pops the operands pushed by arguments for params and hash
func (c *emitContext) popArguments(params []syntax.Expression, hash *syntax.Hash) ([]expression.Expression, *expression.Hash) {
	var named *expression.Hash
	if n := hashLen(hash); n > 0 {
		values := c.values.popN(n)
		named = &expression.Hash{}
		for i, pair := range hash.Pairs {
			named.Add(pair.Key, values[i])
		}
	}
	return c.values.popN(len(params)), named
}

type ingester struct {
	job   *pipeline_compilation.TemplateCompilationJob
	table *scope.Table
	cfg   *config.CompilerConfig
}

// Ingest lowers a resolved document tree into a compilation job whose
// operations still carry unresolved variable expressions.
func Ingest(root *syntax.Program, table *scope.Table, cfg *config.CompilerConfig) (*pipeline_compilation.TemplateCompilationJob, error) {
	job := pipeline_compilation.NewTemplateCompilationJob(cfg.ModuleName, table)
	in := &ingester{job: job, table: table, cfg: cfg}
	ctx := &emitContext{ops: job.Root.Ops, parent: parentRoot}
	if err := in.program(ctx, root.Body); err != nil {
		return nil, err
	}
	return job, nil
}

// program lowers the body of a template or inline block. Every operand
// pushed while lowering must have been consumed by the end.
func (in *ingester) program(ctx *emitContext, body []syntax.Statement) error {
	if err := in.statements(ctx, body); err != nil {
		return err
	}
	if n := ctx.values.len(); n != 0 {
		return util.Errorf(util.ErrorKindInternal, nil, "%d operand(s) left on the stack", n)
	}
	return nil
}

func (in *ingester) statements(ctx *emitContext, body []syntax.Statement) error {
	for _, stmt := range body {
		if err := in.statement(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *ingester) statement(ctx *emitContext, stmt syntax.Statement) error {
	switch s := stmt.(type) {
	case *syntax.Text:
		ctx.ops.Push(ops_statement.NewTextOp(s.Chars, s.Span()))
	case *syntax.Comment:
		ctx.ops.Push(ops_statement.NewCommentOp(s.Value, s.Span()))
	case *syntax.MustacheComment:
	case *syntax.Mustache:
		return in.mustache(ctx, s)
	case *syntax.Block:
		return in.block(ctx, s)
	case *syntax.Element:
		return in.element(ctx, s)
	default:
		return util.Errorf(util.ErrorKindInternal, stmt.Span(), "no lowering for %s", stmt.Kind())
	}
	return nil
}

func (in *ingester) mustache(ctx *emitContext, m *syntax.Mustache) error {
	switch scope.BuiltinName(m.Path) {
	case scope.BuiltinYield:
		symbol, ok := in.table.BlockSymbol(m)
		if !ok {
			return util.NewParseError(util.ErrorKindInternal, m.Span(), "yield has no block symbol")
		}
		if err := in.params(ctx, m.Params); err != nil {
			return err
		}
		ctx.ops.Push(ops_statement.NewYieldOp(symbol, ctx.values.popN(len(m.Params)), m.Span()))
		return nil
	case scope.BuiltinPartial:
		if err := in.expression(ctx, m.Params[0], false); err != nil {
			return err
		}
		ctx.ops.Push(ops_statement.NewPartialOp(ctx.values.pop(), in.table.EvalInfo(m), m.Span()))
		return nil
	case scope.BuiltinDebugger:
		ctx.ops.Push(ops_statement.NewDebuggerOp(in.table.EvalInfo(m), m.Span()))
		return nil
	}
	if err := in.mustacheValue(ctx, m); err != nil {
		return err
	}
	ctx.ops.Push(ops_statement.NewAppendOp(ctx.values.pop(), m.Trusting, m.Span()))
	return nil
}

// mustacheValue pushes the value of a mustache: a bare reference when it
// has no arguments, a helper call otherwise.
func (in *ingester) mustacheValue(ctx *emitContext, m *syntax.Mustache) error {
	switch name := scope.BuiltinName(m.Path); name {
	case scope.BuiltinHasBlock, scope.BuiltinHasBlockParams:
		return in.hasBlock(ctx, m, name)
	case scope.BuiltinYield, scope.BuiltinPartial, scope.BuiltinDebugger:
		return util.Errorf(util.ErrorKindStructure, m.Span(), "{{%s}} cannot be used as a value", name)
	}
	if len(m.Params) == 0 && hashLen(m.Hash) == 0 {
		return in.expression(ctx, m.Path, true)
	}
	return in.helper(ctx, m.Path, m.Params, m.Hash, m.Span())
}

func (in *ingester) hasBlock(ctx *emitContext, node syntax.Node, name string) error {
	symbol, ok := in.table.BlockSymbol(node)
	if !ok {
		return util.Errorf(util.ErrorKindInternal, node.Span(), "%s has no block symbol", name)
	}
	ctx.values.push(expression.NewHasBlockExpr(symbol, name == scope.BuiltinHasBlockParams, node.Span()))
	return nil
}

func (in *ingester) helper(ctx *emitContext, callee syntax.Expression, params []syntax.Expression, hash *syntax.Hash, span *util.ParseSourceSpan) error {
	name, err := calleeName(callee, "helper")
	if err != nil {
		return err
	}
	if err := in.arguments(ctx, params, hash); err != nil {
		return err
	}
	args, named := ctx.popArguments(params, hash)
	ctx.values.push(expression.NewHelperExpr(name, args, named, span))
	return nil
}

func (in *ingester) block(ctx *emitContext, b *syntax.Block) error {
	name, err := calleeName(b.Path, "block")
	if err != nil {
		return err
	}
	if err := in.arguments(ctx, b.Params, b.Hash); err != nil {
		return err
	}
	params, hash := ctx.popArguments(b.Params, b.Hash)
	blocks := &ops_statement.NamedBlocks{}
	if b.Program != nil {
		index, err := in.inlineBlock(b.Program)
		if err != nil {
			return err
		}
		blocks.Add(pipeline_convension.DefaultBlock, index)
	}
	if b.Inverse != nil {
		index, err := in.inlineBlock(b.Inverse)
		if err != nil {
			return err
		}
		blocks.Add(pipeline_convension.InverseBlock, index)
	}
	ctx.ops.Push(ops_statement.NewBlockOp(name, params, hash, blocks, b.Span()))
	return nil
}

// inlineBlock allocates a unit for program before lowering its body, so
// outer blocks take lower indices than the blocks nested in them.
func (in *ingester) inlineBlock(program *syntax.Program) (int, error) {
	var parameters []int
	if len(program.BlockParams) > 0 {
		parameters = in.table.ScopeOf(program).Locals()
	}
	unit := in.job.AllocateBlock(parameters)
	ctx := &emitContext{ops: unit.Ops, parent: parentBlock}
	if err := in.program(ctx, program.Body); err != nil {
		return 0, err
	}
	return unit.Index, nil
}

func (in *ingester) element(ctx *emitContext, el *syntax.Element) error {
	if name, ok := strings.CutPrefix(el.Tag, ":"); ok {
		return namedBlockOutsideComponent(ctx, el, name)
	}
	if res, ok := in.table.Tag(el); ok {
		ctx.values.push(expression.NewVariableExpr(res, false, el.Span()))
		return in.component(ctx, el, ops_statement.NewComponentOp(el.Tag, ctx.values.pop(), el.Span()))
	}
	tag := in.cfg.CustomizeTag(el.Tag)
	if util.IsUpper(tag) {
		return in.component(ctx, el, ops_statement.NewComponentOp(tag, nil, el.Span()))
	}
	return in.plainElement(ctx, el, tag)
}

func namedBlockOutsideComponent(ctx *emitContext, el *syntax.Element, name string) error {
	switch ctx.parent {
	case parentElement:
		return util.Errorf(util.ErrorKindStructure, el.Span(), "Unexpected named block <:%s> inside <%s> HTML element", name, ctx.tag)
	case parentNamedBlock:
		return util.Errorf(util.ErrorKindStructure, el.Span(), "Unexpected named block <:%s> nested in the named block <:%s>", name, ctx.tag)
	case parentBlock:
		return util.Errorf(util.ErrorKindStructure, el.Span(), "Unexpected named block <:%s> nested in a normal block", name)
	}
	return util.Errorf(util.ErrorKindStructure, el.Span(), "Unexpected named block <:%s> at the top-level of a template", name)
}

func (in *ingester) plainElement(ctx *emitContext, el *syntax.Element, tag string) error {
	if len(el.BlockParams) > 0 {
		return util.Errorf(util.ErrorKindStructure, el.Span(), "Unexpected block params in <%s>: simple elements cannot have block params", el.Tag)
	}
	splatted := false
	for _, attr := range el.Attributes {
		if strings.HasPrefix(attr.Name, "@") {
			return util.Errorf(util.ErrorKindStructure, attr.Span(), "Unexpected named argument %s on <%s>: arguments can only be passed to components", attr.Name, el.Tag)
		}
		if attr.Name == splattributes {
			splatted = true
		}
	}

	ctx.ops.Push(ops_statement.NewOpenElementOp(tag, len(el.Modifiers) == 0, splatted, el.Span()))
	for _, attr := range el.Attributes {
		op, err := in.attribute(ctx, attr, false)
		if err != nil {
			return err
		}
		ctx.ops.Push(op)
	}
	for _, modifier := range el.Modifiers {
		op, err := in.modifier(ctx, modifier)
		if err != nil {
			return err
		}
		ctx.ops.Push(op)
	}
	ctx.ops.Push(ops_statement.NewFlushElementOp())

	inner := &emitContext{ops: ctx.ops, parent: parentElement, tag: el.Tag}
	if err := in.program(inner, el.Children); err != nil {
		return err
	}
	ctx.ops.Push(ops_statement.NewCloseElementOp())
	return nil
}

// attribute lowers an attribute or an `...attributes` splat
func (in *ingester) attribute(ctx *emitContext, attr *syntax.Attr, component bool) (ir_operation.Op, error) {
	if attr.Name == splattributes {
		symbol, ok := in.table.BlockSymbol(attr)
		if !ok {
			return nil, util.NewParseError(util.ErrorKindInternal, attr.Span(), "...attributes has no block symbol")
		}
		return ops_statement.NewAttrSplatOp(symbol, attr.Span()), nil
	}
	if err := in.attrValue(ctx, attr.Value); err != nil {
		return nil, err
	}
	binding := ir.AttributeKindDynamic
	switch v := attr.Value.(type) {
	case *syntax.Text:
		binding = ir.AttributeKindStatic
	case *syntax.Mustache:
		if v.Trusting {
			binding = ir.AttributeKindTrusting
		}
	}
	return ops_statement.NewAttributeOp(attr.Name, "", ctx.values.pop(), binding, component, attr.Span()), nil
}

// attrValue pushes the value of an attribute; a concat pushes its parts and
// folds them into one operand.
func (in *ingester) attrValue(ctx *emitContext, value syntax.AttrValue) error {
	switch v := value.(type) {
	case *syntax.Text:
		ctx.values.push(expression.NewLiteralExpr(v.Chars, v.Span()))
		return nil
	case *syntax.Mustache:
		return in.attrMustache(ctx, v)
	case *syntax.Concat:
		for _, part := range v.Parts {
			switch p := part.(type) {
			case *syntax.Text:
				ctx.values.push(expression.NewLiteralExpr(p.Chars, p.Span()))
			case *syntax.Mustache:
				if err := in.attrMustache(ctx, p); err != nil {
					return err
				}
			default:
				return util.Errorf(util.ErrorKindInternal, part.Span(), "no lowering for attribute part %s", part.Kind())
			}
		}
		ctx.values.push(expression.NewConcatExpr(ctx.values.popN(len(v.Parts)), v.Span()))
		return nil
	}
	return util.Errorf(util.ErrorKindInternal, value.Span(), "no lowering for attribute value %s", value.Kind())
}

func (in *ingester) attrMustache(ctx *emitContext, m *syntax.Mustache) error {
	switch name := scope.BuiltinName(m.Path); name {
	case scope.BuiltinYield, scope.BuiltinPartial, scope.BuiltinDebugger:
		return util.Errorf(util.ErrorKindStructure, m.Span(), "{{%s}} cannot be used in an attribute position", name)
	}
	return in.mustacheValue(ctx, m)
}

func (in *ingester) modifier(ctx *emitContext, modifier *syntax.ElementModifier) (*ops_statement.ModifierOp, error) {
	name, err := calleeName(modifier.Path, "modifier")
	if err != nil {
		return nil, err
	}
	if err := in.arguments(ctx, modifier.Params, modifier.Hash); err != nil {
		return nil, err
	}
	params, hash := ctx.popArguments(modifier.Params, modifier.Hash)
	return ops_statement.NewModifierOp(name, params, hash, modifier.Span()), nil
}

func (in *ingester) component(ctx *emitContext, el *syntax.Element, op *ops_statement.ComponentOp) error {
	for _, attr := range el.Attributes {
		if strings.HasPrefix(attr.Name, "@") {
			if err := in.attrValue(ctx, attr.Value); err != nil {
				return err
			}
			op.Args.Add(attr.Name, ctx.values.pop())
			continue
		}
		attrOp, err := in.attribute(ctx, attr, true)
		if err != nil {
			return err
		}
		op.Attrs.Push(attrOp)
	}
	for _, modifier := range el.Modifiers {
		modOp, err := in.modifier(ctx, modifier)
		if err != nil {
			return err
		}
		op.Attrs.Push(modOp)
	}

	blocks, err := in.componentBlocks(el)
	if err != nil {
		return err
	}
	op.Blocks = blocks
	ctx.ops.Push(op)
	return nil
}

// componentBlocks lowers the children of a component invocation into either
// a single default block or the `<:name>` blocks it contains.
func (in *ingester) componentBlocks(el *syntax.Element) (*ops_statement.NamedBlocks, error) {
	named := false
	for _, child := range el.Children {
		if isNamedBlock(child) {
			named = true
			break
		}
	}
	if named {
		return in.namedBlocks(el)
	}

	if len(el.Children) == 0 && len(el.BlockParams) == 0 {
		return nil, nil
	}
	unit := in.job.AllocateBlock(in.elementParameters(el))
	ctx := &emitContext{ops: unit.Ops, parent: parentBlock}
	if err := in.program(ctx, el.Children); err != nil {
		return nil, err
	}
	blocks := &ops_statement.NamedBlocks{}
	blocks.Add(pipeline_convension.DefaultBlock, unit.Index)
	return blocks, nil
}

func (in *ingester) namedBlocks(el *syntax.Element) (*ops_statement.NamedBlocks, error) {
	blocks := &ops_statement.NamedBlocks{}
	for _, child := range el.Children {
		if isIgnorable(child) {
			continue
		}
		block, ok := child.(*syntax.Element)
		if !ok || !strings.HasPrefix(block.Tag, ":") {
			return nil, util.Errorf(util.ErrorKindStructure, child.Span(), "Unexpected content inside <%s> component invocation: when using named blocks, the tag cannot contain other content", el.Tag)
		}
		name := scope.CanonicalBlockName(strings.TrimPrefix(block.Tag, ":"))
		if blocks.Has(name) {
			return nil, util.Errorf(util.ErrorKindStructure, block.Span(), "Component had two named blocks with the same name, `<:%s>`. Only one block with a given name may be passed", name)
		}
		if len(block.Attributes) > 0 || len(block.Modifiers) > 0 {
			return nil, util.Errorf(util.ErrorKindStructure, block.Span(), "Named block <%s> cannot have attributes or modifiers", block.Tag)
		}
		unit := in.job.AllocateBlock(in.elementParameters(block))
		ctx := &emitContext{ops: unit.Ops, parent: parentNamedBlock, tag: strings.TrimPrefix(block.Tag, ":")}
		if err := in.program(ctx, block.Children); err != nil {
			return nil, err
		}
		blocks.Add(name, unit.Index)
	}
	return blocks, nil
}

func (in *ingester) elementParameters(el *syntax.Element) []int {
	if len(el.BlockParams) == 0 {
		return nil
	}
	return in.table.ScopeOf(el).Locals()
}

func isNamedBlock(stmt syntax.Statement) bool {
	el, ok := stmt.(*syntax.Element)
	return ok && strings.HasPrefix(el.Tag, ":")
}

// isIgnorable reports content allowed between named blocks
func isIgnorable(stmt syntax.Statement) bool {
	switch s := stmt.(type) {
	case *syntax.MustacheComment, *syntax.Comment:
		return true
	case *syntax.Text:
		return strings.TrimSpace(s.Chars) == ""
	}
	return false
}

// expression pushes a value-position expression. bare is set when expr is
// the whole content of a mustache.
func (in *ingester) expression(ctx *emitContext, expr syntax.Expression, bare bool) error {
	switch e := expr.(type) {
	case *syntax.Path:
		res, ok := in.table.Path(e)
		if !ok {
			return util.Errorf(util.ErrorKindInternal, e.Span(), "path %s was not resolved", e.Original)
		}
		ctx.values.push(expression.NewVariableExpr(res, bare, e.Span()))
		return nil
	case *syntax.SubExpression:
		switch name := scope.BuiltinName(e.Path); name {
		case scope.BuiltinHasBlock, scope.BuiltinHasBlockParams:
			return in.hasBlock(ctx, e, name)
		}
		return in.helper(ctx, e.Path, e.Params, e.Hash, e.Span())
	case *syntax.UndefinedLiteral:
		ctx.values.push(expression.NewUndefinedExpr(e.Span()))
		return nil
	}
	if value, ok := pipeline_convension.LiteralValue(expr); ok {
		ctx.values.push(expression.NewLiteralExpr(value, expr.Span()))
		return nil
	}
	return util.Errorf(util.ErrorKindInternal, expr.Span(), "no lowering for expression %s", expr.Kind())
}

func (in *ingester) params(ctx *emitContext, params []syntax.Expression) error {
	for _, param := range params {
		if err := in.expression(ctx, param, false); err != nil {
			return err
		}
	}
	return nil
}

// arguments pushes the positional arguments followed by the hash values
func (in *ingester) arguments(ctx *emitContext, params []syntax.Expression, hash *syntax.Hash) error {
	if err := in.params(ctx, params); err != nil {
		return err
	}
	if hash == nil {
		return nil
	}
	for _, pair := range hash.Pairs {
		if err := in.expression(ctx, pair.Value, false); err != nil {
			return err
		}
	}
	return nil
}

// calleeName returns the name invoked by a block, helper or modifier
func calleeName(callee syntax.Expression, role string) (string, error) {
	path, ok := callee.(*syntax.Path)
	if !ok {
		return "", util.Errorf(util.ErrorKindStructure, callee.Span(), "Expected a path as the %s name, found %s", role, callee.Kind())
	}
	return path.Original, nil
}

func hashLen(hash *syntax.Hash) int {
	if hash == nil {
		return 0
	}
	return len(hash.Pairs)
}
