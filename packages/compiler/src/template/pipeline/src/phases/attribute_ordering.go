package phases

import (
	ir_operation "gtc-go/packages/compiler/src/template/pipeline/ir/src/operations"
	ops_statement "gtc-go/packages/compiler/src/template/pipeline/ir/src/ops/statement"

	pipeline "gtc-go/packages/compiler/src/template/pipeline/src/compilation"
)

// OrderAttributes moves `type` attributes after the other attributes of
// their element, before any modifier. Inputs must know their type before
// other attributes such as `value` are applied.
func OrderAttributes(job *pipeline.TemplateCompilationJob) error {
	for unit := range job.Units() {
		orderAttributesIn(unit.Ops)
	}
	return nil
}

func orderAttributesIn(list *ir_operation.OpList) {
	var pending []*ops_statement.AttributeOp
	flush := func(before ir_operation.Op) {
		for _, attr := range pending {
			list.Remove(attr)
			list.InsertBefore(before, attr)
		}
		pending = nil
	}
	for op := range list.All() {
		switch o := op.(type) {
		case *ops_statement.AttributeOp:
			if o.Name == "type" {
				pending = append(pending, o)
			}
		case *ops_statement.AttrSplatOp:
		case *ops_statement.ComponentOp:
			orderAttributesIn(o.Attrs)
		default:
			if len(pending) > 0 {
				flush(op)
			}
		}
	}
	if len(pending) > 0 {
		flush(list.Tail())
	}
}
