package phases

import (
	"gtc-go/packages/compiler/src/scope"
	"gtc-go/packages/compiler/src/template/pipeline/ir/src/expression"
	ops_statement "gtc-go/packages/compiler/src/template/pipeline/ir/src/ops/statement"
	"gtc-go/packages/compiler/src/util"

	pipeline "gtc-go/packages/compiler/src/template/pipeline/src/compilation"
)

// AllocateSymbols replaces every resolved variable with its wire operand:
// locals, named arguments and `this` become symbol reads, free paths become
// runtime lookups.
func AllocateSymbols(job *pipeline.TemplateCompilationJob) error {
	for unit := range job.Units() {
		for op := range unit.Ops.All() {
			if err := ops_statement.TransformExpressionsInOp(op, materializeVariable); err != nil {
				return err
			}
		}
	}
	return nil
}

func materializeVariable(expr expression.Expression) (expression.Expression, error) {
	variable, ok := expr.(*expression.VariableExpr)
	if !ok {
		return expr, nil
	}
	res := variable.Resolution
	span := variable.GetSourceSpan()
	tail := res.Tail
	if tail == nil {
		tail = []string{}
	}
	switch res.Kind {
	case scope.This:
		return expression.NewGetSymbolExpr(0, tail, span), nil
	case scope.Local, scope.Named:
		return expression.NewGetSymbolExpr(res.Slot, tail, span), nil
	case scope.Unresolved:
		if variable.Bare && len(res.Tail) == 0 {
			return expression.NewUnknownExpr(res.Name, span), nil
		}
		return expression.NewMaybeLocalExpr(append([]string{res.Name}, res.Tail...), span), nil
	}
	return nil, util.Errorf(util.ErrorKindInternal, span, "no symbol allocation for resolution %s", res.Kind)
}
