package compilation

import (
	"iter"

	"gtc-go/packages/compiler/src/scope"
	ir_operation "gtc-go/packages/compiler/src/template/pipeline/ir/src/operations"
)

// BlockCompilationUnit is one statement list of the template: the root body
// or an inline block passed to a block helper or component.
type BlockCompilationUnit struct {
	// Index is the position in the job's block table; the root unit is -1.
	Index int
	Ops   *ir_operation.OpList
	// Parameters are the slots bound to the block's parameters, in order.
	Parameters []int
}

// TemplateCompilationJob is an entire ongoing compilation of one template
type TemplateCompilationJob struct {
	ModuleName string
	Table      *scope.Table
	Root       *BlockCompilationUnit
	Blocks     []*BlockCompilationUnit
}

// NewTemplateCompilationJob creates a new TemplateCompilationJob
func NewTemplateCompilationJob(moduleName string, table *scope.Table) *TemplateCompilationJob {
	return &TemplateCompilationJob{
		ModuleName: moduleName,
		Table:      table,
		Root:       &BlockCompilationUnit{Index: -1, Ops: ir_operation.NewOpList()},
	}
}

// AllocateBlock adds an inline block to the block table
func (j *TemplateCompilationJob) AllocateBlock(parameters []int) *BlockCompilationUnit {
	if parameters == nil {
		parameters = []int{}
	}
	unit := &BlockCompilationUnit{
		Index:      len(j.Blocks),
		Ops:        ir_operation.NewOpList(),
		Parameters: parameters,
	}
	j.Blocks = append(j.Blocks, unit)
	return unit
}

// Units yields the root unit followed by every inline block
func (j *TemplateCompilationJob) Units() iter.Seq[*BlockCompilationUnit] {
	return func(yield func(*BlockCompilationUnit) bool) {
		if !yield(j.Root) {
			return
		}
		for _, unit := range j.Blocks {
			if !yield(unit) {
				return
			}
		}
	}
}

// Symbols returns the names of the slots allocated for the template
func (j *TemplateCompilationJob) Symbols() []string {
	symbols := j.Table.Root.Symbols()
	if symbols == nil {
		symbols = []string{}
	}
	return symbols
}

// HasEval reports whether the template uses `partial` or `debugger`
func (j *TemplateCompilationJob) HasEval() bool {
	return j.Table.Root.HasEval
}
