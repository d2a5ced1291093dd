package pipeline

import (
	"fmt"

	"gtc-go/packages/compiler/src/wire_format"

	pipeline_compilation "gtc-go/packages/compiler/src/template/pipeline/src/compilation"
	"gtc-go/packages/compiler/src/template/pipeline/src/phases"
)

// Phase represents a compilation phase
type Phase struct {
	Name string
	Fn   func(*pipeline_compilation.TemplateCompilationJob) error
}

var phasesList = []Phase{
	{"resolveAttributeNamespaces", phases.ResolveAttributeNamespaces},
	{"orderAttributes", phases.OrderAttributes},
	{"allocateSymbols", phases.AllocateSymbols},
}

// Phases returns the names of the transformation phases in the order they run
func Phases() []string {
	names := make([]string, len(phasesList))
	for i, phase := range phasesList {
		names[i] = phase.Name
	}
	return names
}

// Transform runs all transformation phases in the correct order against a compilation job.
// After this processing, the compilation should be in a state where it can be emitted.
func Transform(job *pipeline_compilation.TemplateCompilationJob) error {
	for _, phase := range phasesList {
		if err := phase.Fn(job); err != nil {
			return fmt.Errorf("phase %s: %w", phase.Name, err)
		}
	}
	return nil
}

// Emit transforms the job and encodes it as a wire-format template block
func Emit(job *pipeline_compilation.TemplateCompilationJob) (*wire_format.SerializedTemplateBlock, error) {
	if err := Transform(job); err != nil {
		return nil, err
	}
	return phases.Reify(job)
}
