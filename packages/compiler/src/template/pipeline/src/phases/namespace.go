package phases

import (
	"strings"

	"gtc-go/packages/compiler/src/template/pipeline/ir"
	ir_operation "gtc-go/packages/compiler/src/template/pipeline/ir/src/operations"
	ops_statement "gtc-go/packages/compiler/src/template/pipeline/ir/src/ops/statement"

	pipeline "gtc-go/packages/compiler/src/template/pipeline/src/compilation"
)

// attributeNamespace returns the namespace URI of a prefixed attribute name,
// or "" for attributes in no namespace.
func attributeNamespace(name string) string {
	switch {
	case strings.HasPrefix(name, "xlink:"):
		return ir.NamespaceXLink
	case strings.HasPrefix(name, "xml:"):
		return ir.NamespaceXML
	case name == "xmlns", strings.HasPrefix(name, "xmlns:"):
		return ir.NamespaceXMLNS
	}
	return ""
}

// ResolveAttributeNamespaces sets the namespace of `xlink:`, `xml:` and
// `xmlns` attributes on elements and component invocations.
func ResolveAttributeNamespaces(job *pipeline.TemplateCompilationJob) error {
	for unit := range job.Units() {
		resolveNamespacesIn(unit.Ops)
	}
	return nil
}

func resolveNamespacesIn(list *ir_operation.OpList) {
	for op := range list.All() {
		switch o := op.(type) {
		case *ops_statement.AttributeOp:
			o.Namespace = attributeNamespace(o.Name)
		case *ops_statement.ComponentOp:
			resolveNamespacesIn(o.Attrs)
		}
	}
}
