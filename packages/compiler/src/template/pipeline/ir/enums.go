package ir

import "fmt"

// OpKind distinguishes different kinds of IR operations
type OpKind int

const (
	// OpKindListEnd - A special operation which is used to represent the beginning and end nodes of a linked list of operations
	OpKindListEnd OpKind = iota
	// OpKindText - Static character data
	OpKindText
	// OpKindComment - An HTML comment
	OpKindComment
	// OpKindAppend - Inserts the value of an expression
	OpKindAppend
	// OpKindOpenElement - Begins a plain element
	OpKindOpenElement
	// OpKindFlushElement - Ends the attribute list of an open element
	OpKindFlushElement
	// OpKindCloseElement - Closes the element opened last
	OpKindCloseElement
	// OpKindAttribute - An attribute on a plain element or a component
	OpKindAttribute
	// OpKindAttrSplat - Applies the attributes passed to the template as `...attributes`
	OpKindAttrSplat
	// OpKindModifier - An element modifier
	OpKindModifier
	// OpKindBlock - A block helper invocation with its inline blocks
	OpKindBlock
	// OpKindComponent - A component invocation, static or dynamic
	OpKindComponent
	// OpKindYield - Invokes a named block passed to the template
	OpKindYield
	// OpKindPartial - Renders a partial looked up at runtime
	OpKindPartial
	// OpKindDebugger - Breaks into the debugger with the visible symbols
	OpKindDebugger
)

var opKindNames = [...]string{
	OpKindListEnd:      "ListEnd",
	OpKindText:         "Text",
	OpKindComment:      "Comment",
	OpKindAppend:       "Append",
	OpKindOpenElement:  "OpenElement",
	OpKindFlushElement: "FlushElement",
	OpKindCloseElement: "CloseElement",
	OpKindAttribute:    "Attribute",
	OpKindAttrSplat:    "AttrSplat",
	OpKindModifier:     "Modifier",
	OpKindBlock:        "Block",
	OpKindComponent:    "Component",
	OpKindYield:        "Yield",
	OpKindPartial:      "Partial",
	OpKindDebugger:     "Debugger",
}

func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// ExpressionKind distinguishes different kinds of IR expressions
type ExpressionKind int

const (
	// ExpressionKindLiteral - A string, number, boolean or null
	ExpressionKindLiteral ExpressionKind = iota
	// ExpressionKindUndefined - The `undefined` literal, which has no JSON form
	ExpressionKindUndefined
	// ExpressionKindVariable - A resolved path reference awaiting symbol allocation
	ExpressionKindVariable
	// ExpressionKindGetSymbol - Reads a slot and walks a property tail
	ExpressionKindGetSymbol
	// ExpressionKindMaybeLocal - A free path left to the runtime's fallback lookup
	ExpressionKindMaybeLocal
	// ExpressionKindUnknown - A bare free identifier that may name a helper or a property
	ExpressionKindUnknown
	// ExpressionKindHelper - A helper call
	ExpressionKindHelper
	// ExpressionKindConcat - An interpolated attribute value
	ExpressionKindConcat
	// ExpressionKindHasBlock - `has-block` query
	ExpressionKindHasBlock
	// ExpressionKindHasBlockParams - `has-block-params` query
	ExpressionKindHasBlockParams
)

var expressionKindNames = [...]string{
	ExpressionKindLiteral:        "Literal",
	ExpressionKindUndefined:      "Undefined",
	ExpressionKindVariable:       "Variable",
	ExpressionKindGetSymbol:      "GetSymbol",
	ExpressionKindMaybeLocal:     "MaybeLocal",
	ExpressionKindUnknown:        "Unknown",
	ExpressionKindHelper:         "Helper",
	ExpressionKindConcat:         "Concat",
	ExpressionKindHasBlock:       "HasBlock",
	ExpressionKindHasBlockParams: "HasBlockParams",
}

func (k ExpressionKind) String() string {
	if k >= 0 && int(k) < len(expressionKindNames) {
		return expressionKindNames[k]
	}
	return fmt.Sprintf("ExpressionKind(%d)", int(k))
}

// AttributeKind is how an attribute value is bound
type AttributeKind int

const (
	// AttributeKindStatic - A value known at compile time
	AttributeKindStatic AttributeKind = iota
	// AttributeKindDynamic - An escaped dynamic value
	AttributeKindDynamic
	// AttributeKindTrusting - A dynamic value from a triple-stash, not escaped
	AttributeKindTrusting
)

// Namespace URIs for namespaced attributes
const (
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXML   = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS = "http://www.w3.org/2000/xmlns/"
)
