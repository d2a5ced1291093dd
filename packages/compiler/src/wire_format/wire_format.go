package wire_format

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Opcode is the first element of every serialized statement and of every
// non-literal expression
type Opcode int

const (
	OpText Opcode = iota
	OpAppend
	OpComment
	OpModifier
	OpBlock
	OpComponent
	OpDynamicComponent
	OpOpenElement
	OpOpenSplattedElement
	OpFlushElement
	OpCloseElement
	OpStaticAttr
	OpDynamicAttr
	OpComponentAttr
	OpAttrSplat
	OpYield
	OpPartial
	OpTrustingAttr
	OpTrustingComponentAttr
	OpDebugger

	OpUnknown
	OpGet
	OpMaybeLocal
	OpHasBlock
	OpHasBlockParams
	OpUndefined
	OpHelper
	OpConcat
)

var opcodeNames = [...]string{
	OpText:                  "Text",
	OpAppend:                "Append",
	OpComment:               "Comment",
	OpModifier:              "Modifier",
	OpBlock:                 "Block",
	OpComponent:             "Component",
	OpDynamicComponent:      "DynamicComponent",
	OpOpenElement:           "OpenElement",
	OpOpenSplattedElement:   "OpenSplattedElement",
	OpFlushElement:          "FlushElement",
	OpCloseElement:          "CloseElement",
	OpStaticAttr:            "StaticAttr",
	OpDynamicAttr:           "DynamicAttr",
	OpComponentAttr:         "ComponentAttr",
	OpAttrSplat:             "AttrSplat",
	OpYield:                 "Yield",
	OpPartial:               "Partial",
	OpTrustingAttr:          "TrustingAttr",
	OpTrustingComponentAttr: "TrustingComponentAttr",
	OpDebugger:              "Debugger",
	OpUnknown:               "Unknown",
	OpGet:                   "Get",
	OpMaybeLocal:            "MaybeLocal",
	OpHasBlock:              "HasBlock",
	OpHasBlockParams:        "HasBlockParams",
	OpUndefined:             "Undefined",
	OpHelper:                "Helper",
	OpConcat:                "Concat",
}

func (o Opcode) String() string {
	if o >= 0 && int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// IsStatement reports whether o opens a statement
func (o Opcode) IsStatement() bool {
	return o >= OpText && o <= OpDebugger
}

// Statement is a serialized statement: an opcode followed by its operands
type Statement []any

// Expression is a serialized expression: a JSON literal or an opcode array
type Expression = any

// SerializedInlineBlock is the body of a block or component invocation
type SerializedInlineBlock struct {
	Statements []Statement `json:"statements"`
	Parameters []int       `json:"parameters"`
}

// SerializedTemplateBlock is the compiled program of one template. Blocks
// are referenced from statements by index.
type SerializedTemplateBlock struct {
	Symbols    []string                `json:"symbols"`
	Statements []Statement             `json:"statements"`
	Blocks     []SerializedInlineBlock `json:"blocks"`
	HasEval    bool                    `json:"hasEval"`
}

// SerializedTemplate is the output of one compile. Block holds the JSON text
// of a SerializedTemplateBlock.
type SerializedTemplate struct {
	ID    *string        `json:"id"`
	Block string         `json:"block"`
	Meta  map[string]any `json:"meta"`
}

// Marshal encodes v without HTML escaping, so that markup in text and
// attribute values is kept as written.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeBlock parses the block payload of a SerializedTemplate. Numbers are
// kept as json.Number.
func DecodeBlock(data string) (*SerializedTemplateBlock, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var block SerializedTemplateBlock
	if err := dec.Decode(&block); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	if err := checkStatements(block.Statements); err != nil {
		return nil, err
	}
	for i, inline := range block.Blocks {
		if err := checkStatements(inline.Statements); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return &block, nil
}

func checkStatements(statements []Statement) error {
	for i, stmt := range statements {
		op, ok := OpcodeOf(stmt)
		if !ok || !op.IsStatement() {
			return fmt.Errorf("decode block: statement %d does not start with a statement opcode", i)
		}
	}
	return nil
}

// OpcodeOf returns the opcode heading a decoded statement or expression.
func OpcodeOf(v any) (Opcode, bool) {
	var head any
	switch x := v.(type) {
	case Statement:
		if len(x) == 0 {
			return 0, false
		}
		head = x[0]
	case []any:
		if len(x) == 0 {
			return 0, false
		}
		head = x[0]
	default:
		return 0, false
	}
	switch n := head.(type) {
	case Opcode:
		return n, true
	case int:
		return Opcode(n), true
	case float64:
		return Opcode(int(n)), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return Opcode(i), true
	}
	return 0, false
}
