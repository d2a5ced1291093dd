package syntax

import (
	"gtc-go/packages/compiler/src/util"

	"github.com/shopspring/decimal"
)

// NodeKind identifies the concrete type of a Node
type NodeKind int

const (
	KindProgram NodeKind = iota
	KindElement
	KindAttr
	KindText
	KindConcat
	KindMustache
	KindBlock
	KindElementModifier
	KindComment
	KindMustacheComment
	KindPath
	KindSubExpression
	KindStringLiteral
	KindNumberLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindUndefinedLiteral
	KindHash
	KindHashPair

	// KindAll registers a handler that runs for every node.
	KindAll NodeKind = -1
)

var kindNames = [...]string{
	KindProgram:          "Program",
	KindElement:          "Element",
	KindAttr:             "Attr",
	KindText:             "Text",
	KindConcat:           "Concat",
	KindMustache:         "Mustache",
	KindBlock:            "Block",
	KindElementModifier:  "ElementModifier",
	KindComment:          "Comment",
	KindMustacheComment:  "MustacheComment",
	KindPath:             "Path",
	KindSubExpression:    "SubExpression",
	KindStringLiteral:    "StringLiteral",
	KindNumberLiteral:    "NumberLiteral",
	KindBooleanLiteral:   "BooleanLiteral",
	KindNullLiteral:      "NullLiteral",
	KindUndefinedLiteral: "UndefinedLiteral",
	KindHash:             "Hash",
	KindHashPair:         "HashPair",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	if k == KindAll {
		return "All"
	}
	return "Unknown"
}

// Node is implemented by every node of the document tree
type Node interface {
	Kind() NodeKind
	Span() *util.ParseSourceSpan
}

// Statement is a node that can be a child of a Program or Element
type Statement interface {
	Node
	statement()
}

// Expression is a node in callee, param or hash value position
type Expression interface {
	Node
	expression()
}

// AttrValue is the value of an attribute: *Text, *Mustache or *Concat
type AttrValue interface {
	Node
	attrValue()
}

// ConcatPart is one part of an interpolated attribute: *Text or *Mustache
type ConcatPart interface {
	Node
	concatPart()
}

// Loc carries the source span of a node
type Loc struct {
	SourceSpan *util.ParseSourceSpan
}

// Span returns the source span
func (l *Loc) Span() *util.ParseSourceSpan {
	return l.SourceSpan
}

// StripFlags records `~` whitespace control markers
type StripFlags struct {
	Open  bool
	Close bool
}

// Program is an ordered list of statements: the template root or the body
// of a block.
type Program struct {
	Loc
	Body        []Statement
	BlockParams []string
	// Chained marks the inverse of an `{{else if}}` link.
	Chained bool
}

// Element is an HTML element or a component invocation
type Element struct {
	Loc
	Tag         string
	SelfClosing bool
	Attributes  []*Attr
	Modifiers   []*ElementModifier
	Comments    []*MustacheComment
	Children    []Statement
	BlockParams []string
}

// Attr is a single attribute, named argument or `...attributes` splat
type Attr struct {
	Loc
	Name  string
	Value AttrValue
}

// Text is a run of character data
type Text struct {
	Loc
	Chars string
	// LeftStripped and RightStripped record standalone stripping so that
	// whitespace normalization is not applied twice.
	LeftStripped  bool
	RightStripped bool
}

// Concat is an attribute value interpolating text and mustaches
type Concat struct {
	Loc
	Parts []ConcatPart
}

// Mustache is `{{expr}}`; Trusting is set for `{{{expr}}}` and `{{&expr}}`
type Mustache struct {
	Loc
	Path     Expression
	Params   []Expression
	Hash     *Hash
	Trusting bool
	Strip    StripFlags
}

// Block is `{{#path}}…{{else}}…{{/path}}`
type Block struct {
	Loc
	Path         Expression
	Params       []Expression
	Hash         *Hash
	Program      *Program
	Inverse      *Program
	OpenStrip    StripFlags
	InverseStrip StripFlags
	CloseStrip   StripFlags
}

// ElementModifier is a mustache in attribute position: `<div {{on "click" f}}>`
type ElementModifier struct {
	Loc
	Path   Expression
	Params []Expression
	Hash   *Hash
}

// Comment is an HTML comment
type Comment struct {
	Loc
	Value string
}

// MustacheComment is `{{! … }}`
type MustacheComment struct {
	Loc
	Value string
	Strip StripFlags
}

// Path is a variable reference such as `foo.bar`, `this.x` or `@arg`
type Path struct {
	Loc
	Original string
	// This is set when the path starts with `this`.
	This bool
	// Data is set for `@name` paths.
	Data bool
	// Parts holds the segments without `this` and `@`.
	Parts []string
}

// Head returns the first segment, or "" for a bare `this`
func (p *Path) Head() string {
	if len(p.Parts) == 0 {
		return ""
	}
	return p.Parts[0]
}

// Tail returns the segments after the head
func (p *Path) Tail() []string {
	if len(p.Parts) <= 1 {
		return nil
	}
	return p.Parts[1:]
}

// SubExpression is `(path params hash)`
type SubExpression struct {
	Loc
	Path   Expression
	Params []Expression
	Hash   *Hash
}

// StringLiteral is a quoted string
type StringLiteral struct {
	Loc
	Value string
}

// NumberLiteral is a number; Original keeps the source digits
type NumberLiteral struct {
	Loc
	Value    decimal.Decimal
	Original string
}

// BooleanLiteral is `true` or `false`
type BooleanLiteral struct {
	Loc
	Value bool
}

// NullLiteral is `null`
type NullLiteral struct {
	Loc
}

// UndefinedLiteral is `undefined`
type UndefinedLiteral struct {
	Loc
}

// Hash is an ordered list of named arguments
type Hash struct {
	Loc
	Pairs []*HashPair
}

// Get returns the value of key, or nil
func (h *Hash) Get(key string) Expression {
	if h == nil {
		return nil
	}
	for _, pair := range h.Pairs {
		if pair.Key == key {
			return pair.Value
		}
	}
	return nil
}

// HashPair is `key=value`
type HashPair struct {
	Loc
	Key   string
	Value Expression
}

func (*Program) Kind() NodeKind          { return KindProgram }
func (*Element) Kind() NodeKind          { return KindElement }
func (*Attr) Kind() NodeKind             { return KindAttr }
func (*Text) Kind() NodeKind             { return KindText }
func (*Concat) Kind() NodeKind           { return KindConcat }
func (*Mustache) Kind() NodeKind         { return KindMustache }
func (*Block) Kind() NodeKind            { return KindBlock }
func (*ElementModifier) Kind() NodeKind  { return KindElementModifier }
func (*Comment) Kind() NodeKind          { return KindComment }
func (*MustacheComment) Kind() NodeKind  { return KindMustacheComment }
func (*Path) Kind() NodeKind             { return KindPath }
func (*SubExpression) Kind() NodeKind    { return KindSubExpression }
func (*StringLiteral) Kind() NodeKind    { return KindStringLiteral }
func (*NumberLiteral) Kind() NodeKind    { return KindNumberLiteral }
func (*BooleanLiteral) Kind() NodeKind   { return KindBooleanLiteral }
func (*NullLiteral) Kind() NodeKind      { return KindNullLiteral }
func (*UndefinedLiteral) Kind() NodeKind { return KindUndefinedLiteral }
func (*Hash) Kind() NodeKind             { return KindHash }
func (*HashPair) Kind() NodeKind         { return KindHashPair }

func (*Element) statement()         {}
func (*Text) statement()            {}
func (*Mustache) statement()        {}
func (*Block) statement()           {}
func (*Comment) statement()         {}
func (*MustacheComment) statement() {}

func (*Path) expression()             {}
func (*SubExpression) expression()    {}
func (*StringLiteral) expression()    {}
func (*NumberLiteral) expression()    {}
func (*BooleanLiteral) expression()   {}
func (*NullLiteral) expression()      {}
func (*UndefinedLiteral) expression() {}

func (*Text) attrValue()     {}
func (*Mustache) attrValue() {}
func (*Concat) attrValue()   {}

func (*Text) concatPart()     {}
func (*Mustache) concatPart() {}

// IsLiteral reports whether expr is a literal
func IsLiteral(expr Expression) bool {
	switch expr.(type) {
	case *StringLiteral, *NumberLiteral, *BooleanLiteral, *NullLiteral, *UndefinedLiteral:
		return true
	}
	return false
}
