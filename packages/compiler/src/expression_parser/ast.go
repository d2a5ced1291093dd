package expression_parser

import (
	"gtc-go/packages/compiler/src/util"

	"github.com/shopspring/decimal"
)

// Node is implemented by every expression AST node
type Node interface {
	Span() *util.ParseSourceSpan
	Type() string
}

// Statement is a node that may appear in a Program body
type Statement interface {
	Node
	statement()
}

// Expression is a node that may appear in callee, param or hash value position
type Expression interface {
	Node
	expression()
}

// loc carries the source span of a node
type loc struct {
	SourceSpan *util.ParseSourceSpan
}

// Span returns the source span
func (l *loc) Span() *util.ParseSourceSpan {
	return l.SourceSpan
}

// StripFlags records `~` whitespace control markers on a delimiter pair
type StripFlags struct {
	Open  bool
	Close bool
}

// Program is an ordered list of statements, the body of a template or block
type Program struct {
	loc
	Body        []Statement
	BlockParams []string
	// Chained marks the synthetic program that wraps an `{{else if}}` link.
	Chained bool
}

// ContentStatement is raw markup between mustaches
type ContentStatement struct {
	loc
	Value    string
	Original string
}

// MustacheStatement is `{{path params hash}}` or its unescaped form
type MustacheStatement struct {
	loc
	Path    Expression
	Params  []Expression
	Hash    *Hash
	Escaped bool
	Strip   StripFlags
}

// DecoratorStatement is `{{* decorator}}`. It is parsed so it can be
// rejected with a precise location.
type DecoratorStatement struct {
	loc
	Path   Expression
	Params []Expression
	Hash   *Hash
	Strip  StripFlags
}

// BlockStatement is `{{#path}}…{{else}}…{{/path}}`
type BlockStatement struct {
	loc
	Path         Expression
	Params       []Expression
	Hash         *Hash
	Program      *Program
	Inverse      *Program
	OpenStrip    StripFlags
	InverseStrip StripFlags
	CloseStrip   StripFlags
	Decorator    bool
}

// PartialStatement is `{{> name}}`, or `{{#> name}}…{{/name}}` when Program
// is set.
type PartialStatement struct {
	loc
	Name    Expression
	Params  []Expression
	Hash    *Hash
	Program *Program
	Strip   StripFlags
}

// CommentStatement is `{{! … }}` or `{{!-- … --}}`
type CommentStatement struct {
	loc
	Value string
	Strip StripFlags
}

// PathExpression is a dotted or slashed lookup path
type PathExpression struct {
	loc
	// Data is set for `@name` paths.
	Data bool
	// Depth counts leading `../` segments.
	Depth int
	// Parts holds the segments with `this` and `..` removed.
	Parts    []string
	Original string
	// This is set when the path starts with `this`.
	This bool
}

// Head returns the first segment, or "" for a bare `this`
func (p *PathExpression) Head() string {
	if len(p.Parts) == 0 {
		return ""
	}
	return p.Parts[0]
}

// SubExpression is `(path params hash)`
type SubExpression struct {
	loc
	Path   Expression
	Params []Expression
	Hash   *Hash
}

// StringLiteral is a quoted string
type StringLiteral struct {
	loc
	Value    string
	Original string
}

// NumberLiteral is a decimal number. Value keeps the exact source digits.
type NumberLiteral struct {
	loc
	Value    decimal.Decimal
	Original string
}

// BooleanLiteral is `true` or `false`
type BooleanLiteral struct {
	loc
	Value    bool
	Original string
}

// NullLiteral is `null`
type NullLiteral struct {
	loc
}

// UndefinedLiteral is `undefined`
type UndefinedLiteral struct {
	loc
}

// Hash is an ordered list of `key=value` pairs
type Hash struct {
	loc
	Pairs []*HashPair
}

// HashPair is a single `key=value`
type HashPair struct {
	loc
	Key   string
	Value Expression
}

func (*Program) Type() string            { return "Program" }
func (*ContentStatement) Type() string   { return "ContentStatement" }
func (*MustacheStatement) Type() string  { return "MustacheStatement" }
func (*DecoratorStatement) Type() string { return "DecoratorStatement" }
func (*BlockStatement) Type() string     { return "BlockStatement" }
func (*PartialStatement) Type() string   { return "PartialStatement" }
func (*CommentStatement) Type() string   { return "CommentStatement" }
func (*PathExpression) Type() string     { return "PathExpression" }
func (*SubExpression) Type() string      { return "SubExpression" }
func (*StringLiteral) Type() string      { return "StringLiteral" }
func (*NumberLiteral) Type() string      { return "NumberLiteral" }
func (*BooleanLiteral) Type() string     { return "BooleanLiteral" }
func (*NullLiteral) Type() string        { return "NullLiteral" }
func (*UndefinedLiteral) Type() string   { return "UndefinedLiteral" }
func (*Hash) Type() string               { return "Hash" }
func (*HashPair) Type() string           { return "HashPair" }

func (*ContentStatement) statement()   {}
func (*MustacheStatement) statement()  {}
func (*DecoratorStatement) statement() {}
func (*BlockStatement) statement()     {}
func (*PartialStatement) statement()   {}
func (*CommentStatement) statement()   {}

func (*PathExpression) expression()   {}
func (*SubExpression) expression()    {}
func (*StringLiteral) expression()    {}
func (*NumberLiteral) expression()    {}
func (*BooleanLiteral) expression()   {}
func (*NullLiteral) expression()      {}
func (*UndefinedLiteral) expression() {}
