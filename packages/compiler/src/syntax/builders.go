package syntax

import (
	"strings"

	"gtc-go/packages/compiler/src/util"

	"github.com/shopspring/decimal"
)

// Builders creates synthetic nodes for plugins and tests. Every node it
// returns carries a synthetic span.
type Builders struct{}

// B is the shared builder value
var B Builders

func synthetic() Loc {
	return Loc{SourceSpan: util.Synthetic()}
}

// Program builds a Program
func (Builders) Program(body []Statement, blockParams ...string) *Program {
	return &Program{Loc: synthetic(), Body: body, BlockParams: blockParams}
}

// Text builds a Text node
func (Builders) Text(chars string) *Text {
	return &Text{Loc: synthetic(), Chars: chars}
}

// Comment builds an HTML comment
func (Builders) Comment(value string) *Comment {
	return &Comment{Loc: synthetic(), Value: value}
}

// MustacheComment builds a mustache comment
func (Builders) MustacheComment(value string) *MustacheComment {
	return &MustacheComment{Loc: synthetic(), Value: value}
}

// Path parses original into a Path: `this`, `this.a.b`, `@a.b` or `a.b`
func (Builders) Path(original string) *Path {
	path := &Path{Loc: synthetic(), Original: original}
	rest := original
	switch {
	case rest == "this":
		path.This = true
		rest = ""
	case strings.HasPrefix(rest, "this."):
		path.This = true
		rest = rest[len("this."):]
	case strings.HasPrefix(rest, "@"):
		path.Data = true
		rest = rest[1:]
	}
	if rest != "" {
		path.Parts = strings.Split(rest, ".")
	}
	return path
}

// Mustache builds an escaped mustache
func (Builders) Mustache(path Expression, params []Expression, hash *Hash) *Mustache {
	return &Mustache{Loc: synthetic(), Path: path, Params: params, Hash: hash}
}

// TrustedMustache builds an unescaped mustache
func (b Builders) TrustedMustache(path Expression, params []Expression, hash *Hash) *Mustache {
	m := b.Mustache(path, params, hash)
	m.Trusting = true
	return m
}

// Block builds a block statement
func (Builders) Block(path Expression, params []Expression, hash *Hash, program, inverse *Program) *Block {
	return &Block{Loc: synthetic(), Path: path, Params: params, Hash: hash, Program: program, Inverse: inverse}
}

// Element builds an element with attributes and children
func (Builders) Element(tag string, attributes []*Attr, children ...Statement) *Element {
	return &Element{Loc: synthetic(), Tag: tag, Attributes: attributes, Children: children}
}

// Attr builds an attribute
func (Builders) Attr(name string, value AttrValue) *Attr {
	return &Attr{Loc: synthetic(), Name: name, Value: value}
}

// Concat builds an interpolated attribute value
func (Builders) Concat(parts ...ConcatPart) *Concat {
	return &Concat{Loc: synthetic(), Parts: parts}
}

// Modifier builds an element modifier
func (Builders) Modifier(path Expression, params []Expression, hash *Hash) *ElementModifier {
	return &ElementModifier{Loc: synthetic(), Path: path, Params: params, Hash: hash}
}

// Sexpr builds a sub-expression
func (Builders) Sexpr(path Expression, params []Expression, hash *Hash) *SubExpression {
	return &SubExpression{Loc: synthetic(), Path: path, Params: params, Hash: hash}
}

// String builds a string literal
func (Builders) String(value string) *StringLiteral {
	return &StringLiteral{Loc: synthetic(), Value: value}
}

// Number builds a number literal
func (Builders) Number(value decimal.Decimal) *NumberLiteral {
	return &NumberLiteral{Loc: synthetic(), Value: value, Original: value.String()}
}

// Boolean builds a boolean literal
func (Builders) Boolean(value bool) *BooleanLiteral {
	return &BooleanLiteral{Loc: synthetic(), Value: value}
}

// Null builds `null`
func (Builders) Null() *NullLiteral {
	return &NullLiteral{Loc: synthetic()}
}

// Undefined builds `undefined`
func (Builders) Undefined() *UndefinedLiteral {
	return &UndefinedLiteral{Loc: synthetic()}
}

// Hash builds a hash from pairs
func (Builders) Hash(pairs ...*HashPair) *Hash {
	return &Hash{Loc: synthetic(), Pairs: pairs}
}

// Pair builds a hash pair
func (Builders) Pair(key string, value Expression) *HashPair {
	return &HashPair{Loc: synthetic(), Key: key, Value: value}
}
