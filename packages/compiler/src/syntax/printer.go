package syntax

import (
	"strings"

	"gtc-go/packages/compiler/src/ml_parser"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\u00a0", "&nbsp;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "\u00a0", "&nbsp;")
)

// Print renders node back to template source. Printing a parsed tree and
// parsing the result yields an equivalent tree.
func Print(node Node) string {
	p := &printer{}
	p.node(node)
	return p.out.String()
}

type printer struct {
	out strings.Builder
}

func (p *printer) write(s string) {
	p.out.WriteString(s)
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case *Program:
		p.statements(n.Body)
	case *Element:
		p.element(n)
	case *Attr:
		p.attr(n)
	case *Text:
		p.write(textEscaper.Replace(n.Chars))
	case *Concat:
		p.write(`"`)
		p.concatParts(n.Parts)
		p.write(`"`)
	case *Mustache:
		p.mustache(n)
	case *Block:
		p.block(n)
	case *ElementModifier:
		p.write("{{")
		p.call(n.Path, n.Params, n.Hash)
		p.write("}}")
	case *Comment:
		p.write("<!--" + n.Value + "-->")
	case *MustacheComment:
		p.write("{{!--" + n.Value + "--}}")
	case *SubExpression:
		p.write("(")
		p.call(n.Path, n.Params, n.Hash)
		p.write(")")
	case *Hash:
		for i, pair := range n.Pairs {
			if i > 0 {
				p.write(" ")
			}
			p.node(pair)
		}
	case *HashPair:
		p.write(n.Key + "=")
		p.node(n.Value)
	case *Path:
		p.write(n.Original)
	case *StringLiteral:
		p.write(`"` + strings.ReplaceAll(n.Value, `"`, `\"`) + `"`)
	case *NumberLiteral:
		if n.Original != "" {
			p.write(n.Original)
		} else {
			p.write(n.Value.String())
		}
	case *BooleanLiteral:
		if n.Value {
			p.write("true")
		} else {
			p.write("false")
		}
	case *NullLiteral:
		p.write("null")
	case *UndefinedLiteral:
		p.write("undefined")
	}
}

func (p *printer) statements(body []Statement) {
	for _, stmt := range body {
		p.node(stmt)
	}
}

func (p *printer) element(el *Element) {
	p.write("<" + el.Tag)
	for _, attr := range el.Attributes {
		p.write(" ")
		p.attr(attr)
	}
	for _, mod := range el.Modifiers {
		p.write(" ")
		p.node(mod)
	}
	for _, comment := range el.Comments {
		p.write(" ")
		p.node(comment)
	}
	p.blockParams(el.BlockParams)
	if el.SelfClosing {
		p.write(" />")
		return
	}
	p.write(">")
	if ml_parser.IsVoidElement(el.Tag) {
		return
	}
	p.statements(el.Children)
	p.write("</" + el.Tag + ">")
}

func (p *printer) attr(attr *Attr) {
	if text, ok := attr.Value.(*Text); ok {
		if text.Chars == "" {
			p.write(attr.Name)
			return
		}
		p.write(attr.Name + `="` + attrEscaper.Replace(text.Chars) + `"`)
		return
	}
	p.write(attr.Name + "=")
	p.node(attr.Value)
}

func (p *printer) concatParts(parts []ConcatPart) {
	for _, part := range parts {
		if text, ok := part.(*Text); ok {
			p.write(attrEscaper.Replace(text.Chars))
			continue
		}
		p.node(part)
	}
}

func (p *printer) blockParams(params []string) {
	if len(params) > 0 {
		p.write(" as |" + strings.Join(params, " ") + "|")
	}
}

func (p *printer) open(prefix string, strip bool) {
	p.write("{{")
	if strip {
		p.write("~")
	}
	p.write(prefix)
}

func (p *printer) close(strip bool) {
	if strip {
		p.write("~")
	}
	p.write("}}")
}

func (p *printer) mustache(m *Mustache) {
	if m.Trusting {
		p.open("{", m.Strip.Open)
		p.call(m.Path, m.Params, m.Hash)
		p.write("}")
		p.close(m.Strip.Close)
		return
	}
	p.open("", m.Strip.Open)
	p.call(m.Path, m.Params, m.Hash)
	p.close(m.Strip.Close)
}

func (p *printer) call(path Expression, params []Expression, hash *Hash) {
	p.node(path)
	for _, param := range params {
		p.write(" ")
		p.node(param)
	}
	if hash != nil && len(hash.Pairs) > 0 {
		p.write(" ")
		p.node(hash)
	}
}

func (p *printer) block(b *Block) {
	p.open("#", b.OpenStrip.Open)
	p.blockBody(b)
	p.open("/", b.CloseStrip.Open)
	p.node(b.Path)
	p.close(b.CloseStrip.Close)
}

// blockBody prints everything after the `{{#` of b up to its close tag. An
// `{{else if}}` chain is printed as a chain rather than as nested blocks.
func (p *printer) blockBody(b *Block) {
	p.call(b.Path, b.Params, b.Hash)
	if b.Program != nil {
		p.blockParams(b.Program.BlockParams)
	}
	p.close(b.OpenStrip.Close)
	if b.Program != nil {
		p.statements(b.Program.Body)
	}
	if b.Inverse == nil {
		return
	}
	if b.Inverse.Chained && len(b.Inverse.Body) == 1 {
		if chained, ok := b.Inverse.Body[0].(*Block); ok {
			p.open("else ", b.InverseStrip.Open)
			p.blockBody(chained)
			return
		}
	}
	p.open("else", b.InverseStrip.Open)
	p.close(b.InverseStrip.Close)
	p.statements(b.Inverse.Body)
}
