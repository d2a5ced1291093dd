// Package inspect renders a compiled template as a readable HTML page
package inspect

import (
	"fmt"
	"io"
	"strconv"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"gtc-go/packages/compiler/src/wire_format"
)

// Report builds the inspection page of tpl: its identity, the symbol table
// and every statement list with opcodes spelled out.
func Report(tpl *wire_format.SerializedTemplate) (g.Node, error) {
	block, err := wire_format.DecodeBlock(tpl.Block)
	if err != nil {
		return nil, err
	}
	id := "null"
	if tpl.ID != nil {
		id = *tpl.ID
	}
	meta, err := wire_format.Marshal(tpl.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}

	blocks := make([]g.Node, 0, len(block.Blocks))
	for i, inline := range block.Blocks {
		blocks = append(blocks, h.Section(
			h.H3(g.Textf("Block %d", i)),
			h.P(g.Text("Parameters: "), h.Code(g.Text(slotList(inline.Parameters)))),
			statementList(inline.Statements),
		))
	}

	return h.Doctype(h.HTML(
		h.Head(
			h.Meta(h.Charset("utf-8")),
			h.TitleEl(g.Textf("Template %s", id)),
		),
		h.Body(
			h.H1(g.Textf("Template %s", id)),
			h.Dl(
				h.Dt(g.Text("Meta")), h.Dd(h.Code(g.Text(string(meta)))),
				h.Dt(g.Text("Has eval")), h.Dd(g.Text(strconv.FormatBool(block.HasEval))),
			),
			h.H2(g.Text("Symbols")),
			symbolTable(block.Symbols),
			h.H2(g.Text("Statements")),
			statementList(block.Statements),
			g.If(len(blocks) > 0, h.H2(g.Text("Blocks"))),
			g.Group(blocks),
		),
	)), nil
}

// Render writes the inspection page of tpl to w
func Render(w io.Writer, tpl *wire_format.SerializedTemplate) error {
	page, err := Report(tpl)
	if err != nil {
		return err
	}
	return page.Render(w)
}

func symbolTable(symbols []string) g.Node {
	rows := make([]g.Node, 0, len(symbols)+1)
	rows = append(rows, h.Tr(h.Td(g.Text("0")), h.Td(g.Text("this"))))
	for i, name := range symbols {
		rows = append(rows, h.Tr(h.Td(g.Text(strconv.Itoa(i+1))), h.Td(g.Text(name))))
	}
	return h.Table(
		h.THead(h.Tr(h.Th(g.Text("Slot")), h.Th(g.Text("Name")))),
		h.TBody(rows...),
	)
}

func statementList(statements []wire_format.Statement) g.Node {
	if len(statements) == 0 {
		return h.P(h.Em(g.Text("empty")))
	}
	return h.Ol(g.Map(statements, func(stmt wire_format.Statement) g.Node {
		return h.Li(statementRow(stmt))
	}))
}

func statementRow(stmt wire_format.Statement) g.Node {
	op, ok := wire_format.OpcodeOf(stmt)
	if !ok {
		return h.Code(g.Text(operands(stmt)))
	}
	return g.Group([]g.Node{
		h.Strong(h.Class("opcode"), g.Text(op.String())),
		g.Text(" "),
		h.Code(g.Text(operands(stmt[1:]))),
	})
}

func operands(values []any) string {
	data, err := wire_format.Marshal(values)
	if err != nil {
		return fmt.Sprint(values...)
	}
	return string(data)
}

func slotList(slots []int) string {
	data, err := wire_format.Marshal(slots)
	if err != nil {
		return fmt.Sprint(slots)
	}
	return string(data)
}
