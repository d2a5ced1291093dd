package syntax_test

import (
	"testing"

	"gtc-go/packages/compiler/src/syntax"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestPrint(t *testing.T) {
	cases := []struct {
		name     string
		node     syntax.Node
		expected string
	}{
		{
			name:     "should print a void element without an end tag",
			node:     b.Element("input", []*syntax.Attr{b.Attr("disabled", b.Text(""))}),
			expected: "<input disabled>",
		},
		{
			name: "should print interpolated attributes",
			node: b.Element("div", []*syntax.Attr{
				b.Attr("class", b.Concat(b.Text("a "), b.Mustache(b.Path("b"), nil, nil))),
				b.Attr("title", b.Mustache(b.Path("@title"), nil, nil)),
			}),
			expected: `<div class="a {{b}}" title={{@title}}></div>`,
		},
		{
			name:     "should escape text and attribute values",
			node:     b.Element("p", []*syntax.Attr{b.Attr("title", b.Text(`say "hi"`))}, b.Text("1 < 2 & 3")),
			expected: `<p title="say &quot;hi&quot;">1 &lt; 2 &amp; 3</p>`,
		},
		{
			name: "should print calls with params and hash",
			node: b.TrustedMustache(b.Path("format"), []syntax.Expression{
				b.String(`a"b`), b.Number(decimal.RequireFromString("1.5")), b.Boolean(false), b.Null(), b.Undefined(),
				b.Sexpr(b.Path("concat"), []syntax.Expression{b.Path("this.x")}, nil),
			}, b.Hash(b.Pair("key", b.Path("value")))),
			expected: `{{{format "a\"b" 1.5 false null undefined (concat this.x) key=value}}}`,
		},
		{
			name: "should print else-if chains flat",
			node: b.Block(b.Path("if"), []syntax.Expression{b.Path("a")}, nil,
				b.Program([]syntax.Statement{b.Text("x")}),
				&syntax.Program{Chained: true, Body: []syntax.Statement{
					b.Block(b.Path("if"), []syntax.Expression{b.Path("b")}, nil,
						b.Program([]syntax.Statement{b.Text("y")}),
						b.Program([]syntax.Statement{b.Text("z")}),
					),
				}},
			),
			expected: "{{#if a}}x{{else if b}}y{{else}}z{{/if}}",
		},
		{
			name: "should print block params and comments",
			node: b.Program([]syntax.Statement{
				b.Block(b.Path("each"), []syntax.Expression{b.Path("items")}, nil,
					b.Program([]syntax.Statement{b.Mustache(b.Path("item"), nil, nil)}, "item"),
					nil,
				),
				b.Comment(" html "),
				b.MustacheComment(" hbs "),
			}),
			expected: "{{#each items as |item|}}{{item}}{{/each}}<!-- html -->{{!-- hbs --}}",
		},
		{
			name: "should print element modifiers and block params",
			node: &syntax.Element{
				Tag:         "Foo",
				Modifiers:   []*syntax.ElementModifier{b.Modifier(b.Path("on"), []syntax.Expression{b.String("click"), b.Path("go")}, nil)},
				BlockParams: []string{"x"},
				SelfClosing: true,
			},
			expected: `<Foo {{on "click" go}} as |x| />`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.expected, syntax.Print(tc.node)); diff != "" {
				t.Errorf("Print() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
