package pipeline_test

import (
	"errors"
	"testing"

	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/scope"
	"gtc-go/packages/compiler/src/template_parser"
	"gtc-go/packages/compiler/src/util"
	"gtc-go/packages/compiler/src/wire_format"

	pipeline "gtc-go/packages/compiler/src/template/pipeline/src"

	"github.com/google/go-cmp/cmp"
)

func lower(source string, opts ...config.CompilerConfigOption) (*wire_format.SerializedTemplateBlock, error) {
	cfg := config.NewCompilerConfig(opts...)
	result, err := template_parser.PreprocessFile(util.NewParseSourceFile(source, ""), cfg)
	if err != nil {
		return nil, err
	}
	table, err := scope.Resolve(result.Root)
	if err != nil {
		return nil, err
	}
	job, err := pipeline.Ingest(result.Root, table, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.Emit(job)
}

func compileBlock(t *testing.T, source string, opts ...config.CompilerConfigOption) *wire_format.SerializedTemplateBlock {
	t.Helper()
	block, err := lower(source, opts...)
	if err != nil {
		t.Fatalf("unexpected error compiling %q: %v", source, err)
	}
	return block
}

func lowerError(t *testing.T, source string) *util.ParseError {
	t.Helper()
	_, err := lower(source)
	var perr *util.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a ParseError for %q, got %v", source, err)
	}
	return perr
}

// humanizeStatements renders each statement as its JSON text
func humanizeStatements(t *testing.T, statements []wire_format.Statement) []string {
	t.Helper()
	out := []string{}
	for _, stmt := range statements {
		data, err := wire_format.Marshal(stmt)
		if err != nil {
			t.Fatalf("failed to encode statement: %v", err)
		}
		out = append(out, string(data))
	}
	return out
}

func expectStatements(t *testing.T, source string, expected []string, opts ...config.CompilerConfigOption) *wire_format.SerializedTemplateBlock {
	t.Helper()
	block := compileBlock(t, source, opts...)
	if diff := cmp.Diff(expected, humanizeStatements(t, block.Statements)); diff != "" {
		t.Errorf("statements of %q mismatch (-want +got):\n%s", source, diff)
	}
	return block
}

func expectSymbols(t *testing.T, block *wire_format.SerializedTemplateBlock, expected []string) {
	t.Helper()
	if diff := cmp.Diff(expected, block.Symbols); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerElements(t *testing.T) {
	t.Run("should lower a plain element with a static attribute", func(t *testing.T) {
		block := expectStatements(t, `<div class="a">hi</div>`, []string{
			`[7,"div",true]`,
			`[11,"class","a"]`,
			`[9]`,
			`[0,"hi"]`,
			`[10]`,
		})
		expectSymbols(t, block, []string{})
		if len(block.Blocks) != 0 || block.HasEval {
			t.Errorf("expected no blocks and no eval, got %d blocks, hasEval=%v", len(block.Blocks), block.HasEval)
		}
	})

	t.Run("should lower dynamic, trusting and interpolated attributes", func(t *testing.T) {
		expectStatements(t, `<div id={{id}} title={{{t}}} class="a {{b}} c"></div>`, []string{
			`[7,"div",true]`,
			`[12,"id",[20,"id"]]`,
			`[17,"title",[20,"t"]]`,
			`[12,"class",[27,["a ",[20,"b"]," c"]]]`,
			`[9]`,
			`[10]`,
		})
	})

	t.Run("should keep operand order across nested calls", func(t *testing.T) {
		expectStatements(t, `<div class="x {{join (up a) b sep=(low c)}}" {{on "click" (fn d) once=true}}></div>`, []string{
			`[7,"div",false]`,
			`[12,"class",[27,["x ",[26,"join",[[26,"up",[[22,["a"]]],null],[22,["b"]]],[["sep"],[[26,"low",[[22,["c"]]],null]]]]]]]`,
			`[3,"on",["click",[26,"fn",[[22,["d"]]],null]],[["once"],[true]]]`,
			`[9]`,
			`[10]`,
		})
	})

	t.Run("should mark elements with modifiers as not simple", func(t *testing.T) {
		expectStatements(t, `<button {{on "click" this.go}}>x</button>`, []string{
			`[7,"button",false]`,
			`[3,"on",["click",[21,0,["go"]]],null]`,
			`[9]`,
			`[0,"x"]`,
			`[10]`,
		})
	})

	t.Run("should open a splatted element for ...attributes", func(t *testing.T) {
		block := expectStatements(t, `<div ...attributes class="a"></div>`, []string{
			`[8,"div"]`,
			`[14,1]`,
			`[11,"class","a"]`,
			`[9]`,
			`[10]`,
		})
		expectSymbols(t, block, []string{"&attrs"})
	})

	t.Run("should emit the type attribute after the other attributes", func(t *testing.T) {
		expectStatements(t, `<input type="text" value={{v}} class="c">`, []string{
			`[7,"input",true]`,
			`[12,"value",[20,"v"]]`,
			`[11,"class","c"]`,
			`[11,"type","text"]`,
			`[9]`,
			`[10]`,
		})
	})

	t.Run("should attach the namespace of prefixed attributes", func(t *testing.T) {
		expectStatements(t, `<svg xlink:href="#a"></svg>`, []string{
			`[7,"svg",true]`,
			`[11,"xlink:href","#a","http://www.w3.org/1999/xlink"]`,
			`[9]`,
			`[10]`,
		})
	})

	t.Run("should keep HTML comments and drop mustache comments", func(t *testing.T) {
		expectStatements(t, `<!-- hi -->{{! gone }}`, []string{`[2," hi "]`})
	})
}

func TestLowerMustaches(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		expected []string
		symbols  []string
	}{
		{"should lower a bare free identifier to Unknown", `{{foo}}`, []string{`[1,[20,"foo"],false]`}, []string{}},
		{"should lower a free path to MaybeLocal", `{{foo.bar}}`, []string{`[1,[22,["foo","bar"]],false]`}, []string{}},
		{"should lower this paths to slot 0", `{{{this.x}}}`, []string{`[1,[21,0,["x"]],true]`}, []string{}},
		{"should lower named arguments to their slot", `{{@name.first}}`, []string{`[1,[21,1,["first"]],false]`}, []string{"@name"}},
		{
			"should lower helper calls with literals",
			`{{concat "a" 1.50 true null undefined foo}}`,
			[]string{`[1,[26,"concat",["a",1.5,true,null,[25],[22,["foo"]]],null],false]`},
			[]string{},
		},
		{
			"should lower hash arguments in order",
			`{{t "k" b=1 a=x}}`,
			[]string{`[1,[26,"t",["k"],[["b","a"],[1,[22,["x"]]]]],false]`},
			[]string{},
		},
		{
			"should lower sub-expressions to nested helpers",
			`{{if (eq a b) "y"}}`,
			[]string{`[1,[26,"if",[[26,"eq",[[22,["a"]],[22,["b"]]],null],"y"],null],false]`},
			[]string{},
		},
		{"should lower has-block", `{{has-block "foo"}}`, []string{`[1,[23,1],false]`}, []string{"&foo"}},
		{
			"should lower has-block-params in sub-expressions",
			`{{if (has-block-params) "y"}}`,
			[]string{`[1,[26,"if",[[24,1],"y"],null],false]`},
			[]string{"&default"},
		},
		{"should lower yield to its block slot", `{{yield 1 to="inverse"}}`, []string{`[15,1,[1]]`}, []string{"&else"}},
		{"should lower a bare yield without params", `{{yield}}`, []string{`[15,1,null]`}, []string{"&default"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			block := expectStatements(t, tc.source, tc.expected)
			expectSymbols(t, block, tc.symbols)
		})
	}
}

func TestLowerBlocks(t *testing.T) {
	t.Run("should lower a block with block params and an inverse", func(t *testing.T) {
		block := expectStatements(t, `{{#each items as |item|}}{{item.name}}{{else}}none{{/each}}`, []string{
			`[4,"each",[[22,["items"]]],null,[["default","else"],[0,1]]]`,
		})
		expectSymbols(t, block, []string{"item"})
		if diff := cmp.Diff([]string{`[1,[21,1,["name"]],false]`}, humanizeStatements(t, block.Blocks[0].Statements)); diff != "" {
			t.Errorf("default block mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{1}, block.Blocks[0].Parameters); diff != "" {
			t.Errorf("default parameters mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{`[0,"none"]`}, humanizeStatements(t, block.Blocks[1].Statements)); diff != "" {
			t.Errorf("inverse block mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{}, block.Blocks[1].Parameters); diff != "" {
			t.Errorf("inverse parameters mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should allocate outer blocks before the blocks nested in them", func(t *testing.T) {
		block := expectStatements(t, `{{#if a}}{{#if b}}x{{/if}}{{else}}y{{/if}}`, []string{
			`[4,"if",[[22,["a"]]],null,[["default","else"],[0,2]]]`,
		})
		expected := [][]string{
			{`[4,"if",[[22,["b"]]],null,[["default"],[1]]]`},
			{`[0,"x"]`},
			{`[0,"y"]`},
		}
		var got [][]string
		for _, inline := range block.Blocks {
			got = append(got, humanizeStatements(t, inline.Statements))
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("blocks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should shadow outer names with block params", func(t *testing.T) {
		block := compileBlock(t, `{{#let a as |x|}}{{#let b as |x|}}{{x}}{{/let}}{{x}}{{/let}}`)
		expectSymbols(t, block, []string{"x", "x"})
		inner := humanizeStatements(t, block.Blocks[1].Statements)
		outer := humanizeStatements(t, block.Blocks[0].Statements)
		if diff := cmp.Diff([]string{`[1,[21,2,[]],false]`}, inner); diff != "" {
			t.Errorf("inner block mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(`[1,[21,1,[]],false]`, outer[1]); diff != "" {
			t.Errorf("outer read mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should record eval info for partial and debugger", func(t *testing.T) {
		block := expectStatements(t, `{{@a}}{{#each xs as |x|}}{{partial "p"}}{{/each}}{{debugger}}`, []string{
			`[1,[21,1,[]],false]`,
			`[4,"each",[[22,["xs"]]],null,[["default"],[0]]]`,
			`[19,[1]]`,
		})
		if !block.HasEval {
			t.Error("expected hasEval to be set")
		}
		if diff := cmp.Diff([]string{`[16,"p",[1,2]]`}, humanizeStatements(t, block.Blocks[0].Statements)); diff != "" {
			t.Errorf("partial mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLowerComponents(t *testing.T) {
	t.Run("should split arguments from attributes", func(t *testing.T) {
		block := expectStatements(t, `<Foo @a="x" @b={{y}} class="c" title={{{t}}} ...attributes {{on "click" z}} />`, []string{
			`[5,"Foo",[[11,"class","c"],[18,"title",[20,"t"]],[14,1],[3,"on",["click",[22,["z"]]],null]],[["@a","@b"],["x",[20,"y"]]],null]`,
		})
		expectSymbols(t, block, []string{"&attrs"})
	})

	t.Run("should pass dynamic attributes as component attributes", func(t *testing.T) {
		expectStatements(t, `<Foo class={{c}} />`, []string{
			`[5,"Foo",[[13,"class",[20,"c"]]],null,null]`,
		})
	})

	t.Run("should lower children into a default block with block params", func(t *testing.T) {
		block := expectStatements(t, `<Foo as |bar|>{{bar}}</Foo>`, []string{
			`[5,"Foo",[],null,[["default"],[0]]]`,
		})
		expectSymbols(t, block, []string{"bar"})
		if diff := cmp.Diff([]int{1}, block.Blocks[0].Parameters); diff != "" {
			t.Errorf("parameters mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should give a childless component with block params an empty block", func(t *testing.T) {
		block := expectStatements(t, `<Foo as |bar|></Foo>`, []string{
			`[5,"Foo",[],null,[["default"],[0]]]`,
		})
		if len(block.Blocks[0].Statements) != 0 {
			t.Errorf("expected an empty block, got %v", block.Blocks[0].Statements)
		}
	})

	t.Run("should lower named blocks", func(t *testing.T) {
		block := expectStatements(t, `<Foo><:header>H</:header> <:body as |x|>{{x}}</:body></Foo>`, []string{
			`[5,"Foo",[],null,[["header","body"],[0,1]]]`,
		})
		expectSymbols(t, block, []string{"x"})
		if diff := cmp.Diff([]int{1}, block.Blocks[1].Parameters); diff != "" {
			t.Errorf("body parameters mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lower dynamic component tags", func(t *testing.T) {
		cases := []struct {
			source   string
			expected string
		}{
			{`<@comp />`, `[6,[21,1,[]],[],null,null]`},
			{`<this.comp />`, `[6,[21,0,["comp"]],[],null,null]`},
			{`<x.y />`, `[6,[22,["x","y"]],[],null,null]`},
		}
		for _, tc := range cases {
			expectStatements(t, tc.source, []string{tc.expected})
		}
		block := compileBlock(t, `{{#let a as |c|}}<c />{{/let}}`)
		if diff := cmp.Diff([]string{`[6,[21,1,[]],[],null,null]`}, humanizeStatements(t, block.Blocks[0].Statements)); diff != "" {
			t.Errorf("local component mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should classify after customizing the tag name", func(t *testing.T) {
		customize := func(tag string) string {
			if tag == "x-foo" {
				return "XFoo"
			}
			return tag
		}
		expectStatements(t, `<x-foo />`, []string{`[5,"XFoo",[],null,null]`},
			config.WithCustomizeComponentName(customize))
	})
}

func TestLowerErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		message string
	}{
		{
			"should reject block params on plain elements",
			`<div as |x|></div>`,
			"Unexpected block params in <div>: simple elements cannot have block params",
		},
		{
			"should reject named arguments on plain elements",
			`<div @a="b"></div>`,
			"Unexpected named argument @a on <div>: arguments can only be passed to components",
		},
		{
			"should reject named blocks inside HTML elements",
			`<div><:foo></:foo></div>`,
			"Unexpected named block <:foo> inside <div> HTML element",
		},
		{
			"should reject named blocks at the top level",
			`<:foo></:foo>`,
			"Unexpected named block <:foo> at the top-level of a template",
		},
		{
			"should reject named blocks inside normal blocks",
			`{{#if a}}<:foo></:foo>{{/if}}`,
			"Unexpected named block <:foo> nested in a normal block",
		},
		{
			"should reject duplicate named blocks",
			`<Foo><:a></:a><:a></:a></Foo>`,
			"Component had two named blocks with the same name, `<:a>`. Only one block with a given name may be passed",
		},
		{
			"should reject content mixed with named blocks",
			`<Foo><:a></:a>text</Foo>`,
			"Unexpected content inside <Foo> component invocation: when using named blocks, the tag cannot contain other content",
		},
		{
			"should reject attributes on named blocks",
			`<Foo><:a class="x"></:a></Foo>`,
			"Named block <:a> cannot have attributes or modifiers",
		},
		{
			"should reject yield in attribute position",
			`<div class={{yield}}></div>`,
			"{{yield}} cannot be used in an attribute position",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := lowerError(t, tc.source)
			if err.Kind != util.ErrorKindStructure {
				t.Errorf("expected a structure error, got %s", err.Kind)
			}
			if diff := cmp.Diff(tc.message, err.Msg); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPhases(t *testing.T) {
	t.Run("should run the phases in order", func(t *testing.T) {
		expected := []string{"resolveAttributeNamespaces", "orderAttributes", "allocateSymbols"}
		if diff := cmp.Diff(expected, pipeline.Phases()); diff != "" {
			t.Errorf("phases mismatch (-want +got):\n%s", diff)
		}
	})
}
