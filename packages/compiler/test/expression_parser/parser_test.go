package expression_parser_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"gtc-go/packages/compiler/src/expression_parser"
	"gtc-go/packages/compiler/src/util"
	"gtc-go/packages/compiler/test/expression_parser/utils"

	"github.com/google/go-cmp/cmp"
)

func parse(t *testing.T, text string) *expression_parser.Program {
	t.Helper()
	program, err := expression_parser.Parse(text, "test.hbs")
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return program
}

func checkParse(text, expected string) func(*testing.T) {
	return func(t *testing.T) {
		result := utils.Unparse(parse(t, text))
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("Unparse() mismatch (-want +got):\n%s", diff)
		}
	}
}

func expectParseError(text, message string) func(*testing.T) {
	return func(t *testing.T) {
		_, err := expression_parser.Parse(text, "test.hbs")
		var perr *util.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected a ParseError for %q, got %v", text, err)
		}
		if perr.Kind != util.ErrorKindGrammar {
			t.Errorf("expected a grammar error, got %v", perr.Kind)
		}
		if message != "" && perr.Msg != message {
			t.Errorf("expected message %q, got %q", message, perr.Msg)
		}
	}
}

func TestParser_Mustaches(t *testing.T) {
	t.Run("should parse a simple mustache", checkParse("{{foo}}", "{{ PATH:foo [] }}\n"))
	t.Run("should parse params and hash", checkParse(
		`{{foo bar "baz" 1 key=(qux a)}}`,
		`{{ PATH:foo [PATH:bar, "baz", NUMBER{1}] HASH{key=(PATH:qux [PATH:a])} }}`+"\n",
	))
	t.Run("should parse unescaped mustaches", checkParse("{{{foo}}}{{&bar}}", "{{{ PATH:foo [] }}\n{{{ PATH:bar [] }}\n"))
	t.Run("should parse this paths", checkParse("{{this.foo}}", "{{ PATH:this/foo [] }}\n"))
	t.Run("should parse parent paths", checkParse("{{../foo}}", "{{ PATH:../foo [] }}\n"))
	t.Run("should parse data paths", checkParse("{{@index}}", "{{ @PATH:index [] }}\n"))
	t.Run("should parse literal segments", checkParse("{{foo.[bar baz]}}", "{{ PATH:foo/bar baz [] }}\n"))
	t.Run("should parse literals as callees", checkParse(`{{"foo"}}{{true}}{{null}}`,
		"{{ \"foo\" [] }}\n{{ BOOLEAN{true} [] }}\n{{ NULL [] }}\n"))
	t.Run("should parse content and comments", checkParse("a{{! b }}\\{{c}}",
		"CONTENT[ 'a' ]\n{{! ' b ' }}\nCONTENT[ '{{c}}' ]\n"))
	t.Run("should parse long comments", checkParse("{{!-- a }} --}}", "{{! ' a }} ' }}\n"))

	t.Run("should record strip flags", func(t *testing.T) {
		program := parse(t, "{{~foo}} {{bar~}} {{~{baz}~}}")
		var flags []expression_parser.StripFlags
		for _, stmt := range program.Body {
			if m, ok := stmt.(*expression_parser.MustacheStatement); ok {
				flags = append(flags, m.Strip)
			}
		}
		expected := []expression_parser.StripFlags{{Open: true}, {Close: true}, {Open: true, Close: true}}
		if diff := cmp.Diff(expected, flags); diff != "" {
			t.Errorf("strip flags mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should keep the exact digits of number literals", func(t *testing.T) {
		program := parse(t, "{{foo 1.50}}")
		lit := program.Body[0].(*expression_parser.MustacheStatement).Params[0].(*expression_parser.NumberLiteral)
		if lit.Original != "1.50" || lit.Value.String() != "1.5" {
			t.Errorf("unexpected number literal %q (%s)", lit.Original, lit.Value)
		}
	})

	t.Run("should mark this paths", func(t *testing.T) {
		program := parse(t, "{{this}}{{this.a}}{{[this]}}")
		var got []bool
		for _, stmt := range program.Body {
			got = append(got, stmt.(*expression_parser.MustacheStatement).Path.(*expression_parser.PathExpression).This)
		}
		if diff := cmp.Diff([]bool{true, true, false}, got); diff != "" {
			t.Errorf("This flags mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse decorators and partials", func(t *testing.T) {
		program := parse(t, "{{*foo}}{{> bar}}")
		if _, ok := program.Body[0].(*expression_parser.DecoratorStatement); !ok {
			t.Errorf("expected a decorator, got %T", program.Body[0])
		}
		if _, ok := program.Body[1].(*expression_parser.PartialStatement); !ok {
			t.Errorf("expected a partial, got %T", program.Body[1])
		}
	})
}

func TestParser_Blocks(t *testing.T) {
	t.Run("should parse a block with an inverse", checkParse("{{#if a}}x{{else}}y{{/if}}", `BLOCK:
  PATH:if [PATH:a]
  PROGRAM:
    CONTENT[ 'x' ]
  {{^}}
    CONTENT[ 'y' ]
`))

	t.Run("should parse an else-if chain as nested blocks", checkParse("{{#if a}}x{{else if b}}y{{else}}z{{/if}}", `BLOCK:
  PATH:if [PATH:a]
  PROGRAM:
    CONTENT[ 'x' ]
  {{else}} CHAINED:
    BLOCK:
      PATH:if [PATH:b]
      PROGRAM:
        CONTENT[ 'y' ]
      {{^}}
        CONTENT[ 'z' ]
`))

	t.Run("should parse block params", func(t *testing.T) {
		program := parse(t, "{{#each xs as |x i|}}{{x}}{{/each}}")
		block := program.Body[0].(*expression_parser.BlockStatement)
		if diff := cmp.Diff([]string{"x", "i"}, block.Program.BlockParams); diff != "" {
			t.Errorf("block params mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should swap programs of inverted blocks", func(t *testing.T) {
		program := parse(t, "{{^foo}}x{{/foo}}")
		block := program.Body[0].(*expression_parser.BlockStatement)
		if block.Program != nil {
			t.Errorf("expected no program, got %v", block.Program)
		}
		if block.Inverse == nil || len(block.Inverse.Body) != 1 {
			t.Errorf("expected the body in the inverse, got %v", block.Inverse)
		}
	})

	t.Run("should record block strip flags", func(t *testing.T) {
		program := parse(t, "{{~#if a~}} x {{~else~}} y {{~/if~}}")
		block := program.Body[0].(*expression_parser.BlockStatement)
		all := expression_parser.StripFlags{Open: true, Close: true}
		if block.OpenStrip != all || block.InverseStrip != all || block.CloseStrip != all {
			t.Errorf("unexpected strip flags %+v %+v %+v", block.OpenStrip, block.InverseStrip, block.CloseStrip)
		}
	})

	t.Run("should carry the final close strip into a chained block", func(t *testing.T) {
		program := parse(t, "{{#if a}}x{{else if b}}y{{~/if}}")
		block := program.Body[0].(*expression_parser.BlockStatement)
		if !block.Inverse.Chained {
			t.Fatalf("expected a chained inverse")
		}
		chained := block.Inverse.Body[0].(*expression_parser.BlockStatement)
		if !chained.CloseStrip.Open {
			t.Errorf("expected the chained block to inherit the close strip flags")
		}
	})
}

func TestParser_Errors(t *testing.T) {
	t.Run("should reject mismatched block names", expectParseError("{{#if a}}{{/each}}", "if doesn't match each"))
	t.Run("should reject invalid paths", expectParseError("{{foo/../bar}}", "Invalid path: foo/.."))
	t.Run("should reject a stray else", expectParseError("{{else}}", ""))
	t.Run("should reject an unclosed block", expectParseError("{{#if a}}x", ""))

	t.Run("should report the offending token and expected set", func(t *testing.T) {
		_, err := expression_parser.Parse("{{foo}", "test.hbs")
		var perr *util.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected a ParseError, got %v", err)
		}
		if perr.Token != "INVALID" {
			t.Errorf("expected offending token INVALID, got %q", perr.Token)
		}
		if !slices.Contains(perr.Expected, "CLOSE") || !slices.IsSorted(perr.Expected) {
			t.Errorf("expected a sorted expected-set containing CLOSE, got %v", perr.Expected)
		}
	})

	t.Run("should bound nesting depth", func(t *testing.T) {
		file := util.NewParseSourceFile("{{#a}}{{#b}}{{#c}}{{/c}}{{/b}}{{/a}}", "test.hbs")
		if _, err := expression_parser.ParseFile(file, expression_parser.ParseOptions{MaxDepth: 3}); err != nil {
			t.Errorf("expected depth 3 to parse, got %v", err)
		}
		if _, err := expression_parser.ParseFile(file, expression_parser.ParseOptions{MaxDepth: 2}); err == nil {
			t.Errorf("expected depth 2 to fail")
		}
	})

	t.Run("should count else if chains towards the nesting depth", func(t *testing.T) {
		file := util.NewParseSourceFile("{{#if a}}x{{else if b}}y{{else if c}}z{{/if}}", "test.hbs")
		if _, err := expression_parser.ParseFile(file, expression_parser.ParseOptions{MaxDepth: 3}); err != nil {
			t.Errorf("expected depth 3 to parse, got %v", err)
		}
		_, err := expression_parser.ParseFile(file, expression_parser.ParseOptions{MaxDepth: 2})
		var perr *util.ParseError
		if !errors.As(err, &perr) || !strings.Contains(perr.Msg, "maximum depth of 2") {
			t.Errorf("expected a depth error, got %v", err)
		}
	})
}
