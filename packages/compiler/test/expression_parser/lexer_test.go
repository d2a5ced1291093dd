package expression_parser_test

import (
	"errors"
	"testing"

	"gtc-go/packages/compiler/src/expression_parser"
	"gtc-go/packages/compiler/src/util"

	"github.com/google/go-cmp/cmp"
)

func lex(t *testing.T, text string) []*expression_parser.Token {
	t.Helper()
	tokens, err := expression_parser.NewLexer(util.NewParseSourceFile(text, "test.hbs")).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", text, err)
	}
	return tokens
}

func lexAndHumanize(t *testing.T, text string) []interface{} {
	t.Helper()
	result := []interface{}{}
	for _, tok := range lex(t, text) {
		result = append(result, []interface{}{tok.Type.String(), tok.Text})
	}
	return result
}

func TestLexer(t *testing.T) {
	t.Run("should split content and mustaches", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"CONTENT", "foo "},
			[]interface{}{"OPEN", "{{"},
			[]interface{}{"ID", "bar"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"CONTENT", " baz"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, "foo {{bar}} baz")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lex block delimiters and standalone inverse", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"OPEN_BLOCK", "{{#"},
			[]interface{}{"ID", "if"},
			[]interface{}{"ID", "a"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"CONTENT", "x"},
			[]interface{}{"INVERSE", "{{else}}"},
			[]interface{}{"CONTENT", "y"},
			[]interface{}{"OPEN_ENDBLOCK", "{{/"},
			[]interface{}{"ID", "if"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, "{{#if a}}x{{else}}y{{/if}}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lex an inverse chain", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"OPEN_INVERSE_CHAIN", "{{~else"},
			[]interface{}{"ID", "if"},
			[]interface{}{"ID", "b"},
			[]interface{}{"CLOSE", "~}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, "{{~else if b~}}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lex literals", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"OPEN", "{{"},
			[]interface{}{"ID", "foo"},
			[]interface{}{"STRING", `b"r`},
			[]interface{}{"NUMBER", "1"},
			[]interface{}{"NUMBER", "-2.5"},
			[]interface{}{"BOOLEAN", "true"},
			[]interface{}{"NULL", "null"},
			[]interface{}{"UNDEFINED", "undefined"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, `{{foo "b\"r" 1 -2.5 true null undefined}}`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lex block params", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"OPEN_BLOCK", "{{#"},
			[]interface{}{"ID", "each"},
			[]interface{}{"ID", "xs"},
			[]interface{}{"OPEN_BLOCK_PARAMS", "as |"},
			[]interface{}{"ID", "x"},
			[]interface{}{"ID", "i"},
			[]interface{}{"CLOSE_BLOCK_PARAMS", "|"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, "{{#each xs as |x i|}}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lex paths, data and unescaped mustaches", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"OPEN_UNESCAPED", "{{{"},
			[]interface{}{"DATA", "@"},
			[]interface{}{"ID", "foo"},
			[]interface{}{"SEP", "."},
			[]interface{}{"ID", "bar"},
			[]interface{}{"SEP", "/"},
			[]interface{}{"ID", "[baz qux]"},
			[]interface{}{"CLOSE_UNESCAPED", "}}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, "{{{@foo.bar/[baz qux]}}}")
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should treat an escaped mustache as content", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"CONTENT", "a "},
			[]interface{}{"CONTENT", "{{foo}} "},
			[]interface{}{"OPEN", "{{"},
			[]interface{}{"ID", "bar"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, `a \{{foo}} {{bar}}`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should keep one backslash before an escaped backslash", func(t *testing.T) {
		expected := []interface{}{
			[]interface{}{"CONTENT", `\`},
			[]interface{}{"OPEN", "{{"},
			[]interface{}{"ID", "foo"},
			[]interface{}{"CLOSE", "}}"},
			[]interface{}{"EOF", ""},
		}
		result := lexAndHumanize(t, `\\{{foo}}`)
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("lexAndHumanize() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should lex long comments containing mustache closers", func(t *testing.T) {
		tokens := lex(t, "{{!-- a }} b --}}x")
		if tokens[0].Type != expression_parser.TokenTypeCOMMENT || tokens[0].Text != "{{!-- a }} b --}}" {
			t.Errorf("unexpected comment token %+v", tokens[0])
		}
		if tokens[1].Type != expression_parser.TokenTypeCONTENT || tokens[1].Text != "x" {
			t.Errorf("unexpected content token %+v", tokens[1])
		}
	})

	t.Run("should track line and column", func(t *testing.T) {
		tokens := lex(t, "a\n  {{b}}")
		start := tokens[1].SourceSpan.Start
		if start.Line != 2 || start.Col != 2 || start.Offset != 4 {
			t.Errorf("expected OPEN at 2:2 (offset 4), got %d:%d (offset %d)", start.Line, start.Col, start.Offset)
		}
	})

	t.Run("should reject raw blocks", func(t *testing.T) {
		_, err := expression_parser.NewLexer(util.NewParseSourceFile("{{{{raw}}}}x{{{{/raw}}}}", "test.hbs")).Tokenize()
		var perr *util.ParseError
		if !errors.As(err, &perr) || perr.Kind != util.ErrorKindGrammar {
			t.Errorf("expected a grammar error, got %v", err)
		}
	})

	t.Run("should report an unterminated comment", func(t *testing.T) {
		_, err := expression_parser.NewLexer(util.NewParseSourceFile("{{!-- open", "test.hbs")).Tokenize()
		if err == nil {
			t.Errorf("expected an error")
		}
	})
}
