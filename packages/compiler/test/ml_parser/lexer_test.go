package ml_parser_test

import (
	"testing"

	"gtc-go/packages/compiler/src/ml_parser"
	"gtc-go/packages/compiler/src/util"

	"github.com/google/go-cmp/cmp"
)

func tokenize(input string, codemod bool) ([]ml_parser.Token, []*util.ParseError) {
	return ml_parser.TokenizeAll(util.NewParseSourceFile(input, "someUrl"), ml_parser.TokenizeOptions{Codemod: codemod})
}

func humanizeParts(tokens []ml_parser.Token) []interface{} {
	result := []interface{}{}
	for _, tok := range tokens {
		result = append(result, []interface{}{tok.Type.String(), tok.Value})
	}
	return result
}

func tokenizeAndHumanizeParts(t *testing.T, input string, codemod bool) []interface{} {
	t.Helper()
	tokens, diagnostics := tokenize(input, codemod)
	if len(diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diagnostics)
	}
	return humanizeParts(tokens)
}

func TestTokenizer(t *testing.T) {
	t.Run("elements", func(t *testing.T) {
		t.Run("should tokenize start and end tags with attributes", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TagOpen", "div"},
				[]interface{}{"AttrName", "class"},
				[]interface{}{"AttrValueChunk", "a"},
				[]interface{}{"TextChunk", "x & y"},
				[]interface{}{"TagClose", "div"},
			}
			result := tokenizeAndHumanizeParts(t, `<div class="a">x &amp; y</div>`, false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should tokenize valueless attributes", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TagOpen", "input"},
				[]interface{}{"AttrName", "disabled"},
				[]interface{}{"AttrValueChunk", ""},
			}
			result := tokenizeAndHumanizeParts(t, "<input disabled>", false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should mark self-closing tags", func(t *testing.T) {
			tokens, _ := tokenize("<br/>", false)
			expected := []interface{}{
				[]interface{}{"TagOpen", "br"},
				[]interface{}{"TagClose", "br"},
			}
			if diff := cmp.Diff(expected, humanizeParts(tokens)); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
			if !tokens[1].SelfClosing {
				t.Errorf("expected the close token to be self-closing")
			}
		})

		t.Run("should record whether attribute values are quoted", func(t *testing.T) {
			tokens, _ := tokenize(`<a href='x' id=y>`, false)
			var quoted []bool
			for _, tok := range tokens {
				if tok.Type == ml_parser.TokenTypeATTR_VALUE_CHUNK {
					quoted = append(quoted, tok.Quoted)
				}
			}
			if diff := cmp.Diff([]bool{true, false}, quoted); diff != "" {
				t.Errorf("quoted mismatch (-want +got):\n%s", diff)
			}
		})
	})

	t.Run("comments", func(t *testing.T) {
		t.Run("should tokenize comments", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"CommentChunk", " a - b "},
			}
			result := tokenizeAndHumanizeParts(t, "<!-- a - b -->", false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should report markup declarations as bogus comments", func(t *testing.T) {
			tokens, diagnostics := tokenize("<!DOCTYPE html>", false)
			expected := []interface{}{
				[]interface{}{"CommentChunk", "DOCTYPE html"},
			}
			if diff := cmp.Diff(expected, humanizeParts(tokens)); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
			if len(diagnostics) != 1 || diagnostics[0].Kind != util.ErrorKindTokenize {
				t.Errorf("expected one tokenize diagnostic, got %v", diagnostics)
			}
		})
	})

	t.Run("text", func(t *testing.T) {
		t.Run("should keep character references in codemod mode", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TextChunk", "a &amp; b"},
			}
			result := tokenizeAndHumanizeParts(t, "a &amp; b", true)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should decode numeric references and leave unknown ones alone", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TextChunk", "&nope; A"},
			}
			result := tokenizeAndHumanizeParts(t, "&nope; &#x41;", false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should drop the first newline of pre content", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TagOpen", "pre"},
				[]interface{}{"TextChunk", "x"},
				[]interface{}{"TagClose", "pre"},
			}
			result := tokenizeAndHumanizeParts(t, "<pre>\nx</pre>", false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should keep the first newline of pre content in codemod mode", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TagOpen", "pre"},
				[]interface{}{"TextChunk", "\nx"},
				[]interface{}{"TagClose", "pre"},
			}
			result := tokenizeAndHumanizeParts(t, "<pre>\nx</pre>", true)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should treat script content as raw text", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TagOpen", "script"},
				[]interface{}{"TextChunk", "a<b &amp;"},
				[]interface{}{"TagClose", "script"},
			}
			result := tokenizeAndHumanizeParts(t, "<script>a<b &amp;</script>", false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should leave raw text mode after a self-closing script", func(t *testing.T) {
			expected := []interface{}{
				[]interface{}{"TagOpen", "script"},
				[]interface{}{"TagClose", "script"},
				[]interface{}{"TagOpen", "b"},
				[]interface{}{"TextChunk", "&"},
				[]interface{}{"TagClose", "b"},
			}
			result := tokenizeAndHumanizeParts(t, "<script/><b>&amp;</b>", false)
			if diff := cmp.Diff(expected, result); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should read CRLF as a single newline", func(t *testing.T) {
			tokens, _ := tokenize("a\r\nb", false)
			if diff := cmp.Diff([]interface{}{[]interface{}{"TextChunk", "a\nb"}}, humanizeParts(tokens)); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
			end := tokens[0].SourceSpan.End
			if end.Offset != 4 || end.Line != 2 || end.Col != 1 {
				t.Errorf("unexpected end location %d %d:%d", end.Offset, end.Line, end.Col)
			}
		})
	})

	t.Run("errors", func(t *testing.T) {
		t.Run("should report attribute names starting with an equals sign", func(t *testing.T) {
			_, diagnostics := tokenize("<div =x>", false)
			if len(diagnostics) != 1 {
				t.Fatalf("expected one diagnostic, got %v", diagnostics)
			}
			if diff := cmp.Diff("attribute name cannot start with equals sign", diagnostics[0].Msg); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})

		t.Run("should complete a tag left open at the end of input", func(t *testing.T) {
			tokens, diagnostics := tokenize(`<div class="a`, false)
			expected := []interface{}{
				[]interface{}{"TagOpen", "div"},
				[]interface{}{"AttrName", "class"},
				[]interface{}{"AttrValueChunk", "a"},
			}
			if diff := cmp.Diff(expected, humanizeParts(tokens)); diff != "" {
				t.Errorf("tokenize() mismatch (-want +got):\n%s", diff)
			}
			if len(diagnostics) != 1 || diagnostics[0].Msg != "unterminated tag at end of template" {
				t.Errorf("unexpected diagnostics %v", diagnostics)
			}
		})
	})
}

func TestTokenizeIterator(t *testing.T) {
	t.Run("should stop when the consumer stops", func(t *testing.T) {
		var first []interface{}
		for tok := range ml_parser.Tokenize(util.NewParseSourceFile("<a></a><b></b>", ""), ml_parser.TokenizeOptions{}) {
			first = append(first, []interface{}{tok.Type.String(), tok.Value})
			break
		}
		if diff := cmp.Diff([]interface{}{[]interface{}{"TagOpen", "a"}}, first); diff != "" {
			t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestIsVoidElement(t *testing.T) {
	t.Run("should match void tags case sensitively", func(t *testing.T) {
		if !ml_parser.IsVoidElement("input") {
			t.Errorf("expected input to be void")
		}
		if ml_parser.IsVoidElement("Input") {
			t.Errorf("expected Input to name a component")
		}
		if ml_parser.IsVoidElement("div") {
			t.Errorf("expected div not to be void")
		}
	})
}
