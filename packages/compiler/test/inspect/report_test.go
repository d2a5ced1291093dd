package inspect_test

import (
	"strings"
	"testing"

	compiler "gtc-go/packages/compiler/src"
	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/inspect"
)

func render(t *testing.T, source string, opts ...config.CompilerConfigOption) string {
	t.Helper()
	tpl, err := compiler.Compile(source, opts...)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	var sb strings.Builder
	if err := inspect.Render(&sb, tpl); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	return sb.String()
}

func TestReport(t *testing.T) {
	t.Run("should render symbols, opcodes and blocks", func(t *testing.T) {
		page := render(t, `{{#each items as |item|}}{{item}}{{/each}}`, config.WithID(func(string) string { return "abc12345" }))
		for _, want := range []string{
			"<!doctype html>",
			"<title>Template abc12345</title>",
			"<td>0</td><td>this</td>",
			"<td>1</td><td>item</td>",
			`<strong class="opcode">Block</strong>`,
			`<strong class="opcode">Append</strong>`,
			"<h3>Block 0</h3>",
			"<code>[1]</code>",
		} {
			if !strings.Contains(page, want) {
				t.Errorf("expected %q in report:\n%s", want, page)
			}
		}
	})

	t.Run("should escape template text", func(t *testing.T) {
		page := render(t, `{{"<b>"}}`)
		if strings.Contains(page, "<b>") {
			t.Errorf("expected template text to be escaped:\n%s", page)
		}
	})

	t.Run("should show a null id", func(t *testing.T) {
		page := render(t, `hi`, config.WithID(func(string) string { return "" }))
		if !strings.Contains(page, "<h1>Template null</h1>") {
			t.Errorf("expected a null id heading:\n%s", page)
		}
	})
}
