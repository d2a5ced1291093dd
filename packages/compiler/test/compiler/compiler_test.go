package compiler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	compiler "gtc-go/packages/compiler/src"
	"gtc-go/packages/compiler/src/config"
	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
	"gtc-go/packages/compiler/src/wire_format"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

func decodeJSON(t *testing.T, data []byte) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("invalid JSON %q: %v", data, err)
	}
	return v
}

func archiveFile(archive *txtar.Archive, name string) ([]byte, bool) {
	for _, f := range archive.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

func TestCompileGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no golden fixtures found")
	}
	for _, path := range paths {
		archive, err := txtar.ParseFile(path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run("should compile "+name, func(t *testing.T) {
			source, ok := archiveFile(archive, "template.hbs")
			if !ok {
				t.Fatalf("%s has no template.hbs", path)
			}
			want, ok := archiveFile(archive, "block.json")
			if !ok {
				t.Fatalf("%s has no block.json", path)
			}
			tpl, err := compiler.Compile(strings.TrimSuffix(string(source), "\n"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(decodeJSON(t, want), decodeJSON(t, []byte(tpl.Block))); diff != "" {
				t.Errorf("block mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrecompile(t *testing.T) {
	t.Run("should produce the wire format JSON", func(t *testing.T) {
		out, err := compiler.Precompile(`<div class="a">hi</div>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var tpl wire_format.SerializedTemplate
		if err := json.Unmarshal([]byte(out), &tpl); err != nil {
			t.Fatalf("output is not a serialized template: %v", err)
		}
		if tpl.ID == nil || len(*tpl.ID) != 8 {
			t.Errorf("expected an 8 character id, got %v", tpl.ID)
		}
		block, err := wire_format.DecodeBlock(tpl.Block)
		if err != nil {
			t.Fatalf("unexpected error decoding block: %v", err)
		}
		var opcodes []string
		for _, stmt := range block.Statements {
			op, ok := wire_format.OpcodeOf(stmt)
			if !ok {
				t.Fatalf("statement without opcode: %v", stmt)
			}
			opcodes = append(opcodes, op.String())
		}
		expected := []string{"OpenElement", "StaticAttr", "FlushElement", "Text", "CloseElement"}
		if diff := cmp.Diff(expected, opcodes); diff != "" {
			t.Errorf("opcodes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should be deterministic", func(t *testing.T) {
		source := `{{#each items as |item|}}<Card @item={{item}} {{on "click" this.pick}} />{{/each}}`
		first, err := compiler.Precompile(source)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < 5; i++ {
			again, err := compiler.Precompile(source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("output changed between runs (-want +got):\n%s", diff)
			}
		}
	})

	t.Run("should derive the default id from meta and block", func(t *testing.T) {
		tpl, err := compiler.Compile(`{{foo}}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := compiler.DefaultID("{}" + tpl.Block)
		if tpl.ID == nil {
			t.Fatal("expected an id")
		}
		if diff := cmp.Diff(expected, *tpl.ID); diff != "" {
			t.Errorf("id mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should serialize an empty custom id as null", func(t *testing.T) {
		out, err := compiler.Precompile(`hi`, config.WithID(func(string) string { return "" }))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(out, `{"id":null,`) {
			t.Errorf("expected a null id, got %s", out)
		}
	})

	t.Run("should pass a custom id the serialized payload", func(t *testing.T) {
		var payload string
		tpl, err := compiler.Compile(`hi`, config.WithMeta(map[string]any{"a": 1}), config.WithID(func(p string) string {
			payload = p
			return "fixed"
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(`{"a":1}`+tpl.Block, payload); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("fixed", *tpl.ID); diff != "" {
			t.Errorf("id mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should record the module name in meta", func(t *testing.T) {
		tpl, err := compiler.Compile(`hi`, config.WithModuleName("app/templates/index.hbs"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := map[string]any{"moduleName": "app/templates/index.hbs"}
		if diff := cmp.Diff(expected, tpl.Meta); diff != "" {
			t.Errorf("meta mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should compile elements after a self-closing script", func(t *testing.T) {
		tpl, err := compiler.Compile(`<script src="x" /><div class="a">hi</div>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := `[[7,"script",true],[11,"src","x"],[9],[10],[7,"div",true],[11,"class","a"],[9],[0,"hi"],[10]]`
		block := decodeJSON(t, []byte(tpl.Block)).(map[string]any)
		if diff := cmp.Diff(decodeJSON(t, []byte(expected)), block["statements"]); diff != "" {
			t.Errorf("statements mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not escape markup in text", func(t *testing.T) {
		tpl, err := compiler.Compile(`a &lt; b`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tpl.Block, `[0,"a < b"]`) {
			t.Errorf("expected decoded text in %s", tpl.Block)
		}
	})
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		kind    util.ErrorKind
		message string
	}{
		{
			"should reject reserved identifiers",
			`{{@args}}`,
			util.ErrorKindStructure,
			"Cannot reference `@args`: it is a reserved identifier",
		},
		{
			"should reject block params on simple elements",
			`<div as |x|>{{x}}</div>`,
			util.ErrorKindStructure,
			"Unexpected block params in <div>: simple elements cannot have block params",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compiler.Compile(tc.source)
			var perr *util.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected a ParseError, got %v", err)
			}
			if perr.Kind != tc.kind {
				t.Errorf("expected %s, got %s", tc.kind, perr.Kind)
			}
			if diff := cmp.Diff(tc.message, perr.Msg); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("should report mismatched block names as grammar errors", func(t *testing.T) {
		_, err := compiler.Compile(`{{#if a}}x{{/each}}`)
		var perr *util.ParseError
		if !errors.As(err, &perr) || perr.Kind != util.ErrorKindGrammar {
			t.Fatalf("expected a grammar error, got %v", err)
		}
	})
}

func TestCompileScoping(t *testing.T) {
	t.Run("should prefer block params over free names", func(t *testing.T) {
		tpl, err := compiler.Compile(`{{name}}{{#let x as |name|}}{{name}}{{/let}}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		block, err := wire_format.DecodeBlock(tpl.Block)
		if err != nil {
			t.Fatal(err)
		}
		root, _ := wire_format.Marshal(block.Statements[0])
		inner, _ := wire_format.Marshal(block.Blocks[0].Statements[0])
		if diff := cmp.Diff(`[1,[20,"name"],false]`, string(root)); diff != "" {
			t.Errorf("free read mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(`[1,[21,1,[]],false]`, string(inner)); diff != "" {
			t.Errorf("local read mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should run plugins before resolving names", func(t *testing.T) {
		rename := func(env syntax.ASTPluginEnvironment) syntax.ASTPlugin {
			return syntax.ASTPlugin{
				Name: "rename",
				Visitor: syntax.Visitor{
					syntax.KindPath: {Enter: func(n syntax.Node, _ *syntax.WalkerPath) syntax.Result {
						path := n.(*syntax.Path)
						if path.Original == "old" {
							path.Original = "fresh"
							path.Parts = []string{"fresh"}
						}
						return syntax.Keep
					}},
				},
			}
		}
		tpl, err := compiler.Compile(`{{old}}`, config.WithPlugins(rename))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tpl.Block, `[20,"fresh"]`) {
			t.Errorf("expected the renamed path in %s", tpl.Block)
		}
	})
}
