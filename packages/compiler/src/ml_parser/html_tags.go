package ml_parser

import (
	"golang.org/x/net/html/atom"
)

// TagContentType represents the content type of a tag
type TagContentType int

const (
	TagContentTypePARSABLE_DATA TagContentType = iota
	// TagContentTypeRAW_TEXT content runs until the matching end tag and
	// does not decode character references.
	TagContentTypeRAW_TEXT
)

// HtmlTagDefinition describes how the tokenizer and the tree unifier treat a tag.
type HtmlTagDefinition struct {
	isVoid        bool
	ignoreFirstLf bool
	contentType   TagContentType
}

// IsVoid returns whether this tag is void
func (h *HtmlTagDefinition) IsVoid() bool {
	return h.isVoid
}

// IgnoreFirstLf returns whether a newline directly after the start tag is dropped
func (h *HtmlTagDefinition) IgnoreFirstLf() bool {
	return h.ignoreFirstLf
}

// ContentType returns the content type of the tag
func (h *HtmlTagDefinition) ContentType() TagContentType {
	return h.contentType
}

var voidElementNames = []string{
	"area", "base", "br", "col", "command", "embed", "hr", "img", "input",
	"keygen", "link", "meta", "param", "source", "track", "wbr",
}

var (
	defaultTagDefinition = &HtmlTagDefinition{}
	tagDefinitions       = map[atom.Atom]*HtmlTagDefinition{}
	namedDefinitions     = map[string]*HtmlTagDefinition{}
)

func init() {
	for _, name := range voidElementNames {
		register(name, &HtmlTagDefinition{isVoid: true})
	}
	register("pre", &HtmlTagDefinition{ignoreFirstLf: true})
	register("textarea", &HtmlTagDefinition{ignoreFirstLf: true})
	register("listing", &HtmlTagDefinition{ignoreFirstLf: true})
	register("script", &HtmlTagDefinition{contentType: TagContentTypeRAW_TEXT})
	register("style", &HtmlTagDefinition{contentType: TagContentTypeRAW_TEXT})
	register("title", &HtmlTagDefinition{contentType: TagContentTypeRAW_TEXT})
}

func register(name string, def *HtmlTagDefinition) {
	if a := atom.Lookup([]byte(name)); a != 0 {
		tagDefinitions[a] = def
		return
	}
	namedDefinitions[name] = def
}

// GetHtmlTagDefinition returns the definition for tagName. Lookups are case
// sensitive: `<Input>` names a component, not the void element.
func GetHtmlTagDefinition(tagName string) *HtmlTagDefinition {
	if a := atom.Lookup([]byte(tagName)); a != 0 {
		if def, ok := tagDefinitions[a]; ok {
			return def
		}
		return defaultTagDefinition
	}
	if def, ok := namedDefinitions[tagName]; ok {
		return def
	}
	return defaultTagDefinition
}

// IsVoidElement reports whether tagName is in the void element table.
func IsVoidElement(tagName string) bool {
	return GetHtmlTagDefinition(tagName).IsVoid()
}
