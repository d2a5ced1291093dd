package template_parser

import (
	"regexp"
	"strings"

	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
)

var invalidBlockParam = regexp.MustCompile("[!\"#%-,./;->@\\[-\\^`{-~]")

func isValueless(attr *syntax.Attr) bool {
	text, ok := attr.Value.(*syntax.Text)
	return ok && text.Chars == ""
}

// parseElementBlockParams extracts `as |x y|` from the attributes of a start
// tag. The tokenizer splits the declaration into valueless attributes named
// "as", "|x" and "y|"; they are re-joined, validated and removed.
func parseElementBlockParams(tag *tagBuilder, span *util.ParseSourceSpan) ([]*syntax.Attr, []string, error) {
	attributes := tag.attributes
	asIndex := -1
	for i, attr := range attributes {
		if attr.Name == "as" && isValueless(attr) {
			asIndex = i
			break
		}
	}

	if asIndex == -1 || asIndex+1 >= len(attributes) || !strings.HasPrefix(attributes[asIndex+1].Name, "|") {
		for _, attr := range attributes {
			if strings.HasPrefix(attr.Name, "|") && isValueless(attr) {
				return nil, nil, util.NewParseError(util.ErrorKindStructure, span,
					"Invalid block parameters syntax: block parameters must be preceded by the `as` keyword")
			}
		}
		return attributes, nil, nil
	}

	names := make([]string, 0, len(attributes)-asIndex)
	for _, attr := range attributes[asIndex:] {
		names = append(names, attr.Name)
	}
	declaration := strings.Join(names, " ")
	if !strings.HasSuffix(declaration, "|") || strings.Count(declaration, "|") != 2 {
		return nil, nil, util.Errorf(util.ErrorKindStructure, span, "Invalid block parameters syntax, '%s'", declaration)
	}
	for _, attr := range attributes[asIndex+1:] {
		if !isValueless(attr) {
			return nil, nil, util.Errorf(util.ErrorKindStructure, span, "Invalid block parameters syntax, '%s'", declaration)
		}
	}

	var params []string
	for _, name := range names[1:] {
		param := strings.ReplaceAll(name, "|", "")
		if param == "" {
			continue
		}
		if invalidBlockParam.MatchString(param) {
			return nil, nil, util.Errorf(util.ErrorKindStructure, span, "Invalid identifier for block parameters, '%s'", param)
		}
		params = append(params, param)
	}
	if len(params) == 0 {
		return nil, nil, util.NewParseError(util.ErrorKindStructure, span, "Cannot use zero block parameters")
	}
	return attributes[:asIndex], params, nil
}
