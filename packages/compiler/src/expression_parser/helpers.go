package expression_parser

import (
	"regexp"
	"strings"

	"gtc-go/packages/compiler/src/util"
)

var (
	commentOpen  = regexp.MustCompile(`^\{\{~?!-?-?`)
	commentClose = regexp.MustCompile(`-?-?~?\}\}$`)
)

// stripFlags reads the `~` markers of an open/close delimiter pair.
func stripFlags(open, close string) StripFlags {
	return StripFlags{
		Open:  len(open) > 2 && open[2] == '~',
		Close: len(close) >= 3 && close[len(close)-3] == '~',
	}
}

// stripComment removes the comment delimiters from a COMMENT token.
func stripComment(comment string) string {
	return commentClose.ReplaceAllString(commentOpen.ReplaceAllString(comment, ""), "")
}

// isEscaped reports whether a mustache opener produces escaped output:
// `{{{` and `{{&` (with or without `~`) do not.
func isEscaped(open string) bool {
	var flag byte
	if len(open) > 3 {
		flag = open[3]
	} else if len(open) > 2 {
		flag = open[2]
	}
	return flag != '{' && flag != '&'
}

// id strips the brackets of a literal segment.
func id(token string) string {
	if len(token) >= 2 && token[0] == '[' && token[len(token)-1] == ']' {
		return token[1 : len(token)-1]
	}
	return token
}

type pathSegment struct {
	part      string
	original  string
	separator string
}

// preparePath folds path segments into a PathExpression. `this`, `.` and
// `..` are only allowed before the first real segment.
func preparePath(data bool, segments []pathSegment, span *util.ParseSourceSpan) (*PathExpression, error) {
	var original strings.Builder
	if data {
		original.WriteByte('@')
	}
	var dig []string
	depth := 0
	for _, seg := range segments {
		isLiteral := seg.original != seg.part
		original.WriteString(seg.separator)
		original.WriteString(seg.part)
		if !isLiteral && (seg.part == ".." || seg.part == "." || seg.part == "this") {
			if len(dig) > 0 {
				return nil, util.NewParseError(util.ErrorKindGrammar, span, "Invalid path: "+original.String())
			}
			if seg.part == ".." {
				depth++
			}
			continue
		}
		dig = append(dig, seg.part)
	}
	path := &PathExpression{
		Data:     data,
		Depth:    depth,
		Parts:    dig,
		Original: original.String(),
	}
	path.SourceSpan = span
	head := ""
	if len(segments) > 0 && segments[0].original == "this" {
		head = "this"
	}
	path.This = !data && head == "this"
	return path, nil
}

// originalOf returns the source text a callee was written as.
func originalOf(expr Expression) string {
	switch e := expr.(type) {
	case *PathExpression:
		return e.Original
	case *StringLiteral:
		return e.Original
	case *NumberLiteral:
		return e.Original
	case *BooleanLiteral:
		return e.Original
	case *NullLiteral:
		return "null"
	case *UndefinedLiteral:
		return "undefined"
	}
	return ""
}

// openInfo is the parsed head of a block, inverse or chain opener.
type openInfo struct {
	open        string
	path        Expression
	params      []Expression
	hash        *Hash
	blockParams []string
	strip       StripFlags
}

// inverseInfo is an `{{else}}` branch, or a chained `{{else if}}` link.
type inverseInfo struct {
	strip   StripFlags
	program *Program
	chain   bool
}

// closeInfo is a `{{/path}}` closer. It doubles as the close argument of a
// chained link, where only the strip flags are known.
type closeInfo struct {
	path  Expression
	strip StripFlags
}

func prepareBlock(open *openInfo, program *Program, inverse *inverseInfo, close *closeInfo, inverted bool, span *util.ParseSourceSpan) (*BlockStatement, error) {
	if close != nil && close.path != nil {
		if originalOf(open.path) != originalOf(close.path) {
			return nil, util.NewParseError(util.ErrorKindGrammar, open.path.Span(),
				originalOf(open.path)+" doesn't match "+originalOf(close.path))
		}
	}
	decorator := strings.Contains(open.open, "*")
	program.BlockParams = open.blockParams

	var inverseProgram *Program
	var inverseStrip StripFlags
	if inverse != nil {
		if decorator {
			return nil, util.NewParseError(util.ErrorKindGrammar, span, "Unexpected inverse block on decorator")
		}
		if inverse.chain && close != nil {
			inverse.program.Body[0].(*BlockStatement).CloseStrip = close.strip
		}
		inverseStrip = inverse.strip
		inverseProgram = inverse.program
	}
	if inverted {
		program, inverseProgram = inverseProgram, program
	}

	block := &BlockStatement{
		Path:         open.path,
		Params:       open.params,
		Hash:         open.hash,
		Program:      program,
		Inverse:      inverseProgram,
		OpenStrip:    open.strip,
		InverseStrip: inverseStrip,
		Decorator:    decorator,
	}
	if close != nil {
		block.CloseStrip = close.strip
	}
	block.SourceSpan = span
	return block, nil
}
