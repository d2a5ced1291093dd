package template_parser

import (
	"regexp"
	"slices"

	"gtc-go/packages/compiler/src/syntax"
)

var (
	prevWhitespace     = regexp.MustCompile(`\r?\n\s*?$`)
	prevWhitespaceRoot = regexp.MustCompile(`(^|\r?\n)\s*?$`)
	nextWhitespace     = regexp.MustCompile(`^\s*?\r?\n`)
	nextWhitespaceRoot = regexp.MustCompile(`^\s*?(\r?\n|$)`)

	leadingWhitespace     = regexp.MustCompile(`^\s+`)
	leadingStandaloneLine = regexp.MustCompile(`^[ \t]*\r?\n?`)
	trailingWhitespace    = regexp.MustCompile(`\s+$`)
	trailingIndent        = regexp.MustCompile(`[ \t]+$`)
)

// stripInfo is what a statement reports to the body it sits in.
type stripInfo struct {
	open             bool
	close            bool
	openStandalone   bool
	closeStandalone  bool
	inlineStandalone bool
}

// WhitespaceNormalizer applies `~` markers and strips the lines of standalone
// blocks, comments and `{{else}}` separators.
type WhitespaceNormalizer struct {
	ignoreStandalone bool
	rootSeen         bool
	// originals holds the text of each node as it was before this pass, which
	// is what standalone detection looks at.
	originals map[*syntax.Text]string
	emptied   map[*syntax.Text]bool
}

// NormalizeWhitespace rewrites root in place. Text nodes left empty are
// removed.
func NormalizeWhitespace(root *syntax.Program, ignoreStandalone bool) {
	n := &WhitespaceNormalizer{
		ignoreStandalone: ignoreStandalone,
		originals:        map[*syntax.Text]string{},
		emptied:          map[*syntax.Text]bool{},
	}
	n.program(root)
	n.prune(root)
}

func (n *WhitespaceNormalizer) original(text *syntax.Text) string {
	if s, ok := n.originals[text]; ok {
		return s
	}
	return text.Chars
}

func (n *WhitespaceNormalizer) setChars(text *syntax.Text, chars string) {
	if _, ok := n.originals[text]; !ok {
		n.originals[text] = text.Chars
	}
	text.Chars = chars
	if chars == "" {
		n.emptied[text] = true
	}
}

func (n *WhitespaceNormalizer) program(program *syntax.Program) {
	isRoot := !n.rootSeen
	n.rootSeen = true
	n.body(program.Body, isRoot)
}

// body walks one children list. Element children are walked as non-root
// bodies of their own.
func (n *WhitespaceNormalizer) body(body []syntax.Statement, isRoot bool) {
	doStandalone := !n.ignoreStandalone
	for i, current := range body {
		strip, ok := n.accept(current)
		if !ok {
			continue
		}
		prev := n.isPrevWhitespace(body, i, isRoot)
		next := n.isNextWhitespace(body, i, isRoot)
		openStandalone := strip.openStandalone && prev
		closeStandalone := strip.closeStandalone && next
		inlineStandalone := strip.inlineStandalone && prev && next

		if strip.close {
			n.omitRight(body, i, true)
		}
		if strip.open {
			n.omitLeft(body, i, true)
		}
		if doStandalone && inlineStandalone {
			n.omitRight(body, i, false)
			n.omitLeft(body, i, false)
		}
		if doStandalone && openStandalone {
			block := current.(*syntax.Block)
			inner := block.Program
			if inner == nil {
				inner = block.Inverse
			}
			n.omitRight(inner.Body, -1, false)
			n.omitLeft(body, i, false)
		}
		if doStandalone && closeStandalone {
			block := current.(*syntax.Block)
			inner := block.Inverse
			if inner == nil {
				inner = block.Program
			}
			n.omitRight(body, i, false)
			n.omitLeft(inner.Body, len(inner.Body), false)
		}
	}
}

// accept visits a statement and reports its strip flags. Statements that take
// no part in whitespace control report false.
func (n *WhitespaceNormalizer) accept(node syntax.Statement) (stripInfo, bool) {
	switch s := node.(type) {
	case *syntax.Block:
		return n.block(s), true
	case *syntax.Mustache:
		return stripInfo{open: s.Strip.Open, close: s.Strip.Close}, true
	case *syntax.MustacheComment:
		return stripInfo{open: s.Strip.Open, close: s.Strip.Close, inlineStandalone: true}, true
	case *syntax.Element:
		for _, attr := range s.Attributes {
			if concat, ok := attr.Value.(*syntax.Concat); ok {
				n.concat(concat)
			}
		}
		n.body(s.Children, false)
	}
	return stripInfo{}, false
}

// concat applies the `~` markers of the mustaches in a quoted attribute
// value to the neighbouring text parts. Standalone lines do not apply.
func (n *WhitespaceNormalizer) concat(concat *syntax.Concat) {
	for i, part := range concat.Parts {
		m, ok := part.(*syntax.Mustache)
		if !ok {
			continue
		}
		if i > 0 && m.Strip.Open {
			if text, ok := concat.Parts[i-1].(*syntax.Text); ok {
				text.Chars = trailingWhitespace.ReplaceAllString(text.Chars, "")
			}
		}
		if i+1 < len(concat.Parts) && m.Strip.Close {
			if text, ok := concat.Parts[i+1].(*syntax.Text); ok {
				text.Chars = leadingWhitespace.ReplaceAllString(text.Chars, "")
			}
		}
	}
	concat.Parts = slices.DeleteFunc(concat.Parts, func(part syntax.ConcatPart) bool {
		text, ok := part.(*syntax.Text)
		return ok && text.Chars == ""
	})
}

func (n *WhitespaceNormalizer) block(block *syntax.Block) stripInfo {
	if block.Program != nil {
		n.program(block.Program)
	}
	if block.Inverse != nil {
		n.program(block.Inverse)
	}

	program := block.Program
	var inverse *syntax.Program
	if program == nil {
		program = block.Inverse
	} else {
		inverse = block.Inverse
	}
	firstInverse, lastInverse := inverse, inverse
	if inverse != nil && inverse.Chained {
		if chained, ok := inverse.Body[0].(*syntax.Block); ok && chained.Program != nil {
			firstInverse = chained.Program
		}
		for lastInverse.Chained {
			chained, ok := lastInverse.Body[len(lastInverse.Body)-1].(*syntax.Block)
			if !ok || chained.Program == nil {
				break
			}
			lastInverse = chained.Program
		}
	}

	first := program
	if firstInverse != nil {
		first = firstInverse
	}
	strip := stripInfo{
		open:            block.OpenStrip.Open,
		close:           block.CloseStrip.Close,
		openStandalone:  n.isNextWhitespace(program.Body, -1, false),
		closeStandalone: n.isPrevWhitespace(first.Body, len(first.Body), false),
	}

	if block.OpenStrip.Close {
		n.omitRight(program.Body, -1, true)
	}
	if inverse != nil {
		if block.InverseStrip.Open {
			n.omitLeft(program.Body, len(program.Body), true)
		}
		if block.InverseStrip.Close {
			n.omitRight(firstInverse.Body, -1, true)
		}
		if block.CloseStrip.Open {
			n.omitLeft(lastInverse.Body, len(lastInverse.Body), true)
		}
		if !n.ignoreStandalone && n.isPrevWhitespace(program.Body, len(program.Body), false) && n.isNextWhitespace(firstInverse.Body, -1, false) {
			n.omitLeft(program.Body, len(program.Body), false)
			n.omitRight(firstInverse.Body, -1, false)
		}
	} else if block.CloseStrip.Open {
		n.omitLeft(program.Body, len(program.Body), true)
	}
	return strip
}

// isPrevWhitespace reports whether the statement at i is preceded by a text
// run ending in a newline and indentation. At the edge of a body only the
// root counts as whitespace.
func (n *WhitespaceNormalizer) isPrevWhitespace(body []syntax.Statement, i int, isRoot bool) bool {
	if i-1 < 0 {
		return isRoot
	}
	text, ok := body[i-1].(*syntax.Text)
	if !ok {
		return false
	}
	if i-2 >= 0 || !isRoot {
		return prevWhitespace.MatchString(n.original(text))
	}
	return prevWhitespaceRoot.MatchString(n.original(text))
}

func (n *WhitespaceNormalizer) isNextWhitespace(body []syntax.Statement, i int, isRoot bool) bool {
	if i+1 >= len(body) {
		return isRoot
	}
	text, ok := body[i+1].(*syntax.Text)
	if !ok {
		return false
	}
	if i+2 < len(body) || !isRoot {
		return nextWhitespace.MatchString(n.original(text))
	}
	return nextWhitespaceRoot.MatchString(n.original(text))
}

// omitRight strips the start of the text after i. Without multiple only the
// rest of a standalone line is removed, and only once per text.
func (n *WhitespaceNormalizer) omitRight(body []syntax.Statement, i int, multiple bool) {
	if i+1 >= len(body) {
		return
	}
	text, ok := body[i+1].(*syntax.Text)
	if !ok || (!multiple && text.RightStripped) {
		return
	}
	before := text.Chars
	if multiple {
		n.setChars(text, leadingWhitespace.ReplaceAllString(before, ""))
	} else {
		n.setChars(text, leadingStandaloneLine.ReplaceAllString(before, ""))
	}
	text.RightStripped = text.Chars != before
}

// omitLeft strips the end of the text before i.
func (n *WhitespaceNormalizer) omitLeft(body []syntax.Statement, i int, multiple bool) bool {
	if i-1 < 0 || i-1 >= len(body) {
		return false
	}
	text, ok := body[i-1].(*syntax.Text)
	if !ok || (!multiple && text.LeftStripped) {
		return false
	}
	before := text.Chars
	if multiple {
		n.setChars(text, trailingWhitespace.ReplaceAllString(before, ""))
	} else {
		n.setChars(text, trailingIndent.ReplaceAllString(before, ""))
	}
	text.LeftStripped = text.Chars != before
	return text.LeftStripped
}

// prune removes the text nodes emptied by stripping.
func (n *WhitespaceNormalizer) prune(root *syntax.Program) {
	if len(n.emptied) == 0 {
		return
	}
	_ = syntax.Traverse(root, syntax.Visitor{
		syntax.KindText: {Enter: func(node syntax.Node, path *syntax.WalkerPath) syntax.Result {
			if path.ParentKey != "value" && path.ParentKey != "parts" && n.emptied[node.(*syntax.Text)] {
				return syntax.Remove
			}
			return syntax.Keep
		}},
	})
}
