package template_parser

import (
	"fmt"
	"strings"

	"gtc-go/packages/compiler/src/expression_parser"
	"gtc-go/packages/compiler/src/ml_parser"
	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
)

// UnifyOptions configures the TreeUnifier
type UnifyOptions struct {
	// Codemod keeps character references and leading newlines verbatim.
	Codemod bool
	// MaxDepth bounds element nesting. Zero means unbounded.
	MaxDepth int
}

// UnifyResult is the document tree and the recoverable diagnostics found
// while building it
type UnifyResult struct {
	Root     *syntax.Program
	Warnings []*util.ParseError
}

// Unify merges the markup of the content chunks of program with its mustache
// statements into one document tree.
func Unify(program *expression_parser.Program, file *util.ParseSourceFile, options UnifyOptions) (*UnifyResult, error) {
	u := NewTreeUnifier(file, options)
	root, err := u.Build(program)
	if err != nil {
		return nil, err
	}
	return &UnifyResult{Root: root, Warnings: u.warnings}, nil
}

// TreeUnifier drives a markup tokenizer over content chunks and receives its
// events. Mustache statements are routed by the tokenizer state at the point
// they occur.
type TreeUnifier struct {
	file      *util.ParseSourceFile
	tokenizer *ml_parser.Tokenizer
	options   UnifyOptions

	containerStack []syntax.Node
	warnings       []*util.ParseError
	err            error

	tagOpenLoc     *util.ParseLocation
	currentText    *syntax.Text
	currentComment *syntax.Comment
	currentTag     *tagBuilder
	currentAttr    *attrBuilder
}

type tagBuilder struct {
	name        string
	start       *util.ParseLocation
	end         bool
	selfClosing bool
	attributes  []*syntax.Attr
	modifiers   []*syntax.ElementModifier
	comments    []*syntax.MustacheComment
}

type attrBuilder struct {
	name        string
	start       *util.ParseLocation
	parts       []syntax.ConcatPart
	currentPart *syntax.Text
	partStart   *util.ParseLocation
	quoted      bool
	dynamic     bool
}

// NewTreeUnifier creates a new TreeUnifier
func NewTreeUnifier(file *util.ParseSourceFile, options UnifyOptions) *TreeUnifier {
	u := &TreeUnifier{file: file, options: options}
	u.tokenizer = ml_parser.NewTokenizer(file, u, ml_parser.TokenizeOptions{Codemod: options.Codemod})
	return u
}

// Build converts the root program
func (u *TreeUnifier) Build(program *expression_parser.Program) (*syntax.Program, error) {
	root := &syntax.Program{BlockParams: program.BlockParams}
	root.SourceSpan = u.fileSpan()
	u._pushContainer(root)
	for _, stmt := range program.Body {
		u.statement(stmt)
		if u.err != nil {
			return nil, u.err
		}
	}
	u.tokenizer.Finish()
	if u.err != nil {
		return nil, u.err
	}
	if top := u._getContainer(); top != syntax.Node(root) {
		return nil, u.unclosed(top)
	}
	return root, nil
}

func (u *TreeUnifier) fileSpan() *util.ParseSourceSpan {
	start := util.NewParseLocation(u.file, 0, 1, 0)
	end := start.MoveBy(len(u.file.Content))
	return util.NewParseSourceSpan(start, end)
}

func (u *TreeUnifier) fail(span *util.ParseSourceSpan, format string, args ...any) {
	if u.err == nil {
		u.err = util.Errorf(util.ErrorKindStructure, span, format, args...)
	}
}

func (u *TreeUnifier) unclosed(node syntax.Node) error {
	if el, ok := node.(*syntax.Element); ok {
		return util.Errorf(util.ErrorKindStructure, el.Span(), "Unclosed element `%s`", el.Tag)
	}
	return util.Errorf(util.ErrorKindStructure, node.Span(), "Unclosed block")
}

func (u *TreeUnifier) location() *util.ParseLocation {
	return u.tokenizer.Location()
}

func (u *TreeUnifier) spanFrom(start *util.ParseLocation) *util.ParseSourceSpan {
	return util.NewParseSourceSpan(start, u.location())
}

func (u *TreeUnifier) _getContainer() syntax.Node {
	return u.containerStack[len(u.containerStack)-1]
}

func (u *TreeUnifier) _pushContainer(node syntax.Node) {
	if u.options.MaxDepth > 0 && len(u.containerStack) >= u.options.MaxDepth {
		u.fail(node.Span(), "Template nesting exceeds the maximum depth of %d", u.options.MaxDepth)
	}
	u.containerStack = append(u.containerStack, node)
}

func (u *TreeUnifier) _popContainer() syntax.Node {
	node := u._getContainer()
	u.containerStack = u.containerStack[:len(u.containerStack)-1]
	return node
}

func (u *TreeUnifier) _addToParent(node syntax.Statement) {
	switch parent := u._getContainer().(type) {
	case *syntax.Program:
		parent.Body = append(parent.Body, node)
	case *syntax.Element:
		parent.Children = append(parent.Children, node)
	}
}

// openElementTags lists the tags of the elements open in the current block,
// innermost first.
func (u *TreeUnifier) openElementTags() []string {
	var tags []string
	for i := len(u.containerStack) - 1; i >= 0; i-- {
		el, ok := u.containerStack[i].(*syntax.Element)
		if !ok {
			break
		}
		tags = append(tags, el.Tag)
	}
	return tags
}

// Statements

func (u *TreeUnifier) statement(stmt expression_parser.Statement) {
	switch s := stmt.(type) {
	case *expression_parser.ContentStatement:
		u.content(s)
	case *expression_parser.MustacheStatement:
		u.mustacheStatement(s)
	case *expression_parser.BlockStatement:
		u.blockStatement(s)
	case *expression_parser.CommentStatement:
		u.commentStatement(s)
	case *expression_parser.PartialStatement:
		if s.Program != nil {
			u.fail(s.Span(), "Handlebars partial blocks are not supported")
		} else {
			u.fail(s.Span(), "Handlebars partials are not supported")
		}
	case *expression_parser.DecoratorStatement:
		u.fail(s.Span(), "Handlebars decorators are not supported")
	default:
		u.fail(stmt.Span(), "Unexpected %s", stmt.Type())
	}
}

func (u *TreeUnifier) content(content *expression_parser.ContentStatement) {
	u.tokenizer.TokenizePart(content.Value, content.Span().Start)
	u.tokenizer.FlushData()
}

// inComment appends the source of node to the open HTML comment, if any.
func (u *TreeUnifier) inComment(node expression_parser.Node) bool {
	state := u.tokenizer.State()
	if !state.IsComment() {
		return false
	}
	switch state {
	case ml_parser.StateCommentStartDash, ml_parser.StateCommentEndDash:
		u.AppendToCommentData("-")
	case ml_parser.StateCommentEnd:
		u.AppendToCommentData("--")
	}
	if state != ml_parser.StateBogusComment {
		u.tokenizer.TransitionTo(ml_parser.StateComment)
	}
	u.AppendToCommentData(node.Span().String())
	return true
}

func (u *TreeUnifier) mustacheStatement(raw *expression_parser.MustacheStatement) {
	if u.inComment(raw) {
		return
	}
	mustache := u.mustache(raw)
	if mustache == nil {
		return
	}
	switch u.tokenizer.State() {
	case ml_parser.StateTagOpen, ml_parser.StateTagName, ml_parser.StateEndTagOpen, ml_parser.StateEndTagName:
		u.fail(mustache.Span(), "Cannot use mustaches in an elements tagname")
	case ml_parser.StateBeforeAttributeName:
		u.addElementModifier(mustache)
	case ml_parser.StateAttributeName, ml_parser.StateAfterAttributeName:
		u.BeginAttributeValue(false)
		u.FinishAttributeValue()
		u.addElementModifier(mustache)
		u.tokenizer.TransitionTo(ml_parser.StateBeforeAttributeName)
	case ml_parser.StateAfterAttributeValueQuoted, ml_parser.StateSelfClosingStartTag:
		u.addElementModifier(mustache)
		u.tokenizer.TransitionTo(ml_parser.StateBeforeAttributeName)
	case ml_parser.StateBeforeAttributeValue:
		u.BeginAttributeValue(false)
		u.appendDynamicAttributeValuePart(mustache)
		u.tokenizer.TransitionTo(ml_parser.StateAttributeValueUnquoted)
	case ml_parser.StateAttributeValueDoubleQuoted, ml_parser.StateAttributeValueSingleQuoted, ml_parser.StateAttributeValueUnquoted:
		u.appendDynamicAttributeValuePart(mustache)
	default:
		u.tokenizer.FlushData()
		u._addToParent(mustache)
	}
}

func (u *TreeUnifier) mustache(raw *expression_parser.MustacheStatement) *syntax.Mustache {
	mustache := &syntax.Mustache{
		Trusting: !raw.Escaped,
		Strip:    syntax.StripFlags(raw.Strip),
	}
	mustache.SourceSpan = raw.Span()
	if isLiteral(raw.Path) && len(raw.Params) == 0 && raw.Hash == nil {
		path, err := u.expression(raw.Path)
		if err != nil {
			u.err = err
			return nil
		}
		mustache.Path = path
		return mustache
	}
	path, params, hash, err := u.callNodes(raw.Path, raw.Params, raw.Hash)
	if err != nil {
		u.err = err
		return nil
	}
	mustache.Path, mustache.Params, mustache.Hash = path, params, hash
	return mustache
}

func (u *TreeUnifier) addElementModifier(mustache *syntax.Mustache) {
	if u.currentTag.end {
		u.fail(mustache.Span(), "Invalid end tag: closing tag must not have attributes")
		return
	}
	if syntax.IsLiteral(mustache.Path) {
		modifier := "{{" + syntax.Print(mustache.Path) + "}}"
		u.fail(mustache.Span(), "In <%s ... %s ..., %s is not a valid modifier", u.currentTag.name, modifier, modifier)
		return
	}
	modifier := &syntax.ElementModifier{Path: mustache.Path, Params: mustache.Params, Hash: mustache.Hash}
	modifier.SourceSpan = mustache.Span()
	u.currentTag.modifiers = append(u.currentTag.modifiers, modifier)
}

func (u *TreeUnifier) blockStatement(raw *expression_parser.BlockStatement) {
	if u.inComment(raw) {
		return
	}
	if raw.Decorator {
		u.fail(raw.Span(), "Handlebars decorator blocks are not supported")
		return
	}
	if state := u.tokenizer.State(); state != ml_parser.StateData && state != ml_parser.StateBeforeData {
		u.fail(raw.Span(), "A block may only be used inside an HTML element or another block.")
		return
	}
	u.tokenizer.FlushData()

	path, params, hash, err := u.callNodes(raw.Path, raw.Params, raw.Hash)
	if err != nil {
		u.err = err
		return
	}
	program := raw.Program
	if program == nil {
		program = &expression_parser.Program{}
		program.SourceSpan = util.NewParseSourceSpan(raw.Span().Start, raw.Span().Start)
	}
	block := &syntax.Block{
		Path:         path,
		Params:       params,
		Hash:         hash,
		OpenStrip:    syntax.StripFlags(raw.OpenStrip),
		InverseStrip: syntax.StripFlags(raw.InverseStrip),
		CloseStrip:   syntax.StripFlags(raw.CloseStrip),
	}
	block.SourceSpan = raw.Span()
	if block.Program = u.program(program); u.err != nil {
		return
	}
	if raw.Inverse != nil {
		if block.Inverse = u.program(raw.Inverse); u.err != nil {
			return
		}
	}
	u._addToParent(block)
}

// program converts a block body. Elements opened in the body must be closed
// in it.
func (u *TreeUnifier) program(raw *expression_parser.Program) *syntax.Program {
	program := &syntax.Program{BlockParams: raw.BlockParams, Chained: raw.Chained}
	program.SourceSpan = raw.Span()
	u._pushContainer(program)
	for _, stmt := range raw.Body {
		u.statement(stmt)
		if u.err != nil {
			return nil
		}
	}
	state := u.tokenizer.State()
	switch {
	case state.IsComment():
		u.fail(u.spanFrom(u.tagOpenLoc), "Unclosed comment")
		return nil
	case state != ml_parser.StateData && state != ml_parser.StateBeforeData:
		name := ""
		if u.currentTag != nil {
			name = u.currentTag.name
		}
		u.fail(u.spanFrom(u.tagOpenLoc), "Unclosed element `%s`", name)
		return nil
	}
	if top := u._popContainer(); top != syntax.Node(program) {
		u.err = u.unclosed(top)
		return nil
	}
	return program
}

func (u *TreeUnifier) commentStatement(raw *expression_parser.CommentStatement) {
	if u.inComment(raw) {
		return
	}
	comment := &syntax.MustacheComment{Value: raw.Value, Strip: syntax.StripFlags(raw.Strip)}
	comment.SourceSpan = raw.Span()
	switch state := u.tokenizer.State(); state {
	case ml_parser.StateBeforeAttributeName, ml_parser.StateAfterAttributeName:
		u.currentTag.comments = append(u.currentTag.comments, comment)
	case ml_parser.StateBeforeData, ml_parser.StateData:
		u.tokenizer.FlushData()
		u._addToParent(comment)
	default:
		u.fail(raw.Span(), "Using a Handlebars comment when in the `%s` state is not supported", state)
	}
}

// Expressions

func isLiteral(expr expression_parser.Expression) bool {
	switch expr.(type) {
	case *expression_parser.StringLiteral, *expression_parser.NumberLiteral, *expression_parser.BooleanLiteral,
		*expression_parser.NullLiteral, *expression_parser.UndefinedLiteral:
		return true
	}
	return false
}

func (u *TreeUnifier) callNodes(rawPath expression_parser.Expression, rawParams []expression_parser.Expression, rawHash *expression_parser.Hash) (syntax.Expression, []syntax.Expression, *syntax.Hash, error) {
	if isLiteral(rawPath) {
		value := literalSource(rawPath)
		shown := value
		if s, ok := rawPath.(*expression_parser.StringLiteral); ok {
			shown = s.Original
		}
		return nil, nil, nil, util.Errorf(util.ErrorKindStructure, rawPath.Span(),
			"%s \"%s\" cannot be called as a sub-expression, replace (%s) with %s", rawPath.Type(), shown, value, value)
	}
	path, err := u.expression(rawPath)
	if err != nil {
		return nil, nil, nil, err
	}
	var params []syntax.Expression
	for _, raw := range rawParams {
		param, err := u.expression(raw)
		if err != nil {
			return nil, nil, nil, err
		}
		params = append(params, param)
	}
	hash, err := u.hash(rawHash)
	if err != nil {
		return nil, nil, nil, err
	}
	return path, params, hash, nil
}

func literalSource(expr expression_parser.Expression) string {
	switch e := expr.(type) {
	case *expression_parser.StringLiteral:
		return `"` + e.Original + `"`
	case *expression_parser.NumberLiteral:
		return e.Value.String()
	case *expression_parser.BooleanLiteral:
		return e.Original
	case *expression_parser.NullLiteral:
		return "null"
	}
	return "undefined"
}

func (u *TreeUnifier) hash(raw *expression_parser.Hash) (*syntax.Hash, error) {
	if raw == nil {
		return nil, nil
	}
	hash := &syntax.Hash{}
	hash.SourceSpan = raw.Span()
	for _, rawPair := range raw.Pairs {
		value, err := u.expression(rawPair.Value)
		if err != nil {
			return nil, err
		}
		pair := &syntax.HashPair{Key: rawPair.Key, Value: value}
		pair.SourceSpan = rawPair.Span()
		hash.Pairs = append(hash.Pairs, pair)
	}
	return hash, nil
}

func (u *TreeUnifier) expression(raw expression_parser.Expression) (syntax.Expression, error) {
	span := raw.Span()
	switch e := raw.(type) {
	case *expression_parser.PathExpression:
		return u.path(e)
	case *expression_parser.SubExpression:
		path, params, hash, err := u.callNodes(e.Path, e.Params, e.Hash)
		if err != nil {
			return nil, err
		}
		return &syntax.SubExpression{Loc: syntax.Loc{SourceSpan: span}, Path: path, Params: params, Hash: hash}, nil
	case *expression_parser.StringLiteral:
		return &syntax.StringLiteral{Loc: syntax.Loc{SourceSpan: span}, Value: e.Value}, nil
	case *expression_parser.NumberLiteral:
		return &syntax.NumberLiteral{Loc: syntax.Loc{SourceSpan: span}, Value: e.Value, Original: e.Original}, nil
	case *expression_parser.BooleanLiteral:
		return &syntax.BooleanLiteral{Loc: syntax.Loc{SourceSpan: span}, Value: e.Value}, nil
	case *expression_parser.NullLiteral:
		return &syntax.NullLiteral{Loc: syntax.Loc{SourceSpan: span}}, nil
	case *expression_parser.UndefinedLiteral:
		return &syntax.UndefinedLiteral{Loc: syntax.Loc{SourceSpan: span}}, nil
	}
	return nil, util.Errorf(util.ErrorKindStructure, span, "Unexpected %s in expression position", raw.Type())
}

// path converts a path. Slash-separated paths are kept as a single segment;
// relative and parent paths are rejected.
func (u *TreeUnifier) path(raw *expression_parser.PathExpression) (*syntax.Path, error) {
	original := raw.Original
	span := raw.Span()
	parts := raw.Parts
	switch {
	case strings.Contains(original, "/"):
		switch {
		case strings.HasPrefix(original, "./"):
			return nil, util.NewParseError(util.ErrorKindStructure, span, `Using "./" is not supported in Glimmer and unnecessary`)
		case strings.HasPrefix(original, "../"):
			return nil, util.NewParseError(util.ErrorKindStructure, span, `Changing context using "../" is not supported in Glimmer`)
		case strings.Contains(original, "."):
			return nil, util.NewParseError(util.ErrorKindStructure, span, "Mixing '.' and '/' in paths is not supported in Glimmer; use only '.' to separate property paths")
		}
		parts = []string{strings.Join(raw.Parts, "/")}
	case original == ".":
		return nil, util.NewParseError(util.ErrorKindStructure, span, "'.' is not a supported path in Glimmer; check for a path with a trailing '.'")
	}
	if raw.Depth > 0 {
		return nil, util.NewParseError(util.ErrorKindStructure, span, `Changing context using "../" is not supported in Glimmer`)
	}
	path := &syntax.Path{Original: original, This: raw.This, Data: raw.Data, Parts: append([]string(nil), parts...)}
	path.SourceSpan = span
	return path, nil
}

// Tokenizer events

// Reset implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) Reset() {
	u.currentText, u.currentComment, u.currentTag, u.currentAttr = nil, nil, nil, nil
}

// BeginData implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) BeginData() {
	u.currentText = &syntax.Text{Loc: syntax.Loc{SourceSpan: util.NewParseSourceSpan(u.location(), nil)}}
}

// AppendToData implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) AppendToData(s string) {
	if u.currentText != nil {
		u.currentText.Chars += s
	}
}

// FinishData implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) FinishData() {
	text := u.currentText
	u.currentText = nil
	if text == nil || u.err != nil {
		return
	}
	text.SourceSpan = u.spanFrom(text.SourceSpan.Start)
	u._addToParent(text)
}

// BeginComment implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) BeginComment() {
	u.currentComment = &syntax.Comment{Loc: syntax.Loc{SourceSpan: util.NewParseSourceSpan(u.tagOpenLoc, nil)}}
}

// AppendToCommentData implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) AppendToCommentData(s string) {
	if u.currentComment != nil {
		u.currentComment.Value += s
	}
}

// FinishComment implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) FinishComment() {
	comment := u.currentComment
	u.currentComment = nil
	if comment == nil || u.err != nil {
		return
	}
	comment.SourceSpan = u.spanFrom(comment.SourceSpan.Start)
	u._addToParent(comment)
}

// TagOpen implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) TagOpen() {
	u.tagOpenLoc = u.location()
}

// BeginStartTag implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) BeginStartTag() {
	u.currentTag = &tagBuilder{start: u.tagOpenLoc}
}

// BeginEndTag implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) BeginEndTag() {
	u.currentTag = &tagBuilder{start: u.tagOpenLoc, end: true}
}

// AppendToTagName implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) AppendToTagName(s string) {
	u.currentTag.name += s
}

// MarkTagAsSelfClosing implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) MarkTagAsSelfClosing() {
	if u.currentTag.end {
		u.fail(u.spanFrom(u.currentTag.start), "Invalid end tag: closing tag must not be self-closing")
		return
	}
	u.currentTag.selfClosing = true
}

// FinishTag implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) FinishTag() {
	if u.err != nil {
		return
	}
	tag := u.currentTag
	if tag.end {
		u.finishEndTag(tag, false)
		return
	}
	if tag.name == ":" {
		u.fail(u.spanFrom(tag.start), "Invalid named block named detected, you may have created a named block without a name, or you may have began your name with a number. Named blocks must have names that are at least one character long, and begin with a lower case letter")
		return
	}
	u.finishStartTag(tag)
	if ml_parser.IsVoidElement(tag.name) || tag.selfClosing {
		u.finishEndTag(tag, true)
	}
}

func (u *TreeUnifier) finishStartTag(tag *tagBuilder) {
	attributes, blockParams, err := parseElementBlockParams(tag, u.spanFrom(tag.start))
	if err != nil {
		u.err = err
		return
	}
	element := &syntax.Element{
		Tag:         tag.name,
		SelfClosing: tag.selfClosing,
		Attributes:  attributes,
		Modifiers:   tag.modifiers,
		Comments:    tag.comments,
		BlockParams: blockParams,
	}
	element.SourceSpan = u.spanFrom(tag.start)
	u._pushContainer(element)
}

func (u *TreeUnifier) finishEndTag(tag *tagBuilder, isVoid bool) {
	span := u.spanFrom(tag.start)
	if ml_parser.IsVoidElement(tag.name) && !isVoid {
		u.fail(span, "<%s> elements do not need end tags. You should remove it", tag.name)
		return
	}
	element, ok := u._getContainer().(*syntax.Element)
	if !ok {
		u.fail(span, "Closing tag </%s> without an open tag%s", tag.name, u.closeTagHint(tag.name))
		return
	}
	if element.Tag != tag.name {
		u.fail(span, "Closing tag </%s> did not match last open tag <%s> (on line %d)%s",
			tag.name, element.Tag, element.Span().Start.Line, u.closeTagHint(tag.name))
		return
	}
	u._popContainer()
	element.SourceSpan = util.NewParseSourceSpan(element.Span().Start, u.location())
	u._addToParent(element)
}

// closeTagHint suggests an open element whose tag a mistyped close tag is
// close to.
func (u *TreeUnifier) closeTagHint(name string) string {
	match := util.ClosestMatch(name, u.openElementTags())
	if match == "" || match == name {
		return ""
	}
	return fmt.Sprintf(". Did you mean </%s>?", match)
}

// BeginAttribute implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) BeginAttribute() {
	u.currentAttr = &attrBuilder{start: u.location()}
}

// AppendToAttributeName implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) AppendToAttributeName(s string) {
	u.currentAttr.name += s
}

// BeginAttributeValue implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) BeginAttributeValue(quoted bool) {
	attr := u.currentAttr
	attr.quoted = quoted
	attr.currentPart = nil
	attr.partStart = u.location()
	if quoted {
		attr.partStart = attr.partStart.MoveBy(1)
	}
}

// AppendToAttributeValue implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) AppendToAttributeValue(s string) {
	attr := u.currentAttr
	if attr.currentPart == nil {
		attr.currentPart = &syntax.Text{}
		attr.currentPart.SourceSpan = util.NewParseSourceSpan(attr.partStart, nil)
	}
	attr.currentPart.Chars += s
	attr.currentPart.SourceSpan = util.NewParseSourceSpan(attr.currentPart.SourceSpan.Start, u.location())
}

func (u *TreeUnifier) finalizeTextPart() {
	attr := u.currentAttr
	if attr.currentPart != nil {
		attr.parts = append(attr.parts, attr.currentPart)
		attr.currentPart = nil
	}
}

func (u *TreeUnifier) appendDynamicAttributeValuePart(mustache *syntax.Mustache) {
	u.finalizeTextPart()
	attr := u.currentAttr
	attr.dynamic = true
	attr.parts = append(attr.parts, mustache)
	attr.partStart = mustache.Span().End
}

// FinishAttributeValue implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) FinishAttributeValue() {
	if u.err != nil {
		return
	}
	u.finalizeTextPart()
	attr := u.currentAttr
	span := u.spanFrom(attr.start)
	if u.currentTag.end {
		u.fail(span, "Invalid end tag: closing tag must not have attributes")
		return
	}
	value, err := assembleAttributeValue(attr, span)
	if err != nil {
		u.err = err
		return
	}
	attribute := &syntax.Attr{Name: attr.name, Value: value}
	attribute.SourceSpan = span
	u.currentTag.attributes = append(u.currentTag.attributes, attribute)
}

// assembleAttributeValue classifies an attribute value as static text, a
// single mustache, or a concatenation.
func assembleAttributeValue(attr *attrBuilder, span *util.ParseSourceSpan) (syntax.AttrValue, error) {
	if attr.dynamic {
		if attr.quoted {
			if len(attr.parts) == 1 {
				if mustache, ok := attr.parts[0].(*syntax.Mustache); ok {
					return mustache, nil
				}
			}
			concat := &syntax.Concat{Parts: attr.parts}
			concat.SourceSpan = util.NewParseSourceSpan(attr.parts[0].Span().Start, attr.parts[len(attr.parts)-1].Span().End)
			return concat, nil
		}
		head := attr.parts[0]
		if len(attr.parts) == 1 {
			return head.(syntax.AttrValue), nil
		}
		if text, ok := attr.parts[1].(*syntax.Text); ok && len(attr.parts) == 2 && text.Chars == "/" {
			return head.(syntax.AttrValue), nil
		}
		return nil, util.NewParseError(util.ErrorKindStructure, span,
			"An unquoted attribute value must be a string or a mustache, preceded by whitespace or a '=' character, and followed by whitespace, a '>' character, or '/>'")
	}
	if len(attr.parts) > 0 {
		return attr.parts[0].(*syntax.Text), nil
	}
	text := &syntax.Text{}
	text.SourceSpan = util.NewParseSourceSpan(span.End, span.End)
	return text, nil
}

// ReportSyntaxError implements ml_parser.TokenizerDelegate
func (u *TreeUnifier) ReportSyntaxError(msg string) {
	loc := u.location()
	u.warnings = append(u.warnings, util.NewParseWarning(util.ErrorKindTokenize, util.NewParseSourceSpan(loc, loc), msg))
}
