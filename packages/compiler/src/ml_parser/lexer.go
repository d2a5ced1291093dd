package ml_parser

import (
	"iter"
	"strings"
	"unicode/utf8"

	"gtc-go/packages/compiler/src/core"
	"gtc-go/packages/compiler/src/util"
)

// TokenizeOptions configures a Tokenizer
type TokenizeOptions struct {
	// Codemod keeps character references and leading newlines verbatim.
	Codemod bool
}

// Tokenizer is the character-level markup state machine. It is fed content
// chunks with TokenizePart; its state survives between chunks so the caller
// can route embedded expressions by the current state.
type Tokenizer struct {
	file     *util.ParseSourceFile
	delegate TokenizerDelegate
	codemod  bool

	state         TokenizerState
	input         string
	index         int
	offset        int
	line          int
	column        int
	tagNameBuffer string
	inEndTag      bool
	skipFirstLf   bool
}

// NewTokenizer creates a new Tokenizer
func NewTokenizer(file *util.ParseSourceFile, delegate TokenizerDelegate, options TokenizeOptions) *Tokenizer {
	return &Tokenizer{
		file:     file,
		delegate: delegate,
		codemod:  options.Codemod,
		state:    StateBeforeData,
		line:     1,
	}
}

// State returns the current state
func (t *Tokenizer) State() TokenizerState {
	return t.state
}

// TransitionTo moves the state machine to state
func (t *Tokenizer) TransitionTo(state TokenizerState) {
	t.state = state
}

// Location returns the position of the next character to be consumed
func (t *Tokenizer) Location() *util.ParseLocation {
	return util.NewParseLocation(t.file, t.offset, t.line, t.column)
}

// Reset returns the tokenizer to its initial state
func (t *Tokenizer) Reset() {
	t.state = StateBeforeData
	t.input = ""
	t.index = 0
	t.tagNameBuffer = ""
	t.inEndTag = false
	t.skipFirstLf = false
	t.delegate.Reset()
}

// TokenizePart feeds chunk, which starts at start in the source file, to the
// state machine.
func (t *Tokenizer) TokenizePart(chunk string, start *util.ParseLocation) {
	t.begin(chunk, start)
	for t.index < len(t.input) {
		t.step()
	}
}

// FlushData finishes a pending text run. Content spliced in by the caller
// after a flush means a following newline is no longer the first one.
func (t *Tokenizer) FlushData() {
	t.skipFirstLf = false
	if t.state == StateData {
		t.delegate.FinishData()
		t.TransitionTo(StateBeforeData)
	}
}

// Finish closes whatever construct is still open at the end of input. Open
// tags and comments are completed rather than dropped, with a diagnostic.
func (t *Tokenizer) Finish() {
	switch t.state {
	case StateData:
		t.delegate.FinishData()
	case StateCommentStartDash, StateCommentEndDash:
		t.delegate.AppendToCommentData("-")
		t.unterminated("comment")
		t.delegate.FinishComment()
	case StateCommentEnd:
		t.delegate.AppendToCommentData("--")
		t.unterminated("comment")
		t.delegate.FinishComment()
	case StateCommentStart, StateComment, StateBogusComment:
		t.unterminated("comment")
		t.delegate.FinishComment()
	case StateTagOpen, StateEndTagOpen, StateMarkupDeclarationOpen:
		text := "<"
		if t.state == StateEndTagOpen {
			text = "</"
		} else if t.state == StateMarkupDeclarationOpen {
			text = "<!"
		}
		t.delegate.BeginData()
		t.delegate.AppendToData(text)
		t.delegate.FinishData()
	case StateAttributeName, StateAfterAttributeName, StateBeforeAttributeValue:
		t.delegate.BeginAttributeValue(false)
		t.delegate.FinishAttributeValue()
		t.unterminated("tag")
		t.finishTag()
	case StateAttributeValueDoubleQuoted, StateAttributeValueSingleQuoted, StateAttributeValueUnquoted:
		t.delegate.FinishAttributeValue()
		t.unterminated("tag")
		t.finishTag()
	case StateTagName, StateEndTagName, StateBeforeAttributeName, StateAfterAttributeValueQuoted, StateSelfClosingStartTag:
		t.unterminated("tag")
		t.finishTag()
	}
	t.TransitionTo(StateBeforeData)
}

func (t *Tokenizer) unterminated(what string) {
	t.delegate.ReportSyntaxError("unterminated " + what + " at end of template")
}

func (t *Tokenizer) begin(chunk string, start *util.ParseLocation) {
	t.input = chunk
	t.index = 0
	if start != nil {
		t.offset, t.line, t.column = start.Offset, start.Line, start.Col
	}
}

func (t *Tokenizer) peek() rune {
	if t.index >= len(t.input) {
		return core.CharEOF
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.index:])
	if r == core.CharCR {
		return core.CharLF
	}
	return r
}

// consume advances past the next character. CR and CRLF are read as a single
// LF so offsets stay relative to the untouched source.
func (t *Tokenizer) consume() rune {
	r, size := utf8.DecodeRuneInString(t.input[t.index:])
	if r == core.CharCR {
		r = core.CharLF
		if t.index+1 < len(t.input) && t.input[t.index+1] == '\n' {
			size = 2
		}
	}
	t.index += size
	t.offset += size
	if r == core.CharLF {
		t.line++
		t.column = 0
	} else {
		t.column++
	}
	return r
}

// consumeCharRef decodes a character reference whose '&' was just consumed.
func (t *Tokenizer) consumeCharRef() (string, bool) {
	if t.codemod {
		return "", false
	}
	end := strings.IndexByte(t.input[t.index:], ';')
	if end < 0 {
		return "", false
	}
	entity := t.input[t.index : t.index+end]
	chars, ok := decodeCharRef(entity)
	if !ok {
		return "", false
	}
	for i := 0; i <= end; i++ {
		t.consume()
	}
	return chars, true
}

func (t *Tokenizer) charRefOrAmpersand() string {
	if chars, ok := t.consumeCharRef(); ok {
		return chars
	}
	return "&"
}

func isTagNameStart(r rune) bool {
	return r == core.CharAT || r == core.CharCOLON || core.IsAsciiLetter(r)
}

// isTagStart reports whether the '<' under the cursor opens markup. A '<' at
// the very end of a chunk counts, so `<{{tag}}` is routed as a tag name.
func (t *Tokenizer) isTagStart() bool {
	if t.isIgnoredEndTag() {
		return false
	}
	next := t.index + 1
	if next >= len(t.input) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(t.input[next:])
	return r == core.CharBANG || r == core.CharSLASH || isTagNameStart(r)
}

func (t *Tokenizer) isIgnoredEndTag() bool {
	def := GetHtmlTagDefinition(t.tagNameBuffer)
	if def.ContentType() != TagContentTypeRAW_TEXT || t.inEndTag {
		return false
	}
	return !strings.HasPrefix(t.input[t.index:], "</"+t.tagNameBuffer+">")
}

// inScriptData reports whether character references are left alone. Title
// content is raw text for tag detection but still decodes references.
func (t *Tokenizer) inScriptData() bool {
	return !t.inEndTag && (t.tagNameBuffer == "script" || t.tagNameBuffer == "style")
}

func (t *Tokenizer) appendToTagName(s string) {
	t.tagNameBuffer += s
	t.delegate.AppendToTagName(s)
}

func (t *Tokenizer) finishTag() {
	t.delegate.FinishTag()
	t.TransitionTo(StateBeforeData)
	t.skipFirstLf = !t.inEndTag && !t.codemod && GetHtmlTagDefinition(strings.ToLower(t.tagNameBuffer)).IgnoreFirstLf()
	if t.inEndTag {
		t.tagNameBuffer = ""
		t.inEndTag = false
	}
}

// finishSelfClosingTag completes `<tag />`. The element has no content, so
// raw-text tags such as `<script />` do not switch the content model.
func (t *Tokenizer) finishSelfClosingTag() {
	t.delegate.FinishTag()
	t.TransitionTo(StateBeforeData)
	t.tagNameBuffer = ""
	t.inEndTag = false
	t.skipFirstLf = false
}

func (t *Tokenizer) openTag() {
	t.TransitionTo(StateTagOpen)
	t.delegate.TagOpen()
	t.consume()
}

func (t *Tokenizer) step() {
	switch t.state {
	case StateBeforeData:
		char := t.peek()
		skipLf := t.skipFirstLf
		t.skipFirstLf = false
		if char == core.CharLT && t.isTagStart() {
			t.openTag()
			return
		}
		if char == core.CharLF && skipLf {
			t.consume()
			return
		}
		t.TransitionTo(StateData)
		t.delegate.BeginData()

	case StateData:
		char := t.peek()
		switch {
		case char == core.CharLT && t.isTagStart():
			t.delegate.FinishData()
			t.openTag()
		case char == core.CharAMPERSAND && !t.inScriptData():
			t.consume()
			t.delegate.AppendToData(t.charRefOrAmpersand())
		default:
			t.consume()
			t.delegate.AppendToData(string(char))
		}

	case StateTagOpen:
		char := t.consume()
		switch {
		case char == core.CharBANG:
			t.TransitionTo(StateMarkupDeclarationOpen)
		case char == core.CharSLASH:
			t.TransitionTo(StateEndTagOpen)
		case isTagNameStart(char):
			t.TransitionTo(StateTagName)
			t.tagNameBuffer = ""
			t.inEndTag = false
			t.delegate.BeginStartTag()
			t.appendToTagName(string(char))
		default:
			t.delegate.ReportSyntaxError(string(char) + " cannot start a tag name")
			t.TransitionTo(StateData)
			t.delegate.BeginData()
			t.delegate.AppendToData("<" + string(char))
		}

	case StateMarkupDeclarationOpen:
		char := t.consume()
		if char == core.CharMINUS && t.peek() == core.CharMINUS {
			t.consume()
			t.TransitionTo(StateCommentStart)
			t.delegate.BeginComment()
			return
		}
		t.delegate.ReportSyntaxError("markup declarations are not supported; treating it as a comment")
		t.delegate.BeginComment()
		if char == core.CharGT {
			t.delegate.FinishComment()
			t.TransitionTo(StateBeforeData)
			return
		}
		t.delegate.AppendToCommentData(string(char))
		t.TransitionTo(StateBogusComment)

	case StateBogusComment:
		char := t.consume()
		if char == core.CharGT {
			t.delegate.FinishComment()
			t.TransitionTo(StateBeforeData)
		} else {
			t.delegate.AppendToCommentData(string(char))
		}

	case StateCommentStart:
		char := t.consume()
		switch char {
		case core.CharMINUS:
			t.TransitionTo(StateCommentStartDash)
		case core.CharGT:
			t.delegate.FinishComment()
			t.TransitionTo(StateBeforeData)
		default:
			t.delegate.AppendToCommentData(string(char))
			t.TransitionTo(StateComment)
		}

	case StateCommentStartDash:
		char := t.consume()
		switch char {
		case core.CharMINUS:
			t.TransitionTo(StateCommentEnd)
		case core.CharGT:
			t.delegate.FinishComment()
			t.TransitionTo(StateBeforeData)
		default:
			t.delegate.AppendToCommentData("-" + string(char))
			t.TransitionTo(StateComment)
		}

	case StateComment:
		char := t.consume()
		if char == core.CharMINUS {
			t.TransitionTo(StateCommentEndDash)
		} else {
			t.delegate.AppendToCommentData(string(char))
		}

	case StateCommentEndDash:
		char := t.consume()
		if char == core.CharMINUS {
			t.TransitionTo(StateCommentEnd)
		} else {
			t.delegate.AppendToCommentData("-" + string(char))
			t.TransitionTo(StateComment)
		}

	case StateCommentEnd:
		char := t.consume()
		if char == core.CharGT {
			t.delegate.FinishComment()
			t.TransitionTo(StateBeforeData)
		} else {
			t.delegate.AppendToCommentData("--" + string(char))
			t.TransitionTo(StateComment)
		}

	case StateTagName:
		char := t.consume()
		switch {
		case core.IsWhitespace(char):
			t.TransitionTo(StateBeforeAttributeName)
		case char == core.CharSLASH:
			t.TransitionTo(StateSelfClosingStartTag)
		case char == core.CharGT:
			t.finishTag()
		default:
			t.appendToTagName(string(char))
		}

	case StateEndTagOpen:
		char := t.consume()
		switch {
		case isTagNameStart(char):
			t.TransitionTo(StateEndTagName)
			t.tagNameBuffer = ""
			t.inEndTag = true
			t.delegate.BeginEndTag()
			t.appendToTagName(string(char))
		case char == core.CharGT:
			t.delegate.ReportSyntaxError("empty end tag `</>` is ignored")
			t.TransitionTo(StateBeforeData)
		default:
			t.delegate.ReportSyntaxError(string(char) + " cannot start an end tag name; treating it as a comment")
			t.delegate.BeginComment()
			t.delegate.AppendToCommentData(string(char))
			t.TransitionTo(StateBogusComment)
		}

	case StateEndTagName:
		char := t.consume()
		switch {
		case core.IsWhitespace(char):
			t.TransitionTo(StateBeforeAttributeName)
		case char == core.CharSLASH:
			t.TransitionTo(StateSelfClosingStartTag)
		case char == core.CharGT:
			t.finishTag()
		default:
			t.appendToTagName(string(char))
		}

	case StateBeforeAttributeName:
		char := t.peek()
		switch {
		case core.IsWhitespace(char):
			t.consume()
		case char == core.CharSLASH:
			t.TransitionTo(StateSelfClosingStartTag)
			t.consume()
		case char == core.CharGT:
			t.consume()
			t.finishTag()
		case char == core.CharEQ:
			t.delegate.ReportSyntaxError("attribute name cannot start with equals sign")
			t.TransitionTo(StateAttributeName)
			t.delegate.BeginAttribute()
			t.consume()
			t.delegate.AppendToAttributeName(string(char))
		default:
			t.TransitionTo(StateAttributeName)
			t.delegate.BeginAttribute()
		}

	case StateAttributeName:
		char := t.peek()
		switch {
		case core.IsWhitespace(char):
			t.TransitionTo(StateAfterAttributeName)
			t.consume()
		case char == core.CharSLASH:
			t.delegate.BeginAttributeValue(false)
			t.delegate.FinishAttributeValue()
			t.consume()
			t.TransitionTo(StateSelfClosingStartTag)
		case char == core.CharEQ:
			t.TransitionTo(StateBeforeAttributeValue)
			t.consume()
		case char == core.CharGT:
			t.delegate.BeginAttributeValue(false)
			t.delegate.FinishAttributeValue()
			t.consume()
			t.finishTag()
		case char == core.CharDQ || char == core.CharSQ || char == core.CharLT:
			t.delegate.ReportSyntaxError(string(char) + " is not a valid character within attribute names")
			t.consume()
			t.delegate.AppendToAttributeName(string(char))
		default:
			t.consume()
			t.delegate.AppendToAttributeName(string(char))
		}

	case StateAfterAttributeName:
		char := t.peek()
		switch {
		case core.IsWhitespace(char):
			t.consume()
		case char == core.CharSLASH:
			t.delegate.BeginAttributeValue(false)
			t.delegate.FinishAttributeValue()
			t.consume()
			t.TransitionTo(StateSelfClosingStartTag)
		case char == core.CharEQ:
			t.consume()
			t.TransitionTo(StateBeforeAttributeValue)
		case char == core.CharGT:
			t.delegate.BeginAttributeValue(false)
			t.delegate.FinishAttributeValue()
			t.consume()
			t.finishTag()
		default:
			t.delegate.BeginAttributeValue(false)
			t.delegate.FinishAttributeValue()
			t.TransitionTo(StateAttributeName)
			t.delegate.BeginAttribute()
			t.consume()
			t.delegate.AppendToAttributeName(string(char))
		}

	case StateBeforeAttributeValue:
		char := t.peek()
		switch {
		case core.IsWhitespace(char):
			t.consume()
		case char == core.CharDQ:
			t.TransitionTo(StateAttributeValueDoubleQuoted)
			t.delegate.BeginAttributeValue(true)
			t.consume()
		case char == core.CharSQ:
			t.TransitionTo(StateAttributeValueSingleQuoted)
			t.delegate.BeginAttributeValue(true)
			t.consume()
		case char == core.CharGT:
			t.delegate.BeginAttributeValue(false)
			t.delegate.FinishAttributeValue()
			t.consume()
			t.finishTag()
		default:
			t.TransitionTo(StateAttributeValueUnquoted)
			t.delegate.BeginAttributeValue(false)
			t.consume()
			if char == core.CharAMPERSAND {
				t.delegate.AppendToAttributeValue(t.charRefOrAmpersand())
			} else {
				t.delegate.AppendToAttributeValue(string(char))
			}
		}

	case StateAttributeValueDoubleQuoted, StateAttributeValueSingleQuoted:
		quote := core.CharDQ
		if t.state == StateAttributeValueSingleQuoted {
			quote = core.CharSQ
		}
		char := t.consume()
		switch char {
		case quote:
			t.delegate.FinishAttributeValue()
			t.TransitionTo(StateAfterAttributeValueQuoted)
		case core.CharAMPERSAND:
			t.delegate.AppendToAttributeValue(t.charRefOrAmpersand())
		default:
			t.delegate.AppendToAttributeValue(string(char))
		}

	case StateAttributeValueUnquoted:
		char := t.peek()
		switch {
		case core.IsWhitespace(char):
			t.delegate.FinishAttributeValue()
			t.consume()
			t.TransitionTo(StateBeforeAttributeName)
		case char == core.CharSLASH:
			t.delegate.FinishAttributeValue()
			t.consume()
			t.TransitionTo(StateSelfClosingStartTag)
		case char == core.CharAMPERSAND:
			t.consume()
			t.delegate.AppendToAttributeValue(t.charRefOrAmpersand())
		case char == core.CharGT:
			t.delegate.FinishAttributeValue()
			t.consume()
			t.finishTag()
		default:
			t.consume()
			t.delegate.AppendToAttributeValue(string(char))
		}

	case StateAfterAttributeValueQuoted:
		char := t.peek()
		switch {
		case core.IsWhitespace(char):
			t.consume()
			t.TransitionTo(StateBeforeAttributeName)
		case char == core.CharSLASH:
			t.consume()
			t.TransitionTo(StateSelfClosingStartTag)
		case char == core.CharGT:
			t.consume()
			t.finishTag()
		default:
			t.TransitionTo(StateBeforeAttributeName)
		}

	case StateSelfClosingStartTag:
		if t.peek() == core.CharGT {
			t.consume()
			t.delegate.MarkTagAsSelfClosing()
			t.finishSelfClosingTag()
		} else {
			t.TransitionTo(StateBeforeAttributeName)
		}
	}
}

// Tokenize returns the token sequence of a whole markup source. The
// sequence is lazy and drives a fresh tokenizer on every iteration.
func Tokenize(file *util.ParseSourceFile, options TokenizeOptions) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		collector := &tokenCollector{}
		t := NewTokenizer(file, collector, options)
		collector.tokenizer = t
		t.begin(file.Content, util.NewParseLocation(file, 0, 1, 0))
		for t.index < len(t.input) {
			t.step()
			if !collector.drain(yield) {
				return
			}
		}
		t.Finish()
		collector.drain(yield)
	}
}

// TokenizeAll tokenizes a whole markup source and returns the tokens together
// with the non-fatal diagnostics reported along the way.
func TokenizeAll(file *util.ParseSourceFile, options TokenizeOptions) ([]Token, []*util.ParseError) {
	collector := &tokenCollector{}
	t := NewTokenizer(file, collector, options)
	collector.tokenizer = t
	t.TokenizePart(file.Content, util.NewParseLocation(file, 0, 1, 0))
	t.Finish()
	return collector.pending, collector.diagnostics
}

// tokenCollector turns delegate events into Tokens.
type tokenCollector struct {
	tokenizer   *Tokenizer
	pending     []Token
	diagnostics []*util.ParseError

	start       *util.ParseLocation
	buf         strings.Builder
	tagStart    *util.ParseLocation
	tagName     string
	isEndTag    bool
	selfClosing bool
	openEmitted bool
	quoted      bool
}

func (c *tokenCollector) drain(yield func(Token) bool) bool {
	for len(c.pending) > 0 {
		tok := c.pending[0]
		c.pending = c.pending[1:]
		if !yield(tok) {
			return false
		}
	}
	return true
}

func (c *tokenCollector) emit(typ TokenType, value string, start *util.ParseLocation) {
	c.pending = append(c.pending, Token{
		Type:       typ,
		Value:      value,
		SourceSpan: util.NewParseSourceSpan(start, c.tokenizer.Location()),
	})
}

func (c *tokenCollector) Reset() {
	c.pending = nil
	c.buf.Reset()
}

func (c *tokenCollector) BeginData() {
	c.start = c.tokenizer.Location()
	c.buf.Reset()
}

func (c *tokenCollector) AppendToData(s string) { c.buf.WriteString(s) }

func (c *tokenCollector) FinishData() {
	c.emit(TokenTypeTEXT_CHUNK, c.buf.String(), c.start)
}

func (c *tokenCollector) BeginComment() {
	c.start = c.tagStart
	if c.start == nil {
		c.start = c.tokenizer.Location()
	}
	c.buf.Reset()
}

func (c *tokenCollector) AppendToCommentData(s string) { c.buf.WriteString(s) }

func (c *tokenCollector) FinishComment() {
	c.emit(TokenTypeCOMMENT_CHUNK, c.buf.String(), c.start)
}

func (c *tokenCollector) TagOpen() {
	c.tagStart = c.tokenizer.Location()
}

func (c *tokenCollector) BeginStartTag() {
	c.tagName, c.isEndTag, c.selfClosing, c.openEmitted = "", false, false, false
}

func (c *tokenCollector) BeginEndTag() {
	c.tagName, c.isEndTag, c.selfClosing, c.openEmitted = "", true, false, false
}

func (c *tokenCollector) AppendToTagName(s string) { c.tagName += s }

func (c *tokenCollector) emitOpen() {
	if c.openEmitted || c.isEndTag {
		return
	}
	c.openEmitted = true
	c.emit(TokenTypeTAG_OPEN, c.tagName, c.tagStart)
}

func (c *tokenCollector) MarkTagAsSelfClosing() {
	c.emitOpen()
	c.selfClosing = true
}

func (c *tokenCollector) FinishTag() {
	c.emitOpen()
	if c.isEndTag {
		c.emit(TokenTypeTAG_CLOSE, c.tagName, c.tagStart)
	} else if c.selfClosing {
		c.emit(TokenTypeTAG_CLOSE, c.tagName, c.tagStart)
		c.pending[len(c.pending)-1].SelfClosing = true
	}
}

func (c *tokenCollector) BeginAttribute() {
	c.emitOpen()
	c.start = c.tokenizer.Location()
	c.buf.Reset()
}

func (c *tokenCollector) AppendToAttributeName(s string) { c.buf.WriteString(s) }

func (c *tokenCollector) BeginAttributeValue(quoted bool) {
	c.emit(TokenTypeATTR_NAME, c.buf.String(), c.start)
	c.start = c.tokenizer.Location()
	c.quoted = quoted
	c.buf.Reset()
}

func (c *tokenCollector) AppendToAttributeValue(s string) { c.buf.WriteString(s) }

func (c *tokenCollector) FinishAttributeValue() {
	c.emit(TokenTypeATTR_VALUE_CHUNK, c.buf.String(), c.start)
	c.pending[len(c.pending)-1].Quoted = c.quoted
}

func (c *tokenCollector) ReportSyntaxError(msg string) {
	loc := c.tokenizer.Location()
	c.diagnostics = append(c.diagnostics, util.NewParseWarning(util.ErrorKindTokenize, util.NewParseSourceSpan(loc, loc), msg))
}
