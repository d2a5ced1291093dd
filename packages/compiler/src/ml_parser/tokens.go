package ml_parser

import "gtc-go/packages/compiler/src/util"

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeTAG_OPEN TokenType = iota
	TokenTypeTAG_CLOSE
	TokenTypeATTR_NAME
	TokenTypeATTR_VALUE_CHUNK
	TokenTypeTEXT_CHUNK
	TokenTypeCOMMENT_CHUNK
)

func (t TokenType) String() string {
	switch t {
	case TokenTypeTAG_OPEN:
		return "TagOpen"
	case TokenTypeTAG_CLOSE:
		return "TagClose"
	case TokenTypeATTR_NAME:
		return "AttrName"
	case TokenTypeATTR_VALUE_CHUNK:
		return "AttrValueChunk"
	case TokenTypeTEXT_CHUNK:
		return "TextChunk"
	case TokenTypeCOMMENT_CHUNK:
		return "CommentChunk"
	}
	return "Unknown"
}

// Token is a low-level markup token. Tokens only exist while a template is
// being tokenized; the tree unifier consumes the equivalent delegate events.
type Token struct {
	Type  TokenType
	Value string
	// SelfClosing is set on the TAG_CLOSE token synthesized for `<x />`.
	SelfClosing bool
	// Quoted is set on ATTR_VALUE_CHUNK tokens of quoted values.
	Quoted     bool
	SourceSpan *util.ParseSourceSpan
}

// TokenizerState names a state of the character state machine.
type TokenizerState int

const (
	StateBeforeData TokenizerState = iota
	StateData
	StateTagOpen
	StateMarkupDeclarationOpen
	StateBogusComment
	StateCommentStart
	StateCommentStartDash
	StateComment
	StateCommentEndDash
	StateCommentEnd
	StateTagName
	StateEndTagName
	StateEndTagOpen
	StateBeforeAttributeName
	StateAttributeName
	StateAfterAttributeName
	StateBeforeAttributeValue
	StateAttributeValueDoubleQuoted
	StateAttributeValueSingleQuoted
	StateAttributeValueUnquoted
	StateAfterAttributeValueQuoted
	StateSelfClosingStartTag
)

var stateNames = [...]string{
	StateBeforeData:                 "beforeData",
	StateData:                       "data",
	StateTagOpen:                    "tagOpen",
	StateMarkupDeclarationOpen:      "markupDeclarationOpen",
	StateBogusComment:               "bogusComment",
	StateCommentStart:               "commentStart",
	StateCommentStartDash:           "commentStartDash",
	StateComment:                    "comment",
	StateCommentEndDash:             "commentEndDash",
	StateCommentEnd:                 "commentEnd",
	StateTagName:                    "tagName",
	StateEndTagName:                 "endTagName",
	StateEndTagOpen:                 "endTagOpen",
	StateBeforeAttributeName:        "beforeAttributeName",
	StateAttributeName:              "attributeName",
	StateAfterAttributeName:         "afterAttributeName",
	StateBeforeAttributeValue:       "beforeAttributeValue",
	StateAttributeValueDoubleQuoted: "attributeValueDoubleQuoted",
	StateAttributeValueSingleQuoted: "attributeValueSingleQuoted",
	StateAttributeValueUnquoted:     "attributeValueUnquoted",
	StateAfterAttributeValueQuoted:  "afterAttributeValueQuoted",
	StateSelfClosingStartTag:        "selfClosingStartTag",
}

func (s TokenizerState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// IsComment reports whether the tokenizer is inside an HTML comment.
func (s TokenizerState) IsComment() bool {
	switch s {
	case StateCommentStart, StateCommentStartDash, StateComment, StateCommentEndDash, StateCommentEnd, StateBogusComment:
		return true
	}
	return false
}

// TokenizerDelegate receives the tokenizer's events. Each state handler
// consumes at most one character and may fire several callbacks.
type TokenizerDelegate interface {
	Reset()

	BeginData()
	AppendToData(s string)
	FinishData()

	BeginComment()
	AppendToCommentData(s string)
	FinishComment()

	TagOpen()
	BeginStartTag()
	BeginEndTag()
	AppendToTagName(s string)
	MarkTagAsSelfClosing()
	FinishTag()

	BeginAttribute()
	AppendToAttributeName(s string)
	BeginAttributeValue(quoted bool)
	AppendToAttributeValue(s string)
	FinishAttributeValue()

	ReportSyntaxError(msg string)
}
