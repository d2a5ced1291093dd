package util

import (
	"fmt"
	"strings"
)

// ParseSourceFile represents a template source
type ParseSourceFile struct {
	Content string
	URL     string
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{
		Content: content,
		URL:     url,
	}
}

// ParseLocation represents a location in the source file. Line is 1-based,
// Col is 0-based, Offset is a byte offset into File.Content.
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{
		File:   file,
		Offset: offset,
		Line:   line,
		Col:    col,
	}
}

// String returns a string representation of the location
func (p *ParseLocation) String() string {
	url := ""
	if p.File != nil {
		url = p.File.URL
	}
	if url == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s@%d:%d", url, p.Line, p.Col)
}

// MoveBy moves the location forward by delta bytes, tracking line and column.
// Negative deltas are clamped to the start of the file.
func (p *ParseLocation) MoveBy(delta int) *ParseLocation {
	if p.File == nil {
		return NewParseLocation(nil, p.Offset+delta, p.Line, p.Col+delta)
	}
	source := p.File.Content
	offset, line, col := p.Offset, p.Line, p.Col

	for offset < len(source) && delta > 0 {
		ch := source[offset]
		offset++
		delta--
		if ch == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return NewParseLocation(p.File, offset, line, col)
}

// Context represents source context around a location
type Context struct {
	Before string
	After  string
}

// GetContext returns the source context around the location
func (p *ParseLocation) GetContext(maxChars, maxLines int) *Context {
	if p.File == nil || p.Offset < 0 {
		return nil
	}
	content := p.File.Content
	if len(content) == 0 {
		return &Context{}
	}
	startOffset := p.Offset
	if startOffset > len(content)-1 {
		startOffset = len(content) - 1
	}
	endOffset := startOffset

	ctxChars, ctxLines := 0, 0
	for ctxChars < maxChars && startOffset > 0 {
		startOffset--
		ctxChars++
		if content[startOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	ctxChars, ctxLines = 0, 0
	for ctxChars < maxChars && endOffset < len(content)-1 {
		endOffset++
		ctxChars++
		if content[endOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	offset := p.Offset
	if offset > len(content) {
		offset = len(content)
	}
	return &Context{
		Before: content[startOffset:offset],
		After:  content[offset : endOffset+1],
	}
}

// ParseSourceSpan represents a span of source code
type ParseSourceSpan struct {
	Start *ParseLocation
	End   *ParseLocation
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation) *ParseSourceSpan {
	if end == nil {
		end = start
	}
	return &ParseSourceSpan{
		Start: start,
		End:   end,
	}
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	if p == nil || p.Start == nil || p.Start.File == nil {
		return ""
	}
	content := p.Start.File.Content
	start, end := p.Start.Offset, p.End.Offset
	if start < 0 || end > len(content) || start > end {
		return ""
	}
	return content[start:end]
}

// Synthetic returns a zero-width span for nodes that do not come from the
// source, such as nodes produced by AST plugins.
func Synthetic() *ParseSourceSpan {
	loc := NewParseLocation(nil, -1, 1, 0)
	return NewParseSourceSpan(loc, loc)
}

// ParseErrorLevel represents the level of a parse error
type ParseErrorLevel int

const (
	ParseErrorLevelWarning ParseErrorLevel = iota
	ParseErrorLevelError
)

// ErrorKind classifies diagnostics by the pipeline stage that raised them.
type ErrorKind int

const (
	// ErrorKindTokenize is a malformed character sequence in tag or attribute
	// name position. It is recoverable.
	ErrorKindTokenize ErrorKind = iota
	// ErrorKindGrammar is an expression grammar failure.
	ErrorKindGrammar
	// ErrorKindStructure is an unbalanced or disallowed document construct.
	ErrorKindStructure
	// ErrorKindInternal marks an implementation defect, such as an opcode
	// without an encoder.
	ErrorKindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTokenize:
		return "TokenizeError"
	case ErrorKindGrammar:
		return "GrammarError"
	case ErrorKindStructure:
		return "StructureError"
	case ErrorKindInternal:
		return "InternalConsistencyFault"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError represents a compile diagnostic
type ParseError struct {
	Span  *ParseSourceSpan
	Msg   string
	Level ParseErrorLevel
	Kind  ErrorKind

	// Token and Expected are set on grammar errors.
	Token    string
	Expected []string
}

// NewParseError creates a new fatal ParseError of the given kind
func NewParseError(kind ErrorKind, span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelError,
		Kind:  kind,
	}
}

// NewParseWarning creates a new recoverable ParseError
func NewParseWarning(kind ErrorKind, span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelWarning,
		Kind:  kind,
	}
}

// Errorf creates a fatal ParseError with a formatted message
func Errorf(kind ErrorKind, span *ParseSourceSpan, format string, args ...any) *ParseError {
	return NewParseError(kind, span, fmt.Sprintf(format, args...))
}

// Location returns where the error starts, or nil when unknown.
func (p *ParseError) Location() *ParseLocation {
	if p.Span == nil {
		return nil
	}
	return p.Span.Start
}

// Error implements the error interface
func (p *ParseError) Error() string {
	return p.String()
}

// ContextualMessage returns the error message with context
func (p *ParseError) ContextualMessage() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	ctx := p.Span.Start.GetContext(100, 3)
	if ctx == nil {
		return p.Msg
	}
	levelStr := "ERROR"
	if p.Level == ParseErrorLevelWarning {
		levelStr = "WARNING"
	}
	return fmt.Sprintf(`%s ("%s[%s ->]%s")`, p.Msg, ctx.Before, levelStr, ctx.After)
}

// String returns a string representation of the error
func (p *ParseError) String() string {
	var b strings.Builder
	b.WriteString(p.Kind.String())
	b.WriteString(": ")
	b.WriteString(p.Msg)
	if loc := p.Location(); loc != nil && loc.Offset >= 0 {
		b.WriteString(" (")
		b.WriteString(loc.String())
		b.WriteString(")")
	}
	return b.String()
}
