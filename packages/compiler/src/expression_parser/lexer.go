package expression_parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"gtc-go/packages/compiler/src/util"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCONTENT TokenType = iota
	TokenTypeCOMMENT
	TokenTypeOPEN
	TokenTypeOPEN_UNESCAPED
	TokenTypeOPEN_BLOCK
	TokenTypeOPEN_ENDBLOCK
	TokenTypeOPEN_INVERSE
	TokenTypeOPEN_INVERSE_CHAIN
	TokenTypeINVERSE
	TokenTypeOPEN_PARTIAL
	TokenTypeOPEN_PARTIAL_BLOCK
	TokenTypeOPEN_SEXPR
	TokenTypeCLOSE_SEXPR
	TokenTypeCLOSE
	TokenTypeCLOSE_UNESCAPED
	TokenTypeID
	TokenTypeSEP
	TokenTypeDATA
	TokenTypeEQUALS
	TokenTypeSTRING
	TokenTypeNUMBER
	TokenTypeBOOLEAN
	TokenTypeUNDEFINED
	TokenTypeNULL
	TokenTypeOPEN_BLOCK_PARAMS
	TokenTypeCLOSE_BLOCK_PARAMS
	TokenTypeINVALID
	TokenTypeEOF
)

var tokenNames = [...]string{
	TokenTypeCONTENT:            "CONTENT",
	TokenTypeCOMMENT:            "COMMENT",
	TokenTypeOPEN:               "OPEN",
	TokenTypeOPEN_UNESCAPED:     "OPEN_UNESCAPED",
	TokenTypeOPEN_BLOCK:         "OPEN_BLOCK",
	TokenTypeOPEN_ENDBLOCK:      "OPEN_ENDBLOCK",
	TokenTypeOPEN_INVERSE:       "OPEN_INVERSE",
	TokenTypeOPEN_INVERSE_CHAIN: "OPEN_INVERSE_CHAIN",
	TokenTypeINVERSE:            "INVERSE",
	TokenTypeOPEN_PARTIAL:       "OPEN_PARTIAL",
	TokenTypeOPEN_PARTIAL_BLOCK: "OPEN_PARTIAL_BLOCK",
	TokenTypeOPEN_SEXPR:         "OPEN_SEXPR",
	TokenTypeCLOSE_SEXPR:        "CLOSE_SEXPR",
	TokenTypeCLOSE:              "CLOSE",
	TokenTypeCLOSE_UNESCAPED:    "CLOSE_UNESCAPED",
	TokenTypeID:                 "ID",
	TokenTypeSEP:                "SEP",
	TokenTypeDATA:               "DATA",
	TokenTypeEQUALS:             "EQUALS",
	TokenTypeSTRING:             "STRING",
	TokenTypeNUMBER:             "NUMBER",
	TokenTypeBOOLEAN:            "BOOLEAN",
	TokenTypeUNDEFINED:          "UNDEFINED",
	TokenTypeNULL:               "NULL",
	TokenTypeOPEN_BLOCK_PARAMS:  "OPEN_BLOCK_PARAMS",
	TokenTypeCLOSE_BLOCK_PARAMS: "CLOSE_BLOCK_PARAMS",
	TokenTypeINVALID:            "INVALID",
	TokenTypeEOF:                "EOF",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "UNKNOWN"
}

// Token represents a lexical token of the template source
type Token struct {
	Type TokenType
	// Text is the token's value: delimiters keep their full text (`{{~#`),
	// strings are unquoted.
	Text       string
	SourceSpan *util.ParseSourceSpan
}

// Is checks if the token has the given type
func (t *Token) Is(typ TokenType) bool {
	return t.Type == typ
}

type lexMode int

const (
	modeContent lexMode = iota
	modeMustache
	modeEscaped
)

// Lexer splits template source into content and mustache tokens
type Lexer struct {
	file   *util.ParseSourceFile
	input  string
	index  int
	line   int
	col    int
	mode   lexMode
	tokens []*Token
}

// NewLexer creates a new Lexer
func NewLexer(file *util.ParseSourceFile) *Lexer {
	return &Lexer{file: file, input: file.Content, line: 1}
}

// Tokenize lexes the whole source. The returned slice always ends with EOF.
func (l *Lexer) Tokenize() ([]*Token, error) {
	for l.index < len(l.input) {
		var err error
		switch l.mode {
		case modeContent:
			l.lexContent()
		case modeEscaped:
			l.lexEscaped()
		case modeMustache:
			err = l.lexMustache()
		}
		if err != nil {
			return nil, err
		}
	}
	loc := l.location()
	l.tokens = append(l.tokens, &Token{Type: TokenTypeEOF, SourceSpan: util.NewParseSourceSpan(loc, loc)})
	return l.tokens, nil
}

func (l *Lexer) location() *util.ParseLocation {
	return util.NewParseLocation(l.file, l.index, l.line, l.col)
}

// advance moves the cursor by n bytes, tracking lines and columns the same
// way the markup tokenizer does.
func (l *Lexer) advance(n int) {
	end := l.index + n
	for l.index < end {
		r, size := utf8.DecodeRuneInString(l.input[l.index:])
		switch {
		case r == '\n':
			l.line++
			l.col = 0
		case r == '\r':
			if l.index+1 < len(l.input) && l.input[l.index+1] == '\n' {
				size = 2
			}
			l.line++
			l.col = 0
		default:
			l.col++
		}
		l.index += size
	}
}

func (l *Lexer) emit(typ TokenType, n int, text string) {
	start := l.location()
	l.advance(n)
	l.tokens = append(l.tokens, &Token{Type: typ, Text: text, SourceSpan: util.NewParseSourceSpan(start, l.location())})
}

func (l *Lexer) errorf(n int, format string, args ...any) error {
	start := l.location()
	end := util.NewParseLocation(l.file, start.Offset+n, start.Line, start.Col+n)
	return util.Errorf(util.ErrorKindGrammar, util.NewParseSourceSpan(start, end), format, args...)
}

// lexContent consumes markup up to the next `{{`. A single backslash before
// `{{` escapes the mustache; a double backslash escapes the backslash.
func (l *Lexer) lexContent() {
	rest := l.input[l.index:]
	i := strings.Index(rest, "{{")
	if i < 0 {
		l.emit(TokenTypeCONTENT, len(rest), rest)
		return
	}
	text := rest[:i]
	switch {
	case strings.HasSuffix(text, `\\`):
		l.mode = modeMustache
		l.emit(TokenTypeCONTENT, i, text[:len(text)-1])
	case strings.HasSuffix(text, `\`):
		l.mode = modeEscaped
		if len(text) > 1 {
			l.emit(TokenTypeCONTENT, i, text[:len(text)-1])
		} else {
			l.advance(i)
		}
	default:
		l.mode = modeMustache
		if i > 0 {
			l.emit(TokenTypeCONTENT, i, text)
		}
	}
}

// lexEscaped consumes an escaped `{{…` as plain content, up to the next
// mustache or escape sequence.
func (l *Lexer) lexEscaped() {
	l.mode = modeContent
	rest := l.input[l.index:]
	end := len(rest)
	if len(rest) > 2 {
		if j := strings.Index(rest[2:], "{{"); j >= 0 {
			end = j + 2
			if end-2 >= 2 && rest[end-2:end] == `\\` {
				end -= 2
			} else if end-1 >= 2 && rest[end-1] == '\\' {
				end--
			}
		}
	}
	l.emit(TokenTypeCONTENT, end, rest[:end])
}

func isIDChar(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	switch {
	case r == '!' || r == '"' || r == '#':
		return false
	case r >= '%' && r <= ',':
		return false
	case r == '.' || r == '/':
		return false
	case r >= ';' && r <= '>':
		return false
	case r == '@':
		return false
	case r >= '[' && r <= '^':
		return false
	case r == '`':
		return false
	case r >= '{' && r <= '~':
		return false
	}
	return true
}

// isLookahead reports whether rest may follow an id.
func isLookahead(rest string) bool {
	if rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return strings.ContainsRune("=~}/.)|", r) || unicode.IsSpace(r)
}

// isLiteralLookahead reports whether rest may follow a literal keyword or number.
func isLiteralLookahead(rest string) bool {
	if rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return strings.ContainsRune("~})", r) || unicode.IsSpace(r)
}

func leadingSpace(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsSpace(r) {
			break
		}
		n += size
	}
	return n
}

// matchStandaloneInverse matches `{{^}}`, `{{else}}` and their `~` forms and
// returns the matched length.
func matchStandaloneInverse(rest string) int {
	n := 2
	if strings.HasPrefix(rest[n:], "~") {
		n++
	}
	if strings.HasPrefix(rest[n:], "^") {
		n++
	} else {
		n += leadingSpace(rest[n:])
		if !strings.HasPrefix(rest[n:], "else") {
			return 0
		}
		n += len("else")
	}
	n += leadingSpace(rest[n:])
	if strings.HasPrefix(rest[n:], "~") {
		n++
	}
	if strings.HasPrefix(rest[n:], "}}") {
		return n + 2
	}
	return 0
}

func (l *Lexer) lexOpen(rest string) error {
	if strings.HasPrefix(rest, "{{{{") {
		return l.errorf(4, "Raw blocks ({{{{ }}}}) are not supported")
	}
	n := 2
	if strings.HasPrefix(rest[n:], "~") {
		n++
	}
	body := rest[n:]
	switch {
	case strings.HasPrefix(body, ">"):
		l.emit(TokenTypeOPEN_PARTIAL, n+1, rest[:n+1])
	case strings.HasPrefix(body, "#>"):
		l.emit(TokenTypeOPEN_PARTIAL_BLOCK, n+2, rest[:n+2])
	case strings.HasPrefix(body, "#*"):
		l.emit(TokenTypeOPEN_BLOCK, n+2, rest[:n+2])
	case strings.HasPrefix(body, "#"):
		l.emit(TokenTypeOPEN_BLOCK, n+1, rest[:n+1])
	case strings.HasPrefix(body, "/"):
		l.emit(TokenTypeOPEN_ENDBLOCK, n+1, rest[:n+1])
	default:
		if m := matchStandaloneInverse(rest); m > 0 {
			l.mode = modeContent
			l.emit(TokenTypeINVERSE, m, rest[:m])
			return nil
		}
		if strings.HasPrefix(body, "^") {
			l.emit(TokenTypeOPEN_INVERSE, n+1, rest[:n+1])
			return nil
		}
		if sp := leadingSpace(body); strings.HasPrefix(body[sp:], "else") {
			m := n + sp + len("else")
			l.emit(TokenTypeOPEN_INVERSE_CHAIN, m, rest[:m])
			return nil
		}
		return l.lexOpenOther(rest, n)
	}
	return nil
}

func (l *Lexer) lexOpenOther(rest string, n int) error {
	body := rest[n:]
	switch {
	case strings.HasPrefix(body, "{"):
		l.emit(TokenTypeOPEN_UNESCAPED, n+1, rest[:n+1])
	case strings.HasPrefix(body, "&"):
		l.emit(TokenTypeOPEN, n+1, rest[:n+1])
	case strings.HasPrefix(body, "!--"):
		return l.lexLongComment(rest)
	case strings.HasPrefix(body, "!"):
		end := strings.Index(rest, "}}")
		if end < 0 {
			return l.errorf(n+1, "Unterminated comment")
		}
		l.mode = modeContent
		l.emit(TokenTypeCOMMENT, end+2, rest[:end+2])
	case strings.HasPrefix(body, "*"):
		l.emit(TokenTypeOPEN, n+1, rest[:n+1])
	default:
		l.emit(TokenTypeOPEN, n, rest[:n])
	}
	return nil
}

// lexLongComment consumes `{{!-- … --}}`, which may itself contain `}}`.
func (l *Lexer) lexLongComment(rest string) error {
	search := strings.Index(rest, "!--") + 3
	for {
		i := strings.Index(rest[search:], "--")
		if i < 0 {
			return l.errorf(len("{{!--"), "Unterminated comment")
		}
		end := search + i + 2
		if strings.HasPrefix(rest[end:], "~") {
			end++
		}
		if strings.HasPrefix(rest[end:], "}}") {
			end += 2
			l.mode = modeContent
			l.emit(TokenTypeCOMMENT, end, rest[:end])
			return nil
		}
		search += i + 1
	}
}

func (l *Lexer) lexMustache() error {
	rest := l.input[l.index:]
	if strings.HasPrefix(rest, "{{") {
		return l.lexOpen(rest)
	}
	r, size := utf8.DecodeRuneInString(rest)
	switch {
	case r == '(':
		l.emit(TokenTypeOPEN_SEXPR, 1, "(")
	case r == ')':
		l.emit(TokenTypeCLOSE_SEXPR, 1, ")")
	case r == '=':
		l.emit(TokenTypeEQUALS, 1, "=")
	case strings.HasPrefix(rest, ".."):
		l.emit(TokenTypeID, 2, "..")
	case r == '.' && isLookahead(rest[1:]):
		l.emit(TokenTypeID, 1, ".")
	case r == '.' || r == '/':
		l.emit(TokenTypeSEP, 1, rest[:1])
	case unicode.IsSpace(r):
		l.advance(leadingSpace(rest))
	case strings.HasPrefix(rest, "}}}") || strings.HasPrefix(rest, "}~}}"):
		n := 3
		if rest[1] == '~' {
			n = 4
		}
		l.mode = modeContent
		l.emit(TokenTypeCLOSE_UNESCAPED, n, rest[:n])
	case strings.HasPrefix(rest, "}}") || strings.HasPrefix(rest, "~}}"):
		n := 2
		if r == '~' {
			n = 3
		}
		l.mode = modeContent
		l.emit(TokenTypeCLOSE, n, rest[:n])
	case r == '"' || r == '\'':
		return l.lexString(rest, byte(r))
	case r == '@':
		l.emit(TokenTypeDATA, 1, "@")
	case r == '|':
		l.emit(TokenTypeCLOSE_BLOCK_PARAMS, 1, "|")
	case r == '[':
		return l.lexBracketID(rest)
	default:
		if l.lexLiteral(rest) {
			return nil
		}
		if strings.HasPrefix(rest, "as") {
			if sp := leadingSpace(rest[2:]); sp > 0 && strings.HasPrefix(rest[2+sp:], "|") {
				l.emit(TokenTypeOPEN_BLOCK_PARAMS, 2+sp+1, rest[:2+sp+1])
				return nil
			}
		}
		n := 0
		for n < len(rest) {
			c, s := utf8.DecodeRuneInString(rest[n:])
			if !isIDChar(c) {
				break
			}
			n += s
		}
		if n > 0 && isLookahead(rest[n:]) {
			l.emit(TokenTypeID, n, rest[:n])
			return nil
		}
		l.emit(TokenTypeINVALID, size, rest[:size])
	}
	return nil
}

func (l *Lexer) lexLiteral(rest string) bool {
	for _, kw := range []struct {
		text string
		typ  TokenType
	}{
		{"true", TokenTypeBOOLEAN},
		{"false", TokenTypeBOOLEAN},
		{"undefined", TokenTypeUNDEFINED},
		{"null", TokenTypeNULL},
	} {
		if strings.HasPrefix(rest, kw.text) && isLiteralLookahead(rest[len(kw.text):]) {
			l.emit(kw.typ, len(kw.text), kw.text)
			return true
		}
	}
	if n := matchNumber(rest); n > 0 && isLiteralLookahead(rest[n:]) {
		l.emit(TokenTypeNUMBER, n, rest[:n])
		return true
	}
	return false
}

// matchNumber matches -?[0-9]+(\.[0-9]+)? and returns its length.
func matchNumber(s string) int {
	n := 0
	if strings.HasPrefix(s, "-") {
		n++
	}
	digits := func(from int) int {
		i := from
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i
	}
	end := digits(n)
	if end == n {
		return 0
	}
	if end < len(s) && s[end] == '.' {
		if frac := digits(end + 1); frac > end+1 {
			end = frac
		}
	}
	return end
}

func (l *Lexer) lexString(rest string, quote byte) error {
	var b strings.Builder
	i := 1
	for i < len(rest) {
		c := rest[i]
		if c == '\\' && i+1 < len(rest) && rest[i+1] == quote {
			b.WriteByte(quote)
			i += 2
			continue
		}
		if c == quote {
			l.emit(TokenTypeSTRING, i+1, b.String())
			return nil
		}
		b.WriteByte(c)
		i++
	}
	return l.errorf(1, "Unterminated string literal")
}

// lexBracketID lexes `[literal segment]`. The brackets are kept so the
// parser can tell a literal `[this]` from the keyword.
func (l *Lexer) lexBracketID(rest string) error {
	var b strings.Builder
	b.WriteByte('[')
	i := 1
	for i < len(rest) {
		c := rest[i]
		if c == '\\' && i+1 < len(rest) && (rest[i+1] == ']' || rest[i+1] == '\\') {
			b.WriteByte(rest[i+1])
			i += 2
			continue
		}
		if c == ']' {
			b.WriteByte(']')
			l.emit(TokenTypeID, i+1, b.String())
			return nil
		}
		b.WriteByte(c)
		i++
	}
	return l.errorf(1, "Unterminated bracketed segment")
}
