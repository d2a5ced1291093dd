package expression_parser

import (
	"fmt"
	"slices"
	"strings"

	"gtc-go/packages/compiler/src/util"

	"github.com/shopspring/decimal"
)

// DefaultMaxDepth bounds block and sub-expression nesting
const DefaultMaxDepth = 256

// ParseOptions configures the parser
type ParseOptions struct {
	// MaxDepth bounds block and sub-expression nesting; 0 means DefaultMaxDepth.
	MaxDepth int
}

var (
	statementStarts = []TokenType{
		TokenTypeCONTENT, TokenTypeCOMMENT, TokenTypeOPEN, TokenTypeOPEN_UNESCAPED, TokenTypeOPEN_BLOCK,
		TokenTypeOPEN_INVERSE, TokenTypeOPEN_PARTIAL, TokenTypeOPEN_PARTIAL_BLOCK,
	}
	helperNameStarts = []TokenType{
		TokenTypeID, TokenTypeDATA, TokenTypeSTRING, TokenTypeNUMBER, TokenTypeBOOLEAN,
		TokenTypeUNDEFINED, TokenTypeNULL,
	}
	paramStarts   = append(slices.Clone(helperNameStarts), TokenTypeOPEN_SEXPR)
	programEnds   = []TokenType{TokenTypeOPEN_ENDBLOCK, TokenTypeINVERSE, TokenTypeOPEN_INVERSE_CHAIN}
	inverseEnds   = []TokenType{TokenTypeOPEN_ENDBLOCK}
	rootEnds      = []TokenType{TokenTypeEOF}
	blockParamEnd = []TokenType{TokenTypeID, TokenTypeCLOSE_BLOCK_PARAMS}
)

// Parser is a recursive descent parser over the mustache grammar
type Parser struct {
	file     *util.ParseSourceFile
	tokens   []*Token
	index    int
	depth    int
	maxDepth int
}

// Parse parses a template source into its expression AST
func Parse(source, url string) (*Program, error) {
	return ParseFile(util.NewParseSourceFile(source, url), ParseOptions{})
}

// ParseFile parses file with the given options
func ParseFile(file *util.ParseSourceFile, options ParseOptions) (*Program, error) {
	tokens, err := NewLexer(file).Tokenize()
	if err != nil {
		return nil, err
	}
	maxDepth := options.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &Parser{file: file, tokens: tokens, maxDepth: maxDepth}
	program, err := p.parseProgram(rootEnds)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenTypeEOF); err != nil {
		return nil, err
	}
	return program, nil
}

func (p *Parser) peek() *Token {
	return p.tokens[p.index]
}

func (p *Parser) peekAt(offset int) *Token {
	if p.index+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.index+offset]
}

func (p *Parser) next() *Token {
	tok := p.tokens[p.index]
	if tok.Type != TokenTypeEOF {
		p.index++
	}
	return tok
}

// prevEnd returns the end of the last consumed token.
func (p *Parser) prevEnd() *util.ParseLocation {
	if p.index == 0 {
		return util.NewParseLocation(p.file, 0, 1, 0)
	}
	return p.tokens[p.index-1].SourceSpan.End
}

func (p *Parser) spanFrom(start *util.ParseLocation) *util.ParseSourceSpan {
	return util.NewParseSourceSpan(start, p.prevEnd())
}

func (p *Parser) expect(types ...TokenType) (*Token, error) {
	tok := p.peek()
	if slices.Contains(types, tok.Type) {
		return p.next(), nil
	}
	return nil, p.unexpected(types...)
}

// unexpected builds the grammar error for the next token.
func (p *Parser) unexpected(expected ...TokenType) error {
	tok := p.peek()
	names := make([]string, 0, len(expected))
	for _, typ := range expected {
		name := typ.String()
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "'" + name + "'"
	}
	err := util.NewParseError(util.ErrorKindGrammar, tok.SourceSpan,
		fmt.Sprintf("Parse error on line %d: Expecting %s, got '%s'", tok.SourceSpan.Start.Line, strings.Join(quoted, ", "), tok.Type))
	err.Token = tok.Type.String()
	err.Expected = names
	return err
}

func (p *Parser) enter(span *util.ParseSourceSpan) error {
	p.depth++
	if p.depth > p.maxDepth {
		return util.Errorf(util.ErrorKindGrammar, span, "Template nesting exceeds the maximum depth of %d", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseProgram(ends []TokenType) (*Program, error) {
	start := p.peek().SourceSpan.Start
	program := &Program{}
	for {
		tok := p.peek()
		if slices.Contains(ends, tok.Type) {
			break
		}
		stmt, err := p.parseStatement(ends)
		if err != nil {
			return nil, err
		}
		program.Body = append(program.Body, stmt)
	}
	program.SourceSpan = util.NewParseSourceSpan(start, p.peek().SourceSpan.Start)
	return program, nil
}

func (p *Parser) parseStatement(ends []TokenType) (Statement, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenTypeCONTENT:
		p.next()
		content := &ContentStatement{Value: tok.Text, Original: tok.Text}
		content.SourceSpan = tok.SourceSpan
		return content, nil
	case TokenTypeCOMMENT:
		p.next()
		comment := &CommentStatement{Value: stripComment(tok.Text), Strip: stripFlags(tok.Text, tok.Text)}
		comment.SourceSpan = tok.SourceSpan
		return comment, nil
	case TokenTypeOPEN, TokenTypeOPEN_UNESCAPED:
		return p.parseMustache()
	case TokenTypeOPEN_BLOCK, TokenTypeOPEN_INVERSE:
		return p.parseBlock()
	case TokenTypeOPEN_PARTIAL:
		return p.parsePartial()
	case TokenTypeOPEN_PARTIAL_BLOCK:
		return p.parsePartialBlock()
	}
	return nil, p.unexpected(append(slices.Clone(statementStarts), ends...)...)
}

func (p *Parser) parseMustache() (Statement, error) {
	open := p.next()
	closeType := TokenTypeCLOSE
	if open.Type == TokenTypeOPEN_UNESCAPED {
		closeType = TokenTypeCLOSE_UNESCAPED
	}
	path, params, hash, err := p.parseCall(closeType)
	if err != nil {
		return nil, err
	}
	close, err := p.expect(closeType)
	if err != nil {
		return nil, err
	}
	span := p.spanFrom(open.SourceSpan.Start)
	strip := stripFlags(open.Text, close.Text)
	if strings.Contains(open.Text, "*") {
		decorator := &DecoratorStatement{Path: path, Params: params, Hash: hash, Strip: strip}
		decorator.SourceSpan = span
		return decorator, nil
	}
	mustache := &MustacheStatement{Path: path, Params: params, Hash: hash, Escaped: isEscaped(open.Text), Strip: strip}
	mustache.SourceSpan = span
	return mustache, nil
}

// parseCall parses `helperName param* hash?`.
func (p *Parser) parseCall(follow ...TokenType) (Expression, []Expression, *Hash, error) {
	path, err := p.parseHelperName()
	if err != nil {
		return nil, nil, nil, err
	}
	params, hash, err := p.parseArguments(follow...)
	if err != nil {
		return nil, nil, nil, err
	}
	return path, params, hash, nil
}

func (p *Parser) isHashStart() bool {
	return p.peek().Type == TokenTypeID && p.peekAt(1).Type == TokenTypeEQUALS
}

// parseArguments parses `param* hash?` and checks that one of follow comes next.
func (p *Parser) parseArguments(follow ...TokenType) ([]Expression, *Hash, error) {
	var params []Expression
	for slices.Contains(paramStarts, p.peek().Type) && !p.isHashStart() {
		param, err := p.parseParam()
		if err != nil {
			return nil, nil, err
		}
		params = append(params, param)
	}
	var hash *Hash
	if p.isHashStart() {
		var err error
		if hash, err = p.parseHash(); err != nil {
			return nil, nil, err
		}
	}
	if !slices.Contains(follow, p.peek().Type) {
		expected := slices.Clone(follow)
		if hash == nil {
			expected = append(expected, paramStarts...)
		}
		return nil, nil, p.unexpected(expected...)
	}
	return params, hash, nil
}

func (p *Parser) parseHash() (*Hash, error) {
	start := p.peek().SourceSpan.Start
	hash := &Hash{}
	for p.isHashStart() {
		key := p.next()
		p.next()
		value, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		pair := &HashPair{Key: id(key.Text), Value: value}
		pair.SourceSpan = p.spanFrom(key.SourceSpan.Start)
		hash.Pairs = append(hash.Pairs, pair)
	}
	hash.SourceSpan = p.spanFrom(start)
	return hash, nil
}

func (p *Parser) parseParam() (Expression, error) {
	if p.peek().Type == TokenTypeOPEN_SEXPR {
		return p.parseSexpr()
	}
	return p.parseHelperName()
}

func (p *Parser) parseSexpr() (Expression, error) {
	open := p.next()
	if err := p.enter(open.SourceSpan); err != nil {
		return nil, err
	}
	defer p.leave()
	path, params, hash, err := p.parseCall(TokenTypeCLOSE_SEXPR)
	if err != nil {
		return nil, err
	}
	p.next()
	sexpr := &SubExpression{Path: path, Params: params, Hash: hash}
	sexpr.SourceSpan = p.spanFrom(open.SourceSpan.Start)
	return sexpr, nil
}

func (p *Parser) parseHelperName() (Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenTypeID:
		return p.parsePath(false, tok.SourceSpan.Start)
	case TokenTypeDATA:
		p.next()
		if p.peek().Type != TokenTypeID {
			return nil, p.unexpected(TokenTypeID)
		}
		return p.parsePath(true, tok.SourceSpan.Start)
	case TokenTypeSTRING:
		p.next()
		lit := &StringLiteral{Value: tok.Text, Original: tok.Text}
		lit.SourceSpan = tok.SourceSpan
		return lit, nil
	case TokenTypeNUMBER:
		p.next()
		value, err := decimal.NewFromString(tok.Text)
		if err != nil {
			return nil, util.Errorf(util.ErrorKindGrammar, tok.SourceSpan, "Invalid number literal %q", tok.Text)
		}
		lit := &NumberLiteral{Value: value, Original: tok.Text}
		lit.SourceSpan = tok.SourceSpan
		return lit, nil
	case TokenTypeBOOLEAN:
		p.next()
		lit := &BooleanLiteral{Value: tok.Text == "true", Original: tok.Text}
		lit.SourceSpan = tok.SourceSpan
		return lit, nil
	case TokenTypeUNDEFINED:
		p.next()
		lit := &UndefinedLiteral{}
		lit.SourceSpan = tok.SourceSpan
		return lit, nil
	case TokenTypeNULL:
		p.next()
		lit := &NullLiteral{}
		lit.SourceSpan = tok.SourceSpan
		return lit, nil
	}
	return nil, p.unexpected(helperNameStarts...)
}

func (p *Parser) parsePath(data bool, start *util.ParseLocation) (Expression, error) {
	first := p.next()
	segments := []pathSegment{{part: id(first.Text), original: first.Text}}
	for p.peek().Type == TokenTypeSEP {
		sep := p.next()
		part, err := p.expect(TokenTypeID)
		if err != nil {
			return nil, err
		}
		segments = append(segments, pathSegment{part: id(part.Text), original: part.Text, separator: sep.Text})
	}
	path, err := preparePath(data, segments, p.spanFrom(start))
	if err != nil {
		return nil, err
	}
	return path, nil
}

func (p *Parser) parseBlockParams() ([]string, error) {
	p.next()
	var names []string
	for p.peek().Type == TokenTypeID {
		names = append(names, id(p.next().Text))
	}
	if len(names) == 0 {
		return nil, p.unexpected(TokenTypeID)
	}
	if _, err := p.expect(blockParamEnd...); err != nil {
		return nil, err
	}
	return names, nil
}

// parseOpen parses the head of a block, inverse or chain opener.
func (p *Parser) parseOpen() (*openInfo, error) {
	open := p.next()
	path, params, hash, err := p.parseCall(TokenTypeCLOSE, TokenTypeOPEN_BLOCK_PARAMS)
	if err != nil {
		return nil, err
	}
	info := &openInfo{open: open.Text, path: path, params: params, hash: hash}
	if p.peek().Type == TokenTypeOPEN_BLOCK_PARAMS {
		if info.blockParams, err = p.parseBlockParams(); err != nil {
			return nil, err
		}
	}
	close, err := p.expect(TokenTypeCLOSE)
	if err != nil {
		return nil, err
	}
	info.strip = stripFlags(open.Text, close.Text)
	return info, nil
}

func (p *Parser) parseClose() (*closeInfo, error) {
	open, err := p.expect(TokenTypeOPEN_ENDBLOCK)
	if err != nil {
		return nil, err
	}
	path, err := p.parseHelperName()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(TokenTypeCLOSE)
	if err != nil {
		return nil, err
	}
	return &closeInfo{path: path, strip: stripFlags(open.Text, close.Text)}, nil
}

func (p *Parser) parseBlock() (Statement, error) {
	start := p.peek()
	if err := p.enter(start.SourceSpan); err != nil {
		return nil, err
	}
	defer p.leave()

	inverted := start.Type == TokenTypeOPEN_INVERSE
	open, err := p.parseOpen()
	if err != nil {
		return nil, err
	}
	ends := programEnds
	if inverted {
		ends = []TokenType{TokenTypeOPEN_ENDBLOCK, TokenTypeINVERSE}
	}
	program, err := p.parseProgram(ends)
	if err != nil {
		return nil, err
	}
	var inverse *inverseInfo
	switch p.peek().Type {
	case TokenTypeINVERSE:
		if inverse, err = p.parseInverseAndProgram(); err != nil {
			return nil, err
		}
	case TokenTypeOPEN_INVERSE_CHAIN:
		if inverse, err = p.parseInverseChain(); err != nil {
			return nil, err
		}
	}
	close, err := p.parseClose()
	if err != nil {
		return nil, err
	}
	block, err := prepareBlock(open, program, inverse, close, inverted, p.spanFrom(start.SourceSpan.Start))
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseInverseAndProgram() (*inverseInfo, error) {
	tok := p.next()
	program, err := p.parseProgram(inverseEnds)
	if err != nil {
		return nil, err
	}
	return &inverseInfo{strip: stripFlags(tok.Text, tok.Text), program: program}, nil
}

// parseInverseChain parses `{{else if …}}` and what follows it into a
// synthetic chained program holding one block.
func (p *Parser) parseInverseChain() (*inverseInfo, error) {
	startTok := p.peek()
	if err := p.enter(startTok.SourceSpan); err != nil {
		return nil, err
	}
	defer p.leave()
	start := startTok.SourceSpan.Start
	open, err := p.parseOpen()
	if err != nil {
		return nil, err
	}
	program, err := p.parseProgram(programEnds)
	if err != nil {
		return nil, err
	}
	var nested *inverseInfo
	switch p.peek().Type {
	case TokenTypeINVERSE:
		nested, err = p.parseInverseAndProgram()
	case TokenTypeOPEN_INVERSE_CHAIN:
		nested, err = p.parseInverseChain()
	}
	if err != nil {
		return nil, err
	}
	var close *closeInfo
	if nested != nil {
		close = &closeInfo{strip: nested.strip}
	}
	span := p.spanFrom(start)
	block, err := prepareBlock(open, program, nested, close, false, span)
	if err != nil {
		return nil, err
	}
	chained := &Program{Body: []Statement{block}, Chained: true}
	chained.SourceSpan = program.SourceSpan
	return &inverseInfo{strip: open.strip, program: chained, chain: true}, nil
}

func (p *Parser) parsePartial() (Statement, error) {
	open := p.next()
	name, params, hash, err := p.parsePartialHead()
	if err != nil {
		return nil, err
	}
	close := p.next()
	partial := &PartialStatement{Name: name, Params: params, Hash: hash, Strip: stripFlags(open.Text, close.Text)}
	partial.SourceSpan = p.spanFrom(open.SourceSpan.Start)
	return partial, nil
}

func (p *Parser) parsePartialHead() (Expression, []Expression, *Hash, error) {
	var name Expression
	var err error
	if p.peek().Type == TokenTypeOPEN_SEXPR {
		name, err = p.parseSexpr()
	} else {
		name, err = p.parseHelperName()
	}
	if err != nil {
		return nil, nil, nil, err
	}
	params, hash, err := p.parseArguments(TokenTypeCLOSE)
	if err != nil {
		return nil, nil, nil, err
	}
	return name, params, hash, nil
}

func (p *Parser) parsePartialBlock() (Statement, error) {
	open := p.next()
	if err := p.enter(open.SourceSpan); err != nil {
		return nil, err
	}
	defer p.leave()
	name, params, hash, err := p.parsePartialHead()
	if err != nil {
		return nil, err
	}
	openClose := p.next()
	program, err := p.parseProgram(inverseEnds)
	if err != nil {
		return nil, err
	}
	close, err := p.parseClose()
	if err != nil {
		return nil, err
	}
	if originalOf(name) != originalOf(close.path) {
		return nil, util.NewParseError(util.ErrorKindGrammar, name.Span(), originalOf(name)+" doesn't match "+originalOf(close.path))
	}
	partial := &PartialStatement{Name: name, Params: params, Hash: hash, Program: program, Strip: stripFlags(open.Text, openClose.Text)}
	partial.SourceSpan = p.spanFrom(open.SourceSpan.Start)
	return partial, nil
}
