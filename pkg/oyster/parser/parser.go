package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sambeau/oyster/pkg/oyster/ast"
	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
	"github.com/sambeau/oyster/pkg/oyster/lexer"
)

// Parser is a recursive-descent parser over a token slice. curToken is always
// the next token to be consumed.
type Parser struct {
	tokens []lexer.Token
	pos    int
	eof    lexer.Token

	curToken  lexer.Token
	peekToken lexer.Token

	// depth counts open '(' and '['; newlines inside them are skipped
	depth int

	structuredErrors []*perrors.OysterError
}

// New creates a parser for the given tokens
func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, eof: eofToken(tokens)}
	p.pos = -1
	p.nextToken()
	return p
}

// Parse parses tokens into a program, returning the first error found.
func Parse(tokens []lexer.Token) (ast.Program, error) {
	p := New(tokens)
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return program, nil
}

// eofToken places the end-of-input marker just after the last token.
func eofToken(tokens []lexer.Token) lexer.Token {
	if len(tokens) == 0 {
		return lexer.Token{Type: lexer.EOF, Line: 1, Column: 1}
	}
	last := tokens[len(tokens)-1]
	if last.Type == lexer.NEWLINE {
		return lexer.Token{Type: lexer.EOF, Line: last.Line + 1, Column: 1}
	}
	return lexer.Token{
		Type:   lexer.EOF,
		Line:   last.Line,
		Column: last.Column + utf8.RuneCountInString(last.Literal),
	}
}

func (p *Parser) tokenAt(i int) lexer.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.eof
}

func (p *Parser) nextToken() {
	p.pos++
	for p.depth > 0 && p.tokenAt(p.pos).Type == lexer.NEWLINE {
		p.pos++
	}
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

// Errors returns parser errors as strings
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		result[i] = err.String()
	}
	return result
}

// StructuredErrors returns parser errors as structured OysterError objects.
func (p *Parser) StructuredErrors() []*perrors.OysterError {
	return p.structuredErrors
}

// addStructuredError adds an error from the catalog.
// Only the first error is recorded - subsequent errors are usually cascading noise.
func (p *Parser) addStructuredError(code string, tok lexer.Token, data map[string]any) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, perrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

func (p *Parser) failed() bool {
	return len(p.structuredErrors) > 0
}

// ParseProgram parses the program and returns the AST
func (p *Parser) ParseProgram() ast.Program {
	var statements []ast.Statement

	for !p.failed() {
		for p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMI) {
			p.nextToken()
		}
		if p.curTokenIs(lexer.EOF) {
			break
		}

		stmt := p.parseStatement()
		if p.failed() {
			break
		}
		statements = append(statements, stmt)

		if !p.curTokenIs(lexer.NEWLINE) && !p.curTokenIs(lexer.SEMI) && !p.curTokenIs(lexer.EOF) {
			p.addStructuredError("PARSE-0002", p.curToken, map[string]any{
				"Tokens": p.restOfStatement(),
			})
		}
	}

	// build the chain back to front
	var program ast.Program = &ast.End{}
	for i := len(statements) - 1; i >= 0; i-- {
		program = &ast.Sequence{Statement: statements[i], Next: program}
	}
	return program
}

// restOfStatement lists the unconsumed tokens up to the next terminator.
func (p *Parser) restOfStatement() string {
	var parts []string
	for i := p.pos; i < len(p.tokens); i++ {
		tok := p.tokens[i]
		if tok.Type == lexer.NEWLINE || tok.Type == lexer.SEMI {
			break
		}
		parts = append(parts, tok.Literal)
	}
	return strings.Join(parts, " ")
}

// parseStatement parses '$name = expr' or a bare expression
func (p *Parser) parseStatement() ast.Statement {
	if p.curTokenIs(lexer.VAR) && p.peekTokenIs(lexer.ASSIGN) {
		stmt := &ast.AssignStatement{
			Token: p.curToken,
			Name:  strings.TrimPrefix(p.curToken.Literal, "$"),
		}
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression()
		return stmt
	}

	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression()
	return stmt
}

// parseExpression decides once, on the leading token, between a command and
// arithmetic.
func (p *Parser) parseExpression() ast.Expression {
	if p.curTokenIs(lexer.PATH) {
		return p.parseCommand()
	}

	left := p.parseTerm()
	for !p.failed() && (p.curTokenIs(lexer.PLUS) || p.curTokenIs(lexer.MINUS)) {
		op := p.curToken
		p.nextToken()
		right := p.parseTerm()
		left = &ast.InfixExpression{Token: op, Left: left, Operator: op.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expression {
	left := p.parseFactor()
	for !p.failed() && (p.curTokenIs(lexer.ASTERISK) || p.curTokenIs(lexer.SLASH) || p.curTokenIs(lexer.PERCENT)) {
		op := p.curToken
		p.nextToken()
		right := p.parseFactor()
		left = &ast.InfixExpression{Token: op, Left: left, Operator: op.Literal, Right: right}
	}
	return left
}

// parseCommand takes the path and then every factor that follows it.
func (p *Parser) parseCommand() ast.Expression {
	cmd := &ast.CommandExpression{
		Path: &ast.PathLiteral{Token: p.curToken, Value: p.curToken.Literal},
	}
	p.nextToken()

	for !p.failed() && canStartFactor(p.curToken.Type) {
		cmd.Arguments = append(cmd.Arguments, p.parseFactor())
	}
	return cmd
}

func canStartFactor(t lexer.TokenType) bool {
	switch t {
	case lexer.NUM, lexer.STR, lexer.PATH, lexer.PARAM, lexer.VAR, lexer.LPAREN, lexer.LBRACKET:
		return true
	}
	return false
}

func (p *Parser) parseFactor() ast.Expression {
	tok := p.curToken

	switch tok.Type {
	case lexer.NUM:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addStructuredError("PARSE-0001", tok, map[string]any{
				"Expected": "number",
				"Got":      tok.Literal,
			})
			return nil
		}
		p.nextToken()
		return &ast.NumberLiteral{Token: tok, Value: value}

	case lexer.STR:
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal[1 : len(tok.Literal)-1]}

	case lexer.PATH:
		p.nextToken()
		return &ast.PathLiteral{Token: tok, Value: tok.Literal}

	case lexer.PARAM:
		p.nextToken()
		return &ast.ParamLiteral{Token: tok, Value: tok.Literal}

	case lexer.VAR:
		p.nextToken()
		return &ast.Variable{Token: tok, Name: strings.TrimPrefix(tok.Literal, "$")}

	case lexer.LPAREN:
		p.depth++
		p.nextToken()
		expr := p.parseExpression()
		if p.failed() {
			return nil
		}
		if !p.expectClose(lexer.RPAREN, "')'") {
			return nil
		}
		return expr

	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	}

	p.addStructuredError("PARSE-0001", tok, map[string]any{
		"Expected": "expression",
		"Got":      displayToken(tok),
	})
	return nil
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	p.depth++
	p.nextToken()

	if !p.curTokenIs(lexer.RBRACKET) {
		for {
			el := p.parseExpression()
			if p.failed() {
				return nil
			}
			array.Elements = append(array.Elements, el)
			if !p.curTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expectClose(lexer.RBRACKET, "']'") {
		return nil
	}
	return array
}

// expectClose consumes a closing delimiter, leaving the bracketed region.
func (p *Parser) expectClose(t lexer.TokenType, name string) bool {
	if !p.curTokenIs(t) {
		p.addStructuredError("PARSE-0001", p.curToken, map[string]any{
			"Expected": name,
			"Got":      displayToken(p.curToken),
		})
		return false
	}
	p.depth--
	p.nextToken()
	return true
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func displayToken(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.NEWLINE:
		return "newline"
	}
	return tok.Literal
}
