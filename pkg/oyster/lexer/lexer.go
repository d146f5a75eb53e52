package lexer

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	perrors "github.com/sambeau/oyster/pkg/oyster/errors"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Statement separators
	NEWLINE // \n
	SEMI    // ;

	// Literals and words
	NUM   // 12, 1.75
	VAR   // $name, $?
	STR   // "text"
	PATH  // ls, ./build.sh, /usr/bin/env
	PARAM // -l, --all, --dry-run

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	ASSIGN   // =

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COMMA    // ,
	COLON    // :
	PIPE     // |
	AT       // @
	AMP      // &
)

// Token represents a single token. Literal is the exact text consumed from
// the input, so STR keeps its quotes and VAR keeps its sigil.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case SEMI:
		return "SEMI"
	case NUM:
		return "NUM"
	case VAR:
		return "VAR"
	case STR:
		return "STR"
	case PATH:
		return "PATH"
	case PARAM:
		return "PARAM"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case ASTERISK:
		return "ASTERISK"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case ASSIGN:
		return "ASSIGN"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case COMMA:
		return "COMMA"
	case COLON:
		return "COLON"
	case PIPE:
		return "PIPE"
	case AT:
		return "AT"
	case AMP:
		return "AMP"
	default:
		return "UNKNOWN"
	}
}

// lexCase is one entry of the ordered case table. Exactly one of symbol
// and pattern is set.
type lexCase struct {
	symbol    string
	pattern   *regexp.Regexp
	tokenType TokenType
}

func sym(s string, tt TokenType) lexCase {
	return lexCase{symbol: s, tokenType: tt}
}

func pat(re string, tt TokenType) lexCase {
	return lexCase{pattern: regexp.MustCompile(re), tokenType: tt}
}

// wordTail is what may follow the first character of a bare word.
const wordTail = `[^\s;()"$=|&,{}\[\]*+%]*`

var spacePattern = regexp.MustCompile(`^[ \t\r]+`)

// cases is tried top to bottom; the first match wins.
//
// PARAM and absolute paths come before the single-character symbols so that
// "-la" and "/bin/ls" are not split into MINUS/SLASH plus a word. An absolute
// path must have a letter-like character after the slash, which keeps "1/2"
// a division.
var cases = []lexCase{
	pat(`^--?[A-Za-z][A-Za-z0-9_]*(?:-[A-Za-z0-9_]+)*`, PARAM),
	pat(`^/[\p{L}_.~]`+wordTail, PATH),
	sym("\n", NEWLINE),
	sym(";", SEMI),
	sym("(", LPAREN),
	sym(")", RPAREN),
	sym("[", LBRACKET),
	sym("]", RBRACKET),
	sym("{", LBRACE),
	sym("}", RBRACE),
	sym("+", PLUS),
	sym("-", MINUS),
	sym("*", ASTERISK),
	sym("/", SLASH),
	sym("%", PERCENT),
	sym("=", ASSIGN),
	sym("|", PIPE),
	sym(":", COLON),
	sym(",", COMMA),
	sym("@", AT),
	sym("&", AMP),
	pat(`^\d+(?:\.\d+)?`, NUM),
	pat(`^\$(?:\?|[A-Za-z0-9_]+)`, VAR),
	pat(`^"[^"]*"`, STR),
	pat(`^[\p{L}_.~\\]`+wordTail, PATH),
}

// Lexer represents the lexical analyzer. It keeps no state beyond the
// unconsumed input and the position of its first character.
type Lexer struct {
	input  string // unconsumed input
	line   int    // current line number (1-based)
	column int    // current column number (1-based, in runes)
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// Remaining returns the input that has not been consumed yet.
func (l *Lexer) Remaining() string {
	return l.input
}

// NextToken returns the next token and true, or false when no case matches
// at the current position (including at the end of input).
func (l *Lexer) NextToken() (Token, bool) {
	l.skipWhitespace()
	if l.input == "" {
		return Token{Type: EOF, Line: l.line, Column: l.column}, false
	}

	for _, c := range cases {
		n := c.match(l.input)
		if n == 0 {
			continue
		}
		tok := Token{Type: c.tokenType, Literal: l.input[:n], Line: l.line, Column: l.column}
		l.advance(n)
		return tok, true
	}

	return Token{Type: ILLEGAL, Line: l.line, Column: l.column}, false
}

// match returns the number of bytes the case consumes at the start of s.
func (c lexCase) match(s string) int {
	if c.pattern == nil {
		if len(s) >= len(c.symbol) && s[:len(c.symbol)] == c.symbol {
			return len(c.symbol)
		}
		return 0
	}
	loc := c.pattern.FindStringIndex(s)
	if loc == nil {
		return 0
	}
	return loc[1]
}

func (l *Lexer) skipWhitespace() {
	if loc := spacePattern.FindStringIndex(l.input); loc != nil {
		l.advance(loc[1])
	}
}

// advance consumes n bytes, keeping line and column in step.
func (l *Lexer) advance(n int) {
	for _, r := range l.input[:n] {
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
	l.input = l.input[n:]
}

// Tokenize converts the whole input into tokens. It fails with a lex error
// carrying the first unconsumed slice if any input is left over.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}

	if l.input != "" {
		return nil, perrors.NewWithPosition("LEX-0001", l.line, l.column, map[string]any{
			"Text":      fmt.Sprintf("%q", truncate(l.input, 10)),
			"Remaining": l.input,
		})
	}
	return tokens, nil
}

// truncate returns the first n characters of a string, adding "..." if truncated.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
