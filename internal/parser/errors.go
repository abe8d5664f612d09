package parser

import "github.com/mirlang/mirc/internal/lexer"

// ParseError captures a recoverable parsing error with location context,
// the same shape the teacher's parser reports (internal/parser/parser.go).
type ParseError struct {
	Message string
	Span    lexer.Span
}

func (p *Parser) reportError(msg string, span lexer.Span) {
	p.errors = append(p.errors, ParseError{Message: msg, Span: span})
}

// Errors returns every recoverable parse error collected while parsing.
func (p *Parser) Errors() []ParseError {
	return p.errors
}

// LexErrors returns every lexical error the underlying lexer accumulated
// while producing tokens for this parse. A caller that only checks Errors
// would miss these: the parser keeps going on a bad token the same way it
// recovers from a bad production, so a lex error alone never aborts parsing.
func (p *Parser) LexErrors() []lexer.LexerError {
	return p.lx.Errors
}
