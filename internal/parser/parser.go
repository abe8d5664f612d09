// Package parser is a trimmed, Pratt-style recursive descent parser over
// the struct/enum/trait/method subset this subsystem lowers, grounded on
// the teacher's internal/parser package (curTok/peekTok lookahead window,
// prefix/infix function tables keyed by token type, precedence climbing).
//
// Unlike the teacher, this parser resolves names and type annotations as it
// goes rather than deferring to a separate checker pass: items must be
// declared before first use, which keeps
// a single-pass recursive descent correct without a forward-declaration
// pre-scan. Expression *types.Type fields are still left nil by the parser
// for anything that needs inference (arithmetic results, block tails); the
// internal/check pass fills those in afterward.
package parser

import (
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/lexer"
	"github.com/mirlang/mirc/internal/types"
)

type (
	prefixParseFn func() hir.Expr
	infixParseFn  func(hir.Expr) hir.Expr
)

const (
	precedenceLowest = iota
	precedenceAssign
	precedenceOr
	precedenceAnd
	precedenceBitOr
	precedenceBitXor
	precedenceBitAnd
	precedenceEquality
	precedenceComparison
	precedenceShift
	precedenceSum
	precedenceProduct
	precedenceCast
	precedencePrefix
	precedencePostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:    precedenceAssign,
	lexer.OR:        precedenceOr,
	lexer.AND:       precedenceAnd,
	lexer.EQ:        precedenceEquality,
	lexer.NOT_EQ:    precedenceEquality,
	lexer.LT:        precedenceComparison,
	lexer.LE:        precedenceComparison,
	lexer.GT:        precedenceComparison,
	lexer.GE:        precedenceComparison,
	lexer.SHL:       precedenceShift,
	lexer.SHR:       precedenceShift,
	lexer.PLUS:      precedenceSum,
	lexer.MINUS:     precedenceSum,
	lexer.ASTERISK:  precedenceProduct,
	lexer.SLASH:     precedenceProduct,
	lexer.PERCENT:   precedenceProduct,
	lexer.AS:        precedenceCast,
	lexer.LPAREN:    precedencePostfix,
	lexer.LBRACKET:  precedencePostfix,
	lexer.DOT:       precedencePostfix,
}

// varInfo is what the parser's scope stack tracks about a local binding.
type varInfo struct {
	typ     *types.Type
	mutable bool
}

// Parser builds a hir.Program directly from source, resolving every name it
// can resolve without inference (types, locals, items) inline.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	errors []ParseError

	in *types.Interner

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn

	scopes          []map[string]varInfo
	loopStack       []hir.LoopLike
	noStructLiteral bool

	functions map[string]*hir.FunctionItem
	// methods[ownerTypeName][methodName]
	methods map[string]map[string]*hir.MethodItem
	consts  map[string]*hir.ConstItem
	traits  map[string]*hir.TraitItem

	// builtins is the predefined scope (print/println/getInt/…), seeded
	// before any source is read so a call to one resolves exactly like a
	// call to an explicitly-declared external function (§4.2).
	builtins []*hir.FunctionItem
}

// New returns a parser over input, resolving type annotations against in.
func New(input string, in *types.Interner) *Parser {
	p := &Parser{
		lx:        lexer.New(input),
		in:        in,
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
		functions: make(map[string]*hir.FunctionItem),
		methods:   make(map[string]map[string]*hir.MethodItem),
		consts:    make(map[string]*hir.ConstItem),
		traits:    make(map[string]*hir.TraitItem),
	}

	p.builtins = hir.NewBuiltins(in)
	for _, b := range p.builtins {
		p.functions[b.Name] = b
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentifierExpr)
	p.registerPrefix(lexer.INT, p.parseIntLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpr)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpr)
	p.registerPrefix(lexer.AMPERSAND, p.parseRefExpr)
	p.registerPrefix(lexer.ASTERISK, p.parseDerefExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayExpr)
	p.registerPrefix(lexer.IF, p.parseIfExprPrefix)
	p.registerPrefix(lexer.LBRACE, p.parseBlockExprPrefix)
	p.registerPrefix(lexer.LOOP, p.parseLoopExprPrefix)
	p.registerPrefix(lexer.WHILE, p.parseWhileExprPrefix)
	p.registerPrefix(lexer.BREAK, p.parseBreakExpr)
	p.registerPrefix(lexer.CONTINUE, p.parseContinueExpr)
	p.registerPrefix(lexer.RETURN, p.parseReturnExpr)

	p.registerInfix(lexer.ASSIGN, p.parseAssignExpr)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.LE, lexer.GT, lexer.GE,
		lexer.SHL, lexer.SHR,
	} {
		p.registerInfix(tt, p.parseBinaryExpr)
	}
	p.registerInfix(lexer.AND, p.parseLogicalExpr)
	p.registerInfix(lexer.OR, p.parseLogicalExpr)
	p.registerInfix(lexer.AS, p.parseCastExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseDotExpr)

	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) { p.prefixFns[tt] = fn }
func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn)   { p.infixFns[tt] = fn }

// nextToken advances the lookahead window; curTok becomes old(peekTok).
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.curTok.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peekTok.Type == tt }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}
	p.reportError("expected '"+string(tt)+"', got '"+string(p.peekTok.Type)+"'", p.peekTok.Span)
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return precedenceLowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return precedenceLowest
}

// --- scope stack ---

func (p *Parser) pushScope() { p.scopes = append(p.scopes, make(map[string]varInfo)) }
func (p *Parser) popScope()  { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *Parser) declareVar(name string, t *types.Type, mutable bool) {
	p.scopes[len(p.scopes)-1][name] = varInfo{typ: t, mutable: mutable}
}

func (p *Parser) lookupVar(name string) (varInfo, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i][name]; ok {
			return v, true
		}
	}
	return varInfo{}, false
}

// ParseProgram parses a whole compilation unit.
func (p *Parser) ParseProgram() *hir.Program {
	prog := &hir.Program{Builtins: p.builtins}
	p.pushScope()
	for !p.curIs(lexer.EOF) {
		item := p.parseItem()
		if item != nil {
			prog.Items = append(prog.Items, item)
		} else if !p.curIs(lexer.EOF) {
			p.nextToken()
		}
	}
	p.popScope()
	return prog
}

// parseType parses a type annotation and resolves it against the interner
// immediately: `i32`, `bool`, `Name`, `&T`, `&mut T`, `[T; N]`.
func (p *Parser) parseType() *types.Type {
	switch p.curTok.Type {
	case lexer.AMPERSAND:
		p.nextToken()
		mutable := false
		if p.curIs(lexer.MUT) {
			mutable = true
			p.nextToken()
		}
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		return p.in.MakeRef(elem, mutable)

	case lexer.LBRACKET:
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		if !p.expect(lexer.SEMICOLON) {
			return nil
		}
		if !p.expect(lexer.INT) {
			return nil
		}
		size := parseUintLiteral(p.curTok.Value)
		if !p.expect(lexer.RBRACKET) {
			return nil
		}
		return p.in.Array(elem, size)

	case lexer.IDENT:
		name := p.curTok.Value
		if k, ok := types.LookupPrimitiveName(name); ok {
			return p.in.Primitive(k)
		}
		if name == "unit" {
			return p.in.Unit()
		}
		if t, ok := p.in.LookupNamed(name); ok {
			return t
		}
		p.reportError("unknown type '"+name+"'", p.curTok.Span)
		return nil

	default:
		p.reportError("expected type expression", p.curTok.Span)
		return nil
	}
}
