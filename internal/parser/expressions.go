package parser

import (
	"strings"

	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/lexer"
	"github.com/mirlang/mirc/internal/types"
)

// parseExpr is the Pratt precedence-climbing core, structurally identical
// to the teacher's parseExpression (internal/parser/expressions.go): a
// prefix parse produces the left operand, then infix parse functions fold
// in operators whose precedence exceeds the caller's floor.
func (p *Parser) parseExpr(precedence int) hir.Expr {
	prefix, ok := p.prefixFns[p.curTok.Type]
	if !ok {
		p.reportError("unexpected token '"+string(p.curTok.Type)+"' in expression", p.curTok.Span)
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekTok.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntLiteral() hir.Expr {
	v := parseUintLiteral(p.curTok.Value)
	e := &hir.IntLiteral{Magnitude: v}
	e.SetType(p.in.Primitive(types.KindI32), false)
	return e
}

func (p *Parser) parseStringLiteral() hir.Expr {
	s := p.curTok.Value
	e := &hir.StringLiteral{Value: s}
	e.SetType(p.in.Array(p.in.Char(), uint64(len([]rune(s)))), false)
	return e
}

func (p *Parser) parseCharLiteral() hir.Expr {
	r := []rune(p.curTok.Value)
	var v rune
	if len(r) > 0 {
		v = r[0]
	}
	e := &hir.CharLiteral{Value: v}
	e.SetType(p.in.Char(), false)
	return e
}

func (p *Parser) parseBoolLiteral() hir.Expr {
	e := &hir.BoolLiteral{Value: p.curTok.Type == lexer.TRUE}
	e.SetType(p.in.Bool(), false)
	return e
}

// parseIdentifierExpr resolves a bare identifier to whichever kind of name
// it denotes: a local/parameter, a named constant, an enum variant path
// (`Enum::Variant`), or a struct literal (`Name { .. }`). A plain function
// name resolves to a placeholder Variable; parseCallExpr reinterprets it
// once it sees the following '('.
func (p *Parser) parseIdentifierExpr() hir.Expr {
	name := p.curTok.Value

	if p.peekIs(lexer.DOUBLE_COLON) {
		p.nextToken() // '::'
		if !p.expect(lexer.IDENT) {
			return nil
		}
		variant := p.curTok.Value
		enumType, ok := p.in.LookupNamed(name)
		if !ok {
			p.reportError("unknown enum '"+name+"'", p.curTok.Span)
			return nil
		}
		e := &hir.EnumVariantExpr{Variant: variant}
		e.SetType(enumType, false)
		return e
	}

	if v, ok := p.lookupVar(name); ok {
		e := &hir.Variable{Name: name}
		e.SetType(v.typ, true)
		return e
	}

	if c, ok := p.consts[name]; ok {
		e := &hir.ConstUseExpr{Const: c}
		e.SetType(c.Type, false)
		return e
	}

	if !p.noStructLiteral {
		if st, ok := p.in.LookupNamed(name); ok && st.Kind() == types.KindStruct && p.peekIs(lexer.LBRACE) {
			return p.parseStructLiteral(name, st)
		}
	}

	// Otherwise: an undeclared-looking name, most likely a function to be
	// called. Leave resolution to parseCallExpr/parseDotExpr; a plain use
	// with no following '(' is reported as undefined.
	e := &hir.Variable{Name: name}
	e.SetType(nil, false)
	return e
}

func (p *Parser) parseStructLiteral(name string, st *types.Type) hir.Expr {
	p.nextToken() // consume '{'
	p.nextToken() // move past '{'

	lit := &hir.StructLiteralExpr{}
	lit.SetType(st, false)

	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.reportError("expected field name in struct literal", p.curTok.Span)
			break
		}
		fieldName := p.curTok.Value
		if !p.expect(lexer.COLON) {
			break
		}
		p.nextToken()
		val := p.parseExpr(precedenceLowest)
		lit.Fields = append(lit.Fields, hir.FieldInit{Name: fieldName, Value: val})
		p.nextToken()
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	return lit
}

func (p *Parser) parseUnaryExpr() hir.Expr {
	opTok := p.curTok
	p.nextToken()
	operand := p.parseExpr(precedencePrefix)
	e := &hir.UnaryExpr{Operand: operand}
	if opTok.Type == lexer.BANG {
		e.Op = hir.UnaryNot
		e.SetType(p.in.Bool(), false)
	} else {
		e.Op = hir.UnaryNeg
		e.SetType(operand.Type(), false)
	}
	return e
}

func (p *Parser) parseRefExpr() hir.Expr {
	mutable := false
	if p.peekIs(lexer.MUT) {
		p.nextToken()
		mutable = true
	}
	p.nextToken()
	operand := p.parseExpr(precedencePrefix)
	e := &hir.RefExpr{Operand: operand, Mutable: mutable}
	e.SetType(p.in.MakeRef(operand.Type(), mutable), false)
	return e
}

func (p *Parser) parseDerefExpr() hir.Expr {
	p.nextToken()
	operand := p.parseExpr(precedencePrefix)
	e := &hir.DerefExpr{Operand: operand}
	if operand.Type() != nil && operand.Type().Kind() == types.KindRef {
		e.SetType(p.in.Pointee(operand.Type()), true)
	} else {
		e.SetType(nil, true)
	}
	return e
}

func (p *Parser) parseGroupedExpr() hir.Expr {
	p.nextToken()
	e := p.parseExpr(precedenceLowest)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return e
}

// parseArrayExpr parses `[a, b, c]` or `[v; n]`.
func (p *Parser) parseArrayExpr() hir.Expr {
	p.nextToken() // move past '['
	if p.curIs(lexer.RBRACKET) {
		e := &hir.ArrayLiteralExpr{}
		e.SetType(p.in.Array(p.in.Unit(), 0), false)
		return e
	}

	first := p.parseExpr(precedenceLowest)

	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken() // ';'
		p.nextToken()
		if !p.curIs(lexer.INT) {
			p.reportError("expected array repeat count", p.curTok.Span)
			return nil
		}
		count := parseUintLiteral(p.curTok.Value)
		if !p.expect(lexer.RBRACKET) {
			return nil
		}
		e := &hir.ArrayRepeatExpr{Value: first, Count: count}
		e.SetType(p.in.Array(first.Type(), count), false)
		return e
	}

	elems := []hir.Expr{first}
	for p.peekIs(lexer.COMMA) {
		p.nextToken() // ','
		p.nextToken()
		elems = append(elems, p.parseExpr(precedenceLowest))
	}
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	e := &hir.ArrayLiteralExpr{Elements: elems}
	e.SetType(p.in.Array(first.Type(), uint64(len(elems))), false)
	return e
}

func binOpFor(tt lexer.TokenType) (hir.BinaryOp, bool) {
	switch tt {
	case lexer.PLUS:
		return hir.BinAdd, true
	case lexer.MINUS:
		return hir.BinSub, true
	case lexer.ASTERISK:
		return hir.BinMul, true
	case lexer.SLASH:
		return hir.BinDiv, true
	case lexer.PERCENT:
		return hir.BinRem, true
	case lexer.EQ:
		return hir.BinEq, true
	case lexer.NOT_EQ:
		return hir.BinNotEq, true
	case lexer.LT:
		return hir.BinLt, true
	case lexer.LE:
		return hir.BinLe, true
	case lexer.GT:
		return hir.BinGt, true
	case lexer.GE:
		return hir.BinGe, true
	case lexer.SHL:
		return hir.BinShl, true
	case lexer.SHR:
		return hir.BinShr, true
	default:
		return 0, false
	}
}

func isComparison(op hir.BinaryOp) bool {
	switch op {
	case hir.BinEq, hir.BinNotEq, hir.BinLt, hir.BinLe, hir.BinGt, hir.BinGe:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBinaryExpr(left hir.Expr) hir.Expr {
	opTok := p.curTok
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpr(prec)

	op, _ := binOpFor(opTok.Type)
	e := &hir.BinaryExpr{Op: op, Left: left, Right: right}
	if isComparison(op) {
		e.SetType(p.in.Bool(), false)
	} else {
		e.SetType(left.Type(), false)
	}
	return e
}

func (p *Parser) parseLogicalExpr(left hir.Expr) hir.Expr {
	opTok := p.curTok
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpr(prec)

	op := hir.LogicalAnd
	if opTok.Type == lexer.OR {
		op = hir.LogicalOr
	}
	e := &hir.LogicalExpr{Op: op, Left: left, Right: right}
	e.SetType(p.in.Bool(), false)
	return e
}

func (p *Parser) parseCastExpr(left hir.Expr) hir.Expr {
	p.nextToken() // move to target type
	target := p.parseType()
	e := &hir.CastExpr{Operand: left, Target: target}
	e.SetType(target, false)
	return e
}

func (p *Parser) parseAssignExpr(left hir.Expr) hir.Expr {
	p.nextToken()
	value := p.parseExpr(precedenceLowest)

	discard := false
	if v, ok := left.(*hir.Variable); ok && v.Name == "_" {
		discard = true
	}
	e := &hir.AssignExpr{Target: left, Value: value, Discard: discard}
	e.SetType(p.in.Unit(), false)
	return e
}

func (p *Parser) parseIndexExpr(left hir.Expr) hir.Expr {
	p.nextToken()
	idx := p.parseExpr(precedenceLowest)
	if !p.expect(lexer.RBRACKET) {
		return nil
	}
	e := &hir.IndexExpr{Base: left, Index: idx}
	if left.Type() != nil && left.Type().Kind() == types.KindArray {
		e.SetType(p.in.ElementType(left.Type()), true)
	} else {
		e.SetType(nil, true)
	}
	return e
}

// parseDotExpr handles both field access (`.name`) and method calls
// (`.name(args)`).
func (p *Parser) parseDotExpr(left hir.Expr) hir.Expr {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Value

	baseType := left.Type()
	if baseType != nil && baseType.Kind() == types.KindRef {
		baseType = p.in.Pointee(baseType)
	}

	if p.peekIs(lexer.LPAREN) {
		p.nextToken() // '('
		var method *hir.MethodItem
		if baseType != nil {
			typeName := strings.TrimPrefix(baseType.String(), "&")
			if m, ok := p.methods[typeName][name]; ok {
				method = m
			}
		}
		args := p.parseCallArgs()
		e := &hir.MethodCallExpr{Receiver: left, Method: method, Args: args}
		if method != nil {
			e.SetType(method.ReturnType, false)
		} else {
			p.reportError("unknown method '"+name+"'", p.curTok.Span)
			e.SetType(nil, false)
		}
		return e
	}

	e := &hir.FieldAccess{Base: left, FieldName: name}
	if baseType != nil && baseType.Kind() == types.KindStruct {
		if idx, ok := p.in.FieldIndex(baseType, name); ok {
			e.FieldIndex = idx
			e.SetType(p.in.FieldType(baseType, idx), true)
			return e
		}
		p.reportError("unknown field '"+name+"'", p.curTok.Span)
	}
	e.SetType(nil, true)
	return e
}

// parseCallArgs parses a comma-separated argument list; curTok is the
// opening '(' on entry and the closing ')' on return.
func (p *Parser) parseCallArgs() []hir.Expr {
	var args []hir.Expr
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseExpr(precedenceLowest))
	for p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpr(precedenceLowest))
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parseCallExpr(left hir.Expr) hir.Expr {
	v, ok := left.(*hir.Variable)
	if !ok {
		p.reportError("call target is not callable", p.curTok.Span)
		p.parseCallArgs()
		return nil
	}
	args := p.parseCallArgs()

	fn, ok := p.functions[v.Name]
	if !ok {
		p.reportError("undefined function '"+v.Name+"'", p.curTok.Span)
		e := &hir.CallExpr{Args: args}
		e.SetType(nil, false)
		return e
	}
	e := &hir.CallExpr{Target: hir.Callee{Function: fn}, Args: args}
	e.SetType(fn.ReturnType, false)
	return e
}
