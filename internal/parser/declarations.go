package parser

import (
	"github.com/mirlang/mirc/internal/consteval"
	"github.com/mirlang/mirc/internal/hir"
	"github.com/mirlang/mirc/internal/lexer"
	"github.com/mirlang/mirc/internal/types"
)

// parseItem dispatches on the current token to one of the top-level item
// productions. A leading `pub` is accepted and discarded: visibility is not
// part of this subsystem's data model (§3, §6).
func (p *Parser) parseItem() hir.Item {
	if p.curIs(lexer.PUB) {
		p.nextToken()
	}

	var item hir.Item
	switch p.curTok.Type {
	case lexer.FN:
		item = p.parseFunctionItem()
	case lexer.STRUCT:
		item = p.parseStructItem()
	case lexer.ENUM:
		item = p.parseEnumItem()
	case lexer.CONST:
		item = p.parseConstItem()
	case lexer.TRAIT:
		item = p.parseTraitItem()
	case lexer.IMPL:
		item = p.parseImplItem()
	default:
		p.reportError("expected item declaration", p.curTok.Span)
		return nil
	}

	// Every item production above leaves curTok on its own final token
	// (the closing brace or semicolon); advance once more so the next
	// ParseProgram iteration starts on the following item.
	if item != nil && !p.curIs(lexer.EOF) {
		p.nextToken()
	}
	return item
}

// parseParams parses a parenthesized, comma-separated parameter list. If
// allowSelf is true, a leading `self` / `&self` / `&mut self` is consumed
// and returned separately as the receiver (its Type is left nil; the caller
// back-patches it once the owner type is known).
func (p *Parser) parseParams(allowSelf bool) (receiver *hir.Param, params []hir.Param, ok bool) {
	if !p.expect(lexer.LPAREN) {
		return nil, nil, false
	}

	if allowSelf && p.selfAhead() {
		receiver = p.parseSelfParam()
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		}
	}

	for !p.peekIs(lexer.RPAREN) {
		if !p.expect(lexer.IDENT) {
			return nil, nil, false
		}
		name := p.curTok.Value
		if !p.expect(lexer.COLON) {
			return nil, nil, false
		}
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil, nil, false
		}
		params = append(params, hir.Param{Name: name, Type: t})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}

	if !p.expect(lexer.RPAREN) {
		return nil, nil, false
	}
	return receiver, params, true
}

// selfAhead reports whether a receiver parameter follows, with curTok still
// positioned on the opening '('.
func (p *Parser) selfAhead() bool {
	if p.peekIs(lexer.IDENT) && p.peekTok.Value == "self" {
		return true
	}
	return p.peekIs(lexer.AMPERSAND)
}

func (p *Parser) parseSelfParam() *hir.Param {
	if p.peekIs(lexer.AMPERSAND) {
		p.nextToken() // consume '&'
		if p.peekIs(lexer.MUT) {
			p.nextToken()
		}
	}
	p.nextToken() // consume 'self'
	return &hir.Param{Name: "self"}
}

// parseOptionalReturnType parses `-> T`, defaulting to unit when absent.
func (p *Parser) parseOptionalReturnType() *types.Type {
	if !p.peekIs(lexer.ARROW) {
		return p.in.Unit()
	}
	p.nextToken() // '->'
	p.nextToken() // type start
	t := p.parseType()
	if t == nil {
		return p.in.Unit()
	}
	return t
}

func (p *Parser) bindParams(params []hir.Param) {
	for _, prm := range params {
		p.declareVar(prm.Name, prm.Type, false)
	}
}

func (p *Parser) parseFunctionItem() hir.Item {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Value

	_, params, ok := p.parseParams(false)
	if !ok {
		return nil
	}
	retType := p.parseOptionalReturnType()

	fn := &hir.FunctionItem{Name: name, Params: params, ReturnType: retType}
	p.functions[name] = fn

	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		fn.External = true
		return fn
	}

	if !p.expect(lexer.LBRACE) {
		return fn
	}
	p.pushScope()
	p.bindParams(params)
	fn.Body = p.parseBlockBody()
	p.popScope()
	return fn
}

func (p *Parser) parseStructItem() hir.Item {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Value
	structType := p.in.DeclareStruct(name)

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	var fields []types.FieldDef
	for !p.peekIs(lexer.RBRACE) {
		if !p.expect(lexer.IDENT) {
			return nil
		}
		fieldName := p.curTok.Value
		if !p.expect(lexer.COLON) {
			return nil
		}
		p.nextToken()
		ft := p.parseType()
		if ft == nil {
			return nil
		}
		fields = append(fields, types.FieldDef{Name: fieldName, Type: ft})
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	p.in.DefineStruct(name, fields)
	return &hir.StructItem{Name: name, Type: structType}
}

func (p *Parser) parseEnumItem() hir.Item {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Value

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	var variants []types.VariantDef
	var next uint64
	for !p.peekIs(lexer.RBRACE) {
		if !p.expect(lexer.IDENT) {
			return nil
		}
		variantName := p.curTok.Value
		disc := next
		if p.peekIs(lexer.ASSIGN) {
			p.nextToken()
			if !p.expect(lexer.INT) {
				return nil
			}
			disc = parseUintLiteral(p.curTok.Value)
		}
		variants = append(variants, types.VariantDef{Name: variantName, Discriminant: disc})
		next = disc + 1
		if p.peekIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	enumType := p.in.DefineEnum(name, variants, p.in.Primitive(types.KindU32))
	return &hir.EnumItem{Name: name, Type: enumType}
}

func (p *Parser) parseConstItem() hir.Item {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Value
	if !p.expect(lexer.COLON) {
		return nil
	}
	p.nextToken()
	t := p.parseType()
	if t == nil {
		return nil
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	init := p.parseExpr(precedenceLowest)
	if !p.expect(lexer.SEMICOLON) {
		return nil
	}

	item := &hir.ConstItem{Name: name, Type: t, Init: init}
	p.consts[name] = item
	// Fold eagerly so later code referencing this constant can trust it
	// really is one; a non-constant initializer is reported here rather
	// than deferred to the lowerer.
	if _, err := consteval.Eval(p.in, init); err != nil {
		p.reportError("const initializer: "+err.Error(), p.curTok.Span)
	}
	return item
}

func (p *Parser) parseTraitItem() hir.Item {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	name := p.curTok.Value
	if !p.expect(lexer.LBRACE) {
		return nil
	}

	trait := &hir.TraitItem{Name: name}
	for !p.peekIs(lexer.RBRACE) {
		if !p.expect(lexer.FN) {
			return nil
		}
		if !p.expect(lexer.IDENT) {
			return nil
		}
		methodName := p.curTok.Value
		_, params, ok := p.parseParams(true)
		if !ok {
			return nil
		}
		retType := p.parseOptionalReturnType()
		if !p.expect(lexer.SEMICOLON) {
			return nil
		}
		trait.Methods = append(trait.Methods, hir.TraitMethodSig{
			Name: methodName, Params: params, ReturnType: retType,
		})
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	p.traits[name] = trait
	return trait
}

func (p *Parser) parseImplItem() hir.Item {
	if !p.expect(lexer.IDENT) {
		return nil
	}
	firstName := p.curTok.Value

	traitName := ""
	typeName := firstName
	if p.peekIs(lexer.FOR) {
		p.nextToken() // 'for'
		traitName = firstName
		if !p.expect(lexer.IDENT) {
			return nil
		}
		typeName = p.curTok.Value
	}

	ownerType, ok := p.in.LookupNamed(typeName)
	if !ok {
		p.reportError("impl for undeclared type '"+typeName+"'", p.curTok.Span)
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	impl := &hir.ImplItem{TraitName: traitName, Type: ownerType}
	if p.methods[typeName] == nil {
		p.methods[typeName] = make(map[string]*hir.MethodItem)
	}

	for !p.peekIs(lexer.RBRACE) {
		if !p.expect(lexer.FN) {
			return nil
		}
		if !p.expect(lexer.IDENT) {
			return nil
		}
		methodName := p.curTok.Value

		receiver, params, ok := p.parseParams(true)
		if !ok {
			return nil
		}
		if receiver != nil {
			receiver.Type = p.in.MakeRef(ownerType, true)
		}
		retType := p.parseOptionalReturnType()

		method := &hir.MethodItem{
			Name: methodName, OwnerType: ownerType, Receiver: receiver,
			Params: params, ReturnType: retType,
		}

		if p.peekIs(lexer.SEMICOLON) {
			p.nextToken()
			method.External = true
		} else {
			if !p.expect(lexer.LBRACE) {
				return nil
			}
			p.pushScope()
			if receiver != nil {
				p.declareVar(receiver.Name, receiver.Type, true)
			}
			p.bindParams(params)
			method.Body = p.parseBlockBody()
			p.popScope()
		}

		p.methods[typeName][methodName] = method
		impl.Methods = append(impl.Methods, method)
	}
	if !p.expect(lexer.RBRACE) {
		return nil
	}
	return impl
}
