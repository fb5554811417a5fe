package parser

import (
	"buzzc/ast"
	"buzzc/logging"
	"buzzc/native"
	"buzzc/symbols"
	"buzzc/token"
	"buzzc/types"
)

// SetNativeResolver attaches the collaborator used to check `extern`
// symbols. Left unset, extern declarations are still parsed and
// type-checked; only the symbol-existence check is skipped.
func (p *Parser) SetNativeResolver(r native.Resolver) { p.natives = r }

// markDeclared finalizes the binding DeclareVariable just created or
// resolved: slot == -1 means a global (or a rejected declaration, in which
// case a visible global of the same name, if any, is marked), anything else a
// local at that frame index.
func (p *Parser) markDeclared(slot int, name string) {
	if slot != -1 {
		p.table.MarkInitialized(nil)
		return
	}
	if g, ok := p.table.ResolveGlobal("", name); ok {
		p.table.MarkInitialized(g)
	}
}

// varDeclaration parses `var`/`const` bindings, disambiguating a typed
// declaration from an inferred one via looksLikeTypeAnnotation's three-token
// lookahead.
func (p *Parser) varDeclaration(constant bool) ast.Node {
	var declaredType *types.Def
	if p.looksLikeTypeAnnotation() {
		declaredType = p.parseType()
	}

	nameTok := p.consume(token.Identifier, "expected a variable name")
	name := nameTok.Lexeme

	var value ast.Node
	if p.match(token.Equal) {
		value = p.parseExpression()
	}

	finalType := declaredType
	switch {
	case finalType == nil && value != nil:
		finalType = value.Type()
	case finalType == nil:
		p.errorAt(nameTok, "a variable with no declared type needs an initializer")
		finalType = p.reg.Void()
	case value != nil:
		p.linkAssignmentTarget(&declaredTypeHolder{typ: finalType}, value, nameTok)
	}

	p.consumeSemicolon()

	slot := p.table.DeclareVariable(p.ctx, name, finalType, constant, nameTok)
	p.markDeclared(slot, name)

	n := &ast.VarDeclaration{Identifier: name, Constant: constant, Value: value}
	n.Typ = finalType
	return n
}

// declaredTypeHolder adapts a bare *types.Def to the ast.Node interface just
// enough for linkAssignmentTarget's Type() call, since a declaration's
// left-hand side has no NamedVariable node of its own yet.
type declaredTypeHolder struct {
	typ *types.Def
}

func (d *declaredTypeHolder) Type() *types.Def              { return d.typ }
func (d *declaredTypeHolder) Kind() string                  { return "" }
func (d *declaredTypeHolder) MarshalJSON() ([]byte, error)  { return []byte("null"), nil }

func (p *Parser) parseParameterList() ([]string, *types.OrderedFields, map[string]bool) {
	p.consume(token.LeftParen, "expected '(' to start a parameter list")

	var names []string
	fields := types.NewOrderedFields()
	defaults := map[string]bool{}

	if !p.check(token.RightParen) {
		for {
			typ := p.parseType()
			nameTok := p.consume(token.Identifier, "expected a parameter name")
			if len(names) >= symbols.MaxParameters {
				logging.LogError(p.ctx, "too many parameters in one function", logging.KindArity,
					&logging.TextPosition{Line: nameTok.Line, Column: nameTok.Column})
			} else {
				names = append(names, nameTok.Lexeme)
				fields.Set(nameTok.Lexeme, typ)
			}

			if p.match(token.Equal) {
				p.parseExpression()
				defaults[nameTok.Lexeme] = true
			}
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "expected ')' after parameters")
	return names, fields, defaults
}

func (p *Parser) parseReturnType() *types.Def {
	if p.match(token.Greater) {
		return p.parseType()
	}
	return p.reg.Void()
}

// funDeclaration parses `fun`/`extern fun`. The global is declared before
// the body is parsed (with any earlier forward reference resolved in place)
// so a recursive call inside the body sees the function's real,
// already-complete signature rather than a placeholder.
func (p *Parser) funDeclaration(extern bool) ast.Node {
	where := p.consume(token.Identifier, "expected a function name")
	name := where.Lexeme

	paramNames, paramTypes, hasDefaults := p.parseParameterList()
	ret := p.parseReturnType()

	fnDef := &types.Def{
		Kind: types.Function, Name: name, Return: ret,
		Parameters: paramTypes, HasDefaults: hasDefaults, FnKind: types.FnFunction,
	}

	var declaredType *types.Def
	var libName string
	if extern {
		fnDef.FnKind = types.FnExtern
		if p.match(token.From) {
			libTok := p.consume(token.String, "expected a library name after 'from'")
			libName = libTok.LiteralString
		}
		fnDef = p.reg.GetOrIntern(fnDef)
		declaredType = p.reg.GetOrIntern(&types.Def{Kind: types.Native, Name: name, Signature: fnDef})

		if libName != "" && p.natives != nil {
			if _, err := p.natives.Resolve(libName, name); err != nil {
				logging.LogError(p.ctx, err.Error(), logging.KindImport,
					&logging.TextPosition{Line: where.Line, Column: where.Column})
			}
		}
	} else {
		fnDef = p.reg.GetOrIntern(fnDef)
		declaredType = fnDef
	}

	slot := p.table.DeclareVariable(p.ctx, name, declaredType, true, where)
	p.markDeclared(slot, name)

	p.table.PushFrame()
	p.table.BeginScope()
	for _, pn := range paramNames {
		pt, _ := paramTypes.Get(pn)
		p.table.DeclareVariable(p.ctx, pn, pt, false, where)
		p.table.MarkInitialized(nil)
	}

	body := ast.Node(&ast.Block{})
	if extern {
		p.consumeSemicolon()
	} else {
		p.consume(token.LeftBrace, "expected '{' to start a function body")
		body = &ast.Block{Statements: p.blockBody()}
	}
	p.table.EndScope()
	p.table.PopFrame()

	fn := &ast.Function{Identifier: name, Parameters: paramNames, Body: body}
	fn.Typ = fnDef

	return &ast.FunDeclaration{Identifier: name, Constant: true, Function: fn}
}

// objectDeclaration parses `object`/`class` declarations. The object's own
// name is declared before its members are parsed so a method that returns an
// instance of its enclosing type resolves directly instead of creating a
// placeholder.
func (p *Parser) objectDeclaration(isClass bool) ast.Node {
	where := p.consume(token.Identifier, "expected an object name")
	name := where.Lexeme

	var superName string
	var superDef *types.Def
	if p.match(token.Colon) {
		superTok := p.consume(token.Identifier, "expected a superclass name")
		superName = superTok.Lexeme
		if g, ok := p.table.ResolveGlobal("", superName); ok {
			superDef = g.Type
		} else {
			superDef = p.table.DeclarePlaceholder(superName, superTok).Type
		}
	}

	objDef := p.reg.GetOrIntern(&types.Def{
		Kind: types.Object, Name: name, Inheritable: isClass, Super: superDef,
		Fields: types.NewOrderedFields(), StaticFields: types.NewOrderedFields(),
		Methods: map[string]*types.Def{},
	})

	slot := p.table.DeclareVariable(p.ctx, name, objDef, true, where)
	p.markDeclared(slot, name)

	p.consume(token.LeftBrace, "expected '{' to start an object body")

	var members []ast.Node
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		switch {
		case p.match(token.Var):
			members = append(members, p.objectField(objDef, false))
		case p.match(token.Const):
			members = append(members, p.objectField(objDef, true))
		case p.match(token.Fun):
			members = append(members, p.objectMethod(objDef))
		default:
			p.errorAtCurrent("expected a field or method declaration")
			p.advance()
		}
	}
	p.consume(token.RightBrace, "expected '}' to close an object body")

	n := &ast.ObjectDeclaration{Identifier: name, SuperName: superName, IsClass: isClass, Members: members}
	n.Typ = objDef
	return n
}

// hasMember reports whether objDef already declares a field or method named
// name, so a colliding field/method declaration can be rejected instead of
// silently overwriting the earlier one.
func (p *Parser) hasMember(objDef *types.Def, name string) bool {
	if objDef.Fields.Has(name) {
		return true
	}
	_, ok := objDef.Methods[name]
	return ok
}

func (p *Parser) objectField(objDef *types.Def, constant bool) ast.Node {
	typ := p.parseType()
	nameTok := p.consume(token.Identifier, "expected a field name")
	if p.hasMember(objDef, nameTok.Lexeme) {
		logging.LogError(p.ctx, "a member named \""+nameTok.Lexeme+"\" already exists on this object", logging.KindName,
			&logging.TextPosition{Line: nameTok.Line, Column: nameTok.Column})
	} else {
		objDef.Fields.Set(nameTok.Lexeme, typ)
	}
	p.consumeSemicolon()

	n := &ast.VarDeclaration{Identifier: nameTok.Lexeme, Constant: constant}
	n.Typ = typ
	return n
}

func (p *Parser) objectMethod(objDef *types.Def) ast.Node {
	where := p.consume(token.Identifier, "expected a method name")
	name := where.Lexeme
	collides := p.hasMember(objDef, name)
	if collides {
		logging.LogError(p.ctx, "a member named \""+name+"\" already exists on this object", logging.KindName,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
	}

	paramNames, paramTypes, hasDefaults := p.parseParameterList()
	ret := p.parseReturnType()

	fnDef := p.reg.GetOrIntern(&types.Def{
		Kind: types.Function, Name: name, Return: ret,
		Parameters: paramTypes, HasDefaults: hasDefaults, FnKind: types.FnMethod,
	})
	if !collides {
		objDef.Methods[name] = fnDef
	}

	p.table.PushFrame()
	p.table.BeginScope()
	for _, pn := range paramNames {
		pt, _ := paramTypes.Get(pn)
		p.table.DeclareVariable(p.ctx, pn, pt, false, where)
		p.table.MarkInitialized(nil)
	}
	p.consume(token.LeftBrace, "expected '{' to start a method body")
	body := &ast.Block{Statements: p.blockBody()}
	p.table.EndScope()
	p.table.PopFrame()

	fn := &ast.Function{Identifier: name, Parameters: paramNames, Body: body}
	fn.Typ = fnDef
	return &ast.FunDeclaration{Identifier: name, Constant: true, Function: fn}
}

func (p *Parser) enumDeclaration() ast.Node {
	where := p.consume(token.Identifier, "expected an enum name")
	name := where.Lexeme

	var caseType *types.Def
	if p.match(token.Colon) {
		caseType = p.parseType()
	}

	p.consume(token.LeftBrace, "expected '{' to start an enum body")
	seen := map[string]bool{}
	var cases []string
	if !p.check(token.RightBrace) {
		for {
			caseTok := p.consume(token.Identifier, "expected an enum case name")
			if seen[caseTok.Lexeme] {
				logging.LogError(p.ctx, "a case named \""+caseTok.Lexeme+"\" already exists on this enum", logging.KindName,
					&logging.TextPosition{Line: caseTok.Line, Column: caseTok.Column})
			} else {
				seen[caseTok.Lexeme] = true
				cases = append(cases, caseTok.Lexeme)
			}
			if !p.match(token.Comma) {
				break
			}
		}
	}
	closeBrace := p.consume(token.RightBrace, "expected '}' to close an enum body")
	if len(cases) == 0 {
		logging.LogError(p.ctx, "an enum must declare at least one case", logging.KindUsage,
			&logging.TextPosition{Line: closeBrace.Line, Column: closeBrace.Column})
	}
	p.consumeSemicolon()

	enumDef := p.reg.GetOrIntern(&types.Def{Kind: types.Enum, Name: name, Cases: cases, CaseType: caseType})

	slot := p.table.DeclareVariable(p.ctx, name, enumDef, true, where)
	p.markDeclared(slot, name)

	n := &ast.Enum{Identifier: name, Cases: cases, CaseType: caseType}
	n.Typ = enumDef
	return n
}

func (p *Parser) exportDeclaration() ast.Node {
	nameTok := p.consume(token.Identifier, "expected a name to export")
	name := nameTok.Lexeme

	prefix := ""
	if p.match(token.Backslash) {
		prefix = name
		nameTok = p.consume(token.Identifier, "expected a name after '\\'")
		name = nameTok.Lexeme
	}

	var alias string
	if p.match(token.As) {
		aliasTok := p.consume(token.Identifier, "expected an alias after 'as'")
		alias = aliasTok.Lexeme
	} else if prefix != "" {
		p.errorAtCurrent("expected 'as' after a prefixed export")
	}
	p.consumeSemicolon()

	if g, ok := p.table.ResolveGlobal(prefix, name); ok {
		g.Exported = true
		g.ExportAlias = alias
	} else {
		logging.LogError(p.ctx, "cannot export undeclared name \""+name+"\"", logging.KindImport,
			&logging.TextPosition{Line: nameTok.Line, Column: nameTok.Column})
	}

	return &ast.Export{Identifier: name, Alias: alias, Prefix: prefix}
}

func (p *Parser) testDeclaration() ast.Node {
	nameTok := p.consume(token.String, "expected a test name string")
	name := nameTok.LiteralString

	p.table.PushFrame()
	p.table.BeginScope()
	p.consume(token.LeftBrace, "expected '{' to start a test body")
	body := &ast.Block{Statements: p.blockBody()}
	p.table.EndScope()
	p.table.PopFrame()

	fn := &ast.Function{Identifier: name, Body: body}
	fn.Typ = &types.Def{Kind: types.Function, Name: name, FnKind: types.FnTest, Return: p.reg.Void()}
	return &ast.FunDeclaration{Identifier: name, Constant: true, Function: fn}
}
