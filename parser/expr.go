package parser

import (
	"buzzc/ast"
	"buzzc/logging"
	"buzzc/symbols"
	"buzzc/token"
	"buzzc/types"
)

// Precedence is the parser's fixed binding-power ladder, lowest-binding
// first.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecIs
	PrecOr
	PrecAnd
	PrecXor
	PrecEquality
	PrecComparison
	PrecNullCoalescing
	PrecTerm
	PrecShift
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type prefixFn func(p *Parser, canAssign bool) ast.Node
type infixFn func(p *Parser, left ast.Node, canAssign bool) ast.Node

type infixRule struct {
	prec Precedence
	fn   infixFn
}

var prefixRules map[token.Kind]prefixFn
var infixRules map[token.Kind]infixRule

func init() {
	prefixRules = map[token.Kind]prefixFn{
		token.Minus:       parseUnary,
		token.Bang:        parseUnary,
		token.Number:      parseNumber,
		token.String:      parseString,
		token.Boolean:     parseBoolean,
		token.Null:        parseNull,
		token.Identifier:  parseIdentifier,
		token.LeftParen:   parseGrouping,
		token.LeftBracket: parseListLiteral,
		token.LeftBrace:   parseMapLiteral,
		token.Super:       parseSuper,
	}

	infixRules = map[token.Kind]infixRule{
		token.Equal:                 {PrecAssignment, parseAssign},
		token.QuestionQuestionEqual: {PrecAssignment, parseAssign},
		token.Is:                    {PrecIs, parseIs},
		token.Or:                    {PrecOr, parseOr},
		token.And:                   {PrecAnd, parseAnd},
		token.Xor:                   {PrecXor, binaryInfix(PrecXor+1, boolResult)},
		token.EqualEqual:            {PrecEquality, binaryInfix(PrecEquality+1, boolResult)},
		token.BangEqual:             {PrecEquality, binaryInfix(PrecEquality+1, boolResult)},
		token.Less:                  {PrecComparison, binaryInfix(PrecComparison+1, boolResult)},
		token.LessEqual:             {PrecComparison, binaryInfix(PrecComparison+1, boolResult)},
		token.Greater:               {PrecComparison, binaryInfix(PrecComparison+1, boolResult)},
		token.GreaterEqual:          {PrecComparison, binaryInfix(PrecComparison+1, boolResult)},
		token.QuestionQuestion:      {PrecNullCoalescing, binaryInfix(PrecNullCoalescing+1, nullCoalesceResult)},
		token.Plus:                  {PrecTerm, binaryInfix(PrecTerm+1, arithResult)},
		token.Minus:                 {PrecTerm, binaryInfix(PrecTerm+1, arithResult)},
		token.ShiftLeft:             {PrecShift, binaryInfix(PrecShift+1, arithResult)},
		token.ShiftRight:            {PrecShift, binaryInfix(PrecShift+1, arithResult)},
		token.Star:                  {PrecFactor, binaryInfix(PrecFactor+1, arithResult)},
		token.Slash:                 {PrecFactor, binaryInfix(PrecFactor+1, arithResult)},
		token.Percent:               {PrecFactor, binaryInfix(PrecFactor+1, arithResult)},
		token.LeftParen:             {PrecCall, parseCall},
		token.LeftBracket:           {PrecCall, parseSubscript},
		token.LeftBrace:             {PrecCall, parseObjectInit},
		token.Dot:                   {PrecCall, parseDot},
		token.Question:              {PrecCall, parseUnwrap},
		token.Bang2:                 {PrecCall, parseForceUnwrap},
	}
}

func (p *Parser) parseExpression() ast.Node {
	return p.parsePrecedence(PrecAssignment)
}

// parseHeaderExpression parses an if/while/for/foreach header expression with
// the `{` object-initializer infix rule suppressed, so the brace that follows
// is always read as the statement's body. A parenthesized, bracketed, or
// braced sub-expression inside the header (grouping, a call, a subscript, a
// list/map literal) clears the suppression again since it is no longer
// adjacent to the header's own closing brace.
func (p *Parser) parseHeaderExpression() ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = true
	e := p.parseExpression()
	p.noObjectInit = saved
	return e
}

// parsePrecedence is the core of the precedence-climbing expression parser:
// canAssign tracks whether the expression parsed so far is a legal
// assignment target, so `a + b = 1` is rejected instead of silently
// discarding the `=`.
func (p *Parser) parsePrecedence(prec Precedence) ast.Node {
	p.advance()
	prefix, ok := prefixRules[p.previous.Kind]
	if !ok {
		p.errorAt(p.previous, "expected an expression")
		return &ast.Null{}
	}

	canAssign := prec <= PrecAssignment
	left := prefix(p, canAssign)

	for {
		if p.noObjectInit && p.current.Kind == token.LeftBrace {
			break
		}
		rule, ok := infixRules[p.current.Kind]
		if !ok || rule.prec < prec {
			break
		}
		p.advance()
		left = rule.fn(p, left, canAssign)
	}

	if canAssign && (p.check(token.Equal) || p.check(token.QuestionQuestionEqual)) {
		p.errorAtCurrent("invalid assignment target")
	}
	return left
}

// --- prefix rules ------------------------------------------------------

func parseUnary(p *Parser, canAssign bool) ast.Node {
	op := p.previous
	right := p.parsePrecedence(PrecUnary)
	n := &ast.Unary{Right: right, Operator: op.Lexeme}
	if op.Kind == token.Bang {
		n.Typ = p.reg.Bool()
	} else {
		n.Typ = right.Type()
	}
	return n
}

func parseNumber(p *Parser, canAssign bool) ast.Node {
	value := p.previous.LiteralNumber
	p.table.Current.AddConstant(value)
	n := &ast.Number{Value: value}
	n.Typ = p.reg.NumberT()
	return n
}

func parseString(p *Parser, canAssign bool) ast.Node {
	value := p.previous.LiteralString
	p.table.Current.AddConstant(value)
	n := &ast.String{Value: value}
	n.Typ = p.reg.StringT()
	return n
}

func parseBoolean(p *Parser, canAssign bool) ast.Node {
	n := &ast.Boolean{Value: p.previous.Lexeme == "true"}
	p.table.Current.AddConstant(n.Value)
	n.Typ = p.reg.Bool()
	return n
}

func parseNull(p *Parser, canAssign bool) ast.Node {
	n := &ast.Null{}
	n.Typ = p.reg.WithOptional(p.reg.Void(), true)
	return n
}

func parseGrouping(p *Parser, canAssign bool) ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = false
	expr := p.parseExpression()
	p.noObjectInit = saved
	p.consume(token.RightParen, "expected ')' after expression")
	return expr
}

func parseListLiteral(p *Parser, canAssign bool) ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = false
	defer func() { p.noObjectInit = saved }()

	var elems []ast.Node
	for !p.check(token.RightBracket) {
		elems = append(elems, p.parseExpression())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RightBracket, "expected ']' after list elements")

	itemType := p.reg.Void()
	if len(elems) > 0 {
		itemType = elems[0].Type()
	}
	n := &ast.List{Elements: elems}
	n.Typ = p.reg.ListOf(itemType)
	return n
}

func parseMapLiteral(p *Parser, canAssign bool) ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = false
	defer func() { p.noObjectInit = saved }()

	var keys, values []ast.Node
	for !p.check(token.RightBrace) {
		k := p.parseExpression()
		p.consume(token.Colon, "expected ':' between map key and value")
		v := p.parseExpression()
		keys = append(keys, k)
		values = append(values, v)
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RightBrace, "expected '}' after map entries")

	keyType, valueType := p.reg.Void(), p.reg.Void()
	if len(keys) > 0 {
		keyType, valueType = keys[0].Type(), values[0].Type()
	}
	n := &ast.Map{Keys: keys, Values: values}
	n.Typ = p.reg.MapOf(keyType, valueType)
	return n
}

func parseSuper(p *Parser, canAssign bool) ast.Node {
	where := p.previous
	if p.match(token.Dot) {
		name := p.consume(token.Identifier, "expected a method name after 'super.'")
		return p.superCall(name)
	}
	n := &ast.Super{}
	n.Typ = p.reg.NewPlaceholder("super", where)
	return n
}

func (p *Parser) superCall(name token.Token) ast.Node {
	p.consume(token.LeftParen, "expected '(' after super method name")
	saved := p.noObjectInit
	p.noObjectInit = false
	defer func() { p.noObjectInit = saved }()

	var args []ast.Argument
	if !p.check(token.RightParen) {
		for {
			args = append(args, ast.Argument{Value: p.parseExpression()})
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "expected ')' after arguments")

	n := &ast.SuperCall{Identifier: name.Lexeme, Arguments: args}
	n.Typ = p.reg.NewPlaceholder(name.Lexeme, name)
	return n
}

// parseIdentifier resolves a bare name against the current lexical scope: a
// local or upvalue capture takes priority over the global table, and an
// unresolved unqualified global name becomes a forward-reference placeholder
// rather than an error, since a global may be used before its declaration is
// reached. A qualified `Prefix\Name` that misses is an unknown imported
// symbol, since its module has already been merged in full.
func parseIdentifier(p *Parser, canAssign bool) ast.Node {
	name := p.previous.Lexeme
	where := p.previous

	if p.check(token.Backslash) && p.table.HasPrefix(name) {
		p.advance()
		member := p.consume(token.Identifier, "expected a name after '\\'")
		return p.resolveNamedVariable(member.Lexeme, name, member)
	}

	return p.resolveNamedVariable(name, "", where)
}

func (p *Parser) resolveNamedVariable(name, prefix string, where token.Token) ast.Node {
	f := p.table.Current

	if prefix == "" {
		if idx, ok := p.table.ResolveLocal(p.ctx, f, name, where); ok {
			return p.namedVariable(name, "local", idx, f.Locals[idx].Type)
		}
		if idx, ok := p.table.ResolveUpvalue(p.ctx, f, name, where); ok {
			return p.namedVariable(name, "upvalue", idx, p.upvalueType(f, idx))
		}
	}

	if g, ok := p.table.ResolveGlobal(prefix, name); ok {
		return p.namedVariable(name, "global", p.globalIndex(g), g.Type)
	}

	if prefix != "" {
		p.errorAt(where, "unknown imported symbol \""+prefix+"\\"+name+"\"")
		return p.namedVariable(name, "global", -1, p.reg.Void())
	}

	g := p.table.DeclarePlaceholder(name, where)
	return p.namedVariable(name, "placeholder", p.globalIndex(g), g.Type)
}

func (p *Parser) namedVariable(name, kind string, slot int, typ *types.Def) *ast.NamedVariable {
	n := &ast.NamedVariable{Identifier: name, SlotKind: kind, Slot: slot}
	n.Typ = typ
	return n
}

func (p *Parser) globalIndex(g *symbols.Global) int {
	for i, other := range p.table.Globals {
		if other == g {
			return i
		}
	}
	return -1
}

func (p *Parser) upvalueType(f *symbols.Frame, idx int) *types.Def {
	uv := f.Upvalues[idx]
	if uv.IsLocal {
		return f.Enclosing.Locals[uv.Index].Type
	}
	return p.upvalueType(f.Enclosing, uv.Index)
}

// --- infix rules ---------------------------------------------------------

func parseAssign(p *Parser, left ast.Node, canAssign bool) ast.Node {
	op := p.previous
	_, isName := left.(*ast.NamedVariable)
	_, isSubscript := left.(*ast.Subscript)
	_, isDot := left.(*ast.Dot)
	if !canAssign || !(isName || isSubscript || isDot) {
		p.errorAt(op, "invalid assignment target")
	}
	value := p.parsePrecedence(PrecAssignment)
	p.linkAssignmentTarget(left, value, op)

	n := &ast.Binary{Left: left, Right: value, Operator: op.Lexeme}
	n.Typ = left.Type()
	return n
}

// linkAssignmentTarget establishes the assignment relation between a target
// and the value assigned into it: a target already known to be a constant
// binding is rejected outright; otherwise, if the target's declared type is
// still a placeholder, the value's type is linked as its resolution driver.
func (p *Parser) linkAssignmentTarget(target, value ast.Node, where token.Token) {
	targetType := target.Type()
	if targetType == nil {
		return
	}

	constant := p.isConstantTarget(target)
	if constant {
		logging.LogError(p.ctx, "cannot assign to a constant binding", logging.KindUsage,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
		return
	}

	if targetType.IsPlaceholder() {
		child := p.reg.NewPlaceholder("", where)
		p.reg.LinkAssignment(targetType, child, constant)
		if value.Type() != nil {
			p.reg.Resolve(p.ctx, child, value.Type())
		}
	}
}

func (p *Parser) isConstantTarget(n ast.Node) bool {
	nv, ok := n.(*ast.NamedVariable)
	if !ok {
		return false
	}
	switch nv.SlotKind {
	case "local":
		return p.table.Current.Locals[nv.Slot].Constant
	case "global", "placeholder":
		if nv.Slot >= 0 && nv.Slot < len(p.table.Globals) {
			return p.table.Globals[nv.Slot].Constant
		}
	}
	return false
}

func parseIs(p *Parser, left ast.Node, canAssign bool) ast.Node {
	typeQuery := p.parseType()
	n := &ast.Is{Left: left, TypeQuery: typeQuery}
	n.Typ = p.reg.Bool()
	return n
}

func parseAnd(p *Parser, left ast.Node, canAssign bool) ast.Node {
	right := p.parsePrecedence(PrecAnd + 1)
	n := &ast.And{Left: left, Right: right}
	n.Typ = p.reg.Bool()
	return n
}

func parseOr(p *Parser, left ast.Node, canAssign bool) ast.Node {
	right := p.parsePrecedence(PrecOr + 1)
	n := &ast.Or{Left: left, Right: right}
	n.Typ = p.reg.Bool()
	return n
}

func boolResult(p *Parser, left, right ast.Node) *types.Def { return p.reg.Bool() }

func arithResult(p *Parser, left, right ast.Node) *types.Def {
	if lt := left.Type(); lt != nil && lt.Kind == types.String {
		return p.reg.StringT()
	}
	return p.reg.NumberT()
}

// nullCoalesceResult is always non-optional: `??` only ever produces its
// right operand's value, and that value is by definition not the null case
// being coalesced away, whether or not the right operand's own static type
// happens to be optional.
func nullCoalesceResult(p *Parser, left, right ast.Node) *types.Def {
	if rt := right.Type(); rt != nil {
		return p.reg.WithOptional(rt, false)
	}
	return p.reg.Void()
}

func binaryInfix(nextPrec Precedence, resultType func(p *Parser, left, right ast.Node) *types.Def) infixFn {
	return func(p *Parser, left ast.Node, canAssign bool) ast.Node {
		op := p.previous.Lexeme
		right := p.parsePrecedence(nextPrec)
		n := &ast.Binary{Left: left, Right: right, Operator: op}
		n.Typ = resultType(p, left, right)
		return n
	}
}

func parseCall(p *Parser, callee ast.Node, canAssign bool) ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = false
	defer func() { p.noObjectInit = saved }()

	var args []ast.Argument
	if !p.check(token.RightParen) {
		for {
			var name string
			if p.check(token.Identifier) && p.peekAt(1).Kind == token.Colon {
				name = p.current.Lexeme
				p.advance()
				p.advance()
			}
			args = append(args, ast.Argument{Name: name, Value: p.parseExpression()})
			if !p.match(token.Comma) {
				break
			}
		}
	}
	closeParen := p.consume(token.RightParen, "expected ')' after arguments")

	call := &ast.Call{Callee: callee, Arguments: args}
	call.Typ = p.callResultType(callee, closeParen)

	for p.match(token.Catch) {
		clause := p.parseCatch()
		if len(call.Catches) >= symbols.MaxCatchClauses {
			logging.LogError(p.ctx, "too many catch clauses on one call", logging.KindArity,
				&logging.TextPosition{Line: closeParen.Line, Column: closeParen.Column})
			continue
		}
		call.Catches = append(call.Catches, clause)
	}
	return call
}

func (p *Parser) callResultType(callee ast.Node, where token.Token) *types.Def {
	t := callee.Type()
	if t == nil {
		return p.reg.Void()
	}
	if t.IsPlaceholder() {
		child := p.reg.NewPlaceholder("", where)
		p.reg.Link(t, child, types.RelCall)
		return child
	}

	switch t.Kind {
	case types.Function:
		return t.Return
	case types.Native:
		return t.Signature.Return
	case types.Object:
		return p.reg.InstanceOf(t)
	default:
		logging.LogError(p.ctx, "cannot call a value of type "+types.Canonical(t), logging.KindTyping,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
		return p.reg.Void()
	}
}

func (p *Parser) parseCatch() ast.Node {
	if p.match(token.LeftBrace) {
		p.table.PushFrame()
		p.table.BeginScope()
		stmts := p.blockBody()
		p.table.EndScope()
		p.table.PopFrame()

		fn := &ast.Function{Body: &ast.Block{Statements: stmts}}
		fn.Typ = &types.Def{Kind: types.Function, FnKind: types.FnCatch, Return: p.reg.Void()}
		return &ast.Catch{Closure: fn}
	}
	return &ast.Catch{Expr: p.parseExpression()}
}

func parseSubscript(p *Parser, callee ast.Node, canAssign bool) ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = false
	index := p.parseExpression()
	p.noObjectInit = saved
	closeBracket := p.consume(token.RightBracket, "expected ']' after subscript index")

	n := &ast.Subscript{Callee: callee, Index: index}
	n.Typ = p.subscriptResultType(callee, index, closeBracket)
	return n
}

func (p *Parser) subscriptResultType(callee, index ast.Node, where token.Token) *types.Def {
	t := callee.Type()
	if t == nil {
		return p.reg.Void()
	}
	if t.IsPlaceholder() {
		child := p.reg.NewPlaceholder("", where)
		p.reg.Link(t, child, types.RelSubscript)
		if kt := index.Type(); kt != nil && kt.IsPlaceholder() {
			keyChild := p.reg.NewPlaceholder("", where)
			p.reg.Link(t, keyChild, types.RelKey)
		}
		return child
	}

	switch t.Kind {
	case types.List:
		return t.Item
	case types.Map:
		return p.reg.WithOptional(t.Value, true)
	default:
		logging.LogError(p.ctx, "cannot subscript a value of type "+types.Canonical(t), logging.KindTyping,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
		return p.reg.Void()
	}
}

func parseDot(p *Parser, callee ast.Node, canAssign bool) ast.Node {
	member := p.consume(token.Identifier, "expected a member name after '.'")

	n := &ast.Dot{Callee: callee, Identifier: member.Lexeme}
	n.Typ = p.fieldAccessType(callee, member)
	return n
}

func (p *Parser) fieldAccessType(callee ast.Node, member token.Token) *types.Def {
	t := callee.Type()
	if t == nil {
		return p.reg.Void()
	}
	if t.IsPlaceholder() {
		child := p.reg.NewPlaceholder(member.Lexeme, member)
		p.reg.LinkFieldAccess(t, child, member.Lexeme)
		return child
	}

	switch t.Kind {
	case types.ObjectInstance:
		obj := t.Of
		if ft, ok := obj.Fields.Get(member.Lexeme); ok {
			return ft
		}
		if mt, ok := obj.Methods[member.Lexeme]; ok {
			return mt
		}
	case types.Enum:
		for _, c := range t.Cases {
			if c == member.Lexeme {
				return p.reg.InstanceOf(t)
			}
		}
	}

	logging.LogError(p.ctx, "no field or method named \""+member.Lexeme+"\" on "+types.Canonical(t), logging.KindName,
		&logging.TextPosition{Line: member.Line, Column: member.Column})
	return p.reg.Void()
}

// parseObjectInit parses an object initializer (`Point{ x = 0, y = 0 }`),
// triggered as an infix `{` rule following the type-name expression. Reuses
// the RelCall relation for an unresolved callee, the same relation
// callResultType links for a call on a forward reference: resolving that
// relation against a concrete Object already yields the object's instance
// type, so a forward-referenced object initializer resolves the same way a
// forward-referenced call does.
func parseObjectInit(p *Parser, left ast.Node, canAssign bool) ast.Node {
	saved := p.noObjectInit
	p.noObjectInit = false
	defer func() { p.noObjectInit = saved }()

	nv, ok := left.(*ast.NamedVariable)
	if !ok {
		p.errorAtCurrent("object initializer must follow a type name")
		return left
	}

	members := map[string]ast.Node{}
	if !p.check(token.RightBrace) {
		for {
			nameTok := p.consume(token.Identifier, "expected a field name")
			p.consume(token.Equal, "expected '=' after field name in object initializer")
			members[nameTok.Lexeme] = p.parseExpression()
			if !p.match(token.Comma) {
				break
			}
		}
	}
	closeBrace := p.consume(token.RightBrace, "expected '}' after object initializer")

	n := &ast.ObjectInit{Identifier: nv.Identifier, Members: members}
	n.Typ = p.objectInitType(nv.Type(), closeBrace)
	return n
}

func (p *Parser) objectInitType(t *types.Def, where token.Token) *types.Def {
	if t == nil {
		return p.reg.Void()
	}
	if t.IsPlaceholder() {
		child := p.reg.NewPlaceholder("", where)
		p.reg.Link(t, child, types.RelCall)
		return child
	}
	if t.Kind == types.Object {
		return p.reg.InstanceOf(t)
	}

	logging.LogError(p.ctx, "cannot initialize a value of type "+types.Canonical(t)+" as an object", logging.KindTyping,
		&logging.TextPosition{Line: where.Line, Column: where.Column})
	return p.reg.Void()
}

func parseUnwrap(p *Parser, callee ast.Node, canAssign bool) ast.Node {
	n := &ast.Unwrap{Unwrapped: callee}
	n.Typ = callee.Type()
	return n
}

func parseForceUnwrap(p *Parser, callee ast.Node, canAssign bool) ast.Node {
	n := &ast.ForceUnwrap{Unwrapped: callee}
	if t := callee.Type(); t != nil {
		n.Typ = p.reg.WithOptional(t, false)
	}
	return n
}
