// Package parser implements a single-pass recursive-descent/Pratt parser: it
// builds the AST, performs lexical name resolution against a symbols.Table,
// and drives the types.Registry placeholder engine so that a global or a
// recursive type can be used before its declaration is reached.
package parser

import (
	"buzzc/ast"
	"buzzc/logging"
	"buzzc/native"
	"buzzc/symbols"
	"buzzc/token"
	"buzzc/types"
)

// Parser holds all state for parsing one compilation unit. A fresh Parser is
// created for every recursively-parsed import; the types.Registry is shared
// across the whole compilation root so type interning stays global, while
// each unit gets its own symbols.Table so a file's forward references never
// leak across a file boundary.
type Parser struct {
	scanner token.Scanner
	reg     *types.Registry
	table   *symbols.Table
	ctx     *logging.LogContext

	imported bool
	fileName string
	natives  native.Resolver

	current, previous token.Token
	lookahead          []token.Token

	panicMode bool
	errBase   int

	// noObjectInit suppresses the `{` object-initializer infix rule while
	// parsing an if/while/for/foreach header, so `if x { ... }` parses `x` as
	// the condition and `{` as the body rather than as `x{...}`. Anything
	// parenthesized or bracketed (grouping, call arguments, a subscript
	// index, a list/map element) is unambiguous again and clears it.
	noObjectInit bool
}

// New creates a parser over source (already tokenized by scanner) that
// resolves names against table and interns types in reg. imported marks a
// unit reached via `import`, which suppresses main-function promotion: a
// top-level `main` is only promoted to the script's entry point in the
// compilation root, not in an imported unit.
func New(scanner token.Scanner, reg *types.Registry, table *symbols.Table, fileName string, imported bool) *Parser {
	p := &Parser{
		scanner:  scanner,
		reg:      reg,
		table:    table,
		fileName: fileName,
		imported: imported,
		ctx:      &logging.LogContext{FilePath: fileName, Lines: scanner},
	}
	p.errBase = logging.ErrorCount()
	p.advance()
	return p
}

// HadError reports whether this parser (or any import it recursively parsed)
// logged an error.
func (p *Parser) HadError() bool { return logging.ErrorCount() > p.errBase }

// Diagnostics returns the errors logged since this parser was created.
func (p *Parser) Diagnostics() []*logging.LogMessage {
	all := logging.Diagnostics()
	if p.errBase >= len(all) {
		return nil
	}
	return all[p.errBase:]
}

// Parse consumes the whole token stream and returns the root Function node
// wrapping the compilation unit's top-level statements.
func (p *Parser) Parse() ast.Node {
	logging.LogStateChange("Parsing " + p.fileName)

	var stmts []ast.Node
	var mainDecl *ast.Function

	for !p.check(token.EOF) {
		decl := p.declaration()
		if decl == nil {
			continue
		}
		stmts = append(stmts, decl)

		if fd, ok := decl.(*ast.FunDeclaration); ok && !p.imported && fd.Identifier == "main" {
			if fn, ok := fd.Function.(*ast.Function); ok {
				fn.Typ.FnKind = types.FnEntryPoint
				mainDecl = fn
			}
		}
	}

	p.reportUnresolvedForwardReferences()

	kind := types.FnFunction
	if !p.imported {
		kind = types.FnScriptEntryPoint
		if mainDecl != nil {
			kind = types.FnScript
		}
	}

	root := &ast.Function{
		Identifier: p.fileName,
		Body:       &ast.Block{Statements: stmts},
	}
	root.Typ = &types.Def{Kind: types.Function, Name: p.fileName, FnKind: kind, Return: p.reg.Void()}
	return root
}

// reportUnresolvedForwardReferences flags every global in this unit's own
// table that is still a placeholder once the whole file has been read: a
// name used before definition but never actually defined anywhere in the
// file. Forward reference deferred resolution never excuses a name from
// needing a real declaration.
func (p *Parser) reportUnresolvedForwardReferences() {
	for _, g := range p.table.Globals {
		if g.Type.IsPlaceholder() {
			where := g.Type.Where
			logging.LogError(p.ctx, "undefined name \""+g.Name+"\"", logging.KindName,
				&logging.TextPosition{Line: where.Line, Column: where.Column})
		}
	}
}

// --- token stream plumbing -------------------------------------------------

func (p *Parser) fill(n int) {
	for len(p.lookahead) < n {
		p.lookahead = append(p.lookahead, p.scanner.ScanToken())
	}
}

// peekAt returns the token n positions ahead of current (n == 0 is current
// itself), buffering as many tokens as needed. The grammar never needs more
// than a two-token lookahead beyond current, to disambiguate a typed
// declaration from an inferred one.
func (p *Parser) peekAt(n int) token.Token {
	if n == 0 {
		return p.current
	}
	p.fill(n)
	return p.lookahead[n-1]
}

func (p *Parser) advance() {
	p.previous = p.current
	for {
		if len(p.lookahead) > 0 {
			p.current = p.lookahead[0]
			p.lookahead = p.lookahead[1:]
		} else {
			p.current = p.scanner.ScanToken()
		}
		if p.current.Kind != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(k token.Kind) bool { return p.current.Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k token.Kind, message string) token.Token {
	if p.check(k) {
		tok := p.current
		p.advance()
		return tok
	}
	p.errorAtCurrent(message)
	return p.current
}

func (p *Parser) consumeSemicolon() { p.consume(token.Semicolon, "expected ';' after statement") }

// --- error reporting / recovery --------------------------------------------

func (p *Parser) errorAtCurrent(message string) { p.errorAt(p.current, message) }

func (p *Parser) errorAt(where token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	logging.LogError(p.ctx, message, logging.KindSyntax,
		&logging.TextPosition{Line: where.Line, Column: where.Column})
}

// synchronize implements panic-mode recovery: discard tokens until a
// statement boundary (a `;` or a keyword that starts a new
// declaration/statement) is reached, so one syntax error does not cascade
// into a wall of spurious follow-on diagnostics.
func (p *Parser) synchronize() {
	p.panicMode = false

	for !p.check(token.EOF) {
		if p.previous.Kind == token.Semicolon {
			return
		}
		switch p.current.Kind {
		case token.Var, token.Const, token.Fun, token.Extern, token.Object,
			token.Class, token.Enum, token.Import, token.Export, token.Test,
			token.If, token.For, token.ForEach, token.While, token.Do,
			token.Return, token.Throw, token.Break, token.Continue:
			return
		}
		p.advance()
	}
}

// --- statement/declaration dispatch -----------------------------------------

func (p *Parser) declaration() (decl ast.Node) {
	defer func() {
		if p.panicMode {
			p.synchronize()
		}
	}()

	switch {
	case p.match(token.Var):
		return p.varDeclaration(false)
	case p.match(token.Const):
		return p.varDeclaration(true)
	case p.match(token.Fun):
		return p.funDeclaration(false)
	case p.match(token.Extern):
		p.consume(token.Fun, "expected 'fun' after 'extern'")
		return p.funDeclaration(true)
	case p.match(token.Object):
		return p.objectDeclaration(false)
	case p.match(token.Class):
		return p.objectDeclaration(true)
	case p.match(token.Enum):
		return p.enumDeclaration()
	case p.match(token.Import):
		return p.importDeclaration()
	case p.match(token.Export):
		return p.exportDeclaration()
	case p.match(token.Test):
		return p.testDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) statement() ast.Node {
	switch {
	case p.match(token.LeftBrace):
		return p.blockStatement()
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.ForEach):
		return p.forEachStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.Do):
		return p.doUntilStatement()
	case p.match(token.Return):
		return p.returnStatement()
	case p.match(token.Throw):
		return p.throwStatement()
	case p.match(token.Break):
		p.consumeSemicolon()
		return &ast.Break{}
	case p.match(token.Continue):
		p.consumeSemicolon()
		return &ast.Continue{}
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) blockStatement() ast.Node {
	p.table.BeginScope()
	stmts := p.blockBody()
	p.table.EndScope()
	return &ast.Block{Statements: stmts}
}

// blockBody parses statements up to (and consuming) the closing '}', without
// touching scope depth itself -- used both by blockStatement and by function
// bodies, which need their parameter locals to share the block's scope.
func (p *Parser) blockBody() []ast.Node {
	var stmts []ast.Node
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
	}
	p.consume(token.RightBrace, "expected '}' after block")
	return stmts
}

func (p *Parser) ifStatement() ast.Node {
	cond := p.parseHeaderExpression()
	p.consume(token.LeftBrace, "expected '{' after if condition")
	body := p.blockStatement()

	var elseBranch ast.Node
	if p.match(token.Else) {
		if p.match(token.If) {
			elseBranch = p.ifStatement()
		} else {
			p.consume(token.LeftBrace, "expected '{' after else")
			elseBranch = p.blockStatement()
		}
	}
	return &ast.If{Condition: cond, Body: body, Else: elseBranch}
}

func (p *Parser) forStatement() ast.Node {
	p.table.BeginScope()
	defer p.table.EndScope()

	var init ast.Node
	if !p.check(token.Semicolon) {
		init = p.declaration()
	} else {
		p.advance()
	}

	var cond ast.Node
	if !p.check(token.Semicolon) {
		cond = p.parseExpression()
	}
	p.consumeSemicolon()

	var post ast.Node
	if !p.check(token.LeftBrace) {
		post = p.parseHeaderExpression()
	}

	p.consume(token.LeftBrace, "expected '{' to start for body")
	body := p.blockStatement()

	return &ast.For{Init: init, Condition: cond, Post: post, Body: body}
}

func (p *Parser) forEachStatement() ast.Node {
	p.table.BeginScope()
	defer p.table.EndScope()

	nameTok := p.consume(token.Identifier, "expected a loop variable name")
	p.consume(token.In, "expected 'in' after loop variable")
	iterable := p.parseHeaderExpression()

	elemType := p.elementTypeOf(iterable.Type())
	p.table.DeclareVariable(p.ctx, nameTok.Lexeme, elemType, false, nameTok)
	p.table.MarkInitialized(nil)

	p.consume(token.LeftBrace, "expected '{' to start foreach body")
	body := p.blockStatement()

	return &ast.ForEach{Identifier: nameTok.Lexeme, Iterable: iterable, Body: body}
}

// elementTypeOf resolves the per-iteration type of a for-each subject,
// creating a Subscript-relation placeholder child if the subject's own type
// is still unresolved.
func (p *Parser) elementTypeOf(subject *types.Def) *types.Def {
	if subject.IsPlaceholder() {
		child := p.reg.NewPlaceholder("", p.previous)
		p.reg.Link(subject, child, types.RelSubscript)
		return child
	}
	if subject.Kind == types.List {
		return subject.Item
	}
	return p.reg.Void()
}

func (p *Parser) whileStatement() ast.Node {
	cond := p.parseHeaderExpression()
	p.consume(token.LeftBrace, "expected '{' after while condition")
	body := p.blockStatement()
	return &ast.While{Condition: cond, Body: body}
}

func (p *Parser) doUntilStatement() ast.Node {
	p.consume(token.LeftBrace, "expected '{' after do")
	body := p.blockStatement()
	p.consume(token.Until, "expected 'until' after do block")
	cond := p.parseExpression()
	p.consumeSemicolon()
	return &ast.DoUntil{Body: body, Condition: cond}
}

func (p *Parser) returnStatement() ast.Node {
	var value ast.Node
	if !p.check(token.Semicolon) {
		value = p.parseExpression()
	}
	p.consumeSemicolon()
	return &ast.Return{Value: value}
}

func (p *Parser) throwStatement() ast.Node {
	value := p.parseExpression()
	p.consumeSemicolon()
	return &ast.Throw{Value: value}
}

func (p *Parser) expressionStatement() ast.Node {
	expr := p.parseExpression()
	p.consumeSemicolon()
	return expr
}
