package parser

import (
	"buzzc/token"
	"buzzc/types"
)

// primitiveTypeNames are the built-in type spellings; anything else is a
// reference to a user-declared object or enum, resolved (or forward-declared
// as a placeholder) through the global table like any other name.
var primitiveTypeNames = map[string]func(*types.Registry) *types.Def{
	"num":  (*types.Registry).NumberT,
	"str":  (*types.Registry).StringT,
	"bool": (*types.Registry).Bool,
	"type": (*types.Registry).TypeT,
	"void": (*types.Registry).Void,
}

// looksLikeTypeAnnotation is a three-token lookahead used to tell a typed
// declaration (`var Point p;`) from a plain, inferred one (`var p = ...;`):
// a `[`/`{` always starts a structural type, a primitive keyword-like
// identifier always does, and two identifiers in a row (optionally with a
// `\` qualifier or a trailing `?`) mean the first one names a type.
func (p *Parser) looksLikeTypeAnnotation() bool {
	if p.check(token.LeftBracket) || p.check(token.LeftBrace) {
		return true
	}
	if !p.check(token.Identifier) {
		return false
	}
	if _, ok := primitiveTypeNames[p.current.Lexeme]; ok {
		return true
	}

	switch p.peekAt(1).Kind {
	case token.Identifier, token.Backslash:
		return true
	case token.Question:
		return p.peekAt(2).Kind == token.Identifier
	default:
		return false
	}
}

// parseType parses one type annotation: primitives, structural list/map
// types, and named object/enum references, any of which may carry a
// trailing `?` to mark it optional. A reference to a name with no existing
// global becomes a forward-reference placeholder rather than an error,
// letting a type be used before the declaration that defines it.
func (p *Parser) parseType() *types.Def {
	if p.match(token.LeftBracket) {
		item := p.parseType()
		p.consume(token.RightBracket, "expected ']' to close a list type")
		return p.maybeOptional(p.reg.ListOf(item))
	}

	if p.match(token.LeftBrace) {
		key := p.parseType()
		p.consume(token.Colon, "expected ':' between map key and value types")
		value := p.parseType()
		p.consume(token.RightBrace, "expected '}' to close a map type")
		return p.maybeOptional(p.reg.MapOf(key, value))
	}

	where := p.consume(token.Identifier, "expected a type name")
	name := where.Lexeme

	if ctor, ok := primitiveTypeNames[name]; ok {
		return p.maybeOptional(ctor(p.reg))
	}

	prefix := ""
	if p.match(token.Backslash) {
		prefix = name
		where = p.consume(token.Identifier, "expected a name after '\\'")
		name = where.Lexeme
	}

	if g, ok := p.table.ResolveGlobal(prefix, name); ok {
		return p.maybeOptional(p.asInstanceType(g.Type, where))
	}

	// A qualified (imported) name is only ever resolved after its module has
	// already been merged in full, so a miss here is a genuine unknown
	// symbol, not a same-file forward reference.
	if prefix != "" {
		p.errorAt(where, "unknown imported type \""+prefix+"\\"+name+"\"")
		return p.reg.Void()
	}

	g := p.table.DeclarePlaceholder(name, where)
	return p.maybeOptional(p.asInstanceType(g.Type, where))
}

// asInstanceType flips a declared type to its "instance" form: a type
// annotation naming an object or enum global must resolve to its
// ObjectInstance/EnumInstance view, not the raw definition, so that ordinary
// field/method/case access on a variable of that type works the same way it
// does on any other object-typed expression. A still-unresolved forward
// reference gets a RelTypeReference child instead, so the flip happens once
// the real definition is known.
func (p *Parser) asInstanceType(t *types.Def, where token.Token) *types.Def {
	if t.IsPlaceholder() {
		child := p.reg.NewPlaceholder(t.PlaceholderName, where)
		p.reg.Link(t, child, types.RelTypeReference)
		return child
	}
	return p.reg.InstanceOf(t)
}

func (p *Parser) maybeOptional(t *types.Def) *types.Def {
	if p.match(token.Question) {
		return p.reg.WithOptional(t, true)
	}
	return t
}
