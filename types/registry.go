package types

import "buzzc/token"

// Registry interns non-placeholder TypeDefs by canonical string. One
// Registry is shared by a compilation root (the top-level parser and every
// recursively-parsed import), so type identity stays consistent across
// imports and the registry only needs to tolerate concurrent reads once
// parsing is complete.
type Registry struct {
	interned map[string]*Def
}

// NewRegistry creates an empty registry pre-populated with nothing; callers
// typically fetch primitives through Bool()/NumberT()/etc. below rather than
// building them by hand.
func NewRegistry() *Registry {
	return &Registry{interned: make(map[string]*Def)}
}

// GetOrIntern canonicalizes desc and returns the existing interned Def if one
// already has that canonical string, otherwise stores and returns desc
// itself. Placeholders are never interned -- passing one back unchanged is a
// caller error and returns it unmodified without touching the table.
func (r *Registry) GetOrIntern(desc *Def) *Def {
	if desc.Kind == Placeholder {
		return desc
	}

	key := Canonical(desc)
	if existing, ok := r.interned[key]; ok {
		return existing
	}

	r.interned[key] = desc
	return desc
}

// NewPlaceholder allocates a fresh, never-interned placeholder rooted at the
// token where the unresolved reference occurred.
func (r *Registry) NewPlaceholder(name string, where token.Token) *Def {
	return &Def{Kind: Placeholder, PlaceholderName: name, Where: where}
}

// InstanceOf returns the interned ObjectInstance/EnumInstance view of an
// Object or Enum definition.
func (r *Registry) InstanceOf(def *Def) *Def {
	switch def.Kind {
	case Object:
		return r.GetOrIntern(&Def{Kind: ObjectInstance, Name: def.Name, Of: def})
	case Enum:
		return r.GetOrIntern(&Def{Kind: EnumInstance, Name: def.Name, Of: def})
	default:
		return def
	}
}

// WithOptional returns a Def identical to t but with Optional overridden to
// flag. Concrete types are re-interned under their (possibly different)
// canonical string. A still-unresolved placeholder cannot simply be copied
// with the flag flipped -- the copy would be a dead end, disconnected from
// every relation t already participates in, and would never observe t's
// eventual resolution -- so instead a fresh placeholder child is linked to t
// via RelOptional and takes on t's real type, with the wanted flag forced,
// once t resolves.
func (r *Registry) WithOptional(t *Def, flag bool) *Def {
	if t.Optional == flag {
		return t
	}

	if t.Kind == Placeholder {
		child := r.NewPlaceholder(t.PlaceholderName, t.Where)
		r.LinkOptional(t, child, flag)
		return child
	}

	cp := *t
	cp.Optional = flag
	return r.GetOrIntern(&cp)
}

// Primitive constructors -- always go through GetOrIntern so repeated calls
// return the same *Def, preserving the interning invariant that equal types
// are pointer-equal.
func (r *Registry) Bool() *Def   { return r.GetOrIntern(&Def{Kind: Bool}) }
func (r *Registry) NumberT() *Def { return r.GetOrIntern(&Def{Kind: Number}) }
func (r *Registry) StringT() *Def { return r.GetOrIntern(&Def{Kind: String}) }
func (r *Registry) TypeT() *Def  { return r.GetOrIntern(&Def{Kind: Type}) }
func (r *Registry) Void() *Def   { return r.GetOrIntern(&Def{Kind: Void}) }

// ListOf interns List{item}.
func (r *Registry) ListOf(item *Def) *Def {
	return r.GetOrIntern(&Def{Kind: List, Item: item})
}

// MapOf interns Map{key,value}.
func (r *Registry) MapOf(key, value *Def) *Def {
	return r.GetOrIntern(&Def{Kind: Map, Key: key, Value: value})
}
