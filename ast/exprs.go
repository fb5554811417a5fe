package ast

import "buzzc/types"

// Binary is a binary operator application (`a + b`, `a == b`, `a ?? b`, ...).
type Binary struct {
	Base
	Left, Right Node
	Operator    string
}

func (n *Binary) Kind() string { return "Binary" }
func (n *Binary) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["left"] = n.Left
	f["right"] = n.Right
	f["operator"] = n.Operator
	return f.marshal()
}

// Unary is a prefix unary operator application (`-a`, `!a`).
type Unary struct {
	Base
	Right    Node
	Operator string
}

func (n *Unary) Kind() string { return "Unary" }
func (n *Unary) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["right"] = n.Right
	f["operator"] = n.Operator
	return f.marshal()
}

// Subscript is `callee[index]`.
type Subscript struct {
	Base
	Callee, Index Node
}

func (n *Subscript) Kind() string { return "Subscript" }
func (n *Subscript) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["callee"] = n.Callee
	f["index"] = n.Index
	return f.marshal()
}

// Unwrap is the optional-chaining unwrap of an optional value (`a?`),
// producing a still-optional or null result depending on context.
type Unwrap struct {
	Base
	Unwrapped Node
}

func (n *Unwrap) Kind() string { return "Unwrap" }
func (n *Unwrap) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["unwrapped"] = n.Unwrapped
	return f.marshal()
}

// ForceUnwrap is `a!!`, which strips optionality and raises at runtime if a
// is null.
type ForceUnwrap struct {
	Base
	Unwrapped Node
}

func (n *ForceUnwrap) Kind() string { return "ForceUnwrap" }
func (n *ForceUnwrap) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["unwrapped"] = n.Unwrapped
	return f.marshal()
}

// Is is a type-test expression (`x is num`), always Bool-typed.
type Is struct {
	Base
	Left      Node
	TypeQuery *types.Def
}

func (n *Is) Kind() string { return "Is" }
func (n *Is) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["left"] = n.Left
	f["right"] = typeDefField(n.TypeQuery)
	return f.marshal()
}

// And is short-circuiting logical conjunction.
type And struct {
	Base
	Left, Right Node
}

func (n *And) Kind() string { return "And" }
func (n *And) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["left"] = n.Left
	f["right"] = n.Right
	return f.marshal()
}

// Or is short-circuiting logical disjunction.
type Or struct {
	Base
	Left, Right Node
}

func (n *Or) Kind() string { return "Or" }
func (n *Or) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["left"] = n.Left
	f["right"] = n.Right
	return f.marshal()
}

// NamedVariable is a bare identifier reference resolved to a local, upvalue
// or global slot (or left pointing at a fresh placeholder).
type NamedVariable struct {
	Base
	Identifier string

	// SlotKind describes how the reference resolved: "local", "upvalue",
	// "global", or "placeholder".
	SlotKind string
	Slot     int
}

func (n *NamedVariable) Kind() string { return "NamedVariable" }
func (n *NamedVariable) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	return f.marshal()
}

// Number is a numeric literal.
type Number struct {
	Base
	Value float64
}

func (n *Number) Kind() string { return "Number" }
func (n *Number) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["value"] = n.Value
	return f.marshal()
}

// String is a plain (non-interpolated) string literal.
type String struct {
	Base
	Value string
}

func (n *String) Kind() string { return "String" }
func (n *String) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["value"] = n.Value
	return f.marshal()
}

// StringLiteral is an interpolated string, alternating literal text segments
// and embedded expressions.
type StringLiteral struct {
	Base
	Elements []Node
}

func (n *StringLiteral) Kind() string { return "StringLiteral" }
func (n *StringLiteral) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["elements"] = n.Elements
	return f.marshal()
}

// Boolean is a `true`/`false` literal.
type Boolean struct {
	Base
	Value bool
}

func (n *Boolean) Kind() string { return "Boolean" }
func (n *Boolean) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["value"] = n.Value
	return f.marshal()
}

// Null is the `null` literal.
type Null struct{ Base }

func (n *Null) Kind() string { return "Null" }
func (n *Null) MarshalJSON() ([]byte, error) {
	return newFields(n.Kind(), n.Typ).marshal()
}

// List is a list literal (`[1, 2, 3]`).
type List struct {
	Base
	Elements []Node
}

func (n *List) Kind() string { return "List" }
func (n *List) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["elements"] = n.Elements
	return f.marshal()
}

// Map is a map literal (`{"a": 1, "b": 2}`), keys and values kept as
// parallel lists in declaration order.
type Map struct {
	Base
	Keys, Values []Node
}

func (n *Map) Kind() string { return "Map" }
func (n *Map) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["keys"] = n.Keys
	f["values"] = n.Values
	return f.marshal()
}

// Super is a bare `super` reference used as the receiver of a Dot or
// SuperCall.
type Super struct{ Base }

func (n *Super) Kind() string { return "Super" }
func (n *Super) MarshalJSON() ([]byte, error) {
	return newFields(n.Kind(), n.Typ).marshal()
}

// Dot is member access (`callee.identifier`).
type Dot struct {
	Base
	Callee     Node
	Identifier string
}

func (n *Dot) Kind() string { return "Dot" }
func (n *Dot) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["callee"] = n.Callee
	f["identifier"] = n.Identifier
	return f.marshal()
}

// ObjectInit is an object initializer expression (`Point{ x = 0, y = 0 }`).
type ObjectInit struct {
	Base
	Identifier string
	Members    map[string]Node
}

func (n *ObjectInit) Kind() string { return "ObjectInit" }
func (n *ObjectInit) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["members"] = n.Members
	return f.marshal()
}

// Call is a function call, optionally followed by inline `catch` clauses.
type Call struct {
	Base
	Callee    Node
	Arguments []Argument
	Catches   []Node
}

func (n *Call) Kind() string { return "Call" }
func (n *Call) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["callee"] = n.Callee

	args := make([]map[string]interface{}, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = a.marshal()
	}
	f["arguments"] = args
	f["catches"] = n.Catches
	return f.marshal()
}

// SuperCall is a call to a superclass method (`super.method(...)`).
type SuperCall struct {
	Base
	Identifier string
	Arguments  []Argument
}

func (n *SuperCall) Kind() string { return "SuperCall" }
func (n *SuperCall) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier

	args := make([]map[string]interface{}, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = a.marshal()
	}
	f["arguments"] = args
	return f.marshal()
}
