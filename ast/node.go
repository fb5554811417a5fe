// Package ast defines a tagged-variant AST node model: one Go type per node
// kind, each carrying its resolved-or-placeholder TypeDef annotation and a
// uniform JSON dump.
//
// A small embedded base type supplies the annotation plumbing every node
// needs, and each node kind is its own struct rather than one node type with
// an interface{} payload, so a switch over node kinds stays a compile-time
// exhaustiveness property instead of a runtime type assertion away from a
// panic.
package ast

import (
	"encoding/json"

	"buzzc/types"
)

// Node is implemented by every AST node kind. json.Marshal on any Node (or on
// a tree containing one as a field) produces a uniform
// {"node": "<Kind>", ..., "type_def": "..."} shape.
type Node interface {
	json.Marshaler
	Type() *types.Def
	Kind() string
}

// Base supplies the type annotation every node carries. Embed it first in
// each concrete node type.
type Base struct {
	Typ *types.Def
}

// Type returns the node's resolved-or-placeholder type annotation.
func (b *Base) Type() *types.Def { return b.Typ }

// typeDefField renders a node's type_def JSON field: its canonical string, or
// "N/A" if no annotation was ever attached (e.g. statements with no result
// type).
func typeDefField(t *types.Def) string {
	if t == nil {
		return "N/A"
	}
	return types.Canonical(t)
}

// fields is a small builder for a node's JSON object: it always seeds "node"
// and "type_def" so no concrete node type has to repeat that boilerplate.
type fields map[string]interface{}

func newFields(kind string, typ *types.Def) fields {
	return fields{"node": kind, "type_def": typeDefField(typ)}
}

func (f fields) marshal() ([]byte, error) {
	return json.Marshal(map[string]interface{}(f))
}

// Argument is one element of a Call node's argument list, rendered as an
// `arguments[{name,value}]` field: name is "" for a positional argument.
type Argument struct {
	Name  string
	Value Node
}

func (a Argument) marshal() map[string]interface{} {
	return map[string]interface{}{"name": a.Name, "value": a.Value}
}
