package ast

import "buzzc/types"

// Function is a function/method/lambda/catch-closure body: parameter names
// (their types live on the node's own Function TypeDef) plus a Block body.
// Both the implicit whole-script function wrapping a parsed file and every
// `fun` declaration's payload use this node.
type Function struct {
	Base
	Identifier string
	Parameters []string
	Body       Node
}

func (n *Function) Kind() string { return "Function" }
func (n *Function) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["body"] = n.Body
	if n.Typ != nil {
		f["kind"] = fnKindName(n.Typ.FnKind)
	} else {
		f["kind"] = "N/A"
	}
	return f.marshal()
}

func fnKindName(k types.FnKind) string {
	switch k {
	case types.FnFunction:
		return "Function"
	case types.FnMethod:
		return "Method"
	case types.FnAnonymous:
		return "Anonymous"
	case types.FnCatch:
		return "Catch"
	case types.FnScript:
		return "Script"
	case types.FnScriptEntryPoint:
		return "ScriptEntryPoint"
	case types.FnEntryPoint:
		return "EntryPoint"
	case types.FnTest:
		return "Test"
	case types.FnExtern:
		return "Extern"
	default:
		return "Unknown"
	}
}

// FunDeclaration is a named `fun`/`extern fun` statement declaring a global
// (or, for a method, contributing to an enclosing ObjectDeclaration).
type FunDeclaration struct {
	Base
	Identifier string
	Constant   bool
	Function   Node
}

func (n *FunDeclaration) Kind() string { return "FunDeclaration" }
func (n *FunDeclaration) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["constant"] = n.Constant
	f["body"] = n.Function
	return f.marshal()
}

// VarDeclaration is a `var Type name [= expr];` statement.
type VarDeclaration struct {
	Base
	Identifier string
	Constant   bool
	Value      Node
}

func (n *VarDeclaration) Kind() string { return "VarDeclaration" }
func (n *VarDeclaration) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["constant"] = n.Constant
	if n.Value != nil {
		f["body"] = n.Value
	} else {
		f["body"] = nil
	}
	return f.marshal()
}

// ListDeclaration aliases a name to a list structural type (`[num] X;`),
// letting later declarations reference X as a type name.
type ListDeclaration struct {
	Base
	Identifier  string
	ElementType *types.Def
}

func (n *ListDeclaration) Kind() string { return "ListDeclaration" }
func (n *ListDeclaration) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["items"] = typeDefField(n.ElementType)
	return f.marshal()
}

// MapDeclaration aliases a name to a map structural type
// (`{str: num} X;`).
type MapDeclaration struct {
	Base
	Identifier string
	KeyType    *types.Def
	ValueType  *types.Def
}

func (n *MapDeclaration) Kind() string { return "MapDeclaration" }
func (n *MapDeclaration) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["keys"] = typeDefField(n.KeyType)
	f["values"] = typeDefField(n.ValueType)
	return f.marshal()
}

// ObjectDeclaration is an `object`/`class` declaration; Members holds field
// declarations (VarDeclaration) and method declarations (FunDeclaration) in
// source order.
type ObjectDeclaration struct {
	Base
	Identifier string
	SuperName  string
	IsClass    bool
	Members    []Node
}

func (n *ObjectDeclaration) Kind() string { return "ObjectDeclaration" }
func (n *ObjectDeclaration) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["members"] = n.Members
	return f.marshal()
}

// Enum is an `enum` declaration. CaseType is the underlying representation
// type given after `:` (e.g. `enum Color: str { ... }`), or nil for a plain
// tag-only enum.
type Enum struct {
	Base
	Identifier string
	Cases      []string
	CaseType   *types.Def
}

func (n *Enum) Kind() string { return "Enum" }
func (n *Enum) MarshalJSON() ([]byte, error) {
	f := newFields(n.Kind(), n.Typ)
	f["identifier"] = n.Identifier
	f["cases"] = n.Cases
	f["case_type"] = typeDefField(n.CaseType)
	return f.marshal()
}
