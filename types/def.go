// Package types implements the TypeDef registry and the placeholder engine:
// a tagged-variant structural type system, interned by canonical string,
// plus a DAG of forward-reference placeholders that lets the parser accept
// use-before-definition for globals and recursive types without a second
// semantic pass.
package types

import "buzzc/token"

// Kind discriminates the tagged variants of Def. A sum type over structs
// would be the more conventional shape for this in Go, but it is implemented
// here as one struct with a Kind tag instead, so that a placeholder can be
// overwritten in place without needing an interface box swap.
type Kind int

const (
	Bool Kind = iota
	Number
	String
	Type
	Void

	List
	Map

	Object
	ObjectInstance
	Enum
	EnumInstance

	Function
	Native

	Placeholder
)

// FnKind enumerates the function-definition contexts a Function Def can
// represent.
type FnKind int

const (
	FnFunction FnKind = iota
	FnMethod
	FnAnonymous
	FnCatch
	FnScript
	FnScriptEntryPoint
	FnEntryPoint
	FnTest
	FnExtern
)

// Relation names the edge type of a placeholder link.
type Relation int

const (
	RelCall Relation = iota
	RelSubscript
	RelKey
	RelFieldAccess
	RelAssignment
	RelTypeReference
	RelOptional
)

func (r Relation) String() string {
	switch r {
	case RelCall:
		return "Call"
	case RelSubscript:
		return "Subscript"
	case RelKey:
		return "Key"
	case RelFieldAccess:
		return "FieldAccess"
	case RelAssignment:
		return "Assignment"
	case RelTypeReference:
		return "TypeReference"
	case RelOptional:
		return "Optional"
	default:
		return "Unknown"
	}
}

// Field is one entry of an OrderedFields table: fields and parameters must
// preserve declaration order (for canonical strings and for positional
// argument matching) while still supporting name lookup.
type Field struct {
	Name string
	Type *Def
}

// OrderedFields is an insertion-ordered name -> Def table, used for object
// fields, static fields and function parameter lists.
type OrderedFields struct {
	order []Field
	index map[string]int
}

// NewOrderedFields creates an empty table.
func NewOrderedFields() *OrderedFields {
	return &OrderedFields{index: map[string]int{}}
}

// Set appends name/typ, or overwrites the type of an existing entry in place
// (order is preserved on update).
func (f *OrderedFields) Set(name string, typ *Def) {
	if i, ok := f.index[name]; ok {
		f.order[i].Type = typ
		return
	}
	f.index[name] = len(f.order)
	f.order = append(f.order, Field{Name: name, Type: typ})
}

// Get looks a field up by name.
func (f *OrderedFields) Get(name string) (*Def, bool) {
	if i, ok := f.index[name]; ok {
		return f.order[i].Type, true
	}
	return nil, false
}

// Has reports whether name is present.
func (f *OrderedFields) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Len reports the number of fields.
func (f *OrderedFields) Len() int { return len(f.order) }

// Each iterates fields in declaration order.
func (f *OrderedFields) Each(fn func(name string, typ *Def)) {
	for _, e := range f.order {
		fn(e.Name, e.Type)
	}
}

// Def is a TypeDef: exactly one Kind's fields are meaningful at a time. Def
// values are always handled by pointer so that resolving a Placeholder can
// overwrite its contents in place and every outstanding reference observes
// the resolved type automatically.
type Def struct {
	Kind     Kind
	Optional bool

	// List
	Item *Def

	// Map
	Key, Value *Def

	// Object / Enum / ObjectInstance / EnumInstance / Function share Name
	Name string

	// Object
	Fields             *OrderedFields
	Methods            map[string]*Def
	StaticFields       *OrderedFields
	StaticPlaceholders []*Def
	Placeholders       []*Def
	Super              *Def
	Inheritable        bool

	// ObjectInstance / EnumInstance
	Of *Def

	// Enum
	CaseType *Def
	Cases    []string

	// Function
	Return      *Def
	Parameters  *OrderedFields
	HasDefaults map[string]bool
	FnKind      FnKind
	IsLambda    bool

	// Native
	Signature *Def

	// Placeholder
	PlaceholderName string
	Where           token.Token
	Parent          *Def
	ParentRelation  Relation
	Children        []*Def

	ResolvedDefKind Kind
	Resolved        bool

	Callable        bool
	Subscriptable   bool
	FieldAccessible bool
	Assignable      bool

	// AssignmentConstant is set on a child linked with RelAssignment: it
	// records whether the destination binding was declared const, since a
	// single placeholder (e.g. a forward-referenced type name) may be reused
	// as the declared type of several bindings with different constancy.
	AssignmentConstant bool

	// OptionalWant is set on a child linked with RelOptional: the Optional
	// flag to force once the parent placeholder resolves, recorded here
	// because WithOptional cannot flip a still-unresolved placeholder's flag
	// directly without breaking its place in the relation DAG.
	OptionalWant bool
}

// IsPlaceholder reports whether d is still an unresolved placeholder.
func (d *Def) IsPlaceholder() bool { return d.Kind == Placeholder }
