package types

import (
	"fmt"

	"buzzc/logging"
)

// Link records that child was derived from parent by relation rel. Both ends
// must still be unresolved placeholders -- linking a concrete type is a
// caller bug, not a user-code error, and is fatal.
func (r *Registry) Link(parent, child *Def, rel Relation) {
	if parent.Kind != Placeholder || child.Kind != Placeholder {
		logging.LogFatal("types.Link called with a non-placeholder end")
		return
	}

	parent.Children = append(parent.Children, child)
	child.Parent = parent
	child.ParentRelation = rel

	switch rel {
	case RelCall:
		parent.Callable = true
	case RelSubscript:
		parent.Subscriptable = true
	case RelKey:
		// Key does not, by itself, impose a usage assumption distinct from
		// Subscript; both arise from indexing the same parent.
	case RelFieldAccess:
		parent.FieldAccessible = true
	case RelAssignment:
		parent.Assignable = true
	}
}

// LinkFieldAccess links child to parent as the type of member `name` on
// parent, storing the member name on child for lookup once parent resolves.
func (r *Registry) LinkFieldAccess(parent, child *Def, name string) {
	r.Link(parent, child, RelFieldAccess)
	child.PlaceholderName = name
}

// LinkAssignment links child to parent as the type of a value being assigned
// into a binding whose declared type is parent, recording whether that
// binding is const.
func (r *Registry) LinkAssignment(parent, child *Def, constant bool) {
	r.Link(parent, child, RelAssignment)
	child.AssignmentConstant = constant
}

// LinkOptional links child to parent as parent's own eventual type with its
// Optional flag forced to flag, for a WithOptional call made while parent is
// still an unresolved placeholder.
func (r *Registry) LinkOptional(parent, child *Def, flag bool) {
	r.Link(parent, child, RelOptional)
	child.OptionalWant = flag
}

// IsCoherent reports whether p's recorded usage assumptions are mutually
// consistent: a placeholder cannot be both callable and subscriptable, nor
// both field-accessible and subscriptable.
func (p *Def) IsCoherent() bool {
	if p.Callable && p.Subscriptable {
		return false
	}
	if p.FieldAccessible && p.Subscriptable {
		return false
	}
	return true
}

// Resolve overwrites placeholder p in place with concrete type t, walking
// every relation child of p and resolving or rejecting it according to t's
// kind. It returns false if any child failed to resolve; resolution of
// independent children continues regardless -- one bad child's error should
// never stop the rest of the relation graph from resolving.
//
// If t is itself still a placeholder, resolution is deferred: nothing is
// overwritten now, and the caller is expected to have linked p as a
// descendant of t (or of whatever will eventually resolve t) so this walk
// runs again once a concrete type actually becomes available.
func (r *Registry) Resolve(ctx *logging.LogContext, p *Def, t *Def) bool {
	if t.Kind == Placeholder {
		return true
	}

	if p.Kind != Placeholder {
		// Resolving an already-resolved placeholder a second time is a
		// no-op, not an error.
		return true
	}

	ok := true
	for _, child := range p.Children {
		if !r.resolveChild(ctx, child, t) {
			ok = false
		}
	}

	where := p.Where
	name := p.PlaceholderName

	*p = *t
	p.ResolvedDefKind = t.Kind
	p.Resolved = true

	// Preserve the placeholder's own identity metadata for diagnostics even
	// though every other field now mirrors t.
	p.Where = where
	p.PlaceholderName = name

	return ok
}

func (r *Registry) resolveChild(ctx *logging.LogContext, child *Def, t *Def) bool {
	switch child.ParentRelation {
	case RelCall:
		switch t.Kind {
		case Function:
			return r.Resolve(ctx, child, t.Return)
		case Native:
			return r.Resolve(ctx, child, t.Signature.Return)
		case Object:
			return r.Resolve(ctx, child, r.InstanceOf(t))
		default:
			return r.typeErr(ctx, child, fmt.Sprintf("cannot call a value of type %s", Canonical(t)))
		}
	case RelSubscript:
		switch t.Kind {
		case List:
			return r.Resolve(ctx, child, t.Item)
		case Map:
			return r.Resolve(ctx, child, r.WithOptional(t.Value, true))
		default:
			return r.typeErr(ctx, child, fmt.Sprintf("cannot subscript a value of type %s", Canonical(t)))
		}
	case RelKey:
		if t.Kind == Map {
			return r.Resolve(ctx, child, t.Key)
		}
		return r.typeErr(ctx, child, fmt.Sprintf("cannot subscript a value of type %s", Canonical(t)))
	case RelFieldAccess:
		return r.resolveFieldAccess(ctx, child, t)
	case RelAssignment:
		if child.AssignmentConstant {
			return r.typeErr(ctx, child, "cannot assign to a constant binding")
		}
		return r.Resolve(ctx, child, r.instanceForm(t))
	case RelTypeReference:
		return r.Resolve(ctx, child, r.instanceForm(t))
	case RelOptional:
		return r.Resolve(ctx, child, r.WithOptional(t, child.OptionalWant))
	default:
		return true
	}
}

func (r *Registry) resolveFieldAccess(ctx *logging.LogContext, child *Def, t *Def) bool {
	member := child.PlaceholderName

	switch t.Kind {
	case ObjectInstance:
		obj := t.Of
		if ft, ok := obj.Fields.Get(member); ok {
			return r.Resolve(ctx, child, ft)
		}
		if mt, ok := obj.Methods[member]; ok {
			return r.Resolve(ctx, child, mt)
		}
		return r.typeErr(ctx, child, fmt.Sprintf("%s has no field or method %q", Canonical(t), member))
	case Enum:
		for _, c := range t.Cases {
			if c == member {
				return r.Resolve(ctx, child, r.InstanceOf(t))
			}
		}
		return r.typeErr(ctx, child, fmt.Sprintf("enum %s has no case %q", t.Name, member))
	default:
		return r.typeErr(ctx, child, fmt.Sprintf("%s is not field-accessible", Canonical(t)))
	}
}

// instanceForm returns the value form of t: for a definition (Object/Enum)
// this is its instance type, otherwise t itself.
func (r *Registry) instanceForm(t *Def) *Def {
	if t.Kind == Object || t.Kind == Enum {
		return r.InstanceOf(t)
	}
	return t
}

func (r *Registry) typeErr(ctx *logging.LogContext, child *Def, message string) bool {
	logging.LogError(ctx, message, logging.KindTyping, &logging.TextPosition{
		Line: child.Where.Line, Column: child.Where.Column,
	})
	return false
}
