package types

import "strings"

// Canonical renders d's canonical string. This is the
// registry's interning key, so its output must be bit-exact and stable:
// primitives render as fixed words, composite types recurse structurally, and
// ObjectInstance/EnumInstance short-circuit to their declared name (rather
// than expanding the full object) which is what keeps a self-referential
// object (a method returning an instance of its own enclosing object) from
// recursing forever.
func Canonical(d *Def) string {
	if d == nil {
		return "void"
	}

	var s string
	switch d.Kind {
	case Bool:
		s = "bool"
	case Number:
		s = "num"
	case String:
		s = "str"
	case Type:
		s = "type"
	case Void:
		s = "void"
	case List:
		s = "[" + Canonical(d.Item) + "]"
	case Map:
		s = "{" + Canonical(d.Key) + "," + Canonical(d.Value) + "}"
	case ObjectInstance, EnumInstance:
		// Instances render as their declared name only -- expanding the
		// definition here would recurse through any method that returns an
		// instance of the enclosing type.
		s = d.Name
	case Object:
		s = "@object:" + d.Name
	case Enum:
		s = "@enum:" + d.Name
	case Function:
		s = canonicalFunction(d)
	case Native:
		s = "extern " + canonicalFunction(d.Signature)
	case Placeholder:
		// Placeholders are never interned; this is only used for
		// diagnostics/debug output.
		return "<placeholder>"
	default:
		s = "<unknown>"
	}

	if d.Optional {
		s += "?"
	}
	return s
}

func canonicalFunction(d *Def) string {
	var sb strings.Builder
	sb.WriteString("Function<")
	sb.WriteString(d.Name)
	sb.WriteString(">(")

	first := true
	if d.Parameters != nil {
		d.Parameters.Each(func(_ string, typ *Def) {
			if !first {
				sb.WriteString(",")
			}
			first = false
			sb.WriteString(Canonical(typ))
		})
	}

	sb.WriteString(") > ")
	sb.WriteString(Canonical(d.Return))
	return sb.String()
}
