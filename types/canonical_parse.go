package types

import (
	"fmt"
	"strings"
)

// ParseCanonical parses a canonical string back into a Def, the inverse of
// Canonical for the shapes that actually appear as interning keys
// (primitives, lists, maps, object/enum tags, and bare instance names). It
// exists only to let tests exercise the canonicalization round trip without
// hand-authoring a second canonicalizer.
//
// A Function/Native canonical string is intentionally not accepted: its
// productions embed nested Canonical(Parameters) with no separator between
// a parameter list and its own commas, which makes the grammar ambiguous to
// parse back without the original OrderedFields -- exactly the kind of
// concrete type structure interning throws away, so ParseCanonical rejects
// callers who need it round-tripped exactly.
func ParseCanonical(r *Registry, s string) (*Def, error) {
	d, rest, err := parseCanonical(r, s)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("types.ParseCanonical: unexpected trailing input %q", rest)
	}
	return d, nil
}

func parseCanonical(r *Registry, s string) (*Def, string, error) {
	word, _ := scanIdentifier(s)
	switch {
	case strings.HasPrefix(s, "Function<"), strings.HasPrefix(s, "extern "):
		return nil, "", fmt.Errorf("types.ParseCanonical: function types are not accepted: %q", s)
	case word == "num":
		return withOptionalSuffix(r, r.NumberT(), s[len("num"):])
	case word == "str":
		return withOptionalSuffix(r, r.StringT(), s[len("str"):])
	case word == "bool":
		return withOptionalSuffix(r, r.Bool(), s[len("bool"):])
	case word == "type":
		return withOptionalSuffix(r, r.TypeT(), s[len("type"):])
	case word == "void":
		return withOptionalSuffix(r, r.Void(), s[len("void"):])
	case strings.HasPrefix(s, "["):
		item, rest, err := parseCanonical(r, s[1:])
		if err != nil {
			return nil, "", err
		}
		rest, err = expect(rest, "]")
		if err != nil {
			return nil, "", err
		}
		return withOptionalSuffix(r, r.ListOf(item), rest)
	case strings.HasPrefix(s, "{"):
		key, rest, err := parseCanonical(r, s[1:])
		if err != nil {
			return nil, "", err
		}
		rest, err = expect(rest, ",")
		if err != nil {
			return nil, "", err
		}
		value, rest, err := parseCanonical(r, rest)
		if err != nil {
			return nil, "", err
		}
		rest, err = expect(rest, "}")
		if err != nil {
			return nil, "", err
		}
		return withOptionalSuffix(r, r.MapOf(key, value), rest)
	case strings.HasPrefix(s, "@object:"):
		name, rest := scanIdentifier(s[len("@object:"):])
		return withOptionalSuffix(r, r.GetOrIntern(&Def{Kind: Object, Name: name,
			Fields: NewOrderedFields(), StaticFields: NewOrderedFields(), Methods: map[string]*Def{}}), rest)
	case strings.HasPrefix(s, "@enum:"):
		name, rest := scanIdentifier(s[len("@enum:"):])
		return withOptionalSuffix(r, r.GetOrIntern(&Def{Kind: Enum, Name: name}), rest)
	default:
		name, rest := scanIdentifier(s)
		if name == "" {
			return nil, "", fmt.Errorf("types.ParseCanonical: cannot parse %q", s)
		}
		// A bare identifier names an instance whose full definition is not
		// recoverable from the canonical string alone.
		return withOptionalSuffix(r, r.GetOrIntern(&Def{Kind: ObjectInstance, Name: name,
			Of: &Def{Kind: Object, Name: name, Fields: NewOrderedFields(), Methods: map[string]*Def{}}}), rest)
	}
}

func withOptionalSuffix(r *Registry, d *Def, rest string) (*Def, string, error) {
	if strings.HasPrefix(rest, "?") {
		return r.WithOptional(d, true), rest[1:], nil
	}
	return d, rest, nil
}

func expect(s, tok string) (string, error) {
	if !strings.HasPrefix(s, tok) {
		return "", fmt.Errorf("types.ParseCanonical: expected %q, got %q", tok, s)
	}
	return s[len(tok):], nil
}

func scanIdentifier(s string) (string, string) {
	i := 0
	for i < len(s) {
		c := s[i]
		isBoundary := c == '[' || c == ']' || c == '{' || c == '}' || c == ',' || c == '?'
		if isBoundary {
			break
		}
		i++
	}
	return s[:i], s[i:]
}
