package types

import (
	"testing"

	"buzzc/logging"
	"buzzc/token"
)

func TestPrimitivesAreInterned(t *testing.T) {
	r := NewRegistry()
	if r.NumberT() != r.NumberT() {
		t.Error("NumberT() returned two different pointers")
	}
	if r.Bool() == r.NumberT() {
		t.Error("Bool() and NumberT() interned to the same Def")
	}
}

func TestCanonicalRendersListsAndMaps(t *testing.T) {
	r := NewRegistry()
	list := r.ListOf(r.NumberT())
	if got, want := Canonical(list), "[num]"; got != want {
		t.Errorf("Canonical(list) = %q, want %q", got, want)
	}

	m := r.MapOf(r.StringT(), r.Bool())
	if got, want := Canonical(m), "{str,bool}"; got != want {
		t.Errorf("Canonical(map) = %q, want %q", got, want)
	}
}

func TestWithOptionalReinternsConcreteTypes(t *testing.T) {
	r := NewRegistry()
	num := r.NumberT()
	opt := r.WithOptional(num, true)
	if opt == num {
		t.Fatal("WithOptional returned the same pointer for a flag flip")
	}
	if !opt.Optional {
		t.Error("WithOptional(num, true).Optional = false")
	}
	// Interning invariant still holds for the optional form.
	if r.WithOptional(num, true) != opt {
		t.Error("WithOptional(num, true) called twice returned different pointers")
	}
}

func TestPlaceholdersAreNeverInterned(t *testing.T) {
	r := NewRegistry()
	where := token.Token{Line: 1, Column: 1}
	a := r.NewPlaceholder("X", where)
	b := r.NewPlaceholder("X", where)
	if a == b {
		t.Error("two placeholders with the same name shared identity")
	}
	if r.GetOrIntern(a) != a {
		t.Error("GetOrIntern touched a placeholder instead of returning it unchanged")
	}
}

func TestWithOptionalOnPlaceholderStaysLinkedUntilResolution(t *testing.T) {
	r := NewRegistry()
	ctx := &logging.LogContext{}
	where := token.Token{Line: 1, Column: 1}

	p := r.NewPlaceholder("Point", where)
	opt := r.WithOptional(p, true)
	if opt == p {
		t.Fatal("WithOptional on a placeholder returned the same pointer")
	}
	if !opt.IsPlaceholder() {
		t.Fatal("WithOptional on an unresolved placeholder should return another placeholder, not a dead copy")
	}

	if !r.Resolve(ctx, p, r.NumberT()) {
		t.Fatal("Resolve of the underlying placeholder failed")
	}
	if opt.Kind != Number || !opt.Optional {
		t.Errorf("optional child after parent resolution = %+v, want an optional Number", opt)
	}
}

func TestResolveOverwritesPlaceholderInPlace(t *testing.T) {
	r := NewRegistry()
	ctx := &logging.LogContext{}
	where := token.Token{Line: 1, Column: 1}

	p := r.NewPlaceholder("Point", where)
	numT := r.NumberT()

	if !r.Resolve(ctx, p, numT) {
		t.Fatal("Resolve failed for a simple concrete target")
	}
	if p.Kind != Number {
		t.Errorf("p.Kind after Resolve = %v, want Number", p.Kind)
	}
	if !p.Resolved {
		t.Error("p.Resolved = false after a successful Resolve")
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	ctx := &logging.LogContext{}
	where := token.Token{Line: 1, Column: 1}

	p := r.NewPlaceholder("X", where)
	r.Resolve(ctx, p, r.NumberT())

	if !r.Resolve(ctx, p, r.StringT()) {
		t.Error("re-resolving an already-resolved placeholder should be a no-op, not fail")
	}
	if p.Kind != Number {
		t.Errorf("p.Kind after a second Resolve = %v, want it to stay Number", p.Kind)
	}
}

func TestResolveCallRelationUsesReturnType(t *testing.T) {
	r := NewRegistry()
	ctx := &logging.LogContext{}
	where := token.Token{Line: 1, Column: 1}

	callee := r.NewPlaceholder("f", where)
	resultChild := r.NewPlaceholder("", where)
	r.Link(callee, resultChild, RelCall)

	fn := &Def{Kind: Function, Name: "f", Return: r.StringT(), Parameters: NewOrderedFields()}
	if !r.Resolve(ctx, callee, fn) {
		t.Fatal("Resolve of the callee placeholder failed")
	}
	if resultChild.Kind != String {
		t.Errorf("call result child resolved to %v, want String", resultChild.Kind)
	}
}

func TestResolveFieldAccessOnObject(t *testing.T) {
	r := NewRegistry()
	ctx := &logging.LogContext{}
	where := token.Token{Line: 1, Column: 1}

	fields := NewOrderedFields()
	fields.Set("x", r.NumberT())
	obj := r.GetOrIntern(&Def{Kind: Object, Name: "Point", Fields: fields, Methods: map[string]*Def{}})

	placeholder := r.NewPlaceholder("Point", where)
	child := r.NewPlaceholder("x", where)
	r.LinkFieldAccess(placeholder, child, "x")

	if !r.Resolve(ctx, placeholder, r.InstanceOf(obj)) {
		t.Fatal("Resolve of the object placeholder failed")
	}
	if child.Kind != Number {
		t.Errorf("field access child resolved to %v, want Number", child.Kind)
	}
}

func TestResolveRejectsAssignmentToConstant(t *testing.T) {
	r := NewRegistry()
	ctx := &logging.LogContext{}
	where := token.Token{Line: 1, Column: 1}

	target := r.NewPlaceholder("x", where)
	child := r.NewPlaceholder("", where)
	r.LinkAssignment(target, child, true)

	if r.Resolve(ctx, target, r.NumberT()) {
		t.Error("Resolve allowed an assignment into a constant binding")
	}
}

func TestIsCoherentRejectsConflictingUsage(t *testing.T) {
	r := NewRegistry()
	where := token.Token{Line: 1, Column: 1}

	p := r.NewPlaceholder("x", where)
	callChild := r.NewPlaceholder("", where)
	subChild := r.NewPlaceholder("", where)
	r.Link(p, callChild, RelCall)
	r.Link(p, subChild, RelSubscript)

	if p.IsCoherent() {
		t.Error("IsCoherent() = true for a placeholder used as both callable and subscriptable")
	}
}

func TestParseCanonicalRoundTripsPrimitivesListsAndMaps(t *testing.T) {
	r := NewRegistry()
	cases := []*Def{
		r.NumberT(),
		r.WithOptional(r.StringT(), true),
		r.ListOf(r.Bool()),
		r.MapOf(r.StringT(), r.NumberT()),
	}

	for _, want := range cases {
		got, err := ParseCanonical(r, Canonical(want))
		if err != nil {
			t.Fatalf("ParseCanonical(%q): %v", Canonical(want), err)
		}
		if got != want {
			t.Errorf("ParseCanonical(%q) did not round-trip to the same interned Def", Canonical(want))
		}
	}
}

func TestParseCanonicalRejectsGarbage(t *testing.T) {
	r := NewRegistry()
	if _, err := ParseCanonical(r, "["); err == nil {
		t.Error("ParseCanonical(\"[\") should fail on an unterminated list type")
	}
}

func TestCanonicalBreaksObjectInstanceCycle(t *testing.T) {
	r := NewRegistry()
	fields := NewOrderedFields()
	obj := &Def{Kind: Object, Name: "Node", Fields: fields, Methods: map[string]*Def{}}
	obj = r.GetOrIntern(obj)

	next := &Def{Kind: Function, Name: "next", Return: r.InstanceOf(obj), Parameters: NewOrderedFields()}
	obj.Methods["next"] = next

	// This must terminate: ObjectInstance's canonical form never expands the
	// object it points to.
	got := Canonical(r.InstanceOf(obj))
	if got != "Node" {
		t.Errorf("Canonical(instance) = %q, want %q", got, "Node")
	}
}
