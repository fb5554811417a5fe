package symbols

import (
	"testing"

	"buzzc/logging"
	"buzzc/token"
	"buzzc/types"
)

func newTestTable() (*Table, *logging.LogContext) {
	reg := types.NewRegistry()
	return NewTable(reg), &logging.LogContext{}
}

func TestDeclareVariableLocalAllocatesSlotAndStartsUninitialized(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()

	slot := tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	if slot != 0 {
		t.Fatalf("DeclareVariable slot = %d, want 0", slot)
	}
	if tbl.Current.Locals[0].Depth != -1 {
		t.Error("freshly declared local should have Depth -1 until MarkInitialized")
	}
}

func TestResolveLocalRejectsReadInOwnInitializer(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()
	tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})

	before := logging.ErrorCount()
	_, ok := tbl.ResolveLocal(ctx, tbl.Current, "x", token.Token{Line: 1})
	if !ok {
		t.Fatal("ResolveLocal should report found=true even when rejecting the read")
	}
	if logging.ErrorCount() != before+1 {
		t.Error("reading a local in its own initializer should log an error")
	}
}

func TestResolveLocalSucceedsAfterMarkInitialized(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()
	tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	tbl.MarkInitialized(nil)

	idx, ok := tbl.ResolveLocal(ctx, tbl.Current, "x", token.Token{Line: 1})
	if !ok || idx != 0 {
		t.Errorf("ResolveLocal(x) = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestEndScopeDiscardsLocalsDeclaredInThatScope(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()
	tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	tbl.MarkInitialized(nil)
	if tbl.Current.LocalCnt != 1 {
		t.Fatalf("LocalCnt = %d, want 1", tbl.Current.LocalCnt)
	}
	tbl.EndScope()
	if tbl.Current.LocalCnt != 0 {
		t.Errorf("LocalCnt after EndScope = %d, want 0", tbl.Current.LocalCnt)
	}
}

func TestDeclareVariableRejectsShadowingInSameScope(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()
	tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	tbl.MarkInitialized(nil)

	before := logging.ErrorCount()
	slot := tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 2})
	if slot != -1 {
		t.Errorf("shadowing redeclaration returned slot %d, want -1", slot)
	}
	if logging.ErrorCount() != before+1 {
		t.Error("redeclaring a name in the same scope should log an error")
	}
}

func TestResolveUpvalueCapturesEnclosingLocal(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()
	tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	tbl.MarkInitialized(nil)

	inner := tbl.PushFrame()
	idx, ok := tbl.ResolveUpvalue(ctx, inner, "x", token.Token{Line: 2})
	if !ok || idx != 0 {
		t.Fatalf("ResolveUpvalue(x) = (%d, %v), want (0, true)", idx, ok)
	}
	if !tbl.Current.Enclosing.Locals[0].Captured {
		t.Error("capturing an enclosing local should mark it Captured")
	}
}

func TestResolveUpvalueChainsThroughMultipleFrames(t *testing.T) {
	tbl, ctx := newTestTable()
	tbl.BeginScope()
	tbl.DeclareVariable(ctx, "x", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	tbl.MarkInitialized(nil)

	mid := tbl.PushFrame()
	inner := tbl.PushFrame()

	idx, ok := tbl.ResolveUpvalue(ctx, inner, "x", token.Token{Line: 3})
	if !ok {
		t.Fatal("expected the innermost frame to resolve x via a chained upvalue")
	}
	if mid.UpvalCnt != 1 {
		t.Errorf("mid frame UpvalCnt = %d, want 1 (it should have added its own upvalue entry)", mid.UpvalCnt)
	}
	if idx != 0 {
		t.Errorf("innermost upvalue index = %d, want 0", idx)
	}
}

func TestDeclareVariableGlobalAppendsAndResolves(t *testing.T) {
	tbl, ctx := newTestTable()
	slot := tbl.DeclareVariable(ctx, "g", tbl.Registry.NumberT(), false, token.Token{Line: 1})
	if slot != -1 {
		t.Fatalf("global declaration returned slot %d, want -1", slot)
	}
	if len(tbl.Globals) != 1 {
		t.Fatalf("Globals len = %d, want 1", len(tbl.Globals))
	}

	g, ok := tbl.ResolveGlobal("", "g")
	if !ok || g.Name != "g" {
		t.Errorf("ResolveGlobal(g) = (%+v, %v)", g, ok)
	}
}

func TestDeclarePlaceholderThenDeclareVariableResolvesInPlace(t *testing.T) {
	tbl, ctx := newTestTable()
	where := token.Token{Line: 1}

	g := tbl.DeclarePlaceholder("f", where)
	if !g.Type.IsPlaceholder() {
		t.Fatal("DeclarePlaceholder should install a placeholder type")
	}

	tbl.DeclareVariable(ctx, "f", tbl.Registry.NumberT(), false, where)

	if g.Type.Kind != types.Number {
		t.Errorf("forward-referenced global's type after declaration = %v, want Number", g.Type.Kind)
	}
}

func TestResolveGlobalHidesHiddenEntries(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.Globals = append(tbl.Globals, &Global{Name: "secret", Type: tbl.Registry.NumberT(), Hidden: true})

	if _, ok := tbl.ResolveGlobal("", "secret"); ok {
		t.Error("ResolveGlobal returned a Hidden global")
	}
}

func TestResolveGlobalMatchesExportAlias(t *testing.T) {
	tbl, _ := newTestTable()
	tbl.Globals = append(tbl.Globals, &Global{Name: "internalName", ExportAlias: "Public", Type: tbl.Registry.NumberT()})

	g, ok := tbl.ResolveGlobal("", "Public")
	if !ok || g.Name != "internalName" {
		t.Errorf("ResolveGlobal(Public) = (%+v, %v), want the aliased global", g, ok)
	}
}

func TestHasPrefixReflectsImportedGlobals(t *testing.T) {
	tbl, _ := newTestTable()
	if tbl.HasPrefix("Math") {
		t.Fatal("HasPrefix(Math) = true before any import")
	}
	tbl.Globals = append(tbl.Globals, &Global{Prefix: "Math", Name: "PI", Type: tbl.Registry.NumberT()})
	if !tbl.HasPrefix("Math") {
		t.Error("HasPrefix(Math) = false after a Math-prefixed global was added")
	}
}

func TestAddConstantDeduplicates(t *testing.T) {
	f := NewFrame(nil)
	i1 := f.AddConstant(3.0)
	i2 := f.AddConstant(3.0)
	i3 := f.AddConstant("x")
	if i1 != i2 {
		t.Errorf("identical constants got different indices: %d vs %d", i1, i2)
	}
	if i3 == i1 {
		t.Error("distinct constants should not share an index")
	}
}
