package parser

import (
	"os"
	"path/filepath"
	"testing"

	"buzzc/ast"
	"buzzc/imports"
	"buzzc/lex"
	"buzzc/logging"
	"buzzc/symbols"
	"buzzc/types"
)

func newTestParser(src string) *Parser {
	logging.Initialize(logging.LevelSilent, ".")
	scanner := lex.New([]byte(src))
	reg := types.NewRegistry()
	table := symbols.NewTable(reg)
	return New(scanner, reg, table, "test.buzz", false)
}

func TestParseVarInfersTypeFromInitializer(t *testing.T) {
	p := newTestParser(`var x = 5;`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	decl := body.Statements[0].(*ast.VarDeclaration)
	if decl.Typ.Kind != types.Number {
		t.Errorf("inferred type = %v, want Number", decl.Typ.Kind)
	}
}

func TestParseVarWithoutTypeOrInitializerIsAnError(t *testing.T) {
	p := newTestParser(`var x;`)
	p.Parse()
	if !p.HadError() {
		t.Error("expected an error for an untyped, uninitialized declaration")
	}
}

func TestParseRecursiveFunctionSeesItsOwnSignature(t *testing.T) {
	p := newTestParser(`fun fact(num n) > num { return n * fact(n - 1); }`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	factDecl := body.Statements[0].(*ast.FunDeclaration)
	factFn := factDecl.Function.(*ast.Function)
	factBody := factFn.Body.(*ast.Block)
	ret := factBody.Statements[0].(*ast.Return)
	bin := ret.Value.(*ast.Binary)
	call := bin.Right.(*ast.Call)
	if call.Typ.Kind != types.Number {
		t.Errorf("recursive call result type = %v, want Number", call.Typ.Kind)
	}
}

func TestParseForwardReferencedGlobalResolvesOncePlaceholderIsDeclared(t *testing.T) {
	p := newTestParser(`
fun useIt() > num { return helper(); }
fun helper() > num { return 1; }
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	useDecl := body.Statements[0].(*ast.FunDeclaration)
	useFn := useDecl.Function.(*ast.Function)
	useBody := useFn.Body.(*ast.Block)
	ret := useBody.Statements[0].(*ast.Return)
	call := ret.Value.(*ast.Call)
	if call.Typ.Kind != types.Number {
		t.Errorf("forward-referenced call result type = %v, want Number", call.Typ.Kind)
	}
}

func TestParseCallOfUndeclaredNameEventuallyErrorsWhenNeverDefined(t *testing.T) {
	p := newTestParser(`fun useIt() > num { return ghost(); }`)
	p.Parse()
	if !p.HadError() {
		t.Error("calling a name that is never declared anywhere in the file should error")
	}
}

func TestParseSubscriptOnPlaceholderThenListResolution(t *testing.T) {
	p := newTestParser(`
fun first() > num { return items[0]; }
var items = [1, 2, 3];
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	firstDecl := body.Statements[0].(*ast.FunDeclaration)
	firstFn := firstDecl.Function.(*ast.Function)
	firstBody := firstFn.Body.(*ast.Block)
	ret := firstBody.Statements[0].(*ast.Return)
	sub := ret.Value.(*ast.Subscript)
	if sub.Typ.Kind != types.Number {
		t.Errorf("items[0] resolved to %v, want Number", sub.Typ.Kind)
	}
}

func TestParseObjectSelfReferencingMethod(t *testing.T) {
	p := newTestParser(`
object Node {
	var num value;
	fun next() > Node {
		var num y = 1;
	}
}
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	objDecl := body.Statements[0].(*ast.ObjectDeclaration)
	if objDecl.Typ.Kind != types.Object {
		t.Fatalf("object decl type kind = %v, want Object", objDecl.Typ.Kind)
	}
	next, ok := objDecl.Typ.Methods["next"]
	if !ok {
		t.Fatal("Node has no \"next\" method registered")
	}
	if next.Return.Kind != types.ObjectInstance || next.Return.Of != objDecl.Typ {
		t.Errorf("next()'s return type = %+v, want an ObjectInstance of Node", next.Return)
	}
}

func TestParseVarOfObjectTypeGetsInstanceForm(t *testing.T) {
	p := newTestParser(`
object Point {
	var num x;
}
var Point p;
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	objDecl := body.Statements[0].(*ast.ObjectDeclaration)
	varDecl := body.Statements[1].(*ast.VarDeclaration)
	if varDecl.Typ.Kind != types.ObjectInstance || varDecl.Typ.Of != objDecl.Typ {
		t.Errorf("var p's type = %+v, want an ObjectInstance of Point", varDecl.Typ)
	}
}

func TestParseObjectInitBuildsObjectInitNode(t *testing.T) {
	p := newTestParser(`
object Point {
	var num x;
	var num y;
}
var p = Point{ x = 0, y = 0 };
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	objDecl := body.Statements[0].(*ast.ObjectDeclaration)
	varDecl := body.Statements[1].(*ast.VarDeclaration)

	init, ok := varDecl.Value.(*ast.ObjectInit)
	if !ok {
		t.Fatalf("var p's initializer is a %T, want *ast.ObjectInit", varDecl.Value)
	}
	if init.Identifier != "Point" {
		t.Errorf("ObjectInit.Identifier = %q, want %q", init.Identifier, "Point")
	}
	if len(init.Members) != 2 {
		t.Errorf("ObjectInit.Members has %d entries, want 2", len(init.Members))
	}
	if init.Typ.Kind != types.ObjectInstance || init.Typ.Of != objDecl.Typ {
		t.Errorf("ObjectInit's type = %+v, want an ObjectInstance of Point", init.Typ)
	}
}

// TestParseForwardReferencedObjectInit covers a function that returns and
// constructs an object type before that type has been declared: both the
// return type and the initializer should resolve once the object
// declaration is finally parsed.
func TestParseForwardReferencedObjectInit(t *testing.T) {
	p := newTestParser(`
fun make() > Point { return Point{ x = 0, y = 0 }; }
object Point {
	var num x;
	var num y;
}
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	makeDecl := body.Statements[0].(*ast.FunDeclaration)
	makeFn := makeDecl.Function.(*ast.Function)
	objDecl := body.Statements[1].(*ast.ObjectDeclaration)

	if makeFn.Typ.Return.Kind != types.ObjectInstance || makeFn.Typ.Return.Of != objDecl.Typ {
		t.Errorf("make()'s return type = %+v, want an ObjectInstance of Point", makeFn.Typ.Return)
	}

	makeBody := makeFn.Body.(*ast.Block)
	ret := makeBody.Statements[0].(*ast.Return)
	init := ret.Value.(*ast.ObjectInit)
	if init.Typ.Kind != types.ObjectInstance || init.Typ.Of != objDecl.Typ {
		t.Errorf("Point{...}'s resolved type = %+v, want an ObjectInstance of Point", init.Typ)
	}
}

func TestParseIfConditionIsNotMistakenForObjectInit(t *testing.T) {
	p := newTestParser(`
fun useIt(bool flag) > num {
	if flag {
		return 1;
	}
	return 0;
}
`)
	p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}
}

func TestParseConstantAssignmentTargetIsRejected(t *testing.T) {
	p := newTestParser(`
const num x = 1;
fun reassign() { x = 2; }
`)
	p.Parse()
	if !p.HadError() {
		t.Error("assigning into a const global should error")
	}
}

func TestParseExportOfUndeclaredNameErrors(t *testing.T) {
	p := newTestParser(`export ghost;`)
	p.Parse()
	if !p.HadError() {
		t.Error("exporting an undeclared name should error")
	}
}

func TestParseAndMarshalAsJSON(t *testing.T) {
	p := newTestParser(`var x = 1;`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}
	if _, err := root.(*ast.Function).MarshalJSON(); err != nil {
		t.Errorf("MarshalJSON failed: %v", err)
	}
}

func TestParseMainFunctionIsPromotedToEntryPoint(t *testing.T) {
	p := newTestParser(`fun main() { }`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}
	fn := root.(*ast.Function)
	if fn.Typ.FnKind != types.FnScript {
		t.Errorf("root FnKind = %v, want FnScript when a main() is present", fn.Typ.FnKind)
	}

	body := fn.Body.(*ast.Block)
	mainDecl := body.Statements[0].(*ast.FunDeclaration)
	mainFn := mainDecl.Function.(*ast.Function)
	if mainFn.Typ.FnKind != types.FnEntryPoint {
		t.Errorf("main()'s FnKind = %v, want FnEntryPoint", mainFn.Typ.FnKind)
	}
}

func TestParseScriptWithNoMainIsScriptEntryPoint(t *testing.T) {
	p := newTestParser(`var x = 1;`)
	root := p.Parse()
	fn := root.(*ast.Function)
	if fn.Typ.FnKind != types.FnScriptEntryPoint {
		t.Errorf("root FnKind = %v, want FnScriptEntryPoint", fn.Typ.FnKind)
	}
}

func TestParseImportedFileFunctionIsFnFunctionNotEntryPoint(t *testing.T) {
	logging.Initialize(logging.LevelSilent, ".")
	scanner := lex.New([]byte(`fun main() { }`))
	reg := types.NewRegistry()
	table := symbols.NewTable(reg)
	p := New(scanner, reg, table, "imported.buzz", true)
	root := p.Parse()
	fn := root.(*ast.Function)
	if fn.Typ.FnKind != types.FnFunction {
		t.Errorf("imported unit's root FnKind = %v, want FnFunction (no entry-point promotion)", fn.Typ.FnKind)
	}
}

func TestImportMergesOnlyExportedGlobalsWithPrefix(t *testing.T) {
	dir := t.TempDir()
	libSrc := `
fun add(num a, num b) > num { return a + b; }
export add;
fun secret() > num { return 0; }
`
	if err := os.WriteFile(filepath.Join(dir, "mathlib.buzz"), []byte(libSrc), 0644); err != nil {
		t.Fatal(err)
	}

	old, hadOld := os.LookupEnv(imports.EnvVar)
	os.Setenv(imports.EnvVar, dir)
	defer func() {
		if hadOld {
			os.Setenv(imports.EnvVar, old)
		} else {
			os.Unsetenv(imports.EnvVar)
		}
	}()

	p := newTestParser(`
import "mathlib" as Math;
var result = Math\add(1, 2);
`)
	root := p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	fn := root.(*ast.Function)
	body := fn.Body.(*ast.Block)
	varDecl := body.Statements[1].(*ast.VarDeclaration)
	if varDecl.Typ.Kind != types.Number {
		t.Errorf("Math\\add(...) result type = %v, want Number", varDecl.Typ.Kind)
	}

	if p.table.HasPrefix("Math") == false {
		t.Error("expected the Math prefix to be registered on the importer's table")
	}
	if _, ok := p.table.ResolveGlobal("Math", "secret"); ok {
		t.Error("a non-exported global should never be visible to the importer")
	}
}

func TestSelectiveImportHidesUnselectedExports(t *testing.T) {
	dir := t.TempDir()
	libSrc := `
fun add(num a, num b) > num { return a + b; }
export add;
fun sub(num a, num b) > num { return a - b; }
export sub;
`
	if err := os.WriteFile(filepath.Join(dir, "arith.buzz"), []byte(libSrc), 0644); err != nil {
		t.Fatal(err)
	}

	old, hadOld := os.LookupEnv(imports.EnvVar)
	os.Setenv(imports.EnvVar, dir)
	defer func() {
		if hadOld {
			os.Setenv(imports.EnvVar, old)
		} else {
			os.Unsetenv(imports.EnvVar)
		}
	}()

	p := newTestParser(`import { add } from "arith";`)
	p.Parse()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Diagnostics())
	}

	if _, ok := p.table.ResolveGlobal("", "add"); !ok {
		t.Error("selected import \"add\" should be visible")
	}
	if _, ok := p.table.ResolveGlobal("", "sub"); ok {
		t.Error("unselected export \"sub\" should be hidden, not visible")
	}
}

func TestSelectiveImportOfMissingExportErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.buzz"), []byte(`fun noop() {}`), 0644); err != nil {
		t.Fatal(err)
	}

	old, hadOld := os.LookupEnv(imports.EnvVar)
	os.Setenv(imports.EnvVar, dir)
	defer func() {
		if hadOld {
			os.Setenv(imports.EnvVar, old)
		} else {
			os.Unsetenv(imports.EnvVar)
		}
	}()

	p := newTestParser(`import { ghost } from "empty";`)
	p.Parse()
	if !p.HadError() {
		t.Error("importing a name the module never exports should error")
	}
}

func TestImportOfMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	old, hadOld := os.LookupEnv(imports.EnvVar)
	os.Setenv(imports.EnvVar, dir)
	defer func() {
		if hadOld {
			os.Setenv(imports.EnvVar, old)
		} else {
			os.Unsetenv(imports.EnvVar)
		}
	}()

	p := newTestParser(`import "nope";`)
	p.Parse()
	if !p.HadError() {
		t.Error("importing a nonexistent module should error")
	}
}
