package native

import (
	"runtime"
	"strings"
	"testing"
)

func TestLibrarySuffixMatchesRuntimeGOOS(t *testing.T) {
	want := map[string]string{"darwin": ".dylib", "windows": ".dll"}[runtime.GOOS]
	if want == "" {
		want = ".so"
	}
	if got := LibrarySuffix(); got != want {
		t.Errorf("LibrarySuffix() = %q, want %q", got, want)
	}
}

func TestPathResolverAlwaysSucceeds(t *testing.T) {
	r := &PathResolver{SearchPath: "/opt/buzz/lib"}
	h, err := r.Resolve("mathnative", "sqrt")
	if err != nil {
		t.Fatalf("PathResolver.Resolve returned an error: %v", err)
	}
	ph := h.(pathHandle)
	if !strings.HasPrefix(ph.Path, "/opt/buzz/lib/mathnative") {
		t.Errorf("Path = %q, want it rooted at the search path", ph.Path)
	}
	if !strings.HasSuffix(ph.Path, LibrarySuffix()) {
		t.Errorf("Path = %q, want it to end in %q", ph.Path, LibrarySuffix())
	}
	if ph.Symbol != "sqrt" {
		t.Errorf("Symbol = %q, want sqrt", ph.Symbol)
	}
}

func TestStubResolverOnlyResolvesRegisteredSymbols(t *testing.T) {
	r := NewStubResolver("mathnative:sqrt")

	if _, err := r.Resolve("mathnative", "sqrt"); err != nil {
		t.Errorf("Resolve(mathnative, sqrt) failed: %v", err)
	}

	_, err := r.Resolve("mathnative", "cbrt")
	if err == nil {
		t.Fatal("Resolve(mathnative, cbrt) succeeded, want an UnresolvedSymbolError")
	}
	if _, ok := err.(*UnresolvedSymbolError); !ok {
		t.Errorf("error type = %T, want *UnresolvedSymbolError", err)
	}
	if !strings.Contains(err.Error(), "cbrt") {
		t.Errorf("error message %q does not mention the missing symbol", err.Error())
	}
}
