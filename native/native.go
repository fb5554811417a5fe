// Package native defines the external symbol-resolver collaborator for
// `extern` functions: `resolve(lib_name, symbol) -> native handle | error`.
// The actual dynamic-library loader is out of scope for this front end; this
// package only fixes the interface and the platform-specific library-file
// suffix rule the parser needs when it reports a missing extern symbol.
package native

import "runtime"

// Handle is an opaque reference to a resolved native function. The parser
// never inspects it -- only that resolution succeeded.
type Handle interface{}

// Resolver looks up a symbol inside a shared library.
type Resolver interface {
	Resolve(libName, symbol string) (Handle, error)
}

// LibrarySuffix returns the OS-appropriate shared-library file extension.
func LibrarySuffix() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// PathResolver computes the on-disk path a native symbol would live at
// without actually loading it; it is the resolver used when only static
// checking (not execution) is required, e.g. by `buzzc ast`.
type PathResolver struct {
	SearchPath string
}

type pathHandle struct {
	Path, Symbol string
}

// Resolve always succeeds, returning the path the real loader would open.
// Whether the library or symbol actually exists is left to that loader.
func (p *PathResolver) Resolve(libName, symbol string) (Handle, error) {
	return pathHandle{Path: p.SearchPath + "/" + libName + LibrarySuffix(), Symbol: symbol}, nil
}

// StubResolver is an in-memory registry used by tests: symbols must be
// pre-registered to resolve successfully.
type StubResolver struct {
	symbols map[string]bool
}

// NewStubResolver creates a resolver that only recognizes the given
// "lib:symbol" pairs.
func NewStubResolver(known ...string) *StubResolver {
	s := &StubResolver{symbols: make(map[string]bool)}
	for _, k := range known {
		s.symbols[k] = true
	}
	return s
}

// Resolve returns a handle if libName:symbol was registered, else an error.
func (s *StubResolver) Resolve(libName, symbol string) (Handle, error) {
	if s.symbols[libName+":"+symbol] {
		return pathHandle{Path: libName, Symbol: symbol}, nil
	}
	return nil, &UnresolvedSymbolError{Lib: libName, Symbol: symbol}
}

// UnresolvedSymbolError reports that a native symbol could not be found.
type UnresolvedSymbolError struct {
	Lib, Symbol string
}

func (e *UnresolvedSymbolError) Error() string {
	return "unresolved native symbol \"" + e.Symbol + "\" in library \"" + e.Lib + "\""
}
