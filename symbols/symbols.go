// Package symbols implements the per-frame local/upvalue tables and the
// global list used for name resolution: locals and upvalues are scoped to a
// function frame with fixed-capacity arrays, while globals form one list per
// compilation unit, into which an import's exported globals are appended so
// forward references and imported names resolve against the same table.
package symbols

import "buzzc/types"

// MaxLocals is the fixed capacity of a Frame's local-variable array, and
// MaxUpvalues its upvalue array -- both observable in diagnostics and in the
// byte-code slot encoding a later stage would rely on. MaxParameters and
// MaxCatchClauses bound the two other single-byte-encoded counts a function
// declaration or call site can produce.
const (
	MaxLocals   = 255
	MaxUpvalues = 255

	MaxParameters   = 255
	MaxCatchClauses = 255
)

// Local is one entry of a Frame's local-variable array.
type Local struct {
	Name     string
	Type     *types.Def
	Depth    int // -1 while uninitialized
	Captured bool
	Constant bool
}

// UpValue is one entry of a Frame's upvalue array: either a local slot in the
// immediately enclosing frame, or an upvalue index further up the chain.
type UpValue struct {
	Index   int
	IsLocal bool
}

// Global is one entry of the process-wide global table.
type Global struct {
	Prefix      string // import namespace prefix, "" if none
	Name        string
	Type        *types.Def
	Initialized bool
	Exported    bool
	ExportAlias string
	Hidden      bool
	Constant    bool
}

// VisibleName is the name an importer sees: ExportAlias if the global was
// re-exported under one, Name otherwise.
func (g *Global) VisibleName() string {
	if g.ExportAlias != "" {
		return g.ExportAlias
	}
	return g.Name
}

// Frame is the per-function compile-time context: its own locals/upvalues,
// scope depth, and a link to the enclosing frame for upvalue resolution.
type Frame struct {
	Enclosing *Frame

	Locals    [MaxLocals]Local
	LocalCnt  int
	Upvalues  [MaxUpvalues]UpValue
	UpvalCnt  int

	ScopeDepth int

	// ConstantPool is the ordered, deduplicated set of literal values this
	// frame's Number/String/Boolean nodes reference.
	ConstantPool []interface{}
}

// NewFrame creates a frame nested inside enclosing (nil for the script's
// top-level frame).
func NewFrame(enclosing *Frame) *Frame {
	return &Frame{Enclosing: enclosing}
}

// AddConstant interns value into the frame's constant pool, returning its
// index; repeated identical literals share a slot.
func (f *Frame) AddConstant(value interface{}) int {
	for i, v := range f.ConstantPool {
		if v == value {
			return i
		}
	}
	f.ConstantPool = append(f.ConstantPool, value)
	return len(f.ConstantPool) - 1
}
