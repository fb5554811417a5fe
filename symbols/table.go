package symbols

import (
	"buzzc/logging"
	"buzzc/token"
	"buzzc/types"
)

// Table is the symbol-resolution surface used by the parser: the current
// frame chain plus the unit's global list. Each compilation unit has its own
// Table; a recursively-parsed import's globals are appended to the importer's
// list (hidden where not visible) rather than dropped, so global slot indices
// stay stable as imports get merged in.
type Table struct {
	Registry *types.Registry
	Globals  []*Global
	Current  *Frame
}

// NewTable creates a table with a fresh top-level frame and an empty global
// list.
func NewTable(reg *types.Registry) *Table {
	return &Table{Registry: reg, Current: NewFrame(nil)}
}

// PushFrame enters a new function scope nested inside the current frame.
func (t *Table) PushFrame() *Frame {
	f := NewFrame(t.Current)
	t.Current = f
	return f
}

// PopFrame leaves the current function scope, returning to its enclosing
// frame.
func (t *Table) PopFrame() {
	if t.Current.Enclosing != nil {
		t.Current = t.Current.Enclosing
	}
}

// BeginScope enters a new lexical block within the current frame.
func (t *Table) BeginScope() { t.Current.ScopeDepth++ }

// EndScope leaves the current lexical block, discarding locals declared at
// or below the departing depth.
func (t *Table) EndScope() {
	depth := t.Current.ScopeDepth
	f := t.Current
	for f.LocalCnt > 0 && f.Locals[f.LocalCnt-1].Depth >= depth {
		f.LocalCnt--
	}
	f.ScopeDepth--
}

// DeclareVariable allocates a new (uninitialized) local slot inside a
// non-top-level scope after checking for illegal shadowing; at the top level
// it either resolves an existing placeholder global or appends a new one. It
// returns the local slot index (non-top-level) or -1 (a global was
// declared/resolved instead, or the declaration was rejected with an error).
func (t *Table) DeclareVariable(ctx *logging.LogContext, name string, typ *types.Def, constant bool, where token.Token) int {
	f := t.Current

	if f.ScopeDepth > 0 {
		for i := f.LocalCnt - 1; i >= 0; i-- {
			l := f.Locals[i]
			if l.Depth != -1 && l.Depth < f.ScopeDepth {
				break
			}
			if l.Name == name {
				logging.LogError(ctx, "a variable named \""+name+"\" already exists in this scope", logging.KindName,
					&logging.TextPosition{Line: where.Line, Column: where.Column})
				return -1
			}
		}

		if f.LocalCnt >= MaxLocals {
			logging.LogError(ctx, "too many local variables in one function", logging.KindArity,
				&logging.TextPosition{Line: where.Line, Column: where.Column})
			return -1
		}

		f.Locals[f.LocalCnt] = Local{Name: name, Type: typ, Depth: -1, Constant: constant}
		f.LocalCnt++
		return f.LocalCnt - 1
	}

	if existing := t.findGlobal("", name); existing != nil {
		if existing.Type.IsPlaceholder() {
			t.Registry.Resolve(ctx, existing.Type, typ)
			existing.Type = typ
			existing.Constant = constant
			return -1
		}
		if !existing.Hidden {
			logging.LogError(ctx, "a global named \""+name+"\" already exists", logging.KindName,
				&logging.TextPosition{Line: where.Line, Column: where.Column})
			return -1
		}
	}

	t.Globals = append(t.Globals, &Global{Name: name, Type: typ, Constant: constant})
	return -1
}

// MarkInitialized finalizes a local (sets Depth to the current scope) or a
// global (sets Initialized), so a read of the variable during its own
// initializer can be told apart from a read after initialization completes.
func (t *Table) MarkInitialized(g *Global) {
	if g != nil {
		g.Initialized = true
		return
	}
	f := t.Current
	if f.LocalCnt > 0 {
		f.Locals[f.LocalCnt-1].Depth = f.ScopeDepth
	}
}

// ResolveLocal scans the current frame from the top for name, returning its
// slot and true, or -1/false. It reports an error rather than returning a
// use-before-init local: a local with Depth == -1 is still being
// initialized, and reading it there would observe a not-yet-assigned slot.
func (t *Table) ResolveLocal(ctx *logging.LogContext, f *Frame, name string, where token.Token) (int, bool) {
	for i := f.LocalCnt - 1; i >= 0; i-- {
		if f.Locals[i].Name == name {
			if f.Locals[i].Depth == -1 {
				logging.LogError(ctx, "cannot read local variable \""+name+"\" in its own initializer", logging.KindName,
					&logging.TextPosition{Line: where.Line, Column: where.Column})
				return -1, true
			}
			return i, true
		}
	}
	return -1, false
}

// ResolveUpvalue recurses into the enclosing frame, capturing a local there
// (marking it Captured) or chaining through an outer upvalue, adding an
// entry to f's own upvalue array either way.
func (t *Table) ResolveUpvalue(ctx *logging.LogContext, f *Frame, name string, where token.Token) (int, bool) {
	if f.Enclosing == nil {
		return -1, false
	}

	if localIdx, ok := t.ResolveLocal(ctx, f.Enclosing, name, where); ok {
		if localIdx == -1 {
			return -1, true
		}
		f.Enclosing.Locals[localIdx].Captured = true
		return t.addUpvalue(ctx, f, localIdx, true, where)
	}

	if upIdx, ok := t.ResolveUpvalue(ctx, f.Enclosing, name, where); ok {
		return t.addUpvalue(ctx, f, upIdx, false, where)
	}

	return -1, false
}

func (t *Table) addUpvalue(ctx *logging.LogContext, f *Frame, index int, isLocal bool, where token.Token) (int, bool) {
	for i := 0; i < f.UpvalCnt; i++ {
		if f.Upvalues[i].Index == index && f.Upvalues[i].IsLocal == isLocal {
			return i, true
		}
	}

	if f.UpvalCnt >= MaxUpvalues {
		logging.LogError(ctx, "too many captured variables in one function", logging.KindArity,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
		return -1, true
	}

	f.Upvalues[f.UpvalCnt] = UpValue{Index: index, IsLocal: isLocal}
	f.UpvalCnt++
	return f.UpvalCnt - 1, true
}

func (t *Table) findGlobal(prefix, name string) *Global {
	for _, g := range t.Globals {
		if g.Prefix == prefix && g.Name == name {
			return g
		}
	}
	return nil
}

// ResolveGlobal returns a global whose prefix matches and whose name or
// export alias matches, or false. `Prefix\Symbol` access is handled by the
// parser, which checks HasPrefix, consumes the `\`/ident pair, and calls this
// with the prefix and that identifier. Hidden globals are never returned,
// which is what keeps an import's non-selected or shadowed exports out of
// reach of ordinary name lookup.
func (t *Table) ResolveGlobal(prefix, name string) (*Global, bool) {
	for _, g := range t.Globals {
		if g.Prefix == prefix && (g.Name == name || g.VisibleName() == name) && !g.Hidden {
			return g, true
		}
	}
	return nil, false
}

// HasPrefix reports whether any global carries the given import prefix, used
// by the parser to decide whether an identifier should be treated as a
// namespace needing `\ident` continuation.
func (t *Table) HasPrefix(prefix string) bool {
	for _, g := range t.Globals {
		if g.Prefix == prefix {
			return true
		}
	}
	return false
}

// DeclarePlaceholder creates a placeholder global marked Initialized so later
// references can link to it before its real declaration is parsed.
func (t *Table) DeclarePlaceholder(name string, where token.Token) *Global {
	g := &Global{Name: name, Type: t.Registry.NewPlaceholder(name, where), Initialized: true}
	t.Globals = append(t.Globals, g)
	return g
}
