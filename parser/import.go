package parser

import (
	"buzzc/ast"
	"buzzc/imports"
	"buzzc/lex"
	"buzzc/logging"
	"buzzc/symbols"
	"buzzc/token"
)

// importDeclaration parses a plain `import "path";`, an aliased
// `import "path" as Prefix;`, and the selective
// `import { A, B } from "path" as Prefix;` form. The imported unit is parsed
// recursively against its own symbols.Table -- sharing this parser's
// types.Registry so type identity stays consistent across the whole
// compilation root -- and only its exported globals are merged back in,
// keeping same-file forward references from leaking across a file boundary.
func (p *Parser) importDeclaration() ast.Node {
	where := p.previous

	var selected []string
	if p.match(token.LeftBrace) {
		if !p.check(token.RightBrace) {
			for {
				nameTok := p.consume(token.Identifier, "expected an imported symbol name")
				selected = append(selected, nameTok.Lexeme)
				if !p.match(token.Comma) {
					break
				}
			}
		}
		p.consume(token.RightBrace, "expected '}' after imported symbol list")
		p.consume(token.From, "expected 'from' after an import list")
	}

	pathTok := p.consume(token.String, "expected an import path string")
	path := pathTok.LiteralString

	prefix := ""
	if p.match(token.As) {
		prefixTok := p.consume(token.Identifier, "expected a prefix after 'as'")
		prefix = prefixTok.Lexeme
	}
	p.consumeSemicolon()

	p.mergeImport(path, prefix, selected, where)

	return &ast.Import{ImportedSymbols: selected, Path: path, Prefix: prefix}
}

// mergeImport resolves path, recursively parses it, and folds its exported
// globals into this parser's table under prefix. A symbol named in selected
// but not found among the exports is a name error; an export not named in a
// non-empty selected list is still appended (to keep global slot indices
// stable) but marked Hidden so ResolveGlobal never returns it. A visible
// import bringing in a name that collides with a global already visible
// under the same prefix is also a name error -- the colliding global is
// still appended, to keep the same index-stability guarantee, but marked
// Hidden so only the first declaration of that name stays resolvable.
func (p *Parser) mergeImport(path, prefix string, selected []string, where token.Token) {
	data, resolvedPath, err := imports.Load(path)
	if err != nil {
		logging.LogError(p.ctx, err.Error(), logging.KindImport,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
		return
	}

	scanner := lex.New(data)
	subTable := symbols.NewTable(p.reg)
	sub := New(scanner, p.reg, subTable, resolvedPath, true)
	sub.Parse()

	if sub.HadError() {
		logging.LogError(p.ctx, "import \""+path+"\" failed to compile", logging.KindImport,
			&logging.TextPosition{Line: where.Line, Column: where.Column})
	}

	selectedSet := make(map[string]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}
	found := make(map[string]bool, len(selected))

	for _, g := range subTable.Globals {
		visible := g.VisibleName()
		visibleHere := g.Exported && (len(selected) == 0 || selectedSet[visible])
		if visibleHere {
			found[visible] = true
			if _, exists := p.table.ResolveGlobal(prefix, visible); exists {
				logging.LogError(p.ctx, "import \""+path+"\" causes a name collision on \""+visible+"\"", logging.KindName,
					&logging.TextPosition{Line: where.Line, Column: where.Column})
				visibleHere = false
			}
		}

		p.table.Globals = append(p.table.Globals, &symbols.Global{
			Prefix: prefix, Name: g.Name, Type: g.Type,
			Initialized: true, ExportAlias: g.ExportAlias,
			Hidden: !visibleHere, Constant: g.Constant,
		})
	}

	for _, s := range selected {
		if !found[s] {
			logging.LogError(p.ctx, "import \""+path+"\" does not export \""+s+"\"", logging.KindImport,
				&logging.TextPosition{Line: where.Line, Column: where.Column})
		}
	}
}
