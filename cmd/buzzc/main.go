// Command buzzc is the front end for the buzz scripting language: it parses
// a source file, resolves names, runs incremental type inference, and either
// reports diagnostics or dumps the resulting AST as JSON. There is no
// bytecode emitter or VM behind it -- the AST dump is the end of the line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"buzzc/imports"
	"buzzc/lex"
	"buzzc/logging"
	"buzzc/native"
	"buzzc/parser"
	"buzzc/symbols"
	"buzzc/types"
)

const appName = "buzzc"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "parse":
		os.Exit(cmdParse(os.Args[2:]))
	case "ast":
		os.Exit(cmdAST(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `buzzc -- front end for the buzz scripting language

Usage:
  buzzc parse [-v] <file.buzz>   Parse a file and report diagnostics.
  buzzc ast <file.buzz>          Parse a file and print its AST as JSON.
  buzzc repl                     Start an interactive parse-and-inspect session.

Imports are resolved under $BUZZ_PATH, falling back to the current directory.
`)
}

// newSourceParser wires up one compilation root: a fresh types.Registry,
// shared by the root parse and every import it recursively pulls in so type
// identity stays consistent across the whole import graph, and the root
// file's own symbols.Table (each import is parsed against a table of its own
// and only its exports are merged into this one).
func newSourceParser(path string, verbose bool) (*parser.Parser, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	level := logging.LevelWarning
	if verbose {
		level = logging.LevelVerbose
	}
	logging.Initialize(level, imports.SearchPath())

	reg := types.NewRegistry()
	table := symbols.NewTable(reg)
	scanner := lex.New(src)

	p := parser.New(scanner, reg, table, path, false)
	p.SetNativeResolver(&native.PathResolver{SearchPath: imports.SearchPath()})
	return p, nil
}

func cmdParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	verbose := fs.Bool("v", false, "log phase transitions as they happen")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: buzzc parse [-v] <file.buzz>")
		return 2
	}

	p, err := newSourceParser(fs.Arg(0), *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	p.Parse()

	if logging.LogFinished() {
		return 0
	}
	return 1
}

func cmdAST(args []string) int {
	fs := flag.NewFlagSet("ast", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: buzzc ast <file.buzz>")
		return 2
	}

	p, err := newSourceParser(fs.Arg(0), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	root := p.Parse()

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	fmt.Println(string(out))

	logging.LogFinished()
	if p.HadError() {
		return 1
	}
	return 0
}
