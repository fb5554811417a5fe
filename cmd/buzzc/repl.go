package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"buzzc/imports"
	"buzzc/lex"
	"buzzc/logging"
	"buzzc/parser"
	"buzzc/symbols"
	"buzzc/types"
)

const (
	replHistoryFile = ".buzzc_history"
	replPrompt      = "buzz> "
)

// cmdRepl runs an interactive session that parses one line at a time and
// prints the resulting AST as JSON, or its diagnostics on failure. There is
// no evaluator behind this front end, so unlike a language REPL this one
// inspects structure rather than running code; github.com/peterh/liner
// handles the line editing, prompt, and history.
func cmdRepl(_ []string) int {
	fmt.Println("buzzc REPL -- parses each line and prints its AST. Ctrl+D exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, replHistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	logging.Initialize(logging.LevelError, imports.SearchPath())
	reg := types.NewRegistry()
	table := symbols.NewTable(reg)

	for {
		line, err := ln.Prompt(replPrompt)
		if err != nil {
			fmt.Println()
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		logging.Reset()
		scanner := lex.New([]byte(line))
		p := parser.New(scanner, reg, table, "<repl>", false)
		root := p.Parse()

		if p.HadError() {
			continue
		}

		out, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(string(out))
	}

	return 0
}
