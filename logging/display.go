package logging

import (
	"fmt"
	"strings"
)

// displayLogMessage renders a LogMessage as:
//
//	<snippet>
//	<file>:<line>:<col>: Error: <message>
//
// where <snippet> is up to 3 source lines with a caret under the offending
// column, opening the already-buffered source and printing a highlighted
// window anchored on a single line/column pair rather than a start/end
// range.
func displayLogMessage(buildPath string, lm *LogMessage, isError bool) {
	label := "Error"
	if !isError {
		label = "Warning"
	}

	if lm.Position == nil || lm.Context == nil || lm.Context.Lines == nil {
		fmt.Printf("%s:%d:%d: %s: %s (%s)\n", displayPath(buildPath, lm), 0, 0, label, lm.Message, lm.Kind)
		return
	}

	fmt.Print(snippet(lm.Context.Lines, lm.Position))
	fmt.Printf("%s:%d:%d: %s: %s\n", displayPath(buildPath, lm), lm.Position.Line, lm.Position.Column, label, lm.Message)
}

// snippet builds the up-to-3-line source window with a caret under pos's
// column, anchored on pos.Line.
func snippet(lines LineSource, pos *TextPosition) string {
	start := pos.Line - 1
	if start < 1 {
		start = 1
	}

	window := lines.GetLines(start, 3)
	if len(window) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, line := range window {
		lineNo := start + i
		sb.WriteString(strings.ReplaceAll(line, "\t", "    "))
		sb.WriteByte('\n')

		if lineNo == pos.Line {
			col := pos.Column
			if col < 0 {
				col = 0
			}
			sb.WriteString(strings.Repeat(" ", col))
			sb.WriteString("^\n")
		}
	}

	return sb.String()
}

func displayPath(buildPath string, lm *LogMessage) string {
	if lm.Context == nil {
		return "<unknown>"
	}
	return lm.Context.FilePath
}

const fatalErrorMessage = `Uh oh! That wasn't supposed to happen.
This is a bug in the compiler itself, not in your code. Please file an issue
with the source that triggered it and the message above.`

func displayFatalMessage(message string) {
	fmt.Printf("\n\nUnexpected Fatal Error: %s\n", message)
	fmt.Println(fatalErrorMessage)
}

func displayStateChange(prevState, newState string) {
	if prevState != "" {
		fmt.Println("Done.")
	}
	fmt.Printf("%s...\n", newState)
}

func displayFinalMessage(errorCount, warningCount int) {
	if errorCount == 0 {
		fmt.Printf("\nCompilation succeeded (0 errors, %d warnings)\n", warningCount)
	} else {
		fmt.Printf("\nCompilation failed (%d errors, %d warnings)\n", errorCount, warningCount)
	}
}
