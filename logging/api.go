package logging

import "os"

// Initialize resets the global logger to the given log level and build path.
// The build path is stored on the logger only; displayed file paths are
// printed as the parser recorded them, not shortened against it.  Called once
// by the CLI before any parse begins.
func Initialize(level int, buildPath string) {
	global = Logger{LogLevel: level, buildPath: buildPath}
}

// LogError records and, if the log level permits it, immediately displays a
// compilation error.  This is the only path by which the front end reports a
// user-code mistake (syntax, name, type, arity, import).
func LogError(ctx *LogContext, message string, kind Kind, pos *TextPosition) {
	lm := &LogMessage{Context: ctx, Message: message, Kind: kind, Position: pos}
	global.ErrorCount++
	global.Errors = append(global.Errors, lm)

	if global.LogLevel > LevelSilent {
		displayLogMessage(global.buildPath, lm, true)
	}
}

// LogWarning records a warning.  Warnings are buffered and only displayed by
// LogFinished, so that they appear grouped after the primary error output.
func LogWarning(ctx *LogContext, message string, kind Kind, pos *TextPosition) {
	global.Warnings = append(global.Warnings, &LogMessage{
		Context: ctx, Message: message, Kind: kind, Position: pos,
	})
}

// LogFatal reports an internal compiler invariant violation -- never a user
// mistake -- and terminates the process.  types.Link being handed a
// non-placeholder end is the state that uses this, not LogError; resolving an
// already-resolved placeholder again is a no-op, not a fatal error.
func LogFatal(message string) {
	displayFatalMessage(message)
	os.Exit(1)
}

// LogStateChange announces a phase transition (e.g. "Parsing", "Resolving an
// import") when the log level is verbose.
func LogStateChange(newState string) {
	if global.LogLevel == LevelVerbose {
		displayStateChange(global.prevUpdate, newState)
		global.prevUpdate = newState
	}
}

// LogFinished flushes buffered warnings and prints the closing summary. It
// returns whether compilation succeeded (ErrorCount == 0), which the CLI uses
// to choose its exit code.
func LogFinished() bool {
	if global.LogLevel > LevelError {
		for _, w := range global.Warnings {
			displayLogMessage(global.buildPath, w, false)
		}
	}

	if global.LogLevel > LevelSilent {
		displayFinalMessage(global.ErrorCount, len(global.Warnings))
	}

	return global.ErrorCount == 0
}

// ErrorCount reports how many errors have been logged against the global
// logger so far.
func ErrorCount() int { return global.ErrorCount }

// Diagnostics returns every error logged against the global logger, in the
// order they occurred.  Consumers that want structured diagnostics instead of
// (or in addition to) the rendered text use this.
func Diagnostics() []*LogMessage {
	out := make([]*LogMessage, len(global.Errors))
	copy(out, global.Errors)
	return out
}

// Reset clears the global logger's accumulated state while keeping its level
// and build path.  Used between independent compilations in the same process
// (e.g. successive REPL entries).
func Reset() {
	global = Logger{LogLevel: global.LogLevel, buildPath: global.buildPath}
}
