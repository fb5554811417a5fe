// Package token defines the token stream contract between the external
// Scanner collaborator and the parser.
package token

// Kind identifies the lexical category of a Token.
type Kind int

// The kinds of tokens the scanner can produce.  Grouped the way the source
// language groups its keywords and operators.
const (
	// literals and identifiers
	Identifier Kind = iota
	Number
	String
	StringPart // segment of an interpolated string; lex.Scanner does not produce it
	Boolean
	Null

	// declaration keywords
	Var
	Const
	Fun
	Extern
	Object
	Class
	Enum
	Import
	Export
	From
	As
	Test

	// control flow keywords
	If
	Else
	For
	ForEach
	In
	While
	Do
	Until
	Break
	Continue
	Return
	Throw
	Catch
	Super

	// operators, low to high precedence
	Equal        // =
	QuestionQuestionEqual
	Is
	Or
	And
	Xor
	EqualEqual
	BangEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	QuestionQuestion // ??
	Plus
	Minus
	ShiftLeft
	ShiftRight
	Star
	Slash
	Percent
	Bang
	Question   // ?  (optional-type suffix / postfix unwrap)
	QuestionDot
	Bang2 // !! force unwrap

	// punctuation
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Dot
	Colon
	Semicolon
	Backslash // namespace separator for prefixed imports, e.g. A\hello()
	Arrow     // >  not produced by lex.Scanner; the `>` in `fun f() > T` scans as Greater

	Error
	EOF
)

var names = map[Kind]string{
	Identifier: "identifier", Number: "number", String: "string",
	StringPart: "string segment", Boolean: "boolean", Null: "null",
	Var: "var", Const: "const", Fun: "fun", Extern: "extern",
	Object: "object", Class: "class", Enum: "enum", Import: "import",
	Export: "export", From: "from", As: "as", Test: "test",
	If: "if", Else: "else", For: "for", ForEach: "foreach", In: "in",
	While: "while", Do: "do", Until: "until", Break: "break",
	Continue: "continue", Return: "return", Throw: "throw", Catch: "catch",
	Super: "super",
	Equal: "=", Is: "is", Or: "or", And: "and", Xor: "xor",
	EqualEqual: "==", BangEqual: "!=", Less: "<", LessEqual: "<=",
	Greater: ">", GreaterEqual: ">=", QuestionQuestion: "??",
	Plus: "+", Minus: "-", ShiftLeft: "<<", ShiftRight: ">>",
	Star: "*", Slash: "/", Percent: "%", Bang: "!", Question: "?",
	QuestionDot: "?.", Bang2: "!!",
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	LeftBracket: "[", RightBracket: "]", Comma: ",", Dot: ".", Colon: ":",
	Semicolon: ";", Backslash: "\\", Arrow: ">",
	Error: "<error>", EOF: "<eof>",
}

// String renders a Kind for diagnostics.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "<unknown>"
}

// Keywords maps the reserved-word spellings to their Kind.  Exported so the
// scanner and any external collaborator agree on the same table.
var Keywords = map[string]Kind{
	"var": Var, "const": Const, "fun": Fun, "extern": Extern,
	"object": Object, "class": Class, "enum": Enum, "import": Import,
	"export": Export, "from": From, "as": As, "test": Test,
	"if": If, "else": Else, "for": For, "foreach": ForEach, "in": In,
	"while": While, "do": Do, "until": Until, "break": Break,
	"continue": Continue, "return": Return, "throw": Throw, "catch": Catch,
	"super": Super, "is": Is, "or": Or, "and": And, "xor": Xor,
	"true": Boolean, "false": Boolean, "null": Null,
}

// Token is a single lexical unit produced by the Scanner.
//
// LiteralNumber and LiteralString hold the decoded literal value when Kind is
// Number or String respectively; both are zero otherwise.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int

	LiteralNumber float64
	LiteralString string
}

// Scanner is the external collaborator that turns source bytes into a token
// stream.  The parser only ever calls these two methods; how tokens are
// produced (regex, hand-written DFA, table-driven) is out of scope for this
// front end.
type Scanner interface {
	// ScanToken returns the next token in the stream.  Once EOF has been
	// returned, further calls must keep returning EOF.
	ScanToken() Token

	// GetLines returns up to count consecutive source lines starting at
	// start (1-indexed), for diagnostic rendering.
	GetLines(start, count int) []string
}
