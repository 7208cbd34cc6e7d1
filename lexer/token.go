// Package lexer is the tokenizer spec.md treats as an external
// collaborator, specified only by contract (§6): NextToken,
// ScanIdentifier, ExpectIdentifier, ConstructRegexpObject,
// ConstructLiteralObject, SameIdentifiers. Grounded on golox's
// vm/scanner.go (rune-slice source, start/curr/line cursors,
// keyword dispatch through the keywords map, with
// golang.org/x/exp/slices.Contains for the keyword-kind check),
// generalized from Lox's small token set to the ES3/5 set spec.md's
// statement parser dispatches on by name.
package lexer

//go:generate stringer -type=Kind
type Kind int

const (
	KindEOS Kind = iota
	KindError

	// literals
	KindIdent
	KindString
	KindNumber
	KindRegexp

	// punctuators
	KindLeftParen
	KindRightParen
	KindLeftBrace
	KindRightBrace
	KindLeftSquare
	KindRightSquare
	KindSemicolon
	KindComma
	KindColon
	KindQuestion
	KindDot

	KindAssign
	KindPlusAssign
	KindMinusAssign
	KindStarAssign
	KindSlashAssign
	KindPercentAssign
	KindAndAssign
	KindOrAssign
	KindXorAssign
	KindShlAssign
	KindShrAssign
	KindUShrAssign

	KindEqual
	KindNotEqual
	KindStrictEqual
	KindStrictNotEqual
	KindLess
	KindGreater
	KindLessEqual
	KindGreaterEqual

	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindPercent
	KindIncr
	KindDecr

	KindAmp
	KindPipe
	KindCaret
	KindTilde
	KindShl
	KindShr
	KindUShr

	KindLogicalAnd
	KindLogicalOr
	KindBang

	// keywords
	KindBreak
	KindCase
	KindCatch
	KindContinue
	KindDebugger
	KindDefault
	KindDelete
	KindDo
	KindElse
	KindFalse
	KindFinally
	KindFor
	KindFunction
	KindIf
	KindIn
	KindInstanceof
	KindNew
	KindNull
	KindReturn
	KindSwitch
	KindThis
	KindThrow
	KindTrue
	KindTry
	KindTypeof
	KindVar
	KindVoid
	KindWhile
	KindWith

	// contextual (not reserved, recognized only in specific positions)
	KindGet
	KindSet
)

var keywords = map[string]Kind{
	"break": KindBreak, "case": KindCase, "catch": KindCatch,
	"continue": KindContinue, "debugger": KindDebugger, "default": KindDefault,
	"delete": KindDelete, "do": KindDo, "else": KindElse, "false": KindFalse,
	"finally": KindFinally, "for": KindFor, "function": KindFunction,
	"if": KindIf, "in": KindIn, "instanceof": KindInstanceof, "new": KindNew,
	"null": KindNull, "return": KindReturn, "switch": KindSwitch,
	"this": KindThis, "throw": KindThrow, "true": KindTrue, "try": KindTry,
	"typeof": KindTypeof, "var": KindVar, "void": KindVoid, "while": KindWhile,
	"with": KindWith,
}

// LiteralKind distinguishes what a literal-bearing token actually
// holds, per spec.md §3's "literal descriptor (kind in {identifier,
// string, number, regex})".
type LiteralKind int

const (
	LiteralNone LiteralKind = iota
	LiteralIdent
	LiteralString
	LiteralNumber
	LiteralRegexp
)

// Token is produced by the lexer on demand; fields mirror spec.md §3.
type Token struct {
	Kind Kind
	Line int
	Col  int
	Start int // rune index into the source where this token begins

	LitKind LiteralKind
	Text    string  // decoded text for Ident/String/Regexp
	Num     float64 // decoded value for Number
	HasEscape bool  // an identifier/string contained a \uXXXX escape

	// WasNewline is true when a line terminator preceded this token;
	// drives ASI and break/continue/return label-or-argument elision.
	WasNewline bool

	// Stashed plays the role of original_source's reused
	// literal_is_reserved save slot: when the directive-prologue probe
	// consumes a token that turns out not to end a directive, that
	// token's Kind is saved here and Kind is rewritten to
	// KindStashedExprStart so the statement driver resumes parsing the
	// pending string as an expression operand without re-lexing it.
	Stashed Kind
	IsStash bool
}

// KindStashedExprStart is the sentinel spec.md §9's second open
// question describes: a synthetic token kind meaning "resume
// expression parsing, the real token kind is in Stashed".
const KindStashedExprStart Kind = -1
