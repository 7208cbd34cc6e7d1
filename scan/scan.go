// Package scan implements the pre-scanner spec.md §4.2 specifies:
// scan_until, a nested state machine that advances the token stream
// without emitting code to locate a terminator (a punctuator, the `in`
// keyword, or a switch body boundary), reporting the source range
// consumed.
//
// Grounded directly on
// original_source/jerry-core/parser/js/new-parser/src/js-parser-scanner.c
// (parser_scan_primary_expression, parser_scan_post_primary_expression,
// parser_scan_primary_expression_end, parser_scan_statement,
// parser_scan_until) — no teacher file in the example pack implements
// this (golox recurses directly with no pre-scan phase), so this is an
// original-to-spec state machine built by transliterating the C
// switch/goto structure into a Go loop over an explicit scan stack, per
// spec.md §9's allowance that "a reimplementation may use two separate
// stacks" for the scan stack vs. the statement stack.
package scan

import (
	errs "github.com/nyxwolf/goecma/errors"
	"github.com/nyxwolf/goecma/lexer"
)

// StackTag is the scan stack's own tag alphabet (spec.md §4.2),
// independent of the statement stack's frame tags.
type StackTag int

const (
	TagHead StackTag = iota
	TagParenExpression
	TagParenStatement
	TagColonExpression
	TagColonStatement
	TagSquareBracketedExpression
	TagObjectLiteral
	TagBlockStatement
	TagBlockExpression
	TagBlockProperty
)

// Mode is the pre-scanner's sub-state, threaded alongside the scan
// stack exactly as original_source's parser_scan_stack_modes does.
type Mode int

const (
	ModePrimaryExpression Mode = iota
	ModePrimaryExpressionAfterNew
	ModePostPrimaryExpression
	ModePrimaryExpressionEnd
	ModeStatement
	ModeFunctionArguments
	ModePropertyName
)

// Terminator names what scan_until is hunting for.
type Terminator int

const (
	TerminatorRightParen Terminator = iota
	TerminatorSemicolon
	TerminatorIn
	TerminatorSwitchBody
)

// TokenSource is the minimal slice of the lexer the pre-scanner
// consumes, kept as an interface (rather than a concrete *lexer.Lexer):
// it lets `scan` avoid an
// import cycle with `parser`, which also needs to drive a
// *lexer.Lexer through the exact same three operations.
type TokenSource interface {
	NextToken(expectPrimary bool) lexer.Token
	ScanIdentifier(allowReserved bool) lexer.Token
	ConstructRegexpObject(parseFlags int) lexer.Token
}

// Range is the (start, end, line, column) source span spec.md §3
// calls a "source range", used to re-tokenize a while/for
// condition or update later.
type Range struct {
	StartLine, StartCol int
	EndLine, EndCol      int
	// Terminator is the terminator token reached; the caller makes it
	// its current token after the scan.
	Terminator lexer.Token
}

type frame struct {
	tag  StackTag
	mode Mode
}

// ScanUntil advances src token-by-token, tracking a miniature bracket
// stack, until it reaches term (or its secondary equivalent when
// term is TerminatorIn: a bare `;` also ends the scan, so an ordinary
// `for(;;)` header terminates at the first semicolon and the caller
// then knows "not for-in" — see spec.md §4.2). On return the
// terminator token is current, unconsumed (the statement parser will
// NextToken past it itself or retokenize the captured range). The
// first token of the region to be scanned must already be current
// in `first`.
func ScanUntil(src TokenSource, first lexer.Token, term Terminator) (Range, error) {
	st := []frame{{tag: TagHead, mode: ModePrimaryExpression}}
	tok := first
	r := Range{StartLine: first.Line, StartCol: first.Col}

	for {
		topTag := st[len(st)-1].tag
		// topTag == TagHead already means the scan stack is back at its
		// single base frame (TagHead is only ever pushed once, at the
		// bottom): nested (/[/{ push their own frame and pop it again on
		// the matching close, so no separate bracket-depth counter is
		// needed to know nesting is at zero.
		if topTag == TagHead && matchesTerminator(tok, term) {
			r.EndLine, r.EndCol = tok.Line, tok.Col
			r.Terminator = tok
			return r, nil
		}
		if tok.Kind == lexer.KindEOS {
			return r, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "EXPRESSION_EXPECTED"}
		}

		mode := st[len(st)-1].mode
		next, err := step(src, st, &mode, tok, term)
		if err != nil {
			return r, err
		}
		st = next
		st[len(st)-1].mode = mode
		if tok.Kind == lexer.KindDot && mode == ModePostPrimaryExpression {
			src.ScanIdentifier(true) // property name after '.', reserved words allowed
		}
		tok = src.NextToken(mode == ModePrimaryExpression || mode == ModePrimaryExpressionAfterNew)
	}
}

func matchesTerminator(tok lexer.Token, term Terminator) bool {
	switch term {
	case TerminatorRightParen:
		return tok.Kind == lexer.KindRightParen
	case TerminatorSemicolon:
		return tok.Kind == lexer.KindSemicolon
	case TerminatorIn:
		// secondary equivalent: a bare `;` also ends the scan, so
		// `for(;;)` headers terminate without ever seeing `in`.
		return tok.Kind == lexer.KindIn || tok.Kind == lexer.KindSemicolon
	case TerminatorSwitchBody:
		return tok.Kind == lexer.KindCase || tok.Kind == lexer.KindDefault || tok.Kind == lexer.KindRightBrace
	default:
		return false
	}
}

// step runs one state-machine transition and returns the (possibly
// mutated) scan stack. Grounded clause-by-clause on
// js-parser-scanner.c's three PRIMARY_EXPRESSION* functions and
// parser_scan_statement.
func step(src TokenSource, st []frame, mode *Mode, tok lexer.Token, term Terminator) ([]frame, error) {
	switch *mode {
	case ModePrimaryExpression, ModePrimaryExpressionAfterNew:
		return scanPrimaryExpression(src, st, mode, tok)
	case ModePostPrimaryExpression:
		return scanPostPrimaryExpression(st, mode, tok)
	case ModePrimaryExpressionEnd:
		return scanPrimaryExpressionEnd(st, mode, tok, term)
	case ModeStatement:
		return scanStatement(st, mode, tok)
	case ModeFunctionArguments:
		return scanFunctionArguments(st, mode, tok)
	case ModePropertyName:
		return scanPropertyName(st, mode, tok)
	default:
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "INVALID_EXPRESSION"}
	}
}

func scanPrimaryExpression(src TokenSource, st []frame, mode *Mode, tok lexer.Token) ([]frame, error) {
	switch tok.Kind {
	case lexer.KindBang, lexer.KindTilde, lexer.KindPlus, lexer.KindMinus,
		lexer.KindIncr, lexer.KindDecr, lexer.KindTypeof, lexer.KindVoid,
		lexer.KindDelete:
		return st, nil // unary operators are transparent
	case lexer.KindNew:
		*mode = ModePrimaryExpressionAfterNew
		return st, nil
	case lexer.KindSlash, lexer.KindSlashAssign:
		src.ConstructRegexpObject(0)
		*mode = ModePrimaryExpressionEnd
		return st, nil
	case lexer.KindFunction:
		st = append(st, frame{tag: TagBlockExpression, mode: ModeFunctionArguments})
		*mode = ModeFunctionArguments
		return st, nil
	case lexer.KindLeftParen:
		st = append(st, frame{tag: TagParenExpression, mode: ModePrimaryExpression})
		*mode = ModePrimaryExpression
		return st, nil
	case lexer.KindLeftSquare:
		st = append(st, frame{tag: TagSquareBracketedExpression, mode: ModePrimaryExpression})
		*mode = ModePrimaryExpression
		return st, nil
	case lexer.KindLeftBrace:
		st = append(st, frame{tag: TagObjectLiteral, mode: ModePropertyName})
		*mode = ModePropertyName
		return st, nil
	case lexer.KindIdent, lexer.KindString, lexer.KindNumber, lexer.KindRegexp,
		lexer.KindThis, lexer.KindTrue, lexer.KindFalse, lexer.KindNull:
		*mode = ModePostPrimaryExpression
		return st, nil
	case lexer.KindRightSquare, lexer.KindComma:
		// close / continue an array literal the caller is already inside
		*mode = ModePrimaryExpressionEnd
		return st, nil
	case lexer.KindRightParen:
		top := st[len(st)-1]
		st = st[:len(st)-1]
		if top.tag == TagParenStatement {
			*mode = ModeStatement
		} else {
			*mode = ModePrimaryExpressionEnd
		}
		return st, nil
	case lexer.KindSemicolon:
		if st[len(st)-1].tag == TagParenStatement {
			return st, nil // `for( ; ... )`: stay in primary-expression
		}
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "PRIMARY_EXP_EXPECTED"}
	default:
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "PRIMARY_EXP_EXPECTED"}
	}
}

func scanPostPrimaryExpression(st []frame, mode *Mode, tok lexer.Token) ([]frame, error) {
	switch tok.Kind {
	case lexer.KindDot:
		// ScanUntil consumes the property name that follows with
		// ScanIdentifier(true), so reserved words are accepted there;
		// here only the mode is kept.
		*mode = ModePostPrimaryExpression
		return st, nil
	case lexer.KindLeftParen, lexer.KindLeftSquare:
		*mode = ModePrimaryExpression
		return scanPrimaryExpression(nopSource{}, st, mode, tok)
	case lexer.KindIncr, lexer.KindDecr:
		if !tok.WasNewline {
			*mode = ModePrimaryExpressionEnd
			return st, nil
		}
		// ASI: treat as end of this expression, reprocess as end-state
		*mode = ModePrimaryExpressionEnd
		return st, nil
	default:
		*mode = ModePrimaryExpressionEnd
		return scanPrimaryExpressionEndDispatch(st, mode, tok)
	}
}

// nopSource is used only by the scanPostPrimaryExpression ->
// scanPrimaryExpression delegation above, where the delegate never
// actually needs to call back into the lexer (it only pushes/pops scan
// stack frames for `(`/`[`).
type nopSource struct{}

func (nopSource) NextToken(bool) lexer.Token                 { return lexer.Token{} }
func (nopSource) ScanIdentifier(bool) lexer.Token            { return lexer.Token{} }
func (nopSource) ConstructRegexpObject(int) lexer.Token      { return lexer.Token{} }

func scanPrimaryExpressionEndDispatch(st []frame, mode *Mode, tok lexer.Token) ([]frame, error) {
	return scanPrimaryExpressionEnd(st, mode, tok, TerminatorRightParen)
}

func scanPrimaryExpressionEnd(st []frame, mode *Mode, tok lexer.Token, term Terminator) ([]frame, error) {
	switch tok.Kind {
	case lexer.KindQuestion:
		st = append(st, frame{tag: TagColonExpression, mode: ModePrimaryExpression})
		*mode = ModePrimaryExpression
		return st, nil
	case lexer.KindColon:
		if len(st) > 1 && st[len(st)-1].tag == TagColonExpression {
			st = st[:len(st)-1]
			*mode = ModePrimaryExpression
			return st, nil
		}
		if len(st) > 1 && st[len(st)-1].tag == TagColonStatement {
			st = st[:len(st)-1]
			*mode = ModeStatement
			return st, nil
		}
		if len(st) > 1 && st[len(st)-1].tag == TagObjectLiteral {
			// the colon after a plain property key (scanPropertyName left
			// the TagObjectLiteral frame open, it isn't a ternary/case
			// colon): parse the property's value next, same frame.
			*mode = ModePrimaryExpression
			return st, nil
		}
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "COLON_EXPECTED"}
	case lexer.KindRightParen:
		if len(st) == 1 {
			return st, nil // let the HEAD-level terminator check handle it
		}
		top := st[len(st)-1]
		if top.tag != TagParenExpression {
			return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "RIGHT_PAREN_EXPECTED"}
		}
		st = st[:len(st)-1]
		*mode = ModePrimaryExpressionEnd
		return st, nil
	case lexer.KindRightSquare:
		top := st[len(st)-1]
		if top.tag != TagSquareBracketedExpression {
			return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "INVALID_RIGHT_SQUARE"}
		}
		st = st[:len(st)-1]
		*mode = ModePrimaryExpressionEnd
		return st, nil
	case lexer.KindRightBrace:
		if len(st) == 1 {
			return st, nil
		}
		top := st[len(st)-1]
		switch top.tag {
		case TagObjectLiteral:
			st = st[:len(st)-1]
			*mode = ModePrimaryExpressionEnd
			return st, nil
		case TagBlockExpression, TagBlockProperty:
			st = st[:len(st)-1]
			*mode = ModePrimaryExpressionEnd
			return st, nil
		default:
			return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "RIGHT_BRACE_EXPECTED"}
		}
	case lexer.KindComma:
		if len(st) > 1 && st[len(st)-1].tag == TagObjectLiteral {
			*mode = ModePropertyName
			return st, nil
		}
		*mode = ModePrimaryExpression
		return st, nil
	case lexer.KindSemicolon:
		if len(st) > 0 && st[len(st)-1].tag == TagParenStatement {
			*mode = ModePrimaryExpression
			return st, nil
		}
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "PRIMARY_EXP_EXPECTED"}
	case
		lexer.KindPlus, lexer.KindMinus, lexer.KindStar, lexer.KindSlash,
		lexer.KindPercent, lexer.KindAmp, lexer.KindPipe, lexer.KindCaret,
		lexer.KindShl, lexer.KindShr, lexer.KindUShr, lexer.KindLogicalAnd,
		lexer.KindLogicalOr, lexer.KindEqual, lexer.KindNotEqual,
		lexer.KindStrictEqual, lexer.KindStrictNotEqual, lexer.KindLess,
		lexer.KindGreater, lexer.KindLessEqual, lexer.KindGreaterEqual,
		lexer.KindIn, lexer.KindInstanceof, lexer.KindAssign,
		lexer.KindPlusAssign, lexer.KindMinusAssign, lexer.KindStarAssign,
		lexer.KindSlashAssign, lexer.KindPercentAssign, lexer.KindAndAssign,
		lexer.KindOrAssign, lexer.KindXorAssign, lexer.KindShlAssign,
		lexer.KindShrAssign, lexer.KindUShrAssign:
		*mode = ModePrimaryExpression
		return st, nil
	default:
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "INVALID_EXPRESSION"}
	}
}

func scanStatement(st []frame, mode *Mode, tok lexer.Token) ([]frame, error) {
	switch tok.Kind {
	case lexer.KindIf, lexer.KindWhile, lexer.KindWith, lexer.KindSwitch, lexer.KindCatch:
		return st, nil // caller enforces the following `(` itself
	case lexer.KindFor:
		return st, nil
	case lexer.KindVar, lexer.KindThrow:
		*mode = ModePrimaryExpression
		return st, nil
	case lexer.KindBreak, lexer.KindContinue:
		return st, nil
	case lexer.KindCase:
		st = append(st, frame{tag: TagColonStatement, mode: ModeStatement})
		*mode = ModePrimaryExpression
		return st, nil
	case lexer.KindDefault:
		// `default` takes no expression before its colon.
		st = append(st, frame{tag: TagColonStatement, mode: ModeStatement})
		*mode = ModePrimaryExpressionEnd
		return st, nil
	case lexer.KindLeftBrace:
		st = append(st, frame{tag: TagBlockStatement, mode: ModeStatement})
		return st, nil
	case lexer.KindFunction:
		st = append(st, frame{tag: TagBlockStatement, mode: ModeFunctionArguments})
		*mode = ModeFunctionArguments
		return st, nil
	case lexer.KindRightBrace:
		if len(st) == 1 {
			return st, nil
		}
		top := st[len(st)-1]
		if top.tag != TagBlockStatement {
			return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "RIGHT_BRACE_EXPECTED"}
		}
		st = st[:len(st)-1]
		return st, nil
	case lexer.KindColon:
		if len(st) > 1 && st[len(st)-1].tag == TagColonStatement {
			st = st[:len(st)-1]
			return st, nil
		}
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "COLON_EXPECTED"}
	default:
		*mode = ModePrimaryExpression
		return scanPrimaryExpression(nopSource{}, st, mode, tok)
	}
}

func scanFunctionArguments(st []frame, mode *Mode, tok lexer.Token) ([]frame, error) {
	switch tok.Kind {
	case lexer.KindIdent:
		return st, nil
	case lexer.KindLeftParen:
		return st, nil
	case lexer.KindComma:
		return st, nil
	case lexer.KindRightParen:
		return st, nil
	case lexer.KindLeftBrace:
		*mode = ModeStatement
		return st, nil
	default:
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "ARGUMENT_LIST_EXPECTED"}
	}
}

func scanPropertyName(st []frame, mode *Mode, tok lexer.Token) ([]frame, error) {
	switch tok.Kind {
	case lexer.KindIdent, lexer.KindString, lexer.KindNumber:
		*mode = ModePrimaryExpressionEnd // re-dispatched below to expect ':'
		return st, nil
	case lexer.KindGet, lexer.KindSet:
		st = append(st, frame{tag: TagBlockProperty, mode: ModeFunctionArguments})
		*mode = ModeFunctionArguments
		return st, nil
	case lexer.KindRightBrace:
		if len(st) > 1 {
			st = st[:len(st)-1]
		}
		*mode = ModePrimaryExpressionEnd
		return st, nil
	case lexer.KindColon:
		*mode = ModePrimaryExpression
		return st, nil
	default:
		return st, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "OBJECT_ITEM_SEPARATOR_EXPECTED"}
	}
}
