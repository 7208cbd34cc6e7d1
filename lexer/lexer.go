package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	errs "github.com/nyxwolf/goecma/errors"
	"github.com/nyxwolf/goecma/pool"
	"golang.org/x/exp/slices"
)

// Lexer is the on-demand tokenizer. Source is held as a rune slice,
// mirroring golox's Scanner (start/curr/line cursors over []rune)
// rather than scanning the byte string directly, since ES3/5
// identifiers admit \uXXXX escapes that must be decoded before
// comparison.
type Lexer struct {
	src      []rune
	start    int
	curr     int
	line     int
	col      int
	lineBase int // rune index where the current line began, for Col

	Pool *pool.Pool
}

func New(src string, p *pool.Pool) *Lexer {
	return &Lexer{src: []rune(src), line: 1, Pool: p}
}

func (l *Lexer) atEnd() bool { return l.curr >= len(l.src) }

func (l *Lexer) advance() rune {
	r := l.src[l.curr]
	l.curr++
	return r
}

func (l *Lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.curr]
}

func (l *Lexer) peekAt(off int) rune {
	if l.curr+off >= len(l.src) {
		return 0
	}
	return l.src[l.curr+off]
}

func (l *Lexer) match(r rune) bool {
	if l.atEnd() || l.src[l.curr] != r {
		return false
	}
	l.curr++
	return true
}

func (l *Lexer) col0() int { return l.start - l.lineBase + 1 }

// skipWhitespace consumes whitespace and comments, recording whether a
// line terminator was crossed — spec.md §3's was_newline flag.
func (l *Lexer) skipWhitespace() bool {
	sawNewline := false
	for !l.atEnd() {
		switch r := l.peek(); {
		case r == '\n':
			sawNewline = true
			l.curr++
			l.line++
			l.lineBase = l.curr
		case r == ' ' || r == '\t' || r == '\r' || r == '\v' || r == '\f':
			l.curr++
		case r == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.curr++
			}
		case r == '/' && l.peekAt(1) == '*':
			l.curr += 2
			for !l.atEnd() && !(l.peek() == '*' && l.peekAt(1) == '/') {
				if l.peek() == '\n' {
					sawNewline = true
					l.line++
					l.lineBase = l.curr + 1
				}
				l.curr++
			}
			if !l.atEnd() {
				l.curr += 2
			}
		default:
			return sawNewline
		}
	}
	return sawNewline
}

// NextToken advances and returns the next token. expectPrimary tells
// the lexer whether `/` should be treated as the start of a regex
// literal rather than the division/divide-assign operator — the
// caller (the pre-scanner or the primary-expression parser) is the
// sole authority on this, per spec.md §8's "regex vs division"
// property; the plain tokenizer loop never guesses.
func (l *Lexer) NextToken(expectPrimary bool) Token {
	wasNewline := l.skipWhitespace()
	l.start = l.curr
	if l.atEnd() {
		return l.make(KindEOS, wasNewline)
	}

	r := l.advance()
	switch {
	case isIdentStart(r):
		return l.identifier(wasNewline)
	case unicode.IsDigit(r):
		return l.number(wasNewline)
	case r == '"' || r == '\'':
		return l.string_(r, wasNewline)
	case r == '/' && expectPrimary:
		return l.regexp_(wasNewline)
	}

	return l.punct(r, wasNewline)
}

func (l *Lexer) make(kind Kind, wasNewline bool) Token {
	return Token{Kind: kind, Line: l.line, Col: l.col0(), Start: l.start, WasNewline: wasNewline}
}

// SeekTo rewinds the lexer to re-tokenize from tok's start position,
// the mechanism the statement parser uses to re-emit a while/for
// condition or update range after having first pre-scanned past it
// without emitting (spec.md §4.2/§4.3: the condition/update regions
// are "re-tokenized and emitted at their logical execution position").
func (l *Lexer) SeekTo(tok Token) {
	l.curr = tok.Start
	l.start = tok.Start
	l.line = tok.Line
	l.lineBase = tok.Start - (tok.Col - 1)
}

// Mark snapshots the raw cursor state (as opposed to SeekTo, which
// seeks to a specific token's start). The statement parser uses this
// to detour the lexer backward for a second pass over an already
// pre-scanned region (a while/for condition, a for-update clause) and
// then resume exactly where the first pass left off.
type Mark struct {
	curr, line, lineBase int
}

func (l *Lexer) Mark() Mark { return Mark{l.curr, l.line, l.lineBase} }

func (l *Lexer) Restore(m Mark) {
	l.curr, l.line, l.lineBase = m.curr, m.line, m.lineBase
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// identifier scans an identifier or keyword, decoding \uXXXX escapes
// per spec.md's HasEscape flag and the "use strict" exact-byte rule
// (an identifier/string containing an escape can still name a
// variable but never triggers directive-prologue detection).
func (l *Lexer) identifier(wasNewline bool) Token {
	var sb strings.Builder
	sb.WriteRune(l.src[l.start])
	hasEscape := false
	for !l.atEnd() {
		if l.peek() == '\\' && l.peekAt(1) == 'u' {
			hasEscape = true
			l.curr += 2
			r := l.readUnicodeEscape()
			sb.WriteRune(r)
			continue
		}
		if !isIdentPart(l.peek()) {
			break
		}
		sb.WriteRune(l.advance())
	}
	text := sb.String()
	tok := l.make(KindIdent, wasNewline)
	tok.LitKind = LiteralIdent
	tok.Text = text
	tok.HasEscape = hasEscape
	if !hasEscape {
		if kw, ok := keywords[text]; ok {
			tok.Kind = kw
			tok.LitKind = LiteralNone
			return tok
		}
		if text == "get" {
			tok.Kind = KindGet
		} else if text == "set" {
			tok.Kind = KindSet
		}
	}
	return tok
}

func (l *Lexer) readUnicodeEscape() rune {
	if l.curr+4 > len(l.src) {
		return utf8.RuneError
	}
	hex := string(l.src[l.curr : l.curr+4])
	l.curr += 4
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return utf8.RuneError
	}
	return rune(v)
}

func (l *Lexer) number(wasNewline bool) Token {
	for unicode.IsDigit(l.peek()) {
		l.curr++
	}
	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		l.curr++
		for unicode.IsDigit(l.peek()) {
			l.curr++
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.curr
		l.curr++
		if l.peek() == '+' || l.peek() == '-' {
			l.curr++
		}
		if unicode.IsDigit(l.peek()) {
			for unicode.IsDigit(l.peek()) {
				l.curr++
			}
		} else {
			l.curr = save
		}
	}
	text := string(l.src[l.start:l.curr])
	n, _ := strconv.ParseFloat(text, 64)
	tok := l.make(KindNumber, wasNewline)
	tok.LitKind = LiteralNumber
	tok.Num = n
	return tok
}

func (l *Lexer) string_(quote rune, wasNewline bool) Token {
	var sb strings.Builder
	hasEscape := false
	for !l.atEnd() && l.peek() != quote {
		r := l.advance()
		if r == '\n' {
			break // unterminated string; caller surfaces INVALID_EXPRESSION
		}
		if r == '\\' {
			hasEscape = true
			if l.peek() == 'u' {
				l.curr++
				sb.WriteRune(l.readUnicodeEscape())
				continue
			}
			esc := l.advance()
			sb.WriteRune(decodeSimpleEscape(esc))
			continue
		}
		sb.WriteRune(r)
	}
	l.match(quote)
	tok := l.make(KindString, wasNewline)
	tok.LitKind = LiteralString
	tok.Text = sb.String()
	tok.HasEscape = hasEscape
	return tok
}

func decodeSimpleEscape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case '0':
		return 0
	default:
		return r
	}
}

// regexp_ scans a regex literal body after the caller has already
// consumed the opening '/', i.e. it implements
// lexer.ConstructRegexpObject for the common case reached via
// NextToken(expectPrimary=true). ConstructRegexpObject itself (below)
// re-lexes from the '/' when the caller has already advanced past it
// during pre-scanning.
func (l *Lexer) regexp_(wasNewline bool) Token {
	inClass := false
	for !l.atEnd() {
		r := l.peek()
		if r == '\n' {
			break
		}
		if r == '\\' {
			l.curr += 2
			continue
		}
		if r == '[' {
			inClass = true
		} else if r == ']' {
			inClass = false
		} else if r == '/' && !inClass {
			break
		}
		l.curr++
	}
	l.match('/')
	for isIdentPart(l.peek()) { // flags: g, i, m
		l.curr++
	}
	tok := l.make(KindRegexp, wasNewline)
	tok.LitKind = LiteralRegexp
	tok.Text = string(l.src[l.start:l.curr])
	return tok
}

// ConstructRegexpObject re-lexes the current position as a regex
// literal, per spec.md §6's lexer contract; parseFlags is accepted for
// interface parity with the contract name and currently unused since
// this tokenizer has no separate "no-regex" mode to override.
func (l *Lexer) ConstructRegexpObject(parseFlags int) Token {
	l.start = l.curr - 1 // '/' already consumed by the caller
	return l.regexp_(false)
}

func (l *Lexer) punct(r rune, wasNewline bool) Token {
	mk := func(k Kind) Token { return l.finish(k, wasNewline) }
	switch r {
	case '(':
		return mk(KindLeftParen)
	case ')':
		return mk(KindRightParen)
	case '{':
		return mk(KindLeftBrace)
	case '}':
		return mk(KindRightBrace)
	case '[':
		return mk(KindLeftSquare)
	case ']':
		return mk(KindRightSquare)
	case ';':
		return mk(KindSemicolon)
	case ',':
		return mk(KindComma)
	case ':':
		return mk(KindColon)
	case '?':
		return mk(KindQuestion)
	case '.':
		return mk(KindDot)
	case '~':
		return mk(KindTilde)
	case '+':
		if l.match('+') {
			return mk(KindIncr)
		}
		if l.match('=') {
			return mk(KindPlusAssign)
		}
		return mk(KindPlus)
	case '-':
		if l.match('-') {
			return mk(KindDecr)
		}
		if l.match('=') {
			return mk(KindMinusAssign)
		}
		return mk(KindMinus)
	case '*':
		if l.match('=') {
			return mk(KindStarAssign)
		}
		return mk(KindStar)
	case '/':
		if l.match('=') {
			return mk(KindSlashAssign)
		}
		return mk(KindSlash)
	case '%':
		if l.match('=') {
			return mk(KindPercentAssign)
		}
		return mk(KindPercent)
	case '=':
		if l.match('=') {
			if l.match('=') {
				return mk(KindStrictEqual)
			}
			return mk(KindEqual)
		}
		return mk(KindAssign)
	case '!':
		if l.match('=') {
			if l.match('=') {
				return mk(KindStrictNotEqual)
			}
			return mk(KindNotEqual)
		}
		return mk(KindBang)
	case '<':
		if l.match('<') {
			if l.match('=') {
				return mk(KindShlAssign)
			}
			return mk(KindShl)
		}
		if l.match('=') {
			return mk(KindLessEqual)
		}
		return mk(KindLess)
	case '>':
		if l.match('>') {
			if l.match('>') {
				if l.match('=') {
					return mk(KindUShrAssign)
				}
				return mk(KindUShr)
			}
			if l.match('=') {
				return mk(KindShrAssign)
			}
			return mk(KindShr)
		}
		if l.match('=') {
			return mk(KindGreaterEqual)
		}
		return mk(KindGreater)
	case '&':
		if l.match('&') {
			return mk(KindLogicalAnd)
		}
		if l.match('=') {
			return mk(KindAndAssign)
		}
		return mk(KindAmp)
	case '|':
		if l.match('|') {
			return mk(KindLogicalOr)
		}
		if l.match('=') {
			return mk(KindOrAssign)
		}
		return mk(KindPipe)
	case '^':
		if l.match('=') {
			return mk(KindXorAssign)
		}
		return mk(KindCaret)
	}
	tok := l.finish(KindError, wasNewline)
	tok.Text = "unexpected character"
	return tok
}

func (l *Lexer) finish(k Kind, wasNewline bool) Token {
	return Token{Kind: k, Line: l.line, Col: l.col0(), Start: l.start, WasNewline: wasNewline}
}

// ScanIdentifier reads the next token under the constraint that
// reserved words are valid here (dot-property access, object-literal
// keys), per spec.md §6. allowReserved controls whether a keyword
// token is rewritten to a plain KindIdent carrying its keyword text.
func (l *Lexer) ScanIdentifier(allowReserved bool) Token {
	tok := l.NextToken(false)
	if allowReserved && isKeywordKind(tok.Kind) {
		tok.Text = keywordText(tok.Kind)
		tok.Kind = KindIdent
		tok.LitKind = LiteralIdent
	}
	return tok
}

// ExpectIdentifier enforces identifier kind and interns the name into
// the pool, returning its constant index. kind is accepted for
// interface parity with spec.md's expect_identifier(ctx, IDENT) (this
// tokenizer only ever expects the one IDENT kind, unlike
// original_source's binding-vs-reference distinction).
func (l *Lexer) ExpectIdentifier(tok Token, kind LiteralKind) (int, error) {
	if tok.Kind != KindIdent {
		return 0, &errs.ParseError{Line: tok.Line, Col: tok.Col, Reason: "IDENTIFIER_EXPECTED"}
	}
	return l.Pool.InternIdent(tok.Text), nil
}

// ConstructLiteralObject interns a source-spanning literal (string or
// number) into the pool, returning its constant index.
func (l *Lexer) ConstructLiteralObject(tok Token) int {
	switch tok.LitKind {
	case LiteralString:
		return l.Pool.InternString(tok.Text)
	case LiteralNumber:
		return l.Pool.InternNumber(tok.Num)
	case LiteralRegexp:
		return l.Pool.InternRegexp(tok.Text)
	default:
		return l.Pool.InternIdent(tok.Text)
	}
}

// SameIdentifiers compares two identifier descriptors semantically:
// since escapes are already decoded into Text during scanning, this
// reduces to decoded-text equality, but is kept as a named operation
// (rather than inlined `==`) to match spec.md §6's external-interface
// contract and to make the "decoding escapes" requirement explicit at
// call sites.
func SameIdentifiers(a, b Token) bool {
	return a.Text == b.Text
}

func isKeywordKind(k Kind) bool {
	return slices.Contains(keywordKinds, k)
}

var keywordKinds = func() []Kind {
	ks := make([]Kind, 0, len(keywords))
	for _, k := range keywords {
		ks = append(ks, k)
	}
	return ks
}()

func keywordText(k Kind) string {
	for text, kind := range keywords {
		if kind == k {
			return text
		}
	}
	return ""
}
