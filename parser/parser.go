// Package parser implements the statement parser spec.md §4.3-§4.5
// specify: a single-pass, AST-less driver that streams bytecode
// directly, built on the frame stack in frame.go and the pre-scanner
// in package scan. Grounded structurally on golox's vm/compiler.go
// Parser/Compiler (embedding a scanner, a multierror.Error
// accumulator, a panicMode-style poison flag) and semantically on
// original_source/jerry-core/parser/js/new-parser/src/js-parser-statm.c.
package parser

import (
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/debug"
	errs "github.com/nyxwolf/goecma/errors"
	"github.com/nyxwolf/goecma/lexer"
	"github.com/nyxwolf/goecma/pool"
)

// Parser is the context object spec.md §3 calls the "parser context":
// source cursor (owned by the embedded *lexer.Lexer), current token,
// the frame stack, the emitter (with its peephole slot), and the
// status flags spec.md names (strict mode, inside function, inside
// with, has non-strict argument name).
type Parser struct {
	*lexer.Lexer
	em *bytecode.Emitter

	tok  lexer.Token // current token
	prev lexer.Token

	frames *frameStack

	// contextDepth counts outstanding with/for-in/try runtime context
	// allocations; must return to zero at program end (spec.md §3, §5).
	contextDepth int

	strict           bool
	insideFunction   bool
	insideWith       bool
	nonStrictArgName bool

	poisoned bool
	errs     *multierror.Error

	peekBuf *lexer.Token // one-token lookahead buffer (label detection)

	// exprStart is the token the innermost exprAt/exprLHS call began
	// parsing from, set and restored around each call. Assignment
	// lowering (expr.go) uses it to re-parse an lvalue sub-expression a
	// second time via detour, once to read its current value (compound
	// assignment) and once more to re-derive its addressing operands for
	// the store, exactly the way forInStatement re-derives its target.
	exprStart lexer.Token
}

// Compile parses src end to end and returns its emitted chunk. Errors
// accumulated during the parse are returned as a single
// *multierror.Error; the chunk returned on error is whatever was
// emitted before FreeJumps ran and should not be executed.
func Compile(src string) (*bytecode.Chunk, error) {
	p := New(src)
	if err := p.ParseStatements(); err != nil {
		return p.em.Chunk, err
	}
	return p.em.Chunk, nil
}

func New(src string) *Parser {
	pl := pool.New()
	chunk := bytecode.NewChunk()
	chunk.Consts = pl
	p := &Parser{
		Lexer:  lexer.New(src, pl),
		em:     bytecode.NewEmitter(chunk),
		frames: newFrameStack(),
	}
	return p
}

func (p *Parser) advance() {
	p.prev = p.tok
	if p.peekBuf != nil {
		p.tok = *p.peekBuf
		p.peekBuf = nil
	} else {
		// the primary-expression-vs-division ambiguity is resolved by
		// the statement driver and the expression parser, both of
		// which call NextToken directly with the correct expectPrimary
		// flag when they need anything other than the default
		// "not primary" dispatch.
		p.tok = p.Lexer.NextToken(false)
	}
	p.em.SetLine(p.tok.Line)
}

// peek returns the token after the current one without consuming it,
// buffering it for the next advance(). Used only for the one-token
// lookahead that distinguishes `ident:` (a label) from an identifier
// expression statement.
func (p *Parser) peek() lexer.Token {
	if p.peekBuf == nil {
		t := p.Lexer.NextToken(false)
		p.peekBuf = &t
	}
	return *p.peekBuf
}

// detour runs fn with the lexer and current token rewound to tok,
// then restores both to whatever they were right before the call.
// This is how whileStatement/forClassicStatement re-emit a condition
// or update clause that the pre-scanner already skipped past once:
// the pre-scan pass only located the clause's terminator, it never
// emitted anything, so the clause is parsed for real here, out of
// the left-to-right order the rest of the parser follows, and the
// token stream is then handed back exactly where the first pass left
// it (at the token following the loop body).
func (p *Parser) detour(tok lexer.Token, fn func() error) error {
	savedTok := p.tok
	savedPeek := p.peekBuf
	savedMark := p.Lexer.Mark()

	p.tok = tok
	p.peekBuf = nil
	p.Lexer.SeekTo(tok)
	p.Lexer.NextToken(false) // step past tok, which is already current

	err := fn()

	p.tok = savedTok
	p.peekBuf = savedPeek
	p.Lexer.Restore(savedMark)
	return err
}

func (p *Parser) check(k lexer.Kind) bool { return p.tok.Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k lexer.Kind, reason string) error {
	if p.check(k) {
		p.advance()
		return nil
	}
	return p.fail(reason)
}

// fail records a parse error. It never panics or unwinds via Go's
// exception mechanism (spec.md §9: "do not rely on host-language
// exceptions for control flow"); every call site checks the returned
// error and propagates it upward explicitly, and ParseStatements runs
// FreeJumps exactly once before returning the accumulated error.
func (p *Parser) fail(reason string) error {
	e := &errs.ParseError{Line: p.tok.Line, Col: p.tok.Col, Reason: reason}
	p.errs = multierror.Append(p.errs, e)
	p.poisoned = true
	if debug.DEBUG {
		logrus.Debugln(e.Error())
	}
	return e
}

// pushFrame stamps the frame with the current context depth before
// pushing it, so break/continue resolution can later tell whether
// jumping to it crosses a with/for-in/try runtime context.
func (p *Parser) pushFrame(f *frame) {
	f.ctxDepth = p.contextDepth
	p.frames.push(f)
}

// ParseStatements is the entry point spec.md §6 names. Precondition:
// none (it loads the first token itself, unlike the C original which
// expects ctx.token already populated — the parser's internal scanner
// ownership makes that unnecessary in Go). Postcondition on success:
// EOS reached and the START sentinel popped.
func (p *Parser) ParseStatements() error {
	p.advance()
	p.pushFrame(&frame{tag: TagStart})

	if err := p.directivePrologue(); err != nil {
		return p.surface(err)
	}

	for !p.check(lexer.KindEOS) {
		if err := p.statement(); err != nil {
			return p.surface(err)
		}
	}
	p.em.FlushCBC()

	top := p.frames.pop()
	debug.Assertf(top.tag == TagStart, "ParseStatements: expected START at EOS, got %v", top.tag)
	debug.Assertf(p.contextDepth == 0, "ParseStatements: context depth %d at EOS", p.contextDepth)
	return p.errs.ErrorOrNil()
}

// directivePrologue consumes leading bare string-literal statements,
// enabling strict mode on an exact-byte "use strict" directive. See
// SPEC_FULL.md's Open Question #2 for the token-stash mechanism this
// implements.
func (p *Parser) directivePrologue() error {
	for p.check(lexer.KindString) {
		strTok := p.tok
		p.advance()
		isDirective := p.check(lexer.KindSemicolon) || p.check(lexer.KindRightBrace) ||
			p.check(lexer.KindEOS) || p.tok.WasNewline
		if !isDirective {
			// Not a directive: the token we already consumed after the
			// string must be treated as the continuation of an
			// expression whose first operand is that string. Stash its
			// kind and rewrite the current token to the sentinel
			// "resume expression" marker so the expression-statement
			// path below picks the string back up without re-lexing.
			stashed := p.tok
			p.tok.Stashed = stashed.Kind
			p.tok.IsStash = true
			p.tok.Kind = lexer.KindStashedExprStart
			if err := p.exprStatementFromString(strTok); err != nil {
				return err
			}
			return nil
		}
		if strTok.Text == "use strict" && !strTok.HasEscape {
			p.strict = true
		}
		idx := p.ConstructLiteralObject(strTok)
		p.em.EmitLiteral(bytecode.OpPushLiteral, idx)
		p.em.Emit(bytecode.OpPop)
		if err := p.statementTerminator(); err != nil {
			return err
		}
	}
	return nil
}

// exprStatementFromString resumes expression parsing with strTok as
// the already-lexed first token, used only by the directive-prologue
// stash path above.
func (p *Parser) exprStatementFromString(strTok lexer.Token) error {
	idx := p.ConstructLiteralObject(strTok)
	p.em.EmitLiteral(bytecode.OpPushLiteral, idx)
	if err := p.exprContinuation(precAssign); err != nil {
		return err
	}
	p.em.Emit(bytecode.OpPop)
	return p.statementTerminator()
}

// surface is the non-local-failure boundary spec.md §4.5 describes:
// before any error reaches ParseStatements' caller, free every
// outstanding patch record reachable from the frame stack.
func (p *Parser) surface(err error) error {
	p.freeJumps()
	if err != nil {
		p.errs = multierror.Append(p.errs, err)
	}
	return p.errs.ErrorOrNil()
}
