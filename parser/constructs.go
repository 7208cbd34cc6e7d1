package parser

import (
	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/lexer"
	"github.com/nyxwolf/goecma/scan"
)

// varStatement parses comma-separated declarators. A bare `var x;`
// emits nothing at all (there is no binding-creation opcode; the
// identifier merely becomes legal to assign); `var x = e;` parses e and
// assigns it with a single direct ASSIGN_IDENT carrying the
// identifier's own pool index as its operand (spec.md §4.3).
func (p *Parser) varStatement() error {
	for {
		idx, err := p.expectIdent()
		if err != nil {
			return err
		}
		if p.match(lexer.KindAssign) {
			if err := p.exprAt(precAssign); err != nil {
				return err
			}
			p.em.EmitLiteral(bytecode.OpAssignIdent, idx)
			p.em.Emit(bytecode.OpPop)
		}
		if !p.match(lexer.KindComma) {
			break
		}
	}
	return nil
}

func (p *Parser) expectIdent() (int, error) {
	// get/set are contextual keywords, not reserved words: a variable or
	// function genuinely named get/set is legal everywhere outside an
	// object-literal accessor position.
	if p.tok.Kind == lexer.KindGet || p.tok.Kind == lexer.KindSet {
		idx := p.Pool.InternIdent(p.tok.Text)
		p.advance()
		return idx, nil
	}
	if !p.check(lexer.KindIdent) {
		return 0, p.fail("IDENTIFIER_EXPECTED")
	}
	idx, err := p.ExpectIdentifier(p.tok, lexer.LiteralIdent)
	if err != nil {
		return 0, p.fail("IDENTIFIER_EXPECTED")
	}
	p.advance()
	return idx, nil
}

// functionStatement requires a following identifier naming the
// function; the nested body is compiled as its own chunk by a fresh
// *Parser (constructFunctionObject, expr.go), mirroring
// original_source's construct_function_object callback (spec.md §6)
// and golox's Compiler.wrapCompiler nesting. The resulting function
// value is bound to the name exactly the way varStatement binds an
// initializer: PUSH_LITERAL then a direct ASSIGN_IDENT.
func (p *Parser) functionStatement() error {
	if !p.check(lexer.KindIdent) {
		return p.fail("IDENTIFIER_EXPECTED")
	}
	name := p.tok.Text
	nameIdx, err := p.expectIdent()
	if err != nil {
		return err
	}
	params, err := p.paramList()
	if err != nil {
		return err
	}
	if err := p.consume(lexer.KindLeftBrace, "LEFT_BRACE_EXPECTED"); err != nil {
		return err
	}
	fnIdx, err := p.constructFunctionObject(name, params)
	if err != nil {
		return err
	}
	p.em.EmitLiteral(bytecode.OpPushLiteral, fnIdx)
	p.em.EmitLiteral(bytecode.OpAssignIdent, nameIdx)
	p.em.Emit(bytecode.OpPop)
	return nil
}

// paramList parses a parenthesized, comma-separated identifier list;
// shared by function statements and function expressions.
func (p *Parser) paramList() ([]string, error) {
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(lexer.KindRightParen) {
		if !p.check(lexer.KindIdent) {
			return nil, p.fail("IDENTIFIER_EXPECTED")
		}
		params = append(params, p.tok.Text)
		p.advance()
		if !p.match(lexer.KindComma) {
			break
		}
	}
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) ifStatement() error {
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return err
	}
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}
	branch := p.em.EmitForwardBranch(bytecode.OpBranchIfFalseForward)
	p.pushFrame(&frame{tag: TagIf, branch: branch})
	return p.statement()
}

// switchStatement implements spec.md §4.3's two-pass body parse: a
// pre-scan pass over the body generating, for every case, DUP, the case
// expression, STRICT_EQUAL and a BRANCH_IF_STRICT_EQUAL forward branch,
// followed by a real parse starting from the saved body offset. The
// last case is emitted in the same form as the others; no comparison
// is folded.
func (p *Parser) switchStatement() error {
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return err
	}
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}
	if err := p.consume(lexer.KindLeftBrace, "LEFT_BRACE_EXPECTED"); err != nil {
		return err
	}
	bodyStart := p.tok

	f := &frame{tag: TagSwitchNoDefault, defaultPatch: -1}
	hasDefault := false
	var caseTail *bytecode.PatchNode
	for !p.check(lexer.KindRightBrace) {
		switch p.tok.Kind {
		case lexer.KindCase:
			p.advance()
			p.em.Emit(bytecode.OpDup)
			if err := p.expr(); err != nil {
				return err
			}
			p.em.Emit(bytecode.OpStrictEqual)
			patch := p.em.EmitForwardBranch(bytecode.OpBranchIfStrictEqual)
			node := &bytecode.PatchNode{Handle: patch}
			if caseTail == nil {
				f.caseList = node
			} else {
				caseTail.Next = node
			}
			caseTail = node
			if err := p.consume(lexer.KindColon, "COLON_EXPECTED"); err != nil {
				return err
			}
			p.skipCaseBody()
		case lexer.KindDefault:
			p.advance()
			if hasDefault {
				return p.fail("MULTIPLE_DEFAULTS_NOT_ALLOWED")
			}
			hasDefault = true
			if err := p.consume(lexer.KindColon, "COLON_EXPECTED"); err != nil {
				return err
			}
			p.skipCaseBody()
		default:
			return p.fail("INVALID_SWITCH")
		}
	}
	p.em.Emit(bytecode.OpPop) // drop the discriminant
	if hasDefault {
		f.tag = TagSwitch
		f.defaultPatch = p.em.EmitForwardBranch(bytecode.OpJumpForward)
	} else {
		jmp := p.em.EmitForwardBranch(bytecode.OpJumpForward)
		f.defaultPatch = jmp // patched at switch end if no case matched
	}
	p.pushFrame(f)

	p.Lexer.SeekTo(bodyStart)
	p.peekBuf = nil
	p.advance()
	return p.switchBodyRealPass()
}

// skipCaseBody is a minimal pre-scan that advances past one case's
// statements without emitting code, stopping before the next
// `case`/`default`/`}` at brace depth zero — the "switch body"
// terminator spec.md §4.2 names.
func (p *Parser) skipCaseBody() {
	depth := 0
	for {
		switch p.tok.Kind {
		case lexer.KindLeftBrace:
			depth++
		case lexer.KindRightBrace:
			if depth == 0 {
				return
			}
			depth--
		case lexer.KindCase, lexer.KindDefault:
			if depth == 0 {
				return
			}
		case lexer.KindEOS:
			return
		}
		p.advance()
	}
}

// switchBodyRealPass re-parses the body statements for real; each
// case/default label pops the head of the pending case-comparison
// list and patches it to the current position, per spec.md §4.3.
func (p *Parser) switchBodyRealPass() error {
	f := p.frames.top()
	for {
		switch p.tok.Kind {
		case lexer.KindCase:
			p.advance()
			if err := p.skipExprNoEmit(); err != nil {
				return err
			}
			if err := p.consume(lexer.KindColon, "COLON_EXPECTED"); err != nil {
				return err
			}
			if f.caseList != nil {
				p.em.SetBranchToCurrentPosition(f.caseList.Handle)
				f.caseList = f.caseList.Next
			}
		case lexer.KindDefault:
			p.advance()
			if err := p.consume(lexer.KindColon, "COLON_EXPECTED"); err != nil {
				return err
			}
			p.em.SetBranchToCurrentPosition(f.defaultPatch)
		case lexer.KindRightBrace:
			p.advance()
			return p.endSwitch()
		default:
			if err := p.statement(); err != nil {
				return err
			}
		}
	}
}

// skipExprNoEmit re-skips a case expression during the real pass
// (already compiled once during pre-scan); it must stay in lock-step
// with the tokens consumed by p.expr() during pre-scan without
// emitting bytecode again.
func (p *Parser) skipExprNoEmit() error {
	depth := 0
	for {
		switch p.tok.Kind {
		case lexer.KindColon:
			if depth == 0 {
				return nil
			}
			depth--
		case lexer.KindQuestion:
			depth++
		case lexer.KindEOS:
			return p.fail("COLON_EXPECTED")
		}
		p.advance()
	}
}

func (p *Parser) endSwitch() error {
	f := p.frames.pop()
	if f.tag == TagSwitchNoDefault {
		p.em.SetBranchToCurrentPosition(f.defaultPatch)
	}
	p.em.SetBreaksToCurrentPosition(f.breakList)
	return p.enderCascade()
}

func (p *Parser) doStatement() error {
	backwardTarget := p.em.Chunk.Len()
	p.pushFrame(&frame{tag: TagDoWhile, backwardTarget: backwardTarget})
	if err := p.statement(); err != nil {
		return err
	}
	if err := p.consume(lexer.KindWhile, "WHILE_EXPECTED"); err != nil {
		return err
	}
	p.em.FlushCBC()
	condPos := p.em.Chunk.Len()
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return err
	}
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}
	f := p.frames.pop()
	p.emitLoopBackBranch(f.backwardTarget)
	if err := p.afterSimpleStatement(); err != nil {
		return err
	}
	p.em.SetContinuesToCurrentPosition(f.breakList, condPos)
	p.em.SetBreaksToCurrentPosition(f.breakList)
	return nil
}

// emitLoopBackBranch applies the peephole polarity rule spec.md §4.3
// describes: a trailing LOGICAL_NOT in the peephole slot is cancelled
// and the branch polarity flipped, rather than emitting NOT followed
// by a branch-if-true.
func (p *Parser) emitLoopBackBranch(target int) {
	if op, ok := p.em.PeekLast(); ok && op == bytecode.OpLogicalNot {
		p.em.CancelLast()
		p.em.EmitBackwardBranch(bytecode.OpBranchIfFalseBackward, target)
		return
	}
	p.em.EmitBackwardBranch(bytecode.OpBranchIfTrueBackward, target)
}

// whileStatement lays out the loop the way spec.md §8's scenario 3
// does: the condition is emitted once, physically after the body, and
// is reached on the first iteration via an unconditional forward jump.
// The pre-scan below only locates where the condition ends; the
// condition itself is re-tokenized and emitted for real in
// closeWhile, once the body has been parsed, via Parser.detour.
func (p *Parser) whileStatement() error {
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return err
	}
	jumpToCond := p.em.EmitForwardBranch(bytecode.OpJumpForward)
	condStart := p.tok
	r, err := scan.ScanUntil(p, p.tok, scan.TerminatorRightParen)
	if err != nil {
		return err
	}
	p.tok = r.Terminator
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}
	bodyStart := p.em.Chunk.Len()
	f := &frame{tag: TagWhile, endBranch: jumpToCond, backwardTarget: bodyStart, condStart: condStart}
	p.pushFrame(f)
	return p.statement()
}

// closeWhile runs once the loop body statement (and anything it
// itself closed via the cascade) has fully parsed. It is invoked from
// enderCascade rather than inline in whileStatement because the body
// may be a bare statement that closes the WHILE frame immediately, or
// a block whose closing `}` only reaches WHILE after popping BLOCK.
func (p *Parser) closeWhile() error {
	f := p.frames.pop()
	p.em.SetBranchToCurrentPosition(f.endBranch)
	condPos := p.em.Chunk.Len()
	if err := p.detour(f.condStart, func() error {
		if err := p.expr(); err != nil {
			return err
		}
		return p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED")
	}); err != nil {
		return err
	}
	p.emitLoopBackBranch(f.backwardTarget)
	p.em.SetContinuesToCurrentPosition(f.breakList, condPos)
	p.em.SetBreaksToCurrentPosition(f.breakList)
	return nil
}

func (p *Parser) forStatement() error {
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return err
	}
	first := p.tok
	scanFirst := first
	if first.Kind == lexer.KindVar {
		scanFirst = p.Lexer.NextToken(false)
	}
	r, err := scan.ScanUntil(p, scanFirst, scan.TerminatorIn)
	if err != nil {
		return err
	}
	// rewind so the header is parsed from its first token again
	p.Lexer.SeekTo(first)
	p.Lexer.NextToken(false)
	if r.Terminator.Kind == lexer.KindIn {
		return p.forInStatement()
	}
	return p.forClassicStatement()
}

func (p *Parser) forInStatement() error {
	p.em.Emit(bytecode.OpForInCreateContext)
	p.contextDepth++
	backwardTarget := p.em.Chunk.Len()
	p.em.Emit(bytecode.OpForInGetNext)

	if p.match(lexer.KindVar) {
		idx, err := p.expectIdent()
		if err != nil {
			return err
		}
		p.em.EmitLiteral(bytecode.OpPushIdent, idx)
	} else {
		if err := p.exprLHS(); err != nil {
			return err
		}
	}
	if err := p.rewriteLvalueToAssign(); err != nil {
		return err
	}

	if err := p.consume(lexer.KindIn, "IN_EXPECTED"); err != nil {
		return err
	}
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}

	f := &frame{tag: TagForIn, backwardTarget: backwardTarget}
	p.pushFrame(f)
	if err := p.statement(); err != nil {
		return err
	}
	f = p.frames.pop()
	p.em.EmitBackwardBranch(bytecode.OpBranchIfForInHasNext, f.backwardTarget)
	p.em.SetContinuesToCurrentPosition(f.breakList, f.backwardTarget)
	p.em.Emit(bytecode.OpContextEnd)
	p.contextDepth--
	p.em.SetBreaksToCurrentPosition(f.breakList)
	return p.enderCascade()
}

// rewriteLvalueToAssign converts the final emitted "get" opcode of an
// lvalue sub-expression into its "assign" counterpart, per spec.md
// §8's for-in lvalue rewrite property.
func (p *Parser) rewriteLvalueToAssign() error {
	op, ok := p.em.PeekLast()
	if !ok {
		p.em.Emit(bytecode.OpPushUndefinedBase)
		p.em.Emit(bytecode.OpAssign)
		return nil
	}
	switch op {
	case bytecode.OpPushIdent:
		p.em.RewriteLastOpcode(bytecode.OpAssignIdent)
	case bytecode.OpPropGet:
		p.em.RewriteLastOpcode(bytecode.OpAssign)
	case bytecode.OpPropStringGet:
		p.em.RewriteLastOpcode(bytecode.OpAssignPropString)
	default:
		// `for (123 in e)`: synthesize a PUSH_UNDEFINED_BASE + generic
		// ASSIGN, deferring the runtime error per spec.md §8.
		p.em.Emit(bytecode.OpPushUndefinedBase)
		p.em.Emit(bytecode.OpAssign)
	}
	return nil
}

// forClassicStatement parses `for (init; cond; update) body` the way
// original_source's parser_parse_for_statement_start does: init runs
// immediately (it executes exactly once, in order), while cond and
// update are only located here (by ScanUntil) and re-tokenized for
// real in closeFor, after the body, the same deferred-emission scheme
// whileStatement uses for its condition.
func (p *Parser) forClassicStatement() error {
	if p.match(lexer.KindVar) {
		if err := p.varStatement(); err != nil {
			return err
		}
	} else if !p.check(lexer.KindSemicolon) {
		if err := p.expr(); err != nil {
			return err
		}
		p.em.Emit(bytecode.OpPop)
	}
	if err := p.consume(lexer.KindSemicolon, "SEMICOLON_EXPECTED"); err != nil {
		return err
	}

	jumpToCond := p.em.EmitForwardBranch(bytecode.OpJumpForward)

	condStart := p.tok
	cr, err := scan.ScanUntil(p, p.tok, scan.TerminatorSemicolon)
	if err != nil {
		return err
	}
	p.tok = cr.Terminator
	if err := p.consume(lexer.KindSemicolon, "SEMICOLON_EXPECTED"); err != nil {
		return err
	}
	updateStart := p.tok
	ur, err := scan.ScanUntil(p, p.tok, scan.TerminatorRightParen)
	if err != nil {
		return err
	}
	p.tok = ur.Terminator
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}

	bodyStart := p.em.Chunk.Len()
	f := &frame{
		tag: TagFor, endBranch: jumpToCond, backwardTarget: bodyStart,
		condStart: condStart, updateStart: updateStart,
	}
	p.pushFrame(f)
	return p.statement()
}

// closeFor mirrors closeWhile, but a classic for loop lays out two
// deferred regions after the body instead of one: UPDATE: then COND:,
// with `continue` re-entering at UPDATE so the increment still runs.
func (p *Parser) closeFor() error {
	f := p.frames.pop()

	p.em.FlushCBC()
	updatePos := p.em.Chunk.Len()
	if err := p.detour(f.updateStart, func() error {
		if p.check(lexer.KindRightParen) {
			return nil // `for (...; ...; )`: no update clause
		}
		if err := p.expr(); err != nil {
			return err
		}
		p.em.Emit(bytecode.OpPop)
		return nil
	}); err != nil {
		return err
	}

	p.em.SetBranchToCurrentPosition(f.endBranch)
	hasCond := false
	if err := p.detour(f.condStart, func() error {
		if p.check(lexer.KindSemicolon) {
			return nil // `for (...; ; ...)`: always-true condition
		}
		hasCond = true
		return p.expr()
	}); err != nil {
		return err
	}
	if hasCond {
		p.emitLoopBackBranch(f.backwardTarget)
	} else {
		p.em.EmitBackwardBranch(bytecode.OpJumpBackward, f.backwardTarget)
	}

	p.em.SetContinuesToCurrentPosition(f.breakList, updatePos)
	p.em.SetBreaksToCurrentPosition(f.breakList)
	return nil
}

func (p *Parser) withStatement() error {
	if p.strict {
		return p.fail("WITH_NOT_ALLOWED")
	}
	if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
		return err
	}
	if err := p.expr(); err != nil {
		return err
	}
	if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
		return err
	}
	p.em.Emit(bytecode.OpWithCreateContext)
	p.contextDepth++
	wasWith := p.insideWith
	p.insideWith = true
	p.pushFrame(&frame{tag: TagWith, savedInsideWith: wasWith})
	return p.statement()
}

// closeWith runs from enderCascade once the with-statement's body
// statement has closed, the same deferred-via-cascade pattern
// closeWhile/closeFor use: a bare (non-block) body closes WITH
// immediately, a block body only reaches it after BLOCK pops.
func (p *Parser) closeWith() error {
	f := p.frames.pop()
	p.em.Emit(bytecode.OpContextEnd)
	p.contextDepth--
	p.insideWith = f.savedInsideWith
	return nil
}

func (p *Parser) tryStatement() error {
	if err := p.consume(lexer.KindLeftBrace, "LEFT_BRACE_EXPECTED"); err != nil {
		return err
	}
	p.em.Emit(bytecode.OpTryCreateContext)
	p.contextDepth++
	p.pushFrame(&frame{tag: TagTry, try: tryBlock})
	return nil
}

func (p *Parser) endTry() error {
	f := p.frames.top()
	switch f.try {
	case tryBlock:
		if p.match(lexer.KindCatch) {
			f.try = catchBlock
			if err := p.consume(lexer.KindLeftParen, "LEFT_PAREN_EXPECTED"); err != nil {
				return err
			}
			idx, err := p.expectIdent()
			if err != nil {
				return err
			}
			if err := p.consume(lexer.KindRightParen, "RIGHT_PAREN_EXPECTED"); err != nil {
				return err
			}
			p.em.EmitLiteral(bytecode.OpCatch, idx)
			if err := p.consume(lexer.KindLeftBrace, "LEFT_BRACE_EXPECTED"); err != nil {
				return err
			}
			return nil
		}
		if p.match(lexer.KindFinally) {
			f.try = finallyBlock
			p.em.Emit(bytecode.OpFinally)
			if err := p.consume(lexer.KindLeftBrace, "LEFT_BRACE_EXPECTED"); err != nil {
				return err
			}
			return nil
		}
		return p.fail("CATCH_FINALLY_EXPECTED")
	case catchBlock:
		if p.match(lexer.KindFinally) {
			f.try = finallyBlock
			p.em.Emit(bytecode.OpFinally)
			if err := p.consume(lexer.KindLeftBrace, "LEFT_BRACE_EXPECTED"); err != nil {
				return err
			}
			return nil
		}
		// a bare catch with no following finally implicitly closes the
		// context, per spec.md §4.3 and SPEC_FULL.md's Open Question #3.
		p.em.Emit(bytecode.OpContextEnd)
		p.contextDepth--
		p.frames.pop()
		return p.enderCascade()
	case finallyBlock:
		p.em.Emit(bytecode.OpContextEnd)
		p.contextDepth--
		p.frames.pop()
		return p.enderCascade()
	}
	return p.fail("CATCH_FINALLY_EXPECTED")
}

func (p *Parser) returnStatement() error {
	if !p.insideFunction {
		return p.fail("INVALID_RETURN")
	}
	if p.tok.WasNewline || p.check(lexer.KindSemicolon) || p.check(lexer.KindRightBrace) || p.check(lexer.KindEOS) {
		p.em.Emit(bytecode.OpReturnWithUndefined)
		return nil
	}
	if err := p.expr(); err != nil {
		return err
	}
	p.em.Emit(bytecode.OpReturn)
	return nil
}

func (p *Parser) throwStatement() error {
	if p.tok.WasNewline {
		return p.fail("INVALID_EXPRESSION")
	}
	if err := p.expr(); err != nil {
		return err
	}
	p.em.Emit(bytecode.OpThrow)
	return nil
}

func (p *Parser) exprStatement() error {
	if err := p.expr(); err != nil {
		return err
	}
	p.em.Emit(bytecode.OpPop)
	return nil
}
