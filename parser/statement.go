package parser

import (
	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/lexer"
)

// statement dispatches on the current token kind, per spec.md §4.3's
// main loop. A statement-starter may push a frame and return having
// only begun a construct (e.g. `{`); the statement-terminator loop
// below is what actually closes constructs.
func (p *Parser) statement() error {
	switch p.tok.Kind {
	case lexer.KindLeftBrace:
		p.advance()
		p.pushFrame(&frame{tag: TagBlock})
		return nil
	case lexer.KindRightBrace:
		return p.endFrame()
	case lexer.KindVar:
		p.advance()
		if err := p.varStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	case lexer.KindFunction:
		p.advance()
		if err := p.functionStatement(); err != nil {
			return err
		}
		return nil
	case lexer.KindIf:
		p.advance()
		return p.ifStatement()
	case lexer.KindSwitch:
		p.advance()
		return p.switchStatement()
	case lexer.KindDo:
		p.advance()
		return p.doStatement()
	case lexer.KindWhile:
		p.advance()
		return p.whileStatement()
	case lexer.KindFor:
		p.advance()
		return p.forStatement()
	case lexer.KindWith:
		p.advance()
		return p.withStatement()
	case lexer.KindTry:
		p.advance()
		return p.tryStatement()
	case lexer.KindReturn:
		p.advance()
		if err := p.returnStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	case lexer.KindThrow:
		p.advance()
		if err := p.throwStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	case lexer.KindBreak:
		p.advance()
		if err := p.breakStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	case lexer.KindContinue:
		p.advance()
		if err := p.continueStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	case lexer.KindDebugger:
		p.advance()
		p.em.Emit(bytecode.OpDebugger)
		return p.afterSimpleStatement()
	case lexer.KindSemicolon:
		p.advance()
		return nil
	case lexer.KindIdent:
		if p.peekIsLabel() {
			return p.labelStatement()
		}
		if err := p.exprStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	default:
		if err := p.exprStatement(); err != nil {
			return err
		}
		return p.afterSimpleStatement()
	}
}

// afterSimpleStatement runs the statement-terminator check (spec.md
// §4.3's "statement terminator loop") followed by the single-token
// ender cascade that can close several frames at once (the
// `if (…) if (…) …` collapse).
func (p *Parser) afterSimpleStatement() error {
	if err := p.statementTerminator(); err != nil {
		return err
	}
	return p.enderCascade()
}

func (p *Parser) statementTerminator() error {
	switch {
	case p.check(lexer.KindSemicolon):
		p.advance()
		return nil
	case p.check(lexer.KindRightBrace), p.check(lexer.KindEOS), p.tok.WasNewline:
		return nil // ASI
	default:
		return p.fail("SEMICOLON_EXPECTED")
	}
}

// enderCascade repeatedly closes single-token enders: LABEL (patch its
// breaks), IF (either fires its else branch or closes), ELSE (closes),
// DO_WHILE (already closed by its own `while(...)` tail, nothing to do
// here), WHILE/FOR (re-tokenize and emit the deferred condition/update,
// see closeWhile/closeFor), WITH (emit CONTEXT_END). Any other tag on
// top, DO_WHILE and FOR_IN included, ends the cascade without error:
// doStatement and forInStatement pop their own frames once their body
// statement returns.
func (p *Parser) enderCascade() error {
	for {
		tag, ok := p.frames.topTag()
		if !ok {
			return nil
		}
		switch tag {
		case TagLabel:
			f := p.frames.pop()
			p.em.SetBreaksToCurrentPosition(f.breakList)
		case TagIf:
			if p.check(lexer.KindElse) {
				p.advance()
				f := p.frames.top()
				elseBranch := p.em.EmitForwardBranch(bytecode.OpJumpForward)
				p.em.SetBranchToCurrentPosition(f.branch)
				f.tag = TagElse
				f.branch = elseBranch
				if err := p.statement(); err != nil {
					return err
				}
				continue
			}
			f := p.frames.pop()
			p.em.SetBranchToCurrentPosition(f.branch)
		case TagElse:
			f := p.frames.pop()
			p.em.SetBranchToCurrentPosition(f.branch)
		case TagWhile:
			if err := p.closeWhile(); err != nil {
				return err
			}
		case TagFor:
			if err := p.closeFor(); err != nil {
				return err
			}
		case TagWith:
			if err := p.closeWith(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// endFrame handles a `}` reaching the main dispatch switch: it must
// close the innermost *terminable* frame (BLOCK, SWITCH[_NO_DEFAULT],
// TRY); anything else on top is a syntax error.
func (p *Parser) endFrame() error {
	tag, ok := p.frames.topTag()
	if !ok {
		return p.fail("STATEMENT_EXPECTED")
	}
	switch tag {
	case TagBlock:
		p.advance()
		p.frames.pop()
		return p.enderCascade()
	case TagSwitch, TagSwitchNoDefault:
		p.advance()
		return p.endSwitch()
	case TagTry:
		p.advance()
		return p.endTry()
	default:
		return p.fail("STATEMENT_EXPECTED")
	}
}

func (p *Parser) peekIsLabel() bool {
	return p.peek().Kind == lexer.KindColon
}
