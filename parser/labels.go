package parser

// labels.go implements labeled statements and break/continue target
// resolution, spec.md §4.3's label table made concrete over the frame
// stack: a label is just another frame (TagLabel), and break/continue
// walk the stack looking for the frame they target exactly the way
// frame.go's walk already supports for FreeJumps.

import (
	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/lexer"
)

// labelStatement consumes `ident:` and pushes a TagLabel frame around
// the statement it decorates. The frame is popped and its break list
// patched by enderCascade's generic TagLabel case, not here, since the
// decorated statement may itself open further frames (a block, a
// loop) that only close well after labelStatement returns.
func (p *Parser) labelStatement() error {
	name := p.tok.Text
	if p.enclosingLabel(name) {
		return p.fail("DUPLICATED_LABEL")
	}
	p.advance() // consume the identifier
	p.advance() // consume ':'
	p.pushFrame(&frame{tag: TagLabel, labelName: name})
	return p.statement()
}

// enclosingLabel reports whether name already labels a statement the
// current position is nested inside, per spec.md §4.4/§8: `L: while
// (1) { L: ...; }` must fail with DUPLICATED_LABEL rather than
// silently shadowing the outer label.
func (p *Parser) enclosingLabel(name string) bool {
	found := false
	p.frames.walk(func(f *frame) bool {
		if f.tag == TagLabel && f.labelName == name {
			found = true
			return false
		}
		return true
	})
	return found
}

// optionalLabelRef parses the bare identifier break/continue may carry,
// per spec.md's ASI rule: a line terminator before it means there is no
// label, not a reference to one.
func (p *Parser) optionalLabelRef() string {
	if p.tok.WasNewline {
		return ""
	}
	switch p.tok.Kind {
	case lexer.KindIdent, lexer.KindGet, lexer.KindSet:
		name := p.tok.Text
		p.advance()
		return name
	default:
		return ""
	}
}

func (p *Parser) breakStatement() error {
	label := p.optionalLabelRef()
	target, err := p.findBreakTarget(label)
	if err != nil {
		return err
	}
	h := p.em.EmitForwardBranch(p.exitJumpOp(target, true))
	target.breakList = bytecode.PushBreakPatch(target.breakList, h)
	return nil
}

func (p *Parser) continueStatement() error {
	label := p.optionalLabelRef()
	target, err := p.findContinueTarget(label)
	if err != nil {
		return err
	}
	h := p.em.EmitForwardBranch(p.exitJumpOp(target, false))
	target.breakList = bytecode.PushContinuePatch(target.breakList, h)
	return nil
}

// exitJumpOp picks OpJumpForwardExitContext over a plain OpJumpForward
// when the jump unwinds past at least one still-open with/for-in/try
// runtime context (spec.md §4.4/§8).
//
// target.ctxDepth is the context depth in effect when target was
// pushed. A continue always lands back inside target's own context
// (the loop body re-entry point), so the depth expected on landing is
// just target.ctxDepth. A break lands *after* target entirely — which,
// for a for-in loop, is also after that loop's own runtime context is
// torn down (forInStatement's OpContextEnd sits between the loop body and
// the position break patches jump to, so a direct break skips right
// over it), so a break out of a TagForIn expects one less than
// target.ctxDepth. Any other breakable construct (while/for/do-while/
// switch) owns no context of its own, so breaking out of it expects
// target.ctxDepth unchanged. Whenever the current, possibly deeper,
// contextDepth exceeds what's expected on landing, the jump crosses a
// context boundary the VM must unwind at runtime.
func (p *Parser) exitJumpOp(target *frame, isBreak bool) bytecode.OpCode {
	expected := target.ctxDepth
	if isBreak && target.tag == TagForIn {
		expected--
	}
	if p.contextDepth > expected {
		return bytecode.OpJumpForwardExitContext
	}
	return bytecode.OpJumpForward
}

// findBreakTarget resolves an unlabeled break to the nearest breakable
// construct (loop or switch); a labeled break targets whatever
// statement that label decorates directly, breakable or not (`label:
// { ...; break label; }` is legal).
func (p *Parser) findBreakTarget(label string) (*frame, error) {
	if label == "" {
		var target *frame
		p.frames.walk(func(f *frame) bool {
			if f.tag.isBreakable() {
				target = f
				return false
			}
			return true
		})
		if target == nil {
			return nil, p.fail("ILLEGAL_BREAK")
		}
		return target, nil
	}

	var target *frame
	p.frames.walk(func(f *frame) bool {
		if f.tag == TagLabel && f.labelName == label {
			target = f
			return false
		}
		return true
	})
	if target == nil {
		return nil, p.fail("UNDEFINED_LABEL")
	}
	return target, nil
}

// findContinueTarget resolves an unlabeled continue to the nearest
// enclosing loop. A labeled continue must name a label that directly
// (through zero or more stacked labels, `a: b: for (...) ...`) wraps a
// loop; walking top-down, a loop frame stays the current candidate
// until either a matching label is found directly below it or a
// non-label, non-loop frame breaks the chain.
func (p *Parser) findContinueTarget(label string) (*frame, error) {
	if label == "" {
		var target *frame
		p.frames.walk(func(f *frame) bool {
			if f.tag.isLoop() {
				target = f
				return false
			}
			return true
		})
		if target == nil {
			return nil, p.fail("ILLEGAL_CONTINUE")
		}
		return target, nil
	}

	var pendingLoop, target *frame
	p.frames.walk(func(f *frame) bool {
		switch {
		case f.tag == TagLabel:
			if pendingLoop != nil && f.labelName == label {
				target = pendingLoop
				return false
			}
		case f.tag.isLoop():
			pendingLoop = f
		default:
			pendingLoop = nil
		}
		return true
	})
	if target == nil {
		return nil, p.fail("UNDEFINED_LABEL")
	}
	return target, nil
}

// freeJumps discards every outstanding frame on the error path
// (spec.md §4.5): with no host-language exceptions to unwind through,
// the caller needs the frame stack left empty, not mid-construct, once
// an error surfaces, and there is nothing left to patch a dangling
// branch to.
func (p *Parser) freeJumps() {
	for {
		if _, ok := p.frames.topTag(); !ok {
			break
		}
		p.frames.pop()
	}
	p.contextDepth = 0
}
