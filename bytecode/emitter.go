package bytecode

// Emitter is the append-only bytecode writer spec.md §6 names only by
// contract (`emit`, `emit_literal`, `emit_forward_branch`, ...). It
// keeps a one-instruction peephole slot: the most recently requested
// non-branch instruction is buffered here, not yet written to the
// chunk, so the parser can still cancel it (`var x;` with no
// initializer) or rewrite its opcode in place (the for-in lvalue
// rewrite: PUSH_IDENT -> ASSIGN_IDENT) before the next emission
// commits it. Branch instructions always flush the pending slot first
// and are written immediately, since their patch handle must be valid
// the instant the caller receives it.
type Emitter struct {
	Chunk *Chunk
	line  int

	hasPending     bool
	pendingOp      OpCode
	pendingOperand []byte
}

func NewEmitter(c *Chunk) *Emitter {
	return &Emitter{Chunk: c, line: 1}
}

func (e *Emitter) SetLine(line int) { e.line = line }

// FlushCBC commits the peephole slot, if any, to the chunk.
func (e *Emitter) FlushCBC() {
	if !e.hasPending {
		return
	}
	e.Chunk.WriteOp(e.pendingOp, e.line)
	for _, b := range e.pendingOperand {
		e.Chunk.WriteByte(b, e.line)
	}
	e.hasPending = false
	e.pendingOperand = nil
}

func (e *Emitter) stage(op OpCode, operand []byte) {
	e.FlushCBC()
	e.hasPending = true
	e.pendingOp = op
	e.pendingOperand = operand
}

// Emit buffers a no-operand instruction in the peephole slot.
func (e *Emitter) Emit(op OpCode) { e.stage(op, nil) }

// EmitLiteral buffers a one-byte literal-pool-index operand
// instruction in the peephole slot.
func (e *Emitter) EmitLiteral(op OpCode, idx int) {
	e.stage(op, []byte{byte(idx)})
}

// EmitLiteralFromToken is the same operation under the name spec.md
// §6 gives it; the caller has already resolved the current token's
// pool index (via lexer.ExpectIdentifier / pool.Pool.InternString) by
// the time it reaches here.
func (e *Emitter) EmitLiteralFromToken(op OpCode, idx int) { e.EmitLiteral(op, idx) }

// CancelLast discards the buffered instruction without ever writing
// it, e.g. the PUSH_IDENT emitted speculatively for a `var x;` with no
// initializer.
func (e *Emitter) CancelLast() bool {
	if !e.hasPending {
		return false
	}
	e.hasPending = false
	e.pendingOperand = nil
	return true
}

// PeekLast reports the opcode currently sitting in the peephole slot,
// and whether one is present.
func (e *Emitter) PeekLast() (OpCode, bool) { return e.pendingOp, e.hasPending }

// RewriteLastOpcode replaces the opcode of the still-pending
// instruction in place, keeping its operand bytes untouched. Used by
// the for-in lvalue rewrite (PUSH_IDENT -> ASSIGN_IDENT, PROP_GET ->
// ASSIGN, PROP_STRING_GET -> ASSIGN_PROP_STRING) and by the
// do/while backward-branch polarity fusion (cancelling a trailing
// LOGICAL_NOT by flipping BRANCH_IF_FALSE_BACKWARD <-> TRUE_BACKWARD
// at the call site, not here).
func (e *Emitter) RewriteLastOpcode(newOp OpCode) bool {
	if !e.hasPending {
		return false
	}
	e.pendingOp = newOp
	return true
}

// EmitForwardBranch flushes the peephole slot and writes a branch
// instruction whose target is not yet known, returning a patch handle
// pointing at the reserved 2-byte operand.
func (e *Emitter) EmitForwardBranch(op OpCode) PatchHandle {
	e.FlushCBC()
	e.Chunk.WriteOp(op, e.line)
	handle := PatchHandle(e.Chunk.Len())
	e.Chunk.WriteByte(0, e.line)
	e.Chunk.WriteByte(0, e.line)
	return handle
}

// EmitForwardBranchItem is EmitForwardBranch wrapped as a fresh,
// single-element patch list node, matching the shape spec.md §6
// names; callers that need the continue-bit discriminator wrap the
// returned handle with PushContinuePatch instead of using the node
// this returns directly.
func (e *Emitter) EmitForwardBranchItem(op OpCode) *PatchNode {
	return &PatchNode{Handle: e.EmitForwardBranch(op)}
}

// EmitBackwardBranch flushes the peephole slot and writes a branch to
// an already-known target offset.
func (e *Emitter) EmitBackwardBranch(op OpCode, target int) {
	e.FlushCBC()
	e.Chunk.WriteOp(op, e.line)
	e.Chunk.WriteByte(0, e.line)
	e.Chunk.WriteByte(0, e.line)
	e.Chunk.WriteUint16At(e.Chunk.Len()-branchOperandSize, uint16(target))
}

// SetBranchToCurrentPosition patches a single forward-branch handle to
// the current write position.
func (e *Emitter) SetBranchToCurrentPosition(h PatchHandle) {
	e.FlushCBC()
	e.Chunk.WriteUint16At(int(h), uint16(e.Chunk.Len()))
}

// SetBreaksToCurrentPosition walks list and patches every break-kind
// (non-continue) node to the current write position, used at loop end
// for `break`.
func (e *Emitter) SetBreaksToCurrentPosition(list *PatchNode) {
	e.FlushCBC()
	target := uint16(e.Chunk.Len())
	for n := list; n != nil; n = n.Next {
		if !n.IsContinue() {
			e.Chunk.WriteUint16At(int(n.rawHandle()), target)
		}
	}
}

// SetContinuesToCurrentPosition patches every continue-kind node in
// list to target (the loop's condition/update re-entry point, which
// is generally not the current write position at loop end).
func (e *Emitter) SetContinuesToCurrentPosition(list *PatchNode, target int) {
	e.FlushCBC()
	for n := list; n != nil; n = n.Next {
		if n.IsContinue() {
			e.Chunk.WriteUint16At(int(n.rawHandle()), uint16(target))
		}
	}
}

// EmitExt buffers an extended (two-byte-opcode-space) instruction:
// OpExtEscape followed by the ExtOpCode byte.
func (e *Emitter) EmitExt(ext ExtOpCode) {
	e.stage(OpExtEscape, []byte{byte(ext)})
}

func (e *Emitter) EmitExtLiteral(ext ExtOpCode, idx int) {
	e.stage(OpExtEscape, []byte{byte(ext), byte(idx)})
}
