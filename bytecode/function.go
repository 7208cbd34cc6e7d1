package bytecode

// FunctionProto is a compiled function literal: its own bytecode chunk
// plus the parameter names bound when it is called. Interned into the
// literal pool like any other constant and referenced by PUSH_LITERAL.
// Package vm's skeletal dispatch has no opcode that invokes it yet
// (closures are out of scope per spec.md §1's Non-goals), so this
// exists purely so the statement/expression parser can compile a
// function's body today without the bytecode format needing to change
// later once calls are added.
type FunctionProto struct {
	Name   string
	Params []string
	Chunk  *Chunk
}
