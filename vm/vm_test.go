package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/vm"
)

// chunkBuilder mirrors golox's cmd.appMain manual chunk construction: a tiny
// helper over bytecode.Emitter so opcode dispatch can be exercised
// directly, independent of whatever the statement/expression parser
// happens to emit for a given piece of source.
type chunkBuilder struct {
	chunk *bytecode.Chunk
	em    *bytecode.Emitter
}

func newChunkBuilder() *chunkBuilder {
	c := bytecode.NewChunk()
	return &chunkBuilder{chunk: c, em: bytecode.NewEmitter(c)}
}

func (b *chunkBuilder) num(n float64) *chunkBuilder {
	idx := b.chunk.Consts.InternNumber(n)
	b.em.EmitLiteral(bytecode.OpPushLiteral, idx)
	return b
}

func (b *chunkBuilder) op(o bytecode.OpCode) *chunkBuilder {
	b.em.Emit(o)
	return b
}

func (b *chunkBuilder) build() *bytecode.Chunk {
	b.em.FlushCBC()
	return b.chunk
}

func TestArithmetic(t *testing.T) {
	// (1.2 + 3.4) / 5.6, negated: mirrors golox's cmd.appMain sample chunk.
	chunk := newChunkBuilder().
		num(1.2).num(3.4).op(bytecode.OpAdd).
		num(5.6).op(bytecode.OpDiv).
		op(bytecode.OpNeg).
		op(bytecode.OpReturn).
		build()

	val, err := vm.NewVM().Run(chunk)
	assert.NoError(t, err)
	assert.Equal(t, "-0.8214285714285714", val.String())
}

func TestComparison(t *testing.T) {
	chunk := newChunkBuilder().
		num(4).num(2).num(3).op(bytecode.OpMul).op(bytecode.OpGreater).
		op(bytecode.OpReturn).
		build()

	val, err := vm.NewVM().Run(chunk)
	assert.NoError(t, err)
	assert.Equal(t, "false", val.String())
}

func TestDup(t *testing.T) {
	chunk := newChunkBuilder().
		num(7).op(bytecode.OpDup).op(bytecode.OpAdd).
		op(bytecode.OpReturn).
		build()

	val, err := vm.NewVM().Run(chunk)
	assert.NoError(t, err)
	assert.Equal(t, "14", val.String())
}

func TestArithmeticTypeError(t *testing.T) {
	chunk := newChunkBuilder().
		op(bytecode.OpPushTrue).op(bytecode.OpPushNull).op(bytecode.OpAdd).
		op(bytecode.OpReturn).
		build()

	_, err := vm.NewVM().Run(chunk)
	assert.ErrorContains(t, err, "operand is not a number")
}

func TestInterpretLiteralExpression(t *testing.T) {
	val, err := vm.NewVM().Interpret("2 + 2 * 3;")
	assert.NoError(t, err)
	// a bare expression statement discards its value via OpPop, same
	// as real ECMAScript: nothing is left to return.
	assert.Equal(t, "undefined", val.String())
}

func TestInterpretParseError(t *testing.T) {
	_, err := vm.NewVM().Interpret("var ;")
	assert.Error(t, err)
}

func TestInterpretUnimplementedOpcode(t *testing.T) {
	// identifier assignment compiles cleanly (OpAssignIdent) but this
	// skeletal VM has no environment to assign into yet.
	_, err := vm.NewVM().Interpret("x = 1;")
	assert.ErrorContains(t, err, "unimplemented opcode")
}

func TestStrictEquality(t *testing.T) {
	chunk := newChunkBuilder().
		num(3).num(3).op(bytecode.OpStrictEqual).
		op(bytecode.OpReturn).
		build()

	val, err := vm.NewVM().Run(chunk)
	assert.NoError(t, err)
	assert.Equal(t, "true", val.String())
}
