package bytecode

import (
	"fmt"

	"github.com/nyxwolf/goecma/pool"
)

// Chunk is the append-only emitted-bytecode buffer for one compilation
// unit (program or function body), paired with its line table and
// literal pool. Grounded on golox's vm.Chunk, generalized with a
// *pool.Pool in place of a flat []Value constant slice so identifiers
// and string/number/regexp literals share one interning table across
// the whole parse.
type Chunk struct {
	Code   []byte
	Lines  []int
	Consts *pool.Pool
}

func NewChunk() *Chunk {
	return &Chunk{Consts: pool.New()}
}

// Len is the current write cursor, i.e. the offset the next emitted
// byte will land at.
func (c *Chunk) Len() int { return len(c.Code) }

func (c *Chunk) WriteByte(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

func (c *Chunk) WriteOp(op OpCode, line int) {
	c.WriteByte(byte(op), line)
}

// WriteUint16At patches a 2-byte big-endian branch offset already
// reserved at offset (by a prior WriteOp + placeholder bytes).
func (c *Chunk) WriteUint16At(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

func (c *Chunk) ReadUint16At(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

// DisassembleInst decodes one instruction at offset, returning its
// textual form and the offset of the next instruction. Mirrors golox's
// Chunk.DisassembleInst switch-on-operand-size shape, extended for the
// branch/literal operand widths this opcode set uses.
func (c *Chunk) DisassembleInst(offset int) (string, int) {
	op := OpCode(c.Code[offset])
	if op == OpExtEscape {
		ext := ExtOpCode(c.Code[offset+1])
		return fmt.Sprintf("%04d EXT %s", offset, ext.String()), offset + 2
	}
	switch sz := op.OperandSize(); sz {
	case 0:
		return fmt.Sprintf("%04d %s", offset, op.String()), offset + 1
	case 1:
		idx := c.Code[offset+1]
		return fmt.Sprintf("%04d %-28s %4d", offset, op.String(), idx), offset + 2
	case branchOperandSize:
		target := c.ReadUint16At(offset + 1)
		return fmt.Sprintf("%04d %-28s -> %04d", offset, op.String(), target), offset + 1 + branchOperandSize
	default:
		return fmt.Sprintf("%04d %s <unknown operand size %d>", offset, op.String(), sz), offset + 1
	}
}

func (c *Chunk) Disassemble(name string) string {
	out := fmt.Sprintf("== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		var line string
		line, offset = c.DisassembleInst(offset)
		out += line + "\n"
	}
	return out
}
