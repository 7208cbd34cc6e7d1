// Package vm is the skeletal interpreter spec.md §1 scopes out of the
// parsing work: a minimal stack machine executing the
// literal/arithmetic/comparison/unary opcode subset bytecode.OpCode
// defines, enough to round-trip a simple expression end to end the
// same way golox's own skeletal vm.go only implemented
// OpAdd/Sub/Mul/Div/Neg/Const/Return. Opcodes for with/for-in/try
// contexts and calls/closures are deliberately absent from the
// dispatch switch below, not stubbed to panic: spec.md treats the VM
// as a consumer of the emitted bytecode, not part of the
// specification.
package vm

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/debug"
	e "github.com/nyxwolf/goecma/errors"
	"github.com/nyxwolf/goecma/parser"
	"github.com/nyxwolf/goecma/pool"
)

type VM struct {
	chunk *bytecode.Chunk
	ip    int
	stack []Value
}

func NewVM() *VM { return &VM{} }

func (vm *VM) push(val Value) { vm.stack = append(vm.stack, val) }

func (vm *VM) pop() (last Value) {
	n := len(vm.stack)
	vm.stack, last = vm.stack[:n-1], vm.stack[n-1]
	return
}

func (vm *VM) REPL() error {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(">> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		val, err := vm.Interpret(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(val)
	}
}

// Interpret compiles and runs src, returning whatever value the chunk
// produced (an explicit `return` inside a function body, or
// NewUndefined() for a plain statement sequence that never returns —
// top-level expression statements discard their own value via OpPop,
// exactly as a real ECMAScript program does; there is no completion-
// value tracking layered on top here).
func (vm *VM) Interpret(src string) (Value, error) {
	chunk, err := parser.Compile(src)
	if err != nil {
		return NewUndefined(), err
	}
	return vm.Run(chunk)
}

// Run executes chunk from its first instruction, stopping at an
// explicit OpReturn/OpReturnWithUndefined or at the end of the code
// stream, whichever comes first.
func (vm *VM) Run(chunk *bytecode.Chunk) (Value, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = vm.stack[:0]
	return vm.run()
}

func literalValue(entry pool.Entry) Value {
	switch entry.Kind {
	case pool.KindNumber:
		return VNum(entry.Num)
	case pool.KindString, pool.KindRegexp:
		return VString(entry.Text)
	default:
		// pool.KindIdent/KindFunction resolve through environment/closure
		// machinery this skeletal VM does not have; see DESIGN.md.
		return NewUndefined()
	}
}

func (vm *VM) run() (Value, error) {
	if vm.chunk == nil {
		return NewUndefined(), &e.RuntimeError{Line: -1, Reason: "chunk uninitialized"}
	}

	readByte := func() (b byte) {
		b = vm.chunk.Code[vm.ip]
		vm.ip++
		return
	}
	readOperand := func() int {
		idx := int(readByte())
		return idx
	}

	binaryNumeric := func(name string, f func(Value, Value) (Value, bool)) error {
		rhs := vm.pop()
		lhs := vm.pop()
		res, ok := f(lhs, rhs)
		if !ok {
			return &e.RuntimeError{Line: vm.chunk.Lines[vm.ip-1], Reason: name + ": operand is not a number"}
		}
		vm.push(res)
		return nil
	}
	fail := func(err error) (Value, error) { return NewUndefined(), err }

	for vm.ip < len(vm.chunk.Code) {
		if debug.DEBUG {
			logrus.Debugln(vm.stackTrace())
			instDump, _ := vm.chunk.DisassembleInst(vm.ip)
			logrus.Debugln(instDump)
		}
		oldIP := vm.ip
		switch op := bytecode.OpCode(readByte()); op {
		case bytecode.OpPop:
			vm.pop()
		case bytecode.OpDup:
			top := vm.stack[len(vm.stack)-1]
			vm.push(top)

		case bytecode.OpPushLiteral:
			entry := vm.chunk.Consts.Get(readOperand())
			vm.push(literalValue(entry))
		case bytecode.OpPushUndefined, bytecode.OpPushUndefinedBase:
			vm.push(NewUndefined())
		case bytecode.OpPushNull:
			vm.push(VNull{})
		case bytecode.OpPushTrue:
			vm.push(VBool(true))
		case bytecode.OpPushFalse:
			vm.push(VBool(false))

		case bytecode.OpAdd:
			if err := binaryNumeric("add", VAdd); err != nil {
				return fail(err)
			}
		case bytecode.OpSub:
			if err := binaryNumeric("sub", VSub); err != nil {
				return fail(err)
			}
		case bytecode.OpMul:
			if err := binaryNumeric("mul", VMul); err != nil {
				return fail(err)
			}
		case bytecode.OpDiv:
			if err := binaryNumeric("div", VDiv); err != nil {
				return fail(err)
			}
		case bytecode.OpMod:
			if err := binaryNumeric("mod", VMod); err != nil {
				return fail(err)
			}
		case bytecode.OpNeg:
			v, ok := VNeg(vm.pop())
			if !ok {
				return fail(&e.RuntimeError{Line: vm.chunk.Lines[oldIP], Reason: "neg: operand is not a number"})
			}
			vm.push(v)
		case bytecode.OpPos:
			v, ok := VPos(vm.pop())
			if !ok {
				return fail(&e.RuntimeError{Line: vm.chunk.Lines[oldIP], Reason: "pos: operand is not a number"})
			}
			vm.push(v)
		case bytecode.OpLogicalNot:
			vm.push(!VTruthy(vm.pop()))

		case bytecode.OpEqual:
			rhs, lhs := vm.pop(), vm.pop()
			vm.push(VBool(VStrictEqual(lhs, rhs)))
		case bytecode.OpNotEqual:
			rhs, lhs := vm.pop(), vm.pop()
			vm.push(!VBool(VStrictEqual(lhs, rhs)))
		case bytecode.OpStrictEqual:
			rhs, lhs := vm.pop(), vm.pop()
			vm.push(VBool(VStrictEqual(lhs, rhs)))
		case bytecode.OpStrictNotEqual:
			rhs, lhs := vm.pop(), vm.pop()
			vm.push(!VBool(VStrictEqual(lhs, rhs)))
		case bytecode.OpLess:
			if err := binaryNumeric("less", VLess); err != nil {
				return fail(err)
			}
		case bytecode.OpGreater:
			if err := binaryNumeric("greater", VGreater); err != nil {
				return fail(err)
			}
		case bytecode.OpLessEqual:
			if err := binaryNumeric("lessEqual", VLessEqual); err != nil {
				return fail(err)
			}
		case bytecode.OpGreaterEqual:
			if err := binaryNumeric("greaterEqual", VGreaterEqual); err != nil {
				return fail(err)
			}

		case bytecode.OpReturn:
			return vm.pop(), nil
		case bytecode.OpReturnWithUndefined:
			return NewUndefined(), nil

		default:
			// with/for-in/try contexts, property/array/object
			// construction, calls, and assignment targets reach here:
			// none are wired (see package doc). The error names the
			// opcode rather than panicking so a REPL session can report
			// it and continue.
			return fail(&e.RuntimeError{
				Line:   vm.chunk.Lines[oldIP],
				Reason: fmt.Sprintf("unimplemented opcode %s", op),
			})
		}
	}

	if len(vm.stack) > 0 {
		return vm.stack[len(vm.stack)-1], nil
	}
	return NewUndefined(), nil
}

func (vm *VM) stackTrace() string {
	res := "          "
	for _, slot := range vm.stack {
		res += fmt.Sprintf("[ %s ]", slot)
	}
	return res
}
