package vm

// Value is the skeletal VM's runtime representation, grounded on
// golox's vm.Value tagged-interface shape and extended with the two
// extra primitives ECMAScript's literal set needs beyond Lox's
// (VString, and VUndefined split out from VNull — spec.md §3
// distinguishes undefined from null as distinct primitive values).
import (
	"fmt"
	"math"
)

type Value interface {
	isValue()
	String() string
}

func NewUndefined() Value { return VUndefined{} }

type VUndefined struct{}

func (VUndefined) isValue()       {}
func (VUndefined) String() string { return "undefined" }

type VNull struct{}

func (VNull) isValue()       {}
func (VNull) String() string { return "null" }

type VBool bool

func (VBool) isValue()         {}
func (v VBool) String() string { return fmt.Sprintf("%t", v) }

type VNum float64

func (VNum) isValue()         {}
func (v VNum) String() string { return fmt.Sprintf("%g", v) }

type VString string

func (VString) isValue()         {}
func (v VString) String() string { return string(v) }

func VAdd(v, w Value) (Value, bool) {
	if vn, ok := v.(VNum); ok {
		if wn, ok := w.(VNum); ok {
			return vn + wn, true
		}
	}
	// spec.md's arithmetic-opcode subset stops short of full ToPrimitive
	// coercion (object conversion, mixed-type operands); only the
	// number+number and string+string cases are wired.
	if vs, ok := v.(VString); ok {
		if ws, ok := w.(VString); ok {
			return vs + ws, true
		}
	}
	return NewUndefined(), false
}

func VSub(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return vn - wn, true
	}
	return NewUndefined(), false
}

func VMul(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return vn * wn, true
	}
	return NewUndefined(), false
}

func VDiv(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return vn / wn, true
	}
	return NewUndefined(), false
}

func VMod(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return VNum(math.Mod(float64(vn), float64(wn))), true
	}
	return NewUndefined(), false
}

func VGreater(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return VBool(vn > wn), true
	}
	return NewUndefined(), false
}

func VGreaterEqual(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return VBool(vn >= wn), true
	}
	return NewUndefined(), false
}

func VLess(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return VBool(vn < wn), true
	}
	return NewUndefined(), false
}

func VLessEqual(v, w Value) (Value, bool) {
	vn, ok1 := v.(VNum)
	wn, ok2 := w.(VNum)
	if ok1 && ok2 {
		return VBool(vn <= wn), true
	}
	return NewUndefined(), false
}

func VNeg(v Value) (Value, bool) {
	if vn, ok := v.(VNum); ok {
		return -vn, true
	}
	return NewUndefined(), false
}

func VPos(v Value) (Value, bool) {
	if vn, ok := v.(VNum); ok {
		return vn, true
	}
	return NewUndefined(), false
}

// VTruthy implements ToBoolean for the value subset this VM has.
func VTruthy(v Value) VBool {
	switch v := v.(type) {
	case VBool:
		return v
	case VUndefined, VNull:
		return false
	case VNum:
		return v != 0
	case VString:
		return v != ""
	default:
		return true
	}
}

// VStrictEqual implements `===`: no type coercion.
func VStrictEqual(v, w Value) VBool {
	switch v := v.(type) {
	case VBool:
		w, ok := w.(VBool)
		return VBool(ok && v == w)
	case VNum:
		w, ok := w.(VNum)
		return VBool(ok && v == w)
	case VString:
		w, ok := w.(VString)
		return VBool(ok && v == w)
	case VUndefined:
		_, ok := w.(VUndefined)
		return VBool(ok)
	case VNull:
		_, ok := w.(VNull)
		return VBool(ok)
	default:
		return false
	}
}
