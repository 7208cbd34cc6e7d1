package debug

import "fmt"

// DEBUG gates assertions and the disassembly trace the parser and vm
// packages emit through logrus. Off by default; cmd flips it on via
// -v/--verbosity.
var DEBUG = false

func SetDebug(b bool) { DEBUG = b }

func Assertf(b bool, format string, a ...any) {
	if DEBUG && !b {
		panic(fmt.Sprintf(format, a...))
	}
}

func AssertEq[T comparable](expected, got T) { Assertf(expected == got, "%v != %v", expected, got) }
