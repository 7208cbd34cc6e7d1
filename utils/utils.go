package utils

import "golang.org/x/exp/constraints"

func Box[T any](t T) *T                         { return &t }
func IntToBool[I constraints.Integer](i I) bool { return i != 0 }

func BoolToInt[I constraints.Integer](b bool) I {
	if b {
		return 1
	}
	return 0
}

// CeilDiv returns ceil(a/b) for positive integers.
func CeilDiv[I constraints.Integer](a, b I) I {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Min2 returns the smaller of two ordered values; stdlib's min() isn't
// available under this module's Go version pin.
func Min2[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
