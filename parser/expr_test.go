package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nyxwolf/goecma/parser"
)

// compile is the table-test helper every case below shares: it asserts
// the source compiles cleanly and returns the disassembly text so
// individual opcodes can be asserted present in order via
// assert.Contains, the same shape golox's own TestPair fixtures use but
// against a disassembly string instead of an interpreted value (this
// package has no VM to round-trip through).
func compile(t *testing.T, src string) string {
	t.Helper()
	chunk, err := parser.Compile(src)
	assert.NoError(t, err)
	return chunk.Disassemble(src)
}

func TestPlainAssignmentIdent(t *testing.T) {
	dump := compile(t, "x = 1;")
	assert.Contains(t, dump, "PUSH_LITERAL")
	assert.Contains(t, dump, "ASSIGN_IDENT")
	assert.NotContains(t, dump, "PUSH_IDENT ") // the speculative read is cancelled
}

func TestCompoundAssignmentProp(t *testing.T) {
	dump := compile(t, "a.b += 1;")
	assert.Contains(t, dump, "PROP_STRING_GET")
	assert.Contains(t, dump, "ADD")
	assert.Contains(t, dump, "ASSIGN_PROP_STRING")
}

func TestCompoundAssignmentComputed(t *testing.T) {
	dump := compile(t, "a[b] %= 2;")
	assert.Contains(t, dump, "PROP_GET")
	assert.Contains(t, dump, "MOD")
	assert.Contains(t, dump, "ASSIGN")
}

func TestPrefixIncrement(t *testing.T) {
	dump := compile(t, "++x;")
	assert.Contains(t, dump, "ADD")
	assert.Contains(t, dump, "ASSIGN_IDENT")
}

func TestPostfixDecrement(t *testing.T) {
	dump := compile(t, "x--;")
	assert.Contains(t, dump, "DUP")
	assert.Contains(t, dump, "SUB")
	assert.Contains(t, dump, "ASSIGN_IDENT")
	assert.Contains(t, dump, "POP")
}

func TestPostfixNoNewlineBeforeOperator(t *testing.T) {
	// ASI: a line terminator before ++ means it is NOT a postfix
	// operator on x; it starts a new statement instead (here `++y`,
	// a valid prefix increment handled by exprPrefix's prefix ++ case).
	dump := compile(t, "x\n++y;")
	assert.Contains(t, dump, "PUSH_IDENT")
	assert.Contains(t, dump, "ADD")
}

func TestLogicalAndShortCircuit(t *testing.T) {
	dump := compile(t, "a && b;")
	assert.Contains(t, dump, "DUP")
	assert.Contains(t, dump, "BRANCH_IF_FALSE_FORWARD")
	assert.Contains(t, dump, "POP")
}

func TestLogicalOrShortCircuit(t *testing.T) {
	dump := compile(t, "a || b;")
	assert.Contains(t, dump, "BRANCH_IF_TRUE_FORWARD")
}

func TestTernaryChaining(t *testing.T) {
	dump := compile(t, "a ? b : c ? d : e;")
	assert.Contains(t, dump, "BRANCH_IF_FALSE_FORWARD")
	assert.Contains(t, dump, "JUMP_FORWARD")
}

func TestMemberAndCallChain(t *testing.T) {
	dump := compile(t, "a.b[c](d, e);")
	assert.Contains(t, dump, "PROP_STRING_GET")
	assert.Contains(t, dump, "PROP_GET")
	assert.Contains(t, dump, "CALL")
}

func TestNewWithArgs(t *testing.T) {
	dump := compile(t, "new a.b(c);")
	assert.Contains(t, dump, "NEW")
}

func TestNewWithoutParens(t *testing.T) {
	dump := compile(t, "new Foo;")
	assert.Contains(t, dump, "NEW")
}

func TestArrayLiteralSkipsElisions(t *testing.T) {
	dump := compile(t, "[1,,3];")
	assert.Contains(t, dump, "NEW_ARRAY")
	assert.Contains(t, dump, "ARRAY_APPEND")
}

func TestObjectLiteralAccessor(t *testing.T) {
	dump := compile(t, "({get x() { return 1; }});")
	assert.Contains(t, dump, "OBJECT_SET")
}

func TestObjectLiteralReservedWordKey(t *testing.T) {
	dump := compile(t, "({if: 1, catch: 2});")
	assert.Contains(t, dump, "OBJECT_SET")
}

func TestRegexVsDivisionAmbiguity(t *testing.T) {
	divDump := compile(t, "a = b / c;")
	assert.Contains(t, divDump, "DIV")

	regexDump := compile(t, "a = /foo/g;")
	assert.Contains(t, regexDump, "PUSH_LITERAL")
	assert.NotContains(t, regexDump, "DIV")
}

func TestRegexAfterCompoundSlashAssign(t *testing.T) {
	// a /= /foo/ would be nonsensical as source; the case that matters
	// is a primary-position regex immediately following an operator
	// that the lexer's default (non-primary) dispatch mis-scans as
	// KindSlashAssign instead of KindSlash.
	dump := compile(t, "x = /=foo/;")
	assert.Contains(t, dump, "PUSH_LITERAL")
}

func TestFunctionExpression(t *testing.T) {
	dump := compile(t, "var f = function add(a, b) { return a + b; };")
	assert.Contains(t, dump, "PUSH_LITERAL")
}

func TestGetSetAsPlainIdentifiers(t *testing.T) {
	dump := compile(t, "var get = 1; var set = 2; get + set;")
	assert.Contains(t, dump, "PUSH_IDENT")
}

func TestLabeledBreak(t *testing.T) {
	dump := compile(t, "outer: { break outer; }")
	assert.Contains(t, dump, "JUMP_FORWARD")
}

func TestLabeledContinueThroughStackedLabels(t *testing.T) {
	dump := compile(t, "a: b: for (;;) { continue a; }")
	assert.Contains(t, dump, "JUMP_FORWARD")
}

func TestUnlabeledContinueTargetsNearestLoop(t *testing.T) {
	dump := compile(t, "for (;;) { while (true) { continue; } }")
	assert.Contains(t, dump, "JUMP_FORWARD")
}

func TestUndefinedLabelIsAnError(t *testing.T) {
	_, err := parser.Compile("break nowhere;")
	assert.Error(t, err)
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	_, err := parser.Compile("break;")
	assert.Error(t, err)
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	_, err := parser.Compile("continue;")
	assert.Error(t, err)
}

func TestLabeledBreakOutOfNonBreakableBlock(t *testing.T) {
	// a label may decorate any statement, breakable or not; break can
	// still target it by name.
	dump := compile(t, "done: { x = 1; break done; x = 2; }")
	assert.Contains(t, dump, "JUMP_FORWARD")
}
