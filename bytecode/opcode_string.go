package bytecode

var opCodeNames = [...]string{
	OpPop:                    "POP",
	OpDup:                    "DUP",
	OpReturn:                 "RETURN",
	OpReturnWithUndefined:    "RETURN_WITH_UNDEFINED",
	OpThrow:                  "THROW",
	OpDebugger:               "DEBUGGER",
	OpPushLiteral:            "PUSH_LITERAL",
	OpPushIdent:              "PUSH_IDENT",
	OpPushUndefined:          "PUSH_UNDEFINED",
	OpPushNull:               "PUSH_NULL",
	OpPushTrue:               "PUSH_TRUE",
	OpPushFalse:              "PUSH_FALSE",
	OpPushThis:               "PUSH_THIS",
	OpPushUndefinedBase:      "PUSH_UNDEFINED_BASE",
	OpAssignIdent:            "ASSIGN_IDENT",
	OpAssign:                 "ASSIGN",
	OpAssignPropString:       "ASSIGN_PROP_STRING",
	OpPropGet:                "PROP_GET",
	OpPropStringGet:          "PROP_STRING_GET",
	OpPropSet:                "PROP_SET",
	OpNewArray:               "NEW_ARRAY",
	OpNewObject:              "NEW_OBJECT",
	OpArrayAppend:            "ARRAY_APPEND",
	OpObjectSet:              "OBJECT_SET",
	OpCall:                   "CALL",
	OpNew:                    "NEW",
	OpNeg:                    "NEG",
	OpPos:                    "POS",
	OpLogicalNot:             "LOGICAL_NOT",
	OpBitNot:                 "BIT_NOT",
	OpTypeof:                 "TYPEOF",
	OpVoid:                   "VOID",
	OpDeletion:               "DELETE",
	OpPreIncr:                "PRE_INCR",
	OpPreDecr:                "PRE_DECR",
	OpPostIncr:               "POST_INCR",
	OpPostDecr:               "POST_DECR",
	OpAdd:                    "ADD",
	OpSub:                    "SUB",
	OpMul:                    "MUL",
	OpDiv:                    "DIV",
	OpMod:                    "MOD",
	OpBitAnd:                 "BIT_AND",
	OpBitOr:                  "BIT_OR",
	OpBitXor:                 "BIT_XOR",
	OpShl:                    "SHL",
	OpShr:                    "SHR",
	OpUShr:                   "USHR",
	OpEqual:                  "EQUAL",
	OpNotEqual:               "NOT_EQUAL",
	OpStrictEqual:            "STRICT_EQUAL",
	OpStrictNotEqual:         "STRICT_NOT_EQUAL",
	OpLess:                   "LESS",
	OpGreater:                "GREATER",
	OpLessEqual:              "LESS_EQUAL",
	OpGreaterEqual:           "GREATER_EQUAL",
	OpIn:                     "IN",
	OpInstanceof:             "INSTANCEOF",
	OpBranchIfTrueForward:    "BRANCH_IF_TRUE_FORWARD",
	OpBranchIfFalseForward:   "BRANCH_IF_FALSE_FORWARD",
	OpBranchIfTrueBackward:   "BRANCH_IF_TRUE_BACKWARD",
	OpBranchIfFalseBackward:  "BRANCH_IF_FALSE_BACKWARD",
	OpBranchIfStrictEqual:    "BRANCH_IF_STRICT_EQUAL",
	OpJumpForward:            "JUMP_FORWARD",
	OpJumpBackward:           "JUMP_BACKWARD",
	OpJumpForwardExitContext: "JUMP_FORWARD_EXIT_CONTEXT",
	OpWithCreateContext:      "WITH_CREATE_CONTEXT",
	OpForInCreateContext:     "FOR_IN_CREATE_CONTEXT",
	OpForInGetNext:           "FOR_IN_GET_NEXT",
	OpBranchIfForInHasNext:   "BRANCH_IF_FOR_IN_HAS_NEXT",
	OpTryCreateContext:       "TRY_CREATE_CONTEXT",
	OpCatch:                  "CATCH",
	OpFinally:                "FINALLY",
	OpContextEnd:             "CONTEXT_END",
	OpExtEscape:              "EXT_ESCAPE",
}

func (op OpCode) String() string {
	if int(op) < len(opCodeNames) && opCodeNames[op] != "" {
		return opCodeNames[op]
	}
	return "UNKNOWN_OPCODE"
}

var extOpCodeNames = [...]string{
	ExtDebuggerStatement:  "DEBUGGER_STATEMENT",
	ExtCloneObjectLiteral: "CLONE_OBJECT_LITERAL",
	ExtSpreadElement:      "SPREAD_ELEMENT",
}

func (op ExtOpCode) String() string {
	if int(op) < len(extOpCodeNames) && extOpCodeNames[op] != "" {
		return extOpCodeNames[op]
	}
	return "UNKNOWN_EXT_OPCODE"
}
