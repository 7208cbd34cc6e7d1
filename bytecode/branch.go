package bytecode

// PatchHandle is the opaque token spec.md §4.2/§6 calls a "patch
// handle": the chunk offset of a not-yet-resolved branch operand.
type PatchHandle int

const invalidHandle PatchHandle = -1

// continueBit is the high-bit discriminator spec.md §4.4 describes:
// packed into a PatchNode's recorded handle so a shared break/continue
// list can tell the two kinds of patch apart without a second field.
const continueBit = 1 << 30

// PatchNode is a branch/patch registry node (spec.md §2.2): a pair of
// (emitted location, next pointer) forming a singly linked list, used
// for break/continue chains and switch case-comparison lists.
type PatchNode struct {
	Handle PatchHandle
	Next   *PatchNode
}

// IsContinue reports whether this node was recorded via
// PushContinuePatch rather than PushBreakPatch.
func (n *PatchNode) IsContinue() bool { return int(n.Handle)&continueBit != 0 }

func (n *PatchNode) rawHandle() PatchHandle { return PatchHandle(int(n.Handle) &^ continueBit) }

// PushBreakPatch prepends a break-kind patch to list, returning the
// new head.
func PushBreakPatch(list *PatchNode, h PatchHandle) *PatchNode {
	return &PatchNode{Handle: h, Next: list}
}

// PushContinuePatch prepends a continue-kind patch to list, tagging it
// with the high-bit discriminator.
func PushContinuePatch(list *PatchNode, h PatchHandle) *PatchNode {
	return &PatchNode{Handle: PatchHandle(int(h) | continueBit), Next: list}
}
