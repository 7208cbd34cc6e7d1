package parser

import (
	"github.com/nyxwolf/goecma/bytecode"
	"github.com/nyxwolf/goecma/lexer"
	"github.com/nyxwolf/goecma/pstack"
)

// FrameTag is the statement frame's one-byte discriminator, spec.md
// §3's fixed tag alphabet.
type FrameTag byte

const (
	TagStart FrameTag = iota
	TagBlock
	TagLabel
	TagIf
	TagElse
	TagSwitch
	TagSwitchNoDefault
	TagDoWhile
	TagWhile
	TagFor
	TagForIn
	TagWith
	TagTry
)

func (t FrameTag) isLoop() bool {
	switch t {
	case TagDoWhile, TagWhile, TagFor, TagForIn:
		return true
	default:
		return false
	}
}

func (t FrameTag) isBreakable() bool {
	switch t {
	case TagSwitch, TagSwitchNoDefault, TagDoWhile, TagWhile, TagFor, TagForIn:
		return true
	default:
		return false
	}
}

// tryState is the TRY frame's "current sub-block kind" payload field.
type tryState byte

const (
	tryBlock tryState = iota
	catchBlock
	finallyBlock
)

// frame is the statement frame payload (spec.md §3's per-tag payload
// table). One struct covers every tag; only the fields relevant to a
// frame's own tag are meaningful, the Go equivalent of the fixed-size
// union original_source packs into the byte stack. The frame also
// lives in a side table (Parser.frames) indexed by the 4-byte value
// actually pushed onto the byte stack — see frameStack below for why.
type frame struct {
	tag FrameTag

	// ctxDepth is p.contextDepth's value at the moment this frame was
	// pushed — the number of with/for-in/try runtime contexts already
	// open at that point. A break/continue whose current contextDepth
	// is higher than its target frame's ctxDepth crosses at least one
	// such context on its way out and must emit
	// OpJumpForwardExitContext instead of a plain OpJumpForward.
	ctxDepth int

	// LABEL
	labelName  string
	breakList  *bytecode.PatchNode // also used as the loop/switch break-continue list

	// IF / ELSE
	branch bytecode.PatchHandle

	// SWITCH[_NO_DEFAULT]
	defaultPatch bytecode.PatchHandle
	caseList     *bytecode.PatchNode

	// DO_WHILE / WHILE / FOR / FOR_IN (loop frames)
	backwardTarget int
	endBranch      bytecode.PatchHandle

	// WHILE/FOR: the first token of the condition (and, for FOR, the
	// update clause), saved so the closing ender can detour the lexer
	// back to re-tokenize and actually emit it — the pre-scan pass that
	// ran ahead of the body only located where it ends.
	condStart   lexer.Token
	updateStart lexer.Token

	// WITH
	savedInsideWith bool

	// TRY
	try tryState
}

// frameStack is the typed parser stack spec.md §4.1 specifies,
// instantiated over pstack.Stack: each frame is pushed as a 4-byte
// little-endian index into the Parser's side table of *frame payloads,
// followed by the one-byte tag pstack.Stack tracks natively. This
// keeps the byte-addressed, page-chunked, tag-topped discipline of
// §4.1 (push/pop/iterate are genuinely O(1)/O(frames walked) over
// pstack's pages) while letting frame payloads that contain Go
// pointers (patch-list heads) live as ordinary heap values instead of
// being hand-serialized into the byte stream — the accommodation
// spec.md §9 explicitly sanctions ("a reimplementation may use ... a
// separate patch registry").
type frameStack struct {
	bytes  *pstack.Stack
	frames []*frame
	depth  int // number of frames currently pushed (frames[:depth] are live)
}

func newFrameStack() *frameStack {
	return &frameStack{bytes: pstack.New()}
}

func (fs *frameStack) push(f *frame) {
	idx := fs.depth
	if idx < len(fs.frames) {
		fs.frames[idx] = f
	} else {
		fs.frames = append(fs.frames, f)
	}
	fs.depth++
	fs.bytes.Push(encodeIdx(idx))
	fs.bytes.PushUint8(byte(f.tag))
}

func (fs *frameStack) pop() *frame {
	fs.bytes.PopUint8()
	idx := decodeIdx(fs.bytes.Pop(4))
	fs.depth--
	return fs.frames[idx]
}

func (fs *frameStack) top() *frame {
	if fs.depth == 0 {
		return nil
	}
	return fs.frames[fs.depth-1]
}

func (fs *frameStack) topTag() (FrameTag, bool) {
	tag, ok := fs.bytes.TopTag()
	return FrameTag(tag), ok
}

// walk calls fn for every live frame from top to bottom (inclusive of
// START), stopping early if fn returns false. It is the substrate for
// label lookup, break/continue target search, and FreeJumps.
func (fs *frameStack) walk(fn func(*frame) bool) {
	for i := fs.depth - 1; i >= 0; i-- {
		if !fn(fs.frames[i]) {
			return
		}
	}
}

func encodeIdx(idx int) []byte {
	return []byte{byte(idx), byte(idx >> 8), byte(idx >> 16), byte(idx >> 24)}
}

func decodeIdx(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16 | int(b[3])<<24
}
