// Package pool implements the literal pool spec.md's [MODULE] blocks
// reference but never detail: the append-only table of interned
// identifier and string-literal text that PUSH_LITERAL-family opcodes
// index into by position. Grounded on golox's vm.Chunk.consts (a
// plain append-only []Value slice indexed by a one-byte operand), here
// split out of the bytecode chunk so the lexer, pre-scanner, and
// parser can all intern into the same table during a single pass.
package pool

import "github.com/josharian/intern"

// Kind distinguishes why a literal was interned, mirroring the
// LEXER_* literal-type tags original_source threads through the
// scanner (identifier vs string vs number vs regexp).
type Kind uint8

const (
	KindIdent Kind = iota
	KindString
	KindNumber
	KindRegexp
	KindFunction
)

type Entry struct {
	Kind Kind
	Text string // interned via josharian/intern for identifiers/strings
	Num  float64
	Fn   any // *bytecode.FunctionProto for KindFunction entries; opaque here to avoid an import cycle (bytecode already imports pool)
}

// Pool is a single compile unit's literal table. Entries are never
// removed: FreeJumps-style error recovery discards bytecode and patch
// records, never literals, since a later diagnostic may still want to
// print the offending literal text.
type Pool struct {
	entries []Entry
	index   map[string]int // de-dups KindIdent/KindString by interned text
}

func New() *Pool {
	return &Pool{index: make(map[string]int)}
}

// InternIdent registers an identifier, returning its constant-pool
// index. Identical identifier text (after \uXXXX decoding is already
// applied by the caller) shares one slot.
func (p *Pool) InternIdent(name string) int { return p.intern(KindIdent, name, name) }

// InternString registers a string literal. Distinct from InternIdent
// so that same_identifiers-style comparisons never conflate a bare
// identifier with a same-spelled string constant.
func (p *Pool) InternString(text string) int { return p.intern(KindString, "s:"+text, text) }

func (p *Pool) intern(kind Kind, key, text string) int {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := len(p.entries)
	p.entries = append(p.entries, Entry{Kind: kind, Text: intern.String(text)})
	p.index[key] = idx
	return idx
}

// InternNumber registers a numeric literal. Numbers are not deduped:
// NaN != NaN would make map-based dedup observably wrong, and
// duplicate numeric constants are rare enough not to matter.
func (p *Pool) InternNumber(n float64) int {
	idx := len(p.entries)
	p.entries = append(p.entries, Entry{Kind: KindNumber, Num: n})
	return idx
}

func (p *Pool) InternRegexp(pattern string) int {
	idx := len(p.entries)
	p.entries = append(p.entries, Entry{Kind: KindRegexp, Text: intern.String(pattern)})
	return idx
}

// InternFunction registers a compiled function literal (proto is a
// *bytecode.FunctionProto; kept as any so this package need not import
// bytecode). Not deduped: two textually identical function expressions
// are still distinct closures.
func (p *Pool) InternFunction(proto any) int {
	idx := len(p.entries)
	p.entries = append(p.entries, Entry{Kind: KindFunction, Fn: proto})
	return idx
}

func (p *Pool) Get(idx int) Entry { return p.entries[idx] }

func (p *Pool) Len() int { return len(p.entries) }
