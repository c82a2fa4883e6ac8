package code

import (
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Builder is the minimal, allocator-agnostic facade the parser uses to
// build a code tree (§6 "Script builder interface"), kept separate from
// Script itself so that a future alternative builder (e.g. one that
// pools nodes) can be swapped in without touching the grammar.
type Builder struct {
	S *Script
}

// NewBuilder creates a script builder for a new, empty script.
func NewBuilder(file string) *Builder {
	return &Builder{S: NewScript(file)}
}

// AddNode appends a child to parent (or sets the root if parent is
// nil), returning the new node handle.
func (b *Builder) AddNode(parent *Node, loc texc.SrcLocation, name string, val *value.Value, hasValue bool) (*Node, error) {
	return b.S.AddNode(parent, loc, name, val, hasValue)
}

// CreateNull returns the null value handle.
func (b *Builder) CreateNull() *value.Value { return nil }

// CreateBool creates an mt-safe bool literal value.
func (b *Builder) CreateBool(v bool) *value.Value {
	lit := value.NewBool(v)
	_ = lit.SetMtSafe()
	return lit
}

// CreateInt creates an mt-safe int literal value.
func (b *Builder) CreateInt(i int64) *value.Value {
	lit := value.NewInt(i)
	_ = lit.SetMtSafe()
	return lit
}

// CreateUnsigned creates an mt-safe unsigned literal value.
func (b *Builder) CreateUnsigned(u uint64) *value.Value {
	lit := value.NewUnsigned(u)
	_ = lit.SetMtSafe()
	return lit
}

// CreateString creates an mt-safe string literal value.
func (b *Builder) CreateString(s string) *value.Value {
	lit := value.NewString(s)
	_ = lit.SetMtSafe()
	return lit
}
