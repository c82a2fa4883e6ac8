// Package code implements the ThreadScript code tree: an immutable
// (after parsing, save for the resolve/unresolve passes) tree of nodes
// with a source location, a name, an optional bound value, and ordered
// children (§3/§4.2).
package code

import (
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Node is one element of a parsed code tree. The zero value is not
// useful; construct nodes via Script.AddNode.
type Node struct {
	Loc      texc.SrcLocation
	name     string
	value    *value.Value
	hasValue bool
	children []*Node
	script   *Script
}

// Name returns the node's name, empty for pure literal nodes.
func (n *Node) Name() string { return n.name }

// HasValue reports whether the node currently carries a bound value
// (a literal, or the result of a resolve pass).
func (n *Node) HasValue() bool { return n.hasValue }

// Value returns the node's bound value (which may be nil, representing
// a bound null). Callers must check HasValue first.
func (n *Node) Value() *value.Value { return n.value }

// Children returns the node's ordered child nodes.
func (n *Node) Children() []*Node { return n.children }

// NChild is the number of children.
func (n *Node) NChild() int { return len(n.children) }

// Script returns the script that owns this node.
func (n *Node) Script() *Script { return n.script }

// FrameLocation builds a texc.FrameLocation for this node within the
// given function name, used when the evaluation engine updates the
// current stack frame's location (§4.3 step 1).
func (n *Node) FrameLocation(function string) texc.FrameLocation {
	return texc.FrameLocation{Function: function, SrcLocation: n.Loc}
}

// Equal reports deep structural equality of two code trees. Bound
// value fields are compared only by presence/null-ness, not by
// content, matching the reference test suite's definition of code-tree
// equality (sufficient for parser-output tests, §4.2).
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.name != b.name {
		return false
	}
	if a.hasValue != b.hasValue {
		return false
	}
	if a.hasValue && (a.value == nil) != (b.value == nil) {
		return false
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
