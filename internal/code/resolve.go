package code

import (
	"github.com/threadscript/ts/internal/symtab"
	"github.com/threadscript/ts/internal/value"
)

// Resolve walks the tree rooted at n, and for every node with a
// non-empty name consults table (with parent-chain lookup), per §4.2:
//
//   - replace=false, remove=false: bind only if the node is not already
//     bound and the looked-up value is null or mt-safe.
//   - replace=true: overwrite existing bindings, but only if the
//     looked-up value is mt-safe or null. Note: this does not also
//     require the *existing* bound value to be mt-safe before
//     overwriting it -- that asymmetry is preserved intentionally from
//     the reference implementation (see DESIGN.md Open Questions).
//   - remove=true: if the lookup misses and the node currently has a
//     bound value, clear it.
//
// Resolve converts O(depth) name lookups per evaluation into an O(1)
// pointer follow, and lets a VM freeze script semantics before worker
// threads start (§4.2).
func Resolve(n *Node, table *symtab.Table, replace, remove bool) {
	if n == nil {
		return
	}
	if n.name != "" {
		v, ok := lookupValue(table, n.name)
		switch {
		case remove:
			if !ok && n.hasValue {
				n.hasValue = false
				n.value = nil
			}
		case replace:
			if ok && (v == nil || v.MtSafe()) {
				n.value = v
				n.hasValue = true
			}
		default:
			if !n.hasValue && ok && (v == nil || v.MtSafe()) {
				n.value = v
				n.hasValue = true
			}
		}
	}
	for _, c := range n.children {
		Resolve(c, table, replace, remove)
	}
}

// Unresolve clears all bound values for named nodes (pure literal
// nodes, whose name is empty, are left untouched).
func Unresolve(n *Node) {
	if n == nil {
		return
	}
	if n.name != "" {
		n.hasValue = false
		n.value = nil
	}
	for _, c := range n.children {
		Unresolve(c)
	}
}

func lookupValue(table *symtab.Table, name string) (*value.Value, bool) {
	raw, ok := table.Lookup(name, true)
	if !ok {
		return nil, false
	}
	v, _ := raw.(*value.Value)
	return v, true
}
