// Package symtab implements the ThreadScript symbol table: a
// name-to-value map with an optional parent for lexical fallback,
// grounded on original_source/src/threadscript/symbol_table.hpp.
package symtab

import "sync"

// Value is the minimal interface a stored value must satisfy. It is
// defined here (rather than importing internal/value) to avoid an
// import cycle; internal/value.Value satisfies it.
type Value interface{}

// Table is a mapping from name to value, with an optional parent
// pointer for lexical fallback lookup. The host guarantees the parent
// outlives the child (symtab never takes ownership of it).
//
// A Table used as a thread's view of the shared globals is read
// concurrently from multiple goroutines (via eval.Lookup walking up
// the parent chain into the VM's shared-globals snapshot); its own
// entries, once published, are never mutated in place — only the whole
// table is swapped out via an atomic pointer at the VM level. Local
// frame tables are only ever touched by their owning goroutine and do
// not need locking, but the mutex is still present so a single Table
// implementation is safe to use in either role.
type Table struct {
	mu     sync.RWMutex
	sym    map[string]Value
	Parent *Table
}

// New creates an empty symbol table with the given optional parent.
func New(parent *Table) *Table {
	return &Table{sym: make(map[string]Value), Parent: parent}
}

// Contains reports whether name is bound in this table, optionally
// also consulting ancestors.
func (t *Table) Contains(name string, useParent bool) bool {
	if t == nil {
		return false
	}
	t.mu.RLock()
	_, ok := t.sym[name]
	t.mu.RUnlock()
	if ok {
		return true
	}
	if useParent && t.Parent != nil {
		return t.Parent.Contains(name, true)
	}
	return false
}

// Lookup finds name in this table, optionally walking the parent
// chain. ok is false if the name is bound nowhere reachable.
func (t *Table) Lookup(name string, useParent bool) (v Value, ok bool) {
	for cur := t; cur != nil; cur = parentOrNil(cur, useParent) {
		cur.mu.RLock()
		v, ok = cur.sym[name]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
		if !useParent {
			break
		}
	}
	return nil, false
}

func parentOrNil(t *Table, useParent bool) *Table {
	if !useParent {
		return nil
	}
	return t.Parent
}

// InsertOrAssign binds name to v in this table, overwriting any
// existing local binding (it never touches ancestors).
func (t *Table) InsertOrAssign(name string, v Value) {
	t.mu.Lock()
	t.sym[name] = v
	t.mu.Unlock()
}

// Erase removes a local binding for name, reporting whether it existed.
func (t *Table) Erase(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sym[name]; !ok {
		return false
	}
	delete(t.sym, name)
	return true
}

// Snapshot returns a shallow copy of this table's direct bindings
// (used when a "setup" phase's locals become the next shared globals,
// see §4.8).
func (t *Table) Snapshot() map[string]Value {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Value, len(t.sym))
	for k, v := range t.sym {
		out[k] = v
	}
	return out
}

// NewFromMap creates a table pre-populated from m, with the given
// parent.
func NewFromMap(m map[string]Value, parent *Table) *Table {
	t := New(parent)
	for k, v := range m {
		t.sym[k] = v
	}
	return t
}
