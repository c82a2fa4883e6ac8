package eval

import (
	"github.com/threadscript/ts/internal/symtab"
	"github.com/threadscript/ts/internal/value"
)

// scopeAdapter satisfies value.Scope over a *symtab.Table, performing
// the interface{} <-> *value.Value type assertion at the boundary so
// that internal/symtab need not depend on internal/value.
type scopeAdapter struct {
	t *symtab.Table
}

func (a scopeAdapter) Lookup(name string, useParent bool) (*value.Value, bool) {
	raw, ok := a.t.Lookup(name, useParent)
	if !ok {
		return nil, false
	}
	v, _ := raw.(*value.Value)
	return v, true
}

func (a scopeAdapter) InsertOrAssign(name string, v *value.Value) {
	a.t.InsertOrAssign(name, v)
}

func (a scopeAdapter) Erase(name string) bool {
	return a.t.Erase(name)
}
