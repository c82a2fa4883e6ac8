package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/symtab"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

func TestResolveBindsMtSafeAndNullOnly(t *testing.T) {
	b := NewBuilder("t")
	root, err := b.AddNode(nil, texc.SrcLocation{}, "print", nil, false)
	require.NoError(t, err)

	table := symtab.New(nil)
	mtSafeFn := value.NewNativeFunction(func(ev value.ArgEvaluator) (*value.Value, error) { return nil, nil })
	require.NoError(t, mtSafeFn.SetMtSafe())
	table.InsertOrAssign("print", mtSafeFn)

	Resolve(root, table, false, false)
	assert.True(t, root.HasValue())
	assert.True(t, value.IsSame(mtSafeFn, root.Value()))
}

func TestResolveSkipsAlreadyBoundNode(t *testing.T) {
	b := NewBuilder("t")
	lit := b.CreateInt(5)
	root, err := b.AddNode(nil, texc.SrcLocation{}, "x", lit, true)
	require.NoError(t, err)

	table := symtab.New(nil)
	table.InsertOrAssign("x", value.NewInt(999))

	Resolve(root, table, false, false)
	assert.True(t, value.IsSame(lit, root.Value()))
}

func TestResolveReplaceOverwritesExisting(t *testing.T) {
	b := NewBuilder("t")
	lit := b.CreateInt(5)
	root, err := b.AddNode(nil, texc.SrcLocation{}, "x", lit, true)
	require.NoError(t, err)

	table := symtab.New(nil)
	repl := value.NewInt(999)
	require.NoError(t, repl.SetMtSafe())
	table.InsertOrAssign("x", repl)

	Resolve(root, table, true, false)
	assert.True(t, value.IsSame(repl, root.Value()))
}

func TestUnresolveClearsNamedNodesOnly(t *testing.T) {
	b := NewBuilder("t")
	lit := b.CreateInt(5)
	named, err := b.AddNode(nil, texc.SrcLocation{}, "x", lit, true)
	require.NoError(t, err)
	literalChild, err := named.script.AddNode(named, texc.SrcLocation{}, "", lit, true)
	require.NoError(t, err)

	Unresolve(named)
	assert.False(t, named.HasValue())
	assert.True(t, literalChild.HasValue(), "pure literal nodes (empty name) are left untouched")
}

func TestResolveRemoveClearsMissingBindings(t *testing.T) {
	b := NewBuilder("t")
	lit := b.CreateInt(1)
	root, err := b.AddNode(nil, texc.SrcLocation{}, "x", lit, true)
	require.NoError(t, err)

	Resolve(root, symtab.New(nil), false, true)
	assert.False(t, root.HasValue())
}
