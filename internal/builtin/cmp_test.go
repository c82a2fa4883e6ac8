package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

func TestCompareOps(t *testing.T) {
	r, err := Lt(newFakeEval(value.NewInt(1), value.NewInt(2)))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())

	r, err = Eq(newFakeEval(value.NewString("a"), value.NewString("a")))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())

	r, err = Ge(newFakeEval(value.NewUnsigned(3), value.NewUnsigned(3)))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())
}

func TestCompareMixedKindsRejected(t *testing.T) {
	_, err := Eq(newFakeEval(value.NewInt(1), value.NewString("1")))
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindValueType))
}

func TestAndShortCircuits(t *testing.T) {
	r, err := And(newFakeEval(value.NewBool(false), value.NewInt(1)))
	require.NoError(t, err)
	assert.False(t, r.BoolValue())
}

func TestOrShortCircuits(t *testing.T) {
	r, err := Or(newFakeEval(value.NewBool(true), value.NewInt(1)))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())
}

func TestNot(t *testing.T) {
	r, err := Not(newFakeEval(value.NewBool(false)))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())
}
