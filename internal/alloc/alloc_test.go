package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/texc"
)

func TestReserveUnlimitedAlwaysSucceeds(t *testing.T) {
	a := New(0)
	require.NoError(t, a.Reserve(1<<30))
	assert.Equal(t, int64(1<<30), a.Used())
}

func TestReserveWithinLimitSucceeds(t *testing.T) {
	a := New(100)
	require.NoError(t, a.Reserve(60))
	assert.Equal(t, int64(60), a.Used())
}

func TestReserveOverLimitFailsAndRollsBack(t *testing.T) {
	a := New(100)
	require.NoError(t, a.Reserve(60))
	err := a.Reserve(60)
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindAllocLimit))
	assert.Equal(t, int64(60), a.Used()) // failed reservation is rolled back
}

func TestReleaseReducesUsage(t *testing.T) {
	a := New(100)
	require.NoError(t, a.Reserve(60))
	a.Release(60)
	assert.Equal(t, int64(0), a.Used())
}

func TestNilAllocatorIsUnlimited(t *testing.T) {
	var a *Allocator
	require.NoError(t, a.Reserve(1<<20))
	assert.Equal(t, int64(0), a.Used())
	a.Release(10) // must not panic
}

func TestWrapOSFailure(t *testing.T) {
	err := WrapOSFailure(errors.New("disk full"))
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindAllocBad))
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapOSFailureNilIsNil(t *testing.T) {
	assert.NoError(t, WrapOSFailure(nil))
}
