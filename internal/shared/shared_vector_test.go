package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/alloc"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

func mtSafeInt(i int64) *value.Value {
	v := value.NewInt(i)
	_ = v.SetMtSafe()
	return v
}

func TestSharedVectorGetSetGrowOnWrite(t *testing.T) {
	sv := NewSharedVector()
	sv.Set(2, mtSafeInt(9))
	assert.Equal(t, 3, sv.Size())
	v, ok := sv.Get(0)
	require.True(t, ok)
	assert.Nil(t, v) // filled with null up to the write index

	v, ok = sv.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(9), v.IntValue())
}

func TestSharedVectorGetOutOfRange(t *testing.T) {
	sv := NewSharedVector()
	_, ok := sv.Get(0)
	assert.False(t, ok)
}

func TestSharedVectorEraseTruncates(t *testing.T) {
	sv := NewSharedVector()
	sv.Set(0, mtSafeInt(1))
	sv.Set(1, mtSafeInt(2))
	sv.Set(2, mtSafeInt(3))
	sv.Erase(1)
	assert.Equal(t, 1, sv.Size())
	_, ok := sv.Get(1)
	assert.False(t, ok)
}

func TestSharedVectorEraseZeroClears(t *testing.T) {
	sv := NewSharedVector()
	sv.Set(0, mtSafeInt(1))
	sv.Erase(0)
	assert.Equal(t, 0, sv.Size())
}

func TestSharedVectorDispatchAtWriteRejectsNonMtSafe(t *testing.T) {
	sv := NewSharedVector()
	self := value.NewObject(sv)
	_, err := sv.Dispatch(newFakeEval(self, value.NewUnsigned(0), value.NewInt(1)), "at")
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindValueMtUnsafe))
}

func TestSharedVectorDispatchAtReadMiss(t *testing.T) {
	sv := NewSharedVector()
	self := value.NewObject(sv)
	_, err := sv.Dispatch(newFakeEval(self, value.NewUnsigned(5)), "at")
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindValueOutOfRange))
}

func TestSharedVectorDispatchAtWriteThenRead(t *testing.T) {
	sv := NewSharedVector()
	self := value.NewObject(sv)
	_, err := sv.Dispatch(newFakeEval(self, value.NewUnsigned(0), mtSafeInt(7)), "at")
	require.NoError(t, err)
	got, err := sv.Dispatch(newFakeEval(self, value.NewUnsigned(0)), "at")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.IntValue())
}

func TestSharedVectorDispatchAtGrowDeniedByQuota(t *testing.T) {
	sv := NewSharedVector()
	self := value.NewObject(sv)
	ev := newFakeEval(self, value.NewUnsigned(100), mtSafeInt(7))
	ev.alloc = alloc.New(1)

	_, err := sv.Dispatch(ev, "at")
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindAllocLimit))
	assert.Equal(t, 0, sv.Size())
}

func TestSharedVectorDispatchSizeAndErase(t *testing.T) {
	sv := NewSharedVector()
	self := value.NewObject(sv)
	_, _ = sv.Dispatch(newFakeEval(self, value.NewUnsigned(0), mtSafeInt(1)), "at")
	sz, err := sv.Dispatch(newFakeEval(self), "size")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sz.UnsignedValue())

	_, err = sv.Dispatch(newFakeEval(self), "erase")
	require.NoError(t, err)
	assert.Equal(t, 0, sv.Size())
}

func TestSharedVectorCloneNotImplemented(t *testing.T) {
	sv := NewSharedVector()
	self := value.NewObject(sv)
	_, err := sv.Dispatch(newFakeEval(self), "clone")
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindNotImplemented))
}
