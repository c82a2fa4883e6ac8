package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/alloc"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

func TestAtVectorReadWriteGrow(t *testing.T) {
	vec := value.NewVector(nil)
	_, err := At(newFakeEval(vec, value.NewUnsigned(2), value.NewInt(9)))
	require.NoError(t, err)
	assert.Equal(t, 3, vec.VectorLen())

	got, err := At(newFakeEval(vec, value.NewUnsigned(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.IntValue())
}

func TestAtVectorGrowDeniedByQuota(t *testing.T) {
	vec := value.NewVector(nil)
	ev := newFakeEval(vec, value.NewUnsigned(100), value.NewInt(9))
	ev.alloc = alloc.New(1) // one byte of quota, nowhere near a 101-element grow

	_, err := At(ev)
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindAllocLimit))
	assert.Equal(t, 0, vec.VectorLen(), "a denied reservation must leave the vector unchanged")
}

func TestAtStringReadOnly(t *testing.T) {
	s := value.NewString("abc")
	got, err := At(newFakeEval(s, value.NewUnsigned(1)))
	require.NoError(t, err)
	assert.Equal(t, "b", got.StringValue())

	_, err = At(newFakeEval(s, value.NewUnsigned(1), value.NewString("z")))
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindNotImplemented))
}

func TestAtHashMissRaisesOutOfRange(t *testing.T) {
	h := value.NewHash()
	_, err := At(newFakeEval(h, value.NewString("missing")))
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindValueOutOfRange))
}

func TestAtHashWriteThenRead(t *testing.T) {
	h := value.NewHash()
	_, err := At(newFakeEval(h, value.NewString("k"), value.NewInt(1)))
	require.NoError(t, err)
	got, err := At(newFakeEval(h, value.NewString("k")))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.IntValue())
}

func TestSizeAcrossKinds(t *testing.T) {
	v, err := Size(newFakeEval(value.NewVector([]*value.Value{value.NewInt(1), value.NewInt(2)})))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.UnsignedValue())

	v, err = Size(newFakeEval(value.NewString("abcd")))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v.UnsignedValue())
}

func TestSizeOnScalarRejected(t *testing.T) {
	_, err := Size(newFakeEval(value.NewInt(1)))
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindOpBad))
}
