package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

func TestSeqReturnsLast(t *testing.T) {
	r, err := Seq(newFakeEval(value.NewInt(1), value.NewInt(2), value.NewInt(3)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.IntValue())
}

func TestSeqEmptyIsNull(t *testing.T) {
	r, err := Seq(newFakeEval())
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestIfBranches(t *testing.T) {
	r, err := If(newFakeEval(value.NewBool(true), value.NewInt(1), value.NewInt(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.IntValue())

	r, err = If(newFakeEval(value.NewBool(false), value.NewInt(1), value.NewInt(2)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.IntValue())
}

func TestIfWithoutElseReturnsNull(t *testing.T) {
	r, err := If(newFakeEval(value.NewBool(false), value.NewInt(1)))
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestVarWriteThenRead(t *testing.T) {
	ev := newFakeEval(value.NewString("x"), value.NewInt(5))
	_, err := Var(ev)
	require.NoError(t, err)

	ev2 := &fakeEval{args: []*value.Value{value.NewString("x")}, local: ev.local, global: ev.global}
	r, err := Var(ev2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.IntValue())
}

func TestVarUnknownNameRaises(t *testing.T) {
	ev := newFakeEval(value.NewString("nope"))
	_, err := Var(ev)
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindUnknownSymbol))
}

func TestBoolCoercion(t *testing.T) {
	r, err := Bool(newFakeEval(value.NewInt(0)))
	require.NoError(t, err)
	assert.True(t, r.BoolValue()) // any non-null, non-bool is true

	r, err = Bool(newFakeEval(value.NewBool(false)))
	require.NoError(t, err)
	assert.False(t, r.BoolValue())
}

func TestCloneClearsMtSafe(t *testing.T) {
	src := value.NewInt(7)
	require.NoError(t, src.SetMtSafe())
	clone, err := Clone(newFakeEval(src))
	require.NoError(t, err)
	assert.False(t, clone.MtSafe())
	assert.Equal(t, int64(7), clone.IntValue())
}

func TestMtSafeAndIsMtSafe(t *testing.T) {
	v := value.NewInt(1)
	r, err := MtSafe(newFakeEval(v))
	require.NoError(t, err)
	assert.True(t, value.IsSame(v, r))

	b, err := IsMtSafe(newFakeEval(v))
	require.NoError(t, err)
	assert.True(t, b.BoolValue())
}

func TestIsNullAndIsSame(t *testing.T) {
	r, err := IsNull(newFakeEval(nil))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())

	a := value.NewInt(1)
	r, err = IsSame(newFakeEval(a, a))
	require.NoError(t, err)
	assert.True(t, r.BoolValue())
}

func TestTypeBuiltin(t *testing.T) {
	r, err := Type(newFakeEval(value.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, "int", r.StringValue())
}

func TestPrintWritesAllArgsAtomically(t *testing.T) {
	ev := newFakeEval(value.NewString("a"), value.NewString("b"))
	_, err := Print(ev)
	require.NoError(t, err)
	assert.Equal(t, "ab", ev.stdout.String())
}

func TestThrowRaisesScriptException(t *testing.T) {
	_, err := Throw(newFakeEval(value.NewString("boom")))
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindScriptException))
	assert.Equal(t, "boom", err.(*texc.Error).Msg)
}

func TestTryCatchesMatchingKind(t *testing.T) {
	// try(throw("boom"), "script_exception", "caught") -- tryFakeEval
	// hands out child indices as NodeRef handles; its Eval runs the body
	// closure for index 0 and returns the already-final handler value for
	// the others.
	body := value.NewString("unused") // body itself isn't evaluated via Throw here
	_ = body
	ev := &tryFakeEval{
		fakeEval: *newFakeEval(),
		body: func() (*value.Value, error) {
			return Throw(newFakeEval(value.NewString("boom")))
		},
		kinds:    []*value.Value{value.NewString("script_exception")},
		handlers: []*value.Value{value.NewString("caught")},
	}
	r, err := Try(ev)
	require.NoError(t, err)
	assert.Equal(t, "caught", r.StringValue())
}

func TestTryRereaisesUnmatchedKind(t *testing.T) {
	ev := &tryFakeEval{
		fakeEval: *newFakeEval(),
		body: func() (*value.Value, error) {
			return Throw(newFakeEval(value.NewString("boom")))
		},
		kinds:    []*value.Value{value.NewString("op_div_zero")},
		handlers: []*value.Value{value.NewString("caught")},
	}
	_, err := Try(ev)
	require.Error(t, err)
	assert.True(t, texc.Is(err, texc.KindScriptException))
}

// tryFakeEval extends fakeEval to model try's "evaluate raw children"
// convention: index 0 is the protected body (invoked via Eval/RawChild
// through a closure), subsequent indices alternate kind/handler
// strings fetched via Arg like any other evaluated argument.
type tryFakeEval struct {
	fakeEval
	body     func() (*value.Value, error)
	kinds    []*value.Value
	handlers []*value.Value
}

func (e *tryFakeEval) NArg() int { return 1 + 2*len(e.kinds) }

func (e *tryFakeEval) RawChild(i int) value.NodeRef { return i }

func (e *tryFakeEval) Eval(ref value.NodeRef) (*value.Value, error) {
	idx := ref.(int)
	if idx == 0 {
		return e.body()
	}
	// even index i=2k -> handler k-1
	k := (idx - 1) / 2
	return e.handlers[k], nil
}

func (e *tryFakeEval) Arg(i int) (*value.Value, error) {
	if i == 0 {
		return e.body()
	}
	k := (i - 1) / 2
	if (i-1)%2 == 0 {
		return e.kinds[k], nil
	}
	return e.handlers[k], nil
}
