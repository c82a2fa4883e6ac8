package channel

import (
	"bytes"
	"io"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// fakeEval is a minimal value.ArgEvaluator standing in for the real
// tree-walking evaluator, enough to drive Channel.Dispatch in tests.
type fakeEval struct {
	args   []*value.Value
	stdout bytes.Buffer
}

func newFakeEval(args ...*value.Value) *fakeEval { return &fakeEval{args: args} }

func (e *fakeEval) NArg() int { return len(e.args) }

func (e *fakeEval) Arg(i int) (*value.Value, error) {
	if i < 0 || i >= len(e.args) {
		return nil, texc.New(texc.KindOpNarg)
	}
	return e.args[i], nil
}

func (e *fakeEval) ArgIndex(i int) (uint64, error) {
	v, err := e.Arg(i)
	if err != nil {
		return 0, err
	}
	return value.AsIndex(v)
}

func (e *fakeEval) RawChild(i int) value.NodeRef {
	if i < 0 || i >= len(e.args) {
		return nil
	}
	return e.args[i]
}

func (e *fakeEval) Eval(ref value.NodeRef) (*value.Value, error) {
	v, _ := ref.(*value.Value)
	return v, nil
}

func (e *fakeEval) Name(i int) string   { return "" }
func (e *fakeEval) Local() value.Scope  { return nil }
func (e *fakeEval) Global() value.Scope { return nil }
func (e *fakeEval) Stdout() io.Writer   { return &e.stdout }

func (e *fakeEval) CallFunction(fn *value.Value, args []*value.Value) (*value.Value, error) {
	return nil, texc.New(texc.KindNotImplemented)
}

// noopAllocator never denies a reservation, standing in for an
// unlimited -M cap.
type noopAllocator struct{}

func (noopAllocator) Reserve(int64) error { return nil }
func (noopAllocator) Release(int64)       {}

func (e *fakeEval) Alloc() value.Allocator { return noopAllocator{} }
