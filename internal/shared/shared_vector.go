// Package shared implements the ThreadScript shared_vector and
// shared_hash object types: mt-safe, internally mutex-guarded
// containers that are the only writable objects reachable from
// multiple threads at once (§4.6), grounded on
// original_source/src/threadscript/shared_vector.hpp (and its
// shared_hash sibling, inferred symmetrically per §4.6).
//
// Unlike the plain value.KVector/value.KHash kinds, these containers
// stay mutable after the mt-safe flag is set: mutation is gated by
// their own mutex and by requiring every stored value to already be
// mt-safe, not by value.checkWritable's read-only rule.
package shared

import (
	"sync"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// SharedVector is a mutex-guarded, grow-on-write vector of mt-safe
// values.
type SharedVector struct {
	mu   sync.Mutex
	data []*value.Value
}

// NewSharedVector creates an empty shared vector.
func NewSharedVector() *SharedVector { return &SharedVector{} }

// NewSharedVectorValue wraps a new shared vector as a value.Value.
func NewSharedVectorValue() *value.Value {
	return value.NewObject(NewSharedVector())
}

func (sv *SharedVector) TypeName() string { return "shared_vector" }

// sharedVectorMethod is one entry of the method table built by
// initVectorMethods, mirroring channel_impl.hpp's init_methods() map
// of method name to handler rather than an ad hoc switch.
type sharedVectorMethod func(*SharedVector, value.ArgEvaluator) (*value.Value, error)

var sharedVectorMethods = initVectorMethods()

func initVectorMethods() map[string]sharedVectorMethod {
	return map[string]sharedVectorMethod{
		"at":    (*SharedVector).dispatchAt,
		"erase": (*SharedVector).dispatchErase,
		"size": func(sv *SharedVector, ev value.ArgEvaluator) (*value.Value, error) {
			if ev.NArg() != 1 {
				return nil, texc.New(texc.KindOpNarg)
			}
			return value.NewUnsigned(uint64(sv.Size())), nil
		},
		"clone": func(sv *SharedVector, ev value.ArgEvaluator) (*value.Value, error) {
			return nil, texc.Named(texc.KindNotImplemented, "clone")
		},
	}
}

// Dispatch implements value.Object.
func (sv *SharedVector) Dispatch(ev value.ArgEvaluator, method string) (*value.Value, error) {
	fn, ok := sharedVectorMethods[method]
	if !ok {
		return nil, texc.Named(texc.KindNotImplemented, method)
	}
	return fn(sv, ev)
}

// perElemBytes is the nominal per-element accounting charge consulted
// against the host's -M quota when a grow-on-write extends a
// shared_vector (§5/§9); a fixed accounting unit, not a sizeof.
const perElemBytes = 16

func (sv *SharedVector) dispatchAt(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 2 || n > 3 {
		return nil, texc.New(texc.KindOpNarg)
	}
	idx, err := ev.ArgIndex(1)
	if err != nil {
		return nil, err
	}
	if n == 3 {
		v, err := ev.Arg(2)
		if err != nil {
			return nil, err
		}
		if v != nil && !v.MtSafe() {
			return nil, texc.New(texc.KindValueMtUnsafe)
		}
		if grown := idx + 1; grown > uint64(sv.Size()) {
			if err := ev.Alloc().Reserve(int64(grown-uint64(sv.Size())) * perElemBytes); err != nil {
				return nil, err
			}
		}
		sv.Set(idx, v)
		return v, nil
	}
	v, ok := sv.Get(idx)
	if !ok {
		return nil, texc.New(texc.KindValueOutOfRange)
	}
	return v, nil
}

func (sv *SharedVector) dispatchErase(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 1 || n > 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	var idx uint64
	if n == 2 {
		var err error
		idx, err = ev.ArgIndex(1)
		if err != nil {
			return nil, err
		}
	}
	sv.Erase(idx)
	return nil, nil
}

// Get reads the element at idx.
func (sv *SharedVector) Get(idx uint64) (*value.Value, bool) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if idx >= uint64(len(sv.data)) {
		return nil, false
	}
	return sv.data[idx], true
}

// Set writes the element at idx, growing and filling with null if
// idx >= current size (§4.6 "grow-on-write semantics").
func (sv *SharedVector) Set(idx uint64, v *value.Value) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if idx >= uint64(len(sv.data)) {
		grown := make([]*value.Value, idx+1)
		copy(grown, sv.data)
		sv.data = grown
	}
	sv.data[idx] = v
}

// Erase truncates to the first n elements (n == 0 clears entirely),
// compacting storage when size is capacity/3 or less (§4.6).
func (sv *SharedVector) Erase(n uint64) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if n < uint64(len(sv.data)) {
		sv.data = sv.data[:n]
	}
	if len(sv.data) <= cap(sv.data)/3 {
		nd := make([]*value.Value, len(sv.data))
		copy(nd, sv.data)
		sv.data = nd
	}
}

// Size returns the element count.
func (sv *SharedVector) Size() int {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return len(sv.data)
}
