package shared

import (
	"sort"
	"sync"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// SharedHash is a mutex-guarded mapping from string key to mt-safe
// value.
type SharedHash struct {
	mu   sync.Mutex
	data map[string]*value.Value
	high int
}

// NewSharedHash creates an empty shared hash.
func NewSharedHash() *SharedHash {
	return &SharedHash{data: make(map[string]*value.Value)}
}

// NewSharedHashValue wraps a new shared hash as a value.Value.
func NewSharedHashValue() *value.Value {
	return value.NewObject(NewSharedHash())
}

func (sh *SharedHash) TypeName() string { return "shared_hash" }

// sharedHashMethod is one entry of the method table built by
// initHashMethods, mirroring channel_impl.hpp's init_methods() map of
// method name to handler rather than an ad hoc switch.
type sharedHashMethod func(*SharedHash, value.ArgEvaluator) (*value.Value, error)

var sharedHashMethods = initHashMethods()

func initHashMethods() map[string]sharedHashMethod {
	return map[string]sharedHashMethod{
		"at":       (*SharedHash).dispatchAt,
		"contains": (*SharedHash).dispatchContains,
		"erase":    (*SharedHash).dispatchErase,
		"keys": func(sh *SharedHash, ev value.ArgEvaluator) (*value.Value, error) {
			if ev.NArg() != 1 {
				return nil, texc.New(texc.KindOpNarg)
			}
			return sh.KeysVector(), nil
		},
		"size": func(sh *SharedHash, ev value.ArgEvaluator) (*value.Value, error) {
			if ev.NArg() != 1 {
				return nil, texc.New(texc.KindOpNarg)
			}
			return value.NewUnsigned(uint64(sh.Size())), nil
		},
		"clone": func(sh *SharedHash, ev value.ArgEvaluator) (*value.Value, error) {
			return nil, texc.Named(texc.KindNotImplemented, "clone")
		},
	}
}

// Dispatch implements value.Object.
func (sh *SharedHash) Dispatch(ev value.ArgEvaluator, method string) (*value.Value, error) {
	fn, ok := sharedHashMethods[method]
	if !ok {
		return nil, texc.Named(texc.KindNotImplemented, method)
	}
	return fn(sh, ev)
}

func keyArg(ev value.ArgEvaluator, i int) (string, error) {
	v, err := ev.Arg(i)
	if err != nil {
		return "", err
	}
	if v == nil || v.Kind() != value.KString {
		return "", texc.New(texc.KindValueType)
	}
	return v.StringValue(), nil
}

func (sh *SharedHash) dispatchAt(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 2 || n > 3 {
		return nil, texc.New(texc.KindOpNarg)
	}
	key, err := keyArg(ev, 1)
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
		if _, exists := sh.Get(key); !exists {
			if err := ev.Alloc().Reserve(int64(len(key)) + perElemBytes); err != nil {
				return nil, err
			}
		}
		sh.Set(key, v)
		return v, nil
	}
	v, ok := sh.Get(key)
	if !ok {
		return nil, texc.New(texc.KindValueOutOfRange)
	}
	return v, nil
}

func (sh *SharedHash) dispatchContains(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	key, err := keyArg(ev, 1)
	if err != nil {
		return nil, err
	}
	_, ok := sh.Get(key)
	return value.NewBool(ok), nil
}

func (sh *SharedHash) dispatchErase(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 1 || n > 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	if n == 1 {
		sh.Clear()
		return nil, nil
	}
	key, err := keyArg(ev, 1)
	if err != nil {
		return nil, err
	}
	sh.Delete(key)
	return nil, nil
}

// Get reads the value for key.
func (sh *SharedHash) Get(key string) (*value.Value, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v, ok := sh.data[key]
	return v, ok
}

// Set writes key to v.
func (sh *SharedHash) Set(key string, v *value.Value) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.data[key] = v
	if len(sh.data) > sh.high {
		sh.high = len(sh.data)
	}
}

// Delete removes key, rehashing down when the load factor drops, an
// approximation of max_load_factor rehashing since Go maps expose no
// capacity/load-factor control.
func (sh *SharedHash) Delete(key string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.data, key)
	if sh.high > 0 && len(sh.data) <= sh.high/3 {
		nd := make(map[string]*value.Value, len(sh.data)*3/2+1)
		for k, v := range sh.data {
			nd[k] = v
		}
		sh.data = nd
		sh.high = len(nd)
	}
}

// Clear removes every entry.
func (sh *SharedHash) Clear() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.data = make(map[string]*value.Value)
	sh.high = 0
}

// Size returns the entry count.
func (sh *SharedHash) Size() int {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return len(sh.data)
}

// KeysVector returns an ordinary (non-shared) vector of mt-safe,
// lexicographically sorted string keys (§4.6).
func (sh *SharedHash) KeysVector() *value.Value {
	sh.mu.Lock()
	keys := make([]string, 0, len(sh.data))
	for k := range sh.data {
		keys = append(keys, k)
	}
	sh.mu.Unlock()
	sort.Strings(keys)
	elems := make([]*value.Value, len(keys))
	for i, k := range keys {
		s := value.NewString(k)
		_ = s.SetMtSafe()
		elems[i] = s
	}
	return value.NewVector(elems)
}
