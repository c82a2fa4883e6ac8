package value

import (
	"sort"
	"sync"

	"github.com/threadscript/ts/internal/texc"
)

// --- string ---

// stringBox holds a mutable byte string with capacity-hysteresis
// management: after a mutation, if size <= cap/3 the backing array is
// reallocated to avoid unbounded memory growth across many erases,
// mirroring basic_value_string::value()'s shrink_to_fit rule in
// vm_data.hpp.
type stringBox struct {
	mu   sync.Mutex
	data []byte
}

func newStringBox(s string) *stringBox {
	return &stringBox{data: []byte(s)}
}

func (b *stringBox) get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

func (b *stringBox) set(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = []byte(s)
	b.compactLocked()
}

func (b *stringBox) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

func (b *stringBox) compactLocked() {
	if len(b.data) <= cap(b.data)/3 {
		nd := make([]byte, len(b.data))
		copy(nd, b.data)
		b.data = nd
	}
}

func (b *stringBox) shallowCopy() *stringBox {
	b.mu.Lock()
	defer b.mu.Unlock()
	nd := make([]byte, len(b.data))
	copy(nd, b.data)
	return &stringBox{data: nd}
}

// NewString creates a non-mt-safe string value with the given content.
func NewString(s string) *Value {
	return &Value{kind: KString, str: newStringBox(s)}
}

// StringValue returns the string content; the caller must have checked
// Kind == KString.
func (v *Value) StringValue() string { return v.str.get() }

// StringLen returns the string's length in bytes.
func (v *Value) StringLen() int { return v.str.len() }

// SetString overwrites the string's content, enforcing read-only and
// capacity hysteresis.
func (v *Value) SetString(s string) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.str.set(s)
	return nil
}

// StringAt returns the byte at index i as a 1-byte string, per the
// "at" builtin applied to strings.
func (v *Value) StringAt(i uint64) (*Value, error) {
	v.str.mu.Lock()
	defer v.str.mu.Unlock()
	if i >= uint64(len(v.str.data)) {
		return nil, texc.New(texc.KindValueOutOfRange)
	}
	return NewString(string(v.str.data[i])), nil
}

// --- vector ---

type vectorBox struct {
	mu   sync.Mutex
	data []*Value
}

func newVectorBox(elems []*Value) *vectorBox {
	d := make([]*Value, len(elems))
	copy(d, elems)
	return &vectorBox{data: d}
}

func (b *vectorBox) allMtSafe() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.data {
		if e != nil && !e.MtSafe() {
			return false
		}
	}
	return true
}

func (b *vectorBox) shallowCopy() *vectorBox {
	b.mu.Lock()
	defer b.mu.Unlock()
	nd := make([]*Value, len(b.data))
	copy(nd, b.data)
	return &vectorBox{data: nd}
}

func (b *vectorBox) compactLocked() {
	if len(b.data) <= cap(b.data)/3 {
		nd := make([]*Value, len(b.data))
		copy(nd, b.data)
		b.data = nd
	}
}

// NewVector creates a non-mt-safe vector from the given elements
// (copied, not aliased).
func NewVector(elems []*Value) *Value {
	return &Value{kind: KVector, vec: newVectorBox(elems)}
}

// VectorLen returns the number of elements.
func (v *Value) VectorLen() int {
	v.vec.mu.Lock()
	defer v.vec.mu.Unlock()
	return len(v.vec.data)
}

// VectorElements returns a snapshot copy of the elements.
func (v *Value) VectorElements() []*Value {
	v.vec.mu.Lock()
	defer v.vec.mu.Unlock()
	out := make([]*Value, len(v.vec.data))
	copy(out, v.vec.data)
	return out
}

// VectorGet reads the element at i, or an out-of-range error.
func (v *Value) VectorGet(i uint64) (*Value, error) {
	v.vec.mu.Lock()
	defer v.vec.mu.Unlock()
	if i >= uint64(len(v.vec.data)) {
		return nil, texc.New(texc.KindValueOutOfRange)
	}
	return v.vec.data[i], nil
}

// VectorSet writes the element at i, growing the vector and filling
// intervening slots with null if i >= current length, per the "at"
// builtin's boundary rule.
func (v *Value) VectorSet(i uint64, val *Value) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.vec.mu.Lock()
	defer v.vec.mu.Unlock()
	if i >= uint64(len(v.vec.data)) {
		grown := make([]*Value, i+1)
		copy(grown, v.vec.data)
		v.vec.data = grown
	}
	v.vec.data[i] = val
	return nil
}

// VectorTruncate keeps only the first n elements (or clears entirely
// if n is 0), then compacts storage, mirroring
// shared_vector::erase()/basic_value_array's hysteresis.
func (v *Value) VectorTruncate(n uint64) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.vec.mu.Lock()
	defer v.vec.mu.Unlock()
	if n < uint64(len(v.vec.data)) {
		v.vec.data = v.vec.data[:n]
	}
	v.vec.compactLocked()
	return nil
}

// --- hash ---

type hashBox struct {
	mu   sync.Mutex
	data map[string]*Value
	high int // high-water mark since last compaction, for rehash simulation
}

func newHashBox() *hashBox {
	return &hashBox{data: make(map[string]*Value)}
}

func (b *hashBox) allMtSafe() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.data {
		if e != nil && !e.MtSafe() {
			return false
		}
	}
	return true
}

func (b *hashBox) shallowCopy() *hashBox {
	b.mu.Lock()
	defer b.mu.Unlock()
	nd := make(map[string]*Value, len(b.data))
	for k, v := range b.data {
		nd[k] = v
	}
	return &hashBox{data: nd, high: len(nd)}
}

// compactLocked rehashes to roughly 1.5x the current size when the
// load factor (size vs. high-water mark) drops to a third or less,
// approximating max_load_factor rehashing in vm_data.hpp since Go maps
// expose no direct capacity/load-factor control.
func (b *hashBox) compactLocked() {
	if len(b.data) > b.high {
		b.high = len(b.data)
	}
	if b.high > 0 && len(b.data) <= b.high/3 {
		nd := make(map[string]*Value, len(b.data)*3/2+1)
		for k, v := range b.data {
			nd[k] = v
		}
		b.data = nd
		b.high = len(nd)
	}
}

// NewHash creates an empty, non-mt-safe hash.
func NewHash() *Value {
	return &Value{kind: KHash, hsh: newHashBox()}
}

// HashLen returns the number of entries.
func (v *Value) HashLen() int {
	v.hsh.mu.Lock()
	defer v.hsh.mu.Unlock()
	return len(v.hsh.data)
}

// HashGet reads the value for key.
func (v *Value) HashGet(key string) (*Value, bool) {
	v.hsh.mu.Lock()
	defer v.hsh.mu.Unlock()
	val, ok := v.hsh.data[key]
	return val, ok
}

// HashSet writes key to val, enforcing read-only.
func (v *Value) HashSet(key string, val *Value) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.hsh.mu.Lock()
	defer v.hsh.mu.Unlock()
	v.hsh.data[key] = val
	if len(v.hsh.data) > v.hsh.high {
		v.hsh.high = len(v.hsh.data)
	}
	return nil
}

// HashDelete removes key, reporting whether it existed, and compacts.
func (v *Value) HashDelete(key string) (bool, error) {
	if err := v.checkWritable(); err != nil {
		return false, err
	}
	v.hsh.mu.Lock()
	defer v.hsh.mu.Unlock()
	_, ok := v.hsh.data[key]
	if ok {
		delete(v.hsh.data, key)
		v.hsh.compactLocked()
	}
	return ok, nil
}

// HashKeysSorted returns the entry keys in lexicographic order.
func (v *Value) HashKeysSorted() []string {
	v.hsh.mu.Lock()
	defer v.hsh.mu.Unlock()
	keys := make([]string, 0, len(v.hsh.data))
	for k := range v.hsh.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
