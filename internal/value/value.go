// Package value implements the ThreadScript value model: a tagged
// runtime representation of all script data (§3/§4.1 of the spec),
// including the one-way mt-safe transition and its deep preconditions.
//
// A nil *Value represents the distinguished null value throughout this
// package and its callers.
//
// The package intentionally does not import internal/code, internal/eval
// or internal/symtab: the evaluation engine and code tree instead
// satisfy small interfaces declared here (ArgEvaluator, Scope, NodeRef)
// so that callable values (function, script, native_function, object)
// can be dispatched without a circular dependency. This mirrors the
// spec's design note to replace a deep virtual hierarchy with a tagged
// variant plus a narrow trait for callables.
package value

import (
	"io"
	"strconv"
	"sync/atomic"

	"github.com/threadscript/ts/internal/texc"
)

// Kind is the stable type tag of a Value, also the string returned by
// the "type" builtin.
type Kind uint8

const (
	KNull Kind = iota
	KBool
	KInt
	KUnsigned
	KString
	KVector
	KHash
	KScript
	KFunction
	KNativeFunction
	KObject
)

func (k Kind) String() string {
	switch k {
	case KNull:
		return "null"
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KUnsigned:
		return "unsigned"
	case KString:
		return "string"
	case KVector:
		return "vector"
	case KHash:
		return "hash"
	case KScript:
		return "script"
	case KFunction:
		return "function"
	case KNativeFunction:
		return "native_function"
	case KObject:
		return "object"
	default:
		return "?"
	}
}

// Value is the tagged representation of every piece of ThreadScript
// data except null (represented by a nil *Value).
type Value struct {
	kind   Kind
	mtSafe atomic.Bool

	b bool
	i int64
	u uint64

	str *stringBox
	vec *vectorBox
	hsh *hashBox

	script *ScriptPayload
	fn     *FunctionPayload
	native NativeFn
	obj    Object

	// typeName, when non-empty, overrides Kind.String() in TypeName for
	// non-object values. Object values take their script-visible type
	// name ("channel", "shared_vector", ...) from Object.TypeName instead.
	typeName string
}

// TypeName returns the stable type identifier used by the "type"
// builtin, e.g. "int", "vector", "channel".
func (v *Value) TypeName() string {
	if v == nil {
		return "null"
	}
	if v.kind == KObject && v.obj != nil {
		return v.obj.TypeName()
	}
	if v.typeName != "" {
		return v.typeName
	}
	return v.kind.String()
}

// Kind returns the value's tag. Calling Kind on a nil *Value is valid
// and returns KNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KNull
	}
	return v.kind
}

// MtSafe reports whether this value has been marked thread-safe.
func (v *Value) MtSafe() bool {
	if v == nil {
		return true // null is vacuously safe to share
	}
	return v.mtSafe.Load()
}

// SetMtSafe attempts the one-way mt-safe transition. It fails with
// value_mt_unsafe if the deep precondition (every transitively
// referenced value is already mt-safe) does not hold. Idempotent: a
// value already mt-safe succeeds trivially.
func (v *Value) SetMtSafe() error {
	if v == nil {
		return nil
	}
	if v.mtSafe.Load() {
		return nil
	}
	switch v.kind {
	case KVector:
		if !v.vec.allMtSafe() {
			return texc.New(texc.KindValueMtUnsafe)
		}
	case KHash:
		if !v.hsh.allMtSafe() {
			return texc.New(texc.KindValueMtUnsafe)
		}
	}
	v.mtSafe.Store(true)
	return nil
}

// checkWritable returns value_read_only if v is mt-safe.
func (v *Value) checkWritable() error {
	if v.MtSafe() {
		return texc.New(texc.KindValueReadOnly)
	}
	return nil
}

// Write renders the textual form used by the "print" builtin and
// string coercion: numbers in decimal, booleans as true/false, strings
// raw, and every other kind as its type name.
func (v *Value) Write(out io.Writer) {
	if v == nil {
		io.WriteString(out, "null")
		return
	}
	switch v.kind {
	case KBool:
		if v.b {
			io.WriteString(out, "true")
		} else {
			io.WriteString(out, "false")
		}
	case KInt:
		io.WriteString(out, strconv.FormatInt(v.i, 10))
	case KUnsigned:
		io.WriteString(out, strconv.FormatUint(v.u, 10))
	case KString:
		io.WriteString(out, v.str.get())
	default:
		io.WriteString(out, v.TypeName())
	}
}

// String implements fmt.Stringer using Write, mainly for debugging and
// error messages (not used for the "print" builtin, which writes
// directly to an io.Writer to keep the synchronized-stream contract).
func (v *Value) String() string {
	var b []byte
	w := &byteWriter{b: b}
	v.Write(w)
	return string(w.b)
}

type byteWriter struct{ b []byte }

func (w *byteWriter) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// ShallowCopy returns a new value carrying the same scalar content or
// the same child references (not recursively cloned). mtSafeOverride,
// if non-nil, sets the new value's mt-safe flag explicitly; otherwise
// it is inherited from v. Object values reject shallow copy with
// not_implemented.
func (v *Value) ShallowCopy(mtSafeOverride *bool) (*Value, error) {
	if v == nil {
		return nil, nil
	}
	result := func(nv *Value) (*Value, error) {
		if mtSafeOverride != nil {
			nv.mtSafe.Store(*mtSafeOverride)
		} else {
			nv.mtSafe.Store(v.mtSafe.Load())
		}
		return nv, nil
	}
	switch v.kind {
	case KBool:
		return result(&Value{kind: KBool, b: v.b})
	case KInt:
		return result(&Value{kind: KInt, i: v.i})
	case KUnsigned:
		return result(&Value{kind: KUnsigned, u: v.u})
	case KString:
		return result(&Value{kind: KString, str: newStringBox(v.str.get())})
	case KVector:
		return result(&Value{kind: KVector, vec: v.vec.shallowCopy()})
	case KHash:
		return result(&Value{kind: KHash, hsh: v.hsh.shallowCopy()})
	case KScript:
		return result(&Value{kind: KScript, script: v.script})
	case KFunction:
		return result(&Value{kind: KFunction, fn: v.fn})
	case KNativeFunction:
		return result(&Value{kind: KNativeFunction, native: v.native})
	case KObject:
		return nil, texc.Named(texc.KindNotImplemented, "clone")
	default:
		return nil, texc.New(texc.KindValueBad)
	}
}

// IsSame reports reference (pointer) identity, used by the "is_same"
// builtin; two nulls are always the same.
func IsSame(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b
}

// --- scalar constructors and accessors ---

func NewBool(b bool) *Value { return &Value{kind: KBool, b: b} }
func NewInt(i int64) *Value { return &Value{kind: KInt, i: i} }
func NewUnsigned(u uint64) *Value { return &Value{kind: KUnsigned, u: u} }

// BoolValue returns the stored bool; the caller must have checked Kind.
func (v *Value) BoolValue() bool { return v.b }

// IntValue returns the stored int; the caller must have checked Kind.
func (v *Value) IntValue() int64 { return v.i }

// UnsignedValue returns the stored unsigned; the caller must have
// checked Kind.
func (v *Value) UnsignedValue() uint64 { return v.u }

// SetBool overwrites a bool value in place, enforcing read-only.
func (v *Value) SetBool(b bool) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.b = b
	return nil
}

// SetInt overwrites an int value in place, enforcing read-only.
func (v *Value) SetInt(i int64) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.i = i
	return nil
}

// SetUnsigned overwrites an unsigned value in place, enforcing
// read-only.
func (v *Value) SetUnsigned(u uint64) error {
	if err := v.checkWritable(); err != nil {
		return err
	}
	v.u = u
	return nil
}

// AsIndex coerces a value expected to be a non-negative index: int >=
// 0 or unsigned. Used by container "at"/erase-style builtins and by
// ArgIndex implementations.
func AsIndex(v *Value) (uint64, error) {
	if v == nil {
		return 0, texc.New(texc.KindValueNull)
	}
	switch v.kind {
	case KInt:
		if v.i < 0 {
			return 0, texc.New(texc.KindValueOutOfRange)
		}
		return uint64(v.i), nil
	case KUnsigned:
		return v.u, nil
	default:
		return 0, texc.New(texc.KindValueType)
	}
}

// CoerceBool implements the "bool" builtin's coercion rule: any
// non-bool, non-null value is true; bool is itself; null is an error.
func CoerceBool(v *Value) (bool, error) {
	if v == nil {
		return false, texc.New(texc.KindValueNull)
	}
	if v.kind == KBool {
		return v.b, nil
	}
	return true, nil
}
