package value

import "io"

// NodeRef is an opaque handle to a code-tree node (internal/code.Node
// satisfies this trivially, since it is the empty interface). Callable
// values use it to let the evaluation engine control when/whether a
// child is evaluated (special forms like if/while/var/fun/try/and/or).
type NodeRef interface{}

// Scope is the minimal read/write view of a symbol table that
// callables need, without depending on internal/symtab directly.
type Scope interface {
	Lookup(name string, useParent bool) (*Value, bool)
	InsertOrAssign(name string, v *Value)
	Erase(name string) bool
}

// Allocator is the minimal quota-accounting surface built-ins and
// object methods use to charge bytes against the host's memory cap
// (§5/§9) before growing a container or constructing an object,
// without the value package depending on internal/alloc directly --
// *alloc.Allocator satisfies this structurally.
type Allocator interface {
	Reserve(n int64) error
	Release(n int64)
}

// ArgEvaluator is implemented by the evaluation engine (internal/eval)
// and passed to NativeFn and Object.Dispatch calls, giving built-ins and
// object methods controlled access to the call node's children and to
// the current frame's scopes, without the value package depending on
// internal/eval or internal/code.
type ArgEvaluator interface {
	// NArg is the number of child nodes of the call (including any
	// leading method-name argument for objects).
	NArg() int
	// Arg evaluates the i-th child node and returns its value.
	Arg(i int) (*Value, error)
	// ArgIndex evaluates the i-th child, rejects null, and requires an
	// int >= 0 or unsigned result, returned as uint64.
	ArgIndex(i int) (uint64, error)
	// RawChild returns an opaque handle to the i-th child without
	// evaluating it.
	RawChild(i int) NodeRef
	// Eval evaluates a previously obtained node handle.
	Eval(n NodeRef) (*Value, error)
	// Name returns the i-th child's node name (possibly empty).
	Name(i int) string
	// Local is the innermost local symbol table of the current frame.
	Local() Scope
	// Global is the current thread's global symbol table.
	Global() Scope
	// Stdout is the thread's synchronized standard output stream.
	Stdout() io.Writer
	// CallFunction invokes a function value as if written `fn(args...)`,
	// used by higher-order built-ins; args may be empty.
	CallFunction(fn *Value, args []*Value) (*Value, error)
	// Alloc is the current thread's quota accountant, consulted before
	// a built-in or object method grows a container or constructs a new
	// one. Never nil; a host running with no -M cap still returns an
	// Allocator whose Reserve always succeeds.
	Alloc() Allocator
}

// NativeFn is the Go implementation of a built-in function.
type NativeFn func(ev ArgEvaluator) (*Value, error)

// NewNativeFunction wraps a Go function as a mt-safe native_function
// value, per §3 ("native_function values are constructed mt-safe").
func NewNativeFunction(fn NativeFn) *Value {
	v := &Value{kind: KNativeFunction, native: fn}
	v.mtSafe.Store(true)
	return v
}

// Native returns the wrapped Go function; the caller must have checked
// Kind == KNativeFunction.
func (v *Value) Native() NativeFn { return v.native }

// Object is implemented by native-object classes (channel,
// shared_vector, shared_hash, ...). Dispatch is called with ev.NArg()
// including the method-name argument at index 0; method is that name.
type Object interface {
	TypeName() string
	Dispatch(ev ArgEvaluator, method string) (*Value, error)
}

// NewObject wraps obj as an mt-safe object value (object-family values
// are constructed mt-safe and internally synchronized, per §3).
func NewObject(obj Object) *Value {
	v := &Value{kind: KObject, obj: obj}
	v.mtSafe.Store(true)
	return v
}

// ObjectValue returns the wrapped Object; the caller must have checked
// Kind == KObject.
func (v *Value) ObjectValue() Object { return v.obj }

// ScriptPayload is the handle a script value carries: its root node and
// file name. Root is a value.NodeRef (internal/code.Node).
type ScriptPayload struct {
	Root NodeRef
	File string
}

// NewScript wraps a parsed script as a (non-mt-safe, by default)
// script value; the caller typically marks the literal mt-safe
// immediately after parsing, per §3 "script literals are mt-safe by
// construction".
func NewScript(root NodeRef, file string) *Value {
	return &Value{kind: KScript, script: &ScriptPayload{Root: root, File: file}}
}

// Script returns the script payload; the caller must have checked
// Kind == KScript.
func (v *Value) Script() *ScriptPayload { return v.script }

// FunctionPayload is the handle a function value carries: the
// unevaluated body node and the defining function's name (for stack
// traces).
type FunctionPayload struct {
	Body NodeRef
	Name string
}

// NewFunction wraps a function body as a function value.
func NewFunction(body NodeRef, name string) *Value {
	return &Value{kind: KFunction, fn: &FunctionPayload{Body: body, Name: name}}
}

// Function returns the function payload; the caller must have checked
// Kind == KFunction.
func (v *Value) Function() *FunctionPayload { return v.fn }
