// Package eval implements the ThreadScript tree-walking evaluation
// engine: per-thread frame stack, symbol-table chaining, stack-depth
// cap and structured exception propagation (§4.3).
//
// eval depends only on internal/code, internal/value, internal/symtab,
// internal/texc and internal/alloc -- never on internal/builtin, internal/channel,
// internal/shared or internal/vm. Built-in functions are ordinary
// value.NativeFn closures that reach back into the running evaluation
// purely through the value.ArgEvaluator interface that this package
// implements, so the dependency always points inward.
package eval

import (
	"io"

	"github.com/threadscript/ts/internal/alloc"
	"github.com/threadscript/ts/internal/symtab"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// DefaultMaxDepth is the stack-depth cap applied when a State is
// created without an explicit override (§4.3 "default 1000").
const DefaultMaxDepth = 1000

// Frame is one entry of a thread's call stack: the function currently
// executing (empty for the top-level script frame), the source
// location last visited within it, and a local symbol table chained to
// the calling frame's locals (and, transitively, the thread's globals)
// by pushFrame (§3 "Stack frame").
type Frame struct {
	FuncName string
	Loc      texc.SrcLocation
	Locals   *symtab.Table
}

func (f *Frame) location() texc.FrameLocation {
	return texc.FrameLocation{Function: f.FuncName, SrcLocation: f.Loc}
}

// State is one thread's evaluation state: a deque of frames, a
// thread-local globals table whose parent is the VM's shared-globals
// snapshot, an optional stdout override, and a max-stack-depth cap
// (§3 "Thread state").
type State struct {
	// ID is an opaque correlation id the host assigns to this thread
	// state (the VM stamps a UUID here), carried through so debug
	// logging and trace dumps can tie output back to a specific
	// worker without exposing goroutine IDs.
	ID       string
	Globals  *symtab.Table
	Frames   []*Frame
	MaxDepth int
	Stdout   io.Writer

	// Alloc is this thread's quota accountant (§5/§9); a nil value
	// behaves as an unlimited allocator, since *alloc.Allocator's
	// methods are nil-receiver safe.
	Alloc *alloc.Allocator
}

// NewState creates a thread state. globals is this thread's own table
// (its Parent should already be set to the shared-globals snapshot by
// the caller, per §5's "update_sh_vars" rule); stdout is stored as
// given, with no default substituted for nil.
func NewState(globals *symtab.Table, stdout io.Writer) *State {
	return &State{Globals: globals, MaxDepth: DefaultMaxDepth, Stdout: stdout}
}

// UpdateSharedGlobals re-points this thread's globals table to a new
// shared-globals snapshot, per §5's "state.update_sh_vars()".
func (s *State) UpdateSharedGlobals(shared *symtab.Table) {
	s.Globals.Parent = shared
}

func (s *State) top() *Frame {
	if len(s.Frames) == 0 {
		return nil
	}
	return s.Frames[len(s.Frames)-1]
}

// pushFrame pushes a new call frame, enforcing the stack-depth cap.
// Recursion depth exactly equal to the cap succeeds; one more frame
// raises op_recursion (§8 "Boundary behaviors").
//
// The new frame's locals chain to the *caller's* locals (the current
// top frame at the moment of the call), not straight to s.Globals: a
// function bound by "fun" in an enclosing frame -- including the
// top-level script frame -- must stay visible to frames it calls into,
// which is what lets `seq(fun("f", f()), f())` recurse at all. The
// chain still bottoms out at s.Globals, since the very first (no
// caller) frame and every frame above it eventually parents there.
func (s *State) pushFrame(funcName string, loc texc.SrcLocation) (*Frame, error) {
	if len(s.Frames) >= s.MaxDepth {
		return nil, texc.New(texc.KindOpRecursion).WithTrace(s.trace())
	}
	parent := s.Globals
	if top := s.top(); top != nil {
		parent = top.Locals
	}
	f := &Frame{FuncName: funcName, Loc: loc, Locals: symtab.New(parent)}
	s.Frames = append(s.Frames, f)
	return f, nil
}

func (s *State) popFrame() {
	s.Frames = s.Frames[:len(s.Frames)-1]
}

// trace builds the current stack trace, most recent frame first.
func (s *State) trace() texc.StackTrace {
	t := make(texc.StackTrace, 0, len(s.Frames))
	for i := len(s.Frames) - 1; i >= 0; i-- {
		t = append(t, s.Frames[i].location())
	}
	return t
}

// augment implements §4.3 step 5: a ThreadScript exception with no
// trace yet is tagged with the current trace; any other error is
// wrapped as a "wrapped" exception carrying the current trace.
func (s *State) augment(err error) error {
	if err == nil {
		return nil
	}
	if te, ok := err.(*texc.Error); ok {
		return te.WithTrace(s.trace())
	}
	return texc.Wrap(err, s.trace())
}

func lookupValue(t *symtab.Table, name string) (*value.Value, bool) {
	raw, ok := t.Lookup(name, true)
	if !ok {
		return nil, false
	}
	v, _ := raw.(*value.Value)
	return v, true
}

func insertValue(t *symtab.Table, name string, v *value.Value) {
	t.InsertOrAssign(name, v)
}
