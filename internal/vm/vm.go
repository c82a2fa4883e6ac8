// Package vm implements the top-level VM/state container objects and
// the two-phase orchestration model of §3/§4.8: an allocator instance,
// an atomically published shared-globals table, a default stdout, and
// a live-state count.
package vm

import (
	"io"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/threadscript/ts/internal/alloc"
	"github.com/threadscript/ts/internal/builtin"
	"github.com/threadscript/ts/internal/debuglog"
	"github.com/threadscript/ts/internal/eval"
	"github.com/threadscript/ts/internal/iosync"
	"github.com/threadscript/ts/internal/symtab"
)

// VM owns an allocator, the shared-globals snapshot (published via an
// atomic pointer swap, per §5's "atomic<shared_ptr> provides the
// release/acquire edge"), the synchronized default stdout, and a count
// of live thread states. A VM outlives all its states.
type VM struct {
	Alloc    *alloc.Allocator
	Stdout   *iosync.Writer
	MaxDepth int
	Debug    *debuglog.Logger

	shared atomic.Pointer[symtab.Table]
	states atomic.Int64
}

// New creates a VM with the required built-ins installed as the
// initial shared globals. Debug logging is controlled entirely by
// THREADSCRIPT_DEBUG/THREADSCRIPT_DEBUG_FORMAT (§6); Debug.Printf is a
// no-op unless the host's environment opted in.
func New(allocator *alloc.Allocator, stdout io.Writer) *VM {
	v := &VM{
		Alloc:    allocator,
		Stdout:   iosync.New(stdout),
		MaxDepth: eval.DefaultMaxDepth,
		Debug:    debuglog.FromEnv(),
	}
	root := symtab.New(nil)
	for name, fn := range builtin.Registry() {
		root.InsertOrAssign(name, fn)
	}
	v.shared.Store(root)
	v.Debug.Printf("vm started with %d built-ins", len(root.Snapshot()))
	return v
}

// SharedGlobals returns the currently published shared-globals table.
func (v *VM) SharedGlobals() *symtab.Table { return v.shared.Load() }

// PublishGlobals atomically replaces the shared-globals table;
// readers already holding the old snapshot are unaffected, new thread
// states see the new one (§5 "replaced wholesale by atomic store").
func (v *VM) PublishGlobals(next *symtab.Table) {
	v.shared.Store(next)
	v.Debug.Printf("shared globals republished")
}

// NewState creates a per-thread evaluation state whose locals' parent
// chain reaches the VM's current shared-globals snapshot. Each state
// is tagged with a fresh correlation id (see eval.State.ID) so trace
// dumps and debug logs can be attributed to a specific worker.
func (v *VM) NewState() *eval.State {
	v.states.Add(1)
	locals := symtab.New(v.shared.Load())
	s := eval.NewState(locals, v.Stdout)
	s.MaxDepth = v.MaxDepth
	s.ID = uuid.NewString()
	s.Alloc = v.Alloc
	v.Debug.Printf("new state id=%s live=%d", s.ID, v.states.Load())
	return s
}

// releaseState records that a thread state returned by NewState has
// finished running.
func (v *VM) releaseState() { v.states.Add(-1) }

// LiveStates returns the number of thread states currently running.
func (v *VM) LiveStates() int64 { return v.states.Load() }
