package vm

import (
	"golang.org/x/sync/errgroup"

	"github.com/threadscript/ts/internal/eval"
	"github.com/threadscript/ts/internal/symtab"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Exit statuses, mirroring §6's mapping.
const (
	ExitSuccess       = 0
	ExitUsage         = 65
	ExitParseOrIO     = 66
	ExitScriptError   = 67
	ExitConfiguration = 68
	ExitWorkerFailed  = 69
)

// ResultToExitStatus maps a script's final value to a process exit
// status in 0-63, per §6: bool true is 1, false is 0; an int/unsigned
// result of 0 is 0, any other value is folded into 1-63; every other
// value kind is treated as success (0).
func ResultToExitStatus(v *value.Value) int {
	if v == nil {
		return ExitSuccess
	}
	switch v.Kind() {
	case value.KBool:
		if v.BoolValue() {
			return 1
		}
		return 0
	case value.KInt:
		return foldExitCode(v.IntValue())
	case value.KUnsigned:
		return foldExitCode(int64(v.UnsignedValue()))
	default:
		return ExitSuccess
	}
}

func foldExitCode(i int64) int {
	if i == 0 {
		return 0
	}
	if i < 0 {
		i = -i
	}
	return int((i-1)%63) + 1
}

// RunSinglePhase evaluates script once; its final value is both the
// caller's result and (via ResultToExitStatus) the driver's exit
// status (§4.8 "Single-phase").
func RunSinglePhase(v *VM, script *value.ScriptPayload) (*value.Value, int, error) {
	st := v.NewState()
	defer v.releaseState()
	result, err := eval.RunScript(st, script)
	if err != nil {
		return nil, ExitScriptError, err
	}
	return result, ResultToExitStatus(result), nil
}

// RunTwoPhase implements §4.8's "Two-phase" mode: the script is
// evaluated once as a setup phase, its locals become the next shared
// globals, then N worker threads run `_thread(idx)` concurrently with
// one goroutine running `_main()`. Missing `_main` (or `_thread` when
// numThreads > 0) is a fatal configuration error; any worker error
// yields ExitWorkerFailed once `_main` itself has returned.
func RunTwoPhase(v *VM, script *value.ScriptPayload, numThreads int) (*value.Value, int, error) {
	setupState := v.NewState()
	_, locals, err := eval.RunScriptCapture(setupState, script)
	v.releaseState()
	if err != nil {
		return nil, ExitScriptError, err
	}

	symVals := make(map[string]symtab.Value, len(locals))
	for k, vv := range locals {
		symVals[k] = vv
	}
	v.PublishGlobals(symtab.NewFromMap(symVals, v.SharedGlobals()))

	mainState := v.NewState()
	mainFn, ok := eval.Lookup(mainState, "_main")
	if !ok || mainFn == nil || mainFn.Kind() != value.KFunction {
		v.releaseState()
		return nil, ExitConfiguration, texc.Named(texc.KindUnknownSymbol, "_main")
	}
	var threadFn *value.Value
	if numThreads > 0 {
		threadFn, ok = eval.Lookup(mainState, "_thread")
		if !ok || threadFn == nil || threadFn.Kind() != value.KFunction {
			v.releaseState()
			return nil, ExitConfiguration, texc.Named(texc.KindUnknownSymbol, "_thread")
		}
	}

	// errgroup.Group carries the worker failure back through g.Wait()
	// itself (its first non-nil return, cancelling no one else since
	// §4.8 lets sibling workers keep running after one fails) rather
	// than being collected by hand, which is the reason to reach for it
	// over a bare sync.WaitGroup here.
	var g errgroup.Group
	for i := 0; i < numThreads; i++ {
		idx := i
		g.Go(func() error {
			ts := v.NewState()
			defer v.releaseState()
			v.Debug.Printf("thread %d starting (state id=%s)", idx, ts.ID)
			_, werr := ts.Call(threadFn, []*value.Value{value.NewInt(int64(idx))})
			if werr != nil {
				v.Debug.Printf("thread %d failed: %v", idx, werr)
			} else {
				v.Debug.Printf("thread %d finished", idx)
			}
			return werr
		})
	}

	mainResult, mainErr := mainState.Call(mainFn, nil)
	v.releaseState()
	workerErr := g.Wait()

	if mainErr != nil {
		return nil, ExitScriptError, mainErr
	}
	if workerErr != nil {
		return mainResult, ExitWorkerFailed, workerErr
	}
	return mainResult, ResultToExitStatus(mainResult), nil
}
