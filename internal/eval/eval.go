package eval

import (
	"io"

	"github.com/threadscript/ts/internal/code"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Eval evaluates one code-tree node against state, implementing §4.3:
//
//  1. Update the top frame's location to the node's.
//  2. Determine the effective value: the node's bound value if
//     present, otherwise look up its name, walking parent scopes;
//     a miss raises unknown_symbol.
//  3. A null effective value evaluates to null.
//  4. Otherwise dispatch according to the value's kind.
//  5. Any error is augmented with the current trace before returning.
func Eval(s *State, n *code.Node) (result *value.Value, err error) {
	if n == nil {
		return nil, nil
	}
	top := s.top()
	if top != nil {
		top.Loc = n.Loc
	}
	var v *value.Value
	if n.HasValue() {
		v = n.Value()
	} else {
		name := n.Name()
		var looked *value.Value
		var ok bool
		if top != nil {
			// top.Locals' parent chain already reaches s.Globals
			// (pushFrame wires it up that way), so one lookup here
			// walks innermost-local to outermost-global in order.
			looked, ok = lookupValue(top.Locals, name)
		} else {
			looked, ok = lookupValue(s.Globals, name)
		}
		if !ok {
			return nil, s.augment(texc.Named(texc.KindUnknownSymbol, name))
		}
		v = looked
	}
	if v == nil {
		return nil, nil
	}
	switch v.Kind() {
	case value.KScript:
		result, err = s.evalScriptValue(v, n)
	case value.KFunction:
		result, err = s.evalFunctionValue(v, n)
	case value.KNativeFunction:
		result, err = s.evalNativeValue(v, n)
	case value.KObject:
		result, err = s.evalObjectValue(v, n)
	default:
		result, err = v, nil
	}
	if err != nil {
		return nil, s.augment(err)
	}
	return result, nil
}

// nodeEvaluator adapts a (State, call-node) pair to value.ArgEvaluator,
// letting built-ins and object methods reach back into the evaluator
// without internal/value importing this package.
type nodeEvaluator struct {
	s *State
	n *code.Node
}

func (e *nodeEvaluator) NArg() int { return e.n.NChild() }

func (e *nodeEvaluator) Arg(i int) (*value.Value, error) {
	if i < 0 || i >= e.n.NChild() {
		return nil, texc.New(texc.KindOpNarg)
	}
	return Eval(e.s, e.n.Children()[i])
}

func (e *nodeEvaluator) ArgIndex(i int) (uint64, error) {
	v, err := e.Arg(i)
	if err != nil {
		return 0, err
	}
	return value.AsIndex(v)
}

func (e *nodeEvaluator) RawChild(i int) value.NodeRef {
	if i < 0 || i >= e.n.NChild() {
		return nil
	}
	return e.n.Children()[i]
}

func (e *nodeEvaluator) Eval(ref value.NodeRef) (*value.Value, error) {
	child, ok := ref.(*code.Node)
	if !ok {
		return nil, texc.New(texc.KindValueBad)
	}
	return Eval(e.s, child)
}

func (e *nodeEvaluator) Name(i int) string {
	if i < 0 || i >= e.n.NChild() {
		return ""
	}
	return e.n.Children()[i].Name()
}

func (e *nodeEvaluator) Local() value.Scope  { return scopeAdapter{e.s.top().Locals} }
func (e *nodeEvaluator) Global() value.Scope { return scopeAdapter{e.s.Globals} }
func (e *nodeEvaluator) Stdout() io.Writer   { return e.s.Stdout }

func (e *nodeEvaluator) CallFunction(fn *value.Value, args []*value.Value) (*value.Value, error) {
	return e.s.callValue(fn, args)
}

func (e *nodeEvaluator) Alloc() value.Allocator { return e.s.Alloc }

// valuesEvaluator adapts a (State, pre-evaluated args) pair to
// value.ArgEvaluator, used when a native_function or object method is
// invoked indirectly (via CallFunction / channel callbacks) rather than
// from a call-node with unevaluated children.
type valuesEvaluator struct {
	s    *State
	args []*value.Value
}

func (e *valuesEvaluator) NArg() int { return len(e.args) }

func (e *valuesEvaluator) Arg(i int) (*value.Value, error) {
	if i < 0 || i >= len(e.args) {
		return nil, texc.New(texc.KindOpNarg)
	}
	return e.args[i], nil
}

func (e *valuesEvaluator) ArgIndex(i int) (uint64, error) {
	v, err := e.Arg(i)
	if err != nil {
		return 0, err
	}
	return value.AsIndex(v)
}

func (e *valuesEvaluator) RawChild(i int) value.NodeRef {
	if i < 0 || i >= len(e.args) {
		return nil
	}
	return e.args[i]
}

func (e *valuesEvaluator) Eval(ref value.NodeRef) (*value.Value, error) {
	v, _ := ref.(*value.Value)
	return v, nil
}

func (e *valuesEvaluator) Name(i int) string { return "" }

func (e *valuesEvaluator) Local() value.Scope  { return scopeAdapter{e.s.top().Locals} }
func (e *valuesEvaluator) Global() value.Scope { return scopeAdapter{e.s.Globals} }
func (e *valuesEvaluator) Stdout() io.Writer   { return e.s.Stdout }

func (e *valuesEvaluator) CallFunction(fn *value.Value, args []*value.Value) (*value.Value, error) {
	return e.s.callValue(fn, args)
}

func (e *valuesEvaluator) Alloc() value.Allocator { return e.s.Alloc }

// Call invokes fn (a function or native_function value) with
// already-evaluated args, exported for the VM's two-phase orchestrator
// to start _main/_thread(idx).
func (s *State) Call(fn *value.Value, args []*value.Value) (*value.Value, error) {
	return s.callValue(fn, args)
}

// Lookup resolves name against s's globals chain (which, after a
// two-phase setup run publishes new shared globals, reaches all the
// way up to the VM's shared-globals snapshot).
func Lookup(s *State, name string) (*value.Value, bool) {
	return lookupValue(s.Globals, name)
}

// callValue invokes fn (function or native_function) with already
// evaluated args, used by higher-order built-ins (e.g. a "map"-style
// extension) via ArgEvaluator.CallFunction.
func (s *State) callValue(fn *value.Value, args []*value.Value) (*value.Value, error) {
	switch fn.Kind() {
	case value.KNativeFunction:
		return fn.Native()(&valuesEvaluator{s: s, args: args})
	case value.KFunction:
		return s.invokeFunction(fn, args)
	default:
		return nil, texc.New(texc.KindOpBad)
	}
}

// evalScriptValue runs a script value's root node in a fresh frame
// whose locals parent is the thread's globals (§4.3 "Scripts evaluate
// by pushing a new frame").
func (s *State) evalScriptValue(v *value.Value, n *code.Node) (*value.Value, error) {
	payload := v.Script()
	root, _ := payload.Root.(*code.Node)
	f, err := s.pushFrame(payload.File, n.Loc)
	if err != nil {
		return nil, err
	}
	f.Locals.Parent = s.Globals
	defer s.popFrame()
	return Eval(s, root)
}

// RunScript evaluates a whole script at top level (the driver's
// single-phase mode, or a two-phase "setup" run), per §4.8.
func RunScript(s *State, payload *value.ScriptPayload) (*value.Value, error) {
	root, _ := payload.Root.(*code.Node)
	if _, err := s.pushFrame(payload.File, texc.SrcLocation{File: payload.File}); err != nil {
		return nil, err
	}
	defer s.popFrame()
	return Eval(s, root)
}

// RunScriptCapture evaluates a script like RunScript, then returns a
// snapshot of the frame's locals, used by the two-phase orchestrator
// to capture the setup phase's bindings as the next shared globals
// (§4.8).
func RunScriptCapture(s *State, payload *value.ScriptPayload) (*value.Value, map[string]*value.Value, error) {
	root, _ := payload.Root.(*code.Node)
	f, err := s.pushFrame(payload.File, texc.SrcLocation{File: payload.File})
	if err != nil {
		return nil, nil, err
	}
	result, err := Eval(s, root)
	snap := f.Locals.Snapshot()
	s.popFrame()
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string]*value.Value, len(snap))
	for k, raw := range snap {
		vv, _ := raw.(*value.Value)
		out[k] = vv
	}
	return result, out, nil
}

// evalFunctionValue installs the "_args" auto-variable holding the
// eagerly, left-to-right evaluated call arguments, then runs the
// function body in a fresh frame (§4.3).
func (s *State) evalFunctionValue(v *value.Value, n *code.Node) (*value.Value, error) {
	args := make([]*value.Value, n.NChild())
	for i := range args {
		a, err := Eval(s, n.Children()[i])
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	return s.invokeFunction(v, args)
}

func (s *State) invokeFunction(v *value.Value, args []*value.Value) (*value.Value, error) {
	payload := v.Function()
	body, _ := payload.Body.(*code.Node)
	f, err := s.pushFrame(payload.Name, body.Loc)
	if err != nil {
		return nil, err
	}
	insertValue(f.Locals, "_args", value.NewVector(args))
	defer s.popFrame()
	return Eval(s, body)
}

// evalNativeValue dispatches to a built-in or special-form
// implementation, giving it raw access to the call node's unevaluated
// children via nodeEvaluator.
func (s *State) evalNativeValue(v *value.Value, n *code.Node) (*value.Value, error) {
	return v.Native()(&nodeEvaluator{s: s, n: n})
}

// evalObjectValue dispatches a method call on an object value: the
// first child must evaluate to a string naming the method; the
// remaining children are the method's arguments (§4.1, §4.4 "Unknown
// builtin on an object -> not_implemented").
func (s *State) evalObjectValue(v *value.Value, n *code.Node) (*value.Value, error) {
	if n.NChild() < 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	methodVal, err := Eval(s, n.Children()[0])
	if err != nil {
		return nil, err
	}
	if methodVal == nil || methodVal.Kind() != value.KString {
		return nil, texc.New(texc.KindValueType)
	}
	obj := v.ObjectValue()
	return obj.Dispatch(&nodeEvaluator{s: s, n: n}, methodVal.StringValue())
}
