// Package builtin implements the required built-in function set of
// §4.4: control forms (seq, if, while, var/gvar, fun), value
// introspection (bool, clone, mt_safe, is_mt_safe, is_null, is_same,
// type), I/O (print), exceptions (throw, try), arithmetic, comparison,
// logic, and container access (at, size).
//
// Every built-in is an ordinary value.NativeFn: it receives a
// value.ArgEvaluator and reaches back into the running evaluation only
// through that narrow interface, so this package depends on
// internal/value and internal/texc (plus internal/channel and
// internal/shared for the object constructors) -- never on
// internal/eval.
// Special forms (seq, if, while, var, fun, try, and, or) rely on
// ArgEvaluator.Arg evaluating children lazily, one at a time, to get
// their short-circuiting/control-flow behavior for free.
package builtin

import (
	"bytes"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Registry returns the required built-in functions keyed by their
// script-visible name, ready to be installed into a VM's shared
// globals table.
func Registry() map[string]*value.Value {
	reg := map[string]*value.Value{
		"seq":         value.NewNativeFunction(Seq),
		"if":          value.NewNativeFunction(If),
		"while":       value.NewNativeFunction(While),
		"var":         value.NewNativeFunction(Var),
		"gvar":        value.NewNativeFunction(Gvar),
		"fun":         value.NewNativeFunction(Fun),
		"bool":        value.NewNativeFunction(Bool),
		"clone":       value.NewNativeFunction(Clone),
		"mt_safe":     value.NewNativeFunction(MtSafe),
		"is_mt_safe":  value.NewNativeFunction(IsMtSafe),
		"is_null":     value.NewNativeFunction(IsNull),
		"is_same":     value.NewNativeFunction(IsSame),
		"type":        value.NewNativeFunction(Type),
		"print":       value.NewNativeFunction(Print),
		"throw":       value.NewNativeFunction(Throw),
		"try":         value.NewNativeFunction(Try),
		"add":         value.NewNativeFunction(Add),
		"sub":         value.NewNativeFunction(Sub),
		"mul":         value.NewNativeFunction(Mul),
		"div":         value.NewNativeFunction(Div),
		"mod":         value.NewNativeFunction(Mod),
		"eq":          value.NewNativeFunction(Eq),
		"ne":          value.NewNativeFunction(Ne),
		"lt":          value.NewNativeFunction(Lt),
		"le":          value.NewNativeFunction(Le),
		"gt":          value.NewNativeFunction(Gt),
		"ge":          value.NewNativeFunction(Ge),
		"and":         value.NewNativeFunction(And),
		"or":          value.NewNativeFunction(Or),
		"not":         value.NewNativeFunction(Not),
		"at":          value.NewNativeFunction(At),
		"size":        value.NewNativeFunction(Size),

		"channel":       value.NewNativeFunction(ChannelCtor),
		"shared_vector": value.NewNativeFunction(SharedVectorCtor),
		"shared_hash":   value.NewNativeFunction(SharedHashCtor),
	}
	return reg
}

// Seq evaluates every child in order and returns the last result (or
// null for zero children).
func Seq(ev value.ArgEvaluator) (*value.Value, error) {
	var result *value.Value
	for i := 0; i < ev.NArg(); i++ {
		v, err := ev.Arg(i)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// If evaluates its condition, then either the "then" or "else" branch.
func If(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 2 || n > 3 {
		return nil, texc.New(texc.KindOpNarg)
	}
	cond, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	b, err := value.CoerceBool(cond)
	if err != nil {
		return nil, err
	}
	if b {
		return ev.Arg(1)
	}
	if n == 3 {
		return ev.Arg(2)
	}
	return nil, nil
}

// While loops while its condition is true, returning the condition's
// last value (§4.4 "Loop; returns the last value of the condition").
func While(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	var last *value.Value
	for {
		cond, err := ev.Arg(0)
		if err != nil {
			return nil, err
		}
		last = cond
		b, err := value.CoerceBool(cond)
		if err != nil {
			return nil, err
		}
		if !b {
			break
		}
		if _, err := ev.Arg(1); err != nil {
			return nil, err
		}
	}
	return last, nil
}

func varImpl(ev value.ArgEvaluator, scope value.Scope) (*value.Value, error) {
	n := ev.NArg()
	if n < 1 || n > 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	nameV, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	if nameV == nil || nameV.Kind() != value.KString {
		return nil, texc.New(texc.KindValueType)
	}
	name := nameV.StringValue()
	if n == 2 {
		v, err := ev.Arg(1)
		if err != nil {
			return nil, err
		}
		scope.InsertOrAssign(name, v)
		return v, nil
	}
	v, ok := scope.Lookup(name, true)
	if !ok {
		return nil, texc.Named(texc.KindUnknownSymbol, name)
	}
	return v, nil
}

// Var reads or writes a variable in the local symbol table.
func Var(ev value.ArgEvaluator) (*value.Value, error) { return varImpl(ev, ev.Local()) }

// Gvar reads or writes a variable in the thread's global symbol table.
func Gvar(ev value.ArgEvaluator) (*value.Value, error) { return varImpl(ev, ev.Global()) }

// Fun defines a named function in the current (local) scope, binding
// its second child as the function's unevaluated body.
func Fun(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	nameV, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	if nameV == nil || nameV.Kind() != value.KString {
		return nil, texc.New(texc.KindValueType)
	}
	name := nameV.StringValue()
	body := ev.RawChild(1)
	fn := value.NewFunction(body, name)
	ev.Local().InsertOrAssign(name, fn)
	return fn, nil
}

// destArg resolves the optional-destination slot convention used by
// several built-ins (bool, type): with the maximum arity, the FIRST
// argument is a candidate destination reused in place when it already
// has the expected kind and is writable; source arguments follow it.
// This mirrors the "optional-destination" convention described in the
// preamble to §4.4.
func destArg(ev value.ArgEvaluator, idx int, wantKind value.Kind) (*value.Value, bool) {
	v, err := ev.Arg(idx)
	if err != nil || v == nil || v.Kind() != wantKind || v.MtSafe() {
		return nil, false
	}
	return v, true
}

// Bool coerces its argument: any non-bool, non-null value is true;
// bool is returned as itself; null is an error.
func Bool(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 1 || n > 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	srcIdx := 0
	if n == 2 {
		srcIdx = 1
	}
	src, err := ev.Arg(srcIdx)
	if err != nil {
		return nil, err
	}
	b, err := value.CoerceBool(src)
	if err != nil {
		return nil, err
	}
	if src.Kind() == value.KBool {
		return src, nil
	}
	if n == 2 {
		if dest, ok := destArg(ev, 0, value.KBool); ok {
			if err := dest.SetBool(b); err == nil {
				return dest, nil
			}
		}
	}
	return value.NewBool(b), nil
}

// Clone makes a shallow copy of its argument with the mt-safe flag
// cleared (§8 "clone(v).mt_safe == false").
func Clone(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	clearMtSafe := false
	return v.ShallowCopy(&clearMtSafe)
}

// MtSafe attempts the one-way mt-safe transition on its argument.
func MtSafe(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	if err := v.SetMtSafe(); err != nil {
		return nil, err
	}
	return v, nil
}

// IsMtSafe reports whether its argument is currently mt-safe.
func IsMtSafe(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	return value.NewBool(v.MtSafe()), nil
}

// IsNull reports whether its argument is null.
func IsNull(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	return value.NewBool(v == nil), nil
}

// IsSame reports whether its two arguments are the same reference.
func IsSame(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	a, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	b, err := ev.Arg(1)
	if err != nil {
		return nil, err
	}
	return value.NewBool(value.IsSame(a, b)), nil
}

// Type returns its argument's type-name string.
func Type(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 1 || n > 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	srcIdx := 0
	if n == 2 {
		srcIdx = 1
	}
	v, err := ev.Arg(srcIdx)
	if err != nil {
		return nil, err
	}
	name := v.TypeName()
	if n == 2 {
		if dest, ok := destArg(ev, 0, value.KString); ok {
			if err := dest.SetString(name); err == nil {
				return dest, nil
			}
		}
	}
	return value.NewString(name), nil
}

// Print writes every argument's textual form to the thread's stdout
// as one atomic write (§4.4, §5 "synchronized stream").
func Print(ev value.ArgEvaluator) (*value.Value, error) {
	var buf bytes.Buffer
	for i := 0; i < ev.NArg(); i++ {
		v, err := ev.Arg(i)
		if err != nil {
			return nil, err
		}
		v.Write(&buf)
	}
	_, err := ev.Stdout().Write(buf.Bytes())
	return nil, err
}

// Throw raises a script_exception carrying its string argument as the
// message.
func Throw(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	if v == nil || v.Kind() != value.KString {
		return nil, texc.New(texc.KindValueType)
	}
	return nil, texc.Newf(texc.KindScriptException, "%s", v.StringValue())
}

// Try evaluates its first (unevaluated) child as the protected body;
// on a ThreadScript exception, it checks each subsequent (kind,
// handler) pair in order and evaluates the first handler whose kind
// name matches, otherwise it re-raises. Arity is 1 + 2*k for k >= 1
// catch clauses.
func Try(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 3 || (n-1)%2 != 0 {
		return nil, texc.New(texc.KindOpNarg)
	}
	result, err := ev.Eval(ev.RawChild(0))
	if err == nil {
		return result, nil
	}
	te, ok := err.(*texc.Error)
	if !ok {
		return nil, err
	}
	for i := 1; i < n; i += 2 {
		kindV, kerr := ev.Arg(i)
		if kerr != nil {
			return nil, kerr
		}
		if kindV != nil && kindV.Kind() == value.KString && string(te.Kind) == kindV.StringValue() {
			return ev.Eval(ev.RawChild(i + 1))
		}
	}
	return nil, err
}
