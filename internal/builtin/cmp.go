package builtin

import (
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// compare returns -1, 0 or 1 for a relative to b; both must be the
// same kind, one of bool, int, unsigned or string.
func compare(a, b *value.Value) (int, error) {
	if a == nil || b == nil {
		return 0, texc.New(texc.KindValueNull)
	}
	if a.Kind() != b.Kind() {
		return 0, texc.New(texc.KindValueType)
	}
	switch a.Kind() {
	case value.KBool:
		av, bv := a.BoolValue(), b.BoolValue()
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		default:
			return 1, nil
		}
	case value.KInt:
		av, bv := a.IntValue(), b.IntValue()
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case value.KUnsigned:
		av, bv := a.UnsignedValue(), b.UnsignedValue()
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case value.KString:
		av, bv := a.StringValue(), b.StringValue()
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, texc.New(texc.KindValueType)
	}
}

func cmpOp(ev value.ArgEvaluator, ok func(c int) bool) (*value.Value, error) {
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
	c, err := compare(a, b)
	if err != nil {
		return nil, err
	}
	return value.NewBool(ok(c)), nil
}

func Eq(ev value.ArgEvaluator) (*value.Value, error) {
	return cmpOp(ev, func(c int) bool { return c == 0 })
}
func Ne(ev value.ArgEvaluator) (*value.Value, error) {
	return cmpOp(ev, func(c int) bool { return c != 0 })
}
func Lt(ev value.ArgEvaluator) (*value.Value, error) {
	return cmpOp(ev, func(c int) bool { return c < 0 })
}
func Le(ev value.ArgEvaluator) (*value.Value, error) {
	return cmpOp(ev, func(c int) bool { return c <= 0 })
}
func Gt(ev value.ArgEvaluator) (*value.Value, error) {
	return cmpOp(ev, func(c int) bool { return c > 0 })
}
func Ge(ev value.ArgEvaluator) (*value.Value, error) {
	return cmpOp(ev, func(c int) bool { return c >= 0 })
}

// And evaluates its children left to right, short-circuiting (and
// returning false) at the first falsy one; an empty-tail pass returns
// true.
func And(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() < 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	for i := 0; i < ev.NArg(); i++ {
		v, err := ev.Arg(i)
		if err != nil {
			return nil, err
		}
		b, err := value.CoerceBool(v)
		if err != nil {
			return nil, err
		}
		if !b {
			return value.NewBool(false), nil
		}
	}
	return value.NewBool(true), nil
}

// Or evaluates its children left to right, short-circuiting (and
// returning true) at the first truthy one.
func Or(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() < 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	for i := 0; i < ev.NArg(); i++ {
		v, err := ev.Arg(i)
		if err != nil {
			return nil, err
		}
		b, err := value.CoerceBool(v)
		if err != nil {
			return nil, err
		}
		if b {
			return value.NewBool(true), nil
		}
	}
	return value.NewBool(false), nil
}

func Not(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	b, err := value.CoerceBool(v)
	if err != nil {
		return nil, err
	}
	return value.NewBool(!b), nil
}
