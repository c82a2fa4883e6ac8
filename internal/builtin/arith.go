package builtin

import (
	"math"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// arithOp implements the common shape of add/sub/mul/div/mod: arity
// 2-3, where a 3-argument call's first argument is a candidate
// destination (see destArg), and the two operands follow. Both
// operands must be the same numeric kind (int or unsigned); signed
// overflow and division by zero raise their own exception kinds
// (§4.4, §8).
func arithOp(ev value.ArgEvaluator, signed func(a, b int64) (int64, error), unsigned func(a, b uint64) (uint64, error)) (*value.Value, error) {
	n := ev.NArg()
	if n < 2 || n > 3 {
		return nil, texc.New(texc.KindOpNarg)
	}
	aIdx, bIdx := 0, 1
	hasDest := n == 3
	if hasDest {
		aIdx, bIdx = 1, 2
	}
	av, err := ev.Arg(aIdx)
	if err != nil {
		return nil, err
	}
	bv, err := ev.Arg(bIdx)
	if err != nil {
		return nil, err
	}
	if av == nil || bv == nil {
		return nil, texc.New(texc.KindValueNull)
	}
	if av.Kind() != bv.Kind() {
		return nil, texc.New(texc.KindValueType)
	}
	var result *value.Value
	switch av.Kind() {
	case value.KInt:
		r, err := signed(av.IntValue(), bv.IntValue())
		if err != nil {
			return nil, err
		}
		if hasDest {
			if dest, ok := destArg(ev, 0, value.KInt); ok {
				if err := dest.SetInt(r); err == nil {
					return dest, nil
				}
			}
		}
		result = value.NewInt(r)
	case value.KUnsigned:
		r, err := unsigned(av.UnsignedValue(), bv.UnsignedValue())
		if err != nil {
			return nil, err
		}
		if hasDest {
			if dest, ok := destArg(ev, 0, value.KUnsigned); ok {
				if err := dest.SetUnsigned(r); err == nil {
					return dest, nil
				}
			}
		}
		result = value.NewUnsigned(r)
	default:
		return nil, texc.New(texc.KindValueType)
	}
	return result, nil
}

func Add(ev value.ArgEvaluator) (*value.Value, error) {
	return arithOp(ev,
		func(a, b int64) (int64, error) {
			r := a + b
			if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
				return 0, texc.New(texc.KindOpOverflow)
			}
			return r, nil
		},
		func(a, b uint64) (uint64, error) { return a + b, nil },
	)
}

func Sub(ev value.ArgEvaluator) (*value.Value, error) {
	return arithOp(ev,
		func(a, b int64) (int64, error) {
			r := a - b
			if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
				return 0, texc.New(texc.KindOpOverflow)
			}
			return r, nil
		},
		func(a, b uint64) (uint64, error) { return a - b, nil },
	)
}

func Mul(ev value.ArgEvaluator) (*value.Value, error) {
	return arithOp(ev,
		func(a, b int64) (int64, error) {
			if a == 0 || b == 0 {
				return 0, nil
			}
			if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return 0, texc.New(texc.KindOpOverflow)
			}
			r := a * b
			if r/b != a {
				return 0, texc.New(texc.KindOpOverflow)
			}
			return r, nil
		},
		func(a, b uint64) (uint64, error) { return a * b, nil },
	)
}

func Div(ev value.ArgEvaluator) (*value.Value, error) {
	return arithOp(ev,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, texc.New(texc.KindOpDivZero)
			}
			if a == math.MinInt64 && b == -1 {
				return 0, texc.New(texc.KindOpOverflow)
			}
			return a / b, nil
		},
		func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, texc.New(texc.KindOpDivZero)
			}
			return a / b, nil
		},
	)
}

func Mod(ev value.ArgEvaluator) (*value.Value, error) {
	return arithOp(ev,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, texc.New(texc.KindOpDivZero)
			}
			if a == math.MinInt64 && b == -1 {
				return 0, texc.New(texc.KindOpOverflow)
			}
			return a % b, nil
		},
		func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, texc.New(texc.KindOpDivZero)
			}
			return a % b, nil
		},
	)
}
