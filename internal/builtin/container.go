package builtin

import (
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// At implements indexing for the plain (non-shared) containers:
// vector and string by integer index, hash by string key.
// shared_vector/shared_hash expose their own "at" through the
// object-method dispatch convention (internal/shared), not through
// this built-in.
func At(ev value.ArgEvaluator) (*value.Value, error) {
	n := ev.NArg()
	if n < 2 || n > 3 {
		return nil, texc.New(texc.KindOpNarg)
	}
	c, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, texc.New(texc.KindValueNull)
	}
	switch c.Kind() {
	case value.KVector:
		idx, err := ev.ArgIndex(1)
		if err != nil {
			return nil, err
		}
		if n == 3 {
			v, err := ev.Arg(2)
			if err != nil {
				return nil, err
			}
			if grown := idx + 1; grown > uint64(c.VectorLen()) {
				if err := ev.Alloc().Reserve(int64(grown-uint64(c.VectorLen())) * perElemBytes); err != nil {
					return nil, err
				}
			}
			if err := c.VectorSet(idx, v); err != nil {
				return nil, err
			}
			return v, nil
		}
		return c.VectorGet(idx)
	case value.KString:
		idx, err := ev.ArgIndex(1)
		if err != nil {
			return nil, err
		}
		if n == 3 {
			return nil, texc.New(texc.KindNotImplemented)
		}
		return c.StringAt(idx)
	case value.KHash:
		keyV, err := ev.Arg(1)
		if err != nil {
			return nil, err
		}
		if keyV == nil || keyV.Kind() != value.KString {
			return nil, texc.New(texc.KindValueType)
		}
		key := keyV.StringValue()
		if n == 3 {
			v, err := ev.Arg(2)
			if err != nil {
				return nil, err
			}
			if _, exists := c.HashGet(key); !exists {
				if err := ev.Alloc().Reserve(int64(len(key)) + perElemBytes); err != nil {
					return nil, err
				}
			}
			if err := c.HashSet(key, v); err != nil {
				return nil, err
			}
			return v, nil
		}
		v, ok := c.HashGet(key)
		if !ok {
			return nil, texc.New(texc.KindValueOutOfRange)
		}
		return v, nil
	default:
		return nil, texc.New(texc.KindOpBad)
	}
}

// Size returns the element/byte count of a vector, hash or string.
func Size(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	c, err := ev.Arg(0)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, texc.New(texc.KindValueNull)
	}
	switch c.Kind() {
	case value.KVector:
		return value.NewUnsigned(uint64(c.VectorLen())), nil
	case value.KHash:
		return value.NewUnsigned(uint64(c.HashLen())), nil
	case value.KString:
		return value.NewUnsigned(uint64(c.StringLen())), nil
	default:
		return nil, texc.New(texc.KindOpBad)
	}
}
