package builtin

import (
	"github.com/threadscript/ts/internal/channel"
	"github.com/threadscript/ts/internal/shared"
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// objectOverheadBytes is the nominal accounting charge for
// constructing one object-family value (channel, shared_vector,
// shared_hash), consulted against the host's -M quota before the
// object exists (§5 "allocation failure ... propagates as a normal
// exception", §9's global quota counter). It is a fixed accounting
// unit, not a sizeof of the underlying Go struct.
const objectOverheadBytes = 64

// perElemBytes is the nominal per-element accounting charge used when
// a vector/hash grows on write, mirroring objectOverheadBytes for the
// per-slot case.
const perElemBytes = 16

// ChannelCtor implements the `channel(n)` constructor call (§4.5):
// a plain function-call syntax that returns a new channel object of
// the given fixed capacity. The channel's buffer is accounted for
// up front, at capacity slots plus base overhead.
func ChannelCtor(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	n, err := ev.ArgIndex(0)
	if err != nil {
		return nil, err
	}
	if err := ev.Alloc().Reserve(objectOverheadBytes + int64(n)*perElemBytes); err != nil {
		return nil, err
	}
	return channel.NewValue(int(n)), nil
}

// SharedVectorCtor implements the `shared_vector()` constructor call.
func SharedVectorCtor(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 0 {
		return nil, texc.New(texc.KindOpNarg)
	}
	if err := ev.Alloc().Reserve(objectOverheadBytes); err != nil {
		return nil, err
	}
	return shared.NewSharedVectorValue(), nil
}

// SharedHashCtor implements the `shared_hash()` constructor call.
func SharedHashCtor(ev value.ArgEvaluator) (*value.Value, error) {
	if ev.NArg() != 0 {
		return nil, texc.New(texc.KindOpNarg)
	}
	if err := ev.Alloc().Reserve(objectOverheadBytes); err != nil {
		return nil, err
	}
	return shared.NewSharedHashValue(), nil
}
