// Package channel implements the ThreadScript channel object: a
// synchronous or bounded message queue with integer capacity fixed at
// construction (§4.5), grounded on
// original_source/src/threadscript/channel_impl.hpp's state machine
// (a mutex-guarded ring buffer / rendezvous cell with senders/receivers
// counters and two condition variables).
//
// Go already has a native primitive for exactly this job -- a channel
// -- so the transfer/blocking/buffering logic is delegated to it
// rather than hand-rolled with sync.Cond: make(chan T) with capacity 0
// is Go's own rendezvous, and make(chan T, n) is Go's own bounded
// ring buffer. What channel_impl.hpp adds beyond that -- the
// observable senders/receivers waiting counts behind balance() -- is
// layered on top with a pair of atomic counters.
package channel

import (
	"sync/atomic"

	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Channel is an mt-safe object value exposing send/recv/try_send/
// try_recv/balance to scripts via the object method-dispatch
// convention.
type Channel struct {
	capacity  int
	ch        chan *value.Value
	senders   atomic.Int64
	receivers atomic.Int64
}

// New creates a channel of the given capacity (0 = rendezvous).
func New(capacity int) *Channel {
	return &Channel{capacity: capacity, ch: make(chan *value.Value, capacity)}
}

// NewValue wraps a new channel as a value.Value.
func NewValue(capacity int) *value.Value {
	return value.NewObject(New(capacity))
}

func (c *Channel) TypeName() string { return "channel" }

// channelMethod is one entry of the method table built by
// initMethods, mirroring channel_impl.hpp's init_methods() map of
// method name to handler rather than an ad hoc switch.
type channelMethod func(*Channel, value.ArgEvaluator) (*value.Value, error)

var channelMethods = initMethods()

func initMethods() map[string]channelMethod {
	return map[string]channelMethod{
		"send":     func(c *Channel, ev value.ArgEvaluator) (*value.Value, error) { return c.dispatchSend(ev, false) },
		"try_send": func(c *Channel, ev value.ArgEvaluator) (*value.Value, error) { return c.dispatchSend(ev, true) },
		"recv":     func(c *Channel, ev value.ArgEvaluator) (*value.Value, error) { return c.dispatchRecv(ev, false) },
		"try_recv": func(c *Channel, ev value.ArgEvaluator) (*value.Value, error) { return c.dispatchRecv(ev, true) },
		"balance": func(c *Channel, ev value.ArgEvaluator) (*value.Value, error) {
			if ev.NArg() != 1 {
				return nil, texc.New(texc.KindOpNarg)
			}
			return value.NewInt(c.Balance()), nil
		},
	}
}

// Dispatch implements value.Object.
func (c *Channel) Dispatch(ev value.ArgEvaluator, method string) (*value.Value, error) {
	fn, ok := channelMethods[method]
	if !ok {
		return nil, texc.Named(texc.KindNotImplemented, method)
	}
	return fn(c, ev)
}

func (c *Channel) dispatchSend(ev value.ArgEvaluator, try bool) (*value.Value, error) {
	if ev.NArg() != 2 {
		return nil, texc.New(texc.KindOpNarg)
	}
	v, err := ev.Arg(1)
	if err != nil {
		return nil, err
	}
	if err := c.Send(v, try); err != nil {
		return nil, err
	}
	return nil, nil
}

func (c *Channel) dispatchRecv(ev value.ArgEvaluator, try bool) (*value.Value, error) {
	if ev.NArg() != 1 {
		return nil, texc.New(texc.KindOpNarg)
	}
	return c.Recv(try)
}

// Send delivers v, blocking (rendezvous for capacity 0, or while the
// ring buffer is full for capacity > 0) unless try is set, in which
// case it raises op_would_block instead of blocking. v must already
// be mt-safe.
func (c *Channel) Send(v *value.Value, try bool) error {
	if !v.MtSafe() {
		return texc.New(texc.KindValueMtUnsafe)
	}
	c.senders.Add(1)
	defer c.senders.Add(-1)
	if try {
		select {
		case c.ch <- v:
			return nil
		default:
			return texc.New(texc.KindOpWouldBlock)
		}
	}
	c.ch <- v
	return nil
}

// Recv receives a value, blocking unless try is set.
func (c *Channel) Recv(try bool) (*value.Value, error) {
	c.receivers.Add(1)
	defer c.receivers.Add(-1)
	if try {
		select {
		case v := <-c.ch:
			return v, nil
		default:
			return nil, texc.New(texc.KindOpWouldBlock)
		}
	}
	return <-c.ch, nil
}

// Balance returns senders currently waiting minus receivers currently
// waiting, observed instantaneously (§4.5, §8).
func (c *Channel) Balance() int64 {
	return c.senders.Load() - c.receivers.Load()
}

// Capacity returns the channel's fixed capacity.
func (c *Channel) Capacity() int { return c.capacity }
