// Package alloc implements the memory-accounting allocator described in
// spec.md §5/§9: a single global quota counter consulted before
// allocations, replacing the reference implementation's allocator-aware
// container types (design note: "allocator-aware everything is an
// artifact of accounting quotas; a single global quota counter
// consulted before allocations suffices").
package alloc

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/threadscript/ts/internal/texc"
)

// Allocator tracks outstanding allocation bytes against an optional
// soft limit. A zero-value Allocator has no limit.
type Allocator struct {
	limit int64 // 0 means unlimited
	used  atomic.Int64
}

// New creates an Allocator with the given soft limit in bytes. A limit
// of 0 disables enforcement.
func New(limitBytes int64) *Allocator {
	return &Allocator{limit: limitBytes}
}

// Reserve accounts for n additional bytes, failing with alloc_limit if
// the configured quota would be exceeded.
func (a *Allocator) Reserve(n int64) error {
	if a == nil || n <= 0 {
		return nil
	}
	if a.limit > 0 {
		if a.used.Add(n) > a.limit {
			a.used.Add(-n)
			return texc.Newf(texc.KindAllocLimit, "Allocation denied by limit: requested %s, limit %s",
				humanize.Bytes(uint64(n)), humanize.Bytes(uint64(a.limit)))
		}
		return nil
	}
	a.used.Add(n)
	return nil
}

// Release returns n bytes previously reserved back to the quota.
func (a *Allocator) Release(n int64) {
	if a == nil || n <= 0 {
		return
	}
	a.used.Add(-n)
}

// Used returns the current accounted usage.
func (a *Allocator) Used() int64 {
	if a == nil {
		return 0
	}
	return a.used.Load()
}

// WrapOSFailure converts a failed underlying allocation (e.g. a Go
// runtime out-of-memory condition observed indirectly, or a failed
// syscall during I/O the allocator mediates) into alloc_bad, preserving
// the original error via github.com/pkg/errors for diagnostic context.
func WrapOSFailure(err error) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrap(err, "underlying allocation failed")
	e := texc.New(texc.KindAllocBad)
	e.Msg = wrapped.Error()
	return e
}
