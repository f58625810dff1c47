package server

import (
	"sync/atomic"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
)

// DeadlockInjector wraps a store and lets selected operations fail with a deadlock error.
// It is used to exercise the retry paths of clients.
type DeadlockInjector struct {
	inner   store.ITableStore
	every   uint64
	calls   atomic.Uint64
	pending atomic.Int64
	failed  atomic.Uint64
}

var _ store.ITableStore = (*DeadlockInjector)(nil)

// NewDeadlockInjector wraps inner. If every is > 0, every n-th operation fails.
func NewDeadlockInjector(inner store.ITableStore, every uint64) *DeadlockInjector {
	return &DeadlockInjector{inner: inner, every: every}
}

// FailNext lets the next n operations fail with a deadlock
func (d *DeadlockInjector) FailNext(n int) {
	d.pending.Add(int64(n))
}

// Injected returns the number of deadlocks injected so far
func (d *DeadlockInjector) Injected() uint64 {
	return d.failed.Load()
}

func (d *DeadlockInjector) inject() error {
	call := d.calls.Add(1)
	if d.pending.Add(-1) >= 0 {
		d.failed.Add(1)
		return common.NewDeadlockError()
	}
	d.pending.Add(1)

	if d.every > 0 && call%d.every == 0 {
		d.failed.Add(1)
		return common.NewDeadlockError()
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (d *DeadlockInjector) GetItem(tableID key.Key, k key.Key) (*common.Item, error) {
	if err := d.inject(); err != nil {
		return nil, err
	}
	return d.inner.GetItem(tableID, k)
}

func (d *DeadlockInjector) PutItem(tableID key.Key, item common.Item) error {
	if err := d.inject(); err != nil {
		return err
	}
	return d.inner.PutItem(tableID, item)
}

func (d *DeadlockInjector) ScanItem(tableID key.Key, start *key.Key, backward bool, limit uint) ([]common.Item, error) {
	if err := d.inject(); err != nil {
		return nil, err
	}
	return d.inner.ScanItem(tableID, start, backward, limit)
}
