package social

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
)

const (
	defaultInitialBackoff = 50 * time.Millisecond
)

// retryStore retries reads that fail with a retryable error, writes are passed through
type retryStore struct {
	inner    store.ITableStore
	attempts int
	backoff  time.Duration
	sleep    func(time.Duration)
}

// retry calls fn until it succeeds, fails with a non retryable error or all attempts are used
func (r *retryStore) retry(op string, fn func() error) error {
	backoff := r.backoff
	var lastErr error

	for i := 0; i < r.attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !common.IsRetryable(err) {
			return err
		}

		lastErr = err
		Logger.Debugf("%s attempt %d/%d failed: %v", op, i+1, r.attempts, err)

		if i < r.attempts-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoff) * (0.9 + 0.2*rand.Float64())
			r.sleep(time.Duration(jitter))
			backoff *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, r.attempts, lastErr)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (r *retryStore) GetItem(tableID key.Key, k key.Key) (item *common.Item, err error) {
	err = r.retry("get_item", func() error {
		item, err = r.inner.GetItem(tableID, k)
		return err
	})
	return item, err
}

func (r *retryStore) PutItem(tableID key.Key, item common.Item) error {
	return r.inner.PutItem(tableID, item)
}

func (r *retryStore) ScanItem(tableID key.Key, start *key.Key, backward bool, limit uint) (items []common.Item, err error) {
	err = r.retry("scan_item", func() error {
		items, err = r.inner.ScanItem(tableID, start, backward, limit)
		return err
	})
	return items, err
}
