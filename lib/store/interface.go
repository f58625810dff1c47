package store

import (
	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/rpc/common"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ITableStore is the generic interface for interacting with the tables of the store.
// Every operation addresses a table by its id (see the table package) and an opaque key.
//
// Scan semantics:
//   - start is inclusive. Forward scans return keys >= start in ascending order,
//     backward scans return keys <= start in descending order.
//   - a nil start begins at the smallest key (forward) or the largest key (backward).
//   - at most limit items are returned, limit 0 returns no items.
//   - to continue a scan, issue the next call with start = ContinueAfter(last item, backward).
type ITableStore interface {
	// GetItem returns the item stored under k, or nil if the table has no such key
	GetItem(tableID key.Key, k key.Key) (*common.Item, error)
	// PutItem stores the item. Whether an existing item is overwritten is decided by the store.
	PutItem(tableID key.Key, item common.Item) error
	// ScanItem returns up to limit items of a table in key order
	ScanItem(tableID key.Key, start *key.Key, backward bool, limit uint) ([]common.Item, error)
}

// ContinueAfter returns the start key for the scan call that continues after last.
// The boolean is false if there is no key left in scan direction.
func ContinueAfter(last key.Key, backward bool) (key.Key, bool) {
	if backward {
		return last.Prev()
	}
	return last.Next()
}
