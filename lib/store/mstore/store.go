package mstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/google/btree"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("store")

// ErrTableNotFound is returned for operations on a table the store does not hold
var ErrTableNotFound = errors.New("table not found")

// btreeDegree is the degree of the per table b-trees
const btreeDegree = 32

// memTable is a single ordered table
type memTable struct {
	mu   sync.RWMutex
	rows *btree.BTreeG[common.Item]
}

func newMemTable() *memTable {
	return &memTable{
		rows: btree.NewG[common.Item](btreeDegree, func(a, b common.Item) bool {
			return a.Key.Less(b.Key)
		}),
	}
}

type storeImpl struct {
	tables *xsync.MapOf[key.Key, *memTable]
}

// NewMemoryStore creates a new in-memory store holding the given tables.
// Without arguments the store holds all tables of the table registry.
func NewMemoryStore(tableIDs ...key.Key) store.ITableStore {
	if len(tableIDs) == 0 {
		for _, name := range table.Names() {
			id, _ := table.Lookup(name)
			tableIDs = append(tableIDs, id)
		}
	}

	tables := xsync.NewMapOf[key.Key, *memTable]()
	for _, id := range tableIDs {
		tables.Store(id, newMemTable())
		Logger.Debugf("created table %q", table.Name(id))
	}

	return &storeImpl{tables: tables}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) GetItem(tableID key.Key, k key.Key) (*common.Item, error) {
	t, err := s.table(tableID)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.rows.Get(common.Item{Key: k})
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *storeImpl) PutItem(tableID key.Key, item common.Item) error {
	t, err := s.table(tableID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// put overwrites an existing item
	t.rows.ReplaceOrInsert(item)
	return nil
}

func (s *storeImpl) ScanItem(tableID key.Key, start *key.Key, backward bool, limit uint) ([]common.Item, error) {
	t, err := s.table(tableID)
	if err != nil {
		return nil, err
	}

	items := make([]common.Item, 0, min(limit, 1024))
	if limit == 0 {
		return items, nil
	}

	collect := func(item common.Item) bool {
		items = append(items, item)
		return uint(len(items)) < limit
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case !backward && start == nil:
		t.rows.Ascend(collect)
	case !backward:
		t.rows.AscendGreaterOrEqual(common.Item{Key: *start}, collect)
	case start == nil:
		t.rows.Descend(collect)
	default:
		t.rows.DescendLessOrEqual(common.Item{Key: *start}, collect)
	}

	return items, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *storeImpl) table(id key.Key) (*memTable, error) {
	t, ok := s.tables.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrTableNotFound, table.Name(id), id)
	}
	return t, nil
}
