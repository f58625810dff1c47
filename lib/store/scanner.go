package store

import (
	"fmt"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/rpc/common"
)

// ScanOptions configures a Scanner
type ScanOptions struct {
	// Start is the first key (inclusive), nil for the beginning of the table in scan direction
	Start *key.Key
	// End is the last key (inclusive), nil for the end of the table in scan direction
	End *key.Key
	// Backward scans in descending key order
	Backward bool
	// PageSize is the limit of every single ScanItem call, must be > 0
	PageSize uint
	// Max bounds the total number of items, 0 means unbounded
	Max int
}

// Scanner iterates over a key range of a table by issuing ScanItem calls page by page.
//
// Usage:
//
//	s := store.NewScanner(db, table.Tweets, store.ScanOptions{PageSize: 100})
//	for s.Next() {
//		item := s.Item()
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner struct {
	store   ITableStore
	tableID key.Key
	opts    ScanOptions

	cursor  *key.Key
	page    []common.Item
	pos     int
	emitted int
	done    bool
	item    common.Item
	err     error
}

// NewScanner creates a new Scanner, no request is sent before the first call to Next
func NewScanner(s ITableStore, tableID key.Key, opts ScanOptions) *Scanner {
	var cursor *key.Key
	if opts.Start != nil {
		start := *opts.Start
		cursor = &start
	}
	return &Scanner{store: s, tableID: tableID, opts: opts, cursor: cursor}
}

// Next advances to the next item. It returns false when the range is exhausted or an error occurred.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	if s.opts.PageSize == 0 {
		s.err = fmt.Errorf("scanner: page size must be greater than zero")
		return false
	}
	if s.opts.Max > 0 && s.emitted >= s.opts.Max {
		return false
	}

	for s.pos >= len(s.page) {
		if s.done {
			return false
		}
		if err := s.fetch(); err != nil {
			s.err = err
			return false
		}
	}

	item := s.page[s.pos]
	if s.pastEnd(item.Key) {
		s.done = true
		s.page = nil
		return false
	}

	s.pos++
	s.emitted++
	s.item = item
	return true
}

// Item returns the current item
func (s *Scanner) Item() common.Item {
	return s.item
}

// Err returns the first error that stopped the scanner
func (s *Scanner) Err() error {
	return s.err
}

// fetch requests the next page and moves the cursor behind it
func (s *Scanner) fetch() error {
	items, err := s.store.ScanItem(s.tableID, s.cursor, s.opts.Backward, s.opts.PageSize)
	if err != nil {
		return err
	}

	s.page, s.pos = items, 0

	// a short page means the table has no more keys in scan direction
	if uint(len(items)) < s.opts.PageSize || len(items) == 0 {
		s.done = true
		return nil
	}

	next, ok := ContinueAfter(items[len(items)-1].Key, s.opts.Backward)
	if !ok {
		s.done = true
		return nil
	}
	s.cursor = &next
	return nil
}

func (s *Scanner) pastEnd(k key.Key) bool {
	if s.opts.End == nil {
		return false
	}
	if s.opts.Backward {
		return key.Compare(k, *s.opts.End) < 0
	}
	return key.Compare(k, *s.opts.End) > 0
}

// ScanAll collects all items of a range, see Scanner
func ScanAll(s ITableStore, tableID key.Key, opts ScanOptions) ([]common.Item, error) {
	scanner := NewScanner(s, tableID, opts)
	var items []common.Item
	for scanner.Next() {
		items = append(items, scanner.Item())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
