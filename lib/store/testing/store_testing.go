package testing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory creates a new, empty store for a single test
type StoreFactory func(t *testing.T) store.ITableStore

// RunTableStoreTests runs the conformance test suite for an ITableStore implementation.
func RunTableStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("GetMissing", func(t *testing.T) {
			testGetMissing(t, factory(t))
		})

		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory(t))
		})

		t.Run("TableIsolation", func(t *testing.T) {
			testTableIsolation(t, factory(t))
		})

		t.Run("ScanForward", func(t *testing.T) {
			testScanForward(t, factory(t))
		})

		t.Run("ScanBackward", func(t *testing.T) {
			testScanBackward(t, factory(t))
		})

		t.Run("ScanLimitZero", func(t *testing.T) {
			testScanLimitZero(t, factory(t))
		})

		t.Run("ScanContinuation", func(t *testing.T) {
			testScanContinuation(t, factory(t))
		})

		t.Run("ScanKeySpaceEdges", func(t *testing.T) {
			testScanKeySpaceEdges(t, factory(t))
		})

		t.Run("TweetRange", func(t *testing.T) {
			testTweetRange(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// fill stores one item per key with the value "v<hex key>" and returns the items in key order
func fill(t *testing.T, s store.ITableStore, tableID key.Key, keys ...key.Key) []common.Item {
	t.Helper()
	items := make([]common.Item, 0, len(keys))
	for _, k := range keys {
		item := common.Item{Key: k, Value: "v" + k.String()}
		require.NoError(t, s.PutItem(tableID, item))
		items = append(items, item)
	}
	sortItems(items)
	return items
}

func sortItems(items []common.Item) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Key.Less(items[j-1].Key); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func reversed(items []common.Item) []common.Item {
	out := make([]common.Item, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}

func userKeys(ids ...uint32) []key.Key {
	keys := make([]key.Key, len(ids))
	for i, id := range ids {
		keys[i] = key.UserKey{UserID: id}.Key()
	}
	return keys
}

func ptr(k key.Key) *key.Key {
	return &k
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testGetMissing(t *testing.T, s store.ITableStore) {
	item, err := s.GetItem(table.Users, key.UserKey{UserID: 789}.Key())
	require.NoError(t, err)
	assert.Nil(t, item)
}

func testPutGet(t *testing.T, s store.ITableStore) {
	k := key.UserKey{UserID: 789}.Key()

	require.NoError(t, s.PutItem(table.Users, common.Item{Key: k, Value: "Alice"}))
	item, err := s.GetItem(table.Users, k)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, common.Item{Key: k, Value: "Alice"}, *item)

	// values are opaque text, including characters that need escaping on the wire
	tricky := "line1\nline2\t\"quoted\" \\ ünïcode"
	require.NoError(t, s.PutItem(table.Users, common.Item{Key: k, Value: tricky}))
	item, err = s.GetItem(table.Users, k)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, tricky, item.Value)
}

func testTableIsolation(t *testing.T, s store.ITableStore) {
	k := key.FollowKey{SourceID: 1, DestinationID: 2}.Key()
	require.NoError(t, s.PutItem(table.Follows, common.Item{Key: k, Value: "edge"}))

	for _, other := range []key.Key{table.Users, table.Tweets} {
		item, err := s.GetItem(other, k)
		require.NoError(t, err)
		assert.Nil(t, item, "table %s", table.Name(other))

		items, err := s.ScanItem(other, nil, false, 10)
		require.NoError(t, err)
		assert.Empty(t, items)
	}
}

func testScanForward(t *testing.T, s store.ITableStore) {
	all := fill(t, s, table.Users, userKeys(50, 10, 40, 20, 30)...)

	tests := []struct {
		name     string
		start    *key.Key
		limit    uint
		expected []common.Item
	}{
		{"from beginning", nil, 10, all},
		{"limited", nil, 2, all[:2]},
		{"start is inclusive", ptr(key.UserKey{UserID: 20}.Key()), 10, all[1:]},
		{"start between keys", ptr(key.UserKey{UserID: 25}.Key()), 2, all[2:4]},
		{"start after last key", ptr(key.UserKey{UserID: 51}.Key()), 10, nil},
		{"start before first key", ptr(key.UserKey{UserID: 1}.Key()), 1, all[:1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ScanItem(table.Users, tt.start, false, tt.limit)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Empty(t, items)
				return
			}
			assert.Equal(t, tt.expected, items)
		})
	}
}

func testScanBackward(t *testing.T, s store.ITableStore) {
	all := reversed(fill(t, s, table.Users, userKeys(50, 10, 40, 20, 30)...))

	tests := []struct {
		name     string
		start    *key.Key
		limit    uint
		expected []common.Item
	}{
		{"from end", nil, 10, all},
		{"limited", nil, 2, all[:2]},
		{"start is inclusive", ptr(key.UserKey{UserID: 40}.Key()), 10, all[1:]},
		{"start between keys", ptr(key.UserKey{UserID: 35}.Key()), 2, all[2:4]},
		{"start before first key", ptr(key.UserKey{UserID: 5}.Key()), 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ScanItem(table.Users, tt.start, true, tt.limit)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Empty(t, items)
				return
			}
			assert.Equal(t, tt.expected, items)
		})
	}
}

func testScanLimitZero(t *testing.T, s store.ITableStore) {
	fill(t, s, table.Users, userKeys(1, 2, 3)...)

	items, err := s.ScanItem(table.Users, nil, false, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.ScanItem(table.Users, nil, true, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func testScanContinuation(t *testing.T, s store.ITableStore) {
	rng := rand.New(rand.NewSource(7))
	keys := make([]key.Key, 0, 57)
	seen := make(map[key.Key]bool)
	for len(keys) < cap(keys) {
		k := key.TweetKey{UserID: uint32(rng.Intn(5)), Timestamp: rng.Uint32()}.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	all := fill(t, s, table.Tweets, keys...)

	for _, pageSize := range []uint{1, 7, 57, 100} {
		t.Run(fmt.Sprintf("forward page %d", pageSize), func(t *testing.T) {
			items, err := store.ScanAll(s, table.Tweets, store.ScanOptions{PageSize: pageSize})
			require.NoError(t, err)
			assert.Equal(t, all, items)
		})

		t.Run(fmt.Sprintf("backward page %d", pageSize), func(t *testing.T) {
			items, err := store.ScanAll(s, table.Tweets, store.ScanOptions{PageSize: pageSize, Backward: true})
			require.NoError(t, err)
			assert.Equal(t, reversed(all), items)
		})
	}

	// manual continuation: re-issue with the successor of the last key
	var collected []common.Item
	var start *key.Key
	for {
		page, err := s.ScanItem(table.Tweets, start, false, 10)
		require.NoError(t, err)
		collected = append(collected, page...)
		if len(page) < 10 {
			break
		}
		next, ok := store.ContinueAfter(page[len(page)-1].Key, false)
		require.True(t, ok)
		start = &next
	}
	assert.Equal(t, all, collected)
}

func testScanKeySpaceEdges(t *testing.T, s store.ITableStore) {
	all := fill(t, s, table.Users, key.Min, key.Max, key.UserKey{UserID: 1}.Key())

	items, err := store.ScanAll(s, table.Users, store.ScanOptions{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, all, items)

	items, err = store.ScanAll(s, table.Users, store.ScanOptions{PageSize: 1, Backward: true})
	require.NoError(t, err)
	assert.Equal(t, reversed(all), items)

	items, err = s.ScanItem(table.Users, ptr(key.Max), false, 10)
	require.NoError(t, err)
	assert.Equal(t, all[2:], items)

	items, err = s.ScanItem(table.Users, ptr(key.Min), true, 10)
	require.NoError(t, err)
	assert.Equal(t, all[:1], items)
}

func testTweetRange(t *testing.T, s store.ITableStore) {
	var keys []key.Key
	for _, user := range []uint32{3, 1, 2} {
		for _, ts := range []uint32{300, 100, 200} {
			keys = append(keys, key.TweetKey{UserID: user, Timestamp: ts}.Key())
		}
	}
	fill(t, s, table.Tweets, keys...)

	first, last := key.PrefixRange(2)
	items, err := store.ScanAll(s, table.Tweets, store.ScanOptions{Start: &first, End: &last, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, ts := range []uint32{100, 200, 300} {
		assert.Equal(t, key.TweetKey{UserID: 2, Timestamp: ts}, key.DecodeTweetKey(items[i].Key))
	}

	// newest first
	items, err = store.ScanAll(s, table.Tweets, store.ScanOptions{Start: &last, End: &first, Backward: true, PageSize: 2, Max: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, key.TweetKey{UserID: 2, Timestamp: 300}, key.DecodeTweetKey(items[0].Key))
	assert.Equal(t, key.TweetKey{UserID: 2, Timestamp: 200}, key.DecodeTweetKey(items[1].Key))
}
