// Package testing provides a conformance test suite for store.ITableStore
// implementations. The same suite runs against the in-memory store and
// against the RPC client talking to the reference peer, which pins down the
// scan contract end to end.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//		storetesting.RunTableStoreTests(t, "mystore", func(t *testing.T) store.ITableStore {
//			return newMyStore()
//		})
//	}
//
// The factory must return an empty store that holds the users, tweets and
// follows tables.
package testing
