// Package store defines ITableStore, the table oriented interface shared by
// the remote client (rpc/client) and the in-memory store (lib/store/mstore).
//
// The package focuses on:
//   - A unified interface for GetItem, PutItem and ScanItem
//   - The scan contract: inclusive start key, direction, per call limit
//   - Scanner / ScanAll, which continue a scan over several calls
//
// The store itself only sees opaque keys. Typed access to the users, tweets
// and follows tables is provided by the social package on top of this
// interface.
//
// Conformance tests for implementations live in lib/store/testing.
package store
