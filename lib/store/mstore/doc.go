// Package mstore implements store.ITableStore in memory.
//
// Every table is an ordered b-tree (github.com/google/btree) keyed by the
// opaque key, guarded by its own read/write lock. The set of tables is fixed
// when the store is created and held in an xsync.MapOf. Range scans walk the
// tree in either direction starting at the inclusive start key.
//
// The store backs the reference peer (rpc/server) and the tests of the
// client packages. It does not persist anything.
package mstore
