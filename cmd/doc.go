// Package cmd implements the command-line interface qpkv. It provides a
// hierarchical command structure for talking to the table store as a client
// and for running a local reference peer.
//
// The package is organized into several subpackages:
//
//   - kv: Raw table operations (get, put, scan) with typed key syntax and the perf tool
//   - social: Typed helpers for the users, tweets and follows tables
//   - serve: Starts the reference peer with an in-memory store
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See qpkv -help for a list of all commands.
package cmd
