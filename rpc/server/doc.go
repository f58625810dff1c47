// Package server implements a reference peer for the line protocol.
// It answers GetItem, PutItem and ScanItem requests with any store.ITableStore,
// usually the in-memory store of the mstore package. The peer is meant for tests
// and local development, the production store is operated elsewhere.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface for the translation of decoded requests into
//     store calls. NewTableStoreServerAdapter is the only implementation.
//
//   - NewRPCServer: Factory function creating a server with the specified
//     transport, serializer and store.
//
//   - DeadlockInjector: Store wrapper that lets operations fail with a deadlock
//     error, used to exercise client retries.
//
// Every request line is answered with exactly one response line. A line that
// can not be decoded is answered with an error of kind "other", the connection
// stays open.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint:      "127.0.0.1:8124",
//	  TimeoutSecond: 30,
//	  LogLevel:      "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPServerTransport(),
//	  serializer.NewJSONSerializer(),
//	  mstore.NewMemoryStore(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
package server
