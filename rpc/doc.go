// Package rpc provides the communication layer between the client and the
// table store. Requests and responses are JSON documents exchanged as single
// lines over a stream socket, one request in flight per connection.
//
// The package is organized into several subpackages:
//
//   - common: The wire model (Request, Response, Item, Error), the client
//     error taxonomy, configuration structures and logging.
//
//   - transport: Line framed stream transports with pluggable connectors
//     (TCP, Unix sockets).
//
//   - serializer: Conversion between messages and single line JSON documents.
//
//   - client: The RPC client implementing store.ITableStore on top of a
//     transport and a serializer.
//
//   - server: A reference peer that serves the protocol for any
//     store.ITableStore, used in tests and for local development.
package rpc
