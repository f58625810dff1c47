// Package base provides the protocol independent part of the stream
// transports (TCP, Unix sockets). It is extended with small connectors that
// know how to dial or listen on a specific kind of socket.
//
// The package focuses on:
//   - Newline delimited framing (writeLine / readLine)
//   - One request in flight per connection on the client side
//   - The client connection state machine
//   - A sequential per-connection server loop for the reference peer
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different socket types.
//
//   - clientTransport: owns exactly one connection. Every Send writes the
//     request followed by '\n' with a single write and then reads exactly one
//     line. Concurrent callers are serialized by an internal mutex, so request
//     and response pairing stays intact. Any I/O fault (including a deadline
//     expiry or a truncated line) closes the connection and moves the
//     transport into the terminal disconnected state, there is no automatic
//     reconnect.
//
//   - serverTransport: accepts connections and handles the requests of every
//     connection one after another in a dedicated goroutine. Open connections
//     are tracked in an xsync.MapOf so Close can shut all of them down.
//
// Thread Safety:
//
//	All public methods are safe for concurrent use. Concurrent Send calls on
//	one client transport are executed one after another, use several
//	transports (connections) for parallelism.
package base
