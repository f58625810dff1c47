// Package transport defines the interfaces for moving request and response
// lines between the client and the store.
//
// The wire format is newline delimited: every message is one self-contained
// line terminated by a single '\n'. A connection carries one exchange at a
// time, a second request is only written after the response to the first one
// has been read completely, so responses always arrive in request order.
//
// Key Components:
//
//   - IRPCClientTransport: client side, owns one connection and performs one
//     request/response exchange per Send call.
//
//   - IRPCServerTransport: server side, accepts connections and calls the
//     registered ServerHandleFunc once per request line.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// Implementations live in the base package (protocol independent logic) and
// the tcp and unix packages (stream specific connectors).
package transport
