package transport

import (
	"net"

	"github.com/ValentinKolb/qpkv/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests.
// It is called by the server transport for every received line (without the
// delimiter) and returns the response line (without the delimiter).
type ServerHandleFunc func(req []byte) (resp []byte)

// IRPCServerTransport is the interface for the server side of the line protocol
type IRPCServerTransport interface {
	// RegisterHandler registers the handler that is called for every request line
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the listener, it does not accept connections yet
	Listen(config common.ServerConfig) error
	// Addr returns the address of the listener, nil before Listen
	Addr() net.Addr
	// Serve accepts connections until Close is called, it blocks
	Serve() error
	// Close stops accepting connections and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client side of the line protocol.
// A client transport owns exactly one connection and is not reusable: after an
// I/O fault or Close every call to Send fails with common.ErrDisconnected.
type IRPCClientTransport interface {
	// Connect establishes the connection, it does not send anything
	Connect(config common.ClientConfig) error
	// Send writes one request line and blocks until one response line was read.
	// Concurrent calls are serialized, there is never more than one request in flight.
	Send(req []byte) (resp []byte, err error)
	// Close closes the connection
	Close() error
}
