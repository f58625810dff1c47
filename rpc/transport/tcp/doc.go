// Package tcp implements the TCP connectors of the line transport. The store
// is usually reached over TCP (host:port endpoints).
//
// This package builds on the base package, which implements framing, the
// single in-flight request discipline and the connection state machine.
//
// Key Components:
//
//   - clientConnector: dials the endpoint and applies TCPConf / SocketConf
//     (TCP_NODELAY, socket buffers, keep-alive, linger)
//
//   - serverConnector: creates TCP listeners for the reference peer
//
// The default server read buffer size is 512 KB.
package tcp
