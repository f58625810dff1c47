// Package unix implements the Unix domain socket connectors of the line
// transport, for a store (or reference peer) running on the same machine.
//
// Key Components:
//
//   - clientConnector: dials the socket path and applies the SocketConf buffer sizes
//
//   - serverConnector: removes a stale socket file and creates the listener
package unix
