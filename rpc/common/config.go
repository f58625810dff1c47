package common

import (
	"fmt"
	"strings"
)

// DefaultEndpoint is the address of the public store instance
const DefaultEndpoint = "qp.koba789.com:8124"

// --------------------------------------------------------------------------
// Transport configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by all stream transports
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket settings
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig holds the transport settings of a client
type ClientTransportConfig struct {
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters of a client connection
type ClientConfig struct {
	// Endpoint is the address of the store (host:port for tcp, a path for unix)
	Endpoint string

	// TimeoutSecond bounds every request/response exchange, 0 disables the deadline
	TimeoutSecond int

	// RetryCount is the number of attempts for reads that fail with a deadlock (used by lib/social)
	RetryCount int

	// Transport settings
	Transport ClientTransportConfig

	// Logging configuration
	LogLevel string
}

// DefaultClientConfig returns a configuration for the public store instance
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:      DefaultEndpoint,
		TimeoutSecond: 10,
		RetryCount:    3,
		Transport: ClientTransportConfig{
			TCPConf: TCPConf{TCPNoDelay: true, TCPLingerSec: -1},
		},
		LogLevel: "info",
	}
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", fmt.Sprintf("%d", c.RetryCount))
	addField("Log Level", c.LogLevel)

	// Transport
	addSection("Transport")
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))
	addField("TCP NoDelay", fmt.Sprintf("%t", c.Transport.TCPNoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	return sb.String()
}

// --------------------------------------------------------------------------
// Reference peer configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds the configuration of the reference peer
type ServerConfig struct {
	// Endpoint is the address to listen on
	Endpoint string

	// TimeoutSecond is the idle timeout per connection, 0 disables it
	TimeoutSecond int64

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Reference Peer")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
