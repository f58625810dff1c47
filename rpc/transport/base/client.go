package base

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to config.Endpoint
	Connect(config common.ClientConfig) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// connState is the state of the connection owned by a clientTransport
//
//	disconnected --Connect--> idle --Send--> awaitingResponse --response--> idle
//	                                                          --I/O fault-> disconnected (terminal)
type connState uint8

const (
	stateDisconnected connState = iota
	stateIdle
	stateAwaitingResponse
)

func (s connState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingResponse:
		return "awaiting response"
	default:
		return "disconnected"
	}
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig

	// requestMu is held for a whole exchange, it guarantees a single request in flight
	requestMu sync.Mutex

	// stateMu protects the fields below, Close only needs this lock so it can
	// interrupt an exchange that is blocked on I/O
	stateMu sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	state   connState
	used    bool // set once Connect was called successfully, a transport is not reusable
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp and unix)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
		state:     stateDisconnected,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if config.Endpoint == "" {
		return fmt.Errorf("%w: no endpoint provided", common.ErrConnection)
	}

	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.used {
		return fmt.Errorf("%w: transport was already connected once and can not be reused", common.ErrConnection)
	}

	conn, err := t.connector.Connect(config)
	if err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %v", common.ErrConnection, config.Endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		conn.Close()
		return fmt.Errorf("%w: failed to upgrade connection to %s: %v", common.ErrConnection, config.Endpoint, err)
	}

	bufferSize := defaultBufferSize
	if config.Transport.ReadBufferSize > 0 {
		bufferSize = config.Transport.ReadBufferSize
	}

	t.config = config
	t.conn = conn
	t.reader = bufio.NewReaderSize(conn, bufferSize)
	t.state = stateIdle
	t.used = true

	Logger.Infof("Connected to %s using %s transport", config.Endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(req []byte) ([]byte, error) {
	t.requestMu.Lock()
	defer t.requestMu.Unlock()

	// Idle -> AwaitingResponse
	t.stateMu.Lock()
	if t.state != stateIdle {
		state := t.state
		t.stateMu.Unlock()
		return nil, fmt.Errorf("%w (state: %s)", common.ErrDisconnected, state)
	}
	t.state = stateAwaitingResponse
	conn, reader := t.conn, t.reader
	t.stateMu.Unlock()

	// Set the deadline for the whole exchange
	if t.config.TimeoutSecond > 0 {
		timeout := time.Duration(t.config.TimeoutSecond) * time.Second
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, t.fail(fmt.Errorf("failed to set deadline: %v", err))
		}
	}

	if err := writeLine(conn, req); err != nil {
		return nil, t.fail(fmt.Errorf("error writing request: %v", err))
	}

	resp, err := readLine(reader)
	if err != nil {
		return nil, t.fail(fmt.Errorf("error reading response: %v", err))
	}

	if t.config.TimeoutSecond > 0 {
		if err := conn.SetDeadline(time.Time{}); err != nil {
			return nil, t.fail(fmt.Errorf("failed to clear deadline: %v", err))
		}
	}

	// AwaitingResponse -> Idle (unless Close was called in the meantime)
	t.stateMu.Lock()
	if t.state == stateAwaitingResponse {
		t.state = stateIdle
	}
	t.stateMu.Unlock()

	return resp, nil
}

func (t *clientTransport) Close() error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	t.state = stateDisconnected
	t.used = true
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	t.reader = nil
	Logger.Infof("Closed connection to %s", t.config.Endpoint)
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// fail closes the connection after an I/O fault and moves the transport into
// the terminal disconnected state. It returns err wrapped as transport error.
func (t *clientTransport) fail(err error) error {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
		t.reader = nil
		Logger.Warningf("Connection to %s failed, the connection is closed: %v", t.config.Endpoint, err)
	}
	t.state = stateDisconnected

	return fmt.Errorf("%w: %v", common.ErrTransport, err)
}
