package base

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

// pipeConnector hands out the client side of a net.Pipe, the peer side is served by the test
type pipeConnector struct {
	client net.Conn
	err    error
}

func (c *pipeConnector) GetName() string { return "pipe" }

func (c *pipeConnector) Connect(_ common.ClientConfig) (net.Conn, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.client, nil
}

func (c *pipeConnector) UpgradeConnection(_ net.Conn, _ common.ClientConfig) error { return nil }

// newPipeTransport creates a connected client transport and returns the peer side of the pipe
func newPipeTransport(t *testing.T, config common.ClientConfig) (*clientTransport, net.Conn) {
	t.Helper()
	client, peer := net.Pipe()
	t.Cleanup(func() { peer.Close() })

	tr := NewBaseClientTransport(&pipeConnector{client: client}).(*clientTransport)
	config.Endpoint = "pipe"
	require.NoError(t, tr.Connect(config))
	t.Cleanup(func() { tr.Close() })
	return tr, peer
}

// --------------------------------------------------------------------------
// Framing
// --------------------------------------------------------------------------

func TestReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		err      error
	}{
		{"single line", "hello\n", []string{"hello"}, io.EOF},
		{"two lines", "a\nb\n", []string{"a", "b"}, io.EOF},
		{"crlf", "a\r\n", []string{"a"}, io.EOF},
		{"empty line", "\n", []string{""}, io.EOF},
		{"truncated", "a\nb", []string{"a"}, io.ErrUnexpectedEOF},
		{"nothing", "", nil, io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReaderSize(strings.NewReader(tt.input), 16)
			var lines []string
			for {
				line, err := readLine(r)
				if err != nil {
					assert.True(t, errors.Is(err, tt.err), "got %v", err)
					break
				}
				lines = append(lines, string(line))
			}
			assert.Equal(t, tt.expected, lines)
		})
	}
}

func TestReadLineLargerThanBuffer(t *testing.T) {
	long := strings.Repeat("x", 1000)
	r := bufio.NewReaderSize(strings.NewReader(long+"\n"), 16)
	line, err := readLine(r)
	require.NoError(t, err)
	assert.Equal(t, long, string(line))
}

func TestWriteLine(t *testing.T) {
	client, peer := net.Pipe()
	defer client.Close()
	defer peer.Close()

	go func() {
		_ = writeLine(client, []byte(`{"type":"PutItem"}`))
	}()

	buf := make([]byte, 64)
	n, err := peer.Read(buf)
	require.NoError(t, err)
	// the message and its delimiter arrive with a single write
	assert.Equal(t, "{\"type\":\"PutItem\"}\n", string(buf[:n]))

	assert.Error(t, writeLine(client, []byte("a\nb")))
}

// --------------------------------------------------------------------------
// Client transport
// --------------------------------------------------------------------------

func TestClientSendReceive(t *testing.T) {
	tr, peer := newPipeTransport(t, common.ClientConfig{})

	go func() {
		r := bufio.NewReader(peer)
		for i := 0; i < 3; i++ {
			line, err := readLine(r)
			if err != nil {
				return
			}
			_ = writeLine(peer, bytes.ToUpper(line))
		}
	}()

	for i := 0; i < 3; i++ {
		resp, err := tr.Send([]byte(fmt.Sprintf("req-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("REQ-%d", i), string(resp))
	}
}

func TestClientTruncatedResponseDisconnects(t *testing.T) {
	tr, peer := newPipeTransport(t, common.ClientConfig{})

	go func() {
		r := bufio.NewReader(peer)
		_, _ = readLine(r)
		_, _ = peer.Write([]byte(`{"type":"Get`))
		peer.Close()
	}()

	_, err := tr.Send([]byte("req"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTransport))

	// the handle is terminal now
	_, err = tr.Send([]byte("req"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDisconnected))
	assert.True(t, errors.Is(err, common.ErrTransport))
}

func TestClientTimeout(t *testing.T) {
	tr, peer := newPipeTransport(t, common.ClientConfig{TimeoutSecond: 1})

	go func() {
		// read the request but never answer
		_, _ = readLine(bufio.NewReader(peer))
	}()

	start := time.Now()
	_, err := tr.Send([]byte("req"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTransport))
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err = tr.Send([]byte("req"))
	assert.True(t, errors.Is(err, common.ErrDisconnected))
}

func TestClientSingleRequestInFlight(t *testing.T) {
	tr, peer := newPipeTransport(t, common.ClientConfig{})

	const callers = 8
	violations := make(chan string, callers)

	go func() {
		r := bufio.NewReader(peer)
		for i := 0; i < callers; i++ {
			line, err := readLine(r)
			if err != nil {
				return
			}

			// while a request is pending, no other request may arrive
			_ = peer.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
			if extra, err := r.ReadByte(); err == nil {
				violations <- fmt.Sprintf("received byte %q while %s was pending", extra, line)
				_ = r.UnreadByte()
			}
			_ = peer.SetReadDeadline(time.Time{})

			_ = writeLine(peer, append([]byte("ok:"), line...))
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := fmt.Sprintf("req-%d", i)
			resp, err := tr.Send([]byte(req))
			if assert.NoError(t, err) {
				// every caller gets the answer to its own request
				assert.Equal(t, "ok:"+req, string(resp))
			}
		}(i)
	}
	wg.Wait()
	close(violations)

	for v := range violations {
		t.Error(v)
	}
}

func TestClientConnectErrors(t *testing.T) {
	tr := NewBaseClientTransport(&pipeConnector{err: errors.New("refused")})
	err := tr.Connect(common.ClientConfig{Endpoint: "pipe"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConnection))

	err = tr.Connect(common.ClientConfig{})
	assert.True(t, errors.Is(err, common.ErrConnection))

	_, err = tr.Send([]byte("req"))
	assert.True(t, errors.Is(err, common.ErrDisconnected))
}

func TestClientNotReusable(t *testing.T) {
	tr, _ := newPipeTransport(t, common.ClientConfig{})
	require.NoError(t, tr.Close())

	_, err := tr.Send([]byte("req"))
	assert.True(t, errors.Is(err, common.ErrDisconnected))

	err = tr.Connect(common.ClientConfig{Endpoint: "pipe"})
	assert.True(t, errors.Is(err, common.ErrConnection))
}

// --------------------------------------------------------------------------
// Server transport
// --------------------------------------------------------------------------

type loopbackServerConnector struct{}

func (c *loopbackServerConnector) GetName() string { return "loopback" }

func (c *loopbackServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	return net.Listen("tcp", config.Endpoint)
}

type loopbackClientConnector struct{}

func (c *loopbackClientConnector) GetName() string { return "loopback" }

func (c *loopbackClientConnector) Connect(config common.ClientConfig) (net.Conn, error) {
	return net.Dial("tcp", config.Endpoint)
}

func (c *loopbackClientConnector) UpgradeConnection(_ net.Conn, _ common.ClientConfig) error {
	return nil
}

func TestServerTransport(t *testing.T) {
	srv := NewBaseServerTransport(&loopbackServerConnector{}, 0)
	srv.RegisterHandler(func(req []byte) []byte {
		return append([]byte("echo:"), req...)
	})
	require.NoError(t, srv.Listen(common.ServerConfig{Endpoint: "127.0.0.1:0"}))

	served := make(chan error, 1)
	go func() { served <- srv.Serve() }()

	clients := make([]*clientTransport, 3)
	for i := range clients {
		clients[i] = NewBaseClientTransport(&loopbackClientConnector{}).(*clientTransport)
		require.NoError(t, clients[i].Connect(common.ClientConfig{Endpoint: srv.Addr().String()}))
	}

	for round := 0; round < 3; round++ {
		for i, c := range clients {
			resp, err := c.Send([]byte(fmt.Sprintf("%d-%d", i, round)))
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("echo:%d-%d", i, round), string(resp))
		}
	}

	require.NoError(t, srv.Close())
	require.NoError(t, <-served)

	// open connections were closed by the server
	_, err := clients[0].Send([]byte("late"))
	assert.True(t, errors.Is(err, common.ErrTransport))
}

func TestServeWithoutListen(t *testing.T) {
	srv := NewBaseServerTransport(&loopbackServerConnector{}, 0)
	assert.Nil(t, srv.Addr())
	assert.Error(t, srv.Serve())
}
