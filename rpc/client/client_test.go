package client

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/serializer"
	"github.com/ValentinKolb/qpkv/rpc/transport/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// pipeConnector hands out the client side of a net.Pipe
type pipeConnector struct {
	conn net.Conn
	err  error
}

func (c *pipeConnector) GetName() string { return "pipe" }

func (c *pipeConnector) Connect(_ common.ClientConfig) (net.Conn, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.conn, nil
}

func (c *pipeConnector) UpgradeConnection(_ net.Conn, _ common.ClientConfig) error { return nil }

// newScriptedClient creates a client whose peer answers every received line with the next reply.
// Replies are written as given, a reply without a trailing newline simulates a truncated line.
// The peer closes the connection after the last reply. All received lines are sent to the channel.
func newScriptedClient(t *testing.T, replies ...string) (*RPCClient, <-chan string) {
	t.Helper()
	clientConn, peerConn := net.Pipe()

	received := make(chan string, len(replies))
	go func() {
		defer close(received)
		defer peerConn.Close()
		reader := bufio.NewReader(peerConn)
		for _, reply := range replies {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			received <- line
			if _, err := peerConn.Write([]byte(reply)); err != nil {
				return
			}
		}
	}()

	config := common.DefaultClientConfig()
	config.Endpoint = "pipe"
	config.TimeoutSecond = 5

	c, err := NewRPCClient(config, base.NewBaseClientTransport(&pipeConnector{conn: clientConn}), serializer.NewJSONSerializer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, received
}

var alice = key.UserKey{UserID: 789}.Key()

const getAliceLine = `{"type":"GetItem","table_id":"7573657273202020","key":"0000031500000000"}` + "\n"

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func TestGetItem(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected *common.Item
		check    func(t *testing.T, err error)
	}{
		{
			name:     "item found",
			reply:    `{"type":"GetItem","item":{"key":"0000031500000000","value":"Alice"}}` + "\n",
			expected: &common.Item{Key: alice, Value: "Alice"},
		},
		{
			name:  "null item",
			reply: `{"type":"GetItem","item":null}` + "\n",
		},
		{
			name:  "absent item",
			reply: `{"type":"GetItem"}` + "\n",
		},
		{
			name:  "deadlock",
			reply: `{"type":"Error","error":"deadlock"}` + "\n",
			check: func(t *testing.T, err error) {
				assert.True(t, common.IsDeadlock(err))
			},
		},
		{
			name:  "other error",
			reply: `{"type":"Error","error":"other","message":"x"}` + "\n",
			check: func(t *testing.T, err error) {
				serverErr, ok := common.IsServerError(err)
				require.True(t, ok)
				assert.Equal(t, common.ErrorKindOther, serverErr.Kind)
				assert.Equal(t, "x", serverErr.Message)
				assert.False(t, common.IsDeadlock(err))
			},
		},
		{
			name:  "wrong variant",
			reply: `{"type":"PutItem"}` + "\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrProtocolViolation)
			},
		},
		{
			name:  "malformed line",
			reply: `{"type":"GetItem","item":{"key":"xyz"}}` + "\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrTransport)
			},
		},
		{
			name:  "truncated line",
			reply: `{"type":"GetItem","item":nu`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrTransport)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, received := newScriptedClient(t, tt.reply)

			item, err := c.GetItem(table.Users, alice)
			assert.Equal(t, getAliceLine, <-received)

			if tt.check != nil {
				require.Error(t, err)
				assert.Nil(t, item)
				tt.check(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, item)
		})
	}
}

func TestPutItem(t *testing.T) {
	c, received := newScriptedClient(t,
		`{"type":"PutItem"}`+"\n",
		`{"type":"GetItem","item":null}`+"\n",
	)

	require.NoError(t, c.PutItem(table.Users, common.Item{Key: alice, Value: "Alice"}))
	assert.Equal(t, `{"type":"PutItem","table_id":"7573657273202020","item":{"key":"0000031500000000","value":"Alice"}}`+"\n", <-received)

	// values are escaped, the request stays a single line
	err := c.PutItem(table.Users, common.Item{Key: alice, Value: "a\nb"})
	assert.ErrorIs(t, err, common.ErrProtocolViolation)
	assert.Equal(t, `{"type":"PutItem","table_id":"7573657273202020","item":{"key":"0000031500000000","value":"a\nb"}}`+"\n", <-received)
}

func TestScanItem(t *testing.T) {
	start := key.TweetKey{UserID: 1, Timestamp: 2}.Key()

	c, received := newScriptedClient(t,
		`{"type":"ScanItem","items":[{"key":"0000000100000002","value":"a"},{"key":"0000000100000003","value":"b"}]}`+"\n",
		`{"type":"ScanItem","items":[]}`+"\n",
		`{"type":"ScanItem","items":[{"key":"0000000100000002","value":"a"},{"key":"0000000100000001","value":"b"}]}`+"\n",
		`{"type":"Error","error":"deadlock"}`+"\n",
	)

	items, err := c.ScanItem(table.Tweets, &start, false, 2)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"ScanItem","table_id":"7477656574732020","start":"0000000100000002","backward":false,"limit":2}`+"\n", <-received)
	require.Len(t, items, 2)
	assert.Equal(t, common.Item{Key: start, Value: "a"}, items[0])

	items, err = c.ScanItem(table.Tweets, nil, true, 5)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"ScanItem","table_id":"7477656574732020","start":null,"backward":true,"limit":5}`+"\n", <-received)
	assert.Empty(t, items)

	// more items than requested
	_, err = c.ScanItem(table.Tweets, &start, true, 1)
	assert.ErrorIs(t, err, common.ErrProtocolViolation)
	<-received

	_, err = c.ScanItem(table.Tweets, nil, false, 1)
	assert.True(t, common.IsDeadlock(err))
	<-received
}

func TestConnectionUnusableAfterTransportError(t *testing.T) {
	c, received := newScriptedClient(t, "not json\n", `{"type":"PutItem"}`+"\n")

	_, err := c.GetItem(table.Users, alice)
	require.ErrorIs(t, err, common.ErrTransport)
	<-received

	// no second request reaches the peer
	err = c.PutItem(table.Users, common.Item{Key: alice, Value: "Alice"})
	assert.ErrorIs(t, err, common.ErrDisconnected)
	assert.ErrorIs(t, err, common.ErrTransport)
	_, open := <-received
	assert.False(t, open)
}

func TestServerErrorKeepsConnection(t *testing.T) {
	c, received := newScriptedClient(t,
		`{"type":"Error","error":"deadlock"}`+"\n",
		`{"type":"GetItem","item":{"key":"0000031500000000","value":"Alice"}}`+"\n",
	)

	_, err := c.GetItem(table.Users, alice)
	require.True(t, common.IsDeadlock(err))
	<-received

	item, err := c.GetItem(table.Users, alice)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Alice", item.Value)
	<-received
}

func TestConnectError(t *testing.T) {
	config := common.DefaultClientConfig()
	config.Endpoint = "pipe"

	_, err := NewRPCClient(config, base.NewBaseClientTransport(&pipeConnector{err: errors.New("refused")}), serializer.NewJSONSerializer())
	assert.ErrorIs(t, err, common.ErrConnection)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{common.NewDeadlockError(), errClassDeadlock},
		{common.NewOtherError("x"), errClassOther},
		{common.ErrConnection, errClassConnection},
		{common.ErrDisconnected, errClassTransport},
		{common.ErrProtocolViolation, errClassProtocol},
		{errors.New("boom"), errClassLocal},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.err))
		})
	}
}

func TestWriteMetrics(t *testing.T) {
	c, received := newScriptedClient(t, `{"type":"Error","error":"deadlock"}`+"\n")
	_, _ = c.GetItem(table.Users, alice)
	<-received

	var buf bytes.Buffer
	WriteMetrics(&buf)
	out := buf.String()
	assert.Contains(t, out, `qpkv_client_requests_total{op="get_item"}`)
	assert.Contains(t, out, `qpkv_client_errors_total{op="get_item",class="deadlock"}`)
	assert.Contains(t, out, `qpkv_client_request_duration_seconds_bucket{op="get_item"`)
}
