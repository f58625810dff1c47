package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store/mstore"
	"github.com/ValentinKolb/qpkv/lib/table"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/serializer"
	"github.com/ValentinKolb/qpkv/rpc/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *RPCServer {
	t.Helper()
	config := common.ServerConfig{Endpoint: "127.0.0.1:0", TimeoutSecond: 5, LogLevel: "error"}
	return NewRPCServer(config, tcp.NewTCPServerTransport(), serializer.NewJSONSerializer(), mstore.NewMemoryStore())
}

func TestHandle(t *testing.T) {
	s := newTestServer(t)

	// the requests run in order against the same store
	tests := []struct {
		name     string
		request  string
		expected string
	}{
		{
			name:     "get missing",
			request:  `{"type":"GetItem","table_id":"7573657273202020","key":"0000031500000000"}`,
			expected: `{"type":"GetItem","item":null}`,
		},
		{
			name:     "put",
			request:  `{"type":"PutItem","table_id":"7573657273202020","item":{"key":"0000031500000000","value":"Alice"}}`,
			expected: `{"type":"PutItem"}`,
		},
		{
			name:     "get",
			request:  `{"type":"GetItem","table_id":"7573657273202020","key":"0000031500000000"}`,
			expected: `{"type":"GetItem","item":{"key":"0000031500000000","value":"Alice"}}`,
		},
		{
			name:     "scan",
			request:  `{"type":"ScanItem","table_id":"7573657273202020","start":null,"backward":false,"limit":10}`,
			expected: `{"type":"ScanItem","items":[{"key":"0000031500000000","value":"Alice"}]}`,
		},
		{
			name:     "scan empty table",
			request:  `{"type":"ScanItem","table_id":"7477656574732020","start":null,"backward":true,"limit":10}`,
			expected: `{"type":"ScanItem","items":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(s.handle([]byte(tt.request))))
		})
	}
}

func TestHandleErrors(t *testing.T) {
	s := newTestServer(t)
	ser := serializer.NewJSONSerializer()

	tests := []struct {
		name    string
		request string
	}{
		{"not json", `hello`},
		{"response type", `{"type":"Error","error":"deadlock"}`},
		{"missing key", `{"type":"GetItem","table_id":"7573657273202020"}`},
		{"unknown table", `{"type":"GetItem","table_id":"0000000000000000","key":"0000031500000000"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ser.DeserializeResponse(s.handle([]byte(tt.request)))
			require.NoError(t, err)
			errResp, ok := resp.(common.ErrorResponse)
			require.True(t, ok, "expected error response, got %T", resp)
			assert.Equal(t, common.ErrorKindOther, errResp.Err.Kind)
			assert.NotEmpty(t, errResp.Err.Message)
		})
	}
}

func TestDeadlockInjector(t *testing.T) {
	inner := mstore.NewMemoryStore()
	k := key.UserKey{UserID: 1}.Key()

	t.Run("fail next", func(t *testing.T) {
		d := NewDeadlockInjector(inner, 0)
		d.FailNext(2)

		_, err := d.GetItem(table.Users, k)
		assert.True(t, common.IsDeadlock(err))
		err = d.PutItem(table.Users, common.Item{Key: k, Value: "v"})
		assert.True(t, common.IsDeadlock(err))

		require.NoError(t, d.PutItem(table.Users, common.Item{Key: k, Value: "v"}))
		items, err := d.ScanItem(table.Users, nil, false, 10)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, uint64(2), d.Injected())
	})

	t.Run("every n-th", func(t *testing.T) {
		d := NewDeadlockInjector(inner, 3)
		var failed int
		for i := 0; i < 9; i++ {
			if _, err := d.GetItem(table.Users, k); err != nil {
				require.True(t, common.IsDeadlock(err))
				failed++
			}
		}
		assert.Equal(t, 3, failed)
	})

	t.Run("served as error response", func(t *testing.T) {
		d := NewDeadlockInjector(inner, 0)
		d.FailNext(1)
		out := NewTableStoreServerAdapter().Handle(common.NewGetItemRequest(table.Users, k), d)
		assert.Equal(t, common.NewErrorResponse(*common.NewDeadlockError()), out)
	})
}

func TestServeLoopback(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Listen())
	require.NotNil(t, s.Addr())

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	conn, err := net.DialTimeout("tcp", s.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	reader := bufio.NewReader(conn)

	// two requests in one write are answered in order
	_, err = conn.Write([]byte(
		`{"type":"PutItem","table_id":"7573657273202020","item":{"key":"0000031500000000","value":"Alice"}}` + "\n" +
			`{"type":"GetItem","table_id":"7573657273202020","key":"0000031500000000"}` + "\n"))
	require.NoError(t, err)

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `{"type":"PutItem"}`+"\n", line)

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `{"type":"GetItem","item":{"key":"0000031500000000","value":"Alice"}}`+"\n", line)

	// a malformed line does not end the connection
	_, err = conn.Write([]byte("garbage\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"error":"other"`)

	require.NoError(t, s.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}
