package client_test

import (
	"testing"

	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/lib/store/mstore"
	storetesting "github.com/ValentinKolb/qpkv/lib/store/testing"
	"github.com/ValentinKolb/qpkv/rpc/client"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/serializer"
	"github.com/ValentinKolb/qpkv/rpc/server"
	"github.com/ValentinKolb/qpkv/rpc/transport"
	"github.com/ValentinKolb/qpkv/rpc/transport/tcp"
	"github.com/ValentinKolb/qpkv/rpc/transport/unix"
	"github.com/stretchr/testify/require"
)

// startPeer starts a reference peer with an empty in-memory store and returns its address
func startPeer(t *testing.T, serverTransport transport.IRPCServerTransport, endpoint string) string {
	t.Helper()
	config := common.ServerConfig{Endpoint: endpoint, TimeoutSecond: 5, LogLevel: "error"}
	s := server.NewRPCServer(config, serverTransport, serializer.NewJSONSerializer(), mstore.NewMemoryStore())
	require.NoError(t, s.Listen())
	go func() { _ = s.Serve() }()
	t.Cleanup(func() { _ = s.Close() })
	return s.Addr().String()
}

func TestRPCClientTCP(t *testing.T) {
	storetesting.RunTableStoreTests(t, "tcp", func(t *testing.T) store.ITableStore {
		endpoint := startPeer(t, tcp.NewTCPServerTransport(), "127.0.0.1:0")
		c, err := client.Connect(endpoint)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	})
}

func TestRPCClientUnix(t *testing.T) {
	storetesting.RunTableStoreTests(t, "unix", func(t *testing.T) store.ITableStore {
		endpoint := startPeer(t, unix.NewUnixServerTransport(), t.TempDir()+"/qpkv.sock")

		config := common.DefaultClientConfig()
		config.Endpoint = endpoint
		c, err := client.NewRPCClient(config, unix.NewUnixClientTransport(), serializer.NewJSONSerializer())
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	})
}
