package server

import (
	"fmt"
	"net"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/serializer"
	"github.com/ValentinKolb/qpkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("server")

// fallbackResponse is sent when a response can not be encoded
var fallbackResponse = []byte(`{"type":"Error","error":"other","message":"failed to encode response"}`)

// NewRPCServer creates a new RPC server that answers requests with the given store
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewJSONSerializer(),
//		mstore.NewMemoryStore(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	store store.ITableStore,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		store:      store,
		adapter:    NewTableStoreServerAdapter(),
	}
}

// RPCServer serves the line protocol on top of a store.ITableStore
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	store      store.ITableStore
	adapter    IRPCServerAdapter
	listening  bool
}

// Listen registers the request handler and binds the listener
func (s *RPCServer) Listen() error {
	if s.listening {
		return nil
	}
	s.transport.RegisterHandler(s.handle)
	if err := s.transport.Listen(s.config); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Endpoint, err)
	}
	s.listening = true
	Logger.Infof("Listening on %s", s.transport.Addr())
	return nil
}

// Addr returns the address of the listener, nil before Listen
func (s *RPCServer) Addr() net.Addr {
	return s.transport.Addr()
}

// Serve listens (if not done yet) and serves connections until Close is called
func (s *RPCServer) Serve() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.transport.Serve()
}

// Close stops the server and closes all connections
func (s *RPCServer) Close() error {
	return s.transport.Close()
}

// handle answers a single request line
func (s *RPCServer) handle(line []byte) []byte {
	var resp common.Response

	req, err := s.serializer.DeserializeRequest(line)
	if err != nil {
		Logger.Debugf("malformed request: %v", err)
		resp = common.NewErrorResponse(*common.NewOtherError(fmt.Sprintf("malformed request: %v", err)))
	} else {
		resp = s.adapter.Handle(req, s.store)
	}

	out, err := s.serializer.SerializeResponse(resp)
	if err != nil {
		Logger.Errorf("failed to serialize %s response: %v", resp.MsgType(), err)
		return fallbackResponse
	}
	return out
}
