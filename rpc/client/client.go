package client

import (
	"fmt"

	"github.com/ValentinKolb/qpkv/lib/key"
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/ValentinKolb/qpkv/rpc/serializer"
	"github.com/ValentinKolb/qpkv/rpc/transport"
	"github.com/ValentinKolb/qpkv/rpc/transport/tcp"
)

// RPCClient is a handle to a remote table store. It owns one connection, all
// operations are serialized on it. After a transport error the handle is unusable
// and every further call fails with common.ErrDisconnected.
type RPCClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

var _ store.ITableStore = (*RPCClient)(nil)

// NewRPCClient connects the transport to config.Endpoint and returns the client.
// The error wraps common.ErrConnection if the connection can not be established.
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCClient, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		recordError(opConnect, err)
		return nil, err
	}

	Logger.Debugf("connected to %s", config.Endpoint)

	return &RPCClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// Connect opens a tcp connection with the json line protocol to address,
// all other settings are taken from common.DefaultClientConfig
func Connect(address string) (*RPCClient, error) {
	config := common.DefaultClientConfig()
	config.Endpoint = address
	return NewRPCClient(config, tcp.NewTCPClientTransport(), serializer.NewJSONSerializer())
}

// Close closes the underlying connection
func (c *RPCClient) Close() error {
	return c.transport.Close()
}

// Config returns the configuration the client was created with
func (c *RPCClient) Config() common.ClientConfig {
	return c.config
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (c *RPCClient) GetItem(tableID key.Key, k key.Key) (*common.Item, error) {
	resp, err := c.invoke(opGetItem, common.NewGetItemRequest(tableID, k))
	if err != nil {
		return nil, err
	}

	r, ok := resp.(common.GetItemResponse)
	if !ok {
		return nil, c.violation(opGetItem, common.MsgTGetItem, resp)
	}
	return r.Item, nil
}

func (c *RPCClient) PutItem(tableID key.Key, item common.Item) error {
	resp, err := c.invoke(opPutItem, common.NewPutItemRequest(tableID, item))
	if err != nil {
		return err
	}

	if _, ok := resp.(common.PutItemResponse); !ok {
		return c.violation(opPutItem, common.MsgTPutItem, resp)
	}
	return nil
}

func (c *RPCClient) ScanItem(tableID key.Key, start *key.Key, backward bool, limit uint) ([]common.Item, error) {
	resp, err := c.invoke(opScanItem, common.NewScanItemRequest(tableID, start, backward, limit))
	if err != nil {
		return nil, err
	}

	r, ok := resp.(common.ScanItemResponse)
	if !ok {
		return nil, c.violation(opScanItem, common.MsgTScanItem, resp)
	}
	if uint(len(r.Items)) > limit {
		err := fmt.Errorf("%w: scan returned %d items, limit was %d", common.ErrProtocolViolation, len(r.Items), limit)
		recordError(opScanItem, err)
		return nil, err
	}
	return r.Items, nil
}
