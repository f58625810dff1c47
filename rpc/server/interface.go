package server

import (
	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a decoded request against the store and returns the response.
	// Errors are never returned, they are reported with an Error response.
	Handle(req common.Request, store store.ITableStore) (resp common.Response)
}
