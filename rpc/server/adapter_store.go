package server

import (
	"fmt"

	"github.com/ValentinKolb/qpkv/lib/store"
	"github.com/ValentinKolb/qpkv/rpc/common"
)

// NewTableStoreServerAdapter creates the adapter that maps requests to store.ITableStore calls
func NewTableStoreServerAdapter() IRPCServerAdapter {
	return &tableStoreServerAdapterImpl{}
}

type tableStoreServerAdapterImpl struct{}

func (adapter *tableStoreServerAdapterImpl) Handle(req common.Request, s store.ITableStore) common.Response {
	// Check for nil store
	if s == nil {
		return errorResponse(fmt.Errorf("handler: store is nil"))
	}

	// Handle different message types
	switch r := req.(type) {
	case common.GetItemRequest:
		item, err := s.GetItem(r.TableID, r.Key)
		if err != nil {
			return errorResponse(err)
		}
		return common.NewGetItemResponse(item)
	case common.PutItemRequest:
		if err := s.PutItem(r.TableID, r.Item); err != nil {
			return errorResponse(err)
		}
		return common.NewPutItemResponse()
	case common.ScanItemRequest:
		items, err := s.ScanItem(r.TableID, r.Start, r.Backward, r.Limit)
		if err != nil {
			return errorResponse(err)
		}
		return common.NewScanItemResponse(items)
	default:
		return errorResponse(fmt.Errorf("unsupported request type: %T", req))
	}
}

// errorResponse converts err into an Error response, errors declared by the store keep their kind
func errorResponse(err error) common.Response {
	if serverErr, ok := common.IsServerError(err); ok {
		return common.NewErrorResponse(*serverErr)
	}
	return common.NewErrorResponse(*common.NewOtherError(err.Error()))
}
