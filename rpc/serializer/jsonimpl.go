package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/qpkv/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding.
// encoding/json escapes control characters inside strings and json.Marshal emits
// compact output, so a serialized message is always a single line.
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeRequest(req common.Request) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("can not serialize nil request")
	}
	return marshalLine(req)
}

func (j jsonSerializerImpl) DeserializeRequest(b []byte) (common.Request, error) {
	return common.DecodeRequest(b)
}

func (j jsonSerializerImpl) SerializeResponse(resp common.Response) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("can not serialize nil response")
	}
	return marshalLine(resp)
}

func (j jsonSerializerImpl) DeserializeResponse(b []byte) (common.Response, error) {
	return common.DecodeResponse(b)
}

// marshalLine marshals v and makes sure the result does not contain a newline
func marshalLine(v json.Marshaler) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, '\n') >= 0 {
		return nil, fmt.Errorf("serialized message contains a raw newline")
	}
	return data, nil
}
