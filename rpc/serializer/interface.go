package serializer

import "github.com/ValentinKolb/qpkv/rpc/common"

// IRPCSerializer is the interface for all message serializers.
// Serialized messages must never contain a raw newline byte, since the
// transport uses the newline as message delimiter.
type IRPCSerializer interface {
	// SerializeRequest serializes a request into a byte array
	SerializeRequest(req common.Request) ([]byte, error)
	// DeserializeRequest deserializes a byte array into a request
	DeserializeRequest(b []byte) (common.Request, error)
	// SerializeResponse serializes a response into a byte array
	SerializeResponse(resp common.Response) ([]byte, error)
	// DeserializeResponse deserializes a byte array into a response
	DeserializeResponse(b []byte) (common.Response, error)
}
