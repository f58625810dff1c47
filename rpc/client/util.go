package client

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// invoke is the helper used by all operations to exchange one request/response pair.
// It returns the decoded response. An error response is returned as *common.Error,
// it is up to the caller to check the variant of all other responses.
func (c *RPCClient) invoke(op string, req common.Request) (common.Response, error) {
	start := time.Now()
	defer observeDuration(op, start)
	countRequest(op)

	// Serialize the request
	reqBytes, err := c.serializer.SerializeRequest(req)
	if err != nil {
		err = fmt.Errorf("can not encode %s request: %w", req.MsgType(), err)
		recordError(op, err)
		return nil, err
	}

	// Exchange the lines
	respBytes, err := c.transport.Send(reqBytes)
	if err != nil {
		Logger.Warningf("%s request failed: %v", req.MsgType(), err)
		recordError(op, err)
		return nil, err
	}

	// Deserialize the response, the connection is not trusted after a malformed line
	resp, err := c.serializer.DeserializeResponse(respBytes)
	if err != nil {
		_ = c.transport.Close()
		err = fmt.Errorf("%w: malformed response line: %v", common.ErrTransport, err)
		Logger.Warningf("%s request failed: %v", req.MsgType(), err)
		recordError(op, err)
		return nil, err
	}

	// Check if the response is an error response
	if errResp, ok := resp.(common.ErrorResponse); ok {
		serverErr := errResp.Err
		Logger.Debugf("%s request answered with error: %v", req.MsgType(), &serverErr)
		recordError(op, &serverErr)
		return nil, &serverErr
	}

	return resp, nil
}

// violation builds the error for a response variant that does not match the request
func (c *RPCClient) violation(op string, want common.MessageType, got common.Response) error {
	err := fmt.Errorf("%w: expected %s response, got %s", common.ErrProtocolViolation, want, got.MsgType())
	Logger.Errorf("%v", err)
	recordError(op, err)
	return err
}
