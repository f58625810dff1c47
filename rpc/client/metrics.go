package client

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/qpkv/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

const (
	opConnect  = "connect"
	opGetItem  = "get_item"
	opPutItem  = "put_item"
	opScanItem = "scan_item"
)

// error classes used as label values
const (
	errClassConnection = "connection"
	errClassTransport  = "transport"
	errClassProtocol   = "protocol"
	errClassDeadlock   = "deadlock"
	errClassOther      = "other"
	errClassLocal      = "local"
)

// clientMetrics holds all client metrics, they are shared by all clients of the process
var clientMetrics = metrics.NewSet()

func countRequest(op string) {
	clientMetrics.GetOrCreateCounter(fmt.Sprintf(`qpkv_client_requests_total{op=%q}`, op)).Inc()
}

func observeDuration(op string, start time.Time) {
	clientMetrics.GetOrCreateHistogram(fmt.Sprintf(`qpkv_client_request_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

func recordError(op string, err error) {
	clientMetrics.GetOrCreateCounter(fmt.Sprintf(`qpkv_client_errors_total{op=%q,class=%q}`, op, classify(err))).Inc()
}

// classify maps an error of the client to its error class
func classify(err error) string {
	if serverErr, ok := common.IsServerError(err); ok {
		if serverErr.Kind == common.ErrorKindDeadlock {
			return errClassDeadlock
		}
		return errClassOther
	}

	switch {
	case errors.Is(err, common.ErrConnection):
		return errClassConnection
	case errors.Is(err, common.ErrTransport):
		return errClassTransport
	case errors.Is(err, common.ErrProtocolViolation):
		return errClassProtocol
	default:
		return errClassLocal
	}
}

// WriteMetrics writes all client metrics in the prometheus text format to w
func WriteMetrics(w io.Writer) {
	clientMetrics.WritePrometheus(w)
}
