// Package client implements the RPC client of the table store.
//
// An RPCClient owns one stream connection and implements store.ITableStore
// (GetItem, PutItem, ScanItem). Every call sends one request line and waits for
// exactly one response line, concurrent calls on the same client are serialized.
// Parallelism is achieved with one client per goroutine.
//
// Error handling:
//
//   - *common.Error: the server answered with an Error response (deadlock or other).
//     The connection stays usable, deadlocks may be retried (see common.IsRetryable).
//   - common.ErrProtocolViolation: the server answered a different operation than
//     requested, or a scan returned more items than the limit. Not retryable.
//   - common.ErrTransport: I/O fault, timeout or malformed line. The client is unusable
//     afterwards, every further call fails with common.ErrDisconnected.
//   - common.ErrConnection: the connection could not be established.
//
// Usage Example:
//
//	c, err := client.Connect(common.DefaultEndpoint)
//	if err != nil {
//	  return err
//	}
//	defer c.Close()
//
//	item, err := c.GetItem(table.Users, key.UserKey{UserID: 789}.Key())
//
// Request counters, error counters and latency histograms are kept with
// VictoriaMetrics/metrics and can be exported with WriteMetrics.
package client
