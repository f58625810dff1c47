package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Client Error Taxonomy
// --------------------------------------------------------------------------

var (
	// ErrConnection is returned when the stream to the store can not be established
	ErrConnection = errors.New("connection error")

	// ErrTransport is returned for I/O faults and malformed or truncated response lines.
	// The connection is unusable afterwards.
	ErrTransport = errors.New("transport error")

	// ErrDisconnected is returned when a request is issued on a connection that
	// failed earlier or was closed. It also matches ErrTransport.
	ErrDisconnected = fmt.Errorf("%w: not connected", ErrTransport)

	// ErrProtocolViolation is returned when the server answers with a response
	// variant that does not match the request. It is not retryable.
	ErrProtocolViolation = errors.New("protocol violation")
)

// IsDeadlock reports whether err is a server declared deadlock
func IsDeadlock(err error) bool {
	var serverErr *Error
	return errors.As(err, &serverErr) && serverErr.Kind == ErrorKindDeadlock
}

// IsServerError reports whether err was declared by the server and returns it
func IsServerError(err error) (*Error, bool) {
	var serverErr *Error
	if errors.As(err, &serverErr) {
		return serverErr, true
	}
	return nil, false
}

// IsRetryable reports whether a read that failed with err may be retried on the same connection.
// Only deadlocks are generically retryable. Writes must be judged by the caller.
func IsRetryable(err error) bool {
	return IsDeadlock(err)
}
