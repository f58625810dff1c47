package base

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
)

const (
	// defaultBufferSize is the size of the line reader buffer if none is configured
	defaultBufferSize = 64 * 1024 // 64 KB

	// maxLineSize bounds the size of a single message
	maxLineSize = 64 * 1024 * 1024 // 64 MB
)

// errLineTooLong is returned when a line exceeds maxLineSize
var errLineTooLong = errors.New("line exceeds maximum message size")

// writeLine writes data followed by the newline delimiter with a single write call
func writeLine(conn net.Conn, data []byte) error {
	if bytes.IndexByte(data, '\n') >= 0 {
		return fmt.Errorf("message contains a raw newline")
	}

	line := make([]byte, len(data)+1)
	copy(line, data)
	line[len(data)] = '\n'

	_, err := conn.Write(line)
	return err
}

// readLine reads one newline terminated line and returns it without the delimiter.
// A trailing '\r' is stripped as well. If the stream ends before the delimiter
// arrives, io.ErrUnexpectedEOF is returned (or io.EOF if nothing was read at all).
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)

		if len(line) > maxLineSize {
			return nil, errLineTooLong
		}

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}
