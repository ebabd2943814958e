package players

import (
	"fmt"
	"io"
	"sync"
)

// WriterConn is a Conn writing one line per message to an io.Writer,
// for players sitting at a terminal.
type WriterConn struct {
	mu     sync.Mutex
	prefix string
	Out    io.Writer
}

// NewWriterConn constructs a WriterConn. Every line written is prefixed
// with prefix.
func NewWriterConn(out io.Writer, prefix string) *WriterConn {
	return &WriterConn{Out: out, prefix: prefix}
}

func (c *WriterConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.Out, "%s%s\n", c.prefix, data)
	return err
}

func (c *WriterConn) Close() error {
	return nil
}
