package logger

import (
	"io"
	"net"
	"time"

	"github.com/google/uuid"
)

type pending struct {
	rec  Record
	line []byte
}

type writeResult struct {
	written int
	err     error
}

// connection holds at most one batch in flight; see Transport.drain.
type connection struct {
	id           uuid.UUID
	conn         net.Conn
	writeTimeout time.Duration
	batches      chan []pending
	results      chan writeResult
}

func newConnection(id uuid.UUID, conn net.Conn, writeTimeout time.Duration) *connection {
	return &connection{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
		batches:      make(chan []pending, 1),
		results:      make(chan writeResult, 1),
	}
}

// ended gets nil on EOF.
func (c *connection) start(ended func(err error)) {
	go c.writeLoop()
	go func() {
		_, err := io.Copy(io.Discard, c.conn)
		ended(err)
	}()
}

func (c *connection) send(batch []pending) {
	c.batches <- batch
}

func (c *connection) writeLoop() {
	for batch := range c.batches {
		n, err := c.write(batch)
		c.results <- writeResult{written: n, err: err}
	}
}

func (c *connection) write(batch []pending) (int, error) {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	for i, p := range batch {
		if _, err := c.conn.Write(p.line); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

func (c *connection) close() error {
	close(c.batches)
	return c.conn.Close()
}
