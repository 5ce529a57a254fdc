package logger

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// lineServer is a loopback collector that records every received line.
type lineServer struct {
	ln       net.Listener
	lines    chan string
	accepted atomic.Int32
	ended    atomic.Int32

	mu    sync.Mutex
	conns []net.Conn
}

func newLineServer(t *testing.T) *lineServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &lineServer{
		ln:    ln,
		lines: make(chan string, 4096),
	}
	go s.serve()

	t.Cleanup(func() {
		ln.Close()
		s.dropConns()
	})
	return s
}

func (s *lineServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.accepted.Add(1)
		s.mu.Lock()
		s.conns = append(s.conns, c)
		s.mu.Unlock()
		go s.read(c)
	}
}

func (s *lineServer) read(c net.Conn) {
	defer s.ended.Add(1)
	sc := bufio.NewScanner(c)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
}

// dropConns closes every accepted connection from the server side.
func (s *lineServer) dropConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
}

func (s *lineServer) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, port, err := net.SplitHostPort(s.ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

func (s *lineServer) next(t *testing.T) string {
	t.Helper()
	select {
	case line := <-s.lines:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a line")
		return ""
	}
}

func (s *lineServer) expectNoLine(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case line := <-s.lines:
		t.Fatalf("unexpected line %q", line)
	case <-time.After(wait):
	}
}

// scriptedDialer refuses the first failures dials (all of them when always
// is set) and records when each dial happened.
type scriptedDialer struct {
	failures int
	always   bool

	mu    sync.Mutex
	dials []time.Time
	d     net.Dialer
}

func (d *scriptedDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d.mu.Lock()
	d.dials = append(d.dials, time.Now())
	fail := d.always || len(d.dials) <= d.failures
	d.mu.Unlock()

	if fail {
		return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
	}
	return d.d.DialContext(ctx, network, addr)
}

func (d *scriptedDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dials)
}

func (d *scriptedDialer) times() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Time(nil), d.dials...)
}

// blockingDialer never completes a dial until its context ends.
type blockingDialer struct {
	started chan struct{}
}

func (d *blockingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	select {
	case d.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

// faultConn breaks its failAt-th Write (counting from 1). Without stall the
// write fails at once; with stall it blocks until the conn is closed or the
// write deadline passes, the way a peer that stopped reading would.
type faultConn struct {
	net.Conn
	failAt  int
	stall   bool
	stalled chan struct{}

	writes    int
	deadline  time.Time
	closeOnce sync.Once
	closed    chan struct{}
}

func newFaultConn(failAt int, stall bool) *faultConn {
	return &faultConn{
		failAt:  failAt,
		stall:   stall,
		stalled: make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

func (c *faultConn) Write(p []byte) (int, error) {
	c.writes++
	if c.writes != c.failAt {
		return c.Conn.Write(p)
	}
	if !c.stall {
		return 0, &net.OpError{Op: "write", Net: "tcp", Err: syscall.EPIPE}
	}

	close(c.stalled)
	var timeout <-chan time.Time
	if !c.deadline.IsZero() {
		timer := time.NewTimer(time.Until(c.deadline))
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-c.closed:
		return 0, net.ErrClosed
	case <-timeout:
		return 0, &net.OpError{Op: "write", Net: "tcp", Err: errWriteTimeout{}}
	}
}

func (c *faultConn) SetWriteDeadline(t time.Time) error {
	c.deadline = t
	return c.Conn.SetWriteDeadline(t)
}

func (c *faultConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.Conn.Close()
}

type errWriteTimeout struct{}

func (errWriteTimeout) Error() string   { return "i/o timeout" }
func (errWriteTimeout) Timeout() bool   { return true }
func (errWriteTimeout) Temporary() bool { return true }

// faultDialer hands out first on the first dial and plain connections after.
type faultDialer struct {
	first *faultConn

	mu    sync.Mutex
	dials int
	d     net.Dialer
}

func (d *faultDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := d.d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.dials == 1 {
		d.first.Conn = conn
		return d.first, nil
	}
	return conn, nil
}

func (d *faultDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func testConfig(host string, port int) Config {
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.Idle = true
	cfg.MaxRetries = 5
	cfg.RetryInterval = 20 * time.Millisecond
	cfg.IdleClose = time.Second
	cfg.DialTimeout = time.Second
	cfg.WriteTimeout = time.Second
	return cfg
}

func newTestTransport(t *testing.T, cfg Config) *Transport {
	t.Helper()
	tr, err := NewTransport(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}
