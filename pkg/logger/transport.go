package logger

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/buffer"
	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/retry"
)

type connEventKind uint8

const (
	evDialed connEventKind = iota
	evEnded
)

// id is the attempt that produced the event.
type connEvent struct {
	kind connEventKind
	id   uuid.UUID
	conn net.Conn
	err  error
}

// Transport ships records as newline-delimited JSON over a single TCP
// connection. All connection state is owned by one goroutine; Log only
// touches the queue and a wake-up channel, so it never blocks.
type Transport struct {
	cfg   Config
	log   *zap.Logger
	queue *buffer.Queue[Record]

	kickC  chan struct{}
	events chan connEvent
	flushC chan chan error
	stopC  chan struct{}
	doneC  chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool
	state     atomic.Uint32
	retries   atomic.Int64
	sent      atomic.Uint64
	unencoded atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc

	// owned by run
	conn     *connection
	attempt  uuid.UUID
	dialing  bool
	inflight []pending
	silent   bool
	idle     *idleTimer
	retry    *retry.Fixed
	waiters  []chan error
}

var _ Sink = (*Transport)(nil)

// NewTransport validates config and starts the transport goroutine. Unless
// config.Idle is set, the first connection attempt starts right away.
func NewTransport(config Config) (*Transport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	policy, _ := buffer.ParseOverflow(config.QueuePolicy)
	ctx, cancel := context.WithCancel(context.Background())

	t := &Transport{
		cfg:    config,
		log:    config.Logger.With(zap.String("addr", config.Addr())),
		queue:  buffer.NewQueue[Record](config.MaxQueueSize, policy),
		kickC:  make(chan struct{}, 1),
		events: make(chan connEvent),
		flushC: make(chan chan error),
		stopC:  make(chan struct{}),
		doneC:  make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		idle:   newIdleTimer(config.IdleClose),
		retry:  retry.NewFixed(config.RetryInterval, config.MaxRetries),
	}

	go t.run()
	return t, nil
}

// Log queues a copy of rec and returns immediately. done, if not nil, runs
// before Log returns. Records logged after Close are discarded.
func (t *Transport) Log(rec Record, done func()) {
	if !t.closed.Load() {
		if !t.queue.Push(rec.Clone()) {
			t.log.Debug("queue full, record dropped", zap.Int("max_queue_size", t.cfg.MaxQueueSize))
		}
		select {
		case t.kickC <- struct{}{}:
		default:
		}
	}
	if done != nil {
		done()
	}
}

// Flush waits until every queued record has been written. It returns
// ErrSilent once the transport has given up reconnecting and ErrClosed after
// Close.
func (t *Transport) Flush(ctx context.Context) error {
	if t.closed.Load() {
		return ErrClosed
	}

	ch := make(chan error, 1)
	select {
	case t.flushC <- ch:
	case <-t.doneC:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the connection down and stops the transport. A batch that is
// being written is allowed to finish first, so Close can block for up to
// WriteTimeout when the peer has stopped reading. It is safe to call any
// number of times.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		close(t.stopC)
		<-t.doneC
	})
	return nil
}

func (t *Transport) State() ConnectionState {
	return ConnectionState(t.state.Load())
}

func (t *Transport) Stats() Stats {
	return Stats{
		State:   t.State(),
		Queued:  t.queue.Len(),
		Retries: int(t.retries.Load()),
		Sent:    t.sent.Load(),
		Dropped: t.queue.Dropped() + t.unencoded.Load(),
	}
}

func (t *Transport) run() {
	defer close(t.doneC)

	if !t.cfg.Idle {
		t.connect()
	}

	for {
		select {
		case <-t.stopC:
			t.shutdown(true)
			t.releaseWaiters(ErrClosed)
			t.cancel()
			t.log.Debug("transport closed")
			return

		case <-t.kickC:
			t.idle.cancel()
			t.drain()

		case ev := <-t.events:
			t.handleEvent(ev)

		case res := <-t.writeResults():
			t.handleWritten(res)

		case <-t.idle.C():
			t.idle.fired()
			t.log.Debug("connection idle, closing")
			t.shutdown(true)

		case <-t.retry.C():
			t.handleRetryTick()

		case ch := <-t.flushC:
			t.addWaiter(ch)
		}
	}
}

func (t *Transport) post(ev connEvent) bool {
	select {
	case t.events <- ev:
		return true
	case <-t.doneC:
		return false
	}
}

func (t *Transport) setState(s ConnectionState) {
	prev := ConnectionState(t.state.Swap(uint32(s)))
	if prev != s {
		t.log.Debug("state change", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

func (t *Transport) connect() {
	t.idle.cancel()
	if t.silent || t.conn != nil || t.dialing {
		return
	}

	id := uuid.New()
	t.attempt = id
	t.dialing = true
	t.setState(StateConnecting)
	t.log.Debug("connecting", zap.Stringer("conn_id", id))

	go func() {
		ctx, cancel := context.WithTimeout(t.ctx, t.cfg.DialTimeout)
		defer cancel()

		conn, err := t.cfg.Dialer.DialContext(ctx, "tcp", t.cfg.Addr())
		if !t.post(connEvent{kind: evDialed, id: id, conn: conn, err: err}) && conn != nil {
			conn.Close()
		}
	}()
}

func (t *Transport) handleEvent(ev connEvent) {
	switch ev.kind {
	case evDialed:
		if !t.dialing || ev.id != t.attempt {
			// superseded attempt
			if ev.conn != nil {
				ev.conn.Close()
			}
			return
		}
		t.dialing = false
		if ev.err != nil {
			err := classifyNetErr("connect failed", ev.err)
			t.log.Warn("connect failed", zap.Stringer("conn_id", ev.id), zap.Error(err))
			t.disconnected()
			return
		}
		t.connected(ev.id, ev.conn)

	case evEnded:
		if t.conn == nil || ev.id != t.conn.id {
			return
		}
		if ev.err != nil {
			t.log.Warn("connection lost", zap.Stringer("conn_id", ev.id),
				zap.Error(classifyNetErr("read failed", ev.err)))
		} else {
			t.log.Debug("connection ended by peer", zap.Stringer("conn_id", ev.id))
		}
		t.disconnected()
	}
}

func (t *Transport) connected(id uuid.UUID, conn net.Conn) {
	c := newConnection(id, conn, t.cfg.WriteTimeout)
	c.start(func(err error) {
		t.post(connEvent{kind: evEnded, id: id, err: err})
	})

	t.conn = c
	t.retry.Stop()
	t.retry.Reset()
	t.retries.Store(0)
	t.idle.cancel()
	t.setState(StateConnected)
	t.log.Debug("connected", zap.Stringer("conn_id", id))

	t.drain()
}

// disconnected handles error, timeout, end and close alike: the socket is
// destroyed, then the transport retries if anything is left to send or
// quiesces if not.
func (t *Transport) disconnected() {
	t.idle.cancel()
	t.destroy(false)

	if t.silent {
		return
	}
	if t.retry.Active() {
		t.setState(StateRetrying)
		return
	}
	if t.queue.Len() == 0 {
		t.shutdown(false)
		return
	}

	t.setState(StateRetrying)
	t.retry.Start()
	t.log.Debug("retry scheduled",
		zap.Duration("interval", t.cfg.RetryInterval),
		zap.Int("max_retries", t.cfg.MaxRetries))
}

func (t *Transport) handleRetryTick() {
	n, exhausted := t.retry.Tick()
	t.retries.Store(int64(n))

	if exhausted {
		t.goSilent()
		return
	}
	if t.conn != nil || t.dialing {
		return
	}

	t.log.Debug("reconnecting", zap.Int("attempt", n))
	t.connect()
}

func (t *Transport) goSilent() {
	t.retry.Stop()
	t.idle.cancel()
	t.destroy(false)
	t.silent = true
	t.setState(StateSilent)

	t.log.Warn(ErrSilent.Message,
		zap.Int("max_retries", t.cfg.MaxRetries),
		zap.Int("queued", t.queue.Len()))
	if t.cfg.OnError != nil {
		t.cfg.OnError(ErrSilent)
	}
	t.releaseWaiters(ErrSilent)
}

func (t *Transport) shutdown(graceful bool) {
	t.idle.cancel()
	t.retry.Stop()
	t.retry.Reset()
	t.retries.Store(0)
	t.destroy(graceful)

	if !t.silent {
		t.setState(StateDisconnected)
	}
}

// destroy releases the socket and invalidates the current attempt so late
// events for it are ignored. A batch still being written is settled: written
// records count as delivered and the rest go back to the head of the queue.
// A graceful destroy lets the batch finish before closing.
func (t *Transport) destroy(graceful bool) {
	t.attempt = uuid.Nil
	t.dialing = false

	c := t.conn
	if c == nil {
		return
	}
	t.conn = nil

	if graceful && t.inflight != nil {
		t.settle(<-c.results)
	}
	if err := c.close(); err != nil {
		t.log.Debug("close failed", zap.Stringer("conn_id", c.id), zap.Error(err))
	}
	if t.inflight != nil {
		t.settle(<-c.results)
	}
}

func (t *Transport) addWaiter(ch chan error) {
	switch {
	case t.silent:
		ch <- ErrSilent
	case t.inflight == nil && t.queue.Len() == 0:
		ch <- nil
	default:
		t.waiters = append(t.waiters, ch)
		t.drain()
	}
}

func (t *Transport) releaseWaiters(err error) {
	for _, ch := range t.waiters {
		ch <- err
	}
	t.waiters = nil
}
