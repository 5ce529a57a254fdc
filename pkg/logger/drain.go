package logger

import (
	"go.uber.org/zap"

	"github.com/kerlexov/logstash-tcp-go-sdk/pkg/transform"
)

func (t *Transport) drain() {
	if t.conn == nil {
		if t.queue.Len() > 0 && !t.retry.Active() {
			t.connect()
		}
		return
	}
	if t.inflight != nil {
		return
	}

	for {
		recs := t.queue.DrainAll()
		if len(recs) == 0 {
			t.idle.arm()
			t.releaseWaiters(nil)
			return
		}

		batch := t.encode(recs)
		if len(batch) == 0 {
			continue
		}

		t.idle.cancel()
		t.inflight = batch
		t.conn.send(batch)
		return
	}
}

// Unencodable records are dropped.
func (t *Transport) encode(recs []Record) []pending {
	batch := make([]pending, 0, len(recs))
	for _, rec := range recs {
		builder := t.cfg.Transformer.Transform(rec)
		if t.cfg.Label != "" {
			rec["label"] = t.cfg.Label
		}

		line, err := transform.Encode(nil, builder.Build(rec))
		if err != nil {
			t.unencoded.Add(1)
			encErr := ErrEncode("record dropped", err)
			t.log.Warn("encode failed", zap.Error(encErr))
			if t.cfg.OnError != nil {
				t.cfg.OnError(encErr)
			}
			continue
		}
		batch = append(batch, pending{rec: rec, line: line})
	}
	return batch
}

func (t *Transport) writeResults() <-chan writeResult {
	if t.conn == nil || t.inflight == nil {
		return nil
	}
	return t.conn.results
}

func (t *Transport) handleWritten(res writeResult) {
	t.settle(res)

	if res.err != nil {
		t.log.Warn("write failed", zap.Stringer("conn_id", t.conn.id),
			zap.Error(classifyNetErr("write failed", res.err)))
		t.disconnected()
		return
	}
	t.drain()
}

func (t *Transport) settle(res writeResult) {
	batch := t.inflight
	t.inflight = nil

	n := res.written
	if n > len(batch) {
		n = len(batch)
	}
	for _, p := range batch[:n] {
		t.sent.Add(1)
		if t.cfg.OnDelivered != nil {
			t.cfg.OnDelivered(p.rec)
		}
	}

	if rest := batch[n:]; len(rest) > 0 {
		recs := make([]Record, len(rest))
		for i, p := range rest {
			recs[i] = p.rec
		}
		t.queue.PushFront(recs)
	}
}
