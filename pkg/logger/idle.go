package logger

import (
	"time"
)

type idleTimer struct {
	delay time.Duration
	t     *time.Timer
}

func newIdleTimer(delay time.Duration) *idleTimer {
	return &idleTimer{delay: delay}
}

func (it *idleTimer) arm() {
	it.cancel()
	it.t = time.NewTimer(it.delay)
}

func (it *idleTimer) cancel() {
	if it.t == nil {
		return
	}
	it.t.Stop()
	it.t = nil
}

// C is nil while disarmed, so a fire from a replaced timer is never seen.
func (it *idleTimer) C() <-chan time.Time {
	if it.t == nil {
		return nil
	}
	return it.t.C
}

// fired must be called after receiving from C.
func (it *idleTimer) fired() {
	it.t = nil
}
