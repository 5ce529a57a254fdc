package retry

import (
	"time"
)

// Fixed is a repeating reconnection schedule with a constant interval and a
// retry ceiling. It is not safe for concurrent use; the owner drives it from
// a single goroutine by selecting on C and calling Tick.
type Fixed struct {
	Interval   time.Duration
	MaxRetries int

	count  int
	ticker *time.Ticker
}

func NewFixed(interval time.Duration, maxRetries int) *Fixed {
	return &Fixed{
		Interval:   interval,
		MaxRetries: maxRetries,
	}
}

// Start arms the ticker. It is a no-op while already active.
func (f *Fixed) Start() {
	if f.ticker != nil {
		return
	}
	f.ticker = time.NewTicker(f.Interval)
}

func (f *Fixed) Stop() {
	if f.ticker == nil {
		return
	}
	f.ticker.Stop()
	f.ticker = nil
}

func (f *Fixed) Active() bool {
	return f.ticker != nil
}

// C returns the tick channel, or nil when the schedule is stopped so that a
// select on it never fires.
func (f *Fixed) C() <-chan time.Time {
	if f.ticker == nil {
		return nil
	}
	return f.ticker.C
}

// Tick records one elapsed interval. When the count reaches MaxRetries the
// ticker is stopped and exhausted is true; the caller must not attempt
// another connection in that case.
func (f *Fixed) Tick() (attempt int, exhausted bool) {
	f.count++
	if f.MaxRetries > 0 && f.count >= f.MaxRetries {
		f.Stop()
		return f.count, true
	}
	return f.count, false
}

// Reset clears the counter. The ticker state is left alone.
func (f *Fixed) Reset() {
	f.count = 0
}
