package http

import "time"

// rateLimiter caps inbound chat messages per connection. The counter resets
// once a minute; it is owned by a single read loop, so no locking.
type rateLimiter struct {
	limit   int
	counter int
	reset   *time.Ticker
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return &rateLimiter{limit: 0}
	}
	return &rateLimiter{
		limit: perMinute,
		reset: time.NewTicker(time.Minute),
	}
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	r.counter = r.counterSnapshot() + 1
	return r.counter <= r.limit
}

func (r *rateLimiter) counterSnapshot() int {
	if r.reset == nil {
		return r.counter
	}
	select {
	case <-r.reset.C:
		return 0
	default:
		return r.counter
	}
}

func (r *rateLimiter) startReset(stop <-chan struct{}) {
	if r == nil || r.reset == nil {
		return
	}
	go func() {
		<-stop
		r.reset.Stop()
	}()
}
