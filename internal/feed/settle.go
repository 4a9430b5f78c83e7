package feed

import (
	"sync"
	"time"
)

// Settler debounces scroll-position reports. Once no report has arrived
// for the settle interval, the last reported index is handed to fn.
type Settler struct {
	interval time.Duration
	fn       func(index int)

	mu      sync.Mutex
	timer   *time.Timer
	pending int
	gen     uint64
	stopped bool
}

func NewSettler(interval time.Duration, fn func(index int)) *Settler {
	return &Settler{interval: interval, fn: fn}
}

// Report records that the feed is currently positioned at index.
func (s *Settler) Report(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.pending = index
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() { s.fire(gen) })
}

func (s *Settler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return
	}
	index := s.pending
	s.timer = nil
	s.mu.Unlock()

	s.fn(index)
}

// Stop cancels any pending report. Reports after Stop are ignored.
func (s *Settler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
