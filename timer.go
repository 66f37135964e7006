package mooremachine

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Canceller is an opaque, cancellable handle returned by every
// TimerSource scheduling call, matching the spec's "host timer
// abstraction" contract of one-shot/periodic/next-tick primitives each
// returning a token accepted by a matching cancel primitive.
type Canceller interface {
	Cancel()
}

// TimerSource is the host timer abstraction StateHandle schedules
// against. ClockTimerSource is the reference implementation; tests
// substitute one built on clock.NewMock() to make timeout/interval
// teardown deterministic.
type TimerSource interface {
	AfterFunc(d time.Duration, fn func()) Canceller
	TickerFunc(d time.Duration, fn func()) Canceller
	NextTick(fn func()) Canceller
}

// ClockTimerSource implements TimerSource on top of a benbjohnson/clock
// Clock, so production code runs against the wall clock (clock.New())
// while tests run against a mock one (clock.NewMock()) without any of
// the scheduling logic changing shape.
type ClockTimerSource struct {
	clock clock.Clock
}

// NewClockTimerSource wraps c. A nil c defaults to the real wall clock.
func NewClockTimerSource(c clock.Clock) *ClockTimerSource {
	if c == nil {
		c = clock.New()
	}

	return &ClockTimerSource{clock: c}
}

type timerCanceller struct {
	timer *clock.Timer
}

func (c *timerCanceller) Cancel() { c.timer.Stop() }

// AfterFunc schedules fn to run once after d elapses.
func (t *ClockTimerSource) AfterFunc(d time.Duration, fn func()) Canceller {
	return &timerCanceller{timer: t.clock.AfterFunc(d, fn)}
}

// NextTick schedules fn to run on the next available tick of the clock.
func (t *ClockTimerSource) NextTick(fn func()) Canceller {
	return &timerCanceller{timer: t.clock.AfterFunc(0, fn)}
}

type tickerCanceller struct {
	ticker *clock.Ticker
	done   chan struct{}
}

func (c *tickerCanceller) Cancel() {
	c.ticker.Stop()
	close(c.done)
}

// TickerFunc schedules fn to run every d until cancelled.
func (t *ClockTimerSource) TickerFunc(d time.Duration, fn func()) Canceller {
	ticker := t.clock.Ticker(d)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return &tickerCanceller{ticker: ticker, done: done}
}
