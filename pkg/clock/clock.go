// Package clock abstracts wall time behind an interface so the engine's
// timing behavior (timeouts, keepalives, tickers) can be driven
// deterministically in tests. Production code uses New(); tests use NewNull().
package clock

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout is the fallback deadline applied to hooks and test bodies
// when neither the call site nor the enclosing suite sets one.
const DefaultTimeout = 2 * time.Second

// Clock provides the primitive time operations the engine builds on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a ticker that fires every d until stopped.
	NewTicker(d time.Duration) Ticker

	// Sleep suspends for d, or until ctx is cancelled, in which case it
	// returns ctx's error.
	Sleep(ctx context.Context, d time.Duration) error
}

// Ticker delivers repeated ticks on its channel.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// New returns a Clock backed by real wall time.
func New() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type systemTicker struct {
	t *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time { return t.t.C }
func (t *systemTicker) Stop()               { t.t.Stop() }

// Timeout races body against a timer of length d. If body finishes first its
// result is returned; otherwise onTimeout's result is returned and body's
// eventual completion is discarded. A tie resolves to the timer. The context
// passed to body is cancelled when the timer wins, so cooperative bodies can
// stop early; interruption is best-effort and the loser may run to completion
// in the background.
func Timeout[T any](ctx context.Context, c Clock, d time.Duration, body func(context.Context) T, onTimeout func() T) T {
	bodyCtx, cancel := context.WithCancel(ctx)
	done := make(chan T, 1)
	timer := c.After(d)

	go func() {
		done <- body(bodyCtx)
	}()

	select {
	case result := <-done:
		select {
		case <-timer:
			cancel()
			return onTimeout()
		default:
		}
		cancel()
		return result
	case <-timer:
		cancel()
		return onTimeout()
	}
}

// Repeat schedules f every interval until the returned cancel function is
// called. Cancelling is idempotent.
func Repeat(c Clock, interval time.Duration, f func()) (cancel func()) {
	ticker := c.NewTicker(interval)
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C():
				f()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
		})
	}
}

// Keepalive watches for signs of life. If Alive is not called for a full
// window, onStall fires exactly once and the watchdog stops.
type Keepalive struct {
	alive chan struct{}
	stop  chan struct{}
	once  sync.Once
}

// NewKeepalive starts a watchdog with the given window.
func NewKeepalive(c Clock, window time.Duration, onStall func()) *Keepalive {
	k := &Keepalive{
		alive: make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-k.alive:
			case <-k.stop:
				return
			case <-c.After(window):
				onStall()
				return
			}
		}
	}()

	return k
}

// Alive resets the watchdog window. Never blocks.
func (k *Keepalive) Alive() {
	select {
	case k.alive <- struct{}{}:
	default:
	}
}

// Cancel stops the watchdog. Idempotent.
func (k *Keepalive) Cancel() {
	k.once.Do(func() {
		close(k.stop)
	})
}
