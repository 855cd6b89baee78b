package clock

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"
)

// NullClock is a deterministic Clock for tests. Time stands still until the
// test calls Advance. Waiters registered through After, NewTicker, and Sleep
// fire in deadline order as the clock moves past them.
type NullClock struct {
	mu       sync.Mutex
	now      time.Time
	waiters  []*nullWaiter
	blockers []*nullBlocker
}

type nullWaiter struct {
	deadline time.Time
	period   time.Duration // 0 for one-shot
	ch       chan time.Time
	stopped  bool
}

type nullBlocker struct {
	count int
	ch    chan struct{}
}

// NewNull returns a NullClock starting at a fixed, arbitrary instant.
func NewNull() *NullClock {
	return &NullClock{
		now: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (c *NullClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *NullClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &nullWaiter{
		deadline: c.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	c.waiters = append(c.waiters, w)
	c.notifyBlockers()
	return w.ch
}

func (c *NullClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &nullWaiter{
		deadline: c.now.Add(d),
		period:   d,
		ch:       make(chan time.Time, 1),
	}
	c.waiters = append(c.waiters, w)
	c.notifyBlockers()
	return &nullTicker{clock: c, w: w}
}

func (c *NullClock) Sleep(ctx context.Context, d time.Duration) error {
	ch := c.After(d)
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance moves the clock forward by d, firing every waiter whose deadline
// falls inside the window, in deadline order. Waiters registered by
// goroutines woken during the advance join the same scan, but callers that
// depend on such chains should advance in steps and synchronize with
// BlockUntil.
func (c *NullClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		w := c.nextDueLocked(target)
		if w == nil {
			break
		}
		c.now = w.deadline
		if w.period > 0 {
			w.deadline = w.deadline.Add(w.period)
		} else {
			c.removeLocked(w)
		}
		fired := c.now
		c.mu.Unlock()
		select {
		case w.ch <- fired:
		default:
		}
		// Give woken goroutines a chance to register follow-up waiters.
		runtime.Gosched()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// BlockUntil waits until at least n waiters are registered with the clock.
// Tests use it to ensure the code under test has reached its timing calls
// before advancing.
func (c *NullClock) BlockUntil(n int) {
	c.mu.Lock()
	if len(c.waiters) >= n {
		c.mu.Unlock()
		return
	}
	b := &nullBlocker{count: n, ch: make(chan struct{})}
	c.blockers = append(c.blockers, b)
	c.mu.Unlock()
	<-b.ch
}

func (c *NullClock) nextDueLocked(target time.Time) *nullWaiter {
	sort.SliceStable(c.waiters, func(i, j int) bool {
		return c.waiters[i].deadline.Before(c.waiters[j].deadline)
	})
	for _, w := range c.waiters {
		if w.stopped {
			continue
		}
		if !w.deadline.After(target) {
			return w
		}
	}
	return nil
}

func (c *NullClock) removeLocked(target *nullWaiter) {
	for i, w := range c.waiters {
		if w == target {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

func (c *NullClock) notifyBlockers() {
	remaining := c.blockers[:0]
	for _, b := range c.blockers {
		if len(c.waiters) >= b.count {
			close(b.ch)
		} else {
			remaining = append(remaining, b)
		}
	}
	c.blockers = remaining
}

type nullTicker struct {
	clock *NullClock
	w     *nullWaiter
}

func (t *nullTicker) C() <-chan time.Time { return t.w.ch }

func (t *nullTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.w.stopped = true
	t.clock.removeLocked(t.w)
}
