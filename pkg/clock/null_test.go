package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullClockStandsStillUntilAdvanced(t *testing.T) {
	clk := NewNull()

	start := clk.Now()
	assert.Equal(t, start, clk.Now())

	clk.Advance(42 * time.Millisecond)
	assert.Equal(t, start.Add(42*time.Millisecond), clk.Now())
}

func TestNullClockAfterFiresAtItsDeadline(t *testing.T) {
	clk := NewNull()

	ch := clk.After(100 * time.Millisecond)

	clk.Advance(99 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("fired early")
	default:
	}

	clk.Advance(1 * time.Millisecond)
	select {
	case fired := <-ch:
		assert.Equal(t, clk.Now(), fired)
	default:
		t.Fatal("never fired")
	}
}

func TestNullClockFiresWaitersInDeadlineOrder(t *testing.T) {
	clk := NewNull()

	var order []string
	first := clk.After(10 * time.Millisecond)
	third := clk.After(30 * time.Millisecond)
	second := clk.After(20 * time.Millisecond)

	clk.Advance(30 * time.Millisecond)

	// All three fired within one advance; drain in deadline order.
	for _, entry := range []struct {
		name string
		ch   <-chan time.Time
		at   time.Duration
	}{
		{"first", first, 10 * time.Millisecond},
		{"second", second, 20 * time.Millisecond},
		{"third", third, 30 * time.Millisecond},
	} {
		select {
		case fired := <-entry.ch:
			base := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, base.Add(entry.at), fired, entry.name)
			order = append(order, entry.name)
		default:
			t.Fatalf("%s never fired", entry.name)
		}
	}
	require.Equal(t, []string{"first", "second", "third"}, order)
}

func TestNullClockTickerRepeats(t *testing.T) {
	clk := NewNull()

	ticker := clk.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		clk.Advance(10 * time.Millisecond)
		select {
		case <-ticker.C():
		default:
			t.Fatalf("tick %d never fired", i)
		}
	}
}

func TestNullClockStoppedTickerStopsFiring(t *testing.T) {
	clk := NewNull()

	ticker := clk.NewTicker(10 * time.Millisecond)
	ticker.Stop()

	clk.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestNullClockSleepWakesOnAdvance(t *testing.T) {
	clk := NewNull()

	done := make(chan error)
	go func() {
		done <- clk.Sleep(context.Background(), 100*time.Millisecond)
	}()

	clk.BlockUntil(1)
	clk.Advance(100 * time.Millisecond)
	assert.NoError(t, <-done)
}

func TestNullClockSleepHonorsContext(t *testing.T) {
	clk := NewNull()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- clk.Sleep(ctx, time.Hour)
	}()

	clk.BlockUntil(1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNullClockBlockUntilReturnsOnceWaitersExist(t *testing.T) {
	clk := NewNull()

	released := make(chan struct{})
	go func() {
		clk.BlockUntil(2)
		close(released)
	}()

	clk.After(time.Millisecond)
	select {
	case <-released:
		t.Fatal("released with only one waiter")
	case <-time.After(10 * time.Millisecond):
	}

	clk.After(time.Millisecond)
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("never released")
	}
}
