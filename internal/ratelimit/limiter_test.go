package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the limiter sleeps or the test calls advance.
type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slept = append(c.slept, d)
	if d > 0 {
		c.t = c.t.Add(d)
	}
	return nil
}

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		l, err := New(3, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 0, l.Pending())
	})

	t.Run("zero max requests", func(t *testing.T) {
		_, err := New(0, time.Second)
		assert.Error(t, err)
	})

	t.Run("non-positive period", func(t *testing.T) {
		_, err := New(1, 0)
		assert.Error(t, err)
	})
}

func TestWait(t *testing.T) {
	t.Run("burst up to max does not sleep", func(t *testing.T) {
		clock := newFakeClock()
		l, err := New(3, 2*time.Second, WithClock(clock.now, clock.sleep))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, l.Wait(context.Background()))
		}
		assert.Empty(t, clock.slept)
		assert.Equal(t, 3, l.Pending())
	})

	t.Run("sleeps until oldest call leaves the window", func(t *testing.T) {
		clock := newFakeClock()
		l, err := New(1, 2*time.Second, WithClock(clock.now, clock.sleep))
		require.NoError(t, err)

		start := clock.now()
		require.NoError(t, l.Wait(context.Background()))
		clock.advance(500 * time.Millisecond)
		require.NoError(t, l.Wait(context.Background()))

		require.Len(t, clock.slept, 1)
		assert.Equal(t, 1500*time.Millisecond, clock.slept[0])
		assert.Equal(t, start.Add(2*time.Second), clock.now())
	})

	t.Run("expired calls are pruned", func(t *testing.T) {
		clock := newFakeClock()
		l, err := New(2, time.Second, WithClock(clock.now, clock.sleep))
		require.NoError(t, err)

		require.NoError(t, l.Wait(context.Background()))
		require.NoError(t, l.Wait(context.Background()))
		clock.advance(time.Second)

		assert.Equal(t, 0, l.Pending())
		require.NoError(t, l.Wait(context.Background()))
		assert.Empty(t, clock.slept)
	})

	t.Run("cancelled context records nothing", func(t *testing.T) {
		clock := newFakeClock()
		l, err := New(1, time.Second, WithClock(clock.now, clock.sleep))
		require.NoError(t, err)
		require.NoError(t, l.Wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = l.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, l.Pending())
	})

	t.Run("real clock honours deadline", func(t *testing.T) {
		l, err := New(1, time.Minute)
		require.NoError(t, err)
		require.NoError(t, l.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err = l.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

// TestWindowProperty records call times for many bursty sequences and checks
// that no trailing window ever holds more than maxRequests calls.
func TestWindowProperty(t *testing.T) {
	gaps := [][]time.Duration{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{100 * time.Millisecond, 0, 300 * time.Millisecond, 0, 0, 2 * time.Second, 0, 0},
		{999 * time.Millisecond, time.Millisecond, 0, 1500 * time.Millisecond, 0, 0, 0},
	}

	for _, max := range []int{1, 2, 3} {
		for _, seq := range gaps {
			clock := newFakeClock()
			period := time.Second
			l, err := New(max, period, WithClock(clock.now, clock.sleep))
			require.NoError(t, err)

			var calls []time.Time
			for _, g := range seq {
				clock.advance(g)
				require.NoError(t, l.Wait(context.Background()))
				calls = append(calls, clock.now())
			}

			for i := range calls {
				inWindow := 0
				for j := range calls {
					// Half-open window (calls[i]-period, calls[i]].
					if !calls[j].After(calls[i]) && calls[j].After(calls[i].Add(-period)) {
						inWindow++
					}
				}
				assert.LessOrEqual(t, inWindow, max, "max=%d seq=%v call=%d", max, seq, i)
			}
		}
	}
}
