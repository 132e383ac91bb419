package cell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentAndSet(t *testing.T) {
	t.Parallel()

	c := New("a")
	require.Equal(t, "a", c.Current())
	require.Equal(t, uint64(0), c.Version())

	c.Set("b")
	c.Set("b")
	require.Equal(t, "b", c.Current())
	require.Equal(t, uint64(2), c.Version(), "equal values still publish")
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	c := New(1)
	got := c.Update(func(v int) int { return v + 41 })
	require.Equal(t, 42, got)
	require.Equal(t, 42, c.Current())
	require.Equal(t, uint64(1), c.Version())
}

func TestNextWaitsForPublish(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := New(0)
	sub := c.Subscribe()

	done := make(chan int, 1)
	go func() {
		v, err := sub.Next(ctx)
		assert.NoError(t, err)
		done <- v
	}()

	select {
	case <-done:
		t.Fatalf("Next returned before any publish")
	case <-time.After(20 * time.Millisecond):
	}

	c.Set(5)
	require.Equal(t, 5, <-done)
}

func TestNextHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(0).Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSlowSubscriberSeesLatestOnce(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c := New(0)
	sub := c.Subscribe()
	c.Set(1)
	c.Set(2)
	c.Set(3)

	v, err := sub.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, uint64(3), sub.Seen())

	short, cancelShort := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancelShort()
	_, err = sub.Next(short)
	require.ErrorIs(t, err, context.DeadlineExceeded, "no buffered intermediate values")
}

func TestIndependentSubscribersSeeEveryPublishInOrder(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const publishes = 50
	c := New(0)

	// Each publish waits for every subscriber to acknowledge, so no subscriber falls behind.
	const subscribers = 3
	acks := make(chan struct{}, subscribers)
	results := make([][]int, subscribers)
	var wg sync.WaitGroup
	subs := make([]*Subscription[int], subscribers)
	for i := range subs {
		subs[i] = c.Subscribe()
	}
	for i := 0; i < subscribers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for len(results[i]) < publishes {
				v, err := subs[i].Next(ctx)
				if err != nil {
					return
				}
				results[i] = append(results[i], v)
				acks <- struct{}{}
			}
		}(i)
	}

	for n := 1; n <= publishes; n++ {
		c.Set(n)
		for i := 0; i < subscribers; i++ {
			<-acks
		}
	}
	wg.Wait()

	for i := range results {
		require.Len(t, results[i], publishes)
		for j, v := range results[i] {
			require.Equal(t, j+1, v)
		}
	}
}

func TestConcurrentSetAndRead(t *testing.T) {
	t.Parallel()

	c := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Update(func(v int) int { return v + 1 })
				_ = c.Current()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 800, c.Current())
	require.Equal(t, uint64(800), c.Version())
}
