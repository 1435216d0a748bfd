package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker(t *testing.T) {
	t.Run("starts closed", func(t *testing.T) {
		b := New("geo-lookups")
		assert.False(t, b.IsOpen())
		assert.Equal(t, StateClosed, b.State())
		assert.Equal(t, "geo-lookups", b.Name())
	})

	t.Run("opens after the failure threshold", func(t *testing.T) {
		b := New("geo-lookups", WithFailureThreshold(3))

		for i := 0; i < 2; i++ {
			useFallback, change := b.RecordFailure()
			assert.False(t, useFallback)
			assert.False(t, change.Opened)
		}

		useFallback, change := b.RecordFailure()
		assert.True(t, useFallback)
		assert.True(t, change.Opened)
		assert.True(t, b.IsOpen())
	})

	t.Run("failures while open report no new transition", func(t *testing.T) {
		b := New("geo-lookups", WithFailureThreshold(1))
		b.RecordFailure()

		useFallback, change := b.RecordFailure()
		assert.True(t, useFallback)
		assert.False(t, change.Opened)
	})

	t.Run("closes after the success threshold", func(t *testing.T) {
		b := New("geo-lookups", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()

		usePrimary, change := b.RecordSuccess()
		assert.False(t, usePrimary)
		assert.False(t, change.Closed)
		assert.True(t, b.IsOpen())

		usePrimary, change = b.RecordSuccess()
		assert.True(t, usePrimary)
		assert.True(t, change.Closed)
		assert.False(t, b.IsOpen())
	})

	t.Run("a success interrupts a failure run", func(t *testing.T) {
		b := New("geo-lookups", WithFailureThreshold(3))

		b.RecordFailure()
		b.RecordFailure()
		b.RecordSuccess()

		b.RecordFailure()
		b.RecordFailure()
		assert.False(t, b.IsOpen())

		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})

	t.Run("a failure interrupts a success run", func(t *testing.T) {
		b := New("geo-lookups", WithFailureThreshold(1), WithSuccessThreshold(3))
		b.RecordFailure()

		b.RecordSuccess()
		b.RecordSuccess()
		b.RecordFailure()
		assert.True(t, b.IsOpen())

		b.RecordSuccess()
		b.RecordSuccess()
		assert.True(t, b.IsOpen())
		b.RecordSuccess()
		assert.False(t, b.IsOpen())
	})

	t.Run("reset forces closed", func(t *testing.T) {
		b := New("geo-lookups", WithFailureThreshold(1))
		b.RecordFailure()
		assert.True(t, b.IsOpen())

		b.Reset()
		assert.False(t, b.IsOpen())
		assert.Equal(t, StateClosed, b.State())
	})
}

// Concurrent outcome recording must report each transition exactly once.
func TestBreakerConcurrentRecording(t *testing.T) {
	b := New("geo-lookups", WithFailureThreshold(10))

	const goroutines = 100
	var wg sync.WaitGroup
	opened := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				opened <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(opened)

	count := 0
	for range opened {
		count++
	}
	assert.Equal(t, 1, count)
	assert.True(t, b.IsOpen())
}
