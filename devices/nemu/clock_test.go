package nemu

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopClock(t *testing.T) {
	c := NewStopClock()
	assert.NoError(t, c.Sleep(time.Millisecond))
	assert.NoError(t, c.Sleep(0))

	done := make(chan error, 1)
	go func() { done <- c.Sleep(time.Hour) }()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(5 * time.Second):
		t.Fatal("sleep was not interrupted")
	}

	assert.ErrorIs(t, c.Sleep(0), ErrStopped)
}
