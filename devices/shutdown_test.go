package devices

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHook_RunsInReverseOrder(t *testing.T) {
	hook := NewShutdownHook()

	var order []string
	hook.Register("devices", func() error {
		order = append(order, "devices")
		return nil
	})
	hook.Register("server", func() error {
		order = append(order, "server")
		return nil
	})
	assert.Equal(t, 2, hook.Count())

	require.NoError(t, hook.Shutdown())
	assert.Equal(t, []string{"server", "devices"}, order)
	assert.Equal(t, 0, hook.Count())
}

func TestShutdownHook_ErrorHandling(t *testing.T) {
	hook := NewShutdownHook()
	cleanupErr := errors.New("cleanup failed")

	ran := 0
	hook.Register("success", func() error { ran++; return nil })
	hook.Register("failure", func() error { ran++; return cleanupErr })
	hook.Register("success2", func() error { ran++; return nil })

	err := hook.Shutdown()

	assert.ErrorIs(t, err, cleanupErr)
	assert.Contains(t, err.Error(), "failure")
	assert.Equal(t, 3, ran)
	assert.Equal(t, 0, hook.Count())
}

func TestShutdownHook_EmptyShutdown(t *testing.T) {
	assert.NoError(t, NewShutdownHook().Shutdown())
}

func TestShutdownHook_ConcurrentRegister(t *testing.T) {
	hook := NewShutdownHook()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hook.Register(fmt.Sprintf("hook-%d", n), func() error { return nil })
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, hook.Count())
}
