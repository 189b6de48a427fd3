package nemu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureDisplay_Success(t *testing.T) {
	h := newHarness(directVersion, func(c *Config) {
		c.Width = 4
		c.Height = 2
	})
	h.native.fill = 0x7f

	frame, err := h.ipc.CaptureDisplay()

	require.NoError(t, err)
	height, width, channels := frame.Shape()
	assert.Equal(t, 2, height)
	assert.Equal(t, 4, width)
	assert.Equal(t, 3, channels)
	assert.False(t, frame.IsBlank())

	captures := h.native.named("capture_display")
	require.Len(t, captures, 1)
	assert.Equal(t, []int{7, 0, 4 * 2 * 4}, captures[0].args)
	assert.Equal(t, 0, h.ipc.pool.checkedOut())
	assert.Equal(t, 0, h.owner.exits)
}

func TestCaptureDisplay_ReusesBuffer(t *testing.T) {
	h := newHarness(directVersion, func(c *Config) {
		c.Width = 2
		c.Height = 2
	})

	for i := 0; i < 5; i++ {
		_, err := h.ipc.CaptureDisplay()
		require.NoError(t, err)
	}

	assert.Equal(t, 1, h.ipc.pool.len())
	assert.Len(t, h.native.named("connect"), 1)
}

func TestCaptureDisplay_ExhaustionReturnsBlankFrameAndExitsOnce(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.fill = 0xff
	h.native.captureStatus = []int{-1}

	frame, err := h.ipc.CaptureDisplay()

	require.NoError(t, err)
	height, width, channels := frame.Shape()
	assert.Equal(t, 1080, height)
	assert.Equal(t, 1920, width)
	assert.Equal(t, 3, channels)
	assert.True(t, frame.IsBlank())
	assert.Equal(t, 1, h.owner.exits)
	assert.Len(t, h.native.named("capture_display"), 3)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond}, h.clock.sleeps)

	// a second failure in the same episode does not signal again
	_, err = h.ipc.CaptureDisplay()
	require.NoError(t, err)
	assert.Equal(t, 1, h.owner.exits)

	// success closes the episode
	h.native.captureStatus = []int{0}
	frame, err = h.ipc.CaptureDisplay()
	require.NoError(t, err)
	assert.False(t, frame.IsBlank())

	h.native.captureStatus = []int{-1}
	_, err = h.ipc.CaptureDisplay()
	require.NoError(t, err)
	assert.Equal(t, 2, h.owner.exits)
}

func TestCaptureDisplay_RecoversFromTransientFailure(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.fill = 1
	h.native.captureStatus = []int{2, 0}

	frame, err := h.ipc.CaptureDisplay()

	require.NoError(t, err)
	assert.False(t, frame.IsBlank())
	assert.Equal(t, 0, h.owner.exits)
	assert.Len(t, h.native.named("connect"), 2)
	assert.Len(t, h.native.named("capture_display"), 2)
}

func TestCaptureDisplay_StoppedEmulator(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.mgmt.state = StateStopped

	frame, err := h.ipc.CaptureDisplay()

	require.NoError(t, err)
	assert.True(t, frame.IsBlank())
	assert.Empty(t, h.native.calls)
	assert.Equal(t, 9, h.mgmt.restarts)
	assert.Equal(t, 1, h.owner.exits)
}

func TestCaptureDisplay_StopIsPropagated(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.captureStatus = []int{-1}
	h.clock.stopped = true

	frame, err := h.ipc.CaptureDisplay()

	assert.ErrorIs(t, err, ErrStopped)
	assert.Nil(t, frame)
	assert.Equal(t, 0, h.owner.exits)
	assert.Len(t, h.native.named("capture_display"), 1)
}
