package nemu

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_TransientNativeFailure(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.touchStatus = []int{3, 0}

	require.NoError(t, h.ipc.Tap(1, 2, 0))

	assert.Len(t, h.native.named("touch_down"), 2)
	assert.Len(t, h.native.named("connect"), 2)
	assert.Equal(t, 1, h.owner.focusChecks)
	assert.Equal(t, 0, h.mgmt.restarts)
	assert.Equal(t, 0, h.owner.exits)
	assert.Contains(t, h.clock.sleeps, DefaultRetryDelay)
}

func TestRetry_ExhaustionSignalsOncePerEpisode(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.touchStatus = []int{3}

	err := h.ipc.Tap(1, 2, 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNativeCall)
	var nativeErr *NativeCallError
	require.True(t, errors.As(err, &nativeErr))
	assert.Equal(t, 3, nativeErr.Status)
	assert.Equal(t, "touch_down", nativeErr.Op)

	assert.Len(t, h.native.named("touch_down"), DefaultMaxRetries)
	assert.Equal(t, DefaultMaxRetries, h.owner.focusChecks)
	assert.Equal(t, []time.Duration{DefaultRetryDelay, DefaultRetryDelay}, h.clock.sleeps)
	assert.Equal(t, 1, h.owner.exits)
	assert.Equal(t, ConnDisconnected, h.ipc.State())

	require.Error(t, h.ipc.Tap(1, 2, 0))
	assert.Equal(t, 1, h.owner.exits)

	h.native.touchStatus = []int{0}
	require.NoError(t, h.ipc.Tap(1, 2, 0))

	h.native.touchStatus = []int{3}
	require.Error(t, h.ipc.Tap(1, 2, 0))
	assert.Equal(t, 2, h.owner.exits)
}

func TestRetry_RestartsStoppedEmulator(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.mgmt.state = StateStopped
	h.mgmt.onRestart = func(m *fakeManagement) { m.state = StateRunning }

	require.NoError(t, h.ipc.Tap(1, 2, 0))

	assert.Equal(t, 1, h.mgmt.restarts)
	assert.Equal(t, 0, h.owner.focusChecks)
	assert.Equal(t, 0, h.owner.exits)
	assert.Len(t, h.native.named("touch_down"), 1)
}

func TestRetry_ConnectionRefusedRestarts(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.handle = 0

	err := h.ipc.TouchDown(1, 1)

	assert.ErrorIs(t, err, ErrConnectionRefused)
	assert.Equal(t, DefaultMaxRetries, h.mgmt.restarts)
	assert.Equal(t, 1, h.owner.exits)
}

func TestRetry_DisplayTimeoutChecksFocus(t *testing.T) {
	h := newHarness(directVersion, func(c *Config) {
		c.DisplayTimeout = 2 * time.Second
	})
	h.native.displayIDs = []int{-1}

	err := h.ipc.KeyDown(4)

	assert.ErrorIs(t, err, ErrDisplayTimeout)
	assert.Equal(t, DefaultMaxRetries, h.owner.focusChecks)
	assert.Equal(t, 0, h.mgmt.restarts)
	assert.Empty(t, h.native.named("key_down"))
}

func TestRetry_ManagementQueryFailure(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.mgmt.versionErr = &ManagementQueryError{Args: []string{"setting", "-v", "0", "-a"}, ExitCode: 2, Err: errors.New("exit status 2")}

	err := h.ipc.TouchDown(1, 1)

	assert.ErrorIs(t, err, ErrManagementQuery)
	assert.Equal(t, DefaultMaxRetries, h.mgmt.versionCalls)
	assert.Equal(t, 0, h.mgmt.restarts)
	assert.Equal(t, 0, h.owner.focusChecks)
	assert.Equal(t, 1, h.owner.exits)
	assert.Empty(t, h.native.named("touch_down"))
	assert.Equal(t, CoordUnresolved, h.ipc.CoordMode())
}

func TestRetry_StopDuringRestartIsNotRetried(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.mgmt.state = StateStopped
	h.mgmt.restartErr = ErrStopped

	err := h.ipc.TouchUp()

	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, 1, h.mgmt.restarts)
	assert.Equal(t, 0, h.owner.exits)
}

func TestSupervisor_Classification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCalls    int
		wantInval    int
		wantRestarts int
		wantFocus    int
	}{
		{name: "argument", err: argumentError("bad"), wantCalls: 1},
		{name: "stopped", err: ErrStopped, wantCalls: 1},
		{name: "not running", err: fmt.Errorf("%w: x", ErrEmulatorNotRunning), wantCalls: 3, wantInval: 3, wantRestarts: 3},
		{name: "refused", err: ErrConnectionRefused, wantCalls: 3, wantInval: 3, wantRestarts: 3},
		{name: "display timeout", err: ErrDisplayTimeout, wantCalls: 3, wantInval: 3, wantFocus: 3},
		{name: "native call", err: &NativeCallError{Op: "key_up", Status: 1}, wantCalls: 3, wantInval: 3, wantFocus: 3},
		{name: "other", err: errors.New("boom"), wantCalls: 3, wantInval: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgmt := newFakeManagement(directVersion)
			owner := &fakeOwner{}
			invalidations := 0
			s := &supervisor{
				attempts:   3,
				delay:      time.Millisecond,
				invalidate: func() { invalidations++ },
				restarter:  mgmt,
				focus:      owner,
				clock:      newFakeClock(),
				log:        quietLogger(),
			}

			calls := 0
			err := s.do("op", func() error {
				calls++
				return tt.err
			})

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantInval, invalidations)
			assert.Equal(t, tt.wantRestarts, mgmt.restarts)
			assert.Equal(t, tt.wantFocus, owner.focusChecks)
		})
	}
}

func TestSupervisor_SucceedsAfterRetry(t *testing.T) {
	clock := newFakeClock()
	s := &supervisor{
		attempts:   3,
		delay:      500 * time.Millisecond,
		invalidate: func() {},
		clock:      clock,
		log:        quietLogger(),
	}

	calls := 0
	err := s.do("op", func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, clock.sleeps)
}
