package nemu

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_StoppedEmulatorMakesNoNativeCalls(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.mgmt.state = StateStopped

	err := h.ipc.Connect()

	assert.ErrorIs(t, err, ErrEmulatorNotRunning)
	assert.Empty(t, h.native.calls)
	assert.Equal(t, ConnDisconnected, h.ipc.State())
}

func TestConnect_LaunchingIsNotRunning(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.mgmt.state = StateLaunching

	assert.ErrorIs(t, h.ipc.Connect(), ErrEmulatorNotRunning)
	assert.Empty(t, h.native.calls)
}

func TestConnect_ZeroHandleIsRefused(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.handle = 0

	err := h.ipc.Connect()

	assert.ErrorIs(t, err, ErrConnectionRefused)
	handle, display := h.ipc.Session()
	assert.Equal(t, 0, handle)
	assert.Equal(t, -1, display)
}

func TestConnect_LiveHandleIsKept(t *testing.T) {
	h := newHarness(directVersion, nil)
	require.NoError(t, h.ipc.Connect())

	require.NoError(t, h.ipc.Connect())

	assert.Len(t, h.native.named("connect"), 1)
	assert.Empty(t, h.native.named("disconnect"))
	handle, _ := h.ipc.Session()
	assert.Equal(t, 7, handle)
}

func TestAcquireDisplay_PollsUntilReady(t *testing.T) {
	h := newHarness(directVersion, nil)
	h.native.displayIDs = []int{-1, -1, 2}

	require.NoError(t, h.ipc.AcquireDisplay())

	handle, display := h.ipc.Session()
	assert.Equal(t, 7, handle)
	assert.Equal(t, 2, display)
	assert.Equal(t, ConnReady, h.ipc.State())
	assert.Len(t, h.native.named("get_display_id"), 3)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, h.clock.sleeps)
}

func TestAcquireDisplay_TimeoutInvalidates(t *testing.T) {
	h := newHarness(directVersion, func(c *Config) {
		c.DisplayTimeout = 3 * time.Second
		c.DisplayPollInterval = time.Second
	})
	h.native.displayIDs = []int{-1}

	err := h.ipc.AcquireDisplay()

	assert.ErrorIs(t, err, ErrDisplayTimeout)
	assert.Len(t, h.native.named("get_display_id"), 3)
	handle, display := h.ipc.Session()
	assert.Equal(t, 0, handle)
	assert.Equal(t, -1, display)
	assert.Equal(t, ConnDisconnected, h.ipc.State())
}

func TestResetWhenExit_KeepsHandle(t *testing.T) {
	h := newHarness(directVersion, nil)
	require.NoError(t, h.ipc.AcquireDisplay())

	h.ipc.ResetWhenExit()

	handle, display := h.ipc.Session()
	assert.Equal(t, 7, handle)
	assert.Equal(t, -1, display)
	assert.Equal(t, ConnNoDisplay, h.ipc.State())

	// the next operation only re-polls the display id
	require.NoError(t, h.ipc.Tap(1, 1, 0))
	assert.Len(t, h.native.named("connect"), 1)
	assert.Len(t, h.native.named("get_display_id"), 2)
}

func TestKillServer_TearsEverythingDown(t *testing.T) {
	h := newHarness(legacyVersion, nil)
	require.NoError(t, h.ipc.Tap(1, 1, 0))
	_, err := h.ipc.CaptureDisplay()
	require.NoError(t, err)
	assert.Equal(t, CoordLegacy, h.ipc.CoordMode())
	assert.Equal(t, 1, h.ipc.pool.len())

	h.ipc.KillServer()

	assert.Len(t, h.native.named("disconnect"), 1)
	assert.Equal(t, CoordUnresolved, h.ipc.CoordMode())
	assert.Equal(t, 0, h.ipc.pool.len())
	assert.Equal(t, ConnDisconnected, h.ipc.State())

	// killing twice does not disconnect a dead handle
	h.ipc.KillServer()
	assert.Len(t, h.native.named("disconnect"), 1)
}

func TestNew_ValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Index = -1
	_, err := New(cfg, newFakeRenderer(), newFakeManagement(directVersion), nil)
	assert.ErrorIs(t, err, ErrArgument)

	_, err = New(DefaultConfig(), nil, newFakeManagement(directVersion), nil)
	assert.ErrorIs(t, err, ErrNativeUnavailable)
}

func TestNew_ZeroDelaysTakeDefaults(t *testing.T) {
	ipc, err := New(Config{EmulatorFolder: "shell"}, newFakeRenderer(), newFakeManagement(directVersion), nil)
	require.NoError(t, err)

	cfg := ipc.Config()
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelay)
	assert.Equal(t, DefaultCaptureBackoff, cfg.CaptureBackoff)
	assert.Equal(t, DefaultDisplayPollInterval, cfg.DisplayPollInterval)
}

func TestConfig_Paths(t *testing.T) {
	root := filepath.Join("opt", "MuMu Player 12")
	cfg := Config{EmulatorFolder: filepath.Join(root, "shell")}
	assert.Equal(t, root, cfg.Root())
	assert.Equal(t, filepath.Join(root, "shell", "MuMuManager.exe"), cfg.ManagerPath())
}
