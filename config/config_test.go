package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mobile-next/mumucli/devices/nemu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.ini"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, nemu.DefaultMaxRetries, cfg.Emulator.MaxRetries)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `
[emulator]
folder = D:\MuMu\shell
index = 2
package = com.example.game

[screen]
width = 1280
height = 720

[recovery]
max_retries = 5
retry_delay = 1s
display_timeout = 45s

[pool]
hard_cap = 4

[server]
listen = 0.0.0.0:13000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	emu := cfg.Emulator
	assert.Equal(t, `D:\MuMu\shell`, emu.EmulatorFolder)
	assert.Equal(t, 2, emu.Index)
	assert.Equal(t, "com.example.game", emu.PackageName)
	assert.Equal(t, 1280, emu.Width)
	assert.Equal(t, 720, emu.Height)
	assert.Equal(t, 5, emu.MaxRetries)
	assert.Equal(t, time.Second, emu.RetryDelay)
	assert.Equal(t, 45*time.Second, emu.DisplayTimeout)
	assert.Equal(t, nemu.DefaultCaptureBackoff, emu.CaptureBackoff)
	assert.Equal(t, 4, emu.PoolHardCap)
	assert.Equal(t, nemu.DefaultPoolSoftCap, emu.PoolSoftCap)
	assert.Equal(t, "0.0.0.0:13000", cfg.Listen)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("[pool]\nsoft_cap = 6\nhard_cap = 2\n"), 0o600))

	_, err := Load(path)

	assert.ErrorIs(t, err, nemu.ErrArgument)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	want := Default()
	want.Emulator.Index = 3
	want.Emulator.CaptureBackoff = 350 * time.Millisecond
	want.Listen = "localhost:14000"

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
