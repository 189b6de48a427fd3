package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/mobile-next/mumucli/devices/nemu"
	"gopkg.in/ini.v1"
)

const (
	DefaultFileName       = "mumucli.ini"
	DefaultEmulatorFolder = `C:\Program Files\Netease\MuMuPlayer-12.0\shell`
	DefaultListenAddr     = "localhost:12000"
)

// Config is the contents of mumucli.ini.
type Config struct {
	Emulator nemu.Config
	Listen   string
}

func Default() *Config {
	emu := nemu.DefaultConfig()
	emu.EmulatorFolder = DefaultEmulatorFolder
	return &Config{
		Emulator: emu,
		Listen:   DefaultListenAddr,
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	emu := &config.Emulator

	section := cfg.Section("emulator")
	emu.EmulatorFolder = section.Key("folder").MustString(emu.EmulatorFolder)
	emu.Index = section.Key("index").MustInt(emu.Index)
	emu.PackageName = section.Key("package").MustString(emu.PackageName)
	emu.AppIndex = section.Key("app_index").MustInt(emu.AppIndex)

	section = cfg.Section("screen")
	emu.Width = section.Key("width").MustInt(emu.Width)
	emu.Height = section.Key("height").MustInt(emu.Height)

	section = cfg.Section("recovery")
	emu.MaxRetries = section.Key("max_retries").MustInt(emu.MaxRetries)
	emu.RetryDelay = section.Key("retry_delay").MustDuration(emu.RetryDelay)
	emu.CaptureAttempts = section.Key("capture_attempts").MustInt(emu.CaptureAttempts)
	emu.CaptureBackoff = section.Key("capture_backoff").MustDuration(emu.CaptureBackoff)
	emu.DisplayTimeout = section.Key("display_timeout").MustDuration(emu.DisplayTimeout)
	emu.DisplayPollInterval = section.Key("display_poll").MustDuration(emu.DisplayPollInterval)

	section = cfg.Section("pool")
	emu.PoolSoftCap = section.Key("soft_cap").MustInt(emu.PoolSoftCap)
	emu.PoolHardCap = section.Key("hard_cap").MustInt(emu.PoolHardCap)

	section = cfg.Section("input")
	emu.SwipeSteps = section.Key("swipe_steps").MustInt(emu.SwipeSteps)

	config.Listen = cfg.Section("server").Key("listen").MustString(config.Listen)

	if err := emu.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Save writes config to path, creating or replacing it.
func Save(path string, config *Config) error {
	cfg := ini.Empty()
	emu := config.Emulator

	section := cfg.Section("emulator")
	section.Key("folder").SetValue(emu.EmulatorFolder)
	section.Key("index").SetValue(strconv.Itoa(emu.Index))
	section.Key("package").SetValue(emu.PackageName)
	section.Key("app_index").SetValue(strconv.Itoa(emu.AppIndex))

	section = cfg.Section("screen")
	section.Key("width").SetValue(strconv.Itoa(emu.Width))
	section.Key("height").SetValue(strconv.Itoa(emu.Height))

	section = cfg.Section("recovery")
	section.Key("max_retries").SetValue(strconv.Itoa(emu.MaxRetries))
	section.Key("retry_delay").SetValue(emu.RetryDelay.String())
	section.Key("capture_attempts").SetValue(strconv.Itoa(emu.CaptureAttempts))
	section.Key("capture_backoff").SetValue(emu.CaptureBackoff.String())
	section.Key("display_timeout").SetValue(emu.DisplayTimeout.String())
	section.Key("display_poll").SetValue(emu.DisplayPollInterval.String())

	section = cfg.Section("pool")
	section.Key("soft_cap").SetValue(strconv.Itoa(emu.PoolSoftCap))
	section.Key("hard_cap").SetValue(strconv.Itoa(emu.PoolHardCap))

	section = cfg.Section("input")
	section.Key("swipe_steps").SetValue(strconv.Itoa(emu.SwipeSteps))

	cfg.Section("server").Key("listen").SetValue(config.Listen)

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
