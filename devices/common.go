package devices

import (
	"time"

	"github.com/mobile-next/mumucli/devices/nemu"
	"github.com/mobile-next/mumucli/utils"
)

const (
	// Default JPEG screenshot quality (1-100)
	DefaultJpegQuality = 90
)

type ControllableDevice interface {
	ID() string
	Name() string
	Platform() string   // always "android"
	DeviceType() string // always "emulator"
	State() string      // "online", "booting" or "offline"
	Version() string

	TakeScreenshot(format string, quality int) ([]byte, error)
	Tap(x, y int) error
	Swipe(x1, y1, x2, y2 int, duration time.Duration) error
	Gesture(points []nemu.Point, durations []time.Duration) error
	PressButton(key string) error
	SendKey(code int) error
	LaunchApp(packageName string) error
	Boot() error
	Shutdown() error
	Reboot() error
	Reset() error
	Info() (*FullDeviceInfo, error)
	Cleanup() error
}

// GetAllControllableDevices lists every MuMu instance known to
// MuMuManager.exe. Stopped instances are included only when showAll is set.
func GetAllControllableDevices(cfg nemu.Config, showAll bool) ([]ControllableDevice, error) {
	instances, err := ListMuMuDevices(cfg)
	if err != nil {
		return nil, err
	}

	var allDevices []ControllableDevice
	for _, d := range instances {
		if !showAll && d.State() != "online" {
			utils.Verbose("Skipping instance %s in state %s", d.ID(), d.State())
			continue
		}
		allDevices = append(allDevices, d)
	}

	return allDevices, nil
}

// DeviceInfo represents the JSON-friendly device information
type DeviceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Type     string `json:"type"`
	Version  string `json:"version"`
	State    string `json:"state"`
}

type ScreenSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Scale  int `json:"scale"`
}

type FullDeviceInfo struct {
	DeviceInfo
	Index       int         `json:"index"`
	PackageName string      `json:"packageName"`
	ScreenSize  *ScreenSize `json:"screenSize"`
	Connection  string      `json:"connection"`
	Coordinates string      `json:"coordinates"`
}
