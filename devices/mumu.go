package devices

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mobile-next/mumucli/devices/nemu"
	"github.com/mobile-next/mumucli/utils"
	"github.com/sirupsen/logrus"
)

// ErrDeviceExited is returned after the driver gave up on the emulator. Reset,
// Boot or Reboot make the device usable again.
var ErrDeviceExited = errors.New("device exited after unrecoverable IPC failure")

// DriverFactory opens the IPC driver for a device. The default loads the
// native renderer library.
type DriverFactory func(cfg nemu.Config, owner nemu.Owner, opts ...nemu.Option) (*nemu.IPC, error)

// MuMuDevice is one MuMu 12 instance. Driver calls are serialized by mu so
// concurrent server requests cannot interleave on the same IPC session.
type MuMuDevice struct {
	mu       sync.Mutex
	cfg      nemu.Config
	info     nemu.InstanceInfo
	manager  *nemu.Manager
	factory  DriverFactory
	clock    *nemu.StopClock
	ipc      *nemu.IPC
	exited   atomic.Bool
	exitHook func()
	log      *logrus.Entry
}

type MuMuOption func(*MuMuDevice)

func WithDriverFactory(f DriverFactory) MuMuOption {
	return func(d *MuMuDevice) { d.factory = f }
}

func WithManager(m *nemu.Manager) MuMuOption {
	return func(d *MuMuDevice) { d.manager = m }
}

// WithExitHook runs fn each time the driver signals an unrecoverable failure.
func WithExitHook(fn func()) MuMuOption {
	return func(d *MuMuDevice) { d.exitHook = fn }
}

func NewMuMuDevice(cfg nemu.Config, info nemu.InstanceInfo, opts ...MuMuOption) *MuMuDevice {
	cfg.Index = info.Index
	d := &MuMuDevice{
		cfg:     cfg,
		info:    info,
		factory: nemu.Open,
		clock:   nemu.NewStopClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.manager == nil {
		d.manager = nemu.NewManager(cfg.ManagerPath(), info.Index)
	}
	d.log = utils.WithComponent("device").WithField("device", d.ID())
	return d
}

// ListMuMuDevices asks MuMuManager.exe for every instance and wraps each one.
func ListMuMuDevices(cfg nemu.Config) ([]*MuMuDevice, error) {
	manager := nemu.NewManager(cfg.ManagerPath(), cfg.Index)
	instances, err := manager.ListInstances()
	if err != nil {
		return nil, fmt.Errorf("failed to list MuMu instances: %w", err)
	}

	devices := make([]*MuMuDevice, 0, len(instances))
	for _, inst := range instances {
		devices = append(devices, NewMuMuDevice(cfg, inst))
	}
	return devices, nil
}

func (d *MuMuDevice) ID() string {
	return fmt.Sprintf("mumu-%d", d.info.Index)
}

func (d *MuMuDevice) Name() string {
	if d.info.Name != "" {
		return d.info.Name
	}
	return fmt.Sprintf("MuMu %d", d.info.Index)
}

func (d *MuMuDevice) Platform() string {
	return "android"
}

func (d *MuMuDevice) DeviceType() string {
	return "emulator"
}

func (d *MuMuDevice) State() string {
	switch d.info.State {
	case nemu.StateRunning:
		return "online"
	case nemu.StateLaunching:
		return "booting"
	default:
		return "offline"
	}
}

func (d *MuMuDevice) Version() string {
	return d.info.Version
}

// Exit is called by the driver when retries are exhausted. It must not take
// mu: the driver calls it from inside a locked operation.
func (d *MuMuDevice) Exit() {
	if d.exited.CompareAndSwap(false, true) {
		d.log.Warn("emulator unreachable, device marked as exited")
	}
	if d.exitHook != nil {
		d.exitHook()
	}
}

func (d *MuMuDevice) Exited() bool {
	return d.exited.Load()
}

// CheckCurrentFocus brings the configured app back to the foreground.
func (d *MuMuDevice) CheckCurrentFocus() error {
	d.log.WithField("package", d.cfg.PackageName).Info("relaunching app to recover focus")
	return d.manager.LaunchApp(d.cfg.PackageName)
}

// driver returns the IPC driver, opening it on first use. Caller holds mu.
func (d *MuMuDevice) driver() (*nemu.IPC, error) {
	if d.exited.Load() {
		return nil, ErrDeviceExited
	}
	if d.ipc != nil {
		return d.ipc, nil
	}

	ipc, err := d.factory(d.cfg, d,
		nemu.WithClock(d.clock),
		nemu.WithFocusRecoverable(d),
		nemu.WithLogger(utils.WithComponent("nemu").WithField("device", d.ID())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC for %s: %w", d.ID(), err)
	}

	d.ipc = ipc
	return ipc, nil
}

func (d *MuMuDevice) withDriver(fn func(ipc *nemu.IPC) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ipc, err := d.driver()
	if err != nil {
		return err
	}
	return fn(ipc)
}

func (d *MuMuDevice) TakeScreenshot(format string, quality int) ([]byte, error) {
	var frame *nemu.Frame
	err := d.withDriver(func(ipc *nemu.IPC) error {
		var err error
		frame, err = ipc.CaptureDisplay()
		return err
	})
	if err != nil {
		return nil, err
	}
	if d.exited.Load() {
		return nil, ErrDeviceExited
	}

	return utils.EncodeImage(frame.RGBA(), format, quality)
}

// Frame returns the raw capture, including the blank frame produced when the
// driver gives up.
func (d *MuMuDevice) Frame() (*nemu.Frame, error) {
	var frame *nemu.Frame
	err := d.withDriver(func(ipc *nemu.IPC) error {
		var err error
		frame, err = ipc.CaptureDisplay()
		return err
	})
	return frame, err
}

func (d *MuMuDevice) Tap(x, y int) error {
	return d.withDriver(func(ipc *nemu.IPC) error {
		return ipc.Tap(x, y, nemu.DefaultTapHold)
	})
}

func (d *MuMuDevice) Swipe(x1, y1, x2, y2 int, duration time.Duration) error {
	if duration <= 0 {
		duration = nemu.DefaultSwipeDuration
	}
	return d.withDriver(func(ipc *nemu.IPC) error {
		return ipc.Swipe(x1, y1, x2, y2, duration, d.cfg.SwipeSteps)
	})
}

func (d *MuMuDevice) Gesture(points []nemu.Point, durations []time.Duration) error {
	return d.withDriver(func(ipc *nemu.IPC) error {
		return ipc.SwipeExt(points, durations, nemu.SwipeExtOptions{})
	})
}

// buttonKeyCodes maps button names to the evdev codes the renderer accepts.
var buttonKeyCodes = map[string]int{
	"back":        nemu.KeyCodeBack,
	"home":        102,
	"menu":        139,
	"power":       116,
	"volume_up":   115,
	"volume_down": 114,
}

func (d *MuMuDevice) PressButton(key string) error {
	code, exists := buttonKeyCodes[strings.ToLower(key)]
	if !exists {
		return fmt.Errorf("MuMuDevice: unsupported button key: %s", key)
	}
	return d.SendKey(code)
}

func (d *MuMuDevice) SendKey(code int) error {
	return d.withDriver(func(ipc *nemu.IPC) error {
		return ipc.SendKeyEvent(code, nemu.DefaultKeyHold)
	})
}

func (d *MuMuDevice) LaunchApp(packageName string) error {
	if packageName == "" {
		packageName = d.cfg.PackageName
	}
	return d.manager.LaunchApp(packageName)
}

// Boot launches the instance and waits until Android is up. Any driver from
// before the boot is dropped so the next failure is a new episode.
func (d *MuMuDevice) Boot() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.teardown()
	if err := d.manager.Launch(); err != nil {
		return err
	}
	if err := d.manager.WaitRunning(nemu.DefaultRestartTimeout); err != nil {
		return err
	}

	d.info.State = nemu.StateRunning
	d.exited.Store(false)
	return nil
}

func (d *MuMuDevice) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.teardown()
	if err := d.manager.Shutdown(); err != nil {
		return err
	}
	d.info.State = nemu.StateStopped
	return nil
}

func (d *MuMuDevice) Reboot() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.teardown()
	if err := d.manager.Restart(); err != nil {
		return err
	}
	d.info.State = nemu.StateRunning
	d.exited.Store(false)
	return nil
}

// Reset drops the IPC session and clears the exited flag without touching
// the emulator.
func (d *MuMuDevice) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.teardown()
	d.exited.Store(false)
	return nil
}

func (d *MuMuDevice) Info() (*FullDeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	info := &FullDeviceInfo{
		DeviceInfo: DeviceInfo{
			ID:       d.ID(),
			Name:     d.Name(),
			Platform: d.Platform(),
			Type:     d.DeviceType(),
			Version:  d.Version(),
			State:    d.State(),
		},
		Index:       d.info.Index,
		PackageName: d.cfg.PackageName,
		ScreenSize: &ScreenSize{
			Width:  d.cfg.Width,
			Height: d.cfg.Height,
			Scale:  1,
		},
		Connection:  nemu.ConnDisconnected.String(),
		Coordinates: nemu.CoordUnresolved.String(),
	}

	if d.ipc != nil {
		info.Connection = d.ipc.State().String()
		info.Coordinates = d.ipc.CoordMode().String()
	}
	if d.exited.Load() {
		info.Connection = "exited"
	}

	return info, nil
}

// Stop interrupts any sleep inside the driver; the interrupted call returns
// nemu.ErrStopped. Stop is final for this device value.
func (d *MuMuDevice) Stop() {
	d.clock.Stop()
}

// Cleanup stops pending driver sleeps and disconnects the native session.
func (d *MuMuDevice) Cleanup() error {
	d.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.teardown()
	return nil
}

// teardown disconnects and forgets the driver. Caller holds mu.
func (d *MuMuDevice) teardown() {
	if d.ipc == nil {
		return
	}
	d.ipc.KillServer()
	d.ipc = nil
}
