package nemu

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mobile-next/mumucli/utils"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPackageName         = "com.hypergryph.arknights"
	DefaultWidth               = 1920
	DefaultHeight              = 1080
	DefaultCaptureAttempts     = 3
	DefaultCaptureBackoff      = 200 * time.Millisecond
	DefaultDisplayTimeout      = 20 * time.Second
	DefaultDisplayPollInterval = time.Second
)

// Config is everything a driver instance needs. It is passed once at
// construction. Zero fields take their DefaultConfig values.
type Config struct {
	// EmulatorFolder is the MuMu "shell" directory holding MuMuManager.exe.
	EmulatorFolder string
	Index          int
	PackageName    string
	AppIndex       int

	Width  int
	Height int

	MaxRetries          int
	RetryDelay          time.Duration
	CaptureAttempts     int
	CaptureBackoff      time.Duration
	DisplayTimeout      time.Duration
	DisplayPollInterval time.Duration

	PoolSoftCap int
	PoolHardCap int
	SwipeSteps  int
}

func DefaultConfig() Config {
	return Config{
		PackageName:         DefaultPackageName,
		Width:               DefaultWidth,
		Height:              DefaultHeight,
		MaxRetries:          DefaultMaxRetries,
		RetryDelay:          DefaultRetryDelay,
		CaptureAttempts:     DefaultCaptureAttempts,
		CaptureBackoff:      DefaultCaptureBackoff,
		DisplayTimeout:      DefaultDisplayTimeout,
		DisplayPollInterval: DefaultDisplayPollInterval,
		PoolSoftCap:         DefaultPoolSoftCap,
		PoolHardCap:         DefaultPoolHardCap,
		SwipeSteps:          DefaultSwipeSteps,
	}
}

// Root is the MuMu install root, the parent of EmulatorFolder. The native
// library expects this path.
func (c Config) Root() string {
	return filepath.Dir(filepath.Clean(c.EmulatorFolder))
}

func (c Config) ManagerPath() string {
	return filepath.Join(c.EmulatorFolder, ManagerExecutable)
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PackageName == "" {
		c.PackageName = d.PackageName
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.CaptureAttempts == 0 {
		c.CaptureAttempts = d.CaptureAttempts
	}
	if c.CaptureBackoff == 0 {
		c.CaptureBackoff = d.CaptureBackoff
	}
	if c.DisplayTimeout == 0 {
		c.DisplayTimeout = d.DisplayTimeout
	}
	if c.DisplayPollInterval == 0 {
		c.DisplayPollInterval = d.DisplayPollInterval
	}
	if c.PoolSoftCap == 0 {
		c.PoolSoftCap = d.PoolSoftCap
	}
	if c.PoolHardCap == 0 {
		c.PoolHardCap = d.PoolHardCap
	}
	if c.SwipeSteps == 0 {
		c.SwipeSteps = d.SwipeSteps
	}
	return c
}

func (c Config) Validate() error {
	switch {
	case c.Index < 0:
		return argumentError("instance index must be >= 0, got %d", c.Index)
	case c.Width <= 0 || c.Height <= 0:
		return argumentError("invalid screen size %dx%d", c.Width, c.Height)
	case c.MaxRetries < 1:
		return argumentError("max retries must be >= 1, got %d", c.MaxRetries)
	case c.CaptureAttempts < 1:
		return argumentError("capture attempts must be >= 1, got %d", c.CaptureAttempts)
	case c.SwipeSteps < 1:
		return argumentError("swipe steps must be >= 1, got %d", c.SwipeSteps)
	case c.PoolHardCap < c.PoolSoftCap:
		return argumentError("pool hard cap %d below soft cap %d", c.PoolHardCap, c.PoolSoftCap)
	}
	return nil
}

// Owner is notified when the driver gives up on the emulator.
type Owner interface {
	Exit()
}

// IPC drives one MuMu instance through the native renderer library. It is
// not safe for concurrent use.
type IPC struct {
	cfg    Config
	native Renderer
	mgmt   Management
	owner  Owner
	focus  FocusRecoverable
	clock  Clock
	log    *logrus.Entry

	conn   *connManager
	coords *coordResolver
	pool   *bufferPool
	sup    *supervisor

	exitSignaled bool
}

type Option func(*IPC)

func WithClock(c Clock) Option {
	return func(d *IPC) { d.clock = c }
}

func WithLogger(l *logrus.Entry) Option {
	return func(d *IPC) { d.log = l }
}

func WithFocusRecoverable(f FocusRecoverable) Option {
	return func(d *IPC) { d.focus = f }
}

// New builds a driver. No native call is made until the first capture or
// input operation.
func New(cfg Config, native Renderer, mgmt Management, owner Owner, opts ...Option) (*IPC, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if native == nil {
		return nil, fmt.Errorf("%w: no renderer", ErrNativeUnavailable)
	}
	if mgmt == nil {
		return nil, argumentError("management client is required")
	}

	d := &IPC{
		cfg:    cfg,
		native: native,
		mgmt:   mgmt,
		owner:  owner,
		clock:  realClock{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = utils.WithComponent("nemu").WithField("index", cfg.Index)
	}

	d.conn = &connManager{
		native:         native,
		status:         mgmt,
		clock:          d.clock,
		log:            d.log,
		root:           cfg.Root(),
		index:          cfg.Index,
		pkg:            cfg.PackageName,
		appIndex:       cfg.AppIndex,
		displayTimeout: cfg.DisplayTimeout,
		displayPoll:    cfg.DisplayPollInterval,
		sess:           noSession,
	}
	d.coords = &coordResolver{source: mgmt, height: cfg.Height, log: d.log}
	d.pool = newBufferPool(cfg.Width*cfg.Height*4, cfg.PoolSoftCap, cfg.PoolHardCap, d.log)
	d.sup = &supervisor{
		attempts:   cfg.MaxRetries,
		delay:      cfg.RetryDelay,
		invalidate: d.conn.invalidate,
		restarter:  mgmt,
		focus:      d.focus,
		clock:      d.clock,
		log:        d.log,
	}

	return d, nil
}

// Open loads the native library from the configured install and talks to
// MuMuManager.exe for status.
func Open(cfg Config, owner Owner, opts ...Option) (*IPC, error) {
	native, err := LoadRenderer(cfg.Root())
	if err != nil {
		return nil, err
	}
	return New(cfg, native, NewManager(cfg.ManagerPath(), cfg.Index), owner, opts...)
}

func (d *IPC) Config() Config {
	return d.cfg
}

func (d *IPC) State() ConnState {
	return d.conn.state
}

// Session returns the current handle and display id.
func (d *IPC) Session() (handle, displayID int) {
	return d.conn.sess.handle, d.conn.sess.displayID
}

func (d *IPC) CoordMode() CoordMode {
	return d.coords.mode
}

// Connect opens a native session without retrying. It is a no-op while a
// handle is live.
func (d *IPC) Connect() error {
	return d.conn.connect()
}

// AcquireDisplay waits for the app's display id without retrying.
func (d *IPC) AcquireDisplay() error {
	return d.conn.acquireDisplay()
}

// KillServer disconnects and drops every cached resource, including the
// coordinate convention.
func (d *IPC) KillServer() {
	d.conn.disconnect()
	d.pool.clear()
	d.coords.reset()
}

// ResetWhenExit forgets the display id so the next operation waits for the
// app surface again. The handle is kept.
func (d *IPC) ResetWhenExit() {
	d.conn.resetDisplay()
}

// run executes fn under the supervisor on a ready session. On exhaustion the
// session is dropped and the owner told once.
func (d *IPC) run(op string, fn func(s session) error) error {
	err := d.sup.do(op, func() error {
		if err := d.conn.ensureReady(); err != nil {
			return err
		}
		return fn(d.conn.sess)
	})
	if err == nil {
		d.exitSignaled = false
		return nil
	}
	if errors.Is(err, ErrArgument) || errors.Is(err, ErrStopped) {
		return err
	}

	d.conn.invalidate()
	d.signalExit(op, err)
	return err
}

func (d *IPC) signalExit(op string, err error) {
	if d.exitSignaled {
		return
	}
	d.exitSignaled = true

	d.log.WithField("op", op).WithError(err).Error("IPC unrecoverable, releasing device")
	if d.owner != nil {
		d.owner.Exit()
	}
}

func nativeStatus(op string, status int) error {
	if status != 0 {
		return &NativeCallError{Op: op, Status: status}
	}
	return nil
}
