package nemu

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type nativeCall struct {
	name string
	args []int
}

func (c nativeCall) String() string {
	return fmt.Sprintf("%s%v", c.name, c.args)
}

// fakeRenderer records every call. Status sequences repeat their last value.
type fakeRenderer struct {
	handle        int
	displayIDs    []int
	captureStatus []int
	touchStatus   []int
	fill          byte

	calls []nativeCall
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{handle: 7, displayIDs: []int{0}}
}

func next(seq *[]int, fallback int) int {
	if len(*seq) == 0 {
		return fallback
	}
	v := (*seq)[0]
	if len(*seq) > 1 {
		*seq = (*seq)[1:]
	}
	return v
}

func (f *fakeRenderer) record(name string, args ...int) {
	f.calls = append(f.calls, nativeCall{name: name, args: args})
}

func (f *fakeRenderer) Connect(root string, index int) int {
	f.record("connect", index)
	return f.handle
}

func (f *fakeRenderer) Disconnect(handle int) {
	f.record("disconnect", handle)
}

func (f *fakeRenderer) GetDisplayID(handle int, packageName string, appIndex int) int {
	f.record("get_display_id", handle, appIndex)
	return next(&f.displayIDs, 0)
}

func (f *fakeRenderer) CaptureDisplay(handle, displayID, bufferSize int, width, height *int, buffer []byte) int {
	f.record("capture_display", handle, displayID, bufferSize)
	status := next(&f.captureStatus, 0)
	if status == 0 {
		for i := range buffer {
			buffer[i] = f.fill
		}
	}
	return status
}

func (f *fakeRenderer) TouchDown(handle, displayID, x, y int) int {
	f.record("touch_down", x, y)
	return next(&f.touchStatus, 0)
}

func (f *fakeRenderer) TouchUp(handle, displayID int) int {
	f.record("touch_up")
	return 0
}

func (f *fakeRenderer) FingerTouchDown(handle, displayID, fingerID, x, y int) int {
	f.record("finger_touch_down", fingerID, x, y)
	return 0
}

func (f *fakeRenderer) FingerTouchUp(handle, displayID, fingerID int) int {
	f.record("finger_touch_up", fingerID)
	return 0
}

func (f *fakeRenderer) KeyDown(handle, displayID, keyCode int) int {
	f.record("key_down", keyCode)
	return 0
}

func (f *fakeRenderer) KeyUp(handle, displayID, keyCode int) int {
	f.record("key_up", keyCode)
	return 0
}

func (f *fakeRenderer) named(name string) []nativeCall {
	var out []nativeCall
	for _, c := range f.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

type fakeManagement struct {
	state      EmulatorState
	stateErr   error
	version    Version
	versionErr error
	restartErr error
	onRestart  func(*fakeManagement)

	stateCalls   int
	versionCalls int
	restarts     int
}

func newFakeManagement(version Version) *fakeManagement {
	return &fakeManagement{state: StateRunning, version: version}
}

func (m *fakeManagement) State() (EmulatorState, error) {
	m.stateCalls++
	return m.state, m.stateErr
}

func (m *fakeManagement) Version() (Version, error) {
	m.versionCalls++
	if m.versionErr != nil {
		return Version{}, m.versionErr
	}
	return m.version, nil
}

func (m *fakeManagement) Restart() error {
	m.restarts++
	if m.onRestart != nil {
		m.onRestart(m)
	}
	return m.restartErr
}

// fakeClock advances only when slept on.
type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) error {
	if c.stopped {
		return ErrStopped
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

type fakeOwner struct {
	exits       int
	focusChecks int
	focusErr    error
}

func (o *fakeOwner) Exit() {
	o.exits++
}

func (o *fakeOwner) CheckCurrentFocus() error {
	o.focusChecks++
	return o.focusErr
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type harness struct {
	ipc    *IPC
	native *fakeRenderer
	mgmt   *fakeManagement
	clock  *fakeClock
	owner  *fakeOwner
}

func newHarness(version Version, mutate func(*Config)) *harness {
	cfg := DefaultConfig()
	cfg.EmulatorFolder = `C:\Program Files\Netease\MuMu Player 12\shell`
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		native: newFakeRenderer(),
		mgmt:   newFakeManagement(version),
		clock:  newFakeClock(),
		owner:  &fakeOwner{},
	}

	ipc, err := New(cfg, h.native, h.mgmt, h.owner,
		WithClock(h.clock),
		WithLogger(quietLogger()),
		WithFocusRecoverable(h.owner),
	)
	if err != nil {
		panic(err)
	}
	h.ipc = ipc
	return h
}

var (
	legacyVersion = Version{Major: 4, Minor: 1, Patch: 20}
	directVersion = Version{Major: 4, Minor: 1, Patch: 21}
)
