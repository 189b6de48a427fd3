package nemu

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ConnState is the connection manager's state.
type ConnState int

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnNoDisplay
	ConnReady
)

func (s ConnState) String() string {
	switch s {
	case ConnConnecting:
		return "connecting"
	case ConnNoDisplay:
		return "connected_no_display"
	case ConnReady:
		return "ready"
	default:
		return "disconnected"
	}
}

// session is replaced as a whole on invalidation so the handle and the
// display id can never be observed half-reset.
type session struct {
	handle    int
	displayID int
	id        string
}

var noSession = session{handle: 0, displayID: -1}

type stateSource interface {
	State() (EmulatorState, error)
}

type connManager struct {
	native Renderer
	status stateSource
	clock  Clock
	log    *logrus.Entry

	root     string
	index    int
	pkg      string
	appIndex int

	displayTimeout time.Duration
	displayPoll    time.Duration

	state ConnState
	sess  session
}

// connect opens a native session. The emulator must report running; otherwise
// no native call is made. A live handle is kept as is.
func (c *connManager) connect() error {
	if c.sess.handle != 0 {
		return nil
	}

	state, err := c.status.State()
	if err != nil {
		return err
	}
	if state != StateRunning {
		return fmt.Errorf("%w: instance %d is %s", ErrEmulatorNotRunning, c.index, state)
	}

	c.state = ConnConnecting
	handle := c.native.Connect(c.root, c.index)
	if handle == 0 {
		c.invalidate()
		return fmt.Errorf("%w: nemu_connect(%q, %d) returned 0", ErrConnectionRefused, c.root, c.index)
	}

	c.sess = session{handle: handle, displayID: -1, id: uuid.NewString()}
	c.state = ConnNoDisplay
	c.log.WithFields(logrus.Fields{
		"session": c.sess.id,
		"handle":  handle,
	}).Info("MuMu IPC connected")

	return nil
}

// acquireDisplay polls nemu_get_display_id until the app surface exists or
// the budget runs out. A timeout drops the whole session.
func (c *connManager) acquireDisplay() error {
	if c.sess.handle == 0 {
		if err := c.connect(); err != nil {
			return err
		}
	}

	log := c.log.WithFields(logrus.Fields{"session": c.sess.id, "package": c.pkg})
	log.Info("waiting for display id")

	start := c.clock.Now()
	for c.clock.Now().Sub(start) < c.displayTimeout {
		id := c.native.GetDisplayID(c.sess.handle, c.pkg, c.appIndex)
		if id >= 0 {
			c.sess.displayID = id
			c.state = ConnReady
			log.WithField("display", id).Info("display id acquired")
			return nil
		}

		log.WithField("status", id).Debug("display id not ready")
		if err := c.clock.Sleep(c.displayPoll); err != nil {
			return err
		}
	}

	c.invalidate()
	return fmt.Errorf("%w: %s not visible after %s", ErrDisplayTimeout, c.pkg, c.displayTimeout)
}

func (c *connManager) ensureReady() error {
	if c.sess.handle == 0 {
		if err := c.connect(); err != nil {
			return err
		}
	}
	if c.sess.displayID < 0 {
		return c.acquireDisplay()
	}
	return nil
}

func (c *connManager) ready() bool {
	return c.sess.handle != 0 && c.sess.displayID >= 0
}

// invalidate forgets the session without a native disconnect; the handle is
// presumed dead.
func (c *connManager) invalidate() {
	c.sess = noSession
	c.state = ConnDisconnected
}

// resetDisplay drops only the display id, keeping a live handle.
func (c *connManager) resetDisplay() {
	if c.sess.handle == 0 {
		c.invalidate()
		return
	}
	c.sess.displayID = -1
	c.state = ConnNoDisplay
}

func (c *connManager) disconnect() {
	if c.sess.handle != 0 {
		c.native.Disconnect(c.sess.handle)
		c.log.WithField("session", c.sess.id).Info("MuMu IPC disconnected")
	}
	c.invalidate()
}
