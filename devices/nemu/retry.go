package nemu

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// FocusRecoverable is implemented by device owners that can bring the
// automated app back to the foreground. The supervisor calls it when the
// display is lost while the emulator itself is still up.
type FocusRecoverable interface {
	CheckCurrentFocus() error
}

// Restarter restarts the emulator process and waits for it to come back.
type Restarter interface {
	Restart() error
}

// supervisor retries native operations with a fixed delay, recovering the
// session between attempts according to the failure class.
type supervisor struct {
	attempts   int
	delay      time.Duration
	invalidate func()
	restarter  Restarter
	focus      FocusRecoverable
	clock      Clock
	log        *logrus.Entry
}

func (s *supervisor) do(op string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= s.attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, ErrStopped) || errors.Is(err, ErrArgument) {
			return err
		}

		lastErr = err
		s.log.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
			"max":     s.attempts,
		}).WithError(err).Warn("IPC operation failed")

		if err := s.recover(err); err != nil {
			return err
		}

		if attempt < s.attempts {
			if err := s.clock.Sleep(s.delay); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, s.attempts, lastErr)
}

// recover drops the session and runs the remediation matching err. Only
// ErrStopped from a remediation step is returned.
func (s *supervisor) recover(err error) error {
	s.invalidate()

	switch {
	case errors.Is(err, ErrEmulatorNotRunning), errors.Is(err, ErrConnectionRefused):
		if s.restarter == nil {
			return nil
		}
		if rerr := s.restarter.Restart(); rerr != nil {
			if errors.Is(rerr, ErrStopped) {
				return rerr
			}
			s.log.WithError(rerr).Error("emulator restart failed")
		}

	case errors.Is(err, ErrDisplayTimeout), errors.Is(err, ErrNativeCall):
		if s.focus == nil {
			return nil
		}
		if ferr := s.focus.CheckCurrentFocus(); ferr != nil {
			if errors.Is(ferr, ErrStopped) {
				return ferr
			}
			s.log.WithError(ferr).Info("focus check failed")
		}
	}

	return nil
}
