package nemu

import (
	"sync"
	"time"
)

// Clock provides the wall clock and the blocking sleeps used for polling,
// gesture holds and backoff. An owner that needs to abort a long-running
// driver call supplies a Clock whose Sleep returns ErrStopped.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) error {
	if d > 0 {
		time.Sleep(d)
	}
	return nil
}

// StopClock is a real clock whose sleeps are cut short with ErrStopped once
// Stop has been called.
type StopClock struct {
	stop chan struct{}
	once sync.Once
}

// NewStopClock creates a StopClock that has not been stopped.
func NewStopClock() *StopClock {
	return &StopClock{stop: make(chan struct{})}
}

func (c *StopClock) Now() time.Time {
	return time.Now()
}

func (c *StopClock) Sleep(d time.Duration) error {
	select {
	case <-c.stop:
		return ErrStopped
	default:
	}

	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.stop:
		return ErrStopped
	case <-timer.C:
		return nil
	}
}

// Stop interrupts current and future sleeps. Safe to call more than once.
func (c *StopClock) Stop() {
	c.once.Do(func() { close(c.stop) })
}
