package nemu

import (
	"time"
)

const (
	DefaultTapHold       = 70 * time.Millisecond
	DefaultKeyHold       = 100 * time.Millisecond
	DefaultSwipeDuration = 500 * time.Millisecond
	DefaultSwipeSteps    = 30
	MinSegmentDuration   = 10 * time.Millisecond

	KeyCodeBack = 1
)

// Point is a logical screen coordinate, origin top-left.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (d *IPC) TouchDown(x, y int) error {
	return d.run("touch_down", func(s session) error {
		tx, ty, err := d.coords.mapXY(x, y)
		if err != nil {
			return err
		}
		return nativeStatus("touch_down", d.native.TouchDown(s.handle, s.displayID, tx, ty))
	})
}

func (d *IPC) TouchUp() error {
	return d.run("touch_up", func(s session) error {
		return nativeStatus("touch_up", d.native.TouchUp(s.handle, s.displayID))
	})
}

func (d *IPC) FingerTouchDown(finger, x, y int) error {
	return d.run("finger_touch_down", func(s session) error {
		tx, ty, err := d.coords.mapXY(x, y)
		if err != nil {
			return err
		}
		return nativeStatus("finger_touch_down", d.native.FingerTouchDown(s.handle, s.displayID, finger, tx, ty))
	})
}

func (d *IPC) FingerTouchUp(finger int) error {
	return d.run("finger_touch_up", func(s session) error {
		return nativeStatus("finger_touch_up", d.native.FingerTouchUp(s.handle, s.displayID, finger))
	})
}

func (d *IPC) KeyDown(code int) error {
	return d.run("key_down", func(s session) error {
		return nativeStatus("key_down", d.native.KeyDown(s.handle, s.displayID, code))
	})
}

func (d *IPC) KeyUp(code int) error {
	return d.run("key_up", func(s session) error {
		return nativeStatus("key_up", d.native.KeyUp(s.handle, s.displayID, code))
	})
}

// Tap presses at (x, y) for hold, then lifts.
func (d *IPC) Tap(x, y int, hold time.Duration) error {
	if err := d.TouchDown(x, y); err != nil {
		return err
	}
	if err := d.clock.Sleep(hold); err != nil {
		d.lift()
		return err
	}
	return d.TouchUp()
}

func (d *IPC) SendKeyEvent(code int, hold time.Duration) error {
	if err := d.KeyDown(code); err != nil {
		return err
	}
	if err := d.clock.Sleep(hold); err != nil {
		if d.conn.ready() {
			_ = d.native.KeyUp(d.conn.sess.handle, d.conn.sess.displayID, code)
		}
		return err
	}
	return d.KeyUp(code)
}

func (d *IPC) Back() error {
	return d.SendKeyEvent(KeyCodeBack, DefaultKeyHold)
}

// Swipe drags from (x0, y0) to (x1, y1) in steps equal moves over duration.
// The finger stays down for the whole drag; each step is another touch-down
// at the interpolated point.
func (d *IPC) Swipe(x0, y0, x1, y1 int, duration time.Duration, steps int) error {
	if steps < 1 {
		return argumentError("swipe needs at least 1 step, got %d", steps)
	}
	if err := d.drag(Point{x0, y0}, Point{x1, y1}, duration, steps, true); err != nil {
		return err
	}
	return d.TouchUp()
}

// SwipeExtOptions tune the end of a multi-segment gesture.
type SwipeExtOptions struct {
	// Steps per segment; zero uses the configured swipe steps.
	Steps int
	// Update captures a frame after the last segment, before lifting.
	Update bool
	// Callback receives that frame while the finger is still down.
	Callback func(*Frame)
	// Interval is held before the final lift.
	Interval time.Duration
}

// SwipeExt drags through points without lifting between segments. durations
// holds one entry per segment.
func (d *IPC) SwipeExt(points []Point, durations []time.Duration, opts SwipeExtOptions) error {
	if len(points) < 2 {
		return argumentError("gesture needs at least 2 points, got %d", len(points))
	}
	if len(durations) != len(points)-1 {
		return argumentError("gesture with %d points needs %d durations, got %d", len(points), len(points)-1, len(durations))
	}

	steps := opts.Steps
	if steps == 0 {
		steps = d.cfg.SwipeSteps
	}
	if steps < 1 {
		return argumentError("gesture needs at least 1 step per segment, got %d", steps)
	}

	for i, duration := range durations {
		if err := d.drag(points[i], points[i+1], max(duration, MinSegmentDuration), steps, i == 0); err != nil {
			return err
		}
	}

	if opts.Update {
		frame, err := d.CaptureDisplay()
		if err != nil {
			d.lift()
			return err
		}
		if opts.Callback != nil {
			opts.Callback(frame)
		}
	}

	if opts.Interval > 0 {
		if err := d.clock.Sleep(opts.Interval); err != nil {
			d.lift()
			return err
		}
	}

	return d.TouchUp()
}

func (d *IPC) drag(p0, p1 Point, duration time.Duration, steps int, press bool) error {
	if press {
		if err := d.TouchDown(p0.X, p0.Y); err != nil {
			return err
		}
	}

	dt := duration / time.Duration(steps)
	for i := 1; i <= steps; i++ {
		x := lerp(p0.X, p1.X, i, steps)
		y := lerp(p0.Y, p1.Y, i, steps)
		if err := d.TouchDown(x, y); err != nil {
			return err
		}
		if err := d.clock.Sleep(dt); err != nil {
			d.lift()
			return err
		}
	}

	return nil
}

// lerp truncates toward zero like a float-to-int conversion.
func lerp(a, b, i, n int) int {
	return int(float64(a) + float64(b-a)*float64(i)/float64(n))
}

// lift releases the touch directly, without supervision, after an
// interrupted gesture.
func (d *IPC) lift() {
	if d.conn.ready() {
		_ = d.native.TouchUp(d.conn.sess.handle, d.conn.sess.displayID)
	}
}
