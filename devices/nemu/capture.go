package nemu

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// CaptureDisplay grabs one frame of the app's display as an RGB image at the
// configured size.
//
// Transient failures are retried with a reconnect in between. When every
// attempt fails the owner is told to exit and an all-zero frame is returned,
// so callers always get an image of the expected shape. The only error
// returned is ErrStopped.
func (d *IPC) CaptureDisplay() (*Frame, error) {
	attempts := d.cfg.CaptureAttempts

	for attempt := 1; attempt <= attempts; attempt++ {
		log := d.log.WithFields(logrus.Fields{"attempt": attempt, "max": attempts})

		frame, err := d.captureOnce(log)
		if err == nil {
			d.exitSignaled = false
			return frame, nil
		}
		if errors.Is(err, ErrStopped) {
			return nil, err
		}

		log.WithError(err).Warn("capture failed")
		d.conn.invalidate()

		var nativeErr *NativeCallError
		if errors.As(err, &nativeErr) {
			if rerr := d.conn.ensureReady(); rerr != nil {
				if errors.Is(rerr, ErrStopped) {
					return nil, rerr
				}
				log.WithError(rerr).Debug("reconnect after capture failure failed")
			}
		}

		if err := d.clock.Sleep(d.cfg.CaptureBackoff); err != nil {
			return nil, err
		}
	}

	d.signalExit("capture_display", errors.New("capture failed after retries"))
	return NewBlankFrame(d.cfg.Width, d.cfg.Height), nil
}

func (d *IPC) captureOnce(log *logrus.Entry) (*Frame, error) {
	if err := d.sup.do("ensure_ready", d.conn.ensureReady); err != nil {
		return nil, err
	}

	buf := d.pool.acquire()
	defer d.pool.release(buf)

	width, height := d.cfg.Width, d.cfg.Height
	sess := d.conn.sess
	status := d.native.CaptureDisplay(sess.handle, sess.displayID, len(buf.data), &width, &height, buf.data)
	if status != 0 {
		return nil, &NativeCallError{Op: "capture_display", Status: status}
	}

	if width != d.cfg.Width || height != d.cfg.Height {
		log.WithFields(logrus.Fields{
			"width":  width,
			"height": height,
		}).Debug("renderer reported a different frame size")
	}

	return frameFromRGBA(buf.data, d.cfg.Width, d.cfg.Height), nil
}
