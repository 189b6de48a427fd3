package nemu

import "github.com/sirupsen/logrus"

const (
	DefaultPoolSoftCap = 3
	DefaultPoolHardCap = 8
)

// frameBuffer is one fixed-size slot of the pool. checkedOut is set by
// acquire and cleared by release once the frame has been copied out.
type frameBuffer struct {
	data       []byte
	checkedOut bool
}

// bufferPool keeps a few capture buffers alive between frames. It is not
// safe for concurrent use; the driver is single-threaded per device.
type bufferPool struct {
	size    int
	softCap int
	hardCap int
	slots   []*frameBuffer
	log     *logrus.Entry
}

func newBufferPool(size, softCap, hardCap int, log *logrus.Entry) *bufferPool {
	if softCap < 1 {
		softCap = DefaultPoolSoftCap
	}
	if hardCap < softCap {
		hardCap = softCap
	}
	return &bufferPool{
		size:    size,
		softCap: softCap,
		hardCap: hardCap,
		log:     log,
	}
}

// acquire returns a free slot, allocating one when every slot is checked out.
// A pool already at the hard cap is cleared before allocating.
func (p *bufferPool) acquire() *frameBuffer {
	for _, b := range p.slots {
		if !b.checkedOut {
			b.checkedOut = true
			return b
		}
	}

	if len(p.slots) >= p.hardCap {
		p.log.WithField("slots", len(p.slots)).Warn("buffer pool hit hard cap, clearing")
		p.clear()
	}

	b := &frameBuffer{data: make([]byte, p.size), checkedOut: true}
	p.slots = append(p.slots, b)
	return b
}

// release returns b to the pool. Above the soft cap the slot is dropped
// instead of kept. Slots unregistered by clear are ignored.
func (p *bufferPool) release(b *frameBuffer) {
	for i, slot := range p.slots {
		if slot != b {
			continue
		}

		b.checkedOut = false
		if len(p.slots) > p.softCap {
			last := len(p.slots) - 1
			copy(p.slots[i:], p.slots[i+1:])
			p.slots[last] = nil
			p.slots = p.slots[:last]
			p.log.WithField("slots", len(p.slots)).Debug("reclaimed buffer above soft cap")
		}
		return
	}
}

func (p *bufferPool) clear() {
	p.slots = nil
}

func (p *bufferPool) len() int {
	return len(p.slots)
}

func (p *bufferPool) checkedOut() int {
	n := 0
	for _, b := range p.slots {
		if b.checkedOut {
			n++
		}
	}
	return n
}
