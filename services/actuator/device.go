package actuator

import (
	"context"
	"io"
	"sync"
	"time"
)

// Device is the actuator-side protocol engine: the byte decoder fed by the
// UART, the free-running PWM generator and the safety watchdog. It mirrors
// the valve driver firmware closely enough to stand in for it during
// bench runs and tests.
//
// Feed is the receive interrupt: one byte in, one ack out. Tick is the PWM
// timer rollover: duties latched from the last complete packet take effect
// there, and the watchdog counts rollovers since the last packet.
type Device struct {
	mu  sync.Mutex
	gen Generation
	out io.Writer // ack channel back to the host

	// decoder state
	receiving   bool
	handshaking bool
	hsBuf       [3]byte
	hsN         int
	payload     [5]byte
	payloadN    int

	// generator state
	armed       bool
	duty        [4]uint16
	pending     [4]uint16
	havePending bool

	watchdog      int
	watchdogLimit int
}

// NewDevice builds a device speaking the given generation. watchdogLimit
// is the number of generator rollovers without a packet after which all
// duties are forced to zero (the valves would otherwise stay open on the
// last command forever if the host died).
func NewDevice(gen Generation, out io.Writer, watchdogLimit int) *Device {
	return &Device{gen: gen, out: out, watchdogLimit: watchdogLimit}
}

// Feed consumes one received byte and always acks it. Sentinels are only
// honored outside an in-progress handshake or payload: a '#' inside a
// handshake is handshake data, and a '@' inside a payload is a duty byte.
func (d *Device) Feed(b byte) {
	d.mu.Lock()

	if b == '@' && !d.receiving && !d.handshaking {
		d.handshaking = true
		d.hsBuf[0] = b
		d.hsN = 1
	} else if d.handshaking {
		d.hsBuf[d.hsN] = b
		d.hsN++
		if d.hsN == 3 {
			d.hsN = 0
			d.handshaking = false
			d.finishHandshake()
		}
	}

	if b == Sentinel && !d.receiving && !d.handshaking {
		d.receiving = true
		d.payloadN = 0
	} else if d.receiving {
		d.payload[d.payloadN] = b
		d.payloadN++
		if d.payloadN >= d.gen.PayloadLen() {
			d.payloadN = 0
			d.receiving = false
			if duty, err := d.gen.Decode(d.payload[:d.gen.PayloadLen()]); err == nil {
				d.pending = duty
				d.havePending = true
			}
		}
	}

	d.mu.Unlock()
	_, _ = d.out.Write([]byte{Ack})
}

func (d *Device) finishHandshake() {
	switch d.hsBuf {
	case StartHandshake:
		d.armed = true
		d.watchdog = 0
	case StopHandshake:
		// Software reset: valves closed, back to waiting for Start.
		d.armed = false
		d.duty = [4]uint16{}
		d.pending = [4]uint16{}
		d.havePending = false
		d.watchdog = 0
	}
}

// Tick is one generator rollover. The watchdog zeroes the duties if too
// many rollovers pass without a packet; a pending packet then takes effect
// and rearms the watchdog.
func (d *Device) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed {
		return
	}
	d.watchdog++
	if d.watchdog >= d.watchdogLimit {
		d.duty = [4]uint16{}
	}
	if d.havePending {
		d.watchdog = 0
		d.duty = d.pending
		d.havePending = false
	}
}

// Duties returns the duty codes currently driving the valves.
func (d *Device) Duties() [4]uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duty
}

// Armed reports whether a Start handshake has been accepted.
func (d *Device) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Serve runs the device against a byte stream: a read loop feeding the
// decoder and a ticker driving the generator. It returns when the context
// is cancelled or the stream closes. Used to emulate the actuator over one
// end of a pipe in simulation mode.
func (d *Device) Serve(ctx context.Context, r io.Reader, tick time.Duration) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				d.Tick()
			}
		}
	}()

	var buf [1]byte
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := r.Read(buf[:])
		if n == 1 {
			d.Feed(buf[0])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
