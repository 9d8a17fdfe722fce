package actuator

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"rocket-gnc/utils"
)

// ErrAckTimeout is returned when the actuator does not acknowledge a byte
// within the configured deadline. The link does not retry: the duty stream
// is periodic and the next tick's packet supersedes a lost one, while the
// device watchdog covers a dead link.
var ErrAckTimeout = errors.New("actuator ack timeout")

// readTimeoutSetter is implemented by serial ports that support read
// deadlines. In-memory pipes used in tests don't, and the link degrades to
// fully blocking reads there.
type readTimeoutSetter interface {
	SetReadTimeout(t time.Duration) error
}

// Link is the host side of the valve driver protocol. The wire discipline
// is strictly half duplex: every single byte written is followed by a
// blocking read of one acknowledge byte before the next byte goes out. The
// ack's value is not inspected; its arrival is the flow control.
type Link struct {
	rw  io.ReadWriter
	gen Generation

	ackTimeout time.Duration
	ackBuf     [1]byte
}

// NewLink wraps an open byte stream. Production code passes a serial port;
// tests pass a pipe end.
func NewLink(rw io.ReadWriter, gen Generation, ackTimeout time.Duration) *Link {
	l := &Link{rw: rw, gen: gen, ackTimeout: ackTimeout}
	if s, ok := rw.(readTimeoutSetter); ok && ackTimeout > 0 {
		_ = s.SetReadTimeout(ackTimeout)
	}
	return l
}

// Open opens the configured serial device and wraps it in a Link.
func Open(cfg utils.ActuatorLinkConfig) (*Link, io.Closer, error) {
	gen, err := ParseGeneration(cfg.Generation)
	if err != nil {
		return nil, nil, err
	}
	port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, nil, fmt.Errorf("open actuator link %s: %w", cfg.Device, err)
	}
	return NewLink(port, gen, time.Duration(cfg.AckTimeoutMs)*time.Millisecond), port, nil
}

// Generation returns the wire format the link speaks.
func (l *Link) Generation() Generation { return l.gen }

func (l *Link) writeByte(b byte) error {
	if _, err := l.rw.Write([]byte{b}); err != nil {
		return fmt.Errorf("actuator link write: %w", err)
	}
	n, err := l.rw.Read(l.ackBuf[:])
	if err != nil {
		return fmt.Errorf("actuator link ack read: %w", err)
	}
	if n == 0 {
		// A deadline-capable port signals timeout as a zero-byte read.
		return ErrAckTimeout
	}
	return nil
}

func (l *Link) writeAll(frame []byte) error {
	for _, b := range frame {
		if err := l.writeByte(b); err != nil {
			return err
		}
	}
	return nil
}

// Send transmits one duty packet, byte by byte with acks.
func (l *Link) Send(duty [4]uint16) error {
	return l.writeAll(l.gen.Encode(duty))
}

// Start arms the actuator's PWM generation.
func (l *Link) Start() error {
	return l.writeAll(StartHandshake[:])
}

// Stop disarms the actuator; it resets and waits for the next Start.
func (l *Link) Stop() error {
	return l.writeAll(StopHandshake[:])
}
