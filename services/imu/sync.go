// Package imu drives the inertial sensor link: stream synchronization,
// frame decoding and a bench simulator.
package imu

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"rocket-gnc/utils"
)

// ErrSyncFailed means the sync token never appeared within the retry
// budget. The sensor is mute or miswired; flight cannot proceed.
var ErrSyncFailed = errors.New("imu sync failed")

// syncToken is what the sensor emits in response to a sync request. Frame
// data follows immediately after it.
var syncToken = [2]byte{'#', 'S'}

// inputFlusher is implemented by serial ports that can drop their pending
// receive buffer. Pipes used in tests don't, and the resend path simply
// keeps scanning there.
type inputFlusher interface {
	ResetInputBuffer() error
}

// Stream is the host side of the sensor link.
type Stream struct {
	rw io.ReadWriter

	// Settle is how long to let the sensor apply mode changes before the
	// sync request. Zero in tests.
	Settle time.Duration

	pairTrials int // token scan attempts before a resend
	maxResends int // resends before giving up
}

// NewStream wraps an open byte stream with the configured retry budget.
func NewStream(rw io.ReadWriter, cfg utils.IMULinkConfig) *Stream {
	return &Stream{
		rw:         rw,
		pairTrials: cfg.SyncPairTrials,
		maxResends: cfg.SyncResends,
	}
}

// Open opens the configured serial device and wraps it in a Stream.
func Open(cfg utils.IMULinkConfig) (*Stream, io.Closer, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, nil, fmt.Errorf("open imu link %s: %w", cfg.Device, err)
	}
	s := NewStream(port, cfg)
	s.Settle = 2 * time.Second
	return s, port, nil
}

// Synchronize puts the sensor into binary continuous streaming, requests
// the sync token and scans the byte stream for it. After a bounded number
// of scan attempts the request is resent (the token may have been missed
// in stale buffer content); after a bounded number of resends it gives up
// with ErrSyncFailed. On success the next byte on the stream is the first
// byte of a data frame.
func (s *Stream) Synchronize() error {
	for _, cmd := range []string{"#ob", "#o1", "#oe0"} {
		if _, err := s.rw.Write([]byte(cmd)); err != nil {
			return fmt.Errorf("imu mode command %q: %w", cmd, err)
		}
	}
	if s.Settle > 0 {
		time.Sleep(s.Settle)
	}
	if err := s.requestToken(); err != nil {
		return err
	}

	var buf [1]byte
	trials := 0
	resends := 0
	for {
		matched := true
		for i := 0; i < len(syncToken); i++ {
			if _, err := s.rw.Read(buf[:]); err != nil {
				return fmt.Errorf("imu sync read: %w", err)
			}
			if buf[0] != syncToken[i] {
				matched = false
				break
			}
		}
		if matched {
			return nil
		}
		trials++
		if trials >= s.pairTrials {
			trials = 0
			resends++
			if resends >= s.maxResends {
				return ErrSyncFailed
			}
			if err := s.requestToken(); err != nil {
				return err
			}
		}
	}
}

func (s *Stream) requestToken() error {
	if f, ok := s.rw.(inputFlusher); ok {
		_ = f.ResetInputBuffer()
	}
	if _, err := s.rw.Write([]byte("#s")); err != nil {
		return fmt.Errorf("imu sync request: %w", err)
	}
	return nil
}
