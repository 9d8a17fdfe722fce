package imu

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"time"

	"rocket-gnc/models"
)

// SampleFunc produces the simulated sensor reading at elapsed time t.
type SampleFunc func(t time.Duration) models.RawSample

// Simulator emulates the sensor end of the link for bench runs: it answers
// the sync request with the sync token and then streams frames at the
// given period. Mode commands are consumed and ignored, like the real
// sensor once configured.
type Simulator struct {
	Period time.Duration
	Sample SampleFunc
}

// Serve runs the simulator over rw until the context is cancelled or the
// host closes the stream.
func (s *Simulator) Serve(ctx context.Context, rw io.ReadWriter) error {
	// Consume commands until a sync request arrives. Commands all start
	// with '#'; "#s" is the one we answer.
	var buf [1]byte
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := rw.Read(buf[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if buf[0] != 's' {
			continue
		}
		if _, err := rw.Write(syncToken[:]); err != nil {
			return err
		}
		break
	}

	start := time.Now()
	ticker := time.NewTicker(s.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		frame := encodeFrame(s.Sample(time.Since(start)))
		if _, err := rw.Write(frame[:]); err != nil {
			if err == io.EOF || err == io.ErrClosedPipe {
				return nil
			}
			return err
		}
	}
}

func encodeFrame(sm models.RawSample) [FrameSize]byte {
	var frame [FrameSize]byte
	put := func(off int, v float64) {
		binary.LittleEndian.PutUint32(frame[off:], math.Float32bits(float32(v)))
	}
	put(0, sm.Yaw)
	put(4, sm.Pitch)
	put(8, sm.Roll)
	put(12, sm.AccelX)
	put(16, sm.AccelY)
	put(20, sm.AccelZ)
	return frame
}

// StationarySample is the default bench source: a fixed pose with gravity
// on the body Z axis, which exercises calibration and keeps the filters
// quiet.
func StationarySample(yaw, pitch, roll float64) SampleFunc {
	return func(time.Duration) models.RawSample {
		return models.RawSample{
			Yaw:    yaw,
			Pitch:  pitch,
			Roll:   roll,
			AccelZ: -9.81,
			At:     time.Now(),
		}
	}
}
