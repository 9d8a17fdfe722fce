package imu

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"rocket-gnc/models"
)

// FrameSize is the fixed length of one data frame: six little-endian
// float32 values in the order yaw, pitch, roll, accelX, accelY, accelZ.
const FrameSize = 24

// ReadSample blocks for one full frame and decodes it. The sample is
// stamped with the local receive time, which is what the estimator's rate
// derivative runs on.
func (s *Stream) ReadSample() (models.RawSample, error) {
	var frame [FrameSize]byte
	if _, err := io.ReadFull(s.rw, frame[:]); err != nil {
		return models.RawSample{}, fmt.Errorf("imu frame read: %w", err)
	}
	f := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(frame[off:])))
	}
	return models.RawSample{
		Yaw:    f(0),
		Pitch:  f(4),
		Roll:   f(8),
		AccelX: f(12),
		AccelY: f(16),
		AccelZ: f(20),
		At:     time.Now(),
	}, nil
}
