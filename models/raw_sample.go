package models

import "time"

// RawSample is one inertial frame as it arrives on the wire: three Euler
// angles and three specific-force components, little-endian float32 on the
// link, widened to float64 here. Angles are radians, accelerations m/s².
type RawSample struct {
	Yaw    float64
	Pitch  float64
	Roll   float64
	AccelX float64
	AccelY float64
	AccelZ float64
	At     time.Time
}

// FilteredState is the estimator output consumed by the control loop:
// calibration-zeroed, unwrapped, Kalman-filtered Euler angles (rad), their
// rates (rad/s) and the derived body-frame angular rates (rad/s).
type FilteredState struct {
	Yaw       float64
	Pitch     float64
	Roll      float64
	YawRate   float64
	PitchRate float64
	RollRate  float64
	Wx        float64
	Wy        float64
	Wz        float64
	At        time.Time
}
