package models

// AttitudeRecord is one line of the attitude data log: the raw zeroed
// measurements next to their filtered counterparts, plus the body rates the
// roll loop actually sees. All angles rad, rates rad/s, accelerations m/s².
type AttitudeRecord struct {
	TimestampNs int64
	DtS         float64

	RawYaw    float64
	RawPitch  float64
	RawRoll   float64
	RawYawR   float64
	RawPitchR float64
	RawRollR  float64

	Yaw       float64
	Pitch     float64
	Roll      float64
	YawRate   float64
	PitchRate float64
	RollRate  float64

	Wx float64
	Wy float64
	Wz float64

	AccelX float64
	AccelY float64
	AccelZ float64
}

func (AttitudeRecord) CSVHeader() []string {
	return []string{
		"timestamp_ns", "dt_s",
		"raw_yaw", "raw_pitch", "raw_roll",
		"raw_yaw_rate", "raw_pitch_rate", "raw_roll_rate",
		"yaw", "pitch", "roll",
		"yaw_rate", "pitch_rate", "roll_rate",
		"wx", "wy", "wz",
		"accel_x", "accel_y", "accel_z",
	}
}

func (r *AttitudeRecord) CSVRow() []string {
	return []string{
		itoa64(r.TimestampNs), ftoa(r.DtS, 6),
		ftoa(r.RawYaw, 6), ftoa(r.RawPitch, 6), ftoa(r.RawRoll, 6),
		ftoa(r.RawYawR, 6), ftoa(r.RawPitchR, 6), ftoa(r.RawRollR, 6),
		ftoa(r.Yaw, 6), ftoa(r.Pitch, 6), ftoa(r.Roll, 6),
		ftoa(r.YawRate, 6), ftoa(r.PitchRate, 6), ftoa(r.RollRate, 6),
		ftoa(r.Wx, 6), ftoa(r.Wy, 6), ftoa(r.Wz, 6),
		ftoa(r.AccelX, 4), ftoa(r.AccelY, 4), ftoa(r.AccelZ, 4),
	}
}
