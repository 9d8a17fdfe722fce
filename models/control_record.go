package models

// ControlRecord is one line of the control data log: the axis demands, the
// allocated per-valve thrusts and the PWM codes actually sent.
type ControlRecord struct {
	TimestampNs int64
	DtS         float64

	FPitch float64 // N
	FYaw   float64 // N
	MRoll  float64 // N·m

	R   [4]float64 // N
	PWM [4]uint16

	Infeasible bool
}

func (ControlRecord) CSVHeader() []string {
	return []string{
		"timestamp_ns", "dt_s",
		"f_pitch", "f_yaw", "m_roll",
		"r1", "r2", "r3", "r4",
		"pwm1", "pwm2", "pwm3", "pwm4",
		"infeasible",
	}
}

func (r *ControlRecord) CSVRow() []string {
	inf := "0"
	if r.Infeasible {
		inf = "1"
	}
	return []string{
		itoa64(r.TimestampNs), ftoa(r.DtS, 6),
		ftoa(r.FPitch, 6), ftoa(r.FYaw, 6), ftoa(r.MRoll, 8),
		ftoa(r.R[0], 6), ftoa(r.R[1], 6), ftoa(r.R[2], 6), ftoa(r.R[3], 6),
		itoa(int(r.PWM[0])), itoa(int(r.PWM[1])), itoa(int(r.PWM[2])), itoa(int(r.PWM[3])),
		inf,
	}
}
