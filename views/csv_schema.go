package views

// LogType identifies a flight data log for schema lookups.
type LogType int

const (
	LogAttitude LogType = iota
	LogControl
)

var logNames = map[LogType]string{
	LogAttitude: "attitude",
	LogControl:  "control",
}

func (t LogType) String() string {
	if n, ok := logNames[t]; ok {
		return n
	}
	return "unknown"
}

// SchemaColumns is the canonical column list per log. The actual header
// writing is handled by the model's CSVHeader() method; this is kept here
// as a human-readable reference and for validation.
var SchemaColumns = map[LogType][]string{
	LogAttitude: {
		"timestamp_ns", "dt_s",
		"raw_yaw", "raw_pitch", "raw_roll",
		"raw_yaw_rate", "raw_pitch_rate", "raw_roll_rate",
		"yaw", "pitch", "roll",
		"yaw_rate", "pitch_rate", "roll_rate",
		"wx", "wy", "wz",
		"accel_x", "accel_y", "accel_z",
	},
	LogControl: {
		"timestamp_ns", "dt_s",
		"f_pitch", "f_yaw", "m_roll",
		"r1", "r2", "r3", "r4",
		"pwm1", "pwm2", "pwm3", "pwm4",
		"infeasible",
	},
}
