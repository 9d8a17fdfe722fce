package utils

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ─── Flight configuration (flight.yaml) ────────────────────────────────

// AxisConfig tunes one attitude control loop. The proportional gain is not
// configured directly: it is derived as saturation/range, so that the loop
// commands full authority at the edge of the control range.
type AxisConfig struct {
	ControlRangeDeg float64 `yaml:"control_range_deg"`
	Td              float64 `yaml:"td"`
}

// ChannelConfig holds the noise tuning of one Kalman channel. Q is the
// process noise diagonal (value, rate), R the scalar measurement noise.
type ChannelConfig struct {
	Q [2]float64 `yaml:"q"`
	R float64    `yaml:"r"`
}

// CurvePoint is one control point of the thrust-vs-PWM valve calibration.
// Thrust must be monotonically non-decreasing in PWM.
type CurvePoint struct {
	PWM    uint16  `yaml:"pwm"`
	Thrust float64 `yaml:"thrust"`
}

type ControlConfig struct {
	PeriodMs int        `yaml:"period_ms"`
	Pitch    AxisConfig `yaml:"pitch"`
	Yaw      AxisConfig `yaml:"yaw"`
	Roll     AxisConfig `yaml:"roll"` // control range in deg/s, Td unused
	Refs     struct {
		YawDeg       float64 `yaml:"yaw_deg"`
		PitchDeg     float64 `yaml:"pitch_deg"`
		RollRateDegS float64 `yaml:"roll_rate_deg_s"`
	} `yaml:"references"`
}

type EstimatorConfig struct {
	PeriodMs      int `yaml:"period_ms"`
	CalibrationMs int `yaml:"calibration_ms"`
	Filters       struct {
		Yaw       ChannelConfig `yaml:"yaw"`
		YawRate   ChannelConfig `yaml:"yaw_rate"`
		Pitch     ChannelConfig `yaml:"pitch"`
		PitchRate ChannelConfig `yaml:"pitch_rate"`
		Roll      ChannelConfig `yaml:"roll"`
		RollRate  ChannelConfig `yaml:"roll_rate"`
	} `yaml:"filters"`
}

type ValveConfig struct {
	MomentArmM float64      `yaml:"moment_arm_m"`
	MaxThrustN float64      `yaml:"max_thrust_n"`
	Curve      []CurvePoint `yaml:"curve"`
}

type PhaseConfig struct {
	EngineBurnMs    int `yaml:"engine_burn_ms"`
	ActiveControlMs int `yaml:"active_control_ms"`
	DescentMs       int `yaml:"descent_ms"`
}

// FlightConfig is the top-level structure for flight.yaml.
type FlightConfig struct {
	Control    ControlConfig   `yaml:"control"`
	Estimator  EstimatorConfig `yaml:"estimator"`
	Valves     ValveConfig     `yaml:"valves"`
	Phases     PhaseConfig     `yaml:"phases"`
	Simulation struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"simulation"`
}

// ─── Link configuration (links.yaml) ────────────────────────────────────

type IMULinkConfig struct {
	Device         string `yaml:"device"`
	BaudRate       int    `yaml:"baud_rate"`
	SyncPairTrials int    `yaml:"sync_pair_trials"`
	SyncResends    int    `yaml:"sync_resends"`
}

type ActuatorLinkConfig struct {
	Device            string `yaml:"device"`
	BaudRate          int    `yaml:"baud_rate"`
	Generation        string `yaml:"generation"` // "gen7" or "gen10"
	AckTimeoutMs      int    `yaml:"ack_timeout_ms"`
	WatchdogTimeoutMs int    `yaml:"watchdog_timeout_ms"`
	GeneratorPeriodUs int    `yaml:"generator_period_us"`
}

// LinksConfig is the top-level structure for links.yaml.
type LinksConfig struct {
	IMU      IMULinkConfig      `yaml:"imu"`
	Actuator ActuatorLinkConfig `yaml:"actuator"`
}

// ─── Storage configuration (storage.yaml) ───────────────────────────────

type CSVStorageConfig struct {
	FlushIntervalMs int  `yaml:"flush_interval_ms"`
	BufferSizeKB    int  `yaml:"buffer_size_kb"`
	WriteHeader     bool `yaml:"write_header"`
}

type StorageConfig struct {
	Storage struct {
		BaseDir       string           `yaml:"base_dir"`
		SessionPrefix string           `yaml:"session_prefix"`
		CSV           CSVStorageConfig `yaml:"csv"`
		Overwrite     bool             `yaml:"overwrite"`
	} `yaml:"storage"`
}

// ─── Loaders ────────────────────────────────────────────────────────────

// LoadFlightConfig reads and validates flight.yaml.
func LoadFlightConfig(path string) (*FlightConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flight config: %w", err)
	}
	var cfg FlightConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse flight config: %w", err)
	}
	if len(cfg.Valves.Curve) < 2 {
		return nil, fmt.Errorf("flight config: valve curve needs at least 2 points, got %d", len(cfg.Valves.Curve))
	}
	for i := 1; i < len(cfg.Valves.Curve); i++ {
		if cfg.Valves.Curve[i].Thrust < cfg.Valves.Curve[i-1].Thrust {
			return nil, fmt.Errorf("flight config: valve curve thrust not monotonic at point %d", i)
		}
	}
	return &cfg, nil
}

// LoadLinksConfig reads and parses links.yaml.
func LoadLinksConfig(path string) (*LinksConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read links config: %w", err)
	}
	var cfg LinksConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse links config: %w", err)
	}
	return &cfg, nil
}

// LoadStorageConfig reads and parses storage.yaml.
func LoadStorageConfig(path string) (*StorageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storage config: %w", err)
	}
	var cfg StorageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse storage config: %w", err)
	}
	return &cfg, nil
}

// ─── Derived helpers ─────────────────────────────────────────────────────

// Rad converts a configured angle in degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

func (c ControlConfig) Period() time.Duration {
	return time.Duration(c.PeriodMs) * time.Millisecond
}

func (c EstimatorConfig) Period() time.Duration {
	return time.Duration(c.PeriodMs) * time.Millisecond
}

func (c EstimatorConfig) CalibrationWindow() time.Duration {
	return time.Duration(c.CalibrationMs) * time.Millisecond
}
