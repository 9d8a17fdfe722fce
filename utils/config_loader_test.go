package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validFlightYAML = `
control:
  period_ms: 20
  pitch: {control_range_deg: 20, td: 0.7}
  yaw: {control_range_deg: 20, td: 0.7}
  roll: {control_range_deg: 100, td: 0}
  references: {yaw_deg: 0, pitch_deg: 0, roll_rate_deg_s: 0}
estimator:
  period_ms: 20
  calibration_ms: 5000
  filters:
    yaw: {q: [0.01, 100], r: 10}
    yaw_rate: {q: [200, 200], r: 5000}
    pitch: {q: [0.01, 100], r: 10}
    pitch_rate: {q: [200, 200], r: 5000}
    roll: {q: [0.01, 100], r: 10}
    roll_rate: {q: [200, 200], r: 5000}
valves:
  moment_arm_m: 0.005
  max_thrust_n: 0.5
  curve:
    - {pwm: 310, thrust: 0}
    - {pwm: 420, thrust: 0.17}
    - {pwm: 1020, thrust: 0.36}
phases:
  engine_burn_ms: 1100
  active_control_ms: 20000
  descent_ms: 15000
`

func TestLoadFlightConfig(t *testing.T) {
	path := writeConfig(t, "flight.yaml", validFlightYAML)
	cfg, err := LoadFlightConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Control.Period())
	assert.Equal(t, 5*time.Second, cfg.Estimator.CalibrationWindow())
	assert.Equal(t, 0.7, cfg.Control.Pitch.Td)
	assert.Equal(t, [2]float64{0.01, 100}, cfg.Estimator.Filters.Yaw.Q)
	assert.Equal(t, float64(5000), cfg.Estimator.Filters.RollRate.R)
	assert.Equal(t, 0.005, cfg.Valves.MomentArmM)
	require.Len(t, cfg.Valves.Curve, 3)
	assert.Equal(t, uint16(420), cfg.Valves.Curve[1].PWM)
	assert.Equal(t, 1100, cfg.Phases.EngineBurnMs)
}

func TestLoadFlightConfigRejectsShortCurve(t *testing.T) {
	path := writeConfig(t, "flight.yaml", `
valves:
  curve:
    - {pwm: 310, thrust: 0}
`)
	_, err := LoadFlightConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 points")
}

func TestLoadFlightConfigRejectsNonMonotonicCurve(t *testing.T) {
	path := writeConfig(t, "flight.yaml", `
valves:
  curve:
    - {pwm: 310, thrust: 0}
    - {pwm: 420, thrust: 0.2}
    - {pwm: 520, thrust: 0.1}
`)
	_, err := LoadFlightConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not monotonic")
}

func TestLoadFlightConfigMissingFile(t *testing.T) {
	_, err := LoadFlightConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadLinksConfig(t *testing.T) {
	path := writeConfig(t, "links.yaml", `
imu:
  device: /dev/ttyUSB0
  baud_rate: 57600
  sync_pair_trials: 2000
  sync_resends: 10
actuator:
  device: /dev/ttyAMA0
  baud_rate: 115200
  generation: gen10
  ack_timeout_ms: 50
  watchdog_timeout_ms: 150
  generator_period_us: 128
`)
	cfg, err := LoadLinksConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.IMU.Device)
	assert.Equal(t, 2000, cfg.IMU.SyncPairTrials)
	assert.Equal(t, "gen10", cfg.Actuator.Generation)
	assert.Equal(t, 150, cfg.Actuator.WatchdogTimeoutMs)
}

func TestLoadStorageConfig(t *testing.T) {
	path := writeConfig(t, "storage.yaml", `
storage:
  base_dir: ./flight_data
  session_prefix: flight
  overwrite: false
  csv:
    flush_interval_ms: 100
    buffer_size_kb: 256
    write_header: true
`)
	cfg, err := LoadStorageConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "flight", cfg.Storage.SessionPrefix)
	assert.True(t, cfg.Storage.CSV.WriteHeader)
	assert.Equal(t, 256, cfg.Storage.CSV.BufferSizeKB)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "bad.yaml", "control: [not a map")
	_, err := LoadFlightConfig(path)
	assert.Error(t, err)
}

func TestRad(t *testing.T) {
	assert.InDelta(t, 0.3490658503988659, Rad(20), 1e-15)
	assert.Zero(t, Rad(0))
}
