package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket-gnc/models"
)

func TestUnwrapPassThrough(t *testing.T) {
	assert.Equal(t, 0.1, Unwrap(0.1, 0.2))
	assert.Equal(t, -0.3, Unwrap(-0.3, -0.25))
	assert.Equal(t, 1.0, Unwrap(1.0, 1.0))
}

func TestUnwrapAcrossSeam(t *testing.T) {
	before := math.Pi - 0.01
	now := -math.Pi + 0.01
	got := Unwrap(now, before)
	assert.InDelta(t, math.Pi+0.01, got, 1e-12)

	// And the other direction.
	got = Unwrap(-now, -before)
	assert.InDelta(t, -(math.Pi + 0.01), got, 1e-12)
}

func TestUnwrapContinuousRotation(t *testing.T) {
	// A body spinning steadily: raw readings wrap into (-pi, pi] but the
	// unwrapped sequence must follow the true angle turn after turn.
	last := 0.0
	for k := 1; k <= 200; k++ {
		truth := 0.3 * float64(k)
		raw := math.Atan2(math.Sin(truth), math.Cos(truth))
		last = Unwrap(raw, last)
		require.InDelta(t, truth, last, 1e-9, "step %d", k)
	}
}

func TestUpdateIdentityCalibration(t *testing.T) {
	e := New()
	s := models.RawSample{Yaw: 0.4, Pitch: -0.2, Roll: 0.9}
	att := e.Update(s, 0.02)
	// With an identity calibration the zeroed angles are the raw angles.
	assert.InDelta(t, 0.4, att.Yaw, 1e-12)
	assert.InDelta(t, -0.2, att.Pitch, 1e-12)
	assert.InDelta(t, 0.9, att.Roll, 1e-12)
	// First tick has no history, so no rates.
	assert.Zero(t, att.YawRate)
	assert.Zero(t, att.PitchRate)
	assert.Zero(t, att.RollRate)
}

func TestCalibrateZeroesThePose(t *testing.T) {
	e := New()
	e.Calibrate(0.7, 0.3, -1.1)
	att := e.Update(models.RawSample{Yaw: 0.7, Pitch: 0.3, Roll: -1.1}, 0.02)
	assert.InDelta(t, 0, att.Yaw, 1e-9)
	assert.InDelta(t, 0, att.Pitch, 1e-9)
	assert.InDelta(t, 0, att.Roll, 1e-9)
}

func TestUpdateRatesFromMeasuredDt(t *testing.T) {
	e := New()
	e.Update(models.RawSample{Yaw: 0.1, Pitch: 0.0, Roll: 0.0}, 0.02)
	att := e.Update(models.RawSample{Yaw: 0.14, Pitch: 0.01, Roll: -0.02}, 0.04)
	assert.InDelta(t, 0.04/0.04, att.YawRate, 1e-9)
	assert.InDelta(t, 0.01/0.04, att.PitchRate, 1e-9)
	assert.InDelta(t, -0.02/0.04, att.RollRate, 1e-9)
}

func TestBodyRates(t *testing.T) {
	// Level vehicle rolling: Wx is the roll rate directly.
	st := models.FilteredState{RollRate: 1.5}
	BodyRates(&st)
	assert.InDelta(t, 1.5, st.Wx, 1e-12)
	assert.InDelta(t, 0, st.Wy, 1e-12)
	assert.InDelta(t, 0, st.Wz, 1e-12)

	// General pose: check against the kinematic relation term by term.
	st = models.FilteredState{
		Yaw: 0.2, Pitch: 0.3, Roll: 0.4,
		YawRate: 0.5, PitchRate: -0.6, RollRate: 0.7,
	}
	BodyRates(&st)
	assert.InDelta(t, 0.7-0.5*math.Sin(0.3), st.Wx, 1e-12)
	assert.InDelta(t, -0.6*math.Cos(0.4)+0.5*math.Cos(0.3)*math.Sin(0.4), st.Wy, 1e-12)
	assert.InDelta(t, 0.5*math.Cos(0.3)*math.Cos(0.4)+0.6*math.Sin(0.4), st.Wz, 1e-12)
}
