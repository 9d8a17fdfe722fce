package actuator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rocket-gnc/utils"
)

func benchCurve() *Curve {
	return NewCurve([]utils.CurvePoint{
		{PWM: 310, Thrust: 0.0},
		{PWM: 420, Thrust: 0.17},
		{PWM: 520, Thrust: 0.25},
		{PWM: 620, Thrust: 0.29},
		{PWM: 720, Thrust: 0.32},
		{PWM: 820, Thrust: 0.34},
		{PWM: 920, Thrust: 0.35},
		{PWM: 1020, Thrust: 0.36},
	})
}

func TestLookupZeroThrustClosesValve(t *testing.T) {
	c := benchCurve()
	pwm := uint16(777)
	c.Lookup(0, &pwm)
	assert.Equal(t, uint16(0), pwm)
}

func TestLookupControlPointsAreExact(t *testing.T) {
	c := benchCurve()
	for _, tc := range []struct {
		thrust float64
		want   uint16
	}{
		{0.17, 420},
		{0.25, 520},
		{0.29, 620},
		{0.36, 1020},
	} {
		var pwm uint16
		c.Lookup(tc.thrust, &pwm)
		assert.Equal(t, tc.want, pwm, "thrust %.2f", tc.thrust)
	}
}

func TestLookupInterpolatesWithTruncation(t *testing.T) {
	c := benchCurve()
	var pwm uint16
	// Midway through the 0.17..0.25 segment. The fraction (0.21-0.17)/0.08
	// lands just under one half in float64, so the truncating cast gives
	// 420+49, not the rounded 470.
	c.Lookup(0.21, &pwm)
	span, frac := 100.0, (0.21-c.thrust[1])/(c.thrust[2]-c.thrust[1])
	assert.Equal(t, uint16(420)+uint16(span*frac), pwm)
	assert.Equal(t, uint16(469), pwm)
}

func TestLookupMissLeavesValueUnchanged(t *testing.T) {
	c := benchCurve()
	pwm := uint16(615)
	c.Lookup(0.37, &pwm) // above the top of the curve
	assert.Equal(t, uint16(615), pwm)
}

func TestCurveMaxThrust(t *testing.T) {
	assert.InDelta(t, 0.36, benchCurve().MaxThrust(), 1e-12)
}
