// Package actuator speaks the valve driver protocol: thrust-to-PWM
// conversion, packet framing, the per-byte acked host link and the
// actuator-side state machine.
package actuator

import (
	"rocket-gnc/utils"
)

// Curve is the measured thrust-vs-PWM calibration of one solenoid valve.
// The valves run open loop, so this table is the only authority mapping a
// commanded thrust onto a duty code.
type Curve struct {
	pwm    []uint16
	thrust []float64
}

// NewCurve builds a lookup curve from configured control points. Points
// must be ordered with non-decreasing thrust (the config loader enforces
// this).
func NewCurve(points []utils.CurvePoint) *Curve {
	c := &Curve{
		pwm:    make([]uint16, len(points)),
		thrust: make([]float64, len(points)),
	}
	for i, p := range points {
		c.pwm[i] = p.PWM
		c.thrust[i] = p.Thrust
	}
	return c
}

// MaxThrust returns the largest thrust the curve can produce.
func (c *Curve) MaxThrust() float64 {
	return c.thrust[len(c.thrust)-1]
}

// Lookup writes the duty code producing the given thrust into pwm. Zero
// thrust maps to duty 0 (valve closed, below the curve's opening point).
// A thrust hitting a control point exactly returns that point's code; in
// between, the code is linearly interpolated and truncated. If no segment
// brackets the thrust, pwm is left UNCHANGED: the caller keeps commanding
// its previous duty. Callers clamp thrust to the curve's range first.
func (c *Curve) Lookup(thrust float64, pwm *uint16) {
	if thrust == 0 {
		*pwm = 0
		return
	}
	for i := 1; i < len(c.thrust); i++ {
		if c.thrust[i-1] <= thrust && c.thrust[i] >= thrust {
			if thrust == c.thrust[i] {
				*pwm = c.pwm[i]
				return
			}
			span := float64(c.pwm[i] - c.pwm[i-1])
			frac := (thrust - c.thrust[i-1]) / (c.thrust[i] - c.thrust[i-1])
			*pwm = c.pwm[i-1] + uint16(span*frac)
			return
		}
	}
}
