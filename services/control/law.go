// Package control holds the axis control laws that turn attitude error into
// force and moment demands for the thrust allocator.
package control

import (
	"rocket-gnc/models"
	"rocket-gnc/utils"
)

// Loop is one axis control loop. The proportional gain is derived so that
// an error at the edge of the control range commands exactly the loop's
// saturation authority: K = Satur/Range. Td weights the measured rate, not
// the error derivative; with a constant reference the two coincide.
type Loop struct {
	K     float64
	Td    float64
	Satur float64
	Range float64 // rad for attitude loops, rad/s for the roll rate loop
}

func newLoop(satur float64, cfg utils.AxisConfig) Loop {
	rng := utils.Rad(cfg.ControlRangeDeg)
	return Loop{
		K:     satur / rng,
		Td:    cfg.Td,
		Satur: satur,
		Range: rng,
	}
}

// Demand is the per-tick output of the three laws.
type Demand struct {
	FPitch float64 // N
	FYaw   float64 // N
	MRoll  float64 // N·m
}

// Laws bundles the pitch and yaw PD loops and the roll-rate P loop with
// their references.
type Laws struct {
	Pitch Loop
	Yaw   Loop
	Roll  Loop

	PitchRef float64 // rad
	YawRef   float64 // rad
	WxRef    float64 // rad/s
}

// NewLaws derives the three loops from the control configuration and the
// valve geometry. The pitch and yaw loops saturate at one valve's maximum
// thrust; the roll loop saturates at the maximum couple two opposed valves
// can produce, 2*d*maxThrust.
func NewLaws(cfg *utils.ControlConfig, valves *utils.ValveConfig) *Laws {
	return &Laws{
		Pitch:    newLoop(valves.MaxThrustN, cfg.Pitch),
		Yaw:      newLoop(valves.MaxThrustN, cfg.Yaw),
		Roll:     newLoop(2*valves.MomentArmM*valves.MaxThrustN, cfg.Roll),
		PitchRef: utils.Rad(cfg.Refs.PitchDeg),
		YawRef:   utils.Rad(cfg.Refs.YawDeg),
		WxRef:    utils.Rad(cfg.Refs.RollRateDegS),
	}
}

// Step computes the axis demands from the latest filtered state. Pitch and
// yaw are PD on angle error with measured-rate damping; roll is P on the
// body rate Wx. No integral action anywhere: the RCS cannot hold a steady
// offset force without emptying the tank.
func (l *Laws) Step(st models.FilteredState) Demand {
	return Demand{
		FPitch: l.Pitch.K*(st.Pitch-l.PitchRef) + l.Pitch.Td*st.PitchRate,
		FYaw:   l.Yaw.K*(st.Yaw-l.YawRef) + l.Yaw.Td*st.YawRate,
		MRoll:  l.Roll.K * (st.Wx - l.WxRef),
	}
}
