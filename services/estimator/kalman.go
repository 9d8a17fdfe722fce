package estimator

import (
	"gonum.org/v1/gonum/mat"

	"rocket-gnc/models"
	"rocket-gnc/utils"
)

// Kalman is a two-state (value, rate) filter over a scalar measurement of
// the value. The transition matrix is rebuilt each tick from the measured
// dt, so irregular sampling degrades gracefully instead of biasing the
// rate state.
type Kalman struct {
	q *mat.Dense    // process noise, diag(qv, qr)
	r float64       // measurement noise
	x *mat.VecDense // state estimate
	p *mat.Dense    // estimate covariance
}

// NewKalman builds a filter with x=0 and P=I, the launch-pad initial
// condition (the rocket is stationary and the angles are freshly zeroed).
func NewKalman(cfg utils.ChannelConfig) *Kalman {
	p := mat.NewDense(2, 2, nil)
	p.Set(0, 0, 1)
	p.Set(1, 1, 1)
	q := mat.NewDense(2, 2, nil)
	q.Set(0, 0, cfg.Q[0])
	q.Set(1, 1, cfg.Q[1])
	return &Kalman{
		q: q,
		r: cfg.R,
		x: mat.NewVecDense(2, nil),
		p: p,
	}
}

// Step folds one measurement z taken dt seconds after the previous one into
// the estimate and returns the filtered value state.
func (k *Kalman) Step(z, dt float64) float64 {
	a := mat.NewDense(2, 2, []float64{1, dt, 0, 1})
	c := mat.NewVecDense(2, []float64{1, 0})

	// Predict: x = A x, P = A P A' + Q.
	var xp mat.VecDense
	xp.MulVec(a, k.x)
	var ap, apa mat.Dense
	ap.Mul(a, k.p)
	apa.Mul(&ap, a.T())
	apa.Add(&apa, k.q)

	// Update: K = P C' / (C P C' + R), x = x + K (z - C x), P = (I - K C) P.
	inn := z - xp.AtVec(0)
	s := apa.At(0, 0) + k.r
	var kg mat.VecDense
	kg.MulVec(&apa, c)
	kg.ScaleVec(1/s, &kg)

	k.x.AddScaledVec(&xp, inn, &kg)

	var kc, ikc mat.Dense
	kc.Outer(1, &kg, c)
	ikc.Scale(-1, &kc)
	ikc.Set(0, 0, ikc.At(0, 0)+1)
	ikc.Set(1, 1, ikc.At(1, 1)+1)
	k.p.Mul(&ikc, &apa)

	return k.x.AtVec(0)
}

// Value returns the current filtered value state.
func (k *Kalman) Value() float64 { return k.x.AtVec(0) }

// FilterBank runs one independent Kalman per estimated channel: the three
// zeroed angles and the three raw rates. Angles and rates are filtered
// separately rather than sharing one filter's rate state, matching the
// channel noise tunings.
type FilterBank struct {
	yaw, pitch, roll    *Kalman
	yawR, pitchR, rollR *Kalman
}

// NewFilterBank builds the six channels from the configured noise tunings.
func NewFilterBank(cfg *utils.EstimatorConfig) *FilterBank {
	f := cfg.Filters
	return &FilterBank{
		yaw:    NewKalman(f.Yaw),
		pitch:  NewKalman(f.Pitch),
		roll:   NewKalman(f.Roll),
		yawR:   NewKalman(f.YawRate),
		pitchR: NewKalman(f.PitchRate),
		rollR:  NewKalman(f.RollRate),
	}
}

// Step folds one attitude tick into all six channels and returns the
// filtered state with body rates derived from the filtered values.
func (b *FilterBank) Step(att Attitude, dt float64) models.FilteredState {
	st := models.FilteredState{
		Yaw:       b.yaw.Step(att.Yaw, dt),
		Pitch:     b.pitch.Step(att.Pitch, dt),
		Roll:      b.roll.Step(att.Roll, dt),
		YawRate:   b.yawR.Step(att.YawRate, dt),
		PitchRate: b.pitchR.Step(att.PitchRate, dt),
		RollRate:  b.rollR.Step(att.RollRate, dt),
	}
	BodyRates(&st)
	return st
}
