// Package estimator turns raw inertial frames into calibration-zeroed,
// continuous, filtered attitude states.
package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"rocket-gnc/models"
)

// Unwrap maps now onto the turn of before: it returns now + k*2π for the k
// that minimizes the distance to before. Feeding each output back as the
// next call's before keeps a wrapped atan2 signal continuous across the
// ±π seam, which the rate derivative and the filters depend on.
func Unwrap(now, before float64) float64 {
	if now < before {
		cand := now + 2*math.Pi - before
		if cand*cand < (now-before)*(now-before) {
			prev := cand
			for i := 1.0; ; i++ {
				next := now + (i+1)*2*math.Pi - before
				if prev*prev <= next*next {
					return prev + before
				}
				prev = next
			}
		}
		return now
	}
	cand := now - 2*math.Pi - before
	if cand*cand < (now-before)*(now-before) {
		prev := cand
		for i := 1.0; ; i++ {
			next := now - (i+1)*2*math.Pi - before
			if prev*prev <= next*next {
				return prev + before
			}
			prev = next
		}
	}
	return now
}

// rotationFromEuler builds the body-to-world direction cosine matrix of a
// 3-2-1 (yaw, pitch, roll) Euler sequence.
func rotationFromEuler(yaw, pitch, roll float64) *mat.Dense {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	sr, cr := math.Sincos(roll)
	return mat.NewDense(3, 3, []float64{
		cp * cy, sr*sp*cy - cr*sy, cr*sp*cy + sr*sy,
		cp * sy, sr*sp*sy + cr*cy, cr*sp*sy - sr*cy,
		-sp, sr * cp, cr * cp,
	})
}

// Attitude is one tick of zeroed, unwrapped measurements with finite
// difference rates. Angles rad, rates rad/s.
type Attitude struct {
	Yaw, Pitch, Roll             float64
	YawRate, PitchRate, RollRate float64
}

// Estimator zeroes incoming attitude against a calibration pose and keeps
// the one-step history the unwrap and the rate derivative need. Not safe
// for concurrent use; the attitude loop owns it.
type Estimator struct {
	rmat    *mat.Dense // world-to-calibration rotation
	hasLast bool

	lastYaw, lastPitch, lastRoll float64
}

// New returns an estimator with an identity calibration (zeroed angles equal
// raw angles until Calibrate runs).
func New() *Estimator {
	r := mat.NewDense(3, 3, nil)
	r.Set(0, 0, 1)
	r.Set(1, 1, 1)
	r.Set(2, 2, 1)
	return &Estimator{rmat: r}
}

// Calibrate fixes the zero pose from angles averaged over the launch-pad
// calibration window. The stored matrix is the transpose of the pose
// rotation, so the zeroed DCM is the identity at that exact orientation.
func (e *Estimator) Calibrate(avgYaw, avgPitch, avgRoll float64) {
	e.rmat.CloneFrom(rotationFromEuler(avgYaw, avgPitch, avgRoll).T())
	e.hasLast = false
}

// Update processes one raw sample: builds the zeroed DCM, extracts the
// Euler angles back out, unwraps them against the previous tick and
// differentiates over the measured dt. dt must be the wall time actually
// elapsed since the previous call, in seconds.
func (e *Estimator) Update(s models.RawSample, dt float64) Attitude {
	var dcm mat.Dense
	dcm.Mul(e.rmat, rotationFromEuler(s.Yaw, s.Pitch, s.Roll))

	pitch := -math.Asin(dcm.At(2, 0))
	yaw := math.Atan2(dcm.At(1, 0), dcm.At(0, 0))
	roll := math.Atan2(dcm.At(2, 1), dcm.At(2, 2))

	var att Attitude
	if e.hasLast {
		yaw = Unwrap(yaw, e.lastYaw)
		pitch = Unwrap(pitch, e.lastPitch)
		roll = Unwrap(roll, e.lastRoll)
		att.YawRate = (yaw - e.lastYaw) / dt
		att.PitchRate = (pitch - e.lastPitch) / dt
		att.RollRate = (roll - e.lastRoll) / dt
	}
	att.Yaw, att.Pitch, att.Roll = yaw, pitch, roll

	e.lastYaw, e.lastPitch, e.lastRoll = yaw, pitch, roll
	e.hasLast = true
	return att
}

// BodyRates converts filtered Euler angles and Euler rates into body-frame
// angular rates via the 3-2-1 kinematic relation. The roll control loop
// acts on Wx.
func BodyRates(st *models.FilteredState) {
	sr, cr := math.Sincos(st.Roll)
	sp, cp := math.Sincos(st.Pitch)
	st.Wx = st.RollRate - st.YawRate*sp
	st.Wy = st.PitchRate*cr + st.YawRate*cp*sr
	st.Wz = st.YawRate*cp*cr - st.PitchRate*sr
}
