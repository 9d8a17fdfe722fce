package alloc

import (
	"errors"
	"math"
)

var (
	// ErrInfeasible means no nonnegative valve thrusts satisfy all three
	// demands. The caller holds its previous command.
	ErrInfeasible = errors.New("thrust allocation infeasible")
	// ErrUnbounded means the tableau was malformed; the minimum-thrust
	// objective can never be unbounded on a well-posed tick.
	ErrUnbounded = errors.New("thrust allocation unbounded")
)

// Problem is one allocation tick: the axis demands from the control laws,
// the current roll angle (the valve axes rotate with the body) and the
// valve moment arm.
type Problem struct {
	FPitch float64 // N
	FYaw   float64 // N
	MRoll  float64 // N·m
	Roll   float64 // rad
	Arm    float64 // m
}

// Solve finds the four valve thrusts with minimum sum R1+R2+R3+R4 meeting
// the three demands exactly. Thrusts are magnitudes: valves only push, so
// the sign of a demand selects which valves fire, via per-row sign flips
// that keep the tableau constants nonnegative.
func Solve(p Problem) ([4]float64, error) {
	sinr, cosr := math.Sincos(p.Roll)

	var a [6][6]float64
	// Objective row: minimize sum of thrusts, entered negated.
	a[1][2], a[1][3], a[1][4], a[1][5] = -1, -1, -1, -1
	setConstraint(&a, 2, p.FPitch, cosr, -sinr, -cosr, sinr)
	setConstraint(&a, 3, p.FYaw, sinr, cosr, -sinr, -cosr)
	setConstraint(&a, 4, p.MRoll, p.Arm, -p.Arm, p.Arm, -p.Arm)

	var izrov, iposv [6]int
	switch simplx(&a, 3, 4, 0, 0, 3, izrov[:], iposv[:]) {
	case caseInfeasible:
		return [4]float64{}, ErrInfeasible
	case caseUnbounded:
		return [4]float64{}, ErrUnbounded
	}

	// Basic variables 1..4 carry their value in tableau column 1;
	// non-basic valves are exactly zero.
	var r [4]float64
	for j := 1; j <= 3; j++ {
		if v := iposv[j]; v >= 1 && v <= 4 {
			r[v-1] = a[j+1][1]
		}
	}
	return r, nil
}

// setConstraint writes one equality row. Coefficients are stored negated
// (tableau convention); if the demand is negative the whole row is flipped
// so the constant stays nonnegative.
func setConstraint(a *[6][6]float64, row int, rhs, c1, c2, c3, c4 float64) {
	if rhs < 0 {
		rhs, c1, c2, c3, c4 = -rhs, -c1, -c2, -c3, -c4
	}
	a[row][1] = rhs
	a[row][2], a[row][3], a[row][4], a[row][5] = c1, c2, c3, c4
}

// Clamp saturates each allocated thrust to the valve maximum. The solver
// can exceed it when the demands themselves exceed the hardware authority.
func Clamp(r *[4]float64, maxThrust float64) {
	for i := range r {
		if r[i] >= maxThrust {
			r[i] = maxThrust
		}
	}
}
