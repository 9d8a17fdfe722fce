package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tableau convention reminder for these tests: column 1 holds constants,
// columns 2..n+1 hold NEGATED constraint coefficients; the objective row
// holds coefficients as-is (maximized).

func TestSimplxSolvesSmallLP(t *testing.T) {
	// Maximize x1 + x2 subject to x1 <= 2, x2 <= 3.
	var a [6][6]float64
	a[1][2], a[1][3] = 1, 1
	a[2][1], a[2][2] = 2, -1 // x1 <= 2
	a[3][1], a[3][3] = 3, -1 // x2 <= 3

	var izrov, iposv [6]int
	icase := simplx(&a, 2, 2, 2, 0, 0, izrov[:], iposv[:])
	require.Equal(t, caseOptimal, icase)
	assert.InDelta(t, 5.0, a[1][1], 1e-9) // optimal objective value

	var x [2]float64
	for j := 1; j <= 2; j++ {
		if v := iposv[j]; v >= 1 && v <= 2 {
			x[v-1] = a[j+1][1]
		}
	}
	assert.InDelta(t, 2.0, x[0], 1e-9)
	assert.InDelta(t, 3.0, x[1], 1e-9)
}

func TestSimplxInfeasible(t *testing.T) {
	// x1 = 1 and x1 = 2 cannot both hold.
	var a [6][6]float64
	a[1][2], a[1][3] = -1, -1
	a[2][1], a[2][2] = 1, -1
	a[3][1], a[3][2] = 2, -1

	var izrov, iposv [6]int
	icase := simplx(&a, 2, 2, 0, 0, 2, izrov[:], iposv[:])
	assert.Equal(t, caseInfeasible, icase)
}

func TestSimplxUnbounded(t *testing.T) {
	// Maximize x1 + x2 with only x1 - x2 <= 1: x2 grows without limit.
	var a [6][6]float64
	a[1][2], a[1][3] = 1, 1
	a[2][1], a[2][2], a[2][3] = 1, -1, 1

	var izrov, iposv [6]int
	icase := simplx(&a, 1, 2, 1, 0, 0, izrov[:], iposv[:])
	assert.Equal(t, caseUnbounded, icase)
}

func TestSimplxNegativeConstantRejected(t *testing.T) {
	var a [6][6]float64
	a[1][2] = -1
	a[2][1], a[2][2] = -0.5, -1

	var izrov, iposv [6]int
	icase := simplx(&a, 1, 1, 0, 0, 1, izrov[:], iposv[:])
	assert.Equal(t, caseInfeasible, icase)
}
