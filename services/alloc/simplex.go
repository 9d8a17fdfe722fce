// Package alloc distributes the commanded pitch force, yaw force and roll
// moment over the four reaction control valves with the least total thrust,
// solved as a linear program.
package alloc

import "math"

// Numerical Recipes two-phase simplex (simplx/simp1/simp2/simp3). The
// tableau and the index slices are 1-based; element [0][*] and [*][0] are
// unused. The fixed array keeps the per-tick solve allocation-free.

const eps = 1e-6

const (
	caseOptimal    = 0
	caseInfeasible = -1
	caseUnbounded  = 1
)

// simplx maximizes the objective in row 1 of a subject to m = m1+m2+m3
// constraints in rows 2..m+1 (m1 of type <=, m2 of type >=, m3 equalities)
// over n variables. Column 1 holds the constants, columns 2..n+1 the
// negated coefficients. On return izrov/iposv hold the right- and
// left-hand variable numbering from which the solution is read.
func simplx(a *[6][6]float64, m, n, m1, m2, m3 int, izrov, iposv []int) int {
	var (
		i, ip, ir, is, k, kh, kp, m12, nl1, nl2 int
		bmax, q1                                float64
		l1, l2, l3                              [6]int
	)

	if m != m1+m2+m3 {
		return caseInfeasible
	}
	nl1 = n
	for k = 1; k <= n; k++ {
		l1[k] = k // columns admissible for exchange
		izrov[k] = k
	}
	nl2 = m
	for i = 1; i <= m; i++ {
		if a[i+1][1] < 0 {
			return caseInfeasible // constants must be nonnegative
		}
		l2[i] = i
		iposv[i] = n + i
	}
	for i = 1; i <= m2; i++ {
		l3[i] = 1
	}
	ir = 0
	if m2+m3 == 0 {
		goto e30 // origin is feasible, straight to phase two
	}
	ir = 1
	for k = 1; k <= n+1; k++ { // auxiliary objective function
		q1 = 0
		for i = m1 + 1; i <= m; i++ {
			q1 += a[i+1][k]
		}
		a[m+2][k] = -q1
	}

e10:
	kp, bmax = simp1(a, m+1, l1[:], nl1, false)
	if bmax <= eps && a[m+2][1] < -eps {
		return caseInfeasible // auxiliary objective cannot reach zero
	} else if bmax <= eps && a[m+2][1] <= eps {
		// Feasible starting vector found. Clean out artificial variables
		// still basic for equality constraints, then enter phase two.
		m12 = m1 + m2 + 1
		if m12 <= m {
			for ip = m12; ip <= m; ip++ {
				if iposv[ip] == ip+n {
					kp, bmax = simp1(a, ip, l1[:], nl1, true)
					if bmax > eps {
						goto e1
					}
				}
			}
		}
		ir = 0
		m12--
		if m1+1 <= m12 {
			for i = m1 + 1; i <= m1+m2; i++ {
				if l3[i-m1] == 1 {
					for k = 1; k <= n+1; k++ {
						a[i+1][k] = -a[i+1][k]
					}
				}
			}
		}
		goto e30
	}
	ip = simp2(a, m, n, l2[:], nl2, kp)
	if ip == 0 {
		return caseInfeasible
	}

e1:
	simp3(a, m+1, n, ip, kp)
	if iposv[ip] >= n+m1+m2+1 {
		// An artificial variable left the basis; remove its column from
		// the exchange list so it never comes back.
		for k = 1; k <= nl1; k++ {
			if l1[k] == kp {
				break
			}
		}
		nl1--
		for is = k; is <= nl1; is++ {
			l1[is] = l1[is+1]
		}
	} else {
		if iposv[ip] < n+m1+1 {
			goto e20
		}
		kh = iposv[ip] - m1 - n
		if l3[kh] == 0 {
			goto e20
		}
		l3[kh] = 0 // first exchange of a >= constraint
	}
	a[m+2][kp+1]++
	for i = 1; i <= m+2; i++ {
		a[i][kp+1] = -a[i][kp+1]
	}

e20:
	is = izrov[kp]
	izrov[kp] = iposv[ip]
	iposv[ip] = is
	if ir != 0 {
		goto e10
	}

e30:
	kp, bmax = simp1(a, 0, l1[:], nl1, false)
	if bmax <= eps {
		return caseOptimal
	}
	ip = simp2(a, m, n, l2[:], nl2, kp)
	if ip == 0 {
		return caseUnbounded
	}
	simp3(a, m, n, ip, kp)
	goto e20
}

// simp1 finds the column index kp in ll[1..nll] maximizing row mm+1 of the
// tableau, by value or by absolute value per iabf.
func simp1(a *[6][6]float64, mm int, ll []int, nll int, iabf bool) (kp int, bmax float64) {
	kp = ll[1]
	bmax = a[mm+1][kp+1]
	if nll < 2 {
		return
	}
	for k := 2; k <= nll; k++ {
		var test float64
		if iabf {
			test = math.Abs(a[mm+1][ll[k]+1]) - math.Abs(bmax)
		} else {
			test = a[mm+1][ll[k]+1] - bmax
		}
		if test > 0 {
			bmax = a[mm+1][ll[k]+1]
			kp = ll[k]
		}
	}
	return
}

// simp2 locates the pivot row for column kp by the minimum-ratio rule,
// breaking degenerate ties by comparing entire rows. ip 0 means no
// admissible pivot exists.
func simp2(a *[6][6]float64, m, n int, l2 []int, nl2, kp int) (ip int) {
	if nl2 < 1 {
		return 0
	}
	i := 1
	for ; i <= nl2; i++ {
		if a[i+1][kp+1] < -eps {
			break
		}
	}
	if i > nl2 {
		return 0
	}
	q1 := -a[l2[i]+1][1] / a[l2[i]+1][kp+1]
	ip = l2[i]
	for i++; i <= nl2; i++ {
		ii := l2[i]
		if a[ii+1][kp+1] < -eps {
			q := -a[ii+1][1] / a[ii+1][kp+1]
			if q < q1 {
				ip = ii
				q1 = q
			} else if q == q1 { // degeneracy
				var q0, qp float64
				for k := 1; k <= n; k++ {
					qp = -a[ip+1][k+1] / a[ip+1][kp+1]
					q0 = -a[ii+1][k+1] / a[ii+1][kp+1]
					if q0 != qp {
						break
					}
				}
				if q0 < qp {
					ip = ii
				}
			}
		}
	}
	return ip
}

// simp3 pivots the tableau on element (ip, kp), exchanging a left-hand and
// a right-hand variable. i1 and k1 bound the rows and columns touched.
func simp3(a *[6][6]float64, i1, k1, ip, kp int) {
	piv := 1 / a[ip+1][kp+1]
	for ii := 1; ii <= i1+1; ii++ {
		if ii-1 != ip {
			a[ii][kp+1] *= piv
			for kk := 1; kk <= k1+1; kk++ {
				if kk-1 != kp {
					a[ii][kk] -= a[ip+1][kk] * a[ii][kp+1]
				}
			}
		}
	}
	for kk := 1; kk <= k1+1; kk++ {
		if kk-1 != kp {
			a[ip+1][kk] = -a[ip+1][kk] * piv
		}
	}
	a[ip+1][kp+1] = piv
}
