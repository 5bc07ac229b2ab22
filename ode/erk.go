// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"

	"github.com/cpmech/gosl/utl"
)

// expRK implements the explicit Runge-Kutta steppers with embedded error
// estimation, Lund-stabilised stepsize control, stiffness detection and
// continuous extensions (DoPri5 and DoPri8)
type expRK struct {

	// shared
	sol  *Solver
	conf *Params
	dat  *erkdat

	// auxiliary
	ndim  int
	nstg  int
	lundν float64 // error exponent n = 1/(q+1) - β⋅βm
	dmin  float64 // 1 / Mmin
	dmax  float64 // 1 / Mmax

	// stage data
	v [][]float64 // v[i] = y + h⋅Σ_j a[i][j]⋅k[j]
	k [][]float64 // k[i] = f(x + h⋅c[i], v[i])
	w []float64   // trial solution at x+h

	// continuous extension
	dout [][]float64 // interpolation coefficients of the accepted step
	kd   [][]float64 // extra stage derivatives (DoPri8)
	yd   []float64   // extra stage solution (DoPri8)

	// stiffness detection
	ρh       float64 // h ⋅ (dominant eigenvalue proxy)
	stiffYes int     // consecutive positive hits
	stiffNot int     // negative hits after positive ones
}

// add the explicit methods to the allocators map
func init() {
	for kind := range erkdata {
		k := kind
		rkmAllocators[k] = func() rkmethod {
			return &expRK{dat: erkdata[k]}
		}
	}
}

func (o *expRK) init(sol *Solver) error {
	o.sol = sol
	o.conf = sol.conf
	o.ndim = sol.sys.Ndim
	o.nstg = len(o.dat.b)
	q := o.dat.q
	if q == 0 {
		q = o.dat.p
	}
	o.lundν = 1.0/float64(q+1) - o.conf.StabBeta*o.conf.StabBetaM
	o.dmin = 1.0 / o.conf.Mmin
	o.dmax = 1.0 / o.conf.Mmax
	o.v = make([][]float64, o.nstg)
	o.k = make([][]float64, o.nstg)
	for i := 0; i < o.nstg; i++ {
		o.v[i] = make([]float64, o.ndim)
		o.k[i] = make([]float64, o.ndim)
	}
	o.w = make([]float64, o.ndim)
	if sol.useDense {
		switch o.conf.Method {
		case "DoPri5":
			o.dout = allocVecs(5, o.ndim)
		case "DoPri8":
			o.dout = allocVecs(8, o.ndim)
			o.kd = allocVecs(3, o.ndim)
			o.yd = make([]float64, o.ndim)
		}
	}
	o.stiffYes, o.stiffNot = 0, 0
	return nil
}

// step computes the stage derivatives, the trial solution and the error
// estimate for a step of size sol.work.h
func (o *expRK) step(x float64, y []float64) (err error) {

	// auxiliary
	h := o.sol.work.h
	c := o.dat.c
	a := o.dat.a
	b := o.dat.b

	// first stage (possibly reused from the previous accepted step)
	if (o.sol.work.first || !o.dat.fsal) && !o.sol.work.reject {
		o.sol.stat.Nfeval++
		err = o.sol.sys.Fcn(o.k[0], x+h*c[0], y, o.sol.work.args...)
		if err != nil {
			return newStatus(FailFunction, "f(x,y) failed: %v", err)
		}
	}

	// remaining stages
	for i := 1; i < o.nstg; i++ {
		copy(o.v[i], y)
		for j := 0; j < i; j++ {
			aij := a[i][j]
			if aij == 0 {
				continue
			}
			for m := 0; m < o.ndim; m++ {
				o.v[i][m] += h * aij * o.k[j][m]
			}
		}
		o.sol.stat.Nfeval++
		err = o.sol.sys.Fcn(o.k[i], x+h*c[i], o.v[i], o.sol.work.args...)
		if err != nil {
			return newStatus(FailFunction, "f(x,y) failed: %v", err)
		}
	}

	// update without error estimation (constant stepsize methods)
	if o.dat.e == nil {
		for m := 0; m < o.ndim; m++ {
			o.w[m] = y[m]
			for i := 0; i < o.nstg; i++ {
				o.w[m] += b[i] * o.k[i][m] * h
			}
		}
		return
	}

	// Dormand-Prince 8 uses a mixed 5th and 3rd order estimator
	if o.conf.Method == "DoPri8" {
		o.stepErrDp8(y, h)
		return
	}

	// update, error and stiffness-proxy data
	var snum, sden, sum float64
	sa, sb := o.nstg-1, o.nstg-2
	for m := 0; m < o.ndim; m++ {
		o.w[m] = y[m]
		lerrm := 0.0
		for i := 0; i < o.nstg; i++ {
			kh := o.k[i][m] * h
			o.w[m] += b[i] * kh
			lerrm += o.dat.e[i] * kh
		}
		sk := o.conf.Atol + o.conf.Rtol*utl.Max(math.Abs(y[m]), math.Abs(o.w[m]))
		ratio := lerrm / sk
		sum += ratio * ratio
		dk := o.k[sa][m] - o.k[sb][m]
		dv := o.v[sa][m] - o.v[sb][m]
		snum += dk * dk
		sden += dv * dv
	}
	o.sol.work.rerr = utl.Max(math.Sqrt(sum/float64(o.ndim)), 1e-10)
	if sden > 0 {
		o.ρh = math.Abs(h) * math.Sqrt(snum/sden)
	}
	return
}

// stepErrDp8 computes the trial solution and the mixed 8(5,3) error estimate
// of Dormand-Prince 8
func (o *expRK) stepErrDp8(y []float64, h float64) {
	var err3, err5, snum, sden float64
	sa, sb := o.nstg-1, o.nstg-2
	for m := 0; m < o.ndim; m++ {
		o.w[m] = y[m]
		var erra, errb float64
		for i := 0; i < o.nstg; i++ {
			o.w[m] += o.dat.b[i] * o.k[i][m] * h
			erra += o.dat.b[i] * o.k[i][m]
			errb += o.dat.e[i] * o.k[i][m]
		}
		sk := o.conf.Atol + o.conf.Rtol*utl.Max(math.Abs(y[m]), math.Abs(o.w[m]))
		erra -= dp8bhh[0]*o.k[0][m] + dp8bhh[1]*o.k[8][m] + dp8bhh[2]*o.k[11][m]
		err3 += (erra / sk) * (erra / sk)
		err5 += (errb / sk) * (errb / sk)
		dk := o.k[sa][m] - o.k[sb][m]
		dv := o.v[sa][m] - o.v[sb][m]
		snum += dk * dk
		sden += dv * dv
	}
	den := err5 + 0.01*err3
	if den <= 0 {
		den = 1.0
	}
	o.sol.work.rerr = utl.Max(math.Abs(h)*err5*math.Sqrt(1.0/(float64(o.ndim)*den)), 1e-10)
	if sden > 0 {
		o.ρh = math.Abs(h) * math.Sqrt(snum/sden)
	}
}

// accept commits the trial step and returns the stepsize for the next step
func (o *expRK) accept(y []float64, x float64) (hnew float64, err error) {

	// store interpolation coefficients
	h := o.sol.work.h
	if o.dout != nil {
		err = o.denseUpdate(y, x, h)
		if err != nil {
			return
		}
	}

	// update y
	copy(y, o.w)

	// first stage of the next step
	if o.dat.fsal {
		copy(o.k[0], o.k[o.nstg-1])
	}

	// stiffness detection
	o.stiffness()

	// constant stepsize methods
	if o.dat.e == nil {
		return h, nil
	}

	// estimate new stepsize with Lund stabilisation
	w := o.sol.work
	d := math.Pow(w.rerr, o.lundν)
	if o.conf.StabBeta > 0 && w.rerrPrev > 0 {
		d /= math.Pow(w.rerrPrev, o.conf.StabBeta)
	}
	d = utl.Max(o.dmax, utl.Min(o.dmin, d/o.conf.Mfac))
	return h / d, nil
}

// reject returns a smaller stepsize after a rejected trial step
func (o *expRK) reject() (hnew float64) {
	w := o.sol.work
	d := math.Pow(w.rerr, o.lundν) / o.conf.Mfac
	return w.h / utl.Min(o.dmin, d)
}

// stiffness updates the stiffness-detection counters using the proxy
//   ρ ≈ ‖kₛ - kₛ₋₁‖ / ‖vₛ - vₛ₋₁‖
// for the dominant eigenvalue of the Jacobian. The detector only reports; it
// never changes the stepping behaviour
func (o *expRK) stiffness() {
	if o.conf.StiffNstp <= 0 || o.dat.slim <= 0 {
		return
	}
	st := &o.sol.stat
	if st.Naccepted%o.conf.StiffNstp != 0 && o.stiffYes == 0 {
		return
	}
	if o.ρh > o.conf.StiffRatio*o.dat.slim {
		o.stiffNot = 0
		o.stiffYes++
		if o.stiffYes == o.conf.StiffNyes {
			st.Stiff = true
			if st.StiffStep == 0 {
				st.StiffStep = st.Naccepted
			}
		}
	} else if o.stiffYes > 0 {
		o.stiffNot++
		if o.stiffNot == o.conf.StiffNnot {
			o.stiffYes = 0
			st.Stiff = false
		}
	}
}

// denseUpdate stores the coefficients of the continuous extension of the step
// being accepted. DoPri8 requires three extra function evaluations
func (o *expRK) denseUpdate(y []float64, x, h float64) (err error) {
	k, d := o.k, o.dout
	if o.conf.Method == "DoPri5" {
		for m := 0; m < o.ndim; m++ {
			ydiff := o.w[m] - y[m]
			bspl := h*k[0][m] - ydiff
			d[0][m] = y[m]
			d[1][m] = ydiff
			d[2][m] = bspl
			d[3][m] = ydiff - h*k[6][m] - bspl
			d[4][m] = h * (dp5d[0]*k[0][m] + dp5d[2]*k[2][m] + dp5d[3]*k[3][m] +
				dp5d[4]*k[4][m] + dp5d[5]*k[5][m] + dp5d[6]*k[6][m])
		}
		return
	}

	// extra stages of Dormand-Prince 8
	for i := 0; i < 3; i++ {
		ad := dp8ad[i]
		for m := 0; m < o.ndim; m++ {
			s := 0.0
			for j := 0; j < 12; j++ {
				s += ad[j] * k[j][m]
			}
			s += ad[12] * k[11][m] // column 12 folds onto the last stage
			for j := 13; j < len(ad); j++ {
				s += ad[j] * o.kd[j-13][m]
			}
			o.yd[m] = y[m] + h*s
		}
		o.sol.stat.Nfeval++
		err = o.sol.sys.Fcn(o.kd[i], x+dp8cd[i]*h, o.yd, o.sol.work.args...)
		if err != nil {
			return newStatus(FailFunction, "f(x,y) failed during dense output: %v", err)
		}
	}

	// final coefficients
	for m := 0; m < o.ndim; m++ {
		ydiff := o.w[m] - y[m]
		bspl := h*k[0][m] - ydiff
		d[0][m] = y[m]
		d[1][m] = ydiff
		d[2][m] = bspl
		d[3][m] = ydiff - h*k[11][m] - bspl
		for r := 0; r < 4; r++ {
			dd := dp8d[r]
			s := 0.0
			for j := 0; j < 12; j++ {
				s += dd[j] * k[j][m]
			}
			s += dd[12] * k[11][m]
			s += dd[13]*o.kd[0][m] + dd[14]*o.kd[1][m] + dd[15]*o.kd[2][m]
			d[4+r][m] = h * s
		}
	}
	return
}

// denseOut interpolates y at xout within the step [x-h, x] just accepted
func (o *expRK) denseOut(yout []float64, h, x, xout float64) {
	d := o.dout
	θ := (xout - (x - h)) / h
	uθ := 1.0 - θ
	if o.conf.Method == "DoPri5" {
		for m := 0; m < o.ndim; m++ {
			yout[m] = d[0][m] + θ*(d[1][m]+uθ*(d[2][m]+θ*(d[3][m]+uθ*d[4][m])))
		}
		return
	}
	for m := 0; m < o.ndim; m++ {
		par := d[4][m] + θ*(d[5][m]+uθ*(d[6][m]+θ*d[7][m]))
		yout[m] = d[0][m] + θ*(d[1][m]+uθ*(d[2][m]+θ*(d[3][m]+uθ*par)))
	}
}

func (o *expRK) free() {}

// allocVecs allocates n vectors of dimension ndim
func allocVecs(n, ndim int) (v [][]float64) {
	v = make([][]float64, n)
	for i := 0; i < n; i++ {
		v[i] = make([]float64, ndim)
	}
	return
}
