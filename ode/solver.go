// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"
	"time"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"
	"github.com/cpmech/gosl/utl"
)

// Solver drives one stepper to solve the initial-value problem from x0 to x1.
// A solver must not be shared by goroutines; System and Params may be shared
// read-only by several solvers, each owning its Output and args
type Solver struct {

	// input
	Out *Output // optional output recorder; set before calling Solve

	// internal
	conf      *Params
	sys       *System
	stp       rkmethod
	work      *workspace
	stat      Stats
	order     int  // classical order of the method
	fixedOnly bool // method runs with constant stepsize only
	useDense  bool // dense output requested and supported
}

// NewSolver returns a solver after checking the consistency between the
// parameters and the system
func NewSolver(conf *Params, sys *System) (o *Solver, err error) {
	err = conf.Validate()
	if err != nil {
		return nil, err
	}
	implicit := conf.Method == "Radau5" || conf.Method == "BwEuler"
	if sys.Mass != nil && !implicit {
		return nil, newStatus(FailConfig, "a mass matrix requires an implicit method (BwEuler or Radau5); method %q is invalid", conf.Method)
	}
	o = &Solver{conf: conf, sys: sys, work: new(workspace)}
	o.stp, err = newRKmethod(conf.Method)
	if err != nil {
		return nil, err
	}
	switch conf.Method {
	case "Radau5":
		o.order = 5
	case "BwEuler":
		o.order = 1
		o.fixedOnly = true
	default:
		dat := erkdata[conf.Method]
		o.order = dat.p
		o.fixedOnly = dat.e == nil
	}
	return
}

// Stats returns a snapshot of the counters of the last solve
func (o *Solver) Stats() Stats {
	return o.stat
}

// Solve solves the problem from x to xb with y holding the initial values on
// entry and the solution at xb on success.
//  Δx     -- initial stepsize in adaptive mode (≤ 0 means automatic
//            estimate) or substep size in fixed mode (≤ 0 means Params.Hini)
//  fixstp -- use constant stepsize Δx (methods without an embedded error
//            estimator always run this way)
//  args   -- optional data passed to the f, Jacobian and output callbacks
func (o *Solver) Solve(y []float64, x, xb, Δx float64, fixstp bool, args ...interface{}) (err error) {

	// check
	if len(y) != o.sys.Ndim {
		return newStatus(FailConfig, "len(y)=%d must equal the system dimension %d", len(y), o.sys.Ndim)
	}
	if xb == x {
		return newStatus(FailConfig, "x1 must differ from x0. x1=x0=%g is invalid", xb)
	}
	if o.Out != nil && o.Out.DenseOut && !o.hasDense() {
		return newStatus(FailConfig, "method %q has no continuous extension for dense output", o.conf.Method)
	}

	// initialise
	t0 := time.Now()
	o.stat.reset()
	o.work.args = args
	o.useDense = o.Out != nil && o.Out.DenseOut
	defer func() {
		o.stat.Hopt = o.work.h
		o.stat.DurTotal = time.Since(t0)
		o.stp.free()
	}()
	err = o.stp.init(o)
	if err != nil {
		return
	}

	// direction
	fwd := xb > x
	sgn := 1.0
	if !fwd {
		sgn = -1.0
	}
	Δ := math.Abs(xb - x)
	hmax := o.conf.Hmax
	if hmax <= 0 {
		hmax = Δ
	}
	hmax = utl.Min(hmax, Δ)

	// constant stepsize mode
	if fixstp || o.fixedOnly {
		return o.solveFixed(y, x, xb, Δx, sgn, Δ)
	}

	// initial stepsize
	var h float64
	if Δx > 0 {
		h = utl.Min(Δx, hmax)
	} else {
		h, err = o.hinit(x, y, sgn, hmax)
		if err != nil {
			return
		}
	}
	h = utl.Max(h, o.conf.Hmin) * sgn
	o.work.reset(h)
	if err = o.beginOut(x, y, fwd); err != nil {
		return
	}

	// time loop
	var last bool
	nfail := 0
	for sgn*(xb-x) > 0 {

		// too many substeps?
		if o.stat.Nsteps >= o.conf.NmaxSS {
			return newStatus(FailStepSize, "maximum number of substeps reached (%d)", o.conf.NmaxSS)
		}

		// truncate the stepsize to hit xb exactly
		last = false
		if sgn*(x+o.work.h-xb) >= 0 {
			o.work.h = xb - x
			last = true
		}

		// trial step
		t1 := time.Now()
		o.stat.Nsteps++
		err = o.stp.step(x, y)
		if err != nil {
			var ok bool
			ok, err = o.recover(err, sgn, &nfail)
			if !ok {
				return
			}
			continue
		}
		nfail = 0

		// Newton iterations diverging: retry with a smaller stepsize
		if o.work.diverging {
			o.work.diverging = false
			o.work.reject = true
			o.stat.Nrejected++
			if math.Abs(o.work.hdiv) < o.conf.Hmin {
				return newStatus(FailNewton, "Newton iterations did not converge even at the minimum stepsize (h=%g)", math.Abs(o.work.hdiv))
			}
			o.work.h = o.work.hdiv
			continue
		}

		// accept
		if o.work.rerr <= 1.0 {
			o.stat.Naccepted++
			var hnew float64
			hnew, err = o.stp.accept(y, x)
			if err != nil {
				return
			}
			if last {
				x = xb
			} else {
				x += o.work.h
			}
			o.stat.NitLast = o.work.nit
			if err = o.checkNaN(y); err != nil {
				return
			}
			if err = o.updateOut(o.work.h, x, y); err != nil {
				return
			}
			durmax(&o.stat.DurStepMax, t1)
			o.work.rerrPrev = utl.Max(o.conf.RerrPrevMin, o.work.rerr)
			o.work.first = false
			o.work.reject = false
			o.work.h = sgn * utl.Min(math.Abs(hnew), hmax)
			if last {
				break
			}
			continue
		}

		// reject
		o.stat.Nrejected++
		hnew := o.stp.reject()
		if o.work.first && o.conf.MfirstRej > 0 {
			hnew = o.work.h * o.conf.MfirstRej
		}
		o.work.reject = true
		habs := math.Abs(hnew)
		if habs < o.conf.Hmin {
			return newStatus(FailStepSize, "stepsize underflow: the controller requested h=%g < hmin=%g", habs, o.conf.Hmin)
		}
		o.work.h = sgn * habs
	}

	// done
	o.endOut(xb, y)
	return
}

// solveFixed integrates with nss equal substeps h = (xb-x)/nss, setting x to
// xb exactly after the last one
func (o *Solver) solveFixed(y []float64, x, xb, Δx, sgn, Δ float64) (err error) {
	if Δx <= 0 {
		Δx = o.conf.Hini
	}
	nss := int(Δ/Δx + 0.5)
	if nss < 1 {
		nss = 1
	}
	if nss > o.conf.NmaxSS {
		return newStatus(FailStepSize, "number of substeps %d exceeds the maximum (%d)", nss, o.conf.NmaxSS)
	}
	h := sgn * Δ / float64(nss)
	o.work.reset(h)
	if err = o.beginOut(x, y, sgn > 0); err != nil {
		return
	}
	x0 := x
	for i := 0; i < nss; i++ {
		t1 := time.Now()
		o.stat.Nsteps++
		err = o.stp.step(x, y)
		if err != nil {
			return
		}
		o.stat.Naccepted++
		_, err = o.stp.accept(y, x)
		if err != nil {
			return
		}
		if i == nss-1 {
			x = xb
		} else {
			x = x0 + float64(i+1)*h
		}
		o.stat.NitLast = o.work.nit
		o.work.first = false
		if err = o.checkNaN(y); err != nil {
			return
		}
		if err = o.updateOut(h, x, y); err != nil {
			return
		}
		durmax(&o.stat.DurStepMax, t1)
	}
	o.endOut(xb, y)
	return
}

// recover decides whether a failed trial step may be retried with a smaller
// stepsize. Callback, linear solver and Newton failures are retried; all
// other kinds are surfaced at once
func (o *Solver) recover(err error, sgn float64, nfail *int) (ok bool, serr error) {
	switch Fail(err) {
	case FailFunction, FailLinSol, FailNewton:
		*nfail++
		habs := math.Abs(o.work.h)
		if habs <= o.conf.Hmin {
			if *nfail >= 2 {
				return false, err
			}
		}
		habs = utl.Max(habs*0.5, o.conf.Hmin)
		o.work.h = sgn * habs
		o.stat.Nrejected++
		return true, nil
	}
	return false, err
}

// hinit estimates the initial stepsize from the magnitudes of y, f(x0,y0)
// and an explicit Euler probe of the second derivative
func (o *Solver) hinit(x float64, y []float64, sgn, hmax float64) (h float64, err error) {
	n := o.sys.Ndim
	f0 := make([]float64, n)
	f1 := make([]float64, n)
	y1 := make([]float64, n)
	o.stat.Nfeval++
	err = o.sys.Fcn(f0, x, y, o.work.args...)
	if err != nil {
		return 0, newStatus(FailFunction, "f(x,y) failed during stepsize estimation: %v", err)
	}
	var dnf, dny float64
	for m := 0; m < n; m++ {
		sk := o.conf.Atol + o.conf.Rtol*math.Abs(y[m])
		dnf += (f0[m] / sk) * (f0[m] / sk)
		dny += (y[m] / sk) * (y[m] / sk)
	}
	h0 := 1e-6
	if dnf > 1e-10 && dny > 1e-10 {
		h0 = 0.01 * math.Sqrt(dny/dnf)
	}
	h0 = utl.Min(h0, hmax)
	for m := 0; m < n; m++ {
		y1[m] = y[m] + sgn*h0*f0[m]
	}
	o.stat.Nfeval++
	err = o.sys.Fcn(f1, x+sgn*h0, y1, o.work.args...)
	if err != nil {
		return 0, newStatus(FailFunction, "f(x,y) failed during stepsize estimation: %v", err)
	}
	var der2 float64
	for m := 0; m < n; m++ {
		sk := o.conf.Atol + o.conf.Rtol*math.Abs(y[m])
		der2 += ((f1[m] - f0[m]) / sk) * ((f1[m] - f0[m]) / sk)
	}
	der2 = math.Sqrt(der2) / h0
	der12 := utl.Max(der2, math.Sqrt(dnf))
	h1 := utl.Max(1e-6, h0*1e-3)
	if der12 > 1e-15 {
		h1 = math.Pow(0.01/der12, 1.0/float64(o.order+1))
	}
	h = utl.Min(100.0*h0, utl.Min(h1, hmax))
	return
}

// checkNaN verifies the solution vector after an accepted step
func (o *Solver) checkNaN(y []float64) error {
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return newStatus(FailNaN, "NaN or Inf detected in the solution vector")
		}
	}
	return nil
}

// hasDense tells whether the method provides a continuous extension
func (o *Solver) hasDense() bool {
	if o.conf.Method == "Radau5" {
		return true
	}
	if dat, ok := erkdata[o.conf.Method]; ok {
		return dat.dense
	}
	return false
}

// numjac computes m ⋅ ∂f/∂y numerically by forward differences. fx must hold
// f(x,y) and w is a workspace of dimension ndim
func (o *Solver) numjac(jtri *la.Triplet, x float64, y, fx, w []float64, m float64) error {
	if m == 1 {
		return num.Jacobian(jtri, func(fy, yy []float64) error {
			o.stat.Nfeval++
			return o.sys.Fcn(fy, x, yy, o.work.args...)
		}, y, fx, w)
	}
	fm := make([]float64, len(fx))
	for i := range fx {
		fm[i] = m * fx[i]
	}
	return num.Jacobian(jtri, func(fy, yy []float64) error {
		o.stat.Nfeval++
		if err := o.sys.Fcn(fy, x, yy, o.work.args...); err != nil {
			return err
		}
		for i := range fy {
			fy[i] *= m
		}
		return nil
	}, y, fm, w)
}

// beginOut dispatches the initial values to the output recorder
func (o *Solver) beginOut(x float64, y []float64, fwd bool) error {
	if o.Out == nil {
		return nil
	}
	o.Out.begin(x, y, fwd)
	if o.Out.Fcn != nil {
		return o.Out.Fcn(true, o.work.h, x, y, o.work.args...)
	}
	return nil
}

// updateOut dispatches an accepted step to the output recorder
func (o *Solver) updateOut(h, x float64, y []float64) error {
	if o.Out == nil {
		return nil
	}
	o.Out.update(h, x, y, func(yout []float64, xout float64) {
		o.stp.denseOut(yout, h, x, xout)
	})
	if o.Out.Fcn != nil {
		return o.Out.Fcn(false, h, x, y, o.work.args...)
	}
	return nil
}

// endOut closes the output recording at xb
func (o *Solver) endOut(xb float64, y []float64) {
	if o.Out != nil {
		o.Out.last(xb, y)
	}
}
