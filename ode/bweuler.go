// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"
	"time"

	"github.com/cpmech/gosl/la"
)

// bweuler implements the backward (implicit) Euler method with full Newton
// iterations:
//   G(Y) = [M]⋅(Y - yn) - h⋅f(xn+h, Y) = 0
// The method runs with constant stepsize and has no embedded error estimator.
// It must not be used with a structurally singular mass matrix
type bweuler struct {
	sol  *Solver
	conf *Params
	ndim int

	// linear system
	mTri *la.Triplet // mass matrix (identity when not given)
	jtri la.Triplet  // -h ⋅ ∂f/∂y
	kmat la.Triplet  // [M] - h⋅∂f/∂y
	ls   la.LinSol
	lsOK bool // symbolic initialisation done
	tgOK bool // constant tangent already factorised [CteTg]

	// workspace
	w    []float64 // trial Y
	r    []float64 // residual -G(Y)
	dy   []float64 // Newton correction
	f1   []float64 // f(xn+h, Y)
	mdy  []float64 // [M]⋅(Y - yn)
	scr  []float64 // scratch for the numerical Jacobian
}

func init() {
	rkmAllocators["BwEuler"] = func() rkmethod { return new(bweuler) }
}

func (o *bweuler) init(sol *Solver) error {
	o.sol = sol
	o.conf = sol.conf
	o.ndim = sol.sys.Ndim
	o.mTri = sol.sys.Mass
	if o.mTri == nil {
		o.mTri = identityTriplet(o.ndim)
	}
	jnnz := sol.sys.JacNnz
	o.jtri.Init(o.ndim, o.ndim, jnnz)
	o.kmat.Init(o.ndim, o.ndim, o.mTri.Max()+jnnz)
	o.ls = la.GetSolver(o.conf.LsKind)
	o.lsOK, o.tgOK = false, false
	o.w = make([]float64, o.ndim)
	o.r = make([]float64, o.ndim)
	o.dy = make([]float64, o.ndim)
	o.f1 = make([]float64, o.ndim)
	o.mdy = make([]float64, o.ndim)
	o.scr = make([]float64, o.ndim)
	return nil
}

// step solves one backward Euler step with Newton iterations
func (o *bweuler) step(x float64, y []float64) (err error) {

	// auxiliary
	h := o.sol.work.h
	x1 := x + h
	copy(o.w, y) // Y := yn as trial

	// iterations
	var rnorm float64
	for nit := 1; nit <= o.conf.NmaxIt; nit++ {
		o.sol.work.nit = nit
		if nit > o.sol.stat.Nitmax {
			o.sol.stat.Nitmax = nit
		}

		// residual: r = -G(Y) = h⋅f(x1,Y) - [M]⋅(Y - yn)
		o.sol.stat.Nfeval++
		err = o.sol.sys.Fcn(o.f1, x1, o.w, o.sol.work.args...)
		if err != nil {
			return newStatus(FailFunction, "f(x,y) failed: %v", err)
		}
		for m := 0; m < o.ndim; m++ {
			o.dy[m] = o.w[m] - y[m]
		}
		la.SpTriMatVecMul(o.mdy, o.mTri, o.dy)
		for m := 0; m < o.ndim; m++ {
			o.r[m] = h*o.f1[m] - o.mdy[m]
		}

		// check convergence
		if o.conf.UseRms {
			rnorm = la.VecRmsErr(o.r, o.conf.Atol, o.conf.Rtol, o.w)
		} else {
			rnorm = la.VecNorm(o.r)
		}
		if rnorm < o.conf.Fnewt {
			return nil
		}

		// tangent matrix: K = [M] - h⋅∂f/∂y
		if !o.tgOK {
			t0 := time.Now()
			o.jtri.Start()
			if o.sol.sys.HasJac {
				err = o.sol.sys.Jac(&o.jtri, x1, o.w, -h, o.sol.work.args...)
			} else {
				err = o.sol.numjac(&o.jtri, x1, o.w, o.f1, o.scr, -h)
			}
			if err != nil {
				return newStatus(FailFunction, "Jacobian function failed: %v", err)
			}
			o.sol.stat.Njeval++
			durmax(&o.sol.stat.DurJacMax, t0)
			la.SpTriAdd(&o.kmat, 1, o.mTri, 1, &o.jtri)
			t0 = time.Now()
			if !o.lsOK {
				err = o.ls.InitR(&o.kmat, false, false, false)
				if err != nil {
					return newStatus(FailLinSol, "linear solver initialisation failed: %v", err)
				}
				o.lsOK = true
			}
			err = o.ls.Fact()
			if err != nil {
				return newStatus(FailLinSol, "factorisation failed: %v", err)
			}
			o.sol.stat.Ndecomp++
			durmax(&o.sol.stat.DurFactMax, t0)
			if o.conf.CteTg {
				o.tgOK = true
			}
		}

		// solve and update
		t0 := time.Now()
		err = o.ls.SolveR(o.dy, o.r, false)
		if err != nil {
			return newStatus(FailLinSol, "linear solver failed: %v", err)
		}
		o.sol.stat.Nlinsol++
		durmax(&o.sol.stat.DurSolMax, t0)
		for m := 0; m < o.ndim; m++ {
			o.w[m] += o.dy[m]
			if math.IsNaN(o.w[m]) || math.IsInf(o.w[m], 0) {
				return newStatus(FailNaN, "NaN or Inf detected during Newton iterations")
			}
		}
	}
	return newStatus(FailNewton, "Newton iterations did not converge after %d iterations (residual norm = %g)", o.conf.NmaxIt, rnorm)
}

func (o *bweuler) accept(y []float64, x float64) (hnew float64, err error) {
	copy(y, o.w)
	return o.sol.work.h, nil
}

func (o *bweuler) reject() (hnew float64) {
	return o.sol.work.h
}

func (o *bweuler) denseOut(yout []float64, h, x, xout float64) {}

func (o *bweuler) free() {
	if o.lsOK {
		o.ls.Clean()
		o.lsOK = false
	}
}

// identityTriplet returns an n×n identity matrix in triplet format
func identityTriplet(n int) (t *la.Triplet) {
	t = new(la.Triplet)
	t.Init(n, n, n)
	for i := 0; i < n; i++ {
		t.Put(i, i, 1)
	}
	return
}
