// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"time"

	"github.com/cpmech/gosl/io"
)

// workspace holds the mutable state shared between the driver and the
// stepper during one solve
type workspace struct {
	h         float64       // current trial stepsize
	rerr      float64       // relative error of the last trial step
	rerrPrev  float64       // relative error of the previous accepted step
	first     bool          // before the first accepted step
	reject    bool          // previous trial step was rejected
	diverging bool          // Newton iterations are diverging (implicit methods)
	hdiv      float64       // stepsize suggested after Newton divergence
	nit       int           // Newton iterations of the last step
	args      []interface{} // user-supplied arguments for the callbacks
}

// reset prepares the workspace for a new solve
func (o *workspace) reset(h float64) {
	o.h = h
	o.rerr, o.rerrPrev = 0, 0
	o.first = true
	o.reject = false
	o.diverging = false
	o.nit = 0
}

// Stats holds statistics and work counters of one solve
type Stats struct {
	Nfeval     int           // number of calls to f(x,y)
	Njeval     int           // number of Jacobian evaluations
	Ndecomp    int           // number of matrix factorisations
	Nlinsol    int           // number of calls to the linear solver
	Nsteps     int           // number of performed substeps
	Naccepted  int           // number of accepted substeps
	Nrejected  int           // number of rejected substeps
	Nitmax     int           // maximum number of Newton iterations over all steps
	NitLast    int           // number of Newton iterations of the last step
	Hopt       float64       // last suggested stepsize
	Stiff      bool          // stiffness flag (explicit methods with detection enabled)
	StiffStep  int           // accepted-step index at which stiffness was first confirmed
	DurJacMax  time.Duration // maximum wall-clock time of one Jacobian evaluation
	DurFactMax time.Duration // maximum wall-clock time of one factorisation
	DurSolMax  time.Duration // maximum wall-clock time of one linear solve
	DurStepMax time.Duration // maximum wall-clock time of one substep
	DurTotal   time.Duration // total wall-clock time of the solve
}

// reset zeroes all counters
func (o *Stats) reset() {
	*o = Stats{}
}

// Print prints the statistics
func (o Stats) Print() {
	io.Pf("number of F evaluations   =%6d\n", o.Nfeval)
	io.Pf("number of J evaluations   =%6d\n", o.Njeval)
	io.Pf("number of factorisations  =%6d\n", o.Ndecomp)
	io.Pf("number of lin solutions   =%6d\n", o.Nlinsol)
	io.Pf("number of performed steps =%6d\n", o.Nsteps)
	io.Pf("number of accepted steps  =%6d\n", o.Naccepted)
	io.Pf("number of rejected steps  =%6d\n", o.Nrejected)
	io.Pf("max number of iterations  =%6d\n", o.Nitmax)
	io.Pf("last optimal stepsize     =%v\n", o.Hopt)
	io.Pf("total solution time       =%v\n", o.DurTotal)
}

// durmax updates a maximum-duration accumulator with time elapsed since t0
func durmax(acc *time.Duration, t0 time.Time) {
	if d := time.Since(t0); d > *acc {
		*acc = d
	}
}
