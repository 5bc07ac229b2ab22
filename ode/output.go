// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// Output records the solution on accepted steps and/or on a dense grid using
// the method's continuous extension. The dense grid marches from x0 towards
// x1 with spacing Hout; its first sample holds (x0, y0) and its last sample
// holds (x1, y(x1)) exactly. Output objects must not be shared by solvers
// running concurrently
type Output struct {

	// configuration
	StepOut  bool    // record (x,y) of every accepted step
	DenseOut bool    // interpolate on a dense grid
	Hout     float64 // dense grid spacing (> 0)
	Idx      []int   // dense components; nil means all
	Fcn      Cb_out  // optional callback invoked on every accepted step

	// results
	StepX  []float64         // x of accepted steps [StepOut]
	StepY  [][]float64       // y of accepted steps [StepOut]
	DenseX []float64         // dense grid stations [DenseOut]
	DenseY map[int][]float64 // dense solution per selected component [DenseOut]

	// internal
	ndim  int
	xnext float64 // next dense station to fill
	fwd   bool    // integrating forwards
}

// NewOutput returns a new output recorder for a system of dimension ndim
func NewOutput(ndim int) *Output {
	if ndim < 1 {
		chk.Panic("output dimension must be at least 1. ndim=%d is invalid", ndim)
	}
	return &Output{ndim: ndim}
}

// EnableStep activates the recording of every accepted step
func (o *Output) EnableStep() {
	o.StepOut = true
}

// EnableDense activates dense output with grid spacing hout over the selected
// components. components may be nil, meaning all of them
func (o *Output) EnableDense(hout float64, components []int) error {
	if hout <= 0 {
		return newStatus(FailConfig, "dense output stepsize must be positive. hout=%g is invalid", hout)
	}
	for _, c := range components {
		if c < 0 || c >= o.ndim {
			return newStatus(FailConfig, "dense output component %d is outside [0,%d)", c, o.ndim)
		}
	}
	o.DenseOut = true
	o.Hout = hout
	o.Idx = components
	return nil
}

// components returns the selected dense components
func (o *Output) components() []int {
	if o.Idx != nil {
		return o.Idx
	}
	all := make([]int, o.ndim)
	for i := range all {
		all[i] = i
	}
	return all
}

// begin records the initial values and positions the dense grid
func (o *Output) begin(x float64, y []float64, fwd bool) {
	o.fwd = fwd
	o.StepX, o.StepY = nil, nil
	o.DenseX = nil
	if o.StepOut {
		o.StepX = append(o.StepX, x)
		o.StepY = append(o.StepY, cloneVec(y))
	}
	if o.DenseOut {
		o.DenseY = make(map[int][]float64)
		o.DenseX = append(o.DenseX, x)
		for _, c := range o.components() {
			o.DenseY[c] = append(o.DenseY[c], y[c])
		}
		if fwd {
			o.xnext = x + o.Hout
		} else {
			o.xnext = x - o.Hout
		}
	}
}

// update records an accepted step ending at x with stepsize h. interp
// evaluates the dense-output polynomial of the step just accepted
func (o *Output) update(h, x float64, y []float64, interp func(yout []float64, xout float64)) {
	if o.StepOut {
		o.StepX = append(o.StepX, x)
		o.StepY = append(o.StepY, cloneVec(y))
	}
	if o.DenseOut {
		yout := make([]float64, o.ndim)
		for o.within(x) {
			interp(yout, o.xnext)
			o.DenseX = append(o.DenseX, o.xnext)
			for _, c := range o.components() {
				o.DenseY[c] = append(o.DenseY[c], yout[c])
			}
			if o.fwd {
				o.xnext += o.Hout
			} else {
				o.xnext -= o.Hout
			}
		}
	}
}

// within tells whether the next dense station falls inside the step just
// accepted (ending at x)
func (o *Output) within(x float64) bool {
	if o.fwd {
		return o.xnext < x
	}
	return o.xnext > x
}

// last closes the recording, making the final dense sample hold (x1, y1)
// exactly
func (o *Output) last(x1 float64, y1 []float64) {
	if !o.DenseOut {
		return
	}
	n := len(o.DenseX)
	tol := 1e-12 * utl.Max(1, math.Abs(x1))
	if n > 0 && math.Abs(o.DenseX[n-1]-x1) < tol {
		o.DenseX[n-1] = x1
		for _, c := range o.components() {
			o.DenseY[c][n-1] = y1[c]
		}
		return
	}
	o.DenseX = append(o.DenseX, x1)
	for _, c := range o.components() {
		o.DenseY[c] = append(o.DenseY[c], y1[c])
	}
}

// cloneVec returns a copy of v
func cloneVec(v []float64) (w []float64) {
	w = make([]float64, len(v))
	copy(w, v)
	return
}
