// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ode implements solvers for ordinary differential equations and
// index-1 differential-algebraic equations written as
//
//             dy
//    [M] ⋅ ——————— = f(x, y)    with    y(x0) = y0
//             dx
//
// where [M] is an optional constant (possibly singular) mass matrix. A family
// of explicit Runge-Kutta methods with embedded error estimation handles
// non-stiff problems, whereas the implicit Radau IIA method of order 5
// (Radau5) with simplified Newton iterations handles stiff problems and DAEs.
package ode

import "github.com/cpmech/gosl/la"

// Cb_fcn defines the right-hand side function of the system. The function
// must compute f(x, y) and store the result in f
type Cb_fcn func(f []float64, x float64, y []float64, args ...interface{}) error

// Cb_jac defines the callback that builds the Jacobian matrix. The builder
// must write m ⋅ ∂f/∂y into dfdy, where m is the multiplier given by the
// solver; thus the engine never scales the triplet afterwards
type Cb_jac func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error

// Cb_out defines a callback invoked on every accepted step. first is true on
// the very first call, holding the initial values (x0, y0)
type Cb_out func(first bool, h, x float64, y []float64, args ...interface{}) error

// rkmethod defines the stepping contract shared by the explicit and the
// implicit methods. One stepper is allocated per Solver; init prepares it for
// each solve
type rkmethod interface {
	init(sol *Solver) error                                  // allocates workspace for one solve
	step(x float64, y []float64) error                       // computes a trial step of size sol.work.h
	accept(y []float64, x float64) (hnew float64, err error) // commits the step and suggests the next h
	reject() (hnew float64)                                  // suggests a smaller h after a rejection
	denseOut(yout []float64, h, x, xout float64)             // interpolates y at xout ∈ [x-h, x]
	free()                                                   // releases factorisations and handles
}

// rkmAllocators holds the method allocators; each stepper file registers its
// methods in init()
var rkmAllocators = make(map[string]func() rkmethod)

// newRKmethod returns a stepper corresponding to the given method key
func newRKmethod(kind string) (rkmethod, error) {
	allocator, ok := rkmAllocators[kind]
	if !ok {
		return nil, newStatus(FailConfig, "method %q is not available", kind)
	}
	return allocator(), nil
}
