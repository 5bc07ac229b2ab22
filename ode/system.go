// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// System holds the description of the ODE/DAE system. It is immutable over a
// solve and may be shared (read-only) by several solvers
type System struct {
	Ndim   int         // dimension of the system (number of equations)
	Fcn    Cb_fcn      // f(x,y) function
	Jac    Cb_jac      // Jacobian builder; may be nil => numerical Jacobian
	HasJac bool        // analytical Jacobian is available
	JacNnz int         // number of non-zeros in the Jacobian matrix
	Mass   *la.Triplet // constant mass matrix; nil => identity
}

// NewSystem returns a new system descriptor.
//  ndim   -- number of equations (must be ≥ 1)
//  fcn    -- the right-hand side function f(x,y)
//  jac    -- the Jacobian builder; may be nil
//  hasJac -- whether jac is an analytical Jacobian (if false, a numerical
//            Jacobian is computed by the implicit methods)
//  jacNnz -- number of non-zeros in the Jacobian; ≤ 0 means dense (ndim²)
func NewSystem(ndim int, fcn Cb_fcn, jac Cb_jac, hasJac bool, jacNnz int) (*System, error) {
	if ndim < 1 {
		chk.Panic("system dimension must be at least 1. ndim=%d is invalid", ndim)
	}
	if fcn == nil {
		chk.Panic("the function f(x,y) must be given")
	}
	if hasJac && jac == nil {
		return nil, newStatus(FailConfig, "hasJac is true but the Jacobian function is nil")
	}
	if jacNnz <= 0 {
		jacNnz = ndim * ndim
	}
	return &System{Ndim: ndim, Fcn: fcn, Jac: jac, HasJac: hasJac, JacNnz: jacNnz}, nil
}

// InitMassMatrix initialises the mass matrix with space for nnz non-zero
// values. Use MassPut to set values afterwards. A structurally singular mass
// matrix turns the problem into a DAE and requires Radau5
func (o *System) InitMassMatrix(nnz int) {
	if nnz < 1 {
		chk.Panic("number of non-zeros of mass matrix must be at least 1. nnz=%d is invalid", nnz)
	}
	o.Mass = new(la.Triplet)
	o.Mass.Init(o.Ndim, o.Ndim, nnz)
}

// MassPut puts a value into the mass matrix. Duplicates are summed by the
// linear solver
func (o *System) MassPut(i, j int, v float64) error {
	if o.Mass == nil {
		return newStatus(FailConfig, "mass matrix must be initialised with InitMassMatrix first")
	}
	if i < 0 || i >= o.Ndim || j < 0 || j >= o.Ndim {
		return newStatus(FailBounds, "mass matrix indices (%d,%d) are outside [0,%d)", i, j, o.Ndim)
	}
	if o.Mass.Len() >= o.Mass.Max() {
		return newStatus(FailBounds, "number of mass matrix entries exceeds declared maximum (%d)", o.Mass.Max())
	}
	o.Mass.Put(i, j, v)
	return nil
}
