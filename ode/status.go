// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import "github.com/cpmech/gosl/io"

// Failure kinds carried by Status values
const (
	FailConfig   = iota + 1 // incompatible configuration
	FailFunction            // f or Jacobian callback returned non-success
	FailStepSize            // step-size control failed (underflow or too many substeps)
	FailNewton              // Newton iterations diverged even at the minimum step
	FailLinSol              // linear solver error (e.g. singular matrix)
	FailBounds              // triplet write exceeded the declared size
	FailNaN                 // NaN or Inf detected in the solution vector
)

// Status is the error type returned by the solver. Fail discriminates the
// failure kind using one of the Fail... constants
type Status struct {
	Fail int    // failure kind
	Msg  string // human readable message
}

// Error returns the message
func (o *Status) Error() string { return o.Msg }

// newStatus creates a Status with a formatted message
func newStatus(fail int, msg string, prm ...interface{}) *Status {
	return &Status{fail, io.Sf(msg, prm...)}
}

// Fail returns the failure kind of err, or zero if err is not a solver Status
func Fail(err error) int {
	if s, ok := err.(*Status); ok {
		return s.Fail
	}
	return 0
}
