// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// Params holds the configuration parameters for the solver. Fields may be set
// directly after NewParams, or through SetPrms with named parameters
type Params struct {

	// essential
	Method string // method key: Rk2, Rk3, Heun3, Rk4, Rk4alt, MdEuler, Merson4, Zonneveld4, Fehlberg4, DoPri5, Verner6, Fehlberg7, DoPri8, FwEuler, BwEuler, Radau5
	LsKind string // sparse linear solver kind: "umfpack" or "mumps"

	// tolerances
	Atol  float64 // absolute tolerance
	Rtol  float64 // relative tolerance
	Fnewt float64 // Newton iterations tolerance

	// step control
	Hmin        float64 // minimum stepsize allowed
	Hmax        float64 // maximum stepsize; 0 means |x1-x0|
	Hini        float64 // substep size of the fixed-step mode when Solve gets Δx ≤ 0; not used by the adaptive mode
	Mmin        float64 // minimum step multiplier
	Mmax        float64 // maximum step multiplier
	Mfac        float64 // step multiplier safety factor
	MfirstRej   float64 // multiplier to apply when the first step is rejected; 0 means use the controller's h
	PredCtrl    bool    // use Gustafsson's predictive controller (Radau5)
	StabBeta    float64 // Lund stabilisation coefficient β
	StabBetaM   float64 // factor to multiply the Lund coefficient in the error exponent
	RerrPrevMin float64 // minimum value of the previous relative error

	// implicit methods / Newton iterations
	NmaxIt   int     // maximum number of Newton iterations
	NmaxSS   int     // maximum number of substeps
	ThetaMax float64 // maximum θ to decide whether the Jacobian should be recomputed
	C1h      float64 // minimum hnew/h ratio to retain the previous stepsize (Radau5)
	C2h      float64 // maximum hnew/h ratio to retain the previous stepsize (Radau5)
	UseRms    bool   // use scaled RMS norm instead of Euclidean norm in BwEuler
	ZeroTrial bool   // always start Newton iterations with zero trial values
	CteTg     bool   // use constant tangent (Jacobian) in BwEuler

	// stiffness detection
	StiffNstp  int     // number of steps between stiffness checks; 0 means no check
	StiffRatio float64 // ratio of the method's stability limit triggering a "stiff" hit
	StiffNyes  int     // number of consecutive "yes" hits to confirm stiffness
	StiffNnot  int     // number of "not" hits to disregard stiffness

	// miscellaneous
	Eps     float64 // smallest number satisfying 1 + ϵ > 1
	Verbose bool    // show messages during iterations
}

// NewParams returns parameters with default values for the given method
func NewParams(method string) (o *Params) {
	o = &Params{
		Method:      method,
		LsKind:      "umfpack",
		Hmin:        1e-10,
		Hini:        1e-4,
		Mmin:        0.2,
		Mmax:        10.0,
		Mfac:        0.9,
		MfirstRej:   0.1,
		RerrPrevMin: 1e-4,
		NmaxIt:      7,
		NmaxSS:      1000,
		ThetaMax:    1e-3,
		C1h:         1.0,
		C2h:         1.2,
		UseRms:      true,
		StiffRatio:  0.976,
		StiffNyes:   15,
		StiffNnot:   6,
		Eps:         math.Nextafter(1, 2) - 1,
	}
	switch method {
	case "Radau5":
		o.PredCtrl = true
		o.Mmin = 0.125
		o.Mmax = 5.0
		o.RerrPrevMin = 1e-2
	case "DoPri5":
		o.StabBeta = 0.04
		o.StabBetaM = 0.75
	case "DoPri8":
		o.StabBetaM = 0.2
	}
	o.SetTols(1e-4, 1e-4)
	return
}

// SetTols sets the absolute and relative tolerances and recomputes the Newton
// iterations tolerance. For Radau5, the tolerances are conditioned as in the
// original Fortran code:
//  rtol' = 0.1 ⋅ rtol^(2/3)    and    atol' = rtol' ⋅ (atol / rtol)
func (o *Params) SetTols(atol, rtol float64) error {
	if atol <= 0 || atol <= 10.0*o.Eps {
		return newStatus(FailConfig, "absolute tolerance must be greater than 10 * machine eps. atol=%g is invalid", atol)
	}
	if rtol <= 0 {
		return newStatus(FailConfig, "relative tolerance must be greater than zero. rtol=%g is invalid", rtol)
	}
	o.Atol, o.Rtol = atol, rtol
	if o.Method == "Radau5" {
		quot := atol / rtol
		o.Rtol = 0.1 * math.Pow(rtol, 2.0/3.0)
		o.Atol = o.Rtol * quot
	}
	o.Fnewt = utl.Max(10.0*o.Eps/o.Rtol, utl.Min(0.03, math.Sqrt(o.Rtol)))
	return nil
}

// SetPrms sets parameters from a named parameters collection. Unknown names
// cause an error. Boolean flags take v ≠ 0 as true
func (o *Params) SetPrms(prms fun.Prms) error {
	for _, p := range prms {
		switch p.N {
		case "atol":
			o.Atol = p.V
		case "rtol":
			o.Rtol = p.V
		case "fnewt":
			o.Fnewt = p.V
		case "hmin":
			o.Hmin = p.V
		case "hmax":
			o.Hmax = p.V
		case "hini":
			o.Hini = p.V
		case "mmin":
			o.Mmin = p.V
		case "mmax":
			o.Mmax = p.V
		case "mfac":
			o.Mfac = p.V
		case "mfirstrej":
			o.MfirstRej = p.V
		case "predctrl":
			o.PredCtrl = p.V != 0
		case "stabbeta":
			o.StabBeta = p.V
		case "nmaxit":
			o.NmaxIt = int(p.V)
		case "nmaxss":
			o.NmaxSS = int(p.V)
		case "thetamax":
			o.ThetaMax = p.V
		case "c1h":
			o.C1h = p.V
		case "c2h":
			o.C2h = p.V
		case "zerotrial":
			o.ZeroTrial = p.V != 0
		case "ctetg":
			o.CteTg = p.V != 0
		case "stiffnstp":
			o.StiffNstp = int(p.V)
		case "stiffratio":
			o.StiffRatio = p.V
		case "stiffnyes":
			o.StiffNyes = int(p.V)
		case "stiffnnot":
			o.StiffNnot = int(p.V)
		case "verbose":
			o.Verbose = p.V != 0
		default:
			return newStatus(FailConfig, "parameter named %q is invalid", p.N)
		}
	}
	return nil
}

// Validate checks the consistency of the parameters
func (o *Params) Validate() error {
	if _, ok := rkmAllocators[o.Method]; !ok {
		return newStatus(FailConfig, "method %q is not available", o.Method)
	}
	if o.Atol <= 0 || o.Rtol <= 0 {
		return newStatus(FailConfig, "tolerances must be positive. atol=%g, rtol=%g are invalid", o.Atol, o.Rtol)
	}
	if o.Hmin <= 0 {
		return newStatus(FailConfig, "minimum stepsize must be positive. hmin=%g is invalid", o.Hmin)
	}
	if o.Mmin <= 0 || o.Mmax <= o.Mmin {
		return newStatus(FailConfig, "step multipliers must satisfy 0 < mmin < mmax. mmin=%g, mmax=%g are invalid", o.Mmin, o.Mmax)
	}
	if o.NmaxIt < 1 {
		return newStatus(FailConfig, "maximum number of iterations must be at least 1. nmaxit=%d is invalid", o.NmaxIt)
	}
	if o.LsKind != "umfpack" && o.LsKind != "mumps" {
		return newStatus(FailConfig, "linear solver kind %q is invalid", o.LsKind)
	}
	return nil
}

// report prints the parameters
func (o *Params) report() {
	io.Pf("method   = %s\n", o.Method)
	io.Pf("atol     = %v\n", o.Atol)
	io.Pf("rtol     = %v\n", o.Rtol)
	io.Pf("fnewt    = %v\n", o.Fnewt)
}
