// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

func Test_conf01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conf01. default parameters")

	conf := NewParams("DoPri5")
	chk.Scalar(tst, "Mfac", 1e-17, conf.Mfac, 0.9)
	chk.Scalar(tst, "Mmin", 1e-17, conf.Mmin, 0.2)
	chk.Scalar(tst, "Mmax", 1e-17, conf.Mmax, 10.0)
	chk.Scalar(tst, "StabBeta", 1e-17, conf.StabBeta, 0.04)
	chk.IntAssert(conf.NmaxIt, 7)

	conf = NewParams("Radau5")
	if !conf.PredCtrl {
		tst.Errorf("Radau5 must default to the predictive controller")
	}
	chk.Scalar(tst, "RerrPrevMin", 1e-17, conf.RerrPrevMin, 1e-2)

	// Radau5 tolerance conditioning
	err := conf.SetTols(1e-4, 1e-4)
	if err != nil {
		tst.Errorf("SetTols failed: %v", err)
		return
	}
	io.Pforan("atol=%v rtol=%v fnewt=%v\n", conf.Atol, conf.Rtol, conf.Fnewt)
	if math.Abs(conf.Rtol-0.1*math.Pow(1e-4, 2.0/3.0)) > 1e-15 {
		tst.Errorf("conditioned rtol=%v must equal 0.1 ⋅ rtol^(2/3)", conf.Rtol)
	}
	chk.Scalar(tst, "atol/rtol", 1e-14, conf.Atol/conf.Rtol, 1.0)
}

func Test_conf02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conf02. named parameters and invalid input")

	conf := NewParams("DoPri8")
	err := conf.SetPrms(fun.Prms{
		&fun.Prm{N: "atol", V: 1e-7},
		&fun.Prm{N: "rtol", V: 1e-7},
		&fun.Prm{N: "nmaxit", V: 10},
		&fun.Prm{N: "verbose", V: 0},
	})
	if err != nil {
		tst.Errorf("SetPrms failed: %v", err)
		return
	}
	chk.Scalar(tst, "atol", 1e-17, conf.Atol, 1e-7)
	chk.IntAssert(conf.NmaxIt, 10)

	err = conf.SetPrms(fun.Prms{&fun.Prm{N: "unknown", V: 1}})
	if err == nil {
		tst.Errorf("SetPrms must fail with an unknown parameter name")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)

	err = conf.SetTols(-1, 1e-6)
	if err == nil {
		tst.Errorf("SetTols must fail with a negative tolerance")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)
}

func Test_conf03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conf03. inconsistent configurations")

	// analytical Jacobian announced but not given
	_, err := NewSystem(1, xpy, nil, true, 0)
	if err == nil {
		tst.Errorf("NewSystem must fail with hasJac and a nil Jacobian function")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)

	// unknown method
	conf := NewParams("Rk9")
	sys := newSystem(tst, 1, xpy, nil, false, 0)
	_, err = NewSolver(conf, sys)
	if err == nil {
		tst.Errorf("NewSolver must fail with an unknown method")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)

	// mass matrix with an explicit method
	sysm := newSystem(tst, 1, xpy, nil, false, 1)
	sysm.InitMassMatrix(1)
	sysm.MassPut(0, 0, 1.0)
	conf = NewParams("DoPri5")
	_, err = NewSolver(conf, sysm)
	if err == nil {
		tst.Errorf("NewSolver must fail with a mass matrix and an explicit method")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)

	// x1 equal to x0
	conf = NewParams("DoPri5")
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	y := []float64{0}
	err = sol.Solve(y, 1, 1, 0, false)
	if err == nil {
		tst.Errorf("Solve must fail with x1 == x0")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)

	// dense output without a continuous extension
	conf = NewParams("Rk4")
	sol, err = NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	sol.Out = NewOutput(1)
	err = sol.Out.EnableDense(0.1, nil)
	if err != nil {
		tst.Errorf("EnableDense failed: %v", err)
		return
	}
	err = sol.Solve(y, 0, 1, 0.1, true)
	if err == nil {
		tst.Errorf("Solve must fail with dense output and Rk4")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)
}

func Test_conf04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conf04. mass matrix bounds")

	sys := newSystem(tst, 2, xpy, nil, false, 4)
	err := sys.MassPut(0, 0, 1.0)
	if err == nil {
		tst.Errorf("MassPut must fail before InitMassMatrix")
		return
	}
	chk.IntAssert(Fail(err), FailConfig)

	sys.InitMassMatrix(2)
	sys.MassPut(0, 0, 1.0)
	sys.MassPut(1, 1, 1.0)
	err = sys.MassPut(0, 1, 1.0)
	if err == nil {
		tst.Errorf("MassPut must fail past the declared size")
		return
	}
	chk.IntAssert(Fail(err), FailBounds)

	err = sys.MassPut(2, 0, 1.0)
	if err == nil {
		tst.Errorf("MassPut must fail with indices outside the matrix")
		return
	}
	chk.IntAssert(Fail(err), FailBounds)
}

func Test_conf05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conf05. numerical vs analytical Jacobian")

	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = -y[0] + 2.0*y[1]
		f[1] = y[0] * y[1]
		return nil
	}
	jac := func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error {
		dfdy.Start()
		dfdy.Put(0, 0, m*(-1.0))
		dfdy.Put(0, 1, m*(2.0))
		dfdy.Put(1, 0, m*(y[1]))
		dfdy.Put(1, 1, m*(y[0]))
		return nil
	}
	sys := newSystem(tst, 2, fcn, jac, true, 4)
	conf := NewParams("Radau5")
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}

	// numerical Jacobian
	x := 0.5
	y := []float64{1.5, -0.5}
	f0 := make([]float64, 2)
	fcn(f0, x, y)
	var jnum la.Triplet
	jnum.Init(2, 2, 4)
	scr := make([]float64, 2)
	err = sol.numjac(&jnum, x, y, f0, scr, 1.0)
	if err != nil {
		tst.Errorf("numjac failed: %v", err)
		return
	}

	// compare matrix-vector products
	var jana la.Triplet
	jana.Init(2, 2, 4)
	jac(&jana, x, y, 1.0)
	v := []float64{0.7, -1.3}
	pa := make([]float64, 2)
	pn := make([]float64, 2)
	la.SpTriMatVecMul(pa, &jana, v)
	la.SpTriMatVecMul(pn, &jnum, v)
	io.Pforan("J⋅v analytical = %v\n", pa)
	io.Pforan("J⋅v numerical  = %v\n", pn)
	chk.Vector(tst, "J⋅v", 1e-6, pn, pa)
}
