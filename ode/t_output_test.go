// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_out01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out01. dense output with DoPri5")

	conf := NewParams("DoPri5")
	conf.SetTols(1e-7, 1e-7)
	sys := newSystem(tst, 1, xpy, nil, false, 0)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	sol.Out = NewOutput(1)
	sol.Out.EnableStep()
	err = sol.Out.EnableDense(0.1, nil)
	if err != nil {
		tst.Errorf("EnableDense failed: %v", err)
		return
	}
	y := []float64{0}
	err = sol.Solve(y, 0, 1, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}

	// endpoints
	X := sol.Out.DenseX
	Y := sol.Out.DenseY[0]
	n := len(X)
	chk.Scalar(tst, "first x", 1e-17, X[0], 0)
	chk.Scalar(tst, "first y", 1e-17, Y[0], 0)
	chk.Scalar(tst, "last x", 1e-17, X[n-1], 1)
	chk.Scalar(tst, "last y", 1e-17, Y[n-1], y[0])

	// monotone grid and interpolation accuracy
	for i := 1; i < n; i++ {
		if X[i] <= X[i-1] {
			tst.Errorf("dense grid is not monotone increasing: X[%d]=%v ≤ X[%d]=%v", i, X[i], i-1, X[i-1])
		}
	}
	for i := 0; i < n; i++ {
		chk.Scalar(tst, io.Sf("y(%5.2f)", X[i]), 1e-6, Y[i], xpySol(X[i]))
	}
}

func Test_out02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out02. backward integration with dense output")

	// y' = x + y from x0=1 down to x1=0 with y(1) = e - 2
	conf := NewParams("DoPri5")
	conf.SetTols(1e-7, 1e-7)
	sys := newSystem(tst, 1, xpy, nil, false, 0)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	sol.Out = NewOutput(1)
	err = sol.Out.EnableDense(0.25, []int{0})
	if err != nil {
		tst.Errorf("EnableDense failed: %v", err)
		return
	}
	y := []float64{math.E - 2.0}
	err = sol.Solve(y, 1, 0, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	chk.Scalar(tst, "y(0)", 1e-6, y[0], 0)
	X := sol.Out.DenseX
	n := len(X)
	chk.Scalar(tst, "first x", 1e-17, X[0], 1)
	chk.Scalar(tst, "last x", 1e-17, X[n-1], 0)
	for i := 1; i < n; i++ {
		if X[i] >= X[i-1] {
			tst.Errorf("dense grid is not monotone decreasing: X[%d]=%v ≥ X[%d]=%v", i, X[i], i-1, X[i-1])
		}
	}
}

func Test_out03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out03. output callback")

	ncalls, nfirst := 0, 0
	conf := NewParams("DoPri5")
	sys := newSystem(tst, 1, xpy, nil, false, 0)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	sol.Out = NewOutput(1)
	sol.Out.Fcn = func(first bool, h, x float64, y []float64, args ...interface{}) error {
		ncalls++
		if first {
			nfirst++
			chk.Scalar(tst, "x @ first", 1e-17, x, 0)
		}
		return nil
	}
	y := []float64{0}
	err = sol.Solve(y, 0, 1, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	st := sol.Stats()
	io.Pforan("ncalls=%d naccepted=%d\n", ncalls, st.Naccepted)
	chk.IntAssert(nfirst, 1)
	chk.IntAssert(ncalls, st.Naccepted+1)
}

func Test_stiff01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stiff01. stiffness detection: van der Pol with DoPri5")

	ε := 3e-3
	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = y[1]
		f[1] = ((1.0-y[0]*y[0])*y[1] - y[0]) / ε
		return nil
	}
	conf := NewParams("DoPri5")
	conf.SetTols(1e-4, 1e-4)
	conf.StiffNstp = 1
	sys := newSystem(tst, 2, fcn, nil, false, 0)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	y := []float64{2.0, 0.0}
	err = sol.Solve(y, 0, 2, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	st := sol.Stats()
	io.Pforan("stiff=%v at step %d\n", st.StiffStep > 0, st.StiffStep)
	if st.StiffStep == 0 {
		tst.Errorf("stiffness was not detected")
		return
	}
	if st.StiffStep < 15 || st.StiffStep > 80 {
		tst.Errorf("stiffness detected at step %d, outside [15,80]", st.StiffStep)
	}
}
