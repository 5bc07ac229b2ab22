// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ode

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

func Test_radau501(tst *testing.T) {

	//verbose()
	chk.PrintTitle("radau501. DAE with mass matrix")

	// three-equation system with analytical solution
	//   y = [cos(x), -sin(x), ln(1+x)]
	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = -y[0] + y[1]
		f[1] = y[0] + y[1]
		f[2] = 1.0 / (1.0 + x)
		return nil
	}
	jac := func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error {
		dfdy.Start()
		dfdy.Put(0, 0, m*(-1.0))
		dfdy.Put(0, 1, m*(1.0))
		dfdy.Put(1, 0, m*(1.0))
		dfdy.Put(1, 1, m*(1.0))
		return nil
	}
	sys := newSystem(tst, 3, fcn, jac, true, 4)
	sys.InitMassMatrix(5)
	sys.MassPut(0, 0, 1.0)
	sys.MassPut(0, 1, 1.0)
	sys.MassPut(1, 0, 1.0)
	sys.MassPut(1, 1, -1.0)
	sys.MassPut(2, 2, 1.0)

	conf := NewParams("Radau5")
	conf.SetTols(1e-4, 1e-4)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	y := []float64{1.0, 0.0, 0.0}
	x1 := 20.0
	err = sol.Solve(y, 0, x1, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	yana := []float64{math.Cos(x1), -math.Sin(x1), math.Log(1.0 + x1)}
	io.Pforan("y     = %v\n", y)
	io.Pforan("y_ana = %v\n", yana)
	chk.Vector(tst, "y", 1e-4, y, yana)
	st := sol.Stats()
	if chk.Verbose {
		st.Print()
	}
	if st.Ndecomp > 20 {
		tst.Errorf("too many factorisations: %d > 20", st.Ndecomp)
	}
}

func Test_radau502(tst *testing.T) {

	//verbose()
	chk.PrintTitle("radau502. Robertson's problem")

	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = -0.04*y[0] + 1e4*y[1]*y[2]
		f[1] = 0.04*y[0] - 1e4*y[1]*y[2] - 3e7*y[1]*y[1]
		f[2] = 3e7 * y[1] * y[1]
		return nil
	}
	jac := func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error {
		dfdy.Start()
		dfdy.Put(0, 0, m*(-0.04))
		dfdy.Put(0, 1, m*(1e4*y[2]))
		dfdy.Put(0, 2, m*(1e4*y[1]))
		dfdy.Put(1, 0, m*(0.04))
		dfdy.Put(1, 1, m*(-1e4*y[2]-6e7*y[1]))
		dfdy.Put(1, 2, m*(-1e4*y[1]))
		dfdy.Put(2, 1, m*(6e7*y[1]))
		return nil
	}
	sys := newSystem(tst, 3, fcn, jac, true, 7)
	conf := NewParams("Radau5")
	conf.SetTols(1e-6, 1e-3)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	y := []float64{1.0, 0.0, 0.0}
	err = sol.Solve(y, 0, 0.3, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	io.Pforan("y(0.3) = %v\n", y)
	st := sol.Stats()
	if chk.Verbose {
		st.Print()
	}
	if st.Naccepted > 30 {
		tst.Errorf("too many accepted steps: %d > 30", st.Naccepted)
	}
	chk.Scalar(tst, "y0", 1e-3, y[0], 0.98867)
	chk.Scalar(tst, "y1", 1e-3, y[1], 3.4477e-5)
	chk.Scalar(tst, "y2", 1e-3, y[2], 0.011290)
	chk.Scalar(tst, "Σy", 1e-12, y[0]+y[1]+y[2], 1.0)
}

func Test_radau503(tst *testing.T) {

	//verbose()
	chk.PrintTitle("radau503. van der Pol with small ε")

	ε := 1e-3
	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = y[1]
		f[1] = ((1.0-y[0]*y[0])*y[1] - y[0]) / ε
		return nil
	}
	jac := func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error {
		dfdy.Start()
		dfdy.Put(0, 1, m*(1.0))
		dfdy.Put(1, 0, m*((-2.0*y[0]*y[1]-1.0)/ε))
		dfdy.Put(1, 1, m*((1.0-y[0]*y[0])/ε))
		return nil
	}
	sys := newSystem(tst, 2, fcn, jac, true, 3)
	conf := NewParams("Radau5")
	conf.SetTols(1e-5, 1e-5)
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
	if chk.Verbose {
		st.Print()
	}
	io.Pforan("y(2) = %v\n", y)
	if st.Njeval < 1 {
		tst.Errorf("at least one Jacobian evaluation was expected")
	}
	if st.Nitmax > conf.NmaxIt {
		tst.Errorf("Newton iterations %d exceeded the maximum %d", st.Nitmax, conf.NmaxIt)
	}
}

func Test_radau504(tst *testing.T) {

	//verbose()
	chk.PrintTitle("radau504. identity mass matrix equivalence")

	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = -y[1]
		f[1] = y[0]
		return nil
	}
	jac := func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error {
		dfdy.Start()
		dfdy.Put(0, 1, m*(-1.0))
		dfdy.Put(1, 0, m*(1.0))
		return nil
	}

	// without mass matrix
	sysa := newSystem(tst, 2, fcn, jac, true, 2)
	confa := NewParams("Radau5")
	confa.SetTols(1e-6, 1e-6)
	sola, err := NewSolver(confa, sysa)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	ya := []float64{1.0, 0.0}
	err = sola.Solve(ya, 0, 1, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}

	// with an explicit identity mass matrix
	sysb := newSystem(tst, 2, fcn, jac, true, 2)
	sysb.InitMassMatrix(2)
	sysb.MassPut(0, 0, 1.0)
	sysb.MassPut(1, 1, 1.0)
	confb := NewParams("Radau5")
	confb.SetTols(1e-6, 1e-6)
	solb, err := NewSolver(confb, sysb)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	yb := []float64{1.0, 0.0}
	err = solb.Solve(yb, 0, 1, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}

	io.Pforan("ya = %v\nyb = %v\n", ya, yb)
	chk.Vector(tst, "ya == yb", 1e-15, ya, yb)
	sa, sb := sola.Stats(), solb.Stats()
	chk.IntAssert(sa.Naccepted, sb.Naccepted)
	chk.IntAssert(sa.Nfeval, sb.Nfeval)
}

func Test_radau505(tst *testing.T) {

	//verbose()
	chk.PrintTitle("radau505. dense output endpoints")

	fcn := func(f []float64, x float64, y []float64, args ...interface{}) error {
		f[0] = -y[0]
		return nil
	}
	jac := func(dfdy *la.Triplet, x float64, y []float64, m float64, args ...interface{}) error {
		dfdy.Start()
		dfdy.Put(0, 0, m*(-1.0))
		return nil
	}
	sys := newSystem(tst, 1, fcn, jac, true, 1)
	conf := NewParams("Radau5")
	conf.SetTols(1e-6, 1e-6)
	sol, err := NewSolver(conf, sys)
	if err != nil {
		tst.Errorf("NewSolver failed: %v", err)
		return
	}
	sol.Out = NewOutput(1)
	err = sol.Out.EnableDense(0.2, nil)
	if err != nil {
		tst.Errorf("EnableDense failed: %v", err)
		return
	}
	y := []float64{1.0}
	err = sol.Solve(y, 0, 2, 0, false)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	X := sol.Out.DenseX
	Y := sol.Out.DenseY[0]
	n := len(X)
	chk.Scalar(tst, "first x", 1e-17, X[0], 0)
	chk.Scalar(tst, "first y", 1e-17, Y[0], 1)
	chk.Scalar(tst, "last x", 1e-17, X[n-1], 2)
	chk.Scalar(tst, "last y", 1e-17, Y[n-1], y[0])
	for i := 0; i < n; i++ {
		chk.Scalar(tst, io.Sf("y(%5.2f)", X[i]), 1e-4, Y[i], math.Exp(-X[i]))
	}
}
