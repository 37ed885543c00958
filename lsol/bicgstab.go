// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/zlicloud/opm-models/bmat"
	"gonum.org/v1/gonum/floats"
)

// EPSILON is the threshold below which BiCGSTAB coefficients indicate a breakdown
const EPSILON = 1e-80

// ErrBreakdown is returned when BiCGSTAB cannot proceed
var ErrBreakdown = errors.New("breakdown in BiCGSTAB")

// Result holds the statistics of a linear solve
type Result struct {
	Converged  bool          // reduction reached
	Iterations int           // number of iterations; half steps are rounded up
	Elapsed    time.Duration // wall time
	Reduction  float64       // ‖r‖ / ‖r0‖
	ConvRate   float64       // average reduction per iteration
}

// Dotter computes global scalar products
type Dotter interface {
	Dot(x, y []float64) float64
	Norm(x []float64) float64
}

// BiCGStab implements the preconditioned stabilised bi-conjugate gradient method
type BiCGStab struct {
	Op        LinearOperator      // operator
	Prec      bmat.Preconditioner // preconditioner
	Sp        Dotter              // scalar product
	Reduction float64             // residual reduction to be reached
	MaxIt     int                 // maximum number of iterations
	Verbose   int                 // 0: silent; 1: summary; 2: all iterations
}

// Solve solves A x = b starting from x; b is overwritten with the final residual
func (o *BiCGStab) Solve(x, b []float64) (res Result, err error) {

	// auxiliary
	n := len(x)
	p, v, t, y := la.NewVector(n), la.NewVector(n), la.NewVector(n), la.NewVector(n)
	r := b
	watch := time.Now()

	// r = b - A x
	err = o.Op.Apply(t, x)
	if err != nil {
		return
	}
	floats.Sub(r, t)
	rt := la.NewVector(n)
	copy(rt, r)

	// initial norm
	norm := o.Sp.Norm(r)
	norm0 := norm
	if o.Verbose > 0 {
		io.Pf("=== BiCGSTAB\n")
		io.Pf("%5s%16s%16s\n", "Iter", "Defect", "Rate")
		io.Pf("%5g%16.6e\n", 0.0, norm)
	}
	if norm < 1e-30 {
		res.Converged = true
		res.Elapsed = time.Since(watch)
		return
	}

	// iterations
	rho, alpha, omega := 1.0, 1.0, 1.0
	normOld := norm
	var it float64
	for it = 0.5; it < float64(o.MaxIt); it += 0.5 {

		// check breakdown
		rhoNew := o.Sp.Dot(rt, r)
		if math.Abs(rho) <= EPSILON {
			return res, fmt.Errorf("%w: rho = %g after %g iterations", ErrBreakdown, rho, it)
		}
		if math.Abs(omega) <= EPSILON {
			return res, fmt.Errorf("%w: omega = %g after %g iterations", ErrBreakdown, omega, it)
		}

		// search direction
		if it < 1 {
			copy(p, r)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			floats.AddScaled(p, -omega, v)
			floats.Scale(beta, p)
			floats.Add(p, r)
		}

		// y = M⁻¹ p ; v = A y
		y.Fill(0)
		if err = o.Prec.Apply(y, p); err != nil {
			return
		}
		if err = o.Op.Apply(v, y); err != nil {
			return
		}

		// first correction
		h := o.Sp.Dot(rt, v)
		if math.Abs(h) < EPSILON {
			return res, fmt.Errorf("%w: h = %g after %g iterations", ErrBreakdown, h, it)
		}
		alpha = rhoNew / h
		floats.AddScaled(x, alpha, y)
		floats.AddScaled(r, -alpha, v)
		norm = o.Sp.Norm(r)
		if o.Verbose > 1 {
			io.Pf("%5g%16.6e%16.6e\n", it, norm, norm/normOld)
		}
		if norm < o.Reduction*norm0 {
			break
		}
		it += 0.5
		normOld = norm

		// y = M⁻¹ r ; t = A y
		y.Fill(0)
		if err = o.Prec.Apply(y, r); err != nil {
			return
		}
		if err = o.Op.Apply(t, y); err != nil {
			return
		}

		// second correction
		omega = o.Sp.Dot(t, r) / o.Sp.Dot(t, t)
		floats.AddScaled(x, omega, y)
		floats.AddScaled(r, -omega, t)
		rho = rhoNew
		norm = o.Sp.Norm(r)
		if o.Verbose > 1 {
			io.Pf("%5g%16.6e%16.6e\n", it, norm, norm/normOld)
		}
		if norm < o.Reduction*norm0 {
			break
		}
		normOld = norm
	}

	// results
	if it > float64(o.MaxIt) {
		it = float64(o.MaxIt)
	}
	res.Elapsed = time.Since(watch)
	res.Iterations = int(math.Ceil(it))
	res.Reduction = norm / norm0
	res.ConvRate = math.Pow(res.Reduction, 1.0/it)
	res.Converged = norm < o.Reduction*norm0
	if o.Verbose > 0 {
		io.Pf("=== rate=%g, T=%v, TIT=%v, IT=%d\n", res.ConvRate, res.Elapsed, res.Elapsed/time.Duration(max(res.Iterations, 1)), res.Iterations)
	}
	return
}
