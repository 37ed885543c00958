// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/lsol"
	"gonum.org/v1/gonum/floats"
)

// Outcome holds the state of a nonlinear solve
type Outcome int

const (
	Idle Outcome = iota
	Iterating
	Converged
	Diverged
	Failed
)

// String returns the name of the outcome
func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ConvergenceState holds the errors of the current nonlinear solve
type ConvergenceState struct {
	Error             float64 // relative error of the last update
	LastError         float64 // relative error at the beginning of the step
	AbsoluteError     float64 // norm of the residual at the current iterate
	LastAbsoluteError float64 // norm of the residual at the beginning of the step
	NumSteps          int     // number of completed steps
}

// ReassembleTolerance returns the tolerance for partial reassembly: clamp(err², min, max)
func ReassembleTolerance(err, minTol, maxTol float64) float64 {
	return utl.Min(utl.Max(err*err, minTol), maxTol)
}

// NewtonController decides how Newton iterations proceed, update the iterate and converge
type NewtonController struct {

	// input
	Dat       *inp.NewtonData   // configuration
	Comm      comm.Communicator // communicator
	Mdl       Model             // model
	LinSol    LinearSolver      // linear solver
	Reduction float64           // residual reduction required from the linear solver
	ShowR     bool              // print errors at each step

	// state
	Status Outcome          // outcome of the current or last solve
	State  ConvergenceState // errors
	Lambda float64          // damping factor of the last update
	Trials int              // number of line search trials of the last update
	LinIts int              // linear iterations accumulated in the current solve
	LinRes lsol.Result      // statistics of the last linear solve

	// auxiliary
	res la.Vector // residual used in line search and absolute errors
	pv  []float64 // primary variables of one DOF
}

// NewNewtonController returns a new controller
func NewNewtonController(dat *inp.NewtonData, c comm.Communicator, mdl Model, ls LinearSolver, reduction float64) (o *NewtonController) {
	o = &NewtonController{Dat: dat, Comm: c, Mdl: mdl, LinSol: ls, Reduction: reduction}
	o.res = la.NewVector(mdl.NumDofs() * mdl.NumEq())
	o.pv = make([]float64, mdl.NumEq())
	return
}

// Begin resets the state before a nonlinear solve starting at u
func (o *NewtonController) Begin(u []float64) (err error) {
	o.Status = Iterating
	o.State = ConvergenceState{}
	o.Lambda, o.Trials, o.LinIts = 1, 0, 0
	if o.Dat.EnableAbs || o.Dat.LineSearch {
		o.State.AbsoluteError, err = o.Mdl.GlobalResidual(o.res, u)
		if err != nil {
			return chk.Err("cannot compute initial residual:\n%v", err)
		}
		o.State.LastAbsoluteError = o.State.AbsoluteError
	}
	if o.ShowR {
		io.Pf("\n%4s%23s%23s%8s%8s\n", "it", "error", "absolute error", "lambda", "linits")
	}
	return
}

// Proceed tells whether another step must be performed
func (o *NewtonController) Proceed() bool {
	if o.State.NumSteps < 2 {
		return true
	}
	if o.Converged() {
		return false
	}
	return o.State.NumSteps < o.Dat.NmaxIt
}

// BeginStep saves the errors of the previous step
func (o *NewtonController) BeginStep() {
	o.State.LastError = o.State.Error
	o.State.LastAbsoluteError = o.State.AbsoluteError
}

// SolveLinear solves A x = b. A linear solver that does not reach the required
// reduction makes the nonlinear solve fail
func (o *NewtonController) SolveLinear(A *bmat.Matrix, x, b []float64) (err error) {
	o.LinRes, err = o.LinSol.Solve(A, x, b, o.Reduction)
	o.LinIts += o.LinRes.Iterations
	if err != nil {
		if errors.Is(err, lsol.ErrBreakdown) {
			return numericalProblem(err, "linear solver broke down")
		}
		return chk.Err("linear solver failed:\n%v", err)
	}
	converged := 0.0
	if o.LinRes.Converged {
		converged = 1
	}
	if o.Comm.Min(converged) < 1 {
		return numericalProblem(nil, "linear solver did not converge after %d iterations (reduction = %g)", o.LinRes.Iterations, o.LinRes.Reduction)
	}
	return
}

// Update computes the new iterate uCurrent from uLast and the Newton correction deltaU
func (o *NewtonController) Update(uCurrent, uLast, deltaU []float64) (err error) {

	// all ranks must agree on invalid corrections
	bad := 0.0
	nrm2 := floats.Dot(deltaU, deltaU)
	if math.IsNaN(nrm2) || math.IsInf(nrm2, 0) {
		bad = 1
	}
	if o.Comm.Max(bad) > 0 {
		return numericalProblem(nil, "Newton correction is not finite")
	}

	// select what to reassemble in the next step
	if o.Dat.PartialReasm {
		asm := o.Mdl.Assembler()
		tol := ReassembleTolerance(o.State.Error, o.Dat.MinReasmTol, o.Dat.MaxReasmTol)
		asm.UpdateDiscrepancy(uLast, deltaU)
		err = asm.ComputeColors(tol)
		if err != nil {
			return
		}
	}

	// new iterate
	if o.Dat.LineSearch {
		err = o.lineSearchUpdate(uCurrent, uLast, deltaU)
	} else {
		floats.SubTo(uCurrent, uLast, deltaU)
		o.Lambda, o.Trials = 1, 1
	}
	if err != nil {
		return
	}

	// errors
	err = o.UpdateRelError(uLast, deltaU)
	if err != nil {
		return
	}
	return o.UpdateAbsError(uCurrent)
}

// UpdateRelError computes the largest relative change over all DOFs of all ranks
func (o *NewtonController) UpdateRelError(uLast, deltaU []float64) error {
	neq := o.Mdl.NumEq()
	maxErr := 0.0
	for i := 0; i < o.Mdl.NumDofs(); i++ {
		pv1 := uLast[i*neq : (i+1)*neq]
		for r := 0; r < neq; r++ {
			o.pv[r] = pv1[r] - deltaU[i*neq+r]
		}
		maxErr = utl.Max(maxErr, o.Mdl.RelativeErrorDof(i, pv1, o.pv))
	}
	o.State.Error = o.Comm.Max(maxErr)
	if o.State.Error > o.Dat.MaxRelErr {
		return numericalProblem(nil, "relative error %g exceeds maximum %g", o.State.Error, o.Dat.MaxRelErr)
	}
	return nil
}

// UpdateAbsError computes the norm of the residual at u if required by the convergence
// check. The line search has already done so
func (o *NewtonController) UpdateAbsError(u []float64) (err error) {
	if !o.Dat.EnableAbs || o.Dat.LineSearch {
		return
	}
	o.State.AbsoluteError, err = o.Mdl.GlobalResidual(o.res, u)
	return
}

// EndStep finishes a step
func (o *NewtonController) EndStep() {
	o.State.NumSteps++
	if o.ShowR {
		io.Pf("%4d%23.15e%23.15e%8.4f%8d\n", o.State.NumSteps, o.State.Error, o.State.AbsoluteError, o.Lambda, o.LinRes.Iterations)
	}
}

// Converged tells whether the enabled criteria are satisfied
func (o *NewtonController) Converged() bool {
	if o.Dat.EnableRel && o.State.Error > o.Dat.Rtol {
		return false
	}
	if o.Dat.EnableAbs && o.State.AbsoluteError > o.Dat.Atol {
		return false
	}
	return true
}

// End sets the final status of a nonlinear solve which ran out of steps or converged
func (o *NewtonController) End() {
	if o.Converged() {
		o.Status = Converged
		return
	}
	o.Status = Diverged
}

// Fail is called after an unsuccessful solve
func (o *NewtonController) Fail() {
	o.Mdl.Assembler().ReassembleAll()
}

// Succeed is called after a successful solve
func (o *NewtonController) Succeed() {
	asm := o.Mdl.Assembler()
	if o.Dat.JacRecycling {
		asm.SetMatrixReusable(true)
		return
	}
	asm.ReassembleAll()
}

// SuggestTimeStepSize returns the next time step size given the number of steps of the last solve
func (o *NewtonController) SuggestTimeStepSize(oldDt float64) float64 {
	n := float64(o.State.NumSteps)
	t := float64(o.Dat.NtargetIt)
	if n > t {
		return oldDt / (1.0 + (n-t)/t)
	}
	return oldDt * (1.0 + ((t-n)/t)/1.2)
}

// lineSearchUpdate halves the correction until the residual decreases; at most 4 trials
func (o *NewtonController) lineSearchUpdate(uCurrent, uLast, deltaU []float64) (err error) {
	lambda := 1.0
	for trial := 1; ; trial++ {
		copy(uCurrent, uLast)
		floats.AddScaled(uCurrent, -lambda, deltaU)
		o.State.AbsoluteError, err = o.Mdl.GlobalResidual(o.res, uCurrent)
		if err != nil {
			return
		}
		if o.State.AbsoluteError < o.State.LastAbsoluteError || lambda <= 1.0/8.0 {
			o.Lambda, o.Trials = lambda, trial
			return
		}
		lambda /= 2.0
	}
}
