// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
)

// NewtonMethod runs the Newton iterations of one nonlinear solve
type NewtonMethod struct {
	Ctl *NewtonController // controller
	Mdl Model             // model

	uLast  la.Vector // iterate at the beginning of the step
	deltaU la.Vector // Newton correction
}

// NewNewtonMethod returns a new Newton method
func NewNewtonMethod(ctl *NewtonController) *NewtonMethod {
	n := ctl.Mdl.NumDofs() * ctl.Mdl.NumEq()
	return &NewtonMethod{Ctl: ctl, Mdl: ctl.Mdl, uLast: la.NewVector(n), deltaU: la.NewVector(n)}
}

// Execute solves the nonlinear problem starting from u; u holds the last iterate on exit
//
//	Returns Converged or Diverged with nil error, or Failed with the error which stopped
//	the iterations (a *NumericalProblem if the time step may be retried)
func (o *NewtonMethod) Execute(u la.Vector) (status Outcome, err error) {
	ctl := o.Ctl
	asm := o.Mdl.Assembler()
	defer func() {
		if err != nil {
			ctl.Status = Failed
			ctl.Fail()
		}
		status = ctl.Status
	}()

	err = ctl.Begin(u)
	if err != nil {
		return
	}
	for ctl.Proceed() {
		ctl.BeginStep()
		copy(o.uLast, u)

		// linearise
		err = asm.Assemble(o.uLast)
		if err != nil {
			return
		}

		// solve
		o.deltaU.Fill(0)
		err = ctl.SolveLinear(asm.Matrix(), o.deltaU, asm.Residual())
		if err != nil {
			return
		}

		// update
		err = ctl.Update(u, o.uLast, o.deltaU)
		if err != nil {
			return
		}
		ctl.EndStep()
	}

	ctl.End()
	if ctl.Status == Converged {
		ctl.Succeed()
		return
	}
	ctl.Fail()
	return
}
