// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// SolverImplicit ramps the source term over pseudo-time and solves the nonlinear problem
// at each time step with the Newton method
type SolverImplicit struct {
	Dom     *Domain           // domain
	Mdl     *DiffusionModel   // model
	Ctl     *NewtonController // Newton controller
	Newton  *NewtonMethod     // Newton method
	Sum     *Summary          // summary; may be nil
	Verbose bool              // show messages

	// state
	Time    float64 // current time
	Ndiverg int     // number of continued failures
}

// NewSolverImplicit returns a new implicit solver over dom
func NewSolverImplicit(dom *Domain, sum *Summary, verbose bool) (o *SolverImplicit) {
	o = &SolverImplicit{Dom: dom, Sum: sum, Verbose: verbose}
	o.Mdl = NewDiffusionModel(dom)
	o.Ctl = NewNewtonController(&dom.Sim.Newton, dom.Comm, o.Mdl, dom.LinSol, dom.Sim.LinSol.Reduction)
	o.Ctl.ShowR = verbose && dom.Sim.Data.ShowR
	o.Newton = NewNewtonMethod(o.Ctl)
	return
}

// Run runs the time loop up to the final time of the simulation
func (o *SolverImplicit) Run() (err error) {

	// time control
	ctrl := &o.Dom.Sim.Control
	tf := ctrl.Tf
	Δt := ctrl.Dt
	o.Time, o.Ndiverg = 0, 0

	// time loop
	for o.Time < tf {

		// check for continued divergence
		if o.Ndiverg >= ctrl.NdvgMax {
			return chk.Err("continuous divergence after %d steps reached", o.Ndiverg)
		}

		// time increment
		if o.Time+Δt > tf {
			Δt = tf - o.Time
		}
		if Δt < ctrl.DtMin {
			if o.Ndiverg == 0 && o.Time+Δt >= tf {
				break
			}
			return chk.Err("Δt increment is too small: %g < %g", Δt, ctrl.DtMin)
		}
		t := o.Time + Δt

		// message
		if o.Verbose && !o.Ctl.ShowR {
			io.Pf("%30.15f\r", t)
		}

		// solve
		o.Dom.Backup()
		o.Mdl.SetLoad(t / tf)
		status, e := o.Newton.Execute(o.Dom.Sol)
		o.record(t, Δt, status)
		if e != nil && !IsNumericalProblem(e) {
			return chk.Err("Newton method failed at t = %g:\n%v", t, e)
		}

		// restore solution and reduce time step
		if status != Converged {
			if o.Verbose {
				io.Pfred(". . . iterations %s (%2d) . . .\n", status, o.Ndiverg+1)
				if e != nil {
					io.Pfred("%v\n", e)
				}
			}
			o.Dom.Restore()
			Δt *= 0.5
			o.Ndiverg++
			continue
		}

		// next step
		o.Time = t
		o.Ndiverg = 0
		Δt = utl.Min(o.Ctl.SuggestTimeStepSize(Δt), ctrl.DtMax)
	}
	return
}

// record saves the statistics of a step
func (o *SolverImplicit) record(t, Δt float64, status Outcome) {
	if o.Sum == nil {
		return
	}
	o.Sum.Steps = append(o.Sum.Steps, &StepData{
		T:         t,
		Dt:        Δt,
		Status:    status.String(),
		NewtonIts: o.Ctl.State.NumSteps,
		LinIts:    o.Ctl.LinIts,
		Error:     o.Ctl.State.Error,
		AbsError:  o.Ctl.State.AbsoluteError,
	})
}
