// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem contains the Newton method and the finite element model solved with it
package fem

import (
	"bytes"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/inp"
)

// FEM holds all data for a simulation using the finite element method
type FEM struct {
	Sim     *inp.Simulation   // simulation data
	Summary *Summary          // summary structure
	Domain  *Domain           // domain of this processor
	Solver  *SolverImplicit   // time loop
	Comm    comm.Communicator // communicator
	Nproc   int               // number of processors
	Proc    int               // processor id
	Verbose bool              // show messages
}

// NewFEM returns a new FEM structure
//
//	Input:
//	 sim         -- simulation data; may be shared by processors running in the same process
//	 c           -- communicator
//	 saveSummary -- save summary
//	 verbose     -- show messages
func NewFEM(sim *inp.Simulation, c comm.Communicator, saveSummary, verbose bool) (o *FEM, err error) {
	o = &FEM{Sim: sim, Comm: c}
	o.Proc, o.Nproc = c.Rank(), c.Size()
	o.Verbose = verbose && (o.Proc == 0)
	if saveSummary || sim.Data.Stat {
		o.Summary = new(Summary)
	}
	if o.Verbose && sim.Data.ShowR {
		var buf bytes.Buffer
		if err = sim.GetInfo(&buf); err != nil {
			return nil, chk.Err("cannot format input data:\n%v", err)
		}
		io.Pf("%s\n\n", buf.String())
	}
	o.Domain, err = NewDomain(sim, c)
	if err != nil {
		return nil, chk.Err("cannot allocate domain of processor %d:\n%v", o.Proc, err)
	}
	o.Solver = NewSolverImplicit(o.Domain, o.Summary, o.Verbose)
	return
}

// NewFEMfile reads a simulation file and returns a new FEM structure; it panics on errors
//
//	Input:
//	 simfilepath -- simulation (.sim) filename including full path
//	 alias       -- word to be appended to simulation key; e.g. when running multiple FE solutions
//	 erasePrev   -- erase previous results files
//	 saveSummary -- save summary
//	 verbose     -- show messages
//	 c           -- communicator
func NewFEMfile(simfilepath, alias string, erasePrev, saveSummary, verbose bool, c comm.Communicator) (o *FEM) {
	sim, err := inp.ReadSim(simfilepath, alias, erasePrev && c.Rank() == 0)
	if err != nil {
		chk.Panic("cannot read simulation input data:\n%v", err)
	}
	o, err = NewFEM(sim, c, saveSummary, verbose)
	if err != nil {
		chk.Panic("%v", err)
	}
	return
}

// Run runs FE simulation
func (o *FEM) Run() (err error) {

	// time loop
	cputime := time.Now()
	o.Domain.SetIniVals()
	err = o.Solver.Run()
	if err != nil {
		return
	}

	// message
	if o.Verbose {
		io.Pf("\n\nfinal time = %v\n", o.Solver.Time)
		if o.Summary != nil {
			nstp, nits, nlin := o.Summary.Stat()
			io.Pf("steps      = %d\n", nstp)
			io.Pf("newton its = %d\n", nits)
			io.Pf("linear its = %d\n", nlin)
		}
		io.Pfgreen("cpu time   = %v\n", time.Since(cputime))
	}

	// results
	err = o.Domain.SaveSol(o.Verbose)
	if err != nil {
		return
	}
	err = o.Domain.SaveVtu(o.Verbose)
	if err != nil {
		return
	}
	if o.Summary != nil {
		err = o.Summary.Save(o.Sim.DirOut, o.Sim.Key, o.Sim.EncType, o.Nproc, o.Proc, o.Verbose)
	}
	return
}
