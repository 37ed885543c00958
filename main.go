// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/fem"
)

func main() {

	// catch errors
	mpi.Start()
	defer func() {
		if err := recover(); err != nil {
			if mpi.WorldRank() == 0 {
				io.Pfred("ERROR: %v\n", err)
			}
		}
		mpi.Stop()
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	erasePrev := io.ArgToBool(2, true)
	saveSummary := io.ArgToBool(3, true)
	alias := io.ArgToString(4, "")

	// communicator
	c := comm.New()

	// message
	if c.Rank() == 0 && verbose {
		io.Pf("\nopm-models -- distributed Newton solver for nonlinear diffusion\n\n")
		io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")
		io.Pf("%-24s = %v\n", "filename path", fnamepath)
		io.Pf("%-24s = %v\n", "show messages", verbose)
		io.Pf("%-24s = %v\n", "erase previous results", erasePrev)
		io.Pf("%-24s = %v\n", "save summary", saveSummary)
		io.Pf("%-24s = %v\n", "word to add to results", alias)
		io.Pf("%-24s = %v\n\n", "number of processors", c.Size())
	}

	// analysis data
	analysis := fem.NewFEMfile(fnamepath, alias, erasePrev, saveSummary, verbose, c)

	// run simulation
	err := analysis.Run()
	if err != nil {
		chk.Panic("Run failed:\n%v", err)
	}
}
