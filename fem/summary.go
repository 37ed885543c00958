// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// StepData holds the statistics of one time step, accepted or not
type StepData struct {
	T         float64 // time at the end of the step
	Dt        float64 // time step size
	Status    string  // outcome of the Newton method
	NewtonIts int     // number of Newton iterations
	LinIts    int     // number of linear iterations over all Newton iterations
	Error     float64 // last relative error
	AbsError  float64 // last absolute error
}

// Summary records summary of outputs
type Summary struct {
	Nproc  int         // number of processors used in last run; equal to 1 if not distributed
	Dirout string      // directory where results are stored
	Fnkey  string      // filename key of simulation
	Steps  []*StepData // all time steps
}

// Stat returns the number of accepted steps and the total numbers of Newton and linear iterations
func (o *Summary) Stat() (nsteps, newtonIts, linIts int) {
	for _, s := range o.Steps {
		if s.Status == Converged.String() {
			nsteps++
		}
		newtonIts += s.NewtonIts
		linIts += s.LinIts
	}
	return
}

// Save saves summary to disc; only the root processor writes
func (o *Summary) Save(dirout, fnkey, enctype string, nproc, proc int, verbose bool) (err error) {

	// set flags before saving
	o.Nproc = nproc
	o.Dirout = dirout
	o.Fnkey = fnkey

	// skip if not root
	if proc != 0 {
		return
	}

	// encode summary
	var buf bytes.Buffer
	enc := GetEncoder(&buf, enctype)
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary:\n%v", err)
	}

	// save file
	fn := out_sum_path(dirout, fnkey, enctype, proc)
	return save_file(fn, &buf, verbose)
}

// Read reads summary back
func (o *Summary) Read(dir, fnkey, enctype string) (err error) {

	// open file
	fn := out_sum_path(dir, fnkey, enctype, 0) // reading always from proc # 0
	fil, err := os.Open(fn)
	if err != nil {
		return
	}
	defer func() {
		if e := fil.Close(); err == nil {
			err = e
		}
	}()

	// decode summary
	dec := GetDecoder(fil, enctype)
	err = dec.Decode(o)
	if err != nil {
		return chk.Err("cannot decode summary:\n%v", err)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func out_sum_path(dir, fnkey, enctype string, proc int) string {
	return path.Join(dir, io.Sf("%s_p%d_sum.%s", fnkey, proc, enctype))
}
