// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/part"
)

// Backend solves linear systems assembled on non-overlapping partitions
//
//	The matrix is kept local to each partition (additive); right-hand sides and solutions are
//	consistent, i.e. border DOFs hold the same value on all sharers
type Backend struct {
	Comm      comm.Communicator // communicator
	View      *part.View        // partition view
	Reg       *Registry         // border DOFs
	Exchanger *Exchanger        // matrix entries exchanger
	Dat       *inp.LinSolData   // configuration
	Verbose   int               // verbosity level; 0 on all ranks but the root

	constrained []int  // scalar indices of constrained DOFs
	last        Result // statistics of last solve
}

// NewBackend returns a new linear solver backend
func NewBackend(c comm.Communicator, view *part.View, dat *inp.LinSolData) (o *Backend) {
	o = &Backend{Comm: c, View: view, Dat: dat}
	o.Reg = NewRegistry(view)
	o.Exchanger = NewExchanger(c, view, o.Reg)
	if c.Rank() == 0 {
		o.Verbose = dat.Verbose
	}
	return
}

// SetConstrained sets the scalar indices of DOFs with prescribed values
func (o *Backend) SetConstrained(idx []int) {
	o.constrained = idx
}

// Solve solves A z = r where A is the local matrix and r is consistent
//
//	Note: z holds the initial guess on input and is consistent on output
func (o *Backend) Solve(A *bmat.Matrix, z, r []float64, reduction float64) (res Result, err error) {

	// sum border rows for the preconditioner only; the operator uses A
	B := A.Clone()
	skipped, err := o.Exchanger.SumEntries(B)
	if err != nil {
		return
	}
	if skipped > 0 && o.Verbose > 1 {
		io.Pfyel("%d border entries are not in the local pattern\n", skipped)
	}

	// sequential preconditioner; failures must be agreed upon to keep ranks in step
	seq, err := bmat.NewPreconditioner(o.Dat.Precond, B, o.Dat.Relax)
	failed := 0.0
	if err != nil {
		failed = 1
	}
	if o.Comm.Max(failed) > 0 {
		if err == nil {
			err = chk.Err("preconditioner failed on another rank")
		}
		return res, chk.Err("cannot compute preconditioner:\n%v", err)
	}

	// solver
	iface := o.View.Interface()
	solver := &BiCGStab{
		Op:        NewOperator(A, o.Comm, iface),
		Prec:      NewWrappedPreconditioner(seq, o.Comm, iface, o.Reg, A.B, o.constrained),
		Sp:        NewScalarProduct(o.Comm, o.View, A.B),
		Reduction: reduction,
		MaxIt:     o.Dat.MaxIt,
		Verbose:   o.Verbose,
	}
	rhs := la.NewVector(len(r))
	copy(rhs, r)
	res, err = solver.Solve(z, rhs)
	if err != nil {
		return
	}
	o.last = res

	// take the owner's value at border DOFs
	err = o.ownerValues(z, A.B)
	return
}

// Norm returns the global norm of an additive vector; v is not modified
func (o *Backend) Norm(v []float64) (float64, error) {
	b := len(v) / max(o.View.NumEntities(), 1)
	w := la.NewVector(len(v))
	copy(w, v)
	err := comm.AddExchange(o.Comm, o.View.Interface(), w, b)
	if err != nil {
		return 0, err
	}
	return NewScalarProduct(o.Comm, o.View, b).Norm(w), nil
}

// LastResult returns the statistics of the last solve
func (o *Backend) LastResult() Result { return o.last }

// ownerValues overwrites border values by the ones computed at the owner rank
func (o *Backend) ownerValues(z []float64, b int) error {
	if o.Comm.Size() == 1 {
		return nil
	}
	for _, i := range o.Reg.BorderIndices() {
		if !o.View.IsOwner(i) {
			for r := 0; r < b; r++ {
				z[i*b+r] = 0
			}
		}
	}
	return comm.AddExchange(o.Comm, o.View.Interface(), z, b)
}
