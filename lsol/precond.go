// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"github.com/cpmech/gosl/chk"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
)

// WrappedPreconditioner applies a sequential preconditioner on each partition and combines the
// results over the border
//
//	Note: the border values are averaged by halving them, which is exact only when every border
//	      DOF is shared by two partitions
type WrappedPreconditioner struct {
	seq         bmat.Preconditioner
	c           comm.Communicator
	iface       *comm.Interface
	reg         *Registry
	b           int   // block size
	constrained []int // scalar indices of constrained DOFs
	dd          []float64
}

// NewWrappedPreconditioner returns a new wrapped preconditioner
func NewWrappedPreconditioner(seq bmat.Preconditioner, c comm.Communicator, iface *comm.Interface, reg *Registry, b int, constrained []int) *WrappedPreconditioner {
	return &WrappedPreconditioner{seq: seq, c: c, iface: iface, reg: reg, b: b, constrained: constrained}
}

// Apply computes v ≈ M⁻¹ d
func (o *WrappedPreconditioner) Apply(v, d []float64) (err error) {

	// defect without constrained DOFs
	if len(o.dd) != len(d) {
		o.dd = make([]float64, len(d))
	}
	copy(o.dd, d)
	for _, k := range o.constrained {
		o.dd[k] = 0
	}

	// local correction
	err = o.seq.Apply(v, o.dd)
	if err != nil {
		return chk.Err("sequential preconditioner failed:\n%v", err)
	}

	// sum over sharers
	if o.c.Size() > 1 {
		err = comm.AddExchange(o.c, o.iface, v, o.b)
		if err != nil {
			return
		}
	}

	// average border values
	for _, i := range o.reg.BorderIndices() {
		for r := 0; r < o.b; r++ {
			v[i*o.b+r] *= 0.5
		}
	}
	return
}
