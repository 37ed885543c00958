// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"math"

	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/part"
	"gonum.org/v1/gonum/floats"
)

// LinearOperator computes y = A x
type LinearOperator interface {
	Apply(y, x []float64) error
}

// Operator applies a locally assembled matrix and sums the border values, thus the output
// is consistent on all partitions
type Operator struct {
	A     *bmat.Matrix
	c     comm.Communicator
	iface *comm.Interface
}

// NewOperator returns a new operator
func NewOperator(A *bmat.Matrix, c comm.Communicator, iface *comm.Interface) *Operator {
	return &Operator{A: A, c: c, iface: iface}
}

// Apply computes y = A x
func (o *Operator) Apply(y, x []float64) error {
	o.A.MulVec(y, x)
	return comm.AddExchange(o.c, o.iface, y, o.A.B)
}

// ScalarProduct computes global scalar products of consistent vectors; each DOF counts once,
// at the rank owning it
type ScalarProduct struct {
	c    comm.Communicator
	mask []float64 // 1 at owned DOFs; 0 otherwise
	tmp  []float64
}

// NewScalarProduct returns a new scalar product for vectors with b values per entity
func NewScalarProduct(c comm.Communicator, view *part.View, b int) (o *ScalarProduct) {
	n := view.NumEntities()
	o = &ScalarProduct{c: c, mask: make([]float64, n*b), tmp: make([]float64, n*b)}
	for i := 0; i < n; i++ {
		if view.IsOwner(i) {
			for r := 0; r < b; r++ {
				o.mask[i*b+r] = 1
			}
		}
	}
	return
}

// Dot returns the global dot product x·y
func (o *ScalarProduct) Dot(x, y []float64) float64 {
	floats.MulTo(o.tmp, o.mask, x)
	return o.c.Sum(floats.Dot(o.tmp, y))
}

// Norm returns the global Euclidean norm of x
func (o *ScalarProduct) Norm(x []float64) float64 {
	return math.Sqrt(o.Dot(x, x))
}
