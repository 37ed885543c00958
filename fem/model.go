// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/lsol"
)

// Model defines the discretised problem seen by the Newton controller
type Model interface {
	NumEq() int                                         // number of equations per DOF
	NumDofs() int                                       // number of local DOFs (vertices)
	RelativeErrorDof(i int, pv1, pv2 []float64) float64 // relative difference between two values of DOF i
	Assembler() Assembler                               // linearisation
	GlobalResidual(res, u []float64) (float64, error)   // computes the residual at u; returns its global norm
}

// Assembler linearises the model around an iterate
//
//	The matrix is local to the partition (additive) whereas the residual is consistent.
type Assembler interface {
	Assemble(u []float64) error            // computes matrix and residual at u
	Matrix() *bmat.Matrix                  // the Jacobian matrix
	Residual() la.Vector                   // the residual vector
	ReassembleAll()                        // next Assemble recomputes everything
	UpdateDiscrepancy(u, deltaU []float64) // accumulates how far DOFs moved since they were linearised
	ComputeColors(tol float64) error       // selects what is reassembled next
	SetMatrixReusable(reusable bool)       // next Assemble may keep the current matrix
	Constrained() []int                    // scalar indices of DOFs with prescribed values
}

// LinearSolver solves the linear system of one Newton step
type LinearSolver interface {
	Solve(A *bmat.Matrix, z, r []float64, reduction float64) (lsol.Result, error)
}

// DiffusionModel implements Model for the nonlinear diffusion equation
//
//	-div(k(u) grad(u)) = load * s    with    k(u) = k0 (1 + β u²)
type DiffusionModel struct {
	Dom *Domain            // domain
	Asm *JacobianAssembler // assembler
}

// NewDiffusionModel returns a new model over dom
func NewDiffusionModel(dom *Domain) (o *DiffusionModel) {
	o = &DiffusionModel{Dom: dom}
	o.Asm = NewJacobianAssembler(dom, o.RelativeErrorDof)
	return
}

// NumEq returns the number of equations per DOF
func (o *DiffusionModel) NumEq() int { return o.Dom.NumEq }

// NumDofs returns the number of local DOFs
func (o *DiffusionModel) NumDofs() int { return o.Dom.Ndofs }

// Assembler returns the assembler
func (o *DiffusionModel) Assembler() Assembler { return o.Asm }

// SetLoad sets the fraction of the source term applied
func (o *DiffusionModel) SetLoad(load float64) { o.Dom.Mdl.Load = load }

// RelativeErrorDof returns max_r |pv1[r]-pv2[r]| / max(1, |pv1[r]+pv2[r]|/2)
func (o *DiffusionModel) RelativeErrorDof(i int, pv1, pv2 []float64) (res float64) {
	for r := 0; r < len(pv1); r++ {
		den := utl.Max(1.0, math.Abs(pv1[r]+pv2[r])/2.0)
		res = utl.Max(res, math.Abs(pv1[r]-pv2[r])/den)
	}
	return
}

// GlobalResidual computes the local (additive) residual at u into res and returns
// the norm of the global residual. Constrained DOFs do not contribute
func (o *DiffusionModel) GlobalResidual(res, u []float64) (float64, error) {
	err := o.Dom.Residual(res, u)
	if err != nil {
		return 0, err
	}
	for _, eq := range o.Dom.EssenBcs.Eqs {
		res[eq] = 0
	}
	return o.Dom.LinSol.Norm(res)
}
