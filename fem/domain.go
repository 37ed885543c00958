// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/lsol"
	"github.com/zlicloud/opm-models/part"
)

// EssentialBcs holds the prescribed values of DOFs
type EssentialBcs struct {
	Eqs  []int     // [nbcs] sorted scalar indices of constrained DOFs
	Vals []float64 // [nbcs] prescribed values
}

// Domain holds the elements and the solution of one partition
type Domain struct {

	// init: auxiliary variables
	Distr bool              // distributed/parallel run
	Proc  int               // this processor number
	Nproc int               // number of processors
	Sim   *inp.Simulation   // [from FEM] input data
	Msh   *inp.Mesh         // mesh data
	View  *part.View        // partition of the mesh held by this processor
	Comm  comm.Communicator // communicator

	// elements and equations
	Elems    []Elem        // elements in this processor
	Mdl      *DiffuMdl     // model parameters shared by elements
	NumEq    int           // number of equations per DOF
	Ndofs    int           // number of local DOFs (vertices)
	Ny       int           // length of solution vector == Ndofs * NumEq
	EssenBcs *EssentialBcs // essential boundary conditions

	// solution and backup
	Sol la.Vector // current solution
	bkp la.Vector // solution at the beginning of the time step

	// linear solver
	LinSol *lsol.Backend // distributed linear solver

	// auxiliary
	re []float64 // element residual
}

// NewDomain returns the domain of the processor running c
func NewDomain(sim *inp.Simulation, c comm.Communicator) (o *Domain, err error) {

	// basic data
	o = &Domain{Sim: sim, Msh: sim.Msh, Comm: c}
	o.Proc, o.Nproc = c.Rank(), c.Size()
	o.Distr = o.Nproc > 1
	o.View, err = part.New(sim.Msh, o.Proc, o.Nproc)
	if err != nil {
		return nil, chk.Err("cannot partition mesh:\n%v", err)
	}
	o.NumEq = 1
	o.Ndofs = o.View.NumEntities()
	o.Ny = o.Ndofs * o.NumEq

	// elements
	o.Mdl = &DiffuMdl{K0: sim.Model.K0, Beta: sim.Model.Beta, Source: sim.Model.Source, Load: 1}
	nvmax := 0
	for k, cell := range o.View.Cells {
		x := o.Msh.CellCoords(cell)
		e, err := NewElem("diffu", cell, x, o.View.CellVerts[k], o.Mdl)
		if err != nil {
			return nil, err
		}
		o.Elems = append(o.Elems, e)
		if len(cell.Verts) > nvmax {
			nvmax = len(cell.Verts)
		}
	}
	o.re = make([]float64, nvmax*o.NumEq)

	// essential boundary conditions; the last condition on a vertex wins
	vals := make(map[int]float64)
	for _, bc := range sim.Model.Dirichlet {
		verts, ok := o.Msh.VertTag2verts[bc.Tag]
		if !ok {
			return nil, chk.Err("cannot find vertices with tag = %d for Dirichlet condition", bc.Tag)
		}
		for _, v := range verts {
			if l, ok := o.View.LocalIndex(v.Id); ok {
				vals[l*o.NumEq] = bc.Value
			}
		}
	}
	o.EssenBcs = new(EssentialBcs)
	for eq := range vals {
		o.EssenBcs.Eqs = append(o.EssenBcs.Eqs, eq)
	}
	sort.Ints(o.EssenBcs.Eqs)
	for _, eq := range o.EssenBcs.Eqs {
		o.EssenBcs.Vals = append(o.EssenBcs.Vals, vals[eq])
	}

	// solution and linear solver
	o.Sol = la.NewVector(o.Ny)
	o.bkp = la.NewVector(o.Ny)
	o.LinSol = lsol.NewBackend(c, o.View, &sim.LinSol)
	o.LinSol.SetConstrained(o.EssenBcs.Eqs)
	return
}

// SetIniVals sets the initial solution: zero everywhere but at constrained DOFs
func (o *Domain) SetIniVals() {
	o.Sol.Fill(0)
	o.SetEssentialVals(o.Sol)
}

// SetEssentialVals sets the prescribed values into u
func (o *Domain) SetEssentialVals(u []float64) {
	for k, eq := range o.EssenBcs.Eqs {
		u[eq] = o.EssenBcs.Vals[k]
	}
}

// Backup saves a copy of the solution
func (o *Domain) Backup() { copy(o.bkp, o.Sol) }

// Restore restores the solution from the last backup
func (o *Domain) Restore() { copy(o.Sol, o.bkp) }

// Residual computes the local (additive) residual at u
func (o *Domain) Residual(res, u []float64) (err error) {
	for i := range res {
		res[i] = 0
	}
	for _, e := range o.Elems {
		err = e.Residual(o.re, u)
		if err != nil {
			return
		}
		for m, l := range e.Umap() {
			for r := 0; r < o.NumEq; r++ {
				res[l*o.NumEq+r] += o.re[m*o.NumEq+r]
			}
		}
	}
	return
}

// IsConstrained tells whether the scalar index eq has a prescribed value
func (o *Domain) IsConstrained(eq int) bool {
	k := sort.SearchInts(o.EssenBcs.Eqs, eq)
	return k < len(o.EssenBcs.Eqs) && o.EssenBcs.Eqs[k] == eq
}
