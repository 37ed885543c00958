// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/lsol"
)

func verbose() {
	chk.Verbose = true
}

// readSim reads a simulation file and regenerates its mesh with nparts strips
func readSim(fn string, nparts int, tri bool) (*inp.Simulation, error) {
	sim, err := inp.ReadSim(fn, "", false)
	if err != nil {
		return nil, err
	}
	sim.GenMesh.Nparts = nparts
	sim.GenMesh.Tri = tri
	sim.Msh, err = inp.GenMesh(sim.GenMesh)
	return sim, err
}

// solution maps global ids to values
type solution map[int64]float64

// collect returns the solution of a domain keyed by global id
func collect(dom *Domain) solution {
	res := make(solution)
	for i, e := range dom.View.Entities {
		res[e.Global] = dom.Sol[i]
	}
	return res
}

// fakeAsm records the calls made by the Newton controller
type fakeAsm struct {
	A         *bmat.Matrix
	R         la.Vector
	nReasm    int     // calls to ReassembleAll
	nDiscrep  int     // calls to UpdateDiscrepancy
	nColors   int     // calls to ComputeColors
	tol       float64 // last tolerance given to ComputeColors
	reusable  bool    // last value given to SetMatrixReusable
	nAssemble int     // calls to Assemble
}

func newFakeAsm(n int) *fakeAsm {
	p := bmat.NewPattern(n)
	A := p.Build(1)
	for i := 0; i < n; i++ {
		A.SetIdentityRow(i, 0)
	}
	return &fakeAsm{A: A, R: la.NewVector(n)}
}

func (o *fakeAsm) Assemble(u []float64) error {
	o.nAssemble++
	for i := range o.R {
		o.R[i] = u[i] - 1
	}
	return nil
}
func (o *fakeAsm) Matrix() *bmat.Matrix                  { return o.A }
func (o *fakeAsm) Residual() la.Vector                   { return o.R }
func (o *fakeAsm) ReassembleAll()                        { o.nReasm++ }
func (o *fakeAsm) UpdateDiscrepancy(u, deltaU []float64) { o.nDiscrep++ }
func (o *fakeAsm) ComputeColors(tol float64) error       { o.nColors++; o.tol = tol; return nil }
func (o *fakeAsm) SetMatrixReusable(reusable bool)       { o.reusable = reusable }
func (o *fakeAsm) Constrained() []int                    { return nil }

// fakeModel has one equation per DOF; its residual norms are given by a callback
type fakeModel struct {
	n     int
	asm   *fakeAsm
	resid func(u []float64) float64
	calls int // calls to GlobalResidual
}

func newFakeModel(n int, resid func(u []float64) float64) *fakeModel {
	return &fakeModel{n: n, asm: newFakeAsm(n), resid: resid}
}

func (o *fakeModel) NumEq() int           { return 1 }
func (o *fakeModel) NumDofs() int         { return o.n }
func (o *fakeModel) Assembler() Assembler { return o.asm }
func (o *fakeModel) RelativeErrorDof(i int, pv1, pv2 []float64) float64 {
	return math.Abs(pv1[0]-pv2[0]) / math.Max(1, math.Abs(pv1[0]+pv2[0])/2)
}
func (o *fakeModel) GlobalResidual(res, u []float64) (float64, error) {
	o.calls++
	if o.resid == nil {
		return 0, nil
	}
	return o.resid(u), nil
}

// fakeSolver returns a scripted result and z = scale * r
type fakeSolver struct {
	res   lsol.Result
	err   error
	scale float64
}

func (o *fakeSolver) Solve(A *bmat.Matrix, z, r []float64, reduction float64) (lsol.Result, error) {
	for i := range z {
		z[i] = o.scale * r[i]
	}
	return o.res, o.err
}

// newtonData returns the default Newton configuration
func newtonData() *inp.NewtonData {
	var dat inp.NewtonData
	dat.SetDefault()
	if err := dat.PostProcess(); err != nil {
		chk.Panic("%v", err)
	}
	return &dat
}
