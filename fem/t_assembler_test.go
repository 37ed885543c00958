// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlicloud/opm-models/comm"
	"gonum.org/v1/gonum/diff/fd"
)

// linearField returns u = x/3 with prescribed values set
func linearField(dom *Domain) la.Vector {
	u := la.NewVector(dom.Ny)
	for i, e := range dom.View.Entities {
		u[i] = e.Vert.C[0] / 3.0
	}
	dom.SetEssentialVals(u)
	return u
}

func Test_asm01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("asm01. Jacobian and constraints")

	sim, err := readSim("data/diffu01.sim", 1, false)
	require.NoError(tst, err)
	dom, err := NewDomain(sim, comm.Serial{})
	require.NoError(tst, err)
	mdl := NewDiffusionModel(dom)
	u := linearField(dom)
	u[5] += 0.3
	require.NoError(tst, mdl.Asm.Assemble(u))
	chk.Int(tst, "reassembled", mdl.Asm.Nreasm, len(dom.Elems))

	// constrained rows
	K := mdl.Asm.A.ToDense()
	for _, eq := range dom.EssenBcs.Eqs {
		chk.Float64(tst, io.Sf("R[%d]", eq), 1e-17, mdl.Asm.R[eq], 0)
		for j := 0; j < dom.Ny; j++ {
			v := 0.0
			if j == eq {
				v = 1
			}
			chk.Float64(tst, io.Sf("K[%d][%d]", eq, j), 1e-17, K.At(eq, j), v)
		}
	}

	// other rows against finite differences
	res := la.NewVector(dom.Ny)
	utmp := la.NewVector(dom.Ny)
	for i := 0; i < dom.Ny; i++ {
		if dom.IsConstrained(i) {
			continue
		}
		for j := 0; j < dom.Ny; j++ {
			dnum := fd.Derivative(func(x float64) float64 {
				copy(utmp, u)
				utmp[j] = x
				if err := dom.Residual(res, utmp); err != nil {
					tst.Fatalf("%v", err)
				}
				return res[i]
			}, u[j], &fd.Settings{Formula: fd.Central, Step: 1e-5})
			chk.AnaNum(tst, io.Sf("K[%d][%d]", i, j), 1e-7, K.At(i, j), dnum, chk.Verbose)
		}
	}
}

func Test_asm02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("asm02. partial reassembly")

	sim, err := readSim("data/diffu01.sim", 1, false)
	require.NoError(tst, err)
	sim.Newton.PartialReasm = true
	dom, err := NewDomain(sim, comm.Serial{})
	require.NoError(tst, err)
	mdl := NewDiffusionModel(dom)
	asm := mdl.Asm

	// first assembly is complete
	u0 := linearField(dom)
	require.NoError(tst, asm.Assemble(u0))
	chk.Int(tst, "reassembled", asm.Nreasm, 18)
	old := make([]float64, len(asm.A.Val))
	copy(old, asm.A.Val)

	// move the vertex at (3,1) of the 6×3 grid
	l, ok := dom.View.LocalIndex(1*7 + 3)
	require.True(tst, ok)
	deltaU := la.NewVector(dom.Ny)
	deltaU[l] = 0.5
	asm.UpdateDiscrepancy(u0, deltaU)
	require.NoError(tst, asm.ComputeColors(1e-3))

	// colors
	nv := map[Color]int{}
	for i := 0; i < dom.Ndofs; i++ {
		nv[asm.VertColor(i)]++
	}
	ne := map[Color]int{}
	for k := range dom.Elems {
		ne[asm.ElemColor(k)]++
	}
	io.Pforan("vertices: %v\n", nv)
	io.Pforan("elements: %v\n", ne)
	assert.Equal(tst, Red, asm.VertColor(l))
	chk.Ints(tst, "vertices [red yellow green]", []int{nv[Red], nv[Yellow], nv[Green]}, []int{1, 8, 19})
	chk.Ints(tst, "elements [red yellow green]", []int{ne[Red], ne[Yellow], ne[Green]}, []int{4, 8, 6})

	// only red elements are relinearised
	u1 := la.NewVector(dom.Ny)
	copy(u1, u0)
	u1[l] -= deltaU[l]
	require.NoError(tst, asm.Assemble(u1))
	chk.Int(tst, "reassembled", asm.Nreasm, 4)

	// rows of green vertices are unchanged; the row of the red vertex is exact
	full := NewJacobianAssembler(dom, mdl.RelativeErrorDof)
	require.NoError(tst, full.Assemble(u1))
	A := asm.A
	for i := 0; i < dom.Ndofs; i++ {
		for p := A.Ptr[i]; p < A.Ptr[i+1]; p++ {
			switch asm.VertColor(i) {
			case Green:
				chk.Float64(tst, io.Sf("A[%d] (green)", p), 1e-17, A.Val[p], old[p])
			case Red:
				chk.Float64(tst, io.Sf("A[%d] (red)", p), 1e-14, A.Val[p], full.A.Val[p])
			}
		}
	}
	chk.Array(tst, "R", 1e-14, asm.R, full.R)

	// nothing moved since
	require.NoError(tst, asm.ComputeColors(1e-3))
	require.NoError(tst, asm.Assemble(u1))
	chk.Int(tst, "reassembled", asm.Nreasm, 0)
}

func Test_asm03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("asm03. matrix reuse")

	sim, err := readSim("data/diffu01.sim", 1, true)
	require.NoError(tst, err)
	dom, err := NewDomain(sim, comm.Serial{})
	require.NoError(tst, err)
	mdl := NewDiffusionModel(dom)
	asm := mdl.Asm

	u0 := linearField(dom)
	require.NoError(tst, asm.Assemble(u0))
	old := make([]float64, len(asm.A.Val))
	copy(old, asm.A.Val)
	R0 := make([]float64, dom.Ny)
	copy(R0, asm.R)

	// residual only
	u1 := la.NewVector(dom.Ny)
	for i := range u1 {
		u1[i] = 2 * u0[i]
	}
	asm.SetMatrixReusable(true)
	require.NoError(tst, asm.Assemble(u1))
	chk.Int(tst, "reassembled", asm.Nreasm, 0)
	chk.Array(tst, "A", 1e-17, asm.A.Val, old)
	diff := 0.0
	for i := range R0 {
		diff = math.Max(diff, math.Abs(asm.R[i]-R0[i]))
	}
	assert.Greater(tst, diff, 1e-3, "residual must be recomputed")

	// reuse is consumed
	require.NoError(tst, asm.Assemble(u1))
	chk.Int(tst, "reassembled", asm.Nreasm, len(dom.Elems))

	// ReassembleAll cancels reuse
	asm.SetMatrixReusable(true)
	asm.ReassembleAll()
	require.NoError(tst, asm.Assemble(u0))
	chk.Array(tst, "A", 1e-15, asm.A.Val, old)
}

func Test_asm04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("asm04. colors on two partitions")

	sim, err := readSim("data/diffu01.sim", 2, false)
	require.NoError(tst, err)
	sim.Newton.PartialReasm = true

	// vertex ids of the 6×3 grid
	vid := func(i, j int) int { return j*7 + i }
	colors := make([]map[int]Color, 2)
	err = comm.Run(2, func(c comm.Communicator) error {
		dom, err := NewDomain(sim, c)
		if err != nil {
			return err
		}
		asm := NewDiffusionModel(dom).Asm
		u := linearField(dom)
		if err = asm.Assemble(u); err != nil {
			return err
		}

		// only rank 0 sees the border vertex (3,1) moving
		deltaU := la.NewVector(dom.Ny)
		if c.Rank() == 0 {
			l, _ := dom.View.LocalIndex(vid(3, 1))
			deltaU[l] = 1
		}
		asm.UpdateDiscrepancy(u, deltaU)
		if err = asm.ComputeColors(1e-3); err != nil {
			return err
		}
		colors[c.Rank()] = make(map[int]Color)
		for i, e := range dom.View.Entities {
			colors[c.Rank()][int(e.Global)] = asm.VertColor(i)
		}
		return nil
	})
	require.NoError(tst, err)

	// border vertices agree
	for _, v := range []int{vid(3, 0), vid(3, 1), vid(3, 2), vid(3, 3)} {
		assert.Equal(tst, colors[0][v], colors[1][v], "vertex %d", v)
	}
	assert.Equal(tst, Red, colors[1][vid(3, 1)])
	assert.Equal(tst, Yellow, colors[1][vid(4, 1)])
	assert.Equal(tst, Yellow, colors[0][vid(2, 1)])
	assert.Equal(tst, Yellow, colors[1][vid(3, 2)])
	assert.Equal(tst, Green, colors[1][vid(5, 1)])
	assert.Equal(tst, Green, colors[0][vid(1, 1)])
}
