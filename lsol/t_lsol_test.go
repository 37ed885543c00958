// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/part"
)

func Test_registry01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("registry01")

	// 2x1 quads: vertices 1 and 4 are shared
	view, err := stripView(2, 1, 1, 2)
	require.NoError(tst, err)
	reg := NewRegistry(view)
	chk.Int(tst, "nborder", reg.NumBorder(), 2)
	for _, i := range reg.BorderIndices() {
		gid, ok := reg.GlobalID(i)
		require.True(tst, ok)
		assert.Contains(tst, []int64{1, 4}, gid)
		l, ok := reg.LocalIndex(gid)
		require.True(tst, ok)
		chk.Int(tst, "local", l, i)
		assert.True(tst, reg.IsBorder(i))
	}
	l, _ := view.LocalIndex(2)
	assert.False(tst, reg.IsBorder(l))
	_, ok := reg.GlobalID(l)
	assert.False(tst, ok)
	_, ok = reg.LocalIndex(2)
	assert.False(tst, ok)
}

func Test_exchanger01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("exchanger01. border entries are summed")

	type values struct{ a11, a14, a10, a00, again float64 }
	res := make([]values, 2)
	err := comm.Run(2, func(c comm.Communicator) error {
		view, err := stripView(2, 1, c.Rank(), c.Size())
		if err != nil {
			return err
		}
		p := bmat.NewPattern(view.NumEntities())
		for _, verts := range view.CellVerts {
			p.AddClique(verts)
		}
		A := p.Build(1)
		loc := func(gid int) int { l, _ := view.LocalIndex(gid); return l }

		// rank 0 holds 3 at the shared diagonal entry; rank 1 holds 4
		if c.Rank() == 0 {
			A.Add(loc(1), loc(1), 0, 0, 3)
			A.Add(loc(1), loc(4), 0, 0, 1)
			A.Add(loc(1), loc(0), 0, 0, 5)
			A.Add(loc(0), loc(0), 0, 0, 9)
		} else {
			A.Add(loc(1), loc(1), 0, 0, 4)
			A.Add(loc(1), loc(4), 0, 0, 2)
		}

		ex := NewExchanger(c, view, NewRegistry(view))
		skipped, err := ex.SumEntries(A)
		if err != nil {
			return err
		}
		if skipped != 0 {
			return chk.Err("%d entries were skipped", skipped)
		}
		v := values{a11: A.Block(loc(1), loc(1))[0], a14: A.Block(loc(1), loc(4))[0]}
		if c.Rank() == 0 {
			v.a10 = A.Block(loc(1), loc(0))[0]
			v.a00 = A.Block(loc(0), loc(0))[0]
		}

		// a second call double counts
		if _, err = ex.SumEntries(A); err != nil {
			return err
		}
		v.again = A.Block(loc(1), loc(1))[0]
		res[c.Rank()] = v
		return nil
	})
	require.NoError(tst, err)
	for r := 0; r < 2; r++ {
		chk.Float64(tst, "a11", 1e-17, res[r].a11, 7)
		chk.Float64(tst, "a14", 1e-17, res[r].a14, 3)
		chk.Float64(tst, "a11 again", 1e-17, res[r].again, 14)
	}
	chk.Float64(tst, "a10", 1e-17, res[0].a10, 5)
	chk.Float64(tst, "a00", 1e-17, res[0].a00, 9)
}

func Test_exchanger02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("exchanger02. serial is a no-op")

	view, err := stripView(2, 1, 0, 1)
	require.NoError(tst, err)
	A := assembleLaplace(view, 2)
	B := A.Clone()
	_, err = NewExchanger(comm.Serial{}, view, NewRegistry(view)).SumEntries(B)
	require.NoError(tst, err)
	chk.Array(tst, "values", 1e-17, B.Val, A.Val)
}

func Test_wrapped01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("wrapped01. border values are halved")

	res := make(map[int64]float64)
	var mu sync.Mutex
	err := comm.Run(2, func(c comm.Communicator) error {
		view, err := stripView(2, 1, c.Rank(), c.Size())
		if err != nil {
			return err
		}
		var constrained []int
		if c.Rank() == 0 {
			l, _ := view.LocalIndex(0)
			constrained = []int{l}
		}
		prec := NewWrappedPreconditioner(identity{}, c, view.Interface(), NewRegistry(view), 1, constrained)
		d := make([]float64, view.NumEntities())
		for i := range d {
			d[i] = 1
		}
		v := make([]float64, len(d))
		if err = prec.Apply(v, d); err != nil {
			return err
		}
		chk.Float64(tst, "d unchanged", 1e-17, d[0], 1)
		mu.Lock()
		defer mu.Unlock()
		for i, e := range view.Entities {
			res[e.Global] = v[i]
		}
		return nil
	})
	require.NoError(tst, err)
	io.Pforan("v = %v\n", res)
	chk.Float64(tst, "constrained", 1e-17, res[0], 0)
	chk.Float64(tst, "border 1", 1e-17, res[1], 1)
	chk.Float64(tst, "border 4", 1e-17, res[4], 1)
	chk.Float64(tst, "interior", 1e-17, res[5], 1)
}

func Test_bicgstab01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bicgstab01. serial")

	view, err := stripView(5, 4, 0, 1)
	require.NoError(tst, err)
	A := assembleLaplace(view, 2)
	n := A.Size()
	b := make([]float64, n)
	for i, e := range view.Entities {
		b[2*i], b[2*i+1] = rhsValue(e.Global, 0), rhsValue(e.Global, 1)
	}
	rhs := make([]float64, n)
	copy(rhs, b)
	prec, err := bmat.NewILU0(A, 1.0)
	require.NoError(tst, err)
	solver := &BiCGStab{
		Op:        NewOperator(A, comm.Serial{}, view.Interface()),
		Prec:      prec,
		Sp:        NewScalarProduct(comm.Serial{}, view, 2),
		Reduction: 1e-10,
		MaxIt:     200,
	}
	if chk.Verbose {
		solver.Verbose = 2
	}
	x := make([]float64, n)
	res, err := solver.Solve(x, rhs)
	require.NoError(tst, err)
	assert.True(tst, res.Converged)
	assert.Greater(tst, res.Iterations, 0)
	assert.Less(tst, res.Reduction, 1e-10)
	assert.Less(tst, res.ConvRate, 1.0)
	checkResidual(tst, A, x, b, 1e-8)

	// zero right-hand side
	x = make([]float64, n)
	res, err = solver.Solve(x, make([]float64, n))
	require.NoError(tst, err)
	assert.True(tst, res.Converged)
	chk.Int(tst, "iterations", res.Iterations, 0)

	// iterations limit
	solver.MaxIt = 1
	solver.Prec = identity{}
	copy(rhs, b)
	x = make([]float64, n)
	res, err = solver.Solve(x, rhs)
	require.NoError(tst, err)
	assert.False(tst, res.Converged)
	chk.Int(tst, "iterations", res.Iterations, 1)
}

func Test_bicgstab02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bicgstab02. breakdown")

	// the zero operator makes h vanish
	view, err := stripView(1, 1, 0, 1)
	require.NoError(tst, err)
	A := bmat.NewPattern(view.NumEntities()).Build(1)
	solver := &BiCGStab{
		Op:        NewOperator(A, comm.Serial{}, view.Interface()),
		Prec:      identity{},
		Sp:        NewScalarProduct(comm.Serial{}, view, 1),
		Reduction: 1e-8,
		MaxIt:     10,
	}
	x := make([]float64, 4)
	_, err = solver.Solve(x, []float64{1, 2, 3, 4})
	require.Error(tst, err)
	assert.True(tst, errors.Is(err, ErrBreakdown))
}

func Test_backend01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("backend01. distributed solutions match the serial one")

	nx, ny, b := 6, 3, 2
	dat := &inp.LinSolData{}
	dat.SetDefault()

	// serial reference
	view, err := stripView(nx, ny, 0, 1)
	require.NoError(tst, err)
	ref := solveOnRank(tst, comm.Serial{}, view, dat, b)
	require.NotNil(tst, ref)

	// distributed
	for _, size := range []int{2, 3} {
		for _, precond := range []string{"ilu0", "jacobi", "direct"} {
			dat.Precond = precond
			sols := make([]map[int64][]float64, size)
			err = comm.Run(size, func(c comm.Communicator) error {
				view, err := stripView(nx, ny, c.Rank(), c.Size())
				if err != nil {
					return err
				}
				sols[c.Rank()] = solveOnRank(tst, c, view, dat, b)
				return nil
			})
			require.NoError(tst, err)
			for r := 0; r < size; r++ {
				for gid, z := range sols[r] {
					chk.Array(tst, io.Sf("%s: size=%d rank=%d gid=%d", precond, size, r, gid), 1e-7, z, ref[gid])
				}
			}
		}
	}
}

func Test_backend02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("backend02. norm of additive vectors")

	norms := make([]float64, 2)
	err := comm.Run(2, func(c comm.Communicator) error {
		view, err := stripView(2, 1, c.Rank(), c.Size())
		if err != nil {
			return err
		}
		dat := &inp.LinSolData{}
		dat.SetDefault()
		be := NewBackend(c, view, dat)
		v := make([]float64, view.NumEntities())
		for i := range v {
			v[i] = 1
		}
		norms[c.Rank()], err = be.Norm(v)
		if err != nil {
			return err
		}
		if v[0] != 1 {
			return chk.Err("input vector was modified")
		}
		return nil
	})
	require.NoError(tst, err)
	chk.Float64(tst, "norm0", 1e-15, norms[0], math.Sqrt(12))
	chk.Float64(tst, "norm1", 1e-15, norms[1], math.Sqrt(12))
}

// solveOnRank solves the Laplace system on one rank and returns the solution by global id
func solveOnRank(tst *testing.T, c comm.Communicator, view *part.View, dat *inp.LinSolData, b int) map[int64][]float64 {
	A := assembleLaplace(view, b)
	r := make([]float64, A.Size())
	for i, e := range view.Entities {
		for k := 0; k < b; k++ {
			r[i*b+k] = rhsValue(e.Global, k)
		}
	}
	z := make([]float64, len(r))
	be := NewBackend(c, view, dat)
	res, err := be.Solve(A, z, r, 1e-10)
	if err != nil {
		tst.Errorf("solve failed on rank %d:\n%v", c.Rank(), err)
		return nil
	}
	if !res.Converged {
		tst.Errorf("solve did not converge on rank %d", c.Rank())
	}
	if be.LastResult().Iterations != res.Iterations {
		tst.Errorf("last result is not stored")
	}
	sol := make(map[int64][]float64)
	for i, e := range view.Entities {
		sol[e.Global] = z[i*b : (i+1)*b]
	}
	return sol
}

// checkResidual checks that A x == b
func checkResidual(tst *testing.T, A *bmat.Matrix, x, b []float64, tol float64) {
	y := make([]float64, len(b))
	A.MulVec(y, x)
	chk.Array(tst, "A*x", tol, y, b)
}
