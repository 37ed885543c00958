// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmat

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func verbose() {
	chk.Verbose = true
}

// tridiag returns a block tridiagonal matrix with n block rows and block size b
func tridiag(n, b int) *Matrix {
	p := NewPattern(n)
	for i := 0; i < n-1; i++ {
		p.AddClique([]int{i, i + 1})
	}
	A := p.Build(b)
	for i := 0; i < n; i++ {
		for r := 0; r < b; r++ {
			for c := 0; c < b; c++ {
				v := 0.5
				if r == c {
					v = 10.0 + float64(i)
				}
				A.Add(i, i, r, c, v)
				if i > 0 {
					A.Add(i, i-1, r, c, -1.0+0.1*float64(r-c))
				}
				if i < n-1 {
					A.Add(i, i+1, r, c, -1.5+0.2*float64(c))
				}
			}
		}
	}
	return A
}

func checkSolution(tst *testing.T, msg string, tol float64, A *Matrix, v, d []float64) {
	r := make([]float64, len(d))
	A.MulVec(r, v)
	chk.Array(tst, msg, tol, r, d)
}

func Test_matrix01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("matrix01")

	p := NewPattern(3)
	p.Add(0, 2)
	p.AddClique([]int{1, 2})
	A := p.Build(2)
	chk.Int(tst, "nblocks", A.NumBlocks(), 6)
	chk.Int(tst, "size", A.Size(), 6)
	chk.Ints(tst, "ptr", A.Ptr, []int{0, 2, 4, 6})
	chk.Ints(tst, "col", A.Col, []int{0, 2, 1, 2, 1, 2})
	chk.Int(tst, "find(2,0)", A.Find(2, 0), -1)
	assert.Nil(tst, A.Block(1, 0))

	// fill
	assert.True(tst, A.AddBlock(0, 0, []float64{1, 2, 3, 4}))
	assert.True(tst, A.AddBlock(0, 2, []float64{5, 6, 7, 8}))
	assert.True(tst, A.AddBlock(1, 1, []float64{1, 0, 0, 1}))
	assert.True(tst, A.AddBlock(2, 2, []float64{2, 0, 0, 2}))
	assert.True(tst, A.Add(2, 1, 1, 0, -1))
	assert.False(tst, A.AddBlock(1, 0, []float64{1, 1, 1, 1}))

	// dense and CSR
	D := A.ToDense()
	if chk.Verbose {
		io.Pforan("A =\n%v\n", mat.Formatted(D))
	}
	chk.Float64(tst, "D[0][5]", 1e-17, D.At(0, 5), 6)
	chk.Float64(tst, "D[5][2]", 1e-17, D.At(5, 2), -1)
	csr := A.ToCSR()
	chk.Int(tst, "nnz", csr.NNZ(), 24)

	// multiplication
	x := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, 6)
	A.MulVec(y, x)
	var yd mat.VecDense
	yd.MulVec(D, mat.NewVecDense(6, x))
	chk.Array(tst, "y", 1e-15, y, yd.RawVector().Data)

	// clone is independent
	B := A.Clone()
	B.ZeroRow(0)
	chk.Array(tst, "A00", 1e-17, A.Block(0, 0), []float64{1, 2, 3, 4})
	chk.Array(tst, "B00", 1e-17, B.Block(0, 0), []float64{0, 0, 0, 0})
	B.CopyValues(A)
	chk.Array(tst, "B02", 1e-17, B.Block(0, 2), []float64{5, 6, 7, 8})

	// identity row
	A.SetIdentityRow(0, 1)
	chk.Array(tst, "A00", 1e-17, A.Block(0, 0), []float64{1, 2, 0, 1})
	chk.Array(tst, "A02", 1e-17, A.Block(0, 2), []float64{5, 6, 0, 0})
	A.Zero()
	chk.Array(tst, "A22", 1e-17, A.Block(2, 2), []float64{0, 0, 0, 0})
}

func Test_ilu01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ilu01. ILU(0) is exact for tridiagonal matrices")

	for _, b := range []int{1, 2, 3} {
		A := tridiag(6, b)
		prec, err := NewILU0(A, 1.0)
		require.NoError(tst, err)
		d := make([]float64, A.Size())
		for i := range d {
			d[i] = float64(i%4) - 1.5
		}
		v := make([]float64, len(d))
		require.NoError(tst, prec.Apply(v, d))
		checkSolution(tst, io.Sf("A*v (b=%d)", b), 1e-12, A, v, d)

		// relaxation
		prec.relax = 0.9
		w := make([]float64, len(d))
		require.NoError(tst, prec.Apply(w, d))
		for i := range w {
			chk.Float64(tst, "w", 1e-14, w[i], 0.9*v[i])
		}
	}
}

func Test_ilu02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("ilu02. ILU(0) drops fill-in")

	// arrow matrix: row 0 and column 0 are full; LU would fill the lower-right part
	n := 4
	p := NewPattern(n)
	for i := 1; i < n; i++ {
		p.Add(0, i)
		p.Add(i, 0)
	}
	A := p.Build(1)
	for i := 0; i < n; i++ {
		A.Add(i, i, 0, 0, 4)
		if i > 0 {
			A.Add(0, i, 0, 0, 1)
			A.Add(i, 0, 0, 0, 1)
		}
	}
	prec, err := NewILU0(A, 1.0)
	require.NoError(tst, err)

	// the (1,2) entry of L*U is not representable, so the solve is approximate
	d := []float64{1, 2, 3, 4}
	v := make([]float64, n)
	require.NoError(tst, prec.Apply(v, d))
	r := make([]float64, n)
	A.MulVec(r, v)
	chk.Float64(tst, "r0", 1e-14, r[0], d[0])
	assert.Greater(tst, abs(r[1]-d[1]), 1e-3)

	// singular diagonal
	S := NewPattern(2).Build(1)
	_, err = NewILU0(S, 1.0)
	require.Error(tst, err)
}

func Test_jacobi01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("jacobi01")

	A := tridiag(3, 2)
	prec, err := NewPreconditioner("jacobi", A, 0.5)
	require.NoError(tst, err)
	d := []float64{1, 2, 3, 4, 5, 6}
	v := make([]float64, 6)
	require.NoError(tst, prec.Apply(v, d))

	// D v = 0.5 d on every block row
	for i := 0; i < 3; i++ {
		blk := A.Block(i, i)
		for r := 0; r < 2; r++ {
			s := blk[r*2]*v[i*2] + blk[r*2+1]*v[i*2+1]
			chk.Float64(tst, "Dv", 1e-14, s, 0.5*d[i*2+r])
		}
	}
}

func Test_direct01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("direct01")

	p := NewPattern(3)
	p.AddClique([]int{0, 1, 2})
	A := p.Build(2)
	vals := []float64{
		5, 1, 2, 0, 1, 1,
		1, 6, 0, 2, 0, 1,
		2, 0, 7, 1, 1, 0,
		0, 2, 1, 8, 0, 3,
		1, 0, 1, 0, 9, 2,
		1, 1, 0, 3, 2, 9,
	}
	for I := 0; I < 6; I++ {
		for J := 0; J < 6; J++ {
			A.Add(I/2, J/2, I%2, J%2, vals[I*6+J])
		}
	}
	prec, err := NewPreconditioner("direct", A, 1)
	require.NoError(tst, err)
	d := []float64{1, -1, 2, -2, 3, -3}
	v := make([]float64, 6)
	require.NoError(tst, prec.Apply(v, d))
	checkSolution(tst, "A*v", 1e-13, A, v, d)

	// unknown
	_, err = NewPreconditioner("amg", A, 1)
	require.Error(tst, err)
	assert.Equal(tst, []string{"direct", "ilu0", "jacobi"}, Available())

	// singular
	_, err = NewDirect(NewPattern(2).Build(1))
	require.Error(tst, err)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
