// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package bmat implements block compressed-row matrices and sequential preconditioners
package bmat

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Pattern collects the positions of nonzero blocks
type Pattern struct {
	rows []map[int]bool
}

// NewPattern returns a new pattern with n block rows; the diagonal is always included
func NewPattern(n int) (o *Pattern) {
	o = &Pattern{rows: make([]map[int]bool, n)}
	for i := range o.rows {
		o.rows[i] = map[int]bool{i: true}
	}
	return
}

// Add adds the block (i,j)
func (o *Pattern) Add(i, j int) {
	o.rows[i][j] = true
}

// AddClique adds all blocks coupling the given rows; e.g. the vertices of an element
func (o *Pattern) AddClique(idx []int) {
	for _, i := range idx {
		for _, j := range idx {
			o.rows[i][j] = true
		}
	}
}

// Build allocates a zero matrix with block size b
func (o *Pattern) Build(b int) (A *Matrix) {
	if b < 1 {
		chk.Panic("block size must be positive; b = %d is invalid", b)
	}
	n := len(o.rows)
	A = &Matrix{N: n, B: b, Ptr: make([]int, n+1), diag: make([]int, n)}
	for i, row := range o.rows {
		cols := make([]int, 0, len(row))
		for j := range row {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		for _, j := range cols {
			if j == i {
				A.diag[i] = len(A.Col)
			}
			A.Col = append(A.Col, j)
		}
		A.Ptr[i+1] = len(A.Col)
	}
	A.Val = make([]float64, len(A.Col)*b*b)
	return
}

// Matrix holds a square block compressed-row matrix; blocks are stored row-major
type Matrix struct {
	N    int       // number of block rows == number of block columns
	B    int       // block size
	Ptr  []int     // [N+1] first block of each row
	Col  []int     // [nnzb] block column indices, increasing within each row
	Val  []float64 // [nnzb*B*B] values
	diag []int     // [N] position of diagonal blocks
}

// Size returns the number of scalar rows
func (o *Matrix) Size() int { return o.N * o.B }

// NumBlocks returns the number of stored blocks
func (o *Matrix) NumBlocks() int { return len(o.Col) }

// Find returns the position of block (i,j) or -1 if it is not stored
func (o *Matrix) Find(i, j int) int {
	cols := o.Col[o.Ptr[i]:o.Ptr[i+1]]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return o.Ptr[i] + k
	}
	return -1
}

// blk returns the block stored at position p
func (o *Matrix) blk(p int) []float64 {
	bb := o.B * o.B
	return o.Val[p*bb : (p+1)*bb]
}

// Block returns the block (i,j) or nil if it is not stored; the result shares memory with A
func (o *Matrix) Block(i, j int) []float64 {
	p := o.Find(i, j)
	if p < 0 {
		return nil
	}
	return o.blk(p)
}

// AddBlock adds blk to block (i,j); returns false if the block is not stored
func (o *Matrix) AddBlock(i, j int, blk []float64) bool {
	p := o.Find(i, j)
	if p < 0 {
		return false
	}
	dst := o.blk(p)
	for k, v := range blk {
		dst[k] += v
	}
	return true
}

// Add adds v to entry (r,c) of block (i,j); returns false if the block is not stored
func (o *Matrix) Add(i, j, r, c int, v float64) bool {
	p := o.Find(i, j)
	if p < 0 {
		return false
	}
	o.blk(p)[r*o.B+c] += v
	return true
}

// Zero sets all values to zero
func (o *Matrix) Zero() {
	for k := range o.Val {
		o.Val[k] = 0
	}
}

// ZeroRow sets all blocks of row i to zero
func (o *Matrix) ZeroRow(i int) {
	bb := o.B * o.B
	vals := o.Val[o.Ptr[i]*bb : o.Ptr[i+1]*bb]
	for k := range vals {
		vals[k] = 0
	}
}

// SetIdentityRow replaces the scalar row r of block row i by the corresponding row of the identity
func (o *Matrix) SetIdentityRow(i, r int) {
	for p := o.Ptr[i]; p < o.Ptr[i+1]; p++ {
		blk := o.blk(p)
		for c := 0; c < o.B; c++ {
			blk[r*o.B+c] = 0
		}
	}
	o.blk(o.diag[i])[r*o.B+r] = 1
}

// Clone returns a copy of A; the structure is shared
func (o *Matrix) Clone() *Matrix {
	val := make([]float64, len(o.Val))
	copy(val, o.Val)
	return &Matrix{N: o.N, B: o.B, Ptr: o.Ptr, Col: o.Col, Val: val, diag: o.diag}
}

// CopyValues copies the values of src which must have the same structure
func (o *Matrix) CopyValues(src *Matrix) {
	copy(o.Val, src.Val)
}

// MulVec computes y = A * x
func (o *Matrix) MulVec(y, x []float64) {
	b := o.B
	for i := 0; i < o.N; i++ {
		yi := y[i*b : (i+1)*b]
		for r := range yi {
			yi[r] = 0
		}
		for p := o.Ptr[i]; p < o.Ptr[i+1]; p++ {
			xj := x[o.Col[p]*b : (o.Col[p]+1)*b]
			blk := o.blk(p)
			for r := 0; r < b; r++ {
				for c := 0; c < b; c++ {
					yi[r] += blk[r*b+c] * xj[c]
				}
			}
		}
	}
}

// ToCSR returns a scalar compressed-row copy of A
func (o *Matrix) ToCSR() *sparse.CSR {
	b := o.B
	m := o.N * b
	ia := make([]int, m+1)
	ja := make([]int, 0, len(o.Val))
	data := make([]float64, 0, len(o.Val))
	for i := 0; i < o.N; i++ {
		for r := 0; r < b; r++ {
			for p := o.Ptr[i]; p < o.Ptr[i+1]; p++ {
				blk := o.blk(p)
				for c := 0; c < b; c++ {
					ja = append(ja, o.Col[p]*b+c)
					data = append(data, blk[r*b+c])
				}
			}
			ia[i*b+r+1] = len(ja)
		}
	}
	return sparse.NewCSR(m, m, ia, ja, data)
}

// ToDense returns a dense copy of A
func (o *Matrix) ToDense() *mat.Dense {
	return o.ToCSR().ToDense()
}
