// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bmat

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// Preconditioner applies an approximate inverse: v = M⁻¹ d
type Preconditioner interface {
	Apply(v, d []float64) error
}

// precallocators holds all available preconditioners
var precallocators = make(map[string]func(A *Matrix, relax float64) (Preconditioner, error))

// NewPreconditioner returns a new preconditioner for A
func NewPreconditioner(name string, A *Matrix, relax float64) (Preconditioner, error) {
	allocator, ok := precallocators[name]
	if !ok {
		return nil, chk.Err("cannot find preconditioner named %q; available: %v", name, Available())
	}
	return allocator(A, relax)
}

// Available returns the names of the available preconditioners
func Available() (names []string) {
	for name := range precallocators {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func init() {
	precallocators["ilu0"] = func(A *Matrix, relax float64) (Preconditioner, error) { return NewILU0(A, relax) }
	precallocators["jacobi"] = func(A *Matrix, relax float64) (Preconditioner, error) { return NewJacobi(A, relax) }
	precallocators["direct"] = func(A *Matrix, relax float64) (Preconditioner, error) { return NewDirect(A) }
}

// ILU0 implements the block incomplete LU factorisation without fill-in
type ILU0 struct {
	lu    *Matrix   // strictly lower part holds L (unit diagonal); diagonal blocks hold inv(U_ii)
	relax float64   // relaxation factor
	rhs   []float64 // [B] workspace
}

// NewILU0 factorises A; A is not modified
func NewILU0(A *Matrix, relax float64) (o *ILU0, err error) {
	o = &ILU0{lu: A.Clone(), relax: relax, rhs: make([]float64, A.B)}
	lu := o.lu
	b := lu.B
	var tmp mat.Dense
	for i := 0; i < lu.N; i++ {
		for p := lu.Ptr[i]; p < lu.Ptr[i+1] && lu.Col[p] < i; p++ {
			k := lu.Col[p]

			// L_ik = A_ik * inv(A_kk)
			aik := mat.NewDense(b, b, lu.blk(p))
			tmp.Mul(aik, mat.NewDense(b, b, lu.blk(lu.diag[k])))
			aik.Copy(&tmp)

			// A_ij -= L_ik * A_kj for all j > k stored in both rows
			for q := lu.diag[k] + 1; q < lu.Ptr[k+1]; q++ {
				pij := lu.Find(i, lu.Col[q])
				if pij < 0 {
					continue
				}
				aij := mat.NewDense(b, b, lu.blk(pij))
				tmp.Mul(aik, mat.NewDense(b, b, lu.blk(q)))
				aij.Sub(aij, &tmp)
			}
		}
		err = invertBlock(lu.blk(lu.diag[i]), b)
		if err != nil {
			return nil, chk.Err("ILU(0) failed at block row %d:\n%v", i, err)
		}
	}
	return
}

// Apply solves L U v = d and scales v by the relaxation factor
func (o *ILU0) Apply(v, d []float64) error {
	lu := o.lu
	b := lu.B
	rhs := o.rhs

	// forward substitution with unit lower part
	for i := 0; i < lu.N; i++ {
		copy(rhs, d[i*b:(i+1)*b])
		for p := lu.Ptr[i]; p < lu.diag[i]; p++ {
			subMulVec(rhs, lu.blk(p), v[lu.Col[p]*b:(lu.Col[p]+1)*b], b)
		}
		copy(v[i*b:(i+1)*b], rhs)
	}

	// backward substitution
	for i := lu.N - 1; i >= 0; i-- {
		copy(rhs, v[i*b:(i+1)*b])
		for p := lu.diag[i] + 1; p < lu.Ptr[i+1]; p++ {
			subMulVec(rhs, lu.blk(p), v[lu.Col[p]*b:(lu.Col[p]+1)*b], b)
		}
		vi := v[i*b : (i+1)*b]
		inv := lu.blk(lu.diag[i])
		for r := 0; r < b; r++ {
			vi[r] = 0
			for c := 0; c < b; c++ {
				vi[r] += inv[r*b+c] * rhs[c]
			}
		}
	}

	// relaxation
	for k := range v {
		v[k] *= o.relax
	}
	return nil
}

// Jacobi implements one damped block-Jacobi step: v = relax * inv(D) d
type Jacobi struct {
	dinv  [][]float64 // [N][B*B] inverted diagonal blocks
	b     int
	relax float64
}

// NewJacobi inverts the diagonal blocks of A
func NewJacobi(A *Matrix, relax float64) (o *Jacobi, err error) {
	o = &Jacobi{dinv: make([][]float64, A.N), b: A.B, relax: relax}
	for i := 0; i < A.N; i++ {
		o.dinv[i] = make([]float64, A.B*A.B)
		copy(o.dinv[i], A.blk(A.diag[i]))
		err = invertBlock(o.dinv[i], A.B)
		if err != nil {
			return nil, chk.Err("Jacobi failed at block row %d:\n%v", i, err)
		}
	}
	return
}

// Apply computes v = relax * inv(D) d
func (o *Jacobi) Apply(v, d []float64) error {
	b := o.b
	for i, inv := range o.dinv {
		for r := 0; r < b; r++ {
			s := 0.0
			for c := 0; c < b; c++ {
				s += inv[r*b+c] * d[i*b+c]
			}
			v[i*b+r] = o.relax * s
		}
	}
	return nil
}

// Direct solves with a dense LU factorisation of A; suitable for small local problems
type Direct struct {
	lu  mat.LU
	dst mat.VecDense
}

// NewDirect factorises A
func NewDirect(A *Matrix) (o *Direct, err error) {
	o = new(Direct)
	o.lu.Factorize(A.ToDense())
	if math.IsInf(o.lu.Cond(), 1) {
		return nil, chk.Err("direct preconditioner: matrix is singular")
	}
	return
}

// Apply solves A v = d
func (o *Direct) Apply(v, d []float64) error {
	o.dst.Reset()
	err := o.lu.SolveVecTo(&o.dst, false, mat.NewVecDense(len(d), d))
	if err != nil && !isConditionOnly(err) {
		return chk.Err("direct preconditioner failed:\n%v", err)
	}
	copy(v, o.dst.RawVector().Data)
	return nil
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// invertBlock inverts the b×b row-major block in place
func invertBlock(blk []float64, b int) error {
	var inv mat.Dense
	err := inv.Inverse(mat.NewDense(b, b, blk))
	if err != nil && !isConditionOnly(err) {
		return chk.Err("singular block:\n%v", err)
	}
	copy(blk, inv.RawMatrix().Data)
	return nil
}

// isConditionOnly tells whether err only warns about ill-conditioning; an exactly singular
// matrix yields an infinite condition number
func isConditionOnly(err error) bool {
	c, ok := err.(mat.Condition)
	return ok && !math.IsInf(float64(c), 1)
}

// subMulVec computes rhs -= blk * x
func subMulVec(rhs, blk, x []float64, b int) {
	for r := 0; r < b; r++ {
		for c := 0; c < b; c++ {
			rhs[r] -= blk[r*b+c] * x[c]
		}
	}
}
