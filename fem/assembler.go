// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
)

// Color tells what is reassembled in the next Newton step
//
//	Red:    vertex moved more than the tolerance since it was linearised; element has a red vertex
//	Yellow: vertex belongs to a red element; element has a yellow vertex
//	Green:  nothing to be done
type Color int

const (
	Green Color = iota
	Yellow
	Red
)

// String returns the name of the color
func (o Color) String() string {
	switch o {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	}
	return "unknown"
}

// JacobianAssembler assembles the local Jacobian and the consistent residual of a domain
//
//	Red elements are relinearised; yellow elements add their last element Jacobian; green
//	elements are skipped. Only rows of red and yellow vertices are rebuilt.
type JacobianAssembler struct {
	Dom     *Domain                                 // domain
	RelErr  func(i int, pv1, pv2 []float64) float64 // relative error of DOF i
	Partial bool                                    // partial reassembly enabled
	Nreasm  int                                     // number of elements relinearised in the last Assemble

	A      *bmat.Matrix  // Jacobian
	R      la.Vector     // residual
	Ke     [][][]float64 // [nelem][nverts*neq][nverts*neq] last element Jacobians
	vcolor []Color       // [ndofs] vertex colors
	ecolor []Color       // [nelem] element colors
	delta  []float64     // [ndofs] accumulated relative change since linearisation
	reuse  bool          // next Assemble keeps the matrix
	buf    []float64     // colors exchanged with neighbours
	pv     []float64     // primary variables of one DOF
}

// NewJacobianAssembler returns a new assembler over dom
func NewJacobianAssembler(dom *Domain, relErr func(i int, pv1, pv2 []float64) float64) (o *JacobianAssembler) {
	o = &JacobianAssembler{Dom: dom, RelErr: relErr, Partial: dom.Sim.Newton.PartialReasm}

	// sparsity pattern
	pat := bmat.NewPattern(dom.Ndofs)
	for _, e := range dom.Elems {
		pat.AddClique(e.Umap())
	}
	o.A = pat.Build(dom.NumEq)
	o.R = la.NewVector(dom.Ny)

	// element matrices
	o.Ke = make([][][]float64, len(dom.Elems))
	for k, e := range dom.Elems {
		n := len(e.Umap()) * dom.NumEq
		o.Ke[k] = make([][]float64, n)
		for m := 0; m < n; m++ {
			o.Ke[k][m] = make([]float64, n)
		}
	}

	// colors
	o.vcolor = make([]Color, dom.Ndofs)
	o.ecolor = make([]Color, len(dom.Elems))
	o.delta = make([]float64, dom.Ndofs)
	o.buf = make([]float64, dom.Ndofs)
	o.pv = make([]float64, dom.NumEq)
	o.ReassembleAll()
	return
}

// Matrix returns the Jacobian
func (o *JacobianAssembler) Matrix() *bmat.Matrix { return o.A }

// Residual returns the residual
func (o *JacobianAssembler) Residual() la.Vector { return o.R }

// Constrained returns the scalar indices of DOFs with prescribed values
func (o *JacobianAssembler) Constrained() []int { return o.Dom.EssenBcs.Eqs }

// VertColor returns the color of vertex i
func (o *JacobianAssembler) VertColor(i int) Color { return o.vcolor[i] }

// ElemColor returns the color of element k
func (o *JacobianAssembler) ElemColor(k int) Color { return o.ecolor[k] }

// ReassembleAll makes the next Assemble recompute everything
func (o *JacobianAssembler) ReassembleAll() {
	for i := range o.vcolor {
		o.vcolor[i] = Red
		o.delta[i] = 0
	}
	for k := range o.ecolor {
		o.ecolor[k] = Red
	}
	o.reuse = false
}

// SetMatrixReusable makes the next Assemble compute the residual only
func (o *JacobianAssembler) SetMatrixReusable(reusable bool) {
	o.reuse = reusable
}

// UpdateDiscrepancy accumulates the relative change of each DOF from u to u - deltaU
func (o *JacobianAssembler) UpdateDiscrepancy(u, deltaU []float64) {
	if !o.Partial {
		return
	}
	neq := o.Dom.NumEq
	for i := range o.delta {
		pv1 := u[i*neq : (i+1)*neq]
		for r := 0; r < neq; r++ {
			o.pv[r] = pv1[r] - deltaU[i*neq+r]
		}
		o.delta[i] += o.RelErr(i, pv1, o.pv)
	}
}

// ComputeColors colors vertices and elements given the tolerance on the accumulated change
//
//	Note: colors of border vertices are made identical on all sharing ranks
func (o *JacobianAssembler) ComputeColors(tol float64) (err error) {
	if !o.Partial {
		return
	}

	// red vertices
	for i, d := range o.delta {
		o.vcolor[i] = Green
		if d > tol {
			o.vcolor[i] = Red
		}
	}
	err = o.syncColors()
	if err != nil {
		return
	}

	// red elements and their yellow vertices
	for k, e := range o.Dom.Elems {
		o.ecolor[k] = Green
		for _, i := range e.Umap() {
			if o.vcolor[i] == Red {
				o.ecolor[k] = Red
				break
			}
		}
	}
	for k, e := range o.Dom.Elems {
		if o.ecolor[k] != Red {
			continue
		}
		for _, i := range e.Umap() {
			if o.vcolor[i] != Red {
				o.vcolor[i] = Yellow
			}
		}
	}
	err = o.syncColors()
	if err != nil {
		return
	}

	// yellow elements
	for k, e := range o.Dom.Elems {
		if o.ecolor[k] == Red {
			continue
		}
		for _, i := range e.Umap() {
			if o.vcolor[i] == Yellow {
				o.ecolor[k] = Yellow
				break
			}
		}
	}
	return
}

// Assemble computes the residual at u and the rows of the Jacobian selected by the colors
func (o *JacobianAssembler) Assemble(u []float64) (err error) {

	// residual
	dom := o.Dom
	err = dom.Residual(o.R, u)
	if err != nil {
		return chk.Err("cannot compute residual:\n%v", err)
	}
	err = comm.AddExchange(dom.Comm, dom.View.Interface(), o.R, dom.NumEq)
	if err != nil {
		return
	}
	for _, eq := range dom.EssenBcs.Eqs {
		o.R[eq] = 0
	}

	// reuse matrix
	o.Nreasm = 0
	if o.reuse {
		o.reuse = false
		return
	}
	if !o.Partial {
		o.ReassembleAll()
	}

	// Jacobian
	neq := dom.NumEq
	for i, c := range o.vcolor {
		if c != Green {
			o.A.ZeroRow(i)
		}
	}
	for k, e := range dom.Elems {
		switch o.ecolor[k] {
		case Green:
			continue
		case Red:
			err = e.Jacobian(o.Ke[k], u)
			if err != nil {
				return chk.Err("cannot compute Jacobian of element %d:\n%v", e.Id(), err)
			}
			o.Nreasm++
		}
		umap := e.Umap()
		for m, I := range umap {
			if o.vcolor[I] == Green {
				continue
			}
			for n, J := range umap {
				for r := 0; r < neq; r++ {
					for c := 0; c < neq; c++ {
						o.A.Add(I, J, r, c, o.Ke[k][m*neq+r][n*neq+c])
					}
				}
			}
		}
	}

	// constrained rows; the identity is held by the owner only since the matrix is additive
	for _, eq := range dom.EssenBcs.Eqs {
		i, r := eq/neq, eq%neq
		if o.vcolor[i] == Green {
			continue
		}
		o.A.SetIdentityRow(i, r)
		if !dom.View.IsOwner(i) {
			o.A.Add(i, i, r, r, -1)
		}
	}

	// red vertices are now linearised at u
	for i, c := range o.vcolor {
		if c == Red {
			o.delta[i] = 0
		}
	}
	return
}

// syncColors takes the maximum color of border vertices over all sharing ranks
func (o *JacobianAssembler) syncColors() (err error) {
	if !o.Dom.Distr {
		return
	}
	for i, c := range o.vcolor {
		o.buf[i] = float64(c)
	}
	err = comm.MaxExchange(o.Dom.Comm, o.Dom.View.Interface(), o.buf, 1)
	if err != nil {
		return chk.Err("cannot exchange colors:\n%v", err)
	}
	for i, v := range o.buf {
		o.vcolor[i] = Color(v)
	}
	return
}
