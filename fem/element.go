// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/zlicloud/opm-models/inp"
)

// Elem defines what elements must calculate
//
//	Local vectors and matrices are ordered by vertex and then by equation:
//	  local index of (m, r) = m * neq + r
type Elem interface {

	// information
	Id() int     // returns the cell Id
	Umap() []int // returns the local indices of vertices (DOFs) of this element

	// called for each iteration
	Residual(re []float64, u []float64) (err error)   // computes the element residual re
	Jacobian(Ke [][]float64, u []float64) (err error) // computes the element Jacobian Ke
}

// ElemAllocator allocates an element for a cell
//
//	x    -- coordinates [ndim][nverts]
//	umap -- local indices of the cell vertices
type ElemAllocator func(cell *inp.Cell, x [][]float64, umap []int, mdl *DiffuMdl) (Elem, error)

// eallocators holds all available elements
var eallocators = make(map[string]ElemAllocator)

// NewElem returns a new element of type etype
func NewElem(etype string, cell *inp.Cell, x [][]float64, umap []int, mdl *DiffuMdl) (Elem, error) {
	allocator, ok := eallocators[etype]
	if !ok {
		return nil, chk.Err("cannot find element type = %s", etype)
	}
	e, err := allocator(cell, x, umap, mdl)
	if err != nil {
		return nil, chk.Err("cannot allocate element for cell %d:\n%v", cell.Id, err)
	}
	return e, nil
}
