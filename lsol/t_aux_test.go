// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"github.com/cpmech/gosl/chk"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/part"
)

func verbose() {
	chk.Verbose = true
}

// stripView returns the view of rank over a nx×ny mesh split into size vertical strips
func stripView(nx, ny, rank, size int) (*part.View, error) {
	msh, err := inp.GenMesh(&inp.GenMeshData{Nx: nx, Ny: ny, Lx: float64(nx), Ly: float64(ny), Nparts: size})
	if err != nil {
		return nil, err
	}
	return part.New(msh, rank, size)
}

// assembleLaplace assembles, over the local cells only, a symmetric positive-definite
// block matrix: the graph Laplacian of each cell plus a shift, coupled by [[1,0.1],[0.1,1]]
func assembleLaplace(view *part.View, b int) *bmat.Matrix {
	p := bmat.NewPattern(view.NumEntities())
	for _, verts := range view.CellVerts {
		p.AddClique(verts)
	}
	A := p.Build(b)
	for _, verts := range view.CellVerts {
		nv := len(verts)
		for a, I := range verts {
			for c, J := range verts {
				v := -1.0
				if a == c {
					v = float64(nv-1) + 0.5
				}
				for r := 0; r < b; r++ {
					for s := 0; s < b; s++ {
						if r == s {
							A.Add(I, J, r, s, v)
						} else {
							A.Add(I, J, r, s, 0.1*v)
						}
					}
				}
			}
		}
	}
	return A
}

// rhsValue returns a right-hand side value that only depends on the global id
func rhsValue(gid int64, r int) float64 {
	return float64(gid%5) - 2.0 + 0.5*float64(r)
}

// identity implements a preconditioner that copies the defect
type identity struct{}

func (identity) Apply(v, d []float64) error {
	copy(v, d)
	return nil
}
