// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import "github.com/cpmech/gosl/chk"

// vertex tags of generated meshes
const (
	TagLeft   = -1 // x == xmin
	TagRight  = -2 // x == xmax
	TagBottom = -3 // y == ymin
	TagTop    = -4 // y == ymax
)

// GenMeshData holds the data of a structured rectangular mesh
type GenMeshData struct {
	Nx     int     `json:"nx"`     // number of divisions along x
	Ny     int     `json:"ny"`     // number of divisions along y
	Lx     float64 `json:"lx"`     // length along x
	Ly     float64 `json:"ly"`     // length along y
	Nparts int     `json:"nparts"` // number of partitions (vertical strips)
	Tri    bool    `json:"tri"`    // split each quadrilateral into two triangles
}

// GenMesh generates a structured mesh over [0,lx]×[0,ly]
//
//	Vertices on the left and right sides are tagged with TagLeft and TagRight;
//	the remaining boundary vertices with TagBottom or TagTop. Cells are tagged -1
//	and assigned to vertical strips of columns: part = ix * nparts / nx
func GenMesh(dat *GenMeshData) (o *Mesh, err error) {

	// check
	nx, ny := dat.Nx, dat.Ny
	if nx < 1 || ny < 1 {
		return nil, chk.Err("number of divisions must be positive; nx=%d ny=%d", nx, ny)
	}
	nparts := dat.Nparts
	if nparts < 1 {
		nparts = 1
	}
	if nparts > nx {
		return nil, chk.Err("cannot split %d columns into %d partitions", nx, nparts)
	}

	// vertices
	o = new(Mesh)
	dx, dy := dat.Lx/float64(nx), dat.Ly/float64(ny)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			tag := 0
			switch {
			case i == 0:
				tag = TagLeft
			case i == nx:
				tag = TagRight
			case j == 0:
				tag = TagBottom
			case j == ny:
				tag = TagTop
			}
			id := len(o.Verts)
			o.Verts = append(o.Verts, &Vert{Id: id, Tag: tag, C: []float64{float64(i) * dx, float64(j) * dy}})
		}
	}

	// cells
	vid := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			part := i * nparts / nx
			a, b, c, d := vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)
			if dat.Tri {
				o.Cells = append(o.Cells, &Cell{Id: len(o.Cells), Tag: -1, Type: "tri3", Part: part, Verts: []int{a, b, c}})
				o.Cells = append(o.Cells, &Cell{Id: len(o.Cells), Tag: -1, Type: "tri3", Part: part, Verts: []int{a, c, d}})
				continue
			}
			o.Cells = append(o.Cells, &Cell{Id: len(o.Cells), Tag: -1, Type: "qua4", Part: part, Verts: []int{a, b, c, d}})
		}
	}

	// derived data
	err = o.Init(0)
	return
}
