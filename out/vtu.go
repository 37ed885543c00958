// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out writes results of simulations in formats read by visualisation tools
package out

import (
	"bytes"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/zlicloud/opm-models/part"
)

// Vtu writes the cells of a partition and the scalar field u at its vertices as a VTK
// unstructured grid. The local numbering of vertices is used in connectivities
func Vtu(buf *bytes.Buffer, view *part.View, ukey string, u []float64) (err error) {
	if len(u) != view.NumEntities() {
		return chk.Err("field has %d values but partition has %d vertices", len(u), view.NumEntities())
	}
	nv := view.NumEntities()
	nc := len(view.Cells)
	io.Ff(buf, "<?xml version=\"1.0\"?>\n<VTKFile type=\"UnstructuredGrid\" version=\"0.1\" byte_order=\"LittleEndian\">\n<UnstructuredGrid>\n")
	io.Ff(buf, "<Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n", nv, nc)
	err = topology(buf, view)
	if err != nil {
		return
	}
	pdata(buf, view, ukey, u)
	cdata(buf, view)
	io.Ff(buf, "</Piece>\n</UnstructuredGrid>\n</VTKFile>\n")
	return
}

// Pvtu writes the index of the pieces written by nproc processors
func Pvtu(buf *bytes.Buffer, fnkey, ukey string, nproc int) {
	io.Ff(buf, "<?xml version=\"1.0\"?>\n<VTKFile type=\"PUnstructuredGrid\" version=\"0.1\" byte_order=\"LittleEndian\">\n<PUnstructuredGrid GhostLevel=\"0\">\n")
	io.Ff(buf, "<PPoints>\n<PDataArray type=\"Float64\" NumberOfComponents=\"3\"/>\n</PPoints>\n")
	io.Ff(buf, "<PPointData Scalars=\"%s\">\n", ukey)
	io.Ff(buf, "<PDataArray type=\"Float64\" Name=\"%s\"/>\n<PDataArray type=\"Int64\" Name=\"gid\"/>\n<PDataArray type=\"Int32\" Name=\"owner\"/>\n", ukey)
	io.Ff(buf, "</PPointData>\n<PCellData>\n<PDataArray type=\"Int32\" Name=\"eid\"/>\n<PDataArray type=\"Int32\" Name=\"part\"/>\n</PCellData>\n")
	for p := 0; p < nproc; p++ {
		io.Ff(buf, "<Piece Source=\"%s\"/>\n", PieceName(fnkey, p))
	}
	io.Ff(buf, "</PUnstructuredGrid>\n</VTKFile>\n")
}

// PieceName returns the filename of the piece written by processor proc
func PieceName(fnkey string, proc int) string {
	return io.Sf("%s_p%d.vtu", fnkey, proc)
}

// topology ////////////////////////////////////////////////////////////////////////////////////////

func topology(buf *bytes.Buffer, view *part.View) (err error) {

	// coordinates
	io.Ff(buf, "<Points>\n<DataArray type=\"Float64\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	for _, e := range view.Entities {
		var z float64
		if len(e.Vert.C) > 2 {
			z = e.Vert.C[2]
		}
		io.Ff(buf, "%23.15e %23.15e %23.15e ", e.Vert.C[0], e.Vert.C[1], z)
	}
	io.Ff(buf, "\n</DataArray>\n</Points>\n")

	// connectivities
	io.Ff(buf, "<Cells>\n<DataArray type=\"Int32\" Name=\"connectivity\" format=\"ascii\">\n")
	for _, verts := range view.CellVerts {
		for _, l := range verts {
			io.Ff(buf, "%d ", l)
		}
	}

	// offsets
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"offsets\" format=\"ascii\">\n")
	var offset int
	for _, verts := range view.CellVerts {
		offset += len(verts)
		io.Ff(buf, "%d ", offset)
	}

	// types
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"UInt8\" Name=\"types\" format=\"ascii\">\n")
	for _, c := range view.Cells {
		if c.Shp == nil || c.Shp.VtkCode < 0 {
			return chk.Err("cannot handle cell type %q", c.Type)
		}
		io.Ff(buf, "%d ", c.Shp.VtkCode)
	}
	io.Ff(buf, "\n</DataArray>\n</Cells>\n")
	return
}

// points and cells data ///////////////////////////////////////////////////////////////////////////

func pdata(buf *bytes.Buffer, view *part.View, ukey string, u []float64) {
	io.Ff(buf, "<PointData Scalars=\"%s\">\n", ukey)

	// field
	io.Ff(buf, "<DataArray type=\"Float64\" Name=\"%s\" NumberOfComponents=\"1\" format=\"ascii\">\n", ukey)
	for _, v := range u {
		io.Ff(buf, "%23.15e ", v)
	}

	// global ids
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"Int64\" Name=\"gid\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, e := range view.Entities {
		io.Ff(buf, "%d ", e.Global)
	}

	// owners
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"owner\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, e := range view.Entities {
		io.Ff(buf, "%d ", e.Owner())
	}
	io.Ff(buf, "\n</DataArray>\n</PointData>\n")
}

func cdata(buf *bytes.Buffer, view *part.View) {
	io.Ff(buf, "<CellData Scalars=\"eid\">\n")

	// ids
	io.Ff(buf, "<DataArray type=\"Int32\" Name=\"eid\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, c := range view.Cells {
		io.Ff(buf, "%d ", c.Id)
	}

	// partitions
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"part\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, c := range view.Cells {
		io.Ff(buf, "%d ", c.Part)
	}
	io.Ff(buf, "\n</DataArray>\n</CellData>\n")
}
