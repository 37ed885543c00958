// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"bytes"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/part"
)

func Test_vtu01(tst *testing.T) {

	//chk.Verbose = true
	chk.PrintTitle("vtu01")

	msh, err := inp.GenMesh(&inp.GenMeshData{Nx: 2, Ny: 1, Lx: 2, Ly: 1, Nparts: 2, Tri: true})
	require.NoError(tst, err)
	view, err := part.New(msh, 1, 2)
	require.NoError(tst, err)

	u := []float64{1, 2, 3, 4}
	var buf bytes.Buffer
	require.NoError(tst, Vtu(&buf, view, "u", u))
	if chk.Verbose {
		io.Pf("%s\n", buf.String())
	}
	s := buf.String()
	assert.Contains(tst, s, "<Piece NumberOfPoints=\"4\" NumberOfCells=\"2\">")
	assert.Contains(tst, s, "\n0 1 2 0 2 3 \n")
	assert.Contains(tst, s, "\n3 6 \n")
	assert.Contains(tst, s, "\n5 5 \n")
	assert.Contains(tst, s, "\n1 2 5 4 \n") // global ids
	assert.Contains(tst, s, "\n0 1 1 0 \n") // owners

	// wrong size
	buf.Reset()
	require.Error(tst, Vtu(&buf, view, "u", u[:3]))
}

func Test_vtu02(tst *testing.T) {

	//chk.Verbose = true
	chk.PrintTitle("vtu02")

	var buf bytes.Buffer
	Pvtu(&buf, "sim", "u", 3)
	s := buf.String()
	for p := 0; p < 3; p++ {
		assert.Contains(tst, s, io.Sf("<Piece Source=\"sim_p%d.vtu\"/>", p))
	}
	chk.String(tst, PieceName("a", 7), "a_p7.vtu")
}
