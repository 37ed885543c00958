// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package lsol implements the distributed linear solver for non-overlapping partitions
package lsol

import (
	"sort"

	"github.com/zlicloud/opm-models/part"
)

// Registry maps the border DOFs of a partition to their global identifiers and back
//
//	Note: identifiers come from the mesh so all sharers agree on them
type Registry struct {
	gid2local map[int64]int
	local2gid map[int]int64
	border    []int // local indices of border DOFs, increasing
}

// NewRegistry registers all border entities of a view
func NewRegistry(view *part.View) (o *Registry) {
	o = &Registry{
		gid2local: make(map[int64]int),
		local2gid: make(map[int]int64),
	}
	for _, e := range view.Entities {
		if e.Type != part.Border {
			continue
		}
		o.gid2local[e.Global] = e.Local
		o.local2gid[e.Local] = e.Global
		o.border = append(o.border, e.Local)
	}
	sort.Ints(o.border)
	return
}

// GlobalID returns the global identifier of a border DOF
func (o *Registry) GlobalID(local int) (gid int64, ok bool) {
	gid, ok = o.local2gid[local]
	return
}

// LocalIndex returns the local index of a border DOF
func (o *Registry) LocalIndex(gid int64) (local int, ok bool) {
	local, ok = o.gid2local[gid]
	return
}

// IsBorder tells whether a local DOF is on the border
func (o *Registry) IsBorder(local int) bool {
	_, ok := o.local2gid[local]
	return ok
}

// BorderIndices returns the local indices of all border DOFs
func (o *Registry) BorderIndices() []int { return o.border }

// NumBorder returns the number of border DOFs
func (o *Registry) NumBorder() int { return len(o.border) }
