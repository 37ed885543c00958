// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package part implements the view of a partitioned mesh held by one rank
package part

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/inp"
)

// PartitionType classifies an entity with respect to the partition boundary
type PartitionType int

const (
	Interior PartitionType = iota // owned by this rank only
	Border                        // shared with at least one other rank
	Overlap                       // copy of a remote entity; not produced by non-overlapping views
)

// String returns the name of the partition type
func (o PartitionType) String() string {
	switch o {
	case Interior:
		return "interior"
	case Border:
		return "border"
	case Overlap:
		return "overlap"
	}
	return "unknown"
}

// Entity holds a vertex of the local partition
type Entity struct {
	Local  int           // local index
	Global int64         // global identifier == mesh vertex id
	Type   PartitionType // partition type
	Ranks  []int         // ranks holding this entity, in increasing order (includes this rank)
	Vert   *inp.Vert     // mesh vertex
}

// Owner returns the rank responsible for this entity: the lowest sharing rank
func (o *Entity) Owner() int { return o.Ranks[0] }

// View holds the entities and cells of one partition
type View struct {
	Rank      int         // this rank
	Size      int         // number of ranks
	Msh       *inp.Mesh   // the whole mesh
	Entities  []*Entity   // [nlocal] local vertices
	Cells     []*inp.Cell // [ncells] local cells
	CellVerts [][]int     // [ncells][nverts] local vertex indices of cells
	vid2local map[int]int // maps mesh vertex id to local index
	iface     *comm.Interface
}

// New returns the view of rank over a mesh partitioned with cell.Part
//
//	Note: with size == 1 all cells are local, regardless of cell.Part
func New(msh *inp.Mesh, rank, size int) (o *View, err error) {

	// check
	if size < 1 || rank < 0 || rank >= size {
		return nil, chk.Err("invalid rank/size pair: rank=%d size=%d", rank, size)
	}
	if size > 1 && msh.Nparts != size {
		return nil, chk.Err("mesh has %d partitions but %d ranks are running", msh.Nparts, size)
	}

	// ranks touching each vertex
	vranks := make([][]int, len(msh.Verts))
	for _, c := range msh.Cells {
		p := c.Part
		if size == 1 {
			p = 0
		}
		for _, v := range c.Verts {
			vranks[v] = insertSorted(vranks[v], p)
		}
	}

	// local cells and vertices, numbered in cell order
	o = &View{Rank: rank, Size: size, Msh: msh, vid2local: make(map[int]int)}
	for _, c := range msh.Cells {
		if size > 1 && c.Part != rank {
			continue
		}
		lverts := make([]int, len(c.Verts))
		for m, v := range c.Verts {
			l, ok := o.vid2local[v]
			if !ok {
				l = len(o.Entities)
				o.vid2local[v] = l
				e := &Entity{Local: l, Global: int64(v), Type: Interior, Ranks: vranks[v], Vert: msh.Verts[v]}
				if len(e.Ranks) > 1 {
					e.Type = Border
				}
				o.Entities = append(o.Entities, e)
			}
			lverts[m] = l
		}
		o.Cells = append(o.Cells, c)
		o.CellVerts = append(o.CellVerts, lverts)
	}
	if len(o.Cells) == 0 {
		return nil, chk.Err("rank %d has no cells", rank)
	}

	// interface
	o.iface = new(comm.Interface)
	neigh := make(map[int][]int)
	for _, e := range o.Entities {
		for _, r := range e.Ranks {
			if r != rank {
				neigh[r] = append(neigh[r], e.Local)
			}
		}
	}
	for r := range neigh {
		o.iface.Ranks = append(o.iface.Ranks, r)
	}
	sort.Ints(o.iface.Ranks)
	for _, r := range o.iface.Ranks {
		idx := neigh[r]
		sort.Slice(idx, func(a, b int) bool { return o.Entities[idx[a]].Global < o.Entities[idx[b]].Global })
		o.iface.Indices = append(o.iface.Indices, idx)
	}
	return
}

// NumEntities returns the number of local entities
func (o *View) NumEntities() int { return len(o.Entities) }

// Interface returns the interior-border interface used in exchanges
func (o *View) Interface() *comm.Interface { return o.iface }

// LocalIndex returns the local index of a mesh vertex
func (o *View) LocalIndex(vid int) (int, bool) {
	l, ok := o.vid2local[vid]
	return l, ok
}

// Neighbours returns the other ranks sharing entity i
func (o *View) Neighbours(i int) (ranks []int) {
	for _, r := range o.Entities[i].Ranks {
		if r != o.Rank {
			ranks = append(ranks, r)
		}
	}
	return
}

// Owner returns the rank owning entity i
func (o *View) Owner(i int) int { return o.Entities[i].Owner() }

// IsOwner tells whether this rank owns entity i
func (o *View) IsOwner(i int) bool { return o.Entities[i].Owner() == o.Rank }

// NumOwned returns the number of entities owned by this rank
func (o *View) NumOwned() (n int) {
	for i := range o.Entities {
		if o.IsOwner(i) {
			n++
		}
	}
	return
}

// insertSorted inserts r into the sorted set s
func insertSorted(s []int, r int) []int {
	k := sort.SearchInts(s, r)
	if k < len(s) && s[k] == r {
		return s
	}
	s = append(s, 0)
	copy(s[k+1:], s[k:])
	s[k] = r
	return s
}
