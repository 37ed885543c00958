// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"github.com/cpmech/gosl/chk"
	"github.com/zlicloud/opm-models/bmat"
	"github.com/zlicloud/opm-models/comm"
	"github.com/zlicloud/opm-models/part"
)

// Exchanger sums the entries of border rows over all partitions sharing them
type Exchanger struct {
	c     comm.Communicator
	iface *comm.Interface
	reg   *Registry
}

// NewExchanger returns a new exchanger
func NewExchanger(c comm.Communicator, view *part.View, reg *Registry) *Exchanger {
	return &Exchanger{c: c, iface: view.Interface(), reg: reg}
}

// SumEntries adds to every border row of A the entries that neighbours hold in the same row,
// for all columns which are border DOFs. Entries absent from the local pattern are skipped.
//
//	Note: A must hold a freshly assembled local matrix; calling SumEntries twice double counts
func (o *Exchanger) SumEntries(A *bmat.Matrix) (skipped int, err error) {
	if o.c.Size() == 1 {
		return
	}
	h := &entryHandle{A: A, reg: o.reg, blk: make([]float64, A.B*A.B)}
	err = comm.Exchange(o.c, o.iface, h)
	if err != nil {
		return 0, chk.Err("cannot exchange matrix entries:\n%v", err)
	}
	return h.skipped, nil
}

// entryHandle packs (global column id, block) pairs of border columns
type entryHandle struct {
	A       *bmat.Matrix
	reg     *Registry
	blk     []float64
	skipped int
}

func (o *entryHandle) Size(i int) (n int) {
	for p := o.A.Ptr[i]; p < o.A.Ptr[i+1]; p++ {
		if o.reg.IsBorder(o.A.Col[p]) {
			n += 1 + len(o.blk)
		}
	}
	return
}

func (o *entryHandle) Gather(buf *comm.Buffer, i int) {
	for p := o.A.Ptr[i]; p < o.A.Ptr[i+1]; p++ {
		j := o.A.Col[p]
		if gid, ok := o.reg.GlobalID(j); ok {
			buf.WriteID(gid)
			buf.Write(o.A.Block(i, j)...)
		}
	}
}

func (o *entryHandle) Scatter(buf *comm.Buffer, i, n int) {
	for k := 0; k < n/(1+len(o.blk)); k++ {
		gid := buf.ReadID()
		for m := range o.blk {
			o.blk[m] = buf.Read()
		}
		j, ok := o.reg.LocalIndex(gid)
		if !ok || !o.A.AddBlock(i, j, o.blk) {
			o.skipped++
		}
	}
}
