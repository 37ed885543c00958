// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package comm implements the message-passing substrate used by distributed solvers
package comm

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Communicator defines the collective and point-to-point operations of a group of ranks
//
//	Note: collectives must be called by all ranks in the same order
type Communicator interface {
	Rank() int                   // rank of this process in [0, Size)
	Size() int                   // number of ranks
	Max(x float64) float64       // global maximum
	Min(x float64) float64       // global minimum
	Sum(x float64) float64       // global sum
	Send(vals []float64, to int) // blocking send
	Recv(from int) []float64     // blocking receive
}

// Interface holds the entities shared with each neighbouring rank
type Interface struct {
	Ranks   []int   // [nneigh] neighbour ranks in increasing order
	Indices [][]int // [nneigh][nshared] local entity indices, sorted by global id
}

// NumNeighbours returns the number of neighbouring ranks
func (o *Interface) NumNeighbours() int {
	if o == nil {
		return 0
	}
	return len(o.Ranks)
}

// DataHandle packs and unpacks the data attached to an entity
type DataHandle interface {
	Size(i int) int                // number of values entity i will write
	Gather(buf *Buffer, i int)     // writes data of entity i into buffer
	Scatter(buf *Buffer, i, n int) // reads n values sent by a neighbour for entity i
}

// Buffer holds a message being packed or unpacked
type Buffer struct {
	data []float64
	pos  int
	over bool // a read went past the end
}

// Write appends values
func (o *Buffer) Write(vals ...float64) {
	o.data = append(o.data, vals...)
}

// MaxID is the largest global identifier carried exactly by a Buffer (2⁵³)
const MaxID = 1 << 53

// WriteID appends a global identifier
//
//	Note: identifiers travel as float64; |id| > MaxID panics
func (o *Buffer) WriteID(id int64) {
	if id > MaxID || id < -MaxID {
		chk.Panic("global identifier %d cannot be represented exactly in a buffer (max = %d)", id, int64(MaxID))
	}
	o.data = append(o.data, float64(id))
}

// Read returns the next value
func (o *Buffer) Read() float64 {
	if o.pos >= len(o.data) {
		o.over = true
		return 0
	}
	v := o.data[o.pos]
	o.pos++
	return v
}

// ReadID returns the next global identifier
func (o *Buffer) ReadID() int64 {
	return int64(math.Round(o.Read()))
}

// Skip discards n values
func (o *Buffer) Skip(n int) {
	for k := 0; k < n; k++ {
		o.Read()
	}
}

// Len returns the number of values in buffer
func (o *Buffer) Len() int { return len(o.data) }

// Exchange performs a forward communication over the interface: every rank gathers the data of
// its shared entities, sends them to the neighbours sharing them and scatters what it receives
//
//	Note: all outgoing messages are packed before any incoming message is scattered, thus
//	      handles see the values held before the exchange started
func Exchange(c Communicator, iface *Interface, h DataHandle) (err error) {
	if c.Size() == 1 || iface.NumNeighbours() == 0 {
		return
	}

	// pack
	out := make([][]float64, len(iface.Ranks))
	for k, idx := range iface.Indices {
		var buf Buffer
		for _, i := range idx {
			buf.Write(float64(h.Size(i)))
			h.Gather(&buf, i)
		}
		out[k] = buf.data
	}

	// pairwise exchange; the lower rank sends first
	me := c.Rank()
	in := make([][]float64, len(iface.Ranks))
	for k, r := range iface.Ranks {
		if r == me {
			return chk.Err("rank %d cannot exchange data with itself", me)
		}
		if me < r {
			c.Send(out[k], r)
			in[k] = c.Recv(r)
		} else {
			in[k] = c.Recv(r)
			c.Send(out[k], r)
		}
	}

	// unpack
	for k, idx := range iface.Indices {
		buf := Buffer{data: in[k]}
		for _, i := range idx {
			n := int(buf.Read())
			h.Scatter(&buf, i, n)
		}
		if buf.over || buf.pos != len(buf.data) {
			return chk.Err("message from rank %d does not match the interface: read %d of %d values", iface.Ranks[k], buf.pos, len(buf.data))
		}
	}
	return
}
