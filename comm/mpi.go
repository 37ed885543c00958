// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "github.com/cpmech/gosl/mpi"

// MPI implements a communicator over the world MPI group
type MPI struct {
	c *mpi.Communicator
}

// NewMPI returns a communicator over all processors
//
//	Note: mpi.Start must have been called
func NewMPI() *MPI {
	return &MPI{c: mpi.NewCommunicator(nil)}
}

// New returns the MPI communicator if MPI is on; otherwise a serial one
func New() Communicator {
	if mpi.IsOn() && mpi.WorldSize() > 1 {
		return NewMPI()
	}
	return Serial{}
}

func (o *MPI) Rank() int { return o.c.Rank() }
func (o *MPI) Size() int { return o.c.Size() }

func (o *MPI) Max(x float64) float64 {
	dest := []float64{0}
	o.c.AllReduceMax(dest, []float64{x})
	return dest[0]
}

func (o *MPI) Min(x float64) float64 {
	dest := []float64{0}
	o.c.AllReduceMin(dest, []float64{x})
	return dest[0]
}

func (o *MPI) Sum(x float64) float64 {
	dest := []float64{0}
	o.c.AllReduceSum(dest, []float64{x})
	return dest[0]
}

// Send sends the length of the message followed by its values
func (o *MPI) Send(vals []float64, to int) {
	o.c.SendI([]int{len(vals)}, to)
	if len(vals) > 0 {
		o.c.Send(vals, to)
	}
}

// Recv receives a message sent by Send
func (o *MPI) Recv(from int) []float64 {
	n := []int{0}
	o.c.RecvI(n, from)
	vals := make([]float64, n[0])
	if n[0] > 0 {
		o.c.Recv(vals, from)
	}
	return vals
}
