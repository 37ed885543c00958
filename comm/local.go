// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import (
	"math"
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/exascience/pargo/parallel"
)

// cluster holds the state shared by the in-process ranks
type cluster struct {
	size   int
	mu     sync.Mutex
	cond   *sync.Cond
	gen    int       // reduction generation
	count  int       // number of ranks arrived at the current reduction
	vals   []float64 // [size] contributions
	result float64
	ch     [][]chan []float64 // [from][to] mailboxes
}

func newCluster(size int) *cluster {
	o := &cluster{size: size, vals: make([]float64, size)}
	o.cond = sync.NewCond(&o.mu)
	o.ch = make([][]chan []float64, size)
	for i := 0; i < size; i++ {
		o.ch[i] = make([]chan []float64, size)
		for j := 0; j < size; j++ {
			if i != j {
				o.ch[i][j] = make(chan []float64, 1)
			}
		}
	}
	return o
}

// reduce combines the contributions in rank order so all ranks get the very same result
func (o *cluster) reduce(rank int, x float64, op func(a, b float64) float64) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	gen := o.gen
	o.vals[rank] = x
	o.count++
	if o.count == o.size {
		res := o.vals[0]
		for i := 1; i < o.size; i++ {
			res = op(res, o.vals[i])
		}
		o.result = res
		o.count = 0
		o.gen++
		o.cond.Broadcast()
		return res
	}
	for gen == o.gen {
		o.cond.Wait()
	}
	return o.result
}

// Local implements a communicator whose ranks are goroutines of the same process
type Local struct {
	rank int
	cl   *cluster
}

func (o *Local) Rank() int { return o.rank }
func (o *Local) Size() int { return o.cl.size }

func (o *Local) Max(x float64) float64 { return o.cl.reduce(o.rank, x, math.Max) }
func (o *Local) Min(x float64) float64 { return o.cl.reduce(o.rank, x, math.Min) }

func (o *Local) Sum(x float64) float64 {
	return o.cl.reduce(o.rank, x, func(a, b float64) float64 { return a + b })
}

// Send posts a copy of vals to rank 'to'
func (o *Local) Send(vals []float64, to int) {
	if to < 0 || to >= o.cl.size || to == o.rank {
		chk.Panic("rank %d cannot send to rank %d", o.rank, to)
	}
	msg := make([]float64, len(vals))
	copy(msg, vals)
	o.cl.ch[o.rank][to] <- msg
}

// Recv waits for the next message from rank 'from'
func (o *Local) Recv(from int) []float64 {
	if from < 0 || from >= o.cl.size || from == o.rank {
		chk.Panic("rank %d cannot receive from rank %d", o.rank, from)
	}
	return <-o.cl.ch[from][o.rank]
}

// NewLocal returns the communicators of a group with size ranks
//
//	Note: each communicator must be driven by its own goroutine
func NewLocal(size int) []Communicator {
	if size < 1 {
		chk.Panic("number of ranks must be positive; size = %d is invalid", size)
	}
	cl := newCluster(size)
	res := make([]Communicator, size)
	for i := 0; i < size; i++ {
		res[i] = &Local{rank: i, cl: cl}
	}
	return res
}

// Run runs fn concurrently on size in-process ranks and returns the error of the lowest failing rank
func Run(size int, fn func(c Communicator) error) error {
	comms := NewLocal(size)
	errs := make([]error, size)
	thunks := make([]func(), size)
	for i := range comms {
		thunks[i] = func() {
			errs[i] = fn(comms[i])
		}
	}
	parallel.Do(thunks...)
	for i, err := range errs {
		if err != nil {
			return chk.Err("rank %d failed:\n%v", i, err)
		}
	}
	return nil
}
