// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "math"

// AddHandle sums the values of shared entities; V holds Stride values per entity
type AddHandle struct {
	V      []float64
	Stride int
}

func (o AddHandle) Size(i int) int { return o.Stride }

func (o AddHandle) Gather(buf *Buffer, i int) {
	buf.Write(o.V[i*o.Stride : (i+1)*o.Stride]...)
}

func (o AddHandle) Scatter(buf *Buffer, i, n int) {
	for j := 0; j < n; j++ {
		o.V[i*o.Stride+j] += buf.Read()
	}
}

// MaxHandle keeps the maximum of the values of shared entities
type MaxHandle struct {
	V      []float64
	Stride int
}

func (o MaxHandle) Size(i int) int { return o.Stride }

func (o MaxHandle) Gather(buf *Buffer, i int) {
	buf.Write(o.V[i*o.Stride : (i+1)*o.Stride]...)
}

func (o MaxHandle) Scatter(buf *Buffer, i, n int) {
	for j := 0; j < n; j++ {
		o.V[i*o.Stride+j] = math.Max(o.V[i*o.Stride+j], buf.Read())
	}
}

// MinHandle keeps the minimum of the values of shared entities
type MinHandle struct {
	V      []float64
	Stride int
}

func (o MinHandle) Size(i int) int { return o.Stride }

func (o MinHandle) Gather(buf *Buffer, i int) {
	buf.Write(o.V[i*o.Stride : (i+1)*o.Stride]...)
}

func (o MinHandle) Scatter(buf *Buffer, i, n int) {
	for j := 0; j < n; j++ {
		o.V[i*o.Stride+j] = math.Min(o.V[i*o.Stride+j], buf.Read())
	}
}

// AddExchange sums vector v over all ranks sharing each entity
func AddExchange(c Communicator, iface *Interface, v []float64, stride int) error {
	return Exchange(c, iface, AddHandle{v, stride})
}

// MaxExchange replaces the values of shared entities by their maximum over all sharers
func MaxExchange(c Communicator, iface *Interface, v []float64, stride int) error {
	return Exchange(c, iface, MaxHandle{v, stride})
}

// MinExchange replaces the values of shared entities by their minimum over all sharers
func MinExchange(c Communicator, iface *Interface, v []float64, stride int) error {
	return Exchange(c, iface, MinHandle{v, stride})
}
