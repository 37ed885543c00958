// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "github.com/cpmech/gosl/chk"

// Serial implements a communicator with a single rank
type Serial struct{}

func (o Serial) Rank() int             { return 0 }
func (o Serial) Size() int             { return 1 }
func (o Serial) Max(x float64) float64 { return x }
func (o Serial) Min(x float64) float64 { return x }
func (o Serial) Sum(x float64) float64 { return x }
func (o Serial) Recv(from int) []float64 {
	chk.Panic("serial communicator cannot receive from rank %d", from)
	return nil
}

// Send panics because a serial run has no neighbours
func (o Serial) Send(vals []float64, to int) {
	chk.Panic("serial communicator cannot send to rank %d", to)
}
