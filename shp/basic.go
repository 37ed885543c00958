// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import "math"

func init() {

	// tri3
	tri3 := &Shape{
		Type:    "tri3",
		Func:    Tri3,
		Gndim:   2,
		Nverts:  3,
		VtkCode: 5,
		NatCoords: [][]float64{
			{0, 1, 0},
			{0, 0, 1},
		},
		Ips: []Ipoint{
			{1.0 / 6.0, 1.0 / 6.0, 1.0 / 6.0},
			{2.0 / 3.0, 1.0 / 6.0, 1.0 / 6.0},
			{1.0 / 6.0, 2.0 / 3.0, 1.0 / 6.0},
		},
	}
	tri3.init_scratchpad()
	factory["tri3"] = tri3

	// qua4
	a := 1.0 / math.Sqrt(3.0)
	qua4 := &Shape{
		Type:    "qua4",
		Func:    Qua4,
		Gndim:   2,
		Nverts:  4,
		VtkCode: 9,
		NatCoords: [][]float64{
			{-1, 1, 1, -1},
			{-1, -1, 1, 1},
		},
		Ips: []Ipoint{
			{-a, -a, 1},
			{a, -a, 1},
			{a, a, 1},
			{-a, a, 1},
		},
	}
	qua4.init_scratchpad()
	factory["qua4"] = qua4
}

// Tri3 calculates the shape functions (S) and derivatives of shape functions (dSdR) of tri3
// elements at {r,s} natural coordinates. The derivatives are calculated only if derivs==true.
//
//	s
//	|
//	2, (0,1)
//	| ',
//	|   ',
//	|     ',
//	|       ',
//	|         ',
//	|           ',
//	|             ',
//	|               ',
//	| (0,0)           ', (1,0)
//	0-------------------1 ---- r
func Tri3(S []float64, dSdR [][]float64, R []float64, derivs bool) {
	r, s := R[0], R[1]
	S[0] = 1.0 - r - s
	S[1] = r
	S[2] = s
	if !derivs {
		return
	}
	dSdR[0][0], dSdR[0][1] = -1.0, -1.0
	dSdR[1][0], dSdR[1][1] = 1.0, 0.0
	dSdR[2][0], dSdR[2][1] = 0.0, 1.0
}

// Qua4 calculates the shape functions (S) and derivatives of shape functions (dSdR) of qua4
// elements at {r,s} natural coordinates. The derivatives are calculated only if derivs==true.
//
//	3-----------2
//	|     s     |
//	|     |     |
//	|     +--r  |
//	|           |
//	|           |
//	0-----------1
func Qua4(S []float64, dSdR [][]float64, R []float64, derivs bool) {
	r, s := R[0], R[1]
	S[0] = (1.0 - r - s + r*s) / 4.0
	S[1] = (1.0 + r - s - r*s) / 4.0
	S[2] = (1.0 + r + s + r*s) / 4.0
	S[3] = (1.0 - r + s - r*s) / 4.0
	if !derivs {
		return
	}
	dSdR[0][0] = (-1.0 + s) / 4.0
	dSdR[1][0] = (+1.0 - s) / 4.0
	dSdR[2][0] = (+1.0 + s) / 4.0
	dSdR[3][0] = (-1.0 - s) / 4.0
	dSdR[0][1] = (-1.0 + r) / 4.0
	dSdR[1][1] = (-1.0 - r) / 4.0
	dSdR[2][1] = (+1.0 + r) / 4.0
	dSdR[3][1] = (+1.0 - r) / 4.0
}
