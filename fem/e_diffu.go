// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/zlicloud/opm-models/inp"
	"github.com/zlicloud/opm-models/shp"
)

// DiffuMdl holds the parameters of the nonlinear diffusion model
//
//	k(u) = k0 (1 + β u²)
type DiffuMdl struct {
	K0     float64 // reference conductivity
	Beta   float64 // nonlinearity coefficient
	Source float64 // source term at full load
	Load   float64 // fraction of the source term applied; in [0,1]
}

// Kval returns k(u)
func (o *DiffuMdl) Kval(u float64) float64 { return o.K0 * (1.0 + o.Beta*u*u) }

// DkDu returns dk/du
func (o *DiffuMdl) DkDu(u float64) float64 { return 2.0 * o.K0 * o.Beta * u }

// Sval returns the current source term
func (o *DiffuMdl) Sval() float64 { return o.Load * o.Source }

// ElemDiffu implements an element for solving the steady nonlinear diffusion equation
//
//	div w = s    with    w = -k(u) ∇u
//
//	R_m  = ∫ (k ∇N_m · ∇u - N_m s) dΩ
//	K_mn = ∫ (k ∇N_m · ∇N_n + dk/du N_n ∇N_m · ∇u) dΩ
type ElemDiffu struct {

	// basic data
	Cell *inp.Cell   // the cell structure
	X    [][]float64 // matrix of nodal coordinates [ndim][nverts]
	Ndim int         // space dimension
	Shp  *shp.Shape  // shape structure; not shared with other elements
	Mdl  *DiffuMdl   // model
	umap []int       // local indices of vertices

	// scratchpad
	uval  float64   // u @ ip
	gradu []float64 // [ndim] ∇u @ ip
}

// register element
func init() {
	eallocators["diffu"] = func(cell *inp.Cell, x [][]float64, umap []int, mdl *DiffuMdl) (Elem, error) {
		var o ElemDiffu
		o.Cell = cell
		o.X = x
		o.Ndim = len(x)
		o.Mdl = mdl
		o.umap = umap
		o.Shp = shp.Get(cell.Type, 1)
		if o.Shp == nil {
			return nil, chk.Err("cannot find shape type %q", cell.Type)
		}
		if len(umap) != o.Shp.Nverts {
			return nil, chk.Err("cell %d has %d vertices but %s requires %d", cell.Id, len(umap), cell.Type, o.Shp.Nverts)
		}
		o.gradu = make([]float64, o.Ndim)
		return &o, nil
	}
}

// Id returns the cell Id
func (o *ElemDiffu) Id() int { return o.Cell.Id }

// Umap returns the local indices of vertices
func (o *ElemDiffu) Umap() []int { return o.umap }

// Residual computes the element residual
func (o *ElemDiffu) Residual(re []float64, u []float64) (err error) {
	nverts := o.Shp.Nverts
	for m := 0; m < nverts; m++ {
		re[m] = 0
	}
	sval := o.Mdl.Sval()
	for _, ip := range o.Shp.Ips {
		err = o.ipvars(ip, u)
		if err != nil {
			return
		}
		coef := o.Shp.J * ip.W
		S := o.Shp.S
		G := o.Shp.G
		kval := o.Mdl.Kval(o.uval)
		for m := 0; m < nverts; m++ {
			re[m] -= coef * S[m] * sval
			for i := 0; i < o.Ndim; i++ {
				re[m] += coef * kval * G[m][i] * o.gradu[i]
			}
		}
	}
	return
}

// Jacobian computes the element Jacobian
func (o *ElemDiffu) Jacobian(Ke [][]float64, u []float64) (err error) {
	nverts := o.Shp.Nverts
	for m := 0; m < nverts; m++ {
		for n := 0; n < nverts; n++ {
			Ke[m][n] = 0
		}
	}
	for _, ip := range o.Shp.Ips {
		err = o.ipvars(ip, u)
		if err != nil {
			return
		}
		coef := o.Shp.J * ip.W
		S := o.Shp.S
		G := o.Shp.G
		kval := o.Mdl.Kval(o.uval)
		dkdu := o.Mdl.DkDu(o.uval)
		for m := 0; m < nverts; m++ {
			gmu := 0.0
			for i := 0; i < o.Ndim; i++ {
				gmu += G[m][i] * o.gradu[i]
			}
			for n := 0; n < nverts; n++ {
				gmn := 0.0
				for i := 0; i < o.Ndim; i++ {
					gmn += G[m][i] * G[n][i]
				}
				Ke[m][n] += coef * (kval*gmn + dkdu*S[n]*gmu)
			}
		}
	}
	return
}

// ipvars computes shape functions, u and ∇u at an integration point
func (o *ElemDiffu) ipvars(ip shp.Ipoint, u []float64) (err error) {
	err = o.Shp.CalcAtIp(o.X, ip, true)
	if err != nil {
		return chk.Err("cell %d: %v", o.Cell.Id, err)
	}
	o.uval = 0
	for i := 0; i < o.Ndim; i++ {
		o.gradu[i] = 0
	}
	for m, l := range o.umap {
		o.uval += o.Shp.S[m] * u[l]
		for i := 0; i < o.Ndim; i++ {
			o.gradu[i] += o.Shp.G[m][i] * u[l]
		}
	}
	return
}
