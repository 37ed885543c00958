// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	DirOut  string `json:"dirout"`  // directory for output; e.g. /tmp/opm
	Encoder string `json:"encoder"` // encoder name; e.g. "gob" "json"
	ShowR   bool   `json:"showr"`   // show residual/errors at each Newton iteration
	Stat    bool   `json:"stat"`    // save summary with statistics
}

// NewtonData holds data for the Newton controller
type NewtonData struct {
	NmaxIt       int     `json:"nmaxit"`       // maximum number of iterations
	NtargetIt    int     `json:"ntargetit"`    // target number of iterations; used to suggest the next time step
	Rtol         float64 `json:"rtol"`         // tolerance on the relative error of the update
	Atol         float64 `json:"atol"`         // tolerance on the norm of the residual
	EnableRel    bool    `json:"enablerel"`    // check convergence on the relative error
	EnableAbs    bool    `json:"enableabs"`    // check convergence on the absolute error
	MaxRelErr    float64 `json:"maxrelerr"`    // relative errors above this value make the iterations fail
	LineSearch   bool    `json:"linesearch"`   // damp updates with a line search
	PartialReasm bool    `json:"partialreasm"` // reassemble only the rows of DOFs which changed
	JacRecycling bool    `json:"jacrecycling"` // reuse the last Jacobian at the first iteration of the next solve

	// derived
	MinReasmTol float64 // smallest tolerance for partial reassembly == 10 * Rtol
	MaxReasmTol float64 // largest tolerance for partial reassembly
}

// LinSolData holds data for linear solvers
type LinSolData struct {
	Name      string  `json:"name"`      // "bicgstab"
	Precond   string  `json:"precond"`   // sequential preconditioner: "ilu0", "jacobi" or "direct"
	Relax     float64 `json:"relax"`     // relaxation factor of the preconditioner
	MaxIt     int     `json:"maxit"`     // maximum number of iterations
	Verbose   int     `json:"verbose"`   // verbosity level; 0 => silent
	Reduction float64 `json:"reduction"` // residual reduction to be reached
}

// TimeControl holds data for defining the simulation time stepping
type TimeControl struct {
	Tf      float64 `json:"tf"`      // final time
	Dt      float64 `json:"dt"`      // initial time step size
	DtMin   float64 `json:"dtmin"`   // minimum time step size
	DtMax   float64 `json:"dtmax"`   // maximum time step size; 0 => Tf
	NdvgMax int     `json:"ndvgmax"` // max number of continued failures
}

// DirichletBc holds a prescribed value on tagged vertices
type DirichletBc struct {
	Tag   int     `json:"tag"`   // vertex tag
	Value float64 `json:"value"` // prescribed value
}

// ModelData holds the parameters of the nonlinear diffusion model
//
//	-div(k(u) grad(u)) = s   with   k(u) = k0 (1 + beta u²)
type ModelData struct {
	K0        float64        `json:"k0"`        // reference conductivity
	Beta      float64        `json:"beta"`      // nonlinearity coefficient
	Source    float64        `json:"source"`    // source term (at the final time)
	Dirichlet []*DirichletBc `json:"dirichlet"` // prescribed values
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data    Data         `json:"data"`        // stores global simulation data
	Newton  NewtonData   `json:"newton"`      // Newton controller data
	LinSol  LinSolData   `json:"linsol"`      // linear solver data
	Control TimeControl  `json:"timecontrol"` // time control
	Model   ModelData    `json:"model"`       // model parameters
	Mshfile string       `json:"mshfile"`     // file path of file with mesh data
	GenMesh *GenMeshData `json:"genmesh"`     // generate a structured mesh instead of reading mshfile

	// derived
	Msh     *Mesh  `json:"-"` // the mesh
	DirOut  string // directory to save results
	Key     string // simulation key; e.g. mysim01.sim => mysim01 or mysim01-alias
	EncType string // encoder type
}

// ReadSim reads all simulation data from a .sim JSON file
func ReadSim(simfilepath, alias string, erasefiles bool) (o *Simulation, err error) {

	// read file
	b, err := os.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", simfilepath, err)
	}

	// set default values and decode
	o = new(Simulation)
	o.SetDefault()
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}

	// input directory and filename key
	dir := os.ExpandEnv(filepath.Dir(simfilepath))
	fnkey := io.FnKey(filepath.Base(simfilepath))
	o.Key = fnkey
	if alias != "" {
		o.Key += "-" + alias
	}

	// output directory
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = filepath.Join(os.TempDir(), "opm", fnkey)
	}

	// create directory and erase previous simulation results
	if erasefiles {
		err = os.MkdirAll(o.DirOut, 0777)
		if err != nil {
			return nil, chk.Err("cannot create directory for output results (%s):\n%v", o.DirOut, err)
		}
		err = eraseResults(o.DirOut, o.Key)
		if err != nil {
			return nil, err
		}
	}

	// mesh
	if o.GenMesh != nil {
		o.Msh, err = GenMesh(o.GenMesh)
	} else {
		o.Msh, err = ReadMsh(dir, o.Mshfile, 0)
	}
	if err != nil {
		return nil, chk.Err("cannot get mesh:\n%v", err)
	}

	// derived data
	err = o.PostProcess()
	return
}

// SetDefault sets defaults values of all sections
func (o *Simulation) SetDefault() {
	o.Newton.SetDefault()
	o.LinSol.SetDefault()
	o.Control.SetDefault()
	o.Model.SetDefault()
}

// PostProcess checks input data and computes derived values
func (o *Simulation) PostProcess() (err error) {

	// encoder type
	o.EncType = o.Data.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "gob"
	}

	// sections
	if err = o.Newton.PostProcess(); err != nil {
		return
	}
	if err = o.LinSol.PostProcess(); err != nil {
		return
	}
	return o.Control.PostProcess()
}

// eraseResults removes the files of a previous run with the same key
func eraseResults(dirout, key string) (err error) {
	old, err := filepath.Glob(filepath.Join(dirout, key+"_*"))
	if err != nil {
		return chk.Err("cannot list previous results of %q in %s:\n%v", key, dirout, err)
	}
	for _, fn := range old {
		if e := os.Remove(fn); e != nil {
			return chk.Err("cannot erase previous results:\n%v", e)
		}
	}
	return
}

// GetInfo returns formatted information
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return
}

// extra settings //////////////////////////////////////////////////////////////////////////////////

// SetDefault sets defaults values
func (o *NewtonData) SetDefault() {
	o.NmaxIt = 18
	o.NtargetIt = 10
	o.Rtol = 1e-8
	o.Atol = 1e-5
	o.EnableRel = true
	o.EnableAbs = false
	o.MaxRelErr = 1e10
}

// PostProcess performs a post-processing of the just read json file
func (o *NewtonData) PostProcess() (err error) {
	if !o.EnableRel && !o.EnableAbs {
		return chk.Err("at least one of the relative or absolute convergence criteria must be enabled")
	}
	if o.NmaxIt < 1 {
		return chk.Err("maximum number of Newton iterations must be positive; nmaxit = %d is invalid", o.NmaxIt)
	}
	if o.NtargetIt < 1 {
		o.NtargetIt = utl.Imax(1, o.NmaxIt/2)
	}
	o.MinReasmTol = 10.0 * o.Rtol
	o.MaxReasmTol = 1e-4
	return
}

// SetDefault sets defaults values
func (o *LinSolData) SetDefault() {
	o.Name = "bicgstab"
	o.Precond = "ilu0"
	o.Relax = 0.9
	o.MaxIt = 5000
	o.Reduction = 1e-9
}

// PostProcess performs a post-processing of the just read json file
func (o *LinSolData) PostProcess() (err error) {
	if o.Name != "bicgstab" {
		return chk.Err("linear solver %q is not available", o.Name)
	}
	switch o.Precond {
	case "ilu0", "jacobi", "direct":
	default:
		return chk.Err("preconditioner %q is not available", o.Precond)
	}
	if o.Reduction <= 0 || o.Reduction >= 1 {
		return chk.Err("residual reduction must be in (0,1); %g is invalid", o.Reduction)
	}
	return
}

// SetDefault sets defaults values
func (o *TimeControl) SetDefault() {
	o.Tf = 1
	o.Dt = 1
	o.DtMin = 1e-8
	o.NdvgMax = 20
}

// PostProcess performs a post-processing of the just read json file
func (o *TimeControl) PostProcess() (err error) {
	if o.Tf < 1e-14 {
		o.Tf = 1
	}
	if o.Dt < 1e-14 {
		o.Dt = o.Tf
	}
	if o.DtMax < 1e-14 {
		o.DtMax = o.Tf
	}
	if o.Dt > o.DtMax {
		o.Dt = o.DtMax
	}
	return
}

// SetDefault sets defaults values
func (o *ModelData) SetDefault() {
	o.K0 = 1
}
