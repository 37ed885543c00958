// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	goio "io"
	"os"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/zlicloud/opm-models/out"
)

// Encoder defines encoders; e.g. gob or json
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; e.g. gob or json
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// SaveSol saves the solution of this processor together with the global ids of its DOFs
func (o *Domain) SaveSol(verbose bool) (err error) {

	// buffer and encoder
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.Sim.EncType)

	// encode ids and values
	ids := make([]int64, o.Ndofs)
	for i, e := range o.View.Entities {
		ids[i] = e.Global
	}
	err = enc.Encode(ids)
	if err != nil {
		return chk.Err("cannot encode global ids\n%v", err)
	}
	err = enc.Encode(o.Sol)
	if err != nil {
		return chk.Err("cannot encode Domain.Sol\n%v", err)
	}

	// save file
	fn := out_sol_path(o.Sim.DirOut, o.Sim.Key, o.Sim.EncType, o.Proc)
	return save_file(fn, &buf, verbose)
}

// ReadSol reads the solution saved by SaveSol from processor proc
//
//	Note: the local numbering must be the one of the saved run
func (o *Domain) ReadSol(dir, fnkey, enctype string, proc int) (err error) {
	ids, vals, err := ReadSolution(dir, fnkey, enctype, proc)
	if err != nil {
		return
	}
	if len(ids) != o.Ndofs || len(vals) != o.Ny {
		return chk.Err("solution file has %d DOFs but domain has %d", len(ids), o.Ndofs)
	}
	for i, e := range o.View.Entities {
		if ids[i] != e.Global {
			return chk.Err("global id of DOF %d is %d in file but %d in domain", i, ids[i], e.Global)
		}
	}
	copy(o.Sol, vals)
	return
}

// ReadSolution reads the global ids and values saved by processor proc
func ReadSolution(dir, fnkey, enctype string, proc int) (ids []int64, vals []float64, err error) {

	// open file
	fn := out_sol_path(dir, fnkey, enctype, proc)
	fil, err := os.Open(fn)
	if err != nil {
		return
	}
	defer func() {
		if e := fil.Close(); err == nil {
			err = e
		}
	}()

	// decode
	dec := GetDecoder(fil, enctype)
	err = dec.Decode(&ids)
	if err != nil {
		return nil, nil, chk.Err("cannot decode global ids\n%v", err)
	}
	err = dec.Decode(&vals)
	if err != nil {
		return nil, nil, chk.Err("cannot decode solution\n%v", err)
	}
	return
}

// SaveVtu writes the solution of this processor to a VTU file; the root processor also
// writes the PVTU index of all pieces
func (o *Domain) SaveVtu(verbose bool) (err error) {
	var buf bytes.Buffer
	err = out.Vtu(&buf, o.View, "u", o.Sol)
	if err != nil {
		return
	}
	err = save_file(path.Join(o.Sim.DirOut, out.PieceName(o.Sim.Key, o.Proc)), &buf, verbose)
	if err != nil || o.Proc != 0 {
		return
	}
	var idx bytes.Buffer
	out.Pvtu(&idx, o.Sim.Key, "u", o.Nproc)
	return save_file(path.Join(o.Sim.DirOut, o.Sim.Key+".pvtu"), &idx, verbose)
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func out_sol_path(dir, fnkey, enctype string, proc int) string {
	return path.Join(dir, io.Sf("%s_p%d_sol.%s", fnkey, proc, enctype))
}

func save_file(filename string, buf *bytes.Buffer, verbose bool) (err error) {
	fil, err := os.Create(filename)
	if err != nil {
		return
	}
	defer func() {
		if e := fil.Close(); err == nil {
			err = e
		}
	}()
	_, err = fil.Write(buf.Bytes())
	if verbose {
		io.Pfblue2("file <%s> written\n", filename)
	}
	return
}
