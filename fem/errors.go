// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

// NumericalProblem signals that a nonlinear solve cannot continue with the current iterate.
// The time driver may recover by restoring the last good solution and reducing the time step.
type NumericalProblem struct {
	Msg string // description
	Err error  // underlying error, if any
}

// Error implements error
func (o *NumericalProblem) Error() string {
	if o.Err != nil {
		return io.Sf("numerical problem: %s:\n%v", o.Msg, o.Err)
	}
	return "numerical problem: " + o.Msg
}

// Unwrap returns the underlying error
func (o *NumericalProblem) Unwrap() error { return o.Err }

// numericalProblem returns a new NumericalProblem
func numericalProblem(err error, msg string, prm ...interface{}) error {
	return &NumericalProblem{Msg: io.Sf(msg, prm...), Err: err}
}

// IsNumericalProblem tells whether err is (or wraps) a NumericalProblem
func IsNumericalProblem(err error) bool {
	var p *NumericalProblem
	return errors.As(err, &p)
}
