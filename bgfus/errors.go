// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"errors"
	"fmt"
)

var (
	// ErrBadConfig is the sentinel for all configuration errors: these are
	// reported by Start before any stepping begins, never mid-run.
	ErrBadConfig = errors.New("bgfus: invalid configuration")

	// ErrNonFinite is the sentinel for numeric instability: a stage
	// produced a NaN or Inf output, and the run aborted immediately.
	ErrNonFinite = errors.New("bgfus: non-finite value in stage output")
)

// ConfigError reports one invalid configuration field.  It wraps
// ErrBadConfig for errors.Is checks.
type ConfigError struct {
	Field  string      // parameter or object that failed validation
	Value  interface{} // offending value
	Reason string      // what the constraint is
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s = %v (%s)", ErrBadConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrBadConfig
}

// StepError reports an error that aborted integration, recording the step
// index and simulation time where it occurred.  Probe data recorded before
// the failing step is retained on the Run.
type StepError struct {
	Step    int     // step index at which the error occurred
	Time    float32 // simulation time of that step
	Stage   string  // name of the stage that produced the bad value
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g) stage %s: %v", e.Step, e.Time, e.Stage, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
