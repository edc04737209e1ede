// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lowpass provides the exponential low-pass synaptic filter used on
every signal crossing a connection, and on filtered report probes.

The filter advances as: state += (dt/Tau) * (input - state), once per
global time step.  Tau = 0 makes the filter a pass-through.
*/
package lowpass

// Params are exponential low-pass filter parameters, with the time
// constant in seconds.  The step rate is derived per run from the fixed
// step size via Alpha.
type Params struct {
	Tau float32 `min:"0" def:"0.02" desc:"filter time constant in seconds -- 0 = pass-through (no filtering)"`
}

func (lp *Params) Defaults() {
	lp.Tau = 0.02
}

func (lp *Params) Update() {
}

// Alpha returns the per-step filter rate dt/Tau for step size dt.
// Tau = 0 returns 1 (pass-through).  No stability clamping is applied:
// dt >> Tau diverges and is caught by the run's per-step finite check.
func (lp *Params) Alpha(dt float32) float32 {
	if lp.Tau == 0 {
		return 1
	}
	return dt / lp.Tau
}

// Step advances filter state st one step toward in, at rate alpha
// (from Params.Alpha): *st += alpha * (in - *st).
func Step(st *float32, in, alpha float32) {
	*st += alpha * (in - *st)
}

// StepVec advances each element of filter state vector st toward the
// corresponding element of in, at rate alpha.
func StepVec(st, in []float32, alpha float32) {
	for i := range st {
		st[i] += alpha * (in[i] - st[i])
	}
}
