// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

// bgfus.Time contains the timing state for a simulation run: the current
// simulation time, the step counter, and the fixed step size.
type Time struct {
	Time float32 `desc:"current simulation time in seconds, = Step * Dt"`
	Step int     `desc:"number of completed integration steps in this run"`
	Dt   float32 `def:"0.001" min:"0" desc:"fixed integration step size in seconds"`
}

// NewTime returns a new Time with default parameters set
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

func (tm *Time) Defaults() {
	tm.Dt = 0.001
}

// Reset resets the time and step counter to zero, retaining Dt
func (tm *Time) Reset() {
	tm.Time = 0
	tm.Step = 0
}

// StepInc increments the step counter and updates Time.  Time is computed
// as Step * Dt rather than accumulated, so grid times stay exact to
// float32 precision over long runs.
func (tm *Time) StepInc() {
	tm.Step++
	tm.Time = float32(float64(tm.Step) * float64(tm.Dt))
}
