// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pulse provides time-windowed multiplicative modulation signals,
modeling a transient focused ultrasound (FUS) pulse that attenuates a
drive pathway or suppresses an inter-stage signal.

All generators here are stateless, pure functions of simulation time:
repeated evaluation at the same time returns identical values and has no
effect on later calls.
*/
package pulse

// Func is a pure scalar function of simulation time in seconds.
type Func func(t float32) float32

// Const returns a Func with the constant value v at all times.
func Const(v float32) Func {
	return func(t float32) float32 { return v }
}

// Sum returns a Func computing the sum of the given funcs.
func Sum(fs ...Func) Func {
	return func(t float32) float32 {
		var sum float32
		for _, f := range fs {
			sum += f(t)
		}
		return sum
	}
}

// Prod returns a Func computing the product of the given funcs.
func Prod(fs ...Func) Func {
	return func(t float32) float32 {
		prod := float32(1)
		for _, f := range fs {
			prod *= f(t)
		}
		return prod
	}
}

// Window is a closed modulation window [Start, Start+Dur]: both boundary
// instants are inside the window.  A zero-duration window degenerates to
// the single instant Start, which a fixed sampling grid may never land on
// exactly -- accepted edge case, not an error.
type Window struct {
	Start float32 `min:"0" def:"0.5" desc:"window start time in seconds"`
	Dur   float32 `min:"0" def:"0.3" desc:"window duration in seconds -- the window is closed on both ends"`
}

func (pw *Window) Defaults() {
	pw.Start = 0.5
	pw.Dur = 0.3
}

// WellFormed returns true if Start and Dur are both non-negative.
func (pw *Window) WellFormed() bool {
	return pw.Start >= 0 && pw.Dur >= 0
}

// End returns the window end time Start + Dur, which is inside the window.
func (pw *Window) End() float32 {
	return pw.Start + pw.Dur
}

// On returns true if time t is inside the closed window.
func (pw *Window) On(t float32) bool {
	return t >= pw.Start && t <= pw.Start+pw.Dur
}

// AttnParams generates a pulsed drive amplitude: Amp * (1-Kappa) while
// the window is on, Amp otherwise.
type AttnParams struct {
	Amp   float32 `def:"0.8" desc:"baseline drive amplitude outside the window"`
	Kappa float32 `min:"0" max:"1" def:"0.6" desc:"attenuation fraction during the window -- 0 = no attenuation, 1 = full suppression"`
	Win   Window  `view:"inline" desc:"attenuation window"`
}

func (at *AttnParams) Defaults() {
	at.Amp = 0.8
	at.Kappa = 0.6
	at.Win.Defaults()
}

// Eval returns the drive amplitude at time t.
func (at *AttnParams) Eval(t float32) float32 {
	if at.Kappa != 0 && at.Win.On(t) {
		return at.Amp * (1 - at.Kappa)
	}
	return at.Amp
}

// Func returns Eval as a Func closure over a copy of the current params,
// fixing the generator's behavior at the time of the call.
func (at *AttnParams) Func() Func {
	cp := *at
	return func(t float32) float32 { return cp.Eval(t) }
}

// ScaleParams generates the global scaling factor s(t) for the signal
// between the BG and thalamus stages: Base * (1-Depth) while the window
// is on, Base otherwise.
type ScaleParams struct {
	Base  float32 `min:"0" max:"1" def:"1" desc:"baseline scaling factor outside the window"`
	Depth float32 `min:"0" max:"1" def:"0" desc:"suppression depth during the window -- factor becomes Base * (1-Depth)"`
	Win   Window  `view:"inline" desc:"suppression window"`
}

func (sc *ScaleParams) Defaults() {
	sc.Base = 1
	sc.Depth = 0
	sc.Win.Defaults()
}

// Factor returns the scaling factor s(t) at time t.
func (sc *ScaleParams) Factor(t float32) float32 {
	if sc.Depth != 0 && sc.Win.On(t) {
		return sc.Base * (1 - sc.Depth)
	}
	return sc.Base
}

// Func returns Factor as a Func closure over a copy of the current params.
func (sc *ScaleParams) Func() Func {
	cp := *sc
	return func(t float32) float32 { return cp.Factor(t) }
}
