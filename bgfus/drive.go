// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"math/rand"

	"github.com/ccnlab/bgfus/pulse"
)

// DriveStage is the external (cortical) drive input to the circuit: one
// pulsed amplitude source per channel, evaluated at the current
// simulation time in the modulation phase of each step.  The compiled
// signal functions are fixed at Build and never mutate afterward.
type DriveStage struct {
	StageStru
	Attn  []pulse.AttnParams `desc:"per-channel drive amplitude sources, with optional attenuation windows"`
	Noise NoiseParams        `view:"inline" desc:"optional additive noise on the evaluated drive"`
	Srcs  []pulse.Func       `view:"-" json:"-" xml:"-" desc:"compiled per-channel signal functions, fixed at Build"`
}

func (ds *DriveStage) Defaults() {
	ds.Noise.Defaults()
	for i := range ds.Attn {
		ds.Attn[i].Defaults()
	}
}

func (ds *DriveStage) UpdateParams() {
}

// SetDrive configures channel ch as a constant amplitude source
func (ds *DriveStage) SetDrive(ch int, amp float32) {
	ds.Attn[ch] = pulse.AttnParams{Amp: amp}
}

// SetAttnDrive configures channel ch as a pulsed source attenuated by
// kappa inside the given window
func (ds *DriveStage) SetAttnDrive(ch int, amp, kappa float32, win pulse.Window) {
	ds.Attn[ch] = pulse.AttnParams{Amp: amp, Kappa: kappa, Win: win}
}

func (ds *DriveStage) Build(n int, dt float32) error {
	if len(ds.Attn) != n {
		return &ConfigError{Field: ds.Nm + ".Attn", Value: len(ds.Attn), Reason: "number of drive sources must equal the channel count"}
	}
	for i := range ds.Attn {
		if !ds.Attn[i].Win.WellFormed() {
			return &ConfigError{Field: ds.Nm + ".Attn.Win", Value: ds.Attn[i].Win, Reason: "window start and duration must be >= 0"}
		}
		if ds.Attn[i].Kappa < 0 || ds.Attn[i].Kappa > 1 {
			return &ConfigError{Field: ds.Nm + ".Attn.Kappa", Value: ds.Attn[i].Kappa, Reason: "attenuation fraction must be in [0,1]"}
		}
	}
	ds.BuildStru(n, dt)
	ds.Srcs = make([]pulse.Func, n)
	for i := range ds.Attn {
		ds.Srcs[i] = ds.Attn[i].Func()
	}
	return nil
}

// EvalMod sets the output activity directly from the compiled signal
// functions at time t, plus any configured noise
func (ds *DriveStage) EvalMod(t float32, rnd *rand.Rand) {
	for i := range ds.Act {
		ds.Act[i] = ds.Srcs[i](t) + ds.Noise.Gen(rnd)
	}
}
