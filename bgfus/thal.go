// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"math/rand"

	"github.com/ccnlab/bgfus/lowpass"
	"github.com/emer/etable/minmax"
)

// RelayParams are the thalamic relay dynamics: a constant excitatory bias
// opposed by the gained inhibitory input and by mutual inhibition from
// the other relay channels, rectified and integrated with time constant
// Tau, clamped to RelRange.
type RelayParams struct {
	Bias   float32        `def:"1" desc:"constant excitatory bias driving relay activity when inhibition is low"`
	Gain   float32        `def:"3" min:"0" desc:"gain on the inhibitory input from the BG stage"`
	Mutual float32        `def:"0.4" min:"0" desc:"mutual inhibition weight between relay channels -- 1 gives hard winner-take-all"`
	Dt     lowpass.Params `view:"inline" desc:"relay activity integration time constant"`
}

func (rp *RelayParams) Update() {
}

func (rp *RelayParams) Defaults() {
	rp.Bias = 1
	rp.Gain = 3
	rp.Mutual = 0.4
	rp.Dt.Tau = 0.01
}

// ThalStage is the thalamic relay: N inhibitory input channels map
// inversely to N relayed output channels.  Near-zero inhibitory input
// yields strongly positive output; large inhibitory input drives output
// to zero through rectification.  The channel with globally minimal
// inhibitory input is the winner with maximal relayed output, except
// under strong global suppression, when all channels disinhibit together.
type ThalStage struct {
	StageStru
	Relay    RelayParams `view:"inline" desc:"relay dynamics parameters"`
	RelRange minmax.F32  `view:"inline" desc:"clamp range for relay activity"`
	Noise    NoiseParams `view:"inline" desc:"optional additive noise on the inhibitory input"`
	ActPrv   []float32   `view:"-" desc:"previous step relay activity, read by the mutual inhibition term"`
	Alpha    float32     `view:"-" json:"-" xml:"-" desc:"integration rate dt/tau"`
}

func (ts *ThalStage) Defaults() {
	ts.Relay.Defaults()
	ts.RelRange.Min = 0
	ts.RelRange.Max = 1
	ts.Noise.Defaults()
	ts.UpdateParams()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values, including the derived integration rate
func (ts *ThalStage) UpdateParams() {
	ts.Relay.Update()
	if ts.Dt > 0 {
		ts.Alpha = ts.Relay.Dt.Alpha(ts.Dt)
	}
}

func (ts *ThalStage) Build(n int, dt float32) error {
	if ts.Relay.Dt.Tau < 0 {
		return &ConfigError{Field: ts.Nm + ".Relay.Dt.Tau", Value: ts.Relay.Dt.Tau, Reason: "time constant must be >= 0"}
	}
	ts.BuildStru(n, dt)
	ts.ActPrv = make([]float32, n)
	ts.UpdateParams()
	return nil
}

func (ts *ThalStage) InitActs() {
	ts.StageStru.InitActs()
	for i := 0; i < ts.N; i++ {
		ts.ActPrv[i] = 0
	}
}

// StepStage integrates the relay activity one step from the gathered
// inhibitory input.  Mutual inhibition reads the previous step's
// activity, so channel update order does not matter.
func (ts *ThalStage) StepStage(tm *Time, rnd *rand.Rand) {
	n := ts.N
	copy(ts.ActPrv, ts.Act)
	psum := float32(0)
	for i := 0; i < n; i++ {
		psum += ts.ActPrv[i]
	}
	for i := 0; i < n; i++ {
		u := ts.In[i] + ts.Noise.Gen(rnd)
		net := ts.Relay.Bias - ts.Relay.Gain*u - ts.Relay.Mutual*(psum-ts.ActPrv[i])
		if net < 0 {
			net = 0
		}
		lowpass.Step(&ts.Act[i], net, ts.Alpha)
		ts.Act[i] = ts.RelRange.ClipVal(ts.Act[i])
	}
}
