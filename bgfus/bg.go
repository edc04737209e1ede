// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"math/rand"

	"github.com/ccnlab/bgfus/lowpass"
)

// StriatumParams are the focused striatal input pathways: D1 projects to
// GPi (selection) and D2 projects to GPe (control).  Each is a rectified
// linear response to the channel's own drive.
type StriatumParams struct {
	GainD1 float32 `def:"1.2" desc:"drive gain of the D1 selection pathway"`
	GainD2 float32 `def:"0.8" desc:"drive gain of the D2 control pathway"`
	Thr    float32 `def:"0.2" desc:"activation threshold for both striatal pathways"`
}

func (sp *StriatumParams) Update() {
}

func (sp *StriatumParams) Defaults() {
	sp.GainD1 = 1.2
	sp.GainD2 = 0.8
	sp.Thr = 0.2
}

// STNParams are the subthalamic pathway parameters.  The STN provides the
// diffuse excitatory term: its summed activity drives both pallidal
// stages across all channels, implementing the lateral interaction.
type STNParams struct {
	Gain float32 `def:"1" desc:"drive input gain"`
	Thr  float32 `def:"-0.25" desc:"activation threshold -- negative gives tonic baseline activity"`
	WGpe float32 `def:"1" min:"0" desc:"inhibitory weight from GPe back onto STN"`
	WSum float32 `def:"0.9" min:"0" desc:"weight of the summed STN activity onto each pallidal channel"`
}

func (sn *STNParams) Update() {
}

func (sn *STNParams) Defaults() {
	sn.Gain = 1
	sn.Thr = -0.25
	sn.WGpe = 1
	sn.WSum = 0.9
}

// GPParams are the pallidal stage parameters, shared in form between GPe
// and GPi: diffuse STN excitation minus focused striatal inhibition,
// rectified.  GPi additionally receives GPe inhibition.
type GPParams struct {
	WStr float32 `def:"1" min:"0" desc:"inhibitory weight from the focused striatal pathway (D2 for GPe, D1 for GPi)"`
	WGpe float32 `def:"0.3" min:"0" desc:"inhibitory weight from GPe onto GPi"`
	Thr  float32 `def:"-0.2" desc:"activation threshold for GPe and GPi -- negative gives tonic baseline activity"`
}

func (gp *GPParams) Update() {
}

func (gp *GPParams) Defaults() {
	gp.WStr = 1
	gp.WGpe = 0.3
	gp.Thr = -0.2
}

// BGDtParams are the internal synaptic filters of the BG micro-circuit
type BGDtParams struct {
	AMPA lowpass.Params `view:"inline" desc:"excitatory (STN onto pallidum) synaptic filter"`
	GABA lowpass.Params `view:"inline" desc:"inhibitory (striatal and pallidal) synaptic filter"`
}

func (bd *BGDtParams) Update() {
}

func (bd *BGDtParams) Defaults() {
	bd.AMPA.Tau = 0.002
	bd.GABA.Tau = 0.008
}

// BGStage is the basal ganglia competitive gating stage: N drive channels
// in, N non-negative inhibitory (GPi) channels out, with the largest
// drive producing the lowest output.  Internally it runs a rate-level
// micro-circuit of five populations per channel: striatal D1 and D2, the
// subthalamic nucleus (STN), the external pallidum (GPe), and the output
// pallidum (GPi).  The focused striatal pathways carry each channel's own
// drive; the summed STN activity is the diffuse lateral term shared by
// all channels.  All population responses are rectified linear, so
// out-of-range drives saturate at zero rather than erroring.
type BGStage struct {
	StageStru
	Str    StriatumParams `view:"inline" desc:"focused striatal pathway parameters"`
	STN    STNParams      `view:"inline" desc:"diffuse subthalamic pathway parameters"`
	GP     GPParams       `view:"inline" desc:"pallidal stage parameters"`
	BGDt   BGDtParams     `view:"inline" desc:"internal synaptic time constants"`
	Noise  NoiseParams    `view:"inline" desc:"optional additive noise on the drive input"`
	SelWt  []float32      `desc:"fixed per-channel selectivity weights on the GPi output -- nil = all 1"`
	D1Syn  []float32      `view:"-" desc:"filtered D1 striatal signal onto GPi"`
	D2Syn  []float32      `view:"-" desc:"filtered D2 striatal signal onto GPe"`
	STNSyn []float32      `view:"-" desc:"filtered STN signal onto the pallidal stages"`
	GPeSyn []float32      `view:"-" desc:"filtered GPe signal onto STN and GPi"`
	AlAMPA float32        `view:"-" json:"-" xml:"-" desc:"AMPA filter rate dt/tau"`
	AlGABA float32        `view:"-" json:"-" xml:"-" desc:"GABA filter rate dt/tau"`
}

func (bs *BGStage) Defaults() {
	bs.Str.Defaults()
	bs.STN.Defaults()
	bs.GP.Defaults()
	bs.BGDt.Defaults()
	bs.Noise.Defaults()
	bs.UpdateParams()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values, including the derived filter rates
func (bs *BGStage) UpdateParams() {
	bs.Str.Update()
	bs.STN.Update()
	bs.GP.Update()
	bs.BGDt.Update()
	if bs.Dt > 0 {
		bs.AlAMPA = bs.BGDt.AMPA.Alpha(bs.Dt)
		bs.AlGABA = bs.BGDt.GABA.Alpha(bs.Dt)
	}
}

func (bs *BGStage) Build(n int, dt float32) error {
	if bs.SelWt != nil && len(bs.SelWt) != n {
		return &ConfigError{Field: bs.Nm + ".SelWt", Value: len(bs.SelWt), Reason: "number of selectivity weights must equal the channel count"}
	}
	if bs.BGDt.AMPA.Tau < 0 || bs.BGDt.GABA.Tau < 0 {
		return &ConfigError{Field: bs.Nm + ".BGDt", Value: bs.BGDt, Reason: "synaptic time constants must be >= 0"}
	}
	bs.BuildStru(n, dt)
	bs.D1Syn = make([]float32, n)
	bs.D2Syn = make([]float32, n)
	bs.STNSyn = make([]float32, n)
	bs.GPeSyn = make([]float32, n)
	bs.UpdateParams()
	return nil
}

func (bs *BGStage) InitActs() {
	bs.StageStru.InitActs()
	for i := 0; i < bs.N; i++ {
		bs.D1Syn[i] = 0
		bs.D2Syn[i] = 0
		bs.STNSyn[i] = 0
		bs.GPeSyn[i] = 0
	}
}

// StepStage advances the micro-circuit one step from the gathered drive
// input.  The striatal and STN responses are computed from the current
// drive, the pallidal responses from the filtered pathway signals, with
// GPe feedback onto STN reading the previous step's filtered value.
func (bs *BGStage) StepStage(tm *Time, rnd *rand.Rand) {
	n := bs.N
	for i := 0; i < n; i++ {
		x := bs.In[i] + bs.Noise.Gen(rnd)
		d1 := bs.Str.GainD1*x - bs.Str.Thr
		if d1 < 0 {
			d1 = 0
		}
		d2 := bs.Str.GainD2*x - bs.Str.Thr
		if d2 < 0 {
			d2 = 0
		}
		stn := bs.STN.Gain*x - bs.STN.WGpe*bs.GPeSyn[i] - bs.STN.Thr
		if stn < 0 {
			stn = 0
		}
		lowpass.Step(&bs.D1Syn[i], d1, bs.AlGABA)
		lowpass.Step(&bs.D2Syn[i], d2, bs.AlGABA)
		lowpass.Step(&bs.STNSyn[i], stn, bs.AlAMPA)
	}
	ssum := float32(0)
	for i := 0; i < n; i++ {
		ssum += bs.STNSyn[i]
	}
	ssum *= bs.STN.WSum
	for i := 0; i < n; i++ {
		gpe := ssum - bs.GP.WStr*bs.D2Syn[i] - bs.GP.Thr
		if gpe < 0 {
			gpe = 0
		}
		lowpass.Step(&bs.GPeSyn[i], gpe, bs.AlGABA)
		gpi := ssum - bs.GP.WStr*bs.D1Syn[i] - bs.GP.WGpe*bs.GPeSyn[i] - bs.GP.Thr
		if gpi < 0 {
			gpi = 0
		}
		if bs.SelWt != nil {
			gpi *= bs.SelWt[i]
		}
		bs.Act[i] = gpi
	}
}
