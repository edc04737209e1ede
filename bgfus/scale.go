// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"math/rand"

	"github.com/ccnlab/bgfus/pulse"
	"github.com/emer/etable/minmax"
)

// ScaleStage applies the global time-varying scaling factor s(t)
// elementwise to the signal between the BG and thalamus stages:
// out = s(t) * in.  The factor composes a baseline with a pulsed
// suppression sub-factor and is clamped to SRange ([0,1]).  With s near 1
// the BG competitive ordering passes through unchanged; with s near 0 all
// inhibitory input is suppressed and every relay channel disinhibits
// together -- a required regime, not a defect.
type ScaleStage struct {
	StageStru
	Scale  pulse.ScaleParams `view:"inline" desc:"baseline and pulsed suppression of the scaling factor"`
	SRange minmax.F32        `view:"inline" desc:"clamp range for the scaling factor"`
	SFact  float32           `inactive:"+" desc:"current scaling factor s(t), updated in the modulation phase"`
}

func (ss *ScaleStage) Defaults() {
	ss.Scale.Defaults()
	ss.SRange.Min = 0
	ss.SRange.Max = 1
	ss.SFact = ss.Scale.Base
}

func (ss *ScaleStage) UpdateParams() {
}

func (ss *ScaleStage) Build(n int, dt float32) error {
	if !ss.Scale.Win.WellFormed() {
		return &ConfigError{Field: ss.Nm + ".Scale.Win", Value: ss.Scale.Win, Reason: "window start and duration must be >= 0"}
	}
	if ss.Scale.Depth < 0 || ss.Scale.Depth > 1 {
		return &ConfigError{Field: ss.Nm + ".Scale.Depth", Value: ss.Scale.Depth, Reason: "suppression depth must be in [0,1]"}
	}
	if ss.Scale.Base < 0 || ss.Scale.Base > 1 {
		return &ConfigError{Field: ss.Nm + ".Scale.Base", Value: ss.Scale.Base, Reason: "baseline scale must be in [0,1]"}
	}
	ss.BuildStru(n, dt)
	return nil
}

func (ss *ScaleStage) InitActs() {
	ss.StageStru.InitActs()
	ss.SFact = ss.Scale.Base
}

// EvalMod samples the scaling factor at time t, clamped to SRange
func (ss *ScaleStage) EvalMod(t float32, rnd *rand.Rand) {
	ss.SFact = ss.SRange.ClipVal(ss.Scale.Factor(t))
}

// StepStage applies the current factor elementwise to the gathered input
func (ss *ScaleStage) StepStage(tm *Time, rnd *rand.Rand) {
	for i := range ss.Act {
		ss.Act[i] = ss.SFact * ss.In[i]
	}
}

// VarNames adds the scalar SFact to the probeable variables
func (ss *ScaleStage) VarNames() []string { return []string{"Act", "SFact"} }

// VarVals handles the scalar SFact variable, deferring to the base
// implementation for Act
func (ss *ScaleStage) VarVals(vals *[]float32, varNm string) error {
	if varNm == "SFact" {
		if *vals == nil || cap(*vals) < 1 {
			*vals = make([]float32, 1)
		} else if len(*vals) != 1 {
			*vals = (*vals)[0:1]
		}
		(*vals)[0] = ss.SFact
		return nil
	}
	return ss.StageStru.VarVals(vals, varNm)
}
