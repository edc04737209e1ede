// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"fmt"
	"math/rand"

	"github.com/emer/etable/minmax"
	"github.com/goki/mat32"
)

// Stage is the interface for all circuit stages.  Each stage owns a
// per-channel output activity vector of the circuit's fixed channel
// count, and is advanced once per global step by the circuit, reading
// only its connection-filtered input.
type Stage interface {
	// Name returns the name of the stage, unique within its circuit
	Name() string

	// Label satisfies the gui interface for the display name of the stage
	Label() string

	// Class is for applying parameter styles, can be space separated multiple tags
	Class() string

	// SetClass sets the class
	SetClass(cls string)

	// TypeName is the type category for parameter styling
	TypeName() string

	// NChans returns the number of channels (fixed at build)
	NChans() int

	// Out returns the current output activity vector, length NChans
	Out() []float32

	// VarNames returns the list of probeable variable names for this stage
	VarNames() []string

	// VarVals fills in the values of the named variable into the given
	// slice, resizing it as needed.  Returns an error and fills with NaN
	// for an unknown variable name.
	VarVals(vals *[]float32, varNm string) error

	// RecvConns returns the list of connections into this stage
	RecvConns() *[]*Conn

	// SendConns returns the list of connections out of this stage
	SendConns() *[]*Conn

	// Defaults sets default parameter values
	Defaults()

	// UpdateParams updates derived parameter values after any change
	UpdateParams()

	// Build allocates all state for n channels at step size dt,
	// returning an error for invalid stage configuration
	Build(n int, dt float32) error

	// InitActs zeroes all activity state, ready for a fresh run
	InitActs()

	// EvalMod evaluates any time-dependent modulation sources at time t
	// (drive inputs, scaling factors).  Called first each step, and once
	// at t=0 before stepping begins so initial probe rows see inputs.
	EvalMod(t float32, rnd *rand.Rand)

	// GatherIn accumulates the filtered outputs of all receiving
	// connections into the stage input vector
	GatherIn()

	// StepStage computes the new output activity from the gathered input.
	// Any stochastic term draws only from rnd, which is owned by the run.
	StepStage(tm *Time, rnd *rand.Rand)

	// UpdateStats updates the avg / max output statistics
	UpdateStats()

	// Stats returns the avg / max output statistics from the last step
	Stats() *minmax.AvgMax32
}

// StageStru manages the structural elements common to all stage types:
// name, channel count, output and input vectors, and connection lists.
type StageStru struct {
	Nm       string          `desc:"name of the stage, unique within the circuit"`
	Cls      string          `desc:"class for applying parameter styles, space separated if multiple"`
	N        int             `inactive:"+" desc:"number of channels, fixed at build"`
	Dt       float32         `view:"-" json:"-" xml:"-" desc:"step size in seconds, from the circuit at build"`
	Act      []float32       `desc:"current output activity, one value per channel"`
	In       []float32       `view:"-" desc:"connection-filtered input gathered before each step"`
	ActStat  minmax.AvgMax32 `inactive:"+" desc:"avg and max of current output activity over channels"`
	RcvConns []*Conn         `view:"-" desc:"connections into this stage"`
	SndConns []*Conn         `view:"-" desc:"connections out of this stage"`
}

func (st *StageStru) Name() string        { return st.Nm }
func (st *StageStru) SetName(nm string)   { st.Nm = nm }
func (st *StageStru) Label() string       { return st.Nm }
func (st *StageStru) Class() string       { return st.Cls }
func (st *StageStru) SetClass(cls string) { st.Cls = cls }
func (st *StageStru) TypeName() string    { return "Stage" }
func (st *StageStru) NChans() int         { return st.N }
func (st *StageStru) Out() []float32      { return st.Act }
func (st *StageStru) RecvConns() *[]*Conn { return &st.RcvConns }
func (st *StageStru) SendConns() *[]*Conn { return &st.SndConns }

// VarNames returns the list of probeable variable names: Act only for
// the base stage
func (st *StageStru) VarNames() []string { return []string{"Act"} }

// VarVals fills in the values of the named variable into the given
// slice, resizing it as needed.  Returns an error and fills with NaN for
// an unknown variable name.
func (st *StageStru) VarVals(vals *[]float32, varNm string) error {
	nn := st.N
	if *vals == nil || cap(*vals) < nn {
		*vals = make([]float32, nn)
	} else if len(*vals) != nn {
		*vals = (*vals)[0:nn]
	}
	if varNm != "Act" {
		nan := mat32.NaN()
		for i := range *vals {
			(*vals)[i] = nan
		}
		return fmt.Errorf("Stage: %v variable named: %v not found", st.Nm, varNm)
	}
	copy(*vals, st.Act)
	return nil
}

// BuildStru allocates the base output and input vectors for n channels
func (st *StageStru) BuildStru(n int, dt float32) {
	st.N = n
	st.Dt = dt
	st.Act = make([]float32, n)
	st.In = make([]float32, n)
}

// InitActs zeroes the base activity state
func (st *StageStru) InitActs() {
	for i := range st.Act {
		st.Act[i] = 0
		st.In[i] = 0
	}
	st.ActStat.Init()
}

// GatherIn zeroes the input vector and accumulates the filtered outputs
// of all receiving connections into it
func (st *StageStru) GatherIn() {
	for i := range st.In {
		st.In[i] = 0
	}
	for _, cn := range st.RcvConns {
		for i := range st.In {
			st.In[i] += cn.Gs[i]
		}
	}
}

// UpdateStats updates the avg / max output statistics
func (st *StageStru) UpdateStats() {
	st.ActStat.Init()
	for i, a := range st.Act {
		st.ActStat.UpdateVal(a, i)
	}
	st.ActStat.CalcAvg()
}

// Stats returns the avg / max output statistics from the last step
func (st *StageStru) Stats() *minmax.AvgMax32 { return &st.ActStat }

// EvalMod is a no-op for stages without modulation sources
func (st *StageStru) EvalMod(t float32, rnd *rand.Rand) {
}

// StepStage is a no-op for stages whose output is set during EvalMod
func (st *StageStru) StepStage(tm *Time, rnd *rand.Rand) {
}
