// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/ccnlab/bgfus/pulse"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/goki/mat32"
)

// Circuit is an ordered collection of stages wired by conns, advanced
// together on a fixed step.  Stages compute in the order they were
// added, which for the standard selection circuit is drive, basal
// ganglia, output scaling, thalamus.  All conn filters advance before
// any stage computes, so each stage only ever sees previous-step
// outputs of the other stages.
type Circuit struct {
	Nm      string           `desc:"name of the circuit"`
	NChan   int              `inactive:"+" desc:"number of competing channels, fixed for all stages"`
	ChanNms []string         `desc:"label for each channel, for reports -- defaults to Ch1..ChN"`
	Stages  []Stage          `desc:"stages in evaluation order"`
	StgMap  map[string]Stage `view:"-" desc:"map of stages by name, for lookup"`
	Conns   []*Conn          `desc:"connections between stages"`
}

func NewCircuit(name string, nchan int) *Circuit {
	ct := &Circuit{Nm: name, NChan: nchan}
	ct.StgMap = make(map[string]Stage)
	ct.ChanNms = make([]string, nchan)
	for i := range ct.ChanNms {
		ct.ChanNms[i] = fmt.Sprintf("Ch%d", i+1)
	}
	return ct
}

func (ct *Circuit) Name() string { return ct.Nm }

// addStage appends the stage and registers it in the name map
func (ct *Circuit) addStage(st Stage) {
	ct.Stages = append(ct.Stages, st)
	if ct.StgMap == nil {
		ct.StgMap = make(map[string]Stage)
	}
	ct.StgMap[st.Name()] = st
}

// AddDrive adds an external drive input stage with the given name.
// Sources default to constant zero amplitude until configured with
// SetDrive or SetAttnDrive.
func (ct *Circuit) AddDrive(name string) *DriveStage {
	ds := &DriveStage{}
	ds.SetName(name)
	ds.Attn = make([]pulse.AttnParams, ct.NChan)
	ds.Defaults()
	ct.addStage(ds)
	return ds
}

// AddBG adds a basal ganglia selection stage with the given name
func (ct *Circuit) AddBG(name string) *BGStage {
	bs := &BGStage{}
	bs.SetName(name)
	bs.Defaults()
	ct.addStage(bs)
	return bs
}

// AddScale adds an output scaling stage with the given name
func (ct *Circuit) AddScale(name string) *ScaleStage {
	ss := &ScaleStage{}
	ss.SetName(name)
	ss.Defaults()
	ct.addStage(ss)
	return ss
}

// AddThal adds a thalamic relay stage with the given name
func (ct *Circuit) AddThal(name string) *ThalStage {
	ts := &ThalStage{}
	ts.SetName(name)
	ts.Defaults()
	ct.addStage(ts)
	return ts
}

// StageByName returns a stage by looking it up by name in the stage map
// (nil if not found)
func (ct *Circuit) StageByName(name string) Stage {
	if ct.StgMap == nil || len(ct.StgMap) != len(ct.Stages) {
		ct.StgMap = make(map[string]Stage)
		for _, st := range ct.Stages {
			ct.StgMap[st.Name()] = st
		}
	}
	return ct.StgMap[name]
}

// StageByNameTry returns a stage by looking it up by name, emitting a
// log message and returning an error if not found
func (ct *Circuit) StageByNameTry(name string) (Stage, error) {
	st := ct.StageByName(name)
	if st == nil {
		err := fmt.Errorf("Stage named: %v not found in Circuit: %v", name, ct.Nm)
		log.Println(err)
		return st, err
	}
	return st, nil
}

// Connect wires a connection from the named sending stage to the named
// receiving stage, with the given pattern, gain, and filter time
// constant (0 = pass-through)
func (ct *Circuit) Connect(send, recv string, pat prjn.Pattern, gain, tau float32) (*Conn, error) {
	ss, err := ct.StageByNameTry(send)
	if err != nil {
		return nil, err
	}
	rs, err := ct.StageByNameTry(recv)
	if err != nil {
		return nil, err
	}
	cn := &Conn{Send: ss, Recv: rs, Pat: pat}
	cn.Defaults()
	cn.Gain = gain
	cn.Filt.Tau = tau
	*rs.RecvConns() = append(*rs.RecvConns(), cn)
	*ss.SendConns() = append(*ss.SendConns(), cn)
	ct.Conns = append(ct.Conns, cn)
	return cn, nil
}

// Defaults sets default parameter values on all stages and conns
func (ct *Circuit) Defaults() {
	for _, st := range ct.Stages {
		st.Defaults()
	}
	for _, cn := range ct.Conns {
		cn.Defaults()
	}
}

// UpdateParams updates derived parameter values on all stages and conns
func (ct *Circuit) UpdateParams() {
	for _, st := range ct.Stages {
		st.UpdateParams()
	}
	for _, cn := range ct.Conns {
		cn.UpdateParams()
	}
}

// ApplyParams applies the given parameter style Sheet to all stages and
// conns in the circuit, calling UpdateParams on everything that changed.
// If setMsg is true then a message is printed to confirm each parameter
// that is set.  It always prints a message if a parameter fails to be
// set.  Returns true if any params were set, and error if there were any
// errors.
func (ct *Circuit) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, st := range ct.Stages {
		app, err := pars.Apply(st, setMsg)
		if app {
			st.UpdateParams()
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	for _, cn := range ct.Conns {
		app, err := pars.Apply(cn, setMsg)
		if app {
			cn.UpdateParams()
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// Build allocates all stage and connection state for the circuit channel
// count and the step size in tm.  Must be called after all stages are
// added and connected, and before Init and Step.  Configuration errors
// are all caught here, before any stepping.
func (ct *Circuit) Build(tm *Time) error {
	if ct.NChan < 1 {
		return &ConfigError{Field: ct.Nm + ".NChan", Value: ct.NChan, Reason: "circuit must have at least one channel"}
	}
	if len(ct.StgMap) != len(ct.Stages) {
		return &ConfigError{Field: ct.Nm + ".Stages", Value: len(ct.Stages), Reason: "stage names must be unique"}
	}
	if tm.Dt <= 0 {
		return &ConfigError{Field: "Time.Dt", Value: tm.Dt, Reason: "step size must be > 0"}
	}
	for _, st := range ct.Stages {
		if err := st.Build(ct.NChan, tm.Dt); err != nil {
			return err
		}
	}
	for _, cn := range ct.Conns {
		if err := cn.Build(tm.Dt); err != nil {
			return err
		}
	}
	return nil
}

// Init initializes all stage activity and connection filter state,
// ready for a fresh run
func (ct *Circuit) Init() {
	for _, st := range ct.Stages {
		st.InitActs()
	}
	for _, cn := range ct.Conns {
		cn.InitGs()
	}
}

// EvalMods evaluates the time-dependent modulation sources of all stages
// at time t: drive inputs and scaling factors
func (ct *Circuit) EvalMods(t float32, rnd *rand.Rand) {
	for _, st := range ct.Stages {
		st.EvalMod(t, rnd)
	}
}

// Step advances the circuit one integration step at the current time in
// tm.  Modulation sources are evaluated first, then all conn filters
// advance, then each stage gathers input and computes, in order.
// Returns a *StepError wrapping ErrNonFinite naming the first offending
// stage if any output is NaN or Inf.
func (ct *Circuit) Step(tm *Time, rnd *rand.Rand) error {
	ct.EvalMods(tm.Time, rnd)
	for _, cn := range ct.Conns {
		cn.StepFilt()
	}
	for _, st := range ct.Stages {
		st.GatherIn()
		st.StepStage(tm, rnd)
		st.UpdateStats()
		if err := checkFinite(st); err != nil {
			return &StepError{Step: tm.Step, Time: tm.Time, Stage: st.Name(), Wrapped: err}
		}
	}
	return nil
}

// checkFinite returns ErrNonFinite if any stage output is NaN or Inf
func checkFinite(st Stage) error {
	for _, v := range st.Out() {
		if mat32.IsNaN(v) || mat32.IsInf(v, 0) {
			return ErrNonFinite
		}
	}
	return nil
}

// SizeReport returns a string reporting the size of each stage and conn
// in the circuit, and total memory footprint
func (ct *Circuit) SizeReport() string {
	var b strings.Builder
	totMem := 0
	for _, st := range ct.Stages {
		mem := st.NChans() * 2 * 4
		totMem += mem
		fmt.Fprintf(&b, "%14s:\t Chans: %d\t Mem: %v\n", st.Name(), st.NChans(), (datasize.ByteSize)(mem).HumanReadable())
	}
	for _, cn := range ct.Conns {
		mem := 4 * (len(cn.Wts) + len(cn.Gs))
		totMem += mem
		fmt.Fprintf(&b, "%14s:\t Wts: %d\t Mem: %v\n", cn.String(), len(cn.Wts), (datasize.ByteSize)(mem).HumanReadable())
	}
	fmt.Fprintf(&b, "%14s:\t Mem: %v\n", "Total", (datasize.ByteSize)(totMem).HumanReadable())
	return b.String()
}
