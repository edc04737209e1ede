// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/ccnlab/bgfus/pulse"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etable"
	"github.com/goki/ki/kit"
)

// AttnTarget is which point in the circuit the pulsed attenuation acts on
type AttnTarget int

//go:generate stringer -type=AttnTarget

var KiT_AttnTarget = kit.Enums.AddEnum(AttnTargetN, kit.NotBitFlag, nil)

func (ev AttnTarget) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *AttnTarget) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The attenuation targets
const (
	// AttnDrive attenuates the first channel's cortical drive amplitude
	// inside the pulse window, with the output scale constant at its
	// baseline
	AttnDrive AttnTarget = iota

	// AttnGPi suppresses the scaling factor on the BG output inside the
	// pulse window, leaving the drives unattenuated
	AttnGPi

	AttnTargetN
)

// RunState is the lifecycle state of a simulation run
type RunState int

//go:generate stringer -type=RunState

var KiT_RunState = kit.Enums.AddEnum(RunStateN, kit.NotBitFlag, nil)

func (ev RunState) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *RunState) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The run states
const (
	// Uninitialized is before Start
	Uninitialized RunState = iota

	// Running is after a successful Start, with steps remaining
	Running

	// Completed is after all steps have run
	Completed

	// Failed is terminal, after a numeric instability abort.  Probe rows
	// recorded before the failure are retained.
	Failed

	RunStateN
)

// Params is the top-level parameter bundle for a standard two-channel
// simulation run.  It is consumed when constructing the Run: to change
// parameters, construct a new Run.
type Params struct {
	A1           float32    `def:"0.8" desc:"drive amplitude of the first channel"`
	A2           float32    `def:"0.6" desc:"drive amplitude of the second channel"`
	Kappa        float32    `def:"0.6" min:"0" max:"1" desc:"fractional attenuation of the first channel's drive inside the pulse window, for AttnDrive"`
	FusStart     float32    `def:"0.5" min:"0" desc:"pulse window start time in seconds"`
	FusDur       float32    `def:"0.3" min:"0" desc:"pulse window duration in seconds"`
	T            float32    `def:"1.2" desc:"total simulated time in seconds"`
	Dt           float32    `def:"0.001" desc:"integration step size in seconds"`
	Seed         int64      `def:"1" desc:"seed for the run-owned random generator"`
	GPiScaleBase float32    `def:"1" min:"0" max:"1" desc:"baseline scaling factor on the BG output"`
	FusDepth     float32    `def:"0.6" min:"0" max:"1" desc:"fractional suppression of the scaling factor inside the pulse window, for AttnGPi"`
	Target       AttnTarget `desc:"which point in the circuit the pulse acts on"`
}

// Defaults sets the drive-attenuation scenario: the first channel
// dominant, its drive attenuated by Kappa inside the window, output
// scale constant
func (pr *Params) Defaults() {
	pr.A1 = 0.8
	pr.A2 = 0.6
	pr.Kappa = 0.6
	pr.FusStart = 0.5
	pr.FusDur = 0.3
	pr.T = 1.2
	pr.Dt = 0.001
	pr.Seed = 1
	pr.GPiScaleBase = 1
	pr.FusDepth = 0.6
	pr.Target = AttnDrive
}

// SuppressDefaults sets the output-suppression scenario: both drives
// constant, the scaling factor on the BG output suppressed by FusDepth
// inside the window
func (pr *Params) SuppressDefaults() {
	pr.Defaults()
	pr.A1 = 0.85
	pr.A2 = 0.65
	pr.Kappa = 0
	pr.FusStart = 0.6
	pr.FusDur = 0.5
	pr.T = 1.6
	pr.Seed = 0
	pr.Target = AttnGPi
}

// Validate checks all parameter constraints, returning a *ConfigError
// wrapping ErrBadConfig for the first violation.  Called by Start before
// any stepping.
func (pr *Params) Validate() error {
	if pr.Dt <= 0 {
		return &ConfigError{Field: "Params.Dt", Value: pr.Dt, Reason: "step size must be > 0"}
	}
	if pr.T <= 0 {
		return &ConfigError{Field: "Params.T", Value: pr.T, Reason: "total time must be > 0"}
	}
	if pr.FusStart < 0 {
		return &ConfigError{Field: "Params.FusStart", Value: pr.FusStart, Reason: "window start must be >= 0"}
	}
	if pr.FusDur < 0 {
		return &ConfigError{Field: "Params.FusDur", Value: pr.FusDur, Reason: "window duration must be >= 0"}
	}
	if pr.Kappa < 0 || pr.Kappa > 1 {
		return &ConfigError{Field: "Params.Kappa", Value: pr.Kappa, Reason: "attenuation fraction must be in [0,1]"}
	}
	if pr.FusDepth < 0 || pr.FusDepth > 1 {
		return &ConfigError{Field: "Params.FusDepth", Value: pr.FusDepth, Reason: "suppression depth must be in [0,1]"}
	}
	if pr.GPiScaleBase < 0 || pr.GPiScaleBase > 1 {
		return &ConfigError{Field: "Params.GPiScaleBase", Value: pr.GPiScaleBase, Reason: "baseline scale must be in [0,1]"}
	}
	if pr.Target < 0 || pr.Target >= AttnTargetN {
		return &ConfigError{Field: "Params.Target", Value: pr.Target, Reason: "unknown attenuation target"}
	}
	return nil
}

// Run owns everything for one simulation run: the circuit, the probes,
// the timing state, the run-owned random generator, and the run state
// machine.  A Run is single-use: construct with NewRun, Start, Step to
// completion (or just call Run), then read results.  Circuit structure
// and signal sources never change after Start.
type Run struct {
	Params   Params     `view:"inline" desc:"parameter bundle, consumed at construction"`
	Circ     *Circuit   `desc:"the simulated circuit"`
	Probes   Probes     `desc:"recorded probe series"`
	Time     Time       `desc:"current step, time, and step size"`
	State    RunState   `inactive:"+" desc:"lifecycle state of the run"`
	NSteps   int        `inactive:"+" desc:"total integration steps, = ceil(T/dt)"`
	NRows    int        `inactive:"+" desc:"probe rows to record, = floor(T/dt)+1 including the initial row at time 0"`
	LastGood int        `inactive:"+" desc:"step index of the last recorded probe row, -1 before Start"`
	Err      error      `view:"-" desc:"error that moved the run to Failed"`
	Rnd      *rand.Rand `view:"-" desc:"run-owned random generator, seeded from Params.Seed at Start -- all stochastic draws go through this"`
}

// NewRun constructs a run with the standard two-channel selection
// circuit, wired from the given parameter bundle:
// Cortex -> BG -> GPiScale -> Thal, one-to-one throughout, with the
// pulse attached per Target, and the standard probe set.
func NewRun(par *Params) *Run {
	r := &Run{}
	r.Params = *par
	r.State = Uninitialized
	r.LastGood = -1
	r.Time.Defaults()
	ct := NewCircuit("BGFus", 2)
	drv := ct.AddDrive("Cortex")
	ct.AddBG("BG")
	sc := ct.AddScale("GPiScale")
	ct.AddThal("Thal")
	win := pulse.Window{Start: par.FusStart, Dur: par.FusDur}
	sc.Scale.Base = par.GPiScaleBase
	switch par.Target {
	case AttnDrive:
		drv.SetAttnDrive(0, par.A1, par.Kappa, win)
		drv.SetDrive(1, par.A2)
		sc.Scale.Depth = 0
	case AttnGPi:
		drv.SetDrive(0, par.A1)
		drv.SetDrive(1, par.A2)
		sc.Scale.Depth = par.FusDepth
		sc.Scale.Win = win
	}
	ct.Connect("Cortex", "BG", prjn.NewOneToOne(), 1, 0.02)
	ct.Connect("BG", "GPiScale", prjn.NewOneToOne(), 1, 0.02)
	ct.Connect("GPiScale", "Thal", prjn.NewOneToOne(), 1, 0.01)
	r.Circ = ct
	r.Probes.AddProbe("Cortex", "Cortex", "Act", 0)
	r.Probes.AddProbe("BG", "BG", "Act", 0.05)
	r.Probes.AddProbe("GPiScaled", "GPiScale", "Act", 0.05)
	r.Probes.AddProbe("Thal", "Thal", "Act", 0.05)
	r.Probes.AddProbe("Scale", "GPiScale", "SFact", 0)
	return r
}

// gridSteps returns the number of integration steps, ceil(T/dt), and the
// number of recorded rows, floor(T/dt)+1.  The ratio is computed in
// float64 and snapped to the nearest integer when within rounding error,
// so T = k*dt cases land exactly on k.
func gridSteps(T, dt float32) (nsteps, nrows int) {
	r := float64(T) / float64(dt)
	nr := math.Round(r)
	if math.Abs(r-nr) <= 1e-6*math.Max(1, nr) {
		r = nr
	}
	nsteps = int(math.Ceil(r))
	nrows = int(math.Floor(r)) + 1
	return
}

// Start validates the configuration, seeds the generator, builds and
// initializes the circuit and probes, and records the initial probe row
// at time 0.  On any error the run stays Uninitialized and nothing was
// stepped.  All configuration errors surface here, never mid-run.
func (r *Run) Start() error {
	if r.State != Uninitialized {
		return &ConfigError{Field: "Run.State", Value: r.State, Reason: "run already started, construct a new Run"}
	}
	if err := r.Params.Validate(); err != nil {
		return err
	}
	r.Time.Reset()
	r.Time.Dt = r.Params.Dt
	r.NSteps, r.NRows = gridSteps(r.Params.T, r.Params.Dt)
	r.Rnd = rand.New(rand.NewSource(r.Params.Seed))
	if err := r.Circ.Build(&r.Time); err != nil {
		return err
	}
	if err := r.Probes.Build(r.Circ, r.Params.Dt); err != nil {
		return err
	}
	r.Circ.Init()
	r.Probes.Init()
	r.Circ.EvalMods(0, r.Rnd)
	r.Probes.Record(0)
	r.LastGood = 0
	r.State = Running
	return nil
}

// Step advances the run one integration step, recording a probe row when
// the step lands on the recorded grid (steps past the last grid point
// inside T still run, completing the ceil(T/dt) total, but are not
// recorded).  On a non-finite stage output the run moves to Failed and
// returns the *StepError: probe rows recorded so far are retained and
// LastGood reports the last recorded step.  Moves to Completed when all
// steps have run.
func (r *Run) Step() error {
	if r.State != Running {
		return &ConfigError{Field: "Run.State", Value: r.State, Reason: "run is not running"}
	}
	r.Time.StepInc()
	if err := r.Circ.Step(&r.Time, r.Rnd); err != nil {
		r.State = Failed
		r.Err = err
		return err
	}
	if r.Time.Step < r.NRows {
		r.Probes.Record(r.Time.Time)
		r.LastGood = r.Time.Step
	}
	if r.Time.Step >= r.NSteps {
		r.State = Completed
	}
	return nil
}

// Run runs the simulation to completion, calling Start first if the run
// is Uninitialized.  Returns the first error encountered.
func (r *Run) Run() error {
	if r.State == Uninitialized {
		if err := r.Start(); err != nil {
			return err
		}
	}
	for r.State == Running {
		if err := r.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Winner returns the channel with the largest current thalamic output,
// first index on ties, or -1 if the circuit has no stage named Thal
func (r *Run) Winner() int {
	st := r.Circ.StageByName("Thal")
	if st == nil {
		return -1
	}
	wi := -1
	wv := float32(-1)
	for i, v := range st.Out() {
		if v > wv {
			wv = v
			wi = i
		}
	}
	return wi
}

// Table returns all recorded probe rows as a table, ready for analysis
// or csv export
func (r *Run) Table() *etable.Table {
	return r.Probes.ToTable()
}

// SizeReport returns a string reporting the memory footprint of the
// circuit and the recorded probe rows
func (r *Run) SizeReport() string {
	var b strings.Builder
	b.WriteString(r.Circ.SizeReport())
	totMem := 0
	for _, pr := range r.Probes.Prs {
		totMem += 4 * len(pr.Vals)
	}
	fmt.Fprintf(&b, "%14s:\t Rows: %d\t Mem: %v\n", "Probes", r.Probes.Rows(), (datasize.ByteSize)(totMem).HumanReadable())
	return b.String()
}
