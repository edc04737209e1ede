// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"fmt"
	"log"
	"strconv"

	"github.com/ccnlab/bgfus/lowpass"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// LogPrec is precision for saving float values in csv log files
const LogPrec = 4

// Probe records one named variable of one stage at every recorded step,
// optionally through a report low-pass filter standing in for a slow
// measurement sensor (Tau = 0 records raw values).  Storage is
// append-only: rows are only ever added, never modified or removed.
type Probe struct {
	Nm    string         `desc:"name of the probe, unique within the set, also the table column name"`
	Stage string         `desc:"name of the stage to record from"`
	Var   string         `def:"Act" desc:"stage variable to record"`
	Filt  lowpass.Params `view:"inline" desc:"report filter on the recorded signal, Tau = 0 records raw values"`
	N     int            `inactive:"+" desc:"number of values per row, from the variable shape at build"`
	Alpha float32        `view:"-" json:"-" xml:"-" desc:"report filter rate dt/tau"`
	Fs    []float32      `view:"-" desc:"report filter state, one value per recorded value"`
	Vals  []float32      `view:"-" desc:"append-only row storage, N values per row"`
	stg   Stage
	buf   []float32
}

func (pr *Probe) Defaults() {
	pr.Filt.Defaults()
	pr.Filt.Tau = 0
}

// Build resolves the stage and variable and allocates filter state, for
// the given step size.  All probe configuration errors are caught here.
func (pr *Probe) Build(ct *Circuit, dt float32) error {
	if pr.Nm == "" {
		return &ConfigError{Field: "Probe.Nm", Value: pr.Nm, Reason: "probe name must not be empty"}
	}
	if pr.Filt.Tau < 0 {
		return &ConfigError{Field: "Probe." + pr.Nm + ".Filt.Tau", Value: pr.Filt.Tau, Reason: "report filter time constant must be >= 0"}
	}
	if pr.Var == "" {
		pr.Var = "Act"
	}
	stg := ct.StageByName(pr.Stage)
	if stg == nil {
		return &ConfigError{Field: "Probe." + pr.Nm + ".Stage", Value: pr.Stage, Reason: "stage not found in circuit"}
	}
	pr.stg = stg
	if err := stg.VarVals(&pr.buf, pr.Var); err != nil {
		return &ConfigError{Field: "Probe." + pr.Nm + ".Var", Value: pr.Var, Reason: "variable not found on stage"}
	}
	pr.N = len(pr.buf)
	pr.Alpha = pr.Filt.Alpha(dt)
	pr.Fs = make([]float32, pr.N)
	pr.Vals = nil
	return nil
}

// Init resets the filter state and truncates all recorded rows
func (pr *Probe) Init() {
	for i := range pr.Fs {
		pr.Fs[i] = 0
	}
	pr.Vals = pr.Vals[:0]
}

// Record reads the current variable values, advances the report filter
// one step, and appends the filtered values as a new row
func (pr *Probe) Record() {
	pr.stg.VarVals(&pr.buf, pr.Var)
	for i := range pr.Fs {
		lowpass.Step(&pr.Fs[i], pr.buf[i], pr.Alpha)
	}
	pr.Vals = append(pr.Vals, pr.Fs...)
}

// Rows returns the number of recorded rows
func (pr *Probe) Rows() int {
	if pr.N == 0 {
		return 0
	}
	return len(pr.Vals) / pr.N
}

// Row returns the recorded values of the given row, as a slice into the
// backing storage (read-only)
func (pr *Probe) Row(row int) []float32 {
	return pr.Vals[row*pr.N : (row+1)*pr.N]
}

// Value returns the recorded value for the given row and channel
func (pr *Probe) Value(row, ch int) float32 {
	return pr.Vals[row*pr.N+ch]
}

// Probes is the set of probes on a circuit, recorded together with a
// shared time axis
type Probes struct {
	Prs   []*Probe          `desc:"probes in the order added"`
	PrMap map[string]*Probe `view:"-" desc:"map of probes by name, for lookup"`
	Times []float32         `desc:"time of each recorded row, strictly increasing from 0"`
}

// AddProbe adds a probe on the named stage variable, with the given
// report filter time constant (0 = raw)
func (ps *Probes) AddProbe(name, stage, varNm string, tau float32) *Probe {
	pr := &Probe{Nm: name, Stage: stage, Var: varNm}
	pr.Defaults()
	pr.Filt.Tau = tau
	ps.Prs = append(ps.Prs, pr)
	if ps.PrMap == nil {
		ps.PrMap = make(map[string]*Probe)
	}
	ps.PrMap[name] = pr
	return pr
}

// ProbeByName returns a probe by looking it up by name in the probe map
// (nil if not found)
func (ps *Probes) ProbeByName(name string) *Probe {
	if ps.PrMap == nil || len(ps.PrMap) != len(ps.Prs) {
		ps.PrMap = make(map[string]*Probe)
		for _, pr := range ps.Prs {
			ps.PrMap[pr.Nm] = pr
		}
	}
	return ps.PrMap[name]
}

// ProbeByNameTry returns a probe by looking it up by name, emitting a
// log message and returning an error if not found
func (ps *Probes) ProbeByNameTry(name string) (*Probe, error) {
	pr := ps.ProbeByName(name)
	if pr == nil {
		err := fmt.Errorf("Probe named: %v not found", name)
		log.Println(err)
		return pr, err
	}
	return pr, nil
}

// Build resolves and allocates all probes against the given circuit, for
// the given step size
func (ps *Probes) Build(ct *Circuit, dt float32) error {
	if len(ps.PrMap) != len(ps.Prs) {
		return &ConfigError{Field: "Probes", Value: len(ps.Prs), Reason: "probe names must be unique"}
	}
	for _, pr := range ps.Prs {
		if err := pr.Build(ct, dt); err != nil {
			return err
		}
	}
	return nil
}

// Init resets all probes and the time axis
func (ps *Probes) Init() {
	for _, pr := range ps.Prs {
		pr.Init()
	}
	ps.Times = ps.Times[:0]
}

// Record appends one row to every probe, at the given time
func (ps *Probes) Record(t float32) {
	ps.Times = append(ps.Times, t)
	for _, pr := range ps.Prs {
		pr.Record()
	}
}

// Rows returns the number of recorded rows
func (ps *Probes) Rows() int {
	return len(ps.Times)
}

// ToTable returns all recorded rows as a table with a Time column and
// one float64 tensor column per probe, cell shape [N]
func (ps *Probes) ToTable() *etable.Table {
	sch := etable.Schema{
		{"Time", etensor.FLOAT64, nil, nil},
	}
	for _, pr := range ps.Prs {
		sch = append(sch, etable.Column{pr.Nm, etensor.FLOAT64, []int{pr.N}, []string{"Chan"}})
	}
	rows := ps.Rows()
	dt := &etable.Table{}
	dt.SetFromSchema(sch, rows)
	dt.SetMetaData("name", "Probes")
	dt.SetMetaData("desc", "recorded probe signals over simulation time")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))
	for ri := 0; ri < rows; ri++ {
		dt.SetCellFloat("Time", ri, float64(ps.Times[ri]))
		for _, pr := range ps.Prs {
			tsr := etensor.NewFloat64([]int{pr.N}, nil, []string{"Chan"})
			for ci := 0; ci < pr.N; ci++ {
				tsr.Values[ci] = float64(pr.Value(ri, ci))
			}
			dt.SetCellTensor(pr.Nm, ri, tsr)
		}
	}
	return dt
}
