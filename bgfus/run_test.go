// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
)

// dynTol is the tolerance for values sampled mid-run, a few hundred
// steps after a pulse edge
const dynTol = float32(5.0e-3)

// endTol is the tolerance for values at run end, long after the last
// pulse edge
const endTol = float32(2.0e-3)

func TestRunRowsSteps(t *testing.T) {
	// rows = floor(T/dt)+1 including the initial row, steps = ceil(T/dt),
	// for integral and non-integral T/dt
	tests := []struct {
		T      float32
		Dt     float32
		nsteps int
		nrows  int
	}{
		{1.2, 0.001, 1200, 1201},
		{1.0, 0.1, 10, 11},
		{0.25, 0.1, 3, 3},
		{0.0005, 0.001, 1, 1},
		{1.2, 0.4, 3, 4},
	}
	for _, ts := range tests {
		par := &Params{}
		par.Defaults()
		par.T = ts.T
		par.Dt = ts.Dt
		r := NewRun(par)
		if err := r.Run(); err != nil {
			t.Fatal(err)
		}
		if r.State != Completed {
			t.Errorf("rows err: T: %v, dt: %v, state: %v, cor: Completed\n", ts.T, ts.Dt, r.State)
		}
		if r.NSteps != ts.nsteps {
			t.Errorf("rows err: T: %v, dt: %v, nsteps: %v, cor: %v\n", ts.T, ts.Dt, r.NSteps, ts.nsteps)
		}
		if r.Probes.Rows() != ts.nrows {
			t.Errorf("rows err: T: %v, dt: %v, rows: %v, cor: %v\n", ts.T, ts.Dt, r.Probes.Rows(), ts.nrows)
		}
		if r.Probes.Times[0] != 0 {
			t.Errorf("rows err: T: %v, dt: %v, first time: %v, cor: 0\n", ts.T, ts.Dt, r.Probes.Times[0])
		}
		for ri := 1; ri < len(r.Probes.Times); ri++ {
			if r.Probes.Times[ri] <= r.Probes.Times[ri-1] {
				t.Errorf("rows err: T: %v, dt: %v, times not strictly increasing at row %v\n", ts.T, ts.Dt, ri)
			}
		}
		for _, pr := range r.Probes.Prs {
			if pr.Rows() != ts.nrows {
				t.Errorf("rows err: T: %v, dt: %v, probe %v rows: %v, cor: %v\n", ts.T, ts.Dt, pr.Nm, pr.Rows(), ts.nrows)
			}
		}
	}
}

func TestRunLastTime(t *testing.T) {
	par := &Params{}
	par.Defaults()
	r := NewRun(par)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	last := r.Probes.Times[len(r.Probes.Times)-1]
	dif := math32.Abs(last - 1.2)
	if dif > difTol {
		t.Errorf("last time err: %v, cor: 1.2, dif: %v\n", last, dif)
	}
}

func cmprProbes(ra, rb *Run, msg string, t *testing.T) {
	for pi, pa := range ra.Probes.Prs {
		pb := rb.Probes.Prs[pi]
		if len(pa.Vals) != len(pb.Vals) {
			t.Errorf("%v err: probe %v len: %v vs %v\n", msg, pa.Nm, len(pa.Vals), len(pb.Vals))
			continue
		}
		for vi := range pa.Vals {
			if pa.Vals[vi] != pb.Vals[vi] {
				t.Errorf("%v err: probe %v val %v: %v vs %v -- series must be bit-identical\n", msg, pa.Nm, vi, pa.Vals[vi], pb.Vals[vi])
				return
			}
		}
	}
}

func TestRunDeterminism(t *testing.T) {
	par := &Params{}
	par.Defaults()
	ra := NewRun(par)
	rb := NewRun(par)
	if err := ra.Run(); err != nil {
		t.Fatal(err)
	}
	if err := rb.Run(); err != nil {
		t.Fatal(err)
	}
	cmprProbes(ra, rb, "determinism", t)

	// same seed with noise on must still be bit-identical
	rc := NewRun(par)
	rd := NewRun(par)
	rc.Circ.StageByName("Cortex").(*DriveStage).Noise.On = true
	rd.Circ.StageByName("Cortex").(*DriveStage).Noise.On = true
	if err := rc.Run(); err != nil {
		t.Fatal(err)
	}
	if err := rd.Run(); err != nil {
		t.Fatal(err)
	}
	cmprProbes(rc, rd, "determinism noise", t)

	// different seed with noise on must diverge somewhere
	par2 := &Params{}
	par2.Defaults()
	par2.Seed = 99
	re := NewRun(par2)
	re.Circ.StageByName("Cortex").(*DriveStage).Noise.On = true
	if err := re.Run(); err != nil {
		t.Fatal(err)
	}
	ca := rc.Probes.ProbeByName("Cortex")
	ce := re.Probes.ProbeByName("Cortex")
	same := true
	for vi := range ca.Vals {
		if ca.Vals[vi] != ce.Vals[vi] {
			same = false
			break
		}
	}
	if same {
		t.Errorf("determinism err: different seeds produced identical noisy series\n")
	}
}

func TestRunDriveWindow(t *testing.T) {
	// the window [0.5, 0.8] is closed: the 0.5 and 0.8 grid rows are
	// attenuated, 0.4 and 0.9 are not
	par := &Params{}
	par.Defaults()
	r := NewRun(par)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	cp := r.Probes.ProbeByName("Cortex")
	rows := []int{400, 499, 500, 600, 750, 800, 801, 900}
	cors := []float32{0.8, 0.8, 0.32, 0.32, 0.32, 0.32, 0.8, 0.8}
	for ri, row := range rows {
		dif := math32.Abs(cp.Value(row, 0) - cors[ri])
		if dif > difTol {
			t.Errorf("window err: row: %v, drive: %v, cor: %v, dif: %v\n", row, cp.Value(row, 0), cors[ri], dif)
		}
		dif1 := math32.Abs(cp.Value(row, 1) - 0.6)
		if dif1 > difTol {
			t.Errorf("window err: row: %v, chan 1 drive: %v, cor: 0.6, dif: %v\n", row, cp.Value(row, 1), dif1)
		}
	}
	// drive attenuation leaves the output scale at baseline throughout
	sp := r.Probes.ProbeByName("Scale")
	for _, row := range rows {
		if sp.Value(row, 0) != 1 {
			t.Errorf("window err: row: %v, scale: %v, cor: 1\n", row, sp.Value(row, 0))
		}
	}
}

func TestRunSelectivityReversal(t *testing.T) {
	// chan 0 wins before the pulse, chan 1 inside it (the attenuated
	// drive 0.32 loses to 0.6), and chan 0 again after it
	par := &Params{}
	par.Defaults()
	r := NewRun(par)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	thal := r.Circ.StageByName("Thal")
	bg := r.Circ.StageByName("BG")
	var thalIn, bgIn []float32
	for r.State == Running {
		if err := r.Step(); err != nil {
			t.Fatal(err)
		}
		if r.Time.Step == 750 {
			thalIn = append([]float32{}, thal.Out()...)
			bgIn = append([]float32{}, bg.Out()...)
		}
	}
	if thalIn[1] < thalIn[0]+0.5 {
		t.Errorf("reversal err: in-window thal: %v -- chan 1 should dominate\n", thalIn)
	}
	if thalIn[0] > 0.01 {
		t.Errorf("reversal err: in-window thal0: %v should be rectified to ~0\n", thalIn[0])
	}
	corBGIn := []float32{0.2811684, 0.0123684}
	for i := range corBGIn {
		dif := math32.Abs(bgIn[i] - corBGIn[i])
		if dif > dynTol {
			t.Errorf("reversal err: in-window bg%v: %v, cor: %v, dif: %v\n", i, bgIn[i], corBGIn[i], dif)
		}
	}
	if w := r.Winner(); w != 0 {
		t.Errorf("reversal err: final winner: %v, cor: 0\n", w)
	}
	corThal := []float32{0.9639286, 0.0039286}
	corBG := []float32{0.0115, 0.2035}
	for i := range corThal {
		dif := math32.Abs(thal.Out()[i] - corThal[i])
		if dif > endTol {
			t.Errorf("reversal err: final thal%v: %v, cor: %v, dif: %v\n", i, thal.Out()[i], corThal[i], dif)
		}
		dif = math32.Abs(bg.Out()[i] - corBG[i])
		if dif > endTol {
			t.Errorf("reversal err: final bg%v: %v, cor: %v, dif: %v\n", i, bg.Out()[i], corBG[i], dif)
		}
	}
}

func TestRunSuppress(t *testing.T) {
	// pulsed suppression of the BG output scale: the losing channel
	// disinhibits inside the window, closing the selection gap, and the
	// gap reopens after the window ends
	par := &Params{}
	par.SuppressDefaults()
	r := NewRun(par)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	thal := r.Circ.StageByName("Thal")
	var thalIn []float32
	for r.State == Running {
		if err := r.Step(); err != nil {
			t.Fatal(err)
		}
		if r.Time.Step == 1050 {
			thalIn = append([]float32{}, thal.Out()...)
		}
	}
	corIn := []float32{0.8205714, 0.4365714}
	for i := range corIn {
		dif := math32.Abs(thalIn[i] - corIn[i])
		if dif > dynTol {
			t.Errorf("suppress err: in-window thal%v: %v, cor: %v, dif: %v\n", i, thalIn[i], corIn[i], dif)
		}
	}
	corEnd := []float32{0.98, 0.02}
	for i := range corEnd {
		dif := math32.Abs(thal.Out()[i] - corEnd[i])
		if dif > endTol {
			t.Errorf("suppress err: final thal%v: %v, cor: %v, dif: %v\n", i, thal.Out()[i], corEnd[i], dif)
		}
	}
	gapIn := thalIn[0] - thalIn[1]
	gapEnd := thal.Out()[0] - thal.Out()[1]
	if gapIn > gapEnd-0.3 {
		t.Errorf("suppress err: in-window gap %v not clearly below final gap %v\n", gapIn, gapEnd)
	}
	if thalIn[1] < thal.Out()[1]+0.3 {
		t.Errorf("suppress err: loser thal1 in-window %v should disinhibit well above final %v\n", thalIn[1], thal.Out()[1])
	}
	if thalIn[0] < thalIn[1] {
		t.Errorf("suppress err: in-window thal %v -- chan 0 should still lead\n", thalIn)
	}
	if w := r.Winner(); w != 0 {
		t.Errorf("suppress err: final winner: %v, cor: 0\n", w)
	}
	// the scale probe records the raw factor: suppressed in the window,
	// baseline outside it
	sp := r.Probes.ProbeByName("Scale")
	dif := math32.Abs(sp.Value(1050, 0) - 0.4)
	if dif > difTol {
		t.Errorf("suppress err: in-window scale: %v, cor: 0.4, dif: %v\n", sp.Value(1050, 0), dif)
	}
	if sp.Value(r.Probes.Rows()-1, 0) != 1 {
		t.Errorf("suppress err: final scale: %v, cor: 1\n", sp.Value(r.Probes.Rows()-1, 0))
	}
}

func TestRunFullSuppression(t *testing.T) {
	// depth 1 drives the scale factor to 0: all inhibition is gone and
	// both relay channels disinhibit to the same mutually-limited level
	par := &Params{}
	par.SuppressDefaults()
	par.FusDepth = 1
	r := NewRun(par)
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	thal := r.Circ.StageByName("Thal")
	var thalIn []float32
	for r.State == Running {
		if err := r.Step(); err != nil {
			t.Fatal(err)
		}
		if r.Time.Step == 1050 {
			thalIn = append([]float32{}, thal.Out()...)
		}
	}
	cor := float32(0.7142857)
	for i := range thalIn {
		dif := math32.Abs(thalIn[i] - cor)
		if dif > dynTol {
			t.Errorf("full suppression err: in-window thal%v: %v, cor: %v, dif: %v\n", i, thalIn[i], cor, dif)
		}
	}
	if math32.Abs(thalIn[0]-thalIn[1]) > dynTol {
		t.Errorf("full suppression err: in-window thal %v should be equal\n", thalIn)
	}
}

func TestRunZeroDurWindow(t *testing.T) {
	// a zero-duration window at an off-grid instant is never sampled:
	// the run is bit-identical to one with no attenuation at all
	par := &Params{}
	par.Defaults()
	par.FusStart = 0.5005
	par.FusDur = 0
	ra := NewRun(par)
	if err := ra.Run(); err != nil {
		t.Fatal(err)
	}
	par2 := &Params{}
	par2.Defaults()
	par2.Kappa = 0
	rb := NewRun(par2)
	if err := rb.Run(); err != nil {
		t.Fatal(err)
	}
	cmprProbes(ra, rb, "zero-dur window", t)

	// on-grid, the single instant is attenuated for exactly one row
	par3 := &Params{}
	par3.Defaults()
	par3.FusDur = 0
	rc := NewRun(par3)
	if err := rc.Run(); err != nil {
		t.Fatal(err)
	}
	cp := rc.Probes.ProbeByName("Cortex")
	if math32.Abs(cp.Value(500, 0)-0.32) > difTol {
		t.Errorf("zero-dur err: row 500 drive: %v, cor: 0.32\n", cp.Value(500, 0))
	}
	if math32.Abs(cp.Value(499, 0)-0.8) > difTol || math32.Abs(cp.Value(501, 0)-0.8) > difTol {
		t.Errorf("zero-dur err: rows 499/501 drive: %v, %v, cor: 0.8\n", cp.Value(499, 0), cp.Value(501, 0))
	}
}

func TestRunConfigErrs(t *testing.T) {
	tests := []struct {
		nm  string
		mut func(par *Params)
	}{
		{"zero dt", func(par *Params) { par.Dt = 0 }},
		{"negative dt", func(par *Params) { par.Dt = -0.001 }},
		{"zero T", func(par *Params) { par.T = 0 }},
		{"negative T", func(par *Params) { par.T = -1 }},
		{"negative start", func(par *Params) { par.FusStart = -0.2 }},
		{"negative dur", func(par *Params) { par.FusDur = -0.1 }},
		{"negative kappa", func(par *Params) { par.Kappa = -0.1 }},
		{"kappa over 1", func(par *Params) { par.Kappa = 1.5 }},
		{"depth over 1", func(par *Params) { par.FusDepth = 1.5 }},
		{"base over 1", func(par *Params) { par.GPiScaleBase = 1.2 }},
	}
	for _, ts := range tests {
		par := &Params{}
		par.Defaults()
		ts.mut(par)
		r := NewRun(par)
		err := r.Start()
		if err == nil {
			t.Errorf("config err: %v: expected error\n", ts.nm)
			continue
		}
		if !errors.Is(err, ErrBadConfig) {
			t.Errorf("config err: %v: should wrap ErrBadConfig: %v\n", ts.nm, err)
		}
		var cerr *ConfigError
		if !errors.As(err, &cerr) || cerr.Field == "" {
			t.Errorf("config err: %v: should be a ConfigError naming the field: %v\n", ts.nm, err)
		}
		if r.State != Uninitialized {
			t.Errorf("config err: %v: state: %v, cor: Uninitialized\n", ts.nm, r.State)
		}
		if r.Probes.Rows() != 0 {
			t.Errorf("config err: %v: probes recorded despite invalid config\n", ts.nm)
		}
	}
}

func TestRunInstability(t *testing.T) {
	// a filter time constant far below dt diverges within a few steps:
	// the run must abort to Failed, keeping all rows recorded so far
	par := &Params{}
	par.Defaults()
	r := NewRun(par)
	r.Circ.Conns[0].Filt.Tau = 1e-8
	err := r.Run()
	if err == nil {
		t.Fatal("instability err: expected non-finite abort")
	}
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("instability err: should wrap ErrNonFinite: %v\n", err)
	}
	var serr *StepError
	if !errors.As(err, &serr) {
		t.Fatalf("instability err: should be a StepError: %v\n", err)
	}
	if serr.Stage != "BG" {
		t.Errorf("instability err: stage: %v, cor: BG\n", serr.Stage)
	}
	if serr.Step != r.Time.Step {
		t.Errorf("instability err: step: %v, time step: %v\n", serr.Step, r.Time.Step)
	}
	if r.State != Failed {
		t.Errorf("instability err: state: %v, cor: Failed\n", r.State)
	}
	if r.Err != err {
		t.Errorf("instability err: run Err not retained\n")
	}
	if r.Probes.Rows() < 1 || r.Probes.Rows() >= r.NRows {
		t.Errorf("instability err: rows: %v, should be >= 1 and < %v\n", r.Probes.Rows(), r.NRows)
	}
	if r.LastGood != r.Probes.Rows()-1 {
		t.Errorf("instability err: last good: %v, rows: %v\n", r.LastGood, r.Probes.Rows())
	}
	if err := r.Step(); err == nil {
		t.Errorf("instability err: stepping a failed run should error\n")
	}
}

func TestRunStateMachine(t *testing.T) {
	par := &Params{}
	par.Defaults()
	par.T = 0.02
	r := NewRun(par)
	if r.State != Uninitialized {
		t.Errorf("state err: %v, cor: Uninitialized\n", r.State)
	}
	if err := r.Step(); err == nil {
		t.Errorf("state err: step before start should error\n")
	}
	if err := r.Start(); err != nil {
		t.Fatal(err)
	}
	if r.State != Running {
		t.Errorf("state err: %v, cor: Running\n", r.State)
	}
	if err := r.Start(); err == nil {
		t.Errorf("state err: second start should error\n")
	}
	for r.State == Running {
		if err := r.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if r.State != Completed {
		t.Errorf("state err: %v, cor: Completed\n", r.State)
	}
	if err := r.Step(); err == nil {
		t.Errorf("state err: step after completion should error\n")
	}
}

func TestRunTableExport(t *testing.T) {
	par := &Params{}
	par.Defaults()
	par.T = 0.02
	r := NewRun(par)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	tbl := r.Table()
	if tbl.Rows != 21 {
		t.Errorf("table err: rows: %v, cor: 21\n", tbl.Rows)
	}
	if tbl.NumCols() != 6 {
		t.Errorf("table err: cols: %v, cor: 6\n", tbl.NumCols())
	}
	if tbl.CellFloat("Time", 0) != 0 {
		t.Errorf("table err: first time: %v, cor: 0\n", tbl.CellFloat("Time", 0))
	}
	tp := r.Probes.ProbeByName("Thal")
	got := float32(tbl.CellTensorFloat1D("Thal", 20, 1))
	if got != tp.Value(20, 1) {
		t.Errorf("table err: Thal cell: %v, probe: %v\n", got, tp.Value(20, 1))
	}
	sc := tbl.CellTensor("Scale", 5)
	if sc.Len() != 1 {
		t.Errorf("table err: Scale cell len: %v, cor: 1\n", sc.Len())
	}
}

func TestWinnerEqualDrives(t *testing.T) {
	par := &Params{}
	par.Defaults()
	par.A1 = 0.7
	par.A2 = 0.7
	par.Kappa = 0
	r := NewRun(par)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	thal := r.Circ.StageByName("Thal")
	// identical drives, identical arithmetic: exactly equal outputs, and
	// the winner readout picks the first channel on the tie
	if thal.Out()[0] != thal.Out()[1] {
		t.Errorf("equal drives err: thal %v differ\n", thal.Out())
	}
	if w := r.Winner(); w != 0 {
		t.Errorf("equal drives err: winner: %v, cor: 0\n", w)
	}
}

func TestRunDriveMonotonic(t *testing.T) {
	// raising one channel's drive never lowers its settled relay output,
	// and never raises the rival's
	amps := []float32{0.65, 0.75, 0.85}
	var prev []float32
	for _, a1 := range amps {
		par := &Params{}
		par.Defaults()
		par.A1 = a1
		par.Kappa = 0
		r := NewRun(par)
		if err := r.Run(); err != nil {
			t.Fatalf("monotonic err: run failed for a1 %v: %v\n", a1, err)
		}
		if w := r.Winner(); w != 0 {
			t.Errorf("monotonic err: a1 %v winner: %v, cor: 0\n", a1, w)
		}
		th := r.Circ.StageByName("Thal").Out()
		if prev != nil {
			if th[0] < prev[0]-difTol {
				t.Errorf("monotonic err: a1 %v ch 0 out %v below prior %v\n", a1, th[0], prev[0])
			}
			if th[1] > prev[1]+difTol {
				t.Errorf("monotonic err: a1 %v ch 1 out %v above prior %v\n", a1, th[1], prev[1])
			}
		}
		prev = append([]float32{}, th...)
	}
}
