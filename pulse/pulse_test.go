// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pulse

import (
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vals
const difTol = float32(1.0e-8)

func TestAttnWindow(t *testing.T) {
	at := AttnParams{}
	at.Defaults()
	at.Amp = 0.8
	at.Kappa = 0.6
	at.Win.Start = 0.5
	at.Win.Dur = 0.3

	attn := at.Amp * (1 - at.Kappa)

	tstt := []float32{0, 0.4, 0.5, 0.6, 0.8, 0.9, 1.2}
	cor := []float32{0.8, 0.8, attn, attn, attn, 0.8, 0.8}

	for i := range tstt {
		v := at.Eval(tstt[i])
		dif := math32.Abs(v - cor[i])
		if dif > difTol {
			t.Errorf("attn eval at t=%v: got %v != correct %v\n", tstt[i], v, cor[i])
		}
	}
}

func TestAttnIdempotent(t *testing.T) {
	at := AttnParams{}
	at.Defaults()

	for _, tv := range []float32{0, 0.45, 0.5, 0.65, 0.8, 1.1} {
		v1 := at.Eval(tv)
		v2 := at.Eval(tv)
		if v1 != v2 {
			t.Errorf("repeated eval at t=%v differs: %v != %v\n", tv, v1, v2)
		}
	}
	// earlier evals must not perturb later ones
	if v := at.Eval(0.6); v != at.Amp*(1-at.Kappa) {
		t.Errorf("in-window eval after repeated calls: got %v\n", v)
	}
}

func TestZeroDurWindow(t *testing.T) {
	at := AttnParams{}
	at.Defaults()
	at.Win.Start = 0.5
	at.Win.Dur = 0

	if !at.Win.WellFormed() {
		t.Errorf("zero-duration window should be well-formed\n")
	}
	// grid that never lands exactly on 0.5: modulation never altered
	for i := 0; i < 100; i++ {
		tv := 0.45 + float32(i)*0.001001
		if tv == 0.5 {
			continue
		}
		if v := at.Eval(tv); v != at.Amp {
			t.Errorf("zero-dur window altered output at t=%v: got %v\n", tv, v)
		}
	}
	// the single instant itself is attenuated
	if v := at.Eval(0.5); v != at.Amp*(1-at.Kappa) {
		t.Errorf("zero-dur window at its instant: got %v\n", v)
	}
}

func TestScaleFactor(t *testing.T) {
	sc := ScaleParams{}
	sc.Defaults()
	sc.Base = 1
	sc.Depth = 0.6
	sc.Win.Start = 0.6
	sc.Win.Dur = 0.5

	tstt := []float32{0, 0.59, 0.6, 0.9, 1.1, 1.11, 1.5}
	cor := []float32{1, 1, 0.4, 0.4, 0.4, 1, 1}

	for i := range tstt {
		v := sc.Factor(tstt[i])
		dif := math32.Abs(v - cor[i])
		if dif > difTol {
			t.Errorf("scale factor at t=%v: got %v != correct %v\n", tstt[i], v, cor[i])
		}
	}
}

func TestFuncCompose(t *testing.T) {
	at := AttnParams{}
	at.Defaults()
	f := Prod(Const(2), at.Func())
	if v := f(0.6); math32.Abs(v-2*at.Amp*(1-at.Kappa)) > difTol {
		t.Errorf("prod compose at t=0.6: got %v\n", v)
	}
	s := Sum(Const(1), Const(0.5))
	if v := s(0); math32.Abs(v-1.5) > difTol {
		t.Errorf("sum compose: got %v\n", v)
	}
	// Func fixes behavior at creation: later param changes have no effect
	g := at.Func()
	at.Kappa = 0
	if v := g(0.6); math32.Abs(v-0.8*0.4) > difTol {
		t.Errorf("func not fixed at creation: got %v\n", v)
	}
}
