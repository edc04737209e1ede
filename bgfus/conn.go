// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"github.com/ccnlab/bgfus/lowpass"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
)

// Conn is a directed connection between two stages (or an input and a
// stage): a fixed linear transform built from a connectivity pattern and
// a scalar gain, followed by the synaptic low-pass filter.  The transform
// and time constant are fixed at Build, and the conn exclusively owns its
// filter state.  All conn filters advance once per global step, reading
// the sending stage's output from before any stage has computed, so a
// conn's output at step k depends only on inputs at steps <= k.
type Conn struct {
	Send  Stage          `inactive:"+" desc:"sending stage"`
	Recv  Stage          `inactive:"+" desc:"receiving stage"`
	Cls   string         `desc:"class for applying parameter styles"`
	Pat   prjn.Pattern   `desc:"connectivity pattern generating the transform: OneToOne = identity routing, Full = all-to-all mixing"`
	Gain  float32        `def:"1" desc:"scalar gain on all transform weights"`
	Filt  lowpass.Params `view:"inline" desc:"synaptic filter on the transformed signal"`
	Wts   []float32      `view:"-" desc:"recv-major transform weight matrix, built from Pat and Gain"`
	Gs    []float32      `view:"-" desc:"filtered output, one value per recv channel"`
	Dt    float32        `view:"-" json:"-" xml:"-" desc:"integration step size, set at Build"`
	Alpha float32        `view:"-" json:"-" xml:"-" desc:"filter rate dt/tau"`
}

func (cn *Conn) Defaults() {
	cn.Gain = 1
	cn.Filt.Defaults()
}

func (cn *Conn) UpdateParams() {
	if cn.Dt > 0 {
		cn.Alpha = cn.Filt.Alpha(cn.Dt)
	}
}

// String satisfies the fmt.Stringer interface and is the conn name:
// SendToRecv
func (cn *Conn) String() string {
	if cn.Send == nil || cn.Recv == nil {
		return "Conn"
	}
	return cn.Send.Name() + "To" + cn.Recv.Name()
}

func (cn *Conn) Name() string        { return cn.String() }
func (cn *Conn) Label() string       { return cn.String() }
func (cn *Conn) Class() string       { return cn.Cls }
func (cn *Conn) SetClass(cls string) { cn.Cls = cls }
func (cn *Conn) TypeName() string    { return "Conn" }

// Build constructs the transform weight matrix from the pattern and
// allocates filter state, for the given step size
func (cn *Conn) Build(dt float32) error {
	if cn.Filt.Tau < 0 {
		return &ConfigError{Field: cn.String() + ".Filt.Tau", Value: cn.Filt.Tau, Reason: "synaptic time constant must be >= 0"}
	}
	sn := cn.Send.NChans()
	rn := cn.Recv.NChans()
	var ssh, rsh etensor.Shape
	ssh.SetShape([]int{sn}, nil, []string{"Chan"})
	rsh.SetShape([]int{rn}, nil, []string{"Chan"})
	_, _, cons := cn.Pat.Connect(&ssh, &rsh, false)
	cn.Wts = make([]float32, rn*sn)
	cbits := cons.Values
	for ri := 0; ri < rn; ri++ {
		rbi := ri * sn
		for si := 0; si < sn; si++ {
			if cbits.Index(rbi + si) {
				cn.Wts[rbi+si] = cn.Gain
			}
		}
	}
	cn.Gs = make([]float32, rn)
	cn.Dt = dt
	cn.Alpha = cn.Filt.Alpha(dt)
	return nil
}

// InitGs zeroes the filter state
func (cn *Conn) InitGs() {
	for i := range cn.Gs {
		cn.Gs[i] = 0
	}
}

// StepFilt applies the transform to the sending stage's current output
// and advances the filter state one step
func (cn *Conn) StepFilt() {
	sact := cn.Send.Out()
	sn := len(sact)
	for ri := range cn.Gs {
		raw := float32(0)
		rbi := ri * sn
		for si := 0; si < sn; si++ {
			raw += cn.Wts[rbi+si] * sact[si]
		}
		lowpass.Step(&cn.Gs[ri], raw, cn.Alpha)
	}
}
