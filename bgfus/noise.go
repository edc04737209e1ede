// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgfus

import (
	"math/rand"

	"github.com/goki/ki/kit"
)

// NoiseDist is the distribution of a stage's noise term
type NoiseDist int

//go:generate stringer -type=NoiseDist

var KiT_NoiseDist = kit.Enums.AddEnum(NoiseDistN, kit.NotBitFlag, nil)

func (ev NoiseDist) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NoiseDist) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The noise distributions
const (
	// Uniform is mean-zero uniform noise with half-range Var
	Uniform NoiseDist = iota

	// Gaussian is mean-zero gaussian noise with standard deviation Var
	Gaussian

	NoiseDistN
)

// NoiseParams are parameters for additive noise on a stage's drive input.
// All draws use the generator owned by the simulation run, never ambient
// package-level randomness, so runs with the same seed are bit-identical
// even with noise on.
type NoiseParams struct {
	On   bool      `desc:"add noise to the stage input"`
	Dist NoiseDist `viewif:"On" desc:"noise distribution"`
	Var  float32   `viewif:"On" min:"0" def:"0.01" desc:"variance parameter: half-range for Uniform, standard deviation for Gaussian"`
}

func (np *NoiseParams) Update() {
}

func (np *NoiseParams) Defaults() {
	np.Dist = Gaussian
	np.Var = 0.01
}

// Gen generates one noise value from the given run-owned generator.
// Returns 0 if not On.
func (np *NoiseParams) Gen(rnd *rand.Rand) float32 {
	if !np.On {
		return 0
	}
	switch np.Dist {
	case Uniform:
		return np.Var * (2*rnd.Float32() - 1)
	case Gaussian:
		return np.Var * float32(rnd.NormFloat64())
	}
	return 0
}
