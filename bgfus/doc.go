// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bgfus implements a deterministic, fixed-step simulation of a
two-channel basal ganglia + thalamus action selection circuit under
pulsed focused ultrasound (FUS) modulation.

The circuit is a chain of stages wired by filtered connections:

	Cortex (drive) -> BG -> GPiScale -> Thal

Each stage owns a per-channel output vector.  The DriveStage evaluates
pulsed amplitude sources (pulse.AttnParams) at the current simulation
time.  The BGStage runs a closed-form rate-level micro-circuit per
channel (striatal D1 / D2, STN, GPe, GPi) in which the largest drive
yields the lowest inhibitory GPi output.  The ScaleStage multiplies the
BG output elementwise by a global time-varying factor s(t) in [0,1].
The ThalStage maps inhibitory input inversely to relay output through
rectified mutual-inhibition dynamics: the least-inhibited channel is
the selected winner, except under strong global suppression (s near 0),
when all channels disinhibit together.

Every connection applies a fixed linear transform (prjn pattern x gain)
followed by an exponential low-pass synaptic filter (package lowpass).
All conn filters advance before any stage computes, so stages only ever
read previous-step outputs and the evaluation order of stages cannot
change results.

A Run drives the whole thing: it owns the circuit, a set of append-only
Probes, the Time state, and a rand.Rand seeded from Params.Seed that is
the only source of randomness in the run.  Two runs with identical
parameters and seed produce bit-identical probe series.  Configuration
errors (ConfigError / ErrBadConfig) all surface in Start, before any
stepping; a non-finite stage output mid-run aborts to the Failed state
(StepError / ErrNonFinite), retaining the probe rows recorded so far.
*/
package bgfus
