// Copyright (c) 2022, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bgfus is the overall repository for the basal ganglia + thalamus
action-selection circuit model under pulsed focused ultrasound (FUS)
attenuation, implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* bgfus: the core simulation engine, with closed-form rate-level stage
equations for the basal ganglia (striatum D1/D2, STN, GPe, GPi), the
thalamic relay (mutual inhibition + rectification), and an explicit
global scaling stage between them, advanced on a fixed time step with
per-connection synaptic filtering and named probes recorded into
etable.Table series.

* pulse: attenuation window and pulsed modulation signal generators
(amplitude * (1-kappa) inside a closed window), used both for drive
attenuation and for the GPi-output suppression factor.

* lowpass: the exponential synaptic low-pass filter parameters shared by
connections and report probes.

* examples: these compile into runnable programs -- examples/fusdrive is
the basic two-channel selection model with FUS attenuating the stronger
drive, and examples/gpisupp pulses the GPi output scaling instead and
sweeps the suppression depth.
*/
package bgfus
