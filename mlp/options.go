// SPDX-License-Identifier: MIT

// Package mlp: functional configuration of the trainers.
// Defaults are the single source of truth for zero-value behaviour; WithX
// constructors panic on nonsensical values (programmer error).

package mlp

import "math"

// Back-propagation defaults.
const (
	// DefaultLearningRate scales every back-propagation delta.
	DefaultLearningRate = 0.1

	// DefaultMomentum blends the previous delta into the current update.
	DefaultMomentum = 0.0

	// DefaultTrainBiases enables bias updates.
	DefaultTrainBiases = true
)

// RProp defaults, after Riedmiller & Braun (1993).
const (
	DefaultEtaPlus   = 1.2
	DefaultEtaMinus  = 0.5
	DefaultDeltaZero = 0.1
	DefaultDeltaMin  = 1e-6
	DefaultDeltaMax  = 50.0
)

const (
	panicLearningRate = "mlp: WithLearningRate: rate must be finite and > 0"
	panicMomentum     = "mlp: WithMomentum: momentum must be in [0, 1)"
	panicEta          = "mlp: WithEtaPlus/WithEtaMinus: need 0 < eta- < 1 < eta+"
	panicDelta        = "mlp: WithDelta*: step sizes must be finite and > 0"
)

// Option configures a trainer. Options that do not apply to a trainer kind
// are ignored by it.
type Option func(*Options)

// Options holds the resolved trainer configuration.
type Options struct {
	learningRate float64
	momentum     float64
	trainBiases  bool

	etaPlus, etaMinus             float64
	deltaZero, deltaMin, deltaMax float64
}

// WithLearningRate sets the back-propagation learning rate (> 0).
func WithLearningRate(rate float64) Option {
	if !(rate > 0) || math.IsInf(rate, 0) {
		panic(panicLearningRate)
	}

	return func(o *Options) { o.learningRate = rate }
}

// WithMomentum sets the back-propagation momentum, in [0, 1).
func WithMomentum(m float64) Option {
	if !(m >= 0 && m < 1) {
		panic(panicMomentum)
	}

	return func(o *Options) { o.momentum = m }
}

// WithTrainBiases toggles bias training. When disabled, trainers force every
// bias to zero after each Train call.
func WithTrainBiases(on bool) Option {
	return func(o *Options) { o.trainBiases = on }
}

// WithEtaPlus sets the RProp step growth factor (> 1).
func WithEtaPlus(eta float64) Option {
	if !(eta > 1) || math.IsInf(eta, 0) {
		panic(panicEta)
	}

	return func(o *Options) { o.etaPlus = eta }
}

// WithEtaMinus sets the RProp step shrink factor, in (0, 1).
func WithEtaMinus(eta float64) Option {
	if !(eta > 0 && eta < 1) {
		panic(panicEta)
	}

	return func(o *Options) { o.etaMinus = eta }
}

// WithDeltaZero sets the initial RProp step size.
func WithDeltaZero(d float64) Option {
	checkDelta(d)
	return func(o *Options) { o.deltaZero = d }
}

// WithDeltaMin sets the smallest RProp step size.
func WithDeltaMin(d float64) Option {
	checkDelta(d)
	return func(o *Options) { o.deltaMin = d }
}

// WithDeltaMax sets the largest RProp step size.
func WithDeltaMax(d float64) Option {
	checkDelta(d)
	return func(o *Options) { o.deltaMax = d }
}

func checkDelta(d float64) {
	if !(d > 0) || math.IsInf(d, 0) {
		panic(panicDelta)
	}
}

func defaultOptions() Options {
	return Options{
		learningRate: DefaultLearningRate,
		momentum:     DefaultMomentum,
		trainBiases:  DefaultTrainBiases,
		etaPlus:      DefaultEtaPlus,
		etaMinus:     DefaultEtaMinus,
		deltaZero:    DefaultDeltaZero,
		deltaMin:     DefaultDeltaMin,
		deltaMax:     DefaultDeltaMax,
	}
}

func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
