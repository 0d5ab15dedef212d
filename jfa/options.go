// SPDX-License-Identifier: MIT

package jfa

import (
	"math"

	"github.com/klauspost/cpuid/v2"
)

// DefaultSeed seeds InitializeRandomUVD when WithSeed is not given.
const DefaultSeed int64 = 5489

// DefaultInitScale bounds the uniform draws of InitializeRandomUVD.
const DefaultInitScale = 1.0

const (
	panicWorkers   = "jfa: WithWorkers: workers must be >= 1"
	panicInitScale = "jfa: WithInitScale: scale must be finite and > 0"
)

// Option configures a Trainer.
type Option func(*Options)

// Options holds the resolved trainer configuration.
type Options struct {
	workers   int
	seed      int64
	initScale float64
}

// WithWorkers bounds how many speakers are processed concurrently inside one
// update stage. Results do not depend on it.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkers)
	}

	return func(o *Options) { o.workers = n }
}

// WithSeed fixes the random source of InitializeRandomUVD.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}

// WithInitScale sets the upper bound of the uniform draws of
// InitializeRandomUVD; values fall in [0, scale).
func WithInitScale(scale float64) Option {
	if !(scale > 0) || math.IsInf(scale, 0) {
		panic(panicInitScale)
	}

	return func(o *Options) { o.initScale = scale }
}

// defaultWorkers is one worker per logical core, as reported by cpuid.
func defaultWorkers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}

	return 1
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		workers:   defaultWorkers(),
		seed:      DefaultSeed,
		initScale: DefaultInitScale,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
