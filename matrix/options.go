// SPDX-License-Identifier: MIT

// Package matrix: functional configuration of the numeric policy used by the
// factorization kernels. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Safe by construction: panic only on invalid parameters (programmer error).

package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

// DefaultEpsilon is the pivot tolerance of LU, Solve and Inverse (a pivot whose
// magnitude is <= eps is reported as ErrSingular) and of SolveSPD and
// InverseSPD (a Cholesky pivot u_ii² <= eps is reported as ErrSingular).
const DefaultEpsilon = 1e-12

const panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	eps float64 // >= 0; DefaultEpsilon
}

// WithEpsilon sets the pivot tolerance. Panics if eps is negative, NaN or Inf.
func WithEpsilon(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{eps: DefaultEpsilon}
}

// gatherOptions applies opts on top of the defaults, left to right.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
