// SPDX-License-Identifier: MIT

package jfa

import (
	"fmt"
	"math"
)

// UpdateU re-estimates the eigenchannels from the accumulators of the last
// UpdateX: row k of U becomes A2[k]·A1[c(k)]⁻¹ where
//
//	A1[c] = Σ_ih N_ih[c]·(L_ih⁻¹ + x_ih·x_ihᵀ)
//	A2    = Σ_ih Fn_ih·x_ihᵀ
//
// Errors:
//   - ErrStageOrder if UpdateX has not run since the statistics were set.
//   - ErrSingular if some component has no occupancy at all.
//
// U is left untouched on error.
func (t *Trainer) UpdateU() error {
	if !t.accU.ready {
		return fmt.Errorf("UpdateU: %w", ErrStageOrder)
	}
	if err := t.accU.solveInto(t.base.u); err != nil {
		return fmt.Errorf("UpdateU: %w", err)
	}

	return nil
}

// UpdateV re-estimates the eigenvoices from the accumulators of the last
// UpdateY, the same way UpdateU does for U with Nacc_i and y_i in place of
// N_ih and x_ih.
//
// Errors: ErrStageOrder, ErrSingular. V is left untouched on error.
func (t *Trainer) UpdateV() error {
	if !t.accV.ready {
		return fmt.Errorf("UpdateV: %w", ErrStageOrder)
	}
	if err := t.accV.solveInto(t.base.v); err != nil {
		return fmt.Errorf("UpdateV: %w", err)
	}

	return nil
}

// UpdateD re-estimates the residual diagonal from the accumulators of the
// last UpdateZ:
//
//	d_k = Σ_i Fn_i[k]·z_i[k] / Σ_i Nacc_i[c(k)]·(L_ik⁻¹ + z_i[k]²)
//
// Errors:
//   - ErrStageOrder if UpdateZ has not run since the statistics were set.
//   - ErrSingular if some component has no occupancy at all.
//
// d is left untouched on error.
func (t *Trainer) UpdateD() error {
	if !t.accD.ready {
		return fmt.Errorf("UpdateD: %w", ErrStageOrder)
	}
	for k, a := range t.accD.a {
		if a == 0 || math.IsNaN(a) {
			return fmt.Errorf("UpdateD: component %d: %w", t.base.component(k), ErrSingular)
		}
	}
	for k, a := range t.accD.a {
		t.base.d[k] = t.accD.b[k] / a
	}

	return nil
}
