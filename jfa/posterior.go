// SPDX-License-Identifier: MIT

package jfa

import (
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

// projection caches the per-component quadratic terms of one subspace W
// (C·D × r) against the UBM variance Σ:
//
//	wtSigmaInv = Wᵀ·Σ⁻¹             (r × C·D)
//	prod[c]    = W_cᵀ·Σ_c⁻¹·W_c     (r × r)
//
// It is rebuilt at the start of every factor pass because W changes between
// passes.
type projection struct {
	rank        int
	nComponents int
	wtSigmaInv  *matrix.Dense
	prod        []*matrix.Dense
}

func newProjection(w *matrix.Dense, variance []float64, nComponents int) (*projection, error) {
	svLen, rank := w.Dims()
	nFeatures := svLen / nComponents
	wt, err := matrix.Transpose(w)
	if err != nil {
		return nil, err
	}
	for a := 0; a < rank; a++ {
		row := wt.Row(a)
		for k := range row {
			row[k] /= variance[k]
		}
	}
	p := &projection{rank: rank, nComponents: nComponents, wtSigmaInv: wt, prod: make([]*matrix.Dense, nComponents)}
	for c := 0; c < nComponents; c++ {
		if p.prod[c], err = matrix.NewDense(rank, rank); err != nil {
			return nil, err
		}
		for k := c * nFeatures; k < (c+1)*nFeatures; k++ {
			// W_cᵀΣ_c⁻¹W_c accumulates one supervector row at a time
			if err = matrix.AddOuter(p.prod[c], 1/variance[k], w.Row(k), w.Row(k)); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// posterior returns the mean x and covariance L⁻¹ of a latent factor given
// occupancies n (one per component) and centred first-order statistics fn:
//
//	L = I + Σ_c n[c]·prod[c]
//	x = L⁻¹·Wᵀ·Σ⁻¹·fn
//
// L is positive definite whenever n >= 0, thanks to the identity prior.
func (p *projection) posterior(n, fn []float64) ([]float64, *matrix.Dense, error) {
	l, err := matrix.Identity(p.rank)
	if err != nil {
		return nil, nil, err
	}
	for c := 0; c < p.nComponents; c++ {
		if n[c] == 0 {
			continue
		}
		if err = matrix.AddScaledInPlace(l, n[c], p.prod[c]); err != nil {
			return nil, nil, err
		}
	}
	linv, err := matrix.InverseSPD(l)
	if err != nil {
		return nil, nil, fmt.Errorf("posterior precision: %w", err)
	}
	rhs, err := matrix.MatVec(p.wtSigmaInv, fn)
	if err != nil {
		return nil, nil, err
	}
	x, err := matrix.MatVec(linv, rhs)
	if err != nil {
		return nil, nil, err
	}

	return x, linv, nil
}

// accumulator gathers the statistics of one subspace re-estimation:
//
//	a1[c] = Σ n[c]·(L⁻¹ + x·xᵀ)    (r × r per component)
//	a2    = Σ fn·xᵀ                (C·D × r)
//
// so that row k of the new subspace is a2[k]·a1[c(k)]⁻¹.
type accumulator struct {
	a1    []*matrix.Dense
	a2    *matrix.Dense
	ready bool
}

func newAccumulator(nComponents, svLen, rank int) (*accumulator, error) {
	acc := &accumulator{a1: make([]*matrix.Dense, nComponents)}
	var err error
	for c := range acc.a1 {
		if acc.a1[c], err = matrix.NewDense(rank, rank); err != nil {
			return nil, err
		}
	}
	if acc.a2, err = matrix.NewDense(svLen, rank); err != nil {
		return nil, err
	}

	return acc, nil
}

func (acc *accumulator) reset() {
	for _, a := range acc.a1 {
		a.Zero()
	}
	acc.a2.Zero()
	acc.ready = false
}

// add folds one posterior into the accumulator.
func (acc *accumulator) add(n []float64, linv *matrix.Dense, x, fn []float64) error {
	for c, a := range acc.a1 {
		if n[c] == 0 {
			continue
		}
		if err := matrix.AddScaledInPlace(a, n[c], linv); err != nil {
			return err
		}
		if err := matrix.AddOuter(a, n[c], x, x); err != nil {
			return err
		}
	}

	return matrix.AddOuter(acc.a2, 1, fn, x)
}

// solveInto writes a2·a1⁻¹ (component-wise) into w through UpdateEigen.
// w is left untouched on failure.
func (acc *accumulator) solveInto(w *matrix.Dense) error {
	a2t, err := matrix.Transpose(acc.a2)
	if err != nil {
		return err
	}
	uvt, err := matrix.NewDense(a2t.Rows(), a2t.Cols())
	if err != nil {
		return err
	}
	// a1[c] is symmetric, so (a2_c·a1[c]⁻¹)ᵀ = a1[c]⁻¹·a2_cᵀ
	if err = UpdateEigen(acc.a1, a2t, uvt); err != nil {
		return err
	}

	return matrix.TransposeInto(w, uvt)
}
