// SPDX-License-Identifier: MIT

package jfa

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

// posteriorResult is what one speaker contributes to a subspace accumulator.
type posteriorResult struct {
	n    []float64
	fn   []float64
	linv *matrix.Dense
	x    []float64
}

// UpdateX re-estimates the channel factors x of every session with V, d, y
// and z held fixed, and fills the accumulators consumed by UpdateU:
//
//	Fn   = F_ih − N_ih·(m + V·y_i + d∘z_i)
//	L    = I + Σ_c N_ih[c]·U_cᵀΣ_c⁻¹U_c
//	x_ih = L⁻¹·UᵀΣ⁻¹·Fn
//
// Sessions are independent and solved concurrently.
//
// Errors: ErrNoStatistics, ErrShapeMismatch, ErrSingular. X is replaced only
// when every session solved.
func (t *Trainer) UpdateX() error { return t.updateX(context.Background()) }

func (t *Trainer) updateX(ctx context.Context) error {
	const op = "UpdateX"
	if err := t.checkReady(op); err != nil {
		return err
	}
	b := t.base
	proj, err := newProjection(b.u, b.variance, b.nComponents)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	xs := make([]*matrix.Dense, len(t.stats))
	results := make([][]posteriorResult, len(t.stats))
	err = t.forEachSpeaker(ctx, func(i int) error {
		vy, err := matrix.MatVec(b.v, t.y[i])
		if err != nil {
			return err
		}
		sessions := t.stats[i]
		x, err := matrix.NewDense(len(sessions), b.RankU())
		if err != nil {
			return err
		}
		res := make([]posteriorResult, len(sessions))
		for h, s := range sessions {
			fn := make([]float64, b.SupervectorLength())
			for c, blk := range t.stackedF {
				f := blk.Row(t.offset[i] + h)
				for j, v := range f {
					k := c*b.nFeatures + j
					fn[k] = v - s.N[c]*(b.mean[k]+vy[k]+b.d[k]*t.z[i][k])
				}
			}
			xh, linv, err := proj.posterior(s.N, fn)
			if err != nil {
				return fmt.Errorf("speaker %d session %d: %w", i, h, err)
			}
			copy(x.Row(h), xh)
			res[h] = posteriorResult{n: s.N, fn: fn, linv: linv, x: xh}
		}
		xs[i], results[i] = x, res

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// reduce in speaker then session order so the sums do not depend on
	// goroutine scheduling
	t.accU.reset()
	for _, res := range results {
		for _, r := range res {
			if err = t.accU.add(r.n, r.linv, r.x, r.fn); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	t.accU.ready = true
	t.x = xs

	return nil
}

// channelTerm returns Σ_h N_ih[c(k)]·(U·x_ih)[k], the part of speaker i's
// first-order statistics explained by the channel factors.
func (t *Trainer) channelTerm(i int) ([]float64, error) {
	b := t.base
	out := make([]float64, b.SupervectorLength())
	for h, s := range t.stats[i] {
		ux, err := matrix.MatVec(b.u, t.x[i].Row(h))
		if err != nil {
			return nil, err
		}
		for k, v := range ux {
			out[k] += s.N[b.component(k)] * v
		}
	}

	return out, nil
}

// UpdateY re-estimates the speaker factors y with U, d, x and z held fixed,
// and fills the accumulators consumed by UpdateV:
//
//	Fn  = Σ_h (F_ih − N_ih·(m + d∘z_i + U·x_ih))
//	L   = I + Σ_c Nacc_i[c]·V_cᵀΣ_c⁻¹V_c
//	y_i = L⁻¹·VᵀΣ⁻¹·Fn
//
// Errors: ErrNoStatistics, ErrShapeMismatch, ErrSingular.
func (t *Trainer) UpdateY() error { return t.updateY(context.Background()) }

func (t *Trainer) updateY(ctx context.Context) error {
	const op = "UpdateY"
	if err := t.checkReady(op); err != nil {
		return err
	}
	b := t.base
	proj, err := newProjection(b.v, b.variance, b.nComponents)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	results := make([]posteriorResult, len(t.stats))
	err = t.forEachSpeaker(ctx, func(i int) error {
		fn, err := t.channelTerm(i)
		if err != nil {
			return err
		}
		nacc := t.sumN[i]
		for k := range fn {
			fn[k] = t.sumF[i][k] - nacc[b.component(k)]*(b.mean[k]+b.d[k]*t.z[i][k]) - fn[k]
		}
		y, linv, err := proj.posterior(nacc, fn)
		if err != nil {
			return fmt.Errorf("speaker %d: %w", i, err)
		}
		results[i] = posteriorResult{n: nacc, fn: fn, linv: linv, x: y}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	t.accV.reset()
	for i, r := range results {
		if err = t.accV.add(r.n, r.linv, r.x, r.fn); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		t.y[i] = r.x
	}
	t.accV.ready = true

	return nil
}

// UpdateZ re-estimates the residual factors z with U, V, x and y held fixed,
// and fills the accumulators consumed by UpdateD. D is diagonal, so every
// supervector entry k is an independent scalar problem:
//
//	Fn     = Σ_h (F_ih − N_ih·(m + V·y_i + U·x_ih))
//	L_k    = 1 + Nacc_i[c(k)]·d_k²/Σ_k
//	z_i[k] = d_k/Σ_k·Fn[k] / L_k
//
// Errors: ErrNoStatistics, ErrShapeMismatch.
func (t *Trainer) UpdateZ() error { return t.updateZ(context.Background()) }

func (t *Trainer) updateZ(ctx context.Context) error {
	const op = "UpdateZ"
	if err := t.checkReady(op); err != nil {
		return err
	}
	b := t.base

	type zResult struct{ z, fn, linv []float64 }
	results := make([]zResult, len(t.stats))
	err := t.forEachSpeaker(ctx, func(i int) error {
		fn, err := t.channelTerm(i)
		if err != nil {
			return err
		}
		vy, err := matrix.MatVec(b.v, t.y[i])
		if err != nil {
			return err
		}
		nacc := t.sumN[i]
		z := make([]float64, len(fn))
		linv := make([]float64, len(fn))
		for k := range fn {
			n := nacc[b.component(k)]
			fn[k] = t.sumF[i][k] - n*(b.mean[k]+vy[k]) - fn[k]
			linv[k] = 1 / (1 + n*b.d[k]*b.d[k]/b.variance[k])
			z[k] = linv[k] * b.d[k] / b.variance[k] * fn[k]
		}
		results[i] = zResult{z: z, fn: fn, linv: linv}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	clear(t.accD.a)
	clear(t.accD.b)
	for i, r := range results {
		nacc := t.sumN[i]
		for k, zk := range r.z {
			t.accD.a[k] += nacc[b.component(k)] * (r.linv[k] + zk*zk)
			t.accD.b[k] += r.fn[k] * zk
		}
		t.z[i] = r.z
	}
	t.accD.ready = true

	return nil
}
