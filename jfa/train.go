// SPDX-License-Identifier: MIT

package jfa

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	log "github.com/golang/glog"
)

// stage is one step of the alternating schedule. Stages run strictly one
// after another: a stage only starts once the previous one has written all
// of its factors or subspaces.
type stage struct {
	name string
	run  func(ctx context.Context) error
}

// jfaSchedule is the full JFA round. The order is load-bearing: each stage
// consumes what the previous one left behind.
func (t *Trainer) jfaSchedule() []stage {
	return []stage{
		{"x", t.updateX},
		{"U", func(context.Context) error { return t.UpdateU() }},
		{"y", t.updateY},
		{"V", func(context.Context) error { return t.UpdateV() }},
		{"z", t.updateZ},
		{"d", func(context.Context) error { return t.UpdateD() }},
	}
}

// isvSchedule is the inter-session variability round: V stays zero and d
// stays at its MAP value, only U and the factors move.
func (t *Trainer) isvSchedule() []stage {
	return []stage{
		{"x", t.updateX},
		{"U", func(context.Context) error { return t.UpdateU() }},
		{"z", t.updateZ},
	}
}

// prepare runs the per-call setup shared by Train, TrainISV and Enrol.
func (t *Trainer) prepare(stats [][]Stats) error {
	if err := t.SetStatistics(stats); err != nil {
		return err
	}
	if err := t.InitializeXYZ(); err != nil {
		return err
	}
	if err := t.PrecomputeSumStatisticsN(); err != nil {
		return err
	}

	return t.PrecomputeSumStatisticsF()
}

// run executes nIter rounds of schedule, checking ctx at every stage barrier.
func (t *Trainer) run(ctx context.Context, op string, nIter int, schedule []stage) error {
	for it := 0; it < nIter; it++ {
		for _, s := range schedule {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s: iteration %d: %w", op, it, err)
			}
			if err := s.run(ctx); err != nil {
				return fmt.Errorf("%s: iteration %d stage %s: %w", op, it, s.name, err)
			}
			log.V(2).Infof("%s: iteration %d stage %s done", op, it, s.name)
		}
		log.V(1).Infof("%s: iteration %d/%d done", op, it+1, nIter)
	}

	return nil
}

// Train runs nIter rounds of JFA training on stats, starting from the U, V
// and d currently held by the base machine and from zero factors.
//
// Steps:
//  1. SetStatistics, InitializeXYZ, precompute both sums.
//  2. nIter times: UpdateX, UpdateU, UpdateY, UpdateV, UpdateZ, UpdateD.
//
// nIter = 0 performs step 1 only and leaves the machine unchanged. No
// convergence test is made. Errors from any stage abort the run without
// rollback; ctx is checked between stages and its error is returned as is
// (wrapped).
func (t *Trainer) Train(ctx context.Context, stats [][]Stats, nIter int) error {
	if nIter < 0 {
		return fmt.Errorf("Train: %d iterations: %w", nIter, ErrInvalidModel)
	}
	if err := t.prepare(stats); err != nil {
		return fmt.Errorf("Train: %w", err)
	}

	return t.run(ctx, "Train", nIter, t.jfaSchedule())
}

// TrainISV trains an inter-session variability model: V is set to zero and
// d to sqrt(Σ/relevance) (see InitializeVDISV), then nIter rounds of
// UpdateX, UpdateU, UpdateZ refine U.
func (t *Trainer) TrainISV(ctx context.Context, stats [][]Stats, nIter int, relevance float64) error {
	if nIter < 0 {
		return fmt.Errorf("TrainISV: %d iterations: %w", nIter, ErrInvalidModel)
	}
	if err := checkRelevance(relevance); err != nil {
		return fmt.Errorf("TrainISV: %w", err)
	}
	if err := t.prepare(stats); err != nil {
		return fmt.Errorf("TrainISV: %w", err)
	}
	if err := t.InitializeVDISV(relevance); err != nil {
		return fmt.Errorf("TrainISV: %w", err)
	}

	return t.run(ctx, "TrainISV", nIter, t.isvSchedule())
}

// InitializeVDISV sets V to zero and d_k = sqrt(Σ_k / relevance), the
// relevance-MAP prior used by inter-session variability modelling.
// Errors: ErrInvalidModel unless relevance is finite and > 0.
func (t *Trainer) InitializeVDISV(relevance float64) error {
	if err := checkRelevance(relevance); err != nil {
		return fmt.Errorf("InitializeVDISV: %w", err)
	}
	b := t.base
	b.v.Zero()
	for k, e := range b.variance {
		b.d[k] = math.Sqrt(e / relevance)
	}

	return nil
}

func checkRelevance(relevance float64) error {
	if !(relevance > 0) || math.IsInf(relevance, 0) {
		return fmt.Errorf("relevance %g: %w", relevance, ErrInvalidModel)
	}

	return nil
}

// InitializeRandomUVD draws every entry of U, V and d uniformly from
// [0, scale), from a source seeded with the trainer seed (WithSeed,
// WithInitScale). Two trainers with the same seed produce the same machine.
func (t *Trainer) InitializeRandomUVD() {
	rng := rand.New(rand.NewSource(t.opts.seed))
	scale := t.opts.initScale
	b := t.base
	for _, raw := range [][]float64{b.u.Raw(), b.v.Raw(), b.d} {
		for k := range raw {
			raw[k] = scale * rng.Float64()
		}
	}
}
