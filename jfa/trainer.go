// SPDX-License-Identifier: MIT

package jfa

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvlearn/matrix"
)

// Trainer estimates the subspaces of a BaseMachine from per-speaker,
// per-session statistics by alternating factor passes (x, y, z) with
// subspace re-estimations (U, V, d).
//
// Containers are index addressed: speaker i owns stats[i], X[i] (one row of
// channel factors per session), Y[i] and Z[i].
//
// A Trainer is not safe for concurrent use; it parallelises internally.
type Trainer struct {
	base *BaseMachine
	opts Options

	stats [][]Stats

	// latent factors
	x []*matrix.Dense // speaker → sessions × ru
	y [][]float64     // speaker → rv
	z [][]float64     // speaker → C·D

	// precomputed sums, nil until the matching Precompute call
	sumN     [][]float64     // speaker → C
	sumF     [][]float64     // speaker → C·D
	stackedF []*matrix.Dense // component → (all sessions) × D
	offset   []int           // first stackedF row of each speaker

	accU, accV *accumulator
	accD       struct {
		a, b  []float64
		ready bool
	}
}

// NewTrainer returns a trainer bound to base. The trainer mutates U, V and
// d of base in place.
func NewTrainer(base *BaseMachine, opts ...Option) (*Trainer, error) {
	if base == nil {
		return nil, fmt.Errorf("NewTrainer: nil machine: %w", ErrInvalidModel)
	}
	t := &Trainer{base: base, opts: gatherOptions(opts...)}
	var err error
	if t.accU, err = newAccumulator(base.nComponents, base.SupervectorLength(), base.RankU()); err != nil {
		return nil, fmt.Errorf("NewTrainer: %w", err)
	}
	if t.accV, err = newAccumulator(base.nComponents, base.SupervectorLength(), base.RankV()); err != nil {
		return nil, fmt.Errorf("NewTrainer: %w", err)
	}
	t.accD.a = make([]float64, base.SupervectorLength())
	t.accD.b = make([]float64, base.SupervectorLength())

	return t, nil
}

// Machine returns the base machine the trainer updates.
func (t *Trainer) Machine() *BaseMachine { return t.base }

// SetStatistics stores a copy of stats (speaker → sessions) and invalidates
// every cache derived from the previous statistics: the sums must be
// precomputed again before any update.
//
// Errors:
//   - ErrNoStatistics for an empty collection.
//   - ErrShapeMismatch for a speaker without sessions or a session whose N or F
//     length disagrees with the base machine.
func (t *Trainer) SetStatistics(stats [][]Stats) error {
	if err := validateStats(stats, t.base.nComponents, t.base.SupervectorLength()); err != nil {
		return fmt.Errorf("SetStatistics: %w", err)
	}
	t.stats = cloneStats(stats)
	t.sumN, t.sumF, t.stackedF, t.offset = nil, nil, nil, nil
	t.accU.reset()
	t.accV.reset()
	t.accD.ready = false

	return nil
}

// Statistics returns the number of speakers and the session count of each.
func (t *Trainer) Statistics() (speakers int, sessions []int) {
	sessions = make([]int, len(t.stats))
	for i, s := range t.stats {
		sessions[i] = len(s)
	}

	return len(t.stats), sessions
}

// InitializeXYZ sizes the factor containers after the current statistics and
// sets every factor to zero.
func (t *Trainer) InitializeXYZ() error {
	if t.stats == nil {
		return fmt.Errorf("InitializeXYZ: %w", ErrNoStatistics)
	}
	b := t.base
	t.x = make([]*matrix.Dense, len(t.stats))
	t.y = make([][]float64, len(t.stats))
	t.z = make([][]float64, len(t.stats))
	for i, sessions := range t.stats {
		x, err := matrix.NewDense(len(sessions), b.RankU())
		if err != nil {
			return fmt.Errorf("InitializeXYZ: %w", err)
		}
		t.x[i] = x
		t.y[i] = make([]float64, b.RankV())
		t.z[i] = make([]float64, b.SupervectorLength())
	}

	return nil
}

// SetSpeakerFactors copies caller-provided factors into the trainer.
// x[i] holds one row of ru channel factors per session of speaker i; y[i]
// and z[i] have lengths rv and C·D. Agreement with the statistics is checked
// by the update operations.
func (t *Trainer) SetSpeakerFactors(x []*matrix.Dense, y, z [][]float64) error {
	b := t.base
	if len(y) != len(x) {
		return fmt.Errorf("SetSpeakerFactors: %w", shapeErrorf("speakers in Y", len(y), len(x)))
	}
	if len(z) != len(x) {
		return fmt.Errorf("SetSpeakerFactors: %w", shapeErrorf("speakers in Z", len(z), len(x)))
	}
	for i := range x {
		if x[i] == nil {
			return fmt.Errorf("SetSpeakerFactors: X[%d]: %w", i, matrix.ErrNilMatrix)
		}
		if x[i].Cols() != b.RankU() {
			return fmt.Errorf("SetSpeakerFactors: %w", shapeErrorf(fmt.Sprintf("X[%d] cols", i), x[i].Cols(), b.RankU()))
		}
		if len(y[i]) != b.RankV() {
			return fmt.Errorf("SetSpeakerFactors: %w", shapeErrorf(fmt.Sprintf("len(Y[%d])", i), len(y[i]), b.RankV()))
		}
		if len(z[i]) != b.SupervectorLength() {
			return fmt.Errorf("SetSpeakerFactors: %w", shapeErrorf(fmt.Sprintf("len(Z[%d])", i), len(z[i]), b.SupervectorLength()))
		}
	}
	t.x = make([]*matrix.Dense, len(x))
	t.y = make([][]float64, len(y))
	t.z = make([][]float64, len(z))
	for i := range x {
		t.x[i] = x[i].Clone()
		t.y[i] = append([]float64(nil), y[i]...)
		t.z[i] = append([]float64(nil), z[i]...)
	}

	return nil
}

// PrecomputeSumStatisticsN computes sumN[i] = Σ_h N[i][h].
func (t *Trainer) PrecomputeSumStatisticsN() error {
	if t.stats == nil {
		return fmt.Errorf("PrecomputeSumStatisticsN: %w", ErrNoStatistics)
	}
	t.sumN = make([][]float64, len(t.stats))
	for i, sessions := range t.stats {
		t.sumN[i] = make([]float64, t.base.nComponents)
		for _, s := range sessions {
			for c, n := range s.N {
				t.sumN[i][c] += n
			}
		}
	}

	return nil
}

// PrecomputeSumStatisticsF computes sumF[i] = Σ_h F[i][h] and the
// component-major stacking of F: row r of StackedF()[c] is the block of
// component c of the r-th session, sessions ordered speaker by speaker.
func (t *Trainer) PrecomputeSumStatisticsF() error {
	if t.stats == nil {
		return fmt.Errorf("PrecomputeSumStatisticsF: %w", ErrNoStatistics)
	}
	b := t.base
	total := 0
	t.offset = make([]int, len(t.stats))
	for i, sessions := range t.stats {
		t.offset[i] = total
		total += len(sessions)
	}

	t.sumF = make([][]float64, len(t.stats))
	t.stackedF = make([]*matrix.Dense, b.nComponents)
	var err error
	for c := range t.stackedF {
		if t.stackedF[c], err = matrix.NewDense(total, b.nFeatures); err != nil {
			return fmt.Errorf("PrecomputeSumStatisticsF: %w", err)
		}
	}
	for i, sessions := range t.stats {
		t.sumF[i] = make([]float64, b.SupervectorLength())
		for h, s := range sessions {
			for k, f := range s.F {
				t.sumF[i][k] += f
			}
			for c, blk := range t.stackedF {
				copy(blk.Row(t.offset[i]+h), s.F[c*b.nFeatures:(c+1)*b.nFeatures])
			}
		}
	}

	return nil
}

// X returns a copy of the channel factors, one matrix per speaker.
func (t *Trainer) X() []*matrix.Dense {
	out := make([]*matrix.Dense, len(t.x))
	for i, x := range t.x {
		out[i] = x.Clone()
	}

	return out
}

// Y returns a copy of the speaker factors.
func (t *Trainer) Y() [][]float64 { return cloneVectors(t.y) }

// Z returns a copy of the residual speaker factors.
func (t *Trainer) Z() [][]float64 { return cloneVectors(t.z) }

// SumN returns a copy of the per-speaker zeroth-order sums, nil before
// PrecomputeSumStatisticsN.
func (t *Trainer) SumN() [][]float64 { return cloneVectors(t.sumN) }

// SumF returns a copy of the per-speaker first-order sums, nil before
// PrecomputeSumStatisticsF.
func (t *Trainer) SumF() [][]float64 { return cloneVectors(t.sumF) }

// StackedF returns a copy of the component-major first-order statistics,
// nil before PrecomputeSumStatisticsF.
func (t *Trainer) StackedF() []*matrix.Dense {
	if t.stackedF == nil {
		return nil
	}
	out := make([]*matrix.Dense, len(t.stackedF))
	for c, m := range t.stackedF {
		out[c] = m.Clone()
	}

	return out
}

func cloneVectors(vs [][]float64) [][]float64 {
	if vs == nil {
		return nil
	}
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = append([]float64(nil), v...)
	}

	return out
}

// checkReady enforces the preconditions shared by every update: statistics
// set, sums precomputed and factor containers matching the statistics.
func (t *Trainer) checkReady(op string) error {
	if t.stats == nil || t.sumN == nil || t.sumF == nil {
		return fmt.Errorf("%s: %w", op, ErrNoStatistics)
	}
	if len(t.x) != len(t.stats) {
		return fmt.Errorf("%s: %w", op, shapeErrorf("speakers in X", len(t.x), len(t.stats)))
	}
	if len(t.y) != len(t.stats) {
		return fmt.Errorf("%s: %w", op, shapeErrorf("speakers in Y", len(t.y), len(t.stats)))
	}
	if len(t.z) != len(t.stats) {
		return fmt.Errorf("%s: %w", op, shapeErrorf("speakers in Z", len(t.z), len(t.stats)))
	}
	for i, sessions := range t.stats {
		if t.x[i].Rows() != len(sessions) {
			return fmt.Errorf("%s: %w", op, shapeErrorf(fmt.Sprintf("sessions in X[%d]", i), t.x[i].Rows(), len(sessions)))
		}
	}

	return nil
}

// forEachSpeaker runs fn for every speaker on at most opts.workers
// goroutines. fn must only write to slots owned by speaker i.
func (t *Trainer) forEachSpeaker(ctx context.Context, fn func(i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.workers)
	for i := range t.stats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return fn(i)
		})
	}

	return g.Wait()
}
