// SPDX-License-Identifier: MIT

package mlp

import (
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

// BackPropTrainer trains a Machine by batch back-propagation with momentum.
//
// One Train call performs a single update:
//
//	ΔW[k] = (η/N) · O[k]ᵀ·E[k]
//	ΔB[k] = (η/N) · 1ᵀ·E[k]
//	W[k] ← W[k] + (1−μ)·ΔW[k] + μ·PΔW[k]
//
// where N is the batch size, η the learning rate, μ the momentum and PΔW the
// delta of the previous call (zero after construction or Reset).
type BackPropTrainer struct {
	shape     []int
	batchSize int
	opts      Options

	prop *propagation

	dw  []*matrix.Dense // current deltas
	db  [][]float64
	pdw []*matrix.Dense // previous deltas; nil until the first Train after a Reset
	pdb [][]float64
}

// NewBackPropTrainer builds a trainer for machines shaped like m, fed with
// batches of exactly batchSize rows.
func NewBackPropTrainer(m *Machine, batchSize int, opts ...Option) (*BackPropTrainer, error) {
	if m == nil {
		return nil, fmt.Errorf("NewBackPropTrainer: nil machine: %w", ErrIncompatibleNetwork)
	}
	if m.Layers() == 0 {
		return nil, fmt.Errorf("NewBackPropTrainer: machine has no layers: %w", ErrInvalidShape)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("NewBackPropTrainer: batch size %d: %w", batchSize, ErrInvalidShape)
	}
	shape := m.Shape()
	prop, err := newPropagation(shape, batchSize)
	if err != nil {
		return nil, fmt.Errorf("NewBackPropTrainer: %w", err)
	}
	t := &BackPropTrainer{
		shape:     shape,
		batchSize: batchSize,
		opts:      gatherOptions(opts...),
		prop:      prop,
	}
	t.dw, t.db = zeroLike(shape)

	return t, nil
}

// BatchSize is the number of rows every Train batch must have.
func (t *BackPropTrainer) BatchSize() int { return t.batchSize }

// LearningRate returns η.
func (t *BackPropTrainer) LearningRate() float64 { return t.opts.learningRate }

// Momentum returns μ.
func (t *BackPropTrainer) Momentum() float64 { return t.opts.momentum }

// TrainBiases reports whether biases are updated.
func (t *BackPropTrainer) TrainBiases() bool { return t.opts.trainBiases }

// SetTrainBiases toggles bias training for subsequent Train calls.
func (t *BackPropTrainer) SetTrainBiases(on bool) { t.opts.trainBiases = on }

// SetMomentum changes μ for subsequent Train calls.
func (t *BackPropTrainer) SetMomentum(m float64) { WithMomentum(m)(&t.opts) }

// SetLearningRate changes η for subsequent Train calls.
func (t *BackPropTrainer) SetLearningRate(rate float64) { WithLearningRate(rate)(&t.opts) }

// IsCompatible reports whether m has the layer shapes this trainer was built for.
func (t *BackPropTrainer) IsCompatible(m *Machine) bool { return compatible(t.shape, m) }

// Reset forgets the previous deltas, so the next Train call runs without
// momentum contribution.
func (t *BackPropTrainer) Reset() {
	t.pdw, t.pdb = nil, nil
}

// PreviousDeltas returns copies of the deltas the next Train call will blend
// in through momentum. Both are nil before the first Train call and after Reset.
func (t *BackPropTrainer) PreviousDeltas() ([]*matrix.Dense, [][]float64) {
	if t.pdw == nil {
		return nil, nil
	}
	dw := make([]*matrix.Dense, len(t.pdw))
	db := make([][]float64, len(t.pdb))
	for k := range t.pdw {
		dw[k] = t.pdw[k].Clone()
		db[k] = append([]float64(nil), t.pdb[k]...)
	}

	return dw, db
}

// Train performs one back-propagation step of m on (input, target), one
// sample per row. m is updated in place.
//
// When bias training is disabled every bias of m is set to zero after the
// update, whatever its previous value.
//
// Errors:
//   - ErrIncompatibleNetwork if m or the batch does not match the trainer.
//   - ErrUnknownActivation if m carries an unsupported activation.
//
// A failed precondition leaves m and the trainer state untouched.
func (t *BackPropTrainer) Train(m *Machine, input, target *matrix.Dense) error {
	if err := checkBatch("BackPropTrainer.Train", t.shape, t.batchSize, m, input, target); err != nil {
		return err
	}
	if t.pdw == nil {
		t.pdw, t.pdb = zeroLike(t.shape)
	}

	if err := t.prop.forward(m, input); err != nil {
		return fmt.Errorf("BackPropTrainer.Train: %w", err)
	}
	if err := t.prop.backward(m, target); err != nil {
		return fmt.Errorf("BackPropTrainer.Train: %w", err)
	}
	if err := t.prop.gradients(t.dw, t.db, t.opts.learningRate/float64(t.batchSize)); err != nil {
		return fmt.Errorf("BackPropTrainer.Train: %w", err)
	}

	mu := t.opts.momentum
	for k, w := range m.weights {
		raw, d, pd := w.Raw(), t.dw[k].Raw(), t.pdw[k].Raw()
		for i := range raw {
			raw[i] = raw[i] + ((1-mu)*d[i] + mu*pd[i])
		}
	}
	// the current deltas become the previous ones; the old buffers are
	// recycled for the next call
	t.dw, t.pdw = t.pdw, t.dw

	if t.opts.trainBiases {
		for k, b := range m.biases {
			d, pd := t.db[k], t.pdb[k]
			for i := range b {
				b[i] = b[i] + ((1-mu)*d[i] + mu*pd[i])
			}
		}
		t.db, t.pdb = t.pdb, t.db
	} else {
		m.FillBiases(0)
	}

	return nil
}
