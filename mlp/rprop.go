// SPDX-License-Identifier: MIT

package mlp

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlearn/matrix"
)

// RPropTrainer trains a Machine with resilient back-propagation: every
// parameter keeps its own step size, grown by eta+ while the gradient keeps
// its sign and shrunk by eta- when it flips. Only the gradient sign moves the
// parameter; its magnitude is ignored.
type RPropTrainer struct {
	shape     []int
	batchSize int
	opts      Options

	prop *propagation

	deriv  []*matrix.Dense // current error derivatives
	derivB [][]float64
	prev   []*matrix.Dense // derivatives of the previous step
	prevB  [][]float64
	delta  []*matrix.Dense // per-weight step sizes
	deltaB [][]float64
}

// NewRPropTrainer builds an RProp trainer for machines shaped like m.
func NewRPropTrainer(m *Machine, batchSize int, opts ...Option) (*RPropTrainer, error) {
	if m == nil {
		return nil, fmt.Errorf("NewRPropTrainer: nil machine: %w", ErrIncompatibleNetwork)
	}
	if m.Layers() == 0 {
		return nil, fmt.Errorf("NewRPropTrainer: machine has no layers: %w", ErrInvalidShape)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("NewRPropTrainer: batch size %d: %w", batchSize, ErrInvalidShape)
	}
	shape := m.Shape()
	prop, err := newPropagation(shape, batchSize)
	if err != nil {
		return nil, fmt.Errorf("NewRPropTrainer: %w", err)
	}
	t := &RPropTrainer{
		shape:     shape,
		batchSize: batchSize,
		opts:      gatherOptions(opts...),
		prop:      prop,
	}
	if t.opts.deltaMin > t.opts.deltaMax {
		return nil, fmt.Errorf("NewRPropTrainer: delta min %g > max %g: %w",
			t.opts.deltaMin, t.opts.deltaMax, ErrInvalidShape)
	}
	t.deriv, t.derivB = zeroLike(shape)
	t.Reset()

	return t, nil
}

// BatchSize is the number of rows every Train batch must have.
func (t *RPropTrainer) BatchSize() int { return t.batchSize }

// TrainBiases reports whether biases are updated.
func (t *RPropTrainer) TrainBiases() bool { return t.opts.trainBiases }

// SetTrainBiases toggles bias training for subsequent Train calls.
func (t *RPropTrainer) SetTrainBiases(on bool) { t.opts.trainBiases = on }

// IsCompatible reports whether m has the layer shapes this trainer was built for.
func (t *RPropTrainer) IsCompatible(m *Machine) bool { return compatible(t.shape, m) }

// Reset restores every step size to its initial value and forgets the
// previous derivatives.
func (t *RPropTrainer) Reset() {
	t.prev, t.prevB = zeroLike(t.shape)
	t.delta, t.deltaB = zeroLike(t.shape)
	for k := range t.delta {
		t.delta[k].Fill(t.opts.deltaZero)
		for i := range t.deltaB[k] {
			t.deltaB[k][i] = t.opts.deltaZero
		}
	}
}

// StepSizes returns copies of the current per-parameter step sizes.
func (t *RPropTrainer) StepSizes() ([]*matrix.Dense, [][]float64) {
	dw := make([]*matrix.Dense, len(t.delta))
	db := make([][]float64, len(t.deltaB))
	for k := range t.delta {
		dw[k] = t.delta[k].Clone()
		db[k] = append([]float64(nil), t.deltaB[k]...)
	}

	return dw, db
}

// Train performs one RProp step of m on (input, target), one sample per row.
//
// Errors and bias handling follow BackPropTrainer.Train.
func (t *RPropTrainer) Train(m *Machine, input, target *matrix.Dense) error {
	if err := checkBatch("RPropTrainer.Train", t.shape, t.batchSize, m, input, target); err != nil {
		return err
	}
	if err := t.prop.forward(m, input); err != nil {
		return fmt.Errorf("RPropTrainer.Train: %w", err)
	}
	if err := t.prop.backward(m, target); err != nil {
		return fmt.Errorf("RPropTrainer.Train: %w", err)
	}
	// E holds (target − output)·act', so the error derivative is its negation.
	if err := t.prop.gradients(t.deriv, t.derivB, -1/float64(t.batchSize)); err != nil {
		return fmt.Errorf("RPropTrainer.Train: %w", err)
	}

	for k, w := range m.weights {
		t.step(w.Raw(), t.deriv[k].Raw(), t.prev[k].Raw(), t.delta[k].Raw())
	}
	if t.opts.trainBiases {
		for k, b := range m.biases {
			t.step(b, t.derivB[k], t.prevB[k], t.deltaB[k])
		}
	} else {
		m.FillBiases(0)
	}

	return nil
}

// step applies the RProp rule to one parameter block.
func (t *RPropTrainer) step(w, deriv, prev, delta []float64) {
	o := t.opts
	for i := range w {
		switch s := sign(deriv[i] * prev[i]); {
		case s > 0:
			delta[i] = math.Min(delta[i]*o.etaPlus, o.deltaMax)
			w[i] -= sign(deriv[i]) * delta[i]
			prev[i] = deriv[i]
		case s < 0:
			// the last step jumped over a minimum: shrink, skip the move
			// and make the next step neutral
			delta[i] = math.Max(delta[i]*o.etaMinus, o.deltaMin)
			prev[i] = 0
		default:
			w[i] -= sign(deriv[i]) * delta[i]
			prev[i] = deriv[i]
		}
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}

	return 0
}
