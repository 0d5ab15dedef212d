// SPDX-License-Identifier: MIT

package mlp

import (
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
	"gonum.org/v1/gonum/floats"
)

// propagation owns the batch-sized buffers of one forward/backward pass.
// They are allocated once per trainer and reused by every Train call.
type propagation struct {
	shape  []int
	output []*matrix.Dense // O[0] aliases the input batch; O[k+1] = act(O[k]·W[k] + B[k])
	errs   []*matrix.Dense // E[k], same shape as O[k+1]
	wT     *matrix.Dense   // scratch for W[k+1]ᵀ
	oT     *matrix.Dense   // scratch for O[k]ᵀ
}

func newPropagation(shape []int, batchSize int) (*propagation, error) {
	layers := len(shape) - 1
	p := &propagation{
		shape:  append([]int(nil), shape...),
		output: make([]*matrix.Dense, layers+1),
		errs:   make([]*matrix.Dense, layers),
	}
	var err error
	for k := 0; k < layers; k++ {
		if p.output[k+1], err = matrix.NewDense(batchSize, shape[k+1]); err != nil {
			return nil, err
		}
		if p.errs[k], err = matrix.NewDense(batchSize, shape[k+1]); err != nil {
			return nil, err
		}
	}
	if p.wT, err = matrix.NewDense(1, 1); err != nil {
		return nil, err
	}
	if p.oT, err = matrix.NewDense(1, 1); err != nil {
		return nil, err
	}

	return p, nil
}

// forward fills O[1..L] from the input batch.
func (p *propagation) forward(m *Machine, input *matrix.Dense) error {
	p.output[0] = input
	for k, w := range m.weights {
		if err := matrix.MulInto(p.output[k+1], p.output[k], w); err != nil {
			return fmt.Errorf("forward: layer %d: %w", k, err)
		}
		addBias(p.output[k+1], m.biases[k])
		m.activation.apply(p.output[k+1].Raw())
	}

	return nil
}

// backward fills E[k] for every layer, last layer first:
//
//	E[L-1] = act'(O[L]) ⊙ (target − O[L])
//	E[k]   = act'(O[k+1]) ⊙ (E[k+1]·W[k+1]ᵀ)
func (p *propagation) backward(m *Machine, target *matrix.Dense) error {
	bwd := activations[m.activation].backward
	last := len(m.weights) - 1

	out, e := p.output[last+1].Raw(), p.errs[last].Raw()
	tgt := target.Raw()
	for i := range e {
		e[i] = bwd(out[i]) * (tgt[i] - out[i])
	}

	for k := last - 1; k >= 0; k-- {
		if err := matrix.TransposeInto(p.wT, m.weights[k+1]); err != nil {
			return fmt.Errorf("backward: layer %d: %w", k, err)
		}
		if err := matrix.MulInto(p.errs[k], p.errs[k+1], p.wT); err != nil {
			return fmt.Errorf("backward: layer %d: %w", k, err)
		}
		out, e = p.output[k+1].Raw(), p.errs[k].Raw()
		for i := range e {
			e[i] = bwd(out[i]) * e[i]
		}
	}

	return nil
}

// gradients writes scale·O[k]ᵀ·E[k] into dw[k] and scale·1ᵀ·E[k] into db[k].
func (p *propagation) gradients(dw []*matrix.Dense, db [][]float64, scale float64) error {
	for k := range dw {
		if err := matrix.TransposeInto(p.oT, p.output[k]); err != nil {
			return fmt.Errorf("gradients: layer %d: %w", k, err)
		}
		if err := matrix.MulInto(dw[k], p.oT, p.errs[k]); err != nil {
			return fmt.Errorf("gradients: layer %d: %w", k, err)
		}
		floats.Scale(scale, dw[k].Raw())

		sums, err := matrix.ColumnSums(p.errs[k])
		if err != nil {
			return fmt.Errorf("gradients: layer %d: %w", k, err)
		}
		floats.Scale(scale, sums)
		copy(db[k], sums)
	}

	return nil
}

// compatible reports whether m has exactly the layer sizes in shape.
func compatible(shape []int, m *Machine) bool {
	if m == nil || len(m.weights)+1 != len(shape) {
		return false
	}
	for k, w := range m.weights {
		if w.Rows() != shape[k] || w.Cols() != shape[k+1] {
			return false
		}
	}

	return true
}

// checkBatch validates a Train call against the trainer's shape and batch size.
func checkBatch(op string, shape []int, batchSize int, m *Machine, input, target *matrix.Dense) error {
	if !compatible(shape, m) {
		return fmt.Errorf("%s: machine shape differs from %v: %w", op, shape, ErrIncompatibleNetwork)
	}
	if !m.activation.Valid() {
		return fmt.Errorf("%s: %w", op, ErrUnknownActivation)
	}
	if input == nil || target == nil {
		return fmt.Errorf("%s: nil batch: %w", op, ErrIncompatibleNetwork)
	}
	if input.Rows() != batchSize || target.Rows() != batchSize {
		return fmt.Errorf("%s: batch rows %d/%d, want %d: %w", op, input.Rows(), target.Rows(), batchSize, ErrIncompatibleNetwork)
	}
	if input.Cols() != shape[0] || target.Cols() != shape[len(shape)-1] {
		return fmt.Errorf("%s: batch widths %d/%d, want %d/%d: %w",
			op, input.Cols(), target.Cols(), shape[0], shape[len(shape)-1], ErrIncompatibleNetwork)
	}

	return nil
}

// zeroLike allocates zeroed containers shaped like the machine parameters.
func zeroLike(shape []int) ([]*matrix.Dense, [][]float64) {
	dw := make([]*matrix.Dense, len(shape)-1)
	db := make([][]float64, len(shape)-1)
	for k := range dw {
		dw[k], _ = matrix.NewDense(shape[k], shape[k+1])
		db[k] = make([]float64, shape[k+1])
	}

	return dw, db
}
